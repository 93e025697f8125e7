package normalize

import "testing"

func TestNFKC(t *testing.T) {
	cases := []struct{ in, want string }{
		{"▁hello", " hello"},
		{"ﬁne", "fine"},
		{"①", "1"},
		{"plain", "plain"},
		{"▁▁x", "  x"},
		{"Ｈｅｌｌｏ", "Hello"},
	}
	for _, c := range cases {
		in, want := c.in, c.want
		if got := (NFKC{}).Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q want %q", in, got, want)
		}
	}
}

func TestByName(t *testing.T) {
	if n, ok := ByName(""); !ok || n != nil {
		t.Fatalf("empty name: %v %v", n, ok)
	}
	if n, ok := ByName("NFKC"); !ok || n == nil {
		t.Fatalf("nfkc: %v %v", n, ok)
	}
	if _, ok := ByName("nfd"); ok {
		t.Fatalf("unknown name accepted")
	}
}

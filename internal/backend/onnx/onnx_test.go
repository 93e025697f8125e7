package onnx

import "testing"

func TestArgmax(t *testing.T) {
	cases := []struct {
		in   []float32
		want int
	}{
		{[]float32{0.1}, 0},
		{[]float32{0.1, 2, -1}, 1},
		{[]float32{3, 3, 1}, 0},
		{[]float32{-5, -4, -4.5}, 1},
	}
	for _, c := range cases {
		if got := argmax(c.in); got != c.want {
			t.Fatalf("argmax(%v) = %d want %d", c.in, got, c.want)
		}
	}
}

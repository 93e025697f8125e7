package engine

import "fmt"

// The helpers below turn panics inside external collaborators into errors so
// a misbehaving backend cannot take down the host process.

func safeEncode(tok Tokenizer, text string) (ids []int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in Encode: %v", rec)
		}
	}()
	return tok.Encode(text)
}

func safeInit(b Backend, ids []int) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in InitInputTokens: %v", rec)
		}
	}()
	return b.InitInputTokens(ids)
}

func safeNext(b Backend) (ids []int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in NextToken: %v", rec)
		}
	}()
	return b.NextToken()
}

func safePiece(tok Tokenizer, norm Normalizer, id int) (piece string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in IDToPiece: %v", rec)
		}
	}()
	piece, err = tok.IDToPiece(id)
	if err != nil {
		return "", err
	}
	if norm != nil {
		piece = norm.Normalize(piece)
	}
	return piece, nil
}

func safeStop(b Backend) (err error) {
	st, ok := b.(Stopper)
	if !ok {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in Stop: %v", rec)
		}
	}()
	st.Stop()
	return nil
}

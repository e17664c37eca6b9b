package util

import (
	"errors"
	"strings"
	"testing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestRandomToken(t *testing.T) {
	tok, err := RandomToken(TokenBytes)
	if err != nil {
		t.Fatalf("RandomToken() error = %v", err)
	}
	if len(tok) != 2*TokenBytes {
		t.Errorf("len(token) = %d, want %d", len(tok), 2*TokenBytes)
	}
	if strings.Trim(tok, "0123456789abcdef") != "" {
		t.Errorf("token %q is not lowercase hex", tok)
	}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, _ := RandomToken(TokenBytes)
		if seen[tok] {
			t.Fatalf("duplicate token after %d draws", i)
		}
		seen[tok] = true
	}
}

func TestRandomToken_Errors(t *testing.T) {
	if _, err := RandomToken(0); err == nil {
		t.Error("RandomToken(0) error = nil, want error")
	}

	orig := randReader
	randReader = failingReader{}
	defer func() { randReader = orig }()

	if _, err := RandomToken(TokenBytes); err == nil {
		t.Error("RandomToken() with failing source error = nil, want error")
	}
}

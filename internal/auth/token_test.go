package auth

import (
	"encoding/base64"
	"testing"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	tok1, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	tok2, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if tok1 == tok2 {
		t.Error("tokens should be unique")
	}

	raw, err := base64.RawURLEncoding.DecodeString(tok1)
	if err != nil {
		t.Fatalf("token is not URL-safe base64: %v", err)
	}
	if len(raw) != tokenBytes {
		t.Errorf("token entropy = %d bytes, want %d", len(raw), tokenBytes)
	}
}

func TestHashToken(t *testing.T) {
	t.Parallel()

	h1 := HashToken("some-token")
	h2 := HashToken("some-token")
	h3 := HashToken("other-token")

	if h1 != h2 {
		t.Error("hash should be deterministic")
	}
	if h1 == h3 {
		t.Error("different tokens should hash differently")
	}
	// Hex SHA-256
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}
}

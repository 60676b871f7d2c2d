package cache

import (
	"testing"
	"time"

	"github.com/plumecms/cloud/internal/auth"
)

func TestSessionEncodeDecode(t *testing.T) {
	t.Parallel()

	p := &auth.Principal{
		UserID: "usr_01",
		Email:  "dev@plume.dev",
		Name:   "Dev",
	}

	data, err := encodeSession(p, time.Now().UTC())
	if err != nil {
		t.Fatalf("encodeSession failed: %v", err)
	}

	got, err := decodeSession(data, "hash123")
	if err != nil {
		t.Fatalf("decodeSession failed: %v", err)
	}

	if got.UserID != p.UserID || got.Email != p.Email || got.Name != p.Name {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.SessionID != "hash123" {
		t.Errorf("SessionID = %q, want hash123", got.SessionID)
	}
}

func TestDecodeSession_Corrupted(t *testing.T) {
	t.Parallel()

	if _, err := decodeSession([]byte("{not json"), "h"); err == nil {
		t.Error("expected error for corrupted session data")
	}
}

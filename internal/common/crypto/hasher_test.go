package crypto

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := &BcryptHasher{}

	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if err := h.Compare(hash, "correct horse"); err != nil {
		t.Errorf("Compare rejected the original password: %v", err)
	}
	if err := h.Compare(hash, "wrong horse"); err == nil {
		t.Error("Compare accepted a wrong password")
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("Cost returned error: %v", err)
	}
	if cost != 12 {
		t.Errorf("expected cost 12, got %d", cost)
	}
}

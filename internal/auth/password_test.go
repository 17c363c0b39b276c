package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "secret" || !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash = %q, want bcrypt digest", hash)
	}
	if !CheckPassword("secret", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same plaintext are identical; salt missing")
	}
}

func TestCheckPassword_GarbageHash(t *testing.T) {
	if CheckPassword("secret", "not-a-bcrypt-hash") {
		t.Error("garbage hash verified")
	}
}

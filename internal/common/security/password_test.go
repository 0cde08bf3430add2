package security

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Secret1!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "Secret1!" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPasswordHash("Secret1!", hash) {
		t.Fatal("CheckPasswordHash rejected the right password")
	}
	if CheckPasswordHash("secret1!", hash) {
		t.Fatal("CheckPasswordHash accepted a wrong password")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	a, err := HashPassword("same")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	b, err := HashPassword("same")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if a == b {
		t.Fatal("expected different hashes for the same password")
	}
}

func TestCheckPasswordHashMalformed(t *testing.T) {
	if CheckPasswordHash("anything", "not-a-bcrypt-hash") {
		t.Fatal("malformed hash accepted")
	}
}

func TestCheckDummyPasswordUsesPasswordCost(t *testing.T) {
	CheckDummyPassword("anything")

	cost, err := bcrypt.Cost(dummyHash)
	if err != nil {
		t.Fatalf("Cost: %v", err)
	}
	if cost != PasswordCost {
		t.Fatalf("dummy hash cost = %d, want %d", cost, PasswordCost)
	}
	if bcrypt.CompareHashAndPassword(dummyHash, []byte("anything")) == nil {
		t.Fatal("dummy hash matched a caller password")
	}
}

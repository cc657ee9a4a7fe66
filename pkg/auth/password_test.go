package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash should not equal the plaintext password")
	}
	if !CheckPassword("s3cret", hash) {
		t.Fatal("correct password should verify")
	}
	if CheckPassword("wrong", hash) {
		t.Fatal("wrong password should not verify")
	}
}

func TestCheckPasswordEmptyHash(t *testing.T) {
	// Google sign-in accounts carry no password hash and must never
	// authenticate with a password.
	if CheckPassword("", "") {
		t.Fatal("empty hash should never match")
	}
	if CheckPassword("anything", "") {
		t.Fatal("empty hash should never match")
	}
}

func TestHashesAreSalted(t *testing.T) {
	h1, err := HashPassword("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := HashPassword("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password should differ")
	}
}

package crypto

import "testing"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("super-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if hash == "super-secret" {
		t.Fatal("password stored in clear text")
	}
	if !CheckPasswordHash(hash, "super-secret") {
		t.Fatal("check failed for the right password")
	}
	if CheckPasswordHash(hash, "wrong") {
		t.Fatal("expected failure for wrong password")
	}
}

package security

import (
	"strings"
	"testing"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword("s3cret-pass", hash) {
		t.Fatal("expected correct password to verify")
	}
	if CheckPassword("wrong-pass", hash) {
		t.Fatal("expected wrong password to fail")
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Fatal("malformed stored hash must not verify")
	}
}

func TestHashRefreshTokenDeterministic(t *testing.T) {
	a := HashRefreshToken("raw-token", "pepper")
	b := HashRefreshToken("raw-token", "pepper")
	if a != b {
		t.Fatal("same input must hash identically")
	}
	if HashRefreshToken("raw-token", "other-pepper") == a {
		t.Fatal("different pepper must change the hash")
	}
	if HashRefreshToken("other-token", "pepper") == a {
		t.Fatal("different token must change the hash")
	}
	if len(a) != 64 || strings.ToLower(a) != a {
		t.Fatalf("expected lowercase hex sha256, got %q", a)
	}
}

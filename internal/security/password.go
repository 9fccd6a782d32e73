package security

import "golang.org/x/crypto/bcrypt"

// HashPassword turns a plaintext password into a storable bcrypt hash.
// bcrypt salts itself, so two hashes of the same password differ.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored hash. A malformed
// stored hash yields false rather than an error, so callers always get a
// plain boolean.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

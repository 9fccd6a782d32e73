package security

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashRefreshToken derives the storable form of a refresh token. SHA-256
// with a server-side pepper: deterministic so the active row can be matched
// by hash, one-way so the raw token never touches the database.
func HashRefreshToken(raw, pepper string) string {
	sum := sha256.Sum256([]byte(raw + pepper))
	return hex.EncodeToString(sum[:])
}

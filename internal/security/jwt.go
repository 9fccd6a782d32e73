package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/applyr/applyr/internal/domain"
)

// Claims is the signed payload of both token kinds. TokenType distinguishes
// access tokens from refresh tokens; a token of the wrong kind never parses.
type Claims struct {
	TokenType        string  `json:"token_type"`
	Username         string  `json:"username,omitempty"`
	TelegramUsername *string `json:"telegram_username,omitempty"`
	jwt.RegisteredClaims
}

// UserID decodes the subject claim back into the numeric user id.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, errors.New("malformed subject claim")
	}
	return uint(id), nil
}

// TokenCodec signs and verifies access and refresh tokens with a single
// shared HS256 secret. There is no key rotation.
type TokenCodec struct {
	issuer string
	secret []byte
}

func NewTokenCodec(issuer, secret string) *TokenCodec {
	return &TokenCodec{issuer: issuer, secret: []byte(secret)}
}

func (c *TokenCodec) SignAccessToken(user *domain.User, ttl time.Duration) (string, error) {
	claims := Claims{
		TokenType:        "access",
		Username:         user.Username,
		TelegramUsername: user.TelegramUsername,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *TokenCodec) SignRefreshToken(userID uint, ttl time.Duration) (string, error) {
	claims := Claims{
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *TokenCodec) ParseAccessToken(raw string) (*Claims, error) {
	return c.parse(raw, "access")
}

func (c *TokenCodec) ParseRefreshToken(raw string) (*Claims, error) {
	return c.parse(raw, "refresh")
}

// parse checks signature, algorithm, expiry and token kind in one step. Any
// failure is an error; callers treat every error the same way, as
// unauthenticated.
func (c *TokenCodec) parse(raw, tokenType string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing algorithm")
		}
		return c.secret, nil
	}, jwt.WithIssuer(c.issuer))
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != tokenType {
		return nil, errors.New("unexpected token type")
	}
	return claims, nil
}

package service

import "errors"

// Domain failures the HTTP boundary maps 1:1 to status codes. Anything else
// escaping a service is an internal error.
var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRefreshInvalid     = errors.New("invalid refresh token")
	ErrRefreshExpired     = errors.New("refresh token expired or revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrTelegramTaken      = errors.New("telegram username already bound")
	ErrVacancyNotFound    = errors.New("vacancy not found")
	ErrStageNotFound      = errors.New("stage not found")
)

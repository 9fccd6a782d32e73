package handler

import (
	"errors"
	"net/http"

	"github.com/applyr/applyr/internal/http/response"
	"github.com/applyr/applyr/internal/service"
)

// MapServiceError is the single place where typed service failures become
// status codes. The service layer stays HTTP-agnostic; anything unmapped is
// an internal failure and says nothing about its cause.
func MapServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		response.Error(w, http.StatusConflict, "USERNAME_TAKEN", "username already taken")
	case errors.Is(err, service.ErrTelegramTaken):
		response.Error(w, http.StatusConflict, "TELEGRAM_TAKEN", "telegram username already bound to another account")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password")
	case errors.Is(err, service.ErrRefreshInvalid):
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid refresh token")
	case errors.Is(err, service.ErrRefreshExpired):
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "refresh token expired or revoked")
	case errors.Is(err, service.ErrUserNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "user not found")
	case errors.Is(err, service.ErrVacancyNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "vacancy not found")
	case errors.Is(err, service.ErrStageNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "stage not found")
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

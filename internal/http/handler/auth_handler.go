package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/applyr/applyr/internal/config"
	"github.com/applyr/applyr/internal/http/middleware"
	"github.com/applyr/applyr/internal/http/response"
	"github.com/applyr/applyr/internal/observability"
	"github.com/applyr/applyr/internal/service"
)

const refreshCookieName = "refresh_token"

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userInfoResponse struct {
	ID               uint      `json:"id"`
	Username         string    `json:"username"`
	TelegramUsername *string   `json:"telegram_username,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type AuthHandler struct {
	auth *service.AuthService
	cfg  *config.Config
}

func NewAuthHandler(auth *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{auth: auth, cfg: cfg}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	pair, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		MapServiceError(w, err)
		return
	}
	observability.Audit(r, "auth.register", "username", req.Username)
	h.setRefreshCookie(w, pair.RefreshToken)
	response.JSON(w, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, TokenType: "bearer"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	pair, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		MapServiceError(w, err)
		return
	}
	observability.Audit(r, "auth.login", "username", req.Username)
	h.setRefreshCookie(w, pair.RefreshToken)
	response.JSON(w, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, TokenType: "bearer"})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := cookieValue(r, refreshCookieName)
	if raw == "" {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing refresh token")
		return
	}
	access, err := h.auth.Refresh(r.Context(), raw)
	if err != nil {
		MapServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tokenResponse{AccessToken: access, TokenType: "bearer"})
}

// Logout always reports success; there is nothing useful to tell a caller
// whose token was already gone.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context(), cookieValue(r, refreshCookieName))
	h.clearRefreshCookie(w)
	observability.Audit(r, "auth.logout")
	response.JSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

func (h *AuthHandler) UpdateTelegram(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token")
		return
	}
	var req struct {
		TelegramUsername string `json:"telegram_username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TelegramUsername == "" {
		response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "telegram_username is required")
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token")
		return
	}
	if err := h.auth.BindTelegram(r.Context(), userID, req.TelegramUsername); err != nil {
		MapServiceError(w, err)
		return
	}
	observability.Audit(r, "auth.bind_telegram", "user_id", userID)
	response.JSON(w, http.StatusOK, messageResponse{Message: "telegram username updated"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token")
		return
	}
	user, err := h.auth.CurrentUser(r.Context(), claims)
	if err != nil {
		// The account vanished after the token was issued. Anything else is
		// a storage failure and must not read as a dead session.
		if errors.Is(err, service.ErrUserNotFound) {
			response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown user")
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}
	response.JSON(w, http.StatusOK, userInfoResponse{
		ID:               user.ID,
		Username:         user.Username,
		TelegramUsername: user.TelegramUsername,
		CreatedAt:        user.CreatedAt,
	})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "malformed request body")
		return req, false
	}
	if !usernameRe.MatchString(req.Username) {
		response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "username must be 3-50 characters of letters, digits or underscore")
		return req, false
	}
	if len(req.Password) < 6 || len(req.Password) > 100 {
		response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "password must be 6-100 characters")
		return req, false
	}
	return req, true
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/auth",
		Domain:   h.cfg.CookieDomain,
		MaxAge:   int(h.cfg.RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: sameSite(h.cfg.CookieSameSite),
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/auth",
		Domain:   h.cfg.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: sameSite(h.cfg.CookieSameSite),
	})
}

func sameSite(mode string) http.SameSite {
	switch mode {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

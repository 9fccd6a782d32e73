package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/applyr/applyr/internal/config"
	"github.com/applyr/applyr/internal/domain"
	"github.com/applyr/applyr/internal/http/middleware"
	"github.com/applyr/applyr/internal/repository"
	"github.com/applyr/applyr/internal/security"
	"github.com/applyr/applyr/internal/service"
)

// stubUserRepo serves a single user, or fails every lookup with err.
type stubUserRepo struct {
	user *domain.User
	err  error
}

func (r *stubUserRepo) FindByID(id uint) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.user == nil || r.user.ID != id {
		return nil, repository.ErrUserNotFound
	}
	cp := *r.user
	return &cp, nil
}

func (r *stubUserRepo) FindByUsername(string) (*domain.User, error) {
	return nil, repository.ErrUserNotFound
}

func (r *stubUserRepo) FindByTelegram(string) (*domain.User, error) {
	return nil, repository.ErrUserNotFound
}

func (r *stubUserRepo) Create(*domain.User) error { return nil }

func (r *stubUserRepo) CreateWithRefreshToken(*domain.User, func(uint) (*domain.RefreshToken, error)) error {
	return nil
}

func (r *stubUserRepo) BindTelegram(uint, string) error { return nil }

func meRequest(t *testing.T, users repository.UserRepository) *httptest.ResponseRecorder {
	t.Helper()
	codec := security.NewTokenCodec("applyr", "0123456789abcdef0123456789abcdef")
	auth := service.NewAuthService(users, nil, codec, nil, "pepper", time.Minute, time.Hour)
	h := NewAuthHandler(auth, &config.Config{CookieSameSite: "lax"})

	token, err := codec.SignAccessToken(&domain.User{ID: 1, Username: "alice"}, time.Minute)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	middleware.Auth(codec)(http.HandlerFunc(h.Me)).ServeHTTP(rec, req)
	return rec
}

func TestMeReturnsUser(t *testing.T) {
	rec := meRequest(t, &stubUserRepo{user: &domain.User{ID: 1, Username: "alice"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMeVanishedAccountIsUnauthorized(t *testing.T) {
	rec := meRequest(t, &stubUserRepo{})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a deleted account, got %d", rec.Code)
	}
}

func TestMeStorageFailureIsInternal(t *testing.T) {
	// A database outage must not tell the client its session is dead.
	rec := meRequest(t, &stubUserRepo{err: errors.New("dial tcp: connection refused")})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for a storage failure, got %d", rec.Code)
	}
}

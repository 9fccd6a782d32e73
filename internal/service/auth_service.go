package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/applyr/applyr/internal/domain"
	"github.com/applyr/applyr/internal/observability"
	"github.com/applyr/applyr/internal/repository"
	"github.com/applyr/applyr/internal/security"
)

// TokenPair is what register and login hand back: the access token goes into
// the response body, the refresh token into an HttpOnly cookie.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	users       repository.UserRepository
	tokens      repository.RefreshTokenRepository
	codec       *security.TokenCodec
	handleCache HandleLookupCache
	pepper      string
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

func NewAuthService(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	codec *security.TokenCodec,
	handleCache HandleLookupCache,
	pepper string,
	accessTTL, refreshTTL time.Duration,
) *AuthService {
	if handleCache == nil {
		handleCache = NewNoopHandleLookupCache()
	}
	return &AuthService{
		users:       users,
		tokens:      tokens,
		codec:       codec,
		handleCache: handleCache,
		pepper:      pepper,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
	}
}

// Register creates the user and its first session. The username pre-check is
// an optimization only; under a race the store's unique constraint is the
// final arbiter and also surfaces as ErrUsernameTaken.
func (s *AuthService) Register(ctx context.Context, username, password string) (*TokenPair, error) {
	if _, err := s.users.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{Username: username, PasswordHash: hash}

	// User insert and first session row commit together; the token is signed
	// inside the transaction once the id is assigned.
	var refresh string
	err = s.users.CreateWithRefreshToken(user, func(userID uint) (*domain.RefreshToken, error) {
		refresh, err = s.codec.SignRefreshToken(userID, s.refreshTTL)
		if err != nil {
			return nil, fmt.Errorf("sign refresh token: %w", err)
		}
		return &domain.RefreshToken{
			TokenHash: security.HashRefreshToken(refresh, s.pepper),
			ExpiresAt: time.Now().Add(s.refreshTTL),
		}, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	access, err := s.codec.SignAccessToken(user, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	slog.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Login verifies credentials and rotates the user's session. The failure
// message never reveals whether the username or the password was wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthLogin("invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		observability.RecordAuthLogin("error")
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !security.CheckPassword(password, user.PasswordHash) {
		observability.RecordAuthLogin("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		observability.RecordAuthLogin("error")
		return nil, err
	}
	observability.RecordAuthLogin("success")
	slog.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return pair, nil
}

// Refresh mints a fresh access token for a valid refresh token. The token
// must verify, the user must still exist, and the server-side row must match
// the presented token's hash. Deleting the row revokes the token even though
// its signature still verifies.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (string, error) {
	claims, err := s.codec.ParseRefreshToken(rawRefresh)
	if err != nil {
		observability.RecordAuthRefresh("invalid_token")
		return "", ErrRefreshInvalid
	}
	userID, err := claims.UserID()
	if err != nil {
		observability.RecordAuthRefresh("invalid_token")
		return "", ErrRefreshInvalid
	}

	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthRefresh("user_gone")
			return "", ErrUserNotFound
		}
		observability.RecordAuthRefresh("error")
		return "", fmt.Errorf("find user: %w", err)
	}

	stored, err := s.tokens.GetActive(userID)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			observability.RecordAuthRefresh("revoked")
			return "", ErrRefreshExpired
		}
		observability.RecordAuthRefresh("error")
		return "", fmt.Errorf("load refresh token: %w", err)
	}
	if stored.TokenHash != security.HashRefreshToken(rawRefresh, s.pepper) {
		observability.RecordAuthRefresh("revoked")
		return "", ErrRefreshExpired
	}

	// Fresh access token from current user data, so a just-bound telegram
	// handle shows up without waiting out the old token's TTL.
	access, err := s.codec.SignAccessToken(user, s.accessTTL)
	if err != nil {
		observability.RecordAuthRefresh("error")
		return "", fmt.Errorf("sign access token: %w", err)
	}
	observability.RecordAuthRefresh("success")
	return access, nil
}

// Logout deletes the server-side refresh record. It is deliberately lenient:
// an absent, malformed or already-revoked token still reports success.
func (s *AuthService) Logout(ctx context.Context, rawRefresh string) {
	if rawRefresh == "" {
		observability.RecordAuthLogout("no_token")
		return
	}
	claims, err := s.codec.ParseRefreshToken(rawRefresh)
	if err != nil {
		observability.RecordAuthLogout("invalid_token")
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		observability.RecordAuthLogout("invalid_token")
		return
	}
	deleted, err := s.tokens.DeleteByUser(userID)
	if err != nil {
		slog.WarnContext(ctx, "logout cleanup failed", "user_id", userID, "error", err)
		observability.RecordAuthLogout("error")
		return
	}
	if deleted {
		slog.InfoContext(ctx, "user logged out", "user_id", userID)
	}
	observability.RecordAuthLogout("success")
}

// BindTelegram attaches a telegram handle to the user. Binding a handle held
// by a different user fails; re-binding one's own handle is idempotent.
func (s *AuthService) BindTelegram(ctx context.Context, userID uint, handle string) error {
	existing, err := s.users.FindByTelegram(handle)
	switch {
	case err == nil:
		if existing.ID != userID {
			return ErrTelegramTaken
		}
		return nil
	case !errors.Is(err, repository.ErrUserNotFound):
		return fmt.Errorf("check telegram handle: %w", err)
	}

	if err := s.users.BindTelegram(userID, handle); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUser):
			return ErrTelegramTaken
		case errors.Is(err, repository.ErrUserNotFound):
			return ErrUserNotFound
		}
		return fmt.Errorf("bind telegram: %w", err)
	}
	// The handle may have been cached as a miss before the user linked it.
	if err := s.handleCache.InvalidateNamespace(ctx, handleLookupNamespace); err != nil {
		slog.WarnContext(ctx, "handle lookup cache invalidation failed", "error", err)
	}
	slog.InfoContext(ctx, "telegram handle bound", "user_id", userID)
	return nil
}

// CurrentUser resolves the account behind verified access-token claims.
func (s *AuthService) CurrentUser(ctx context.Context, claims *security.Claims) (*domain.User, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrUserNotFound
	}
	return s.UserByID(ctx, userID)
}

// UserByID resolves an account by id, for callers that carry a bare user id
// rather than claims, like the internal bot surface.
func (s *AuthService) UserByID(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// FindByTelegram is the bot-facing lookup, with negative caching: most
// forwarded messages come from handles that never linked an account.
func (s *AuthService) FindByTelegram(ctx context.Context, handle string) (*domain.User, error) {
	if miss, err := s.handleCache.Get(ctx, handleLookupNamespace, handle); err == nil && miss {
		return nil, ErrUserNotFound
	}
	user, err := s.users.FindByTelegram(handle)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			if cerr := s.handleCache.Set(ctx, handleLookupNamespace, handle, s.handleCache.MissTTL()); cerr != nil {
				slog.WarnContext(ctx, "handle lookup cache set failed", "error", cerr)
			}
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find by telegram: %w", err)
	}
	return user, nil
}

// SweepExpiredRefreshTokens removes every expired server-side refresh row.
// Invoked by the background sweeper and the sweep CLI subcommand.
func (s *AuthService) SweepExpiredRefreshTokens(ctx context.Context) (int64, error) {
	count, err := s.tokens.SweepExpired()
	if err != nil {
		return 0, fmt.Errorf("sweep refresh tokens: %w", err)
	}
	if count > 0 {
		slog.InfoContext(ctx, "expired refresh tokens swept", "count", count)
	}
	return count, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*TokenPair, error) {
	access, err := s.codec.SignAccessToken(user, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.codec.SignRefreshToken(user.ID, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	if err := s.tokens.Replace(&domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: security.HashRefreshToken(refresh, s.pepper),
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

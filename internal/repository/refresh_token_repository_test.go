package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/applyr/applyr/internal/domain"
)

func TestRefreshTokenRepositoryReplaceKeepsSingleRow(t *testing.T) {
	db := openTestDB(t)
	repo := NewRefreshTokenRepository(db)

	first := &domain.RefreshToken{UserID: 1, TokenHash: "h1", ExpiresAt: time.Now().Add(time.Hour)}
	if err := repo.Replace(first); err != nil {
		t.Fatalf("replace: %v", err)
	}
	second := &domain.RefreshToken{UserID: 1, TokenHash: "h2", ExpiresAt: time.Now().Add(time.Hour)}
	if err := repo.Replace(second); err != nil {
		t.Fatalf("replace: %v", err)
	}

	var count int64
	if err := db.Model(&domain.RefreshToken{}).Where("user_id = ?", 1).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single row per user, got %d", count)
	}

	active, err := repo.GetActive(1)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active.TokenHash != "h2" {
		t.Fatalf("expected latest token to survive, got %q", active.TokenHash)
	}
}

func TestRefreshTokenRepositoryReplaceLeavesOtherUsersAlone(t *testing.T) {
	db := openTestDB(t)
	repo := NewRefreshTokenRepository(db)

	if err := repo.Replace(&domain.RefreshToken{UserID: 1, TokenHash: "u1", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := repo.Replace(&domain.RefreshToken{UserID: 2, TokenHash: "u2", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if _, err := repo.GetActive(1); err != nil {
		t.Fatalf("user 1 row must survive user 2 replace: %v", err)
	}
}

func TestRefreshTokenRepositoryGetActiveSkipsExpired(t *testing.T) {
	db := openTestDB(t)
	repo := NewRefreshTokenRepository(db)

	expired := &domain.RefreshToken{UserID: 3, TokenHash: "old", ExpiresAt: time.Now().Add(-time.Minute)}
	if err := db.Create(expired).Error; err != nil {
		t.Fatalf("seed expired: %v", err)
	}

	if _, err := repo.GetActive(3); !errors.Is(err, ErrRefreshTokenNotFound) {
		t.Fatalf("expected ErrRefreshTokenNotFound, got %v", err)
	}
}

func TestRefreshTokenRepositoryDeleteByUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewRefreshTokenRepository(db)

	if err := repo.Replace(&domain.RefreshToken{UserID: 4, TokenHash: "h", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	deleted, err := repo.DeleteByUser(4)
	if err != nil {
		t.Fatalf("delete by user: %v", err)
	}
	if !deleted {
		t.Fatal("expected a row to be deleted")
	}

	deleted, err = repo.DeleteByUser(4)
	if err != nil {
		t.Fatalf("delete by user: %v", err)
	}
	if deleted {
		t.Fatal("second delete must report nothing removed")
	}
}

func TestRefreshTokenRepositorySweepExpired(t *testing.T) {
	db := openTestDB(t)
	repo := NewRefreshTokenRepository(db)

	rows := []*domain.RefreshToken{
		{UserID: 1, TokenHash: "live", ExpiresAt: time.Now().Add(time.Hour)},
		{UserID: 2, TokenHash: "dead1", ExpiresAt: time.Now().Add(-time.Minute)},
		{UserID: 3, TokenHash: "dead2", ExpiresAt: time.Now().Add(-time.Hour)},
	}
	for _, row := range rows {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	swept, err := repo.SweepExpired()
	if err != nil {
		t.Fatalf("sweep expired: %v", err)
	}
	if swept != 2 {
		t.Fatalf("expected 2 swept rows, got %d", swept)
	}
	if _, err := repo.GetActive(1); err != nil {
		t.Fatalf("live row must survive the sweep: %v", err)
	}
}

package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/applyr/applyr/internal/domain"
	"github.com/applyr/applyr/internal/observability"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

type RefreshTokenRepository interface {
	// Replace deletes every existing row for the user and inserts the new
	// one in a single transaction. This is the delete-on-rotate policy: at
	// most one active refresh token per user at any time.
	Replace(token *domain.RefreshToken) error
	// GetActive returns the newest still-unexpired row for the user.
	GetActive(userID uint) (*domain.RefreshToken, error)
	// DeleteByUser removes the user's rows; true iff at least one existed.
	DeleteByUser(userID uint) (bool, error)
	// SweepExpired deletes every past-expiry row and reports the count.
	SweepExpired() (int64, error)
}

type GormRefreshTokenRepository struct{ db *gorm.DB }

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &GormRefreshTokenRepository{db: db}
}

func (r *GormRefreshTokenRepository) Replace(token *domain.RefreshToken) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", token.UserID).Delete(&domain.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "refresh_token", "replace", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "refresh_token", "replace", "success")
	return nil
}

func (r *GormRefreshTokenRepository) GetActive(userID uint) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Order("created_at DESC").
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "refresh_token", "get_active", "not_found")
			return nil, ErrRefreshTokenNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "refresh_token", "get_active", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "refresh_token", "get_active", "success")
	return &t, nil
}

func (r *GormRefreshTokenRepository) DeleteByUser(userID uint) (bool, error) {
	res := r.db.Where("user_id = ?", userID).Delete(&domain.RefreshToken{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "refresh_token", "delete_by_user", "error")
		return false, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "refresh_token", "delete_by_user", "success")
	return res.RowsAffected > 0, nil
}

func (r *GormRefreshTokenRepository) SweepExpired() (int64, error) {
	res := r.db.Where("expires_at <= ?", time.Now()).Delete(&domain.RefreshToken{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "refresh_token", "sweep_expired", "error")
		return res.RowsAffected, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "refresh_token", "sweep_expired", "success")
	observability.RecordSweepDeleted(context.Background(), res.RowsAffected)
	return res.RowsAffected, nil
}

package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/applyr/applyr/internal/domain"
	"github.com/applyr/applyr/internal/observability"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("duplicate user")
)

type UserRepository interface {
	FindByID(id uint) (*domain.User, error)
	FindByUsername(username string) (*domain.User, error)
	FindByTelegram(handle string) (*domain.User, error)
	Create(user *domain.User) error
	// CreateWithRefreshToken inserts the user and its first refresh-token row
	// in one transaction, so registration never leaves a user without a
	// session behind a partial failure. buildToken runs after the insert
	// assigns the user id, since the token material embeds it.
	CreateWithRefreshToken(user *domain.User, buildToken func(userID uint) (*domain.RefreshToken, error)) error
	BindTelegram(userID uint, handle string) error
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) FindByID(id uint) (*domain.User, error) {
	return r.findOne("find_by_id", "id = ?", id)
}

func (r *GormUserRepository) FindByUsername(username string) (*domain.User, error) {
	return r.findOne("find_by_username", "username = ?", username)
}

func (r *GormUserRepository) FindByTelegram(handle string) (*domain.User, error) {
	return r.findOne("find_by_telegram", "telegram_username = ?", handle)
}

func (r *GormUserRepository) findOne(op string, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.Where(query, arg).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "user", op, "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "user", op, "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", op, "success")
	return &u, nil
}

func (r *GormUserRepository) Create(user *domain.User) error {
	err := r.db.Create(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(context.Background(), "user", "create", "conflict")
			return ErrDuplicateUser
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "create", "success")
	return nil
}

func (r *GormUserRepository) CreateWithRefreshToken(user *domain.User, buildToken func(userID uint) (*domain.RefreshToken, error)) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		token, err := buildToken(user.ID)
		if err != nil {
			return err
		}
		token.UserID = user.ID
		return tx.Create(token).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(context.Background(), "user", "create_with_refresh_token", "conflict")
			return ErrDuplicateUser
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "create_with_refresh_token", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "create_with_refresh_token", "success")
	return nil
}

func (r *GormUserRepository) BindTelegram(userID uint, handle string) error {
	res := r.db.Model(&domain.User{}).Where("id = ?", userID).Update("telegram_username", handle)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(context.Background(), "user", "bind_telegram", "conflict")
			return ErrDuplicateUser
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "bind_telegram", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "user", "bind_telegram", "not_found")
		return ErrUserNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "bind_telegram", "success")
	return nil
}

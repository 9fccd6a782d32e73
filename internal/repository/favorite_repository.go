package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/applyr/applyr/internal/domain"
	"github.com/applyr/applyr/internal/observability"
)

var ErrFavoriteNotFound = errors.New("favorite not found")

type FavoriteRepository interface {
	FindByVacancyAndUser(vacancyID, userID uint) (*domain.Favorite, error)
	// Upsert creates the (user, vacancy) row or overwrites its notes.
	Upsert(f *domain.Favorite) error
}

type GormFavoriteRepository struct{ db *gorm.DB }

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository { return &GormFavoriteRepository{db: db} }

func (r *GormFavoriteRepository) FindByVacancyAndUser(vacancyID, userID uint) (*domain.Favorite, error) {
	var f domain.Favorite
	err := r.db.Where("vacancy_id = ? AND user_id = ?", vacancyID, userID).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "favorite", "find", "not_found")
			return nil, ErrFavoriteNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "favorite", "find", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "favorite", "find", "success")
	return &f, nil
}

func (r *GormFavoriteRepository) Upsert(f *domain.Favorite) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "vacancy_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"notes", "updated_at"}),
	}).Create(f).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "favorite", "upsert", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "favorite", "upsert", "success")
	return nil
}

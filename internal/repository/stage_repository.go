package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/applyr/applyr/internal/domain"
	"github.com/applyr/applyr/internal/observability"
)

var ErrStageNotFound = errors.New("stage not found")

type StageRepository interface {
	Create(s *domain.Stage) error
	FindByID(id uint) (*domain.Stage, error)
	ListByVacancy(vacancyID uint) ([]domain.Stage, error)
	Update(s *domain.Stage) error
	Delete(id uint) error
}

type GormStageRepository struct{ db *gorm.DB }

func NewStageRepository(db *gorm.DB) StageRepository { return &GormStageRepository{db: db} }

func (r *GormStageRepository) Create(s *domain.Stage) error {
	if err := r.db.Create(s).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "stage", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "stage", "create", "success")
	return nil
}

func (r *GormStageRepository) FindByID(id uint) (*domain.Stage, error) {
	var s domain.Stage
	err := r.db.First(&s, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "stage", "find_by_id", "not_found")
			return nil, ErrStageNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "stage", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "stage", "find_by_id", "success")
	return &s, nil
}

func (r *GormStageRepository) ListByVacancy(vacancyID uint) ([]domain.Stage, error) {
	var stages []domain.Stage
	err := r.db.Where("vacancy_id = ?", vacancyID).Order("created_at ASC").Find(&stages).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "stage", "list_by_vacancy", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "stage", "list_by_vacancy", "success")
	return stages, nil
}

func (r *GormStageRepository) Update(s *domain.Stage) error {
	if err := r.db.Save(s).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "stage", "update", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "stage", "update", "success")
	return nil
}

func (r *GormStageRepository) Delete(id uint) error {
	res := r.db.Delete(&domain.Stage{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "stage", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "stage", "delete", "not_found")
		return ErrStageNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "stage", "delete", "success")
	return nil
}

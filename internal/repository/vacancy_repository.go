package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/applyr/applyr/internal/domain"
	"github.com/applyr/applyr/internal/observability"
)

var ErrVacancyNotFound = errors.New("vacancy not found")

type VacancyRepository interface {
	Create(v *domain.Vacancy) error
	FindByID(id uint) (*domain.Vacancy, error)
	ListByUser(userID uint) ([]domain.Vacancy, error)
	Update(v *domain.Vacancy) error
	Delete(id uint) error
}

type GormVacancyRepository struct{ db *gorm.DB }

func NewVacancyRepository(db *gorm.DB) VacancyRepository { return &GormVacancyRepository{db: db} }

func (r *GormVacancyRepository) Create(v *domain.Vacancy) error {
	if err := r.db.Create(v).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "vacancy", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "vacancy", "create", "success")
	return nil
}

func (r *GormVacancyRepository) FindByID(id uint) (*domain.Vacancy, error) {
	var v domain.Vacancy
	err := r.db.Preload("Stages").First(&v, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "vacancy", "find_by_id", "not_found")
			return nil, ErrVacancyNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "vacancy", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "vacancy", "find_by_id", "success")
	return &v, nil
}

func (r *GormVacancyRepository) ListByUser(userID uint) ([]domain.Vacancy, error) {
	var vacancies []domain.Vacancy
	err := r.db.Preload("Stages").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&vacancies).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "vacancy", "list_by_user", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "vacancy", "list_by_user", "success")
	return vacancies, nil
}

func (r *GormVacancyRepository) Update(v *domain.Vacancy) error {
	if err := r.db.Save(v).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "vacancy", "update", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "vacancy", "update", "success")
	return nil
}

func (r *GormVacancyRepository) Delete(id uint) error {
	res := r.db.Delete(&domain.Vacancy{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "vacancy", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "vacancy", "delete", "not_found")
		return ErrVacancyNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "vacancy", "delete", "success")
	return nil
}

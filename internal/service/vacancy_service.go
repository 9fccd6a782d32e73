package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/applyr/applyr/internal/domain"
	"github.com/applyr/applyr/internal/observability"
	"github.com/applyr/applyr/internal/repository"
)

type VacancyInput struct {
	Name        string
	Link        string
	CompanyName string
	Description string
}

type VacancyService struct {
	vacancies repository.VacancyRepository
}

func NewVacancyService(vacancies repository.VacancyRepository) *VacancyService {
	return &VacancyService{vacancies: vacancies}
}

func (s *VacancyService) Create(ctx context.Context, userID uint, in VacancyInput) (*domain.Vacancy, error) {
	v := &domain.Vacancy{
		UserID:      userID,
		Name:        in.Name,
		Link:        in.Link,
		CompanyName: in.CompanyName,
		Description: in.Description,
	}
	if err := s.vacancies.Create(v); err != nil {
		return nil, fmt.Errorf("create vacancy: %w", err)
	}
	slog.InfoContext(ctx, "vacancy created", "vacancy_id", v.ID, "user_id", userID)
	return v, nil
}

// IngestFromBot records a vacancy the companion bot parsed out of a
// forwarded posting. Same write path as Create, separate audit trail.
func (s *VacancyService) IngestFromBot(ctx context.Context, userID uint, in VacancyInput) (*domain.Vacancy, error) {
	v, err := s.Create(ctx, userID, in)
	if err != nil {
		observability.RecordBotIngest(ctx, "error")
		return nil, err
	}
	observability.RecordBotIngest(ctx, "success")
	return v, nil
}

// Get returns the vacancy only to its owner; foreign rows read as not found.
func (s *VacancyService) Get(ctx context.Context, userID, vacancyID uint) (*domain.Vacancy, error) {
	v, err := s.vacancies.FindByID(vacancyID)
	if err != nil {
		if errors.Is(err, repository.ErrVacancyNotFound) {
			return nil, ErrVacancyNotFound
		}
		return nil, fmt.Errorf("find vacancy: %w", err)
	}
	if v.UserID != userID {
		return nil, ErrVacancyNotFound
	}
	return v, nil
}

func (s *VacancyService) ListByUser(ctx context.Context, userID uint) ([]domain.Vacancy, error) {
	vacancies, err := s.vacancies.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list vacancies: %w", err)
	}
	return vacancies, nil
}

func (s *VacancyService) Update(ctx context.Context, userID, vacancyID uint, in VacancyInput) (*domain.Vacancy, error) {
	v, err := s.Get(ctx, userID, vacancyID)
	if err != nil {
		return nil, err
	}
	v.Name = in.Name
	v.Link = in.Link
	v.CompanyName = in.CompanyName
	v.Description = in.Description
	if err := s.vacancies.Update(v); err != nil {
		return nil, fmt.Errorf("update vacancy: %w", err)
	}
	return v, nil
}

func (s *VacancyService) Delete(ctx context.Context, userID, vacancyID uint) error {
	if _, err := s.Get(ctx, userID, vacancyID); err != nil {
		return err
	}
	if err := s.vacancies.Delete(vacancyID); err != nil {
		if errors.Is(err, repository.ErrVacancyNotFound) {
			return ErrVacancyNotFound
		}
		return fmt.Errorf("delete vacancy: %w", err)
	}
	slog.InfoContext(ctx, "vacancy deleted", "vacancy_id", vacancyID, "user_id", userID)
	return nil
}

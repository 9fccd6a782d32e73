package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/applyr/applyr/internal/domain"
	"github.com/applyr/applyr/internal/repository"
)

type StageInput struct {
	StageType   domain.StageType
	Title       string
	Description string
}

type StageService struct {
	stages    repository.StageRepository
	vacancies *VacancyService
}

func NewStageService(stages repository.StageRepository, vacancies *VacancyService) *StageService {
	return &StageService{stages: stages, vacancies: vacancies}
}

// Create attaches a pipeline step to one of the caller's vacancies. The
// ownership check rides on VacancyService.Get.
func (s *StageService) Create(ctx context.Context, userID, vacancyID uint, in StageInput) (*domain.Stage, error) {
	if _, err := s.vacancies.Get(ctx, userID, vacancyID); err != nil {
		return nil, err
	}
	stage := &domain.Stage{
		VacancyID:   vacancyID,
		StageType:   in.StageType,
		Title:       in.Title,
		Description: in.Description,
	}
	if stage.StageType == "" {
		stage.StageType = domain.StageNew
	}
	if err := s.stages.Create(stage); err != nil {
		return nil, fmt.Errorf("create stage: %w", err)
	}
	slog.InfoContext(ctx, "stage created", "stage_id", stage.ID, "vacancy_id", vacancyID)
	return stage, nil
}

func (s *StageService) Get(ctx context.Context, userID, stageID uint) (*domain.Stage, error) {
	stage, err := s.stages.FindByID(stageID)
	if err != nil {
		if errors.Is(err, repository.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("find stage: %w", err)
	}
	if _, err := s.vacancies.Get(ctx, userID, stage.VacancyID); err != nil {
		return nil, ErrStageNotFound
	}
	return stage, nil
}

func (s *StageService) ListByVacancy(ctx context.Context, userID, vacancyID uint) ([]domain.Stage, error) {
	if _, err := s.vacancies.Get(ctx, userID, vacancyID); err != nil {
		return nil, err
	}
	stages, err := s.stages.ListByVacancy(vacancyID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	return stages, nil
}

func (s *StageService) Update(ctx context.Context, userID, stageID uint, in StageInput) (*domain.Stage, error) {
	stage, err := s.Get(ctx, userID, stageID)
	if err != nil {
		return nil, err
	}
	if in.StageType != "" {
		stage.StageType = in.StageType
	}
	stage.Title = in.Title
	stage.Description = in.Description
	if err := s.stages.Update(stage); err != nil {
		return nil, fmt.Errorf("update stage: %w", err)
	}
	return stage, nil
}

func (s *StageService) Delete(ctx context.Context, userID, stageID uint) error {
	if _, err := s.Get(ctx, userID, stageID); err != nil {
		return err
	}
	if err := s.stages.Delete(stageID); err != nil {
		if errors.Is(err, repository.ErrStageNotFound) {
			return ErrStageNotFound
		}
		return fmt.Errorf("delete stage: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/applyr/applyr/internal/domain"
	"github.com/applyr/applyr/internal/repository"
)

type FavoriteService struct {
	favorites repository.FavoriteRepository
	vacancies *VacancyService
}

func NewFavoriteService(favorites repository.FavoriteRepository, vacancies *VacancyService) *FavoriteService {
	return &FavoriteService{favorites: favorites, vacancies: vacancies}
}

// GetNotes returns the caller's notes for a vacancy, or "" when none exist.
func (s *FavoriteService) GetNotes(ctx context.Context, userID, vacancyID uint) (string, error) {
	if _, err := s.vacancies.Get(ctx, userID, vacancyID); err != nil {
		return "", err
	}
	f, err := s.favorites.FindByVacancyAndUser(vacancyID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrFavoriteNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("find favorite: %w", err)
	}
	return f.Notes, nil
}

func (s *FavoriteService) UpdateNotes(ctx context.Context, userID, vacancyID uint, notes string) (string, error) {
	if _, err := s.vacancies.Get(ctx, userID, vacancyID); err != nil {
		return "", err
	}
	f := &domain.Favorite{UserID: userID, VacancyID: vacancyID, Notes: notes}
	if err := s.favorites.Upsert(f); err != nil {
		return "", fmt.Errorf("upsert favorite: %w", err)
	}
	return f.Notes, nil
}

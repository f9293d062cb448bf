package services

import (
	"context"

	"github.com/Dosada05/lobby-royale/models"
	"github.com/Dosada05/lobby-royale/repositories"
)

type SettingsService interface {
	Get(ctx context.Context) (models.Settings, error)
	Update(ctx context.Context, requester *models.User, settings models.Settings) (models.Settings, error)
}

type settingsService struct {
	settingsRepo repositories.SettingsRepository
}

func NewSettingsService(settingsRepo repositories.SettingsRepository) SettingsService {
	return &settingsService{settingsRepo: settingsRepo}
}

func (s *settingsService) Get(ctx context.Context) (models.Settings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return models.Settings{}, mapRepoError(err)
	}
	return settings, nil
}

// Update меняет глобальные значения по умолчанию для новых лобби. Только admin.
func (s *settingsService) Update(ctx context.Context, requester *models.User, settings models.Settings) (models.Settings, error) {
	if requester == nil || requester.Role != models.RoleAdmin {
		return models.Settings{}, ErrForbiddenOperation
	}
	if settings.MaxPlayers <= 0 {
		return models.Settings{}, ErrInvalidMaxPlayers
	}
	if settings.StartDelay < 0 {
		return models.Settings{}, ErrInvalidStartDelay
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return models.Settings{}, mapRepoError(err)
	}
	return settings, nil
}

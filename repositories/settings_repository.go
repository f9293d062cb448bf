package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/lobby-royale/models"
)

type SettingsRepository interface {
	Get(ctx context.Context) (models.Settings, error)
	Update(ctx context.Context, settings models.Settings) error
}

type postgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) SettingsRepository {
	return &postgresSettingsRepository{db: db}
}

// Get возвращает единственную строку настроек; если строки нет,
// синтезирует значения по умолчанию {100, 60}.
func (r *postgresSettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	var settings models.Settings
	err := r.db.QueryRowContext(ctx,
		`SELECT max_players, start_delay FROM settings WHERE id = 1`,
	).Scan(&settings.MaxPlayers, &settings.StartDelay)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultSettings(), nil
		}
		return models.Settings{}, fmt.Errorf("failed to scan settings: %w", err)
	}
	return settings, nil
}

func (r *postgresSettingsRepository) Update(ctx context.Context, settings models.Settings) error {
	query := `
		INSERT INTO settings (id, max_players, start_delay)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET max_players = EXCLUDED.max_players, start_delay = EXCLUDED.start_delay`

	_, err := r.db.ExecContext(ctx, query, settings.MaxPlayers, settings.StartDelay)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

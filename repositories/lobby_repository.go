package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/lobby-royale/models"
	"github.com/lib/pq"
)

var (
	ErrLobbyNotFound     = errors.New("lobby not found")
	ErrLobbyInvalidAdmin = errors.New("invalid lobby admin reference")
)

type ListLobbiesFilter struct {
	Status  *models.LobbyStatus
	AdminID *int
	Limit   int
	Offset  int
}

type LobbyRepository interface {
	Create(ctx context.Context, lobby *models.Lobby) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Lobby, error)
	List(ctx context.Context, filter ListLobbiesFilter) ([]models.Lobby, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.LobbyStatus) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresLobbyRepository struct {
	db *sql.DB
}

func NewPostgresLobbyRepository(db *sql.DB) LobbyRepository {
	return &postgresLobbyRepository{db: db}
}

func (r *postgresLobbyRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLobbyRepository) Create(ctx context.Context, lobby *models.Lobby) error {
	query := `
		INSERT INTO lobbies (admin_id, status, start_delay, max_players)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		lobby.AdminID,
		lobby.Status,
		lobby.StartDelay,
		lobby.MaxPlayers,
	).Scan(&lobby.ID, &lobby.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" { // foreign_key_violation
				if pqErr.Constraint == "lobbies_admin_id_fkey" {
					return ErrLobbyInvalidAdmin
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresLobbyRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Lobby, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, admin_id, status, start_delay, max_players, created_at
		FROM lobbies
		WHERE id = $1`

	lobby := &models.Lobby{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&lobby.ID,
		&lobby.AdminID,
		&lobby.Status,
		&lobby.StartDelay,
		&lobby.MaxPlayers,
		&lobby.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLobbyNotFound
		}
		return nil, fmt.Errorf("failed to scan lobby: %w", err)
	}
	return lobby, nil
}

func (r *postgresLobbyRepository) List(ctx context.Context, filter ListLobbiesFilter) ([]models.Lobby, error) {
	query := `
		SELECT l.id, l.admin_id, l.status, l.start_delay, l.max_players, l.created_at,
		       (SELECT COUNT(*) FROM users u WHERE u.lobby_id = l.id) AS players_count
		FROM lobbies l
		WHERE ($1::text IS NULL OR l.status = $1)
		  AND ($2::int IS NULL OR l.admin_id = $2)
		ORDER BY l.created_at DESC
		LIMIT $3 OFFSET $4`

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var status interface{}
	if filter.Status != nil {
		status = string(*filter.Status)
	}
	var adminID interface{}
	if filter.AdminID != nil {
		adminID = *filter.AdminID
	}

	rows, err := r.db.QueryContext(ctx, query, status, adminID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lobbies := make([]models.Lobby, 0)
	for rows.Next() {
		var lobby models.Lobby
		scanErr := rows.Scan(
			&lobby.ID,
			&lobby.AdminID,
			&lobby.Status,
			&lobby.StartDelay,
			&lobby.MaxPlayers,
			&lobby.CreatedAt,
			&lobby.PlayersCount,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		lobbies = append(lobbies, lobby)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return lobbies, nil
}

func (r *postgresLobbyRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.LobbyStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE lobbies SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLobbyNotFound)
}

func (r *postgresLobbyRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM lobbies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLobbyNotFound)
}

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
	ErrUserNotFound         = errors.New("user not found")
	ErrUserEmailConflict    = errors.New("user email conflict")
	ErrUserUsernameConflict = errors.New("user username conflict")
	ErrUserLobbyInvalid     = errors.New("user lobby reference invalid")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateRole(ctx context.Context, id int, role models.UserRole) error
	UpdateAvatarKey(ctx context.Context, id int, avatarKey *string) error
	SetLobby(ctx context.Context, exec SQLExecutor, userID int, lobbyID *int) error
	ListByLobbyID(ctx context.Context, exec SQLExecutor, lobbyID int) ([]models.User, error)
	CountByLobbyID(ctx context.Context, exec SQLExecutor, lobbyID int) (int, error)
	ClearLobbyForAll(ctx context.Context, exec SQLExecutor, lobbyID int) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				if pqErr.Constraint == "users_email_key" {
					return ErrUserEmailConflict
				}
				if pqErr.Constraint == "users_username_key" {
					return ErrUserUsernameConflict
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, lobby_id, avatar_key, created_at
		FROM users
		WHERE id = $1`
	return r.scanUser(ctx, r.getExecutor(exec), query, id)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, lobby_id, avatar_key, created_at
		FROM users
		WHERE email = $1`
	return r.scanUser(ctx, r.db, query, email)
}

func (r *postgresUserRepository) UpdateRole(ctx context.Context, id int, role models.UserRole) error {
	query := `UPDATE users SET role = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, role, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateAvatarKey(ctx context.Context, id int, avatarKey *string) error {
	query := `UPDATE users SET avatar_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, avatarKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

// SetLobby выставляет или очищает членство пользователя в лобби.
func (r *postgresUserRepository) SetLobby(ctx context.Context, exec SQLExecutor, userID int, lobbyID *int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE users SET lobby_id = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, lobbyID, userID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" { // foreign_key_violation
				if pqErr.Constraint == "users_lobby_id_fkey" {
					return ErrUserLobbyInvalid
				}
			}
		}
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) ListByLobbyID(ctx context.Context, exec SQLExecutor, lobbyID int) ([]models.User, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, username, email, password_hash, role, lobby_id, avatar_key, created_at
		FROM users
		WHERE lobby_id = $1
		ORDER BY id ASC`

	rows, err := executor.QueryContext(ctx, query, lobbyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		scanErr := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.LobbyID,
			&user.AvatarKey,
			&user.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// CountByLobbyID считает живые членства; players_count нигде не хранится.
func (r *postgresUserRepository) CountByLobbyID(ctx context.Context, exec SQLExecutor, lobbyID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE lobby_id = $1`, lobbyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lobby members: %w", err)
	}
	return count, nil
}

// ClearLobbyForAll снимает членство у всех пользователей лобби. Ноль строк — не ошибка.
func (r *postgresUserRepository) ClearLobbyForAll(ctx context.Context, exec SQLExecutor, lobbyID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `UPDATE users SET lobby_id = NULL WHERE lobby_id = $1`, lobbyID)
	if err != nil {
		return fmt.Errorf("failed to clear lobby memberships: %w", err)
	}
	return nil
}

// scanUser - вспомогательный метод для сканирования одного пользователя
func (r *postgresUserRepository) scanUser(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := executor.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.LobbyID,
		&user.AvatarKey,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

package services

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/Dosada05/lobby-royale/repositories"
)

// mapRepoError переводит ошибки слоя репозиториев в ошибки сервисного слоя.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrLobbyNotFound):
		return ErrLobbyNotFound
	case errors.Is(err, repositories.ErrUserEmailConflict):
		return ErrUserEmailConflict
	case errors.Is(err, repositories.ErrUserUsernameConflict):
		return ErrUserUsernameConflict
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	default:
		return err
	}
}

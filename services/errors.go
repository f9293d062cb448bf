package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed     = errors.New("validation failed")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrUsernameRequired     = errors.New("username is required")
	ErrInvalidRole          = errors.New("invalid role provided")
	ErrInvalidStartDelay    = errors.New("lobby start delay must not be negative")
	ErrInvalidMaxPlayers    = errors.New("lobby max players must be positive")
	ErrNotLobbyMember       = errors.New("user is not a member of this lobby")
	ErrLobbyAlreadyFinished = errors.New("lobby is already finished")

	// Ошибки конфликтов
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrUserUsernameConflict = errors.New("username is already in use")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей (дают больше контекста, чем ErrNotFound)
	ErrUserNotFound  = errors.New("user not found")
	ErrLobbyNotFound = errors.New("lobby not found")

	// Транзиентный отказ хранилища; единственный класс, который вызывающий
	// может безопасно повторить.
	ErrStoreUnavailable = errors.New("store temporarily unavailable")
)

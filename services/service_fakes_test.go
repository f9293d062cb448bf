package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/lobby-royale/game"
	"github.com/Dosada05/lobby-royale/models"
	"github.com/Dosada05/lobby-royale/repositories"
)

// In-memory фейки репозиториев для юнит-тестов сервисного слоя.
// SQLExecutor игнорируется: транзакционность проверяет интеграционный контур.

type fakeTxManager struct{}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int]*models.User)}
}

func (r *fakeUserRepo) addUser(username string, role models.UserRole) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	user := &models.User{
		ID:        r.nextID,
		Username:  username,
		Email:     username + "@example.com",
		Role:      role,
		CreatedAt: time.Now(),
	}
	r.users[user.ID] = user
	r.nextID++
	return user
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
		if existing.Username == user.Username {
			return repositories.ErrUserUsernameConflict
		}
	}
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateRole(ctx context.Context, id int, role models.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.Role = role
	return nil
}

func (r *fakeUserRepo) UpdateAvatarKey(ctx context.Context, id int, avatarKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.AvatarKey = avatarKey
	return nil
}

func (r *fakeUserRepo) SetLobby(ctx context.Context, exec repositories.SQLExecutor, userID int, lobbyID *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.LobbyID = lobbyID
	return nil
}

func (r *fakeUserRepo) ListByLobbyID(ctx context.Context, exec repositories.SQLExecutor, lobbyID int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := make([]models.User, 0)
	for _, user := range r.users {
		if user.LobbyID != nil && *user.LobbyID == lobbyID {
			members = append(members, *user)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

func (r *fakeUserRepo) CountByLobbyID(ctx context.Context, exec repositories.SQLExecutor, lobbyID int) (int, error) {
	members, _ := r.ListByLobbyID(ctx, exec, lobbyID)
	return len(members), nil
}

func (r *fakeUserRepo) ClearLobbyForAll(ctx context.Context, exec repositories.SQLExecutor, lobbyID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.LobbyID != nil && *user.LobbyID == lobbyID {
			user.LobbyID = nil
		}
	}
	return nil
}

type fakeLobbyRepo struct {
	mu      sync.Mutex
	nextID  int
	lobbies map[int]*models.Lobby
}

func newFakeLobbyRepo() *fakeLobbyRepo {
	return &fakeLobbyRepo{nextID: 1, lobbies: make(map[int]*models.Lobby)}
}

func (r *fakeLobbyRepo) Create(ctx context.Context, lobby *models.Lobby) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lobby.ID = r.nextID
	lobby.CreatedAt = time.Now()
	r.nextID++
	clone := *lobby
	r.lobbies[lobby.ID] = &clone
	return nil
}

func (r *fakeLobbyRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Lobby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lobby, ok := r.lobbies[id]
	if !ok {
		return nil, repositories.ErrLobbyNotFound
	}
	clone := *lobby
	return &clone, nil
}

func (r *fakeLobbyRepo) List(ctx context.Context, filter repositories.ListLobbiesFilter) ([]models.Lobby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lobbies := make([]models.Lobby, 0)
	for _, lobby := range r.lobbies {
		if filter.Status != nil && lobby.Status != *filter.Status {
			continue
		}
		if filter.AdminID != nil && lobby.AdminID != *filter.AdminID {
			continue
		}
		lobbies = append(lobbies, *lobby)
	}
	sort.Slice(lobbies, func(i, j int) bool { return lobbies[i].ID < lobbies[j].ID })
	return lobbies, nil
}

func (r *fakeLobbyRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.LobbyStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lobby, ok := r.lobbies[id]
	if !ok {
		return repositories.ErrLobbyNotFound
	}
	lobby.Status = status
	return nil
}

func (r *fakeLobbyRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lobbies[id]; !ok {
		return repositories.ErrLobbyNotFound
	}
	delete(r.lobbies, id)
	return nil
}

type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings *models.Settings
}

func (r *fakeSettingsRepo) Get(ctx context.Context) (models.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return models.DefaultSettings(), nil
	}
	return *r.settings, nil
}

func (r *fakeSettingsRepo) Update(ctx context.Context, settings models.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = &settings
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []game.LobbyEvent
}

func (n *fakeNotifier) BroadcastLobbyEvent(event game.LobbyEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *fakeNotifier) eventTypes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	types := make([]string, 0, len(n.events))
	for _, event := range n.events {
		types = append(types, event.Type)
	}
	return types
}

package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/Dosada05/lobby-royale/game"
	"github.com/Dosada05/lobby-royale/models"
	"github.com/Dosada05/lobby-royale/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lobbyFixture struct {
	users    *fakeUserRepo
	lobbies  *fakeLobbyRepo
	settings *fakeSettingsRepo
	results  *game.ResultStore
	notifier *fakeNotifier
	service  LobbyService
}

func newLobbyFixture() *lobbyFixture {
	f := &lobbyFixture{
		users:    newFakeUserRepo(),
		lobbies:  newFakeLobbyRepo(),
		settings: &fakeSettingsRepo{},
		results:  game.NewResultStore(),
		notifier: &fakeNotifier{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = NewLobbyService(&fakeTxManager{}, f.lobbies, f.users, f.settings, f.results, f.notifier, logger)
	return f
}

func (f *lobbyFixture) join(t *testing.T, lobbyID int, usernames ...string) []*models.User {
	t.Helper()
	users := make([]*models.User, 0, len(usernames))
	lobby := lobbyID
	for _, name := range usernames {
		user := f.users.addUser(name, models.RolePlayer)
		require.NoError(t, f.users.SetLobby(context.Background(), nil, user.ID, &lobby))
		users = append(users, user)
	}
	return users
}

func TestCreateLobby_DefaultsFromSettings(t *testing.T) {
	f := newLobbyFixture()
	admin := f.users.addUser("owner", models.RolePlayer)

	lobby, err := f.service.CreateLobby(context.Background(), CreateLobbyInput{AdminID: admin.ID})
	require.NoError(t, err)

	assert.Equal(t, models.LobbyStatusWaiting, lobby.Status)
	assert.Equal(t, models.DefaultMaxPlayers, lobby.MaxPlayers)
	assert.Equal(t, models.DefaultStartDelay, lobby.StartDelay)
	assert.Equal(t, admin.ID, lobby.AdminID)
}

func TestCreateLobby_ExplicitParamsWin(t *testing.T) {
	f := newLobbyFixture()
	admin := f.users.addUser("owner", models.RolePlayer)
	startDelay, maxPlayers := 10, 4

	lobby, err := f.service.CreateLobby(context.Background(), CreateLobbyInput{
		AdminID:    admin.ID,
		StartDelay: &startDelay,
		MaxPlayers: &maxPlayers,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, lobby.StartDelay)
	assert.Equal(t, 4, lobby.MaxPlayers)
}

func TestCreateLobby_UnknownAdmin(t *testing.T) {
	f := newLobbyFixture()

	_, err := f.service.CreateLobby(context.Background(), CreateLobbyInput{AdminID: 77})

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateLobby_InvalidParams(t *testing.T) {
	f := newLobbyFixture()
	admin := f.users.addUser("owner", models.RolePlayer)

	negative := -1
	_, err := f.service.CreateLobby(context.Background(), CreateLobbyInput{AdminID: admin.ID, StartDelay: &negative})
	assert.ErrorIs(t, err, ErrInvalidStartDelay)

	zero := 0
	_, err = f.service.CreateLobby(context.Background(), CreateLobbyInput{AdminID: admin.ID, MaxPlayers: &zero})
	assert.ErrorIs(t, err, ErrInvalidMaxPlayers)
}

func TestGetLobby_ReportsDerivedPlayersCount(t *testing.T) {
	f := newLobbyFixture()
	admin := f.users.addUser("owner", models.RolePlayer)
	created, err := f.service.CreateLobby(context.Background(), CreateLobbyInput{AdminID: admin.ID})
	require.NoError(t, err)
	f.join(t, created.ID, "a", "b", "c")

	lobby, result, err := f.service.GetLobby(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, lobby.PlayersCount)
	assert.Len(t, lobby.Members, 3)
	assert.Nil(t, result, "waiting lobby has no result")
	require.NotNil(t, lobby.Admin)
	assert.Equal(t, admin.ID, lobby.Admin.ID)
}

func TestGetLobby_NotFound(t *testing.T) {
	f := newLobbyFixture()

	_, _, err := f.service.GetLobby(context.Background(), 12345)

	assert.ErrorIs(t, err, ErrLobbyNotFound)
}

func TestComplete_FourPlayerScenario(t *testing.T) {
	f := newLobbyFixture()
	admin := f.users.addUser("owner", models.RolePlayer)
	maxPlayers := 4
	created, err := f.service.CreateLobby(context.Background(), CreateLobbyInput{AdminID: admin.ID, MaxPlayers: &maxPlayers})
	require.NoError(t, err)
	f.join(t, created.ID, "a", "b", "c", "d")

	result, err := f.service.Complete(context.Background(), created.ID)
	require.NoError(t, err)

	require.Len(t, result.Leaderboard, 4)
	require.NotNil(t, result.Winner)

	winners := 0
	byRound := map[int]int{}
	for _, entry := range result.Leaderboard {
		if entry.EliminatedRound == nil {
			winners++
			continue
		}
		byRound[*entry.EliminatedRound]++
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 2, byRound[1], "round 1 eliminates ceil(4/2)=2")
	assert.Equal(t, 1, byRound[2], "round 2 eliminates ceil(2/2)=1")

	lobby, _, err := f.service.GetLobby(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LobbyStatusFinished, lobby.Status)

	assert.Contains(t, f.notifier.eventTypes(), game.EventLobbyFinished)
}

func TestComplete_EmptyLobby(t *testing.T) {
	f := newLobbyFixture()
	admin := f.users.addUser("owner", models.RolePlayer)
	created, err := f.service.CreateLobby(context.Background(), CreateLobbyInput{AdminID: admin.ID})
	require.NoError(t, err)

	result, err := f.service.Complete(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Empty(t, result.Leaderboard)
	assert.Nil(t, result.Winner)
}

func TestComplete_Idempotent(t *testing.T) {
	f := newLobbyFixture()
	admin := f.users.addUser("owner", models.RolePlayer)
	created, err := f.service.CreateLobby(context.Background(), CreateLobbyInput{AdminID: admin.ID})
	require.NoError(t, err)
	f.join(t, created.ID, "a", "b", "c", "d", "e")

	first, err := f.service.Complete(context.Background(), created.ID)
	require.NoError(t, err)

	second, err := f.service.Complete(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second, "repeated completion must return the identical result")
}

func TestComplete_UnknownLobby(t *testing.T) {
	f := newLobbyFixture()

	_, err := f.service.Complete(context.Background(), 500)

	assert.ErrorIs(t, err, ErrLobbyNotFound)
}

func TestComplete_ConcurrentCallersShareOneResult(t *testing.T) {
	f := newLobbyFixture()
	admin := f.users.addUser("owner", models.RolePlayer)
	created, err := f.service.CreateLobby(context.Background(), CreateLobbyInput{AdminID: admin.ID})
	require.NoError(t, err)
	f.join(t, created.ID, "a", "b", "c", "d", "e", "f", "g", "h")

	const callers = 16
	results := make([]*models.LobbyResult, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = f.service.Complete(context.Background(), created.ID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, results[0], results[i], "caller %d observed a different result", i)
	}

	cached, ok := f.results.Get(created.ID)
	require.True(t, ok, "exactly one result must be cached")
	assert.Equal(t, results[0].Winner, cached.Winner)
}

func TestComplete_FinishedLobbyWithoutCachedResultRecomputes(t *testing.T) {
	// Процесс перезапустился: лобби finished в БД, кеша в памяти нет.
	f := newLobbyFixture()
	admin := f.users.addUser("owner", models.RolePlayer)
	created, err := f.service.CreateLobby(context.Background(), CreateLobbyInput{AdminID: admin.ID})
	require.NoError(t, err)
	f.join(t, created.ID, "a", "b")
	require.NoError(t, f.lobbies.UpdateStatus(context.Background(), nil, created.ID, models.LobbyStatusFinished))

	result, err := f.service.Complete(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Len(t, result.Leaderboard, 2)
	require.NotNil(t, result.Winner)

	_, ok := f.results.Get(created.ID)
	assert.True(t, ok, "recomputed result must be cached again")
}

func TestListLobbies_FilterByStatus(t *testing.T) {
	f := newLobbyFixture()
	admin := f.users.addUser("owner", models.RolePlayer)

	first, err := f.service.CreateLobby(context.Background(), CreateLobbyInput{AdminID: admin.ID})
	require.NoError(t, err)
	_, err = f.service.CreateLobby(context.Background(), CreateLobbyInput{AdminID: admin.ID})
	require.NoError(t, err)

	_, err = f.service.Complete(context.Background(), first.ID)
	require.NoError(t, err)

	waiting := models.LobbyStatusWaiting
	lobbies, err := f.service.ListLobbies(context.Background(), repositories.ListLobbiesFilter{Status: &waiting})
	require.NoError(t, err)

	require.Len(t, lobbies, 1)
	assert.Equal(t, models.LobbyStatusWaiting, lobbies[0].Status)
}

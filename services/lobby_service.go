package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Dosada05/lobby-royale/game"
	"github.com/Dosada05/lobby-royale/models"
	"github.com/Dosada05/lobby-royale/repositories"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type CreateLobbyInput struct {
	AdminID    int  `json:"-"`
	StartDelay *int `json:"start_delay"`
	MaxPlayers *int `json:"max_players"`
}

// LobbyService управляет жизненным циклом лобби: waiting → finished,
// без обратных переходов. Новая игра — всегда новое лобби.
type LobbyService interface {
	CreateLobby(ctx context.Context, input CreateLobbyInput) (*models.Lobby, error)
	GetLobby(ctx context.Context, lobbyID int) (*models.Lobby, *models.LobbyResult, error)
	ListLobbies(ctx context.Context, filter repositories.ListLobbiesFilter) ([]models.Lobby, error)
	Complete(ctx context.Context, lobbyID int) (*models.LobbyResult, error)
}

type lobbyService struct {
	txManager    repositories.TxManager
	lobbyRepo    repositories.LobbyRepository
	userRepo     repositories.UserRepository
	settingsRepo repositories.SettingsRepository
	results      *game.ResultStore
	notifier     LobbyNotifier
	logger       *slog.Logger

	// Схлопывает конкурентные Complete по одному лобби в одно исполнение,
	// закрывая гонку "оба посчитали до того, как кто-то записал".
	completing singleflight.Group
}

func NewLobbyService(
	txManager repositories.TxManager,
	lobbyRepo repositories.LobbyRepository,
	userRepo repositories.UserRepository,
	settingsRepo repositories.SettingsRepository,
	results *game.ResultStore,
	notifier LobbyNotifier,
	logger *slog.Logger,
) LobbyService {
	return &lobbyService{
		txManager:    txManager,
		lobbyRepo:    lobbyRepo,
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		results:      results,
		notifier:     notifier,
		logger:       logger,
	}
}

// CreateLobby создаёт лобби в статусе waiting. Незаданные числовые параметры
// заполняются из глобальных настроек.
func (s *lobbyService) CreateLobby(ctx context.Context, input CreateLobbyInput) (*models.Lobby, error) {
	if _, err := s.userRepo.GetByID(ctx, nil, input.AdminID); err != nil {
		return nil, mapRepoError(err)
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	startDelay := settings.StartDelay
	if input.StartDelay != nil {
		if *input.StartDelay < 0 {
			return nil, ErrInvalidStartDelay
		}
		startDelay = *input.StartDelay
	}

	maxPlayers := settings.MaxPlayers
	if input.MaxPlayers != nil {
		if *input.MaxPlayers <= 0 {
			return nil, ErrInvalidMaxPlayers
		}
		maxPlayers = *input.MaxPlayers
	}

	lobby := &models.Lobby{
		AdminID:    input.AdminID,
		Status:     models.LobbyStatusWaiting,
		StartDelay: startDelay,
		MaxPlayers: maxPlayers,
	}

	if err := s.lobbyRepo.Create(ctx, lobby); err != nil {
		return nil, mapRepoError(err)
	}

	s.logger.Info("lobby created",
		slog.Int("lobby_id", lobby.ID),
		slog.Int("admin_id", lobby.AdminID),
		slog.Int("max_players", lobby.MaxPlayers),
	)
	return lobby, nil
}

// GetLobby возвращает лобби, его участников и, для завершённого лобби,
// закешированный результат с отсортированным лидербордом.
func (s *lobbyService) GetLobby(ctx context.Context, lobbyID int) (*models.Lobby, *models.LobbyResult, error) {
	lobby, err := s.lobbyRepo.GetByID(ctx, nil, lobbyID)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		members, err := s.userRepo.ListByLobbyID(gctx, nil, lobbyID)
		if err != nil {
			return fmt.Errorf("failed to list lobby %d members: %w", lobbyID, err)
		}
		lobby.Members = members
		lobby.PlayersCount = len(members)
		return nil
	})

	g.Go(func() error {
		admin, err := s.userRepo.GetByID(gctx, nil, lobby.AdminID)
		if err != nil {
			// Владелец мог быть удалён вне ядра; лобби от этого не ломается.
			return nil
		}
		lobby.Admin = admin
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, mapRepoError(err)
	}

	var result *models.LobbyResult
	if lobby.Status == models.LobbyStatusFinished {
		if cached, ok := s.results.Get(lobbyID); ok {
			result = rankedCopy(cached)
		}
	}

	return lobby, result, nil
}

func (s *lobbyService) ListLobbies(ctx context.Context, filter repositories.ListLobbiesFilter) ([]models.Lobby, error) {
	lobbies, err := s.lobbyRepo.List(ctx, filter)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return lobbies, nil
}

// Complete завершает лобби: читает участников, гоняет движок выбывания,
// кеширует результат и переводит лобби в finished. Повторный вызов для
// завершённого лобби возвращает тот же результат без пересчёта.
func (s *lobbyService) Complete(ctx context.Context, lobbyID int) (*models.LobbyResult, error) {
	v, err, _ := s.completing.Do(strconv.Itoa(lobbyID), func() (interface{}, error) {
		return s.complete(ctx, lobbyID)
	})
	if err != nil {
		return nil, err
	}
	// Ранжирование детерминировано, поэтому повторные вызовы дают
	// побайтово одинаковый ответ.
	return rankedCopy(v.(*models.LobbyResult)), nil
}

func (s *lobbyService) complete(ctx context.Context, lobbyID int) (*models.LobbyResult, error) {
	lobby, err := s.lobbyRepo.GetByID(ctx, nil, lobbyID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	if lobby.Status == models.LobbyStatusFinished {
		if cached, ok := s.results.Get(lobbyID); ok {
			return cached, nil
		}
		// Завершено, но результата в памяти нет (процесс перезапускался):
		// пересчитываем по текущему составу и кешируем заново.
	}

	members, err := s.userRepo.ListByLobbyID(ctx, nil, lobbyID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	players := make([]game.Player, 0, len(members))
	for _, m := range members {
		players = append(players, game.Player{ID: m.ID, Username: m.Username})
	}

	leaderboard, winner := game.Eliminate(players)
	result := &models.LobbyResult{
		LobbyID:     lobbyID,
		Leaderboard: leaderboard,
		Winner:      winner,
	}

	// Write-once: даже если сюда пробьются два вызова, сохранится один результат.
	result, stored := s.results.Set(lobbyID, result)
	if !stored {
		return result, nil
	}

	if lobby.Status != models.LobbyStatusFinished {
		err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			return s.lobbyRepo.UpdateStatus(ctx, exec, lobbyID, models.LobbyStatusFinished)
		})
		if err != nil {
			s.results.Delete(lobbyID)
			return nil, mapRepoError(err)
		}
	}

	winnerID := 0
	if winner != nil {
		winnerID = winner.UserID
	}
	s.logger.Info("lobby finished",
		slog.Int("lobby_id", lobbyID),
		slog.Int("players", len(players)),
		slog.Int("winner_id", winnerID),
	)

	if s.notifier != nil {
		s.notifier.BroadcastLobbyEvent(game.LobbyEvent{
			Type:    game.EventLobbyFinished,
			LobbyID: lobbyID,
			Payload: rankedCopy(result),
		})
	}

	return result, nil
}

// rankedCopy возвращает презентационную копию результата: лидерборд
// отсортирован по выживаемости, сам кеш не трогается.
func rankedCopy(result *models.LobbyResult) *models.LobbyResult {
	return &models.LobbyResult{
		LobbyID:     result.LobbyID,
		Leaderboard: game.RankLeaderboard(result.Leaderboard),
		Winner:      result.Winner,
	}
}

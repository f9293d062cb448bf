package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/lobby-royale/game"
	"github.com/Dosada05/lobby-royale/models"
	"github.com/Dosada05/lobby-royale/repositories"
)

// LobbyNotifier пушит события лобби подключённым клиентам.
type LobbyNotifier interface {
	BroadcastLobbyEvent(event game.LobbyEvent)
}

// MembershipService владеет связью пользователь↔лобби. Каждая мутация — одна
// транзакция: либо применяется целиком, либо состояние не меняется.
type MembershipService interface {
	Join(ctx context.Context, lobbyID, userID int) error
	Exit(ctx context.Context, lobbyID, userID int) error
	ResetAll(ctx context.Context, lobbyID int) error
	DeleteLobby(ctx context.Context, lobbyID, requesterID int) error
}

type membershipService struct {
	txManager repositories.TxManager
	lobbyRepo repositories.LobbyRepository
	userRepo  repositories.UserRepository
	results   *game.ResultStore
	notifier  LobbyNotifier
}

func NewMembershipService(
	txManager repositories.TxManager,
	lobbyRepo repositories.LobbyRepository,
	userRepo repositories.UserRepository,
	results *game.ResultStore,
	notifier LobbyNotifier,
) MembershipService {
	return &membershipService{
		txManager: txManager,
		lobbyRepo: lobbyRepo,
		userRepo:  userRepo,
		results:   results,
		notifier:  notifier,
	}
}

// Join добавляет пользователя в лобби. Вместимость не проверяется:
// max_players — рекомендация, которую фронтенд проверяет до вызова.
func (s *membershipService) Join(ctx context.Context, lobbyID, userID int) error {
	var username string
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		lobby, err := s.lobbyRepo.GetByID(ctx, exec, lobbyID)
		if err != nil {
			return mapRepoError(err)
		}
		if lobby.Status == models.LobbyStatusFinished {
			return ErrLobbyAlreadyFinished
		}

		user, err := s.userRepo.GetByID(ctx, exec, userID)
		if err != nil {
			return mapRepoError(err)
		}
		username = user.Username

		if err := s.userRepo.SetLobby(ctx, exec, userID, &lobbyID); err != nil {
			return mapRepoError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.broadcast(game.LobbyEvent{
		Type:    game.EventPlayerJoined,
		LobbyID: lobbyID,
		Payload: map[string]interface{}{"user_id": userID, "username": username},
	})
	return nil
}

// Exit убирает пользователя из лобби, членом которого он является.
func (s *membershipService) Exit(ctx context.Context, lobbyID, userID int) error {
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.lobbyRepo.GetByID(ctx, exec, lobbyID); err != nil {
			return mapRepoError(err)
		}

		user, err := s.userRepo.GetByID(ctx, exec, userID)
		if err != nil {
			return mapRepoError(err)
		}
		if user.LobbyID == nil || *user.LobbyID != lobbyID {
			return ErrNotLobbyMember
		}

		if err := s.userRepo.SetLobby(ctx, exec, userID, nil); err != nil {
			return mapRepoError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.broadcast(game.LobbyEvent{
		Type:    game.EventPlayerExited,
		LobbyID: lobbyID,
		Payload: map[string]interface{}{"user_id": userID},
	})
	return nil
}

// ResetAll освобождает всех участников лобби для новых игр. Идемпотентна.
func (s *membershipService) ResetAll(ctx context.Context, lobbyID int) error {
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.lobbyRepo.GetByID(ctx, exec, lobbyID); err != nil {
			return mapRepoError(err)
		}
		if err := s.userRepo.ClearLobbyForAll(ctx, exec, lobbyID); err != nil {
			return fmt.Errorf("failed to reset lobby %d members: %w", lobbyID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.broadcast(game.LobbyEvent{Type: game.EventLobbyReset, LobbyID: lobbyID})
	return nil
}

// DeleteLobby удаляет лобби и в той же транзакции снимает членство со всех
// участников, чтобы ни одна строка users не осталась с висячим lobby_id.
func (s *membershipService) DeleteLobby(ctx context.Context, lobbyID, requesterID int) error {
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		lobby, err := s.lobbyRepo.GetByID(ctx, exec, lobbyID)
		if err != nil {
			return mapRepoError(err)
		}

		requester, err := s.userRepo.GetByID(ctx, exec, requesterID)
		if err != nil {
			// Неизвестный инициатор: закрываемся, а не раскрываем детали.
			return ErrForbiddenOperation
		}
		if !CanMutateLobby(lobby, requester) {
			return ErrForbiddenOperation
		}

		if err := s.userRepo.ClearLobbyForAll(ctx, exec, lobbyID); err != nil {
			return fmt.Errorf("failed to clear members of lobby %d: %w", lobbyID, err)
		}
		if err := s.lobbyRepo.Delete(ctx, exec, lobbyID); err != nil {
			return mapRepoError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.results.Delete(lobbyID)
	s.broadcast(game.LobbyEvent{Type: game.EventLobbyDeleted, LobbyID: lobbyID})
	return nil
}

func (s *membershipService) broadcast(event game.LobbyEvent) {
	if s.notifier != nil {
		s.notifier.BroadcastLobbyEvent(event)
	}
}

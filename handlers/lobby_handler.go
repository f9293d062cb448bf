package handlers

import (
	"errors"
	"net/http"
	"strconv" // Для парсинга query параметров

	"github.com/Dosada05/lobby-royale/middleware"
	"github.com/Dosada05/lobby-royale/models"
	"github.com/Dosada05/lobby-royale/repositories"
	"github.com/Dosada05/lobby-royale/services"
)

type LobbyHandler struct {
	lobbyService      services.LobbyService
	membershipService services.MembershipService
}

func NewLobbyHandler(ls services.LobbyService, ms services.MembershipService) *LobbyHandler {
	return &LobbyHandler{
		lobbyService:      ls,
		membershipService: ms,
	}
}

// CreateHandler обрабатывает POST /lobbies
func (h *LobbyHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	currentUser := middleware.UserFromContext(r.Context())
	if currentUser == nil {
		unauthorizedResponse(w, r, "authentication required to create lobby")
		return
	}

	var input services.CreateLobbyInput
	if err := readJSON(w, r, &input); err != nil {
		// Пустое тело допустимо: все параметры берутся из настроек.
		if err.Error() != "body must not be empty" {
			badRequestResponse(w, r, err)
			return
		}
	}
	input.AdminID = currentUser.ID

	lobby, err := h.lobbyService.CreateLobby(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"lobby": lobby}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /lobbies/{lobbyID}
func (h *LobbyHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lobby, result, err := h.lobbyService.GetLobby(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"lobby": lobby}
	if result != nil {
		response["result"] = result
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /lobbies
func (h *LobbyHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListLobbiesFilter
	query := r.URL.Query()

	if statusStr := query.Get("status"); statusStr != "" {
		status := models.LobbyStatus(statusStr)
		if status != models.LobbyStatusWaiting && status != models.LobbyStatusFinished {
			badRequestResponse(w, r, errors.New("invalid status query parameter"))
			return
		}
		filter.Status = &status
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		} else {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		} else {
			badRequestResponse(w, r, errors.New("invalid offset query parameter"))
			return
		}
	}

	lobbies, err := h.lobbyService.ListLobbies(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"lobbies": lobbies}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// JoinHandler обрабатывает POST /lobbies/{lobbyID}/join
func (h *LobbyHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	currentUser := middleware.UserFromContext(r.Context())
	if currentUser == nil {
		unauthorizedResponse(w, r, "authentication required to join lobby")
		return
	}

	id, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.membershipService.Join(r.Context(), id, currentUser.ID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "joined"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExitHandler обрабатывает POST /lobbies/{lobbyID}/exit
func (h *LobbyHandler) ExitHandler(w http.ResponseWriter, r *http.Request) {
	currentUser := middleware.UserFromContext(r.Context())
	if currentUser == nil {
		unauthorizedResponse(w, r, "authentication required to exit lobby")
		return
	}

	id, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.membershipService.Exit(r.Context(), id, currentUser.ID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "exited"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetHandler обрабатывает POST /lobbies/{lobbyID}/reset
func (h *LobbyHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	currentUser := middleware.UserFromContext(r.Context())
	if currentUser == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	id, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Ядро не ограничивает ResetAll; внешний слой пускает только владельца/админа.
	lobby, _, err := h.lobbyService.GetLobby(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if !services.CanMutateLobby(lobby, currentUser) {
		forbiddenResponse(w, r, services.ErrForbiddenOperation.Error())
		return
	}

	if err := h.membershipService.ResetAll(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "lobby reset"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CompleteHandler обрабатывает POST /lobbies/{lobbyID}/complete
func (h *LobbyHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	currentUser := middleware.UserFromContext(r.Context())
	if currentUser == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	id, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lobby, _, err := h.lobbyService.GetLobby(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if lobby.Status != models.LobbyStatusFinished && !services.CanMutateLobby(lobby, currentUser) {
		forbiddenResponse(w, r, services.ErrForbiddenOperation.Error())
		return
	}

	result, err := h.lobbyService.Complete(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /lobbies/{lobbyID}
func (h *LobbyHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	currentUser := middleware.UserFromContext(r.Context())
	if currentUser == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	id, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.membershipService.DeleteLobby(r.Context(), id, currentUser.ID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "lobby deleted"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

package handlers

import (
	"log"
	"net/http"

	"github.com/Dosada05/lobby-royale/game"
	"github.com/Dosada05/lobby-royale/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin.
		return true
	},
}

type WebSocketHandler struct {
	hub          *game.Hub
	lobbyService services.LobbyService
}

func NewWebSocketHandler(hub *game.Hub, ls services.LobbyService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		lobbyService: ls,
	}
}

// ServeWs подключает клиента к комнате лобби: /ws/lobbies/{lobbyID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	lobbyID, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Не создаём комнату для несуществующего лобби.
	if _, _, err := h.lobbyService.GetLobby(r.Context(), lobbyID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection for lobby %d: %v", lobbyID, err)
		return
	}

	client := &game.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: game.RoomForLobby(lobbyID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

package models

import "time"

// LobbyStatus представляет статусы лобби, соответствующие ENUM в БД.
type LobbyStatus string

const (
	LobbyStatusWaiting  LobbyStatus = "waiting"
	LobbyStatusFinished LobbyStatus = "finished"
)

// Lobby представляет одну игровую комнату.
type Lobby struct {
	ID         int         `json:"id"`
	AdminID    int         `json:"admin_id"`
	Status     LobbyStatus `json:"status"`
	StartDelay int         `json:"start_delay"`
	MaxPlayers int         `json:"max_players"`
	CreatedAt  time.Time   `json:"created_at"`

	// PlayersCount выводится запросом по live-членству, в БД не хранится.
	PlayersCount int `json:"players_count"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Admin   *User  `json:"admin,omitempty"`
	Members []User `json:"members,omitempty"`
}

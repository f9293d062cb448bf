package models

// Settings хранит глобальные значения по умолчанию для новых лобби.
type Settings struct {
	MaxPlayers int `json:"max_players"`
	StartDelay int `json:"start_delay"`
}

const (
	DefaultMaxPlayers = 100
	DefaultStartDelay = 60
)

func DefaultSettings() Settings {
	return Settings{
		MaxPlayers: DefaultMaxPlayers,
		StartDelay: DefaultStartDelay,
	}
}

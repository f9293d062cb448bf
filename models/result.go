package models

// LeaderboardEntry фиксирует раунд вылета игрока; у победителя EliminatedRound == nil.
type LeaderboardEntry struct {
	UserID          int    `json:"user_id"`
	Username        string `json:"username"`
	EliminatedRound *int   `json:"eliminated_round"`
}

type LobbyWinner struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
}

// LobbyResult — итог завершённого лобби. Создаётся ровно один раз и после этого
// неизменяем; живёт только в памяти процесса.
type LobbyResult struct {
	LobbyID     int                `json:"lobby_id"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Winner      *LobbyWinner       `json:"winner"`
}

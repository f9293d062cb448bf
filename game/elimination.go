package game

import (
	"math/rand"
	"sort"

	"github.com/Dosada05/lobby-royale/models"
)

// Player is the engine's view of a lobby member.
type Player struct {
	ID       int
	Username string
}

// Eliminate reduces a player set to a leaderboard and a winner.
//
// The input order carries no meaning: players are shuffled once (Fisher–Yates),
// then each round eliminates ceil(active/2) players from the front of the
// remaining order until one survives. The survivor gets a nil round.
// Elimination within a round is pure chance; no secondary signal exists.
func Eliminate(players []Player) ([]models.LeaderboardEntry, *models.LobbyWinner) {
	n := len(players)
	if n == 0 {
		return []models.LeaderboardEntry{}, nil
	}
	if n == 1 {
		p := players[0]
		return []models.LeaderboardEntry{
			{UserID: p.ID, Username: p.Username, EliminatedRound: nil},
		}, &models.LobbyWinner{UserID: p.ID, Username: p.Username}
	}

	active := make([]Player, n)
	copy(active, players)
	rand.Shuffle(len(active), func(i, j int) {
		active[i], active[j] = active[j], active[i]
	})

	leaderboard := make([]models.LeaderboardEntry, 0, n)
	round := 1
	for len(active) > 1 {
		k := (len(active) + 1) / 2 // ceil, гарантирует прогресс каждого раунда
		for _, p := range active[:k] {
			r := round
			leaderboard = append(leaderboard, models.LeaderboardEntry{
				UserID:          p.ID,
				Username:        p.Username,
				EliminatedRound: &r,
			})
		}
		active = active[k:]
		round++
	}

	winner := active[0]
	leaderboard = append(leaderboard, models.LeaderboardEntry{
		UserID:          winner.ID,
		Username:        winner.Username,
		EliminatedRound: nil,
	})

	return leaderboard, &models.LobbyWinner{UserID: winner.ID, Username: winner.Username}
}

// RankLeaderboard orders entries for presentation: winner first, then by
// eliminated round descending (survived longest first), ties broken by user ID
// so repeated renders of the same stored result are deterministic.
func RankLeaderboard(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	ranked := make([]models.LeaderboardEntry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := ranked[i].EliminatedRound, ranked[j].EliminatedRound
		if ri == nil {
			return rj != nil
		}
		if rj == nil {
			return false
		}
		if *ri != *rj {
			return *ri > *rj
		}
		return ranked[i].UserID < ranked[j].UserID
	})

	return ranked
}

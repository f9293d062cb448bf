package game

import (
	"sync"

	"github.com/Dosada05/lobby-royale/models"
)

// ResultStore memoizes finished lobby results for the lifetime of the process.
// Set is write-once per lobby: the first stored result wins, later writes are
// ignored and the original is returned. Results are never mutated after Set.
type ResultStore struct {
	mu      sync.Mutex
	results map[int]*models.LobbyResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		results: make(map[int]*models.LobbyResult),
	}
}

func (s *ResultStore) Get(lobbyID int) (*models.LobbyResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.results[lobbyID]
	return res, ok
}

// Set stores the result for a lobby unless one already exists.
// Returns the authoritative result and whether this call stored it.
func (s *ResultStore) Set(lobbyID int, result *models.LobbyResult) (*models.LobbyResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.results[lobbyID]; ok {
		return existing, false
	}
	s.results[lobbyID] = result
	return result, true
}

func (s *ResultStore) Delete(lobbyID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, lobbyID)
}

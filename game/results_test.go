package game

import (
	"sync"
	"testing"

	"github.com/Dosada05/lobby-royale/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultStore_GetAbsent(t *testing.T) {
	store := NewResultStore()

	result, ok := store.Get(42)

	assert.False(t, ok)
	assert.Nil(t, result)
}

func TestResultStore_SetIsWriteOnce(t *testing.T) {
	store := NewResultStore()

	first := &models.LobbyResult{LobbyID: 1, Winner: &models.LobbyWinner{UserID: 10}}
	second := &models.LobbyResult{LobbyID: 1, Winner: &models.LobbyWinner{UserID: 20}}

	got, stored := store.Set(1, first)
	assert.True(t, stored)
	assert.Same(t, first, got)

	got, stored = store.Set(1, second)
	assert.False(t, stored)
	assert.Same(t, first, got, "the first stored result must win")

	cached, ok := store.Get(1)
	require.True(t, ok)
	assert.Same(t, first, cached)
}

func TestResultStore_ConcurrentSetStoresExactlyOne(t *testing.T) {
	store := NewResultStore()

	const writers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	storedCount := 0

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			result := &models.LobbyResult{LobbyID: 5, Winner: &models.LobbyWinner{UserID: id}}
			if _, stored := store.Set(5, result); stored {
				mu.Lock()
				storedCount++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, storedCount)

	_, ok := store.Get(5)
	assert.True(t, ok)
}

func TestResultStore_DeleteAllowsNewWrite(t *testing.T) {
	store := NewResultStore()

	store.Set(3, &models.LobbyResult{LobbyID: 3})
	store.Delete(3)

	_, ok := store.Get(3)
	assert.False(t, ok)

	replacement := &models.LobbyResult{LobbyID: 3, Winner: &models.LobbyWinner{UserID: 1}}
	got, stored := store.Set(3, replacement)
	assert.True(t, stored)
	assert.Same(t, replacement, got)
}

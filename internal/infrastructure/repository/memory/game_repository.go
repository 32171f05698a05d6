package memory

import (
	"context"
	"sync"

	"github.com/hooplabs/courtside/internal/domain/game"
)

type GameRepository struct {
	mu    sync.RWMutex
	games []game.Game
	index map[string]game.Game
}

func NewGameRepository(games []game.Game) *GameRepository {
	index := make(map[string]game.Game, len(games))
	for _, g := range games {
		index[g.ID] = g
	}

	return &GameRepository{
		games: games,
		index: index,
	}
}

func (r *GameRepository) List(_ context.Context) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0, len(r.games))
	out = append(out, r.games...)

	return out, nil
}

func (r *GameRepository) GetByID(_ context.Context, gameID string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.index[gameID]

	return g, ok, nil
}

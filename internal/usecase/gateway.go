package usecase

import (
	"context"

	"github.com/hooplabs/courtside/internal/domain/stats"
)

// TeamScores carries the league data service's reconciled running score for
// both teams of a game.
type TeamScores struct {
	Home int
	Away int
}

// PlayerStatResult is the canonical merge returned after a player stat
// submission. Player replaces the local ledger outright; TeamScores, when
// present, supersedes the locally computed aggregates.
type PlayerStatResult struct {
	Player     stats.PlayerGameStat
	TeamScores *TeamScores
}

// FinalizeResult is the league data service's verdict on a finished game.
type FinalizeResult struct {
	WinnerTeamID   string
	PlayerOfGameID string
}

// GameStatsSnapshot is the remote record of a game used to bootstrap a
// scoring session.
type GameStatsSnapshot struct {
	Players []stats.PlayerGameStat
	Scores  *TeamScores
}

// SyncGateway is the league data service boundary. Every mutation flows
// through it and its responses are the reconciliation authority: returned
// values overwrite local state, they are never merged with it.
type SyncGateway interface {
	SubmitPlayerStat(ctx context.Context, gameID string, ledger stats.PlayerGameStat, teamTotals stats.TeamGameStat) (PlayerStatResult, error)
	SubmitTeamStat(ctx context.Context, gameID string, home, away stats.TeamGameStat) error
	FinalizeGame(ctx context.Context, gameID, homeTeamID, awayTeamID string) (FinalizeResult, error)
	SetPlayerOfGame(ctx context.Context, gameID, playerID string) error
	FetchGameStats(ctx context.Context, gameID string) (GameStatsSnapshot, error)
}

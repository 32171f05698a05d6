package leaguesync

import (
	crerr "github.com/cockroachdb/errors"
	"github.com/hooplabs/courtside/internal/domain/stats"
	"github.com/hooplabs/courtside/internal/usecase"
)

// Wire DTOs for the league data service. Payloads are validated at this
// boundary before any value reaches local state.

type playerStatPayload struct {
	PlayerID       string `json:"playerId"`
	GameID         string `json:"gameId"`
	TeamID         string `json:"teamId"`
	PointLog       []int  `json:"pointLog"`
	Points         int    `json:"points"`
	TwosMade       int    `json:"twosMade"`
	ThreesMade     int    `json:"threesMade"`
	FreeThrowsMade int    `json:"freeThrowsMade"`
	Rebounds       int    `json:"rebounds"`
	Assists        int    `json:"assists"`
	Blocks         int    `json:"blocks"`
	Steals         int    `json:"steals"`
	Fouls          int    `json:"fouls"`
}

type teamStatPayload struct {
	TeamID         string `json:"teamId"`
	GameID         string `json:"gameId"`
	Points         int    `json:"points"`
	TwosMade       int    `json:"twosMade"`
	ThreesMade     int    `json:"threesMade"`
	FreeThrowsMade int    `json:"freeThrowsMade"`
	Rebounds       int    `json:"rebounds"`
	Assists        int    `json:"assists"`
	Blocks         int    `json:"blocks"`
	Steals         int    `json:"steals"`
	Fouls          int    `json:"fouls"`
}

type teamScoresPayload struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type submitPlayerStatRequest struct {
	Player     playerStatPayload `json:"player"`
	TeamTotals teamStatPayload   `json:"teamTotals"`
}

type submitPlayerStatResponse struct {
	Player     playerStatPayload  `json:"player"`
	TeamScores *teamScoresPayload `json:"teamScores,omitempty"`
}

type submitTeamStatRequest struct {
	Home teamStatPayload `json:"home"`
	Away teamStatPayload `json:"away"`
}

type finalizeRequest struct {
	HomeTeamID string `json:"homeTeamId"`
	AwayTeamID string `json:"awayTeamId"`
}

type finalizeResponse struct {
	WinnerTeamID   string `json:"winnerTeamId"`
	PlayerOfGameID string `json:"playerOfGameId"`
}

type playerOfGameRequest struct {
	PlayerID string `json:"playerId"`
}

type gameStatsResponse struct {
	Players []playerStatPayload `json:"players"`
	Scores  *teamScoresPayload  `json:"scores,omitempty"`
}

func playerStatToPayload(ledger stats.PlayerGameStat) playerStatPayload {
	log := make([]int, 0, len(ledger.PointLog))
	for _, v := range ledger.PointLog {
		log = append(log, int(v))
	}

	return playerStatPayload{
		PlayerID:       ledger.PlayerID,
		GameID:         ledger.GameID,
		TeamID:         ledger.TeamID,
		PointLog:       log,
		Points:         ledger.Points,
		TwosMade:       ledger.TwosMade,
		ThreesMade:     ledger.ThreesMade,
		FreeThrowsMade: ledger.FreeThrowsMade,
		Rebounds:       ledger.Rebounds,
		Assists:        ledger.Assists,
		Blocks:         ledger.Blocks,
		Steals:         ledger.Steals,
		Fouls:          ledger.Fouls,
	}
}

func teamStatToPayload(totals stats.TeamGameStat) teamStatPayload {
	return teamStatPayload{
		TeamID:         totals.TeamID,
		GameID:         totals.GameID,
		Points:         totals.Points,
		TwosMade:       totals.TwosMade,
		ThreesMade:     totals.ThreesMade,
		FreeThrowsMade: totals.FreeThrowsMade,
		Rebounds:       totals.Rebounds,
		Assists:        totals.Assists,
		Blocks:         totals.Blocks,
		Steals:         totals.Steals,
		Fouls:          totals.Fouls,
	}
}

func payloadToPlayerStat(p playerStatPayload) (stats.PlayerGameStat, error) {
	out := stats.PlayerGameStat{
		PlayerID: p.PlayerID,
		GameID:   p.GameID,
		TeamID:   p.TeamID,
		PointLog: make([]stats.PointValue, 0, len(p.PointLog)),
		Rebounds: p.Rebounds,
		Assists:  p.Assists,
		Blocks:   p.Blocks,
		Steals:   p.Steals,
		Fouls:    p.Fouls,
	}
	for _, v := range p.PointLog {
		value := stats.PointValue(v)
		if !value.Valid() {
			return stats.PlayerGameStat{}, crerr.Newf("point log entry %d is not a valid point value", v)
		}
		out.PointLog = append(out.PointLog, value)
	}
	// Derived fields come from the log, never from the wire.
	out.Recalc()

	if err := out.Validate(); err != nil {
		return stats.PlayerGameStat{}, crerr.Wrap(err, "player stat payload")
	}

	return out, nil
}

func payloadToScores(p *teamScoresPayload) *usecase.TeamScores {
	if p == nil {
		return nil
	}

	return &usecase.TeamScores{Home: p.Home, Away: p.Away}
}

package httpapi

import (
	"time"

	"github.com/hooplabs/courtside/internal/domain/game"
	"github.com/hooplabs/courtside/internal/domain/player"
	"github.com/hooplabs/courtside/internal/domain/session"
	"github.com/hooplabs/courtside/internal/domain/stats"
	"github.com/hooplabs/courtside/internal/domain/team"
	"github.com/hooplabs/courtside/internal/usecase"
)

type recordPointRequest struct {
	PlayerID string `json:"playerId" validate:"omitempty"`
	Value    int    `json:"value" validate:"required,oneof=1 2 3"`
}

type undoPointRequest struct {
	PlayerID string `json:"playerId" validate:"omitempty"`
}

type counterMutationRequest struct {
	PlayerID string `json:"playerId" validate:"omitempty"`
	Stat     string `json:"stat" validate:"required,oneof=rebounds assists blocks steals fouls"`
}

type setActivePlayerRequest struct {
	PlayerID string `json:"playerId" validate:"required"`
}

type checkInRequest struct {
	PlayerID string `json:"playerId" validate:"required"`
	TeamID   string `json:"teamId" validate:"required"`
}

type takeTimeoutRequest struct {
	TeamID string `json:"teamId" validate:"required"`
	Half   string `json:"half" validate:"required,oneof=first second"`
}

type playerOfGameRequest struct {
	PlayerID string `json:"playerId" validate:"required"`
}

type gameDTO struct {
	ID          string `json:"id"`
	HomeTeamID  string `json:"homeTeamId"`
	AwayTeamID  string `json:"awayTeamId"`
	Venue       string `json:"venue"`
	ScheduledAt string `json:"scheduledAt"`
}

type teamDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Short    string `json:"short"`
	Division string `json:"division"`
}

type playerDTO struct {
	ID           string `json:"id"`
	TeamID       string `json:"teamId"`
	Name         string `json:"name"`
	JerseyNumber int    `json:"jerseyNumber"`
	PhotoURL     string `json:"photoUrl,omitempty"`
}

type timeoutBankDTO struct {
	FirstHalf  int `json:"firstHalf"`
	SecondHalf int `json:"secondHalf"`
}

type sessionDTO struct {
	GameID         string                    `json:"gameId"`
	HomeTeamID     string                    `json:"homeTeamId"`
	AwayTeamID     string                    `json:"awayTeamId"`
	State          string                    `json:"state"`
	ActivePlayerID string                    `json:"activePlayerId,omitempty"`
	Timeouts       map[string]timeoutBankDTO `json:"timeouts"`
	HomeScore      int                       `json:"homeScore"`
	AwayScore      int                       `json:"awayScore"`
	WinnerTeamID   string                    `json:"winnerTeamId,omitempty"`
	PlayerOfGameID string                    `json:"playerOfGameId,omitempty"`
}

type sessionSnapshotDTO struct {
	Session         sessionDTO  `json:"session"`
	HomeTotals      teamStatDTO `json:"homeTotals"`
	AwayTotals      teamStatDTO `json:"awayTotals"`
	LastSyncError   string      `json:"lastSyncError,omitempty"`
	LastSyncErrorAt string      `json:"lastSyncErrorAt,omitempty"`
}

type playerStatDTO struct {
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

type teamStatDTO struct {
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

type teamTotalsDTO struct {
	Home teamStatDTO `json:"home"`
	Away teamStatDTO `json:"away"`
}

func gameToDTO(v game.Game) gameDTO {
	return gameDTO{
		ID:          v.ID,
		HomeTeamID:  v.HomeTeamID,
		AwayTeamID:  v.AwayTeamID,
		Venue:       v.Venue,
		ScheduledAt: v.ScheduledAt.UTC().Format(time.RFC3339),
	}
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{
		ID:       v.ID,
		Name:     v.Name,
		Short:    v.Short,
		Division: v.Division,
	}
}

func playerToDTO(v player.Player) playerDTO {
	return playerDTO{
		ID:           v.ID,
		TeamID:       v.TeamID,
		Name:         v.Name,
		JerseyNumber: v.JerseyNumber,
		PhotoURL:     v.PhotoURL,
	}
}

func sessionToDTO(v session.GameSession) sessionDTO {
	timeouts := make(map[string]timeoutBankDTO, len(v.Timeouts))
	for teamID, bank := range v.Timeouts {
		timeouts[teamID] = timeoutBankDTO{
			FirstHalf:  bank.FirstHalf,
			SecondHalf: bank.SecondHalf,
		}
	}

	return sessionDTO{
		GameID:         v.GameID,
		HomeTeamID:     v.HomeTeamID,
		AwayTeamID:     v.AwayTeamID,
		State:          string(v.State),
		ActivePlayerID: v.ActivePlayerID,
		Timeouts:       timeouts,
		HomeScore:      v.HomeScore,
		AwayScore:      v.AwayScore,
		WinnerTeamID:   v.WinnerTeamID,
		PlayerOfGameID: v.PlayerOfGameID,
	}
}

func snapshotToDTO(v usecase.SessionSnapshot) sessionSnapshotDTO {
	out := sessionSnapshotDTO{
		Session:       sessionToDTO(v.Session),
		HomeTotals:    teamStatToDTO(v.HomeTotals),
		AwayTotals:    teamStatToDTO(v.AwayTotals),
		LastSyncError: v.LastSyncError,
	}
	if !v.LastSyncErrorAt.IsZero() {
		out.LastSyncErrorAt = v.LastSyncErrorAt.UTC().Format(time.RFC3339)
	}

	return out
}

func playerStatToDTO(v stats.PlayerGameStat) playerStatDTO {
	log := make([]int, 0, len(v.PointLog))
	for _, value := range v.PointLog {
		log = append(log, int(value))
	}

	return playerStatDTO{
		PlayerID:       v.PlayerID,
		GameID:         v.GameID,
		TeamID:         v.TeamID,
		PointLog:       log,
		Points:         v.Points,
		TwosMade:       v.TwosMade,
		ThreesMade:     v.ThreesMade,
		FreeThrowsMade: v.FreeThrowsMade,
		Rebounds:       v.Rebounds,
		Assists:        v.Assists,
		Blocks:         v.Blocks,
		Steals:         v.Steals,
		Fouls:          v.Fouls,
	}
}

func teamStatToDTO(v stats.TeamGameStat) teamStatDTO {
	return teamStatDTO{
		TeamID:         v.TeamID,
		GameID:         v.GameID,
		Points:         v.Points,
		TwosMade:       v.TwosMade,
		ThreesMade:     v.ThreesMade,
		FreeThrowsMade: v.FreeThrowsMade,
		Rebounds:       v.Rebounds,
		Assists:        v.Assists,
		Blocks:         v.Blocks,
		Steals:         v.Steals,
		Fouls:          v.Fouls,
	}
}

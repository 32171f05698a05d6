package game

import (
	"fmt"
	"time"
)

// Game is one scheduled matchup between two league teams.
type Game struct {
	ID          string
	HomeTeamID  string
	AwayTeamID  string
	Venue       string
	ScheduledAt time.Time
}

func (g Game) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("game id is required")
	}
	if g.HomeTeamID == "" {
		return fmt.Errorf("game home team id is required")
	}
	if g.AwayTeamID == "" {
		return fmt.Errorf("game away team id is required")
	}
	if g.HomeTeamID == g.AwayTeamID {
		return fmt.Errorf("game teams must differ")
	}

	return nil
}

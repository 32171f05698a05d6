package player

import "fmt"

// Player is a registered league member eligible to appear on a game roster.
type Player struct {
	ID           string
	TeamID       string
	Name         string
	JerseyNumber int
	PhotoURL     string
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.TeamID == "" {
		return fmt.Errorf("player team id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if p.JerseyNumber < 0 {
		return fmt.Errorf("player jersey number cannot be negative")
	}

	return nil
}

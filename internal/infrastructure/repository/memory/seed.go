package memory

import (
	"time"

	"github.com/hooplabs/courtside/internal/domain/game"
	"github.com/hooplabs/courtside/internal/domain/player"
	"github.com/hooplabs/courtside/internal/domain/team"
)

const (
	TeamIDRiverhawks = "riverhawks"
	TeamIDPistons    = "sunset-pistons"
	TeamIDWolves     = "midtown-wolves"
	TeamIDComets     = "harbor-comets"

	GameIDRiverhawksPistons = "2026-03-07-riverhawks-pistons"
	GameIDWolvesComets      = "2026-03-07-wolves-comets"
)

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: TeamIDRiverhawks, Name: "Riverhawks", Short: "RVH", Division: "East"},
		{ID: TeamIDPistons, Name: "Sunset Pistons", Short: "SUN", Division: "East"},
		{ID: TeamIDWolves, Name: "Midtown Wolves", Short: "MTW", Division: "West"},
		{ID: TeamIDComets, Name: "Harbor Comets", Short: "HBC", Division: "West"},
	}
}

func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: "rvh-04", TeamID: TeamIDRiverhawks, Name: "Dana Okafor", JerseyNumber: 4},
		{ID: "rvh-07", TeamID: TeamIDRiverhawks, Name: "Miguel Santos", JerseyNumber: 7},
		{ID: "rvh-11", TeamID: TeamIDRiverhawks, Name: "Priya Raman", JerseyNumber: 11},
		{ID: "rvh-23", TeamID: TeamIDRiverhawks, Name: "Jordan Lee", JerseyNumber: 23},
		{ID: "rvh-32", TeamID: TeamIDRiverhawks, Name: "Sam Whitfield", JerseyNumber: 32},
		{ID: "sun-03", TeamID: TeamIDPistons, Name: "Alex Moreau", JerseyNumber: 3},
		{ID: "sun-08", TeamID: TeamIDPistons, Name: "Kofi Mensah", JerseyNumber: 8},
		{ID: "sun-12", TeamID: TeamIDPistons, Name: "Rosa Delgado", JerseyNumber: 12},
		{ID: "sun-21", TeamID: TeamIDPistons, Name: "Tomas Novak", JerseyNumber: 21},
		{ID: "sun-34", TeamID: TeamIDPistons, Name: "Erin Caldwell", JerseyNumber: 34},
		{ID: "mtw-05", TeamID: TeamIDWolves, Name: "Leon Baptiste", JerseyNumber: 5},
		{ID: "mtw-09", TeamID: TeamIDWolves, Name: "Hana Suzuki", JerseyNumber: 9},
		{ID: "mtw-15", TeamID: TeamIDWolves, Name: "Victor Iwu", JerseyNumber: 15},
		{ID: "hbc-02", TeamID: TeamIDComets, Name: "Maya Lindqvist", JerseyNumber: 2},
		{ID: "hbc-10", TeamID: TeamIDComets, Name: "Owen Gallagher", JerseyNumber: 10},
		{ID: "hbc-14", TeamID: TeamIDComets, Name: "Nadia Haddad", JerseyNumber: 14},
	}
}

func SeedGames() []game.Game {
	return []game.Game{
		{
			ID:          GameIDRiverhawksPistons,
			HomeTeamID:  TeamIDRiverhawks,
			AwayTeamID:  TeamIDPistons,
			Venue:       "Eastside Community Gym",
			ScheduledAt: time.Date(2026, 3, 7, 18, 0, 0, 0, time.UTC),
		},
		{
			ID:          GameIDWolvesComets,
			HomeTeamID:  TeamIDWolves,
			AwayTeamID:  TeamIDComets,
			Venue:       "Harborside Rec Center",
			ScheduledAt: time.Date(2026, 3, 7, 20, 0, 0, 0, time.UTC),
		},
	}
}

package stats

// TeamGameStat is the derived sum of every player ledger belonging to one
// team for one game. It is never authoritative client-side; the league data
// service's reconciled value supersedes it.
type TeamGameStat struct {
	TeamID string
	GameID string

	Points         int
	TwosMade       int
	ThreesMade     int
	FreeThrowsMade int

	Rebounds int
	Assists  int
	Blocks   int
	Steals   int
	Fouls    int
}

// SumTeam recomputes a team's running totals from the given ledgers. Only
// ledgers matching both the team and the game are counted, so historical
// stats from other games can never leak in.
func SumTeam(teamID, gameID string, ledgers []PlayerGameStat) TeamGameStat {
	out := TeamGameStat{TeamID: teamID, GameID: gameID}
	for _, ledger := range ledgers {
		if ledger.TeamID != teamID || ledger.GameID != gameID {
			continue
		}
		out.Points += ledger.Points
		out.TwosMade += ledger.TwosMade
		out.ThreesMade += ledger.ThreesMade
		out.FreeThrowsMade += ledger.FreeThrowsMade
		out.Rebounds += ledger.Rebounds
		out.Assists += ledger.Assists
		out.Blocks += ledger.Blocks
		out.Steals += ledger.Steals
		out.Fouls += ledger.Fouls
	}

	return out
}

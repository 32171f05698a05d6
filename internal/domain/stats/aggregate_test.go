package stats

import "testing"

func TestSumTeam_SumsOnlyMatchingLedgers(t *testing.T) {
	ledgers := []PlayerGameStat{
		{PlayerID: "a", GameID: "game-1", TeamID: "home", Points: 10, TwosMade: 5, Rebounds: 4},
		{PlayerID: "b", GameID: "game-1", TeamID: "home", Points: 15, ThreesMade: 5, Assists: 3},
		{PlayerID: "c", GameID: "game-1", TeamID: "away", Points: 8, TwosMade: 4},
		// Same team, different game: must never leak into this game's totals.
		{PlayerID: "a", GameID: "game-0", TeamID: "home", Points: 30},
	}

	totals := SumTeam("home", "game-1", ledgers)

	if totals.Points != 25 {
		t.Fatalf("expected 25 points, got %d", totals.Points)
	}
	if totals.TwosMade != 5 || totals.ThreesMade != 5 {
		t.Fatalf("expected twos=5 threes=5, got twos=%d threes=%d", totals.TwosMade, totals.ThreesMade)
	}
	if totals.Rebounds != 4 || totals.Assists != 3 {
		t.Fatalf("expected rebounds=4 assists=3, got rebounds=%d assists=%d", totals.Rebounds, totals.Assists)
	}
	if totals.TeamID != "home" || totals.GameID != "game-1" {
		t.Fatalf("unexpected identity on totals: %+v", totals)
	}
}

func TestSumTeam_EmptyLedgersYieldZeroTotals(t *testing.T) {
	totals := SumTeam("home", "game-1", nil)

	if totals.Points != 0 || totals.Fouls != 0 {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

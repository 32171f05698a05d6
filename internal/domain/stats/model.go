package stats

import "fmt"

// PointValue is a single scoring event: free throw, two pointer or three pointer.
type PointValue int

const (
	FreeThrow    PointValue = 1
	TwoPointer   PointValue = 2
	ThreePointer PointValue = 3
)

func (v PointValue) Valid() bool {
	return v == FreeThrow || v == TwoPointer || v == ThreePointer
}

// CounterStat names a non-point counting statistic on a player ledger.
type CounterStat string

const (
	CounterRebounds CounterStat = "rebounds"
	CounterAssists  CounterStat = "assists"
	CounterBlocks   CounterStat = "blocks"
	CounterSteals   CounterStat = "steals"
	CounterFouls    CounterStat = "fouls"
)

var AllCounterStats = map[CounterStat]struct{}{
	CounterRebounds: {},
	CounterAssists:  {},
	CounterBlocks:   {},
	CounterSteals:   {},
	CounterFouls:    {},
}

// PlayerGameStat is the per-player, per-game ledger. PointLog is the ordered
// history of point events; Points, TwosMade, ThreesMade and FreeThrowsMade are
// always derived from it in full via Recalc.
type PlayerGameStat struct {
	PlayerID string
	GameID   string
	TeamID   string

	PointLog []PointValue

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

func NewPlayerGameStat(playerID, gameID, teamID string) PlayerGameStat {
	return PlayerGameStat{
		PlayerID: playerID,
		GameID:   gameID,
		TeamID:   teamID,
	}
}

func (s PlayerGameStat) Validate() error {
	if s.PlayerID == "" {
		return fmt.Errorf("stat player id is required")
	}
	if s.GameID == "" {
		return fmt.Errorf("stat game id is required")
	}
	if s.TeamID == "" {
		return fmt.Errorf("stat team id is required")
	}
	for i, v := range s.PointLog {
		if !v.Valid() {
			return fmt.Errorf("point log entry %d has invalid value %d", i, v)
		}
	}
	for name, value := range s.counters() {
		if value < 0 {
			return fmt.Errorf("counter %s cannot be negative", name)
		}
	}

	return nil
}

// RecordPoint appends one point event and rederives the point fields.
func (s *PlayerGameStat) RecordPoint(v PointValue) error {
	if !v.Valid() {
		return fmt.Errorf("invalid point value %d", v)
	}
	s.PointLog = append(s.PointLog, v)
	s.Recalc()

	return nil
}

// UndoLastPoint removes the newest point event. It reports whether anything
// changed; an empty log leaves the ledger untouched.
func (s *PlayerGameStat) UndoLastPoint() bool {
	if len(s.PointLog) == 0 {
		return false
	}
	s.PointLog = s.PointLog[:len(s.PointLog)-1]
	s.Recalc()

	return true
}

// Recalc rederives Points, TwosMade, ThreesMade and FreeThrowsMade from the
// full point log.
func (s *PlayerGameStat) Recalc() {
	points, twos, threes, freeThrows := 0, 0, 0, 0
	for _, v := range s.PointLog {
		points += int(v)
		switch v {
		case TwoPointer:
			twos++
		case ThreePointer:
			threes++
		case FreeThrow:
			freeThrows++
		}
	}

	s.Points = points
	s.TwosMade = twos
	s.ThreesMade = threes
	s.FreeThrowsMade = freeThrows
}

// Counter returns the current value of a counting stat.
func (s PlayerGameStat) Counter(stat CounterStat) (int, error) {
	field, ok := s.counterField(stat)
	if !ok {
		return 0, fmt.Errorf("unknown counter stat %q", stat)
	}

	return *field, nil
}

// IncrementCounter adds one to a counting stat.
func (s *PlayerGameStat) IncrementCounter(stat CounterStat) error {
	field, ok := s.counterField(stat)
	if !ok {
		return fmt.Errorf("unknown counter stat %q", stat)
	}
	*field++

	return nil
}

// DecrementCounter subtracts one from a counting stat, floored at zero. It
// reports whether the value changed.
func (s *PlayerGameStat) DecrementCounter(stat CounterStat) (bool, error) {
	field, ok := s.counterField(stat)
	if !ok {
		return false, fmt.Errorf("unknown counter stat %q", stat)
	}
	if *field <= 0 {
		return false, nil
	}
	*field--

	return true, nil
}

// Clone returns a deep copy; the point log backing array is not shared.
func (s PlayerGameStat) Clone() PlayerGameStat {
	out := s
	out.PointLog = make([]PointValue, len(s.PointLog))
	copy(out.PointLog, s.PointLog)

	return out
}

func (s *PlayerGameStat) counterField(stat CounterStat) (*int, bool) {
	switch stat {
	case CounterRebounds:
		return &s.Rebounds, true
	case CounterAssists:
		return &s.Assists, true
	case CounterBlocks:
		return &s.Blocks, true
	case CounterSteals:
		return &s.Steals, true
	case CounterFouls:
		return &s.Fouls, true
	default:
		return nil, false
	}
}

func (s PlayerGameStat) counters() map[CounterStat]int {
	return map[CounterStat]int{
		CounterRebounds: s.Rebounds,
		CounterAssists:  s.Assists,
		CounterBlocks:   s.Blocks,
		CounterSteals:   s.Steals,
		CounterFouls:    s.Fouls,
	}
}

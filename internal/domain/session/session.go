package session

import (
	"errors"
	"fmt"
)

// State is the scoring workflow mode for one game.
type State string

const (
	// StateSetup allows roster and player selection only; scoring input is
	// disabled.
	StateSetup State = "setup"
	// StateLive enables scoring input.
	StateLive State = "live"
	// StateSummary is the finalized view. Stats remain editable through the
	// same mutators; finalization is not an irreversible lock.
	StateSummary State = "summary"
)

// Half identifies which half a timeout is charged against.
type Half string

const (
	FirstHalf  Half = "first"
	SecondHalf Half = "second"
)

func (h Half) Valid() bool {
	return h == FirstHalf || h == SecondHalf
}

// TimeoutsPerHalf is the league allowance per team and half.
const TimeoutsPerHalf = 2

var ErrInvalidTransition = errors.New("invalid session transition")

// TimeoutBank counts remaining timeouts for one team. Monotonically
// non-increasing with a floor of zero; never synchronized off-device.
type TimeoutBank struct {
	FirstHalf  int
	SecondHalf int
}

// GameSession holds the scorekeeper-facing state for one live game.
type GameSession struct {
	GameID     string
	HomeTeamID string
	AwayTeamID string

	State          State
	ActivePlayerID string
	Timeouts       map[string]TimeoutBank

	HomeScore int
	AwayScore int

	WinnerTeamID   string
	PlayerOfGameID string
}

// New builds a session for one game. finalized reports whether both teams
// already had recorded stats at load time, which opens the session in the
// summary view instead of setup.
func New(gameID, homeTeamID, awayTeamID string, finalized bool) GameSession {
	state := StateSetup
	if finalized {
		state = StateSummary
	}

	return GameSession{
		GameID:     gameID,
		HomeTeamID: homeTeamID,
		AwayTeamID: awayTeamID,
		State:      state,
		Timeouts: map[string]TimeoutBank{
			homeTeamID: {FirstHalf: TimeoutsPerHalf, SecondHalf: TimeoutsPerHalf},
			awayTeamID: {FirstHalf: TimeoutsPerHalf, SecondHalf: TimeoutsPerHalf},
		},
	}
}

// StartScoring moves setup to live.
func (s *GameSession) StartScoring() error {
	if s.State != StateSetup {
		return fmt.Errorf("%w: start scoring from %s", ErrInvalidTransition, s.State)
	}
	s.State = StateLive

	return nil
}

// BackToSelection moves live back to setup. Ledgers are untouched.
func (s *GameSession) BackToSelection() error {
	if s.State != StateLive {
		return fmt.Errorf("%w: back to selection from %s", ErrInvalidTransition, s.State)
	}
	s.State = StateSetup

	return nil
}

// Finish moves setup or live to summary.
func (s *GameSession) Finish() error {
	if s.State == StateSummary {
		return fmt.Errorf("%w: game is already finalized", ErrInvalidTransition)
	}
	s.State = StateSummary

	return nil
}

// BackToScoring reopens a finalized game for further mutation.
func (s *GameSession) BackToScoring() error {
	if s.State != StateSummary {
		return fmt.Errorf("%w: back to scoring from %s", ErrInvalidTransition, s.State)
	}
	s.State = StateLive

	return nil
}

// ScoringAllowed reports whether stat mutators may run. Mutation is allowed
// in live and summary, not in setup.
func (s GameSession) ScoringAllowed() bool {
	return s.State == StateLive || s.State == StateSummary
}

// TakeTimeout decrements the team's counter for the half, floored at zero.
// It reports whether a timeout was actually consumed.
func (s *GameSession) TakeTimeout(teamID string, half Half) (bool, error) {
	if !half.Valid() {
		return false, fmt.Errorf("invalid half %q", half)
	}
	bank, ok := s.Timeouts[teamID]
	if !ok {
		return false, fmt.Errorf("team %s is not part of this game", teamID)
	}

	switch half {
	case FirstHalf:
		if bank.FirstHalf <= 0 {
			return false, nil
		}
		bank.FirstHalf--
	case SecondHalf:
		if bank.SecondHalf <= 0 {
			return false, nil
		}
		bank.SecondHalf--
	}
	s.Timeouts[teamID] = bank

	return true, nil
}

// Clone returns a copy safe to hand out; the timeout map is not shared.
func (s GameSession) Clone() GameSession {
	out := s
	out.Timeouts = make(map[string]TimeoutBank, len(s.Timeouts))
	for teamID, bank := range s.Timeouts {
		out.Timeouts[teamID] = bank
	}

	return out
}

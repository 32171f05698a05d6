package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hooplabs/courtside/internal/domain/game"
	"github.com/hooplabs/courtside/internal/domain/player"
	"github.com/hooplabs/courtside/internal/domain/session"
	"github.com/hooplabs/courtside/internal/domain/stats"
	"github.com/hooplabs/courtside/internal/platform/resilience"
	"github.com/sourcegraph/conc/pool"
)

const (
	defaultSyncWorkers = 4
	defaultSyncTimeout = 15 * time.Second
)

// SessionListener receives a snapshot after every accepted mutation and every
// gateway reconciliation. Used by the live feed; may be nil.
type SessionListener interface {
	SessionUpdated(snapshot SessionSnapshot)
}

// SessionSnapshot is the read model handed to the presentation layer.
type SessionSnapshot struct {
	Session    session.GameSession
	HomeTotals stats.TeamGameStat
	AwayTotals stats.TeamGameStat

	LastSyncError   string
	LastSyncErrorAt time.Time
}

// liveGame is the in-memory state for one open scoring session. Guarded by
// ScoringService.mu.
type liveGame struct {
	session session.GameSession
	rosters map[string]string // playerID -> teamID
	ledgers map[string]*stats.PlayerGameStat

	lastSyncError   string
	lastSyncErrorAt time.Time
}

// ScoringService owns the live-scoring core: stat ledgers, team aggregation,
// the session state machine and the optimistic-sync cycle against the league
// data service. Designed for a single scorekeeper per game; concurrent
// sessions on the same game follow last-write-wins at the gateway.
type ScoringService struct {
	gameRepo   game.Repository
	playerRepo player.Repository
	gateway    SyncGateway
	logger     *slog.Logger
	now        func() time.Time

	mu    sync.Mutex
	games map[string]*liveGame

	listenerMu sync.RWMutex
	listener   SessionListener

	queue       *syncQueue
	syncTimeout time.Duration
	openFlight  resilience.SingleFlight
	finishMu    sync.Mutex
}

func NewScoringService(
	gameRepo game.Repository,
	playerRepo player.Repository,
	gateway SyncGateway,
	syncWorkers int,
	logger *slog.Logger,
) (*ScoringService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if syncWorkers < 1 {
		syncWorkers = defaultSyncWorkers
	}
	queue, err := newSyncQueue(syncWorkers)
	if err != nil {
		return nil, fmt.Errorf("build sync queue: %w", err)
	}

	return &ScoringService{
		gameRepo:    gameRepo,
		playerRepo:  playerRepo,
		gateway:     gateway,
		logger:      logger,
		now:         time.Now,
		games:       make(map[string]*liveGame),
		queue:       queue,
		syncTimeout: defaultSyncTimeout,
	}, nil
}

// SetListener wires the live-feed listener. Safe to call after startup.
func (s *ScoringService) SetListener(listener SessionListener) {
	s.listenerMu.Lock()
	s.listener = listener
	s.listenerMu.Unlock()
}

// Close drains the sync queue and releases the worker pool.
func (s *ScoringService) Close() {
	s.queue.Close()
}

// Flush waits until every gateway submission enqueued so far has completed.
func (s *ScoringService) Flush() {
	s.queue.Wait()
}

// OpenSession loads the game, both rosters and the remote stat record, then
// registers an in-memory session. Opens in summary when both teams already
// have recorded stats (the game was previously finalized), otherwise in
// setup. Idempotent: an already-open session is returned as-is.
func (s *ScoringService) OpenSession(ctx context.Context, gameID string) (SessionSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.OpenSession")
	defer span.End()

	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return SessionSnapshot{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	if lg, ok := s.games[gameID]; ok {
		snapshot := s.snapshotLocked(lg)
		s.mu.Unlock()
		return snapshot, nil
	}
	s.mu.Unlock()

	result, err, _ := s.openFlight.Do("open:"+gameID, func() (any, error) {
		return s.openSessionOnce(ctx, gameID)
	})
	if err != nil {
		return SessionSnapshot{}, err
	}

	return result.(SessionSnapshot), nil
}

func (s *ScoringService) openSessionOnce(ctx context.Context, gameID string) (SessionSnapshot, error) {
	g, ok, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return SessionSnapshot{}, fmt.Errorf("get game by id: %w", err)
	}
	if !ok {
		return SessionSnapshot{}, fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}

	var homePlayers, awayPlayers []player.Player
	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var loadErr error
		homePlayers, loadErr = s.playerRepo.ListByTeam(ctx, g.HomeTeamID)
		return loadErr
	})
	p.Go(func(ctx context.Context) error {
		var loadErr error
		awayPlayers, loadErr = s.playerRepo.ListByTeam(ctx, g.AwayTeamID)
		return loadErr
	})
	if err := p.Wait(); err != nil {
		return SessionSnapshot{}, fmt.Errorf("load game rosters: %w", err)
	}

	lg := &liveGame{
		rosters: make(map[string]string, len(homePlayers)+len(awayPlayers)),
		ledgers: make(map[string]*stats.PlayerGameStat, len(homePlayers)+len(awayPlayers)),
	}
	for _, member := range homePlayers {
		lg.rosters[member.ID] = g.HomeTeamID
	}
	for _, member := range awayPlayers {
		lg.rosters[member.ID] = g.AwayTeamID
	}

	remote, fetchErr := s.gateway.FetchGameStats(ctx, gameID)
	if fetchErr != nil {
		s.logger.WarnContext(ctx, "fetch game stats failed, opening empty session",
			"game_id", gameID, "error", fetchErr)
		lg.lastSyncError = fetchErr.Error()
		lg.lastSyncErrorAt = s.now().UTC()
	}

	teamsWithStats := make(map[string]struct{}, 2)
	for _, remoteLedger := range remote.Players {
		teamID, rostered := lg.rosters[remoteLedger.PlayerID]
		if !rostered {
			continue
		}
		ledger := remoteLedger.Clone()
		ledger.GameID = gameID
		ledger.TeamID = teamID
		ledger.Recalc()
		lg.ledgers[remoteLedger.PlayerID] = &ledger
		teamsWithStats[teamID] = struct{}{}
	}

	// Every rostered player gets a ledger; check-in at open time.
	for playerID, teamID := range lg.rosters {
		if _, exists := lg.ledgers[playerID]; !exists {
			ledger := stats.NewPlayerGameStat(playerID, gameID, teamID)
			lg.ledgers[playerID] = &ledger
		}
	}

	_, homeHasStats := teamsWithStats[g.HomeTeamID]
	_, awayHasStats := teamsWithStats[g.AwayTeamID]
	lg.session = session.New(gameID, g.HomeTeamID, g.AwayTeamID, homeHasStats && awayHasStats)

	if remote.Scores != nil {
		lg.session.HomeScore = remote.Scores.Home
		lg.session.AwayScore = remote.Scores.Away
	} else {
		lg.session.HomeScore = s.teamTotalsLocked(lg, g.HomeTeamID).Points
		lg.session.AwayScore = s.teamTotalsLocked(lg, g.AwayTeamID).Points
	}

	s.mu.Lock()
	if existing, ok := s.games[gameID]; ok {
		snapshot := s.snapshotLocked(existing)
		s.mu.Unlock()
		return snapshot, nil
	}
	s.games[gameID] = lg
	snapshot := s.snapshotLocked(lg)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "scoring session opened",
		"game_id", gameID, "state", snapshot.Session.State,
		"home_team", g.HomeTeamID, "away_team", g.AwayTeamID)
	s.notify(snapshot)

	return snapshot, nil
}

// RecordPoint appends a point event to the player's ledger, rederives its
// point fields, refreshes the owning team's running score and schedules the
// gateway submission. An empty playerID targets the active player.
func (s *ScoringService) RecordPoint(ctx context.Context, gameID, playerID string, value stats.PointValue) (stats.PlayerGameStat, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.RecordPoint")
	defer span.End()

	if !value.Valid() {
		return stats.PlayerGameStat{}, fmt.Errorf("%w: point value must be 1, 2 or 3", ErrInvalidInput)
	}

	s.mu.Lock()
	lg, ledger, err := s.mutableLedgerLocked(gameID, playerID)
	if err != nil {
		s.mu.Unlock()
		return stats.PlayerGameStat{}, err
	}

	if err := ledger.RecordPoint(value); err != nil {
		s.mu.Unlock()
		return stats.PlayerGameStat{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	s.refreshScoresLocked(lg)

	ledgerCopy := ledger.Clone()
	totals := s.teamTotalsLocked(lg, ledger.TeamID)
	snapshot := s.snapshotLocked(lg)
	s.mu.Unlock()

	s.enqueuePlayerSync(ctx, gameID, ledgerCopy, totals)
	s.notify(snapshot)

	return ledgerCopy, nil
}

// UndoLastPoint removes the newest point event. An already-empty log is a
// strict no-op: no state change and no gateway round trip.
func (s *ScoringService) UndoLastPoint(ctx context.Context, gameID, playerID string) (stats.PlayerGameStat, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.UndoLastPoint")
	defer span.End()

	s.mu.Lock()
	lg, ledger, err := s.mutableLedgerLocked(gameID, playerID)
	if err != nil {
		s.mu.Unlock()
		return stats.PlayerGameStat{}, err
	}

	if !ledger.UndoLastPoint() {
		ledgerCopy := ledger.Clone()
		s.mu.Unlock()
		return ledgerCopy, nil
	}
	s.refreshScoresLocked(lg)

	ledgerCopy := ledger.Clone()
	totals := s.teamTotalsLocked(lg, ledger.TeamID)
	snapshot := s.snapshotLocked(lg)
	s.mu.Unlock()

	s.enqueuePlayerSync(ctx, gameID, ledgerCopy, totals)
	s.notify(snapshot)

	return ledgerCopy, nil
}

// IncrementCounterStat adds one to a counting stat and schedules the sync.
func (s *ScoringService) IncrementCounterStat(ctx context.Context, gameID, playerID string, stat stats.CounterStat) (stats.PlayerGameStat, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.IncrementCounterStat")
	defer span.End()

	if _, ok := stats.AllCounterStats[stat]; !ok {
		return stats.PlayerGameStat{}, fmt.Errorf("%w: unknown counter stat %q", ErrInvalidInput, stat)
	}

	s.mu.Lock()
	lg, ledger, err := s.mutableLedgerLocked(gameID, playerID)
	if err != nil {
		s.mu.Unlock()
		return stats.PlayerGameStat{}, err
	}

	if err := ledger.IncrementCounter(stat); err != nil {
		s.mu.Unlock()
		return stats.PlayerGameStat{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	ledgerCopy := ledger.Clone()
	totals := s.teamTotalsLocked(lg, ledger.TeamID)
	snapshot := s.snapshotLocked(lg)
	s.mu.Unlock()

	s.enqueuePlayerSync(ctx, gameID, ledgerCopy, totals)
	s.notify(snapshot)

	return ledgerCopy, nil
}

// DecrementCounterStat subtracts one from a counting stat, floored at zero.
// At the floor the call is a no-op and no gateway round trip is made.
func (s *ScoringService) DecrementCounterStat(ctx context.Context, gameID, playerID string, stat stats.CounterStat) (stats.PlayerGameStat, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.DecrementCounterStat")
	defer span.End()

	if _, ok := stats.AllCounterStats[stat]; !ok {
		return stats.PlayerGameStat{}, fmt.Errorf("%w: unknown counter stat %q", ErrInvalidInput, stat)
	}

	s.mu.Lock()
	lg, ledger, err := s.mutableLedgerLocked(gameID, playerID)
	if err != nil {
		s.mu.Unlock()
		return stats.PlayerGameStat{}, err
	}

	changed, err := ledger.DecrementCounter(stat)
	if err != nil {
		s.mu.Unlock()
		return stats.PlayerGameStat{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !changed {
		ledgerCopy := ledger.Clone()
		s.mu.Unlock()
		return ledgerCopy, nil
	}

	ledgerCopy := ledger.Clone()
	totals := s.teamTotalsLocked(lg, ledger.TeamID)
	snapshot := s.snapshotLocked(lg)
	s.mu.Unlock()

	s.enqueuePlayerSync(ctx, gameID, ledgerCopy, totals)
	s.notify(snapshot)

	return ledgerCopy, nil
}

// SetActivePlayer points stat input at one rostered player.
func (s *ScoringService) SetActivePlayer(ctx context.Context, gameID, playerID string) (SessionSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.SetActivePlayer")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return SessionSnapshot{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	lg, err := s.liveLocked(gameID)
	if err != nil {
		s.mu.Unlock()
		return SessionSnapshot{}, err
	}
	if _, rostered := lg.rosters[playerID]; !rostered {
		s.mu.Unlock()
		return SessionSnapshot{}, fmt.Errorf("%w: player=%s game=%s", ErrInvalidPlayer, playerID, gameID)
	}

	lg.session.ActivePlayerID = playerID
	snapshot := s.snapshotLocked(lg)
	s.mu.Unlock()

	s.notify(snapshot)

	return snapshot, nil
}

// CheckInPlayer adds a late arrival to the game's roster pool and ensures a
// ledger exists, without disturbing existing ledgers or the active-player
// pointer. Checking in an already-rostered player is a no-op.
func (s *ScoringService) CheckInPlayer(ctx context.Context, gameID, playerID, teamID string) (SessionSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.CheckInPlayer")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	teamID = strings.TrimSpace(teamID)
	if playerID == "" || teamID == "" {
		return SessionSnapshot{}, fmt.Errorf("%w: player id and team id are required", ErrInvalidInput)
	}

	if _, ok, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		return SessionSnapshot{}, fmt.Errorf("get player by id: %w", err)
	} else if !ok {
		return SessionSnapshot{}, fmt.Errorf("%w: player=%s is not registered", ErrInvalidPlayer, playerID)
	}

	s.mu.Lock()
	lg, err := s.liveLocked(gameID)
	if err != nil {
		s.mu.Unlock()
		return SessionSnapshot{}, err
	}
	if teamID != lg.session.HomeTeamID && teamID != lg.session.AwayTeamID {
		s.mu.Unlock()
		return SessionSnapshot{}, fmt.Errorf("%w: team=%s is not part of game=%s", ErrInvalidInput, teamID, gameID)
	}

	if _, rostered := lg.rosters[playerID]; !rostered {
		lg.rosters[playerID] = teamID
	}
	if _, exists := lg.ledgers[playerID]; !exists {
		ledger := stats.NewPlayerGameStat(playerID, gameID, lg.rosters[playerID])
		lg.ledgers[playerID] = &ledger
	}
	snapshot := s.snapshotLocked(lg)
	s.mu.Unlock()

	s.notify(snapshot)

	return snapshot, nil
}

// TakeTimeout burns one of the team's timeouts for the half. At zero the
// call is a no-op; timeouts never reach the gateway and are lost when the
// session is abandoned.
func (s *ScoringService) TakeTimeout(ctx context.Context, gameID, teamID string, half session.Half) (SessionSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.TakeTimeout")
	defer span.End()

	s.mu.Lock()
	lg, err := s.liveLocked(gameID)
	if err != nil {
		s.mu.Unlock()
		return SessionSnapshot{}, err
	}

	consumed, err := lg.session.TakeTimeout(teamID, half)
	if err != nil {
		s.mu.Unlock()
		return SessionSnapshot{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	snapshot := s.snapshotLocked(lg)
	s.mu.Unlock()

	if consumed {
		s.notify(snapshot)
	}

	return snapshot, nil
}

// StartScoring moves the session from setup to live.
func (s *ScoringService) StartScoring(ctx context.Context, gameID string) (SessionSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.StartScoring")
	defer span.End()

	return s.transition(ctx, gameID, func(gs *session.GameSession) error { return gs.StartScoring() })
}

// BackToSelection moves the session from live back to setup.
func (s *ScoringService) BackToSelection(ctx context.Context, gameID string) (SessionSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.BackToSelection")
	defer span.End()

	return s.transition(ctx, gameID, func(gs *session.GameSession) error { return gs.BackToSelection() })
}

// BackToScoring reopens a finalized game for further stat mutation.
func (s *ScoringService) BackToScoring(ctx context.Context, gameID string) (SessionSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.BackToScoring")
	defer span.End()

	return s.transition(ctx, gameID, func(gs *session.GameSession) error { return gs.BackToScoring() })
}

func (s *ScoringService) transition(_ context.Context, gameID string, apply func(*session.GameSession) error) (SessionSnapshot, error) {
	s.mu.Lock()

	lg, err := s.liveLocked(gameID)
	if err != nil {
		s.mu.Unlock()
		return SessionSnapshot{}, err
	}

	if err := apply(&lg.session); err != nil {
		s.mu.Unlock()
		return SessionSnapshot{}, err
	}

	snapshot := s.snapshotLocked(lg)
	s.mu.Unlock()

	s.notify(snapshot)

	return snapshot, nil
}

// FinishGame closes live scoring: pushes both teams' aggregates, asks the
// gateway to finalize and stores the canonical winner and player of the
// game. A gateway failure is non-fatal; the session still moves to summary
// with the locally derived winner (tie resolves to the home team) and the
// failure is surfaced on the snapshot.
func (s *ScoringService) FinishGame(ctx context.Context, gameID string) (SessionSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.FinishGame")
	defer span.End()

	s.finishMu.Lock()
	defer s.finishMu.Unlock()

	s.mu.Lock()
	lg, err := s.liveLocked(gameID)
	if err != nil {
		s.mu.Unlock()
		return SessionSnapshot{}, err
	}
	if lg.session.State == session.StateSummary {
		s.mu.Unlock()
		return SessionSnapshot{}, fmt.Errorf("%w: game is already finalized", session.ErrInvalidTransition)
	}

	homeTeamID := lg.session.HomeTeamID
	awayTeamID := lg.session.AwayTeamID
	homeTotals := s.teamTotalsLocked(lg, homeTeamID)
	awayTotals := s.teamTotalsLocked(lg, awayTeamID)
	s.mu.Unlock()

	localWinner := homeTeamID
	if awayTotals.Points > homeTotals.Points {
		localWinner = awayTeamID
	}

	if err := s.gateway.SubmitTeamStat(ctx, gameID, homeTotals, awayTotals); err != nil {
		s.logger.WarnContext(ctx, "submit team stats failed", "game_id", gameID, "error", err)
		s.recordSyncFailure(gameID, err)
	}

	result, finalizeErr := s.gateway.FinalizeGame(ctx, gameID, homeTeamID, awayTeamID)
	if finalizeErr != nil {
		s.logger.WarnContext(ctx, "finalize game failed, keeping local result",
			"game_id", gameID, "error", finalizeErr)
		s.recordSyncFailure(gameID, finalizeErr)
	}

	s.mu.Lock()
	lg, err = s.liveLocked(gameID)
	if err != nil {
		s.mu.Unlock()
		return SessionSnapshot{}, err
	}
	if lg.session.State != session.StateSummary {
		if err := lg.session.Finish(); err != nil {
			s.mu.Unlock()
			return SessionSnapshot{}, err
		}
	}

	winner := result.WinnerTeamID
	if winner == "" {
		winner = localWinner
	}
	lg.session.WinnerTeamID = winner
	if result.PlayerOfGameID != "" {
		lg.session.PlayerOfGameID = result.PlayerOfGameID
	}
	snapshot := s.snapshotLocked(lg)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "game finalized",
		"game_id", gameID, "winner_team_id", winner,
		"home_points", homeTotals.Points, "away_points", awayTotals.Points)
	s.notify(snapshot)

	return snapshot, nil
}

// SetPlayerOfGame stores the MVP selection and persists it through the
// gateway, independently of score mutations. Valid in any state; a gateway
// failure keeps the local selection and surfaces a sync notice.
func (s *ScoringService) SetPlayerOfGame(ctx context.Context, gameID, playerID string) (SessionSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.SetPlayerOfGame")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return SessionSnapshot{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	lg, err := s.liveLocked(gameID)
	if err != nil {
		s.mu.Unlock()
		return SessionSnapshot{}, err
	}
	if _, rostered := lg.rosters[playerID]; !rostered {
		s.mu.Unlock()
		return SessionSnapshot{}, fmt.Errorf("%w: player=%s game=%s", ErrInvalidPlayer, playerID, gameID)
	}
	lg.session.PlayerOfGameID = playerID
	s.mu.Unlock()

	if err := s.gateway.SetPlayerOfGame(ctx, gameID, playerID); err != nil {
		s.logger.WarnContext(ctx, "persist player of game failed",
			"game_id", gameID, "player_id", playerID, "error", err)
		s.recordSyncFailure(gameID, err)
	}

	s.mu.Lock()
	lg, err = s.liveLocked(gameID)
	if err != nil {
		s.mu.Unlock()
		return SessionSnapshot{}, err
	}
	snapshot := s.snapshotLocked(lg)
	s.mu.Unlock()

	s.notify(snapshot)

	return snapshot, nil
}

// Session returns the current snapshot for an open session.
func (s *ScoringService) Session(ctx context.Context, gameID string) (SessionSnapshot, error) {
	_, span := startUsecaseSpan(ctx, "usecase.ScoringService.Session")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	lg, err := s.liveLocked(gameID)
	if err != nil {
		return SessionSnapshot{}, err
	}

	return s.snapshotLocked(lg), nil
}

// PlayerStat returns one rostered player's current ledger.
func (s *ScoringService) PlayerStat(ctx context.Context, gameID, playerID string) (stats.PlayerGameStat, error) {
	_, span := startUsecaseSpan(ctx, "usecase.ScoringService.PlayerStat")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	lg, err := s.liveLocked(gameID)
	if err != nil {
		return stats.PlayerGameStat{}, err
	}
	ledger, ok := lg.ledgers[playerID]
	if !ok {
		return stats.PlayerGameStat{}, fmt.Errorf("%w: player=%s game=%s", ErrInvalidPlayer, playerID, gameID)
	}

	return ledger.Clone(), nil
}

// ActivePlayerStat returns the ledger of the player currently receiving
// input.
func (s *ScoringService) ActivePlayerStat(ctx context.Context, gameID string) (stats.PlayerGameStat, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ActivePlayerStat")
	defer span.End()

	s.mu.Lock()
	lg, err := s.liveLocked(gameID)
	if err != nil {
		s.mu.Unlock()
		return stats.PlayerGameStat{}, err
	}
	activePlayerID := lg.session.ActivePlayerID
	s.mu.Unlock()

	if activePlayerID == "" {
		return stats.PlayerGameStat{}, ErrNoActivePlayer
	}

	return s.PlayerStat(ctx, gameID, activePlayerID)
}

// TeamTotals returns both teams' current aggregates.
func (s *ScoringService) TeamTotals(ctx context.Context, gameID string) (home, away stats.TeamGameStat, err error) {
	_, span := startUsecaseSpan(ctx, "usecase.ScoringService.TeamTotals")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	lg, err := s.liveLocked(gameID)
	if err != nil {
		return stats.TeamGameStat{}, stats.TeamGameStat{}, err
	}

	return s.teamTotalsLocked(lg, lg.session.HomeTeamID), s.teamTotalsLocked(lg, lg.session.AwayTeamID), nil
}

// mutableLedgerLocked resolves a stat-mutation target: session must exist,
// scoring must be enabled, the player (or the active player when playerID is
// empty) must be rostered. Callers hold s.mu.
func (s *ScoringService) mutableLedgerLocked(gameID, playerID string) (*liveGame, *stats.PlayerGameStat, error) {
	lg, err := s.liveLocked(gameID)
	if err != nil {
		return nil, nil, err
	}
	if !lg.session.ScoringAllowed() {
		return nil, nil, fmt.Errorf("%w: scoring input is disabled in %s", session.ErrInvalidTransition, lg.session.State)
	}

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		playerID = lg.session.ActivePlayerID
	}
	if playerID == "" {
		return nil, nil, ErrNoActivePlayer
	}

	teamID, rostered := lg.rosters[playerID]
	if !rostered {
		return nil, nil, fmt.Errorf("%w: player=%s game=%s", ErrInvalidPlayer, playerID, gameID)
	}

	ledger, ok := lg.ledgers[playerID]
	if !ok {
		created := stats.NewPlayerGameStat(playerID, gameID, teamID)
		lg.ledgers[playerID] = &created
		ledger = &created
	}

	return lg, ledger, nil
}

func (s *ScoringService) liveLocked(gameID string) (*liveGame, error) {
	lg, ok := s.games[strings.TrimSpace(gameID)]
	if !ok {
		return nil, fmt.Errorf("%w: no open scoring session for game=%s", ErrNotFound, gameID)
	}

	return lg, nil
}

func (s *ScoringService) teamTotalsLocked(lg *liveGame, teamID string) stats.TeamGameStat {
	ledgers := make([]stats.PlayerGameStat, 0, len(lg.ledgers))
	for _, ledger := range lg.ledgers {
		ledgers = append(ledgers, *ledger)
	}

	return stats.SumTeam(teamID, lg.session.GameID, ledgers)
}

func (s *ScoringService) refreshScoresLocked(lg *liveGame) {
	lg.session.HomeScore = s.teamTotalsLocked(lg, lg.session.HomeTeamID).Points
	lg.session.AwayScore = s.teamTotalsLocked(lg, lg.session.AwayTeamID).Points
}

func (s *ScoringService) snapshotLocked(lg *liveGame) SessionSnapshot {
	return SessionSnapshot{
		Session:         lg.session.Clone(),
		HomeTotals:      s.teamTotalsLocked(lg, lg.session.HomeTeamID),
		AwayTotals:      s.teamTotalsLocked(lg, lg.session.AwayTeamID),
		LastSyncError:   lg.lastSyncError,
		LastSyncErrorAt: lg.lastSyncErrorAt,
	}
}

// enqueuePlayerSync schedules the gateway round trip for one ledger mutation
// on the player's FIFO queue. The caller is never blocked; request
// cancellation does not abort an already-accepted mutation.
func (s *ScoringService) enqueuePlayerSync(ctx context.Context, gameID string, ledger stats.PlayerGameStat, totals stats.TeamGameStat) {
	syncCtx := context.WithoutCancel(ctx)
	s.queue.Enqueue(ledger.PlayerID, func() {
		ctx, cancel := context.WithTimeout(syncCtx, s.syncTimeout)
		defer cancel()

		result, err := s.gateway.SubmitPlayerStat(ctx, gameID, ledger, totals)
		if err != nil {
			s.logger.WarnContext(ctx, "player stat sync failed, local state kept",
				"game_id", gameID, "player_id", ledger.PlayerID, "error", err)
			s.recordSyncFailure(gameID, err)
			return
		}
		s.applyPlayerReconciliation(ctx, gameID, result)
	})
}

// applyPlayerReconciliation overwrites local state with the gateway's
// canonical merge. Server wins outright; nothing is merged.
func (s *ScoringService) applyPlayerReconciliation(ctx context.Context, gameID string, result PlayerStatResult) {
	canonical := result.Player.Clone()
	canonical.Recalc()

	s.mu.Lock()
	lg, ok := s.games[gameID]
	if !ok {
		s.mu.Unlock()
		return
	}

	if teamID, rostered := lg.rosters[canonical.PlayerID]; rostered {
		canonical.GameID = lg.session.GameID
		canonical.TeamID = teamID
		lg.ledgers[canonical.PlayerID] = &canonical
	}

	if result.TeamScores != nil {
		lg.session.HomeScore = result.TeamScores.Home
		lg.session.AwayScore = result.TeamScores.Away
	} else {
		s.refreshScoresLocked(lg)
	}

	lg.lastSyncError = ""
	lg.lastSyncErrorAt = time.Time{}
	snapshot := s.snapshotLocked(lg)
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *ScoringService) recordSyncFailure(gameID string, cause error) {
	s.mu.Lock()
	lg, ok := s.games[gameID]
	if !ok {
		s.mu.Unlock()
		return
	}
	lg.lastSyncError = cause.Error()
	lg.lastSyncErrorAt = s.now().UTC()
	snapshot := s.snapshotLocked(lg)
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *ScoringService) notify(snapshot SessionSnapshot) {
	s.listenerMu.RLock()
	listener := s.listener
	s.listenerMu.RUnlock()

	if listener != nil {
		listener.SessionUpdated(snapshot)
	}
}

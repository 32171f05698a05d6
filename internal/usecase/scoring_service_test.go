package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/hooplabs/courtside/internal/domain/session"
	"github.com/hooplabs/courtside/internal/domain/stats"
	"github.com/hooplabs/courtside/internal/infrastructure/repository/memory"
)

// stubGateway counts calls and lets tests script responses. The default
// player-stat behavior echoes the submitted ledger back, which is what the
// league data service does when nothing else wrote to the same game.
type stubGateway struct {
	mu            sync.Mutex
	playerCalls   int
	teamCalls     int
	finalizeCalls int
	mvpCalls      int

	fetch        func(gameID string) (GameStatsSnapshot, error)
	submitPlayer func(gameID string, ledger stats.PlayerGameStat) (PlayerStatResult, error)
	finalize     func(gameID, homeTeamID, awayTeamID string) (FinalizeResult, error)

	submitTeamErr error
	mvpErr        error
}

func (g *stubGateway) SubmitPlayerStat(_ context.Context, gameID string, ledger stats.PlayerGameStat, _ stats.TeamGameStat) (PlayerStatResult, error) {
	g.mu.Lock()
	g.playerCalls++
	submit := g.submitPlayer
	g.mu.Unlock()

	if submit != nil {
		return submit(gameID, ledger)
	}

	return PlayerStatResult{Player: ledger.Clone()}, nil
}

func (g *stubGateway) SubmitTeamStat(_ context.Context, _ string, _, _ stats.TeamGameStat) error {
	g.mu.Lock()
	g.teamCalls++
	g.mu.Unlock()

	return g.submitTeamErr
}

func (g *stubGateway) FinalizeGame(_ context.Context, gameID, homeTeamID, awayTeamID string) (FinalizeResult, error) {
	g.mu.Lock()
	g.finalizeCalls++
	finalize := g.finalize
	g.mu.Unlock()

	if finalize != nil {
		return finalize(gameID, homeTeamID, awayTeamID)
	}

	return FinalizeResult{}, nil
}

func (g *stubGateway) SetPlayerOfGame(_ context.Context, _ string, _ string) error {
	g.mu.Lock()
	g.mvpCalls++
	g.mu.Unlock()

	return g.mvpErr
}

func (g *stubGateway) FetchGameStats(_ context.Context, gameID string) (GameStatsSnapshot, error) {
	if g.fetch != nil {
		return g.fetch(gameID)
	}

	return GameStatsSnapshot{}, nil
}

func (g *stubGateway) counts() (player, team, finalize, mvp int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.playerCalls, g.teamCalls, g.finalizeCalls, g.mvpCalls
}

type recordingListener struct {
	mu        sync.Mutex
	snapshots []SessionSnapshot
}

func (l *recordingListener) SessionUpdated(snapshot SessionSnapshot) {
	l.mu.Lock()
	l.snapshots = append(l.snapshots, snapshot)
	l.mu.Unlock()
}

func (l *recordingListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.snapshots)
}

func newTestService(t *testing.T, gateway *stubGateway) *ScoringService {
	t.Helper()

	gameRepo := memory.NewGameRepository(memory.SeedGames())
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service, err := NewScoringService(gameRepo, playerRepo, gateway, 2, logger)
	if err != nil {
		t.Fatalf("build scoring service: %v", err)
	}
	t.Cleanup(service.Close)

	return service
}

func openLiveSession(t *testing.T, service *ScoringService) string {
	t.Helper()

	gameID := memory.GameIDRiverhawksPistons
	if _, err := service.OpenSession(t.Context(), gameID); err != nil {
		t.Fatalf("open session: %v", err)
	}
	if _, err := service.StartScoring(t.Context(), gameID); err != nil {
		t.Fatalf("start scoring: %v", err)
	}

	return gameID
}

func TestScoringService_OpenSession_EmptyRemoteOpensInSetup(t *testing.T) {
	service := newTestService(t, &stubGateway{})

	snapshot, err := service.OpenSession(t.Context(), memory.GameIDRiverhawksPistons)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	if snapshot.Session.State != session.StateSetup {
		t.Fatalf("expected setup, got %s", snapshot.Session.State)
	}
	if snapshot.Session.HomeScore != 0 || snapshot.Session.AwayScore != 0 {
		t.Fatalf("expected 0-0, got %d-%d", snapshot.Session.HomeScore, snapshot.Session.AwayScore)
	}

	// Every rostered player has an empty ledger from the start.
	ledger, err := service.PlayerStat(t.Context(), memory.GameIDRiverhawksPistons, "rvh-07")
	if err != nil {
		t.Fatalf("player stat: %v", err)
	}
	if ledger.Points != 0 || ledger.TeamID != memory.TeamIDRiverhawks {
		t.Fatalf("unexpected ledger %+v", ledger)
	}
}

func TestScoringService_OpenSession_IsIdempotent(t *testing.T) {
	service := newTestService(t, &stubGateway{})
	gameID := openLiveSession(t, service)

	if _, err := service.RecordPoint(t.Context(), gameID, "rvh-07", stats.TwoPointer); err != nil {
		t.Fatalf("record point: %v", err)
	}

	snapshot, err := service.OpenSession(t.Context(), gameID)
	if err != nil {
		t.Fatalf("reopen session: %v", err)
	}
	if snapshot.Session.State != session.StateLive {
		t.Fatalf("expected existing live session back, got %s", snapshot.Session.State)
	}
	if snapshot.HomeTotals.Points != 2 {
		t.Fatalf("expected accumulated totals to survive reopen, got %d", snapshot.HomeTotals.Points)
	}
}

func TestScoringService_OpenSession_FinalizedRemoteOpensInSummary(t *testing.T) {
	gateway := &stubGateway{
		fetch: func(gameID string) (GameStatsSnapshot, error) {
			return GameStatsSnapshot{
				Players: []stats.PlayerGameStat{
					{PlayerID: "rvh-07", PointLog: []stats.PointValue{stats.TwoPointer, stats.TwoPointer}},
					{PlayerID: "sun-08", PointLog: []stats.PointValue{stats.ThreePointer}},
				},
				Scores: &TeamScores{Home: 4, Away: 3},
			}, nil
		},
	}
	service := newTestService(t, gateway)

	snapshot, err := service.OpenSession(t.Context(), memory.GameIDRiverhawksPistons)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	if snapshot.Session.State != session.StateSummary {
		t.Fatalf("expected summary for a game with stats on both teams, got %s", snapshot.Session.State)
	}
	if snapshot.Session.HomeScore != 4 || snapshot.Session.AwayScore != 3 {
		t.Fatalf("expected 4-3 from remote scores, got %d-%d",
			snapshot.Session.HomeScore, snapshot.Session.AwayScore)
	}

	ledger, err := service.PlayerStat(t.Context(), memory.GameIDRiverhawksPistons, "rvh-07")
	if err != nil {
		t.Fatalf("player stat: %v", err)
	}
	if ledger.Points != 4 || ledger.TwosMade != 2 {
		t.Fatalf("expected derived fields from remote log, got %+v", ledger)
	}
}

func TestScoringService_OpenSession_OneTeamWithStatsStaysInSetup(t *testing.T) {
	gateway := &stubGateway{
		fetch: func(gameID string) (GameStatsSnapshot, error) {
			return GameStatsSnapshot{
				Players: []stats.PlayerGameStat{
					{PlayerID: "rvh-07", PointLog: []stats.PointValue{stats.TwoPointer}},
				},
			}, nil
		},
	}
	service := newTestService(t, gateway)

	snapshot, err := service.OpenSession(t.Context(), memory.GameIDRiverhawksPistons)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	if snapshot.Session.State != session.StateSetup {
		t.Fatalf("expected setup when only one team has stats, got %s", snapshot.Session.State)
	}
	if snapshot.Session.HomeScore != 2 || snapshot.Session.AwayScore != 0 {
		t.Fatalf("expected 2-0 summed locally, got %d-%d",
			snapshot.Session.HomeScore, snapshot.Session.AwayScore)
	}
}

func TestScoringService_OpenSession_FetchFailureDegradesToEmpty(t *testing.T) {
	gateway := &stubGateway{
		fetch: func(gameID string) (GameStatsSnapshot, error) {
			return GameStatsSnapshot{}, errors.New("league service down")
		},
	}
	service := newTestService(t, gateway)

	snapshot, err := service.OpenSession(t.Context(), memory.GameIDRiverhawksPistons)
	if err != nil {
		t.Fatalf("open session must not fail on fetch error: %v", err)
	}
	if snapshot.Session.State != session.StateSetup {
		t.Fatalf("expected setup, got %s", snapshot.Session.State)
	}
	if snapshot.LastSyncError == "" {
		t.Fatal("expected sync failure surfaced on snapshot")
	}
}

func TestScoringService_OpenSession_UnknownGame(t *testing.T) {
	service := newTestService(t, &stubGateway{})

	if _, err := service.OpenSession(t.Context(), "no-such-game"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScoringService_RecordPoint_ActivePlayerFlow(t *testing.T) {
	gateway := &stubGateway{}
	service := newTestService(t, gateway)
	gameID := openLiveSession(t, service)

	// No active player selected and no explicit target.
	if _, err := service.RecordPoint(t.Context(), gameID, "", stats.TwoPointer); !errors.Is(err, ErrNoActivePlayer) {
		t.Fatalf("expected ErrNoActivePlayer, got %v", err)
	}

	if _, err := service.SetActivePlayer(t.Context(), gameID, "rvh-07"); err != nil {
		t.Fatalf("set active player: %v", err)
	}

	if _, err := service.RecordPoint(t.Context(), gameID, "", stats.TwoPointer); err != nil {
		t.Fatalf("record point: %v", err)
	}
	ledger, err := service.RecordPoint(t.Context(), gameID, "", stats.ThreePointer)
	if err != nil {
		t.Fatalf("record point: %v", err)
	}

	if ledger.Points != 5 || ledger.TwosMade != 1 || ledger.ThreesMade != 1 {
		t.Fatalf("unexpected ledger %+v", ledger)
	}

	service.Flush()
	playerCalls, _, _, _ := gateway.counts()
	if playerCalls != 2 {
		t.Fatalf("expected 2 gateway submissions, got %d", playerCalls)
	}

	home, _, err := service.TeamTotals(t.Context(), gameID)
	if err != nil {
		t.Fatalf("team totals: %v", err)
	}
	if home.Points != 5 {
		t.Fatalf("expected 5 home points, got %d", home.Points)
	}
}

func TestScoringService_RecordPoint_BlockedInSetup(t *testing.T) {
	service := newTestService(t, &stubGateway{})
	gameID := memory.GameIDRiverhawksPistons
	if _, err := service.OpenSession(t.Context(), gameID); err != nil {
		t.Fatalf("open session: %v", err)
	}

	if _, err := service.RecordPoint(t.Context(), gameID, "rvh-07", stats.TwoPointer); !errors.Is(err, session.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition in setup, got %v", err)
	}
}

func TestScoringService_RecordPoint_AllowedInSummary(t *testing.T) {
	gateway := &stubGateway{}
	service := newTestService(t, gateway)
	gameID := openLiveSession(t, service)

	if _, err := service.FinishGame(t.Context(), gameID); err != nil {
		t.Fatalf("finish game: %v", err)
	}

	// Summary still accepts corrections through the same mutators.
	if _, err := service.RecordPoint(t.Context(), gameID, "rvh-07", stats.FreeThrow); err != nil {
		t.Fatalf("record point in summary: %v", err)
	}
}

func TestScoringService_RecordPoint_UnrosteredPlayer(t *testing.T) {
	service := newTestService(t, &stubGateway{})
	gameID := openLiveSession(t, service)

	if _, err := service.RecordPoint(t.Context(), gameID, "mtw-05", stats.TwoPointer); !errors.Is(err, ErrInvalidPlayer) {
		t.Fatalf("expected ErrInvalidPlayer for player from another game, got %v", err)
	}
}

func TestScoringService_RecordPoint_InvalidValue(t *testing.T) {
	service := newTestService(t, &stubGateway{})
	gameID := openLiveSession(t, service)

	if _, err := service.RecordPoint(t.Context(), gameID, "rvh-07", stats.PointValue(4)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestScoringService_UndoOnEmptyLogSkipsGateway(t *testing.T) {
	gateway := &stubGateway{}
	service := newTestService(t, gateway)
	gameID := openLiveSession(t, service)

	ledger, err := service.UndoLastPoint(t.Context(), gameID, "rvh-07")
	if err != nil {
		t.Fatalf("undo on empty log: %v", err)
	}
	if ledger.Points != 0 {
		t.Fatalf("expected untouched ledger, got %+v", ledger)
	}

	service.Flush()
	playerCalls, _, _, _ := gateway.counts()
	if playerCalls != 0 {
		t.Fatalf("expected no gateway traffic for a no-op undo, got %d calls", playerCalls)
	}

	// A real undo does round trip.
	if _, err := service.RecordPoint(t.Context(), gameID, "rvh-07", stats.TwoPointer); err != nil {
		t.Fatalf("record point: %v", err)
	}
	if _, err := service.UndoLastPoint(t.Context(), gameID, "rvh-07"); err != nil {
		t.Fatalf("undo: %v", err)
	}

	service.Flush()
	playerCalls, _, _, _ = gateway.counts()
	if playerCalls != 2 {
		t.Fatalf("expected 2 gateway submissions, got %d", playerCalls)
	}
}

func TestScoringService_DecrementAtFloorSkipsGateway(t *testing.T) {
	gateway := &stubGateway{}
	service := newTestService(t, gateway)
	gameID := openLiveSession(t, service)

	ledger, err := service.DecrementCounterStat(t.Context(), gameID, "rvh-07", stats.CounterRebounds)
	if err != nil {
		t.Fatalf("decrement at floor: %v", err)
	}
	if ledger.Rebounds != 0 {
		t.Fatalf("expected rebounds to stay 0, got %d", ledger.Rebounds)
	}

	service.Flush()
	playerCalls, _, _, _ := gateway.counts()
	if playerCalls != 0 {
		t.Fatalf("expected no gateway traffic at the floor, got %d calls", playerCalls)
	}
}

func TestScoringService_CounterRoundTrip(t *testing.T) {
	gateway := &stubGateway{}
	service := newTestService(t, gateway)
	gameID := openLiveSession(t, service)

	if _, err := service.IncrementCounterStat(t.Context(), gameID, "rvh-07", stats.CounterAssists); err != nil {
		t.Fatalf("increment: %v", err)
	}
	ledger, err := service.DecrementCounterStat(t.Context(), gameID, "rvh-07", stats.CounterAssists)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if ledger.Assists != 0 {
		t.Fatalf("expected 0 assists, got %d", ledger.Assists)
	}

	service.Flush()
	playerCalls, _, _, _ := gateway.counts()
	if playerCalls != 2 {
		t.Fatalf("expected 2 gateway submissions, got %d", playerCalls)
	}
}

func TestScoringService_Reconciliation_ServerWins(t *testing.T) {
	canonical := stats.PlayerGameStat{
		PlayerID: "rvh-07",
		PointLog: []stats.PointValue{stats.ThreePointer, stats.ThreePointer},
		Rebounds: 7,
	}
	gateway := &stubGateway{
		submitPlayer: func(gameID string, ledger stats.PlayerGameStat) (PlayerStatResult, error) {
			return PlayerStatResult{
				Player:     canonical,
				TeamScores: &TeamScores{Home: 6, Away: 10},
			}, nil
		},
	}
	service := newTestService(t, gateway)
	gameID := openLiveSession(t, service)

	if _, err := service.RecordPoint(t.Context(), gameID, "rvh-07", stats.TwoPointer); err != nil {
		t.Fatalf("record point: %v", err)
	}
	service.Flush()

	// Local optimistic state is replaced outright by the server's answer.
	ledger, err := service.PlayerStat(t.Context(), gameID, "rvh-07")
	if err != nil {
		t.Fatalf("player stat: %v", err)
	}
	if ledger.Points != 6 || ledger.ThreesMade != 2 || ledger.Rebounds != 7 {
		t.Fatalf("expected canonical ledger, got %+v", ledger)
	}
	if ledger.TeamID != memory.TeamIDRiverhawks || ledger.GameID != gameID {
		t.Fatalf("expected local identity fields preserved, got %+v", ledger)
	}

	snapshot, err := service.Session(t.Context(), gameID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if snapshot.Session.HomeScore != 6 || snapshot.Session.AwayScore != 10 {
		t.Fatalf("expected server scores 6-10, got %d-%d",
			snapshot.Session.HomeScore, snapshot.Session.AwayScore)
	}
}

func TestScoringService_SyncFailureKeepsLocalState(t *testing.T) {
	failing := errors.New("gateway 502")
	gateway := &stubGateway{
		submitPlayer: func(gameID string, ledger stats.PlayerGameStat) (PlayerStatResult, error) {
			return PlayerStatResult{}, failing
		},
	}
	service := newTestService(t, gateway)
	gameID := openLiveSession(t, service)

	if _, err := service.RecordPoint(t.Context(), gameID, "rvh-07", stats.TwoPointer); err != nil {
		t.Fatalf("record point must not fail on sync errors: %v", err)
	}
	service.Flush()

	ledger, err := service.PlayerStat(t.Context(), gameID, "rvh-07")
	if err != nil {
		t.Fatalf("player stat: %v", err)
	}
	if ledger.Points != 2 {
		t.Fatalf("expected local state kept after sync failure, got %+v", ledger)
	}

	snapshot, err := service.Session(t.Context(), gameID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if snapshot.LastSyncError == "" || snapshot.LastSyncErrorAt.IsZero() {
		t.Fatal("expected sync failure surfaced on snapshot")
	}

	// The next successful round trip clears the notice.
	gateway.mu.Lock()
	gateway.submitPlayer = nil
	gateway.mu.Unlock()

	if _, err := service.RecordPoint(t.Context(), gameID, "rvh-07", stats.FreeThrow); err != nil {
		t.Fatalf("record point: %v", err)
	}
	service.Flush()

	snapshot, err = service.Session(t.Context(), gameID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if snapshot.LastSyncError != "" {
		t.Fatalf("expected sync notice cleared, got %q", snapshot.LastSyncError)
	}
}

func TestScoringService_SetActivePlayer_RejectsUnrostered(t *testing.T) {
	service := newTestService(t, &stubGateway{})
	gameID := openLiveSession(t, service)

	if _, err := service.SetActivePlayer(t.Context(), gameID, "mtw-05"); !errors.Is(err, ErrInvalidPlayer) {
		t.Fatalf("expected ErrInvalidPlayer, got %v", err)
	}
}

func TestScoringService_CheckInPlayer(t *testing.T) {
	service := newTestService(t, &stubGateway{})
	gameID := openLiveSession(t, service)

	if _, err := service.SetActivePlayer(t.Context(), gameID, "rvh-07"); err != nil {
		t.Fatalf("set active player: %v", err)
	}

	// A registered player not on either seeded roster joins the home side.
	if _, err := service.CheckInPlayer(t.Context(), gameID, "mtw-05", memory.TeamIDRiverhawks); err != nil {
		t.Fatalf("check in: %v", err)
	}

	snapshot, err := service.Session(t.Context(), gameID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if snapshot.Session.ActivePlayerID != "rvh-07" {
		t.Fatalf("check-in must not disturb the active player, got %q", snapshot.Session.ActivePlayerID)
	}

	if _, err := service.RecordPoint(t.Context(), gameID, "mtw-05", stats.TwoPointer); err != nil {
		t.Fatalf("record point for checked-in player: %v", err)
	}

	// Unknown player and foreign team are rejected.
	if _, err := service.CheckInPlayer(t.Context(), gameID, "nobody", memory.TeamIDRiverhawks); !errors.Is(err, ErrInvalidPlayer) {
		t.Fatalf("expected ErrInvalidPlayer, got %v", err)
	}
	if _, err := service.CheckInPlayer(t.Context(), gameID, "mtw-09", memory.TeamIDWolves); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for team outside the game, got %v", err)
	}
}

func TestScoringService_TakeTimeout(t *testing.T) {
	service := newTestService(t, &stubGateway{})
	gameID := openLiveSession(t, service)

	for i := 0; i < session.TimeoutsPerHalf; i++ {
		if _, err := service.TakeTimeout(t.Context(), gameID, memory.TeamIDRiverhawks, session.FirstHalf); err != nil {
			t.Fatalf("take timeout: %v", err)
		}
	}

	snapshot, err := service.TakeTimeout(t.Context(), gameID, memory.TeamIDRiverhawks, session.FirstHalf)
	if err != nil {
		t.Fatalf("take timeout at zero: %v", err)
	}
	if snapshot.Session.Timeouts[memory.TeamIDRiverhawks].FirstHalf != 0 {
		t.Fatalf("expected empty bank, got %d",
			snapshot.Session.Timeouts[memory.TeamIDRiverhawks].FirstHalf)
	}

	if _, err := service.TakeTimeout(t.Context(), gameID, memory.TeamIDWolves, session.FirstHalf); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for team outside the game, got %v", err)
	}
}

func TestScoringService_FinishGame_LocalWinner(t *testing.T) {
	gateway := &stubGateway{}
	service := newTestService(t, gateway)
	gameID := openLiveSession(t, service)

	if _, err := service.RecordPoint(t.Context(), gameID, "rvh-07", stats.TwoPointer); err != nil {
		t.Fatalf("record point: %v", err)
	}
	if _, err := service.RecordPoint(t.Context(), gameID, "sun-08", stats.ThreePointer); err != nil {
		t.Fatalf("record point: %v", err)
	}

	snapshot, err := service.FinishGame(t.Context(), gameID)
	if err != nil {
		t.Fatalf("finish game: %v", err)
	}

	if snapshot.Session.State != session.StateSummary {
		t.Fatalf("expected summary, got %s", snapshot.Session.State)
	}
	if snapshot.Session.WinnerTeamID != memory.TeamIDPistons {
		t.Fatalf("expected away team winning 3-2, got %q", snapshot.Session.WinnerTeamID)
	}

	_, teamCalls, finalizeCalls, _ := gateway.counts()
	if teamCalls != 1 || finalizeCalls != 1 {
		t.Fatalf("expected one team submission and one finalize, got %d/%d", teamCalls, finalizeCalls)
	}
}

func TestScoringService_FinishGame_TieGoesToHomeTeam(t *testing.T) {
	service := newTestService(t, &stubGateway{})
	gameID := openLiveSession(t, service)

	snapshot, err := service.FinishGame(t.Context(), gameID)
	if err != nil {
		t.Fatalf("finish game: %v", err)
	}
	if snapshot.Session.WinnerTeamID != memory.TeamIDRiverhawks {
		t.Fatalf("expected tie resolved to home team, got %q", snapshot.Session.WinnerTeamID)
	}
}

func TestScoringService_FinishGame_GatewayResultIsAuthoritative(t *testing.T) {
	gateway := &stubGateway{
		finalize: func(gameID, homeTeamID, awayTeamID string) (FinalizeResult, error) {
			return FinalizeResult{WinnerTeamID: awayTeamID, PlayerOfGameID: "sun-08"}, nil
		},
	}
	service := newTestService(t, gateway)
	gameID := openLiveSession(t, service)

	// Local totals say home wins on the tie rule; the gateway disagrees.
	snapshot, err := service.FinishGame(t.Context(), gameID)
	if err != nil {
		t.Fatalf("finish game: %v", err)
	}
	if snapshot.Session.WinnerTeamID != memory.TeamIDPistons {
		t.Fatalf("expected gateway winner, got %q", snapshot.Session.WinnerTeamID)
	}
	if snapshot.Session.PlayerOfGameID != "sun-08" {
		t.Fatalf("expected gateway player of game, got %q", snapshot.Session.PlayerOfGameID)
	}
}

func TestScoringService_FinishGame_GatewayFailureNonFatal(t *testing.T) {
	gateway := &stubGateway{
		finalize: func(gameID, homeTeamID, awayTeamID string) (FinalizeResult, error) {
			return FinalizeResult{}, errors.New("league service down")
		},
	}
	gateway.submitTeamErr = errors.New("league service down")
	service := newTestService(t, gateway)
	gameID := openLiveSession(t, service)

	snapshot, err := service.FinishGame(t.Context(), gameID)
	if err != nil {
		t.Fatalf("finish game must not fail on gateway errors: %v", err)
	}
	if snapshot.Session.State != session.StateSummary {
		t.Fatalf("expected summary despite gateway failure, got %s", snapshot.Session.State)
	}
	if snapshot.Session.WinnerTeamID != memory.TeamIDRiverhawks {
		t.Fatalf("expected local winner kept, got %q", snapshot.Session.WinnerTeamID)
	}
	if snapshot.LastSyncError == "" {
		t.Fatal("expected sync failure surfaced on snapshot")
	}
}

func TestScoringService_FinishGame_AlreadyFinalized(t *testing.T) {
	service := newTestService(t, &stubGateway{})
	gameID := openLiveSession(t, service)

	if _, err := service.FinishGame(t.Context(), gameID); err != nil {
		t.Fatalf("finish game: %v", err)
	}
	if _, err := service.FinishGame(t.Context(), gameID); !errors.Is(err, session.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double finish, got %v", err)
	}
}

func TestScoringService_ReopenAndRefinish(t *testing.T) {
	service := newTestService(t, &stubGateway{})
	gameID := openLiveSession(t, service)

	if _, err := service.FinishGame(t.Context(), gameID); err != nil {
		t.Fatalf("finish game: %v", err)
	}
	if _, err := service.BackToScoring(t.Context(), gameID); err != nil {
		t.Fatalf("back to scoring: %v", err)
	}
	if _, err := service.RecordPoint(t.Context(), gameID, "rvh-07", stats.TwoPointer); err != nil {
		t.Fatalf("record point after reopen: %v", err)
	}
	snapshot, err := service.FinishGame(t.Context(), gameID)
	if err != nil {
		t.Fatalf("refinish: %v", err)
	}
	if snapshot.Session.WinnerTeamID != memory.TeamIDRiverhawks {
		t.Fatalf("expected home winner 2-0, got %q", snapshot.Session.WinnerTeamID)
	}
}

func TestScoringService_SetPlayerOfGame(t *testing.T) {
	gateway := &stubGateway{}
	service := newTestService(t, gateway)
	gameID := openLiveSession(t, service)

	if _, err := service.SetPlayerOfGame(t.Context(), gameID, "mtw-05"); !errors.Is(err, ErrInvalidPlayer) {
		t.Fatalf("expected ErrInvalidPlayer, got %v", err)
	}

	snapshot, err := service.SetPlayerOfGame(t.Context(), gameID, "rvh-07")
	if err != nil {
		t.Fatalf("set player of game: %v", err)
	}
	if snapshot.Session.PlayerOfGameID != "rvh-07" {
		t.Fatalf("expected rvh-07, got %q", snapshot.Session.PlayerOfGameID)
	}

	_, _, _, mvpCalls := gateway.counts()
	if mvpCalls != 1 {
		t.Fatalf("expected one gateway call, got %d", mvpCalls)
	}
}

func TestScoringService_SetPlayerOfGame_GatewayFailureKeepsLocal(t *testing.T) {
	gateway := &stubGateway{mvpErr: errors.New("league service down")}
	service := newTestService(t, gateway)
	gameID := openLiveSession(t, service)

	snapshot, err := service.SetPlayerOfGame(t.Context(), gameID, "rvh-07")
	if err != nil {
		t.Fatalf("set player of game must not fail on gateway errors: %v", err)
	}
	if snapshot.Session.PlayerOfGameID != "rvh-07" {
		t.Fatalf("expected local selection kept, got %q", snapshot.Session.PlayerOfGameID)
	}
	if snapshot.LastSyncError == "" {
		t.Fatal("expected sync failure surfaced on snapshot")
	}
}

func TestScoringService_ListenerReceivesMutations(t *testing.T) {
	service := newTestService(t, &stubGateway{})
	listener := &recordingListener{}
	service.SetListener(listener)

	gameID := openLiveSession(t, service)
	if _, err := service.RecordPoint(t.Context(), gameID, "rvh-07", stats.TwoPointer); err != nil {
		t.Fatalf("record point: %v", err)
	}
	service.Flush()

	if listener.count() < 3 {
		t.Fatalf("expected open, start and point notifications, got %d", listener.count())
	}
}

func TestScoringService_ActivePlayerStat(t *testing.T) {
	service := newTestService(t, &stubGateway{})
	gameID := openLiveSession(t, service)

	if _, err := service.ActivePlayerStat(t.Context(), gameID); !errors.Is(err, ErrNoActivePlayer) {
		t.Fatalf("expected ErrNoActivePlayer, got %v", err)
	}

	if _, err := service.SetActivePlayer(t.Context(), gameID, "rvh-07"); err != nil {
		t.Fatalf("set active player: %v", err)
	}
	if _, err := service.RecordPoint(t.Context(), gameID, "", stats.ThreePointer); err != nil {
		t.Fatalf("record point: %v", err)
	}

	ledger, err := service.ActivePlayerStat(t.Context(), gameID)
	if err != nil {
		t.Fatalf("active player stat: %v", err)
	}
	if ledger.PlayerID != "rvh-07" || ledger.Points != 3 {
		t.Fatalf("unexpected ledger %+v", ledger)
	}
}

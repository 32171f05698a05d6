package leaguesync

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hooplabs/courtside/internal/domain/stats"
	"github.com/hooplabs/courtside/internal/platform/resilience"
	"github.com/hooplabs/courtside/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()

	return NewClient(ClientConfig{
		BaseURL:        baseURL,
		Token:          "test-token",
		Timeout:        5 * time.Second,
		CircuitBreaker: breaker,
	})
}

func TestClient_SubmitPlayerStat(t *testing.T) {
	ledger := stats.NewPlayerGameStat("rvh-07", "game-1", "riverhawks")
	require.NoError(t, ledger.RecordPoint(stats.TwoPointer))

	var received submitPlayerStatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/games/game-1/player-stats", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(submissionRefHeader))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		// The server's derived fields are deliberately wrong: the client must
		// rederive them from the point log.
		resp := submitPlayerStatResponse{
			Player: playerStatPayload{
				PlayerID: "rvh-07",
				GameID:   "game-1",
				TeamID:   "riverhawks",
				PointLog: []int{3, 3},
				Points:   99,
				Rebounds: 4,
			},
			TeamScores: &teamScoresPayload{Home: 6, Away: 2},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, resilience.CircuitBreakerConfig{})

	totals := stats.SumTeam("riverhawks", "game-1", []stats.PlayerGameStat{ledger})
	result, err := client.SubmitPlayerStat(t.Context(), "game-1", ledger, totals)
	require.NoError(t, err)

	assert.Equal(t, "rvh-07", received.Player.PlayerID)
	assert.Equal(t, []int{2}, received.Player.PointLog)
	assert.Equal(t, 2, received.TeamTotals.Points)

	assert.Equal(t, 6, result.Player.Points)
	assert.Equal(t, 2, result.Player.ThreesMade)
	assert.Equal(t, 4, result.Player.Rebounds)
	require.NotNil(t, result.TeamScores)
	assert.Equal(t, 6, result.TeamScores.Home)
	assert.Equal(t, 2, result.TeamScores.Away)
}

func TestClient_SubmitPlayerStat_RejectsInvalidCanonicalLog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := submitPlayerStatResponse{
			Player: playerStatPayload{
				PlayerID: "rvh-07",
				GameID:   "game-1",
				TeamID:   "riverhawks",
				PointLog: []int{5},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, resilience.CircuitBreakerConfig{})

	_, err := client.SubmitPlayerStat(t.Context(), "game-1", stats.NewPlayerGameStat("rvh-07", "game-1", "riverhawks"), stats.TeamGameStat{})
	require.ErrorIs(t, err, usecase.ErrSyncFailure)
}

func TestClient_NonSuccessStatusIsSyncFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, resilience.CircuitBreakerConfig{})

	err := client.SubmitTeamStat(t.Context(), "game-1", stats.TeamGameStat{}, stats.TeamGameStat{})
	require.ErrorIs(t, err, usecase.ErrSyncFailure)
}

func TestClient_EmptyBaseURLIsSyncFailure(t *testing.T) {
	client := newTestClient(t, "", resilience.CircuitBreakerConfig{})

	_, err := client.FetchGameStats(t.Context(), "game-1")
	require.ErrorIs(t, err, usecase.ErrSyncFailure)
}

func TestClient_CircuitBreakerOpensAfterThreshold(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for i := 0; i < 2; i++ {
		err := client.SetPlayerOfGame(t.Context(), "game-1", "rvh-07")
		require.ErrorIs(t, err, usecase.ErrSyncFailure)
	}
	require.Equal(t, 2, hits)

	// Third call is rejected locally; the server never sees it.
	err := client.SetPlayerOfGame(t.Context(), "game-1", "rvh-07")
	require.ErrorIs(t, err, usecase.ErrSyncFailure)
	assert.Equal(t, 2, hits)
}

func TestClient_FinalizeGame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/games/game-1/finalize", r.URL.Path)

		var req finalizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "riverhawks", req.HomeTeamID)
		assert.Equal(t, "sunset-pistons", req.AwayTeamID)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(finalizeResponse{
			WinnerTeamID:   "riverhawks",
			PlayerOfGameID: "rvh-07",
		}))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, resilience.CircuitBreakerConfig{})

	result, err := client.FinalizeGame(t.Context(), "game-1", "riverhawks", "sunset-pistons")
	require.NoError(t, err)
	assert.Equal(t, "riverhawks", result.WinnerTeamID)
	assert.Equal(t, "rvh-07", result.PlayerOfGameID)
}

func TestClient_FetchGameStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/games/game-1/stats", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(gameStatsResponse{
			Players: []playerStatPayload{
				{PlayerID: "rvh-07", GameID: "game-1", TeamID: "riverhawks", PointLog: []int{2, 1}},
			},
			Scores: &teamScoresPayload{Home: 3, Away: 0},
		}))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, resilience.CircuitBreakerConfig{})

	snapshot, err := client.FetchGameStats(t.Context(), "game-1")
	require.NoError(t, err)
	require.Len(t, snapshot.Players, 1)
	assert.Equal(t, 3, snapshot.Players[0].Points)
	assert.Equal(t, 1, snapshot.Players[0].FreeThrowsMade)
	require.NotNil(t, snapshot.Scores)
	assert.Equal(t, 3, snapshot.Scores.Home)
}

func TestClient_EmptyResponseBodyIsAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, resilience.CircuitBreakerConfig{})

	require.NoError(t, client.SetPlayerOfGame(t.Context(), "game-1", "rvh-07"))
}

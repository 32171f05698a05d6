package leaguesync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/hooplabs/courtside/internal/domain/stats"
	idgen "github.com/hooplabs/courtside/internal/platform/id"
	"github.com/hooplabs/courtside/internal/platform/logging"
	"github.com/hooplabs/courtside/internal/platform/resilience"
	"github.com/hooplabs/courtside/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout      = 15 * time.Second
	maxErrorBodyForLog  = 2048
	submissionRefHeader = "X-Submission-Ref"
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	Logger         *logging.Logger
	IDGenerator    idgen.Generator
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the league data service, the reconciliation authority for
// every scoring mutation. Calls are not retried; failures surface as
// usecase.ErrSyncFailure and the caller's optimistic state stands.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	logger         *logging.Logger
	idGen          idgen.Generator
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

var _ usecase.SyncGateway = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = idgen.NewRandomGenerator()
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:          strings.TrimSpace(cfg.Token),
		logger:         logger,
		idGen:          idGen,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) SubmitPlayerStat(ctx context.Context, gameID string, ledger stats.PlayerGameStat, teamTotals stats.TeamGameStat) (usecase.PlayerStatResult, error) {
	body := submitPlayerStatRequest{
		Player:     playerStatToPayload(ledger),
		TeamTotals: teamStatToPayload(teamTotals),
	}

	var decoded submitPlayerStatResponse
	path := fmt.Sprintf("/v1/games/%s/player-stats", gameID)
	if err := c.doJSON(ctx, http.MethodPost, path, body, &decoded); err != nil {
		return usecase.PlayerStatResult{}, err
	}

	canonical, err := payloadToPlayerStat(decoded.Player)
	if err != nil {
		return usecase.PlayerStatResult{}, fmt.Errorf("%w: %v", usecase.ErrSyncFailure, crerr.Wrap(err, "decode canonical player stat"))
	}

	return usecase.PlayerStatResult{
		Player:     canonical,
		TeamScores: payloadToScores(decoded.TeamScores),
	}, nil
}

func (c *Client) SubmitTeamStat(ctx context.Context, gameID string, home, away stats.TeamGameStat) error {
	body := submitTeamStatRequest{
		Home: teamStatToPayload(home),
		Away: teamStatToPayload(away),
	}

	path := fmt.Sprintf("/v1/games/%s/team-stats", gameID)

	return c.doJSON(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) FinalizeGame(ctx context.Context, gameID, homeTeamID, awayTeamID string) (usecase.FinalizeResult, error) {
	body := finalizeRequest{HomeTeamID: homeTeamID, AwayTeamID: awayTeamID}

	var decoded finalizeResponse
	path := fmt.Sprintf("/v1/games/%s/finalize", gameID)
	if err := c.doJSON(ctx, http.MethodPost, path, body, &decoded); err != nil {
		return usecase.FinalizeResult{}, err
	}

	return usecase.FinalizeResult{
		WinnerTeamID:   decoded.WinnerTeamID,
		PlayerOfGameID: decoded.PlayerOfGameID,
	}, nil
}

func (c *Client) SetPlayerOfGame(ctx context.Context, gameID, playerID string) error {
	body := playerOfGameRequest{PlayerID: playerID}

	path := fmt.Sprintf("/v1/games/%s/player-of-game", gameID)

	return c.doJSON(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) FetchGameStats(ctx context.Context, gameID string) (usecase.GameStatsSnapshot, error) {
	var decoded gameStatsResponse
	path := fmt.Sprintf("/v1/games/%s/stats", gameID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &decoded); err != nil {
		return usecase.GameStatsSnapshot{}, err
	}

	out := usecase.GameStatsSnapshot{
		Players: make([]stats.PlayerGameStat, 0, len(decoded.Players)),
		Scores:  payloadToScores(decoded.Scores),
	}
	for _, payload := range decoded.Players {
		ledger, err := payloadToPlayerStat(payload)
		if err != nil {
			return usecase.GameStatsSnapshot{}, fmt.Errorf("%w: %v", usecase.ErrSyncFailure, crerr.Wrap(err, "decode game stats"))
		}
		out.Players = append(out.Players, ledger)
	}

	return out, nil
}

// doJSON performs one round trip. Exactly one attempt: the scoring engine
// reports failures instead of retrying them.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: %v", usecase.ErrSyncFailure, crerr.New("league sync base url is not configured"))
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "league sync circuit breaker rejected request",
				"path", path, "state", c.breaker.State())
			return fmt.Errorf("%w: %v", usecase.ErrSyncFailure, err)
		}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	var reader io.Reader
	if body != nil {
		encoded, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %v", usecase.ErrSyncFailure, crerr.Wrap(err, "marshal request body"))
		}
		if _, err := buf.Write(encoded); err != nil {
			return fmt.Errorf("%w: %v", usecase.ErrSyncFailure, crerr.Wrap(err, "buffer request body"))
		}
		reader = bytes.NewReader(buf.B)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrSyncFailure, crerr.Wrap(err, "build request"))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if ref, refErr := c.idGen.NewID(); refErr == nil {
		req.Header.Set(submissionRefHeader, ref)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordResult(err)
		c.logger.WarnContext(ctx, "league sync request failed",
			"method", method, "path", path, "error", err,
			"duration_ms", time.Since(started).Milliseconds())
		return fmt.Errorf("%w: %v", usecase.ErrSyncFailure, crerr.Wrapf(err, "%s %s", method, path))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordResult(err)
		return fmt.Errorf("%w: %v", usecase.ErrSyncFailure, crerr.Wrap(err, "read response body"))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := crerr.Newf("%s %s returned status %d", method, path, resp.StatusCode)
		c.recordResult(statusErr)
		c.logger.WarnContext(ctx, "league sync request rejected",
			"method", method, "path", path, "status", resp.StatusCode,
			"body", truncateForLog(string(raw), maxErrorBodyForLog))
		return fmt.Errorf("%w: %v", usecase.ErrSyncFailure, statusErr)
	}

	c.recordResult(nil)

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrSyncFailure, crerr.Wrapf(err, "decode %s %s response", method, path))
	}

	return nil
}

func (c *Client) recordResult(err error) {
	if !c.circuitEnabled {
		return
	}
	if err != nil {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}

	return s[:max] + "...(truncated)"
}

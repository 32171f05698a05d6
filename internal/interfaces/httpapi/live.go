package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/hooplabs/courtside/internal/usecase"
)

const (
	liveWriteTimeout   = 10 * time.Second
	liveReadTimeout    = 60 * time.Second
	livePingInterval   = 30 * time.Second
	liveSendBufferSize = 16
)

// LiveFeed pushes session snapshots to websocket subscribers, one pool per
// game. It implements usecase.SessionListener so the scoring service can
// notify it after every accepted mutation and reconciliation.
type LiveFeed struct {
	scoringService *usecase.ScoringService
	logger         *slog.Logger
	upgrader       websocket.Upgrader

	mu    sync.RWMutex
	pools map[string]map[*liveConn]struct{}
}

type liveConn struct {
	gameID string
	conn   *websocket.Conn
	send   chan []byte
}

func NewLiveFeed(scoringService *usecase.ScoringService, logger *slog.Logger) *LiveFeed {
	if logger == nil {
		logger = slog.Default()
	}

	return &LiveFeed{
		scoringService: scoringService,
		logger:         logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CORS is enforced by the shared middleware; the browser origin
			// check adds nothing for a same-network scorer device.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		pools: make(map[string]map[*liveConn]struct{}),
	}
}

// SessionUpdated fans the snapshot out to every subscriber of the game. Slow
// subscribers are dropped rather than allowed to stall the scorer.
func (f *LiveFeed) SessionUpdated(snapshot usecase.SessionSnapshot) {
	gameID := snapshot.Session.GameID

	f.mu.RLock()
	pool := f.pools[gameID]
	targets := make([]*liveConn, 0, len(pool))
	for c := range pool {
		targets = append(targets, c)
	}
	f.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	payload, err := sonic.Marshal(snapshotToDTO(snapshot))
	if err != nil {
		f.logger.Error("marshal live snapshot failed", "game_id", gameID, "error", err)
		return
	}

	for _, c := range targets {
		select {
		case c.send <- payload:
		default:
			f.logger.Warn("live subscriber too slow, dropping", "game_id", gameID)
			f.unregister(c)
			_ = c.conn.Close()
		}
	}
}

// ServeWS upgrades the request and streams snapshots for one game. The
// current snapshot is sent immediately so a reconnecting scoreboard does not
// wait for the next mutation.
func (f *LiveFeed) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	gameID := strings.TrimSpace(r.PathValue("gameID"))

	snapshot, err := f.scoringService.Session(ctx, gameID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.WarnContext(ctx, "websocket upgrade failed", "game_id", gameID, "error", err)
		return
	}

	c := &liveConn{
		gameID: gameID,
		conn:   conn,
		send:   make(chan []byte, liveSendBufferSize),
	}
	f.register(c)

	if payload, err := sonic.Marshal(snapshotToDTO(snapshot)); err == nil {
		c.send <- payload
	}

	go f.writePump(c)
	go f.readPump(c)
}

func (f *LiveFeed) register(c *liveConn) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pools[c.gameID] == nil {
		f.pools[c.gameID] = make(map[*liveConn]struct{})
	}
	f.pools[c.gameID][c] = struct{}{}
}

func (f *LiveFeed) unregister(c *liveConn) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pool, ok := f.pools[c.gameID]
	if !ok {
		return
	}
	if _, ok := pool[c]; !ok {
		return
	}
	// The send channel is never closed; broadcasts may still be holding a
	// reference and the pumps exit on connection close instead.
	delete(pool, c)
	if len(pool) == 0 {
		delete(f.pools, c.gameID)
	}
}

func (f *LiveFeed) writePump(c *liveConn) {
	ticker := time.NewTicker(livePingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		f.unregister(c)
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so pongs are processed; the feed is one-way
// and inbound payloads are discarded.
func (f *LiveFeed) readPump(c *liveConn) {
	defer func() {
		f.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(liveReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(liveReadTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.logger.Warn("live subscriber closed unexpectedly", "game_id", c.gameID, "error", err)
			}
			return
		}
	}
}

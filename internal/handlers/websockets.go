package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms
)

type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSession is one live telemetry stream: an upgraded connection tied
// to the bearer-token identity that opened it (set by
// userIdMiddleware), so every log line for the connection's lifetime
// can be attributed to a user rather than just a remote address.
type wsSession struct {
	h      *Handler
	conn   *websocket.Conn
	userID int
}

func (h *Handler) wsConnect(c *gin.Context) {
	userID, _ := c.Get("userId")
	uid, _ := userID.(int)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "userId", uid, "err", err)
		}
		return
	}

	sess := &wsSession{h: h, conn: conn, userID: uid}
	sess.run(c.Request.Context(), h.parseInterval(c))
}

func (s *wsSession) run(ctx context.Context, interval time.Duration) {
	defer func() { _ = s.conn.Close() }()

	s.conn.SetReadLimit(maxMsgSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go s.readLoop(done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	if err := s.sendState(); err != nil {
		s.logw("ws_write_failed_initial", err)
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logw("ws_ping_failed", err)
				return
			}
		case <-ticker.C:
			if err := s.sendState(); err != nil {
				s.logw("ws_write_failed", err)
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000, both bounded by maxInterval.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	interval := defaultInterval

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return interval
}

// readLoop drains incoming frames so pongs get processed and the socket's
// closure is noticed; the command channel has no client-to-server traffic.
func (s *wsSession) readLoop(done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			s.logw("ws_read_closed", err)
			return
		}
	}
}

func (s *wsSession) sendState() error {
	snap := s.h.core.Snapshot()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(wsEnvelope{Type: "state", Data: snap})
}

func (s *wsSession) logw(event string, err error) {
	if s.h.log == nil {
		return
	}
	s.h.log.Infow(event, "userId", s.userID, "err", err)
}

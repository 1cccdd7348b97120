// Package signal serves the room hub over WebSocket.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/dkeye/StudyHub/internal/app/orch"
	"github.com/dkeye/StudyHub/internal/config"
	"github.com/dkeye/StudyHub/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

type SignalWSController struct {
	Orch    *orch.Orchestrator
	Cfg     config.WSConfig
	Limiter *RoomRateLimiter
}

func NewSignalWSController(o *orch.Orchestrator, cfg config.WSConfig) *SignalWSController {
	return &SignalWSController{
		Orch:    o,
		Cfg:     cfg,
		Limiter: NewRoomRateLimiter(cfg.EventsPerWindow, cfg.EventWindow),
	}
}

// WsSignalConn implements core.SignalConnection over a websocket with a bounded send queue.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{conn: ws, send: make(chan core.Frame, buffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection until it closes.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("remote", c.ClientIP()).Msg("new WS connection")
	ws.SetReadLimit(ctl.readLimit())

	conn := newWsSignalConn(ws, ctl.Cfg.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)

	sess, err := ctl.handshake(ctx, conn, cancel)
	if err != nil {
		cancel()
		ctl.reject(ws, err)
		return
	}

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sess.SID(), conn)
}

func (ctl *SignalWSController) readLimit() int64 {
	if ctl.Cfg.ReadLimit > 0 {
		return ctl.Cfg.ReadLimit
	}
	return 64 << 10
}

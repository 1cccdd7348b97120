package signal

import (
	"context"
	"time"

	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const msgRateLimited = "Too many events, slow down."

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.pingPeriod())
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.writeWait())); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.writeWait())); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, sid core.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.Limiter.Forget(sid)
		ctl.Orch.OnDisconnect(sid)
		c.Close()
	}()

	pongWait := ctl.pongWait()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			if err := ctl.Limiter.Check(sid); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("frame dropped")
				_ = c.TrySend(protocol.ErrorFrame(msgRateLimited))
				continue
			}
			ctl.Orch.HandleFrame(ctx, sid, data)
		}
	}
}

func (ctl *SignalWSController) pingPeriod() time.Duration {
	if ctl.Cfg.PingPeriod > 0 {
		return ctl.Cfg.PingPeriod
	}
	return 54 * time.Second
}

func (ctl *SignalWSController) pongWait() time.Duration {
	if ctl.Cfg.PongWait > 0 {
		return ctl.Cfg.PongWait
	}
	return 60 * time.Second
}

func (ctl *SignalWSController) writeWait() time.Duration {
	if ctl.Cfg.WriteWait > 0 {
		return ctl.Cfg.WriteWait
	}
	return 10 * time.Second
}

package signal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/dkeye/StudyHub/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const defaultAuthTimeout = 10 * time.Second

var errAuthExpected = fmt.Errorf("%w: first event must be auth", domain.ErrAuthentication)

// handshake waits for the auth event and admits the connection. It answers with
// ready carrying the resolved identity.
func (ctl *SignalWSController) handshake(ctx context.Context, conn *WsSignalConn, cancel context.CancelFunc) (core.MemberSession, error) {
	timeout := ctl.Cfg.AuthTimeout
	if timeout <= 0 {
		timeout = defaultAuthTimeout
	}
	if err := conn.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	_, raw, err := conn.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("%w: no auth event: %w", domain.ErrAuthentication, err)
	}
	ev, _, err := protocol.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthentication, err)
	}
	auth, ok := ev.(protocol.Auth)
	if !ok {
		return nil, errAuthExpected
	}

	sess, err := ctl.Orch.Admit(ctx, auth.Token, conn, cancel)
	if err != nil {
		return nil, err
	}
	if err := conn.conn.SetReadDeadline(time.Time{}); err != nil {
		ctl.Orch.OnDisconnect(sess.SID())
		return nil, err
	}

	ready, err := protocol.Encode(protocol.EventReady, sess.Meta().User)
	if err != nil {
		ctl.Orch.OnDisconnect(sess.SID())
		return nil, err
	}
	_ = conn.TrySend(ready)
	log.Info().Str("module", "signal").Str("sid", string(sess.SID())).Str("user", string(sess.Meta().User.ID)).Msg("handshake done")
	return sess, nil
}

// reject reports a failed handshake and closes with policy violation.
func (ctl *SignalWSController) reject(ws *websocket.Conn, err error) {
	log.Warn().Err(err).Str("module", "signal").Msg("handshake rejected")
	msg := "Authentication failed."
	if !errors.Is(err, domain.ErrAuthentication) {
		msg = "Handshake failed."
	}
	deadline := time.Now().Add(ctl.writeWait())
	_ = ws.SetWriteDeadline(deadline)
	_ = ws.WriteMessage(websocket.TextMessage, protocol.ErrorFrame(msg))
	_ = ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, msg), deadline)
	_ = ws.Close()
}

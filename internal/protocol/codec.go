package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/go-playground/validator/v10"
)

var (
	ErrUnknownEvent = fmt.Errorf("%w: unknown event", domain.ErrProtocol)
	ErrBadPayload   = fmt.Errorf("%w: bad payload", domain.ErrProtocol)
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Envelope is the wire frame in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ack   *int            `json:"ack,omitempty"`
}

// Decode parses one inbound frame into its event variant.
// The ack id is returned even when the payload is rejected.
func Decode(raw []byte) (ClientEvent, *int, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	ev, err := newEvent(env.Event)
	if err != nil {
		return nil, env.Ack, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, env.Ack, fmt.Errorf("%w: %s without data", ErrBadPayload, env.Event)
	}
	if err := json.Unmarshal(env.Data, ev); err != nil {
		return nil, env.Ack, fmt.Errorf("%w: %s: %v", ErrBadPayload, env.Event, err)
	}
	if err := validate.Struct(ev); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, env.Ack, fmt.Errorf("%w: %s: field %s failed %q", ErrBadPayload, env.Event, verrs[0].Field(), verrs[0].Tag())
		}
		return nil, env.Ack, fmt.Errorf("%w: %s: %v", ErrBadPayload, env.Event, err)
	}
	return deref(ev), env.Ack, nil
}

func newEvent(name string) (ClientEvent, error) {
	switch name {
	case EventAuth:
		return &Auth{}, nil
	case EventJoin:
		return &Join{}, nil
	case EventMessageSend:
		return &SendMessage{}, nil
	case EventTypingStart:
		return &TypingStart{}, nil
	case EventTypingStop:
		return &TypingStop{}, nil
	case EventVideoLoad:
		return &VideoLoad{}, nil
	case EventVideoPlay:
		return &VideoPlay{}, nil
	case EventVideoPause:
		return &VideoPause{}, nil
	case EventVideoSeek:
		return &VideoSeek{}, nil
	case EventWhiteboardDraw:
		return &WhiteboardDraw{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
}

// deref hands out value variants so handlers can switch on plain types.
func deref(ev ClientEvent) ClientEvent {
	switch e := ev.(type) {
	case *Auth:
		return *e
	case *Join:
		return *e
	case *SendMessage:
		return *e
	case *TypingStart:
		return *e
	case *TypingStop:
		return *e
	case *VideoLoad:
		return *e
	case *VideoPlay:
		return *e
	case *VideoPause:
		return *e
	case *VideoSeek:
		return *e
	case *WhiteboardDraw:
		return *e
	}
	return ev
}

// Encode builds an outbound frame.
func Encode(event string, data any) (core.Frame, error) {
	return encode(event, data, nil)
}

// EncodeAck builds an outbound frame answering the request with the given ack id.
func EncodeAck(event string, data any, ack int) (core.Frame, error) {
	return encode(event, data, &ack)
}

func encode(event string, data any, ack *int) (core.Frame, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event, err)
	}
	out, err := json.Marshal(Envelope{Event: event, Data: b, Ack: ack})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event, err)
	}
	return out, nil
}

// ErrorFrame encodes an error event. It cannot fail.
func ErrorFrame(message string) core.Frame {
	f, _ := Encode(EventError, Error{Message: message})
	return f
}

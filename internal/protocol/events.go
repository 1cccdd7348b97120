// Package protocol defines the socket event catalog and its JSON codec.
package protocol

import (
	"encoding/json"

	"github.com/dkeye/StudyHub/internal/domain"
)

// Inbound event names.
const (
	EventAuth           = "auth"
	EventJoin           = "join"
	EventMessageSend    = "message:send"
	EventTypingStart    = "typing:start"
	EventTypingStop     = "typing:stop"
	EventVideoLoad      = "video:load"
	EventVideoPlay      = "video:play"
	EventVideoPause     = "video:pause"
	EventVideoSeek      = "video:seek"
	EventWhiteboardDraw = "whiteboard:draw"
)

// Outbound event names.
const (
	EventReady            = "ready"
	EventAck              = "ack"
	EventMessageNew       = "message:new"
	EventVideoLoadNew     = "video:load:new"
	EventVideoPlayNew     = "video:play:new"
	EventVideoPauseNew    = "video:pause:new"
	EventVideoSeekNew     = "video:seek:new"
	EventWhiteboardUpdate = "whiteboard:update"
	EventError            = "error"
)

// ClientEvent is one decoded inbound event. The set of variants is closed.
type ClientEvent interface {
	Name() string
	isClientEvent()
}

// RoomEvent is a ClientEvent addressed to a single room.
type RoomEvent interface {
	ClientEvent
	Room() domain.RoomID
}

type roomRef struct {
	RoomID domain.RoomID `json:"roomId" validate:"required,max=64"`
}

func (r roomRef) Room() domain.RoomID { return r.RoomID }
func (roomRef) isClientEvent()        {}

type Auth struct {
	Token string `json:"token" validate:"required"`
}

func (Auth) Name() string   { return EventAuth }
func (Auth) isClientEvent() {}

type Join struct{ roomRef }

func (Join) Name() string { return EventJoin }

type SendMessage struct {
	roomRef
	Text        string   `json:"text" validate:"required"`
	Attachments []string `json:"attachments" validate:"omitempty,max=10,dive,url"`
}

func (SendMessage) Name() string { return EventMessageSend }

type TypingStart struct{ roomRef }

func (TypingStart) Name() string { return EventTypingStart }

type TypingStop struct{ roomRef }

func (TypingStop) Name() string { return EventTypingStop }

type VideoLoad struct {
	roomRef
	URL string `json:"url" validate:"required,url"`
}

func (VideoLoad) Name() string { return EventVideoLoad }

type VideoPlay struct {
	roomRef
	Position float64 `json:"position" validate:"gte=0"`
}

func (VideoPlay) Name() string { return EventVideoPlay }

type VideoPause struct {
	roomRef
	Position float64 `json:"position" validate:"gte=0"`
}

func (VideoPause) Name() string { return EventVideoPause }

type VideoSeek struct {
	roomRef
	Position float64 `json:"position" validate:"gte=0"`
}

func (VideoSeek) Name() string { return EventVideoSeek }

type WhiteboardDraw struct {
	roomRef
	Elements json.RawMessage `json:"elements"`
	AppState json.RawMessage `json:"appState"`
}

func (WhiteboardDraw) Name() string { return EventWhiteboardDraw }

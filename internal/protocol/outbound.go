package protocol

import (
	"encoding/json"
	"time"

	"github.com/dkeye/StudyHub/internal/domain"
)

// MessageNew is the broadcast form of a stored chat message.
type MessageNew struct {
	ID          domain.MessageID `json:"_id"`
	Text        string           `json:"text"`
	Attachments []string         `json:"attachments"`
	CreatedAt   time.Time        `json:"createdAt"`
	User        domain.Identity  `json:"user"`
}

func NewMessageNew(m domain.Message, author domain.Identity) MessageNew {
	att := m.Attachments
	if att == nil {
		att = []string{}
	}
	return MessageNew{
		ID:          m.ID,
		Text:        m.Text,
		Attachments: att,
		CreatedAt:   m.CreatedAt,
		User:        author,
	}
}

type VideoLoadNew struct {
	URL string `json:"url"`
}

type Position struct {
	Position float64 `json:"position"`
}

type WhiteboardUpdate struct {
	Elements json.RawMessage `json:"elements"`
	AppState json.RawMessage `json:"appState"`
}

type JoinAck struct {
	RoomID domain.RoomID `json:"roomId"`
}

type Error struct {
	Message string `json:"message"`
}

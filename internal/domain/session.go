package domain

import (
	"encoding/json"
	"time"
)

// VideoSession is the last known playback state of a room. Last write wins.
type VideoSession struct {
	RoomID    RoomID
	URL       string
	Position  float64
	Playing   bool
	UpdatedBy UserID
	UpdatedAt time.Time
}

// Whiteboard holds the opaque {elements, appState} document of a room.
type Whiteboard struct {
	RoomID    RoomID
	Data      json.RawMessage
	UpdatedBy UserID
	UpdatedAt time.Time
}

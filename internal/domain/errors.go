package domain

import "errors"

// Session layer taxonomy.
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrNotMember      = errors.New("not a member of this room")
	ErrNotJoined      = errors.New("room not joined")
	ErrPersistence    = errors.New("persistence failed")
	ErrProtocol       = errors.New("protocol violation")
)

// Resource errors.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limited")
)

// Validation errors.
var (
	ErrRoomNameEmpty     = errors.New("room name empty")
	ErrRoomNameTooLong   = errors.New("room name too long")
	ErrRoomDescTooLong   = errors.New("room description too long")
	ErrVisibilityInvalid = errors.New("visibility must be public or private")
	ErrRoomCodeExhausted = errors.New("could not allocate a unique room code")
	ErrMessageEmpty      = errors.New("message text is required")
	ErrMessageTooLong    = errors.New("message text too long")
	ErrTaskTitleEmpty    = errors.New("task title is required")
	ErrTaskStatusInvalid = errors.New("task status invalid")
	ErrAssigneeNotMember = errors.New("assignee is not a member of this room")
	ErrNoteTitleEmpty    = errors.New("note title is required")
	ErrNoteTitleTooLong  = errors.New("note title too long")
	ErrNoteContentEmpty  = errors.New("note content is required")
	ErrCommentEmpty      = errors.New("comment text is required")
	ErrCommentTooLong    = errors.New("comment too long")
	ErrEventTitleEmpty   = errors.New("event title is required")
	ErrEventTitleTooLong = errors.New("event title too long")
	ErrEventRange        = errors.New("event needs a start and an end not before it")
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
	ErrPasswordTooShort  = errors.New("password too short")
)

package storage

import "gorm.io/gorm"

// Stores bundles every repository over one database handle.
type Stores struct {
	Users       *UserRepository
	Rooms       *RoomRepository
	Messages    *MessageRepository
	Sessions    *SessionRepository
	Invitations *InvitationRepository
	Tasks       *TaskRepository
	Notes       *NoteRepository
	Comments    *CommentRepository
	Events      *EventRepository
}

func NewStores(db *gorm.DB) *Stores {
	return &Stores{
		Users:       NewUserRepository(db),
		Rooms:       NewRoomRepository(db),
		Messages:    NewMessageRepository(db),
		Sessions:    NewSessionRepository(db),
		Invitations: NewInvitationRepository(db),
		Tasks:       NewTaskRepository(db),
		Notes:       NewNoteRepository(db),
		Comments:    NewCommentRepository(db),
		Events:      NewEventRepository(db),
	}
}

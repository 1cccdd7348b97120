package rooms

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/StudyHub/internal/config"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/dkeye/StudyHub/internal/notify"
	"github.com/dkeye/StudyHub/internal/storage"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []notify.Mail
}

func (m *recordingMailer) Send(_ context.Context, mail notify.Mail) error {
	m.mu.Lock()
	m.sent = append(m.sent, mail)
	m.mu.Unlock()
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type recordingEvictor struct{ rooms []domain.RoomID }

func (e *recordingEvictor) EvictRoom(room domain.RoomID) { e.rooms = append(e.rooms, room) }

type fixture struct {
	svc     *Service
	mailer  *recordingMailer
	evictor *recordingEvictor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := storage.Open(config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "rooms.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close(db) })

	f := &fixture{mailer: &recordingMailer{}, evictor: &recordingEvictor{}}
	f.svc = NewService(storage.NewStores(db), f.mailer, f.evictor, config.InvitationsConfig{ClientURL: "http://app.local"})
	return f
}

func (f *fixture) user(t *testing.T, name, email string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(name, email)
	require.NoError(t, err)
	u.PasswordHash = "hash"
	require.NoError(t, f.svc.Stores.Users.Create(context.Background(), u))
	return u
}

func TestRooms_CreateJoinGet(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	ann := f.user(t, "Ann", "ann@x.io")
	bob := f.user(t, "Bob", "bob@x.io")

	room, err := f.svc.Create(ctx, ann.ID, "Algebra", "", "")
	req.NoError(err)
	req.Len(room.Code, domain.RoomCodeLen)
	req.Equal(domain.VisibilityPrivate, room.Visibility)

	_, err = f.svc.Get(ctx, bob.ID, room.ID)
	req.ErrorIs(err, domain.ErrForbidden)

	joined, err := f.svc.JoinByCode(ctx, bob.ID, " "+room.Code+" ")
	req.NoError(err)
	req.True(joined.IsMember(bob.ID))
	_, err = f.svc.JoinByCode(ctx, bob.ID, room.Code)
	req.NoError(err)

	got, err := f.svc.Get(ctx, bob.ID, room.ID)
	req.NoError(err)
	req.Len(got.Members, 2)

	_, err = f.svc.JoinByCode(ctx, bob.ID, "NOPE0000")
	req.ErrorIs(err, domain.ErrNotFound)

	page, err := f.svc.Mine(ctx, bob.ID, 1, 10)
	req.NoError(err)
	req.EqualValues(1, page.Total)
	req.Equal(1, page.Pages)
}

func TestRooms_AdminOnly(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	ann := f.user(t, "Ann", "ann@x.io")
	bob := f.user(t, "Bob", "bob@x.io")
	room, err := f.svc.Create(ctx, ann.ID, "Algebra", "", domain.VisibilityPublic)
	req.NoError(err)
	_, err = f.svc.JoinByCode(ctx, bob.ID, room.Code)
	req.NoError(err)

	name := "Geometry"
	_, err = f.svc.Update(ctx, bob.ID, room.ID, Patch{Name: &name})
	req.ErrorIs(err, domain.ErrForbidden)
	updated, err := f.svc.Update(ctx, ann.ID, room.ID, Patch{Name: &name})
	req.NoError(err)
	req.Equal("Geometry", updated.Name)

	bad := domain.Visibility("secret")
	_, err = f.svc.Update(ctx, ann.ID, room.ID, Patch{Visibility: &bad})
	req.ErrorIs(err, domain.ErrVisibilityInvalid)

	long := strings.Repeat("d", domain.MaxRoomDescLen+1)
	_, err = f.svc.Update(ctx, ann.ID, room.ID, Patch{Description: &long})
	req.ErrorIs(err, domain.ErrRoomDescTooLong)
	req.NotErrorIs(err, domain.ErrRoomNameTooLong)
	_, err = f.svc.Create(ctx, ann.ID, "Long", long, "")
	req.ErrorIs(err, domain.ErrRoomDescTooLong)

	code, err := f.svc.RegenerateCode(ctx, ann.ID, room.ID)
	req.NoError(err)
	req.NotEqual(room.Code, code)

	req.ErrorIs(f.svc.Delete(ctx, bob.ID, room.ID), domain.ErrForbidden)
	req.NoError(f.svc.Delete(ctx, ann.ID, room.ID))
	req.Equal([]domain.RoomID{room.ID}, f.evictor.rooms)
	_, err = f.svc.Get(ctx, ann.ID, room.ID)
	req.ErrorIs(err, domain.ErrNotFound)
}

func TestRooms_ContentMembersOnly(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	ann := f.user(t, "Ann", "ann@x.io")
	eve := f.user(t, "Eve", "eve@x.io")
	room, err := f.svc.Create(ctx, ann.ID, "Algebra", "", "")
	req.NoError(err)

	for _, text := range []string{"one", "two", "three"} {
		_, err := f.svc.Stores.Messages.Append(ctx, domain.Message{RoomID: room.ID, UserID: ann.ID, Text: text})
		req.NoError(err)
		time.Sleep(2 * time.Millisecond)
	}
	entries, err := f.svc.History(ctx, ann.ID, room.ID, time.Time{}, 2)
	req.NoError(err)
	req.Len(entries, 2)
	req.Equal("two", entries[0].Message.Text)
	req.Equal("three", entries[1].Message.Text)
	req.Equal("Ann", entries[1].Author.Name)

	_, err = f.svc.History(ctx, eve.ID, room.ID, time.Time{}, 0)
	req.ErrorIs(err, domain.ErrForbidden)

	video, err := f.svc.Video(ctx, ann.ID, room.ID)
	req.NoError(err)
	req.Nil(video)

	board, err := f.svc.Board(ctx, ann.ID, room.ID)
	req.NoError(err)
	req.Nil(board)
	req.NoError(f.svc.SaveBoard(ctx, ann.ID, room.ID, json.RawMessage(`{"elements":[1]}`)))
	board, err = f.svc.Board(ctx, ann.ID, room.ID)
	req.NoError(err)
	req.JSONEq(`{"elements":[1]}`, string(board))
	req.ErrorIs(f.svc.SaveBoard(ctx, eve.ID, room.ID, json.RawMessage(`{}`)), domain.ErrForbidden)
}

func TestInvitations_Flow(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	ann := f.user(t, "Ann", "ann@x.io")
	bob := f.user(t, "Bob", "bob@x.io")
	eve := f.user(t, "Eve", "eve@x.io")
	room, err := f.svc.Create(ctx, ann.ID, "Algebra", "", "")
	req.NoError(err)

	inv, err := f.svc.Invite(ctx, ann.ID, room.ID, "Bob@X.io", "")
	req.NoError(err)
	req.Equal("bob@x.io", inv.Email)
	req.Equal("member", inv.Role)
	again, err := f.svc.Invite(ctx, ann.ID, room.ID, "bob@x.io", "")
	req.NoError(err)
	req.Equal(inv.ID, again.ID)
	req.Equal(2, f.mailer.count())

	_, err = f.svc.Invite(ctx, ann.ID, room.ID, "ann@x.io", "")
	req.ErrorIs(err, domain.ErrConflict)
	_, err = f.svc.Invite(ctx, bob.ID, room.ID, "eve@x.io", "")
	req.ErrorIs(err, domain.ErrForbidden)

	details, err := f.svc.Details(ctx, inv.Token)
	req.NoError(err)
	req.Equal("Algebra", details.RoomName)
	req.Equal("Ann", details.InviterName)

	_, err = f.svc.Accept(ctx, eve.ID, inv.Token)
	req.ErrorIs(err, domain.ErrForbidden)
	roomID, err := f.svc.Accept(ctx, bob.ID, inv.Token)
	req.NoError(err)
	req.Equal(room.ID, roomID)
	ok, err := f.svc.Stores.Rooms.IsMember(ctx, room.ID, bob.ID)
	req.NoError(err)
	req.True(ok)

	_, err = f.svc.Details(ctx, inv.Token)
	req.ErrorIs(err, domain.ErrNotFound)

	resent, err := f.svc.Resend(ctx, ann.ID, room.ID, inv.ID)
	req.NoError(err)
	req.Equal(domain.InvitationPending, resent.Status)
	req.NotEqual(inv.Token, resent.Token)
	req.WithinDuration(time.Now().Add(domain.InvitationResendTTL), resent.ExpiresAt, time.Minute)

	list, err := f.svc.Invitations(ctx, ann.ID, room.ID)
	req.NoError(err)
	req.Len(list, 1)
}

func TestInvitations_Expire(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	ann := f.user(t, "Ann", "ann@x.io")
	room, err := f.svc.Create(ctx, ann.ID, "Algebra", "", "")
	req.NoError(err)
	inv, err := f.svc.Invite(ctx, ann.ID, room.ID, "new@x.io", "")
	req.NoError(err)

	n, err := f.svc.ExpireInvitations(ctx, time.Now().Add(domain.InvitationTTL+time.Hour))
	req.NoError(err)
	req.EqualValues(1, n)
	_, err = f.svc.Details(ctx, inv.Token)
	req.ErrorIs(err, domain.ErrNotFound)
}

func TestTasks_CRUD(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	ann := f.user(t, "Ann", "ann@x.io")
	eve := f.user(t, "Eve", "eve@x.io")
	room, err := f.svc.Create(ctx, ann.ID, "Algebra", "", "")
	req.NoError(err)

	_, err = f.svc.CreateTask(ctx, ann.ID, room.ID, TaskInput{Title: "  "})
	req.ErrorIs(err, domain.ErrTaskTitleEmpty)
	task, err := f.svc.CreateTask(ctx, ann.ID, room.ID, TaskInput{Title: "Read ch. 3"})
	req.NoError(err)
	req.Equal(domain.TaskPending, task.Status)

	done := domain.TaskDone
	updated, err := f.svc.UpdateTask(ctx, ann.ID, room.ID, task.ID, TaskPatch{Status: &done})
	req.NoError(err)
	req.Equal(domain.TaskDone, updated.Status)
	bad := domain.TaskStatus("LATER")
	_, err = f.svc.UpdateTask(ctx, ann.ID, room.ID, task.ID, TaskPatch{Status: &bad})
	req.ErrorIs(err, domain.ErrTaskStatusInvalid)

	_, err = f.svc.CreateTask(ctx, ann.ID, room.ID, TaskInput{Title: "Quiz", AssigneeID: eve.ID})
	req.ErrorIs(err, domain.ErrAssigneeNotMember)
	_, err = f.svc.UpdateTask(ctx, ann.ID, room.ID, task.ID, TaskPatch{AssigneeID: &eve.ID})
	req.ErrorIs(err, domain.ErrAssigneeNotMember)
	assigned, err := f.svc.UpdateTask(ctx, ann.ID, room.ID, task.ID, TaskPatch{AssigneeID: &ann.ID})
	req.NoError(err)
	req.Equal(ann.ID, assigned.AssigneeID)

	_, err = f.svc.Tasks(ctx, eve.ID, room.ID)
	req.ErrorIs(err, domain.ErrForbidden)
	tasks, err := f.svc.Tasks(ctx, ann.ID, room.ID)
	req.NoError(err)
	req.Len(tasks, 1)

	req.NoError(f.svc.DeleteTask(ctx, ann.ID, room.ID, task.ID))
	req.ErrorIs(f.svc.DeleteTask(ctx, ann.ID, room.ID, task.ID), domain.ErrNotFound)
}

func TestNotes_PermissionsAndMentions(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	ann := f.user(t, "Ann", "ann@x.io")
	bob := f.user(t, "Bob Stone", "bob@x.io")
	eve := f.user(t, "Eve", "eve@x.io")
	room, err := f.svc.Create(ctx, ann.ID, "Biology", "", "")
	req.NoError(err)
	_, err = f.svc.JoinByCode(ctx, bob.ID, room.Code)
	req.NoError(err)

	_, err = f.svc.CreateNote(ctx, eve.ID, room.ID, NoteInput{Title: "t", Content: "c"})
	req.ErrorIs(err, domain.ErrForbidden)
	_, err = f.svc.CreateNote(ctx, bob.ID, room.ID, NoteInput{Title: "t"})
	req.ErrorIs(err, domain.ErrNoteContentEmpty)
	note, err := f.svc.CreateNote(ctx, bob.ID, room.ID, NoteInput{Title: "Cells", Content: "Mitosis"})
	req.NoError(err)

	page, err := f.svc.Notes(ctx, ann.ID, room.ID, "mito", 0, 0)
	req.NoError(err)
	req.EqualValues(1, page.Total)
	req.Equal(1, page.Page)

	_, err = f.svc.UpdateNote(ctx, ann.ID, room.ID, note.ID, NoteInput{Title: "Ann's"})
	req.ErrorIs(err, domain.ErrForbidden)
	edited, err := f.svc.UpdateNote(ctx, bob.ID, room.ID, note.ID, NoteInput{Content: "Meiosis"})
	req.NoError(err)
	req.Equal("Cells", edited.Title)
	req.Equal("Meiosis", edited.Content)

	before := f.mailer.count()
	_, err = f.svc.AddComment(ctx, eve.ID, room.ID, note.ID, "hi")
	req.ErrorIs(err, domain.ErrForbidden)
	comment, err := f.svc.AddComment(ctx, ann.ID, room.ID, note.ID, "@BobStone @eve @ann see this")
	req.NoError(err)
	req.Equal(before+1, f.mailer.count())
	req.Equal("bob@x.io", f.mailer.sent[len(f.mailer.sent)-1].To)

	comments, err := f.svc.Comments(ctx, bob.ID, room.ID, note.ID, 1, 10)
	req.NoError(err)
	req.EqualValues(1, comments.Total)
	req.ErrorIs(f.svc.DeleteComment(ctx, bob.ID, room.ID, comment.ID), domain.ErrForbidden)
	req.NoError(f.svc.DeleteComment(ctx, ann.ID, room.ID, comment.ID))

	reply, err := f.svc.AddComment(ctx, bob.ID, room.ID, note.ID, "thanks")
	req.NoError(err)
	req.NoError(f.svc.DeleteNote(ctx, ann.ID, room.ID, note.ID))
	req.ErrorIs(f.svc.DeleteComment(ctx, bob.ID, room.ID, reply.ID), domain.ErrNotFound)
	_, err = f.svc.Note(ctx, bob.ID, room.ID, note.ID)
	req.ErrorIs(err, domain.ErrNotFound)
}

func TestEvents_CreatorEdits(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	ann := f.user(t, "Ann", "ann@x.io")
	bob := f.user(t, "Bob", "bob@x.io")
	room, err := f.svc.Create(ctx, ann.ID, "Biology", "", "")
	req.NoError(err)
	_, err = f.svc.JoinByCode(ctx, bob.ID, room.Code)
	req.NoError(err)

	start := time.Now().Add(time.Hour)
	_, err = f.svc.CreateEvent(ctx, bob.ID, room.ID, EventInput{Title: "Review", StartAt: start, EndAt: start.Add(-time.Minute)})
	req.ErrorIs(err, domain.ErrEventRange)
	event, err := f.svc.CreateEvent(ctx, bob.ID, room.ID, EventInput{Title: "Review", StartAt: start, EndAt: start.Add(time.Hour)})
	req.NoError(err)

	title := "Renamed"
	_, err = f.svc.UpdateEvent(ctx, ann.ID, room.ID, event.ID, EventPatch{Title: &title})
	req.ErrorIs(err, domain.ErrForbidden)
	empty := " "
	_, err = f.svc.UpdateEvent(ctx, bob.ID, room.ID, event.ID, EventPatch{Title: &empty})
	req.ErrorIs(err, domain.ErrEventTitleEmpty)
	late := start.Add(2 * time.Hour)
	_, err = f.svc.UpdateEvent(ctx, bob.ID, room.ID, event.ID, EventPatch{StartAt: &late})
	req.ErrorIs(err, domain.ErrEventRange)
	updated, err := f.svc.UpdateEvent(ctx, bob.ID, room.ID, event.ID, EventPatch{Title: &title})
	req.NoError(err)
	req.Equal("Renamed", updated.Title)

	list, err := f.svc.Events(ctx, ann.ID, room.ID, time.Time{}, time.Time{})
	req.NoError(err)
	req.Len(list, 1)
	req.NoError(f.svc.DeleteEvent(ctx, ann.ID, room.ID, event.ID))
	req.ErrorIs(f.svc.DeleteEvent(ctx, ann.ID, room.ID, event.ID), domain.ErrNotFound)
}

func TestSendReminders_OncePerItem(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	ann := f.user(t, "Ann", "ann@x.io")
	bob := f.user(t, "Bob", "bob@x.io")
	room, err := f.svc.Create(ctx, ann.ID, "Biology", "", "")
	req.NoError(err)
	_, err = f.svc.JoinByCode(ctx, bob.ID, room.Code)
	req.NoError(err)

	now := time.Now().UTC().Truncate(time.Second)
	due := now.Add(3 * time.Minute)
	task, err := f.svc.CreateTask(ctx, ann.ID, room.ID, TaskInput{Title: "Lab report", AssigneeID: bob.ID, DueAt: &due})
	req.NoError(err)
	far := now.Add(time.Hour)
	_, err = f.svc.CreateTask(ctx, ann.ID, room.ID, TaskInput{Title: "Essay", AssigneeID: bob.ID, DueAt: &far})
	req.NoError(err)
	_, err = f.svc.CreateEvent(ctx, ann.ID, room.ID, EventInput{Title: "Review", StartAt: now.Add(10 * time.Minute), EndAt: now.Add(time.Hour)})
	req.NoError(err)

	before := f.mailer.count()
	sent, err := f.svc.SendReminders(ctx, now)
	req.NoError(err)
	req.Equal(3, sent)
	req.Equal(before+3, f.mailer.count())
	tos := lo.Map(f.mailer.sent[before:], func(m notify.Mail, _ int) string { return m.To })
	req.ElementsMatch([]string{"bob@x.io", "ann@x.io", "bob@x.io"}, tos)

	sent, err = f.svc.SendReminders(ctx, now.Add(time.Minute))
	req.NoError(err)
	req.Zero(sent)

	moved := now.Add(4 * time.Minute)
	_, err = f.svc.UpdateTask(ctx, ann.ID, room.ID, task.ID, TaskPatch{DueAt: &moved})
	req.NoError(err)
	sent, err = f.svc.SendReminders(ctx, now.Add(time.Minute))
	req.NoError(err)
	req.Equal(1, sent)
}

func TestConfigureReminders(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	req.Equal(domain.TaskReminderLead, f.svc.TaskLead)

	f.svc.ConfigureReminders(config.RemindersConfig{TaskLead: time.Hour})
	req.Equal(time.Hour, f.svc.TaskLead)
	req.Equal(domain.EventReminderLead, f.svc.EventLead)
}

// Package notify renders and hands out user notifications.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

type Mail struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// LogMailer writes mails to the log instead of delivering them.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, m Mail) error {
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("mail %q: empty recipient", m.Subject)
	}
	log.Info().Str("module", "notify").Str("to", m.To).Str("subject", m.Subject).Str("body", m.Body).Msg("mail")
	return nil
}

func WelcomeMail(to, name string) Mail {
	return Mail{
		To:      to,
		Subject: "Welcome to StudyHub",
		Body:    fmt.Sprintf("Hi %s,\n\nyour StudyHub account is ready. Create a room or join one with a code.", name),
	}
}

// InvitationMail links to <clientURL>/invite/<token>.
func InvitationMail(to, inviter, room, clientURL, token string) Mail {
	link := strings.TrimRight(clientURL, "/") + "/invite/" + token
	return Mail{
		To:      to,
		Subject: fmt.Sprintf("%s invited you to %s", inviter, room),
		Body:    fmt.Sprintf("%s invited you to join the study room %q.\n\nAccept the invitation: %s", inviter, room, link),
	}
}

// PasswordResetMail links to <clientURL>/reset-password/<token>.
func PasswordResetMail(to, name, clientURL, token string) Mail {
	link := strings.TrimRight(clientURL, "/") + "/reset-password/" + token
	return Mail{
		To:      to,
		Subject: "Reset your StudyHub password",
		Body:    fmt.Sprintf("Hi %s,\n\nset a new password here: %s\n\nThe link expires in 15 minutes. Ignore this mail if you did not ask for it.", name, link),
	}
}

func MentionMail(to, author, room, note string) Mail {
	return Mail{
		To:      to,
		Subject: "You were mentioned in a comment",
		Body:    fmt.Sprintf("%s mentioned you on the note %q in room %q.", author, note, room),
	}
}

func TaskDueMail(to, task, room string) Mail {
	return Mail{
		To:      to,
		Subject: "Task due soon: " + task,
		Body:    fmt.Sprintf("Your task %q in room %q is due soon.", task, room),
	}
}

func EventSoonMail(to, event, room string) Mail {
	return Mail{
		To:      to,
		Subject: "Event starting soon: " + event,
		Body:    fmt.Sprintf("Event %q in room %q starts soon.", event, room),
	}
}

package rooms

import (
	"context"
	"time"

	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/dkeye/StudyHub/internal/notify"
	"github.com/rs/zerolog/log"
)

// InvitationDetails is what an invitee sees before accepting.
type InvitationDetails struct {
	RoomName    string
	InviterName string
	Email       string
	Role        string
	ExpiresAt   time.Time
}

// Invite creates an invitation for email, or re-sends the pending one.
// Inviting an existing member is a conflict.
func (s *Service) Invite(ctx context.Context, by domain.UserID, id domain.RoomID, email, role string) (*domain.Invitation, error) {
	room, err := s.admin(ctx, by, id)
	if err != nil {
		return nil, err
	}
	email = domain.NormalizeEmail(email)
	invitee, err := s.Stores.Users.ByEmail(ctx, email)
	switch {
	case err == nil && room.IsMember(invitee.ID):
		return nil, domain.ErrConflict
	case err != nil && !isNotFound(err):
		return nil, err
	}

	inv, err := s.Stores.Invitations.PendingFor(ctx, id, email)
	switch {
	case err == nil:
		if !inv.Usable(time.Now()) {
			if err := inv.Renew(s.InviteTTL); err != nil {
				return nil, err
			}
			if err := s.Stores.Invitations.Save(ctx, inv); err != nil {
				return nil, err
			}
		}
	case isNotFound(err):
		if inv, err = domain.NewInvitation(id, by, email, role, s.InviteTTL); err != nil {
			return nil, err
		}
		if err := s.Stores.Invitations.Create(ctx, inv); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.mailInvitation(ctx, room, by, inv)
	log.Info().Str("module", "rooms").Str("room", string(id)).Str("invitation", string(inv.ID)).Msg("invitation sent")
	return inv, nil
}

func (s *Service) Invitations(ctx context.Context, by domain.UserID, id domain.RoomID) ([]*domain.Invitation, error) {
	if _, err := s.admin(ctx, by, id); err != nil {
		return nil, err
	}
	return s.Stores.Invitations.ListByRoom(ctx, id)
}

// Resend mails the invitation again. One that is no longer usable gets a
// fresh token and a shorter expiry.
func (s *Service) Resend(ctx context.Context, by domain.UserID, id domain.RoomID, invID domain.InvitationID) (*domain.Invitation, error) {
	room, err := s.admin(ctx, by, id)
	if err != nil {
		return nil, err
	}
	inv, err := s.Stores.Invitations.ByID(ctx, id, invID)
	if err != nil {
		return nil, err
	}
	if !inv.Usable(time.Now()) {
		if err := inv.Renew(domain.InvitationResendTTL); err != nil {
			return nil, err
		}
		if err := s.Stores.Invitations.Save(ctx, inv); err != nil {
			return nil, err
		}
	}
	s.mailInvitation(ctx, room, by, inv)
	return inv, nil
}

// Details resolves a usable invitation token. Anything else is not found.
func (s *Service) Details(ctx context.Context, token string) (InvitationDetails, error) {
	inv, err := s.usable(ctx, token)
	if err != nil {
		return InvitationDetails{}, err
	}
	room, err := s.Stores.Rooms.ByID(ctx, inv.RoomID)
	if err != nil {
		return InvitationDetails{}, err
	}
	inviter, err := s.Stores.Users.ByID(ctx, inv.InviterID)
	if err != nil && !isNotFound(err) {
		return InvitationDetails{}, err
	}
	d := InvitationDetails{
		RoomName:  room.Name,
		Email:     inv.Email,
		Role:      inv.Role,
		ExpiresAt: inv.ExpiresAt,
	}
	if inviter != nil {
		d.InviterName = inviter.Name
	}
	return d, nil
}

// Accept adds the caller to the invited room. The caller's email must match.
func (s *Service) Accept(ctx context.Context, by domain.UserID, token string) (domain.RoomID, error) {
	inv, err := s.usable(ctx, token)
	if err != nil {
		return "", err
	}
	user, err := s.Stores.Users.ByID(ctx, by)
	if err != nil {
		return "", err
	}
	if user.Email != inv.Email {
		return "", domain.ErrForbidden
	}
	if err := s.Stores.Rooms.AddMember(ctx, inv.RoomID, by); err != nil {
		return "", err
	}
	inv.Accept(time.Now().UTC())
	if err := s.Stores.Invitations.Save(ctx, inv); err != nil {
		return "", err
	}
	log.Info().Str("module", "rooms").Str("room", string(inv.RoomID)).Str("user", string(by)).Msg("invitation accepted")
	return inv.RoomID, nil
}

// ExpireInvitations marks pending invitations past their deadline as expired.
func (s *Service) ExpireInvitations(ctx context.Context, now time.Time) (int64, error) {
	return s.Stores.Invitations.ExpirePending(ctx, now)
}

func (s *Service) usable(ctx context.Context, token string) (*domain.Invitation, error) {
	inv, err := s.Stores.Invitations.ByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !inv.Usable(time.Now()) {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func (s *Service) mailInvitation(ctx context.Context, room *domain.Room, by domain.UserID, inv *domain.Invitation) {
	inviter := string(by)
	if u, err := s.Stores.Users.ByID(ctx, by); err == nil {
		inviter = u.Name
	}
	s.send(ctx, notify.InvitationMail(inv.Email, inviter, room.Name, s.ClientURL, inv.Token))
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/rs/zerolog/log"
)

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	ByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	ByEmail(ctx context.Context, email string) (*domain.User, error)
	ByResetToken(ctx context.Context, token string) (*domain.User, error)
	Save(ctx context.Context, u *domain.User) error
}

// Service registers users, logs them in and resolves bearer tokens.
// It satisfies core.IdentityResolver.
type Service struct {
	users  UserStore
	tokens *TokenManager
	hasher *PasswordHasher
	now    func() time.Time
}

func NewService(users UserStore, tokens *TokenManager, hasher *PasswordHasher) *Service {
	return &Service{users: users, tokens: tokens, hasher: hasher, now: time.Now}
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	if len(password) < domain.MinPasswordLen {
		return nil, "", domain.ErrPasswordTooShort
	}
	u, err := domain.NewUser(name, email)
	if err != nil {
		return nil, "", err
	}
	if u.PasswordHash, err = s.hasher.Hash(password); err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Issue(u.Identity())
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	log.Info().Str("module", "auth").Str("user", string(u.ID)).Msg("user registered")
	return u, token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	u, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, "", domain.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(u.Identity())
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

// Authenticate validates the credential and reloads the user it names.
// Tokens of deleted users are refused.
func (s *Service) Authenticate(ctx context.Context, credential string) (domain.Identity, error) {
	claims, err := s.tokens.Validate(credential)
	if err != nil {
		return domain.Identity{}, err
	}
	u, err := s.users.ByID(ctx, domain.UserID(claims.UserID))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Identity{}, fmt.Errorf("%w: unknown user", domain.ErrAuthentication)
	}
	if err != nil {
		return domain.Identity{}, err
	}
	return u.Identity(), nil
}

func (s *Service) User(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return s.users.ByID(ctx, id)
}

// RequestPasswordReset arms a reset token for the account with that email.
// An unknown email yields a nil user and no error.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (*domain.User, string, error) {
	u, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	token, err := domain.NewResetToken()
	if err != nil {
		return nil, "", err
	}
	expires := s.now().UTC().Add(domain.PasswordResetTTL)
	u.ResetToken, u.ResetExpiresAt = token, &expires
	if err := s.users.Save(ctx, u); err != nil {
		return nil, "", err
	}
	log.Info().Str("module", "auth").Str("user", string(u.ID)).Msg("password reset requested")
	return u, token, nil
}

// ResetPassword sets a new password, burns the reset token and logs the user in.
func (s *Service) ResetPassword(ctx context.Context, token, password string) (*domain.User, string, error) {
	if len(password) < domain.MinPasswordLen {
		return nil, "", domain.ErrPasswordTooShort
	}
	u, err := s.users.ByResetToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", domain.ErrResetTokenInvalid
	}
	if err != nil {
		return nil, "", err
	}
	if !u.ResetUsable(token, s.now()) {
		return nil, "", domain.ErrResetTokenInvalid
	}
	if u.PasswordHash, err = s.hasher.Hash(password); err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	u.ResetToken, u.ResetExpiresAt = "", nil
	if err := s.users.Save(ctx, u); err != nil {
		return nil, "", err
	}
	access, err := s.tokens.Issue(u.Identity())
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	log.Info().Str("module", "auth").Str("user", string(u.ID)).Msg("password reset")
	return u, access, nil
}

// UpdateProfile changes name and email; empty values are kept.
func (s *Service) UpdateProfile(ctx context.Context, id domain.UserID, name, email string) (*domain.User, error) {
	u, err := s.users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		if err := u.Rename(name); err != nil {
			return nil, err
		}
	}
	if email != "" {
		if err := u.ChangeEmail(email); err != nil {
			return nil, err
		}
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

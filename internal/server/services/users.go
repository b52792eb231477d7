package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkravets/adminboard/internal/common"
	"github.com/dkravets/adminboard/internal/logging"
	"github.com/dkravets/adminboard/internal/server/directory"
	"github.com/dkravets/adminboard/internal/server/mailer"
)

// UserUpdate carries the mutable profile fields; nil means "leave as is".
type UserUpdate struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// UserService proxies end-user account management to the external identity
// provider and the profile document store. Adminboard holds no durable
// end-user state of its own.
type UserService struct {
	identity directory.IdentityProvider
	docs     directory.DocumentStore
	mailer   mailer.Mailer
	logger   logging.Logger
}

func NewUserService(id directory.IdentityProvider, docs directory.DocumentStore, ml mailer.Mailer, l logging.Logger) *UserService {
	return &UserService{
		identity: id,
		docs:     docs,
		mailer:   ml,
		logger:   l.With("module", "user_service"),
	}
}

// List returns one page of users in UID order.
func (s *UserService) List(ctx context.Context, limit int, lastUID, status string) (*directory.Page, error) {
	page, err := s.docs.List(ctx, limit, lastUID, status)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return page, nil
}

// GetByEmail resolves an email through the identity provider and returns
// the profile document. An unknown email yields an empty page, matching
// the list response shape.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*directory.Page, error) {
	uid, err := s.identity.LookupUID(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &directory.Page{Users: []directory.User{}}, nil
		}
		return nil, fmt.Errorf("resolving user email: %w", err)
	}

	user, err := s.docs.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &directory.Page{Users: []directory.User{}}, nil
		}
		return nil, fmt.Errorf("loading user document: %w", err)
	}

	return &directory.Page{Users: []directory.User{*user}}, nil
}

// Create registers the user with the identity provider, writes the profile
// document, and emails an onboarding link.
func (s *UserService) Create(ctx context.Context, user directory.User) (string, error) {
	uid, err := s.identity.CreateUser(ctx, user.Email)
	if err != nil {
		return "", fmt.Errorf("creating identity: %w", err)
	}

	user.UID = uid
	user.Status = directory.StatusActive
	if err := s.docs.Put(ctx, user); err != nil {
		return "", fmt.Errorf("storing user document: %w", err)
	}

	link, err := s.identity.PasswordResetLink(ctx, user.Email)
	if err != nil {
		return "", fmt.Errorf("generating reset link: %w", err)
	}
	subject, body := mailer.OnboardingUser(user.FirstName, link)
	if err := s.mailer.Send(ctx, user.Email, subject, body); err != nil {
		s.logger.Warn(ctx, "onboarding email failed", "uid", uid, "error", err.Error())
	}

	s.logger.Info(ctx, "user created", "uid", uid)
	return uid, nil
}

// Update applies the set fields to the identity provider (email) and the
// profile document (everything).
func (s *UserService) Update(ctx context.Context, uid string, update UserUpdate) (*directory.User, error) {
	user, err := s.docs.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("loading user document: %w", err)
	}

	if update.Email != nil && *update.Email != user.Email {
		if err := s.identity.UpdateEmail(ctx, uid, *update.Email); err != nil {
			return nil, fmt.Errorf("updating identity email: %w", err)
		}
		user.Email = *update.Email
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}

	if err := s.docs.Put(ctx, *user); err != nil {
		return nil, fmt.Errorf("storing user document: %w", err)
	}

	return user, nil
}

// Delete removes the identity and the profile document.
func (s *UserService) Delete(ctx context.Context, uid string) error {
	if err := s.identity.DeleteUser(ctx, uid); err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("deleting identity: %w", err)
	}
	if err := s.docs.Delete(ctx, uid); err != nil {
		return fmt.Errorf("deleting user document: %w", err)
	}

	s.logger.Info(ctx, "user deleted", "uid", uid)
	return nil
}

// Approve re-enables sign-in and marks the profile active.
func (s *UserService) Approve(ctx context.Context, uid string) error {
	return s.setStatus(ctx, uid, false, directory.StatusActive)
}

// Hold disables sign-in and marks the profile on hold.
func (s *UserService) Hold(ctx context.Context, uid string) error {
	return s.setStatus(ctx, uid, true, directory.StatusOnHold)
}

func (s *UserService) setStatus(ctx context.Context, uid string, disabled bool, status string) error {
	user, err := s.docs.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("loading user document: %w", err)
	}

	if err := s.identity.SetDisabled(ctx, uid, disabled); err != nil {
		return fmt.Errorf("updating identity state: %w", err)
	}

	user.Status = status
	if err := s.docs.Put(ctx, *user); err != nil {
		return fmt.Errorf("storing user document: %w", err)
	}

	s.logger.Info(ctx, "user status changed", "uid", uid, "status", status)
	return nil
}

// SendPasswordResetLink asks the identity provider for a reset link and
// emails it to the user.
func (s *UserService) SendPasswordResetLink(ctx context.Context, email string) (string, error) {
	link, err := s.identity.PasswordResetLink(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("generating reset link: %w", err)
	}

	firstName := ""
	if page, err := s.GetByEmail(ctx, email); err == nil && len(page.Users) > 0 {
		firstName = page.Users[0].FirstName
	}

	subject, body := mailer.ResetPasswordUser(firstName, link)
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		return "", fmt.Errorf("sending reset email: %w", err)
	}

	return link, nil
}

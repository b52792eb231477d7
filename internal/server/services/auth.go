// Package services contains the server-side business logic. This file
// implements AuthService: admin login, session binding, per-request
// authentication, and password resets.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dkravets/adminboard/internal/common"
	"github.com/dkravets/adminboard/internal/dbx"
	"github.com/dkravets/adminboard/internal/server/auth"
	"github.com/dkravets/adminboard/internal/server/config"
	"github.com/dkravets/adminboard/internal/server/mailer"
	"github.com/dkravets/adminboard/internal/server/models"
	"github.com/dkravets/adminboard/internal/server/repositories/repomanager"
)

// AuthService owns the admin session lifecycle. A login binds the freshly
// issued token as the admin's only live session; authentication requires
// the presented token to still be that bound token, so a later login
// anywhere revokes earlier sessions immediately.
type AuthService struct {
	db                   *sql.DB
	repomanager          repomanager.RepositoryManager
	mailer               mailer.Mailer
	jwtSecret            []byte
	sessionTokenValidity time.Duration
	frontendURL          string
	bcryptCost           int
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, ml mailer.Mailer, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                   db,
		repomanager:          m,
		mailer:               ml,
		jwtSecret:            []byte(cfg.SecretKey),
		sessionTokenValidity: cfg.SessionTokenValidityDuration,
		frontendURL:          cfg.FrontendURL,
		bcryptCost:           cfg.BcryptCost,
	}
}

// Login verifies the credentials and, on success, issues a session token
// and transactionally binds it to the admin. Unknown email and wrong
// password are both reported as common.ErrUnauthorized; a dummy hash
// comparison runs on lookup miss so the two are indistinguishable by
// timing as well.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Admins(s.db)

	admin, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			auth.VerifyDummy(password)
			return "", common.ErrUnauthorized
		}
		return "", common.ErrInternal
	}

	if !auth.VerifyPassword(password, admin.PasswordHash) {
		return "", common.ErrUnauthorized
	}

	token, err := auth.IssueToken(admin.Email, auth.ClassSession, s.jwtSecret, s.sessionTokenValidity)
	if err != nil {
		return "", common.ErrInternal
	}

	// The token is handed out only after the binding is durable.
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Admins(tx).BindSessionToken(ctx, admin.Email, token)
	})
	if err != nil {
		return "", common.ErrInternal
	}

	return token, nil
}

// Authenticate validates a bearer token for the gate: signature and expiry,
// session class, live principal, and the session binding. Returns the
// admin to attach to the request context.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Admin, error) {
	claims, err := auth.VerifyToken(token, s.jwtSecret)
	if err != nil {
		return nil, err // common.ErrTokenExpired or common.ErrInvalidToken
	}

	if claims.Class != auth.ClassSession {
		return nil, common.ErrInvalidToken
	}

	admin, err := s.repomanager.Admins(s.db).GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	if !admin.SessionToken.Valid || admin.SessionToken.String != token {
		return nil, common.ErrSessionRevoked
	}

	return admin, nil
}

// Logout drops the bound session token, invalidating the current session.
func (s *AuthService) Logout(ctx context.Context, email string) error {
	err := s.repomanager.Admins(s.db).ClearSessionToken(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}
	return nil
}

// ResetLink issues a 24 h reset-class token for email and wraps it in a
// frontend URL.
func (s *AuthService) ResetLink(email string) (string, error) {
	token, err := auth.IssueToken(email, auth.ClassReset, s.jwtSecret, auth.ResetTokenValidity)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/auth/reset-password?token=%s", s.frontendURL, url.QueryEscape(token)), nil
}

// RequestPasswordReset emails a reset link to an existing admin.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if _, err := s.repomanager.Admins(s.db).GetByEmail(ctx, email); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}

	link, err := s.ResetLink(email)
	if err != nil {
		return common.ErrInternal
	}

	subject, body := mailer.ResetPasswordAdmin(link)
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		return fmt.Errorf("sending reset email: %w", err)
	}
	return nil
}

// ResetPassword verifies a reset-class token and overwrites the admin's
// password hash. The session binding is left untouched: an existing live
// session stays valid until it expires or a new login replaces it.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (*models.Admin, error) {
	claims, err := auth.VerifyToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	if claims.Class != auth.ClassReset {
		return nil, common.ErrInvalidToken
	}

	repo := s.repomanager.Admins(s.db)
	admin, err := repo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return nil, common.ErrInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Admins(tx).UpdatePasswordHash(ctx, admin.Email, hash)
	})
	if err != nil {
		return nil, common.ErrInternal
	}

	admin.PasswordHash = hash
	return admin, nil
}

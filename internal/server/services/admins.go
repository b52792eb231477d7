package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dkravets/adminboard/internal/common"
	"github.com/dkravets/adminboard/internal/dbx"
	"github.com/dkravets/adminboard/internal/logging"
	"github.com/dkravets/adminboard/internal/server/auth"
	"github.com/dkravets/adminboard/internal/server/config"
	"github.com/dkravets/adminboard/internal/server/mailer"
	"github.com/dkravets/adminboard/internal/server/models"
	"github.com/dkravets/adminboard/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// AdminService manages dashboard admin accounts (the Postgres side).
type AdminService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	auth        *AuthService
	mailer      mailer.Mailer
	logger      logging.Logger
	bcryptCost  int
}

func NewAdminService(db *sql.DB, m repomanager.RepositoryManager, a *AuthService, ml mailer.Mailer, l logging.Logger, cfg *config.Config) *AdminService {
	return &AdminService{
		db:          db,
		repomanager: m,
		auth:        a,
		mailer:      ml,
		logger:      l.With("module", "admin_service"),
		bcryptCost:  cfg.BcryptCost,
	}
}

// List returns all admins.
func (s *AdminService) List(ctx context.Context) ([]*models.Admin, error) {
	result, err := s.repomanager.Admins(s.db).List(ctx)
	if err != nil {
		return nil, common.ErrInternal
	}
	return result, nil
}

// Create provisions a new admin with an unguessable initial password and
// emails an onboarding link carrying a reset token; the admin picks their
// real password through the reset flow. If the email cannot be sent the
// account still exists and a reset can be requested later.
func (s *AdminService) Create(ctx context.Context, email string, role models.Role) (*models.Admin, error) {
	repo := s.repomanager.Admins(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrAlreadyExists
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInternal
	}

	if !role.Valid() {
		role = models.RoleAdmin
	}

	// Random placeholder secret; nobody ever logs in with it.
	hash, err := auth.HashPassword(uuid.NewString(), s.bcryptCost)
	if err != nil {
		return nil, common.ErrInternal
	}

	admin := &models.Admin{Email: email, PasswordHash: hash, Role: role}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Admins(tx).Create(ctx, admin)
		if err != nil {
			return err
		}
		admin = created
		return nil
	})
	if err != nil {
		return nil, common.ErrInternal
	}

	link, err := s.auth.ResetLink(email)
	if err != nil {
		return nil, common.ErrInternal
	}
	subject, body := mailer.OnboardingAdmin(link)
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		s.logger.Warn(ctx, "onboarding email failed", "email", email, "error", err.Error())
	}

	s.logger.Info(ctx, "admin created", "email", email, "role", string(admin.Role))
	return admin, nil
}

// Delete removes an admin by email.
func (s *AdminService) Delete(ctx context.Context, email string) error {
	err := s.repomanager.Admins(s.db).DeleteByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}

	s.logger.Info(ctx, "admin deleted", "email", email)
	return nil
}

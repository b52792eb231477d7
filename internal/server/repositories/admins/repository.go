// Package admins provides the persistence layer for dashboard admin
// accounts.
package admins

import (
	"context"

	"github.com/dkravets/adminboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	List(ctx context.Context) ([]*models.Admin, error)
	DeleteByEmail(ctx context.Context, email string) error

	// BindSessionToken overwrites the admin's bound session token,
	// revoking any prior session.
	BindSessionToken(ctx context.Context, email, token string) error

	// ClearSessionToken drops the bound session token (logout).
	ClearSessionToken(ctx context.Context, email string) error

	UpdatePasswordHash(ctx context.Context, email, hash string) error
}

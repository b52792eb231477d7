package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkravets/adminboard/internal/dbx"
	"github.com/dkravets/adminboard/internal/server/repositories/admins"
)

// RepositoryManager vends repository implementations bound to a DBTX
// (plain connection or transaction) and runs schema migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Admins(db dbx.DBTX) admins.Repository
}

package repomanager

import (
	"context"
	"database/sql"

	"github.com/cheridanh/infradev/internal/dbx"
	"github.com/cheridanh/infradev/internal/server/repositories/refreshtokens"
	"github.com/cheridanh/infradev/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX, so a
// service can run the same repository code against the pool or against a
// transaction handle.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}

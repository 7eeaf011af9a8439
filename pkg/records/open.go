package records

import (
	"context"
	"fmt"

	"github.com/unowned-ai/moodtrend/pkg/db"
	"github.com/unowned-ai/moodtrend/pkg/utils"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Options selects and configures a Store backend.
type Options struct {
	Backend string
	DSN     string
	WAL     bool
	Sync    string
}

// Open returns the Store described by opts. For SQLite an empty DSN
// resolves to the platform default path and the schema is upgraded.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendPostgres:
		return OpenPostgres(ctx, opts.DSN)
	case BackendSQLite, "":
		dsn := opts.DSN
		if !db.IsMemoryDSN(dsn) {
			resolved, err := utils.ResolveAndEnsureDBPath(dsn)
			if err != nil {
				return nil, err
			}
			dsn = resolved
		}
		conn, err := db.OpenAndUpgrade(dsn, opts.WAL, opts.Sync)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(conn), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

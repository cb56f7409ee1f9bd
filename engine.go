package quarry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jward/quarry/internal/runtime"
	"github.com/jward/quarry/internal/store"
)

// Engine is a SQLite-backed execution environment: a database, the
// Configuration whose statements run against it, and the script runtime
// that renders scripted statements.
type Engine struct {
	store   *store.Store
	runtime *runtime.Runtime
	config  *Configuration
}

// New creates an Engine backed by a SQLite database at dbPath. The schema
// given with WithSchema, if any, is applied before New returns.
func New(dbPath string, opts ...Option) (*Engine, error) {
	o := applyOptions(opts)

	s, err := store.NewStore(dbPath, o.dsnParams)
	if err != nil {
		return nil, fmt.Errorf("quarry: create store: %w", err)
	}
	if err := s.Migrate(o.schema); err != nil {
		s.Close()
		return nil, fmt.Errorf("quarry: %w", err)
	}

	e := &Engine{
		store:   s,
		runtime: runtime.NewRuntime(o.logger),
		config:  newConfiguration(o),
	}
	o.logger.Debug("Opened engine.", "db", dbPath)
	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// Configuration returns the Engine's Configuration.
func (e *Engine) Configuration() *Configuration {
	return e.config
}

// Session returns a session that runs each statement in its own implicit
// transaction.
func (e *Engine) Session() *SQLSession {
	return e.newSession(e.store.DB())
}

// Tx runs fn with a session bound to a single transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func (e *Engine) Tx(ctx context.Context, fn func(s *SQLSession) error) error {
	err := e.store.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(e.newSession(tx))
	})
	if err != nil {
		return fmt.Errorf("quarry: tx: %w", err)
	}
	return nil
}

func (e *Engine) newSession(q store.Querier) *SQLSession {
	return &SQLSession{
		config:  e.config,
		q:       q,
		runtime: e.runtime,
		logger:  e.config.logger,
	}
}

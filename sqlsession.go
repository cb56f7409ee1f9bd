package quarry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jward/quarry/internal/runtime"
	"github.com/jward/quarry/internal/store"
)

// SQLSession executes catalog statements against a SQLite database or a
// transaction. Get one from Engine.Session or Engine.Tx.
//
// Statement text binds the parameter with #{path} placeholders. A path is
// dotted ("account.owner.id") and resolves through maps, slices and struct
// fields (db tag, field name or its snake_case form). A parameter that is
// not a map or struct answers any name. Scripted statements first run
// their Risor source to produce the text.
type SQLSession struct {
	config  *Configuration
	q       store.Querier
	runtime *runtime.Runtime
	logger  *slog.Logger
}

var _ Session = (*SQLSession)(nil)

// Configuration returns the Configuration statements are resolved against.
func (s *SQLSession) Configuration() *Configuration {
	return s.config
}

// Insert runs a statement and returns the number of affected rows, or the
// last insert id when the statement declares generated keys.
func (s *SQLSession) Insert(ctx context.Context, id string, param any) (int64, error) {
	return s.exec(ctx, id, param)
}

// Update runs a statement and returns the number of affected rows.
func (s *SQLSession) Update(ctx context.Context, id string, param any) (int64, error) {
	return s.exec(ctx, id, param)
}

// Delete runs a statement and returns the number of affected rows.
func (s *SQLSession) Delete(ctx context.Context, id string, param any) (int64, error) {
	return s.exec(ctx, id, param)
}

// SelectOne scans the single row the statement yields into dest. No row
// leaves dest untouched; more than one is ErrTooManyResults.
func (s *SQLSession) SelectOne(ctx context.Context, id string, param any, dest any) error {
	return s.query(ctx, id, param, func(stmt *Statement, rows *sql.Rows) error {
		return store.ScanOne(rows, dest)
	})
}

// SelectList scans the rows within bounds into the slice dest points to.
func (s *SQLSession) SelectList(ctx context.Context, id string, param any, bounds RowBounds, dest any) error {
	return s.query(ctx, id, param, func(stmt *Statement, rows *sql.Rows) error {
		return store.ScanList(rows, bounds.Offset, bounds.Limit, dest)
	})
}

// SelectMap scans the rows within bounds into the map dest points to,
// keyed by each row's mapKey property. An empty mapKey falls back to the
// statement's MapKey.
func (s *SQLSession) SelectMap(ctx context.Context, id string, param any, mapKey string, bounds RowBounds, dest any) error {
	return s.query(ctx, id, param, func(stmt *Statement, rows *sql.Rows) error {
		key := mapKey
		if key == "" {
			key = stmt.MapKey
		}
		return store.ScanMap(rows, key, bounds.Offset, bounds.Limit, dest)
	})
}

// Select streams the rows within bounds to handler as map[string]any
// values until the rows run out or the handler calls Stop.
func (s *SQLSession) Select(ctx context.Context, id string, param any, bounds RowBounds, handler ResultHandler) error {
	if handler == nil {
		return fmt.Errorf("quarry: %s: nil result handler", id)
	}
	return s.query(ctx, id, param, func(stmt *Statement, rows *sql.Rows) error {
		rc := &ResultContext{}
		return store.Each(rows, bounds.Offset, bounds.Limit, func(row map[string]any) (bool, error) {
			rc.Object = row
			rc.Count++
			if err := handler.HandleResult(rc); err != nil {
				return false, err
			}
			return !rc.IsStopped(), nil
		})
	})
}

func (s *SQLSession) exec(ctx context.Context, id string, param any) (int64, error) {
	stmt, text, args, err := s.prepare(ctx, id, param)
	if err != nil {
		return 0, err
	}
	res, err := s.q.ExecContext(ctx, text, args...)
	if err != nil {
		return 0, fmt.Errorf("quarry: exec %s: %w", id, err)
	}
	if stmt.GeneratedKeys {
		n, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("quarry: exec %s: last insert id: %w", id, err)
		}
		return n, nil
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("quarry: exec %s: rows affected: %w", id, err)
	}
	return n, nil
}

func (s *SQLSession) query(ctx context.Context, id string, param any, scan func(*Statement, *sql.Rows) error) error {
	stmt, text, args, err := s.prepare(ctx, id, param)
	if err != nil {
		return err
	}
	rows, err := s.q.QueryContext(ctx, text, args...)
	if err != nil {
		return fmt.Errorf("quarry: query %s: %w", id, err)
	}
	defer rows.Close()

	if err := scan(stmt, rows); err != nil {
		if errors.Is(err, store.ErrTooManyResults) {
			return fmt.Errorf("quarry: %s: %w", id, err)
		}
		return fmt.Errorf("quarry: query %s: %w", id, err)
	}
	return nil
}

// prepare resolves id and renders its text and arguments for param.
func (s *SQLSession) prepare(ctx context.Context, id string, param any) (*Statement, string, []any, error) {
	stmt, ok := s.config.Statement(id)
	if !ok {
		return nil, "", nil, fmt.Errorf("quarry: %w: %s", ErrStatementNotFound, id)
	}
	text := stmt.SQL
	if stmt.Script != "" {
		var err error
		text, err = s.runtime.Render(ctx, id, stmt.Script, store.Flatten(param))
		if err != nil {
			return nil, "", nil, fmt.Errorf("quarry: %w", err)
		}
	}
	rendered, args, err := store.Render(text, param)
	if err != nil {
		return nil, "", nil, fmt.Errorf("quarry: render %s: %w", id, err)
	}
	s.logger.Debug("Executing statement.", "statement", id, "sql", rendered, "args", len(args))
	return stmt, rendered, args, nil
}

package quarry

import "context"

// Session is the execution engine a proxy dispatches to. Statements are
// addressed by ID and resolved against the session's Configuration.
//
// Fetch methods fill dest, which is always a non-nil pointer: to the
// declared result type for SelectOne, to a slice for SelectList and to a
// map for SelectMap. SelectOne leaves dest untouched when no row matches.
type Session interface {
	Configuration() *Configuration

	Insert(ctx context.Context, id string, param any) (int64, error)
	Update(ctx context.Context, id string, param any) (int64, error)
	Delete(ctx context.Context, id string, param any) (int64, error)

	SelectOne(ctx context.Context, id string, param any, dest any) error
	SelectList(ctx context.Context, id string, param any, bounds RowBounds, dest any) error
	SelectMap(ctx context.Context, id string, param any, mapKey string, bounds RowBounds, dest any) error
	Select(ctx context.Context, id string, param any, bounds RowBounds, handler ResultHandler) error
}

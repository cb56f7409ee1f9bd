package quarry

import "github.com/jward/quarry/internal/store"

// Store is the SQLite data access layer behind an Engine. It is an alias
// of the internal type so callers can reach the *sql.DB without a
// conversion.
type Store = store.Store

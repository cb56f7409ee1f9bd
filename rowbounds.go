package quarry

// RowBounds is a pagination window over a fetch result. The zero value is
// DefaultRowBounds and selects every row.
type RowBounds struct {
	// Offset is the number of leading rows skipped.
	Offset int
	// Limit caps the number of rows returned. Zero or less means no limit.
	Limit int
}

// DefaultRowBounds is forwarded when a method declares no RowBounds
// parameter.
var DefaultRowBounds = RowBounds{}

// NewRowBounds returns a window of at most limit rows starting at offset.
func NewRowBounds(offset, limit int) RowBounds {
	return RowBounds{Offset: offset, Limit: limit}
}

// IsDefault reports whether b selects every row.
func (b RowBounds) IsDefault() bool {
	return b.Offset <= 0 && b.Limit <= 0
}

// ResultContext is handed to a ResultHandler once per row.
type ResultContext struct {
	// Object is the current row.
	Object any
	// Count is the number of rows handled so far, including this one.
	Count   int
	stopped bool
}

// Stop ends the fetch after the current row.
func (c *ResultContext) Stop() {
	c.stopped = true
}

// IsStopped reports whether Stop was called.
func (c *ResultContext) IsStopped() bool {
	return c.stopped
}

// ResultHandler receives fetched rows one at a time. A method parameter
// whose type implements ResultHandler makes a fetch stream its rows instead
// of returning them.
type ResultHandler interface {
	HandleResult(rc *ResultContext) error
}

// ResultHandlerFunc adapts a function to ResultHandler.
type ResultHandlerFunc func(rc *ResultContext) error

// HandleResult calls f(rc).
func (f ResultHandlerFunc) HandleResult(rc *ResultContext) error {
	return f(rc)
}

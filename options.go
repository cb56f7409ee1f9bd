package quarry

import (
	"io/fs"
	"log/slog"
	"maps"
)

type options struct {
	logger    *slog.Logger
	analyzer  Analyzer
	mapperFS  fs.FS
	vars      map[string]string
	schema    string
	dsnParams map[string]string
}

// Option configures a Configuration or an Engine.
type Option func(*options)

// WithLogger sets the structured logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAnalyzer replaces the analysis run when a mapper is registered.
func WithAnalyzer(a Analyzer) Option {
	return func(o *options) {
		o.analyzer = a
	}
}

// WithMapperFS sets the filesystem the default analyzer searches for a
// mapper's definition file (<TypeName>.hcl, .yaml or .yml) when the mapper
// is registered and none of its statements are known yet.
// Statements loaded this way stay in the catalog even when the
// registration then fails, so a retry does not read the file again.
func WithMapperFS(fsys fs.FS) Option {
	return func(o *options) {
		o.mapperFS = fsys
	}
}

// WithVariables sets the values definition files can reference as
// var.<name>.
func WithVariables(vars map[string]string) Option {
	return func(o *options) {
		if o.vars == nil {
			o.vars = make(map[string]string, len(vars))
		}
		maps.Copy(o.vars, vars)
	}
}

// WithSchema sets DDL an Engine executes right after opening its database.
// It has no effect on a bare Configuration.
func WithSchema(ddl string) Option {
	return func(o *options) {
		o.schema = ddl
	}
}

// WithDSNParam adds a go-sqlite3 connection parameter (for example
// "_txlock" or "cache") to an Engine's data source name.
func WithDSNParam(key, value string) Option {
	return func(o *options) {
		if o.dsnParams == nil {
			o.dsnParams = make(map[string]string)
		}
		o.dsnParams[key] = value
	}
}

func applyOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.analyzer == nil {
		o.analyzer = DefaultAnalyzer{}
	}
	return o
}

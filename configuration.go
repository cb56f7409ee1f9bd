package quarry

import (
	"fmt"
	"io/fs"
	"log/slog"
	"reflect"

	"github.com/jward/quarry/internal/definition"
)

// Configuration is the process-scoped state shared by every session and
// proxy: the statement catalog and the mapper registry. Create one with
// NewConfiguration (or New, for a SQLite-backed Engine) and pass it
// explicitly; there is no package-level instance.
type Configuration struct {
	catalog  *Catalog
	registry *Registry
	analyzer Analyzer
	logger   *slog.Logger
	mapperFS fs.FS
	vars     map[string]string
}

// NewConfiguration returns an empty Configuration.
func NewConfiguration(opts ...Option) *Configuration {
	return newConfiguration(applyOptions(opts))
}

func newConfiguration(o *options) *Configuration {
	c := &Configuration{
		catalog:  NewCatalog(),
		analyzer: o.analyzer,
		logger:   o.logger,
		mapperFS: o.mapperFS,
		vars:     o.vars,
	}
	c.registry = newRegistry(c)
	return c
}

// Catalog returns the statement catalog.
func (c *Configuration) Catalog() *Catalog {
	return c.catalog
}

// Registry returns the mapper registry.
func (c *Configuration) Registry() *Registry {
	return c.registry
}

// Logger returns the configured logger.
func (c *Configuration) Logger() *slog.Logger {
	return c.logger
}

// AddStatements registers statements in the catalog.
func (c *Configuration) AddStatements(stmts ...*Statement) error {
	return c.catalog.Add(stmts...)
}

// Statement returns the statement registered under id.
func (c *Configuration) Statement(id string) (*Statement, bool) {
	return c.catalog.Lookup(id)
}

// AddMapper registers a mapper interface. See Registry.Register.
func (c *Configuration) AddMapper(iface reflect.Type) error {
	return c.registry.Register(iface)
}

// HasMapper reports whether iface is registered.
func (c *Configuration) HasMapper(iface reflect.Type) bool {
	return c.registry.IsRegistered(iface)
}

// LoadDefinitions reads mapper definition files (HCL or YAML) from the
// given files and directories and registers their statements. Nothing is
// registered if any file fails to load.
func (c *Configuration) LoadDefinitions(paths ...string) error {
	mappers, err := definition.LoadFiles(paths, c.vars)
	if err != nil {
		return fmt.Errorf("quarry: load definitions: %w", err)
	}
	return c.addDefinitions(mappers)
}

func (c *Configuration) addDefinitions(mappers []*definition.Mapper) error {
	var stmts []*Statement
	for _, m := range mappers {
		for _, d := range m.Statements {
			stmts = append(stmts, &Statement{
				ID:            m.Namespace + "." + d.ID,
				Kind:          ParseKind(d.Kind),
				SQL:           d.SQL,
				Script:        d.Script,
				Params:        d.Params,
				MapKey:        d.MapKey,
				GeneratedKeys: d.GeneratedKeys,
			})
		}
		c.logger.Debug("Loaded mapper definition.", "namespace", m.Namespace, "source", m.Source, "statements", len(m.Statements))
	}
	return c.catalog.Add(stmts...)
}

// loadMapperResource loads the definition file named after iface from the
// mapper filesystem, unless statements for iface are already known.
func (c *Configuration) loadMapperResource(iface reflect.Type) error {
	if c.mapperFS == nil || c.catalog.HasNamespace(QualifiedName(iface)) {
		return nil
	}
	for _, ext := range definition.Extensions {
		name := iface.Name() + ext
		if _, err := fs.Stat(c.mapperFS, name); err != nil {
			continue
		}
		mappers, err := definition.LoadFS(c.mapperFS, name, c.vars)
		if err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		return c.addDefinitions(mappers)
	}
	return nil
}

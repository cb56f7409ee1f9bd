package quarry

import "reflect"

// Analyzer performs the one-time static analysis of a mapper interface
// during registration. A returned error aborts the registration.
type Analyzer interface {
	Analyze(cfg *Configuration, iface reflect.Type) error
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(cfg *Configuration, iface reflect.Type) error

// Analyze calls f(cfg, iface).
func (f AnalyzerFunc) Analyze(cfg *Configuration, iface reflect.Type) error {
	return f(cfg, iface)
}

// DefaultAnalyzer loads the interface's definition file from the mapper
// filesystem, if one is configured, and then binds every method so that a
// method without a valid statement fails registration instead of its first
// call.
type DefaultAnalyzer struct{}

// Analyze implements Analyzer.
func (DefaultAnalyzer) Analyze(cfg *Configuration, iface reflect.Type) error {
	if err := cfg.loadMapperResource(iface); err != nil {
		return err
	}
	for i := 0; i < iface.NumMethod(); i++ {
		if _, err := cfg.registry.planFor(iface, iface.Method(i)); err != nil {
			return err
		}
	}
	return nil
}

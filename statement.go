package quarry

import (
	"reflect"
	"strings"
)

// Statement is one registered data-access operation.
type Statement struct {
	// ID is the Operation Identity: the mapper interface's qualified name,
	// a dot, and the method name.
	ID   string
	Kind Kind

	// SQL is the statement text. Parameters are referenced as #{name} or
	// #{name.field}. Exactly one of SQL and Script is set.
	SQL string
	// Script is Risor source whose final value is the statement text. It
	// sees the folded parameter as the global "params".
	Script string

	// Params names the method's ordinary parameters in declaration order.
	// An empty entry keeps the positional default name ("param1", ...).
	Params []string
	// MapKey is the property each row is keyed by when the bound method
	// returns a map.
	MapKey string
	// GeneratedKeys makes a create statement report the last inserted row
	// id instead of the affected row count.
	GeneratedKeys bool
}

// Namespace returns the part of the ID before the method name.
func (s *Statement) Namespace() string {
	i := strings.LastIndex(s.ID, ".")
	if i < 0 {
		return ""
	}
	return s.ID[:i]
}

// QualifiedName returns the name statements for a mapper interface are
// registered under: the package path and type name joined by a dot.
func QualifiedName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.PkgPath() == "" {
		if t.Name() == "" {
			return t.String()
		}
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// StatementID returns the Operation Identity of method on iface.
func StatementID(iface reflect.Type, method string) string {
	return QualifiedName(iface) + "." + method
}

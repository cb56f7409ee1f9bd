package quarry

import (
	"errors"
	"reflect"
)

// Proxy dispatches calls made against a registered mapper interface to
// the statements bound to its methods.
//
// Go cannot implement an interface at run time, so a Proxy is called by
// method name. Typed adapters (see "quarry generate") implement the
// interface by forwarding every method to Invoke.
type Proxy struct {
	registry *Registry
	iface    reflect.Type
	session  Session
}

func newProxy(r *Registry, iface reflect.Type, s Session) (*Proxy, error) {
	if s == nil {
		return nil, errors.New("nil session")
	}
	if cfg := s.Configuration(); cfg != r.config {
		return nil, errors.New("session belongs to a different configuration")
	}
	return &Proxy{registry: r, iface: iface, session: s}, nil
}

// Type returns the mapper interface the proxy stands for.
func (p *Proxy) Type() reflect.Type {
	return p.iface
}

// Session returns the session calls are executed against.
func (p *Proxy) Session() Session {
	return p.session
}

// Invoke calls method with args, which must match the method's declared
// parameters (a variadic parameter is passed as its slice). The result has
// the method's declared non-error result type, or is nil for methods that
// return nothing but an error.
func (p *Proxy) Invoke(method string, args ...any) (any, error) {
	m, ok := p.iface.MethodByName(method)
	if !ok {
		return nil, bindingError(ErrUnknownMethod, StatementID(p.iface, method), nil)
	}
	plan, err := p.registry.planFor(p.iface, m)
	if err != nil {
		return nil, err
	}
	return plan.execute(p.session, args)
}

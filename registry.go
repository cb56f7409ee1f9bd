package quarry

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Registry tracks the mapper interfaces of a Configuration and caches the
// method plans built for them.
//
// Membership changes are atomic, but the Analyzer runs without any registry
// lock held so it may register further types. Membership reads and plan
// lookups may run concurrently with each other and with registration.
type Registry struct {
	config *Configuration

	mu    sync.RWMutex
	known map[reflect.Type]bool

	plans    sync.Map // planKey -> *methodPlan
	building singleflight.Group
}

type planKey struct {
	iface  reflect.Type
	method string
}

func newRegistry(cfg *Configuration) *Registry {
	return &Registry{
		config: cfg,
		known:  make(map[reflect.Type]bool),
	}
}

// Register makes iface available for proxying. Types that are not
// interfaces are ignored. The type is marked known before the configured
// Analyzer runs, so analysis that refers back to iface sees it registered;
// if analysis fails the type is removed again and the error returned.
// Registering iface again from within its own analysis fails with
// ErrAlreadyRegistered.
func (r *Registry) Register(iface reflect.Type) error {
	if iface == nil || iface.Kind() != reflect.Interface {
		return nil
	}
	name := QualifiedName(iface)

	if !r.markKnown(iface) {
		return bindingError(ErrAlreadyRegistered, name, nil)
	}
	loadCompleted := false
	defer func() {
		if !loadCompleted {
			r.forget(iface)
			r.dropPlans(iface)
		}
	}()

	r.config.logger.Debug("Registering mapper.", "type", name, "methods", iface.NumMethod())
	if err := r.config.analyzer.Analyze(r.config, iface); err != nil {
		r.config.logger.Debug("Mapper analysis failed.", "type", name, "error", err)
		return fmt.Errorf("quarry: analyze %s: %w", name, err)
	}
	loadCompleted = true
	return nil
}

// IsRegistered reports whether iface has been registered.
func (r *Registry) IsRegistered(iface reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.known[iface]
}

// Registered returns the registered interfaces ordered by qualified name.
func (r *Registry) Registered() []reflect.Type {
	r.mu.RLock()
	types := make([]reflect.Type, 0, len(r.known))
	for t := range r.known {
		types = append(types, t)
	}
	r.mu.RUnlock()
	sort.Slice(types, func(i, j int) bool {
		return QualifiedName(types[i]) < QualifiedName(types[j])
	})
	return types
}

// NewProxy returns a dispatch object for iface whose calls run against s.
func (r *Registry) NewProxy(iface reflect.Type, s Session) (*Proxy, error) {
	if iface == nil || !r.IsRegistered(iface) {
		return nil, bindingError(ErrUnknownType, QualifiedName(iface), nil)
	}
	p, err := newProxy(r, iface, s)
	if err != nil {
		return nil, bindingError(ErrProxyCreationFailed, QualifiedName(iface), err)
	}
	return p, nil
}

// markKnown adds iface unless it is already present and reports whether it
// did.
func (r *Registry) markKnown(iface reflect.Type) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.known[iface] {
		return false
	}
	r.known[iface] = true
	return true
}

func (r *Registry) forget(iface reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.known, iface)
}

func (r *Registry) dropPlans(iface reflect.Type) {
	r.plans.Range(func(k, _ any) bool {
		if k.(planKey).iface == iface {
			r.plans.Delete(k)
		}
		return true
	})
}

// planFor returns the cached plan for method of iface, building it on
// first use. Concurrent first calls share one build and all callers see the
// same plan.
func (r *Registry) planFor(iface reflect.Type, method reflect.Method) (*methodPlan, error) {
	key := planKey{iface: iface, method: method.Name}
	if p, ok := r.plans.Load(key); ok {
		return p.(*methodPlan), nil
	}

	v, err, _ := r.building.Do(StatementID(iface, method.Name), func() (any, error) {
		if p, ok := r.plans.Load(key); ok {
			return p, nil
		}
		p, err := buildPlan(iface, method, r.config.catalog)
		if err != nil {
			return nil, err
		}
		actual, _ := r.plans.LoadOrStore(key, p)
		r.config.logger.Debug("Built method plan.", "statement", p.id, "kind", p.kind.String())
		return actual, nil
	})
	if err != nil {
		return nil, err
	}

	p := v.(*methodPlan)
	if p.iface != iface {
		// Two distinct types share a qualified name (function-local
		// declarations); the shared build belonged to the other one.
		built, err := buildPlan(iface, method, r.config.catalog)
		if err != nil {
			return nil, err
		}
		actual, _ := r.plans.LoadOrStore(key, built)
		p = actual.(*methodPlan)
	}
	return p, nil
}

// TypeOf returns the reflect.Type of T. It is the usual way to name a
// mapper interface: TypeOf[Accounts]().
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// RegisterFor registers the interface type T.
func RegisterFor[T any](r *Registry) error {
	return r.Register(TypeOf[T]())
}

// Mapper returns a T backed by a new proxy over s. adapt wraps the proxy in
// a type implementing T, typically a constructor emitted by
// "quarry generate".
func Mapper[T any](r *Registry, s Session, adapt func(*Proxy) T) (T, error) {
	var zero T
	p, err := r.NewProxy(TypeOf[T](), s)
	if err != nil {
		return zero, err
	}
	if adapt == nil {
		return zero, bindingError(ErrProxyCreationFailed, QualifiedName(TypeOf[T]()), errors.New("nil adapter"))
	}
	return adapt(p), nil
}

package quarry

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
)

var (
	rowBoundsType     = reflect.TypeOf(RowBounds{})
	resultHandlerType = reflect.TypeOf((*ResultHandler)(nil)).Elem()
	contextType       = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType         = reflect.TypeOf((*error)(nil)).Elem()
	bytesType         = reflect.TypeOf([]byte(nil))
)

// methodPlan is everything a call needs to know about one mapper method. It
// is derived once from the method signature and the catalog and never
// mutated afterwards, so it is safe for concurrent use.
type methodPlan struct {
	iface  reflect.Type
	method reflect.Method
	id     string
	kind   Kind

	returnsNothing      bool
	returnsList         bool
	returnsKeyedMapping bool
	returnsError        bool
	mapKey              string
	// resultType is the declared non-error result; nil when returnsNothing.
	resultType reflect.Type

	// Positions of the special parameters, -1 when absent.
	rowBoundsIndex int
	callbackIndex  int
	contextIndex   int

	// paramNames[i] is the resolved name of the ordinary parameter declared
	// at paramPositions[i].
	paramNames       []string
	paramPositions   []int
	hasExplicitNames bool
}

// buildPlan inspects method of iface against catalog. It is a pure
// function of its inputs.
func buildPlan(iface reflect.Type, method reflect.Method, catalog *Catalog) (*methodPlan, error) {
	id := StatementID(iface, method.Name)
	stmt, ok := catalog.Lookup(id)
	if !ok {
		return nil, bindingError(ErrStatementNotFound, id, nil)
	}
	if stmt.Kind == KindUnknown {
		return nil, bindingError(ErrUnknownCommandType, id, nil)
	}

	p := &methodPlan{
		iface:          iface,
		method:         method,
		id:             id,
		kind:           stmt.Kind,
		rowBoundsIndex: -1,
		callbackIndex:  -1,
		contextIndex:   -1,
	}
	if err := p.setupReturnType(stmt); err != nil {
		return nil, err
	}
	if err := p.setupParams(stmt); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *methodPlan) setupReturnType(stmt *Statement) error {
	ft := p.method.Type
	n := ft.NumOut()
	if n > 0 && ft.Out(n-1) == errorType {
		p.returnsError = true
		n--
	}

	switch n {
	case 0:
		p.returnsNothing = true
	case 1:
		rt := ft.Out(0)
		p.resultType = rt
		switch {
		case rt.Kind() == reflect.Slice && rt != bytesType:
			p.returnsList = true
		case rt.Kind() == reflect.Map && stmt.MapKey != "":
			p.returnsKeyedMapping = true
			p.mapKey = stmt.MapKey
		}
	default:
		return bindingError(ErrUnsupportedSignature, p.id,
			fmt.Errorf("%d results besides error", n))
	}

	if p.kind != KindFetch && p.resultType != nil && !isRowCountType(p.resultType) {
		return bindingError(ErrUnsupportedSignature, p.id,
			fmt.Errorf("%s statement cannot return %s", p.kind, p.resultType))
	}
	return nil
}

func (p *methodPlan) setupParams(stmt *Statement) error {
	ft := p.method.Type
	for i := 0; i < ft.NumIn(); i++ {
		t := ft.In(i)
		switch {
		case t == rowBoundsType:
			if p.rowBoundsIndex >= 0 {
				return bindingError(ErrMultiplePageWindowParams, p.id, nil)
			}
			p.rowBoundsIndex = i
		case t.Implements(resultHandlerType):
			if p.callbackIndex >= 0 {
				return bindingError(ErrMultipleCallbackParams, p.id, nil)
			}
			p.callbackIndex = i
		case t == contextType:
			if p.contextIndex >= 0 {
				return bindingError(ErrMultipleContextParams, p.id, nil)
			}
			p.contextIndex = i
		default:
			ordinal := len(p.paramPositions)
			name := "param" + strconv.Itoa(ordinal+1)
			if ordinal < len(stmt.Params) && stmt.Params[ordinal] != "" {
				name = stmt.Params[ordinal]
				p.hasExplicitNames = true
			}
			p.paramNames = append(p.paramNames, name)
			p.paramPositions = append(p.paramPositions, i)
		}
	}

	if len(stmt.Params) > len(p.paramPositions) {
		return bindingError(ErrInvalidParamNames, p.id,
			fmt.Errorf("%d names for %d parameters", len(stmt.Params), len(p.paramPositions)))
	}
	return nil
}

// isRowCountType reports whether an affected-row count can be converted
// to t.
func isRowCountType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Bool:
		return true
	}
	return false
}

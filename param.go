package quarry

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
)

// paramObject folds the ordinary arguments into the single logical
// parameter handed to the session:
//
//   - no ordinary parameters: nil
//   - exactly one, and no explicit names: the argument itself
//   - otherwise: a map holding every argument under its resolved name and
//     under its position ("0", "1", ...)
//
// The positional keys are kept so statements written against them keep
// working.
func (p *methodPlan) paramObject(args []any) any {
	n := len(p.paramPositions)
	if len(args) == 0 || n == 0 {
		return nil
	}
	if !p.hasExplicitNames && n == 1 {
		return args[p.paramPositions[0]]
	}
	param := make(map[string]any, n*2)
	for i, pos := range p.paramPositions {
		param[p.paramNames[i]] = args[pos]
		param[strconv.Itoa(i)] = args[pos]
	}
	return param
}

// checkArgs verifies args can be passed to the declared method.
func (p *methodPlan) checkArgs(args []any) error {
	ft := p.method.Type
	if len(args) != ft.NumIn() {
		return bindingError(ErrInvalidArguments, p.id,
			fmt.Errorf("want %d arguments, got %d", ft.NumIn(), len(args)))
	}
	for i, arg := range args {
		want := ft.In(i)
		if arg == nil {
			if !isNillable(want) {
				return bindingError(ErrInvalidArguments, p.id,
					fmt.Errorf("argument %d: nil is not a valid %s", i, want))
			}
			continue
		}
		if got := reflect.TypeOf(arg); !got.AssignableTo(want) {
			return bindingError(ErrInvalidArguments, p.id,
				fmt.Errorf("argument %d: %s is not assignable to %s", i, got, want))
		}
	}
	return nil
}

func (p *methodPlan) context(args []any) context.Context {
	if p.contextIndex >= 0 {
		if ctx, ok := args[p.contextIndex].(context.Context); ok && ctx != nil {
			return ctx
		}
	}
	return context.Background()
}

func (p *methodPlan) rowBounds(args []any) RowBounds {
	if p.rowBoundsIndex >= 0 {
		if b, ok := args[p.rowBoundsIndex].(RowBounds); ok {
			return b
		}
	}
	return DefaultRowBounds
}

func isNillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
		reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return true
	}
	return false
}

package quarry

import (
	"context"
	"fmt"
	"reflect"
)

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// execute runs one call through the plan. The returned value has the
// method's declared result type, or is nil when the method returns nothing.
func (p *methodPlan) execute(s Session, args []any) (any, error) {
	if err := p.checkArgs(args); err != nil {
		return nil, err
	}
	ctx := p.context(args)
	param := p.paramObject(args)

	switch p.kind {
	case KindCreate:
		n, err := s.Insert(ctx, p.id, param)
		if err != nil {
			return nil, err
		}
		return p.rowCountResult(n)
	case KindMutate:
		n, err := s.Update(ctx, p.id, param)
		if err != nil {
			return nil, err
		}
		return p.rowCountResult(n)
	case KindRemove:
		n, err := s.Delete(ctx, p.id, param)
		if err != nil {
			return nil, err
		}
		return p.rowCountResult(n)
	case KindFetch:
		switch {
		case p.returnsNothing && p.callbackIndex >= 0:
			return nil, p.executeWithResultHandler(ctx, s, param, args)
		case p.returnsList:
			return p.executeForList(ctx, s, param, args)
		case p.returnsKeyedMapping:
			return p.executeForMap(ctx, s, param, args)
		default:
			return p.executeForOne(ctx, s, param)
		}
	default:
		return nil, bindingError(ErrUnknownCommandType, p.id, nil)
	}
}

func (p *methodPlan) executeWithResultHandler(ctx context.Context, s Session, param any, args []any) error {
	handler, _ := args[p.callbackIndex].(ResultHandler)
	return s.Select(ctx, p.id, param, p.rowBounds(args), handler)
}

func (p *methodPlan) executeForList(ctx context.Context, s Session, param any, args []any) (any, error) {
	dest := reflect.New(p.resultType)
	if err := s.SelectList(ctx, p.id, param, p.rowBounds(args), dest.Interface()); err != nil {
		return nil, err
	}
	return dest.Elem().Interface(), nil
}

func (p *methodPlan) executeForMap(ctx context.Context, s Session, param any, args []any) (any, error) {
	dest := reflect.New(p.resultType)
	if err := s.SelectMap(ctx, p.id, param, p.mapKey, p.rowBounds(args), dest.Interface()); err != nil {
		return nil, err
	}
	return dest.Elem().Interface(), nil
}

func (p *methodPlan) executeForOne(ctx context.Context, s Session, param any) (any, error) {
	rt := p.resultType
	if rt == nil {
		rt = anyType
	}
	dest := reflect.New(rt)
	if err := s.SelectOne(ctx, p.id, param, dest.Interface()); err != nil {
		return nil, err
	}
	if p.returnsNothing {
		return nil, nil
	}
	return dest.Elem().Interface(), nil
}

// rowCountResult converts an affected-row count (or generated key) to the
// declared result type. A value the type cannot hold is an error.
func (p *methodPlan) rowCountResult(n int64) (any, error) {
	if p.resultType == nil {
		return nil, nil
	}
	v := reflect.New(p.resultType).Elem()
	switch p.resultType.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.OverflowInt(n) {
			return nil, p.rowCountOverflow(n)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n < 0 || v.OverflowUint(uint64(n)) {
			return nil, p.rowCountOverflow(n)
		}
		v.SetUint(uint64(n))
	case reflect.Bool:
		v.SetBool(n > 0)
	}
	return v.Interface(), nil
}

func (p *methodPlan) rowCountOverflow(n int64) error {
	return bindingError(ErrRowCountOverflow, p.id,
		fmt.Errorf("%d overflows %s", n, p.resultType))
}

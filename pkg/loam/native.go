package loam

import (
	"context"
	"fmt"
	"reflect"
)

var (
	valType    = reflect.TypeOf((*Value)(nil)).Elem()
	errType    = reflect.TypeOf((*error)(nil)).Elem()
	ctxType    = reflect.TypeOf((*context.Context)(nil)).Elem()
	bounceType = reflect.TypeOf((*Bounce)(nil)).Elem()
)

// Native builds a prefix action from a Go function. The function may be a
// raw dispatcher, func(context.Context, *Call) (Bounce, error), or a plain
// function whose inputs are decoded from the fulfilled arguments in order
// (optionally preceded by a context.Context) and whose results are a Value
// plus an optional error.
func Native(name, spec string, f any) *Action {
	return newNative(name, spec, false, f)
}

// Operator builds an infix action: its first parameter consumes the value to
// its left.
func Operator(name, spec string, f any) *Action {
	return newNative(name, spec, true, f)
}

func newNative(name, spec string, operator bool, f any) *Action {
	params, err := ParseParams(name, spec, operator)
	if err != nil {
		panic(err)
	}

	return &Action{
		Name:       name,
		Params:     params,
		Dispatcher: dispatcherFor(name, f),
		Operator:   operator,
		Source:     spec,
	}
}

func dispatcherFor(name string, f any) Dispatcher {
	if d, ok := f.(Dispatcher); ok {
		return d
	}

	if raw, ok := f.(func(context.Context, *Call) (Bounce, error)); ok {
		return DispatcherFunc(raw)
	}

	fun := reflect.ValueOf(f)
	if fun.Kind() != reflect.Func {
		panic(fmt.Sprintf("native %s: not a func: %T", name, f))
	}

	return &reflectDispatcher{
		name: name,
		fun:  fun,
	}
}

// reflectDispatcher bridges typechecked arguments into an ordinary Go
// function call.
type reflectDispatcher struct {
	name string
	fun  reflect.Value
}

func (d *reflectDispatcher) Dispatch(ctx context.Context, call *Call) (Bounce, error) {
	ftype := d.fun.Type()

	fargs := make([]reflect.Value, 0, ftype.NumIn())

	in := 0
	if ftype.NumIn() > 0 && ftype.In(0) == ctxType {
		fargs = append(fargs, reflect.ValueOf(ctx))
		in++
	}

	for argIdx := 0; in < ftype.NumIn(); in, argIdx = in+1, argIdx+1 {
		if argIdx >= call.NumArgs() {
			return nil, fmt.Errorf("native %s: func takes %d args, action declares %d", d.name, ftype.NumIn(), call.NumArgs())
		}

		arg := call.Arg(argIdx)

		t := ftype.In(in)
		if t == valType {
			fargs = append(fargs, reflect.ValueOf(arg))
			continue
		}

		dest := reflect.New(t)
		if err := arg.Decode(dest.Interface()); err != nil {
			return nil, fmt.Errorf("native %s: %w", d.name, err)
		}

		fargs = append(fargs, dest.Elem())
	}

	outs := d.fun.Call(fargs)

	// errors take precedence regardless of result position
	for _, out := range outs {
		if out.Type() == errType && !out.IsNil() {
			return nil, out.Interface().(error)
		}
	}

	var result Value = Unset{}
	for _, out := range outs {
		switch {
		case out.Type() == errType:

		case out.Type() == bounceType:
			if !out.IsNil() {
				return out.Interface().(Bounce), nil
			}

		default:
			v, ok := out.Interface().(Value)
			if !ok {
				return nil, fmt.Errorf("native %s: result %T is not a Value", d.name, out.Interface())
			}

			result = v
		}
	}

	return call.Return(result)
}

package loam

import "fmt"

// Varargs is the handle a variadic parameter leaves in its argument slot.
// The callee pulls further terms from the callsite feed through it during
// its own execution; each pulled term is checked lazily against the
// parameter's declared types.
type Varargs struct {
	feed   *Feed
	param  Param
	types  TypeSet
	closed bool
}

func newVarargs(feed *Feed, param Param) *Varargs {
	return &Varargs{
		feed:  feed,
		param: param,
		types: param.Types,
	}
}

var _ Value = (*Varargs)(nil)

func (value *Varargs) Kind() Kind {
	return KindVarargs
}

func (value *Varargs) String() string {
	return fmt.Sprintf("<varargs: %s>", value.param.Name)
}

func (value *Varargs) Equal(other Value) bool {
	var o *Varargs
	return other.Decode(&o) == nil && value == o
}

func (value *Varargs) Decode(dest any) error {
	switch x := dest.(type) {
	case **Varargs:
		*x = value
		return nil
	case *Value:
		*x = value
		return nil
	default:
		return DecodeError{
			Source:      value,
			Destination: dest,
		}
	}
}

// Pull consumes the next term from the callsite feed. Returns false when the
// feed is exhausted, and an error if the call has already completed or the
// term fails the lazy typecheck.
func (value *Varargs) Pull() (Value, bool, error) {
	if value.closed {
		return nil, false, fmt.Errorf("varargs %s pulled outside its call", value.param.Name)
	}

	t, ok := value.feed.Next()
	if !ok {
		return nil, false, nil
	}

	if !value.types.Accepts(t.Kind()) {
		return nil, false, ArgTypeError{
			Param: value.param.Name,
			Want:  value.types,
			Have:  t.Kind(),
		}
	}

	return t, true, nil
}

func (value *Varargs) close() {
	value.closed = true
}

package loam

import "fmt"

// Bound pairs a term with the scope it was taken from. Literal parameters
// that preserve binding hand the callee a Bound so the term can later be
// evaluated where it was written rather than where the callee runs.
type Bound struct {
	Term  Value
	Scope *Scope
}

var _ Value = Bound{}

func (value Bound) Kind() Kind {
	return KindBound
}

func (value Bound) String() string {
	return fmt.Sprintf("<bound: %s>", value.Term)
}

func (value Bound) Equal(other Value) bool {
	var o Bound
	return other.Decode(&o) == nil && value.Term.Equal(o.Term) && value.Scope == o.Scope
}

func (value Bound) Decode(dest any) error {
	switch x := dest.(type) {
	case *Bound:
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

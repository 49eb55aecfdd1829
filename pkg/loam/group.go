package loam

// Group is a parenthesized sub-expression; evaluating it evaluates its
// contents to completion and yields the last result.
type Group []Value

var _ Value = Group(nil)

func NewGroup(terms ...Value) Group {
	return Group(terms)
}

func (value Group) Kind() Kind {
	return KindGroup
}

func (value Group) String() string {
	return formatTerms(value, "(", ")")
}

func (value Group) Equal(other Value) bool {
	var o Group
	if other.Decode(&o) != nil {
		return false
	}

	return termsEqual(value, o)
}

func (value Group) Decode(dest any) error {
	switch x := dest.(type) {
	case *Group:
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

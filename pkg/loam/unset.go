package loam

// Unset is the distinguished "unspecified" marker: the result of evaluating
// nothing (end of input, an absent optional argument, a branch not taken).
type Unset struct{}

var _ Value = Unset{}

func (Unset) Kind() Kind {
	return KindUnset
}

func (Unset) String() string {
	return "~"
}

func (value Unset) Equal(other Value) bool {
	var o Unset
	return other.Decode(&o) == nil
}

func (value Unset) Decode(dest any) error {
	switch x := dest.(type) {
	case *Unset:
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

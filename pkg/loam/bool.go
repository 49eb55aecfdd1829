package loam

type Bool bool

var _ Value = Bool(false)

func (value Bool) Kind() Kind {
	return KindBool
}

func (value Bool) String() string {
	if value {
		return "true"
	}

	return "false"
}

func (value Bool) Equal(other Value) bool {
	var o Bool
	return other.Decode(&o) == nil && value == o
}

func (value Bool) Decode(dest any) error {
	switch x := dest.(type) {
	case *Bool:
		*x = value
		return nil
	case *bool:
		*x = bool(value)
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

// Truthy reports how a value reads as a condition: false is the only falsey
// value besides Unset.
func Truthy(val Value) bool {
	switch x := val.(type) {
	case Bool:
		return bool(x)
	case Unset:
		return false
	default:
		return true
	}
}

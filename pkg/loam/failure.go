package loam

import "fmt"

// Failure is a definitional error: a structured failure captured as ordinary
// data. try produces one instead of unwinding; fail escalates one back into
// an abrupt unwind.
type Failure struct {
	Err error
}

var _ Value = Failure{}

func (value Failure) Kind() Kind {
	return KindFailure
}

func (value Failure) String() string {
	return fmt.Sprintf("<failure: %s>", value.Err)
}

func (value Failure) Equal(other Value) bool {
	var o Failure
	return other.Decode(&o) == nil && value.Err == o.Err
}

func (value Failure) Decode(dest any) error {
	switch x := dest.(type) {
	case *Failure:
		*x = value
		return nil
	case *error:
		*x = value.Err
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

package loam

import "strconv"

type Text string

var _ Value = Text("")

func (value Text) Kind() Kind {
	return KindText
}

func (value Text) String() string {
	return strconv.Quote(string(value))
}

func (value Text) Equal(other Value) bool {
	var o Text
	return other.Decode(&o) == nil && value == o
}

func (value Text) Decode(dest any) error {
	switch x := dest.(type) {
	case *Text:
		*x = value
		return nil
	case *string:
		*x = string(value)
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

package loam

import "strconv"

type Int int64

var _ Value = Int(0)

func (value Int) Kind() Kind {
	return KindInt
}

func (value Int) String() string {
	return strconv.FormatInt(int64(value), 10)
}

func (value Int) Equal(other Value) bool {
	var o Int
	return other.Decode(&o) == nil && value == o
}

func (value Int) Decode(dest any) error {
	switch x := dest.(type) {
	case *Int:
		*x = value
		return nil
	case *int64:
		*x = int64(value)
		return nil
	case *int:
		*x = int(value)
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

package loam

import "strings"

// Block is an ordered sequence of terms. Blocks are inert: evaluating one
// yields the block itself. Use do to evaluate its contents.
type Block []Value

var _ Value = Block(nil)

func NewBlock(terms ...Value) Block {
	return Block(terms)
}

func (value Block) Kind() Kind {
	return KindBlock
}

func (value Block) String() string {
	return formatTerms(value, "[", "]")
}

func (value Block) Equal(other Value) bool {
	var o Block
	if other.Decode(&o) != nil {
		return false
	}

	return termsEqual(value, o)
}

func (value Block) Decode(dest any) error {
	switch x := dest.(type) {
	case *Block:
		*x = value
		return nil
	case *[]Value:
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

func formatTerms(terms []Value, open, close string) string {
	strs := make([]string, len(terms))
	for i, t := range terms {
		strs[i] = t.String()
	}

	return open + strings.Join(strs, " ") + close
}

func termsEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}

	return true
}

package loam

import "fmt"

// Kind tags a Value's concrete representation. Kinds are single bits so
// parameter type constraints can be expressed as a TypeSet mask.
type Kind uint16

const (
	KindUnset Kind = 1 << iota
	KindBool
	KindInt
	KindText
	KindWord
	KindSetWord
	KindGetWord
	KindLitWord
	KindRefinement
	KindGroup
	KindBlock
	KindAction
	KindBound
	KindVarargs
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindUnset:
		return "unset"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindText:
		return "text"
	case KindWord:
		return "word"
	case KindSetWord:
		return "set-word"
	case KindGetWord:
		return "get-word"
	case KindLitWord:
		return "lit-word"
	case KindRefinement:
		return "refinement"
	case KindGroup:
		return "group"
	case KindBlock:
		return "block"
	case KindAction:
		return "action"
	case KindBound:
		return "bound"
	case KindVarargs:
		return "varargs"
	case KindFailure:
		return "failure"
	default:
		return fmt.Sprintf("kind(%d)", uint16(k))
	}
}

// TypeSet is a mask of Kinds accepted by a parameter. The zero TypeSet
// accepts anything.
type TypeSet uint16

func Types(kinds ...Kind) TypeSet {
	var ts TypeSet
	for _, k := range kinds {
		ts |= TypeSet(k)
	}

	return ts
}

func (ts TypeSet) Accepts(k Kind) bool {
	return ts == 0 || uint16(ts)&uint16(k) != 0
}

func (ts TypeSet) String() string {
	if ts == 0 {
		return "any"
	}

	str := ""
	for bit := Kind(1); bit != 0; bit <<= 1 {
		if uint16(ts)&uint16(bit) != 0 {
			if str != "" {
				str += "|"
			}

			str += bit.String()
		}
	}

	return str
}

// Value is the interface for all terms and runtime data.
type Value interface {
	fmt.Stringer

	// Kind returns the value's representation tag.
	Kind() Kind

	// Equal checks whether two values are equal.
	Equal(other Value) bool

	// Decode coerces the value into the given type, erroring if the value
	// does not have a compatible representation.
	Decode(dest any) error
}

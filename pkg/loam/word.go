package loam

// Word is a name. Evaluating a word resolves it through the scope chain; if
// the resolved value is an action it is invoked.
type Word string

var _ Value = Word("")

func (value Word) Kind() Kind {
	return KindWord
}

func (value Word) String() string {
	return string(value)
}

func (value Word) Equal(other Value) bool {
	var o Word
	return other.Decode(&o) == nil && value == o
}

func (value Word) Decode(dest any) error {
	switch x := dest.(type) {
	case *Word:
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

// SetWord is a name followed by a colon; evaluating it binds the name to the
// value of the following expression.
type SetWord string

var _ Value = SetWord("")

func (value SetWord) Kind() Kind {
	return KindSetWord
}

func (value SetWord) String() string {
	return string(value) + ":"
}

func (value SetWord) Word() Word {
	return Word(value)
}

func (value SetWord) Equal(other Value) bool {
	var o SetWord
	return other.Decode(&o) == nil && value == o
}

func (value SetWord) Decode(dest any) error {
	switch x := dest.(type) {
	case *SetWord:
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

// GetWord fetches a name's value without invoking it, even if it names an
// action.
type GetWord string

var _ Value = GetWord("")

func (value GetWord) Kind() Kind {
	return KindGetWord
}

func (value GetWord) String() string {
	return ":" + string(value)
}

func (value GetWord) Word() Word {
	return Word(value)
}

func (value GetWord) Equal(other Value) bool {
	var o GetWord
	return other.Decode(&o) == nil && value == o
}

func (value GetWord) Decode(dest any) error {
	switch x := dest.(type) {
	case *GetWord:
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

// LitWord evaluates to the plain word it quotes.
type LitWord string

var _ Value = LitWord("")

func (value LitWord) Kind() Kind {
	return KindLitWord
}

func (value LitWord) String() string {
	return "'" + string(value)
}

func (value LitWord) Word() Word {
	return Word(value)
}

func (value LitWord) Equal(other Value) bool {
	var o LitWord
	return other.Decode(&o) == nil && value == o
}

func (value LitWord) Decode(dest any) error {
	switch x := dest.(type) {
	case *LitWord:
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

// Refinement names a parameter at a callsite so its argument can be supplied
// out of declaration order.
type Refinement string

var _ Value = Refinement("")

func (value Refinement) Kind() Kind {
	return KindRefinement
}

func (value Refinement) String() string {
	return "/" + string(value)
}

func (value Refinement) Word() Word {
	return Word(value)
}

func (value Refinement) Equal(other Value) bool {
	var o Refinement
	return other.Decode(&o) == nil && value == o
}

func (value Refinement) Decode(dest any) error {
	switch x := dest.(type) {
	case *Refinement:
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

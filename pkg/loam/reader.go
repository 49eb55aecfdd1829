package loam

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	slurpcore "github.com/spy16/slurp/core"
	slurpreader "github.com/spy16/slurp/reader"
)

// Reader parses source text into terms. Syntax:
//
//	123 -456        ints
//	"hi\n"          text
//	word            word
//	word:           set-word
//	:word           get-word
//	'word           lit-word
//	/word           refinement
//	[a b c]         block
//	(a b c)         group
//	; comment       to end of line
type Reader struct {
	rd *slurpreader.Reader

	File string
}

var (
	symTable = map[string]slurpcore.Any{
		"~":     Unset{},
		"true":  Bool(true),
		"false": Bool(false),
	}

	escapeMap = map[rune]rune{
		'"':  '"',
		'n':  '\n',
		'\\': '\\',
		't':  '\t',
		'r':  '\r',
	}
)

func NewReader(src io.Reader, file string) *Reader {
	r := slurpreader.New(
		src,
		slurpreader.WithNumReader(readInt),
		slurpreader.WithSymbolReader(readSymbol),
	)

	r.File = file

	reader := &Reader{
		File: file,

		rd: r,
	}

	r.SetMacro('"', false, readText)
	r.SetMacro('(', false, reader.readGroup)
	r.SetMacro(')', false, slurpreader.UnmatchedDelimiter())
	r.SetMacro('[', false, reader.readBlock)
	r.SetMacro(']', false, slurpreader.UnmatchedDelimiter())
	r.SetMacro(';', false, readCommented)
	r.SetMacro('!', true, readShebang)

	// token characters, not dispatch characters
	r.SetMacro('\'', false, nil)
	r.SetMacro('~', false, nil)
	r.SetMacro(':', false, nil)

	return reader
}

// Next reads one term. io.EOF at end of input.
func (reader *Reader) Next() (Value, error) {
	rd := reader.rd

	for {
		if err := rd.SkipSpaces(); err != nil {
			return nil, err
		}

		any, err := rd.One()
		if err != nil {
			if errors.Is(err, slurpreader.ErrSkip) {
				continue
			}

			return nil, err
		}

		val, ok := any.(Value)
		if !ok {
			return nil, fmt.Errorf("read: expected value, got %T", any)
		}

		return val, nil
	}
}

// ReadAll reads every remaining term into a block. A clean end of input is
// not an error; an end of input inside an unterminated form is.
func (reader *Reader) ReadAll() (Block, error) {
	var terms []Value

	for {
		val, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) && !errors.Is(err, slurpreader.ErrEOF) {
				return NewBlock(terms...), nil
			}

			return Block{}, err
		}

		terms = append(terms, val)
	}
}

func readSymbol(rd *slurpreader.Reader, init rune) (slurpcore.Any, error) {
	beginPos := rd.Position()

	s, err := rd.Token(init)
	if err != nil {
		return nil, annotateErr(rd, err, beginPos, s)
	}

	if predefVal, found := symTable[s]; found {
		return predefVal, nil
	}

	val, err := classifyToken(s)
	if err != nil {
		return nil, annotateErr(rd, err, beginPos, s)
	}

	return val, nil
}

func classifyToken(s string) (Value, error) {
	switch {
	case s == "/" || s == ":":
		return Word(s), nil

	case strings.HasPrefix(s, "'"):
		name := strings.TrimPrefix(s, "'")
		if !plainWord(name) {
			return nil, fmt.Errorf("malformed lit-word: %q", s)
		}

		return LitWord(name), nil

	case strings.HasPrefix(s, ":"):
		name := strings.TrimPrefix(s, ":")
		if !plainWord(name) {
			return nil, fmt.Errorf("malformed get-word: %q", s)
		}

		return GetWord(name), nil

	case strings.HasSuffix(s, ":"):
		name := strings.TrimSuffix(s, ":")
		if !plainWord(name) {
			return nil, fmt.Errorf("malformed set-word: %q", s)
		}

		return SetWord(name), nil

	case strings.HasPrefix(s, "/"):
		name := strings.TrimPrefix(s, "/")
		if !plainWord(name) {
			return nil, fmt.Errorf("malformed refinement: %q", s)
		}

		return Refinement(name), nil
	}

	if !plainWord(s) {
		return nil, fmt.Errorf("malformed word: %q", s)
	}

	return Word(s), nil
}

func plainWord(s string) bool {
	if s == "" {
		return false
	}

	return !strings.ContainsAny(s, "':/")
}

func readInt(rd *slurpreader.Reader, init rune) (slurpcore.Any, error) {
	beginPos := rd.Position()

	numStr, err := rd.Token(init)
	if err != nil {
		return nil, err
	}

	v, err := strconv.ParseInt(numStr, 0, 64)
	if err != nil {
		return nil, annotateErr(rd, slurpreader.ErrNumberFormat, beginPos, numStr)
	}

	return Int(v), nil
}

func readText(rd *slurpreader.Reader, init rune) (slurpcore.Any, error) {
	beginPos := rd.Position()

	var b strings.Builder
	for {
		r, err := rd.NextRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = slurpreader.ErrEOF
			}
			return nil, annotateErr(rd, err, beginPos, string(init)+b.String())
		}

		if r == '\\' {
			r2, err := rd.NextRune()
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = slurpreader.ErrEOF
				}

				return nil, annotateErr(rd, err, beginPos, string(init)+b.String())
			}

			escaped, found := escapeMap[r2]
			if !found {
				return nil, fmt.Errorf("illegal escape sequence '\\%c'", r2)
			}

			r = escaped
		} else if r == '"' {
			break
		}

		b.WriteRune(r)
	}

	return Text(b.String()), nil
}

func (reader *Reader) readGroup(rd *slurpreader.Reader, _ rune) (slurpcore.Any, error) {
	terms, err := reader.container(')')
	if err != nil {
		return nil, err
	}

	return NewGroup(terms...), nil
}

func (reader *Reader) readBlock(rd *slurpreader.Reader, _ rune) (slurpcore.Any, error) {
	terms, err := reader.container(']')
	if err != nil {
		return nil, err
	}

	return NewBlock(terms...), nil
}

func (reader *Reader) container(end rune) ([]Value, error) {
	rd := reader.rd

	var terms []Value
	for {
		if err := rd.SkipSpaces(); err != nil {
			if err == io.EOF {
				return nil, slurpreader.Error{Cause: slurpreader.ErrEOF}
			}
			return nil, err
		}

		r, err := rd.NextRune()
		if err != nil {
			if err == io.EOF {
				return nil, slurpreader.Error{Cause: slurpreader.ErrEOF}
			}
			return nil, err
		}

		if r == end {
			break
		}
		rd.Unread(r)

		any, err := rd.One()
		if err != nil {
			if errors.Is(err, slurpreader.ErrSkip) {
				continue
			}
			return nil, err
		}

		val, ok := any.(Value)
		if !ok {
			return nil, fmt.Errorf("read: expected value, got %T", any)
		}

		terms = append(terms, val)
	}

	return terms, nil
}

func readCommented(rd *slurpreader.Reader, _ rune) (slurpcore.Any, error) {
	for {
		r, err := rd.NextRune()
		if err != nil {
			if err == io.EOF {
				return nil, slurpreader.ErrSkip
			}

			return nil, err
		}

		if r == '\n' {
			break
		}
	}

	return nil, slurpreader.ErrSkip
}

func readShebang(rd *slurpreader.Reader, _ rune) (slurpcore.Any, error) {
	for {
		r, err := rd.NextRune()
		if err != nil {
			return nil, err
		}

		if r == '\n' {
			break
		}
	}

	return nil, slurpreader.ErrSkip
}

func annotateErr(rd *slurpreader.Reader, err error, beginPos slurpreader.Position, form string) error {
	if err == io.EOF || err == slurpreader.ErrSkip {
		return err
	}

	readErr := slurpreader.Error{}
	if e, ok := err.(slurpreader.Error); ok {
		readErr = e
	} else {
		readErr = slurpreader.Error{Cause: err}
	}

	readErr.Form = form
	readErr.Begin = beginPos
	readErr.End = rd.Position()
	return readErr
}

package loam

import "strings"

// Parameter specs are written as space-separated tokens, one per parameter:
//
//	name        normal argument
//	'name       literal, binding preserved
//	^name       literal, binding stripped
//	:name       soft literal (groups and get-words evaluate)
//	name...     variadic
//	?name       optional: absent unless supplied by name or partial
//
// A type constraint follows the name after a colon, with alternatives
// separated by |, e.g. "n:int", "branch:block|group". The first parameter of
// an operator is implicitly op-left.
var kindNames = map[string]Kind{
	"unset":      KindUnset,
	"bool":       KindBool,
	"int":        KindInt,
	"text":       KindText,
	"word":       KindWord,
	"set-word":   KindSetWord,
	"get-word":   KindGetWord,
	"lit-word":   KindLitWord,
	"refinement": KindRefinement,
	"group":      KindGroup,
	"block":      KindBlock,
	"action":     KindAction,
	"bound":      KindBound,
	"varargs":    KindVarargs,
	"failure":    KindFailure,
}

// ParseParams parses a parameter spec string. The action name is only used
// in errors.
func ParseParams(name, spec string, operator bool) ([]Param, error) {
	var params []Param

	for _, tok := range strings.Fields(spec) {
		p, err := parseParam(name, spec, tok)
		if err != nil {
			return nil, err
		}

		params = append(params, p)
	}

	if operator {
		if len(params) == 0 {
			return nil, BadSpecError{
				Action: name,
				Spec:   spec,
				Reason: "operator needs a left parameter",
			}
		}

		if params[0].Class == ParamNormal {
			params[0].Class = ParamOpLeft
		}
	}

	return params, nil
}

func parseParam(name, spec, tok string) (Param, error) {
	var p Param

	if strings.HasPrefix(tok, "?") {
		p.Opt = true
		tok = tok[1:]
	}

	switch {
	case strings.HasPrefix(tok, "'"):
		p.Class = ParamLiteral
		tok = tok[1:]
	case strings.HasPrefix(tok, "^"):
		p.Class = ParamLiteralUnbound
		tok = tok[1:]
	case strings.HasPrefix(tok, ":"):
		p.Class = ParamSoft
		tok = tok[1:]
	}

	nameStr, typeStr, _ := strings.Cut(tok, ":")

	if strings.HasSuffix(nameStr, "...") {
		if p.Class != ParamNormal {
			return p, BadSpecError{
				Action: name,
				Spec:   spec,
				Reason: "variadic cannot combine with a literal convention",
			}
		}

		p.Class = ParamVariadic
		nameStr = strings.TrimSuffix(nameStr, "...")
	}

	if nameStr == "" {
		return p, BadSpecError{
			Action: name,
			Spec:   spec,
			Reason: "parameter with no name",
		}
	}

	p.Name = Word(nameStr)

	for _, tn := range strings.Split(typeStr, "|") {
		if tn == "" || tn == "any" {
			continue
		}

		k, ok := kindNames[tn]
		if !ok {
			return p, BadSpecError{
				Action: name,
				Spec:   spec,
				Reason: "unknown type " + tn,
			}
		}

		p.Types |= TypeSet(k)
	}

	return p, nil
}

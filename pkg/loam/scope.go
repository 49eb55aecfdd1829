package loam

import (
	"fmt"
	"sort"
)

// Scope contains bindings from words to values, and parent scopes to
// delegate to during lookup. It is the evaluator's binding collaborator: the
// stepper resolves words here and never walks the chain itself.
type Scope struct {
	// an optional name, used to prettify String on standard scopes
	Name string

	Parents  []*Scope
	Bindings map[Word]Value
	Order    []Word
}

// NewEmptyScope constructs a new scope with no bindings and optional
// parents.
func NewEmptyScope(parents ...*Scope) *Scope {
	return &Scope{
		Parents:  parents,
		Bindings: map[Word]Value{},
	}
}

// NewScope constructs a new scope with the given bindings and optional
// parents.
func NewScope(bindings map[Word]Value, parents ...*Scope) *Scope {
	scope := NewEmptyScope(parents...)

	names := make([]Word, 0, len(bindings))
	for k := range bindings {
		names = append(names, k)
	}

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	for _, k := range names {
		scope.Def(k, bindings[k])
	}

	return scope
}

// Location is one storage position for a value; reads and writes go through
// it so the evaluator never touches scope internals.
type Location interface {
	Read() Value
	Write(Value)
}

type scopeLocation struct {
	scope *Scope
	name  Word
}

func (loc scopeLocation) Read() Value {
	return loc.scope.Bindings[loc.name]
}

func (loc scopeLocation) Write(val Value) {
	loc.scope.Bindings[loc.name] = val
}

// Def creates or overwrites a binding directly in this scope.
func (scope *Scope) Def(name Word, val Value) {
	if _, ok := scope.Bindings[name]; !ok {
		scope.Order = append(scope.Order, name)
	}

	scope.Bindings[name] = val
}

// Resolve finds the storage location for a name, checking this scope and
// then each parent depth-first.
func (scope *Scope) Resolve(name Word) (Location, bool) {
	if _, ok := scope.Bindings[name]; ok {
		return scopeLocation{scope, name}, true
	}

	for _, parent := range scope.Parents {
		loc, ok := parent.Resolve(name)
		if ok {
			return loc, true
		}
	}

	return nil, false
}

// Get reads a name's value through Resolve.
func (scope *Scope) Get(name Word) (Value, bool) {
	loc, ok := scope.Resolve(name)
	if !ok {
		return nil, false
	}

	return loc.Read(), true
}

// Each calls f with every visible binding, nearest shadow first. Iteration
// stops at the first error.
func (scope *Scope) Each(f func(Word, Value) error) error {
	return scope.each(f, map[Word]bool{})
}

func (scope *Scope) each(f func(Word, Value) error, seen map[Word]bool) error {
	for _, name := range scope.Order {
		if seen[name] {
			continue
		}

		seen[name] = true

		if err := f(name, scope.Bindings[name]); err != nil {
			return err
		}
	}

	for _, parent := range scope.Parents {
		if err := parent.each(f, seen); err != nil {
			return err
		}
	}

	return nil
}

// Similar returns visible binding names within a small edit distance of the
// given name, for "did you mean" hints.
func (scope *Scope) Similar(name Word) []Word {
	var names []Word
	_ = scope.Each(func(w Word, _ Value) error {
		names = append(names, w)
		return nil
	})

	return similarWords(name, names)
}

func (scope *Scope) String() string {
	if scope.Name != "" {
		return fmt.Sprintf("<scope: %s>", scope.Name)
	}

	return fmt.Sprintf("<scope: %d bindings>", len(scope.Bindings))
}

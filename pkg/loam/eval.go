package loam

import (
	"context"
	"io"
	"strings"
)

// EvalString reads and evaluates source text on a fresh machine, returning
// the last expression's result.
func EvalString(ctx context.Context, name, source string, scope *Scope) (Value, error) {
	return EvalReader(ctx, name, strings.NewReader(source), scope)
}

// EvalReader reads and evaluates all of src on a fresh machine.
func EvalReader(ctx context.Context, name string, src io.Reader, scope *Scope) (Value, error) {
	block, err := NewReader(src, name).ReadAll()
	if err != nil {
		return nil, err
	}

	return NewMachine().RunBlock(ctx, block, scope)
}

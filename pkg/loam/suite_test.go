package loam_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/loam-lang/loam/pkg/loam"
)

var fakeClock clockwork.FakeClock

func init() {
	fakeClock = clockwork.NewFakeClockAt(
		time.Date(2023, 4, 5, 6, 7, 8, 9, time.UTC),
	)

	loam.Clock = fakeClock
}

func eval(t *testing.T, scope *loam.Scope, source string) (loam.Value, error) {
	t.Helper()

	return loam.EvalString(context.Background(), t.Name(), source, scope)
}

func mustEval(t *testing.T, scope *loam.Scope, source string) loam.Value {
	t.Helper()

	val, err := eval(t, scope, source)
	if err != nil {
		t.Fatalf("eval %q: %s", source, err)
	}

	return val
}

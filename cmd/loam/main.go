package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-colorable"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/loam-lang/loam/pkg/ioctx"
	"github.com/loam-lang/loam/pkg/loam"
	"github.com/loam-lang/loam/pkg/zapctx"
)

var Stderr = colorable.NewColorableStderr()

var (
	evalExpr string
	debug    bool
)

func init() {
	flag.StringVarP(&evalExpr, "eval", "e", "", "evaluate the given source text and print its result")
	flag.BoolVar(&debug, "debug", false, "log evaluator internals")
}

func main() {
	flag.Parse()

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	logger := loam.Logger(level)
	defer logger.Sync()

	ctx := zapctx.ToContext(context.Background(), logger)
	ctx = ioctx.StdoutToContext(ctx, os.Stdout)
	ctx = ioctx.StderrToContext(ctx, Stderr)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if err := root(ctx, flag.Args()); err != nil {
		fmt.Fprintln(Stderr, err)
		os.Exit(1)
	}
}

func root(ctx context.Context, args []string) error {
	scope := loam.NewStandardScope()

	if evalExpr != "" {
		res, err := runSource(ctx, scope, "(eval)", strings.NewReader(evalExpr))
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, res)
		return nil
	}

	if len(args) > 0 {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}

		defer file.Close()

		_, err = runSource(ctx, scope, args[0], file)
		return err
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return repl(ctx, scope)
	}

	_, err := runSource(ctx, scope, "(stdin)", os.Stdin)
	return err
}

// runSource evaluates a whole source on a scheduler so suspending natives
// can resume, and returns the last expression's result.
func runSource(ctx context.Context, scope *loam.Scope, name string, src io.Reader) (loam.Value, error) {
	block, err := loam.NewReader(src, name).ReadAll()
	if err != nil {
		return nil, err
	}

	sched := loam.NewScheduler()
	ctx = loam.WithScheduler(ctx, sched)

	pending := sched.QueueBlock(name, block, scope)
	if err := sched.Drain(ctx); err != nil {
		return nil, err
	}

	return pending.Result()
}

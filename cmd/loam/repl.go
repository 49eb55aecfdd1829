package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/spy16/slurp/reader"
	"golang.org/x/term"

	"github.com/loam-lang/loam/pkg/loam"
)

const promptStr = ">> "
const wordsep = "()[] "

func repl(ctx context.Context, scope *loam.Scope) error {
	session := &replSession{
		ctx:     ctx,
		scope:   scope,
		partial: new(bytes.Buffer),
	}

	p := prompt.New(
		session.ReadLine,
		session.Complete,
		prompt.OptionPrefix(promptStr),
		prompt.OptionLivePrefix(session.Prefix),
		prompt.OptionCompletionWordSeparator(wordsep),
		prompt.OptionSuggestionBGColor(prompt.DarkGray),
		prompt.OptionSuggestionTextColor(prompt.Green),
		prompt.OptionPrefixTextColor(prompt.Purple))

	fd := int(os.Stdin.Fd())
	before, err := term.GetState(fd)
	if err != nil {
		return err
	}

	p.Run()

	// restore terminal state manually; go-prompt doesn't restore isig, which
	// breaks Ctrl+C
	return term.Restore(fd, before)
}

type replSession struct {
	ctx   context.Context
	scope *loam.Scope

	// partial accumulates lines until they parse as complete forms
	partial *bytes.Buffer
}

func (session *replSession) ReadLine(in string) {
	fmt.Fprintln(session.partial, in)

	content := session.partial.String()

	block, err := loam.NewReader(strings.NewReader(content), "(repl)").ReadAll()
	if err != nil {
		if errors.Is(err, reader.ErrEOF) {
			// incomplete form; keep accumulating lines
			return
		}

		session.partial.Reset()
		fmt.Fprintln(os.Stderr, err)
		return
	}

	session.partial.Reset()

	if len(block) == 0 {
		return
	}

	sched := loam.NewScheduler()
	evalCtx := loam.WithScheduler(session.ctx, sched)

	pending := sched.QueueBlock("(repl)", block, session.scope)
	if err := sched.Drain(evalCtx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}

	res, err := pending.Result()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}

	fmt.Fprintln(os.Stdout, res)
}

func (session *replSession) Complete(doc prompt.Document) []prompt.Suggest {
	word := doc.GetWordBeforeCursorUntilSeparator(wordsep)
	if word == "" {
		return nil
	}

	var suggestions []prompt.Suggest
	_ = session.scope.Each(func(name loam.Word, val loam.Value) error {
		if strings.HasPrefix(string(name), word) {
			suggestions = append(suggestions, prompt.Suggest{
				Text:        string(name),
				Description: val.String(),
			})
		}

		return nil
	})

	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].Text < suggestions[j].Text
	})

	return suggestions
}

func (session *replSession) Prefix() (string, bool) {
	if session.partial.Len() == 0 {
		return "", false
	}

	return strings.Repeat(".", len(promptStr)), true
}

package loam

// Source produces terms for a Feed. Pull returns the next term, or false
// when the source is exhausted.
type Source interface {
	Pull() (Value, bool)
}

// SourceFunc adapts a pull callback (e.g. a reader driven by a host) into a
// Source.
type SourceFunc func() (Value, bool)

func (f SourceFunc) Pull() (Value, bool) {
	return f()
}

type sliceSource struct {
	terms []Value
	idx   int
}

func (src *sliceSource) Pull() (Value, bool) {
	if src.idx >= len(src.terms) {
		return nil, false
	}

	t := src.terms[src.idx]
	src.idx++
	return t, true
}

// Feed is a one-directional cursor over a sequence of terms with a single
// term of lookahead. Once a term is fetched it is never re-delivered;
// advancing is monotonic.
type Feed struct {
	src Source

	pending    Value
	hasPending bool

	fetched int
}

func NewFeed(src Source) *Feed {
	return &Feed{src: src}
}

// FeedOf returns a Feed over the given terms.
func FeedOf(terms ...Value) *Feed {
	return NewFeed(&sliceSource{terms: terms})
}

// Peek returns the next term without consuming it. Repeated peeks return the
// same term.
func (feed *Feed) Peek() (Value, bool) {
	if feed.hasPending {
		return feed.pending, true
	}

	t, ok := feed.src.Pull()
	if !ok {
		return nil, false
	}

	feed.pending = t
	feed.hasPending = true
	return t, true
}

// Next consumes and returns the next term.
func (feed *Feed) Next() (Value, bool) {
	if feed.hasPending {
		t := feed.pending
		feed.pending = nil
		feed.hasPending = false
		feed.fetched++
		return t, true
	}

	t, ok := feed.src.Pull()
	if !ok {
		return nil, false
	}

	feed.fetched++
	return t, true
}

// More reports whether at least one term remains.
func (feed *Feed) More() bool {
	_, ok := feed.Peek()
	return ok
}

// Fetched returns how many terms have been consumed so far.
func (feed *Feed) Fetched() int {
	return feed.fetched
}

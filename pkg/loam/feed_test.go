package loam_test

import (
	"testing"

	"github.com/loam-lang/loam/pkg/loam"
	"github.com/vito/is"
)

func TestFeedOf(t *testing.T) {
	is := is.New(t)

	feed := loam.FeedOf(loam.Int(1), loam.Int(2), loam.Int(3))

	is.Equal(feed.Fetched(), 0)

	v, ok := feed.Next()
	is.True(ok)
	is.Equal(v, loam.Int(1))
	is.Equal(feed.Fetched(), 1)

	v, ok = feed.Next()
	is.True(ok)
	is.Equal(v, loam.Int(2))

	v, ok = feed.Next()
	is.True(ok)
	is.Equal(v, loam.Int(3))

	_, ok = feed.Next()
	is.True(!ok)
	is.Equal(feed.Fetched(), 3)
}

func TestFeedPeekDoesNotConsume(t *testing.T) {
	is := is.New(t)

	feed := loam.FeedOf(loam.Word("a"), loam.Word("b"))

	for i := 0; i < 3; i++ {
		v, ok := feed.Peek()
		is.True(ok)
		is.Equal(v, loam.Word("a"))
	}

	is.Equal(feed.Fetched(), 0)

	v, ok := feed.Next()
	is.True(ok)
	is.Equal(v, loam.Word("a"))
	is.Equal(feed.Fetched(), 1)

	v, ok = feed.Peek()
	is.True(ok)
	is.Equal(v, loam.Word("b"))
}

func TestFeedMore(t *testing.T) {
	is := is.New(t)

	feed := loam.FeedOf(loam.Int(1))
	is.True(feed.More())

	feed.Next()
	is.True(!feed.More())

	empty := loam.FeedOf()
	is.True(!empty.More())
}

func TestFeedSourceFunc(t *testing.T) {
	is := is.New(t)

	n := 0
	feed := loam.NewFeed(loam.SourceFunc(func() (loam.Value, bool) {
		if n == 2 {
			return nil, false
		}

		n++
		return loam.Int(n), true
	}))

	v, ok := feed.Next()
	is.True(ok)
	is.Equal(v, loam.Int(1))

	// a pull happens at most one term ahead of consumption
	is.Equal(n, 1)

	v, ok = feed.Next()
	is.True(ok)
	is.Equal(v, loam.Int(2))

	_, ok = feed.Next()
	is.True(!ok)
}

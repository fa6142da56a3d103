package services

import (
	"context"
	"testing"
	"time"

	"quill/internal/db"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// seqRand returns the given values in order, then repeats the last one.
func seqRand(vals ...int) func(int) int {
	i := 0
	return func(int) int {
		v := vals[min(i, len(vals)-1)]
		i++
		return v
	}
}

// newEmptyBoard returns an opened board over kv holding an empty collection.
func newEmptyBoard(t *testing.T, kv *db.MemoryKV, opts ...Option) *Board {
	t.Helper()
	require.NoError(t, kv.Put(context.Background(), PostsKey, []byte("[]")))
	store := NewPostStore(kv, append([]Option{WithClock(fixedClock)}, opts...)...)
	b, err := NewBoard(store, NewVoteLedger(kv), nil, "http://localhost:8080/board")
	require.NoError(t, err)
	b.Open(context.Background())
	return b
}

type recordingClipboard struct {
	links []string
	err   error
}

func (c *recordingClipboard) Write(text string) error {
	if c.err != nil {
		return c.err
	}
	c.links = append(c.links, text)
	return nil
}

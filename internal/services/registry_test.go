package services

import (
	"testing"

	"quill/internal/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Acquire(t *testing.T) {
	reg, err := NewRegistry(newEmptyBoard(t, db.NewMemoryKV()), nil, 2)
	require.NoError(t, err)

	id, s := reg.Acquire("")
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	s.Search("kept")
	again, s2 := reg.Acquire(id)
	assert.Equal(t, id, again)
	assert.Same(t, s, s2)
	assert.Equal(t, "kept", s2.Query().SearchText)

	bogus, _ := reg.Acquire("not-a-uuid")
	assert.NotEqual(t, "not-a-uuid", bogus)
}

func TestRegistry_EvictsOldest(t *testing.T) {
	reg, err := NewRegistry(newEmptyBoard(t, db.NewMemoryKV()), nil, 2)
	require.NoError(t, err)

	first, s := reg.Acquire("")
	s.Search("old")
	reg.Acquire("")
	reg.Acquire("")
	assert.Equal(t, 2, reg.Len())

	id, fresh := reg.Acquire(first)
	assert.Equal(t, first, id, "a known uuid is reused")
	assert.Empty(t, fresh.Query().SearchText)
}

func TestNewRegistry_RejectsBadSize(t *testing.T) {
	_, err := NewRegistry(nil, nil, 0)
	assert.Error(t, err)
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"quill/internal/db"
	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostStore_LoadMissingUsesSeeds(t *testing.T) {
	kv := db.NewMemoryKV()
	s := NewPostStore(kv, WithClock(fixedClock))

	assert.True(t, s.Load(context.Background()))
	posts := s.List()
	require.Len(t, posts, 2)
	assert.Equal(t, "seed-1", posts[0].ID)
	assert.Equal(t, 12, posts[0].Votes)
	assert.Equal(t, fixedNow.Add(-72*time.Hour).UnixMilli(), posts[0].CreatedAt)
	assert.Equal(t, []string{"productivity", "programming"}, posts[1].Tags)
	assert.Zero(t, kv.Puts(), "seeds are not written on load")
}

func TestPostStore_LoadCorruptUsesSeeds(t *testing.T) {
	ctx := context.Background()
	for name, raw := range map[string]string{
		"garbage": "{not json",
		"object":  `{"id":"x"}`,
		"null":    "null",
		"blank":   "  ",
	} {
		t.Run(name, func(t *testing.T) {
			kv := db.NewMemoryKV()
			require.NoError(t, kv.Put(ctx, PostsKey, []byte(raw)))
			s := NewPostStore(kv)
			assert.True(t, s.Load(ctx))
			assert.Equal(t, 2, s.Len())
		})
	}
}

func TestPostStore_LoadEmptyArrayStaysEmpty(t *testing.T) {
	ctx := context.Background()
	kv := db.NewMemoryKV()
	require.NoError(t, kv.Put(ctx, PostsKey, []byte("[]")))
	s := NewPostStore(kv)
	assert.False(t, s.Load(ctx))
	assert.Empty(t, s.List())
}

func TestPostStore_LoadDropsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	kv := db.NewMemoryKV()
	raw := `[{"id":"a","title":"one","body":"","tags":null,"image":null,"votes":1,"createdAt":1},
	         {"id":"a","title":"two","body":"","tags":[],"image":null,"votes":2,"createdAt":2}]`
	require.NoError(t, kv.Put(ctx, PostsKey, []byte(raw)))

	s := NewPostStore(kv)
	s.Load(ctx)
	posts := s.List()
	require.Len(t, posts, 1)
	assert.Equal(t, "one", posts[0].Title)
	assert.NotNil(t, posts[0].Tags)
}

func TestPostStore_CreateThenLoadRoundTrips(t *testing.T) {
	ctx := context.Background()
	kv := db.NewMemoryKV()
	s := NewPostStore(kv, WithClock(fixedClock), WithRand(seqRand(42)))
	s.Load(ctx)

	img := "https://example.com/a.png"
	p, err := s.Create(ctx, models.PostInput{Title: "T", Body: "line 1\n  line 2 ", TagsRaw: "Go, go, Web", Image: &img})
	require.NoError(t, err)
	assert.Equal(t, "17145648000000042", p.ID)
	assert.Equal(t, []string{"go", "web"}, p.Tags)
	assert.Equal(t, fixedNow.UnixMilli(), p.CreatedAt)
	assert.Zero(t, p.Votes)

	want := s.List()
	assert.Equal(t, p.ID, want[0].ID, "new posts are prepended")

	reloaded := NewPostStore(kv)
	assert.False(t, reloaded.Load(ctx))
	assert.Equal(t, want, reloaded.List())
}

func TestPostStore_CreateDefaultsTitle(t *testing.T) {
	s := NewPostStore(db.NewMemoryKV())
	p, err := s.Create(context.Background(), models.PostInput{Title: "   "})
	require.NoError(t, err)
	assert.Equal(t, "Untitled", p.Title)
	assert.Equal(t, "", p.Body)
	assert.Empty(t, p.Tags)
	assert.Nil(t, p.Image)
}

func TestPostStore_CreateRedrawsCollidingID(t *testing.T) {
	ctx := context.Background()
	s := NewPostStore(db.NewMemoryKV(), WithClock(fixedClock), WithRand(seqRand(7, 7, 8)))

	a, err := s.Create(ctx, models.PostInput{Title: "a"})
	require.NoError(t, err)
	b, err := s.Create(ctx, models.PostInput{Title: "b"})
	require.NoError(t, err)

	assert.Equal(t, "17145648000000007", a.ID)
	assert.Equal(t, "17145648000000008", b.ID)
}

func TestPostStore_Update(t *testing.T) {
	ctx := context.Background()
	kv := db.NewMemoryKV()
	s := NewPostStore(kv, WithClock(fixedClock))
	s.Load(ctx)

	title, tags := "New title", "A, b, a"
	p, err := s.Update(ctx, "seed-1", models.PostPatch{Title: &title, TagsRaw: &tags})
	require.NoError(t, err)
	assert.Equal(t, "New title", p.Title)
	assert.Equal(t, []string{"a", "b"}, p.Tags)
	assert.Equal(t, 12, p.Votes)
	assert.Equal(t, fixedNow.Add(-72*time.Hour).UnixMilli(), p.CreatedAt)
	assert.Contains(t, p.Body, "Opportunity cost", "nil fields are kept")
	assert.Equal(t, 1, kv.Puts())

	img := "data:image/png;base64,AAAA"
	p, err = s.Update(ctx, "seed-1", models.PostPatch{Image: &img})
	require.NoError(t, err)
	assert.Equal(t, img, p.ImageSrc())

	p, err = s.Update(ctx, "seed-1", models.PostPatch{ClearImage: true})
	require.NoError(t, err)
	assert.Nil(t, p.Image)
}

func TestPostStore_UpdateMissing(t *testing.T) {
	s := NewPostStore(db.NewMemoryKV())
	_, err := s.Update(context.Background(), "nope", models.PostPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostStore_DeleteMissingChangesNothing(t *testing.T) {
	ctx := context.Background()
	kv := db.NewMemoryKV()
	s := NewPostStore(kv)
	s.Load(ctx)
	before := s.List()

	err := s.Delete(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, s.List())
	assert.Zero(t, kv.Puts())
}

func TestPostStore_Delete(t *testing.T) {
	ctx := context.Background()
	kv := db.NewMemoryKV()
	s := NewPostStore(kv)
	s.Load(ctx)

	require.NoError(t, s.Delete(ctx, "seed-1"))
	_, ok := s.Get("seed-1")
	assert.False(t, ok)
	assert.Equal(t, 1, kv.Puts())

	reloaded := NewPostStore(kv)
	reloaded.Load(ctx)
	assert.Equal(t, 1, reloaded.Len())
}

func TestPostStore_ApplyVoteDelta(t *testing.T) {
	ctx := context.Background()
	kv := db.NewMemoryKV()
	s := NewPostStore(kv)
	s.Load(ctx)

	p, err := s.ApplyVoteDelta(ctx, "seed-2", -2)
	require.NoError(t, err)
	assert.Equal(t, 6, p.Votes)

	_, err = s.ApplyVoteDelta(ctx, "seed-2", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, kv.Puts(), "zero delta does not persist")

	_, err = s.ApplyVoteDelta(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostStore_PersistFailureKeepsChange(t *testing.T) {
	ctx := context.Background()
	kv := db.NewMemoryKV()
	s := NewPostStore(kv)
	s.Load(ctx)
	kv.SetWriteErr(errors.New("quota exceeded"))

	p, err := s.Create(ctx, models.PostInput{Title: "kept"})
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.True(t, IsWarning(err))
	got, ok := s.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, "kept", got.Title)
}

func TestPostStore_ListIsACopy(t *testing.T) {
	s := NewPostStore(db.NewMemoryKV())
	s.Load(context.Background())

	list := s.List()
	list[0].Tags[0] = "mutated"
	list[0].Votes = 99

	p, _ := s.Get(list[0].ID)
	assert.Equal(t, "economics", p.Tags[0])
	assert.Equal(t, 12, p.Votes)
}

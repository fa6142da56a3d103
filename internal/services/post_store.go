package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"quill/internal/db"
	"quill/internal/logger"
	"quill/internal/models"
	"quill/internal/utils"

	"go.uber.org/zap"
)

// PostsKey holds the whole collection as one JSON array.
const PostsKey = "quill_posts_v1"

const defaultTitle = "Untitled"

// Option configures a PostStore.
type Option func(*PostStore)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *PostStore) { s.now = now }
}

// WithRand replaces the id suffix source. It must return a value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(s *PostStore) { s.intn = intn }
}

// PostStore is the only writer of posts. It is not safe for concurrent use;
// Board serialises access.
type PostStore struct {
	kv    db.KV
	posts []models.Post
	now   func() time.Time
	intn  func(int) int
}

func NewPostStore(kv db.KV, opts ...Option) *PostStore {
	s := &PostStore{
		kv:    kv,
		posts: make([]models.Post, 0),
		now:   time.Now,
		intn:  rand.Intn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the stored one. A missing,
// unreadable or corrupt record falls back to the seed set, which is not
// written back until the next mutation. seeded reports that fallback.
func (s *PostStore) Load(ctx context.Context) (seeded bool) {
	raw, err := s.kv.Get(ctx, PostsKey)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		s.posts = SeedPosts(s.now())
		return true
	case err != nil:
		logger.Error("load posts failed, using seed posts", zap.String("key", PostsKey), zap.Error(err))
		s.posts = SeedPosts(s.now())
		return true
	case len(strings.TrimSpace(string(raw))) == 0:
		s.posts = SeedPosts(s.now())
		return true
	}

	var stored []models.Post
	if err := json.Unmarshal(raw, &stored); err != nil || stored == nil {
		logger.Warn("storage corrupt, using seed posts", zap.String("key", PostsKey), zap.Error(err))
		s.posts = SeedPosts(s.now())
		return true
	}

	posts := make([]models.Post, 0, len(stored))
	seen := make(map[string]struct{}, len(stored))
	for _, p := range stored {
		if _, dup := seen[p.ID]; dup {
			logger.Warn("dropping duplicate post id", zap.String("id", p.ID))
			continue
		}
		seen[p.ID] = struct{}{}
		if p.Tags == nil {
			p.Tags = make([]string, 0)
		}
		posts = append(posts, p)
	}
	s.posts = posts
	return false
}

// Persist writes the full collection. Failures wrap ErrStorageWrite.
func (s *PostStore) Persist(ctx context.Context) error {
	raw, err := json.Marshal(s.posts)
	if err != nil {
		return fmt.Errorf("%w: encode posts: %w", ErrStorageWrite, err)
	}
	if err := s.kv.Put(ctx, PostsKey, raw); err != nil {
		logger.Warn("persist posts failed", zap.String("key", PostsKey), zap.Int("count", len(s.posts)), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	return nil
}

// Create prepends a new post. On a persist failure the post is still kept
// and returned along with the error.
func (s *PostStore) Create(ctx context.Context, in models.PostInput) (models.Post, error) {
	title := in.Title
	if strings.TrimSpace(title) == "" {
		title = defaultTitle
	}
	now := s.now()
	post := models.Post{
		ID:        s.newID(now),
		Title:     title,
		Body:      in.Body,
		Tags:      utils.NormalizeTags(in.TagsRaw),
		Image:     copyString(in.Image),
		Votes:     0,
		CreatedAt: now.UnixMilli(),
	}

	s.posts = append([]models.Post{post}, s.posts...)
	return post.Clone(), s.Persist(ctx)
}

// Update replaces the patched fields in place. CreatedAt and Votes never
// change here.
func (s *PostStore) Update(ctx context.Context, id string, patch models.PostPatch) (models.Post, error) {
	i := s.index(id)
	if i < 0 {
		return models.Post{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}

	p := &s.posts[i]
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Body != nil {
		p.Body = *patch.Body
	}
	if patch.TagsRaw != nil {
		p.Tags = utils.NormalizeTags(*patch.TagsRaw)
	}
	switch {
	case patch.Image != nil:
		p.Image = copyString(patch.Image)
	case patch.ClearImage:
		p.Image = nil
	}

	return p.Clone(), s.Persist(ctx)
}

// Delete removes a post. A missing id changes nothing and writes nothing.
func (s *PostStore) Delete(ctx context.Context, id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	s.posts = append(s.posts[:i:i], s.posts[i+1:]...)
	return s.Persist(ctx)
}

// ApplyVoteDelta adds delta to the post's tally. A zero delta is a no-op
// that does not persist.
func (s *PostStore) ApplyVoteDelta(ctx context.Context, id string, delta int) (models.Post, error) {
	i := s.index(id)
	if i < 0 {
		return models.Post{}, fmt.Errorf("vote %s: %w", id, ErrNotFound)
	}
	if delta == 0 {
		return s.posts[i].Clone(), nil
	}
	s.posts[i].Votes += delta
	return s.posts[i].Clone(), s.Persist(ctx)
}

// List returns a copy of the collection in collection order.
func (s *PostStore) List() []models.Post {
	out := make([]models.Post, len(s.posts))
	for i, p := range s.posts {
		out[i] = p.Clone()
	}
	return out
}

func (s *PostStore) Get(id string) (models.Post, bool) {
	i := s.index(id)
	if i < 0 {
		return models.Post{}, false
	}
	return s.posts[i].Clone(), true
}

func (s *PostStore) Len() int { return len(s.posts) }

func (s *PostStore) index(id string) int {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return i
		}
	}
	return -1
}

// newID is the creation time in unix millis followed by four random digits,
// redrawn until it is unique within the store.
func (s *PostStore) newID(now time.Time) string {
	prefix := strconv.FormatInt(now.UnixMilli(), 10)
	for {
		id := fmt.Sprintf("%s%04d", prefix, s.intn(10000))
		if s.index(id) < 0 {
			return id
		}
	}
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

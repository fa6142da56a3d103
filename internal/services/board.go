package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"quill/internal/logger"
	"quill/internal/models"

	"go.uber.org/zap"
)

const deepLinkPrefix = "post-"

// Board is the shared post collection: the store, the vote ledger and the
// image encoder behind one mutex, so events from every client apply one at
// a time.
type Board struct {
	mu      sync.Mutex
	store   *PostStore
	ledger  *VoteLedger
	encoder ImageEncoder
	site    *url.URL
}

// NewBoard wires the collaborators. siteURL is the origin and path that
// share links are built from.
func NewBoard(store *PostStore, ledger *VoteLedger, encoder ImageEncoder, siteURL string) (*Board, error) {
	site, err := url.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("parse site url: %w", err)
	}
	if encoder == nil {
		encoder = NewDataURIEncoder()
	}
	return &Board{store: store, ledger: ledger, encoder: encoder, site: site}, nil
}

// Open loads posts and votes from storage. It never fails; damaged records
// are logged and replaced.
func (b *Board) Open(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	seeded := b.store.Load(ctx)
	b.ledger.Load(ctx)
	logger.Info("board loaded", zap.Int("posts", b.store.Len()), zap.Bool("seeded", seeded))
}

// Posts returns a copy of the collection in collection order.
func (b *Board) Posts() []models.Post {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.List()
}

func (b *Board) Get(id string) (models.Post, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Get(id)
}

func (b *Board) Stance(id string) models.Stance {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ledger.Stance(id)
}

// Stances looks up the stance of every post in posts.
func (b *Board) Stances(posts []models.Post) map[string]models.Stance {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]models.Stance, len(posts))
	for _, p := range posts {
		out[p.ID] = b.ledger.Stance(p.ID)
	}
	return out
}

// EncodeImage runs without the board lock; reading a large file must not
// hold up other clients.
func (b *Board) EncodeImage(ctx context.Context, file *ImageFile) (string, error) {
	return b.encoder.Encode(ctx, file)
}

func (b *Board) Create(ctx context.Context, in models.PostInput) (models.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Create(ctx, in)
}

func (b *Board) Update(ctx context.Context, id string, patch models.PostPatch) (models.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Update(ctx, id, patch)
}

func (b *Board) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Delete(ctx, id)
}

// Vote moves the local stance on id toward dir and applies the resulting
// delta to the tally. The post must exist before the ledger is touched.
func (b *Board) Vote(ctx context.Context, id string, dir models.Stance) (models.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.store.Get(id); !ok {
		return models.Post{}, fmt.Errorf("vote %s: %w", id, ErrNotFound)
	}
	delta, ledgerErr := b.ledger.Apply(ctx, id, dir)
	if ledgerErr != nil && !errors.Is(ledgerErr, ErrStorageWrite) {
		return models.Post{}, ledgerErr
	}
	post, storeErr := b.store.ApplyVoteDelta(ctx, id, delta)
	return post, errors.Join(ledgerErr, storeErr)
}

// ShareLink builds the deep link for id: the site origin and path with a
// "#post-{id}" fragment.
func (b *Board) ShareLink(id string) (string, error) {
	if _, ok := b.Get(id); !ok {
		return "", fmt.Errorf("share %s: %w", id, ErrNotFound)
	}
	link := *b.site
	if link.Path == "" {
		link.Path = "/"
	}
	link.RawQuery = ""
	link.Fragment = deepLinkPrefix + id
	link.RawFragment = ""
	return link.String(), nil
}

// ParseDeepLink extracts the post id from a "#post-{id}" fragment. The
// leading '#' is optional.
func ParseDeepLink(fragment string) (string, bool) {
	id, ok := strings.CutPrefix(strings.TrimPrefix(fragment, "#"), deepLinkPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"quill/internal/logger"
	"quill/internal/models"
	"quill/internal/utils"

	"go.uber.org/zap"
)

// DeletePrompt is the question put to the Confirmer before a delete.
const DeletePrompt = "Delete post permanently?"

// Form is the compose/edit form. A non-empty ID means the submit edits that
// post. ImageFile wins over ImageURL.
type Form struct {
	ID        string
	Title     string
	Body      string
	Tags      string
	ImageURL  string
	ImageFile *ImageFile
}

// Editing reports whether the form targets an existing post.
func (f Form) Editing() bool { return f.ID != "" }

// View is everything a client needs to draw the board once.
type View struct {
	Posts      []models.Post
	Stances    map[string]models.Stance
	Tags       []string
	SearchText string
	ActiveTag  string
	Total      int
	HasMore    bool
	Form       Form
	Highlight  string // post id to emphasize; set by the caller
}

// Session is one client's view of the Board: its query state and form.
type Session struct {
	board     *Board
	clipboard Clipboard

	mu    sync.Mutex
	query QueryState
	form  Form
}

func NewSession(board *Board, clipboard Clipboard) *Session {
	return &Session{board: board, clipboard: clipboard, query: NewQueryState()}
}

// SubmitPost creates a post, or updates one when form.ID is set. An
// attached file is encoded first, without holding any lock; if that fails
// nothing changes and the form is kept for another try. Success clears the
// form. A returned error may be a warning only; see IsWarning.
func (s *Session) SubmitPost(ctx context.Context, form Form) (models.Post, error) {
	var image *string
	switch {
	case form.ImageFile != nil:
		encoded, err := s.board.EncodeImage(ctx, form.ImageFile)
		if err != nil {
			s.keepForm(form)
			return models.Post{}, err
		}
		image = &encoded
	case strings.TrimSpace(form.ImageURL) != "":
		u := strings.TrimSpace(form.ImageURL)
		image = &u
	}

	var (
		post models.Post
		err  error
	)
	if form.Editing() {
		patch := models.PostPatch{
			Title:      &form.Title,
			Body:       &form.Body,
			TagsRaw:    &form.Tags,
			Image:      image,
			ClearImage: image == nil,
		}
		post, err = s.board.Update(ctx, form.ID, patch)
	} else {
		post, err = s.board.Create(ctx, models.PostInput{
			Title:   form.Title,
			Body:    form.Body,
			TagsRaw: form.Tags,
			Image:   image,
		})
	}
	if err != nil && !IsWarning(err) {
		if form.Editing() && errors.Is(err, ErrNotFound) {
			// the post is gone; keep the text as a new draft
			form.ID = ""
		}
		s.keepForm(form)
		return models.Post{}, err
	}

	s.mu.Lock()
	s.form = Form{}
	s.mu.Unlock()
	return post, err
}

func (s *Session) keepForm(form Form) {
	form.ImageFile = nil
	s.mu.Lock()
	s.form = form
	s.mu.Unlock()
}

// EditPost switches the form to edit mode pre-filled from post id.
func (s *Session) EditPost(id string) (Form, error) {
	post, ok := s.board.Get(id)
	if !ok {
		return Form{}, fmt.Errorf("edit %s: %w", id, ErrNotFound)
	}
	form := Form{
		ID:       post.ID,
		Title:    post.Title,
		Body:     post.Body,
		Tags:     utils.JoinTags(post.Tags),
		ImageURL: post.ImageSrc(),
	}
	s.mu.Lock()
	s.form = form
	s.mu.Unlock()
	return form, nil
}

// CancelEdit drops edit mode and clears the form.
func (s *Session) CancelEdit() {
	s.mu.Lock()
	s.form = Form{}
	s.mu.Unlock()
}

// Form returns the current form contents.
func (s *Session) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// DeletePost asks confirm first; a nil Confirmer or a "no" leaves
// everything untouched and reports false.
func (s *Session) DeletePost(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if confirm == nil || !confirm.Ask(DeletePrompt) {
		return false, nil
	}
	err := s.board.Delete(ctx, id)
	if err != nil && !IsWarning(err) {
		return false, err
	}
	s.mu.Lock()
	if s.form.ID == id {
		s.form = Form{}
	}
	s.mu.Unlock()
	return true, err
}

func (s *Session) Upvote(ctx context.Context, id string) (models.Post, error) {
	return s.board.Vote(ctx, id, models.StanceUp)
}

func (s *Session) Downvote(ctx context.Context, id string) (models.Post, error) {
	return s.board.Vote(ctx, id, models.StanceDown)
}

// Share returns the post's deep link and copies it. When copying fails the
// link still comes back, with an error wrapping ErrClipboard.
func (s *Session) Share(ctx context.Context, id string) (string, error) {
	link, err := s.board.ShareLink(id)
	if err != nil {
		return "", err
	}
	if s.clipboard == nil {
		return link, fmt.Errorf("share %s: %w", id, ErrClipboard)
	}
	if err := ctx.Err(); err != nil {
		return link, fmt.Errorf("%w: %w", ErrClipboard, err)
	}
	if err := s.clipboard.Write(link); err != nil {
		logger.Warn("clipboard write failed", zap.String("id", id), zap.Error(err))
		return link, fmt.Errorf("%w: %w", ErrClipboard, err)
	}
	return link, nil
}

// Search sets the search text. Matching is case-insensitive.
func (s *Session) Search(text string) {
	s.mu.Lock()
	s.query.SetSearch(text)
	s.mu.Unlock()
}

// FilterByTag sets the tag filter; "" clears it.
func (s *Session) FilterByTag(tag string) {
	s.mu.Lock()
	s.query.SetTag(tag)
	s.mu.Unlock()
}

// LoadMore is the scroll trigger: it widens the window by one page.
func (s *Session) LoadMore() {
	total := Query(s.board.Posts(), s.Query()).Total
	s.mu.Lock()
	s.query.LoadMore(total)
	s.mu.Unlock()
}

// Query returns a copy of the session's query state.
func (s *Session) Query() QueryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *Session) result() Result {
	return Query(s.board.Posts(), s.Query())
}

func (s *Session) VisiblePosts() []models.Post { return s.result().Posts }

func (s *Session) Total() int { return s.result().Total }

func (s *Session) HasMore() bool { return s.result().HasMore() }

// TagList is the tag bar: distinct tags over the whole collection.
func (s *Session) TagList() []string {
	return TagList(s.board.Posts(), TagListLimit)
}

func (s *Session) Stance(id string) models.Stance { return s.board.Stance(id) }

// View computes the full render state from one snapshot of the board.
func (s *Session) View() View {
	posts := s.board.Posts()
	s.mu.Lock()
	q, form := s.query, s.form
	s.mu.Unlock()

	res := Query(posts, q)
	return View{
		Posts:      res.Posts,
		Stances:    s.board.Stances(res.Posts),
		Tags:       TagList(posts, TagListLimit),
		SearchText: q.SearchText,
		ActiveTag:  q.ActiveTag,
		Total:      res.Total,
		HasMore:    res.HasMore(),
		Form:       form,
	}
}

// Reveal makes post id visible for a deep link. Filters that hide it are
// cleared, then the window grows a page at a time until it is shown. It
// reports false for unknown ids.
func (s *Session) Reveal(id string) bool {
	posts := s.board.Posts()
	i := slices.IndexFunc(posts, func(p models.Post) bool { return p.ID == id })
	if i < 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.query.Matches(posts[i]) {
		s.query = NewQueryState()
	}
	for {
		res := Query(posts, s.query)
		if slices.ContainsFunc(res.Posts, func(p models.Post) bool { return p.ID == id }) {
			return true
		}
		if !res.HasMore() {
			return false
		}
		s.query.LoadMore(res.Total)
	}
}

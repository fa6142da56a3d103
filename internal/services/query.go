package services

import (
	"slices"
	"strings"

	"quill/internal/models"
)

const (
	InitialWindow = 10
	PageIncrement = 5
	TagListLimit  = 8
)

// QueryState is one viewer's search, tag filter and window size. It is
// never persisted.
type QueryState struct {
	SearchText   string
	ActiveTag    string // "" means no filter
	// VisibleCount is the window size. It may exceed the match total when
	// few posts match; Query caps the slice it returns.
	VisibleCount int
}

func NewQueryState() QueryState {
	return QueryState{VisibleCount: InitialWindow}
}

// SetSearch replaces the search text and resets the window.
func (q *QueryState) SetSearch(text string) {
	q.SearchText = text
	q.VisibleCount = InitialWindow
}

// SetTag sets or clears the tag filter and resets the window.
func (q *QueryState) SetTag(tag string) {
	q.ActiveTag = tag
	q.VisibleCount = InitialWindow
}

// LoadMore grows the window by PageIncrement without exceeding total. The
// count never shrinks, so a window already past total stays put.
func (q *QueryState) LoadMore(total int) {
	q.VisibleCount = max(q.VisibleCount, min(total, q.VisibleCount+PageIncrement))
}

// Result is the derived view for one QueryState.
type Result struct {
	Posts []models.Post
	Total int // matches before the window is applied
}

func (r Result) HasMore() bool { return len(r.Posts) < r.Total }

// Matches reports whether p passes the tag filter and the search text.
func (q QueryState) Matches(p models.Post) bool {
	if q.ActiveTag != "" && !p.HasTag(q.ActiveTag) {
		return false
	}
	if q.SearchText == "" {
		return true
	}
	needle := strings.ToLower(q.SearchText)
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Body), needle) ||
		strings.Contains(strings.ToLower(strings.Join(p.Tags, " ")), needle)
}

// Query filters, sorts newest first and windows posts. The input slice is
// not modified.
func Query(posts []models.Post, state QueryState) Result {
	filtered := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if state.Matches(p) {
			filtered = append(filtered, p)
		}
	}
	slices.SortStableFunc(filtered, func(a, b models.Post) int {
		switch {
		case a.CreatedAt > b.CreatedAt:
			return -1
		case a.CreatedAt < b.CreatedAt:
			return 1
		}
		return 0
	})

	n := min(max(state.VisibleCount, 0), len(filtered))
	return Result{Posts: filtered[:n], Total: len(filtered)}
}

// TagList returns the distinct tags of posts in collection order, cut to
// limit entries. limit <= 0 means no cut.
func TagList(posts []models.Post, limit int) []string {
	tags := make([]string, 0)
	seen := make(map[string]struct{})
	for _, p := range posts {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
			if limit > 0 && len(tags) == limit {
				return tags
			}
		}
	}
	return tags
}

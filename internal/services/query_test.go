package services

import (
	"fmt"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(id string, createdAt int64, tags ...string) models.Post {
	return models.Post{ID: id, Title: "title " + id, Tags: append([]string{}, tags...), CreatedAt: createdAt}
}

func ids(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestQuery_SortsNewestFirst(t *testing.T) {
	posts := []models.Post{post("a", 100), post("b", 300), post("c", 200)}

	res := Query(posts, NewQueryState())
	assert.Equal(t, []string{"b", "c", "a"}, ids(res.Posts))
	assert.Equal(t, []string{"a", "b", "c"}, ids(posts), "input order is untouched")
}

func TestQuery_StableForEqualTimes(t *testing.T) {
	posts := []models.Post{post("a", 5), post("b", 5), post("c", 9)}
	res := Query(posts, NewQueryState())
	assert.Equal(t, []string{"c", "a", "b"}, ids(res.Posts))
}

func TestQuery_Filters(t *testing.T) {
	posts := []models.Post{
		{ID: "1", Title: "Learning Go", Body: "", Tags: []string{"programming"}, CreatedAt: 1},
		{ID: "2", Title: "Bread", Body: "Sourdough STARTER notes", Tags: []string{"cooking"}, CreatedAt: 2},
		{ID: "3", Title: "Misc", Body: "", Tags: []string{"deep", "work"}, CreatedAt: 3},
	}

	tests := []struct {
		name   string
		search string
		tag    string
		want   []string
	}{
		{"no filter", "", "", []string{"3", "2", "1"}},
		{"title case-insensitive", "learning", "", []string{"1"}},
		{"body", "starter", "", []string{"2"}},
		{"tags joined by space", "deep work", "", []string{"3"}},
		{"tag filter", "", "cooking", []string{"2"}},
		{"tag and search", "bread", "programming", []string{}},
		{"tag is exact", "", "program", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueryState()
			q.SetSearch(tt.search)
			q.SetTag(tt.tag)
			res := Query(posts, q)
			assert.Equal(t, tt.want, ids(res.Posts))
			assert.Equal(t, len(tt.want), res.Total)
		})
	}
}

func manyPosts(n int) []models.Post {
	posts := make([]models.Post, n)
	for i := range posts {
		posts[i] = post(fmt.Sprint(i), int64(i))
	}
	return posts
}

func TestQuery_Window(t *testing.T) {
	posts := manyPosts(23)
	q := NewQueryState()

	res := Query(posts, q)
	assert.Len(t, res.Posts, InitialWindow)
	assert.Equal(t, 23, res.Total)
	assert.True(t, res.HasMore())

	q.LoadMore(res.Total)
	assert.Equal(t, 15, q.VisibleCount)
	q.LoadMore(res.Total)
	q.LoadMore(res.Total)
	assert.Equal(t, 23, q.VisibleCount)

	res = Query(posts, q)
	assert.Len(t, res.Posts, 23)
	assert.False(t, res.HasMore())
}

func TestQueryState_LoadMoreIsMonotone(t *testing.T) {
	q := NewQueryState()
	prev := q.VisibleCount
	for _, total := range []int{40, 3, 12, 0, 17, 17, 100} {
		q.LoadMore(total)
		assert.GreaterOrEqual(t, q.VisibleCount, prev)
		if prev <= total {
			assert.LessOrEqual(t, q.VisibleCount, total)
		}
		prev = q.VisibleCount
	}
}

func TestQueryState_LoadMoreSmallCollection(t *testing.T) {
	q := NewQueryState()
	q.LoadMore(2)
	assert.Equal(t, InitialWindow, q.VisibleCount, "never shrinks below the current window")

	res := Query([]models.Post{post("a", 1), post("b", 2)}, q)
	assert.Equal(t, []string{"b", "a"}, ids(res.Posts))
	assert.False(t, res.HasMore())
}

func TestQueryState_ResetsWindow(t *testing.T) {
	q := NewQueryState()
	q.LoadMore(100)
	q.LoadMore(100)
	require.Equal(t, 20, q.VisibleCount)

	q.SetSearch("x")
	assert.Equal(t, InitialWindow, q.VisibleCount)

	q.LoadMore(100)
	q.SetTag("go")
	assert.Equal(t, InitialWindow, q.VisibleCount)
}

func TestTagList(t *testing.T) {
	posts := []models.Post{
		post("a", 1, "go", "web"),
		post("b", 2, "web", "db", "cache"),
		post("c", 3, "ops", "k8s", "ci", "go", "cd", "sre"),
	}
	assert.Equal(t, []string{"go", "web", "db", "cache", "ops", "k8s", "ci", "cd"}, TagList(posts, TagListLimit))
	assert.Equal(t, []string{"go", "web"}, TagList(posts, 2))
	assert.Len(t, TagList(posts, 0), 9)
	assert.Empty(t, TagList(nil, TagListLimit))
}

package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"quill/internal/db"
	"quill/internal/models"
	"quill/internal/services"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, clip services.Clipboard) (*App, *services.Session) {
	t.Helper()
	kv := db.NewMemoryKV()
	board, err := services.NewBoard(services.NewPostStore(kv), services.NewVoteLedger(kv), nil, "http://localhost:8080/")
	require.NoError(t, err)
	board.Open(context.Background())
	sess := services.NewSession(board, clip)
	return NewApp(context.Background(), sess), sess
}

func press(a *App, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		a.Update(msg)
	}
}

func TestVotingFromTheList(t *testing.T) {
	app, sess := newTestApp(t, nil)
	// seed-2 is newer, so it is selected first.
	press(app, "u", "u")
	p := sess.VisiblePosts()[0]
	assert.Equal(t, "seed-2", p.ID)
	assert.Equal(t, 9, p.Votes)

	press(app, "d")
	assert.Equal(t, 7, sess.VisiblePosts()[0].Votes)
	assert.Equal(t, models.StanceDown, sess.Stance("seed-2"))
	assert.Contains(t, app.View(), "now at 7")
}

func TestDeleteAsksFirst(t *testing.T) {
	app, sess := newTestApp(t, nil)

	press(app, "x")
	assert.Contains(t, app.View(), services.DeletePrompt)
	press(app, "n")
	assert.Equal(t, 2, sess.Total())

	press(app, "x", "y")
	assert.Equal(t, 1, sess.Total())
	assert.Equal(t, "seed-1", sess.VisiblePosts()[0].ID)
}

func TestComposeNewPost(t *testing.T) {
	app, sess := newTestApp(t, nil)

	press(app, "n", "Hello", "enter", "Go, go, TUI", "enter", "enter", "body text", "ctrl+s")

	posts := sess.VisiblePosts()
	require.Len(t, posts, 3)
	assert.Equal(t, "Hello", posts[0].Title)
	assert.Equal(t, []string{"go", "tui"}, posts[0].Tags)
	assert.Equal(t, "body text", posts[0].Body)
	assert.Nil(t, posts[0].Image)
}

func TestEditKeepsUntouchedFields(t *testing.T) {
	app, sess := newTestApp(t, nil)

	press(app, "down", "e", "!", "ctrl+s")
	p, ok := findPost(sess, "seed-1")
	require.True(t, ok)
	assert.Equal(t, "How to think about opportunity cost!", p.Title)
	assert.Equal(t, []string{"economics", "decision-making"}, p.Tags)
	assert.Equal(t, 12, p.Votes)
}

func TestEditPreservesLongFields(t *testing.T) {
	app, sess := newTestApp(t, nil)
	body := strings.Repeat("line of text\twith a tab\n", 120)
	img := "data:image/png;base64," + strings.Repeat("iVBORw0KGgo", 300)
	p, err := sess.SubmitPost(context.Background(), services.Form{Title: "long", Body: body, ImageURL: img})
	require.NoError(t, err)

	press(app, "e", "enter", "enter", "enter", "ctrl+s")
	got, ok := findPost(sess, p.ID)
	require.True(t, ok)
	assert.Equal(t, body, got.Body)
	require.NotNil(t, got.Image)
	assert.Equal(t, img, *got.Image)
}

func TestComposeLongBody(t *testing.T) {
	app, sess := newTestApp(t, nil)
	body := strings.Repeat("x", 1000)

	press(app, "n", "big", "enter", "enter", "enter", body, "ctrl+s")
	posts := sess.VisiblePosts()
	require.Len(t, posts, 3)
	assert.Equal(t, body, posts[0].Body)
}

func TestComposeEscDiscards(t *testing.T) {
	app, sess := newTestApp(t, nil)
	press(app, "n", "draft", "esc")
	assert.Equal(t, 2, sess.Total())
	assert.Equal(t, modeBrowse, app.mode)
}

func TestSearchAndTagCycle(t *testing.T) {
	app, sess := newTestApp(t, nil)

	press(app, "/", "program", "enter")
	assert.Equal(t, "program", sess.Query().SearchText)
	assert.Equal(t, 1, sess.Total())

	press(app, "/")
	for range "program" {
		app.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	press(app, "enter")
	assert.Equal(t, 2, sess.Total())

	press(app, "t")
	assert.Equal(t, "economics", sess.Query().ActiveTag)
	for range sess.TagList() {
		press(app, "t")
	}
	assert.Empty(t, sess.Query().ActiveTag, "cycling past the last tag clears the filter")
}

type failingClipboard struct{}

func (failingClipboard) Write(string) error { return errors.New("no display") }

func TestShareFallsBackToManualCopy(t *testing.T) {
	app, _ := newTestApp(t, failingClipboard{})
	press(app, "s")
	assert.Contains(t, app.View(), "Copy this link: http://localhost:8080/#post-seed-2")

	var copied []string
	app, _ = newTestApp(t, services.ClipboardFunc(func(s string) error { copied = append(copied, s); return nil }))
	press(app, "s")
	assert.Equal(t, []string{"http://localhost:8080/#post-seed-2"}, copied)
	assert.Contains(t, app.View(), "Share link copied")
}

func findPost(sess *services.Session, id string) (models.Post, bool) {
	for _, p := range sess.VisiblePosts() {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

// Package tui is the terminal client for the board. It drives the same
// services.Session the web handlers use, one session per process.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quill/internal/models"
	"quill/internal/services"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type appMode int

const (
	modeBrowse  appMode = iota
	modeSearch          // typing into the search box
	modeConfirm         // waiting for y/n on a delete
	modeCompose         // new post or edit, one field at a time
)

// Compose steps in the order they are asked.
const (
	stepTitle = iota
	stepTags
	stepImage
	stepBody
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	upStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	downStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// App is the bubbletea model.
type App struct {
	ctx  context.Context
	sess *services.Session

	mode   appMode
	cursor int
	tagIdx int // index into TagList; -1 is "all"

	input textinput.Model
	body  textarea.Model
	step  int
	form  services.Form

	// values as loaded into the widgets; unchanged fields are not written back
	loaded     string
	loadedBody string

	pendingDelete string
	status        string
	statusErr     bool
}

func NewApp(ctx context.Context, sess *services.Session) *App {
	in := textinput.New()
	in.CharLimit = 0
	ta := textarea.New()
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetWidth(72)
	ta.SetHeight(6)
	ta.Placeholder = "Write your explanation... (ctrl+s to save)"
	return &App{ctx: ctx, sess: sess, tagIdx: -1, input: in, body: ta}
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}
	if key.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.updateSearch(key)
	case modeConfirm:
		return a.updateConfirm(key)
	case modeCompose:
		return a.updateCompose(key)
	}
	return a.updateBrowse(key)
}

func (a *App) updateBrowse(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	posts := a.sess.VisiblePosts()
	selected := ""
	if a.cursor < len(posts) {
		selected = posts[a.cursor].ID
	}

	switch key.String() {
	case "q":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(posts)-1 {
			a.cursor++
		} else if a.sess.HasMore() {
			a.sess.LoadMore()
			a.cursor++
		}
	case "/":
		a.mode = modeSearch
		a.input.Reset()
		a.input.Placeholder = "search"
		a.input.SetValue(a.sess.Query().SearchText)
		a.input.Focus()
	case "t":
		tags := a.sess.TagList()
		a.tagIdx++
		if a.tagIdx >= len(tags) {
			a.tagIdx = -1
			a.sess.FilterByTag("")
			a.setStatus("showing all tags", nil)
		} else {
			a.sess.FilterByTag(tags[a.tagIdx])
			a.setStatus("tag #"+tags[a.tagIdx], nil)
		}
		a.cursor = 0
	case "m":
		a.sess.LoadMore()
	case "u":
		a.vote(selected, a.sess.Upvote)
	case "d":
		a.vote(selected, a.sess.Downvote)
	case "s":
		a.share(selected)
	case "x":
		if selected != "" {
			a.pendingDelete = selected
			a.mode = modeConfirm
		}
	case "n":
		a.startCompose(services.Form{})
	case "e":
		if selected == "" {
			break
		}
		form, err := a.sess.EditPost(selected)
		if err != nil {
			a.setStatus("", err)
			break
		}
		a.startCompose(form)
	}
	return a, nil
}

func (a *App) vote(id string, apply func(context.Context, string) (models.Post, error)) {
	if id == "" {
		return
	}
	post, err := apply(a.ctx, id)
	if err != nil && !services.IsWarning(err) {
		a.setStatus("", err)
		return
	}
	a.setStatus(fmt.Sprintf("%q now at %d", post.Title, post.Votes), err)
}

func (a *App) share(id string) {
	if id == "" {
		return
	}
	link, err := a.sess.Share(a.ctx, id)
	switch {
	case errors.Is(err, services.ErrClipboard):
		a.status, a.statusErr = "Copy this link: "+link, true
	case err != nil:
		a.setStatus("", err)
	default:
		a.setStatus("Share link copied to clipboard", nil)
	}
}

func (a *App) updateSearch(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEnter, tea.KeyEsc:
		a.input.Blur()
		a.mode = modeBrowse
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(key)
	a.sess.Search(a.input.Value())
	a.cursor = 0
	return a, cmd
}

func (a *App) updateConfirm(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	var answer bool
	switch key.String() {
	case "y", "Y":
		answer = true
	case "n", "N", "esc":
	default:
		return a, nil
	}

	id := a.pendingDelete
	a.pendingDelete = ""
	a.mode = modeBrowse
	deleted, err := a.sess.DeletePost(a.ctx, id, services.ConfirmFunc(func(string) bool { return answer }))
	switch {
	case err != nil && !services.IsWarning(err):
		a.setStatus("", err)
	case deleted:
		a.setStatus("post deleted", err)
		a.clampCursor()
	default:
		a.setStatus("kept", nil)
	}
	return a, nil
}

func (a *App) startCompose(form services.Form) {
	a.mode = modeCompose
	a.form = form
	a.step = stepTitle
	a.body.SetValue(form.Body)
	a.loadedBody = a.body.Value()
	a.focusStep()
}

// focusStep loads the current step's field into the shared text input.
func (a *App) focusStep() {
	a.input.Reset()
	a.body.Blur()
	switch a.step {
	case stepTitle:
		a.input.Placeholder = "Title"
		a.input.SetValue(a.form.Title)
	case stepTags:
		a.input.Placeholder = "comma-separated tags"
		a.input.SetValue(a.form.Tags)
	case stepImage:
		a.input.Placeholder = "Image URL (optional)"
		a.input.SetValue(a.form.ImageURL)
	case stepBody:
		a.input.Blur()
		a.body.Focus()
		return
	}
	a.loaded = a.input.Value()
	a.input.Focus()
}

func (a *App) storeStep() {
	if a.step == stepBody {
		if v := a.body.Value(); v != a.loadedBody {
			a.form.Body = v
		}
		return
	}
	v := a.input.Value()
	if v == a.loaded {
		return
	}
	switch a.step {
	case stepTitle:
		a.form.Title = v
	case stepTags:
		a.form.Tags = v
	case stepImage:
		a.form.ImageURL = v
	}
}

func (a *App) updateCompose(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		a.sess.CancelEdit()
		a.mode = modeBrowse
		a.setStatus("discarded", nil)
		return a, nil
	case tea.KeyCtrlS:
		a.storeStep()
		return a.submit()
	case tea.KeyEnter:
		if a.step != stepBody {
			a.storeStep()
			a.step++
			a.focusStep()
			return a, nil
		}
	}

	var cmd tea.Cmd
	if a.step == stepBody {
		a.body, cmd = a.body.Update(key)
	} else {
		a.input, cmd = a.input.Update(key)
	}
	return a, cmd
}

func (a *App) submit() (tea.Model, tea.Cmd) {
	post, err := a.sess.SubmitPost(a.ctx, a.form)
	if err != nil && !services.IsWarning(err) {
		a.setStatus("", err)
		return a, nil
	}
	a.mode = modeBrowse
	a.form = services.Form{}
	a.body.Reset()
	a.setStatus(fmt.Sprintf("saved %q", post.Title), err)
	a.cursor = 0
	return a, nil
}

func (a *App) setStatus(text string, err error) {
	a.statusErr = err != nil
	switch {
	case err == nil:
		a.status = text
	case services.IsWarning(err) && text != "":
		a.status = text + " (warning: " + err.Error() + ")"
	default:
		a.status = err.Error()
	}
}

func (a *App) clampCursor() {
	if n := len(a.sess.VisiblePosts()); a.cursor >= n {
		a.cursor = max(n-1, 0)
	}
}

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Quill"))
	q := a.sess.Query()
	if q.ActiveTag != "" {
		b.WriteString("  " + tagStyle.Render("#"+q.ActiveTag))
	}
	if q.SearchText != "" {
		b.WriteString("  " + dimStyle.Render("search: "+q.SearchText))
	}
	b.WriteString("\n\n")

	switch a.mode {
	case modeCompose:
		return b.String() + a.composeView()
	case modeSearch:
		b.WriteString(a.input.View() + "\n\n")
	}

	posts := a.sess.VisiblePosts()
	if len(posts) == 0 {
		b.WriteString(dimStyle.Render("No posts match.") + "\n")
	}
	for i, p := range posts {
		b.WriteString(a.postLine(i, p) + "\n")
	}
	if a.sess.HasMore() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("... %d more (m)", a.sess.Total()-len(posts))) + "\n")
	}
	if a.cursor < len(posts) && a.mode == modeBrowse {
		b.WriteString("\n" + posts[a.cursor].Body + "\n")
	}

	b.WriteString("\n")
	switch {
	case a.mode == modeConfirm:
		b.WriteString(warnStyle.Render(services.DeletePrompt + " (y/n)"))
	case a.status != "" && a.statusErr:
		b.WriteString(errStyle.Render(a.status))
	case a.status != "":
		b.WriteString(dimStyle.Render(a.status))
	default:
		b.WriteString(dimStyle.Render("/ search  t tag  u/d vote  s share  x delete  n new  e edit  m more  q quit"))
	}
	return b.String()
}

func (a *App) postLine(i int, p models.Post) string {
	marker := " "
	switch a.sess.Stance(p.ID) {
	case models.StanceUp:
		marker = upStyle.Render("▲")
	case models.StanceDown:
		marker = downStyle.Render("▼")
	}
	tags := make([]string, len(p.Tags))
	for j, t := range p.Tags {
		tags[j] = "#" + t
	}
	line := fmt.Sprintf("%s %4d  %s", marker, p.Votes, p.Title)
	if i == a.cursor {
		line = selectedStyle.Render(line)
	}
	return line + "  " + tagStyle.Render(strings.Join(tags, " "))
}

func (a *App) composeView() string {
	heading := "New post"
	if a.form.Editing() {
		heading = "Editing " + a.form.ID
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(heading) + "\n\n")
	labels := []string{"Title", "Tags", "Image URL", "Body"}
	values := []string{a.form.Title, a.form.Tags, a.form.ImageURL, ""}
	for i, label := range labels {
		switch {
		case i == a.step && i == stepBody:
			b.WriteString(label + "\n" + a.body.View() + "\n")
		case i == a.step:
			b.WriteString(label + ": " + a.input.View() + "\n")
		case i < a.step:
			b.WriteString(dimStyle.Render(label+": "+values[i]) + "\n")
		}
	}
	if a.status != "" && a.statusErr {
		b.WriteString("\n" + errStyle.Render(a.status))
	}
	b.WriteString("\n" + dimStyle.Render("enter next field  ctrl+s save  esc discard"))
	return b.String()
}

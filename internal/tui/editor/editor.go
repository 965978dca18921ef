// ABOUTME: Post editor as a bubbletea model
// ABOUTME: huh input for the title and a multi-line text area for markdown

package editor

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/markalston/quill/internal/posts"
	"github.com/markalston/quill/internal/tui/icons"
	"github.com/markalston/quill/internal/tui/styles"
)

// SavedMsg carries the edited post. ID is zero for a new post.
type SavedMsg struct {
	ID      int64
	Request posts.Request
}

// CancelledMsg is sent when the user leaves without saving
type CancelledMsg struct{}

const minContentLines = 5

// Editor edits a post's title and content
type Editor struct {
	id      int64
	title   string
	content string
	width   int
	height  int
	form    *huh.Form
}

// New opens the editor. A nil post starts a new one.
func New(post *posts.Post) *Editor {
	e := &Editor{width: 80, height: 20}
	if post != nil {
		e.id = post.ID
		e.title = post.Title
		e.content = post.Content
	}
	e.form = e.build()
	return e
}

func (e *Editor) build() *huh.Form {
	heading := icons.New.String() + " New post"
	if !e.IsNew() {
		heading = icons.Edit.String() + " Edit post"
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("title").
				Title("Title").
				Placeholder("What is this post about?").
				CharLimit(200).
				Value(&e.title).
				Validate(validateTitle),
			huh.NewText().
				Key("content").
				Title("Content").
				Description("Markdown. alt+enter adds a line").
				Lines(e.contentLines()).
				CharLimit(0).
				Value(&e.content),
		).Title(heading),
	).WithTheme(styles.FormTheme()).
		WithWidth(e.width).
		WithShowHelp(false)
}

func validateTitle(s string) error {
	var verr *posts.ValidationError
	if err := posts.Validate(posts.Request{Title: s}); errors.As(err, &verr) {
		return errors.New(verr.Message)
	}
	return nil
}

// contentLines sizes the text area to the space left under the title
func (e *Editor) contentLines() int {
	return max(minContentLines, e.height-10)
}

// IsNew reports whether the editor is creating a post
func (e *Editor) IsNew() bool {
	return e.id == 0
}

// ID returns the post being edited, zero for a new post
func (e *Editor) ID() int64 {
	return e.id
}

// SetSize resizes the editor
func (e *Editor) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.width = width
	e.height = height
	e.form = e.form.WithWidth(width)
}

// Init implements tea.Model
func (e *Editor) Init() tea.Cmd {
	return e.form.Init()
}

// Update implements tea.Model
func (e *Editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		return e, func() tea.Msg { return CancelledMsg{} }
	}

	form, cmd := e.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		e.form = f
	}

	switch e.form.State {
	case huh.StateCompleted:
		saved := e.saved()
		return e, func() tea.Msg { return saved }
	case huh.StateAborted:
		return e, func() tea.Msg { return CancelledMsg{} }
	}
	return e, cmd
}

func (e *Editor) saved() SavedMsg {
	return SavedMsg{
		ID:      e.id,
		Request: posts.Request{Title: strings.TrimSpace(e.title), Content: e.content},
	}
}

// Reopen rebuilds the form with the current values, after a failed save
func (e *Editor) Reopen() tea.Cmd {
	e.form = e.build()
	return e.form.Init()
}

// View implements tea.Model
func (e *Editor) View() string {
	help := styles.KeyStyle.Render("enter") + " next/save  " +
		styles.KeyStyle.Render("shift+tab") + " back  " +
		styles.KeyStyle.Render("esc") + " discard"
	return e.form.View() + "\n" + styles.Help.Render(help)
}

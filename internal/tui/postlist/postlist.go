// ABOUTME: Post list screen with cursor navigation and a loading spinner
// ABOUTME: Emits intent messages; the app performs the requests

package postlist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/quill/internal/posts"
	"github.com/markalston/quill/internal/tui/icons"
	"github.com/markalston/quill/internal/tui/styles"
)

// Intent messages
type (
	OpenMsg    struct{ ID int64 }
	NewMsg     struct{}
	EditMsg    struct{ ID int64 }
	DeleteMsg  struct{ ID int64 }
	LikeMsg    struct{ ID int64 }
	RefreshMsg struct{}
)

// KeyMap lists the list bindings
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	New     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Like    key.Binding
	Refresh key.Binding
}

// DefaultKeyMap is used by New
var DefaultKeyMap = KeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read")),
	New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Like:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
}

// List shows every post, newest first as returned by the backend
type List struct {
	keys    KeyMap
	posts   []posts.Post
	cursor  int
	offset  int
	loading bool
	spinner spinner.Model
	width   int
	height  int
}

// New creates an empty list
func New() *List {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary)),
	)
	return &List{keys: DefaultKeyMap, spinner: s, width: 80, height: 20}
}

// SetSize sets the area the list renders into
func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.scroll()
}

// SetLoading toggles the spinner. The returned command starts it.
func (l *List) SetLoading(loading bool) tea.Cmd {
	l.loading = loading
	if loading {
		return l.spinner.Tick
	}
	return nil
}

// Loading reports whether a fetch is in flight
func (l *List) Loading() bool {
	return l.loading
}

// SetPosts replaces the list, keeping the cursor in range
func (l *List) SetPosts(p []posts.Post) {
	l.posts = p
	l.loading = false
	if l.cursor >= len(p) {
		l.cursor = max(0, len(p)-1)
	}
	l.scroll()
}

// Posts returns the posts shown
func (l *List) Posts() []posts.Post {
	return l.posts
}

// Selected returns the post under the cursor
func (l *List) Selected() (posts.Post, bool) {
	if len(l.posts) == 0 {
		return posts.Post{}, false
	}
	return l.posts[l.cursor], true
}

// Update handles navigation and turns action keys into intent messages
func (l *List) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !l.loading {
			return nil
		}
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, l.keys.Up):
			if l.cursor > 0 {
				l.cursor--
				l.scroll()
			}
		case key.Matches(msg, l.keys.Down):
			if l.cursor < len(l.posts)-1 {
				l.cursor++
				l.scroll()
			}
		case key.Matches(msg, l.keys.New):
			return emit(NewMsg{})
		case key.Matches(msg, l.keys.Refresh):
			return emit(RefreshMsg{})
		case key.Matches(msg, l.keys.Open):
			return l.withSelected(func(id int64) tea.Msg { return OpenMsg{ID: id} })
		case key.Matches(msg, l.keys.Edit):
			return l.withSelected(func(id int64) tea.Msg { return EditMsg{ID: id} })
		case key.Matches(msg, l.keys.Delete):
			return l.withSelected(func(id int64) tea.Msg { return DeleteMsg{ID: id} })
		case key.Matches(msg, l.keys.Like):
			return l.withSelected(func(id int64) tea.Msg { return LikeMsg{ID: id} })
		}
	}
	return nil
}

func (l *List) withSelected(build func(int64) tea.Msg) tea.Cmd {
	p, ok := l.Selected()
	if !ok {
		return nil
	}
	return emit(build(p.ID))
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// rowsVisible is how many posts fit, two lines each
func (l *List) rowsVisible() int {
	return max(1, (l.height-2)/2)
}

// scroll keeps the cursor inside the visible window
func (l *List) scroll() {
	rows := l.rowsVisible()
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+rows {
		l.offset = l.cursor - rows + 1
	}
}

// View renders the list
func (l *List) View() string {
	var sb strings.Builder

	heading := styles.Title.Render(icons.Post.String() + " Posts")
	if l.loading {
		heading += " " + l.spinner.View()
	}
	sb.WriteString(heading)
	sb.WriteString("\n")

	if len(l.posts) == 0 {
		if l.loading {
			sb.WriteString(styles.Subtitle.Render("Loading posts..."))
		} else {
			sb.WriteString(styles.Subtitle.Render("No posts yet. Press n to write the first one."))
		}
		return sb.String()
	}

	summaryWidth := max(20, l.width-6)
	end := min(len(l.posts), l.offset+l.rowsVisible())
	for i := l.offset; i < end; i++ {
		p := l.posts[i]
		marker := "  "
		titleStyle := lipgloss.NewStyle().Foreground(styles.Text)
		if i == l.cursor {
			marker = styles.Selected.Render("▸ ")
			titleStyle = styles.Selected
		}

		meta := lipgloss.NewStyle().Foreground(styles.Muted).
			Render(fmt.Sprintf("#%d  %s %s", p.ID, icons.Clock.String(), p.CreatedLabel()))
		sb.WriteString(marker + titleStyle.Render(p.Title) + "  " + meta + "\n")
		sb.WriteString("    " + lipgloss.NewStyle().Foreground(styles.Muted).Render(p.Summary(summaryWidth)) + "\n")
	}

	if len(l.posts) > l.rowsVisible() {
		sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("%d of %d", l.cursor+1, len(l.posts))))
	}

	return strings.TrimRight(sb.String(), "\n")
}

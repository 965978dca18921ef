// ABOUTME: Single post screen with scrollable rendered markdown
// ABOUTME: Wraps a bubbles viewport around the glamour output

package postview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/quill/internal/posts"
	"github.com/markalston/quill/internal/tui/icons"
	"github.com/markalston/quill/internal/tui/styles"
)

// headerLines is the height of the title block above the viewport
const headerLines = 3

// View shows one post
type View struct {
	post     *posts.Post
	viewport viewport.Model
	width    int
	height   int
	tty      bool
}

// New creates an empty post view. tty selects styled markdown.
func New(width, height int, tty bool) *View {
	v := &View{width: width, height: height, tty: tty}
	v.viewport = viewport.New(width, max(1, height-headerLines))
	return v
}

// SetPost shows p from the top
func (v *View) SetPost(p posts.Post) {
	v.post = &p
	v.render()
	v.viewport.GotoTop()
}

// Post returns the post shown
func (v *View) Post() (posts.Post, bool) {
	if v.post == nil {
		return posts.Post{}, false
	}
	return *v.post, true
}

// SetSize resizes the view and re-wraps the content
func (v *View) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = max(1, height-headerLines)
	if v.post != nil {
		v.render()
	}
}

func (v *View) render() {
	out, err := RenderMarkdown(v.post.Content, v.width, v.tty)
	if err != nil {
		out = v.post.Content
	}
	v.viewport.SetContent(out)
}

// Update scrolls the viewport
func (v *View) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return cmd
}

// View renders the title, metadata and body
func (v *View) View() string {
	if v.post == nil {
		return styles.Subtitle.Render("Loading post...")
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.UnsetMarginBottom().Render(v.post.Title))
	sb.WriteString("\n")

	meta := fmt.Sprintf("#%d  %s %s", v.post.ID, icons.Clock.String(), v.post.CreatedLabel())
	if !v.viewport.AtBottom() || v.viewport.YOffset > 0 {
		meta += fmt.Sprintf("  %3.f%%", v.viewport.ScrollPercent()*100)
	}
	sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render(meta))
	sb.WriteString("\n\n")
	sb.WriteString(v.viewport.View())
	return sb.String()
}

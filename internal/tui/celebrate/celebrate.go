// ABOUTME: Like celebration shown for a short while after a like succeeds
// ABOUTME: Driven by tea.Tick frames so it never blocks the update loop

package celebrate

import (
	"math/rand/v2"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/quill/internal/tui/icons"
	"github.com/markalston/quill/internal/tui/styles"
)

// Duration is how long a celebration stays on screen
const Duration = 2 * time.Second

const frameInterval = 120 * time.Millisecond

var glyphs = []string{"*", "+", "·", "•", "✦", "○"}

// StartMsg asks the celebration to start for a liked post
type StartMsg struct {
	PostID  int64
	Message string
}

type frameMsg struct{ seq int }

type doneMsg struct{ seq int }

// Celebration renders a strip of confetti. A new Start replaces any running
// celebration; ticks from the old one are ignored.
type Celebration struct {
	active  bool
	seq     int
	frame   int
	message string
	width   int
	rng     *rand.Rand
}

// New returns an idle celebration
func New() *Celebration {
	return &Celebration{width: 60, rng: rand.New(rand.NewPCG(1, 2))}
}

// SetWidth sets the width of the confetti strip
func (c *Celebration) SetWidth(width int) {
	if width > 0 {
		c.width = width
	}
}

// Active reports whether the celebration is on screen
func (c *Celebration) Active() bool {
	return c.active
}

// Start begins a celebration and schedules its frames and its end
func (c *Celebration) Start(msg StartMsg) tea.Cmd {
	c.seq++
	c.active = true
	c.frame = 0
	c.message = msg.Message
	seq := c.seq
	return tea.Batch(
		tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{seq: seq} }),
		tea.Tick(Duration, func(time.Time) tea.Msg { return doneMsg{seq: seq} }),
	)
}

// Update advances frames and ends the celebration when its time is up
func (c *Celebration) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case StartMsg:
		return c.Start(msg)
	case frameMsg:
		if !c.active || msg.seq != c.seq {
			return nil
		}
		c.frame++
		seq := c.seq
		return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{seq: seq} })
	case doneMsg:
		if msg.seq == c.seq {
			c.active = false
		}
	}
	return nil
}

// View renders the confetti strip, or nothing when idle
func (c *Celebration) View() string {
	if !c.active {
		return ""
	}

	var sb strings.Builder
	for i := 0; i < c.width; i++ {
		if c.rng.IntN(3) != 0 {
			sb.WriteString(" ")
			continue
		}
		color := styles.Confetti[(i+c.frame)%len(styles.Confetti)]
		glyph := glyphs[c.rng.IntN(len(glyphs))]
		sb.WriteString(lipgloss.NewStyle().Foreground(color).Render(glyph))
	}

	text := c.message
	if text == "" {
		text = "liked"
	}
	banner := lipgloss.NewStyle().Foreground(styles.Pink).Bold(true).
		Render(icons.Like.String() + " " + text)

	return sb.String() + "\n" + banner
}

// ABOUTME: Checks that the header and footer span the frame width
// ABOUTME: Covers several terminal widths, screens and session states

package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func TestFrameWidth(t *testing.T) {
	setups := map[string]func(app *App){
		"guest list":  func(app *App) {},
		"signed in":   func(app *App) { signIn(app) },
		"auth screen": func(app *App) { app.Update(runes("s")) },
		"post screen": func(app *App) {
			app.screen = ScreenPost
			app.postView.SetPost(app.list.Posts()[0])
		},
	}

	for name, setup := range setups {
		for _, width := range []int{60, 80, 100, 120} {
			t.Run(fmt.Sprintf("%s/%d", name, width), func(t *testing.T) {
				app, _, fp := newTestApp(t)
				app.Update(postsLoadedMsg{res: fp.List(t.Context())})
				setup(app)
				app.Update(tea.WindowSizeMsg{Width: width, Height: 30})

				want := max(width-1, 80)
				lines := strings.Split(app.View(), "\n")
				header, footer := lines[0], lines[len(lines)-1]

				if !strings.HasPrefix(header, "╭") {
					t.Fatalf("first line is not the header: %q", header)
				}
				if got := lipgloss.Width(header); got != want {
					t.Errorf("header width = %d, want %d\n%q", got, want, header)
				}
				if !strings.HasPrefix(footer, "╰") {
					t.Fatalf("last line is not the footer: %q", footer)
				}
				if got := lipgloss.Width(footer); got != want {
					t.Errorf("footer width = %d, want %d\n%q", got, want, footer)
				}
			})
		}
	}
}

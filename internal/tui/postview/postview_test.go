// ABOUTME: Tests for the single post screen and markdown rendering
// ABOUTME: Uses the plain style so output is free of escapes

package postview

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/quill/internal/posts"
)

func TestRenderMarkdownPlain(t *testing.T) {
	out, err := RenderMarkdown("# Title\n\nSome *body* text", 60, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Title") || !strings.Contains(out, "body") {
		t.Errorf("expected rendered text, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("expected no escape sequences in plain output")
	}
	if strings.HasSuffix(out, "\n") {
		t.Error("expected trailing newlines trimmed")
	}
}

func TestRenderMarkdownDefaultWidth(t *testing.T) {
	if _, err := RenderMarkdown("text", 0, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestViewBeforePost(t *testing.T) {
	v := New(80, 20, false)
	if _, ok := v.Post(); ok {
		t.Error("expected no post before SetPost")
	}
	if !strings.Contains(v.View(), "Loading post") {
		t.Error("expected loading placeholder")
	}
}

func TestViewShowsPost(t *testing.T) {
	v := New(80, 20, false)
	v.SetPost(posts.Post{ID: 4, Title: "Go tips", Content: "Use **gofmt**.", CreatedDate: "2025-03-01T08:30:00Z"})

	p, ok := v.Post()
	if !ok || p.ID != 4 {
		t.Fatalf("expected post 4, got %+v", p)
	}

	view := v.View()
	for _, want := range []string{"Go tips", "#4", "gofmt"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view", want)
		}
	}
}

func TestViewScrolls(t *testing.T) {
	v := New(60, 8, false)
	var body strings.Builder
	for i := 0; i < 50; i++ {
		body.WriteString("line\n\n")
	}
	v.SetPost(posts.Post{ID: 1, Title: "Long", Content: body.String()})

	v.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	if v.viewport.YOffset == 0 {
		t.Error("expected page down to scroll the viewport")
	}

	v.SetPost(posts.Post{ID: 2, Title: "Other", Content: "short"})
	if v.viewport.YOffset != 0 {
		t.Error("expected a new post to start at the top")
	}
}

func TestSetSizeRewraps(t *testing.T) {
	v := New(80, 20, false)
	v.SetPost(posts.Post{ID: 1, Title: "T", Content: "body"})
	v.SetSize(40, 10)

	if v.viewport.Width != 40 || v.viewport.Height != 10-headerLines {
		t.Errorf("expected viewport resized, got %dx%d", v.viewport.Width, v.viewport.Height)
	}
}

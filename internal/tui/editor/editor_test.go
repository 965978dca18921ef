// ABOUTME: Tests for the post editor
// ABOUTME: Validates new/edit setup, title checks and cancel

package editor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/quill/internal/posts"
)

func TestNewPost(t *testing.T) {
	e := New(nil)

	if !e.IsNew() {
		t.Error("expected editor without a post to create a new one")
	}
	if e.title != "" || e.content != "" {
		t.Error("expected empty fields for a new post")
	}
}

func TestEditExistingPost(t *testing.T) {
	e := New(&posts.Post{ID: 7, Title: "Hello", Content: "# Hi"})

	if e.IsNew() {
		t.Error("expected editor with a post to edit it")
	}
	if e.ID() != 7 {
		t.Errorf("expected id 7, got %d", e.ID())
	}
	if e.title != "Hello" || e.content != "# Hi" {
		t.Errorf("expected fields prefilled, got %q / %q", e.title, e.content)
	}
}

func TestSavedTrimsTitle(t *testing.T) {
	e := New(&posts.Post{ID: 3, Title: "  Spaced  ", Content: "body"})

	msg := e.saved()
	if msg.ID != 3 {
		t.Errorf("expected id 3, got %d", msg.ID)
	}
	if msg.Request.Title != "Spaced" {
		t.Errorf("expected trimmed title, got %q", msg.Request.Title)
	}
	if msg.Request.Content != "body" {
		t.Errorf("expected content kept, got %q", msg.Request.Content)
	}
}

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"Hello", false},
		{"", true},
		{"   ", true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			err := validateTitle(tc.input)
			if tc.wantErr && err == nil {
				t.Errorf("expected error for title %q", tc.input)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error for title %q: %v", tc.input, err)
			}
		})
	}
}

func TestEscCancels(t *testing.T) {
	e := New(nil)

	_, cmd := e.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a command on esc")
	}
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Error("expected CancelledMsg on esc")
	}
}

func TestContentLinesFollowHeight(t *testing.T) {
	e := New(nil)

	e.SetSize(100, 12)
	if got := e.contentLines(); got != minContentLines {
		t.Errorf("expected minimum of %d lines, got %d", minContentLines, got)
	}

	e.SetSize(100, 40)
	if got := e.contentLines(); got != 30 {
		t.Errorf("expected 30 lines, got %d", got)
	}

	e.SetSize(0, 0)
	if e.width != 100 {
		t.Error("expected zero size to be ignored")
	}
}

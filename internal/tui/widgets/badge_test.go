// ABOUTME: Tests for badge widgets
// ABOUTME: Verifies session badges reflect authentication and status

package widgets

import (
	"strings"
	"testing"

	"github.com/markalston/quill/internal/session"
)

func TestLevelForSession(t *testing.T) {
	tests := []struct {
		name string
		st   session.State
		want StatusLevel
	}{
		{"guest", session.State{Status: session.StatusIdle}, StatusNeutral},
		{"loading", session.State{Status: session.StatusLoading}, StatusInfo},
		{"error", session.State{Status: session.StatusError, Error: "bad credentials"}, StatusCritical},
		{"signed in", session.State{Authenticated: true, Status: session.StatusSuccess, User: &session.User{Username: "alice"}}, StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelForSession(tt.st); got != tt.want {
				t.Errorf("LevelForSession() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionBadge(t *testing.T) {
	signedIn := session.State{Authenticated: true, User: &session.User{Username: "alice"}}
	if got := SessionBadge(signedIn); !strings.Contains(got, "alice") {
		t.Errorf("expected username in badge, got %q", got)
	}
	if got := SessionBadge(session.State{}); !strings.Contains(got, "guest") {
		t.Errorf("expected guest badge, got %q", got)
	}
	if got := SessionBadge(session.State{Status: session.StatusLoading}); !strings.Contains(got, "working") {
		t.Errorf("expected working badge, got %q", got)
	}
}

func TestStatusText(t *testing.T) {
	if got := StatusText("saved", StatusOK); !strings.Contains(got, "saved") {
		t.Errorf("expected text in output, got %q", got)
	}
}

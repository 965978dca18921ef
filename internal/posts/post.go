// ABOUTME: Blog post types returned by and sent to /blog/posts
// ABOUTME: Accepts timestamps with or without a zone offset

package posts

import (
	"encoding/json"
	"strings"
	"time"
)

// localLayout is the zone-less ISO date-time the backend emits
const localLayout = "2006-01-02T15:04:05.999999999"

// Post is a blog entry. Content is markdown.
type Post struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	CreatedDate string `json:"createdDate"`
}

// Created parses CreatedDate. Zone-less values are read as local time.
func (p Post) Created() (time.Time, bool) {
	if p.CreatedDate == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, p.CreatedDate); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(localLayout, p.CreatedDate, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// CreatedLabel formats the creation time for display, falling back to the
// raw value when it cannot be parsed.
func (p Post) CreatedLabel() string {
	if t, ok := p.Created(); ok {
		return t.Format("2006-01-02 15:04")
	}
	return p.CreatedDate
}

// Summary returns the first line of content, trimmed to n runes
func (p Post) Summary(n int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(p.Content), "\n")
	line = strings.TrimLeft(line, "# ")
	r := []rune(line)
	if n > 0 && len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return line
}

// Request is the body of create and update
type Request struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// MutationResult is the outcome of create, update, delete and like.
// Message is the server's message on success and the error on failure.
type MutationResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`

	// Transport is set when the backend could not be reached
	Transport bool `json:"-"`
}

// ValidationError rejects a request before it is sent
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

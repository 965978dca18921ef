// ABOUTME: Post repository over the blog REST endpoints
// ABOUTME: Single attempt per call; failures are passed through unchanged

package posts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/markalston/quill/internal/client"
)

const basePath = "/blog/posts"

// mutationFailedMessage is reported when the backend refuses without a message
const mutationFailedMessage = "request failed"

// LikeEvent is delivered to observers after a like succeeds
type LikeEvent struct {
	PostID  int64
	Message string
}

// Repository reads and mutates posts
type Repository struct {
	client *client.Client
	logger *slog.Logger

	mu      sync.Mutex
	onLiked []func(LikeEvent)
}

// NewRepository returns a Repository using c
func NewRepository(c *client.Client, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{client: c, logger: logger}
}

// List fetches every post. Public.
func (r *Repository) List(ctx context.Context) client.Result[[]Post] {
	res := client.Do[[]Post](ctx, r.client, http.MethodGet, basePath, nil, client.Options{SkipAuth: true})
	if res.Success && res.Value == nil {
		empty := []Post{}
		res.Value = &empty
	}
	return res
}

// Get fetches one post. Public.
func (r *Repository) Get(ctx context.Context, id int64) client.Result[Post] {
	res := client.Do[Post](ctx, r.client, http.MethodGet, postPath(id), nil, client.Options{SkipAuth: true})
	if res.Success && res.Value == nil {
		return client.Failure[Post](fmt.Sprintf("post %d: empty response", id))
	}
	return res
}

// Create publishes a new post
func (r *Repository) Create(ctx context.Context, req Request) MutationResult {
	if err := Validate(req); err != nil {
		return MutationResult{Message: err.Error()}
	}
	return r.mutate(ctx, http.MethodPost, basePath, req)
}

// Update replaces the title and content of post id
func (r *Repository) Update(ctx context.Context, id int64, req Request) MutationResult {
	if err := Validate(req); err != nil {
		return MutationResult{Message: err.Error()}
	}
	return r.mutate(ctx, http.MethodPut, postPath(id), req)
}

// Delete removes post id
func (r *Repository) Delete(ctx context.Context, id int64) MutationResult {
	return r.mutate(ctx, http.MethodDelete, postPath(id), nil)
}

// Like records a like on post id and notifies observers on success
func (r *Repository) Like(ctx context.Context, id int64) MutationResult {
	res := r.mutate(ctx, http.MethodPost, postPath(id)+"/like", nil)
	if res.Success {
		r.notifyLiked(LikeEvent{PostID: id, Message: res.Message})
	}
	return res
}

// OnLiked registers fn to run after every successful like
func (r *Repository) OnLiked(fn func(LikeEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onLiked = append(r.onLiked, fn)
}

// envelope is the backend's mutation reply. Success is nil when the body
// carries no success key.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (r *Repository) mutate(ctx context.Context, method, path string, body any) MutationResult {
	res := client.Do[json.RawMessage](ctx, r.client, method, path, body, client.Options{})
	if !res.Success {
		r.logger.Debug("post mutation failed", "method", method, "path", path, "error", res.Error)
		return MutationResult{Success: false, Message: res.Error, Transport: res.Transport}
	}
	if res.Value == nil || string(*res.Value) == "null" {
		return MutationResult{Success: true}
	}
	return decodeMutation(*res.Value)
}

// decodeMutation trusts the body's success flag over the HTTP status. A
// body that is not an envelope, such as a bare post, is kept as Data.
func decodeMutation(raw json.RawMessage) MutationResult {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return MutationResult{Success: true, Data: raw}
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = mutationFailedMessage
		}
		return MutationResult{Success: false, Message: msg, Data: env.Data}
	}
	out := MutationResult{Success: true, Message: env.Message, Data: env.Data}
	if env.Success == nil && env.Message == "" && len(env.Data) == 0 {
		out.Data = raw
	}
	return out
}

func (r *Repository) notifyLiked(ev LikeEvent) {
	r.mu.Lock()
	observers := append([]func(LikeEvent){}, r.onLiked...)
	r.mu.Unlock()
	for _, fn := range observers {
		fn(ev)
	}
}

// Validate rejects a create or update request that the backend would refuse
func Validate(req Request) error {
	if strings.TrimSpace(req.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	return nil
}

func postPath(id int64) string {
	return fmt.Sprintf("%s/%d", basePath, id)
}

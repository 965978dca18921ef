// ABOUTME: Backend port for the auth endpoints and its HTTP implementation
// ABOUTME: Login and register skip the stored token; logout sends the captured one

package auth

import (
	"context"
	"net/http"

	"github.com/markalston/quill/internal/client"
)

// Backend performs the raw auth requests
type Backend interface {
	Login(ctx context.Context, creds Credentials) client.Result[LoginResponse]
	Register(ctx context.Context, creds Credentials) client.Result[RegisterResponse]
	Logout(ctx context.Context, token string) client.Result[struct{}]
}

// APIBackend talks to the /auth endpoints over HTTP
type APIBackend struct {
	client *client.Client
}

// NewAPIBackend returns a Backend using c
func NewAPIBackend(c *client.Client) *APIBackend {
	return &APIBackend{client: c}
}

func (b *APIBackend) Login(ctx context.Context, creds Credentials) client.Result[LoginResponse] {
	return client.Do[LoginResponse](ctx, b.client, http.MethodPost, "/auth/login", creds, client.Options{SkipAuth: true})
}

func (b *APIBackend) Register(ctx context.Context, creds Credentials) client.Result[RegisterResponse] {
	return client.Do[RegisterResponse](ctx, b.client, http.MethodPost, "/auth/register", creds, client.Options{SkipAuth: true})
}

func (b *APIBackend) Logout(ctx context.Context, token string) client.Result[struct{}] {
	return client.Do[struct{}](ctx, b.client, http.MethodPost, "/auth/logout", nil, client.Options{Token: token})
}

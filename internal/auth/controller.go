// ABOUTME: Auth flow controller driving login, register and logout
// ABOUTME: Owns the session status transitions and the persisted identity

package auth

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/markalston/quill/internal/session"
	"github.com/markalston/quill/internal/storage"
)

// logoutNotifyTimeout bounds the background logout request
const logoutNotifyTimeout = 5 * time.Second

// IdentityStore persists the login identity
type IdentityStore interface {
	Load(ctx context.Context) (*storage.Identity, error)
	Save(ctx context.Context, id storage.Identity) error
	Clear(ctx context.Context) error
}

// Controller runs the auth flows against a Backend. Each Login, Register and
// Logout starts a new generation; a login or register that finishes after a
// newer operation started is discarded.
type Controller struct {
	backend    Backend
	identities IdentityStore
	session    *session.Store
	logger     *slog.Logger

	mu   sync.Mutex
	gen  uint64
	mode Mode

	background sync.WaitGroup
}

// NewController wires the controller to its collaborators
func NewController(backend Backend, identities IdentityStore, sess *session.Store, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		backend:    backend,
		identities: identities,
		session:    sess,
		logger:     logger,
	}
}

// Login authenticates creds. On success the identity is persisted and the
// session becomes authenticated.
func (c *Controller) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	if err := Validate(ModeLogin, creds); err != nil {
		c.reject(err.(*ValidationError).Message)
		return nil, err
	}

	gen := c.begin()
	res := c.backend.Login(ctx, creds)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.logger.Debug("discarding stale login result", "username", creds.Username)
		return nil, ErrSuperseded
	}

	if !res.Success || res.Value == nil || res.Value.Token == "" {
		msg := res.Error
		if msg == "" {
			msg = LoginFailedMessage
		}
		c.session.SetError(msg)
		return nil, &Error{Op: "login", Message: msg, Transport: res.Transport}
	}

	resp := *res.Value
	if resp.Username == "" {
		resp.Username = creds.Username
	}
	if resp.Roles == nil {
		resp.Roles = []string{}
	}
	id := storage.Identity{Token: resp.Token, Username: resp.Username, Roles: resp.Roles}
	if err := c.identities.Save(ctx, id); err != nil {
		c.logger.Error("cannot persist identity", "error", err)
		c.session.SetError(err.Error())
		return nil, &Error{Op: "login", Message: err.Error()}
	}

	c.session.SetAuthenticated(session.User{Username: resp.Username, Roles: slices.Clone(resp.Roles)})
	c.logger.Info("logged in", "username", resp.Username)
	return &resp, nil
}

// Register creates an account. Nothing is persisted; the user logs in
// afterwards.
func (c *Controller) Register(ctx context.Context, creds Credentials) (*RegisterResponse, error) {
	if err := Validate(ModeRegister, creds); err != nil {
		c.reject(err.(*ValidationError).Message)
		return nil, err
	}

	gen := c.begin()
	res := c.backend.Register(ctx, creds)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.logger.Debug("discarding stale register result", "username", creds.Username)
		return nil, ErrSuperseded
	}

	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = RegisterFailedMessage
		}
		c.session.SetError(msg)
		return nil, &Error{Op: "register", Message: msg, Transport: res.Transport}
	}

	c.session.SetStatus(session.StatusRegSuccess)
	c.logger.Info("registered", "username", creds.Username)
	if res.Value == nil {
		return &RegisterResponse{Username: creds.Username}, nil
	}
	resp := *res.Value
	return &resp, nil
}

// Logout forgets the identity and resets the session immediately. The
// backend is told in the background; failures there are only logged. The
// returned error reports a storage failure, after which the session is
// still reset.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.gen++

	var token string
	if id, err := c.identities.Load(ctx); err != nil {
		c.logger.Warn("cannot read identity before logout", "error", err)
	} else if id != nil {
		token = id.Token
	}

	clearErr := c.identities.Clear(ctx)
	if clearErr != nil {
		c.logger.Error("cannot clear identity", "error", clearErr)
	}
	c.session.Clear()
	c.mu.Unlock()

	if token != "" {
		c.notifyLogout(context.WithoutCancel(ctx), token)
	}
	return clearErr
}

// Wait blocks until background logout notifications finish or ctx ends
func (c *Controller) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		c.background.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// ClearError dismisses the current error message
func (c *Controller) ClearError() {
	c.session.ClearError()
}

// SwitchMode toggles between the login and register forms and clears any
// error left over from the other form.
func (c *Controller) SwitchMode(mode Mode) {
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
	c.session.ClearError()
}

// Mode returns the current form mode
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// begin starts a new generation and marks the session loading
func (c *Controller) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.session.Begin()
	return c.gen
}

// reject reports a submission refused before any request. It supersedes an
// operation still in flight so that result cannot land on top of the error.
func (c *Controller) reject(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.session.SetError(msg)
}

func (c *Controller) notifyLogout(ctx context.Context, token string) {
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		ctx, cancel := context.WithTimeout(ctx, logoutNotifyTimeout)
		defer cancel()

		res := c.backend.Logout(ctx, token)
		if !res.Success {
			c.logger.Warn("logout notification failed", "error", res.Error)
		}
	}()
}

// IsValidation reports whether err rejected input before any request
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

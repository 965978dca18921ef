// ABOUTME: Process-wide authentication session shared by every view
// ABOUTME: Mutated only through named transitions; observers see each new snapshot

package session

import (
	"context"
	"slices"
	"sync"

	"github.com/markalston/quill/internal/storage"
)

// Status is the phase of the most recent auth operation
type Status string

const (
	StatusIdle       Status = "idle"
	StatusLoading    Status = "loading"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
	StatusRegSuccess Status = "reg_success"
)

// User is the signed-in account as reported by the backend
type User struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// State is an immutable view of the session
type State struct {
	Authenticated bool   `json:"authenticated"`
	User          *User  `json:"user,omitempty"`
	Status        Status `json:"status"`
	Error         string `json:"error,omitempty"`
}

// HasError reports whether an error message is set
func (s State) HasError() bool {
	return s.Error != ""
}

// IdentityLoader reads the persisted identity at startup
type IdentityLoader interface {
	Load(ctx context.Context) (*storage.Identity, error)
}

// Store holds the single session of an application run
type Store struct {
	mu        sync.Mutex
	state     State
	restored  bool
	observers map[int]func(State)
	nextID    int
}

// New returns an idle, unauthenticated store
func New() *Store {
	return &Store{
		state:     State{Status: StatusIdle},
		observers: make(map[int]func(State)),
	}
}

// Restore initializes the session from persisted identity. Only the first
// call has any effect. A load error leaves the session unauthenticated and
// is returned to the caller.
func (s *Store) Restore(ctx context.Context, loader IdentityLoader) error {
	s.mu.Lock()
	if s.restored {
		s.mu.Unlock()
		return nil
	}
	s.restored = true
	s.mu.Unlock()

	id, err := loader.Load(ctx)
	if err != nil || id == nil {
		return err
	}

	s.update(func(st *State) {
		st.Authenticated = true
		st.User = &User{Username: id.Username, Roles: slices.Clone(id.Roles)}
	})
	return nil
}

// Begin marks an operation in flight and clears any previous error
func (s *Store) Begin() {
	s.update(func(st *State) {
		st.Status = StatusLoading
		st.Error = ""
	})
}

// SetAuthenticated records a successful login. Status and authentication
// change together.
func (s *Store) SetAuthenticated(u User) {
	s.update(func(st *State) {
		st.Authenticated = true
		st.User = &User{Username: u.Username, Roles: slices.Clone(u.Roles)}
		st.Status = StatusSuccess
		st.Error = ""
	})
}

// SetError records a failed operation
func (s *Store) SetError(msg string) {
	s.update(func(st *State) {
		st.Status = StatusError
		st.Error = msg
	})
}

// SetStatus changes only the status. StatusSuccess is reserved for
// SetAuthenticated and is ignored here.
func (s *Store) SetStatus(status Status) {
	if status == StatusSuccess {
		return
	}
	s.update(func(st *State) { st.Status = status })
}

// ClearError removes the error message. It is a no-op when none is set.
func (s *Store) ClearError() {
	s.mu.Lock()
	if s.state.Error == "" {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.update(func(st *State) { st.Error = "" })
}

// Clear resets to idle and unauthenticated
func (s *Store) Clear() {
	s.update(func(st *State) {
		*st = State{Status: StatusIdle}
	})
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.state)
}

// Subscribe registers fn to be called with the new state after every
// transition. The returned function removes the observer.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// update applies fn under the lock, then notifies observers outside it
func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snap := copyState(s.state)
	observers := make([]func(State), 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.mu.Unlock()

	for _, o := range observers {
		o(snap)
	}
}

func copyState(st State) State {
	if st.User != nil {
		u := *st.User
		u.Roles = slices.Clone(u.Roles)
		st.User = &u
	}
	return st
}

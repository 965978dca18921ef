// ABOUTME: In-process fake of the blog backend for tests
// ABOUTME: Serves /api/auth and /api/blog/posts from memory behind httptest

package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

var signingKey = []byte("fakeapi-signing-key")

// Post mirrors the backend's post representation
type Post struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	CreatedDate string `json:"createdDate"`
}

type account struct {
	password string
	roles    []string
}

// Server is a running fake backend
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	users     map[string]account
	tokens    map[string]string
	posts     map[int64]*Post
	likes     map[int64]int
	nextID    int64
	anonLikes bool
	logouts   []string
	requests  map[string]int
}

// Option configures a Server
type Option func(*Server)

// WithUser registers an account
func WithUser(username, password string, roles ...string) Option {
	return func(s *Server) {
		if len(roles) == 0 {
			roles = []string{"ROLE_USER"}
		}
		s.users[username] = account{password: password, roles: roles}
	}
}

// WithPost seeds a post
func WithPost(title, content, created string) Option {
	return func(s *Server) {
		s.nextID++
		s.posts[s.nextID] = &Post{ID: s.nextID, Title: title, Content: content, CreatedDate: created}
	}
}

// AllowAnonymousLikes accepts like requests without a token
func AllowAnonymousLikes() Option {
	return func(s *Server) { s.anonLikes = true }
}

// New starts a fake backend. Its API base is URL + "/api".
func New(opts ...Option) *Server {
	s := &Server{
		users:    make(map[string]account),
		tokens:   make(map[string]string),
		posts:    make(map[int64]*Post),
		likes:    make(map[int64]int),
		requests: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

// APIURL is the base address clients should be configured with
func (s *Server) APIURL() string {
	return s.URL + "/api"
}

// Requests returns how many requests hit "METHOD /path"
func (s *Server) Requests(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[key]
}

// Logouts returns the tokens presented to /auth/logout
func (s *Server) Logouts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.logouts...)
}

// Likes returns the like count of post id
func (s *Server) Likes(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.likes[id]
}

// Post returns a copy of post id
func (s *Server) Post(id int64) (Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return Post{}, false
	}
	return *p, true
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.count)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", s.login).Methods("POST")
	api.HandleFunc("/auth/register", s.register).Methods("POST")
	api.HandleFunc("/auth/logout", s.requireAuth(s.logout)).Methods("POST")

	api.HandleFunc("/blog/posts", s.listPosts).Methods("GET")
	api.HandleFunc("/blog/posts", s.requireAuth(s.createPost)).Methods("POST")
	api.HandleFunc("/blog/posts/{id:[0-9]+}", s.getPost).Methods("GET")
	api.HandleFunc("/blog/posts/{id:[0-9]+}", s.requireAuth(s.updatePost)).Methods("PUT")
	api.HandleFunc("/blog/posts/{id:[0-9]+}", s.requireAuth(s.deletePost)).Methods("DELETE")
	api.HandleFunc("/blog/posts/{id:[0-9]+}/like", s.likePost).Methods("POST")
	return r
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.Method+" "+strings.TrimPrefix(r.URL.Path, "/api")]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) bearer(r *http.Request) (token, username string, ok bool) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || token == "" {
		return "", "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok = s.tokens[token]
	return token, username, ok
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := s.bearer(r); !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "authentication required"})
			return
		}
		next(w, r)
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Bad Request"})
		return
	}

	s.mu.Lock()
	acct, ok := s.users[in.Username]
	if !ok || acct.password != in.Password {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "bad credentials"})
		return
	}
	token := issueToken(in.Username)
	s.tokens[token] = in.Username
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"token":    token,
		"username": in.Username,
		"roles":    acct.roles,
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Bad Request"})
		return
	}

	s.mu.Lock()
	if _, exists := s.users[in.Username]; exists {
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]string{"message": "username already exists"})
		return
	}
	roles := []string{"ROLE_USER"}
	s.users[in.Username] = account{password: in.Password, roles: roles}
	id := len(s.users)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       id,
		"username": in.Username,
		"active":   true,
		"roles":    roles,
		"message":  "registration successful",
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	token, _, _ := s.bearer(r)
	s.mu.Lock()
	delete(s.tokens, token)
	s.logouts = append(s.logouts, token)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, *p)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	p, ok := s.Post(postID(r))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "post not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var in postRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "title is required"})
		return
	}
	s.mu.Lock()
	s.nextID++
	p := &Post{ID: s.nextID, Title: in.Title, Content: in.Content, CreatedDate: time.Now().Format("2006-01-02T15:04:05")}
	s.posts[p.ID] = p
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "post created", "data": p})
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	var in postRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Bad Request"})
		return
	}
	id := postID(r)
	s.mu.Lock()
	p, ok := s.posts[id]
	if ok {
		p.Title, p.Content = in.Title, in.Content
	}
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "post not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "post updated"})
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	id := postID(r)
	s.mu.Lock()
	_, ok := s.posts[id]
	delete(s.posts, id)
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "post not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "post deleted"})
}

func (s *Server) likePost(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.bearer(r); !ok && !s.anonLikes {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "authentication required"})
		return
	}
	id := postID(r)
	s.mu.Lock()
	_, ok := s.posts[id]
	if ok {
		s.likes[id]++
	}
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "post not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "thanks for the like"})
}

func issueToken(username string) string {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return signed
}

func postID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

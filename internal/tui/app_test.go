// ABOUTME: Integration tests for TUI app
// ABOUTME: Tests component wiring and state transitions

package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/quill/internal/auth"
	"github.com/markalston/quill/internal/client"
	"github.com/markalston/quill/internal/posts"
	"github.com/markalston/quill/internal/session"
	"github.com/markalston/quill/internal/tui/authform"
	"github.com/markalston/quill/internal/tui/celebrate"
	"github.com/markalston/quill/internal/tui/editor"
	"github.com/markalston/quill/internal/tui/postlist"
)

// fakeAuth drives the session the way the auth controller does
type fakeAuth struct {
	sess    *session.Store
	mode    auth.Mode
	logouts int
}

func (f *fakeAuth) Login(ctx context.Context, creds auth.Credentials) (*auth.LoginResponse, error) {
	f.sess.Begin()
	if creds.Password != "secret1" {
		f.sess.SetError("bad credentials")
		return nil, &auth.Error{Op: "login", Message: "bad credentials"}
	}
	f.sess.SetAuthenticated(session.User{Username: creds.Username})
	return &auth.LoginResponse{Token: "t1", Username: creds.Username}, nil
}

func (f *fakeAuth) Register(ctx context.Context, creds auth.Credentials) (*auth.RegisterResponse, error) {
	f.sess.Begin()
	f.sess.SetStatus(session.StatusRegSuccess)
	return &auth.RegisterResponse{Username: creds.Username}, nil
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.logouts++
	f.sess.Clear()
	return nil
}

func (f *fakeAuth) ClearError() { f.sess.ClearError() }

func (f *fakeAuth) SwitchMode(mode auth.Mode) {
	f.mode = mode
	f.sess.ClearError()
}

// fakePosts is an in-memory post service
type fakePosts struct {
	posts    []posts.Post
	listErr  string
	failSave bool
	likeErr  string
	calls    []string
	onLiked  []func(posts.LikeEvent)
}

func (f *fakePosts) List(ctx context.Context) client.Result[[]posts.Post] {
	f.calls = append(f.calls, "list")
	if f.listErr != "" {
		return client.Failure[[]posts.Post](f.listErr)
	}
	out := append([]posts.Post{}, f.posts...)
	return client.Ok(&out)
}

func (f *fakePosts) Get(ctx context.Context, id int64) client.Result[posts.Post] {
	f.calls = append(f.calls, "get")
	for _, p := range f.posts {
		if p.ID == id {
			return client.Ok(&p)
		}
	}
	return client.Failure[posts.Post]("post not found")
}

func (f *fakePosts) Create(ctx context.Context, req posts.Request) posts.MutationResult {
	f.calls = append(f.calls, "create")
	if f.failSave {
		return posts.MutationResult{Message: "authentication required"}
	}
	f.posts = append(f.posts, posts.Post{ID: int64(len(f.posts) + 1), Title: req.Title, Content: req.Content})
	return posts.MutationResult{Success: true, Message: "post created"}
}

func (f *fakePosts) Update(ctx context.Context, id int64, req posts.Request) posts.MutationResult {
	f.calls = append(f.calls, "update")
	return posts.MutationResult{Success: true, Message: "post updated"}
}

func (f *fakePosts) Delete(ctx context.Context, id int64) posts.MutationResult {
	f.calls = append(f.calls, "delete")
	return posts.MutationResult{Success: true, Message: "post deleted"}
}

func (f *fakePosts) Like(ctx context.Context, id int64) posts.MutationResult {
	f.calls = append(f.calls, "like")
	if f.likeErr != "" {
		return posts.MutationResult{Message: f.likeErr}
	}
	for _, fn := range f.onLiked {
		fn(posts.LikeEvent{PostID: id, Message: "thanks for the like"})
	}
	return posts.MutationResult{Success: true, Message: "thanks for the like"}
}

func (f *fakePosts) OnLiked(fn func(posts.LikeEvent)) {
	f.onLiked = append(f.onLiked, fn)
}

func newTestApp(t *testing.T) (*App, *fakeAuth, *fakePosts) {
	t.Helper()
	sess := session.New()
	fa := &fakeAuth{sess: sess}
	fp := &fakePosts{posts: []posts.Post{
		{ID: 1, Title: "Hello", Content: "first post", CreatedDate: "2025-01-02T10:00:00"},
		{ID: 2, Title: "Second", Content: "# Two"},
	}}
	app := New(context.Background(), Deps{Auth: fa, Posts: fp, Session: sess})
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return app, fa, fp
}

func signIn(app *App) {
	app.session.SetAuthenticated(session.User{Username: "alice"})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// deliver runs a single (non-batch) command and feeds its message back
func deliver(t *testing.T, app *App, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	_, next := app.Update(cmd())
	return next
}

func TestAppInitialState(t *testing.T) {
	app, _, _ := newTestApp(t)

	if app.screen != ScreenPosts {
		t.Errorf("expected initial screen to be ScreenPosts, got %d", app.screen)
	}
	if app.Init() == nil {
		t.Error("expected Init to start loading posts")
	}
	if !app.list.Loading() {
		t.Error("expected list to be loading after Init")
	}
}

func TestScreenConstants(t *testing.T) {
	if ScreenPosts != 0 {
		t.Errorf("expected ScreenPosts to be 0, got %d", ScreenPosts)
	}
	if ScreenPost != 1 {
		t.Errorf("expected ScreenPost to be 1, got %d", ScreenPost)
	}
	if ScreenEditor != 2 {
		t.Errorf("expected ScreenEditor to be 2, got %d", ScreenEditor)
	}
	if ScreenAuth != 3 {
		t.Errorf("expected ScreenAuth to be 3, got %d", ScreenAuth)
	}
}

func TestAppPostsLoaded(t *testing.T) {
	app, _, fp := newTestApp(t)

	app.Update(postsLoadedMsg{res: fp.List(context.Background())})

	if got := len(app.list.Posts()); got != 2 {
		t.Fatalf("expected 2 posts in list, got %d", got)
	}
	if !strings.Contains(app.View(), "Hello") {
		t.Error("expected post title in view")
	}
}

func TestAppPostsLoadFailure(t *testing.T) {
	app, _, fp := newTestApp(t)
	fp.listErr = "cannot connect to backend"

	app.Update(postsLoadedMsg{res: fp.List(context.Background())})

	if !strings.Contains(app.View(), "could not load posts: cannot connect to backend") {
		t.Error("expected load failure banner")
	}

	app.Update(runes("x"))
	if app.err != "" {
		t.Error("expected x to dismiss the error")
	}
}

func TestAppOpenPost(t *testing.T) {
	app, _, _ := newTestApp(t)

	_, cmd := app.Update(postlist.OpenMsg{ID: 2})
	if app.screen != ScreenPost {
		t.Fatalf("expected ScreenPost, got %d", app.screen)
	}
	deliver(t, app, cmd)

	p, ok := app.postView.Post()
	if !ok || p.ID != 2 {
		t.Fatalf("expected post 2 in view, got %+v", p)
	}
	if !strings.Contains(app.View(), "Second") {
		t.Error("expected post title in view")
	}

	app.Update(runes("b"))
	if app.screen != ScreenPosts {
		t.Errorf("expected back to ScreenPosts, got %d", app.screen)
	}
}

func TestAppOpenMissingPost(t *testing.T) {
	app, _, _ := newTestApp(t)

	_, cmd := app.Update(postlist.OpenMsg{ID: 99})
	deliver(t, app, cmd)

	if app.screen != ScreenPosts {
		t.Errorf("expected fallback to ScreenPosts, got %d", app.screen)
	}
	if !strings.Contains(app.err, "post not found") {
		t.Errorf("expected not found error, got %q", app.err)
	}
}

func TestAppStalePostIgnored(t *testing.T) {
	app, _, fp := newTestApp(t)

	app.Update(postlist.OpenMsg{ID: 1})
	app.Update(postlist.OpenMsg{ID: 2})
	app.Update(postLoadedMsg{id: 1, res: fp.Get(context.Background(), 1)})

	if _, ok := app.postView.Post(); ok {
		t.Error("expected a response for a post no longer viewed to be dropped")
	}
}

func TestAppGatedActionOpensSignIn(t *testing.T) {
	app, _, _ := newTestApp(t)

	app.Update(postlist.NewMsg{})
	if app.screen != ScreenAuth {
		t.Fatalf("expected ScreenAuth for a guest, got %d", app.screen)
	}
	if app.afterLogin == nil {
		t.Fatal("expected the new post action to wait for login")
	}
	if !strings.Contains(app.View(), "Sign in to write a post") {
		t.Error("expected reason shown on the sign-in form")
	}

	cmd := app.submitAuth(authform.SubmitMsg{
		Mode:        auth.ModeLogin,
		Credentials: auth.Credentials{Username: "alice", Password: "secret1"},
	})
	deliver(t, app, cmd)

	if app.screen != ScreenEditor {
		t.Fatalf("expected editor after login, got %d", app.screen)
	}
	if app.editor == nil || !app.editor.IsNew() {
		t.Error("expected a new post editor")
	}
	if !strings.Contains(app.View(), "alice") {
		t.Error("expected session badge to show the user")
	}
}

func TestAppLoginFailureShowsSessionError(t *testing.T) {
	app, _, _ := newTestApp(t)

	app.Update(runes("s"))
	if app.screen != ScreenAuth {
		t.Fatalf("expected ScreenAuth, got %d", app.screen)
	}

	cmd := app.submitAuth(authform.SubmitMsg{
		Mode:        auth.ModeLogin,
		Credentials: auth.Credentials{Username: "alice", Password: "wrong"},
	})
	deliver(t, app, cmd)

	if app.screen != ScreenAuth {
		t.Errorf("expected to stay on ScreenAuth, got %d", app.screen)
	}
	view := app.View()
	if !strings.Contains(view, "bad credentials") {
		t.Error("expected session error in view")
	}
	if !strings.Contains(view, "ctrl+x dismiss") {
		t.Error("expected dismiss hint on the auth screen")
	}

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	if app.session.Snapshot().HasError() {
		t.Error("expected ctrl+x to clear the session error")
	}
}

func TestAppRegisterSwitchesToLogin(t *testing.T) {
	app, fa, _ := newTestApp(t)

	app.Update(runes("s"))
	cmd := app.submitAuth(authform.SubmitMsg{
		Mode:        auth.ModeRegister,
		Credentials: auth.Credentials{Username: "bob", Password: "secret1"},
	})
	deliver(t, app, cmd)

	if app.authForm == nil || app.authForm.Mode() != auth.ModeLogin {
		t.Fatal("expected login form after registering")
	}
	if app.authForm.Username() != "bob" {
		t.Errorf("expected username carried over, got %q", app.authForm.Username())
	}
	if fa.mode != auth.ModeLogin {
		t.Error("expected controller switched to login mode")
	}
	if app.session.Snapshot().Authenticated {
		t.Error("registering must not sign the user in")
	}
	if !strings.Contains(app.View(), "Welcome, bob") {
		t.Error("expected registration welcome")
	}
}

func TestAppSupersededAuthIgnored(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.Update(runes("s"))

	app.Update(authDoneMsg{mode: auth.ModeLogin, err: auth.ErrSuperseded})
	if app.screen != ScreenAuth {
		t.Errorf("expected superseded result to change nothing, got screen %d", app.screen)
	}
}

func TestAppAuthCancelReturns(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.Update(postlist.OpenMsg{ID: 1})
	app.Update(runes("s"))

	app.Update(authform.CancelledMsg{})
	if app.screen != ScreenPost {
		t.Errorf("expected return to ScreenPost, got %d", app.screen)
	}
	if app.afterLogin != nil {
		t.Error("expected pending action dropped on cancel")
	}
}

func TestAppDeleteNeedsConfirmation(t *testing.T) {
	app, _, fp := newTestApp(t)
	signIn(app)
	app.Update(postsLoadedMsg{res: fp.List(context.Background())})

	app.Update(postlist.DeleteMsg{ID: 1})
	if app.pendingDelete != 1 {
		t.Fatalf("expected pending delete of post 1, got %d", app.pendingDelete)
	}
	if !strings.Contains(app.View(), "Delete post #1?") {
		t.Error("expected confirmation prompt")
	}

	app.Update(runes("n"))
	if app.pendingDelete != 0 {
		t.Error("expected any other key to cancel")
	}

	app.Update(postlist.DeleteMsg{ID: 1})
	_, cmd := app.Update(runes("y"))
	deliver(t, app, cmd)

	if !contains(fp.calls, "delete") {
		t.Error("expected delete request")
	}
	if !strings.Contains(app.View(), "post deleted") {
		t.Error("expected server message shown")
	}
}

func TestAppLikeCelebrates(t *testing.T) {
	app, _, _ := newTestApp(t)

	var sent []tea.Msg
	app.send = func(msg tea.Msg) { sent = append(sent, msg) }

	_, cmd := app.Update(postlist.LikeMsg{ID: 2})
	deliver(t, app, cmd)

	if len(sent) != 1 {
		t.Fatalf("expected one celebration message, got %d", len(sent))
	}
	start, ok := sent[0].(celebrate.StartMsg)
	if !ok || start.PostID != 2 {
		t.Fatalf("expected StartMsg for post 2, got %#v", sent[0])
	}

	app.Update(start)
	if !app.celebration.Active() {
		t.Error("expected celebration to start")
	}
	if !strings.Contains(app.View(), "thanks for the like") {
		t.Error("expected like message in view")
	}
}

func TestAppLikeFailureKeepsList(t *testing.T) {
	app, _, fp := newTestApp(t)
	app.Update(postsLoadedMsg{res: fp.List(context.Background())})
	before := append([]posts.Post{}, app.list.Posts()...)
	fp.likeErr = "already liked"
	fp.calls = nil

	var sent []tea.Msg
	app.send = func(msg tea.Msg) { sent = append(sent, msg) }

	_, cmd := app.Update(postlist.LikeMsg{ID: 2})
	if next := deliver(t, app, cmd); next != nil {
		t.Error("expected no follow-up command after a refused like")
	}

	if len(sent) != 0 {
		t.Errorf("expected no celebration, got %#v", sent)
	}
	if app.celebration.Active() {
		t.Error("celebration should stay idle")
	}
	if !strings.Contains(app.View(), "already liked") {
		t.Error("expected server message shown verbatim")
	}
	if got := strings.Join(fp.calls, ","); got != "like" {
		t.Errorf("expected only the like call, got %q", got)
	}
	after := app.list.Posts()
	if len(after) != len(before) {
		t.Fatalf("list changed: %d posts, want %d", len(after), len(before))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("post %d changed: %#v", i, after[i])
		}
	}
}

func TestAppCreatePost(t *testing.T) {
	app, _, fp := newTestApp(t)
	signIn(app)

	app.Update(postlist.NewMsg{})
	if app.screen != ScreenEditor {
		t.Fatalf("expected ScreenEditor, got %d", app.screen)
	}

	_, cmd := app.Update(editor.SavedMsg{Request: posts.Request{Title: "Third", Content: "body"}})
	deliver(t, app, cmd)

	if app.screen != ScreenPosts {
		t.Errorf("expected ScreenPosts after create, got %d", app.screen)
	}
	if !contains(fp.calls, "create") {
		t.Error("expected create request")
	}
	if !strings.Contains(app.View(), "post created") {
		t.Error("expected server message shown")
	}
}

func TestAppCreateFailureKeepsEditor(t *testing.T) {
	app, _, fp := newTestApp(t)
	signIn(app)
	fp.failSave = true

	app.Update(postlist.NewMsg{})
	_, cmd := app.Update(editor.SavedMsg{Request: posts.Request{Title: "Third"}})
	deliver(t, app, cmd)

	if app.screen != ScreenEditor {
		t.Errorf("expected to stay in the editor, got %d", app.screen)
	}
	if !strings.Contains(app.err, "authentication required") {
		t.Errorf("expected failure message, got %q", app.err)
	}
}

func TestAppEditFromList(t *testing.T) {
	app, _, fp := newTestApp(t)
	signIn(app)
	app.Update(postsLoadedMsg{res: fp.List(context.Background())})

	app.Update(postlist.EditMsg{ID: 1})
	if app.editor == nil || app.editor.ID() != 1 {
		t.Fatal("expected editor on post 1")
	}

	_, cmd := app.Update(editor.SavedMsg{ID: 1, Request: posts.Request{Title: "Hello again"}})
	deliver(t, app, cmd)

	if !contains(fp.calls, "update") {
		t.Error("expected update request")
	}
	if app.screen != ScreenPosts {
		t.Errorf("expected return to ScreenPosts, got %d", app.screen)
	}
}

func TestAppEditorCancel(t *testing.T) {
	app, _, _ := newTestApp(t)
	signIn(app)

	app.Update(postlist.NewMsg{})
	app.Update(editor.CancelledMsg{})

	if app.screen != ScreenPosts || app.editor != nil {
		t.Error("expected editor closed on cancel")
	}
}

func TestAppLogout(t *testing.T) {
	app, fa, _ := newTestApp(t)
	signIn(app)

	_, cmd := app.Update(runes("o"))
	if fa.logouts != 1 {
		t.Fatalf("expected one logout, got %d", fa.logouts)
	}
	if app.session.Snapshot().Authenticated {
		t.Error("expected session cleared immediately")
	}
	deliver(t, app, cmd)
	if !strings.Contains(app.View(), "Signed out") {
		t.Error("expected signed out notice")
	}
}

func TestAppLogoutStorageFailure(t *testing.T) {
	app, _, _ := newTestApp(t)

	app.Update(logoutDoneMsg{err: errors.New("disk full")})
	if !strings.Contains(app.err, "disk full") {
		t.Errorf("expected storage error surfaced, got %q", app.err)
	}
}

func TestAppFooterFollowsSession(t *testing.T) {
	app, _, _ := newTestApp(t)

	if !strings.Contains(app.View(), "Sign-in") {
		t.Error("expected sign-in shortcut for a guest")
	}
	signIn(app)
	if !strings.Contains(app.View(), "Sign-out") {
		t.Error("expected sign-out shortcut when signed in")
	}
}

func TestAppNoticeClearedOnKey(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.flash("Post published", 0)

	app.Update(tea.KeyMsg{Type: tea.KeyDown})
	if app.notice != nil {
		t.Error("expected notice cleared by the next key press")
	}
}

func TestAppQuit(t *testing.T) {
	app, _, _ := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected ctrl+c to quit")
	}
}

func contains(calls []string, want string) bool {
	for _, c := range calls {
		if c == want {
			return true
		}
	}
	return false
}

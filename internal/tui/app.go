// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Manages screen state and routes keyboard input to child components

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/quill/internal/auth"
	"github.com/markalston/quill/internal/client"
	"github.com/markalston/quill/internal/posts"
	"github.com/markalston/quill/internal/session"
	"github.com/markalston/quill/internal/tui/authform"
	"github.com/markalston/quill/internal/tui/celebrate"
	"github.com/markalston/quill/internal/tui/editor"
	"github.com/markalston/quill/internal/tui/icons"
	"github.com/markalston/quill/internal/tui/postlist"
	"github.com/markalston/quill/internal/tui/postview"
	"github.com/markalston/quill/internal/tui/styles"
	"github.com/markalston/quill/internal/tui/widgets"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenPosts Screen = iota
	ScreenPost
	ScreenEditor
	ScreenAuth
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width the frame is drawn at
	frameOverhead    = 4  // Header, footer and their separating newlines
)

// Authenticator runs the sign-in flows
type Authenticator interface {
	Login(ctx context.Context, creds auth.Credentials) (*auth.LoginResponse, error)
	Register(ctx context.Context, creds auth.Credentials) (*auth.RegisterResponse, error)
	Logout(ctx context.Context) error
	ClearError()
	SwitchMode(mode auth.Mode)
}

// PostService reads and mutates posts
type PostService interface {
	List(ctx context.Context) client.Result[[]posts.Post]
	Get(ctx context.Context, id int64) client.Result[posts.Post]
	Create(ctx context.Context, req posts.Request) posts.MutationResult
	Update(ctx context.Context, id int64, req posts.Request) posts.MutationResult
	Delete(ctx context.Context, id int64) posts.MutationResult
	Like(ctx context.Context, id int64) posts.MutationResult
	OnLiked(fn func(posts.LikeEvent))
}

// Deps are the collaborators the TUI drives
type Deps struct {
	Auth    Authenticator
	Posts   PostService
	Session *session.Store
	Logger  *slog.Logger
}

// postsLoadedMsg is sent when the post list has been fetched
type postsLoadedMsg struct {
	res client.Result[[]posts.Post]
}

// postLoadedMsg is sent when a single post has been fetched
type postLoadedMsg struct {
	id  int64
	res client.Result[posts.Post]
}

// mutationDoneMsg is sent when a create, update, delete or like completes
type mutationDoneMsg struct {
	op  string
	id  int64
	res posts.MutationResult
}

// authDoneMsg is sent when a login or register completes
type authDoneMsg struct {
	mode     auth.Mode
	username string
	login    *auth.LoginResponse
	register *auth.RegisterResponse
	err      error
}

// logoutDoneMsg is sent once the local identity has been cleared
type logoutDoneMsg struct {
	err error
}

// sessionChangedMsg is sent by the session observer to trigger a redraw
type sessionChangedMsg struct{}

// notice is a transient line shown under the header
type notice struct {
	text  string
	level widgets.StatusLevel
}

// App is the root model for the TUI
type App struct {
	ctx     context.Context
	auth    Authenticator
	posts   PostService
	session *session.Store
	logger  *slog.Logger

	screen Screen
	// returnTo is where the auth screen and the editor go back to
	returnTo Screen
	width    int
	height   int

	// err is a request failure outside the auth flow
	err           string
	notice        *notice
	pendingDelete int64
	// viewing is the post the post screen is waiting for
	viewing int64
	// afterLogin runs once a login started from a gated action succeeds
	afterLogin func() tea.Cmd

	// Child models
	list        *postlist.List
	postView    *postview.View
	editor      *editor.Editor
	authForm    *authform.Form
	celebration *celebrate.Celebration

	// send delivers messages from observers into the running program
	send func(tea.Msg)
}

// New creates a new TUI application
func New(ctx context.Context, deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		ctx:         ctx,
		auth:        deps.Auth,
		posts:       deps.Posts,
		session:     deps.Session,
		logger:      logger,
		screen:      ScreenPosts,
		list:        postlist.New(),
		postView:    postview.New(minTerminalWidth, 20, true),
		celebration: celebrate.New(),
		send:        func(tea.Msg) {},
	}
	if a.posts != nil {
		a.posts.OnLiked(func(ev posts.LikeEvent) {
			a.send(celebrate.StartMsg{PostID: ev.PostID, Message: ev.Message})
		})
	}
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return a.reload()
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case tea.KeyMsg:
		// Handle global quit
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Notices last until the next key press
		a.notice = nil

		// Route to current screen
		switch a.screen {
		case ScreenPosts:
			return a.updatePosts(msg)
		case ScreenPost:
			return a.updatePost(msg)
		case ScreenEditor:
			return a.updateEditor(msg)
		case ScreenAuth:
			return a.updateAuth(msg)
		}

	case sessionChangedMsg:
		return a, nil

	case postsLoadedMsg:
		return a.handlePostsLoaded(msg)

	case postLoadedMsg:
		return a.handlePostLoaded(msg)

	case mutationDoneMsg:
		return a.handleMutationDone(msg)

	case authDoneMsg:
		return a.handleAuthDone(msg)

	case logoutDoneMsg:
		if msg.err != nil {
			a.err = "signed out, but the saved identity could not be removed: " + msg.err.Error()
		} else {
			a.flash("Signed out", widgets.StatusInfo)
		}
		return a, nil

	case celebrate.StartMsg:
		return a, a.celebration.Start(msg)

	case postlist.OpenMsg:
		return a, a.openPost(msg.ID)

	case postlist.NewMsg:
		return a, a.requireLogin("Sign in to write a post", func() tea.Cmd { return a.openEditor(nil) })

	case postlist.EditMsg:
		return a, a.requireLogin("Sign in to edit posts", func() tea.Cmd { return a.editPost(msg.ID) })

	case postlist.DeleteMsg:
		return a, a.requireLogin("Sign in to delete posts", func() tea.Cmd {
			a.pendingDelete = msg.ID
			return nil
		})

	case postlist.LikeMsg:
		return a, a.likePost(msg.ID)

	case postlist.RefreshMsg:
		return a, a.reload()

	case authform.SubmitMsg:
		return a, a.submitAuth(msg)

	case authform.ModeSwitchedMsg:
		a.auth.SwitchMode(msg.Mode)
		return a, nil

	case authform.CancelledMsg:
		a.authForm = nil
		a.afterLogin = nil
		a.auth.ClearError()
		a.screen = a.returnTo
		return a, nil

	case editor.SavedMsg:
		return a, a.savePost(msg)

	case editor.CancelledMsg:
		a.editor = nil
		a.screen = a.returnTo
		return a, nil

	default:
		// Forward unknown messages to the active form (needed for huh internals)
		// and to the widgets that tick on their own
		var cmds []tea.Cmd
		switch {
		case a.screen == ScreenAuth && a.authForm != nil:
			_, cmd := a.authForm.Update(msg)
			cmds = append(cmds, cmd)
		case a.screen == ScreenEditor && a.editor != nil:
			_, cmd := a.editor.Update(msg)
			cmds = append(cmds, cmd)
		}
		cmds = append(cmds, a.list.Update(msg), a.celebration.Update(msg))
		return a, tea.Batch(cmds...)
	}

	return a, nil
}

// handleShared handles keys available on the browsing screens. It reports
// whether the key was consumed.
func (a *App) handleShared(msg tea.KeyMsg) (tea.Cmd, bool) {
	if a.pendingDelete != 0 {
		id := a.pendingDelete
		a.pendingDelete = 0
		if msg.String() == "y" {
			return a.deletePost(id), true
		}
		return nil, true
	}

	st := a.session.Snapshot()
	switch msg.String() {
	case "q":
		return tea.Quit, true
	case "x":
		if st.HasError() || a.err != "" {
			a.dismissError()
			return nil, true
		}
	case "s":
		if !st.Authenticated {
			return a.openAuth(auth.ModeLogin, ""), true
		}
	case "o":
		if st.Authenticated {
			return a.logout(), true
		}
	}
	return nil, false
}

func (a *App) updatePosts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := a.handleShared(msg); ok {
		return a, cmd
	}
	return a, a.list.Update(msg)
}

func (a *App) updatePost(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := a.handleShared(msg); ok {
		return a, cmd
	}

	p, ok := a.postView.Post()
	switch msg.String() {
	case "esc", "b":
		a.screen = ScreenPosts
		return a, nil
	case "r":
		if ok {
			return a, a.openPost(p.ID)
		}
	case "e":
		if ok {
			return a, a.requireLogin("Sign in to edit posts", func() tea.Cmd { return a.openEditor(&p) })
		}
	case "d":
		if ok {
			return a, a.requireLogin("Sign in to delete posts", func() tea.Cmd {
				a.pendingDelete = p.ID
				return nil
			})
		}
	case "l":
		if ok {
			return a, a.likePost(p.ID)
		}
	}
	return a, a.postView.Update(msg)
}

func (a *App) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.editor == nil {
		return a, nil
	}
	model, cmd := a.editor.Update(msg)
	a.editor = model.(*editor.Editor)
	return a, cmd
}

func (a *App) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.authForm == nil {
		return a, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "ctrl+x" {
		a.auth.ClearError()
		return a, nil
	}
	model, cmd := a.authForm.Update(msg)
	a.authForm = model.(*authform.Form)
	return a, cmd
}

// requireLogin runs next when signed in, otherwise opens the sign-in form
// and runs next after a successful login
func (a *App) requireLogin(reason string, next func() tea.Cmd) tea.Cmd {
	if a.session.Snapshot().Authenticated {
		return next()
	}
	cmd := a.openAuth(auth.ModeLogin, "")
	a.authForm.SetNotice(reason)
	a.afterLogin = next
	return cmd
}

func (a *App) openAuth(mode auth.Mode, username string) tea.Cmd {
	if a.screen != ScreenAuth {
		a.returnTo = a.screen
	}
	a.auth.SwitchMode(mode)
	a.authForm = authform.New(mode, username)
	a.authForm.SetWidth(a.contentWidth())
	a.screen = ScreenAuth
	return a.authForm.Init()
}

func (a *App) openEditor(p *posts.Post) tea.Cmd {
	if a.screen != ScreenEditor {
		a.returnTo = a.screen
	}
	a.editor = editor.New(p)
	a.editor.SetSize(a.contentWidth(), a.contentHeight())
	a.screen = ScreenEditor
	return a.editor.Init()
}

// editPost opens the editor on the list's copy of the post
func (a *App) editPost(id int64) tea.Cmd {
	for _, p := range a.list.Posts() {
		if p.ID == id {
			return a.openEditor(&p)
		}
	}
	if p, ok := a.postView.Post(); ok && p.ID == id {
		return a.openEditor(&p)
	}
	return nil
}

func (a *App) dismissError() {
	a.err = ""
	a.auth.ClearError()
}

func (a *App) flash(text string, level widgets.StatusLevel) {
	a.notice = &notice{text: text, level: level}
}

func (a *App) handlePostsLoaded(msg postsLoadedMsg) (tea.Model, tea.Cmd) {
	if !msg.res.Success {
		a.list.SetLoading(false)
		a.err = "could not load posts: " + msg.res.Error
		return a, nil
	}
	a.list.SetPosts(*msg.res.Value)
	return a, nil
}

func (a *App) handlePostLoaded(msg postLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.id != a.viewing {
		return a, nil
	}
	if !msg.res.Success {
		a.err = fmt.Sprintf("could not load post %d: %s", msg.id, msg.res.Error)
		if a.screen == ScreenPost {
			if _, ok := a.postView.Post(); !ok {
				a.screen = ScreenPosts
			}
		}
		return a, nil
	}
	a.postView.SetPost(*msg.res.Value)
	return a, nil
}

func (a *App) handleMutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	if !msg.res.Success {
		a.err = fmt.Sprintf("%s failed: %s", msg.op, msg.res.Message)
		if a.screen == ScreenEditor && a.editor != nil {
			return a, a.editor.Reopen()
		}
		return a, nil
	}

	text := msg.res.Message
	switch msg.op {
	case "create":
		if text == "" {
			text = "Post published"
		}
		a.editor = nil
		a.screen = ScreenPosts
		a.flash(text, widgets.StatusOK)
		return a, a.reload()
	case "update":
		if text == "" {
			text = "Post updated"
		}
		a.editor = nil
		a.screen = a.returnTo
		a.flash(text, widgets.StatusOK)
		if a.screen == ScreenPost {
			return a, tea.Batch(a.reload(), a.fetchPost(msg.id))
		}
		return a, a.reload()
	case "delete":
		if text == "" {
			text = "Post deleted"
		}
		a.screen = ScreenPosts
		a.flash(text, widgets.StatusOK)
		return a, a.reload()
	case "like":
		if text == "" {
			text = "Liked"
		}
		a.flash(text, widgets.StatusOK)
	}
	return a, nil
}

func (a *App) handleAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, auth.ErrSuperseded) {
		return a, nil
	}
	if msg.err != nil {
		// The controller has put the message on the session
		return a, nil
	}

	if msg.mode == auth.ModeRegister {
		if a.authForm == nil {
			return a, nil
		}
		name := msg.username
		if msg.register != nil && msg.register.Username != "" {
			name = msg.register.Username
		}
		cmd := a.authForm.Reset(auth.ModeLogin, name)
		a.auth.SwitchMode(auth.ModeLogin)
		a.authForm.SetNotice(fmt.Sprintf("Welcome, %s. Sign in to continue", name))
		return a, cmd
	}

	name := msg.username
	if msg.login != nil && msg.login.Username != "" {
		name = msg.login.Username
	}
	a.authForm = nil
	a.screen = a.returnTo
	a.flash(fmt.Sprintf("Welcome back, %s", name), widgets.StatusOK)

	if next := a.afterLogin; next != nil {
		a.afterLogin = nil
		return a, next()
	}
	return a, nil
}

// reload fetches the post list
func (a *App) reload() tea.Cmd {
	spin := a.list.SetLoading(true)
	ctx := a.ctx
	return tea.Batch(spin, func() tea.Msg {
		return postsLoadedMsg{res: a.posts.List(ctx)}
	})
}

func (a *App) openPost(id int64) tea.Cmd {
	if p, ok := a.postView.Post(); !ok || p.ID != id {
		a.postView = postview.New(a.contentWidth(), a.contentHeight(), true)
	}
	a.screen = ScreenPost
	a.viewing = id
	return a.fetchPost(id)
}

func (a *App) fetchPost(id int64) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return postLoadedMsg{id: id, res: a.posts.Get(ctx, id)}
	}
}

func (a *App) savePost(msg editor.SavedMsg) tea.Cmd {
	ctx := a.ctx
	if msg.ID == 0 {
		return func() tea.Msg {
			return mutationDoneMsg{op: "create", res: a.posts.Create(ctx, msg.Request)}
		}
	}
	return func() tea.Msg {
		return mutationDoneMsg{op: "update", id: msg.ID, res: a.posts.Update(ctx, msg.ID, msg.Request)}
	}
}

func (a *App) deletePost(id int64) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return mutationDoneMsg{op: "delete", id: id, res: a.posts.Delete(ctx, id)}
	}
}

func (a *App) likePost(id int64) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return mutationDoneMsg{op: "like", id: id, res: a.posts.Like(ctx, id)}
	}
}

func (a *App) submitAuth(msg authform.SubmitMsg) tea.Cmd {
	ctx := a.ctx
	creds := msg.Credentials
	if msg.Mode == auth.ModeRegister {
		return func() tea.Msg {
			resp, err := a.auth.Register(ctx, creds)
			return authDoneMsg{mode: auth.ModeRegister, username: creds.Username, register: resp, err: err}
		}
	}
	return func() tea.Msg {
		resp, err := a.auth.Login(ctx, creds)
		return authDoneMsg{mode: auth.ModeLogin, username: creds.Username, login: resp, err: err}
	}
}

// logout resets the session right away; the result only reports storage
func (a *App) logout() tea.Cmd {
	err := a.auth.Logout(a.ctx)
	return func() tea.Msg { return logoutDoneMsg{err: err} }
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenPosts:
		content = a.list.View()
	case ScreenPost:
		content = a.postView.View()
	case ScreenEditor:
		if a.editor != nil {
			content = a.editor.View()
		}
	case ScreenAuth:
		if a.authForm != nil {
			content = a.authForm.View()
		}
	}

	return a.wrapWithFrame(a.renderBanner() + content)
}

// renderBanner shows the current error, notice and celebration
func (a *App) renderBanner() string {
	var parts []string

	if st := a.session.Snapshot(); st.HasError() {
		parts = append(parts, styles.ErrorBanner.Render(icons.Critical.String()+" "+st.Error+"  "+a.dismissHint()))
	}
	if a.err != "" {
		parts = append(parts, styles.ErrorBanner.Render(icons.Critical.String()+" "+a.err+"  "+a.dismissHint()))
	}
	if a.pendingDelete != 0 {
		parts = append(parts, styles.StatusWarning.Render(
			fmt.Sprintf("%s Delete post #%d? press y to confirm", icons.Warning.String(), a.pendingDelete)))
	}
	if a.celebration.Active() {
		parts = append(parts, a.celebration.View())
	} else if a.notice != nil && a.screen != ScreenAuth {
		parts = append(parts, widgets.StatusText(a.notice.text, a.notice.level))
	}

	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n") + "\n\n"
}

func (a *App) dismissHint() string {
	if a.screen == ScreenAuth {
		return "(ctrl+x dismiss)"
	}
	return "(x dismiss)"
}

// frameWidth is the width of the header and footer
func (a *App) frameWidth() int {
	// width-1 prevents wrapping on terminals that reserve the last column
	return max(a.width-1, minTerminalWidth)
}

// contentWidth is the width left for a screen inside the frame
func (a *App) contentWidth() int {
	return a.frameWidth() - 2
}

// contentHeight calculates the height available below the header
func (a *App) contentHeight() int {
	return max(a.height-frameOverhead, 10)
}

func (a *App) resize() {
	width, height := a.contentWidth(), a.contentHeight()
	a.list.SetSize(width, height)
	a.postView.SetSize(width, height)
	a.celebration.SetWidth(width)
	if a.editor != nil {
		a.editor.SetSize(width, height)
	}
	if a.authForm != nil {
		a.authForm.SetWidth(width)
	}
}

// renderHeader creates the header bar with app branding and the session badge
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Quill"))
	rightText := " " + widgets.SessionBadge(a.session.Snapshot()) + " "

	fillWidth := max(0, width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText)) // -4 for ╭─ and ─╮
	fill := borderStyle.Render(strings.Repeat("─", fillWidth))

	return borderStyle.Render("╭─") + leftText + fill + rightText + borderStyle.Render("─╮")
}

// shortcuts lists the keys shown in the footer for the current screen
func (a *App) shortcuts() []string {
	st := a.session.Snapshot()
	account := "s Sign-in"
	if st.Authenticated {
		account = "o Sign-out"
	}

	var keys []string
	switch a.screen {
	case ScreenPosts:
		keys = []string{"↑↓ Navigate", "Enter Read", "n New", "e Edit", "d Delete", "l Like", "r Refresh", account, "q Quit"}
	case ScreenPost:
		keys = []string{"↑↓ Scroll", "e Edit", "d Delete", "l Like", "b Back", account, "q Quit"}
	case ScreenEditor:
		keys = []string{"Tab Next", "Enter Save", "Esc Discard"}
	case ScreenAuth:
		keys = []string{"Enter Submit", "ctrl+t Switch", "Esc Back"}
	}
	if a.pendingDelete != 0 {
		keys = []string{"y Confirm", "any Cancel"}
	}
	return keys
}

// renderFooter creates the footer with keyboard shortcuts
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)

	// Drop shortcuts from the end until they fit
	shortcuts := a.shortcuts()
	for len(shortcuts) > 0 && lipgloss.Width(" "+strings.Join(shortcuts, "  ")) > width-4 {
		shortcuts = shortcuts[:len(shortcuts)-1]
	}

	var styled []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styled = append(styled, s)
		}
	}

	leftText := " " + strings.Join(styled, "  ")
	leftPlain := " " + strings.Join(shortcuts, "  ")
	fillWidth := max(0, width-4-lipgloss.Width(leftPlain)) // -4 for ╰─ and ─╯

	return borderStyle.Render("╰─") + leftText + borderStyle.Render(strings.Repeat("─", fillWidth)+"─╯")
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI and blocks until the user quits
func Run(ctx context.Context, deps Deps) error {
	app := New(ctx, deps)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	// Observers fire from request goroutines; Send must not block them
	app.send = func(msg tea.Msg) { go p.Send(msg) }
	unsubscribe := deps.Session.Subscribe(func(session.State) {
		go p.Send(sessionChangedMsg{})
	})
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

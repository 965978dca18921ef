// ABOUTME: Sign-in and registration form as a bubbletea model
// ABOUTME: Wraps a huh form and hands credentials to the app on submit

package authform

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/quill/internal/auth"
	"github.com/markalston/quill/internal/tui/icons"
	"github.com/markalston/quill/internal/tui/styles"
)

// SubmitMsg carries the credentials entered by the user
type SubmitMsg struct {
	Mode        auth.Mode
	Credentials auth.Credentials
}

// ModeSwitchedMsg is sent when the user toggles between login and register
type ModeSwitchedMsg struct {
	Mode auth.Mode
}

// CancelledMsg is sent when the user leaves the form
type CancelledMsg struct{}

// Form collects a username and password
type Form struct {
	mode     auth.Mode
	username string
	password string
	notice   string
	width    int
	form     *huh.Form
}

// New creates a form in mode with username prefilled
func New(mode auth.Mode, username string) *Form {
	f := &Form{mode: mode, username: username, width: 60}
	f.form = f.build()
	return f
}

func (f *Form) build() *huh.Form {
	mode := f.mode
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key(auth.FieldUsername).
				Title("Username").
				Placeholder("your name").
				CharLimit(64).
				Value(&f.username).
				Validate(func(s string) error {
					return fieldError(auth.ValidateField(mode, auth.FieldUsername, s))
				}),
			huh.NewInput().
				Key(auth.FieldPassword).
				Title("Password").
				EchoMode(huh.EchoModePassword).
				CharLimit(128).
				Value(&f.password).
				Validate(func(s string) error {
					return fieldError(auth.ValidateField(mode, auth.FieldPassword, s))
				}),
		).Title(title(mode)).
			Description(description(mode)),
	).WithTheme(styles.FormTheme()).
		WithWidth(f.width).
		WithShowHelp(false)
}

// fieldError strips the field prefix so the form shows just the message
func fieldError(err error) error {
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		return errors.New(verr.Message)
	}
	return err
}

func title(mode auth.Mode) string {
	if mode == auth.ModeRegister {
		return icons.New.String() + " Create account"
	}
	return icons.Login.String() + " Sign in"
}

func description(mode auth.Mode) string {
	if mode == auth.ModeRegister {
		return "Pick a username (3+ characters) and a password (6+ characters)"
	}
	return "Sign in to write, edit and like posts"
}

// Mode returns which form is showing
func (f *Form) Mode() auth.Mode {
	return f.mode
}

// Username returns the username currently entered
func (f *Form) Username() string {
	return f.username
}

// SetNotice shows an informational line above the form
func (f *Form) SetNotice(notice string) {
	f.notice = notice
}

// SetWidth sets the form width
func (f *Form) SetWidth(width int) {
	if width > 0 {
		f.width = width
		f.form = f.form.WithWidth(width)
	}
}

// Reset rebuilds the form in mode, keeping username. The password is
// always cleared.
func (f *Form) Reset(mode auth.Mode, username string) tea.Cmd {
	f.mode = mode
	f.username = username
	f.password = ""
	f.form = f.build()
	return f.form.Init()
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return f, func() tea.Msg { return CancelledMsg{} }
		case "ctrl+t":
			return f, f.toggle()
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	switch f.form.State {
	case huh.StateCompleted:
		return f, f.submit()
	case huh.StateAborted:
		return f, func() tea.Msg { return CancelledMsg{} }
	}
	return f, cmd
}

// toggle switches between login and register
func (f *Form) toggle() tea.Cmd {
	next := auth.ModeRegister
	if f.mode == auth.ModeRegister {
		next = auth.ModeLogin
	}
	f.notice = ""
	initCmd := f.Reset(next, f.username)
	return tea.Batch(initCmd, func() tea.Msg { return ModeSwitchedMsg{Mode: next} })
}

// submit emits the credentials and readies a fresh form for a retry
func (f *Form) submit() tea.Cmd {
	msg := f.submission()
	initCmd := f.Reset(f.mode, msg.Credentials.Username)
	return tea.Batch(initCmd, func() tea.Msg { return msg })
}

func (f *Form) submission() SubmitMsg {
	return SubmitMsg{
		Mode:        f.mode,
		Credentials: auth.Credentials{Username: strings.TrimSpace(f.username), Password: f.password},
	}
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder

	if f.notice != "" {
		sb.WriteString(styles.StatusOK.Render(icons.CheckOK.String() + " " + f.notice))
		sb.WriteString("\n\n")
	}

	sb.WriteString(f.form.View())
	sb.WriteString("\n")

	other := "register"
	if f.mode == auth.ModeRegister {
		other = "sign in"
	}
	help := styles.KeyStyle.Render("enter") + " next  " +
		styles.KeyStyle.Render("ctrl+t") + " " + other + "  " +
		styles.KeyStyle.Render("esc") + " back"
	sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render(help))

	return sb.String()
}

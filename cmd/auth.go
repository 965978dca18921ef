// ABOUTME: Login, register, logout and whoami commands
// ABOUTME: Drive the auth controller and report the resulting session

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/markalston/quill/internal/auth"
	"github.com/markalston/quill/internal/session"
)

var (
	authUsername      string
	authPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	Long:  `Sign in to the blog backend. The token is stored in the config directory and used by later commands.`,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int { return runLogin(ctx, os.Stdin, os.Stdout) })
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long:  `Create an account on the blog backend. Run "quill login" afterwards to sign in.`,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int { return runRegister(ctx, os.Stdin, os.Stdout) })
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int { return runLogout(ctx, os.Stdout) })
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int { return runWhoami(ctx, os.Stdout) })
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&authUsername, "username", "u", "", "Username (prompted when omitted)")
		c.Flags().BoolVar(&authPasswordStdin, "password-stdin", false, "Read the password from stdin")
	}
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}

// runLogin signs in and returns exit code
func runLogin(ctx context.Context, in io.Reader, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer a.Close()

	creds, err := promptCredentials(in, w, authUsername, authPasswordStdin)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	resp, err := a.auth.Login(ctx, creds)
	if err != nil {
		return reportAuthError(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(map[string]any{
			"username": resp.Username,
			"roles":    resp.Roles,
		}))
	} else {
		fmt.Fprintf(w, "Welcome back, %s!\n", resp.Username)
	}
	return exitOK
}

// runRegister creates an account and returns exit code
func runRegister(ctx context.Context, in io.Reader, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer a.Close()

	creds, err := promptCredentials(in, w, authUsername, authPasswordStdin)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	resp, err := a.auth.Register(ctx, creds)
	if err != nil {
		return reportAuthError(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(resp))
		return exitOK
	}
	msg := resp.Message
	if msg == "" {
		msg = "registration successful"
	}
	fmt.Fprintf(w, "%s. Run \"quill login -u %s\" to sign in.\n", msg, creds.Username)
	return exitOK
}

// runLogout forgets the identity and returns exit code
func runLogout(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer a.Close()

	if err := a.auth.Logout(ctx); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(a.session.Snapshot()))
	} else {
		fmt.Fprintln(w, "Logged out.")
	}
	return exitOK
}

// runWhoami reports the restored session and returns exit code
func runWhoami(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer a.Close()

	st := a.session.Snapshot()
	var expires time.Time
	if id, err := a.identities.Load(ctx); err == nil && id != nil {
		expires, _ = auth.TokenExpiry(id.Token)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatWhoamiJSON(a.cfg.APIURL, st, expires))
	} else {
		fmt.Fprintln(w, formatWhoamiHuman(a.cfg.APIURL, st, expires))
	}
	if !st.Authenticated {
		return exitRejected
	}
	return exitOK
}

// reportAuthError prints err and maps it to an exit code
func reportAuthError(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)

	var aerr *auth.Error
	if errors.As(err, &aerr) && aerr.Transport {
		return exitError
	}
	return exitRejected
}

// formatWhoamiHuman formats the session for human readability
func formatWhoamiHuman(url string, st session.State, expires time.Time) string {
	if !st.Authenticated {
		return fmt.Sprintf("Backend:   %s\nNot logged in.", url)
	}
	roles := strings.Join(st.User.Roles, ", ")
	if roles == "" {
		roles = "none"
	}
	out := fmt.Sprintf(`Backend:   %s
Username:  %s
Roles:     %s`, url, st.User.Username, roles)
	if !expires.IsZero() {
		out += "\nExpires:   " + expires.Local().Format(time.RFC1123)
	}
	return out
}

// formatWhoamiJSON formats the session as JSON
func formatWhoamiJSON(url string, st session.State, expires time.Time) string {
	output := map[string]any{
		"backend":       url,
		"authenticated": st.Authenticated,
	}
	if st.User != nil {
		output["username"] = st.User.Username
		output["roles"] = st.User.Roles
	}
	if !expires.IsZero() {
		output["expires"] = expires.UTC().Format(time.RFC3339)
	}
	return formatJSON(output)
}

func formatJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}

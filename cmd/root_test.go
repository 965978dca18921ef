// ABOUTME: Tests for the root command and global flag handling
// ABOUTME: Verifies environment variable and flag configuration

package cmd

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markalston/quill/internal/client"
	"github.com/markalston/quill/internal/testutil/fakeapi"
)

// resetFlags isolates a test from the package-level flag variables and the
// caller's environment
func resetFlags(t *testing.T) {
	t.Helper()
	for _, key := range []string{"QUILL_API_URL", "QUILL_STORE", "QUILL_CONFIG_DIR", "QUILL_HTTP_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT"} {
		// Setenv restores the original value on cleanup
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	apiURL, jsonOutput, storeKind, verbose = "", false, "", false
	configDir = t.TempDir()
	authUsername, authPasswordStdin = "", false
	postTitle, postContent, postFile = "", "", ""
	t.Cleanup(func() {
		apiURL, jsonOutput, storeKind, configDir, verbose = "", false, "", "", false
		authUsername, authPasswordStdin = "", false
		postTitle, postContent, postFile = "", "", ""
	})
}

// withBackend points the CLI at a fresh fake backend using a file store in
// a temporary config directory
func withBackend(t *testing.T, opts ...fakeapi.Option) *fakeapi.Server {
	t.Helper()
	resetFlags(t)
	srv := fakeapi.New(opts...)
	t.Cleanup(srv.Close)
	apiURL = srv.APIURL()
	storeKind = "file"
	return srv
}

// loginAs signs in through the login command
func loginAs(t *testing.T, username, password string) {
	t.Helper()
	authUsername, authPasswordStdin = username, true
	defer func() { authUsername, authPasswordStdin = "", false }()

	var out bytes.Buffer
	code := runLogin(context.Background(), strings.NewReader(password+"\n"), &out)
	require.Equal(t, exitOK, code, out.String())
}

func TestGetAPIURL_Default(t *testing.T) {
	resetFlags(t)

	assert.Equal(t, client.DefaultBaseURL, GetAPIURL())
}

func TestGetAPIURL_FromEnv(t *testing.T) {
	resetFlags(t)
	t.Setenv("QUILL_API_URL", "http://backend.example.com/api/")

	assert.Equal(t, "http://backend.example.com/api", GetAPIURL())
}

func TestGetAPIURL_FlagOverridesEnv(t *testing.T) {
	resetFlags(t)
	t.Setenv("QUILL_API_URL", "http://backend.example.com/api")
	apiURL = "http://flag-override.example.com/api"

	assert.Equal(t, "http://flag-override.example.com/api", GetAPIURL())
}

func TestJSONOutput(t *testing.T) {
	resetFlags(t)
	jsonOutput = true

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}

func TestOpenApp_UnknownStore(t *testing.T) {
	resetFlags(t)
	storeKind = "floppy"

	_, err := openApp(context.Background(), false)
	assert.ErrorContains(t, err, "floppy")
}

func TestOpenApp_WiresCollaborators(t *testing.T) {
	resetFlags(t)
	storeKind = "memory"

	a, err := openApp(context.Background(), false)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.auth)
	assert.NotNil(t, a.posts)
	assert.False(t, a.session.Snapshot().Authenticated)
	assert.Equal(t, client.DefaultBaseURL, a.client.BaseURL())
}

func TestFailureCode(t *testing.T) {
	assert.Equal(t, exitError, failureCode(true))
	assert.Equal(t, exitRejected, failureCode(false))
}

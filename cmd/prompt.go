// ABOUTME: Interactive prompts for credentials and post content
// ABOUTME: Reads passwords without echo when attached to a terminal

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/markalston/quill/internal/auth"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// stdinIsTerminal is a test seam for terminal detection
var stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// readLine reads a single line, trimming the newline. A final line without
// a newline is returned as is.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptCredentials asks for whatever is missing. The password comes from
// the terminal without echo unless passwordStdin is set or stdin is not a
// terminal, in which case one line is read from in.
func promptCredentials(in io.Reader, w io.Writer, username string, passwordStdin bool) (auth.Credentials, error) {
	reader := bufio.NewReader(in)

	if username == "" {
		if _, err := fmt.Fprint(w, "Username: "); err != nil {
			return auth.Credentials{}, err
		}
		line, err := readLine(reader)
		if err != nil {
			return auth.Credentials{}, fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}

	var pw []byte
	if passwordStdin || !stdinIsTerminal() {
		line, err := readLine(reader)
		if err != nil {
			return auth.Credentials{}, fmt.Errorf("read password: %w", err)
		}
		pw = []byte(line)
	} else {
		fmt.Fprint(w, "Password: ")
		var err error
		pw, err = readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return auth.Credentials{}, fmt.Errorf("read password: %w", err)
		}
	}

	creds := auth.Credentials{Username: username, Password: string(pw)}
	wipe(pw)
	return creds, nil
}

// readContent returns inline content, the content of path, or stdin when
// path is "-"
func readContent(in io.Reader, inline, path string) (string, error) {
	if path == "" {
		return inline, nil
	}
	if path == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

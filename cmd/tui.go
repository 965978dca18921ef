// ABOUTME: TUI subcommand launching the interactive interface
// ABOUTME: Shares the storage, session and services wired for every command

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/markalston/quill/internal/tui"
)

// runProgram is a test seam for tui.Run
var runProgram = tui.Run

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI",
	Long: `Launch the interactive terminal interface to browse, read, write and like posts.

Logs go to debug.log in the config directory while the TUI owns the terminal.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int { return runTUI(ctx, os.Stderr) })
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUI runs the interactive interface and returns exit code
func runTUI(ctx context.Context, w io.Writer) int {
	if verbose {
		fmt.Fprintln(w, "Warning: --verbose is ignored by the TUI, see debug.log instead")
	}

	// Stderr logging would draw over the interface
	a, err := openApp(ctx, false)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer a.Close()

	err = runProgram(ctx, tui.Deps{
		Auth:    a.auth,
		Posts:   a.posts,
		Session: a.session,
		Logger:  a.logger,
	})
	if err != nil {
		a.logger.Error("tui exited with error", "error", err)
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// ABOUTME: Entry point for the quill CLI
// ABOUTME: Terminal client for a blog REST backend

package main

import (
	"fmt"
	"os"

	"github.com/markalston/quill/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

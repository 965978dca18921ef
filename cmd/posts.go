// ABOUTME: Posts command group for the quill CLI
// ABOUTME: Lists, shows, creates, edits, deletes and likes blog posts

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/markalston/quill/internal/client"
	"github.com/markalston/quill/internal/posts"
	"github.com/markalston/quill/internal/tui/postview"
)

// maxParallelFetches bounds concurrent requests for posts show
const maxParallelFetches = 4

var (
	postTitle   string
	postContent string
	postFile    string
)

// stdoutIsTerminal is a test seam for terminal detection
var stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List, read and write blog posts",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all posts",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int { return runPostsList(ctx, os.Stdout) })
	},
}

var postsShowCmd = &cobra.Command{
	Use:   "show ID [ID...]",
	Short: "Show one or more posts with rendered markdown",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int { return runPostsShow(ctx, os.Stdout, args) })
	},
}

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new post",
	Long:  `Publish a new post. Content comes from --content, or from --file (use - for stdin).`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int { return runPostsCreate(ctx, os.Stdin, os.Stdout) })
	},
}

var postsEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change the title or content of a post",
	Long:  `Change the title or content of a post. Fields that are not given keep their current value.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int {
			return runPostsEdit(ctx, os.Stdin, os.Stdout, args[0], cmd.Flags().Changed("title"), cmd.Flags().Changed("content"))
		})
	},
}

var postsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int { return runPostsDelete(ctx, os.Stdout, args[0]) })
	},
}

var postsLikeCmd = &cobra.Command{
	Use:   "like ID",
	Short: "Like a post",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int { return runPostsLike(ctx, os.Stdout, args[0]) })
	},
}

func init() {
	for _, c := range []*cobra.Command{postsCreateCmd, postsEditCmd} {
		c.Flags().StringVarP(&postTitle, "title", "t", "", "Post title")
		c.Flags().StringVarP(&postContent, "content", "c", "", "Post content (markdown)")
		c.Flags().StringVarP(&postFile, "file", "f", "", "Read content from a file, - for stdin")
		c.MarkFlagsMutuallyExclusive("content", "file")
	}
	postsCreateCmd.MarkFlagRequired("title")

	postsCmd.AddCommand(postsListCmd, postsShowCmd, postsCreateCmd, postsEditCmd, postsDeleteCmd, postsLikeCmd)
	rootCmd.AddCommand(postsCmd)
}

// runPostsList prints every post and returns exit code
func runPostsList(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer a.Close()

	res := a.posts.List(ctx)
	if !res.Success {
		return reportResult(w, res.Error, res.Transport)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(*res.Value))
	} else {
		fmt.Fprintln(w, formatPostsTable(*res.Value))
	}
	return exitOK
}

// runPostsShow fetches the given posts concurrently and prints them in
// argument order
func runPostsShow(ctx context.Context, w io.Writer, args []string) int {
	ids, err := parseIDs(args)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer a.Close()

	results := make([]client.Result[posts.Post], len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = a.posts.Get(gctx, id)
			return nil
		})
	}
	g.Wait()

	exitCode := exitOK
	var found []posts.Post
	for i, res := range results {
		if !res.Success {
			fmt.Fprintf(w, "Error: post %d: %s\n", ids[i], res.Error)
			exitCode = max(exitCode, failureCode(res.Transport))
			continue
		}
		found = append(found, *res.Value)
	}

	if IsJSONOutput() {
		if len(found) > 0 {
			fmt.Fprintln(w, formatJSON(found))
		}
		return exitCode
	}

	for i, p := range found {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, formatPostHuman(p, stdoutIsTerminal()))
	}
	return exitCode
}

// runPostsCreate publishes a post and returns exit code
func runPostsCreate(ctx context.Context, in io.Reader, w io.Writer) int {
	content, err := readContent(in, postContent, postFile)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer a.Close()

	if !requireLogin(a, w) {
		return exitRejected
	}
	return reportMutation(w, "Created", a.posts.Create(ctx, posts.Request{Title: postTitle, Content: content}))
}

// runPostsEdit updates a post. Fields not given on the command line keep
// the value currently stored by the backend.
func runPostsEdit(ctx context.Context, in io.Reader, w io.Writer, arg string, titleSet, contentSet bool) int {
	id, err := parseID(arg)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer a.Close()

	if !requireLogin(a, w) {
		return exitRejected
	}

	current := a.posts.Get(ctx, id)
	if !current.Success {
		return reportResult(w, current.Error, current.Transport)
	}

	req := posts.Request{Title: current.Value.Title, Content: current.Value.Content}
	if titleSet {
		req.Title = postTitle
	}
	switch {
	case postFile != "":
		if req.Content, err = readContent(in, "", postFile); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitError
		}
	case contentSet:
		req.Content = postContent
	}

	return reportMutation(w, "Updated", a.posts.Update(ctx, id, req))
}

// runPostsDelete removes a post and returns exit code
func runPostsDelete(ctx context.Context, w io.Writer, arg string) int {
	id, err := parseID(arg)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer a.Close()

	if !requireLogin(a, w) {
		return exitRejected
	}
	return reportMutation(w, "Deleted", a.posts.Delete(ctx, id))
}

// runPostsLike likes a post and returns exit code
func runPostsLike(ctx context.Context, w io.Writer, arg string) int {
	id, err := parseID(arg)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer a.Close()

	return reportMutation(w, "Liked", a.posts.Like(ctx, id))
}

// requireLogin reports whether the session is authenticated and prints a
// hint otherwise
func requireLogin(a *app, w io.Writer) bool {
	if a.session.Snapshot().Authenticated {
		return true
	}
	fmt.Fprintln(w, `Error: not logged in, run "quill login" first`)
	return false
}

// reportMutation prints the outcome of a mutating call and returns exit code
func reportMutation(w io.Writer, verb string, res posts.MutationResult) int {
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(res))
	} else if res.Success {
		msg := verb + "."
		if res.Message != "" {
			msg = verb + ": " + res.Message
		}
		fmt.Fprintln(w, msg)
	} else {
		fmt.Fprintf(w, "Error: %s\n", res.Message)
	}

	if !res.Success {
		return failureCode(res.Transport)
	}
	return exitOK
}

// reportResult prints a failed read and returns exit code
func reportResult(w io.Writer, msg string, transport bool) int {
	fmt.Fprintf(w, "Error: %s\n", msg)
	return failureCode(transport)
}

func failureCode(transport bool) int {
	if transport {
		return exitError
	}
	return exitRejected
}

// formatPostsTable formats posts as a table for human readability
func formatPostsTable(list []posts.Post) string {
	if len(list) == 0 {
		return "No posts yet."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "CREATED", "SUMMARY").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, p := range list {
		t.Row(strconv.FormatInt(p.ID, 10), p.Title, p.CreatedLabel(), p.Summary(40))
	}
	return t.String()
}

// formatPostHuman formats one post with a header and rendered markdown
func formatPostHuman(p posts.Post, tty bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d  %s\n", p.ID, p.Title)
	if label := p.CreatedLabel(); label != "" {
		fmt.Fprintf(&sb, "Created: %s\n", label)
	}
	sb.WriteString("\n")

	body, err := postview.RenderMarkdown(p.Content, 80, tty)
	if err != nil {
		body = p.Content
	}
	sb.WriteString(body)
	return sb.String()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post id %q", s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Package cli implements the quillpost command line client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/quillpost/quillpost-go/internal/client"
	"github.com/quillpost/quillpost-go/internal/model"
)

// ErrUsage is returned for unknown commands or bad flags.
var ErrUsage = errors.New("usage error")

// App runs one CLI command against an API client.
type App struct {
	client *client.Client
	in     *bufio.Reader
	out    io.Writer
}

// NewApp creates an App reading prompts from in and writing to out.
func NewApp(c *client.Client, in io.Reader, out io.Writer) *App {
	return &App{client: c, in: bufio.NewReader(in), out: out}
}

type command struct {
	name    string
	summary string
	auth    bool
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = []command{
	{"register", "create an account and sign in", false, (*App).register},
	{"login", "sign in with email and password", false, (*App).login},
	{"logout", "forget the local session", false, (*App).logout},
	{"whoami", "show the signed-in user", true, (*App).whoami},
	{"profile", "change username, email or password", true, (*App).profile},
	{"posts", "list all posts", true, (*App).posts},
	{"show", "show a post with its comments", true, (*App).show},
	{"post", "publish a new post", true, (*App).post},
	{"delete", "delete one of your posts", true, (*App).deletePost},
	{"comment", "comment on a post", true, (*App).comment},
	{"stats", "show your dashboard", true, (*App).stats},
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUsage
	}

	for _, cmd := range commands {
		if cmd.name != args[0] {
			continue
		}
		if cmd.auth && !a.client.Session().IsAuthenticated() {
			return fmt.Errorf("%w: run \"quillpost login\" first", client.ErrNotAuthenticated)
		}
		err := cmd.run(a, ctx, args[1:])
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.TokenRejected {
			return fmt.Errorf("%s; signed out, please log in again", apiErr.Message)
		}
		return err
	}

	a.usage()
	return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "usage: quillpost <command> [flags]")
	fmt.Fprintln(a.out)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, cmd := range commands {
		fmt.Fprintf(tw, "  %s\t%s\n", cmd.name, cmd.summary)
	}
	_ = tw.Flush()
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *App) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// ask returns value or prompts for it when empty.
func (a *App) ask(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	return promptText(a.in, a.out, prompt)
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	username := fs.String("username", "", "username (3+ characters)")
	email := fs.String("email", "", "email address")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	var req model.RegisterRequest
	var err error
	if req.Username, err = a.ask(*username, "Username"); err != nil {
		return err
	}
	if req.Email, err = a.ask(*email, "Email"); err != nil {
		return err
	}
	if req.Password, err = promptPassword(a.in, a.out, "Password"); err != nil {
		return err
	}

	user, err := a.client.Register(ctx, req)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(a.out, "Welcome, %s! You are signed in.\n", user.Username)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "email address")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	var req model.LoginRequest
	var err error
	if req.Email, err = a.ask(*email, "Email"); err != nil {
		return err
	}
	if req.Password, err = promptPassword(a.in, a.out, "Password"); err != nil {
		return err
	}

	user, err := a.client.Login(ctx, req)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(a.out, "Signed in as %s.\n", user.Username)
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func (a *App) whoami(ctx context.Context, _ []string) error {
	user, err := a.client.Me(ctx)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(a.out, "%s <%s> (id %d, joined %s)\n", user.Username, user.Email, user.ID, user.CreatedAt.Format("2006-01-02"))
	return nil
}

func (a *App) profile(ctx context.Context, args []string) error {
	current, err := a.client.Session().RequireAuth()
	if err != nil {
		return err
	}

	fs := a.flags("profile")
	username := fs.String("username", current.Username, "new username")
	email := fs.String("email", current.Email, "new email")
	changePassword := fs.Bool("password", false, "also change the password")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	req := model.UpdateProfileRequest{Username: *username, Email: *email}
	if req.CurrentPassword, err = promptPassword(a.in, a.out, "Current password"); err != nil {
		return err
	}
	if *changePassword {
		if req.NewPassword, err = promptPassword(a.in, a.out, "New password"); err != nil {
			return err
		}
		if req.ConfirmPassword, err = promptPassword(a.in, a.out, "Confirm new password"); err != nil {
			return err
		}
	}

	user, err := a.client.UpdateProfile(ctx, req)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(a.out, "Profile updated: %s <%s>\n", user.Username, user.Email)
	return nil
}

func (a *App) posts(ctx context.Context, _ []string) error {
	posts, err := a.client.ListPosts(ctx)
	if err != nil {
		return describe(err)
	}
	if len(posts) == 0 {
		fmt.Fprintln(a.out, "No posts yet.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tCREATED")
	for _, p := range posts {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", p.ID, p.Title, p.UserID, p.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func (a *App) show(ctx context.Context, args []string) error {
	fs := a.flags("show")
	id := fs.Int64("id", 0, "post id")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: -id is required", ErrUsage)
	}

	post, err := a.client.GetPost(ctx, *id)
	if err != nil {
		return describe(err)
	}
	comments, err := a.client.ListComments(ctx, *id)
	if err != nil {
		return describe(err)
	}

	fmt.Fprintf(a.out, "%s\n%s\n\n%s\n", post.Title, strings.Repeat("=", len(post.Title)), post.Content)
	fmt.Fprintf(a.out, "\n%d comment(s)\n", len(comments))
	for _, c := range comments {
		fmt.Fprintf(a.out, "- %s: %s\n", c.User.Username, c.Content)
	}
	return nil
}

func (a *App) post(ctx context.Context, args []string) error {
	fs := a.flags("post")
	title := fs.String("title", "", "post title")
	content := fs.String("content", "", "post body; prompted when empty")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	req := model.PostRequest{Title: *title, Content: *content}
	var err error
	if req.Title, err = a.ask(req.Title, "Title"); err != nil {
		return err
	}
	if req.Content == "" {
		if req.Content, err = promptMultiline(a.in, a.out, "Content"); err != nil {
			return err
		}
	}

	post, err := a.client.CreatePost(ctx, req)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(a.out, "Published post %d.\n", post.ID)
	return nil
}

func (a *App) deletePost(ctx context.Context, args []string) error {
	fs := a.flags("delete")
	id := fs.Int64("id", 0, "post id")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: -id is required", ErrUsage)
	}

	if err := a.client.DeletePost(ctx, *id); err != nil {
		return describe(err)
	}
	fmt.Fprintf(a.out, "Deleted post %d.\n", *id)
	return nil
}

func (a *App) comment(ctx context.Context, args []string) error {
	fs := a.flags("comment")
	postID := fs.Int64("post", 0, "post id")
	content := fs.String("content", "", "comment text")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *postID <= 0 {
		return fmt.Errorf("%w: -post is required", ErrUsage)
	}

	text, err := a.ask(*content, "Comment")
	if err != nil {
		return err
	}

	c, err := a.client.CreateComment(ctx, model.CommentRequest{PostID: *postID, Content: text})
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(a.out, "Comment %d added.\n", c.ID)
	return nil
}

func (a *App) stats(ctx context.Context, _ []string) error {
	stats, err := a.client.DashboardStats(ctx)
	if err != nil {
		return describe(err)
	}

	fmt.Fprintf(a.out, "Posts: %d\nComments: %d\n", stats.TotalPosts, stats.TotalComments)
	if len(stats.RecentPosts) > 0 {
		fmt.Fprintln(a.out, "Recent posts:")
		for _, p := range stats.RecentPosts {
			fmt.Fprintf(a.out, "  %d  %s\n", p.ID, p.Title)
		}
	}
	return nil
}

// describe appends per-field validation messages to API errors.
func describe(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Fields) < 2 {
		return err
	}

	msgs := make([]string, 0, len(apiErr.Fields))
	for _, field := range slices.Sorted(maps.Keys(apiErr.Fields)) {
		msgs = append(msgs, field+": "+apiErr.Fields[field])
	}
	return fmt.Errorf("%w [%s]", err, strings.Join(msgs, "; "))
}

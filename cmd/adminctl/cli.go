package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/articulink/admin-dashboard/apiclient"
	"github.com/articulink/admin-dashboard/guard"
	"github.com/articulink/admin-dashboard/internal/config"
	apperrors "github.com/articulink/admin-dashboard/internal/errors"
	"github.com/articulink/admin-dashboard/internal/utils"
	"github.com/articulink/admin-dashboard/login"
	"github.com/articulink/admin-dashboard/sessions"
)

const usage = `usage: adminctl [flags] <command> [command flags]

commands:
  login     sign in and store the session
  logout    forget the stored session
  whoami    show the stored session and check it with the backend
  users     list users (-role, -status, -skip, -limit)
  stats     show user counts

flags:
`

const adminRequiredMessage = "Admin access required"

// cli is one invocation of adminctl.
type cli struct {
	cfg    config.Config
	store  sessions.Store
	client *apiclient.Client
	in     *bufio.Reader
	out    io.Writer
}

type command func(ctx context.Context, c *cli, args []string) error

var commands = map[string]command{
	"login":  loginCommand,
	"logout": logoutCommand,
	"whoami": whoamiCommand,
	"users":  usersCommand,
	"stats":  statsCommand,
}

func run(ctx context.Context, cfg config.Config, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("adminctl", flag.ContinueOnError)
	fs.SetOutput(out)
	apiURL := fs.String("api", cfg.GetAPIBaseURL(), "ArticuLink backend base URL")
	sessionFile := fs.String("session-file", cfg.GetSessionFile(), "file holding the session")
	ephemeral := fs.Bool("ephemeral", false, "keep the session in memory only")
	fs.Usage = func() {
		fmt.Fprint(out, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("missing command: %w", apperrors.ErrInvalidRequest)
	}
	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fs.Usage()
		return fmt.Errorf("unknown command %q: %w", name, apperrors.ErrInvalidRequest)
	}

	var store sessions.Store = sessions.NewMemoryStore()
	if !*ephemeral {
		kv, err := sessions.NewFileKV(*sessionFile)
		if err != nil {
			return err
		}
		store = sessions.NewStore(kv)
	}
	client, err := apiclient.New(*apiURL, store, apiclient.WithTimeout(cfg.GetHTTPTimeout()))
	if err != nil {
		return err
	}

	c := &cli{cfg: cfg, store: store, client: client, in: bufio.NewReader(in), out: out}
	defer client.OnInvalidated(func(inv apiclient.Invalidation) {
		fmt.Fprintf(out, "Session ended by the backend (%s). Run adminctl login.\n", inv.Reason)
	})()

	return cmd(ctx, c, fs.Args()[1:])
}

func loginCommand(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(c.out)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		*email = c.prompt("Email: ")
	}
	if *password == "" {
		*password = c.prompt("Password: ")
	}

	flow, err := login.New(c.store, c.client.Auth())
	if err != nil {
		return err
	}
	res, err := flow.Submit(ctx, *email, *password)
	if err != nil {
		return apperrors.New(login.BannerMessage(err))
	}
	if res.User != nil {
		fmt.Fprintf(c.out, "Logged in as %s (%s)\n", res.User.DisplayName(), res.User.Role)
		if !res.User.IsAdmin() {
			fmt.Fprintln(c.out, "Note: this account is not an admin; user management commands will be refused.")
		}
		return nil
	}
	fmt.Fprintln(c.out, "Logged in")
	return nil
}

func logoutCommand(_ context.Context, c *cli, _ []string) error {
	if _, err := login.Logout(c.store); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Logged out")
	return nil
}

func whoamiCommand(ctx context.Context, c *cli, _ []string) error {
	s := sessions.Snapshot(c.store)
	if !s.Authenticated() {
		fmt.Fprintln(c.out, "Not logged in")
		return nil
	}
	if claims, err := sessions.ParseClaims(s.AccessToken); err == nil {
		fmt.Fprintf(c.out, "Token for %s (%s)", claims.Email, claims.Role)
		if !claims.ExpiresAt.IsZero() {
			state := "expires"
			if claims.Expired() {
				state = "expired"
			}
			fmt.Fprintf(c.out, ", %s %s", state, claims.ExpiresAt.Local().Format(time.RFC1123))
		}
		fmt.Fprintln(c.out)
	}

	policy, err := guard.ParsePolicy(c.cfg.GetGuardPolicy())
	if err != nil {
		return err
	}
	g, err := guard.New(policy)
	if err != nil {
		return err
	}
	d := g.Evaluate(ctx, c.store, c.client.Auth())
	fmt.Fprintf(c.out, "Session %s under %s policy\n", d.State, g.Policy())
	if d.User != nil {
		fmt.Fprintf(c.out, "Signed in as %s <%s>, role %s\n", d.User.DisplayName(), d.User.Email, d.User.Role)
	}
	if d.State == guard.StateUnauthorized && strings.Contains(d.Redirect, string(apiclient.ReasonAdminRequired)) {
		fmt.Fprintln(c.out, adminRequiredMessage)
	}
	return nil
}

func usersCommand(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("users", flag.ContinueOnError)
	fs.SetOutput(c.out)
	role := fs.String("role", "", "admin or user")
	status := fs.String("status", "", "active, inactive or pending")
	skip := fs.Int("skip", 0, "records to skip")
	limit := fs.Int("limit", 100, "records to return")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := c.client.Users().List(ctx, apiclient.UserFilter{Role: *role, Status: *status, Skip: *skip, Limit: *limit})
	if err != nil {
		return commandError(err)
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tSTATUS")
	for _, u := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.DisplayName(), u.Role, utils.Value(u.Status))
	}
	return tw.Flush()
}

func statsCommand(ctx context.Context, c *cli, _ []string) error {
	stats, err := c.client.Users().Stats(ctx)
	if err != nil {
		return commandError(err)
	}
	fmt.Fprintf(c.out, "Total users: %d\n", stats.TotalUsers)
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, group := range []struct {
		name   string
		counts map[string]int
	}{
		{"role", stats.ByRole},
		{"status", stats.ByStatus},
		{"deactivation", stats.ByDeactivationType},
	} {
		for _, k := range slices.Sorted(maps.Keys(group.counts)) {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", group.name, k, group.counts[k])
		}
	}
	return tw.Flush()
}

// commandError turns a backend error into the line printed to the user.
func commandError(err error) error {
	if inv, ok := apiclient.AsInvalidated(err); ok {
		if inv.Reason == apiclient.ReasonAdminRequired {
			return apperrors.New(adminRequiredMessage)
		}
		return apperrors.New("Session expired")
	}
	return apperrors.New(apiclient.Message(err))
}

func (c *cli) prompt(label string) string {
	fmt.Fprint(c.out, label)
	line, _ := c.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

// notes is the terminal client for the private notes API. It signs in to
// Supabase Auth (or uses a pre-issued token), lists the user's notes with
// search, and edits them with autosave.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/oauth2"

	"privatenotes/internal/client"
	"privatenotes/internal/tui"
	"privatenotes/pkg/logger"
)

type options struct {
	apiURL          string
	supabaseURL     string
	supabaseAnonKey string
	email           string
	password        string
	token           string
	logFile         string
	logLevel        string
	noFeed          bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(opts.logFile, opts.logLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := tokenSource(ctx, opts)
	if err != nil {
		return err
	}
	api, err := client.New(opts.apiURL, source)
	if err != nil {
		return err
	}

	var tuiOpts []tui.Option
	if !opts.noFeed {
		tuiOpts = append(tuiOpts, tui.WithFeed(api.Subscribe))
	}

	program := tea.NewProgram(tui.New(ctx, api, tuiOpts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	flagSet := pflag.NewFlagSet("notes", pflag.ContinueOnError)
	flagSet.StringVar(&opts.apiURL, "api-url", envOr("NOTES_API_URL", client.DefaultBaseURL), "notes API base URL")
	flagSet.StringVar(&opts.supabaseURL, "supabase-url", os.Getenv("SUPABASE_URL"), "Supabase project URL used to sign in")
	flagSet.StringVar(&opts.supabaseAnonKey, "supabase-anon-key", os.Getenv("SUPABASE_ANON_KEY"), "Supabase anon key")
	flagSet.StringVar(&opts.email, "email", os.Getenv("NOTES_EMAIL"), "account email")
	flagSet.StringVar(&opts.password, "password", "", "account password (default $NOTES_PASSWORD)")
	flagSet.StringVar(&opts.token, "token", os.Getenv("NOTES_TOKEN"), "use this access token instead of signing in")
	flagSet.StringVar(&opts.logFile, "log-file", "", "write JSON logs to this file (discarded when empty)")
	flagSet.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flagSet.BoolVar(&opts.noFeed, "no-live", false, "do not subscribe to the change feed")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: notes [flags]\n\n%s", flagSet.FlagUsages())
	}

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if flagSet.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}
	if opts.password == "" {
		opts.password = os.Getenv("NOTES_PASSWORD")
	}
	return opts, nil
}

// tokenSource picks the session credential: an explicit token wins,
// otherwise email and password sign in through Supabase Auth.
func tokenSource(ctx context.Context, opts *options) (oauth2.TokenSource, error) {
	if opts.token != "" {
		return client.StaticToken(opts.token), nil
	}
	if opts.email == "" {
		return nil, errors.New("either --token or --email is required")
	}
	if opts.supabaseURL == "" || opts.supabaseAnonKey == "" {
		return nil, errors.New("--supabase-url and --supabase-anon-key are required to sign in")
	}
	if opts.password == "" {
		return nil, errors.New("a password is required (--password or NOTES_PASSWORD)")
	}

	session := client.NewSupabaseSession(ctx, opts.supabaseURL, opts.supabaseAnonKey, opts.email, opts.password, nil)
	if _, err := session.Token(); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return session, nil
}

// setupLogging sends logs to a file so they do not tear the TUI.
func setupLogging(path, level string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger.InitWithWriter(f, level)
	return func() {
		logger.Sync()
		f.Close()
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

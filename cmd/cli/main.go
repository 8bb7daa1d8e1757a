package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/quillpost/quillpost-go/internal/cli"
	"github.com/quillpost/quillpost-go/internal/client"
)

func main() {
	_ = godotenv.Load()

	apiURL := flag.String("api", envOr("QUILLPOST_API_URL", "http://localhost:8080/api"), "API base URL")
	sessionPath := flag.String("session", os.Getenv("QUILLPOST_SESSION_DB"), "session database path")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: quillpost [-api url] [-session path] <command> [flags]")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *apiURL, *sessionPath, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, apiURL, sessionPath string, args []string) error {
	if sessionPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("locate config dir: %w", err)
		}
		sessionPath = filepath.Join(dir, "quillpost", "session.db")
	}
	if err := os.MkdirAll(filepath.Dir(sessionPath), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	store, err := client.OpenSQLiteStore(ctx, sessionPath)
	if err != nil {
		return err
	}
	defer store.Close()

	session, err := client.OpenSession(ctx, store)
	if err != nil {
		return err
	}

	c, err := client.New(apiURL, session)
	if err != nil {
		return err
	}

	return cli.NewApp(c, os.Stdin, os.Stdout).Run(ctx, args)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Package main provides the norikae command-line client. It runs place and
// route searches directly against Jorudan and mints bearer tokens for the
// API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/norikae/norikae/internal/app"
	"github.com/norikae/norikae/internal/auth"
	"github.com/norikae/norikae/internal/config"
	"github.com/norikae/norikae/internal/jorudan"
	"github.com/norikae/norikae/internal/search"
)

// Version is set at compile time via ldflags.
var Version = "dev"

const usage = `usage: norikae <command> [flags]

commands:
  places   search stations, bus stops and spots
  routes   search routes between two places
  token    mint a bearer token for the API server
  version  print the version
`

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	cfg, err := config.Load(os.Getenv("NORIKAE_CONFIG"))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).
		Level(zerolog.WarnLevel).
		With().
		Timestamp().
		Logger()

	switch args[0] {
	case "places":
		return runPlaces(ctx, cfg, log, args[1:], stdout, stderr)
	case "routes":
		return runRoutes(ctx, cfg, log, args[1:], stdout, stderr)
	case "token":
		return runToken(cfg, args[1:], stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, Version)
		return exitOK
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return exitUsage
	}
}

func runPlaces(ctx context.Context, cfg config.Config, log zerolog.Logger, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("places", flag.ContinueOnError)
	fs.SetOutput(stderr)
	query := fs.String("q", "", "partial place name (required)")
	maxTokens := fs.Int("max-tokens", cfg.Search.DefaultMaxTokens, "token budget for the output, 0 for unlimited")
	onlyName := fs.Bool("only-name", false, "print names only")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *query == "" {
		fmt.Fprintln(stderr, "places: -q is required")
		return exitUsage
	}

	svc := app.Build(cfg, app.Options{Logger: log}).Search
	text, err := svc.FindPlaces(ctx, search.PlaceQuery{
		Query:     *query,
		MaxTokens: *maxTokens,
		OnlyName:  *onlyName,
	})
	if err != nil {
		fmt.Fprintln(stdout, search.PlaceErrorText(err))
		return exitError
	}

	fmt.Fprintln(stdout, text)
	return exitOK
}

func runRoutes(ctx context.Context, cfg config.Config, log zerolog.Logger, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("routes", flag.ContinueOnError)
	fs.SetOutput(stderr)
	from := fs.String("from", "", "departure place (required)")
	to := fs.String("to", "", "arrival place (required)")
	modeName := fs.String("mode", "departure", "departure, arrival, first or last")
	datetime := fs.String("datetime", "", `"YYYY-MM-DD HH:MM" in Japan time, default now`)
	maxTokens := fs.Int("max-tokens", cfg.Search.DefaultMaxTokens, "token budget for the output, 0 for unlimited")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *from == "" || *to == "" {
		fmt.Fprintln(stderr, "routes: -from and -to are required")
		return exitUsage
	}

	mode, err := jorudan.ParseSearchMode(*modeName)
	if err != nil {
		fmt.Fprintf(stderr, "routes: %v\n", err)
		return exitUsage
	}

	svc := app.Build(cfg, app.Options{Logger: log}).Search
	text, err := svc.FindRoutes(ctx, search.RouteQuery{
		From:      *from,
		To:        *to,
		Mode:      mode,
		Datetime:  *datetime,
		MaxTokens: *maxTokens,
	})
	if err != nil {
		fmt.Fprintln(stdout, search.RouteErrorText(err))
		if errors.Is(err, search.ErrInvalidDatetime) {
			return exitUsage
		}
		return exitError
	}

	fmt.Fprintln(stdout, text)
	return exitOK
}

func runToken(cfg config.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(stderr)
	subject := fs.String("subject", "", "client identifier carried in the token (required)")
	ttl := fs.Duration("ttl", auth.DefaultTokenTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if cfg.Auth.JWTSigningKey == "" {
		fmt.Fprintln(stderr, "token: JWT_SIGNING_KEY is not configured")
		return exitError
	}

	svc := auth.NewJWTService(auth.JWTConfig{
		SigningKey: cfg.Auth.JWTSigningKey,
		TTL:        *ttl,
	})
	token, expiresAt, err := svc.GenerateAccessToken(*subject)
	if err != nil {
		fmt.Fprintf(stderr, "token: %v\n", err)
		if errors.Is(err, auth.ErrMissingSubject) {
			return exitUsage
		}
		return exitError
	}

	fmt.Fprintln(stdout, token)
	fmt.Fprintf(stderr, "expires at %s\n", expiresAt.UTC().Format("2006-01-02T15:04:05Z"))
	return exitOK
}

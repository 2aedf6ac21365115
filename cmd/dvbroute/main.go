// Package main provides the dvbroute command, which plans a single trip
// between two stops and prints it with transfer legs removed.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvbroute/dvbroute/internal/config"
	"github.com/dvbroute/dvbroute/internal/dump"
	"github.com/dvbroute/dvbroute/internal/telemetry"
	"github.com/dvbroute/dvbroute/internal/transit"
	"github.com/dvbroute/dvbroute/internal/transit/vvo"
)

// Version is set at compile time via ldflags.
var Version = "dev"

type options struct {
	from     string
	to       string
	at       string
	arrival  bool
	json     bool
	depth    int
	maxItems int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(1)
	}
}

// run plans one trip and writes it to stdout. Logs go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}).
		With().
		Timestamp().
		Logger()

	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(".env")
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return err
	}
	log = log.Level(cfg.LogLevel)

	req := transit.PlanRequest{
		Origin:        opts.from,
		Destination:   opts.to,
		IsArrivalTime: opts.arrival,
	}
	if opts.at != "" {
		req.Time, err = time.Parse(time.RFC3339, opts.at)
		if err != nil {
			log.Error().Err(err).Str("at", opts.at).Msg("invalid -at timestamp")
			return err
		}
	}

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "dvbroute",
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize telemetry")
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	svc := transit.NewService(transit.ServiceConfig{
		Provider: vvo.NewClient(vvo.ClientConfig{
			BaseURL:    cfg.VVOBaseURL,
			Timeout:    cfg.VVOTimeout,
			MaxRetries: cfg.VVOMaxRetries,
			Logger:     log,
		}),
		Logger:       log,
		StopCacheTTL: cfg.StopCacheTTL,
	})

	route, err := svc.Plan(ctx, req)
	if err != nil {
		log.Error().
			Err(err).
			Str("from", opts.from).
			Str("to", opts.to).
			Msg("failed to plan route")
		return err
	}

	if opts.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(route)
	}

	d := dump.New(dump.Config{Depth: opts.depth, MaxItems: opts.maxItems})
	if err := d.Fdump(stdout, route); err != nil {
		log.Error().Err(err).Msg("failed to write route")
		return err
	}
	return nil
}

func parseFlags(args []string, output io.Writer) (options, error) {
	defaults := dump.DefaultConfig()
	var opts options

	fs := flag.NewFlagSet("dvbroute", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.from, "from", "Königheim Dresden", "origin stop query")
	fs.StringVar(&opts.to, "to", "Riesa Bahnhof", "destination stop query")
	fs.StringVar(&opts.at, "at", "", "departure time as RFC 3339 (default now)")
	fs.BoolVar(&opts.arrival, "arrival", false, "treat -at as the arrival time")
	fs.BoolVar(&opts.json, "json", false, "print the full route as indented JSON")
	fs.IntVar(&opts.depth, "depth", defaults.Depth, "console dump nesting depth")
	fs.IntVar(&opts.maxItems, "max-items", defaults.MaxItems, "sequence elements shown per list in the console dump")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: dvbroute [flags]\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/docker/docker/client"

	"github.com/everydev1618/govisor/container"
	"github.com/everydev1618/govisor/internal/config"
	"github.com/everydev1618/govisor/internal/journal"
	"github.com/everydev1618/govisor/monitor"
)

const dialTimeout = 10 * time.Second

// commonFlags are shared by every subcommand that talks to the engine.
type commonFlags struct {
	config  *string
	verbose *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config:  fs.String("config", config.DefaultPath, "Path to visor.yaml"),
		verbose: fs.Bool("verbose", false, "Enable debug logging"),
	}
}

// env is what a subcommand needs once flags are parsed.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	docker *client.Client
	runner *container.Runner
}

func setup(ctx context.Context, flags commonFlags) *env {
	cfg, err := config.Load(*flags.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", *flags.config, err)
		os.Exit(1)
	}

	level, _ := cfg.Level()
	if *flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var cli *client.Client
	if cfg.DockerHost != "" {
		cli, err = container.NewClientAt(cfg.DockerHost)
	} else {
		cli, err = container.NewClient(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to Docker: %v\n", err)
		os.Exit(1)
	}

	runner := container.NewRunner(cli,
		container.WithLogger(logger),
		container.WithVersionKey(cfg.VersionKey),
		container.WithStopTimeout(cfg.StopTimeout),
	)

	return &env{cfg: cfg, logger: logger, docker: cli, runner: runner}
}

func (e *env) close() {
	e.docker.Close()
}

// progressSender builds the sender jobs report through: the journal when
// one is configured and the front-end when a core URL is set. The
// returned func releases both.
func (e *env) progressSender(ctx context.Context) (monitor.Sender, func()) {
	var senders monitor.Multi
	var closers []func() error

	if e.cfg.Journal != "" {
		j, err := journal.Open(e.cfg.Journal, e.logger)
		if err != nil {
			e.logger.Warn("journal unavailable", "path", e.cfg.Journal, "error", err)
		} else {
			senders = append(senders, j)
			closers = append(closers, j.Close)
		}
	}

	if e.cfg.Core.URL != "" {
		dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		ws, err := monitor.DialWebSocket(dialCtx, e.cfg.Core.URL, e.cfg.Core.Token, e.logger)
		cancel()
		if err != nil {
			e.logger.Warn("front-end unavailable, progress will not be relayed", "url", e.cfg.Core.URL, "error", err)
		} else {
			senders = append(senders, ws)
			closers = append(closers, ws.Close)
		}
	}

	return senders, func() {
		for _, c := range closers {
			c()
		}
	}
}

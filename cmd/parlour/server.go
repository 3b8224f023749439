package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/parlour/internal/games/catalog"
	"github.com/lox/parlour/internal/randutil"
	"github.com/lox/parlour/internal/server"
)

type ServerCmd struct {
	Config   string `default:"parlour.hcl" help:"Path to HCL config file"`
	LogLevel string `default:"" help:"Override configured log level (debug|info|warn|error)"`
	Seed     int64  `default:"0" help:"RNG seed, 0 derives one from the clock"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg.Server.LogLevel)

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := randutil.New(seed)

	hub := server.NewHub(cfg, logger, quartz.NewReal(), rng)
	srv := server.NewServer(cfg, logger, hub)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx)
	})

	logger.Info("server ready", "addr", cfg.ListenAddress(), "games", len(catalog.Types()))
	if err := g.Wait(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

type GamesCmd struct{}

func (c *GamesCmd) Run() error {
	for _, gameType := range catalog.Types() {
		info, _ := catalog.Lookup(gameType)
		kind := "head-to-head"
		if info.Lobby {
			kind = "lobby"
		}
		fmt.Printf("%-12s max %d players  %s\n", gameType, info.MaxPlayers, kind)
	}
	return nil
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"autotex/internal/annocache"
	"autotex/internal/compiler"
	"autotex/internal/config"
	"autotex/internal/daemon"
	"autotex/internal/logging"
	"autotex/internal/texlog"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	annotator, err := buildAnnotator(cfg)
	if err != nil {
		logger.Error("load annotation rules", logging.Error(err))
		return
	}

	var store *annocache.Store
	if cfg.Cache.Enabled {
		store, err = annocache.Open(cfg)
		if err != nil {
			logger.Error("open annotation cache", logging.Error(err))
			return
		}
	}

	client := compiler.NewClient(cfg)
	if !client.Configured() {
		logger.Warn("compiler service not configured; API will refuse compilation requests")
	}

	d, err := daemon.New(cfg, store, client, annotator, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("autotexd shutting down", slog.String("reason", "signal"))
}

// buildAnnotator loads any configured extra rules on top of the builtin set.
func buildAnnotator(cfg *config.Config) (*texlog.Annotator, error) {
	path := strings.TrimSpace(cfg.Annotator.RulesPath)
	if path == "" {
		return texlog.New()
	}
	extra, err := texlog.LoadRules(path)
	if err != nil {
		return nil, err
	}
	return texlog.New(extra...)
}

package main

import (
	"io"

	"github.com/danmuck/seedctl/internal/config"
	"github.com/danmuck/seedctl/internal/dispatch"
	"github.com/danmuck/seedctl/internal/logging"
	"github.com/danmuck/seedctl/internal/observability"
	"github.com/danmuck/seedctl/internal/seeds"
	"github.com/danmuck/seedctl/internal/tools"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const envConfigPath = "SEEDCTL_CONFIG"

type app struct {
	cfg        config.Config
	dispatcher *dispatch.Dispatcher
}

// loadApp resolves config and builds the dispatcher every subcommand shares.
// Logs go to stderr so stdout stays usable for JSON and stdio MCP.
func loadApp(configPath string, stderr io.Writer) (*app, error) {
	logging.Install(logging.ProfileRuntime, stderr)
	observability.InitLogger("seedctl")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
		zerolog.SetGlobalLevel(lvl)
	}

	runner := tools.ExecRunner{Timeout: cfg.CommandTimeout}
	registry := seeds.DefaultRegistry(runner, cfg.CommandOverrides())
	d := dispatch.New(dispatch.Options{
		Registry:     registry,
		WaitForLease: cfg.WaitForLease(),
		SkipSeeded:   cfg.SkipSeeded,
	})

	log.Debug().
		Str("config", configPath).
		Dur("command_timeout", cfg.CommandTimeout).
		Str("concurrency", cfg.Concurrency).
		Bool("skip_seeded", cfg.SkipSeeded).
		Msg("seedctl configured")
	return &app{cfg: cfg, dispatcher: d}, nil
}

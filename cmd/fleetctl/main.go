package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"dronefleet/cmd/config"
	"dronefleet/cmd/fleetctl/wire"
	"dronefleet/internal/fleet/cli"
	"dronefleet/internal/fleet/presentation"
	"dronefleet/internal/infra/node"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	logLevelMapping = map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
)

func main() {
	os.Exit(run())
}

func run() int {
	bindGlobalFlags()

	config := config.LoadConfig()

	level, ok := logLevelMapping[config.General.LogLevel]
	if !ok {
		level = slog.LevelWarn
	}
	baseHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{AddSource: true, Level: level, ReplaceAttr: slogReplaceAttr})
	handler := baseHandler.WithAttrs([]slog.Attr{slog.String("version", node.Version)})
	slog.SetDefault(slog.New(handler))
	slog.Debug("config loaded", "data", config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.Otel.Endpoint != "" {
		shutdownOtel := startOTel(ctx, config.Otel.Endpoint)
		defer func() {
			if err := shutdownOtel(); err != nil {
				slog.Warn("stopping OTel providers", slog.Any("error", err))
			}
		}()
	}

	app, err := wire.InitializeApp()
	if err != nil {
		slog.Error("initializing fleetctl", slog.Any("error", err))
		fmt.Fprintln(os.Stderr, presentation.UserMessage(err, ""))
		return cli.ExitFailure
	}

	return app.Run(ctx, pflag.Args())
}

// bindGlobalFlags parses the flags placed before the command. Everything from
// the command on is left to the command itself.
func bindGlobalFlags() {
	flags := pflag.CommandLine
	flags.SetInterspersed(false)
	flags.String("api-url", "", "base URL of the fleet API")
	flags.Duration("timeout", 0, "request timeout")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("session-backend", "", "memory, sqlite, postgres or redis")
	flags.String("session-dsn", "", "sqlite file or postgres connection string")
	flags.String("otel-endpoint", "", "OTLP gRPC collector address")
	pflag.Parse()

	bindings := map[string]string{
		"api.base_url":      "api-url",
		"api.timeout":       "timeout",
		"general.log_level": "log-level",
		"session.backend":   "session-backend",
		"session.dsn":       "session-dsn",
		"otel.endpoint":     "otel-endpoint",
	}
	for key, name := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Errorf("binding flag %s: %w", name, err))
		}
	}
}

func slogReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.SourceKey {
		source := a.Value.Any().(*slog.Source)
		source.File = filepath.Base(source.File)
		return slog.Any(a.Key, source)
	}
	return a
}

// Package cli implements the fleetctl commands on top of the fleet use cases.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"dronefleet/internal/fleet/domain"
	"dronefleet/internal/fleet/presentation"
	"dronefleet/internal/fleet/usecases"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// UsageError is a malformed command line. It maps to ExitUsage.
type UsageError struct {
	Command string
	Reason  string
}

func (e *UsageError) Error() string {
	if e.Command == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Command, e.Reason)
}

func usageErrorf(command, format string, args ...any) error {
	return &UsageError{Command: command, Reason: fmt.Sprintf(format, args...)}
}

// ActionError is a failed action together with the text shown to the user.
type ActionError struct {
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	return e.Message
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

func failed(err error, key domain.EntityKey) error {
	return &ActionError{Message: presentation.UserMessage(err, key), Err: err}
}

type App struct {
	registry   *domain.Registry
	auth       usecases.AuthService
	entities   usecases.EntityService
	registerer prometheus.Registerer
	out        io.Writer
	errOut     io.Writer
}

func NewApp(registry *domain.Registry, auth usecases.AuthService, entities usecases.EntityService) *App {
	return &App{
		registry:   registry,
		auth:       auth,
		entities:   entities,
		registerer: prometheus.DefaultRegisterer,
		out:        os.Stdout,
		errOut:     os.Stderr,
	}
}

func (a *App) WithOutput(out, errOut io.Writer) *App {
	a.out = out
	a.errOut = errOut
	return a
}

// WithRegisterer sets where the watch mode registers its metrics.
func (a *App) WithRegisterer(registerer prometheus.Registerer) *App {
	a.registerer = registerer
	return a
}

// Run executes one command line (without the program name) and returns the
// process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		a.printUsage()
		if len(args) == 0 {
			return ExitUsage
		}
		return ExitOK
	}

	cmd, ok := commandsByName[args[0]]
	if !ok {
		fmt.Fprintf(a.errOut, "unknown command %q\n\n", args[0])
		a.printUsage()
		return ExitUsage
	}

	err := cmd.run(ctx, a, args[1:])
	var (
		usageErr  *UsageError
		actionErr *ActionError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &usageErr):
		fmt.Fprintf(a.errOut, "%s\nusage: fleetctl %s\n", usageErr.Error(), cmd.usage)
		return ExitUsage
	case errors.As(err, &actionErr):
		slog.Debug("command failed", slog.String("command", cmd.name), slog.Any("error", actionErr.Err))
		fmt.Fprintln(a.errOut, actionErr.Message)
		return ExitFailure
	default:
		slog.Debug("command failed", slog.String("command", cmd.name), slog.Any("error", err))
		fmt.Fprintln(a.errOut, presentation.UserMessage(err, ""))
		return ExitFailure
	}
}

func (a *App) printUsage() {
	fmt.Fprintln(a.errOut, "usage: fleetctl [global flags] <command> [args]")
	fmt.Fprintln(a.errOut)
	fmt.Fprintln(a.errOut, "commands:")
	for _, cmd := range commands {
		fmt.Fprintf(a.errOut, "  %-10s %s\n", cmd.name, cmd.summary)
	}
}

// resolveType finds the entity type named by a command argument. Names are
// matched case-insensitively ("drones" selects Drones).
func (a *App) resolveType(command, name string) (domain.EntityType, error) {
	if name == "" {
		return domain.EntityType{}, usageErrorf(command, "missing entity type")
	}
	for _, key := range a.registry.Keys() {
		if strings.EqualFold(key.String(), name) {
			return a.registry.Lookup(key)
		}
	}
	_, err := a.registry.Lookup(domain.EntityKey(name))
	return domain.EntityType{}, failed(err, domain.EntityKey(name))
}

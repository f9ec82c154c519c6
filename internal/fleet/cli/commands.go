package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"dronefleet/internal/fleet/domain"
	"dronefleet/internal/fleet/forms"
	"dronefleet/internal/fleet/presentation"
	"dronefleet/internal/fleet/usecases"

	"github.com/spf13/pflag"
)

const (
	loginFailedMessage        = "Failed to login. Please check your username and password."
	registrationFailedMessage = "Failed to register. Please try again."
)

type command struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, a *App, args []string) error
}

var commands = []command{
	{name: "login", usage: "login --username U --password P", summary: "log in and keep the session token", run: runLogin},
	{name: "register", usage: `register --username U --password P --roles "admin,pilot"`, summary: "create a user", run: runRegister},
	{name: "logout", usage: "logout", summary: "forget the session token", run: runLogout},
	{name: "whoami", usage: "whoami", summary: "print the logged in user", run: runWhoami},
	{name: "types", usage: "types", summary: "list the managed entity types", run: runTypes},
	{name: "fields", usage: "fields <Type> [--op create|update|find]", summary: "show the form of an operation", run: runFields},
	{name: "list", usage: `list <Type> [--watch "@every 30s"] [--metrics-addr :9090]`, summary: "list entities", run: runList},
	{name: "create", usage: "create <Type> name=value ...", summary: "create an entity", run: runSubmit(domain.OperationCreate)},
	{name: "update", usage: "update <Type> id=7 name=value ...", summary: "update an entity", run: runSubmit(domain.OperationUpdate)},
	{name: "delete", usage: "delete <Type> <id>", summary: "delete an entity", run: runDelete},
	{name: "find", usage: "find <Type> name=value ...", summary: "search entities", run: runSubmit(domain.OperationFind)},
}

var commandsByName = func() map[string]command {
	byName := make(map[string]command, len(commands))
	for _, cmd := range commands {
		byName[cmd.name] = cmd
	}
	return byName
}()

func newFlagSet(name string, output io.Writer) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(output)
	return flags
}

func parseFlags(flags *pflag.FlagSet, args []string) error {
	if err := flags.Parse(args); err != nil {
		return usageErrorf(flags.Name(), "%s", err.Error())
	}
	return nil
}

func credentialFlags(name string, a *App) (*pflag.FlagSet, *string, *string) {
	flags := newFlagSet(name, a.errOut)
	username := flags.StringP("username", "u", "", "account name")
	password := flags.StringP("password", "p", "", "account password")
	return flags, username, password
}

func runLogin(ctx context.Context, a *App, args []string) error {
	flags, username, password := credentialFlags("login", a)
	if err := parseFlags(flags, args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return usageErrorf("login", "--username and --password are required")
	}

	if err := a.auth.Login(ctx, *username, *password); err != nil {
		return &ActionError{Message: loginFailedMessage, Err: err}
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", *username)
	return nil
}

func runRegister(ctx context.Context, a *App, args []string) error {
	flags, username, password := credentialFlags("register", a)
	roles := flags.String("roles", "", "comma separated roles")
	if err := parseFlags(flags, args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return usageErrorf("register", "--username and --password are required")
	}

	if _, err := a.auth.Register(ctx, *username, *password, *roles); err != nil {
		return &ActionError{Message: registrationFailedMessage, Err: err}
	}

	fmt.Fprintf(a.out, "Registered %s, you can now log in\n", *username)
	return nil
}

func runLogout(ctx context.Context, a *App, args []string) error {
	if len(args) > 0 {
		return usageErrorf("logout", "unexpected arguments")
	}
	if err := a.auth.Logout(ctx); err != nil {
		return failed(err, "")
	}
	fmt.Fprintln(a.out, "You have logged out")
	return nil
}

func runWhoami(ctx context.Context, a *App, args []string) error {
	if len(args) > 0 {
		return usageErrorf("whoami", "unexpected arguments")
	}
	username, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return failed(err, "")
	}
	fmt.Fprintln(a.out, username)
	return nil
}

func runTypes(_ context.Context, a *App, args []string) error {
	if len(args) > 0 {
		return usageErrorf("types", "unexpected arguments")
	}
	for _, key := range a.registry.Keys() {
		fmt.Fprintln(a.out, key)
	}
	return nil
}

func runFields(_ context.Context, a *App, args []string) error {
	flags := newFlagSet("fields", a.errOut)
	opName := flags.String("op", string(domain.OperationCreate), "operation: create, update, delete or find")
	if err := parseFlags(flags, args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return usageErrorf("fields", "expected exactly one entity type")
	}

	op, err := domain.ParseOperation(*opName)
	if err != nil || op == domain.OperationNone {
		return usageErrorf("fields", "unknown operation %q", *opName)
	}

	session, err := a.newSession("fields", flags.Arg(0))
	if err != nil {
		return err
	}
	session.SelectOperation(op)
	fmt.Fprintln(a.out, session.RenderForm())
	return nil
}

func runList(ctx context.Context, a *App, args []string) error {
	flags := newFlagSet("list", a.errOut)
	schedule := flags.String("watch", "", `refresh on a cron schedule, e.g. "@every 30s"`)
	metricsAddr := flags.String("metrics-addr", "", "serve /metrics and /healthz on this address while watching")
	if err := parseFlags(flags, args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return usageErrorf("list", "expected exactly one entity type")
	}
	if *metricsAddr != "" && *schedule == "" {
		return usageErrorf("list", "--metrics-addr needs --watch")
	}

	entityType, err := a.resolveType("list", flags.Arg(0))
	if err != nil {
		return err
	}

	if *schedule != "" {
		return a.watch(ctx, entityType, *schedule, *metricsAddr)
	}

	entities, err := a.entities.List(ctx, entityType.Key)
	if err != nil {
		return failed(err, entityType.Key)
	}
	fmt.Fprintln(a.out, presentation.RenderTable(entityType, entities))
	return nil
}

// runSubmit fills the form of op from name=value arguments and submits it.
func runSubmit(op domain.Operation) func(context.Context, *App, []string) error {
	return func(ctx context.Context, a *App, args []string) error {
		name := string(op)
		if len(args) == 0 {
			return usageErrorf(name, "missing entity type")
		}

		session, err := a.newSession(name, args[0])
		if err != nil {
			return err
		}
		session.SelectOperation(op)

		input, err := forms.ParseAssignments(args[1:])
		if err != nil {
			return usageErrorf(name, "%s", err.Error())
		}
		if err := session.State().SetAll(input); err != nil {
			if errors.Is(err, domain.ErrUnknownField) {
				return usageErrorf(name, "%s", err.Error())
			}
			return failed(err, session.EntityType().Key)
		}

		return a.submit(ctx, session)
	}
}

func runDelete(ctx context.Context, a *App, args []string) error {
	if len(args) != 2 {
		return usageErrorf("delete", "expected an entity type and an id")
	}

	session, err := a.newSession("delete", args[0])
	if err != nil {
		return err
	}
	session.SelectOperation(domain.OperationDelete)
	if err := session.State().Set(domain.IdentifierField, args[1]); err != nil {
		return failed(err, session.EntityType().Key)
	}

	return a.submit(ctx, session)
}

func (a *App) newSession(command, typeName string) (*usecases.ManagementSession, error) {
	entityType, err := a.resolveType(command, typeName)
	if err != nil {
		return nil, err
	}
	session, err := usecases.NewManagementSession(a.registry, entityType.Key, a.entities)
	if err != nil {
		return nil, failed(err, entityType.Key)
	}
	return session, nil
}

func (a *App) submit(ctx context.Context, session *usecases.ManagementSession) error {
	output, err := session.Submit(ctx)
	if err != nil {
		return failed(err, session.EntityType().Key)
	}
	fmt.Fprintln(a.out, output)
	return nil
}

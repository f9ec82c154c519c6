package driver

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"dronefleet/internal/fleet/cli"
	"dronefleet/internal/fleet/domain"
	"dronefleet/internal/fleet/fleetapitest"
	"dronefleet/internal/fleet/usecases"
	"dronefleet/internal/infra/cache"
	"dronefleet/internal/infra/httpclient"
	"dronefleet/internal/infra/kvstore"
	"dronefleet/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// CLIDriver runs fleetctl commands in process against a fake fleet API.
type CLIDriver struct {
	API   *fleetapitest.Server
	Store *kvstore.MemoryStore

	app       *cli.App
	listCache *cache.RistrettoCache
	stdout    bytes.Buffer
	stderr    bytes.Buffer
}

func NewCLIDriver() (*CLIDriver, error) {
	registry, err := domain.NewDefaultRegistry()
	if err != nil {
		return nil, err
	}

	api := fleetapitest.NewServer(registry)
	api.SetCreateDefaults(domain.EntityFlights, domain.Record{"flight_date": "2024-01-01"})
	client, err := httpclient.NewClient(httpclient.Options{
		BaseURL: api.BaseURL(),
		Timeout: 2 * time.Second,
		Logger:  logger.NewNopLogger(),
	})
	if err != nil {
		api.Close()
		return nil, err
	}

	listCache, err := cache.New(nil)
	if err != nil {
		api.Close()
		return nil, err
	}

	d := &CLIDriver{
		API:       api,
		Store:     kvstore.NewMemoryStore(),
		listCache: listCache,
	}
	session := usecases.NewSession(d.Store)
	d.app = cli.NewApp(
		registry,
		usecases.NewAuthService(client, session),
		usecases.NewEntityService(registry, client, session, listCache),
	).WithOutput(&d.stdout, &d.stderr).WithRegisterer(prometheus.NewRegistry())

	return d, nil
}

// Run executes a command line such as `fleetctl list Drones` and returns the
// exit code. Single quotes group words into one argument.
func (d *CLIDriver) Run(ctx context.Context, commandLine string) (int, error) {
	args, err := splitArgs(commandLine)
	if err != nil {
		return 0, err
	}
	if len(args) > 0 && args[0] == "fleetctl" {
		args = args[1:]
	}

	d.stdout.Reset()
	d.stderr.Reset()
	return d.app.Run(ctx, args), nil
}

func (d *CLIDriver) Stdout() string {
	return d.stdout.String()
}

func (d *CLIDriver) Stderr() string {
	return d.stderr.String()
}

func (d *CLIDriver) Close() {
	d.listCache.Close()
	d.API.Close()
}

func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quoted  bool
		pending bool
	)
	for _, r := range line {
		switch {
		case r == '\'':
			quoted = !quoted
			pending = true
		case r == ' ' && !quoted:
			if pending {
				args = append(args, current.String())
				current.Reset()
				pending = false
			}
		default:
			current.WriteRune(r)
			pending = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote in %q", line)
	}
	if pending {
		args = append(args, current.String())
	}
	return args, nil
}

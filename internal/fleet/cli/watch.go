package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"dronefleet/internal/fleet/domain"
	"dronefleet/internal/fleet/presentation"
	"dronefleet/internal/infra/async"
	"dronefleet/internal/infra/httpserver"
)

const metricsShutdownTimeout = 5 * time.Second

// watch prints the list of entityType now and on every tick of schedule until
// ctx is cancelled. Each tick reloads the list from the API.
func (a *App) watch(ctx context.Context, entityType domain.EntityType, schedule, metricsAddr string) error {
	key := entityType.Key
	worker, err := async.NewRefreshWorker("list-"+strings.ToLower(key.String()), schedule, func(ctx context.Context) error {
		entities, err := a.entities.Refresh(ctx, key)
		if err != nil {
			fmt.Fprintln(a.errOut, presentation.UserMessage(err, key))
			return err
		}
		fmt.Fprintf(a.out, "%s\n\n", presentation.RenderTable(entityType, entities))
		return nil
	}, a.registerer)
	if err != nil {
		return usageErrorf("list", "%s", err.Error())
	}

	if metricsAddr != "" {
		server := httpserver.NewServer(metricsAddr)
		go func() {
			if err := server.Run(); err != nil {
				slog.Error("metrics server", slog.String("addr", metricsAddr), slog.Any("error", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Warn("stopping metrics server", slog.Any("error", err))
			}
		}()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go worker.Run(ctx, wg.Done)
	wg.Wait()
	return nil
}

// One-shot bulk reconciliation sweep. Operators run this on demand; the
// worker binary triggers the same job on an interval.
package main

import (
	"context"

	"leadrouter/internal/crm"
	"leadrouter/internal/events"
	"leadrouter/internal/routing"
	"leadrouter/platform/config"
	"leadrouter/platform/db"
	"leadrouter/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting reconciliation sweep")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	crmClient := crm.NewClient(cfg, log)

	routingModule, err := routing.NewModule(pool, eventBus, crmClient, cfg, log)
	if err != nil {
		log.Error("failed to initialize routing module", "error", err)
		panic("failed to initialize routing module: " + err.Error())
	}

	summary, err := routingModule.Reconciler().Run(ctx)
	if err != nil {
		log.Error("reconciliation sweep failed", "error", err)
		return
	}

	log.Info("reconciliation sweep finished",
		"totalConsidered", summary.TotalConsidered,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed)
}

// Package routing provides the lead routing bounded context module.
// This file wires the taxonomy resolver, scorer, coordinator and
// reconciliation job around a shared repository.
package routing

import (
	"leadrouter/internal/events"
	"leadrouter/internal/routing/reconcile"
	"leadrouter/internal/routing/repository"
	"leadrouter/internal/routing/scoring"
	"leadrouter/internal/routing/service"
	"leadrouter/internal/routing/taxonomy"
	"leadrouter/platform/config"
	"leadrouter/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the routing bounded context module.
type Module struct {
	repo        *repository.Repository
	coordinator *service.Coordinator
	reconciler  *reconcile.Job
}

// NewModule creates and initializes the routing module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, crm service.CRM, cfg *config.Config, log *logger.Logger) (*Module, error) {
	repo := repository.New(pool)

	resolver, err := taxonomy.NewResolver()
	if err != nil {
		return nil, err
	}

	scorer, err := scoring.NewScorer()
	if err != nil {
		return nil, err
	}

	coordinator := service.NewCoordinator(repo, crm, resolver, eventBus, cfg, cfg.GetCRMTimeout(), log)
	reconciler := reconcile.NewJob(repo, coordinator, scorer, eventBus, cfg.GetReconcileBatchSize(), cfg.GetPendingRetryAge(), log)

	return &Module{
		repo:        repo,
		coordinator: coordinator,
		reconciler:  reconciler,
	}, nil
}

// Coordinator returns the assignment coordinator.
func (m *Module) Coordinator() *service.Coordinator { return m.coordinator }

// Reconciler returns the bulk reconciliation job.
func (m *Module) Reconciler() *reconcile.Job { return m.reconciler }

// Repository returns the routing repository.
func (m *Module) Repository() *repository.Repository { return m.repo }

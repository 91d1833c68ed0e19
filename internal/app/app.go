// Package app assembles the services from configuration. The API server, the
// console and the operator CLI all start from New.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredislib "github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/titledeed/internal/application"
	applicationStore "github.com/MrJamesThe3rd/titledeed/internal/application/store"
	"github.com/MrJamesThe3rd/titledeed/internal/assignment"
	"github.com/MrJamesThe3rd/titledeed/internal/audit"
	auditStore "github.com/MrJamesThe3rd/titledeed/internal/audit/store"
	"github.com/MrJamesThe3rd/titledeed/internal/bridge"
	bridgeStore "github.com/MrJamesThe3rd/titledeed/internal/bridge/store"
	"github.com/MrJamesThe3rd/titledeed/internal/cadastre"
	"github.com/MrJamesThe3rd/titledeed/internal/config"
	"github.com/MrJamesThe3rd/titledeed/internal/database"
	"github.com/MrJamesThe3rd/titledeed/internal/event"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger/fabric"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger/memledger"
	"github.com/MrJamesThe3rd/titledeed/internal/memstore"
	"github.com/MrJamesThe3rd/titledeed/internal/property"
	propertyStore "github.com/MrJamesThe3rd/titledeed/internal/property/store"
	"github.com/MrJamesThe3rd/titledeed/internal/transaction"
	txStore "github.com/MrJamesThe3rd/titledeed/internal/transaction/store"
)

type repositories struct {
	transactions    transaction.Repository
	properties      property.Repository
	applications    application.Repository
	audit           audit.Repository
	reconciliations bridge.ReconcileRepository
}

type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	DB       *sql.DB

	Events       *event.EventBus
	Ledger       ledger.Client
	Bridge       *bridge.Bridge
	Audit        *audit.Service
	Transactions *transaction.Service
	Properties   *property.Service
	Applications *application.Service
	Assignments  *assignment.Lock
	Cadastre     *cadastre.Service

	closers []func()
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	repos, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	if err := a.openLedger(); err != nil {
		a.Close()
		return nil, err
	}

	a.Events = event.NewEventBus(a.Registry, logger)
	a.closers = append(a.closers, a.Events.Stop)

	a.Audit = audit.NewService(repos.audit)
	a.Bridge = bridge.New(bridge.Config{
		Client:          a.Ledger,
		Audit:           a.Audit,
		Reconciliations: repos.reconciliations,
		Guard:           a.guard(),
		Events:          a.Events,
		Logger:          logger,
		PromRegistry:    a.Registry,
		SubmitTimeout:   cfg.Ledger.SubmitTimeout,
		CommitRetries:   cfg.Ledger.CommitRetries,
		Breaker: bridge.BreakerConfig{
			MaxRequests:         cfg.Breaker.MaxRequests,
			Interval:            cfg.Breaker.Interval,
			Timeout:             cfg.Breaker.Timeout,
			ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
		},
		ReconcileBatch: cfg.Reconcile.Batch,
		MaxAttempts:    cfg.Reconcile.MaxAttempts,
	})

	a.Properties = property.NewService(repos.properties, a.Bridge, a.Events, logger)
	a.Applications = application.NewService(repos.applications, a.Bridge, a.Events, logger)
	a.Transactions = transaction.NewService(repos.transactions, a.Properties, a.Bridge,
		transaction.WithEvents(a.Events),
		transaction.WithLogger(logger),
	)

	a.Properties.RegisterResolvers(a.Bridge)
	a.Applications.RegisterResolvers(a.Bridge)
	a.Transactions.RegisterResolvers(a.Bridge)

	a.Assignments = assignment.NewLock(a.Events)
	a.Assignments.Register(assignment.KindTransaction, a.Transactions)
	a.Assignments.Register(assignment.KindProperty, a.Properties)
	a.Assignments.Register(assignment.KindApplication, a.Applications)

	a.Cadastre = cadastre.NewService(a.Properties, logger)

	return a, nil
}

func (a *App) openStore(ctx context.Context) (repositories, error) {
	if a.Config.Store.Driver == config.DriverMemory {
		a.Logger.Warn("using in-memory store; records are lost on exit")

		ms := memstore.New()

		return repositories{
			transactions:    ms,
			properties:      ms,
			applications:    ms.Applications(),
			audit:           ms,
			reconciliations: ms,
		}, nil
	}

	db, err := database.New(a.Config.ConnectionString())
	if err != nil {
		return repositories{}, fmt.Errorf("connecting to database: %w", err)
	}

	a.DB = db
	a.closers = append(a.closers, func() { _ = db.Close() })

	if a.Config.Store.Migrate {
		if err := database.Migrate(db, a.Logger); err != nil {
			return repositories{}, err
		}
	}

	if err := db.PingContext(ctx); err != nil {
		return repositories{}, fmt.Errorf("pinging database: %w", err)
	}

	return repositories{
		transactions:    txStore.New(db),
		properties:      propertyStore.New(db),
		applications:    applicationStore.New(db),
		audit:           auditStore.New(db),
		reconciliations: bridgeStore.New(db),
	}, nil
}

func (a *App) openLedger() error {
	lc := a.Config.Ledger

	if lc.Driver == config.DriverMemory {
		a.Logger.Warn("using in-memory ledger")
		a.Ledger = memledger.New()

		return nil
	}

	client, err := fabric.NewClient(fabric.Config{
		ConfigPath:   lc.ConfigPath,
		Channel:      lc.Channel,
		Contract:     lc.Contract,
		MSPID:        lc.MSPID,
		CertPath:     lc.CertPath,
		KeyPath:      lc.KeyPath,
		WalletPath:   lc.WalletPath,
		IdentityName: lc.IdentityName,
	})
	if err != nil {
		return fmt.Errorf("connecting to fabric gateway: %w", err)
	}

	a.Ledger = client
	a.closers = append(a.closers, client.Close)

	return nil
}

func (a *App) guard() bridge.Guard {
	rc := a.Config.Redis
	if rc.Addr == "" {
		return bridge.NewLocalGuard()
	}

	client := goredislib.NewClient(&goredislib.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	a.closers = append(a.closers, func() { _ = client.Close() })

	a.Logger.Info("ledger submits guarded across instances", "redis", rc.Addr)

	return bridge.NewRedisGuard(client, rc.LockExpiry)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}

	a.closers = nil
}

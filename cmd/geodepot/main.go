// geodepot serves the institution-scoped file storage API together
// with its background workers: the outbox relay forwarding file events
// to Kafka and the scanner checking records against stored artifacts.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/geodepot/geodepot/blobstore"
	"github.com/geodepot/geodepot/blobstore/diskstore"
	"github.com/geodepot/geodepot/blobstore/miniostore"
	"github.com/geodepot/geodepot/cfgloader"
	"github.com/geodepot/geodepot/config"
	"github.com/geodepot/geodepot/consistency"
	"github.com/geodepot/geodepot/http/server"
	"github.com/geodepot/geodepot/http/server/middleware"
	"github.com/geodepot/geodepot/httpapi"
	"github.com/geodepot/geodepot/institution"
	"github.com/geodepot/geodepot/intake"
	"github.com/geodepot/geodepot/meta"
	"github.com/geodepot/geodepot/migrations"
	"github.com/geodepot/geodepot/observability/alert"
	"github.com/geodepot/geodepot/observability/logger"
	"github.com/geodepot/geodepot/observability/tracing"
	"github.com/geodepot/geodepot/outbox"
	"github.com/geodepot/geodepot/pg"
	"github.com/geodepot/geodepot/record"
)

func main() {
	cfg := cfgloader.MustLoad[config.Config]()

	logger.SetGlobal(cfg.Logger)
	meta.SetServiceInfo(cfg.App.Name, cfg.App.Version)

	log := logger.Named(cfg.App.Name)

	stopTracing, err := tracing.InitGlobalTracer(cfg.Tracing)
	if err != nil {
		log.Fatalx(err)
	}

	alerts, err := alert.NewSentinelProvider(cfg.Alert, cfg.App.Name, cfg.App.Version)
	if err != nil {
		log.Fatalx(err)
	}
	if err := alert.SetGlobal(alerts); err != nil {
		log.Fatalx(err)
	}

	db, err := pg.NewBunDB(cfg.PG)
	if err != nil {
		log.Fatalx(err)
	}

	if err := runMigrations(context.Background(), db, log); err != nil {
		log.Fatalx(err)
	}

	store, err := newStore(cfg.Storage)
	if err != nil {
		log.Fatalx(err)
	}

	records := record.NewRepository(db)
	institutions := institution.NewRepository(db)

	var producer outbox.Producer = outbox.NewNoopProducer()
	if !cfg.Outbox.Disable {
		producer = outbox.NewProducer()
	}
	uow := intake.NewUnitOfWork(db, producer)

	intakeSvc := intake.NewService(cfg.Intake, log, records, institutions, store, uow)
	institutionSvc := institution.NewService(institutions)
	handler := httpapi.NewHandler(cfg.API, intakeSvc, institutionSvc, records)

	var worker *outbox.Worker
	if !cfg.Outbox.Disable {
		// the worker needs its own pool: its long polling must not
		// compete with API queries for connections
		pool, err := pg.NewPool(cfg.PG)
		if err != nil {
			log.Fatalx(err)
		}
		worker, err = outbox.NewWorker(cfg.Outbox, pool, log, alerts)
		if err != nil {
			log.Fatalx(err)
		}
		go func() {
			if err := worker.Start(); err != nil {
				log.Fatalx(errx.Wrap(err))
			}
		}()
	}

	var scanner *consistency.Scanner
	if !cfg.Consistency.Disable {
		scanner = consistency.NewScanner(cfg.Consistency, log, records, store, alerts)
		go func() {
			if err := scanner.Start(context.Background()); err != nil {
				log.Errorx(errx.Wrap(err))
			}
		}()
	}

	srv := server.NewHTTPServer(cfg.Server, []server.Middleware{
		middleware.NewRecoveryMW(log),
		middleware.NewTracingMW(),
		middleware.NewTimeoutMW(cfg.Server.HandleTimeout),
		middleware.NewMetaInjectMW(cfg.App.Name, cfg.App.Version),
		middleware.NewAlertingMW(),
		middleware.NewLoggerMW(log),
		middleware.NewErrorHandlerMW(cfg.Server.HideErrorDetails),
	})
	srv.RegisterRouter(handler.RegisterRoutes)

	go func() {
		log.Infof("HTTP server listening on %s", cfg.Server.Address())
		if err := srv.Start(); err != nil {
			log.Fatalx(errx.Wrap(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")

	if err := srv.Stop(); err != nil {
		log.Errorx(err)
	}
	if scanner != nil {
		if err := scanner.Stop(); err != nil {
			log.Errorx(err)
		}
	}
	if worker != nil {
		if err := worker.Stop(); err != nil {
			log.Errorx(err)
		}
	}
	if err := db.Close(); err != nil {
		log.Errorx(errx.Wrap(err))
	}
	if err := alerts.Close(); err != nil {
		log.Errorx(errx.Wrap(err))
	}
	if err := stopTracing(); err != nil {
		log.Errorx(errx.Wrap(err))
	}

	log.Info("Shutdown complete")
	_ = logger.Sync()
}

// runMigrations brings the database schema up to date. It takes the
// migration lock first, so replicas starting at once do not race.
func runMigrations(ctx context.Context, db *bun.DB, log logger.Logger) error {
	migrator := migrate.NewMigrator(db, migrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return errx.Wrap(err)
	}

	if err := migrator.Lock(ctx); err != nil {
		return errx.Wrap(err)
	}
	defer migrator.Unlock(ctx) //nolint:errcheck

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return errx.Wrap(err)
	}

	if group.IsZero() {
		log.Debug("Database schema is up to date")
		return nil
	}
	log.Infof("Applied migrations: %s", group)

	return nil
}

func newStore(cfg config.Storage) (blobstore.Store, error) {
	switch cfg.Backend {
	case "minio":
		store, err := miniostore.New(*cfg.Minio)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return store, nil
	default:
		store, err := diskstore.New(*cfg.Disk)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return store, nil
	}
}

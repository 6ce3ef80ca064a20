package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/orgstruct/modules/org/handlers"
	"github.com/iota-uz/orgstruct/modules/org/infrastructure/persistence"
	"github.com/iota-uz/orgstruct/modules/org/services"
	"github.com/iota-uz/orgstruct/pkg/composables"
	"github.com/iota-uz/orgstruct/pkg/configuration"
	"github.com/iota-uz/orgstruct/pkg/eventbus"
)

// orgd wires the org-structure core: configuration, database pool, event bus,
// repositories and services. Transport for the domain operations is provided
// by the embedding API layer; this process bootstraps the schema and exposes
// metrics.
func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	initCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(initCtx, conf.Database.Opts)
	if err != nil {
		logger.WithError(err).Fatal("database pool init failed")
	}
	defer pool.Close()

	if err := pool.Ping(initCtx); err != nil {
		logger.WithError(err).Fatal("database unreachable")
	}
	if err := persistence.EnsureSchema(initCtx, pool); err != nil {
		logger.WithError(err).Fatal("schema bootstrap failed")
	}

	ctx := composables.WithPool(context.Background(), pool)

	bus := eventbus.NewEventPublisher(logger)
	handlers.RegisterTransitionHandlers(bus, logger)

	departments := persistence.NewDepartmentRepository()
	positions := persistence.NewPositionRepository()
	employees := persistence.NewEmployeeRepository()
	requests := persistence.NewChangeRequestRepository()
	sink := persistence.NewNotificationSink()

	validator := services.NewIntegrityValidator(departments, positions)
	orgService := services.NewOrgService(departments, positions, validator, bus)
	numbers := services.NewRequestNumberGenerator(conf.ChangeRequests.NumberPrefix)
	changeRequests := services.NewChangeRequestService(
		requests, employees, departments, positions,
		sink, numbers, orgService, bus, logger,
	)

	startupReport(ctx, logger, departments, positions, changeRequests)

	if conf.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: conf.Metrics.Addr, Handler: mux}
		go func() {
			logger.WithField("addr", conf.Metrics.Addr).Info("metrics listener up")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.WithError(err).Error("metrics listener failed")
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
}

func startupReport(
	ctx context.Context,
	logger *logrus.Logger,
	departments interface {
		Count(ctx context.Context) (int64, error)
	},
	positions interface {
		Count(ctx context.Context) (int64, error)
	},
	changeRequests *services.ChangeRequestService,
) {
	deptCount, err := departments.Count(ctx)
	if err != nil {
		logger.WithError(err).Warn("department count failed")
	}
	posCount, err := positions.Count(ctx)
	if err != nil {
		logger.WithError(err).Warn("position count failed")
	}
	pending, err := changeRequests.ListPending(ctx)
	if err != nil {
		logger.WithError(err).Warn("pending change request lookup failed")
	}
	logger.WithFields(logrus.Fields{
		"departments":      deptCount,
		"positions":        posCount,
		"pending_requests": len(pending),
	}).Info("org-structure core wired")
}

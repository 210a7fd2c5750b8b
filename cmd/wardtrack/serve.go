package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	v1 "github.com/dmehra2102/prod-golang-projects/wardtrack/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/service"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/archive"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/events"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/tracer"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const metricsNamespace = "wardtrack"

func runServer(ctx context.Context, bootstrapAdmin string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tp, err := tracer.Init(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initialising tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCollector(metricsNamespace, reg)

	st, err := openStores(cfg, log, m)
	if err != nil {
		return err
	}
	defer st.close()

	publisher := newPublisher(cfg.Events, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("closing event publisher", zap.Error(err))
		}
	}()

	var reportArchive service.ReportArchive
	if cfg.Archive.Enabled() {
		store, err := archive.New(ctx, cfg.Archive)
		if err != nil {
			return fmt.Errorf("configuring report archive: %w", err)
		}
		reportArchive = store
		log.Info("report archive enabled", zap.String("bucket", cfg.Archive.Bucket))
	}

	audit := service.NewAuditService(st.audit, m, log)
	jwt := auth.NewJWTManager(cfg.JWT)
	employees := service.NewEmployeeService(st.employees, audit, log)

	if bootstrapAdmin != "" {
		if err := ensureAdmin(ctx, employees, bootstrapAdmin, log); err != nil {
			audit.Shutdown()
			return err
		}
	}

	svc := v1.Services{
		Auth:      service.NewAuthService(st.employees, jwt, audit, log),
		Visits:    service.NewVisitService(st.patients, st.visits, publisher, audit, m, cfg.Ward, log),
		Occupancy: service.NewOccupancyService(st.patients, st.visits, cfg.Ward, log),
		Patients:  service.NewPatientService(st.patients, st.visits, st.notes, audit, log),
		Notes:     service.NewNoteService(st.notes, st.patients, audit, m, log),
		Reports:   service.NewReportService(st.patients, st.visits, reportArchive, audit, m, cfg.Ward, log),
		Employees: employees,
	}

	router := v1.NewRouter(v1.RouterConfig{
		App:       cfg.App,
		CORS:      cfg.CORS,
		RateLimit: cfg.RateLimit,
		Ward:      cfg.Ward,
	}, svc, jwt, m, st.ready, log)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
			zap.String("store", cfg.Database.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			audit.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	// Handlers have returned, so no more audit entries will be queued.
	audit.Shutdown()
	log.Info("server stopped")
	return nil
}

func newPublisher(cfg config.EventsConfig, log *zap.Logger) events.Publisher {
	if !cfg.Enabled() {
		return events.Nop{}
	}
	log.Info("publishing visit events", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return events.NewKafkaPublisher(cfg, log)
}

func ensureAdmin(ctx context.Context, employees *service.EmployeeService, code string, log *zap.Logger) error {
	_, err := employees.Create(ctx, cliIdentity, service.CreateEmployeeCommand{
		Code: code,
		Name: "Administrator",
		Role: domain.RoleAdmin,
	})
	switch {
	case err == nil:
		log.Info("bootstrap admin created", zap.String("employee_code", domain.NormalizeEmployeeCode(code)))
	case errors.Is(err, domain.ErrEmployeeCodeTaken):
	default:
		return fmt.Errorf("creating bootstrap admin: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/note"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/repository/postgres"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/service"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/metrics"
	"go.uber.org/zap"
)

type stores struct {
	patients  patient.Repository
	visits    visit.Repository
	notes     note.Repository
	employees service.EmployeeRepository
	audit     service.AuditRepository
	ready     func(ctx context.Context) error
	close     func()
}

// openStores selects the record store by DB_DRIVER. m may be nil when query
// metrics are not exported.
func openStores(cfg *config.Config, log *zap.Logger, m *metrics.Collector) (*stores, error) {
	switch cfg.Database.Driver {
	case "memory":
		log.Warn("using in-memory store; data is lost on exit")
		s := memory.New()
		return &stores{
			patients:  s.Patients(),
			visits:    s.Visits(),
			notes:     s.Notes(),
			employees: s.Employees(),
			audit:     s.Audit(),
			ready:     func(context.Context) error { return nil },
			close:     func() {},
		}, nil

	case "postgres":
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, err
		}
		if m != nil {
			if err := database.Instrument(db, m, cfg.Database.SlowQueryThreshold, log); err != nil {
				return nil, fmt.Errorf("instrumenting database: %w", err)
			}
		}
		return &stores{
			patients:  postgres.NewPatientRepository(db),
			visits:    postgres.NewVisitRepository(db),
			notes:     postgres.NewNoteRepository(db),
			employees: postgres.NewEmployeeRepository(db),
			audit:     postgres.NewAuditRepository(db),
			ready:     func(ctx context.Context) error { return database.Ping(ctx, db) },
			close: func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Database.Driver)
}

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/note"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/visit"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:      gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt: true,
		NowFunc:     func() time.Time { return time.Now().UTC() },
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: cfg.DSN(),
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Ping is used by the readiness probe.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	models := []any{
		&domain.Employee{},
		&domain.AuditLog{},
		&patient.Patient{},
		&visit.Visit{},
		&note.Note{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db, log); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

// schemaStatements run after AutoMigrate, in order.
var schemaStatements = []struct {
	name  string
	query string
}{
	// At most one active visit per MRN. Admission conflicts surface from here.
	{
		name:  "uniq_visits_active_mrn",
		query: `CREATE UNIQUE INDEX IF NOT EXISTS uniq_visits_active_mrn ON visits (mrn) WHERE patient_status = 'Active'`,
	},
	{
		name:  "idx_visits_visibility",
		query: `CREATE INDEX IF NOT EXISTS idx_visits_visibility ON visits (patient_status, updated_at)`,
	},
	{
		name:  "idx_visits_specialty_admission",
		query: `CREATE INDEX IF NOT EXISTS idx_visits_specialty_admission ON visits (specialty, admission_date)`,
	},
	{
		name:  "idx_patient_notes_mrn_created",
		query: `CREATE INDEX IF NOT EXISTS idx_patient_notes_mrn_created ON patient_notes (mrn, created_at DESC)`,
	},
	// Visits and notes reference the patient by MRN. ADD CONSTRAINT has no
	// IF NOT EXISTS form, so the check goes through pg_constraint.
	{
		name:  "fk_visits_patient",
		query: foreignKeyToPatients("visits", "fk_visits_patient"),
	},
	{
		name:  "fk_patient_notes_patient",
		query: foreignKeyToPatients("patient_notes", "fk_patient_notes_patient"),
	},
}

func foreignKeyToPatients(table, name string) string {
	return fmt.Sprintf(`DO $$ BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%[2]s') THEN
		ALTER TABLE %[1]s ADD CONSTRAINT %[2]s FOREIGN KEY (mrn) REFERENCES patients (mrn);
	END IF;
END $$`, table, name)
}

func createIndexes(db *gorm.DB, log *zap.Logger) error {
	for _, idx := range schemaStatements {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("%s: %w", idx.name, err)
		}
	}

	// Trigram search needs the pg_trgm extension, which managed databases may
	// not allow. Search still works without the index.
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error; err != nil {
		log.Warn("pg_trgm unavailable, skipping search index", zap.Error(err))
		return nil
	}
	trgm := `CREATE INDEX IF NOT EXISTS idx_patients_name_trgm ON patients USING gin (LOWER(patient_name) gin_trgm_ops)`
	if err := db.Exec(trgm).Error; err != nil {
		log.Warn("creating trigram index failed", zap.Error(err))
	}

	return nil
}

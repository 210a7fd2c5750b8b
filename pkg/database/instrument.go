package database

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const startKey = "wardtrack:query_start"

// Instrument registers gorm callbacks that observe query latency per
// operation and table, and track the pool's open connections. Statements
// slower than slow are logged without their bind values; zero disables that.
func Instrument(db *gorm.DB, m *metrics.Collector, slow time.Duration, log *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		tx.InstanceSet(startKey, time.Now())
	}
	after := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(startKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			elapsed := time.Since(start)
			m.DBQueryDuration.WithLabelValues(op, table).Observe(elapsed.Seconds())
			if slow > 0 && elapsed > slow {
				log.Warn("slow query",
					zap.String("op", op),
					zap.String("table", table),
					zap.Duration("elapsed", elapsed),
					zap.Int64("rows", tx.RowsAffected),
					zap.String("sql", tx.Statement.SQL.String()),
				)
			}
			m.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
		}
	}

	cb := db.Callback()
	regs := []error{
		cb.Create().Before("gorm:create").Register("metrics:before_create", before),
		cb.Create().After("gorm:create").Register("metrics:after_create", after("create")),
		cb.Query().Before("gorm:query").Register("metrics:before_query", before),
		cb.Query().After("gorm:query").Register("metrics:after_query", after("select")),
		cb.Update().Before("gorm:update").Register("metrics:before_update", before),
		cb.Update().After("gorm:update").Register("metrics:after_update", after("update")),
		cb.Delete().Before("gorm:delete").Register("metrics:before_delete", before),
		cb.Delete().After("gorm:delete").Register("metrics:after_delete", after("delete")),
	}
	for _, err := range regs {
		if err != nil {
			return err
		}
	}
	return nil
}

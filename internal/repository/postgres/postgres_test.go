package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/note"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/specialty"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/visit"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestUniqueConstraint(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: constraintActiveVisit}
	name, ok := uniqueConstraint(fmt.Errorf("insert: %w", pgErr))
	assert.True(t, ok)
	assert.Equal(t, constraintActiveVisit, name)

	_, ok = uniqueConstraint(&pgconn.PgError{Code: "23503"})
	assert.False(t, ok)

	_, ok = uniqueConstraint(errors.New("connection reset"))
	assert.False(t, ok)
}

// dryRun builds statements without a server; the DSN is parsed, never dialled.
func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		DSN: "host=localhost user=wardtrack dbname=wardtrack sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestVisitRepository_ScopedFilter(t *testing.T) {
	repo := NewVisitRepository(dryRun(t))
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	before := since.Add(24 * time.Hour)

	stmt := repo.scoped(context.Background(), visit.Filter{
		Specialty:      specialty.Neurology,
		VisibleSince:   &since,
		AdmittedFrom:   &since,
		AdmittedBefore: &before,
	}).Find(&[]visit.Visit{}).Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, `FROM "visits"`)
	assert.Contains(t, sql, "specialty = $1")
	assert.Contains(t, sql, "patient_status = $2 OR")
	assert.Contains(t, sql, "updated_at >= $4")
	assert.Contains(t, sql, "admission_date >= $5")
	assert.Contains(t, sql, "admission_date < $6")
	assert.Equal(t, []any{
		specialty.Neurology, visit.StatusActive, visit.StatusDischarged, since, since, before,
	}, stmt.Vars)
}

func TestVisitRepository_EmptyFilterHasNoWhere(t *testing.T) {
	repo := NewVisitRepository(dryRun(t))
	stmt := repo.scoped(context.Background(), visit.Filter{}).Find(&[]visit.Visit{}).Statement
	assert.NotContains(t, stmt.SQL.String(), "WHERE")
}

func TestNoteRepository_OrderHasTiebreak(t *testing.T) {
	repo := NewNoteRepository(dryRun(t))
	stmt := repo.byMRN(context.Background(), "N1").Find(&[]note.Note{}).Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, `FROM "patient_notes"`)
	created := strings.Index(sql, "created_at DESC")
	id := strings.Index(sql, "id DESC")
	require.Positive(t, created)
	assert.Greater(t, id, created)
	assert.Equal(t, []any{"N1"}, stmt.Vars)
}

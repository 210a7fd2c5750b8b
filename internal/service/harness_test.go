package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/events"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.VisitEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e events.VisitEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type recordingArchive struct {
	mu   sync.Mutex
	keys []string
}

func (a *recordingArchive) Put(_ context.Context, name string, _ []byte, _ string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := "reports/" + name
	a.keys = append(a.keys, key)
	return key, nil
}

type harness struct {
	store     *memory.Store
	clock     *fakeClock
	publisher *recordingPublisher
	archive   *recordingArchive
	metrics   *metrics.Collector
	audit     *AuditService

	visits    *VisitService
	occupancy *OccupancyService
	reports   *ReportService
	notes     *NoteService
	patients  *PatientService
	employees *EmployeeService
}

var (
	staff = domain.Identity{EmployeeID: uuid.New(), EmployeeCode: "EMP100", Name: "Sam Staff"}
	admin = domain.Identity{EmployeeID: uuid.New(), EmployeeCode: "ADM001", Name: "Ada Admin", IsAdmin: true}
)

func testWard() config.WardConfig {
	return config.WardConfig{Timezone: "UTC", VisibilityWindow: visit.DefaultVisibilityWindow}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithWard(t, testWard())
}

func newHarnessWithWard(t *testing.T, ward config.WardConfig) *harness {
	t.Helper()
	log := zap.NewNop()
	store := memory.New()
	m := metrics.NewCollector("wardtrack_test", prometheus.NewRegistry())
	audit := NewAuditService(store.Audit(), m, log)
	t.Cleanup(audit.Shutdown)

	h := &harness{
		store:     store,
		clock:     &fakeClock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
		publisher: &recordingPublisher{},
		archive:   &recordingArchive{},
		metrics:   m,
		audit:     audit,
	}

	h.visits = NewVisitService(store.Patients(), store.Visits(), h.publisher, audit, m, ward, log)
	h.visits.now = h.clock.Now
	h.occupancy = NewOccupancyService(store.Patients(), store.Visits(), ward, log)
	h.occupancy.now = h.clock.Now
	h.reports = NewReportService(store.Patients(), store.Visits(), h.archive, audit, m, ward, log)
	h.reports.now = h.clock.Now
	h.notes = NewNoteService(store.Notes(), store.Patients(), audit, m, log)
	h.notes.now = h.clock.Now
	h.patients = NewPatientService(store.Patients(), store.Visits(), store.Notes(), audit, log)
	h.employees = NewEmployeeService(store.Employees(), audit, log)
	return h
}

func intPtr(v int) *int { return &v }

func admitCmd(mrn string, sp string, date string) visit.AdmitCommand {
	return visit.AdmitCommand{
		MRN:            mrn,
		PatientName:    "Patient " + strings.TrimSpace(mrn),
		Age:            intPtr(54),
		Gender:         "Female",
		AdmissionDate:  date,
		Specialty:      sp,
		Diagnosis:      "Community-acquired pneumonia",
		AssignedDoctor: "Dr. Okafor",
		ShiftType:      "Morning",
	}
}

func (h *harness) admit(t *testing.T, mrn, sp, date string) *visit.Visit {
	t.Helper()
	v, err := h.visits.Admit(context.Background(), staff, admitCmd(mrn, sp, date))
	require.NoError(t, err)
	return v
}

func (h *harness) discharge(t *testing.T, v *visit.Visit, date, clock string) *visit.Visit {
	t.Helper()
	out, err := h.visits.Discharge(context.Background(), staff, visit.DischargeCommand{
		VisitID:       v.ID,
		DischargeDate: date,
		DischargeTime: clock,
		Note:          "Stable for discharge",
	})
	require.NoError(t, err)
	return out
}

func idsOf(visits []*visit.Visit) []uuid.UUID {
	out := make([]uuid.UUID, len(visits))
	for i, v := range visits {
		out[i] = v.ID
	}
	return out
}

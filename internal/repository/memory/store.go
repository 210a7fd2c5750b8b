// Package memory is a process-local record store used by tests and by
// DB_DRIVER=memory development runs. It honours the same constraints the
// Postgres schema enforces (unique MRN, one active visit per MRN, unique
// employee code).
package memory

import (
	"sync"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/note"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/visit"
	"github.com/google/uuid"
)

type Store struct {
	mu        sync.RWMutex
	patients  map[string]*patient.Patient
	visits    map[uuid.UUID]*visit.Visit
	notes     map[uuid.UUID]*note.Note
	employees map[uuid.UUID]*domain.Employee
	audit     []*domain.AuditLog
}

func New() *Store {
	return &Store{
		patients:  make(map[string]*patient.Patient),
		visits:    make(map[uuid.UUID]*visit.Visit),
		notes:     make(map[uuid.UUID]*note.Note),
		employees: make(map[uuid.UUID]*domain.Employee),
	}
}

func (s *Store) Patients() *PatientRepository   { return &PatientRepository{s: s} }
func (s *Store) Visits() *VisitRepository       { return &VisitRepository{s: s} }
func (s *Store) Notes() *NoteRepository         { return &NoteRepository{s: s} }
func (s *Store) Employees() *EmployeeRepository { return &EmployeeRepository{s: s} }
func (s *Store) Audit() *AuditRepository        { return &AuditRepository{s: s} }

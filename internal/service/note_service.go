package service

import (
	"context"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/note"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NoteService struct {
	notes    note.Repository
	patients patient.Repository
	audit    *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
	now      Clock
}

func NewNoteService(notes note.Repository, patients patient.Repository, audit *AuditService, m *metrics.Collector, log *zap.Logger) *NoteService {
	return &NoteService{
		notes:    notes,
		patients: patients,
		audit:    audit,
		metrics:  m,
		log:      log,
		now:      systemClock,
	}
}

// Add attaches a note to an existing patient, authored by id.
func (s *NoteService) Add(ctx context.Context, id domain.Identity, mrn, content string) (*note.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &ValidationError{Fields: []string{note.ErrEmptyContent.Error()}}
	}
	mrn = patient.NormalizeMRN(mrn)
	if _, err := s.patients.GetByMRN(ctx, mrn); err != nil {
		return nil, storeErr("get patient", err, patient.ErrPatientNotFound)
	}

	now := s.now()
	n := &note.Note{
		ID:         uuid.New(),
		CreatedAt:  now,
		UpdatedAt:  now,
		MRN:        mrn,
		Content:    content,
		Author:     id.Name,
		AuthorCode: id.EmployeeCode,
	}
	if err := s.notes.Create(ctx, n); err != nil {
		return nil, storeErr("create note", err)
	}

	s.metrics.NotesWritten.WithLabelValues("add").Inc()
	s.audit.Record(ctx, id, domain.ActionCreate, "note", n.ID.String(), map[string]string{"mrn": mrn})
	return n, nil
}

// Edit replaces a note's content. Prior content is not kept; the audit log
// records only that the edit happened.
func (s *NoteService) Edit(ctx context.Context, id domain.Identity, noteID uuid.UUID, content string) (*note.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &ValidationError{Fields: []string{note.ErrEmptyContent.Error()}}
	}

	if err := s.notes.UpdateContent(ctx, noteID, content, s.now()); err != nil {
		return nil, storeErr("update note", err, note.ErrNoteNotFound)
	}
	n, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return nil, storeErr("get note", err, note.ErrNoteNotFound)
	}

	s.metrics.NotesWritten.WithLabelValues("edit").Inc()
	s.audit.Record(ctx, id, domain.ActionUpdate, "note", noteID.String(), nil)
	return n, nil
}

// List returns a patient's notes newest first.
func (s *NoteService) List(ctx context.Context, mrn string) ([]*note.Note, error) {
	mrn = patient.NormalizeMRN(mrn)
	if _, err := s.patients.GetByMRN(ctx, mrn); err != nil {
		return nil, storeErr("get patient", err, patient.ErrPatientNotFound)
	}
	notes, err := s.notes.ListByMRN(ctx, mrn)
	if err != nil {
		return nil, storeErr("list notes", err)
	}
	return notes, nil
}

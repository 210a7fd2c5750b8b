package service

import (
	"context"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/note"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/visit"
	"go.uber.org/zap"
)

type PatientService struct {
	repo     patient.Repository
	visits   visit.Repository
	notes    note.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewPatientService(repo patient.Repository, visits visit.Repository, notes note.Repository, auditSvc *AuditService, log *zap.Logger) *PatientService {
	return &PatientService{
		repo:     repo,
		visits:   visits,
		notes:    notes,
		auditSvc: auditSvc,
		log:      log,
	}
}

// PatientDetails is the patient page: demographics, prior admissions and notes.
type PatientDetails struct {
	Patient *patient.Patient
	Visits  []*visit.Visit
	Notes   []*note.Note
}

func (s *PatientService) GetPatient(ctx context.Context, id domain.Identity, mrn string) (*patient.Patient, error) {
	mrn = patient.NormalizeMRN(mrn)
	if mrn == "" {
		return nil, &ValidationError{Fields: []string{"mrn is required"}}
	}

	p, err := s.repo.GetByMRN(ctx, mrn)
	if err != nil {
		return nil, storeErr("get patient", err, patient.ErrPatientNotFound)
	}

	s.auditSvc.Record(ctx, id, domain.ActionRead, "patient", mrn, nil)
	return p, nil
}

func (s *PatientService) Details(ctx context.Context, id domain.Identity, mrn string) (*PatientDetails, error) {
	p, err := s.GetPatient(ctx, id, mrn)
	if err != nil {
		return nil, err
	}
	visits, err := s.visits.List(ctx, visit.Filter{MRN: p.MRN})
	if err != nil {
		return nil, storeErr("list visit history", err)
	}
	notes, err := s.notes.ListByMRN(ctx, p.MRN)
	if err != nil {
		return nil, storeErr("list notes", err)
	}
	return &PatientDetails{Patient: p, Visits: visits, Notes: notes}, nil
}

// CorrectPatient overwrites demographic fields set on cmd. Concurrent
// corrections are last-write-wins.
func (s *PatientService) CorrectPatient(ctx context.Context, id domain.Identity, mrn string, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	if err := validateCorrection(cmd); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByMRN(ctx, patient.NormalizeMRN(mrn))
	if err != nil {
		return nil, storeErr("get patient", err, patient.ErrPatientNotFound)
	}

	p.ApplyCorrection(cmd)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, storeErr("update patient", err, patient.ErrPatientNotFound)
	}

	s.auditSvc.Record(ctx, id, domain.ActionUpdate, "patient", p.MRN, cmd)
	s.log.Info("patient demographics corrected",
		zap.String("mrn", p.MRN),
		zap.String("by", id.EmployeeCode),
	)
	return p, nil
}

func (s *PatientService) ListPatients(ctx context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	page, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, storeErr("list patients", err)
	}
	return page, nil
}

func validateCorrection(cmd *patient.UpdatePatientCommand) error {
	var errs []string

	if cmd.Name != nil && strings.TrimSpace(*cmd.Name) == "" {
		errs = append(errs, "patient_name must not be empty")
	}
	if cmd.Age != nil && (*cmd.Age < patient.MinAge || *cmd.Age > patient.MaxAge) {
		errs = append(errs, "age must be between 0 and 150")
	}
	if cmd.Gender != nil && !cmd.Gender.IsValid() {
		errs = append(errs, "gender must be Male or Female")
	}
	if cmd.AssignedDoctor != nil && strings.TrimSpace(*cmd.AssignedDoctor) == "" {
		errs = append(errs, "assigned_doctor must not be empty")
	}
	if cmd.Diagnosis != nil && strings.TrimSpace(*cmd.Diagnosis) == "" {
		errs = append(errs, "diagnosis must not be empty")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/specialty"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/events"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type VisitService struct {
	patients  patient.Repository
	visits    visit.Repository
	publisher events.Publisher
	audit     *AuditService
	metrics   *metrics.Collector
	ward      config.WardConfig
	loc       *time.Location
	log       *zap.Logger
	now       Clock
}

func NewVisitService(
	patients patient.Repository,
	visits visit.Repository,
	publisher events.Publisher,
	audit *AuditService,
	m *metrics.Collector,
	ward config.WardConfig,
	log *zap.Logger,
) *VisitService {
	return &VisitService{
		patients:  patients,
		visits:    visits,
		publisher: publisher,
		audit:     audit,
		metrics:   m,
		ward:      ward,
		loc:       ward.Location(),
		log:       log,
		now:       systemClock,
	}
}

// Admit creates the patient if the MRN is new and opens an active visit.
func (s *VisitService) Admit(ctx context.Context, id domain.Identity, cmd visit.AdmitCommand) (v *visit.Visit, err error) {
	ctx, span := tracer.Start(ctx, "VisitService.Admit")
	defer func() { endSpan(span, err) }()

	in, err := s.validateAdmit(cmd)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("ward.specialty", string(in.specialty)))
	now := s.now()

	if _, err := s.patients.GetByMRN(ctx, in.mrn); err != nil {
		if !errors.Is(err, patient.ErrPatientNotFound) {
			return nil, storeErr("get patient", err)
		}
		p := &patient.Patient{
			MRN:            in.mrn,
			Name:           in.name,
			Age:            in.age,
			Gender:         in.gender,
			Specialty:      in.specialty,
			AssignedDoctor: in.doctor,
			Diagnosis:      in.diagnosis,
			AdmissionDate:  in.admittedAt,
			CreatedBy:      id.EmployeeCode,
		}
		// A concurrent first admission may win the insert; its row serves both.
		if err := s.patients.Create(ctx, p); err != nil && !errors.Is(err, patient.ErrPatientAlreadyExists) {
			return nil, storeErr("create patient", err)
		}
	}

	active, err := s.visits.Count(ctx, visit.Filter{MRN: in.mrn, Status: visit.StatusActive})
	if err != nil {
		return nil, storeErr("count active visits", err)
	}
	if active > 0 {
		return nil, visit.ErrActiveVisitExists
	}

	v = &visit.Visit{
		ID:             uuid.New(),
		CreatedAt:      now,
		UpdatedAt:      now,
		MRN:            in.mrn,
		AdmissionDate:  in.admittedAt,
		Status:         visit.StatusActive,
		Specialty:      in.specialty,
		Diagnosis:      in.diagnosis,
		AssignedDoctor: in.doctor,
		ShiftType:      in.shift,
		IsWeekendShift: cmd.IsWeekendShift,
		AdmittedBy:     id.EmployeeCode,
	}
	if err := s.visits.Create(ctx, v); err != nil {
		return nil, storeErr("create visit", err, visit.ErrActiveVisitExists)
	}

	s.metrics.AdmissionsTotal.WithLabelValues(string(v.Specialty)).Inc()
	s.audit.Record(ctx, id, domain.ActionCreate, "visit", v.ID.String(), map[string]string{
		"mrn":       v.MRN,
		"specialty": string(v.Specialty),
	})
	s.publish(ctx, events.TypeAdmitted, v, id)

	s.log.Info("patient admitted",
		zap.String("visit_id", v.ID.String()),
		zap.String("specialty", string(v.Specialty)),
		zap.String("by", id.EmployeeCode),
	)
	return v, nil
}

type admitInput struct {
	mrn        string
	name       string
	age        int
	gender     patient.Gender
	admittedAt time.Time
	specialty  specialty.Specialty
	diagnosis  string
	doctor     string
	shift      visit.ShiftType
}

func (s *VisitService) validateAdmit(cmd visit.AdmitCommand) (admitInput, error) {
	var fields []string
	in := admitInput{
		mrn:       patient.NormalizeMRN(cmd.MRN),
		name:      strings.TrimSpace(cmd.PatientName),
		gender:    patient.Gender(strings.TrimSpace(cmd.Gender)),
		diagnosis: strings.TrimSpace(cmd.Diagnosis),
		doctor:    strings.TrimSpace(cmd.AssignedDoctor),
		shift:     visit.ShiftType(strings.TrimSpace(cmd.ShiftType)),
	}

	if in.mrn == "" {
		fields = append(fields, "mrn is required")
	}
	if in.name == "" {
		fields = append(fields, "patient_name is required")
	}
	switch {
	case cmd.Age == nil:
		fields = append(fields, "age is required")
	case *cmd.Age < patient.MinAge || *cmd.Age > patient.MaxAge:
		fields = append(fields, fmt.Sprintf("age must be between %d and %d", patient.MinAge, patient.MaxAge))
	default:
		in.age = *cmd.Age
	}
	if !in.gender.IsValid() {
		fields = append(fields, "gender must be Male or Female")
	}
	if strings.TrimSpace(cmd.AdmissionDate) == "" {
		fields = append(fields, "admission_date is required")
	} else if d, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(cmd.AdmissionDate), s.loc); err != nil {
		fields = append(fields, "admission_date must be YYYY-MM-DD")
	} else {
		in.admittedAt = d
	}
	if sp, err := specialty.Parse(cmd.Specialty); err != nil {
		fields = append(fields, "specialty must be one of the ward specialties")
	} else {
		in.specialty = sp
	}
	if in.diagnosis == "" {
		fields = append(fields, "diagnosis is required")
	}
	if in.doctor == "" {
		fields = append(fields, "assigned_doctor is required")
	}
	if in.shift == "" {
		fields = append(fields, "shift_type is required")
	} else if !visit.ValidShift(in.shift, cmd.IsWeekendShift) {
		kind := "regular"
		if cmd.IsWeekendShift {
			kind = "weekend"
		}
		fields = append(fields, fmt.Sprintf("shift_type %q is not a %s shift", in.shift, kind))
	}

	if len(fields) > 0 {
		return admitInput{}, &ValidationError{Fields: fields}
	}
	return in, nil
}

// Discharge closes an active visit. The store update is conditional on the
// visit still being active, so of two concurrent discharges only one wins.
func (s *VisitService) Discharge(ctx context.Context, id domain.Identity, cmd visit.DischargeCommand) (v *visit.Visit, err error) {
	ctx, span := tracer.Start(ctx, "VisitService.Discharge")
	defer func() { endSpan(span, err) }()

	at, err := s.parseDischargeTime(cmd)
	if err != nil {
		return nil, err
	}

	v, err = s.visits.GetByID(ctx, cmd.VisitID)
	if err != nil {
		return nil, storeErr("get visit", err, visit.ErrVisitNotFound)
	}

	if at.Before(v.AdmissionDate) {
		if s.ward.RejectDischargeBeforeAdmission {
			return nil, &ValidationError{Fields: []string{"discharge must not be before admission"}}
		}
		s.log.Warn("discharge recorded before admission date",
			zap.String("visit_id", v.ID.String()),
			zap.Time("admitted", v.AdmissionDate),
			zap.Time("discharged", at),
		)
	}

	if err := v.Discharge(at, cmd.Note, id.EmployeeCode, s.now()); err != nil {
		return nil, err
	}

	updated, err := s.visits.MarkDischarged(ctx, v)
	if err != nil {
		return nil, storeErr("discharge visit", err)
	}
	if !updated {
		// Lost a race: the visit was discharged (or removed) since it was read.
		if _, err := s.visits.GetByID(ctx, v.ID); err != nil {
			return nil, storeErr("get visit", err, visit.ErrVisitNotFound)
		}
		return nil, visit.ErrAlreadyDischarged
	}

	s.metrics.DischargesTotal.WithLabelValues(string(v.Specialty)).Inc()
	s.audit.Record(ctx, id, domain.ActionUpdate, "visit", v.ID.String(), map[string]string{
		"status":         string(v.Status),
		"discharge_date": at.Format(time.RFC3339),
	})
	s.publish(ctx, events.TypeDischarged, v, id)

	s.log.Info("patient discharged",
		zap.String("visit_id", v.ID.String()),
		zap.String("by", id.EmployeeCode),
	)
	return v, nil
}

func (s *VisitService) parseDischargeTime(cmd visit.DischargeCommand) (time.Time, error) {
	var fields []string
	date := strings.TrimSpace(cmd.DischargeDate)
	clock := strings.TrimSpace(cmd.DischargeTime)
	if date == "" {
		fields = append(fields, "discharge_date is required")
	}
	if clock == "" {
		fields = append(fields, "discharge_time is required")
	}
	if len(fields) > 0 {
		return time.Time{}, &ValidationError{Fields: fields}
	}

	at, err := time.ParseInLocation(time.DateOnly+" 15:04", date+" "+clock, s.loc)
	if err != nil {
		return time.Time{}, &ValidationError{Fields: []string{"discharge_date must be YYYY-MM-DD and discharge_time HH:MM"}}
	}
	return at, nil
}

// ListActiveAndRecentlyDischarged returns every active visit plus visits
// discharged within the ward's visibility window, newest admission first.
func (s *VisitService) ListActiveAndRecentlyDischarged(ctx context.Context) ([]*visit.Visit, error) {
	visits, err := s.visits.List(ctx, s.visibleFilter())
	if err != nil {
		return nil, storeErr("list visible visits", err)
	}
	return visits, nil
}

// VisitHistory lists all visits for mrn, newest admission first.
func (s *VisitService) VisitHistory(ctx context.Context, mrn string) ([]*visit.Visit, error) {
	mrn = patient.NormalizeMRN(mrn)
	if mrn == "" {
		return nil, &ValidationError{Fields: []string{"mrn is required"}}
	}
	visits, err := s.visits.List(ctx, visit.Filter{MRN: mrn})
	if err != nil {
		return nil, storeErr("list visit history", err)
	}
	return visits, nil
}

// ActiveVisit pairs an active visit with its patient for the discharge picker.
type ActiveVisit struct {
	Visit   *visit.Visit
	Patient *patient.Patient
}

// ListActive returns active visits only, optionally narrowed by a
// case-insensitive match on patient name or MRN.
func (s *VisitService) ListActive(ctx context.Context, search string) ([]ActiveVisit, error) {
	visits, err := s.visits.List(ctx, visit.Filter{Status: visit.StatusActive})
	if err != nil {
		return nil, storeErr("list active visits", err)
	}
	byMRN, err := s.patients.ListByMRNs(ctx, mrnsOf(visits))
	if err != nil {
		return nil, storeErr("list patients", err)
	}

	out := make([]ActiveVisit, 0, len(visits))
	for _, v := range visits {
		p := byMRN[v.MRN]
		if !matchesSearch(search, v.MRN, p) {
			continue
		}
		out = append(out, ActiveVisit{Visit: v, Patient: p})
	}
	return out, nil
}

func (s *VisitService) visibleFilter() visit.Filter {
	return visit.Visible(s.now(), s.ward.VisibilityWindow)
}

func (s *VisitService) publish(ctx context.Context, t events.Type, v *visit.Visit, id domain.Identity) {
	e := events.VisitEvent{
		Type:         t,
		VisitID:      v.ID.String(),
		MRN:          v.MRN,
		Specialty:    string(v.Specialty),
		Status:       string(v.Status),
		AdmittedAt:   v.AdmissionDate,
		DischargedAt: v.DischargedAt,
		Actor:        id.EmployeeCode,
		OccurredAt:   v.UpdatedAt,
	}
	outcome := "ok"
	if err := s.publisher.Publish(ctx, e); err != nil {
		outcome = "error"
		s.log.Error("publishing visit event", zap.String("type", string(t)), zap.Error(err))
	}
	s.metrics.EventsPublished.WithLabelValues(string(t), outcome).Inc()
}

func mrnsOf(visits []*visit.Visit) []string {
	seen := make(map[string]struct{}, len(visits))
	out := make([]string, 0, len(visits))
	for _, v := range visits {
		if _, ok := seen[v.MRN]; ok {
			continue
		}
		seen[v.MRN] = struct{}{}
		out = append(out, v.MRN)
	}
	return out
}

func matchesSearch(search, mrn string, p *patient.Patient) bool {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(mrn), q) {
		return true
	}
	return p != nil && strings.Contains(strings.ToLower(p.Name), q)
}

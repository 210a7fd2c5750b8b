package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/specialty"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/render"
	"go.uber.org/zap"
)

type ReportMode string

const (
	ReportDaily ReportMode = "daily"
	ReportRange ReportMode = "range"
)

// ReportRow is one visit joined with its patient's demographics.
type ReportRow struct {
	MRN            string `json:"mrn"`
	PatientName    string `json:"patient_name"`
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	AdmissionDate  string `json:"admission_date"`
	DischargeDate  string `json:"discharge_date,omitempty"`
	AssignedDoctor string `json:"assigned_doctor"`
	Specialty      string `json:"specialty"`
	Status         string `json:"status"`
	Diagnosis      string `json:"diagnosis"`
}

type Report struct {
	Mode        ReportMode          `json:"mode"`
	From        string              `json:"from"`
	To          string              `json:"to"`
	Specialty   specialty.Specialty `json:"specialty,omitempty"`
	Rows        []ReportRow         `json:"rows"`
	GeneratedAt time.Time           `json:"generated_at"`
}

type DailyReportQuery struct {
	Date      string // YYYY-MM-DD
	Specialty string // optional
}

type RangeReportQuery struct {
	From string // YYYY-MM-DD, inclusive
	To   string // YYYY-MM-DD, inclusive
}

// Document is a rendered report ready to download.
type Document struct {
	Name        string
	ContentType string
	Body        []byte
	// ArchiveKey is set when the document was also stored in the archive.
	ArchiveKey string
}

// ReportArchive persists rendered documents. Nil disables archiving.
type ReportArchive interface {
	Put(ctx context.Context, name string, body []byte, contentType string) (string, error)
}

type ReportService struct {
	patients patient.Repository
	visits   visit.Repository
	archive  ReportArchive
	audit    *AuditService
	metrics  *metrics.Collector
	window   time.Duration
	loc      *time.Location
	log      *zap.Logger
	now      Clock
}

func NewReportService(
	patients patient.Repository,
	visits visit.Repository,
	archive ReportArchive,
	audit *AuditService,
	m *metrics.Collector,
	ward config.WardConfig,
	log *zap.Logger,
) *ReportService {
	return &ReportService{
		patients: patients,
		visits:   visits,
		archive:  archive,
		audit:    audit,
		metrics:  m,
		window:   ward.VisibilityWindow,
		loc:      ward.Location(),
		log:      log,
		now:      systemClock,
	}
}

// Daily lists visible visits admitted on q.Date in the ward timezone.
func (s *ReportService) Daily(ctx context.Context, id domain.Identity, q DailyReportQuery) (r *Report, err error) {
	ctx, span := tracer.Start(ctx, "ReportService.Daily")
	defer func() { endSpan(span, err) }()

	var fields []string
	day, ok := s.parseDate(q.Date, "date", &fields)
	var sp specialty.Specialty
	if raw := strings.TrimSpace(q.Specialty); raw != "" {
		if sp, err = specialty.Parse(raw); err != nil {
			fields = append(fields, "specialty must be one of the ward specialties")
		}
	}
	if !ok || len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	now := s.now()
	f := visit.Visible(now, s.window)
	f.Specialty = sp
	next := day.AddDate(0, 0, 1)
	f.AdmittedFrom, f.AdmittedBefore = &day, &next

	visits, err := s.visits.List(ctx, f)
	if err != nil {
		return nil, storeErr("list daily report visits", err)
	}
	want := day.Format(time.DateOnly)
	selected := visits[:0]
	for _, v := range visits {
		if v.AdmittedOn(s.loc) == want {
			selected = append(selected, v)
		}
	}

	rows, err := s.rows(ctx, selected)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, id, domain.ActionRead, "report", "daily:"+want, nil)
	return &Report{Mode: ReportDaily, From: want, To: want, Specialty: sp, Rows: rows, GeneratedAt: now}, nil
}

// Range lists every visit admitted within [q.From, q.To] regardless of
// status, oldest first. Admin only.
func (s *ReportService) Range(ctx context.Context, id domain.Identity, q RangeReportQuery) (r *Report, err error) {
	ctx, span := tracer.Start(ctx, "ReportService.Range")
	defer func() { endSpan(span, err) }()

	if !id.IsAdmin {
		return nil, ErrForbidden
	}

	var fields []string
	from, okFrom := s.parseDate(q.From, "from", &fields)
	to, okTo := s.parseDate(q.To, "to", &fields)
	if okFrom && okTo && to.Before(from) {
		fields = append(fields, "to must not be before from")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	end := to.AddDate(0, 0, 1)
	visits, err := s.visits.List(ctx, visit.Filter{
		AdmittedFrom:   &from,
		AdmittedBefore: &end,
		Order:          visit.AdmissionAsc,
	})
	if err != nil {
		return nil, storeErr("list range report visits", err)
	}

	rows, err := s.rows(ctx, visits)
	if err != nil {
		return nil, err
	}
	fromStr, toStr := from.Format(time.DateOnly), to.Format(time.DateOnly)
	s.audit.Record(ctx, id, domain.ActionRead, "report", "range:"+fromStr+":"+toStr, nil)
	return &Report{Mode: ReportRange, From: fromStr, To: toStr, Rows: rows, GeneratedAt: s.now()}, nil
}

func (s *ReportService) parseDate(raw, field string, fields *[]string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*fields = append(*fields, field+" is required")
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(time.DateOnly, raw, s.loc)
	if err != nil {
		*fields = append(*fields, field+" must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}

// rows joins visits to their patients. A visit whose patient row is missing
// still produces a row with blank demographics.
func (s *ReportService) rows(ctx context.Context, visits []*visit.Visit) ([]ReportRow, error) {
	byMRN, err := s.patients.ListByMRNs(ctx, mrnsOf(visits))
	if err != nil {
		return nil, storeErr("list report patients", err)
	}

	rows := make([]ReportRow, 0, len(visits))
	for _, v := range visits {
		p, ok := byMRN[v.MRN]
		if !ok {
			s.log.Warn("visit without patient row", zap.String("visit_id", v.ID.String()))
		}
		rows = append(rows, toReportRow(v, p, s.loc))
	}
	return rows, nil
}

func toReportRow(v *visit.Visit, p *patient.Patient, loc *time.Location) ReportRow {
	row := ReportRow{
		MRN:            v.MRN,
		AdmissionDate:  v.AdmittedOn(loc),
		AssignedDoctor: v.AssignedDoctor,
		Specialty:      string(v.Specialty),
		Status:         string(v.Status),
		Diagnosis:      v.Diagnosis,
	}
	if v.DischargedAt != nil {
		row.DischargeDate = v.DischargedAt.In(loc).Format("2006-01-02 15:04")
	}
	if p != nil {
		row.PatientName = p.Name
		row.Age = p.Age
		row.Gender = string(p.Gender)
	}
	return row
}

var reportColumns = []string{
	"MRN", "Name", "Age", "Gender", "Admission Date", "Discharge Date",
	"Doctor", "Specialty", "Status", "Diagnosis",
}

// Render produces a PDF or CSV document for r and archives it when an
// archive is configured. Archive failures are logged, not returned.
func (s *ReportService) Render(ctx context.Context, r *Report, format render.Format) (*Document, error) {
	table := &render.Table{
		Columns:     reportColumns,
		GeneratedAt: r.GeneratedAt.In(s.loc),
	}
	var name string
	switch r.Mode {
	case ReportRange:
		table.Title = "Patient Report"
		table.Subtitle = fmt.Sprintf("From: %s To: %s", r.From, r.To)
		name = fmt.Sprintf("patient_report_%s_to_%s", r.From, r.To)
	default:
		table.Title = "Daily Report"
		table.Subtitle = "Date: " + r.From
		name = "daily_report_" + r.From
		if r.Specialty != "" {
			table.Subtitle += "  Specialty: " + string(r.Specialty)
			name += "_" + slug(string(r.Specialty))
		}
	}
	for _, row := range r.Rows {
		table.Rows = append(table.Rows, []string{
			row.MRN, row.PatientName, strconv.Itoa(row.Age), row.Gender,
			row.AdmissionDate, row.DischargeDate, row.AssignedDoctor,
			row.Specialty, row.Status, row.Diagnosis,
		})
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, format, table); err != nil {
		return nil, fmt.Errorf("rendering %s report: %w", r.Mode, err)
	}
	doc := &Document{
		Name:        name + format.Extension(),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}
	s.metrics.ReportsGenerated.WithLabelValues(string(r.Mode), string(format)).Inc()

	if s.archive != nil {
		key, err := s.archive.Put(ctx, string(r.Mode)+"/"+doc.Name, doc.Body, doc.ContentType)
		if err != nil {
			s.log.Error("archiving report", zap.String("name", doc.Name), zap.Error(err))
		} else {
			doc.ArchiveKey = key
		}
	}
	return doc, nil
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

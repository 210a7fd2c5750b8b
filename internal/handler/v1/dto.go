package v1

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/note"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/service"
	"github.com/google/uuid"
)

// Dates are rendered in the ward timezone: admission as YYYY-MM-DD,
// discharge as "YYYY-MM-DD HH:MM".
const dischargeLayout = "2006-01-02 15:04"

type patientResponse struct {
	MRN            string `json:"mrn"`
	Name           string `json:"patient_name"`
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	Specialty      string `json:"specialty"`
	AssignedDoctor string `json:"assigned_doctor"`
	Diagnosis      string `json:"diagnosis"`
	AdmissionDate  string `json:"admission_date"`
}

type visitResponse struct {
	ID             uuid.UUID `json:"id"`
	MRN            string    `json:"mrn"`
	Status         string    `json:"patient_status"`
	Specialty      string    `json:"specialty"`
	AdmissionDate  string    `json:"admission_date"`
	DischargeDate  string    `json:"discharge_date,omitempty"`
	DischargeNote  string    `json:"discharge_note,omitempty"`
	Diagnosis      string    `json:"diagnosis"`
	AssignedDoctor string    `json:"assigned_doctor"`
	ShiftType      string    `json:"shift_type"`
	IsWeekendShift bool      `json:"is_weekend_shift"`
	AdmittedBy     string    `json:"admitted_by,omitempty"`
	DischargedBy   string    `json:"discharged_by,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// visitWithPatient is a visit row as shown on rosters and the discharge picker.
type visitWithPatient struct {
	visitResponse
	PatientName string `json:"patient_name"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
}

type noteResponse struct {
	ID        uuid.UUID `json:"id"`
	MRN       string    `json:"mrn"`
	Content   string    `json:"content"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type employeeResponse struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"employee_code"`
	Name        string     `json:"employee_name"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type rosterResponse struct {
	Specialty string             `json:"specialty"`
	Patients  []visitWithPatient `json:"patients"`
}

type patientDetailsResponse struct {
	Patient patientResponse `json:"patient"`
	Visits  []visitResponse `json:"visits"`
	Notes   []noteResponse  `json:"notes"`
}

type pagedPatientsResponse struct {
	Patients   []patientResponse `json:"patients"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

func toPatientResponse(p *patient.Patient, loc *time.Location) patientResponse {
	return patientResponse{
		MRN:            p.MRN,
		Name:           p.Name,
		Age:            p.Age,
		Gender:         string(p.Gender),
		Specialty:      string(p.Specialty),
		AssignedDoctor: p.AssignedDoctor,
		Diagnosis:      p.Diagnosis,
		AdmissionDate:  p.AdmissionDate.In(loc).Format(time.DateOnly),
	}
}

func toVisitResponse(v *visit.Visit, loc *time.Location) visitResponse {
	out := visitResponse{
		ID:             v.ID,
		MRN:            v.MRN,
		Status:         string(v.Status),
		Specialty:      string(v.Specialty),
		AdmissionDate:  v.AdmittedOn(loc),
		DischargeNote:  v.DischargeNote,
		Diagnosis:      v.Diagnosis,
		AssignedDoctor: v.AssignedDoctor,
		ShiftType:      string(v.ShiftType),
		IsWeekendShift: v.IsWeekendShift,
		AdmittedBy:     v.AdmittedBy,
		DischargedBy:   v.DischargedBy,
		UpdatedAt:      v.UpdatedAt,
	}
	if v.DischargedAt != nil {
		out.DischargeDate = v.DischargedAt.In(loc).Format(dischargeLayout)
	}
	return out
}

func toVisitResponses(visits []*visit.Visit, loc *time.Location) []visitResponse {
	out := make([]visitResponse, len(visits))
	for i, v := range visits {
		out[i] = toVisitResponse(v, loc)
	}
	return out
}

func toVisitWithPatient(v *visit.Visit, p *patient.Patient, loc *time.Location) visitWithPatient {
	out := visitWithPatient{visitResponse: toVisitResponse(v, loc)}
	if p != nil {
		out.PatientName = p.Name
		out.Age = p.Age
		out.Gender = string(p.Gender)
	}
	return out
}

func toNoteResponse(n *note.Note) noteResponse {
	return noteResponse{
		ID:        n.ID,
		MRN:       n.MRN,
		Content:   n.Content,
		CreatedBy: n.Author,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toNoteResponses(notes []*note.Note) []noteResponse {
	out := make([]noteResponse, len(notes))
	for i, n := range notes {
		out[i] = toNoteResponse(n)
	}
	return out
}

func toEmployeeResponse(e *domain.Employee) employeeResponse {
	return employeeResponse{
		ID:          e.ID,
		Code:        e.Code,
		Name:        e.Name,
		Role:        string(e.Role),
		CreatedAt:   e.CreatedAt,
		LastLoginAt: e.LastLoginAt,
	}
}

func toRosterResponses(rosters []service.Roster, loc *time.Location) []rosterResponse {
	out := make([]rosterResponse, len(rosters))
	for i, r := range rosters {
		rows := make([]visitWithPatient, len(r.Entries))
		for j, e := range r.Entries {
			rows[j] = toVisitWithPatient(e.Visit, e.Patient, loc)
		}
		out[i] = rosterResponse{Specialty: string(r.Specialty), Patients: rows}
	}
	return out
}

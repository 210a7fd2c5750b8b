package v1

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WardHandler serves the operational views: dashboard, specialty rosters,
// admission and discharge.
type WardHandler struct {
	visits    *service.VisitService
	occupancy *service.OccupancyService
	loc       *time.Location
	log       *zap.Logger
}

func NewWardHandler(visits *service.VisitService, occupancy *service.OccupancyService, loc *time.Location, log *zap.Logger) *WardHandler {
	return &WardHandler{visits: visits, occupancy: occupancy, loc: loc, log: log}
}

type admitRequest struct {
	MRN            string `json:"mrn"`
	PatientName    string `json:"patient_name"`
	Age            *int   `json:"age"`
	Gender         string `json:"gender"`
	AdmissionDate  string `json:"admission_date"`
	Specialty      string `json:"specialty"`
	Diagnosis      string `json:"diagnosis"`
	AssignedDoctor string `json:"assigned_doctor"`
	ShiftType      string `json:"shift_type"`
	IsWeekendShift bool   `json:"is_weekend_shift"`
}

type dischargeRequest struct {
	DischargeDate string `json:"discharge_date"`
	DischargeTime string `json:"discharge_time"`
	Note          string `json:"discharge_note"`
}

type specialtyOccupancyResponse struct {
	Specialty string  `json:"specialty"`
	Active    int64   `json:"active"`
	Total     int64   `json:"total"`
	Ratio     float64 `json:"ratio"`
}

type dashboardResponse struct {
	TotalPatients int64                        `json:"total_patients"`
	ActiveCount   int64                        `json:"active_count"`
	PerSpecialty  []specialtyOccupancyResponse `json:"per_specialty"`
	GeneratedAt   time.Time                    `json:"generated_at"`
}

func (h *WardHandler) Dashboard(c *gin.Context) {
	d, err := h.occupancy.Dashboard(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	resp := dashboardResponse{
		TotalPatients: d.TotalPatients,
		ActiveCount:   d.ActiveCount,
		PerSpecialty:  make([]specialtyOccupancyResponse, len(d.PerSpecialty)),
		GeneratedAt:   d.GeneratedAt,
	}
	for i, o := range d.PerSpecialty {
		resp.PerSpecialty[i] = specialtyOccupancyResponse{
			Specialty: string(o.Specialty),
			Active:    o.Active,
			Total:     o.Total,
			Ratio:     o.Ratio(),
		}
	}
	respondOK(c, resp)
}

func (h *WardHandler) Specialties(c *gin.Context) {
	rosters, err := h.occupancy.Rosters(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, toRosterResponses(rosters, h.loc))
}

func (h *WardHandler) Admit(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req admitRequest
	if !bindJSON(c, &req) {
		return
	}

	v, err := h.visits.Admit(c.Request.Context(), id, visit.AdmitCommand{
		MRN:            req.MRN,
		PatientName:    req.PatientName,
		Age:            req.Age,
		Gender:         req.Gender,
		AdmissionDate:  req.AdmissionDate,
		Specialty:      req.Specialty,
		Diagnosis:      req.Diagnosis,
		AssignedDoctor: req.AssignedDoctor,
		ShiftType:      req.ShiftType,
		IsWeekendShift: req.IsWeekendShift,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, toVisitResponse(v, h.loc))
}

// ActiveVisits feeds the discharge picker.
func (h *WardHandler) ActiveVisits(c *gin.Context) {
	active, err := h.visits.ListActive(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	out := make([]visitWithPatient, len(active))
	for i, a := range active {
		out[i] = toVisitWithPatient(a.Visit, a.Patient, h.loc)
	}
	respondOK(c, out)
}

func (h *WardHandler) VisibleVisits(c *gin.Context) {
	visits, err := h.visits.ListActiveAndRecentlyDischarged(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, toVisitResponses(visits, h.loc))
}

func (h *WardHandler) Discharge(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	visitID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req dischargeRequest
	if !bindJSON(c, &req) {
		return
	}

	v, err := h.visits.Discharge(c.Request.Context(), id, visit.DischargeCommand{
		VisitID:       visitID,
		DischargeDate: req.DischargeDate,
		DischargeTime: req.DischargeTime,
		Note:          req.Note,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, toVisitResponse(v, h.loc))
}

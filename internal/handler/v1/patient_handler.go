package v1

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PatientHandler struct {
	patients *service.PatientService
	visits   *service.VisitService
	notes    *service.NoteService
	loc      *time.Location
	log      *zap.Logger
}

func NewPatientHandler(patients *service.PatientService, visits *service.VisitService, notes *service.NoteService, loc *time.Location, log *zap.Logger) *PatientHandler {
	return &PatientHandler{patients: patients, visits: visits, notes: notes, loc: loc, log: log}
}

type correctPatientRequest struct {
	Name           *string         `json:"patient_name"`
	Age            *int            `json:"age"`
	Gender         *patient.Gender `json:"gender"`
	AssignedDoctor *string         `json:"assigned_doctor"`
	Diagnosis      *string         `json:"diagnosis"`
}

type noteRequest struct {
	Content string `json:"content"`
}

func (h *PatientHandler) List(c *gin.Context) {
	page, err := h.patients.ListPatients(c.Request.Context(), &patient.ListPatientsQuery{
		Search:   c.Query("search"),
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	out := pagedPatientsResponse{
		Patients:   make([]patientResponse, len(page.Patients)),
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
	for i, p := range page.Patients {
		out.Patients[i] = toPatientResponse(p, h.loc)
	}
	respondOK(c, out)
}

func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	d, err := h.patients.Details(c.Request.Context(), id, c.Param("mrn"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, patientDetailsResponse{
		Patient: toPatientResponse(d.Patient, h.loc),
		Visits:  toVisitResponses(d.Visits, h.loc),
		Notes:   toNoteResponses(d.Notes),
	})
}

func (h *PatientHandler) Correct(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req correctPatientRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.patients.CorrectPatient(c.Request.Context(), id, c.Param("mrn"), &patient.UpdatePatientCommand{
		Name:           req.Name,
		Age:            req.Age,
		Gender:         req.Gender,
		AssignedDoctor: req.AssignedDoctor,
		Diagnosis:      req.Diagnosis,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, toPatientResponse(p, h.loc))
}

func (h *PatientHandler) Visits(c *gin.Context) {
	visits, err := h.visits.VisitHistory(c.Request.Context(), c.Param("mrn"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, toVisitResponses(visits, h.loc))
}

func (h *PatientHandler) Notes(c *gin.Context) {
	notes, err := h.notes.List(c.Request.Context(), c.Param("mrn"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, toNoteResponses(notes))
}

func (h *PatientHandler) AddNote(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req noteRequest
	if !bindJSON(c, &req) {
		return
	}

	n, err := h.notes.Add(c.Request.Context(), id, c.Param("mrn"), req.Content)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, toNoteResponse(n))
}

func (h *PatientHandler) EditNote(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	noteID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req noteRequest
	if !bindJSON(c, &req) {
		return
	}

	n, err := h.notes.Edit(c.Request.Context(), id, noteID, req.Content)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, toNoteResponse(n))
}

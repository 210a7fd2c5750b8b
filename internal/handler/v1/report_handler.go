package v1

import (
	"fmt"
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/service"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/render"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reports *service.ReportService
	log     *zap.Logger
}

func NewReportHandler(reports *service.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, log: log}
}

func (h *ReportHandler) Daily(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	format, ok := h.format(c)
	if !ok {
		return
	}

	r, err := h.reports.Daily(c.Request.Context(), id, service.DailyReportQuery{
		Date:      c.Query("date"),
		Specialty: c.Query("specialty"),
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	h.write(c, r, format)
}

func (h *ReportHandler) Range(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	format, ok := h.format(c)
	if !ok {
		return
	}

	r, err := h.reports.Range(c.Request.Context(), id, service.RangeReportQuery{
		From: c.Query("from"),
		To:   c.Query("to"),
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	h.write(c, r, format)
}

func (h *ReportHandler) format(c *gin.Context) (render.Format, bool) {
	f, err := render.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: []string{"format must be json, pdf or csv"},
		})
		return "", false
	}
	return f, true
}

func (h *ReportHandler) write(c *gin.Context, r *service.Report, format render.Format) {
	if format == render.FormatJSON {
		respondOK(c, r)
		return
	}

	doc, err := h.reports.Render(c.Request.Context(), r, format)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))
	if doc.ArchiveKey != "" {
		c.Header("X-Archive-Key", doc.ArchiveKey)
	}
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

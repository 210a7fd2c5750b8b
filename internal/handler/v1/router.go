package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/service"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services bundles everything the API routes call into.
type Services struct {
	Auth      *service.AuthService
	Visits    *service.VisitService
	Occupancy *service.OccupancyService
	Patients  *service.PatientService
	Notes     *service.NoteService
	Reports   *service.ReportService
	Employees *service.EmployeeService
}

type RouterConfig struct {
	App       config.AppConfig
	CORS      config.CORSConfig
	RateLimit config.RateLimitConfig
	Ward      config.WardConfig
}

// ReadinessCheck reports whether the record store can serve requests.
type ReadinessCheck func(ctx context.Context) error

func NewRouter(
	cfg RouterConfig,
	svc Services,
	tokens middleware.TokenValidator,
	m *metrics.Collector,
	ready ReadinessCheck,
	log *zap.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Metrics(m),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.CORS),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := ready(ctx); err != nil {
			log.Warn("readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	loc := cfg.Ward.Location()
	authH := NewAuthHandler(svc.Auth, log)
	wardH := NewWardHandler(svc.Visits, svc.Occupancy, loc, log)
	patientH := NewPatientHandler(svc.Patients, svc.Visits, svc.Notes, loc, log)
	reportH := NewReportHandler(svc.Reports, log)
	employeeH := NewEmployeeHandler(svc.Employees, log)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize))

	authGroup := api.Group("/auth")
	authGroup.POST("/login", middleware.LoginRateLimit(cfg.RateLimit.AuthRequestsPerMinute), authH.Login)
	authGroup.POST("/refresh", authH.Refresh)

	protected := api.Group("")
	protected.Use(middleware.Authenticate(tokens))

	protected.GET("/auth/me", authH.Me)

	protected.GET("/dashboard", wardH.Dashboard)
	protected.GET("/specialties", wardH.Specialties)
	protected.POST("/admissions", wardH.Admit)
	protected.GET("/visits/active", wardH.ActiveVisits)
	protected.GET("/visits/visible", wardH.VisibleVisits)
	protected.POST("/visits/:id/discharge", wardH.Discharge)

	patients := protected.Group("/patients")
	patients.GET("", patientH.List)
	patients.GET("/:mrn", patientH.Get)
	patients.PATCH("/:mrn", patientH.Correct)
	patients.GET("/:mrn/visits", patientH.Visits)
	patients.GET("/:mrn/notes", patientH.Notes)
	patients.POST("/:mrn/notes", patientH.AddNote)
	protected.PUT("/notes/:id", patientH.EditNote)

	protected.GET("/reports/daily", reportH.Daily)
	adminOnly := middleware.RequireAdmin(svc.Auth, log)
	protected.GET("/reports/range", adminOnly, reportH.Range)

	employees := protected.Group("/employees", adminOnly)
	employees.GET("", employeeH.List)
	employees.POST("", employeeH.Create)
	employees.PATCH("/:id/role", employeeH.SetRole)
	employees.DELETE("/:id", employeeH.Delete)

	return r
}

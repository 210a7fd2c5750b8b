package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/service"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/events"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	ready  error
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := zap.NewNop()
	store := memory.New()
	m := metrics.NewCollector("wardtrack_api", prometheus.NewRegistry())
	ward := config.WardConfig{Timezone: "UTC", VisibilityWindow: visit.DefaultVisibilityWindow}

	ctx := context.Background()
	require.NoError(t, store.Employees().Create(ctx, &domain.Employee{Code: "ADM1", Name: "Ada Admin", Role: domain.RoleAdmin}))
	require.NoError(t, store.Employees().Create(ctx, &domain.Employee{Code: "EMP1", Name: "Sam Staff", Role: domain.RoleStaff}))

	jwt := auth.NewJWTManager(config.JWTConfig{
		Secret:          "router-test-secret-with-enough-bytes",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 2 * time.Hour,
		Issuer:          "wardtrack-test",
	})
	audit := service.NewAuditService(store.Audit(), m, log)
	t.Cleanup(audit.Shutdown)

	svc := Services{
		Auth:      service.NewAuthService(store.Employees(), jwt, audit, log),
		Visits:    service.NewVisitService(store.Patients(), store.Visits(), events.Nop{}, audit, m, ward, log),
		Occupancy: service.NewOccupancyService(store.Patients(), store.Visits(), ward, log),
		Patients:  service.NewPatientService(store.Patients(), store.Visits(), store.Notes(), audit, log),
		Notes:     service.NewNoteService(store.Notes(), store.Patients(), audit, m, log),
		Reports:   service.NewReportService(store.Patients(), store.Visits(), nil, audit, m, ward, log),
		Employees: service.NewEmployeeService(store.Employees(), audit, log),
	}

	api := &testAPI{t: t}
	cfg := RouterConfig{
		App:       config.AppConfig{Version: "test"},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 1000, AuthRequestsPerMinute: 1000},
		Ward:      ward,
	}
	api.router = NewRouter(cfg, svc, jwt, m, func(context.Context) error { return api.ready }, log)
	return api
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(code string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"employee_code": code})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Data struct {
			Tokens domain.TokenPair `json:"tokens"`
		} `json:"data"`
	}
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data.Tokens.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var resp APIResponse[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Data
}

func admitBody(mrn, sp string) gin.H {
	return gin.H{
		"mrn":             mrn,
		"patient_name":    "Jamie Rivera",
		"age":             67,
		"gender":          "Male",
		"admission_date":  "2024-01-01",
		"specialty":       sp,
		"diagnosis":       "Ischemic stroke",
		"assigned_doctor": "Dr. Patel",
		"shift_type":      "Night",
	}
}

func TestHealthAndReadiness(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"test"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/readyz", "", nil).Code)
	api.ready = errors.New("db down")
	assert.Equal(t, http.StatusServiceUnavailable, api.do(http.MethodGet, "/readyz", "", nil).Code)

	metricsRec := api.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, metricsRec.Code)
	assert.Contains(t, metricsRec.Body.String(), "wardtrack_api_http_requests_total")
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/v1/dashboard", "", nil).Code)

	rec := api.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"employee_code": "NOPE"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := api.login("emp1")
	me := decode[domain.Identity](t, api.do(http.MethodGet, "/api/v1/auth/me", token, nil))
	assert.Equal(t, "EMP1", me.EmployeeCode)
	assert.False(t, me.IsAdmin)
}

func TestAdmitAndDischarge(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("EMP1")

	rec := api.do(http.MethodPost, "/api/v1/admissions", token, admitBody("12345", "Neurology"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	v := decode[visitResponse](t, rec)
	assert.Equal(t, "Active", v.Status)
	assert.Equal(t, "2024-01-01", v.AdmissionDate)
	assert.Equal(t, "EMP1", v.AdmittedBy)

	rec = api.do(http.MethodPost, "/api/v1/admissions", token, admitBody("12345", "Neurology"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	active := decode[[]visitWithPatient](t, api.do(http.MethodGet, "/api/v1/visits/active?search=rivera", token, nil))
	require.Len(t, active, 1)
	assert.Equal(t, "Jamie Rivera", active[0].PatientName)

	path := "/api/v1/visits/" + v.ID.String() + "/discharge"
	body := gin.H{"discharge_date": "2024-01-03", "discharge_time": "14:30", "discharge_note": "Home with family"}
	rec = api.do(http.MethodPost, path, token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	d := decode[visitResponse](t, rec)
	assert.Equal(t, "Discharged", d.Status)
	assert.Equal(t, "2024-01-03 14:30", d.DischargeDate)

	rec = api.do(http.MethodPost, path, token, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "STALE_STATE", errResp.Code)

	visible := decode[[]visitResponse](t, api.do(http.MethodGet, "/api/v1/visits/visible", token, nil))
	assert.Len(t, visible, 1)

	assert.Equal(t, http.StatusNotFound,
		api.do(http.MethodPost, "/api/v1/visits/00000000-0000-0000-0000-000000000001/discharge", token, body).Code)
	assert.Equal(t, http.StatusBadRequest,
		api.do(http.MethodPost, "/api/v1/visits/not-a-uuid/discharge", token, body).Code)
}

func TestAdmitValidation(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("EMP1")

	body := admitBody("", "Cardiology")
	rec := api.do(http.MethodPost, "/api/v1/admissions", token, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "mrn is required")
	assert.Contains(t, resp.Fields, "specialty must be one of the ward specialties")
}

func TestDashboardAndRosters(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("EMP1")
	for _, mrn := range []string{"H1", "H2"} {
		require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/v1/admissions", token, admitBody(mrn, "Hematology")).Code)
	}

	dash := decode[dashboardResponse](t, api.do(http.MethodGet, "/api/v1/dashboard", token, nil))
	assert.EqualValues(t, 2, dash.TotalPatients)
	assert.EqualValues(t, 2, dash.ActiveCount)
	require.Len(t, dash.PerSpecialty, 10)
	for _, o := range dash.PerSpecialty {
		if o.Specialty == "Hematology" {
			assert.EqualValues(t, 2, o.Active)
			assert.InDelta(t, 1.0, o.Ratio, 1e-9)
		}
	}

	rosters := decode[[]rosterResponse](t, api.do(http.MethodGet, "/api/v1/specialties?search=h1", token, nil))
	total := 0
	for _, r := range rosters {
		total += len(r.Patients)
	}
	assert.Equal(t, 1, total)
}

func TestPatientsAndNotes(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("EMP1")
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/v1/admissions", token, admitBody("P9", "Rheumatology")).Code)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/v1/patients/missing", token, nil).Code)

	rec := api.do(http.MethodPost, "/api/v1/patients/P9/notes", token, gin.H{"content": "Knee aspirated"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	n := decode[noteResponse](t, rec)
	assert.Equal(t, "Sam Staff", n.CreatedBy)

	rec = api.do(http.MethodPut, "/api/v1/notes/"+n.ID.String(), token, gin.H{"content": "Knee aspirated, fluid sent"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Knee aspirated, fluid sent", decode[noteResponse](t, rec).Content)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/v1/patients/P9/notes", token, gin.H{"content": " "}).Code)

	rec = api.do(http.MethodPatch, "/api/v1/patients/P9", token, gin.H{"age": 68})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 68, decode[patientResponse](t, rec).Age)

	details := decode[patientDetailsResponse](t, api.do(http.MethodGet, "/api/v1/patients/P9", token, nil))
	assert.Equal(t, "P9", details.Patient.MRN)
	assert.Len(t, details.Visits, 1)
	assert.Len(t, details.Notes, 1)

	page := decode[pagedPatientsResponse](t, api.do(http.MethodGet, "/api/v1/patients?search=jamie", token, nil))
	assert.EqualValues(t, 1, page.TotalCount)

	history := decode[[]visitResponse](t, api.do(http.MethodGet, "/api/v1/patients/P9/visits", token, nil))
	assert.Len(t, history, 1)
}

func TestReports(t *testing.T) {
	api := newTestAPI(t)
	staff := api.login("EMP1")
	admin := api.login("ADM1")
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/v1/admissions", staff, admitBody("R1", "Immunology & Allergy")).Code)

	report := decode[service.Report](t, api.do(http.MethodGet, "/api/v1/reports/daily?date=2024-01-01", staff, nil))
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "R1", report.Rows[0].MRN)

	rec := api.do(http.MethodGet, "/api/v1/reports/daily?date=2024-01-01&specialty=Immunology+%26+Allergy&format=csv", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Equal(t, `attachment; filename="daily_report_2024-01-01_immunology-allergy.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "R1")

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/v1/reports/daily?date=2024-01-01&format=xml", staff, nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/v1/reports/range?from=2024-01-01&to=2024-01-31", staff, nil).Code)

	rec = api.do(http.MethodGet, "/api/v1/reports/range?from=2024-01-01&to=2024-01-31&format=pdf", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/v1/reports/range?from=2024-02-01&to=2024-01-01", admin, nil).Code)
}

func TestEmployees(t *testing.T) {
	api := newTestAPI(t)
	staff := api.login("EMP1")
	admin := api.login("ADM1")

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/v1/employees", staff, nil).Code)

	rec := api.do(http.MethodPost, "/api/v1/employees", admin, gin.H{"employee_code": "emp2", "employee_name": "Noor"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[employeeResponse](t, rec)
	assert.Equal(t, "EMP2", created.Code)
	assert.Equal(t, "staff", created.Role)

	assert.Equal(t, http.StatusConflict,
		api.do(http.MethodPost, "/api/v1/employees", admin, gin.H{"employee_code": "EMP2", "employee_name": "Dup"}).Code)

	rec = api.do(http.MethodPatch, "/api/v1/employees/"+created.ID.String()+"/role", admin, gin.H{"role": "admin"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", decode[employeeResponse](t, rec).Role)

	list := decode[[]employeeResponse](t, api.do(http.MethodGet, "/api/v1/employees", admin, nil))
	assert.Len(t, list, 3)

	promoted := api.login("EMP2")
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/employees", promoted, nil).Code)
	rec = api.do(http.MethodPatch, "/api/v1/employees/"+created.ID.String()+"/role", admin, gin.H{"role": "staff"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/v1/employees", promoted, nil).Code)
	assert.Equal(t, http.StatusForbidden,
		api.do(http.MethodGet, "/api/v1/reports/range?from=2024-01-01&to=2024-01-02", promoted, nil).Code)

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/v1/employees/"+created.ID.String(), admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/api/v1/employees/"+created.ID.String(), admin, nil).Code)
}

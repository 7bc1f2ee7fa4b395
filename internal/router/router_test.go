package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-fee-api/api/swagger"

	"github.com/noah-isme/school-fee-api/internal/handler"
	"github.com/noah-isme/school-fee-api/internal/repository"
	"github.com/noah-isme/school-fee-api/internal/service"
	"github.com/noah-isme/school-fee-api/pkg/config"
	"github.com/noah-isme/school-fee-api/pkg/database"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: database.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.EnsureSchema(context.Background(), db))

	metrics := service.NewMetricsService()
	fees := service.NewStudentFeeService(service.StudentFeeServiceParams{
		Repo:    repository.NewStudentFeeRepository(db),
		Metrics: metrics,
		Logger:  zap.NewNop(),
	})
	exports := service.NewExportService(fees, zap.NewNop())

	cfg := &config.Config{Env: config.EnvDevelopment, APIPrefix: "/api/v1/"}
	r, err := New(cfg, Handlers{
		Students: handler.NewStudentHandler(fees),
		Fees:     handler.NewFeeHandler(fees),
		Reports:  handler.NewReportHandler(exports),
		Metrics:  handler.NewMetricsHandler(metrics, fees),
	}, metrics, zap.NewNop())
	require.NoError(t, err)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func TestRouterFeeLifecycle(t *testing.T) {
	r := newTestEngine(t)

	w := do(t, r, http.MethodPost, "/api/v1/students", `{"roll_no":5,"name":"Asha","class_name":"Class 6"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID int64 `json:"id"`
	}
	dataOf(t, w, &created)
	require.Positive(t, created.ID)

	w = do(t, r, http.MethodPost, "/api/v1/students", `{"roll_no":2,"name":"Bina","class_name":"Class 6"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPut, "/api/v1/students/1/fee", `{"amount":1000,"note":"Full"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var record struct {
		FeeAmount *int64  `json:"fee_amount"`
		FeeDate   *string `json:"fee_date"`
		Note      *string `json:"note"`
	}
	dataOf(t, w, &record)
	require.NotNil(t, record.FeeAmount)
	assert.Equal(t, int64(1000), *record.FeeAmount)
	assert.Equal(t, time.Now().Format("2006-01-02"), *record.FeeDate)

	w = do(t, r, http.MethodGet, "/api/v1/students?class=Class%206", "")
	require.Equal(t, http.StatusOK, w.Code)
	var lean []map[string]interface{}
	dataOf(t, w, &lean)
	require.Len(t, lean, 2)
	assert.Equal(t, "Bina", lean[0]["name"])
	assert.NotContains(t, lean[0], "fee_amount")

	w = do(t, r, http.MethodGet, "/api/v1/fees/total?class=Class%206", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1000`)

	w = do(t, r, http.MethodGet, "/api/v1/fees/monthly", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Asha"`)

	w = do(t, r, http.MethodGet, "/api/v1/students/export?class=Class%206&format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "Roll No,Name,Fee Amount,Fee Date,Note\n2,Bina"))

	w = do(t, r, http.MethodDelete, "/api/v1/students/1/fee", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, r, http.MethodGet, "/api/v1/fees/total", "")
	assert.Contains(t, w.Body.String(), `"total":0`)

	w = do(t, r, http.MethodDelete, "/api/v1/students/1", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, r, http.MethodGet, "/api/v1/students/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/classes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"classes":["Class 6"]`)
}

func TestRouterValidationAndUnknownIDs(t *testing.T) {
	r := newTestEngine(t)

	w := do(t, r, http.MethodPut, "/api/v1/students/42/fee", `{"amount":10,"note":"Full"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodPut, "/api/v1/students/42/fee", `{"amount":-1,"note":"Full"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodDelete, "/api/v1/students/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/students/export?class=Class%206&format=docx", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/classes", "")
	assert.Contains(t, w.Body.String(), `"classes":[]`)
}

func TestRouterRejectsBadCORSOrigins(t *testing.T) {
	cfg := &config.Config{APIPrefix: "/api/v1", CORS: config.CORSConfig{AllowedOrigins: []string{"office.school.test"}}}
	_, err := New(cfg, Handlers{}, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestRouterProbes(t *testing.T) {
	r := newTestEngine(t)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/ready", "").Code)

	w := do(t, r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouterRoutesAreDocumented(t *testing.T) {
	r := newTestEngine(t)

	doc, err := swag.ReadDoc()
	require.NoError(t, err)
	var parsed struct {
		Paths map[string]map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))

	for _, route := range r.Routes() {
		if strings.HasPrefix(route.Path, "/docs/") {
			continue
		}
		path := strings.ReplaceAll(route.Path, ":id", "{id}")
		ops, ok := parsed.Paths[path]
		if assert.True(t, ok, "undocumented route %s", path) {
			assert.Contains(t, ops, strings.ToLower(route.Method), path)
		}
	}
}

package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datadash/internal/config"
	"github.com/JonMunkholm/datadash/internal/core"
	"github.com/JonMunkholm/datadash/internal/metrics"
)

const salesCSV = "region,units,price\nnorth,3,9.5\nsouth,5,7.25\nnorth,4,8\n"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080},
		Upload: config.UploadConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
		},
		Ingest: config.IngestConfig{
			Encodings:   core.DefaultEncodings,
			PreviewRows: 5,
		},
		Session: config.SessionConfig{
			TTL:           time.Hour,
			MaxSessions:   10,
			SweepInterval: time.Minute,
		},
		Metrics: config.MetricsConfig{Enabled: true},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	m := metrics.New()
	svc, err := core.NewService(cfg, m)
	require.NoError(t, err)
	srv, err := NewServer(svc, cfg, m)
	require.NoError(t, err)
	return srv
}

func do(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// upload posts a file and returns the session path it redirects to.
func upload(t *testing.T, srv *Server, filename, content string) string {
	t.Helper()
	rec := do(srv, uploadRequest(t, filename, content))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	loc := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/s/"), "location %q", loc)
	return loc
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	return do(srv, httptest.NewRequest(http.MethodGet, path, nil))
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := get(srv, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Data Analysis Dashboard")
	assert.Contains(t, rec.Body.String(), "Please upload a CSV or Excel file to begin your analysis.")
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, testConfig())
	upload(t, srv, "sales.csv", salesCSV)

	rec := get(srv, "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["sessions"])
	assert.EqualValues(t, 2, body["analyses_max"])
}

func TestUploadAndSessionPage(t *testing.T) {
	srv := newTestServer(t, testConfig())
	path := upload(t, srv, "sales.csv", salesCSV)

	rec := get(srv, path)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		"sales.csv",
		"Raw Data Preview",
		"north",
		"Column Information",
		"Data Types and Conversion",
		"Descriptive Statistics for Numerical Columns",
		"Data Visualization",
		"/chart.svg?",
	} {
		assert.Contains(t, body, want)
	}
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		status   int
		code     string
	}{
		{"no file", "", "", http.StatusBadRequest, "FILE004"},
		{"unsupported format", "notes.txt", "hello", http.StatusBadRequest, "FILE002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, testConfig())
			req := uploadRequest(t, tt.filename, tt.content)
			req.Header.Set("Accept", "application/json")

			rec := do(srv, req)

			require.Equal(t, tt.status, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestUpload_TooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxFileSize = 16
	srv := newTestServer(t, cfg)

	rec := do(srv, uploadRequest(t, "sales.csv", salesCSV))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "FILE001")
}

func TestSessionPage_UndecodableFileShowsError(t *testing.T) {
	srv := newTestServer(t, testConfig())
	path := upload(t, srv, "broken.xlsx", "this is not a spreadsheet")

	rec := get(srv, path)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "FILE006")
	assert.NotContains(t, body, "Raw Data Preview")
}

func TestUnknownSession(t *testing.T) {
	srv := newTestServer(t, testConfig())

	for _, path := range []string{"/s/missing", "/s/missing/chart.svg", "/s/missing/describe"} {
		t.Run(path, func(t *testing.T) {
			rec := get(srv, path)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), "SES001")
		})
	}
}

func TestSetTypes(t *testing.T) {
	srv := newTestServer(t, testConfig())
	path := upload(t, srv, "sales.csv", salesCSV)

	form := url.Values{}
	form.Set(typeFieldName("units"), string(core.ToString))
	form.Set(typeFieldName("price"), string(core.NoChange))
	req := httptest.NewRequest(http.MethodPost, path+"/types", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := do(srv, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, path, rec.Header().Get("Location"))

	page := get(srv, path)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Successfully converted")
}

func TestSetTypes_UnknownDirective(t *testing.T) {
	srv := newTestServer(t, testConfig())
	path := upload(t, srv, "sales.csv", salesCSV)

	form := url.Values{}
	form.Set(typeFieldName("units"), "complex")
	req := httptest.NewRequest(http.MethodPost, path+"/types", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := do(srv, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "TYPE001")
}

func TestChart(t *testing.T) {
	srv := newTestServer(t, testConfig())
	path := upload(t, srv, "sales.csv", salesCSV)

	tests := []struct {
		name  string
		query string
	}{
		{"default bar", ""},
		{"bar with y", "?kind=bar&x=region&y=units"},
		{"line", "?kind=line&x=units&y=price"},
		{"histogram", "?kind=histogram&x=price"},
		{"scatter with hue", "?kind=scatter&x=units&y=price&hue=region"},
		{"pie", "?kind=pie&x=region"},
		{"heatmap", "?kind=heatmap"},
		{"none option", "?kind=bar&x=region&y=None"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(srv, path+"/chart.svg"+tt.query)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
			assert.Contains(t, rec.Body.String(), "<svg")
		})
	}
}

func TestChart_Unavailable(t *testing.T) {
	srv := newTestServer(t, testConfig())
	path := upload(t, srv, "people.csv", "name,city\nada,london\nalan,wilmslow\n")

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"heatmap without numbers", "?kind=heatmap", "No numerical columns available to generate a Heatmap."},
		{"histogram without numbers", "?kind=histogram", "No numerical columns"},
		{"unknown column", "?kind=bar&x=ghost", "Column `ghost` not found."},
		{"unknown kind", "?kind=radar", "Invalid chart selection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(srv, path+"/chart.svg"+tt.query)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestSessionPage_ChartInfo(t *testing.T) {
	srv := newTestServer(t, testConfig())
	path := upload(t, srv, "people.csv", "name,city\nada,london\nalan,wilmslow\n")

	rec := get(srv, path+"?kind=heatmap")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "No numerical columns available to generate a Heatmap.")
	assert.Contains(t, body, "No numerical columns found for descriptive statistics.")
	assert.NotContains(t, body, "/chart.svg?")
}

func TestSessionPage_InvalidKindFallsBackToBar(t *testing.T) {
	srv := newTestServer(t, testConfig())
	path := upload(t, srv, "sales.csv", salesCSV)

	rec := get(srv, path+"?kind=radar")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid chart selection")
}

func TestDescribe(t *testing.T) {
	srv := newTestServer(t, testConfig())
	path := upload(t, srv, "sales.csv", salesCSV)

	rec := get(srv, path+"/describe")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body struct {
		Columns []map[string]any `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Columns, 2)
	assert.Equal(t, "units", body.Columns[0]["column"])
	assert.EqualValues(t, 3, body.Columns[0]["count"])
	assert.EqualValues(t, 4, body.Columns[0]["mean"])
	assert.EqualValues(t, 5, body.Columns[0]["max"])
}

func TestDescribe_NoNumericColumns(t *testing.T) {
	srv := newTestServer(t, testConfig())
	path := upload(t, srv, "people.csv", "name,city\nada,london\n")

	rec := get(srv, path+"/describe")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CHART001", resp.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig())
	upload(t, srv, "sales.csv", salesCSV)

	rec := get(srv, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "datadash_")
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	srv := newTestServer(t, cfg)

	rec := get(srv, "/metrics")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	cfg := testConfig()
	cfg.Security.EnableCSP = true
	srv := newTestServer(t, cfg)

	rec := get(srv, "/")

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestStaticFiles(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := get(srv, "/static/app.css")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 2}
	srv := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, get(srv, "/healthz").Code)
	}

	rec := get(srv, "/healthz")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE001")
}

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/output"
	"github.com/dgallion1/docrank/internal/pipeline"
	"github.com/dgallion1/docrank/internal/refine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const buffetText = `Vegetarian Buffet Planning
Plan a vegetarian buffet for a corporate gathering with falafel wraps, quinoa salad and roasted vegetables. Label every gluten-free dish clearly for guests.

Dessert Table
Fresh fruit platters and small lemon tarts keep the dessert table light after a buffet lunch.`

func testServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	fixed := time.Date(2025, 7, 10, 15, 31, 22, 0, time.UTC)
	proc := pipeline.NewProcessor(cfg, log, pipeline.WithClock(func() time.Time { return fixed }))
	return NewServer(proc, log, cfg)
}

type upload struct {
	name string
	body string
}

func analyzeRequest(t *testing.T, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = io.WriteString(part, f.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var buffetFields = map[string]string{
	"persona": "Food Contractor",
	"job":     "Prepare a vegetarian buffet menu",
}

func TestHealth(t *testing.T) {
	s := testServer(t, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAnalyze_ReturnsConsolidatedOutput(t *testing.T) {
	s := testServer(t, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, analyzeRequest(t, buffetFields,
		upload{"Buffet Ideas.txt", buffetText},
		upload{"Desserts.txt", buffetText},
	))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Run-ID"))
	require.NoError(t, output.CheckConsolidated(rec.Body.Bytes()))

	var out output.ConsolidatedOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, []string{"Buffet Ideas.txt", "Desserts.txt"}, out.Metadata.InputDocuments)
	assert.Equal(t, "Food Contractor", out.Metadata.Persona)
	assert.Equal(t, "2025-07-10T15:31:22.000000", out.Metadata.ProcessingTimestamp)
	require.Len(t, out.ExtractedSections, 2)
	assert.Equal(t, "Buffet Ideas.txt", out.ExtractedSections[0].Document)
	assert.Equal(t, 2, out.ExtractedSections[1].ImportanceRank)
	assert.NotEmpty(t, out.SubsectionAnalysis)
}

func TestAnalyze_RunIsQueryable(t *testing.T) {
	s := testServer(t, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, analyzeRequest(t, buffetFields, upload{"Buffet Ideas.txt", buffetText}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	runID := rec.Header().Get("X-Run-ID")

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/"+runID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap pipeline.RunSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, runID, snap.ID)
	assert.Equal(t, pipeline.StatusCompleted, snap.Status)
	assert.Equal(t, 1, snap.Succeeded)
	require.Len(t, snap.Documents, 1)
	assert.Equal(t, "Buffet Ideas.txt", snap.Documents[0].Filename)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		Documents pipeline.StatsSnapshot `json:"documents"`
		Runs      int                    `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Documents.Count)
	assert.Equal(t, 1, stats.Runs)
}

func TestAnalyze_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		files  []upload
		want   int
	}{
		{"missing persona", map[string]string{"job": "plan"}, []upload{{"a.txt", buffetText}}, http.StatusBadRequest},
		{"blank job", map[string]string{"persona": "Chef", "job": "  "}, []upload{{"a.txt", buffetText}}, http.StatusBadRequest},
		{"no files", buffetFields, nil, http.StatusBadRequest},
		{"unsupported extension", buffetFields, []upload{{"menu.xlsx", "x"}}, http.StatusBadRequest},
		{"duplicate file", buffetFields, []upload{{"a.txt", buffetText}, {"a.txt", buffetText}}, http.StatusBadRequest},
		{"nothing processable", buffetFields, []upload{{"broken.pdf", "not a pdf"}}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testServer(t, nil)
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, analyzeRequest(t, tt.fields, tt.files...))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestAnalyze_FileTooLarge(t *testing.T) {
	s := testServer(t, func(c *config.Config) { c.MaxUploadBytes = 64 })
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, analyzeRequest(t, buffetFields, upload{"big.txt", buffetText}))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRunStatus_NotFound(t *testing.T) {
	s := testServer(t, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/01NOPE", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuth(t *testing.T) {
	s := testServer(t, func(c *config.Config) { c.APIKey = "secret" })

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health stays public.
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSummary(t *testing.T) {
	s := testServer(t, nil)
	doc := output.PerDocumentOutput{
		Metadata: output.Metadata{Persona: "Chef", Job: "Plan a buffet", Datetime: "2025-07-10T15:31:22.000000"},
		Sections: []output.Section{{
			Document: "menu.pdf", Page: 2, SectionTitle: "Falafel", ImportanceRank: 1,
			Text: "Crispy falafel.", SubsectionAnalysis: []refine.Subsection{},
		}},
	}
	raw, err := output.Marshal(doc)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/summary", bytes.NewReader(raw)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "=== DOCUMENT ANALYSIS SUMMARY ==="))
	assert.Contains(t, body, "1. Falafel (Page 2)")
	assert.Contains(t, body, "menu.pdf: 1 relevant sections")

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/summary", strings.NewReader(`{"metadata":{}}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd.pdf", "passwd.pdf"},
		{`C:\Users\me\notes.txt`, "notes.txt"},
		{"a..b.pdf", "a_b.pdf"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), tt.in)
	}
}

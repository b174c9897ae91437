package research

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/research-extractor/internal/middleware"
	"github.com/ayush/research-extractor/internal/models"
	"github.com/ayush/research-extractor/internal/session"
)

type testApp struct {
	factory *fakeFactory
	router  http.Handler
	cookies []*http.Cookie
}

func newTestApp(t *testing.T, f *fakeFactory, envKey string) *testApp {
	t.Helper()
	h := NewHandler(
		newTestService(f, nil),
		session.NewMemoryStore(16, time.Hour),
		models.DefaultSettings("llama3.1", "gemini-2.0-flash"),
		envKey,
	)
	r := chi.NewRouter()
	r.Use(middleware.Session(time.Hour))
	r.Get("/", h.Index)
	r.Post("/", h.Run)
	r.Post("/api/research", h.Create)
	r.Get("/api/examples", h.Examples)
	return &testApp{factory: f, router: r}
}

// do sends req with the cookies of earlier responses, like a browser would.
func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range a.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		a.cookies = cookies
	}
	return rec
}

func formVals(topic string) url.Values {
	return url.Values{
		"api_key":      {"k"},
		"gemini_model": {"gemini-2.0-flash"},
		"ollama_model": {"llama3.1"},
		"preference":   {"gemini"},
		"wikipedia":    {"on"},
		"duckduckgo":   {"on"},
		"length":       {"standard"},
		"citations":    {"on"},
		"topic":        {topic},
	}
}

func TestIndexShowsDefaults(t *testing.T) {
	app := newTestApp(t, &fakeFactory{}, "")

	rec := app.do(httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="gemini" selected>Gemini Only</option>`)
	assert.Contains(t, body, `name="wikipedia" checked`)
	assert.Contains(t, body, "Gemini requires API key")
	assert.Contains(t, body, "Example topics")
	assert.Contains(t, body, models.ExampleTopics[0])
	assert.NotEmpty(t, app.cookies, "session cookie must be issued")
}

func TestRunRendersReportAndClearsTopicOnNextRender(t *testing.T) {
	app := newTestApp(t, &fakeFactory{answer: "# Quantum Report\n\nSome *findings*."}, "")

	rec := app.do(postForm("/", formVals("Quantum computing")))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Quantum Report</h1>")
	assert.Contains(t, body, "<em>findings</em>")
	assert.Contains(t, body, `download="research_report_`)
	assert.Contains(t, body, `_Quantum_computing.md"`)
	assert.Contains(t, body, `href="data:text/markdown;charset=utf-8;base64,`)
	assert.Contains(t, body, "Citations: Enabled")
	assert.Contains(t, body, `healthcare delivery"></textarea>`, "topic field is blank next to its report")
	assert.NotContains(t, body, "Example topics")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = app.do(httptest.NewRequest(http.MethodGet, "/", nil))
	body = rec.Body.String()
	assert.NotContains(t, body, "Quantum computing</textarea>")
	assert.Contains(t, body, "Example topics")
}

func TestRunSanitizesModelOutput(t *testing.T) {
	app := newTestApp(t, &fakeFactory{answer: "# R\n\n<script>alert(1)</script>"}, "")

	body := app.do(postForm("/", formVals("XSS"))).Body.String()

	assert.NotContains(t, body, "<script>alert(1)</script>")
}

func TestRunPersistsSettings(t *testing.T) {
	app := newTestApp(t, &fakeFactory{}, "")
	vals := formVals("")
	vals.Set("preference", "ollama")
	vals.Set("length", "extended")
	vals.Del("wikipedia")

	app.do(postForm("/", vals))
	body := app.do(httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()

	assert.Contains(t, body, `<option value="ollama" selected>Ollama Only</option>`)
	assert.Contains(t, body, `<option value="extended" selected>`)
	assert.NotContains(t, body, `name="wikipedia" checked`)
	assert.Contains(t, body, "work on hosted deployments")
	assert.NotContains(t, body, `value="k"`, "the API key is never persisted")
}

func TestRunExampleClick(t *testing.T) {
	f := &fakeFactory{answer: "# Example"}
	app := newTestApp(t, f, "")
	vals := formVals("")
	vals.Set("example", "2")

	body := app.do(postForm("/", vals)).Body.String()

	require.NotNil(t, f.lastModel())
	assert.Equal(t, models.ExampleTopics[2], f.lastModel().requests[0].Messages[0].Content)
	assert.Contains(t, body, "Example</h1>")
	assert.Contains(t, body, "_Climate_change_adaptation_stra.md")
	assert.NotContains(t, body, models.ExampleTopics[2]+"</textarea>")
}

func TestRunResubmitAfterSuccessDoesNotRerun(t *testing.T) {
	f := &fakeFactory{answer: "# Quantum Report"}
	app := newTestApp(t, f, "")

	app.do(postForm("/", formVals("Quantum computing")))
	require.Len(t, f.calls, 1)

	// the rendered form comes back with its blank topic field
	body := app.do(postForm("/", formVals(""))).Body.String()

	assert.Len(t, f.calls, 1, "the finished topic must not run again")
	assert.Contains(t, body, `healthcare delivery"></textarea>`)
	assert.Contains(t, body, "Example topics")
}

func TestRunDoesNotEchoKey(t *testing.T) {
	app := newTestApp(t, &fakeFactory{answer: "# R"}, "")
	vals := formVals("Topic")
	vals.Set("api_key", "secret-key-123")

	body := app.do(postForm("/", vals)).Body.String()

	assert.Contains(t, body, "Gemini API Key configured (session only)")
	assert.NotContains(t, body, "secret-key-123")
}

func TestRunShowsCitationsDisabled(t *testing.T) {
	app := newTestApp(t, &fakeFactory{answer: "# R"}, "")
	vals := formVals("Topic")
	vals.Del("citations")

	body := app.do(postForm("/", vals)).Body.String()

	assert.Contains(t, body, "Citations: Disabled")
}

func TestRunEmptyTopicDoesNothing(t *testing.T) {
	f := &fakeFactory{answer: "x"}
	app := newTestApp(t, f, "")

	body := app.do(postForm("/", formVals("  "))).Body.String()

	assert.Empty(t, f.calls)
	assert.Contains(t, body, "Example topics")
	assert.NotContains(t, body, `class="msg error"`)
}

func TestRunWithoutTools(t *testing.T) {
	f := &fakeFactory{answer: "x"}
	app := newTestApp(t, f, "")
	vals := formVals("Topic")
	vals.Del("wikipedia")
	vals.Del("duckduckgo")

	body := app.do(postForm("/", vals)).Body.String()

	assert.Empty(t, f.calls)
	assert.Contains(t, body, `<div class="msg error">Please select at least one search tool</div>`)
}

func TestRunMissingKey(t *testing.T) {
	f := &fakeFactory{answer: "x"}
	app := newTestApp(t, f, "")
	vals := formVals("Topic")
	vals.Del("api_key")

	body := app.do(postForm("/", vals)).Body.String()

	assert.Empty(t, f.calls)
	assert.Contains(t, body, "Gemini requires API key. Please enter it in the sidebar.")
}

func TestRunEnvironmentKey(t *testing.T) {
	f := &fakeFactory{answer: "# R"}
	app := newTestApp(t, f, "env-key")
	vals := formVals("Topic")
	vals.Del("api_key")

	body := app.do(postForm("/", vals)).Body.String()

	assert.Contains(t, body, "Gemini API Key loaded from environment")
	assert.Contains(t, body, "R</h1>")
}

func TestRunGenerationFailureShowsHint(t *testing.T) {
	app := newTestApp(t, &fakeFactory{chatErr: errors.New("quota exceeded")}, "")

	rec := app.do(postForm("/", formVals("Topic")))
	body := rec.Body.String()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "Error generating report: quota exceeded")
	assert.Contains(t, body, Hint)

	// failure keeps the topic for a retry
	body = app.do(httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
	assert.Contains(t, body, "Topic</textarea>")
}

func postJSON(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/research", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestCreate(t *testing.T) {
	app := newTestApp(t, &fakeFactory{answer: "# API"}, "")

	rec := app.do(postJSON(`{"topic":"Fusion","api_key":"k","tools":{"wikipedia":true}}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	var report models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "# API", report.Markdown)
	assert.Equal(t, "Gemini", report.Provider)
	assert.Equal(t, []models.ToolKind{models.Wikipedia}, report.Tools)
	assert.True(t, strings.HasSuffix(report.Filename, "_Fusion.md"))
}

func TestCreateErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		factory    *fakeFactory
		wantStatus int
		wantHint   bool
	}{
		{"bad body", `{`, &fakeFactory{}, http.StatusBadRequest, false},
		{"empty topic", `{"topic":"","api_key":"k"}`, &fakeFactory{}, http.StatusBadRequest, false},
		{"no tools", `{"topic":"T","api_key":"k","tools":{}}`, &fakeFactory{}, http.StatusBadRequest, false},
		{"missing key", `{"topic":"T"}`, &fakeFactory{}, http.StatusUnprocessableEntity, false},
		{"missing ollama id", `{"topic":"T","preference":"ollama","ollama_model":""}`, &fakeFactory{}, http.StatusUnprocessableEntity, false},
		{"generation failure", `{"topic":"T","api_key":"k"}`, &fakeFactory{chatErr: errors.New("boom")}, http.StatusBadGateway, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, tt.factory, "")

			rec := app.do(postJSON(tt.body))

			require.Equal(t, tt.wantStatus, rec.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			if tt.wantHint {
				assert.Equal(t, Hint, resp.Hint)
			} else {
				assert.Empty(t, resp.Hint)
			}
		})
	}
}

func TestExamples(t *testing.T) {
	app := newTestApp(t, &fakeFactory{}, "")

	rec := app.do(httptest.NewRequest(http.MethodGet, "/api/examples", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.ExampleTopics, resp["topics"])
}

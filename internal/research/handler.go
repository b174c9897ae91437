package research

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/ayush/research-extractor/internal/middleware"
	"github.com/ayush/research-extractor/internal/models"
	"github.com/ayush/research-extractor/internal/selector"
	"github.com/ayush/research-extractor/internal/session"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Handler holds the web UI and JSON API handlers.
type Handler struct {
	gen      Generator
	sessions session.Store
	defaults models.Settings
	envKey   string
}

func NewHandler(gen Generator, sessions session.Store, defaults models.Settings, envKey string) *Handler {
	return &Handler{gen: gen, sessions: sessions, defaults: defaults, envKey: envKey}
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type reportView struct {
	*models.Report
	HTML        template.HTML
	Download    template.URL
	ToolNames   string
	LengthLabel string
}

type page struct {
	Settings          models.Settings
	Preferences       []option
	Lengths           []option
	KeyStatus         Status
	HostedWarning     bool
	HostedWarningText string
	NoTools           bool
	Topic             string
	Examples          []string
	Notices           []string
	Error             string
	Hint              string
	Report            *reportView
}

func newPage(settings models.Settings, status Status, topic string) *page {
	p := &page{
		Settings:          settings,
		KeyStatus:         status,
		HostedWarning:     settings.Preference == models.PreferOllama,
		HostedWarningText: HostedOllamaWarning,
		NoTools:           settings.Tools.Empty(),
		Topic:             topic,
	}
	for _, pref := range models.Preferences {
		p.Preferences = append(p.Preferences, option{string(pref), pref.Label(), pref == settings.Preference})
	}
	for _, l := range models.ReportLengths {
		p.Lengths = append(p.Lengths, option{string(l), l.Label(), l == settings.Length})
	}
	if topic == "" {
		p.Examples = models.ExampleTopics
	}
	return p
}

// Index renders the form with the settings and topic kept in the session.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := middleware.SessionID(ctx)
	st := h.loadState(ctx, id)
	st.Begin()

	settings := h.defaults
	if st.Settings != nil {
		settings = *st.Settings
	}
	_, status := ResolveKey("", h.envKey, settings.Preference)

	h.saveState(ctx, id, st)
	render(w, newPage(settings, status, st.TopicText))
}

// Run handles a form post: either a typed topic or an example click.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg, status, err := ParseForm(r, h.defaults, h.envKey)
	if err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	id := middleware.SessionID(ctx)
	st := h.loadState(ctx, id)
	st.Begin()
	st.Submit(cfg.Topic, cfg.Settings)
	if topic, ok := exampleTopic(r.PostForm.Get("example")); ok {
		cfg.Topic = topic
		st.Select(topic)
	}

	p := newPage(cfg.Settings, status, cfg.Topic)

	report, err := h.gen.Generate(ctx, cfg)
	switch {
	case errors.Is(err, ErrEmptyTopic):
		// nothing to run yet, example topics are shown
	case err != nil:
		p.Error, p.Hint = describe(err)
	default:
		p.Notices = report.Notices
		p.Report = &reportView{
			Report:      report,
			HTML:        RenderMarkdown(report.Markdown),
			Download:    DownloadURL(report.Markdown),
			ToolNames:   toolNames(report.Tools),
			LengthLabel: report.Length.Label(),
		}
		// the topic lives on in the report; a resubmitted form must not rerun it
		p.Topic = ""
		st.Succeed()
	}

	h.saveState(ctx, id, st)
	render(w, p)
}

func (h *Handler) loadState(ctx context.Context, id string) *session.State {
	if id == "" {
		return &session.State{}
	}
	st, err := session.LoadOrNew(ctx, h.sessions, id)
	if err != nil {
		log.Warn("Session load failed", "error", err)
		return &session.State{}
	}
	return st
}

func (h *Handler) saveState(ctx context.Context, id string, st *session.State) {
	if id == "" {
		return
	}
	if err := h.sessions.Save(ctx, id, st); err != nil {
		log.Warn("Session save failed", "error", err)
	}
}

func render(w http.ResponseWriter, p *page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.Execute(w, p); err != nil {
		log.Error("Render failed", "error", err)
	}
}

func exampleTopic(v string) (string, bool) {
	if v == "" {
		return "", false
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 || i >= len(models.ExampleTopics) {
		return "", false
	}
	return models.ExampleTopics[i], true
}

// describe turns a pipeline error into the inline message and optional hint.
func describe(err error) (string, string) {
	switch {
	case errors.Is(err, selector.ErrNoToolSelected):
		return "Please select at least one search tool", ""
	case errors.Is(err, selector.ErrMissingCredential):
		return "Gemini requires API key. Please enter it in the sidebar.", ""
	case errors.Is(err, ErrGenerationFailure):
		return capitalize(err.Error()), Hint
	}
	return capitalize(err.Error()), ""
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

func toolNames(kinds []models.ToolKind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

package models

import "strings"

// ModelPreference decides which provider a run is allowed to use.
type ModelPreference string

const (
	PreferGemini ModelPreference = "gemini"
	PreferAuto   ModelPreference = "auto"
	PreferOllama ModelPreference = "ollama"
)

// Preferences lists the choices in the order the form shows them.
var Preferences = []ModelPreference{PreferGemini, PreferAuto, PreferOllama}

// Label is the human-readable text for the preference selector.
func (p ModelPreference) Label() string {
	switch p {
	case PreferGemini:
		return "Gemini Only"
	case PreferAuto:
		return "Auto (Gemini first, fallback to Ollama)"
	case PreferOllama:
		return "Ollama Only"
	}
	return string(p)
}

// NeedsGemini reports whether the preference may call the hosted provider.
func (p ModelPreference) NeedsGemini() bool {
	return p == PreferGemini || p == PreferAuto
}

// ParsePreference accepts the form value; unknown input falls back to PreferGemini.
func ParsePreference(s string) ModelPreference {
	switch ModelPreference(strings.ToLower(strings.TrimSpace(s))) {
	case PreferAuto:
		return PreferAuto
	case PreferOllama:
		return PreferOllama
	}
	return PreferGemini
}

// ToolKind identifies one search capability handed to the agent.
type ToolKind string

const (
	Wikipedia    ToolKind = "Wikipedia"
	DuckDuckGo   ToolKind = "DuckDuckGo"
	GoogleSearch ToolKind = "GoogleSearch"
)

// ToolSet holds the enable flags for every supported tool.
type ToolSet struct {
	Wikipedia    bool `json:"wikipedia"`
	DuckDuckGo   bool `json:"duckduckgo"`
	GoogleSearch bool `json:"googlesearch"`
}

// DefaultToolSet matches the form defaults.
func DefaultToolSet() ToolSet {
	return ToolSet{Wikipedia: true, DuckDuckGo: true}
}

// Kinds returns the enabled tools in fixed order: encyclopedia, privacy
// search, general search.
func (s ToolSet) Kinds() []ToolKind {
	var kinds []ToolKind
	if s.Wikipedia {
		kinds = append(kinds, Wikipedia)
	}
	if s.DuckDuckGo {
		kinds = append(kinds, DuckDuckGo)
	}
	if s.GoogleSearch {
		kinds = append(kinds, GoogleSearch)
	}
	return kinds
}

// Empty reports whether no tool is enabled.
func (s ToolSet) Empty() bool {
	return !s.Wikipedia && !s.DuckDuckGo && !s.GoogleSearch
}

// ReportLength is the desired size of the generated report.
type ReportLength string

const (
	Standard      ReportLength = "standard"
	Extended      ReportLength = "extended"
	Comprehensive ReportLength = "comprehensive"
)

var ReportLengths = []ReportLength{Standard, Extended, Comprehensive}

func (l ReportLength) Label() string {
	switch l {
	case Extended:
		return "Extended (8+ pages)"
	case Comprehensive:
		return "Comprehensive (10+ pages)"
	}
	return "Standard (5+ pages)"
}

func ParseReportLength(s string) ReportLength {
	switch ReportLength(strings.ToLower(strings.TrimSpace(s))) {
	case Extended:
		return Extended
	case Comprehensive:
		return Comprehensive
	}
	return Standard
}

// Settings are the sidebar choices that survive between renders.
// The API key is never part of it, so it is never persisted.
type Settings struct {
	OllamaModelID    string          `json:"ollama_model"`
	GeminiModelID    string          `json:"gemini_model"`
	Preference       ModelPreference `json:"preference"`
	Tools            ToolSet         `json:"tools"`
	Length           ReportLength    `json:"length"`
	IncludeCitations bool            `json:"citations"`
}

// DefaultSettings returns the form defaults for the given model ids.
func DefaultSettings(ollamaModel, geminiModel string) Settings {
	return Settings{
		OllamaModelID:    ollamaModel,
		GeminiModelID:    geminiModel,
		Preference:       PreferGemini,
		Tools:            DefaultToolSet(),
		Length:           Standard,
		IncludeCitations: true,
	}
}

// RunConfiguration is everything one report run needs. It is built fresh
// from user input on every request and discarded afterwards.
type RunConfiguration struct {
	Settings
	Topic        string
	GeminiAPIKey string
}

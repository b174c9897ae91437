package research

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/ayush/research-extractor/internal/models"
)

// Status levels for sidebar messages.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
)

// Status is a one-line message shown next to the configuration controls.
type Status struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// HostedOllamaWarning is shown whenever Ollama is the only allowed provider.
const HostedOllamaWarning = "Ollama won't work on hosted deployments. Use Gemini instead."

// ResolveKey picks the Gemini key for a run: typed input first, then the
// environment. The status tells the user which one is in effect.
func ResolveKey(input, envKey string, pref models.ModelPreference) (string, Status) {
	input = strings.TrimSpace(input)
	key := input
	if key == "" {
		key = envKey
	}
	switch {
	case input != "":
		return key, Status{Level: LevelSuccess, Message: "Gemini API Key configured (session only)"}
	case envKey != "":
		return key, Status{Level: LevelSuccess, Message: "Gemini API Key loaded from environment"}
	case pref.NeedsGemini():
		return key, Status{Level: LevelWarning, Message: "Gemini requires API key"}
	}
	return key, Status{Level: LevelInfo, Message: "Using Ollama (local model)"}
}

// ParseForm collects a run configuration from a form post. Text fields that
// are missing from the post keep their defaults; checkboxes are off unless
// present. Only emptiness is checked later, the values are taken as typed.
func ParseForm(r *http.Request, defaults models.Settings, envKey string) (models.RunConfiguration, Status, error) {
	if err := r.ParseForm(); err != nil {
		return models.RunConfiguration{}, Status{}, err
	}
	cfg, status := FromValues(r.PostForm, defaults, envKey)
	return cfg, status, nil
}

// FromValues is ParseForm over already parsed values.
func FromValues(form url.Values, defaults models.Settings, envKey string) (models.RunConfiguration, Status) {
	settings := models.Settings{
		OllamaModelID: textValue(form, "ollama_model", defaults.OllamaModelID),
		GeminiModelID: textValue(form, "gemini_model", defaults.GeminiModelID),
		Preference:    models.ParsePreference(textValue(form, "preference", string(defaults.Preference))),
		Tools: models.ToolSet{
			Wikipedia:    form.Has("wikipedia"),
			DuckDuckGo:   form.Has("duckduckgo"),
			GoogleSearch: form.Has("googlesearch"),
		},
		Length:           models.ParseReportLength(textValue(form, "length", string(defaults.Length))),
		IncludeCitations: form.Has("citations"),
	}
	key, status := ResolveKey(form.Get("api_key"), envKey, settings.Preference)
	return models.RunConfiguration{
		Settings:     settings,
		Topic:        strings.TrimSpace(form.Get("topic")),
		GeminiAPIKey: key,
	}, status
}

func textValue(form url.Values, key, fallback string) string {
	if !form.Has(key) {
		return fallback
	}
	return strings.TrimSpace(form.Get(key))
}

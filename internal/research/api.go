package research

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ayush/research-extractor/internal/models"
	"github.com/ayush/research-extractor/internal/selector"
)

// CreateRequest is the JSON body of POST /api/research. Omitted fields take
// the server defaults; the API key falls back to the environment.
type CreateRequest struct {
	Topic       string          `json:"topic"`
	APIKey      string          `json:"api_key"`
	Preference  string          `json:"preference"`
	GeminiModel *string         `json:"gemini_model"`
	OllamaModel *string         `json:"ollama_model"`
	Tools       *models.ToolSet `json:"tools"`
	Length      string          `json:"length"`
	Citations   *bool           `json:"citations"`
}

type errorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

// Config builds the run configuration for req.
func (req CreateRequest) Config(defaults models.Settings, envKey string) models.RunConfiguration {
	settings := defaults
	if req.Preference != "" {
		settings.Preference = models.ParsePreference(req.Preference)
	}
	if req.GeminiModel != nil {
		settings.GeminiModelID = strings.TrimSpace(*req.GeminiModel)
	}
	if req.OllamaModel != nil {
		settings.OllamaModelID = strings.TrimSpace(*req.OllamaModel)
	}
	if req.Tools != nil {
		settings.Tools = *req.Tools
	}
	if req.Length != "" {
		settings.Length = models.ParseReportLength(req.Length)
	}
	if req.Citations != nil {
		settings.IncludeCitations = *req.Citations
	}
	key, _ := ResolveKey(req.APIKey, envKey, settings.Preference)
	return models.RunConfiguration{
		Settings:     settings,
		Topic:        strings.TrimSpace(req.Topic),
		GeminiAPIKey: key,
	}
}

// Create runs the pipeline for a JSON request and returns the report.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	report, err := h.gen.Generate(r.Context(), req.Config(h.defaults, h.envKey))
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			log.Error("Research request failed", "error", err)
		}
		msg, hint := describe(err)
		writeJSON(w, status, errorResponse{Error: msg, Hint: hint})
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// Examples lists the example topics.
func (h *Handler) Examples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"topics": models.ExampleTopics})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrEmptyTopic), errors.Is(err, selector.ErrNoToolSelected):
		return http.StatusBadRequest
	case errors.Is(err, selector.ErrMissingCredential),
		errors.Is(err, selector.ErrMissingModelID),
		errors.Is(err, selector.ErrProviderUnavailable),
		errors.Is(err, selector.ErrNoProviderAvailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrGenerationFailure):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

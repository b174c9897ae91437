package selector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/research-extractor/internal/llm"
	"github.com/ayush/research-extractor/internal/models"
	"github.com/ayush/research-extractor/internal/provider"
	"github.com/ayush/research-extractor/internal/tools"
)

type stubModel struct{ provider, id string }

func (m stubModel) Provider() string { return m.provider }
func (m stubModel) ID() string       { return m.id }
func (m stubModel) Chat(context.Context, llm.ChatRequest) (*llm.Message, error) {
	return &llm.Message{Role: llm.RoleAssistant}, nil
}

// fakeFactory records construction attempts in order.
type fakeFactory struct {
	geminiErr error
	ollamaErr error
	calls     []provider.Kind
}

func (f *fakeFactory) Gemini(_ context.Context, id, _ string) (llm.Model, error) {
	f.calls = append(f.calls, provider.Gemini)
	if f.geminiErr != nil {
		return nil, f.geminiErr
	}
	return stubModel{"Gemini", id}, nil
}

func (f *fakeFactory) Ollama(_ context.Context, id string) (llm.Model, error) {
	f.calls = append(f.calls, provider.Ollama)
	if f.ollamaErr != nil {
		return nil, f.ollamaErr
	}
	return stubModel{"Ollama", id}, nil
}

func runConfig(pref models.ModelPreference, key, geminiID, ollamaID string) models.RunConfiguration {
	cfg := models.RunConfiguration{Settings: models.DefaultSettings(ollamaID, geminiID), GeminiAPIKey: key}
	cfg.Preference = pref
	return cfg
}

func TestOllamaOnlyWithoutModelID(t *testing.T) {
	f := &fakeFactory{}
	_, err := Select(context.Background(), runConfig(models.PreferOllama, "key", "gemini-2.0-flash", ""), f)

	require.ErrorIs(t, err, ErrMissingModelID)
	assert.Empty(t, f.calls, "no construction may be attempted")
}

func TestOllamaOnly(t *testing.T) {
	f := &fakeFactory{}
	sel, err := Select(context.Background(), runConfig(models.PreferOllama, "", "", "llama3.1"), f)

	require.NoError(t, err)
	assert.Equal(t, provider.Handle{Kind: provider.Ollama, ID: "llama3.1"}, sel.Handle)
}

func TestOllamaOnlyConstructionFailure(t *testing.T) {
	f := &fakeFactory{ollamaErr: errors.New("bad host")}
	_, err := Select(context.Background(), runConfig(models.PreferOllama, "", "", "llama3.1"), f)

	require.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "bad host")
}

func TestGeminiOnlyWithoutKey(t *testing.T) {
	f := &fakeFactory{}
	_, err := Select(context.Background(), runConfig(models.PreferGemini, "", "gemini-2.0-flash", "llama3.1"), f)

	require.ErrorIs(t, err, ErrMissingCredential)
	assert.Empty(t, f.calls)
}

func TestGeminiOnlyWithoutModelID(t *testing.T) {
	f := &fakeFactory{}
	_, err := Select(context.Background(), runConfig(models.PreferGemini, "key", "", "llama3.1"), f)

	require.ErrorIs(t, err, ErrMissingModelID)
	assert.Empty(t, f.calls)
}

func TestGeminiOnlyConstructionFailure(t *testing.T) {
	f := &fakeFactory{geminiErr: errors.New("boom")}
	_, err := Select(context.Background(), runConfig(models.PreferGemini, "key", "gemini-2.0-flash", "llama3.1"), f)

	require.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, []provider.Kind{provider.Gemini}, f.calls, "Gemini-only never falls back")
}

func TestAutoPrefersGemini(t *testing.T) {
	f := &fakeFactory{}
	sel, err := Select(context.Background(), runConfig(models.PreferAuto, "key", "gemini-2.0-flash", "llama3.1"), f)

	require.NoError(t, err)
	assert.Equal(t, provider.Gemini, sel.Handle.Kind)
	assert.Equal(t, []provider.Kind{provider.Gemini}, f.calls)
	assert.Empty(t, sel.Notices)
}

func TestAutoFallsBackToOllama(t *testing.T) {
	f := &fakeFactory{geminiErr: errors.New("quota")}
	sel, err := Select(context.Background(), runConfig(models.PreferAuto, "key", "gemini-2.0-flash", "llama3.1"), f)

	require.NoError(t, err)
	assert.Equal(t, provider.Handle{Kind: provider.Ollama, ID: "llama3.1"}, sel.Handle)
	assert.Equal(t, []provider.Kind{provider.Gemini, provider.Ollama}, f.calls)
	require.Len(t, sel.Notices, 1)
	assert.Contains(t, sel.Notices[0], "quota")
}

func TestAutoBothFail(t *testing.T) {
	f := &fakeFactory{geminiErr: errors.New("quota"), ollamaErr: errors.New("refused")}
	_, err := Select(context.Background(), runConfig(models.PreferAuto, "key", "gemini-2.0-flash", "llama3.1"), f)

	require.ErrorIs(t, err, ErrNoProviderAvailable)
	assert.Contains(t, err.Error(), "quota")
	assert.Contains(t, err.Error(), "refused")
}

func TestAutoGeminiFailsWithoutFallback(t *testing.T) {
	f := &fakeFactory{geminiErr: errors.New("quota")}
	_, err := Select(context.Background(), runConfig(models.PreferAuto, "key", "gemini-2.0-flash", ""), f)

	require.ErrorIs(t, err, ErrNoProviderAvailable)
	assert.Equal(t, []provider.Kind{provider.Gemini}, f.calls)
}

func TestAutoWithoutKeyUsesOllama(t *testing.T) {
	f := &fakeFactory{}
	sel, err := Select(context.Background(), runConfig(models.PreferAuto, "", "gemini-2.0-flash", "llama3.1"), f)

	require.NoError(t, err)
	assert.Equal(t, provider.Ollama, sel.Handle.Kind)
	assert.Equal(t, []provider.Kind{provider.Ollama}, f.calls)
}

func TestAutoOllamaOnlyPathFails(t *testing.T) {
	f := &fakeFactory{ollamaErr: errors.New("refused")}
	_, err := Select(context.Background(), runConfig(models.PreferAuto, "", "gemini-2.0-flash", "llama3.1"), f)

	require.ErrorIs(t, err, ErrNoProviderAvailable)
}

func TestAutoNothingConfigured(t *testing.T) {
	f := &fakeFactory{}
	_, err := Select(context.Background(), runConfig(models.PreferAuto, "", "gemini-2.0-flash", ""), f)

	require.ErrorIs(t, err, ErrNoProviderAvailable)
	assert.Empty(t, f.calls)
}

func TestBuildToolListOrder(t *testing.T) {
	// toggle order is irrelevant: only the flags reach the builder
	set := models.ToolSet{GoogleSearch: true, Wikipedia: true, DuckDuckGo: true}

	list, err := BuildToolList(set, tools.Options{})
	require.NoError(t, err)

	var kinds []models.ToolKind
	for _, tool := range list {
		kinds = append(kinds, tool.Kind())
	}
	assert.Equal(t, []models.ToolKind{models.Wikipedia, models.DuckDuckGo, models.GoogleSearch}, kinds)
}

func TestBuildToolListSubset(t *testing.T) {
	list, err := BuildToolList(models.ToolSet{GoogleSearch: true, DuckDuckGo: true}, tools.Options{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.DuckDuckGo, list[0].Kind())
	assert.Equal(t, models.GoogleSearch, list[1].Kind())
}

func TestBuildToolListEmpty(t *testing.T) {
	_, err := BuildToolList(models.ToolSet{}, tools.Options{})
	require.ErrorIs(t, err, ErrNoToolSelected)
}

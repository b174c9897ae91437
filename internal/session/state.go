// Package session keeps the per-browser UI state between renders.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ayush/research-extractor/internal/models"
)

// ErrNotFound is returned by stores for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// State is the UI state carried from one render pass to the next. It only
// changes through the transition methods below.
type State struct {
	TopicText    string           `json:"topic"`
	PendingClear bool             `json:"pending_clear"`
	Settings     *models.Settings `json:"settings,omitempty"`
}

// Begin starts a render pass: a clear requested by the previous successful
// run blanks the topic and resets the flag.
func (s *State) Begin() {
	if s.PendingClear {
		s.TopicText = ""
		s.PendingClear = false
	}
}

// Select records an example topic click.
func (s *State) Select(topic string) {
	s.TopicText = topic
}

// Submit records the topic typed by the user together with the sidebar settings.
func (s *State) Submit(topic string, settings models.Settings) {
	s.TopicText = topic
	s.Settings = &settings
}

// Succeed marks the run as finished; the topic is cleared on the next pass.
func (s *State) Succeed() {
	s.PendingClear = true
}

// Store persists State by session id.
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, id string, st *State) error
	Delete(ctx context.Context, id string) error
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.New().String()
}

// LoadOrNew returns the stored state, or an empty one when the session is unknown.
func LoadOrNew(ctx context.Context, store Store, id string) (*State, error) {
	st, err := store.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return &State{}, nil
	}
	return st, err
}

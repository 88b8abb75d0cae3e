package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Scorecard/internal/scorecard"
)

var ErrSessionNotFound = errors.New("session not found")

// Options are the per-session editor toggles.
type Options struct {
	LockWeights bool    `json:"lock_weights"`
	ScoreStep   float64 `json:"score_step"`
	ShowNotes   bool    `json:"show_notes"`
}

// Session is one user's working copy of a loaded scorecard. Base holds the
// items as loaded and is never modified; Edits holds the user's changes
// keyed by item ID.
type Session struct {
	ID     uuid.UUID        `json:"session_id"`
	Source string           `json:"source"`
	Format string           `json:"format"`
	Schema scorecard.Schema `json:"schema"`

	Base    []scorecard.ScoreItem      `json:"-"`
	Edits   map[int]scorecard.ItemEdit `json:"-"`
	Options Options                    `json:"options"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Items returns the current table: the loaded items with edits applied.
func (s *Session) Items() []scorecard.ScoreItem {
	return scorecard.ApplyEdits(s.Base, s.Edits)
}

// Item looks up a loaded item by ID.
func (s *Session) Item(id int) (scorecard.ScoreItem, bool) {
	for _, it := range s.Base {
		if it.ID == id {
			return it, true
		}
	}
	return scorecard.ScoreItem{}, false
}

// Edit merges e into the session's edits for item id.
func (s *Session) Edit(id int, e scorecard.ItemEdit) {
	if s.Edits == nil {
		s.Edits = make(map[int]scorecard.ItemEdit)
	}
	s.Edits[id] = s.Edits[id].Merge(e)
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	out := *s
	out.Schema = s.Schema.Clone()
	out.Base = append([]scorecard.ScoreItem(nil), s.Base...)
	out.Edits = make(map[int]scorecard.ItemEdit, len(s.Edits))
	for id, e := range s.Edits {
		out.Edits[id] = e.Clone()
	}
	return &out
}

type Store interface {
	CreateSession(ctx context.Context, s *Session) error
	// GetSession returns nil, nil when no session has the given ID.
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	ListSessions(ctx context.Context) ([]*Session, error)
	// MutateSession applies fn to a copy of the stored session and saves the
	// result in one step, so concurrent mutations never overwrite each other.
	// An error from fn leaves the session unchanged and is returned as is.
	MutateSession(ctx context.Context, id uuid.UUID, fn func(*Session) error) (*Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	Close() error
}

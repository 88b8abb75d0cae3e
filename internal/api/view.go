package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Scorecard/internal/scorecard"
	"github.com/MikeSquared-Agency/Scorecard/internal/scoring"
	"github.com/MikeSquared-Agency/Scorecard/internal/store"
)

// CategoryView is one category section of the editor with its items.
type CategoryView struct {
	Category string               `json:"category"`
	Items    []scoring.ItemResult `json:"items"`
}

// SessionView is everything the editor renders for a session.
type SessionView struct {
	SessionID  uuid.UUID                  `json:"session_id"`
	Source     string                     `json:"source"`
	Format     string                     `json:"format"`
	Options    store.Options              `json:"options"`
	Columns    map[scorecard.Field]string `json:"columns"`
	Categories []CategoryView             `json:"categories"`
	Summary    []scoring.CategorySummary  `json:"summary"`
	Overall    scoring.OverallResult      `json:"overall"`
	Headline   scoring.Headline           `json:"headline"`
	CreatedAt  time.Time                  `json:"created_at"`
	UpdatedAt  time.Time                  `json:"updated_at"`
}

// SummaryView is the category rollup without item detail.
type SummaryView struct {
	SessionID  uuid.UUID                 `json:"session_id"`
	Categories []scoring.CategorySummary `json:"categories"`
	Overall    scoring.OverallResult     `json:"overall"`
	Headline   scoring.Headline          `json:"headline"`
}

// SessionInfo is a session as listed.
type SessionInfo struct {
	SessionID uuid.UUID `json:"session_id"`
	Source    string    `json:"source"`
	Format    string    `json:"format"`
	Items     int       `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newSessionView(s *store.Session, res scoring.Result) SessionView {
	v := SessionView{
		SessionID:  s.ID,
		Source:     s.Source,
		Format:     s.Format,
		Options:    s.Options,
		Columns:    s.Schema.Headers(),
		Categories: []CategoryView{},
		Summary:    nonNilSummaries(res.Categories),
		Overall:    res.Overall,
		Headline:   scoring.NewHeadline(res.Overall),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}

	// res.Items is already grouped in category order
	for _, it := range res.Items {
		if !s.Options.ShowNotes {
			it.Notes = ""
		}
		n := len(v.Categories)
		if n == 0 || v.Categories[n-1].Category != it.Category {
			v.Categories = append(v.Categories, CategoryView{Category: it.Category})
			n++
		}
		v.Categories[n-1].Items = append(v.Categories[n-1].Items, it)
	}
	return v
}

func newSummaryView(s *store.Session, res scoring.Result) SummaryView {
	return SummaryView{
		SessionID:  s.ID,
		Categories: nonNilSummaries(res.Categories),
		Overall:    res.Overall,
		Headline:   scoring.NewHeadline(res.Overall),
	}
}

func newSessionInfo(s *store.Session) SessionInfo {
	return SessionInfo{
		SessionID: s.ID,
		Source:    s.Source,
		Format:    s.Format,
		Items:     len(s.Base),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func nonNilSummaries(c []scoring.CategorySummary) []scoring.CategorySummary {
	if c == nil {
		return []scoring.CategorySummary{}
	}
	return c
}

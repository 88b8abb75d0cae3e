package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Scorecard/internal/hermes"
	"github.com/MikeSquared-Agency/Scorecard/internal/scorecard"
	"github.com/MikeSquared-Agency/Scorecard/internal/scoring"
	"github.com/MikeSquared-Agency/Scorecard/internal/sheet"
	"github.com/MikeSquared-Agency/Scorecard/internal/store"
)

// SessionsConfig carries the settings the session handlers need.
type SessionsConfig struct {
	DefaultPath    string
	MaxUploadBytes int64
	Aliases        scorecard.AliasTable
	Defaults       store.Options
}

type SessionsHandler struct {
	store    store.Store
	hermes   hermes.Client
	agg      *scoring.Aggregator
	cfg      SessionsConfig
	validate *validator.Validate
	logger   *slog.Logger
}

func NewSessionsHandler(s store.Store, h hermes.Client, agg *scoring.Aggregator, cfg SessionsConfig, logger *slog.Logger) *SessionsHandler {
	if cfg.Aliases == nil {
		cfg.Aliases = scorecard.DefaultAliases()
	}
	return &SessionsHandler{
		store:    s,
		hermes:   h,
		agg:      agg,
		cfg:      cfg,
		validate: newValidator(),
		logger:   logger,
	}
}

type UpdateOptionsRequest struct {
	LockWeights *bool    `json:"lock_weights,omitempty"`
	ScoreStep   *float64 `json:"score_step,omitempty" validate:"omitempty,scorestep"`
	ShowNotes   *bool    `json:"show_notes,omitempty"`
}

type UpdateItemRequest struct {
	ResponsibleParty *string  `json:"responsible_party,omitempty" validate:"omitempty,max=200"`
	Weight           *float64 `json:"weight,omitempty" validate:"omitempty,gte=0,lte=5"`
	Score            *float64 `json:"score,omitempty" validate:"omitempty,gte=0,lte=5"`
	Notes            *string  `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// Create loads an uploaded scorecard, or the bundled default when the
// request carries no file, into a new session.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)

	table, err := h.readInput(r)
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	card, err := scorecard.Build(table, h.cfg.Aliases)
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	sess := &store.Session{
		Source:  card.Source,
		Format:  sheet.Format(card.Source),
		Schema:  card.Schema,
		Base:    card.Items,
		Edits:   make(map[int]scorecard.ItemEdit),
		Options: h.cfg.Defaults,
	}
	if err := h.store.CreateSession(r.Context(), sess); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	sessionsCreated.WithLabelValues(sess.Format).Inc()

	res := h.aggregate(sess)
	h.logger.Info("session created",
		"session_id", sess.ID,
		"source", sess.Source,
		"items", len(sess.Base),
		"categories", len(res.Categories),
	)
	h.publish(hermes.SubjectSessionLoaded(sess.ID.String()), hermes.SessionLoadedEvent{
		SessionID:      sess.ID.String(),
		Source:         sess.Source,
		Format:         sess.Format,
		Items:          len(sess.Base),
		Categories:     len(res.Categories),
		OverallPercent: percentPtr(res.Overall.OverallPercent),
		Signal:         string(res.Overall.Signal),
		Timestamp:      time.Now().UTC(),
	})

	writeJSON(w, http.StatusCreated, newSessionView(sess, res))
}

func (h *SessionsHandler) readInput(r *http.Request) (*sheet.Table, error) {
	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingFile):
		return h.loadDefault()
	case err != nil:
		return nil, err
	}
	defer file.Close()
	return sheet.Load(header.Filename, file)
}

func (h *SessionsHandler) loadDefault() (*sheet.Table, error) {
	if h.cfg.DefaultPath == "" {
		return nil, &scorecard.NoInputError{}
	}
	if _, err := os.Stat(h.cfg.DefaultPath); err != nil {
		return nil, &scorecard.NoInputError{DefaultPath: h.cfg.DefaultPath}
	}
	return sheet.LoadFile(h.cfg.DefaultPath)
}

func (h *SessionsHandler) writeLoadError(w http.ResponseWriter, err error) {
	var (
		missing     *scorecard.MissingColumnError
		noInput     *scorecard.NoInputError
		unsupported *sheet.UnsupportedFormatError
		tooLarge    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &missing):
		loadFailures.WithLabelValues("missing_columns").Inc()
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":     err.Error(),
			"missing":   missing.Missing,
			"available": missing.Available,
		})
	case errors.As(err, &noInput):
		loadFailures.WithLabelValues("no_input").Inc()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &unsupported):
		loadFailures.WithLabelValues("unsupported_format").Inc()
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": err.Error()})
	case errors.As(err, &tooLarge):
		loadFailures.WithLabelValues("too_large").Inc()
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
			"error": fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit),
		})
	default:
		loadFailures.WithLabelValues("unreadable").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read scorecard: " + err.Error()})
	}
	h.logger.Warn("scorecard load failed", "error", err)
}

func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.ListSessions(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	out := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, newSessionInfo(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(sess, h.aggregate(sess)))
}

func (h *SessionsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSummaryView(sess, h.aggregate(sess)))
}

func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}
	if err := h.store.DeleteSession(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.publish(hermes.SubjectSessionDeleted(id.String()), hermes.SessionDeletedEvent{
		SessionID: id.String(),
		Timestamp: time.Now().UTC(),
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionsHandler) UpdateOptions(w http.ResponseWriter, r *http.Request) {
	var req UpdateOptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validationMessage(err)})
		return
	}

	sess, ok := h.mutate(w, r, func(s *store.Session) error {
		if req.LockWeights != nil {
			s.Options.LockWeights = *req.LockWeights
		}
		if req.ScoreStep != nil {
			s.Options.ScoreStep = *req.ScoreStep
		}
		if req.ShowNotes != nil {
			s.Options.ShowNotes = *req.ShowNotes
		}
		return nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(sess, h.aggregate(sess)))
}

// UpdateItem applies an edit to one item and returns the re-aggregated
// session. Scores snap to the session's score step.
func (h *SessionsHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(chi.URLParam(r, "itemID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validationMessage(err)})
		return
	}

	var edit scorecard.ItemEdit
	sess, ok := h.mutate(w, r, func(s *store.Session) error {
		if _, ok := s.Item(itemID); !ok {
			return &statusError{status: http.StatusNotFound, msg: "item not found"}
		}
		edit = scorecard.ItemEdit{
			ResponsibleParty: req.ResponsibleParty,
			Weight:           req.Weight,
			Notes:            req.Notes,
		}
		if edit.Weight != nil && s.Options.LockWeights {
			return &statusError{status: http.StatusConflict, msg: "weights are locked"}
		}
		if edit.Notes != nil && !s.Options.ShowNotes {
			return &statusError{status: http.StatusConflict, msg: "notes are disabled"}
		}
		if req.Score != nil {
			snapped := scorecard.SnapToStep(*req.Score, s.Options.ScoreStep)
			edit.Score = &snapped
		}
		if edit.Empty() {
			return &statusError{status: http.StatusBadRequest, msg: "no fields to update"}
		}
		s.Edit(itemID, edit)
		return nil
	})
	if !ok {
		return
	}
	countEdits(edit)

	res := h.aggregate(sess)
	h.publish(hermes.SubjectSessionRecomputed(sess.ID.String()), hermes.SessionRecomputedEvent{
		SessionID:      sess.ID.String(),
		Trigger:        "item_edit",
		ItemID:         &itemID,
		OverallPercent: percentPtr(res.Overall.OverallPercent),
		Signal:         string(res.Overall.Signal),
		Timestamp:      time.Now().UTC(),
	})
	writeJSON(w, http.StatusOK, newSessionView(sess, res))
}

// statusError rejects a mutation with a client-facing status.
type statusError struct {
	status int
	msg    string
}

func (e *statusError) Error() string { return e.msg }

func (h *SessionsHandler) loadSession(w http.ResponseWriter, r *http.Request) (*store.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return nil, false
	}
	sess, err := h.store.GetSession(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	if sess == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return sess, true
}

// mutate applies fn to the session named in the URL as one atomic store
// update and writes the error response when it fails.
func (h *SessionsHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(*store.Session) error) (*store.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return nil, false
	}
	sess, err := h.store.MutateSession(r.Context(), id, fn)
	if err != nil {
		var se *statusError
		switch {
		case errors.As(err, &se):
			writeJSON(w, se.status, map[string]string{"error": se.msg})
		case errors.Is(err, store.ErrSessionNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return nil, false
	}
	return sess, true
}

// aggregate recomputes the session from scratch.
func (h *SessionsHandler) aggregate(sess *store.Session) scoring.Result {
	start := time.Now()
	res := h.agg.Aggregate(sess.Items())
	aggregationDuration.Observe(time.Since(start).Seconds())
	return res
}

// publish is best effort; event failures never fail a request.
func (h *SessionsHandler) publish(subject string, event interface{}) {
	if h.hermes == nil {
		return
	}
	if err := h.hermes.Publish(subject, event); err != nil {
		h.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

func countEdits(e scorecard.ItemEdit) {
	if e.ResponsibleParty != nil {
		itemEdits.WithLabelValues("responsible_party").Inc()
	}
	if e.Weight != nil {
		itemEdits.WithLabelValues("weight").Inc()
	}
	if e.Score != nil {
		itemEdits.WithLabelValues("score").Inc()
	}
	if e.Notes != nil {
		itemEdits.WithLabelValues("notes").Inc()
	}
}

func percentPtr(p scoring.Percent) *float64 {
	if !p.Defined() {
		return nil
	}
	v := float64(p)
	return &v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

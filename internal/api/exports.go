package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/Scorecard/internal/export"
	"github.com/MikeSquared-Agency/Scorecard/internal/hermes"
)

type ExportHandler struct {
	sessions  *SessionsHandler
	formatter *export.Formatter
}

func NewExportHandler(sessions *SessionsHandler, formatter *export.Formatter) *ExportHandler {
	return &ExportHandler{sessions: sessions, formatter: formatter}
}

func (h *ExportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "summary")
}

func (h *ExportHandler) Full(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "full")
}

// serve renders the whole file before writing anything, so a failed export
// never sends a partial download.
func (h *ExportHandler) serve(w http.ResponseWriter, r *http.Request, kind string) {
	sess, ok := h.sessions.loadSession(w, r)
	if !ok {
		return
	}
	res := h.sessions.aggregate(sess)

	opts := h.formatter.SummaryTable(sess.Schema, res)
	filename := export.SummaryFilename
	if kind == "full" {
		opts = h.formatter.FullTable(sess.Schema, res)
		filename = export.FullFilename
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, opts); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	exportsTotal.WithLabelValues(kind).Inc()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())

	h.sessions.publish(hermes.SubjectSessionExported(sess.ID.String()), hermes.SessionExportedEvent{
		SessionID: sess.ID.String(),
		Kind:      kind,
		Filename:  filename,
		Rows:      len(opts.Records),
		Timestamp: time.Now().UTC(),
	})
}

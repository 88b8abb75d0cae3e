package hermes

const (
	StreamName     = "SCORECARD_EVENTS"
	StreamSubjects = "scorecard.>"
	StreamMaxAge   = "720h" // 30 days
)

// Session lifecycle subjects
func SubjectSessionLoaded(sessionID string) string     { return "scorecard.session." + sessionID + ".loaded" }
func SubjectSessionRecomputed(sessionID string) string { return "scorecard.session." + sessionID + ".recomputed" }
func SubjectSessionExported(sessionID string) string   { return "scorecard.session." + sessionID + ".exported" }
func SubjectSessionDeleted(sessionID string) string    { return "scorecard.session." + sessionID + ".deleted" }

package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer     Action = "answer"
	ActionClear      Action = "clear"
	ActionMarkReview Action = "mark_review"
	ActionGoto       Action = "goto"
	ActionNext       Action = "next"
	ActionPrevious   Action = "previous"
	ActionOverview   Action = "overview"
	ActionViolation  Action = "violation"
	ActionSubmit     Action = "submit"
	ActionPing       Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest saves the student's answer for one question.
type AnswerRequest struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
	Answer string `json:"answer"`
}

// ClearRequest withdraws the saved answer for one question.
type ClearRequest struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
}

// MarkReviewRequest flags an answered question for later review.
type MarkReviewRequest struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
}

// GotoRequest jumps the navigation cursor to a question.
type GotoRequest struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
}

// ViolationRequest reports a proctoring event observed by the client.
type ViolationRequest struct {
	Action  Action `json:"action"`
	Payload string `json:"payload"` // Receives the JSON string directly
}

// SubmitRequest finishes the attempt and locks in the score.
type SubmitRequest struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventStarted   Event = "started"
	EventSaved     Event = "saved"
	EventOverview  Event = "overview"
	EventWarning   Event = "warning"
	EventSubmitted Event = "submitted"
	EventPong      Event = "pong"
)

// StartedResponse carries the full session bootstrap: questions in display
// order, per-question statuses and the remaining clock.
type StartedResponse struct {
	Event   Event       `json:"event"`
	Session interface{} `json:"session"`
}

// SavedResponse acknowledges an answer save, clear, mark or navigation.
type SavedResponse struct {
	Event Event `json:"event"`
	Index int   `json:"index"`
}

// OverviewResponse carries the current navigation summary.
type OverviewResponse struct {
	Event    Event       `json:"event"`
	Overview interface{} `json:"overview"`
}

// WarningResponse informs the client a violation was counted.
type WarningResponse struct {
	Event        Event `json:"event"`
	WarningCount int   `json:"warning_count"`
	Threshold    int   `json:"threshold"`
}

// SubmittedResponse reports the final outcome after submission, whether
// student-initiated or automatic.
type SubmittedResponse struct {
	Event         Event       `json:"event"`
	AutoSubmitted bool        `json:"auto_submitted"`
	Reason        string      `json:"reason,omitempty"`
	Summary       interface{} `json:"summary"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/examsecure/examsecure-backend/internal/integrity"
	"github.com/examsecure/examsecure-backend/internal/model"
	"github.com/examsecure/examsecure-backend/internal/presentation"
	"github.com/examsecure/examsecure-backend/internal/score"
)

// StartInfo is everything a client needs to render a freshly started or
// resumed session.
type StartInfo struct {
	Attempt      model.Attempt              `json:"attempt"`
	Questions    []model.QuestionForStudent `json:"questions"`
	CurrentIndex int                        `json:"current_index"`
	Statuses     []presentation.Status      `json:"statuses"`
	RemainingMS  int64                      `json:"remaining_ms"`
	Resumed      bool                       `json:"resumed"`
}

// ManagerDeps are the collaborators a Manager wires into each session.
type ManagerDeps struct {
	Catalog  Catalog
	Attempts AttemptStore
	Answers  AnswerStore
	Audit    AuditSink
	Recorder integrity.Recorder

	// NewMonitor and NewBridge build per-session instances. The bridge
	// factory lets single-node deployments swap the Redis store for memory.
	NewMonitor func() Monitor
	NewBridge  func() SnapshotBridge

	WarningThreshold int
	Log              zerolog.Logger
}

type sessionKey struct {
	examID    uuid.UUID
	studentID int
}

// Manager owns the live sessions of this process, at most one per
// (exam, student) pair. A second Start for the same pair while a session is
// live returns the existing engine, which is how a reconnecting client
// resumes in place.
type Manager struct {
	deps ManagerDeps
	log  zerolog.Logger

	mu      sync.Mutex
	engines map[sessionKey]*Engine
}

func NewManager(deps ManagerDeps) *Manager {
	return &Manager{
		deps:    deps,
		log:     deps.Log.With().Str("component", "session_manager").Logger(),
		engines: make(map[sessionKey]*Engine),
	}
}

// Start opens or resumes the session for (examID, studentID). The sequence
// of checks is fixed: registration, prior completion, availability window,
// then find-or-create of the attempt. An open attempt whose clock already
// ran out is finalized immediately and Start reports ErrAlreadyCompleted.
func (m *Manager) Start(ctx context.Context, examID uuid.UUID, studentID int) (*Engine, StartInfo, error) {
	key := sessionKey{examID: examID, studentID: studentID}

	m.mu.Lock()
	if existing, ok := m.engines[key]; ok {
		m.mu.Unlock()
		info, err := m.infoFor(ctx, existing, true)
		return existing, info, err
	}
	m.mu.Unlock()

	exam, err := m.deps.Catalog.ExamForStudent(ctx, examID, studentID)
	if err != nil {
		return nil, StartInfo{}, err
	}

	done, err := m.deps.Attempts.HasSubmitted(ctx, examID, studentID)
	if err != nil {
		return nil, StartInfo{}, err
	}
	if done {
		return nil, StartInfo{}, ErrAlreadyCompleted
	}

	now := time.Now()
	if !exam.AvailableAt(now) {
		return nil, StartInfo{}, ErrNotAvailable
	}

	resumed := true
	attempt, err := m.deps.Attempts.FindActive(ctx, examID, studentID)
	if errors.Is(err, ErrNotFound) {
		resumed = false
		attempt, err = m.deps.Attempts.Create(ctx, examID, studentID)
	}
	if err != nil {
		return nil, StartInfo{}, err
	}

	remaining := m.remainingFor(exam, attempt, now)
	if remaining <= 0 {
		m.expireAttempt(ctx, exam, attempt)
		return nil, StartInfo{}, ErrAlreadyCompleted
	}

	engine := &Engine{
		exam:             exam,
		attempt:          attempt,
		view:             presentation.NewView(exam.Questions),
		attempts:         m.deps.Attempts,
		answers:          m.deps.Answers,
		audit:            m.deps.Audit,
		monitor:          m.deps.NewMonitor(),
		recorder:         m.deps.Recorder,
		bridge:           m.deps.NewBridge(),
		log: m.log.With().
			Str("attempt_id", attempt.ID.String()).
			Int("student_id", studentID).
			Logger(),
		warningThreshold: m.deps.WarningThreshold,
		saved:            make(map[int]model.Answer),
		events:           make(chan func()),
		quit:             make(chan struct{}),
		finished:         make(chan struct{}),
		state:            StateNotStarted,
		onFinalize:       func(e *Engine) { m.deregister(key, e) },
	}

	m.mu.Lock()
	if racing, ok := m.engines[key]; ok {
		m.mu.Unlock()
		info, err := m.infoFor(ctx, racing, true)
		return racing, info, err
	}
	m.engines[key] = engine
	m.mu.Unlock()

	if err := engine.start(context.Background(), remaining, resumed); err != nil {
		m.mu.Lock()
		delete(m.engines, key)
		m.mu.Unlock()
		return nil, StartInfo{}, err
	}

	info, err := m.infoFor(ctx, engine, false)
	if err != nil {
		return engine, StartInfo{}, err
	}
	info.Resumed = resumed
	return engine, info, nil
}

// Get returns the live engine for (examID, studentID), or nil.
func (m *Manager) Get(examID uuid.UUID, studentID int) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engines[sessionKey{examID: examID, studentID: studentID}]
}

// Release closes a live engine and removes it from the registry. The
// attempt stays open; the next Start resumes it from storage.
func (m *Manager) Release(examID uuid.UUID, studentID int, e *Engine) {
	m.deregister(sessionKey{examID: examID, studentID: studentID}, e)
	e.Close()
}

// CloseAll shuts down every live session without submitting it; open
// attempts remain resumable. Called on server shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	engines := make([]*Engine, 0, len(m.engines))
	for _, e := range m.engines {
		engines = append(engines, e)
	}
	m.engines = make(map[sessionKey]*Engine)
	m.mu.Unlock()

	for _, e := range engines {
		e.Close()
	}
}

func (m *Manager) deregister(key sessionKey, e *Engine) {
	m.mu.Lock()
	if m.engines[key] == e {
		delete(m.engines, key)
	}
	m.mu.Unlock()
}

func (m *Manager) infoFor(ctx context.Context, e *Engine, resumed bool) (StartInfo, error) {
	attempt, err := e.Attempt(ctx)
	if err != nil {
		return StartInfo{}, err
	}
	questions, err := e.Questions(ctx)
	if err != nil {
		return StartInfo{}, err
	}
	ov, err := e.Overview(ctx)
	if err != nil {
		return StartInfo{}, err
	}
	return StartInfo{
		Attempt:      attempt,
		Questions:    questions,
		CurrentIndex: ov.CurrentIndex,
		Statuses:     ov.Statuses,
		RemainingMS:  ov.RemainingMS,
		Resumed:      resumed,
	}, nil
}

// remainingFor computes the time left on an attempt: the attempt clock runs
// from its start for the exam's duration, clamped to the exam's closing
// time when one is set.
func (m *Manager) remainingFor(exam *model.Exam, attempt *model.Attempt, now time.Time) time.Duration {
	deadline := attempt.StartTime.Add(time.Duration(exam.DurationMinutes) * time.Minute)
	if exam.EndTime != nil && exam.EndTime.Before(deadline) {
		deadline = *exam.EndTime
	}
	return deadline.Sub(now)
}

// expireAttempt finalizes an attempt whose clock ran out between sessions:
// the score is recomputed from whatever answers were saved before the
// interruption.
func (m *Manager) expireAttempt(ctx context.Context, exam *model.Exam, attempt *model.Attempt) {
	answers, err := m.deps.Answers.ListByAttempt(ctx, attempt.ID)
	if err != nil {
		m.log.Error().Err(err).
			Str("attempt_id", attempt.ID.String()).
			Msg("Failed to load answers for expired attempt")
	}
	summary := score.Aggregate(exam.Questions, answers)

	if err := m.deps.Attempts.Finalize(ctx, attempt.ID, summary.TotalScore, true); err != nil {
		m.log.Error().Err(err).
			Str("attempt_id", attempt.ID.String()).
			Msg("Failed to finalize expired attempt")
		return
	}

	bridge := m.deps.NewBridge()
	if err := bridge.Clear(ctx, attempt.ID); err != nil {
		m.log.Warn().Err(err).Msg("Failed to clear snapshot of expired attempt")
	}
	if err := m.deps.Audit.Record(ctx, model.AuditLog{
		Event:     model.AuditEventSubmitExam,
		StudentID: attempt.StudentID,
		ExamID:    exam.ID,
		AttemptID: attempt.ID,
		Outcome:   "expired_on_resume",
	}); err != nil {
		m.log.Warn().Err(err).Msg("Failed to record expiry submit event")
	}

	m.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Int("total_score", summary.TotalScore).
		Msg("Expired attempt auto-submitted")
}

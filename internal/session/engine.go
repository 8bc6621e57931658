// Package session runs one student's exam attempt as a single-threaded
// event loop. Every mutation of session state — answers, navigation,
// integrity warnings, submission — is applied by the loop goroutine, so no
// interleaving of operations can observe a half-applied transition. The loop
// also consumes the integrity monitor's violation stream and the attempt
// timer, which makes auto-submission an ordinary event rather than a
// special case.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/examsecure/examsecure-backend/internal/autosave"
	"github.com/examsecure/examsecure-backend/internal/integrity"
	"github.com/examsecure/examsecure-backend/internal/model"
	"github.com/examsecure/examsecure-backend/internal/presentation"
	"github.com/examsecure/examsecure-backend/internal/score"
	"github.com/examsecure/examsecure-backend/internal/timer"
)

// State is the lifecycle phase of a session.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateSubmitted  State = "submitted"
)

// Overview is the navigation summary pushed to the student on demand.
type Overview struct {
	State         State                 `json:"state"`
	CurrentIndex  int                   `json:"current_index"`
	Statuses      []presentation.Status `json:"statuses"`
	AnsweredCount int                   `json:"answered_count"`
	WarningCount  int                   `json:"warning_count"`
	RemainingMS   int64                 `json:"remaining_ms"`
}

// SubmitResult is the outcome of a finalized attempt.
type SubmitResult struct {
	Attempt model.Attempt `json:"attempt"`
	Summary score.Summary `json:"summary"`
	Reason  string        `json:"reason"`
}

// Engine is the per-attempt session loop. Construct one through the
// Manager; all methods are safe for concurrent use.
type Engine struct {
	exam    *model.Exam
	attempt *model.Attempt
	view    *presentation.View

	attempts AttemptStore
	answers  AnswerStore
	audit    AuditSink
	monitor  Monitor
	recorder integrity.Recorder
	bridge   SnapshotBridge
	log      zerolog.Logger

	warningThreshold int
	onFinalize       func(*Engine)

	// saved mirrors the persisted answers for this attempt, keyed by
	// question position. Finalization aggregates from this map so a storage
	// read failure at submit time cannot lose the score.
	saved map[int]model.Answer

	timer      *timer.ExamTimer
	violations <-chan integrity.Violation

	events    chan func()
	quit      chan struct{}
	finished  chan struct{}
	closeOnce sync.Once

	// state is owned by the loop goroutine after Start.
	state  State
	result SubmitResult

	snapMu     sync.Mutex
	snap       autosave.Snapshot
	snapActive bool
}

// start seeds the session from persisted answers and an optional resume
// snapshot, then launches the loop, timer, monitor and autosave bridge.
// Called exactly once by the Manager while it still has sole ownership.
func (e *Engine) start(ctx context.Context, remaining time.Duration, resumed bool) error {
	persisted, err := e.answers.ListByAttempt(ctx, e.attempt.ID)
	if err != nil {
		return err
	}
	for _, a := range persisted {
		for i := range e.exam.Questions {
			if a.Matches(&e.exam.Questions[i]) {
				e.saved[i] = a
				e.view.SetAnswered(i, true)
				break
			}
		}
	}

	if resumed && !e.restoreSnapshot(ctx) {
		// No usable snapshot; drop the student on the first question they
		// have not answered yet instead of question one.
		if idx := e.view.FirstUnanswered(); idx >= 0 {
			e.view.Show(idx)
		}
	}

	e.state = StateInProgress
	e.publishSnapshot()

	e.violations = e.monitor.Violations()
	e.timer = timer.New(remaining, e.onExpire)
	e.monitor.StartMonitoring()
	e.monitor.EnterEnforcedMode()
	e.bridge.Start(ctx, e.snapshotGetter)

	go e.run()

	if err := e.audit.Record(ctx, model.AuditLog{
		Event:     model.AuditEventStartExam,
		StudentID: e.attempt.StudentID,
		ExamID:    e.exam.ID,
		AttemptID: e.attempt.ID,
	}); err != nil {
		e.log.Warn().Err(err).Msg("Failed to record start event")
	}
	return nil
}

// restoreSnapshot overlays cursor position and review marks from a fresh
// resume snapshot and reports whether one was applied. Answer state is
// never taken from the snapshot; the persisted answers loaded above are
// authoritative.
func (e *Engine) restoreSnapshot(ctx context.Context) bool {
	snap, err := e.bridge.Load(ctx, e.attempt.ID)
	if err != nil {
		if err != autosave.ErrNoSnapshot {
			e.log.Warn().Err(err).Msg("Resume snapshot unavailable")
		}
		return false
	}
	if snap.CurrentIndex >= 0 && snap.CurrentIndex < e.view.Len() {
		e.view.Show(snap.CurrentIndex)
	}
	for i, s := range snap.Statuses {
		if i >= e.view.Len() {
			break
		}
		if s == presentation.StatusMarked {
			if _, ok := e.saved[i]; ok {
				e.view.MarkForReview(i)
			}
		}
	}
	return true
}

func (e *Engine) run() {
	for {
		select {
		case <-e.quit:
			return
		case fn := <-e.events:
			fn()
		case v, ok := <-e.violations:
			if !ok {
				e.violations = nil
				continue
			}
			e.handleViolation(v)
		}
	}
}

// do posts fn to the loop and waits for it to complete.
func (e *Engine) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	wrapped := func() {
		fn()
		close(done)
	}
	select {
	case e.events <- wrapped:
	case <-e.quit:
		return ErrAlreadyCompleted
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Attempt returns a copy of the attempt row as last known to the session.
func (e *Engine) Attempt(ctx context.Context) (model.Attempt, error) {
	var out model.Attempt
	err := e.do(ctx, func() { out = *e.attempt })
	return out, err
}

// State reports the current lifecycle phase. A closed engine answers from
// the final outcome: submitted if the attempt was finalized, otherwise the
// attempt is still open and waiting for a resume.
func (e *Engine) State(ctx context.Context) (State, error) {
	var out State
	err := e.do(ctx, func() { out = e.state })
	if err == ErrAlreadyCompleted {
		select {
		case <-e.finished:
			return StateSubmitted, nil
		default:
			return StateInProgress, nil
		}
	}
	return out, err
}

// Questions returns the attempt's question set in display order, without
// correct answers.
func (e *Engine) Questions(ctx context.Context) ([]model.QuestionForStudent, error) {
	var out []model.QuestionForStudent
	err := e.do(ctx, func() { out = e.view.ForStudent() })
	return out, err
}

// Overview returns the navigation summary.
func (e *Engine) Overview(ctx context.Context) (Overview, error) {
	var out Overview
	err := e.do(ctx, func() { out = e.overviewLocked() })
	return out, err
}

func (e *Engine) overviewLocked() Overview {
	o := Overview{
		State:        e.state,
		CurrentIndex: e.view.CurrentIndex(),
		Statuses:     e.view.Statuses(),
		WarningCount: e.attempt.WarningCount,
	}
	o.AnsweredCount = len(e.saved)
	if e.timer != nil {
		o.RemainingMS = e.timer.Remaining().Milliseconds()
	}
	return o
}

// SaveAnswer grades and persists the student's answer for the question at
// index, replacing any previous answer. The graded outcome is never exposed
// to the student while the session is in progress.
func (e *Engine) SaveAnswer(ctx context.Context, index int, answerText string) error {
	var opErr error
	err := e.do(ctx, func() {
		if e.state != StateInProgress {
			opErr = ErrAlreadyCompleted
			return
		}
		dq, err := e.view.QuestionAt(index)
		if err != nil {
			opErr = ErrInvalidInput
			return
		}
		if strings.TrimSpace(answerText) == "" {
			opErr = ErrInvalidInput
			return
		}
		ans, err := e.answers.Save(ctx, e.attempt.ID, &dq.Question, answerText)
		if err != nil {
			opErr = err
			return
		}
		e.saved[index] = *ans
		e.view.SetAnswered(index, true)
		e.publishSnapshot()
	})
	if err != nil {
		return err
	}
	return opErr
}

// ClearAnswer removes the saved answer for the question at index.
func (e *Engine) ClearAnswer(ctx context.Context, index int) error {
	var opErr error
	err := e.do(ctx, func() {
		if e.state != StateInProgress {
			opErr = ErrAlreadyCompleted
			return
		}
		dq, err := e.view.QuestionAt(index)
		if err != nil {
			opErr = ErrInvalidInput
			return
		}
		if err := e.answers.Clear(ctx, e.attempt.ID, &dq.Question); err != nil {
			opErr = err
			return
		}
		delete(e.saved, index)
		e.view.SetAnswered(index, false)
		e.publishSnapshot()
	})
	if err != nil {
		return err
	}
	return opErr
}

// MarkForReview flags an answered question for later review. Marking an
// unanswered question is rejected.
func (e *Engine) MarkForReview(ctx context.Context, index int) error {
	var opErr error
	err := e.do(ctx, func() {
		if e.state != StateInProgress {
			opErr = ErrAlreadyCompleted
			return
		}
		if err := e.view.MarkForReview(index); err != nil {
			opErr = ErrInvalidInput
			return
		}
		e.publishSnapshot()
	})
	if err != nil {
		return err
	}
	return opErr
}

// Goto moves the navigation cursor to index.
func (e *Engine) Goto(ctx context.Context, index int) error {
	var opErr error
	err := e.do(ctx, func() {
		if e.state != StateInProgress {
			opErr = ErrAlreadyCompleted
			return
		}
		if err := e.view.Show(index); err != nil {
			opErr = ErrInvalidInput
			return
		}
		e.publishSnapshot()
	})
	if err != nil {
		return err
	}
	return opErr
}

// Next advances the cursor; a no-op on the last question.
func (e *Engine) Next(ctx context.Context) error {
	return e.navigate(ctx, (*presentation.View).Next)
}

// Previous steps the cursor back; a no-op on the first question.
func (e *Engine) Previous(ctx context.Context) error {
	return e.navigate(ctx, (*presentation.View).Previous)
}

func (e *Engine) navigate(ctx context.Context, move func(*presentation.View)) error {
	var opErr error
	err := e.do(ctx, func() {
		if e.state != StateInProgress {
			opErr = ErrAlreadyCompleted
			return
		}
		move(e.view)
		e.publishSnapshot()
	})
	if err != nil {
		return err
	}
	return opErr
}

// ReportViolation counts a proctoring violation delivered over the control
// channel and returns the updated warning count. Violations from an external
// monitor arrive through the Violations channel instead; both paths share
// the same accounting.
func (e *Engine) ReportViolation(ctx context.Context, payload string) (int, error) {
	var (
		count int
		opErr error
	)
	err := e.do(ctx, func() {
		if e.state != StateInProgress {
			opErr = ErrAlreadyCompleted
			return
		}
		e.handleViolation(integrity.Violation{Payload: payload})
		count = e.attempt.WarningCount
	})
	if err != nil {
		return 0, err
	}
	return count, opErr
}

// Submit finalizes the attempt on the student's request.
func (e *Engine) Submit(ctx context.Context) (SubmitResult, error) {
	var (
		out   SubmitResult
		opErr error
	)
	err := e.do(ctx, func() {
		if e.state != StateInProgress {
			opErr = ErrAlreadyCompleted
			return
		}
		e.finalize(false, "student_submit")
		out = e.result
	})
	if err != nil {
		return SubmitResult{}, err
	}
	return out, opErr
}

// Result returns the finalized outcome; ErrNotAvailable before submission.
func (e *Engine) Result(ctx context.Context) (SubmitResult, error) {
	var (
		out   SubmitResult
		opErr error
	)
	err := e.do(ctx, func() {
		if e.state != StateSubmitted {
			opErr = ErrNotAvailable
			return
		}
		out = e.result
	})
	if err != nil {
		return SubmitResult{}, err
	}
	return out, opErr
}

// Done is closed once the attempt reaches its final state.
func (e *Engine) Done() <-chan struct{} {
	return e.finished
}

// Remaining reports time left on the attempt clock.
func (e *Engine) Remaining() time.Duration {
	if e.timer == nil {
		return 0
	}
	return e.timer.Remaining()
}

// Close stops the loop and releases the timer and autosave ticker. The
// attempt itself is untouched; an unfinished attempt stays open for resume.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.quit)
		if e.timer != nil {
			e.timer.Stop()
		}
		e.snapMu.Lock()
		e.snapActive = false
		e.snapMu.Unlock()
		e.bridge.Stop()
		e.monitor.Close()
	})
}

func (e *Engine) onExpire() {
	select {
	case e.events <- func() { e.finalize(true, "time_expired") }:
	case <-e.quit:
	}
}

// handleViolation runs on the loop goroutine. Each violation bumps the
// warning counter; reaching the threshold force-submits the attempt.
// Violations are only counted while the monitor is in enforced mode.
func (e *Engine) handleViolation(v integrity.Violation) {
	if e.state != StateInProgress || !e.monitor.Enforced() {
		return
	}
	v.AttemptID = e.attempt.ID
	v.StudentID = e.attempt.StudentID
	v.ExamID = e.exam.ID

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := e.attempts.IncrementWarnings(ctx, e.attempt.ID)
	if err != nil {
		e.log.Error().Err(err).Msg("Failed to persist warning count")
		count = e.attempt.WarningCount + 1
	}
	e.attempt.WarningCount = count

	if e.recorder != nil {
		if err := e.recorder.Record(ctx, v); err != nil {
			e.log.Error().Err(err).Msg("Failed to record violation")
		}
	}

	e.log.Warn().
		Str("attempt_id", e.attempt.ID.String()).
		Int("warning_count", count).
		Str("payload", v.Payload).
		Msg("Integrity violation")

	e.publishSnapshot()

	if count >= e.warningThreshold {
		e.finalize(true, "violation_threshold")
	}
}

// finalize is the single Submitted transition. It recomputes the score from
// the saved answers, persists the outcome, and tears down the session's
// periphery. Cleanup failures are logged and never revert the transition.
func (e *Engine) finalize(autoSubmitted bool, reason string) {
	if e.state == StateSubmitted {
		return
	}
	e.state = StateSubmitted

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	answers := make([]model.Answer, 0, len(e.saved))
	for _, a := range e.saved {
		answers = append(answers, a)
	}
	summary := score.Aggregate(e.exam.Questions, answers)

	if err := e.attempts.Finalize(ctx, e.attempt.ID, summary.TotalScore, autoSubmitted); err != nil {
		e.log.Error().Err(err).
			Str("attempt_id", e.attempt.ID.String()).
			Msg("Failed to persist final score")
	}

	now := time.Now()
	e.attempt.Submitted = true
	e.attempt.AutoSubmitted = autoSubmitted
	e.attempt.EndTime = &now
	e.attempt.TotalScore = summary.TotalScore
	e.result = SubmitResult{Attempt: *e.attempt, Summary: summary, Reason: reason}

	e.log.Info().
		Str("attempt_id", e.attempt.ID.String()).
		Str("reason", reason).
		Int("total_score", summary.TotalScore).
		Bool("auto_submitted", autoSubmitted).
		Msg("Attempt submitted")

	// Teardown. None of this can undo the submission.
	if e.timer != nil {
		e.timer.Stop()
	}
	e.monitor.StopMonitoring()
	e.monitor.ExitEnforcedMode()
	e.monitor.Close()

	e.snapMu.Lock()
	e.snapActive = false
	e.snapMu.Unlock()

	if err := e.bridge.Clear(ctx, e.attempt.ID); err != nil {
		e.log.Warn().Err(err).Msg("Failed to clear resume snapshot")
	}

	if err := e.audit.Record(ctx, model.AuditLog{
		Event:     model.AuditEventSubmitExam,
		StudentID: e.attempt.StudentID,
		ExamID:    e.exam.ID,
		AttemptID: e.attempt.ID,
		Outcome:   reason,
	}); err != nil {
		e.log.Warn().Err(err).Msg("Failed to record submit event")
	}

	close(e.finished)
	if e.onFinalize != nil {
		e.onFinalize(e)
	}
}

// publishSnapshot refreshes the state the autosave bridge reads. Runs on
// the loop goroutine; the bridge's ticker reads under snapMu.
func (e *Engine) publishSnapshot() {
	e.snapMu.Lock()
	defer e.snapMu.Unlock()
	e.snapActive = e.state == StateInProgress
	e.snap = autosave.Snapshot{
		AttemptID:    e.attempt.ID,
		ExamID:       e.exam.ID,
		StudentID:    e.attempt.StudentID,
		CurrentIndex: e.view.CurrentIndex(),
		Statuses:     e.view.Statuses(),
		WarningCount: e.attempt.WarningCount,
	}
}

func (e *Engine) snapshotGetter() (autosave.Snapshot, bool) {
	e.snapMu.Lock()
	defer e.snapMu.Unlock()
	return e.snap, e.snapActive
}

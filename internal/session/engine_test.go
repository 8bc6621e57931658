package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/examsecure/examsecure-backend/internal/autosave"
	"github.com/examsecure/examsecure-backend/internal/grading"
	"github.com/examsecure/examsecure-backend/internal/integrity"
	"github.com/examsecure/examsecure-backend/internal/model"
)

// ---- fakes ----

type fakeCatalog struct {
	exam *model.Exam
	err  error
}

func (f *fakeCatalog) ExamForStudent(_ context.Context, examID uuid.UUID, _ int) (*model.Exam, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.exam == nil || f.exam.ID != examID {
		return nil, ErrNotFound
	}
	cp := *f.exam
	return &cp, nil
}

type fakeAttempts struct {
	mu          sync.Mutex
	attempts    map[uuid.UUID]*model.Attempt
	finalizeErr error
}

func newFakeAttempts() *fakeAttempts {
	return &fakeAttempts{attempts: make(map[uuid.UUID]*model.Attempt)}
}

func (f *fakeAttempts) FindActive(_ context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.attempts {
		if a.ExamID == examID && a.StudentID == studentID && !a.Submitted {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeAttempts) Create(_ context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := &model.Attempt{
		ID:        uuid.New(),
		ExamID:    examID,
		StudentID: studentID,
		StartTime: time.Now(),
	}
	f.attempts[a.ID] = a
	cp := *a
	return &cp, nil
}

func (f *fakeAttempts) HasSubmitted(_ context.Context, examID uuid.UUID, studentID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.attempts {
		if a.ExamID == examID && a.StudentID == studentID && a.Submitted {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAttempts) Finalize(_ context.Context, attemptID uuid.UUID, totalScore int, autoSubmitted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finalizeErr != nil {
		return f.finalizeErr
	}
	a, ok := f.attempts[attemptID]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	a.Submitted = true
	a.AutoSubmitted = autoSubmitted
	a.TotalScore = totalScore
	a.EndTime = &now
	return nil
}

func (f *fakeAttempts) IncrementWarnings(_ context.Context, attemptID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[attemptID]
	if !ok {
		return 0, ErrNotFound
	}
	a.WarningCount++
	return a.WarningCount, nil
}

func (f *fakeAttempts) get(attemptID uuid.UUID) model.Attempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.attempts[attemptID]
}

// seed installs an open attempt with a chosen start time, for clock tests.
func (f *fakeAttempts) seed(examID uuid.UUID, studentID int, startedAt time.Time) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := &model.Attempt{
		ID:        uuid.New(),
		ExamID:    examID,
		StudentID: studentID,
		StartTime: startedAt,
	}
	f.attempts[a.ID] = a
	return a.ID
}

type fakeAnswers struct {
	mu        sync.Mutex
	byAttempt map[uuid.UUID]map[uuid.UUID]model.Answer
	saveErr   error
}

func newFakeAnswers() *fakeAnswers {
	return &fakeAnswers{byAttempt: make(map[uuid.UUID]map[uuid.UUID]model.Answer)}
}

func (f *fakeAnswers) Save(_ context.Context, attemptID uuid.UUID, q *model.Question, answerText string) (*model.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	res := grading.Grade(q, answerText)
	ans := model.Answer{
		ID:            uuid.New(),
		AttemptID:     attemptID,
		QuestionID:    q.ID,
		QuestionIndex: q.OrderIndex,
		AnswerText:    answerText,
		IsCorrect:     res.IsCorrect,
		MarksAwarded:  res.MarksAwarded,
		UpdatedAt:     time.Now(),
	}
	if f.byAttempt[attemptID] == nil {
		f.byAttempt[attemptID] = make(map[uuid.UUID]model.Answer)
	}
	f.byAttempt[attemptID][q.ID] = ans
	return &ans, nil
}

func (f *fakeAnswers) Clear(_ context.Context, attemptID uuid.UUID, q *model.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byAttempt[attemptID], q.ID)
	return nil
}

func (f *fakeAnswers) ListByAttempt(_ context.Context, attemptID uuid.UUID) ([]model.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Answer, 0, len(f.byAttempt[attemptID]))
	for _, a := range f.byAttempt[attemptID] {
		out = append(out, a)
	}
	return out, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (f *fakeAudit) Record(_ context.Context, entry model.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.Event
	}
	return out
}

// clearFailBridge wraps the real bridge but fails snapshot cleanup.
type clearFailBridge struct {
	*autosave.Bridge
}

func (b *clearFailBridge) Clear(context.Context, uuid.UUID) error {
	return errors.New("redis down")
}

// ---- harness ----

type harness struct {
	manager  *Manager
	exam     *model.Exam
	attempts *fakeAttempts
	answers  *fakeAnswers
	audit    *fakeAudit
	store    *autosave.MemoryStore

	mu      sync.Mutex
	monitor *integrity.ChannelMonitor
}

func (h *harness) lastMonitor() *integrity.ChannelMonitor {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.monitor
}

func testExam(questions int) *model.Exam {
	exam := &model.Exam{
		ID:              uuid.New(),
		Title:           "Unit Exam",
		ExamCode:        "UNIT01",
		DurationMinutes: 30,
		IsActive:        true,
	}
	for i := 0; i < questions; i++ {
		exam.Questions = append(exam.Questions, model.Question{
			ID:            uuid.New(),
			ExamID:        exam.ID,
			OrderIndex:    i,
			QuestionText:  "pick alpha",
			QuestionType:  model.QuestionTypeMultipleChoice,
			Options:       []string{"alpha", "beta", "gamma"},
			CorrectAnswer: "alpha",
			Marks:         1,
		})
	}
	exam.ComputeTotalMarks()
	return exam
}

func newHarness(t *testing.T, exam *model.Exam) *harness {
	t.Helper()
	h := &harness{
		exam:     exam,
		attempts: newFakeAttempts(),
		answers:  newFakeAnswers(),
		audit:    &fakeAudit{},
		store:    autosave.NewMemoryStore(),
	}
	h.manager = NewManager(ManagerDeps{
		Catalog:  &fakeCatalog{exam: exam},
		Attempts: h.attempts,
		Answers:  h.answers,
		Audit:    h.audit,
		NewMonitor: func() Monitor {
			m := integrity.NewChannelMonitor()
			h.mu.Lock()
			h.monitor = m
			h.mu.Unlock()
			return m
		},
		NewBridge: func() SnapshotBridge {
			return autosave.NewBridge(h.store, 10*time.Millisecond, 5*time.Minute, zerolog.Nop())
		},
		WarningThreshold: 2,
		Log:              zerolog.Nop(),
	})
	return h
}

// ---- tests ----

func TestSession_AnswerAllAndSubmit(t *testing.T) {
	exam := testExam(5)
	h := newHarness(t, exam)
	ctx := context.Background()

	engine, info, err := h.manager.Start(ctx, exam.ID, 7)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer engine.Close()

	if info.Resumed {
		t.Error("fresh session reported as resumed")
	}
	if len(info.Questions) != 5 {
		t.Fatalf("questions = %d, want 5", len(info.Questions))
	}
	if info.RemainingMS <= 0 {
		t.Error("no time on the clock")
	}

	for i := 0; i < 5; i++ {
		if err := engine.SaveAnswer(ctx, i, "alpha"); err != nil {
			t.Fatalf("SaveAnswer(%d): %v", i, err)
		}
	}

	ov, err := engine.Overview(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ov.AnsweredCount != 5 {
		t.Errorf("answered = %d, want 5", ov.AnsweredCount)
	}

	res, err := engine.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Summary.TotalScore != 5 || res.Summary.TotalMarks != 5 {
		t.Errorf("score = %d/%d, want 5/5", res.Summary.TotalScore, res.Summary.TotalMarks)
	}
	if !res.Attempt.Submitted || res.Attempt.AutoSubmitted {
		t.Errorf("attempt flags = %+v", res.Attempt)
	}

	stored := h.attempts.get(res.Attempt.ID)
	if !stored.Submitted || stored.TotalScore != 5 {
		t.Errorf("persisted attempt = %+v", stored)
	}

	events := h.audit.events()
	if len(events) != 2 || events[0] != model.AuditEventStartExam || events[1] != model.AuditEventSubmitExam {
		t.Errorf("audit events = %v", events)
	}
}

func TestSession_AnswerReplacementAndClear(t *testing.T) {
	exam := testExam(2)
	h := newHarness(t, exam)
	ctx := context.Background()

	engine, _, err := h.manager.Start(ctx, exam.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	if err := engine.SaveAnswer(ctx, 0, "beta"); err != nil {
		t.Fatal(err)
	}
	if err := engine.SaveAnswer(ctx, 0, "alpha"); err != nil {
		t.Fatal(err)
	}
	if err := engine.SaveAnswer(ctx, 1, "alpha"); err != nil {
		t.Fatal(err)
	}
	if err := engine.ClearAnswer(ctx, 1); err != nil {
		t.Fatal(err)
	}

	res, err := engine.Submit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// Replacement counted once, cleared answer not at all.
	if res.Summary.TotalScore != 1 {
		t.Errorf("score = %d, want 1", res.Summary.TotalScore)
	}
}

func TestSession_TimerAutoSubmit(t *testing.T) {
	exam := testExam(5)
	h := newHarness(t, exam)
	ctx := context.Background()

	// Open attempt with ~80ms left on the clock.
	started := time.Now().Add(-30*time.Minute + 80*time.Millisecond)
	attemptID := h.attempts.seed(exam.ID, 7, started)

	engine, info, err := h.manager.Start(ctx, exam.ID, 7)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer engine.Close()

	if !info.Resumed {
		t.Error("seeded attempt not reported as resumed")
	}
	if err := engine.SaveAnswer(ctx, 0, "alpha"); err != nil {
		t.Fatal(err)
	}
	if err := engine.SaveAnswer(ctx, 1, "alpha"); err != nil {
		t.Fatal(err)
	}

	select {
	case <-engine.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timer expiry did not submit the attempt")
	}

	stored := h.attempts.get(attemptID)
	if !stored.Submitted || !stored.AutoSubmitted {
		t.Fatalf("attempt = %+v, want auto-submitted", stored)
	}
	if stored.TotalScore != 2 {
		t.Errorf("score = %d, want 2", stored.TotalScore)
	}

	if err := engine.SaveAnswer(ctx, 2, "alpha"); err != ErrAlreadyCompleted {
		t.Errorf("SaveAnswer after expiry: err = %v, want ErrAlreadyCompleted", err)
	}
}

func TestSession_ViolationThresholdAutoSubmit(t *testing.T) {
	exam := testExam(3)
	h := newHarness(t, exam)
	ctx := context.Background()

	engine, _, err := h.manager.Start(ctx, exam.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	if err := engine.SaveAnswer(ctx, 0, "alpha"); err != nil {
		t.Fatal(err)
	}

	mon := h.lastMonitor()
	if !mon.Report(integrity.Violation{Payload: "tab_switch"}) {
		t.Fatal("first violation dropped")
	}
	time.Sleep(30 * time.Millisecond)

	if st, _ := engine.State(ctx); st != StateInProgress {
		t.Fatalf("state after one violation = %v", st)
	}

	if !mon.Report(integrity.Violation{Payload: "window_blur"}) {
		t.Fatal("second violation dropped")
	}

	select {
	case <-engine.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("threshold did not submit the attempt")
	}

	res, err := engine.Result(ctx)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if !res.Attempt.AutoSubmitted {
		t.Error("attempt not flagged auto-submitted")
	}
	if res.Attempt.WarningCount != 2 {
		t.Errorf("warning count = %d, want 2", res.Attempt.WarningCount)
	}
	if res.Summary.TotalScore != 1 {
		t.Errorf("score = %d, want 1", res.Summary.TotalScore)
	}
}

func TestSession_ResumeSameAttempt(t *testing.T) {
	exam := testExam(4)
	h := newHarness(t, exam)
	ctx := context.Background()

	engine, info, err := h.manager.Start(ctx, exam.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	firstID := info.Attempt.ID

	if err := engine.SaveAnswer(ctx, 0, "alpha"); err != nil {
		t.Fatal(err)
	}
	if err := engine.SaveAnswer(ctx, 1, "beta"); err != nil {
		t.Fatal(err)
	}
	if err := engine.MarkForReview(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if err := engine.Goto(ctx, 2); err != nil {
		t.Fatal(err)
	}

	// Snapshot what the bridge would have written, then drop the connection.
	snap, ok := engine.snapshotGetter()
	if !ok {
		t.Fatal("snapshot inactive on a live session")
	}
	snap.SavedAt = time.Now()
	if err := h.store.Save(ctx, snap); err != nil {
		t.Fatal(err)
	}
	engine.Close()
	h.manager.CloseAll()

	engine2, info2, err := h.manager.Start(ctx, exam.ID, 7)
	if err != nil {
		t.Fatalf("resume Start: %v", err)
	}
	defer engine2.Close()

	if !info2.Resumed {
		t.Error("second Start not reported as resumed")
	}
	if info2.Attempt.ID != firstID {
		t.Errorf("resume created a new attempt: %s != %s", info2.Attempt.ID, firstID)
	}
	if info2.CurrentIndex != 2 {
		t.Errorf("cursor = %d, want 2 from snapshot", info2.CurrentIndex)
	}

	ov, err := engine2.Overview(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ov.AnsweredCount != 2 {
		t.Errorf("answered after resume = %d, want 2", ov.AnsweredCount)
	}
	if ov.Statuses[1] != "marked_for_review" {
		t.Errorf("review mark lost on resume: %v", ov.Statuses[1])
	}

	res, err := engine2.Submit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.TotalScore != 1 {
		t.Errorf("score = %d, want 1 (alpha correct, beta wrong)", res.Summary.TotalScore)
	}
}

func TestSession_ResumeWithoutSnapshotLandsOnFirstUnanswered(t *testing.T) {
	exam := testExam(4)
	h := newHarness(t, exam)
	ctx := context.Background()

	engine, info, err := h.manager.Start(ctx, exam.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.SaveAnswer(ctx, 0, "alpha"); err != nil {
		t.Fatal(err)
	}
	if err := engine.SaveAnswer(ctx, 1, "alpha"); err != nil {
		t.Fatal(err)
	}
	engine.Close()
	h.manager.CloseAll()

	// Expire whatever the autosave ticker may have written.
	if err := h.store.Clear(ctx, info.Attempt.ID); err != nil {
		t.Fatal(err)
	}

	engine2, info2, err := h.manager.Start(ctx, exam.ID, 7)
	if err != nil {
		t.Fatalf("resume Start: %v", err)
	}
	defer engine2.Close()

	if !info2.Resumed {
		t.Error("second Start not reported as resumed")
	}
	if info2.CurrentIndex != 2 {
		t.Errorf("cursor = %d, want 2 (first unanswered question)", info2.CurrentIndex)
	}
}

func TestSession_ViolationsIgnoredOutsideEnforcedMode(t *testing.T) {
	exam := testExam(2)
	h := newHarness(t, exam)
	ctx := context.Background()

	engine, _, err := h.manager.Start(ctx, exam.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	mon := h.lastMonitor()
	mon.ExitEnforcedMode()
	if !mon.Report(integrity.Violation{Payload: "tab_switch"}) {
		t.Fatal("report dropped while monitoring active")
	}
	time.Sleep(30 * time.Millisecond)

	ov, err := engine.Overview(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ov.WarningCount != 0 {
		t.Errorf("warning count = %d, want 0 with enforcement off", ov.WarningCount)
	}

	mon.EnterEnforcedMode()
	if !mon.Report(integrity.Violation{Payload: "tab_switch"}) {
		t.Fatal("report dropped after re-entering enforced mode")
	}
	time.Sleep(30 * time.Millisecond)

	ov, err = engine.Overview(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ov.WarningCount != 1 {
		t.Errorf("warning count = %d, want 1 with enforcement back on", ov.WarningCount)
	}
}

func TestSession_ClosedEngineReportsOpenAttempt(t *testing.T) {
	exam := testExam(1)
	h := newHarness(t, exam)
	ctx := context.Background()

	engine, _, err := h.manager.Start(ctx, exam.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	engine.Close()

	// Dropped connection, no submission: the attempt is still open.
	st, err := engine.State(ctx)
	if err != nil {
		t.Fatalf("State after Close: %v", err)
	}
	if st != StateInProgress {
		t.Errorf("state = %v, want %v for an unsubmitted attempt", st, StateInProgress)
	}
	if h.lastMonitor().Report(integrity.Violation{Payload: "tab_switch"}) {
		t.Error("monitor still accepting reports after Close")
	}
	h.manager.CloseAll()

	engine2, _, err := h.manager.Start(ctx, exam.ID, 7)
	if err != nil {
		t.Fatalf("resume Start: %v", err)
	}
	if _, err := engine2.Submit(ctx); err != nil {
		t.Fatal(err)
	}
	engine2.Close()

	st, err = engine2.State(ctx)
	if err != nil {
		t.Fatalf("State after submit and Close: %v", err)
	}
	if st != StateSubmitted {
		t.Errorf("state = %v, want %v after submission", st, StateSubmitted)
	}
}

func TestSession_StartAfterSubmissionRefused(t *testing.T) {
	exam := testExam(1)
	h := newHarness(t, exam)
	ctx := context.Background()

	engine, _, err := h.manager.Start(ctx, exam.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Submit(ctx); err != nil {
		t.Fatal(err)
	}
	engine.Close()

	if _, _, err := h.manager.Start(ctx, exam.ID, 7); err != ErrAlreadyCompleted {
		t.Errorf("restart after submit: err = %v, want ErrAlreadyCompleted", err)
	}
}

func TestSession_ExpiredAttemptSubmittedOnResume(t *testing.T) {
	exam := testExam(3)
	h := newHarness(t, exam)
	ctx := context.Background()

	attemptID := h.attempts.seed(exam.ID, 7, time.Now().Add(-time.Hour))

	_, _, err := h.manager.Start(ctx, exam.ID, 7)
	if err != ErrAlreadyCompleted {
		t.Fatalf("err = %v, want ErrAlreadyCompleted", err)
	}

	stored := h.attempts.get(attemptID)
	if !stored.Submitted || !stored.AutoSubmitted {
		t.Errorf("expired attempt = %+v, want auto-submitted", stored)
	}
}

func TestSession_EligibilityChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("not registered", func(t *testing.T) {
		exam := testExam(1)
		h := newHarness(t, exam)
		h.manager.deps.Catalog = &fakeCatalog{err: ErrNotAuthorized}
		if _, _, err := h.manager.Start(ctx, exam.ID, 7); err != ErrNotAuthorized {
			t.Errorf("err = %v, want ErrNotAuthorized", err)
		}
	})

	t.Run("inactive exam", func(t *testing.T) {
		exam := testExam(1)
		exam.IsActive = false
		h := newHarness(t, exam)
		if _, _, err := h.manager.Start(ctx, exam.ID, 7); err != ErrNotAvailable {
			t.Errorf("err = %v, want ErrNotAvailable", err)
		}
	})

	t.Run("before window", func(t *testing.T) {
		exam := testExam(1)
		future := time.Now().Add(time.Hour)
		exam.StartTime = &future
		h := newHarness(t, exam)
		if _, _, err := h.manager.Start(ctx, exam.ID, 7); err != ErrNotAvailable {
			t.Errorf("err = %v, want ErrNotAvailable", err)
		}
	})

	t.Run("unknown exam", func(t *testing.T) {
		exam := testExam(1)
		h := newHarness(t, exam)
		if _, _, err := h.manager.Start(ctx, uuid.New(), 7); err != ErrNotFound {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestSession_InvalidInputs(t *testing.T) {
	exam := testExam(2)
	h := newHarness(t, exam)
	ctx := context.Background()

	engine, _, err := h.manager.Start(ctx, exam.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	if err := engine.SaveAnswer(ctx, 9, "alpha"); err != ErrInvalidInput {
		t.Errorf("out-of-range save: err = %v", err)
	}
	if err := engine.SaveAnswer(ctx, 0, "   "); err != ErrInvalidInput {
		t.Errorf("blank answer: err = %v", err)
	}
	if err := engine.MarkForReview(ctx, 0); err != ErrInvalidInput {
		t.Errorf("mark unanswered: err = %v", err)
	}
	if err := engine.Goto(ctx, -1); err != ErrInvalidInput {
		t.Errorf("goto -1: err = %v", err)
	}
}

func TestSession_CleanupFailureDoesNotBlockSubmit(t *testing.T) {
	exam := testExam(1)
	h := newHarness(t, exam)
	ctx := context.Background()

	h.manager.deps.NewBridge = func() SnapshotBridge {
		return &clearFailBridge{
			Bridge: autosave.NewBridge(h.store, 10*time.Millisecond, 5*time.Minute, zerolog.Nop()),
		}
	}

	engine, _, err := h.manager.Start(ctx, exam.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	if err := engine.SaveAnswer(ctx, 0, "alpha"); err != nil {
		t.Fatal(err)
	}
	res, err := engine.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit with failing cleanup: %v", err)
	}
	if !res.Attempt.Submitted || res.Summary.TotalScore != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestSession_SecondStartReturnsSameEngine(t *testing.T) {
	exam := testExam(2)
	h := newHarness(t, exam)
	ctx := context.Background()

	e1, _, err := h.manager.Start(ctx, exam.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	defer e1.Close()

	e2, info, err := h.manager.Start(ctx, exam.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	if e1 != e2 {
		t.Error("second Start built a new engine for a live session")
	}
	if !info.Resumed {
		t.Error("reattach not reported as resumed")
	}
}

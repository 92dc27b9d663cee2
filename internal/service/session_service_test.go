package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/domain"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
)

type sessionFixture struct {
	svc         *SessionService
	exams       *fakeExamStore
	papers      *fakePaperStore
	sessions    *fakeSessionStore
	exam        *model.Exam
	snapshot    *model.PaperSnapshot
	windowStart time.Time
}

// Three questions: two auto-gradable worth 10 and 5, one essay worth 20.
func newSessionFixture(t *testing.T, studentIDs ...int) *sessionFixture {
	t.Helper()

	windowStart := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	paperID := uuid.New()

	snapshot := &model.PaperSnapshot{
		Paper: model.Paper{
			ID:            paperID,
			Name:          "Midterm Paper",
			TotalScore:    35,
			PassingScore:  15,
			QuestionCount: 3,
		},
		Questions: []model.PaperQuestionKey{
			{ID: uuid.New(), Type: model.QuestionTypeSingleChoice, Score: 10, OrderNum: 1, CorrectOptionID: "opt-a"},
			{ID: uuid.New(), Type: model.QuestionTypeTrueFalse, Score: 5, OrderNum: 2, CorrectOptionID: "opt-true"},
			{ID: uuid.New(), Type: model.QuestionTypeEssay, Score: 20, OrderNum: 3},
		},
	}

	exam := &model.Exam{
		ID:        uuid.New(),
		Name:      "Midterm",
		StartTime: windowStart,
		EndTime:   windowStart.Add(2 * time.Hour),
		PaperID:   &paperID,
		CreatedBy: 900,
	}

	exams := newFakeExamStore()
	exams.add(exam, studentIDs...)
	papers := newFakePaperStore()
	papers.add(snapshot)
	sessions := newFakeSessionStore()

	return &sessionFixture{
		svc:         NewSessionService(sessions, exams, papers, zerolog.Nop()),
		exams:       exams,
		papers:      papers,
		sessions:    sessions,
		exam:        exam,
		snapshot:    snapshot,
		windowStart: windowStart,
	}
}

func (f *sessionFixture) q(i int) string {
	return f.snapshot.Questions[i].ID.String()
}

func TestStartIdempotent(t *testing.T) {
	f := newSessionFixture(t, 1)
	ctx := context.Background()
	now := f.windowStart.Add(10 * time.Minute)

	first, err := f.svc.Start(ctx, f.exam.ID, 1, now)
	if err != nil {
		t.Fatalf("first start: %v", err)
	}

	second, err := f.svc.Start(ctx, f.exam.ID, 1, now.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if !second.StartedAt.Equal(first.StartedAt) {
		t.Fatalf("second start changed start time: %v != %v", second.StartedAt, first.StartedAt)
	}
	if second.ID != first.ID {
		t.Fatalf("second start returned a different session")
	}
}

func TestStartConcurrent(t *testing.T) {
	f := newSessionFixture(t, 1)
	ctx := context.Background()
	now := f.windowStart.Add(10 * time.Minute)

	const n = 16
	results := make([]*model.Session, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.Start(ctx, f.exam.ID, 1, now.Add(time.Duration(i)*time.Second))
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("start %d: %v", i, errs[i])
		}
		if results[i].ID != results[0].ID {
			t.Fatalf("start %d observed a different session", i)
		}
		if !results[i].StartedAt.Equal(results[0].StartedAt) {
			t.Fatalf("start %d observed a different start time", i)
		}
	}
}

func TestStartGate(t *testing.T) {
	f := newSessionFixture(t, 1)
	ctx := context.Background()

	tests := []struct {
		name      string
		studentID int
		now       time.Time
		wantErr   error
	}{
		{name: "not enrolled", studentID: 2, now: f.windowStart.Add(time.Minute), wantErr: domain.ErrNotEnrolled},
		{name: "too early", studentID: 1, now: f.windowStart.Add(-time.Second), wantErr: domain.ErrTooEarly},
		{name: "too late", studentID: 1, now: f.exam.EndTime.Add(time.Second), wantErr: domain.ErrTooLate},
		{name: "exactly at start", studentID: 1, now: f.windowStart, wantErr: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Start(ctx, f.exam.ID, tc.studentID, tc.now)
			if err != tc.wantErr {
				t.Fatalf("Start() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestStartNoPaper(t *testing.T) {
	f := newSessionFixture(t, 1)
	bare := &model.Exam{
		ID:        uuid.New(),
		Name:      "No Paper Yet",
		StartTime: f.windowStart,
		EndTime:   f.windowStart.Add(time.Hour),
	}
	f.exams.add(bare, 1)

	_, err := f.svc.Start(context.Background(), bare.ID, 1, f.windowStart.Add(time.Minute))
	if err != domain.ErrNoPaper {
		t.Fatalf("Start() error = %v, want ErrNoPaper", err)
	}
}

func TestSubmitGradesAndFinalizes(t *testing.T) {
	f := newSessionFixture(t, 1)
	ctx := context.Background()
	startAt := f.windowStart.Add(5 * time.Minute)

	if _, err := f.svc.Start(ctx, f.exam.ID, 1, startAt); err != nil {
		t.Fatalf("start: %v", err)
	}

	answers := []model.AnswerSubmission{
		{QuestionID: f.q(0), Answer: "opt-a"},    // correct, 10
		{QuestionID: f.q(1), Answer: "opt-false"}, // wrong
		{QuestionID: f.q(2), Answer: "my essay"},  // essay, pending
	}

	result, err := f.svc.Submit(ctx, f.exam.ID, 1, answers, startAt.Add(42*time.Minute))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 10 {
		t.Errorf("Score = %d, want 10", result.Score)
	}
	if result.TotalPossible != 35 {
		t.Errorf("TotalPossible = %d, want 35", result.TotalPossible)
	}
	if result.Passed {
		t.Errorf("Passed = true, want false (10 < 15)")
	}
	if result.TimeUsed != 42 {
		t.Errorf("TimeUsed = %d, want 42", result.TimeUsed)
	}

	session, err := f.sessions.GetByExamAndStudent(ctx, f.exam.ID, 1)
	if err != nil {
		t.Fatalf("fetch session: %v", err)
	}
	if !session.IsSubmitted {
		t.Fatalf("session not marked submitted")
	}
	essay := session.Detail[f.q(2)]
	if essay.Answer != "my essay" || essay.IsCorrect || essay.Score != 0 || essay.MaxScore != 20 {
		t.Errorf("essay record = %+v, want preserved answer scored 0 of 20", essay)
	}
}

func TestSubmitExactlyOnce(t *testing.T) {
	f := newSessionFixture(t, 1)
	ctx := context.Background()
	startAt := f.windowStart.Add(5 * time.Minute)

	if _, err := f.svc.Start(ctx, f.exam.ID, 1, startAt); err != nil {
		t.Fatalf("start: %v", err)
	}

	answers := []model.AnswerSubmission{{QuestionID: f.q(0), Answer: "opt-a"}}
	if _, err := f.svc.Submit(ctx, f.exam.ID, 1, answers, startAt.Add(time.Minute)); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// Second submit with better answers must not change the stored grade.
	better := []model.AnswerSubmission{
		{QuestionID: f.q(0), Answer: "opt-a"},
		{QuestionID: f.q(1), Answer: "opt-true"},
	}
	_, err := f.svc.Submit(ctx, f.exam.ID, 1, better, startAt.Add(2*time.Minute))
	if err != domain.ErrAlreadySubmitted {
		t.Fatalf("second submit error = %v, want ErrAlreadySubmitted", err)
	}

	session, _ := f.sessions.GetByExamAndStudent(ctx, f.exam.ID, 1)
	if session.Score != 10 {
		t.Fatalf("second submit changed score to %d", session.Score)
	}
}

func TestSubmitWithoutStart(t *testing.T) {
	f := newSessionFixture(t, 1)
	_, err := f.svc.Submit(context.Background(), f.exam.ID, 1, nil, f.windowStart.Add(time.Minute))
	if err != domain.ErrNotStarted {
		t.Fatalf("Submit() error = %v, want ErrNotStarted", err)
	}
}

func TestSubmitAfterWindowStillAccepted(t *testing.T) {
	f := newSessionFixture(t, 1)
	ctx := context.Background()
	startAt := f.exam.EndTime.Add(-time.Minute)

	if _, err := f.svc.Start(ctx, f.exam.ID, 1, startAt); err != nil {
		t.Fatalf("start: %v", err)
	}

	answers := []model.AnswerSubmission{{QuestionID: f.q(0), Answer: "opt-a"}}
	result, err := f.svc.Submit(ctx, f.exam.ID, 1, answers, f.exam.EndTime.Add(3*time.Minute))
	if err != nil {
		t.Fatalf("late submit: %v", err)
	}
	if result.Score != 10 {
		t.Errorf("late submit score = %d, want 10", result.Score)
	}
}

func TestSaveDraftLifecycle(t *testing.T) {
	f := newSessionFixture(t, 1)
	ctx := context.Background()
	startAt := f.windowStart.Add(5 * time.Minute)

	draft := []model.AnswerSubmission{{QuestionID: f.q(0), Answer: "opt-b"}}

	if _, err := f.svc.SaveDraft(ctx, f.exam.ID, 1, draft, startAt); err != domain.ErrNotStarted {
		t.Fatalf("draft before start error = %v, want ErrNotStarted", err)
	}

	if _, err := f.svc.Start(ctx, f.exam.ID, 1, startAt); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.svc.SaveDraft(ctx, f.exam.ID, 1, draft, startAt.Add(time.Minute)); err != nil {
		t.Fatalf("draft: %v", err)
	}

	status, err := f.svc.Status(ctx, f.exam.ID, 1, startAt.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got := status.DraftAnswers[f.q(0)].Answer; got != "opt-b" {
		t.Errorf("draft answer = %q, want opt-b", got)
	}

	if _, err := f.svc.Submit(ctx, f.exam.ID, 1, nil, startAt.Add(3*time.Minute)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := f.svc.SaveDraft(ctx, f.exam.ID, 1, draft, startAt.Add(4*time.Minute)); err != domain.ErrAlreadySubmitted {
		t.Fatalf("draft after submit error = %v, want ErrAlreadySubmitted", err)
	}
}

func TestStatusViews(t *testing.T) {
	f := newSessionFixture(t, 1)
	ctx := context.Background()
	now := f.windowStart.Add(10 * time.Minute)

	status, err := f.svc.Status(ctx, f.exam.ID, 1, now)
	if err != nil {
		t.Fatalf("status before start: %v", err)
	}
	if status.IsStarted || status.IsSubmitted || status.StartTime != nil || status.Score != nil {
		t.Fatalf("absent session should report not started: %+v", status)
	}

	if _, err := f.svc.Start(ctx, f.exam.ID, 1, now); err != nil {
		t.Fatalf("start: %v", err)
	}

	status, err = f.svc.Status(ctx, f.exam.ID, 1, now.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("status in progress: %v", err)
	}
	if !status.IsStarted || status.IsSubmitted {
		t.Fatalf("in-progress flags wrong: %+v", status)
	}
	// Window ends 2h after start; 40 minutes in, 80 remain.
	if status.TimeRemaining == nil || *status.TimeRemaining != 80 {
		t.Errorf("TimeRemaining = %v, want 80", status.TimeRemaining)
	}
	if status.Score != nil {
		t.Errorf("score leaked before submission")
	}

	if _, err := f.svc.Submit(ctx, f.exam.ID, 1, []model.AnswerSubmission{{QuestionID: f.q(0), Answer: "opt-a"}}, now.Add(40*time.Minute)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	status, err = f.svc.Status(ctx, f.exam.ID, 1, now.Add(50*time.Minute))
	if err != nil {
		t.Fatalf("status after submit: %v", err)
	}
	if !status.IsSubmitted || status.Score == nil || *status.Score != 10 {
		t.Fatalf("submitted status wrong: %+v", status)
	}
	if status.DraftAnswers != nil {
		t.Errorf("draft answers exposed after submission")
	}
}

func TestInfo(t *testing.T) {
	f := newSessionFixture(t, 1)
	ctx := context.Background()

	if _, err := f.svc.Info(ctx, f.exam.ID, 2); err != domain.ErrNotEnrolled {
		t.Fatalf("Info() for outsider error = %v, want ErrNotEnrolled", err)
	}

	info, err := f.svc.Info(ctx, f.exam.ID, 1)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.TotalScore != 35 || info.PassingScore != 15 || info.QuestionCnt != 3 {
		t.Errorf("paper totals wrong: %+v", info)
	}
	if info.IsStarted {
		t.Errorf("IsStarted = true before any attempt")
	}

	if _, err := f.svc.Start(ctx, f.exam.ID, 1, f.windowStart.Add(time.Minute)); err != nil {
		t.Fatalf("start: %v", err)
	}
	info, err = f.svc.Info(ctx, f.exam.ID, 1)
	if err != nil {
		t.Fatalf("info after start: %v", err)
	}
	if !info.IsStarted || info.IsSubmitted {
		t.Errorf("attempt flags wrong after start: %+v", info)
	}
}

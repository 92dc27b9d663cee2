package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/domain"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
)

func newScoreFixture(t *testing.T, studentIDs ...int) (*sessionFixture, *ScoreService) {
	t.Helper()
	f := newSessionFixture(t, studentIDs...)
	return f, NewScoreService(f.sessions, f.exams, f.papers, zerolog.Nop())
}

// submitFor starts and submits an attempt answering only the first question.
func submitFor(t *testing.T, f *sessionFixture, studentID int, firstAnswer string) {
	t.Helper()
	ctx := context.Background()
	startAt := f.windowStart.Add(5 * time.Minute)
	if _, err := f.svc.Start(ctx, f.exam.ID, studentID, startAt); err != nil {
		t.Fatalf("start student %d: %v", studentID, err)
	}
	answers := []model.AnswerSubmission{{QuestionID: f.q(0), Answer: firstAnswer}}
	if _, err := f.svc.Submit(ctx, f.exam.ID, studentID, answers, startAt.Add(30*time.Minute)); err != nil {
		t.Fatalf("submit student %d: %v", studentID, err)
	}
}

func TestManualGradeComposes(t *testing.T) {
	f, scores := newScoreFixture(t, 1)
	ctx := context.Background()
	submitFor(t, f, 1, "opt-a") // total 10, essay q(2) at 0 of 20

	essay := f.q(2)

	// Three successive overrides of the same question; each delta is taken
	// from the stored value, so the final total reflects only the last one.
	steps := []struct {
		score     int
		wantTotal int
	}{
		{score: 12, wantTotal: 22},
		{score: 5, wantTotal: 15},
		{score: 20, wantTotal: 30},
	}
	for _, step := range steps {
		total, err := scores.ManualGrade(ctx, f.exam.ID, 900, 1, model.ManualGradeRequest{
			QuestionID: essay,
			Score:      step.score,
			Comment:    "reviewed",
		})
		if err != nil {
			t.Fatalf("override to %d: %v", step.score, err)
		}
		if total != step.wantTotal {
			t.Fatalf("override to %d: total = %d, want %d", step.score, total, step.wantTotal)
		}
	}

	session, _ := f.sessions.GetByExamAndStudent(ctx, f.exam.ID, 1)
	rec := session.Detail[essay]
	if !rec.ManualGraded || rec.Score != 20 || rec.Comment != "reviewed" {
		t.Errorf("override record = %+v, want manual 20 with comment", rec)
	}
}

func TestManualGradeValidation(t *testing.T) {
	f, scores := newScoreFixture(t, 1)
	ctx := context.Background()
	submitFor(t, f, 1, "opt-a")

	tests := []struct {
		name      string
		teacherID int
		studentID int
		req       model.ManualGradeRequest
		wantErr   error
	}{
		{
			name: "not the exam owner", teacherID: 901, studentID: 1,
			req:     model.ManualGradeRequest{QuestionID: f.q(2), Score: 5},
			wantErr: domain.ErrForbidden,
		},
		{
			name: "question not on paper", teacherID: 900, studentID: 1,
			req:     model.ManualGradeRequest{QuestionID: "f2b8e1de-0000-0000-0000-000000000000", Score: 5},
			wantErr: domain.ErrQuestionNotFound,
		},
		{
			name: "score above max", teacherID: 900, studentID: 1,
			req:     model.ManualGradeRequest{QuestionID: f.q(2), Score: 21},
			wantErr: domain.ErrInvalidScore,
		},
		{
			name: "no attempt at all", teacherID: 900, studentID: 7,
			req:     model.ManualGradeRequest{QuestionID: f.q(2), Score: 5},
			wantErr: domain.ErrScoreNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := scores.ManualGrade(ctx, f.exam.ID, tc.teacherID, tc.studentID, tc.req)
			if err != tc.wantErr {
				t.Fatalf("ManualGrade() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestManualGradeRequiresSubmission(t *testing.T) {
	f, scores := newScoreFixture(t, 1)
	ctx := context.Background()
	if _, err := f.svc.Start(ctx, f.exam.ID, 1, f.windowStart.Add(time.Minute)); err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err := scores.ManualGrade(ctx, f.exam.ID, 900, 1, model.ManualGradeRequest{QuestionID: f.q(2), Score: 5})
	if err != domain.ErrNotSubmitted {
		t.Fatalf("ManualGrade() on in-progress error = %v, want ErrNotSubmitted", err)
	}
}

func TestStatisticsZeroSubmissions(t *testing.T) {
	f, scores := newScoreFixture(t, 1, 2, 3)

	stats, err := scores.Statistics(context.Background(), f.exam.ID, 900)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.TotalStudents != 3 || stats.SubmittedCount != 0 || stats.NotSubmittedCount != 3 {
		t.Errorf("counts wrong: %+v", stats)
	}
	if stats.AverageScore != 0 || stats.HighestScore != 0 || stats.LowestScore != 0 || stats.PassRate != 0 {
		t.Errorf("zero-submission metrics must all be zero: %+v", stats)
	}
}

func TestStatistics(t *testing.T) {
	f, scores := newScoreFixture(t, 1, 2, 3)
	ctx := context.Background()

	submitFor(t, f, 1, "opt-a") // 10
	submitFor(t, f, 2, "opt-x") // 0
	// Student 3 enrolled but never submits.

	// Push student 1 over the passing score of 15.
	if _, err := scores.ManualGrade(ctx, f.exam.ID, 900, 1, model.ManualGradeRequest{QuestionID: f.q(2), Score: 10}); err != nil {
		t.Fatalf("override: %v", err)
	}

	stats, err := scores.Statistics(ctx, f.exam.ID, 900)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.SubmittedCount != 2 || stats.NotSubmittedCount != 1 {
		t.Errorf("submission counts wrong: %+v", stats)
	}
	if stats.AverageScore != 10 { // (20 + 0) / 2
		t.Errorf("AverageScore = %v, want 10", stats.AverageScore)
	}
	if stats.HighestScore != 20 || stats.LowestScore != 0 {
		t.Errorf("extrema wrong: %+v", stats)
	}
	if stats.PassCount != 1 || stats.FailCount != 1 || stats.PassRate != 50 {
		t.Errorf("pass metrics wrong: %+v", stats)
	}
}

func TestStatisticsForbiddenForNonOwner(t *testing.T) {
	f, scores := newScoreFixture(t, 1)
	if _, err := scores.Statistics(context.Background(), f.exam.ID, 901); err != domain.ErrForbidden {
		t.Fatalf("Statistics() error = %v, want ErrForbidden", err)
	}
}

func TestMyScoreDetailHidesUnsubmitted(t *testing.T) {
	f, scores := newScoreFixture(t, 1)
	ctx := context.Background()

	if _, err := scores.MyScoreDetail(ctx, f.exam.ID, 1); err != domain.ErrScoreNotFound {
		t.Fatalf("detail with no attempt error = %v, want ErrScoreNotFound", err)
	}

	if _, err := f.svc.Start(ctx, f.exam.ID, 1, f.windowStart.Add(time.Minute)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := scores.MyScoreDetail(ctx, f.exam.ID, 1); err != domain.ErrScoreNotFound {
		t.Fatalf("detail while in progress error = %v, want ErrScoreNotFound", err)
	}

	if _, err := f.svc.Submit(ctx, f.exam.ID, 1, []model.AnswerSubmission{{QuestionID: f.q(0), Answer: "opt-a"}}, f.windowStart.Add(20*time.Minute)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	detail, err := scores.MyScoreDetail(ctx, f.exam.ID, 1)
	if err != nil {
		t.Fatalf("detail after submit: %v", err)
	}
	if detail.Score != 10 {
		t.Errorf("Score = %d, want 10", detail.Score)
	}
	if detail.Detail[f.q(0)].Answer != "opt-a" {
		t.Errorf("detail record missing graded answer")
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 10.0 / 3.0, want: 3.33},
		{in: 2.0 / 3.0, want: 0.67},
		{in: 50, want: 50},
		{in: 0, want: 0},
	}
	for _, tc := range tests {
		if got := round2(tc.in); got != tc.want {
			t.Errorf("round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

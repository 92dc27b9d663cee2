package grading

import (
	"testing"

	"github.com/google/uuid"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
)

var (
	q1 = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	q2 = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	q3 = uuid.MustParse("33333333-3333-3333-3333-333333333333")

	q1Correct = uuid.MustParse("aaaaaaaa-1111-1111-1111-111111111111").String()
	q2Correct = uuid.MustParse("bbbbbbbb-2222-2222-2222-222222222222").String()
)

func twoQuestionSnapshot() *model.PaperSnapshot {
	return &model.PaperSnapshot{
		Paper: model.Paper{TotalScore: 15, PassingScore: 9},
		Questions: []model.PaperQuestionKey{
			{ID: q1, Type: model.QuestionTypeSingleChoice, Score: 10, CorrectOptionID: q1Correct},
			{ID: q2, Type: model.QuestionTypeTrueFalse, Score: 5, CorrectOptionID: q2Correct},
		},
	}
}

func TestGrade_MixedCorrectness(t *testing.T) {
	res := Grade(twoQuestionSnapshot(), []model.AnswerSubmission{
		{QuestionID: q1.String(), Answer: q1Correct},
		{QuestionID: q2.String(), Answer: "wrong-option"},
	})

	if res.Score != 10 {
		t.Fatalf("score = %d, want 10", res.Score)
	}
	if !res.Detail[q1.String()].IsCorrect {
		t.Errorf("q1 should be correct")
	}
	if res.Detail[q2.String()].IsCorrect {
		t.Errorf("q2 should be incorrect")
	}
	if res.Detail[q2.String()].MaxScore != 5 {
		t.Errorf("q2 max_score = %d, want 5", res.Detail[q2.String()].MaxScore)
	}
	if !res.Passed {
		t.Errorf("10 >= passing 9, should pass")
	}
}

func TestGrade_OffPaperQuestionSkipped(t *testing.T) {
	res := Grade(twoQuestionSnapshot(), []model.AnswerSubmission{
		{QuestionID: q3.String(), Answer: "anything"},
		{QuestionID: q1.String(), Answer: q1Correct},
	})

	if res.Score != 10 {
		t.Fatalf("score = %d, want 10", res.Score)
	}
	if _, ok := res.Detail[q3.String()]; ok {
		t.Errorf("off-paper question must not appear in detail")
	}
	if len(res.Detail) != 1 {
		t.Errorf("detail has %d entries, want 1", len(res.Detail))
	}
}

func TestGrade_UnansweredNotBackfilled(t *testing.T) {
	res := Grade(twoQuestionSnapshot(), []model.AnswerSubmission{
		{QuestionID: q2.String(), Answer: q2Correct},
	})

	if res.Score != 5 {
		t.Fatalf("score = %d, want 5", res.Score)
	}
	if _, ok := res.Detail[q1.String()]; ok {
		t.Errorf("unanswered question must not be materialized")
	}
	if res.Passed {
		t.Errorf("5 < passing 9, should fail")
	}
}

func TestGrade_NoCorrectOptionGradesIncorrect(t *testing.T) {
	snap := &model.PaperSnapshot{
		Paper: model.Paper{TotalScore: 10, PassingScore: 5},
		Questions: []model.PaperQuestionKey{
			{ID: q1, Type: model.QuestionTypeSingleChoice, Score: 10, CorrectOptionID: ""},
		},
	}

	res := Grade(snap, []model.AnswerSubmission{{QuestionID: q1.String(), Answer: "x"}})

	if res.Score != 0 {
		t.Fatalf("score = %d, want 0", res.Score)
	}
	rec := res.Detail[q1.String()]
	if rec.IsCorrect || rec.Score != 0 {
		t.Errorf("misconfigured question must grade incorrect, got %+v", rec)
	}
}

func TestGrade_NonGradableTypeZeroScore(t *testing.T) {
	snap := &model.PaperSnapshot{
		Paper: model.Paper{TotalScore: 20, PassingScore: 10},
		Questions: []model.PaperQuestionKey{
			{ID: q1, Type: model.QuestionTypeEssay, Score: 20},
		},
	}

	res := Grade(snap, []model.AnswerSubmission{{QuestionID: q1.String(), Answer: "long essay text"}})

	rec, ok := res.Detail[q1.String()]
	if !ok {
		t.Fatalf("essay answer must still be recorded")
	}
	if rec.IsCorrect || rec.Score != 0 || rec.MaxScore != 20 {
		t.Errorf("essay record = %+v, want incorrect/0/20", rec)
	}
	if rec.Answer != "long essay text" {
		t.Errorf("answer text must be preserved for manual grading")
	}
}

func TestGrade_Deterministic(t *testing.T) {
	answers := []model.AnswerSubmission{
		{QuestionID: q1.String(), Answer: q1Correct},
		{QuestionID: q2.String(), Answer: q2Correct},
	}
	reversed := []model.AnswerSubmission{answers[1], answers[0]}

	a := Grade(twoQuestionSnapshot(), answers)
	b := Grade(twoQuestionSnapshot(), reversed)

	if a.Score != b.Score {
		t.Fatalf("scores differ across answer order: %d vs %d", a.Score, b.Score)
	}
	if len(a.Detail) != len(b.Detail) {
		t.Fatalf("details differ across answer order")
	}
	for k, v := range a.Detail {
		if b.Detail[k] != v {
			t.Errorf("detail[%s] differs: %+v vs %+v", k, v, b.Detail[k])
		}
	}
}

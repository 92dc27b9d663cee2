// Package grading scores a set of submitted answers against a paper
// snapshot. Grading is a pure function of its inputs: the same snapshot and
// answers always produce the same score and detail, independent of answer
// order.
package grading

import (
	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
)

// Result is the outcome of grading one submission.
type Result struct {
	Score  int
	Detail model.Detail
	Passed bool
}

// Grade scores the submitted answers against the paper snapshot.
//
// Answers referencing questions that are not on the paper are skipped
// entirely. For gradable question types, correctness is a string comparison
// between the submitted answer and the configured correct option identity;
// a question with no correct option configured grades as incorrect rather
// than failing the submission. Non-gradable types are recorded as incorrect
// with zero score and are expected to be manually graded afterwards.
// Paper questions with no submitted answer are not materialized in the
// detail; they implicitly contribute zero.
func Grade(snapshot *model.PaperSnapshot, answers []model.AnswerSubmission) Result {
	total := 0
	detail := make(model.Detail, len(answers))

	for _, sub := range answers {
		q := snapshot.Find(sub.QuestionID)
		if q == nil {
			continue // not on this paper
		}

		correct := false
		if q.Type.Gradable() && q.CorrectOptionID != "" {
			correct = sub.Answer == q.CorrectOptionID
		}

		earned := 0
		if correct {
			earned = q.Score
		}
		total += earned

		detail[q.ID.String()] = model.AnswerRecord{
			Answer:    sub.Answer,
			IsCorrect: correct,
			Score:     earned,
			MaxScore:  q.Score,
		}
	}

	return Result{
		Score:  total,
		Detail: detail,
		Passed: total >= snapshot.Paper.PassingScore,
	}
}

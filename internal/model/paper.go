package model

import (
	"time"

	"github.com/google/uuid"
)

// Paper is a fixed, ordered set of graded questions with point values.
// TotalScore and QuestionCount are derived at creation time and never
// recomputed afterwards.
type Paper struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	SubjectID     int       `json:"subject_id"`
	TotalScore    int       `json:"total_score"`
	PassingScore  int       `json:"passing_score"`
	QuestionCount int       `json:"question_count"`
	CreatedBy     int       `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// PaperQuestion links a question into a paper with its score and position.
type PaperQuestion struct {
	QuestionID uuid.UUID `json:"question_id"`
	Score      int       `json:"score"`
	OrderNum   int       `json:"order_num"`
}

// PaperSnapshot is the immutable view of a paper the grading engine works
// against: question identities, per-question max scores, and correct-option
// identities resolved up front. Core logic never does ad hoc lookups.
type PaperSnapshot struct {
	Paper     Paper
	Questions []PaperQuestionKey
}

// PaperQuestionKey is one question of a snapshot, grading-ready.
// CorrectOptionID is empty when no correct option is configured.
type PaperQuestionKey struct {
	ID              uuid.UUID    `json:"id"`
	Type            QuestionType `json:"question_type"`
	Score           int          `json:"score"`
	OrderNum        int          `json:"order_num"`
	CorrectOptionID string       `json:"-"`
}

// Find returns the snapshot question with the given identity, or nil.
func (s *PaperSnapshot) Find(questionID string) *PaperQuestionKey {
	for i := range s.Questions {
		if s.Questions[i].ID.String() == questionID {
			return &s.Questions[i]
		}
	}
	return nil
}

// CreatePaperRequest is the payload for authoring a paper.
type CreatePaperRequest struct {
	Name         string                 `json:"name" binding:"required,min=1,max=255"`
	SubjectID    int                    `json:"subject_id" binding:"required,min=1"`
	PassingScore int                    `json:"passing_score" binding:"min=0"`
	Questions    []PaperQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// PaperQuestionRequest is one question entry in a paper authoring payload.
type PaperQuestionRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Score      int       `json:"score" binding:"required,min=1"`
	OrderNum   int       `json:"order_num" binding:"min=0"`
}

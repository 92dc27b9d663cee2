package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswerRecord is the per-question payload stored on a session. Before
// submission it carries only the raw draft answer; submission replaces it
// with the graded form; manual override mutates Score/ManualGraded/Comment.
type AnswerRecord struct {
	Answer       string `json:"answer"`
	IsCorrect    bool   `json:"is_correct"`
	Score        int    `json:"score"`
	MaxScore     int    `json:"max_score"`
	ManualGraded bool   `json:"manual_graded,omitempty"`
	Comment      string `json:"comment,omitempty"`
}

// Detail maps question identity to its answer record.
type Detail map[string]AnswerRecord

// Session is one student's attempt record for one exam. At most one session
// exists per (exam, student), enforced by a unique constraint; the
// InProgress -> Submitted transition happens at most once.
type Session struct {
	ID          uuid.UUID  `json:"id"`
	ExamID      uuid.UUID  `json:"exam_id"`
	StudentID   int        `json:"student_id"`
	StartedAt   time.Time  `json:"start_time"`
	SubmitTime  *time.Time `json:"submit_time,omitempty"`
	IsSubmitted bool       `json:"is_submitted"`
	Score       int        `json:"score"`
	TimeUsed    *int       `json:"time_used,omitempty"`
	Detail      Detail     `json:"detail,omitempty"`
}

// AnswerSubmission is one answered question in a draft or submission.
// For choice questions the answer is the chosen option ID.
type AnswerSubmission struct {
	QuestionID string `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

// SubmitAnswersRequest is the payload for save-draft and submit.
type SubmitAnswersRequest struct {
	Answers []AnswerSubmission `json:"answers" binding:"required,dive"`
}

// ManualGradeRequest is the payload for a teacher's per-question override.
type ManualGradeRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Score      int    `json:"score" binding:"min=0"`
	Comment    string `json:"comment" binding:"omitempty,max=500"`
}

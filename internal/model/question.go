package model

import "github.com/google/uuid"

// QuestionType enumerates the closed set of question kinds.
type QuestionType string

const (
	QuestionTypeSingleChoice QuestionType = "SINGLE_CHOICE"
	QuestionTypeTrueFalse    QuestionType = "TRUE_FALSE"
	QuestionTypeFillBlank    QuestionType = "FILL_BLANK"
	QuestionTypeEssay        QuestionType = "ESSAY"
)

// Gradable reports whether the auto-grader can score this question type.
// Non-gradable types are recorded as incorrect until a teacher overrides them.
func (t QuestionType) Gradable() bool {
	return t == QuestionTypeSingleChoice || t == QuestionTypeTrueFalse
}

// Question represents an authored question with its options.
type Question struct {
	ID           uuid.UUID    `json:"id"`
	SubjectID    int          `json:"subject_id"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	CreatedBy    int          `json:"created_by"`
	Options      []Option     `json:"options,omitempty"`
}

// Option is one answer choice of a question. Gradable questions have exactly
// one option with IsCorrect set, enforced at authoring time.
type Option struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	OptionText string    `json:"option_text"`
	IsCorrect  bool      `json:"is_correct,omitempty"`
}

// OptionForStudent is an option stripped of the correct flag.
type OptionForStudent struct {
	ID         uuid.UUID `json:"id"`
	OptionText string    `json:"option_text"`
}

// CreateQuestionRequest is the payload for authoring a question.
type CreateQuestionRequest struct {
	SubjectID    int             `json:"subject_id" binding:"required,min=1"`
	QuestionText string          `json:"question_text" binding:"required,min=1,max=2000"`
	QuestionType string          `json:"question_type" binding:"required,oneof=SINGLE_CHOICE TRUE_FALSE FILL_BLANK ESSAY"`
	Options      []OptionRequest `json:"options" binding:"omitempty,dive"`
}

// OptionRequest is one option in a question authoring payload.
type OptionRequest struct {
	OptionText string `json:"option_text" binding:"required,min=1,max=500"`
	IsCorrect  bool   `json:"is_correct"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam represents a scheduled examination. The attempt window is inclusive:
// a start is allowed while StartTime <= now <= EndTime.
type Exam struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	SubjectID int        `json:"subject_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	PaperID   *uuid.UUID `json:"paper_id,omitempty"`
	CreatedBy int        `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DurationMinutes is the full exam window length in minutes.
func (e *Exam) DurationMinutes() int {
	return int(e.EndTime.Sub(e.StartTime).Minutes())
}

// CreateExamRequest is the payload for creating an exam.
type CreateExamRequest struct {
	Name      string     `json:"name" binding:"required,min=1,max=255"`
	SubjectID int        `json:"subject_id" binding:"required,min=1"`
	StartTime time.Time  `json:"start_time" binding:"required"`
	EndTime   time.Time  `json:"end_time" binding:"required,gtfield=StartTime"`
	PaperID   *uuid.UUID `json:"paper_id" binding:"omitempty"`
}

// EnrollRequest is the payload for enrolling students into an exam.
type EnrollRequest struct {
	StudentIDs []int `json:"student_ids" binding:"required,min=1,dive,min=1"`
}

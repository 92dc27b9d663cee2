package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/repository"
)

// The store interfaces cover exactly what the session and score services
// need from persistence. The pgx-backed repositories satisfy them; tests
// substitute in-memory fakes.

// ExamStore provides exam and enrollment reads.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	IsEnrolled(ctx context.Context, examID uuid.UUID, studentID int) (bool, error)
	CountEnrolled(ctx context.Context, examID uuid.UUID) (int, error)
}

// PaperStore provides paper snapshot reads.
type PaperStore interface {
	GetSnapshot(ctx context.Context, paperID uuid.UUID) (*model.PaperSnapshot, error)
}

// SessionStore provides session reads and guarded transitions.
type SessionStore interface {
	GetByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.Session, error)
	Create(ctx context.Context, s *model.Session) (bool, error)
	SaveDraft(ctx context.Context, examID uuid.UUID, studentID int, detail model.Detail) (bool, error)
	Submit(ctx context.Context, examID uuid.UUID, studentID int, score int, detail model.Detail, submitTime time.Time, timeUsed int) (bool, error)
	OverrideQuestionScore(ctx context.Context, examID uuid.UUID, studentID int, questionID string, newScore, maxScore int, comment string) (int, error)
	ListByExam(ctx context.Context, examID uuid.UUID) ([]repository.ExamScoreRow, error)
	ListSubmittedByStudent(ctx context.Context, studentID int) ([]repository.StudentScoreRow, error)
	Aggregate(ctx context.Context, examID uuid.UUID, passingScore int) (*repository.SessionAggregate, error)
}

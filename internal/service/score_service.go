package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/domain"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/repository"
)

// ScoreService covers the score views (student and teacher), per-exam
// statistics, and the teacher's manual per-question override.
type ScoreService struct {
	sessions SessionStore
	exams    ExamStore
	papers   PaperStore
	log      zerolog.Logger
}

// NewScoreService creates a new ScoreService.
func NewScoreService(sessions SessionStore, exams ExamStore, papers PaperStore, log zerolog.Logger) *ScoreService {
	return &ScoreService{
		sessions: sessions,
		exams:    exams,
		papers:   papers,
		log:      log.With().Str("component", "score_service").Logger(),
	}
}

// ownedExam loads the exam and verifies the teacher created it.
func (s *ScoreService) ownedExam(ctx context.Context, examID uuid.UUID, teacherID int) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.CreatedBy != teacherID {
		return nil, domain.ErrForbidden
	}
	return exam, nil
}

// ListForExam returns every session of the exam with student identity,
// visible only to the exam's creator.
func (s *ScoreService) ListForExam(ctx context.Context, examID uuid.UUID, teacherID int) ([]repository.ExamScoreRow, error) {
	if _, err := s.ownedExam(ctx, examID, teacherID); err != nil {
		return nil, err
	}
	return s.sessions.ListByExam(ctx, examID)
}

// StatisticsView is the per-exam aggregate over submitted sessions.
type StatisticsView struct {
	ExamID            uuid.UUID `json:"exam_id"`
	ExamName          string    `json:"exam_name"`
	TotalStudents     int       `json:"total_students"`
	SubmittedCount    int       `json:"submitted_count"`
	NotSubmittedCount int       `json:"not_submitted_count"`
	AverageScore      float64   `json:"average_score"`
	HighestScore      int       `json:"highest_score"`
	LowestScore       int       `json:"lowest_score"`
	PassCount         int       `json:"pass_count"`
	FailCount         int       `json:"fail_count"`
	PassRate          float64   `json:"pass_rate"`
}

// Statistics computes the exam's aggregate metrics on demand. With zero
// submissions every derived metric is zero; there is never a division
// error. The scan runs concurrently with ongoing submissions and may miss
// ones that commit mid-scan.
func (s *ScoreService) Statistics(ctx context.Context, examID uuid.UUID, teacherID int) (*StatisticsView, error) {
	exam, err := s.ownedExam(ctx, examID, teacherID)
	if err != nil {
		return nil, err
	}

	total, err := s.exams.CountEnrolled(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("count enrolled: %w", err)
	}

	passingScore := 0
	hasPaper := exam.PaperID != nil
	if hasPaper {
		snapshot, err := s.papers.GetSnapshot(ctx, *exam.PaperID)
		if err != nil {
			return nil, fmt.Errorf("load paper snapshot: %w", err)
		}
		passingScore = snapshot.Paper.PassingScore
	}

	agg, err := s.sessions.Aggregate(ctx, examID, passingScore)
	if err != nil {
		return nil, fmt.Errorf("aggregate sessions: %w", err)
	}

	view := &StatisticsView{
		ExamID:            exam.ID,
		ExamName:          exam.Name,
		TotalStudents:     total,
		SubmittedCount:    agg.Submitted,
		NotSubmittedCount: total - agg.Submitted,
	}

	if agg.Submitted == 0 {
		return view, nil
	}

	view.AverageScore = round2(agg.Average)
	view.HighestScore = agg.Max
	view.LowestScore = agg.Min

	// Pass metrics are only meaningful against a paper's passing score.
	if hasPaper {
		view.PassCount = agg.PassCount
		view.FailCount = agg.Submitted - agg.PassCount
		view.PassRate = round2(float64(agg.PassCount) / float64(agg.Submitted) * 100)
	}

	return view, nil
}

// ScoreDetailView is the full graded record of one submitted session.
type ScoreDetailView struct {
	ExamID     uuid.UUID    `json:"exam_id"`
	ExamName   string       `json:"exam_name"`
	StudentID  int          `json:"student_id"`
	Score      int          `json:"score"`
	StartTime  time.Time    `json:"start_time"`
	SubmitTime *time.Time   `json:"submit_time"`
	TimeUsed   *int         `json:"time_used,omitempty"`
	Detail     model.Detail `json:"detail"`
}

// StudentDetail returns one student's graded session, owner-teacher only.
func (s *ScoreService) StudentDetail(ctx context.Context, examID uuid.UUID, teacherID, studentID int) (*ScoreDetailView, error) {
	exam, err := s.ownedExam(ctx, examID, teacherID)
	if err != nil {
		return nil, err
	}
	return s.detailView(ctx, exam, studentID, false)
}

// MyScores lists the calling student's submitted sessions.
func (s *ScoreService) MyScores(ctx context.Context, studentID int) ([]repository.StudentScoreRow, error) {
	return s.sessions.ListSubmittedByStudent(ctx, studentID)
}

// MyScoreDetail returns the calling student's own graded session.
// Unsubmitted attempts are not visible here.
func (s *ScoreService) MyScoreDetail(ctx context.Context, examID uuid.UUID, studentID int) (*ScoreDetailView, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	return s.detailView(ctx, exam, studentID, true)
}

func (s *ScoreService) detailView(ctx context.Context, exam *model.Exam, studentID int, submittedOnly bool) (*ScoreDetailView, error) {
	session, err := s.sessions.GetByExamAndStudent(ctx, exam.ID, studentID)
	if err != nil {
		if err == domain.ErrSessionNotFound {
			return nil, domain.ErrScoreNotFound
		}
		return nil, err
	}
	if submittedOnly && !session.IsSubmitted {
		return nil, domain.ErrScoreNotFound
	}

	return &ScoreDetailView{
		ExamID:     exam.ID,
		ExamName:   exam.Name,
		StudentID:  session.StudentID,
		Score:      session.Score,
		StartTime:  session.StartedAt,
		SubmitTime: session.SubmitTime,
		TimeUsed:   session.TimeUsed,
		Detail:     session.Detail,
	}, nil
}

// ManualGrade rewrites one question's awarded score on a submitted session.
//
// The question must belong to the exam's paper and the new score must be
// within [0, max]. The total-score delta is computed by the store against
// the value present at commit time, so repeated overrides of the same
// question compose and overrides of different questions can run
// concurrently without losing aggregate updates. Returns the new total.
func (s *ScoreService) ManualGrade(ctx context.Context, examID uuid.UUID, teacherID, studentID int, req model.ManualGradeRequest) (int, error) {
	exam, err := s.ownedExam(ctx, examID, teacherID)
	if err != nil {
		return 0, err
	}
	if exam.PaperID == nil {
		return 0, domain.ErrNoPaper
	}

	snapshot, err := s.papers.GetSnapshot(ctx, *exam.PaperID)
	if err != nil {
		return 0, fmt.Errorf("load paper snapshot: %w", err)
	}

	question := snapshot.Find(req.QuestionID)
	if question == nil {
		return 0, domain.ErrQuestionNotFound
	}
	if req.Score < 0 || req.Score > question.Score {
		return 0, domain.ErrInvalidScore
	}

	total, err := s.sessions.OverrideQuestionScore(ctx, examID, studentID, req.QuestionID, req.Score, question.Score, req.Comment)
	if err != nil {
		if err == domain.ErrNotSubmitted {
			// No submitted row to override: absent or still in progress.
			if _, getErr := s.sessions.GetByExamAndStudent(ctx, examID, studentID); getErr == domain.ErrSessionNotFound {
				return 0, domain.ErrScoreNotFound
			}
			return 0, domain.ErrNotSubmitted
		}
		return 0, err
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("student_id", studentID).
		Str("question_id", req.QuestionID).
		Int("new_score", req.Score).
		Int("new_total", total).
		Msg("Manual grade applied")

	return total, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

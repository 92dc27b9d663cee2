package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/config"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/domain"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/repository"
)

// ExamService handles exam scheduling, enrollment, and the student-facing
// paper payload.
type ExamService struct {
	examRepo  *repository.ExamRepository
	paperRepo *repository.PaperRepository
	redis     *redis.Client
	cacheTTL  time.Duration
	log       zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	examRepo *repository.ExamRepository,
	paperRepo *repository.PaperRepository,
	redisClient *redis.Client,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		examRepo:  examRepo,
		paperRepo: paperRepo,
		redis:     redisClient,
		cacheTTL:  cacheTTL,
		log:       log.With().Str("component", "exam_service").Logger(),
	}
}

// Create schedules a new exam. The window must be non-empty and, when a
// paper is attached, the paper must exist.
func (s *ExamService) Create(ctx context.Context, teacherID int, req model.CreateExamRequest) (*model.Exam, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, domain.ErrInvalidWindow
	}

	if req.PaperID != nil {
		if _, err := s.paperRepo.GetByID(ctx, *req.PaperID); err != nil {
			return nil, err
		}
	}

	exam := &model.Exam{
		Name:      req.Name,
		SubjectID: req.SubjectID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		PaperID:   req.PaperID,
		CreatedBy: teacherID,
	}

	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Int("teacher_id", teacherID).
		Time("start_time", exam.StartTime).
		Time("end_time", exam.EndTime).
		Msg("Exam created")

	return exam, nil
}

// Get retrieves an exam by ID.
func (s *ExamService) Get(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return s.examRepo.GetByID(ctx, id)
}

// ListByCreator lists exams owned by a teacher.
func (s *ExamService) ListByCreator(ctx context.Context, teacherID int) ([]model.Exam, error) {
	return s.examRepo.ListByCreator(ctx, teacherID)
}

// ListForStudent lists exams the student is enrolled in.
func (s *ExamService) ListForStudent(ctx context.Context, studentID int) ([]model.Exam, error) {
	return s.examRepo.ListForStudent(ctx, studentID)
}

// Enroll registers students for an exam, owner-teacher only. Students
// already enrolled are skipped. Returns the number of new enrollments.
func (s *ExamService) Enroll(ctx context.Context, examID uuid.UUID, teacherID int, req model.EnrollRequest) (int, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return 0, err
	}
	if exam.CreatedBy != teacherID {
		return 0, domain.ErrForbidden
	}

	added, err := s.examRepo.Enroll(ctx, examID, req.StudentIDs)
	if err != nil {
		return 0, fmt.Errorf("enroll students: %w", err)
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("requested", len(req.StudentIDs)).
		Int("added", added).
		Msg("Students enrolled")

	return added, nil
}

// PaperForStudent returns the exam's question payload with correct-answer
// information stripped. The payload is immutable for the life of the exam,
// so it is cached in redis and every student in the window hits the cache.
func (s *ExamService) PaperForStudent(ctx context.Context, examID uuid.UUID, studentID int) ([]repository.PaperQuestionView, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.examRepo.IsEnrolled(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, domain.ErrNotEnrolled
	}
	if exam.PaperID == nil {
		return nil, domain.ErrNoPaper
	}

	cacheKey := config.CacheKey.ExamPaperKey(examID.String())
	if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
		var questions []repository.PaperQuestionView
		if err := json.Unmarshal([]byte(cached), &questions); err == nil {
			return questions, nil
		}
		// Corrupt cache entry, rebuild from the database.
		s.redis.Del(ctx, cacheKey)
	}

	questions, err := s.paperRepo.GetQuestionsForStudent(ctx, *exam.PaperID)
	if err != nil {
		return nil, fmt.Errorf("load paper questions: %w", err)
	}

	if payload, err := json.Marshal(questions); err == nil {
		if err := s.redis.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Failed to cache paper payload")
		}
	}

	return questions, nil
}

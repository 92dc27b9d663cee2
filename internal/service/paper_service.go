package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/domain"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/repository"
)

// PaperService handles paper authoring and listing.
type PaperService struct {
	paperRepo    *repository.PaperRepository
	questionRepo *repository.QuestionRepository
	log          zerolog.Logger
}

// NewPaperService creates a new PaperService.
func NewPaperService(paperRepo *repository.PaperRepository, questionRepo *repository.QuestionRepository, log zerolog.Logger) *PaperService {
	return &PaperService{
		paperRepo:    paperRepo,
		questionRepo: questionRepo,
		log:          log.With().Str("component", "paper_service").Logger(),
	}
}

// Create authors a new paper. Every question must exist and appear at most
// once, the total score is derived from the per-question scores, and the
// passing score cannot exceed the total.
func (s *PaperService) Create(ctx context.Context, teacherID int, req model.CreatePaperRequest) (*model.Paper, error) {
	seen := make(map[uuid.UUID]struct{}, len(req.Questions))
	ids := make([]uuid.UUID, 0, len(req.Questions))
	totalScore := 0
	for _, q := range req.Questions {
		if _, dup := seen[q.QuestionID]; dup {
			return nil, domain.ErrDuplicateQuestion
		}
		seen[q.QuestionID] = struct{}{}
		ids = append(ids, q.QuestionID)
		totalScore += q.Score
	}

	if req.PassingScore > totalScore {
		return nil, domain.ErrInvalidPassing
	}

	existing, err := s.questionRepo.CountExisting(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("verify questions: %w", err)
	}
	if existing != len(ids) {
		return nil, domain.ErrQuestionNotFound
	}

	paper := &model.Paper{
		Name:          req.Name,
		SubjectID:     req.SubjectID,
		TotalScore:    totalScore,
		PassingScore:  req.PassingScore,
		QuestionCount: len(req.Questions),
		CreatedBy:     teacherID,
	}

	questions := make([]model.PaperQuestion, len(req.Questions))
	for i, q := range req.Questions {
		orderNum := q.OrderNum
		if orderNum == 0 {
			orderNum = i + 1
		}
		questions[i] = model.PaperQuestion{
			QuestionID: q.QuestionID,
			Score:      q.Score,
			OrderNum:   orderNum,
		}
	}

	if err := s.paperRepo.Create(ctx, paper, questions); err != nil {
		return nil, fmt.Errorf("create paper: %w", err)
	}

	s.log.Info().
		Str("paper_id", paper.ID.String()).
		Int("teacher_id", teacherID).
		Int("question_count", paper.QuestionCount).
		Int("total_score", paper.TotalScore).
		Msg("Paper created")

	return paper, nil
}

// Get retrieves a paper by ID.
func (s *PaperService) Get(ctx context.Context, id uuid.UUID) (*model.Paper, error) {
	return s.paperRepo.GetByID(ctx, id)
}

// ListByCreator lists papers owned by a teacher.
func (s *PaperService) ListByCreator(ctx context.Context, teacherID int) ([]model.Paper, error) {
	return s.paperRepo.ListByCreator(ctx, teacherID)
}

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

// QuestionService handles question authoring and browsing.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// Create authors a new question. Auto-gradable types need at least two
// options with exactly one marked correct; free-text types carry no options.
func (s *QuestionService) Create(ctx context.Context, teacherID int, req model.CreateQuestionRequest) (*model.Question, error) {
	questionType := model.QuestionType(req.QuestionType)

	if questionType.Gradable() {
		if len(req.Options) < 2 {
			return nil, domain.ErrInvalidOptions
		}
		correct := 0
		for _, o := range req.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return nil, domain.ErrInvalidOptions
		}
	} else if len(req.Options) > 0 {
		return nil, domain.ErrInvalidOptions
	}

	question := &model.Question{
		SubjectID:    req.SubjectID,
		QuestionText: req.QuestionText,
		QuestionType: questionType,
		CreatedBy:    teacherID,
	}
	for _, o := range req.Options {
		question.Options = append(question.Options, model.Option{
			OptionText: o.OptionText,
			IsCorrect:  o.IsCorrect,
		})
	}

	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	s.log.Info().
		Str("question_id", question.ID.String()).
		Int("teacher_id", teacherID).
		Str("question_type", string(question.QuestionType)).
		Msg("Question created")

	return question, nil
}

// Get retrieves a question with its options.
func (s *QuestionService) Get(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

// ListBySubject lists questions for a subject.
func (s *QuestionService) ListBySubject(ctx context.Context, subjectID int) ([]model.Question, error) {
	return s.questionRepo.ListBySubject(ctx, subjectID)
}

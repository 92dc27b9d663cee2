package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/domain"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
)

// QuestionRepository handles question and option data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Create inserts a question and its options in one transaction.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO questions (subject_id, question_text, question_type, created_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		q.SubjectID, q.QuestionText, q.QuestionType, q.CreatedBy,
	).Scan(&q.ID)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}

	for i := range q.Options {
		opt := &q.Options[i]
		opt.QuestionID = q.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO options (question_id, option_text, is_correct)
			 VALUES ($1, $2, $3)
			 RETURNING id`,
			opt.QuestionID, opt.OptionText, opt.IsCorrect,
		).Scan(&opt.ID)
		if err != nil {
			return fmt.Errorf("insert option: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a question with its options.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, subject_id, question_text, question_type, created_by
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.SubjectID, &q.QuestionText, &q.QuestionType, &q.CreatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, question_id, option_text, is_correct
		 FROM options WHERE question_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var o model.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.OptionText, &o.IsCorrect); err != nil {
			return nil, err
		}
		q.Options = append(q.Options, o)
	}
	return q, rows.Err()
}

// ListBySubject retrieves questions for a subject, without options.
func (r *QuestionRepository) ListBySubject(ctx context.Context, subjectID int) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, subject_id, question_text, question_type, created_by
		 FROM questions
		 WHERE subject_id = $1
		 ORDER BY id`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.SubjectID, &q.QuestionText, &q.QuestionType, &q.CreatedBy); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// CountExisting returns how many of the given question IDs exist.
func (r *QuestionRepository) CountExisting(ctx context.Context, ids []uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE id = ANY($1)`, ids,
	).Scan(&count)
	return count, err
}

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

// PaperRepository handles paper data access.
type PaperRepository struct {
	pool *pgxpool.Pool
}

// NewPaperRepository creates a new PaperRepository.
func NewPaperRepository(pool *pgxpool.Pool) *PaperRepository {
	return &PaperRepository{pool: pool}
}

// Create inserts a paper and its question links in one transaction.
// The caller has already validated the question set and derived totals.
func (r *PaperRepository) Create(ctx context.Context, p *model.Paper, questions []model.PaperQuestion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO papers (name, subject_id, total_score, passing_score, question_count, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		p.Name, p.SubjectID, p.TotalScore, p.PassingScore, p.QuestionCount, p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert paper: %w", err)
	}

	for _, q := range questions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO paper_questions (paper_id, question_id, score, order_num)
			 VALUES ($1, $2, $3, $4)`,
			p.ID, q.QuestionID, q.Score, q.OrderNum); err != nil {
			return fmt.Errorf("insert paper question: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a paper by its UUID.
func (r *PaperRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Paper, error) {
	p := &model.Paper{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, subject_id, total_score, passing_score, question_count, created_by, created_at
		 FROM papers WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.SubjectID, &p.TotalScore, &p.PassingScore,
		&p.QuestionCount, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaperNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListByCreator retrieves papers owned by a teacher, newest first.
func (r *PaperRepository) ListByCreator(ctx context.Context, teacherID int) ([]model.Paper, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, subject_id, total_score, passing_score, question_count, created_by, created_at
		 FROM papers
		 WHERE created_by = $1
		 ORDER BY created_at DESC`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var papers []model.Paper
	for rows.Next() {
		var p model.Paper
		if err := rows.Scan(&p.ID, &p.Name, &p.SubjectID, &p.TotalScore, &p.PassingScore,
			&p.QuestionCount, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// GetSnapshot resolves everything grading needs about a paper up front:
// per-question max scores and the correct-option identity of each gradable
// question. Questions without a configured correct option get an empty
// correct-option ID and grade as incorrect.
func (r *PaperRepository) GetSnapshot(ctx context.Context, paperID uuid.UUID) (*model.PaperSnapshot, error) {
	paper, err := r.GetByID(ctx, paperID)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.question_type, pq.score, pq.order_num, COALESCE(o.id::text, '')
		 FROM paper_questions pq
		 JOIN questions q ON q.id = pq.question_id
		 LEFT JOIN options o ON o.question_id = q.id AND o.is_correct = TRUE
		 WHERE pq.paper_id = $1
		 ORDER BY pq.order_num ASC`, paperID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshot := &model.PaperSnapshot{Paper: *paper}
	for rows.Next() {
		var k model.PaperQuestionKey
		if err := rows.Scan(&k.ID, &k.Type, &k.Score, &k.OrderNum, &k.CorrectOptionID); err != nil {
			return nil, err
		}
		snapshot.Questions = append(snapshot.Questions, k)
	}
	return snapshot, rows.Err()
}

// PaperQuestionView is one question of the student-facing paper payload:
// full text and options, correct flags stripped.
type PaperQuestionView struct {
	ID           uuid.UUID                `json:"id"`
	QuestionText string                   `json:"question_text"`
	QuestionType model.QuestionType       `json:"question_type"`
	Score        int                      `json:"score"`
	OrderNum     int                      `json:"order_num"`
	Options      []model.OptionForStudent `json:"options"`
}

// GetQuestionsForStudent loads the paper's questions with their options,
// without correct-answer information.
func (r *PaperRepository) GetQuestionsForStudent(ctx context.Context, paperID uuid.UUID) ([]PaperQuestionView, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.question_text, q.question_type, pq.score, pq.order_num
		 FROM paper_questions pq
		 JOIN questions q ON q.id = pq.question_id
		 WHERE pq.paper_id = $1
		 ORDER BY pq.order_num ASC`, paperID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []PaperQuestionView
	for rows.Next() {
		var v PaperQuestionView
		if err := rows.Scan(&v.ID, &v.QuestionText, &v.QuestionType, &v.Score, &v.OrderNum); err != nil {
			return nil, err
		}
		questions = append(questions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range questions {
		optRows, err := r.pool.Query(ctx,
			`SELECT id, option_text FROM options WHERE question_id = $1 ORDER BY id`, questions[i].ID)
		if err != nil {
			return nil, err
		}
		for optRows.Next() {
			var o model.OptionForStudent
			if err := optRows.Scan(&o.ID, &o.OptionText); err != nil {
				optRows.Close()
				return nil, err
			}
			questions[i].Options = append(questions[i].Options, o)
		}
		optRows.Close()
		if err := optRows.Err(); err != nil {
			return nil, err
		}
	}
	return questions, nil
}

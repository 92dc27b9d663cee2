package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/domain"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
)

// ExamRepository handles exam and enrollment data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, name, subject_id, start_time, end_time, paper_id, created_by, created_at, updated_at`

func scanExam(row pgx.Row) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(&e.ID, &e.Name, &e.SubjectID, &e.StartTime, &e.EndTime,
		&e.PaperID, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExamNotFound
		}
		return nil, err
	}
	return e, nil
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (name, subject_id, start_time, end_time, paper_id, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		e.Name, e.SubjectID, e.StartTime, e.EndTime, e.PaperID, e.CreatedBy,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id)
	return scanExam(row)
}

// ListByCreator retrieves exams owned by a teacher, newest first.
func (r *ExamRepository) ListByCreator(ctx context.Context, teacherID int) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams
		 WHERE created_by = $1
		 ORDER BY start_time DESC`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExams(rows)
}

// ListForStudent retrieves exams the student is enrolled in, newest first.
func (r *ExamRepository) ListForStudent(ctx context.Context, studentID int) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.name, e.subject_id, e.start_time, e.end_time,
		        e.paper_id, e.created_by, e.created_at, e.updated_at
		 FROM exams e
		 JOIN enrollments en ON en.exam_id = e.id
		 WHERE en.student_id = $1
		 ORDER BY e.start_time DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExams(rows)
}

func collectExams(rows pgx.Rows) ([]model.Exam, error) {
	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Name, &e.SubjectID, &e.StartTime, &e.EndTime,
			&e.PaperID, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// Enroll registers students for an exam. Already-enrolled students are
// skipped; returns the number of new enrollments.
func (r *ExamRepository) Enroll(ctx context.Context, examID uuid.UUID, studentIDs []int) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO enrollments (exam_id, student_id)
		 SELECT $1, unnest($2::int[])
		 ON CONFLICT (exam_id, student_id) DO NOTHING`,
		examID, studentIDs)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// IsEnrolled reports whether the student is enrolled in the exam.
func (r *ExamRepository) IsEnrolled(ctx context.Context, examID uuid.UUID, studentID int) (bool, error) {
	var enrolled bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM enrollments WHERE exam_id = $1 AND student_id = $2
		 )`, examID, studentID,
	).Scan(&enrolled)
	return enrolled, err
}

// CountEnrolled returns the number of students enrolled in the exam.
func (r *ExamRepository) CountEnrolled(ctx context.Context, examID uuid.UUID) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE exam_id = $1`, examID,
	).Scan(&total)
	return total, err
}

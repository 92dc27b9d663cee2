package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/domain"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
)

// SessionRepository handles exam session data access. All mutating statements
// carry their state precondition in the WHERE clause so that concurrent
// callers cannot double-apply a transition: the row itself is the lock.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, exam_id, student_id, started_at, submit_time, is_submitted, score, time_used, detail`

func scanSession(row pgx.Row) (*model.Session, error) {
	s := &model.Session{}
	var detailRaw []byte
	err := row.Scan(&s.ID, &s.ExamID, &s.StudentID, &s.StartedAt, &s.SubmitTime,
		&s.IsSubmitted, &s.Score, &s.TimeUsed, &detailRaw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	if len(detailRaw) > 0 {
		if err := json.Unmarshal(detailRaw, &s.Detail); err != nil {
			return nil, fmt.Errorf("decode session detail: %w", err)
		}
	}
	return s, nil
}

// GetByExamAndStudent retrieves the session for one (exam, student) pair.
// Returns domain.ErrSessionNotFound when no attempt exists.
func (r *SessionRepository) GetByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.Session, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM exam_sessions
		 WHERE exam_id = $1 AND student_id = $2`, examID, studentID)
	return scanSession(row)
}

// Create inserts a new in-progress session. The unique (exam_id, student_id)
// constraint makes concurrent creates race-safe: exactly one INSERT wins and
// the loser gets created=false without an error, so it can fetch the winner's
// row and take the idempotent path.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) (bool, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exam_sessions (exam_id, student_id, started_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (exam_id, student_id) DO NOTHING
		 RETURNING id`,
		s.ExamID, s.StudentID, s.StartedAt,
	).Scan(&s.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SaveDraft overwrites the session detail with draft answers. Only an
// unsubmitted session is touched; returns false when no row qualified.
func (r *SessionRepository) SaveDraft(ctx context.Context, examID uuid.UUID, studentID int, detail model.Detail) (bool, error) {
	detailRaw, err := json.Marshal(detail)
	if err != nil {
		return false, fmt.Errorf("encode draft detail: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET detail = $3
		 WHERE exam_id = $1 AND student_id = $2 AND is_submitted = FALSE`,
		examID, studentID, detailRaw)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MergeDraftAnswer upserts a single draft answer into the session detail.
// Used by the autosave worker; a submitted session is never touched.
func (r *SessionRepository) MergeDraftAnswer(ctx context.Context, examID uuid.UUID, studentID int, questionID, answer string) error {
	entry, err := json.Marshal(model.AnswerRecord{Answer: answer})
	if err != nil {
		return fmt.Errorf("encode draft answer: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET detail = jsonb_set(COALESCE(detail, '{}'::jsonb), ARRAY[$3], $4::jsonb)
		 WHERE exam_id = $1 AND student_id = $2 AND is_submitted = FALSE`,
		examID, studentID, questionID, entry)
	return err
}

// Submit applies the InProgress -> Submitted transition in one statement.
// The is_submitted guard in the WHERE clause guarantees the transition fires
// at most once: the loser of a concurrent submit sees zero affected rows and
// must report the session as already submitted without re-grading.
func (r *SessionRepository) Submit(ctx context.Context, examID uuid.UUID, studentID int, score int, detail model.Detail, submitTime time.Time, timeUsed int) (bool, error) {
	detailRaw, err := json.Marshal(detail)
	if err != nil {
		return false, fmt.Errorf("encode graded detail: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET is_submitted = TRUE,
		     score = $3,
		     detail = $4,
		     submit_time = $5,
		     time_used = $6
		 WHERE exam_id = $1 AND student_id = $2 AND is_submitted = FALSE`,
		examID, studentID, score, detailRaw, submitTime, timeUsed)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// OverrideQuestionScore rewrites one question's awarded score and recomputes
// the aggregate in a single UPDATE. The delta is taken from the value stored
// at commit time, not from a value the caller read earlier, so repeated
// overrides compose (a->b then b->c shifts the total by exactly c-a) and
// concurrent overrides on different questions cannot lose an aggregate
// update. Returns the new total score.
func (r *SessionRepository) OverrideQuestionScore(ctx context.Context, examID uuid.UUID, studentID int, questionID string, newScore, maxScore int, comment string) (int, error) {
	patch := map[string]interface{}{
		"score":         newScore,
		"max_score":     maxScore,
		"manual_graded": true,
	}
	if comment != "" {
		patch["comment"] = comment
	}
	patchRaw, err := json.Marshal(patch)
	if err != nil {
		return 0, fmt.Errorf("encode override patch: %w", err)
	}

	var total int
	err = r.pool.QueryRow(ctx,
		`UPDATE exam_sessions
		 SET score = score - COALESCE((detail->$3->>'score')::int, 0) + $4,
		     detail = jsonb_set(
		         COALESCE(detail, '{}'::jsonb),
		         ARRAY[$3],
		         COALESCE(detail->$3, '{}'::jsonb) || $5::jsonb
		     )
		 WHERE exam_id = $1 AND student_id = $2 AND is_submitted = TRUE
		 RETURNING score`,
		examID, studentID, questionID, newScore, patchRaw,
	).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotSubmitted
		}
		return 0, err
	}
	return total, nil
}

// ExamScoreRow is one row of a teacher's per-exam score listing.
type ExamScoreRow struct {
	StudentID   int        `json:"student_id"`
	Name        string     `json:"name"`
	Username    string     `json:"username"`
	IsSubmitted bool       `json:"is_submitted"`
	Score       *int       `json:"score"`
	StartedAt   time.Time  `json:"start_time"`
	SubmitTime  *time.Time `json:"submit_time,omitempty"`
	TimeUsed    *int       `json:"time_used,omitempty"`
}

// ListByExam retrieves all sessions for an exam joined with student identity,
// submitted attempts first, then by score descending.
func (r *SessionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]ExamScoreRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.student_id, u.name, u.username, s.is_submitted,
		        CASE WHEN s.is_submitted THEN s.score END,
		        s.started_at, s.submit_time, s.time_used
		 FROM exam_sessions s
		 JOIN users u ON u.id = s.student_id
		 WHERE s.exam_id = $1
		 ORDER BY s.is_submitted DESC, s.score DESC, u.name ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ExamScoreRow
	for rows.Next() {
		var row ExamScoreRow
		if err := rows.Scan(&row.StudentID, &row.Name, &row.Username, &row.IsSubmitted,
			&row.Score, &row.StartedAt, &row.SubmitTime, &row.TimeUsed); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// StudentScoreRow is one row of a student's own submitted-score listing.
type StudentScoreRow struct {
	ExamID     uuid.UUID `json:"exam_id"`
	ExamName   string    `json:"exam_name"`
	Score      int       `json:"score"`
	SubmitTime time.Time `json:"submit_time"`
	TimeUsed   *int      `json:"time_used,omitempty"`
}

// ListSubmittedByStudent retrieves a student's submitted sessions, most
// recent first.
func (r *SessionRepository) ListSubmittedByStudent(ctx context.Context, studentID int) ([]StudentScoreRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.exam_id, e.name, s.score, s.submit_time, s.time_used
		 FROM exam_sessions s
		 JOIN exams e ON e.id = s.exam_id
		 WHERE s.student_id = $1 AND s.is_submitted = TRUE
		 ORDER BY s.submit_time DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []StudentScoreRow
	for rows.Next() {
		var row StudentScoreRow
		if err := rows.Scan(&row.ExamID, &row.ExamName, &row.Score, &row.SubmitTime, &row.TimeUsed); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// SessionAggregate holds the raw per-exam aggregate of submitted sessions.
type SessionAggregate struct {
	Submitted int
	Average   float64
	Max       int
	Min       int
	PassCount int
}

// Aggregate computes submitted-session statistics for one exam in a single
// scan. It reads committed rows only; a submission that lands after the scan
// started may or may not be counted, which the statistics contract accepts.
func (r *SessionRepository) Aggregate(ctx context.Context, examID uuid.UUID, passingScore int) (*SessionAggregate, error) {
	agg := &SessionAggregate{}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE is_submitted),
		        COALESCE(AVG(score) FILTER (WHERE is_submitted), 0),
		        COALESCE(MAX(score) FILTER (WHERE is_submitted), 0),
		        COALESCE(MIN(score) FILTER (WHERE is_submitted), 0),
		        COUNT(*) FILTER (WHERE is_submitted AND score >= $2)
		 FROM exam_sessions
		 WHERE exam_id = $1`, examID, passingScore,
	).Scan(&agg.Submitted, &agg.Average, &agg.Max, &agg.Min, &agg.PassCount)
	if err != nil {
		return nil, err
	}
	return agg, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/domain"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/gate"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/grading"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
)

// SessionService implements the exam attempt state machine:
// Absent -> InProgress (start) -> Submitted (submit), with save-draft and
// status in between. The clock is always passed in by the caller; nothing
// here reads time.Now directly.
type SessionService struct {
	sessions SessionStore
	exams    ExamStore
	papers   PaperStore
	log      zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessions SessionStore, exams ExamStore, papers PaperStore, log zerolog.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		exams:    exams,
		papers:   papers,
		log:      log.With().Str("component", "session_service").Logger(),
	}
}

// Start begins (or re-enters) the student's attempt at an exam.
//
// A second start for the same (exam, student) returns the existing
// in-progress session with its original start time; a start after
// submission fails with ErrAlreadySubmitted. Two starts racing on an
// absent session both succeed and observe the same created record.
func (s *SessionService) Start(ctx context.Context, examID uuid.UUID, studentID int, now time.Time) (*model.Session, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.exams.IsEnrolled(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}

	switch gate.Check(enrolled, exam.StartTime, exam.EndTime, now) {
	case gate.NotEnrolled:
		return nil, domain.ErrNotEnrolled
	case gate.TooEarly:
		return nil, domain.ErrTooEarly
	case gate.TooLate:
		return nil, domain.ErrTooLate
	}

	if exam.PaperID == nil {
		return nil, domain.ErrNoPaper
	}

	existing, err := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
	if err == nil {
		if existing.IsSubmitted {
			return nil, domain.ErrAlreadySubmitted
		}
		return existing, nil
	}
	if err != domain.ErrSessionNotFound {
		return nil, fmt.Errorf("check existing session: %w", err)
	}

	session := &model.Session{
		ExamID:    examID,
		StudentID: studentID,
		StartedAt: now,
	}

	created, err := s.sessions.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if !created {
		// Lost the race to a concurrent start; the winner's record is the
		// session, with the winner's clock.
		winner, err := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
		if err != nil {
			return nil, fmt.Errorf("fetch winning session: %w", err)
		}
		if winner.IsSubmitted {
			return nil, domain.ErrAlreadySubmitted
		}
		return winner, nil
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("student_id", studentID).
		Time("started_at", session.StartedAt).
		Msg("Session started")

	return session, nil
}

// SaveDraft overwrites the session's detail with ungraded draft answers.
// No grading happens here; the answers are stored as-is and returned by
// Status until submission replaces them.
func (s *SessionService) SaveDraft(ctx context.Context, examID uuid.UUID, studentID int, answers []model.AnswerSubmission, now time.Time) (time.Time, error) {
	draft := make(model.Detail, len(answers))
	for _, a := range answers {
		draft[a.QuestionID] = model.AnswerRecord{Answer: a.Answer}
	}

	ok, err := s.sessions.SaveDraft(ctx, examID, studentID, draft)
	if err != nil {
		return time.Time{}, fmt.Errorf("save draft: %w", err)
	}
	if !ok {
		return time.Time{}, s.classifyBlockedWrite(ctx, examID, studentID)
	}
	return now, nil
}

// SubmitResult is returned to the student after a successful submission.
type SubmitResult struct {
	Score         int  `json:"score"`
	TotalPossible int  `json:"total_possible"`
	Passed        bool `json:"passed"`
	TimeUsed      int  `json:"time_used"`
}

// Submit grades the answers and finalizes the session.
//
// The paper snapshot is resolved first, then grading runs as a pure
// function, then the transition is applied as one guarded write: either
// the full graded state lands or nothing does. A submission past the
// exam's end time is still accepted and graded; rejecting or flagging
// late submissions is a policy decision left to callers.
func (s *SessionService) Submit(ctx context.Context, examID uuid.UUID, studentID int, answers []model.AnswerSubmission, now time.Time) (*SubmitResult, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		if err == domain.ErrSessionNotFound {
			return nil, domain.ErrNotStarted
		}
		return nil, err
	}
	if session.IsSubmitted {
		return nil, domain.ErrAlreadySubmitted
	}

	if exam.PaperID == nil {
		return nil, domain.ErrNoPaper
	}
	snapshot, err := s.papers.GetSnapshot(ctx, *exam.PaperID)
	if err != nil {
		return nil, fmt.Errorf("load paper snapshot: %w", err)
	}

	result := grading.Grade(snapshot, answers)
	timeUsed := int(now.Sub(session.StartedAt).Minutes())

	ok, err := s.sessions.Submit(ctx, examID, studentID, result.Score, result.Detail, now, timeUsed)
	if err != nil {
		return nil, fmt.Errorf("finalize session: %w", err)
	}
	if !ok {
		// A concurrent submit won; its grade stands.
		return nil, domain.ErrAlreadySubmitted
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("student_id", studentID).
		Int("score", result.Score).
		Int("time_used", timeUsed).
		Msg("Session submitted")

	return &SubmitResult{
		Score:         result.Score,
		TotalPossible: snapshot.Paper.TotalScore,
		Passed:        result.Passed,
		TimeUsed:      timeUsed,
	}, nil
}

// StatusView reports the attempt state of one (exam, student) pair.
// DraftAnswers is populated only while in progress; Score only after
// submission (the graded detail is exposed through the score views).
type StatusView struct {
	ExamID        uuid.UUID    `json:"exam_id"`
	ExamName      string       `json:"exam_name"`
	IsStarted     bool         `json:"is_started"`
	IsSubmitted   bool         `json:"is_submitted"`
	StartTime     *time.Time   `json:"start_time"`
	SubmitTime    *time.Time   `json:"submit_time"`
	TimeRemaining *int         `json:"time_remaining"`
	DraftAnswers  model.Detail `json:"draft_answers"`
	Score         *int         `json:"score"`
}

// Status reads the attempt state. An absent session is not an error; it
// reports not-started with null time and score fields. The exam window is
// not re-checked here: a student mid-attempt at the deadline can still see
// state and submit.
func (s *SessionService) Status(ctx context.Context, examID uuid.UUID, studentID int, now time.Time) (*StatusView, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}

	view := &StatusView{ExamID: exam.ID, ExamName: exam.Name}

	session, err := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		if err == domain.ErrSessionNotFound {
			return view, nil
		}
		return nil, err
	}

	started := session.StartedAt
	view.IsStarted = true
	view.IsSubmitted = session.IsSubmitted
	view.StartTime = &started

	if session.IsSubmitted {
		view.SubmitTime = session.SubmitTime
		score := session.Score
		view.Score = &score
		return view, nil
	}

	remaining := int(exam.EndTime.Sub(now).Minutes())
	if remaining < 0 {
		remaining = 0
	}
	view.TimeRemaining = &remaining
	view.DraftAnswers = session.Detail
	return view, nil
}

// InfoView is the taking-page payload: exam metadata, paper totals, and the
// student's attempt flags. Question content is served separately from the
// cached paper payload.
type InfoView struct {
	ExamID       uuid.UUID `json:"exam_id"`
	ExamName     string    `json:"exam_name"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Duration     int       `json:"duration"`
	TotalScore   int       `json:"total_score"`
	PassingScore int       `json:"passing_score"`
	QuestionCnt  int       `json:"question_count"`
	IsStarted    bool      `json:"is_started"`
	IsSubmitted  bool      `json:"is_submitted"`
}

// Info returns exam and paper metadata for an enrolled student.
// Fails with ErrNoPaper when the exam has no paper attached.
func (s *SessionService) Info(ctx context.Context, examID uuid.UUID, studentID int) (*InfoView, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.exams.IsEnrolled(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, domain.ErrNotEnrolled
	}

	if exam.PaperID == nil {
		return nil, domain.ErrNoPaper
	}
	snapshot, err := s.papers.GetSnapshot(ctx, *exam.PaperID)
	if err != nil {
		return nil, fmt.Errorf("load paper snapshot: %w", err)
	}

	view := &InfoView{
		ExamID:       exam.ID,
		ExamName:     exam.Name,
		StartTime:    exam.StartTime,
		EndTime:      exam.EndTime,
		Duration:     exam.DurationMinutes(),
		TotalScore:   snapshot.Paper.TotalScore,
		PassingScore: snapshot.Paper.PassingScore,
		QuestionCnt:  snapshot.Paper.QuestionCount,
	}

	session, err := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
	if err == nil {
		view.IsStarted = true
		view.IsSubmitted = session.IsSubmitted
	} else if err != domain.ErrSessionNotFound {
		return nil, err
	}

	return view, nil
}

// VerifyInProgress checks that the student has an unsubmitted session for
// the exam. Used by the draft-sync websocket before accepting answers.
func (s *SessionService) VerifyInProgress(ctx context.Context, examID uuid.UUID, studentID int) error {
	session, err := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		if err == domain.ErrSessionNotFound {
			return domain.ErrNotStarted
		}
		return err
	}
	if session.IsSubmitted {
		return domain.ErrAlreadySubmitted
	}
	return nil
}

// classifyBlockedWrite turns a zero-row guarded update into the precise
// domain error: the session either never started or is already submitted.
func (s *SessionService) classifyBlockedWrite(ctx context.Context, examID uuid.UUID, studentID int) error {
	session, err := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		if err == domain.ErrSessionNotFound {
			return domain.ErrNotStarted
		}
		return err
	}
	if session.IsSubmitted {
		return domain.ErrAlreadySubmitted
	}
	return domain.ErrNotStarted
}

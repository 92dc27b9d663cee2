package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/domain"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/repository"
)

// In-memory stores backing the service tests. The session store reproduces
// the guarded-write contract of the SQL repository: conditional transitions
// under one lock, reporting whether a row qualified.

type fakeExamStore struct {
	mu       sync.Mutex
	exams    map[uuid.UUID]*model.Exam
	enrolled map[uuid.UUID]map[int]bool
}

func newFakeExamStore() *fakeExamStore {
	return &fakeExamStore{
		exams:    make(map[uuid.UUID]*model.Exam),
		enrolled: make(map[uuid.UUID]map[int]bool),
	}
}

func (f *fakeExamStore) add(e *model.Exam, studentIDs ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exams[e.ID] = e
	set := make(map[int]bool, len(studentIDs))
	for _, id := range studentIDs {
		set[id] = true
	}
	f.enrolled[e.ID] = set
}

func (f *fakeExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exams[id]
	if !ok {
		return nil, domain.ErrExamNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeExamStore) IsEnrolled(_ context.Context, examID uuid.UUID, studentID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enrolled[examID][studentID], nil
}

func (f *fakeExamStore) CountEnrolled(_ context.Context, examID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.enrolled[examID]), nil
}

type fakePaperStore struct {
	mu        sync.Mutex
	snapshots map[uuid.UUID]*model.PaperSnapshot
}

func newFakePaperStore() *fakePaperStore {
	return &fakePaperStore{snapshots: make(map[uuid.UUID]*model.PaperSnapshot)}
}

func (f *fakePaperStore) add(s *model.PaperSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[s.Paper.ID] = s
}

func (f *fakePaperStore) GetSnapshot(_ context.Context, paperID uuid.UUID) (*model.PaperSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.snapshots[paperID]
	if !ok {
		return nil, domain.ErrPaperNotFound
	}
	return s, nil
}

type sessionKey struct {
	examID    uuid.UUID
	studentID int
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[sessionKey]*model.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[sessionKey]*model.Session)}
}

func (f *fakeSessionStore) GetByExamAndStudent(_ context.Context, examID uuid.UUID, studentID int) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionKey{examID, studentID}]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	cp.Detail = copyDetail(s.Detail)
	return &cp, nil
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.Session) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := sessionKey{s.ExamID, s.StudentID}
	if _, exists := f.sessions[key]; exists {
		return false, nil
	}
	s.ID = uuid.New()
	cp := *s
	f.sessions[key] = &cp
	return true, nil
}

func (f *fakeSessionStore) SaveDraft(_ context.Context, examID uuid.UUID, studentID int, detail model.Detail) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionKey{examID, studentID}]
	if !ok || s.IsSubmitted {
		return false, nil
	}
	s.Detail = copyDetail(detail)
	return true, nil
}

func (f *fakeSessionStore) Submit(_ context.Context, examID uuid.UUID, studentID int, score int, detail model.Detail, submitTime time.Time, timeUsed int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionKey{examID, studentID}]
	if !ok || s.IsSubmitted {
		return false, nil
	}
	s.IsSubmitted = true
	s.Score = score
	s.Detail = copyDetail(detail)
	st := submitTime
	s.SubmitTime = &st
	tu := timeUsed
	s.TimeUsed = &tu
	return true, nil
}

func (f *fakeSessionStore) OverrideQuestionScore(_ context.Context, examID uuid.UUID, studentID int, questionID string, newScore, maxScore int, comment string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionKey{examID, studentID}]
	if !ok || !s.IsSubmitted {
		return 0, domain.ErrNotSubmitted
	}
	if s.Detail == nil {
		s.Detail = make(model.Detail)
	}
	rec := s.Detail[questionID]
	s.Score = s.Score - rec.Score + newScore
	rec.Score = newScore
	rec.MaxScore = maxScore
	rec.ManualGraded = true
	if comment != "" {
		rec.Comment = comment
	}
	s.Detail[questionID] = rec
	return s.Score, nil
}

func (f *fakeSessionStore) ListByExam(_ context.Context, examID uuid.UUID) ([]repository.ExamScoreRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []repository.ExamScoreRow
	for key, s := range f.sessions {
		if key.examID != examID {
			continue
		}
		row := repository.ExamScoreRow{
			StudentID:   s.StudentID,
			IsSubmitted: s.IsSubmitted,
			StartedAt:   s.StartedAt,
			SubmitTime:  s.SubmitTime,
			TimeUsed:    s.TimeUsed,
		}
		if s.IsSubmitted {
			score := s.Score
			row.Score = &score
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (f *fakeSessionStore) ListSubmittedByStudent(_ context.Context, studentID int) ([]repository.StudentScoreRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []repository.StudentScoreRow
	for key, s := range f.sessions {
		if key.studentID != studentID || !s.IsSubmitted {
			continue
		}
		rows = append(rows, repository.StudentScoreRow{
			ExamID:     s.ExamID,
			Score:      s.Score,
			SubmitTime: *s.SubmitTime,
			TimeUsed:   s.TimeUsed,
		})
	}
	return rows, nil
}

func (f *fakeSessionStore) Aggregate(_ context.Context, examID uuid.UUID, passingScore int) (*repository.SessionAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	agg := &repository.SessionAggregate{}
	sum := 0
	for key, s := range f.sessions {
		if key.examID != examID || !s.IsSubmitted {
			continue
		}
		if agg.Submitted == 0 {
			agg.Max = s.Score
			agg.Min = s.Score
		} else {
			if s.Score > agg.Max {
				agg.Max = s.Score
			}
			if s.Score < agg.Min {
				agg.Min = s.Score
			}
		}
		agg.Submitted++
		sum += s.Score
		if s.Score >= passingScore {
			agg.PassCount++
		}
	}
	if agg.Submitted > 0 {
		agg.Average = float64(sum) / float64(agg.Submitted)
	}
	return agg, nil
}

func copyDetail(d model.Detail) model.Detail {
	if d == nil {
		return nil
	}
	cp := make(model.Detail, len(d))
	for k, v := range d {
		cp[k] = v
	}
	return cp
}

// Package domain defines the typed failure modes of the exam-taking core.
// Services return these sentinels (possibly wrapped); the handler layer maps
// them to HTTP error codes exactly once.
package domain

import "errors"

var (
	// Lookup failures.
	ErrExamNotFound     = errors.New("exam not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrPaperNotFound    = errors.New("paper not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrScoreNotFound    = errors.New("no submitted score")

	// Eligibility / time window.
	ErrNotEnrolled = errors.New("student is not enrolled in this exam")
	ErrTooEarly    = errors.New("exam has not started yet")
	ErrTooLate     = errors.New("exam has already ended")

	// Session state machine.
	ErrNotStarted       = errors.New("exam has not been started")
	ErrAlreadySubmitted = errors.New("exam has already been submitted")
	ErrNotSubmitted     = errors.New("exam has not been submitted")
	ErrNoPaper          = errors.New("no paper attached to this exam")

	// Authoring-time validation.
	ErrDuplicateQuestion = errors.New("duplicate question on paper")
	ErrInvalidScore      = errors.New("score out of range for question")
	ErrInvalidOptions    = errors.New("gradable question needs at least two options with exactly one correct")
	ErrInvalidWindow     = errors.New("exam start time must be before end time")
	ErrInvalidPassing    = errors.New("passing score exceeds paper total score")

	// Authorization.
	ErrForbidden = errors.New("caller does not own this resource")
)

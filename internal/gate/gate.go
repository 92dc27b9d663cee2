// Package gate implements the eligibility and time-window check shared by
// the exam-taking operations. It is a pure function of its inputs; callers
// resolve enrollment and pass the clock explicitly.
package gate

import "time"

// Verdict is the outcome of an eligibility check.
type Verdict int

const (
	Eligible Verdict = iota
	NotEnrolled
	TooEarly
	TooLate
)

// String implements fmt.Stringer for log output.
func (v Verdict) String() string {
	switch v {
	case Eligible:
		return "eligible"
	case NotEnrolled:
		return "not_enrolled"
	case TooEarly:
		return "too_early"
	case TooLate:
		return "too_late"
	default:
		return "unknown"
	}
}

// Check validates that an enrolled student may begin an attempt at the given
// instant. The window is inclusive on both ends: an attempt at exactly
// startTime or endTime is allowed. Enrollment is checked before the window,
// matching the order a student sees the failures in.
func Check(enrolled bool, startTime, endTime, now time.Time) Verdict {
	if !enrolled {
		return NotEnrolled
	}
	if now.Before(startTime) {
		return TooEarly
	}
	if now.After(endTime) {
		return TooLate
	}
	return Eligible
}

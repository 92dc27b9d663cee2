package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrTeacherAccessOnly ErrCode = "TEACHER_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam taking ───────────────────────────────────────────────────
	ErrNotEnrolled      ErrCode = "NOT_ENROLLED"
	ErrExamNotStarted   ErrCode = "EXAM_NOT_STARTED_YET"
	ErrExamEnded        ErrCode = "EXAM_ENDED"
	ErrNoPaper          ErrCode = "NO_PAPER_ATTACHED"
	ErrNotStarted       ErrCode = "SESSION_NOT_STARTED"
	ErrAlreadySubmitted ErrCode = "ALREADY_SUBMITTED"
	ErrNotSubmitted     ErrCode = "NOT_SUBMITTED"

	// ─── Authoring ─────────────────────────────────────────────────────
	ErrDuplicateQuestion ErrCode = "DUPLICATE_QUESTION"
	ErrInvalidScore      ErrCode = "INVALID_SCORE"
	ErrInvalidOptions    ErrCode = "INVALID_OPTIONS"
	ErrInvalidWindow     ErrCode = "INVALID_TIME_WINDOW"
	ErrInvalidPassing    ErrCode = "INVALID_PASSING_SCORE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Username or password is incorrect."
	case ErrSessionActive:
		return "You are already logged in on another device."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrTeacherAccessOnly:
		return "This resource is restricted to teachers."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The resource was not found."
	case ErrConflict:
		return "The resource already exists."

	// ─── Exam taking ───────────────────────────────────────────────────
	case ErrNotEnrolled:
		return "You are not enrolled in this exam."
	case ErrExamNotStarted:
		return "This exam has not started yet."
	case ErrExamEnded:
		return "This exam has already ended."
	case ErrNoPaper:
		return "This exam has no paper attached."
	case ErrNotStarted:
		return "You have not started this exam."
	case ErrAlreadySubmitted:
		return "This exam has already been submitted."
	case ErrNotSubmitted:
		return "This exam has not been submitted yet."

	// ─── Authoring ─────────────────────────────────────────────────────
	case ErrDuplicateQuestion:
		return "The same question appears more than once."
	case ErrInvalidScore:
		return "The score is outside the allowed range."
	case ErrInvalidOptions:
		return "Choice questions need at least two options with exactly one marked correct."
	case ErrInvalidWindow:
		return "The exam end time must be after its start time."
	case ErrInvalidPassing:
		return "The passing score cannot exceed the paper's total score."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}

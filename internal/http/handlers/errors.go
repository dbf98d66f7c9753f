// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable: clients branch on them, not on
// messages. The domain kinds map onto the first five; the rest cover
// transport-level failures.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "teacher_unavailable",
//	  "message": "The teacher is currently busy. Please try again later."
//	}
package handlers

const (
	ErrCodeValidation         = "validation_failed"
	ErrCodeNotWritable        = "conversation_not_writable"
	ErrCodeNotFound           = "not_found"
	ErrCodeTeacherUnavailable = "teacher_unavailable"
	ErrCodePersistence        = "persistence_failed"

	ErrCodeBadRequest       = "bad_request"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error kinds. Every error produced by the domain, the use cases or the
// adapters matches exactly one of these through errors.Is, which is what the
// transport layer branches on.
var (
	// ErrValidation marks client-fixable input errors.
	ErrValidation = errors.New("validation failed")
	// ErrNotWritable marks mutations attempted on a conversation that is not active.
	ErrNotWritable = errors.New("conversation not writable")
	// ErrNotFound marks failed id lookups and ownership mismatches.
	ErrNotFound = errors.New("resource not found")
	// ErrGeneration marks failures of the external response generator.
	ErrGeneration = errors.New("teacher response unavailable")
	// ErrPersistence marks storage failures.
	ErrPersistence = errors.New("persistence failure")
)

// Validation failures.
var (
	ErrInvalidLanguageCode = fmt.Errorf("%w: invalid language code", ErrValidation)
	ErrInvalidLanguagePair = fmt.Errorf("%w: invalid language pair", ErrValidation)
	ErrEmptyTitle          = fmt.Errorf("%w: title cannot be empty", ErrValidation)
	ErrTitleTooLong        = fmt.Errorf("%w: title is too long", ErrValidation)
	ErrEmptyContent        = fmt.Errorf("%w: message content cannot be empty", ErrValidation)
	ErrInvalidRole         = fmt.Errorf("%w: invalid role", ErrValidation)
	ErrInvalidStatus       = fmt.Errorf("%w: invalid status", ErrValidation)
	ErrInvalidLevel        = fmt.Errorf("%w: invalid CEFR level", ErrValidation)
	ErrInvalidCreativity   = fmt.Errorf("%w: invalid creativity level", ErrValidation)
	ErrInvalidStyle        = fmt.Errorf("%w: invalid generation style", ErrValidation)
	ErrNegativeOffset      = fmt.Errorf("%w: offset cannot be negative", ErrValidation)
)

// NotWritableError reports an attempt to mutate a conversation whose status
// does not allow it.
type NotWritableError struct {
	ConversationID uuid.UUID
	Status         Status
}

func (e *NotWritableError) Error() string {
	return fmt.Sprintf("operation denied: conversation %s is currently %s", e.ConversationID, e.Status)
}

// Is makes errors.Is(err, ErrNotWritable) hold.
func (e *NotWritableError) Is(target error) bool { return target == ErrNotWritable }

// NotFoundError reports a missing resource. Ownership mismatches use it too,
// so callers cannot tell a foreign conversation from a missing one.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id: %s", e.Resource, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConversationNotFound builds the not-found error used for conversations.
func ConversationNotFound(id uuid.UUID) error {
	return &NotFoundError{Resource: "conversation", ID: id.String()}
}

// GenerationError wraps a failure of the response generator with a
// human-readable cause that is safe to show to students.
type GenerationError struct {
	Cause string
	Err   error
}

func (e *GenerationError) Error() string {
	return "unable to provide the teacher's response: " + e.Cause
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrGeneration) hold.
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

// PersistenceError wraps a storage failure for the named operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return "persistence failure during " + e.Op
	}
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrPersistence) hold.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

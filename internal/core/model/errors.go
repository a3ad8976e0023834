package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when an entity is required to exist and does not.
	ErrNotFound = errors.New("entity was not found")

	// ErrInvalidID is returned when an identifier cannot be parsed by the repository.
	ErrInvalidID = errors.New("malformed identifier")

	// ErrMissingSearchTerms is returned when a search carries neither nom nor prenom.
	ErrMissingSearchTerms = errors.New("nom or prenom is required for the search")
)

// ErrorKind classifies errors into the categories exposed to clients.
type ErrorKind int

const (
	// KindStorage is any failure of the persistence layer not otherwise classified.
	KindStorage ErrorKind = iota
	// KindValidation is a missing or malformed input.
	KindValidation
	// KindDuplicateKey is a uniqueness violation detected by the store.
	KindDuplicateKey
	// KindNotFound is a lookup by identifier that matched nothing.
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicateKey:
		return "duplicate_key"
	case KindNotFound:
		return "not_found"
	default:
		return "storage"
	}
}

// KindOf classifies err. Errors wrapped with %w are unwrapped.
func KindOf(err error) ErrorKind {
	var validationErr *ValidationError
	var duplicateErr *DuplicateKeyError
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrMissingSearchTerms):
		return KindValidation
	case errors.As(err, &duplicateErr):
		return KindDuplicateKey
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindStorage
	}
}

// FieldError is a single constraint failure on a user field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError gathers every field failing the user schema.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "user validation failed: " + strings.Join(parts, ", ")
}

// DuplicateKeyError is returned by repositories when a write collides with the uniqueness of Field.
// Field is empty when the store does not tell which constraint was violated.
type DuplicateKeyError struct {
	Field string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("duplicate key: %v", e.Err)
	}
	return fmt.Sprintf("duplicate key on field %q: %v", e.Field, e.Err)
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

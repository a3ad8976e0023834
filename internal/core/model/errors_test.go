package model

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func dummyTime() time.Time {
	return time.Date(2023, 4, 10, 12, 0, 0, 0, time.UTC)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{name: "validation error", err: &ValidationError{Fields: []FieldError{{Field: "nom"}}}, expected: KindValidation},
		{name: "wrapped validation error", err: fmt.Errorf("create: %w", &ValidationError{}), expected: KindValidation},
		{name: "invalid id", err: fmt.Errorf("decode: %w", ErrInvalidID), expected: KindValidation},
		{name: "missing search terms", err: ErrMissingSearchTerms, expected: KindValidation},
		{name: "duplicate key", err: fmt.Errorf("save: %w", &DuplicateKeyError{Field: "nom", Err: errors.New("E11000")}), expected: KindDuplicateKey},
		{name: "not found", err: fmt.Errorf("update: %w", ErrNotFound), expected: KindNotFound},
		{name: "anything else", err: errors.New("connection refused"), expected: KindStorage},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, KindOf(test.err))
		})
	}
}

func TestDuplicateKeyError(t *testing.T) {
	cause := errors.New("E11000 duplicate key error")
	err := &DuplicateKeyError{Field: "email", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `"email"`)

	unknown := &DuplicateKeyError{Err: cause}
	assert.Equal(t, "duplicate key: E11000 duplicate key error", unknown.Error())
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "duplicate_key", KindDuplicateKey.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "storage", KindStorage.String())
}

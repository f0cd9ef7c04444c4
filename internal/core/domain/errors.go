package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a missing credential or connection parameter
	// detected before any partial work is performed.
	ErrConfiguration = errors.New("configuration error")
	// ErrEmptyInput marks an operation attempted on an empty input set,
	// e.g. a retriever build with zero units.
	ErrEmptyInput = errors.New("empty input")

	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedShard  = errors.New("malformed shard")
	ErrUnsupportedKind = errors.New("unsupported kind")
	ErrCollaborator    = errors.New("collaborator error")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrNotFound        = errors.New("not found")
)

// Wrap builds an error message that includes track context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, kind, operation, message string, err error) error {
	detail := buildDetail(kind, operation, message)
	if marker == nil {
		marker = ErrCollaborator
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsSkippable reports whether err only invalidates a single shard or entity
// rather than the whole run.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrMalformedShard)
}

func buildDetail(kind, operation, message string) string {
	parts := make([]string, 0, 3)
	if kind = strings.TrimSpace(kind); kind != "" {
		parts = append(parts, kind)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "track failure"
	}
	return strings.Join(parts, ": ")
}

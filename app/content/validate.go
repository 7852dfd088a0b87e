package content

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const minTextLength = 10

var ErrInvalidItem = errors.New("invalid content item")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid content item: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidItem
}

// Validate rejects items that cannot be attributed or acted on.
func (i Item) Validate() error {
	requiredFields := map[string]string{
		"platform":       string(i.Platform),
		"external_id":    i.ExternalID,
		"creator_handle": i.CreatorHandle,
		"permalink":      i.Permalink,
	}

	for _, field := range []string{"platform", "external_id", "creator_handle", "permalink"} {
		if strings.TrimSpace(requiredFields[field]) == "" {
			return &ValidationError{Field: field, Reason: "is required"}
		}
	}

	if utf8.RuneCountInString(strings.TrimSpace(i.Text)) <= minTextLength {
		return &ValidationError{Field: "text", Reason: fmt.Sprintf("must be longer than %d characters", minTextLength)}
	}

	return nil
}

package services

import (
	"fmt"
	"strings"
)

// ValidationError reports input the caller must fix before resubmitting.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError reports an unknown record or version id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// fromConstraintError turns a UNIQUE violation raised by the store into a
// ValidationError naming the value. This only happens when a concurrent
// transaction claimed the value between our check and our write.
func fromConstraintError(err error, username string, email *string) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed: users.username"):
		return &ValidationError{Message: fmt.Sprintf("username %q already exists", username)}
	case strings.Contains(msg, "UNIQUE constraint failed: users.email"):
		value := ""
		if email != nil {
			value = *email
		}
		return &ValidationError{Message: fmt.Sprintf("email %q is already in use", value)}
	}
	return err
}

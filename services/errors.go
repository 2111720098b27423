package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrValidation         = errors.New("invalid input")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrAlreadyApplied     = errors.New("already applied for this job")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("no token provided")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("admin only")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrFetch              = errors.New("failed to fetch external jobs")

	ErrNotFound            = errors.New("not found")
	ErrJobNotFound         = fmt.Errorf("job %w", ErrNotFound)
	ErrApplicationNotFound = fmt.Errorf("application %w", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
)

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// isUniqueViolation reports whether err comes from a unique index. Drivers
// that do not translate errors are matched on their message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

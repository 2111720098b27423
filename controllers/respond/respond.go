package respond

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"jobsy-backend/services"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "requestID"

// StatusFor maps a service error onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrDuplicateEmail),
		errors.Is(err, services.ErrAlreadyApplied),
		errors.Is(err, services.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message is the client-facing text for err. Unknown errors never leak
// their details.
func Message(err error) string {
	switch {
	case errors.Is(err, services.ErrAlreadyApplied):
		return "Already applied for this job"
	case errors.Is(err, services.ErrDuplicateEmail):
		return "Email already registered"
	case errors.Is(err, services.ErrWeakPassword):
		return "Password must be at least 6 characters"
	case errors.Is(err, services.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, services.ErrUnauthenticated):
		return "Access denied. No token provided."
	case errors.Is(err, services.ErrInvalidToken):
		return "Invalid token."
	case errors.Is(err, services.ErrForbidden):
		return "Access denied. Admin only."
	case errors.Is(err, services.ErrJobNotFound):
		return "Job not found"
	case errors.Is(err, services.ErrApplicationNotFound):
		return "Application not found"
	case errors.Is(err, services.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, services.ErrValidation):
		return validationMessage(err)
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrFetch):
		return err.Error()
	default:
		return "Internal server error"
	}
}

// validationMessage drops the sentinel prefix and capitalizes the detail.
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), services.ErrValidation.Error()+": ")
	if msg == "" {
		return "Invalid input"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// Error writes {message} and aborts the chain.
func Error(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"message": Message(err)})
}

// Failure writes {success: false, message}, the shape used by the auth and
// apply endpoints.
func Failure(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": Message(err)})
}

// ParamID parses a numeric path parameter. Anything that cannot be an id
// resolves to notFound.
func ParamID(c *gin.Context, name string, notFound error) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, notFound
	}
	return uint(id), nil
}

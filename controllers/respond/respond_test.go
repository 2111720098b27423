package respond

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"jobsy-backend/services"
)

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		services.ErrValidation:                                  http.StatusBadRequest,
		fmt.Errorf("%w: title", services.ErrValidation):         http.StatusBadRequest,
		services.ErrWeakPassword:                                http.StatusBadRequest,
		services.ErrDuplicateEmail:                              http.StatusBadRequest,
		services.ErrAlreadyApplied:                              http.StatusBadRequest,
		services.ErrInvalidStatus:                               http.StatusBadRequest,
		services.ErrInvalidCredentials:                          http.StatusUnauthorized,
		services.ErrUnauthenticated:                             http.StatusUnauthorized,
		services.ErrInvalidToken:                                http.StatusUnauthorized,
		services.ErrForbidden:                                   http.StatusForbidden,
		services.ErrJobNotFound:                                 http.StatusNotFound,
		fmt.Errorf("load: %w", services.ErrApplicationNotFound): http.StatusNotFound,
		services.ErrFetch:                                       http.StatusInternalServerError,
		errors.New("disk on fire"):                              http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), err.Error())
	}
}

func TestMessageHidesInternalErrors(t *testing.T) {
	assert.Equal(t, "Internal server error", Message(errors.New("pq: relation does not exist")))
	assert.Equal(t, "Title is required", Message(fmt.Errorf("%w: title is required", services.ErrValidation)))
	assert.Equal(t, "Invalid input", Message(services.ErrValidation))
	assert.Equal(t, "Job not found", Message(services.ErrJobNotFound))
}

func TestParamID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for raw, ok := range map[string]bool{"42": true, "0": false, "-1": false, "abc": false, "": false} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Params = gin.Params{{Key: "id", Value: raw}}
		id, err := ParamID(c, "id", services.ErrJobNotFound)
		if ok {
			assert.NoError(t, err)
			assert.Equal(t, uint(42), id)
		} else {
			assert.ErrorIs(t, err, services.ErrJobNotFound, raw)
		}
	}
}

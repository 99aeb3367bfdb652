package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/climatrix/climatrix/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFromStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", Validation([]types.FieldError{{Field: "city", Message: "city is required"}}), http.StatusBadRequest},
		{"unauthorized", Unauthorized(), http.StatusUnauthorized},
		{"forbidden", Forbidden("nope"), http.StatusForbidden},
		{"not found", NotFound("No climate data found for Pune"), http.StatusNotFound},
		{"conflict", Conflict("A group with this name already exists"), http.StatusConflict},
		{"gorm not found", fmt.Errorf("load user: %w", gorm.ErrRecordNotFound), http.StatusNotFound},
		{"gorm duplicate", fmt.Errorf("create group: %w", gorm.ErrDuplicatedKey), http.StatusConflict},
		{"wrapped app error", fmt.Errorf("outer: %w", Forbidden("x")), http.StatusForbidden},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, From(tt.err).Status)
		})
	}
}

func TestWriteEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Write(c, Validation([]types.FieldError{{Field: "email", Message: "email is required"}}))

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body types.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Validation Error", body.Error)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "email", body.Errors[0].Field)
}

func TestWriteHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Write(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Contains(t, w.Body.String(), "An unexpected error occurred")
}

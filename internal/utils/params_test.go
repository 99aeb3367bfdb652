package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/climatrix/climatrix/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Mumbai Clean Air":        "mumbai-clean-air",
		"  Green  Delhi!! ":       "green-delhi",
		"Bangalore Lakes & Co.":   "bangalore-lakes-co",
		"already-a-slug":          "already-a-slug",
		"Trees 4 Everyone (2025)": "trees-4-everyone-2025",
	}

	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestNewProductCode(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewProductCode(now)
	b := NewProductCode(now)

	assert.Regexp(t, `^PROD-[0-9A-Z]+-[0-9A-F]{6}$`, a)
	assert.NotEqual(t, a, b)
}

func TestGetIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	c.Params = gin.Params{{Key: "id", Value: "0f8fad5b-d9cb-469f-a165-70867728950e"}}
	id, err := GetIDParam(c, "id", "Group")
	require.NoError(t, err)
	assert.Equal(t, "0f8fad5b-d9cb-469f-a165-70867728950e", id)

	c.Params = gin.Params{{Key: "id", Value: "42"}}
	_, err = GetIDParam(c, "id", "Group")
	assert.Equal(t, http.StatusNotFound, apperr.From(err).Status)
	assert.Equal(t, "Group not found", apperr.From(err).Title)
}

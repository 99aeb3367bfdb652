package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/climatrix/climatrix/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// GetIDParam reads a uuid path parameter. Malformed ids are reported as not
// found since no row can carry them.
func GetIDParam(ctx *gin.Context, name, resource string) (string, error) {
	raw := ctx.Param(name)
	if raw == "" {
		return "", apperr.NotFound(resource + " not found")
	}

	if _, err := uuid.Parse(raw); err != nil {
		return "", apperr.NotFound(resource + " not found")
	}

	return raw, nil
}

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(slug, "-")
}

// NewProductCode returns a code like PROD-M4X2K9QZ-3F9A1C.
func NewProductCode(now time.Time) string {
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "PROD-" + stamp + "-" + suffix
}

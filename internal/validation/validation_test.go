package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/climatrix/climatrix/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupBody struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=30,username"`
	Password string `json:"password" binding:"required,min=8,password"`
	Start    *Date  `json:"startDate" binding:"omitempty"`
}

type listQuery struct {
	City  string `form:"city" binding:"required,min=1"`
	Hours int    `form:"hours,default=24" binding:"min=1,max=168"`
}

type pagedQuery struct {
	listQuery
	Page     int      `form:"page,default=1" binding:"min=1"`
	Lat      *float64 `form:"lat"`
	Resolved bool     `form:"resolved"`
}

func jsonContext(body string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func queryContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return c
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	appErr := apperr.From(err)
	require.Equal(t, http.StatusBadRequest, appErr.Status)

	out := map[string]string{}
	for _, f := range appErr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestBindJSONReportsMissingFields(t *testing.T) {
	var body signupBody
	fields := fieldsOf(t, BindJSON(jsonContext(`{"email":"a@b.co"}`), &body))

	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")
	assert.NotContains(t, fields, "email")
}

func TestBindJSONEmptyBodyIsValidated(t *testing.T) {
	var body signupBody
	fields := fieldsOf(t, BindJSON(jsonContext(""), &body))

	assert.Equal(t, "email is required", fields["email"])
}

func TestBindJSONCustomRules(t *testing.T) {
	var body signupBody
	fields := fieldsOf(t, BindJSON(jsonContext(`{"email":"a@b.co","username":"bad name","password":"alllowercase1"}`), &body))

	assert.Contains(t, fields["username"], "letters, numbers, and underscores")
	assert.Contains(t, fields["password"], "uppercase")
}

func TestBindJSONRejectsUnknownFields(t *testing.T) {
	var body signupBody
	fields := fieldsOf(t, BindJSON(jsonContext(`{"email":"a@b.co","username":"abc","password":"Passw0rd!","role":"ADMIN"}`), &body))

	assert.Equal(t, "Unrecognized field", fields["role"])
}

func TestBindJSONDates(t *testing.T) {
	var body signupBody
	require.NoError(t, BindJSON(jsonContext(`{"email":"a@b.co","username":"abc","password":"Passw0rd","startDate":"2025-03-01"}`), &body))
	require.NotNil(t, body.Start)
	assert.Equal(t, "2025-03-01T00:00:00Z", body.Start.Format("2006-01-02T15:04:05Z07:00"))

	body = signupBody{}
	fields := fieldsOf(t, BindJSON(jsonContext(`{"email":"a@b.co","username":"abc","password":"Passw0rd","startDate":"March 1st"}`), &body))
	assert.Contains(t, fields, "startDate")
}

func TestBindJSONMalformed(t *testing.T) {
	var body signupBody
	err := BindJSON(jsonContext(`{"email":`), &body)

	appErr := apperr.From(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "Invalid JSON body", appErr.Title)
}

func TestBindJSONRejectsTrailingData(t *testing.T) {
	for _, raw := range []string{
		`{"email":"a@b.co","username":"abc","password":"Passw0rd"} trailing`,
		`{"email":"a@b.co","username":"abc","password":"Passw0rd"}{"role":"ADMIN"}`,
		`{"email":"a@b.co","username":"abc","password":"Passw0rd"}]`,
	} {
		var body signupBody
		appErr := apperr.From(BindJSON(jsonContext(raw), &body))
		assert.Equal(t, http.StatusBadRequest, appErr.Status, raw)
		assert.Equal(t, "Invalid JSON body", appErr.Title, raw)
		assert.Empty(t, body.Email, raw)
	}

	var body signupBody
	require.NoError(t, BindJSON(jsonContext("  {\"email\":\"a@b.co\",\"username\":\"abc\",\"password\":\"Passw0rd\"}\n"), &body))
	assert.Equal(t, "abc", body.Username)
}

func TestBindQueryParseErrorsNameTheField(t *testing.T) {
	tests := []struct {
		query   string
		field   string
		message string
	}{
		{"city=Pune&page=abc", "page", "page must be an integer"},
		{"city=Pune&hours=1e3", "hours", "hours must be an integer"},
		{"city=Pune&lat=north", "lat", "lat must be a number"},
		{"city=Pune&resolved=maybe", "resolved", "resolved must be true or false"},
	}

	for _, tt := range tests {
		var q pagedQuery
		fields := fieldsOf(t, BindQuery(queryContext(tt.query), &q))
		require.Len(t, fields, 1, tt.query)
		assert.Equal(t, tt.message, fields[tt.field], tt.query)
		assert.NotContains(t, fields[tt.field], "strconv", tt.query)
	}
}

func TestBindQueryDefaultsAndBounds(t *testing.T) {
	var q listQuery
	require.NoError(t, BindQuery(queryContext("city=Mumbai"), &q))
	assert.Equal(t, 24, q.Hours)

	q = listQuery{}
	fields := fieldsOf(t, BindQuery(queryContext("city=Mumbai&hours=500"), &q))
	assert.Contains(t, fields["hours"], "less than or equal to 168")

	q = listQuery{}
	fields = fieldsOf(t, BindQuery(queryContext(""), &q))
	assert.Contains(t, fields, "city")
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-02T10:30:00+05:30")
	require.NoError(t, err)
	assert.Equal(t, 5, d.Hour())

	_, err = ParseDate("02/01/2025")
	assert.Error(t, err)
}

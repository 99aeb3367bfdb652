package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/climatrix/climatrix/internal/handlers"
	"github.com/climatrix/climatrix/internal/models"
	"github.com/climatrix/climatrix/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupValidation(t *testing.T) {
	s := newServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/auth/signup", map[string]any{}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.ElementsMatch(t, []string{"email", "username", "password"}, fieldNames(decode(t, w).Errors))

	w = s.do(t, http.MethodPost, "/api/auth/signup", `{"email":`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON body", decode(t, w).Error)

	w = s.do(t, http.MethodPost, "/api/auth/signup",
		`{"email":"jane@example.com","username":"jane","password":"Str0ngPass"} {"role":"ADMIN"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON body", decode(t, w).Error)

	assert.Zero(t, s.count(t, &models.User{}))
}

func TestSignupLoginSession(t *testing.T) {
	s := newServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email":    "Jane.Smith@Example.com",
		"username": "janesmith",
		"password": "Str0ngPass",
		"city":     "Bangalore",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, types.AuthCookieName+"=")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "SameSite=Lax")

	var session handlers.SessionResponse
	decodeData(t, w, &session)
	assert.Equal(t, "jane.smith@example.com", session.User.Email)
	assert.Equal(t, types.RoleUser, session.User.Role)
	require.NotNil(t, session.User.Profile)
	assert.NotEmpty(t, session.Token)

	w = s.do(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email": "jane.smith@example.com", "username": "other", "password": "Str0ngPass",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "An account with this email already exists", decode(t, w).Error)

	w = s.do(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email": "new@example.com", "username": "JaneSmith", "password": "Str0ngPass",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "This username is already taken", decode(t, w).Error)

	w = s.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "jane.smith@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decode(t, w).Message)

	w = s.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "jane.smith@example.com", "password": "Str0ngPass"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &session)

	assert.NotEmpty(t, w.Result().Cookies())

	w = s.do(t, http.MethodGet, "/api/auth/me", nil, session.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	decodeData(t, w, &me)
	assert.Equal(t, "janesmith", me.Username)

	w = s.do(t, http.MethodPost, "/api/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Header().Get("Set-Cookie"), "Max-Age=0"))
}

func TestMeRequiresAuth(t *testing.T) {
	s := newServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/auth/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "You must be logged in to access this resource", decode(t, w).Message)

	w = s.do(t, http.MethodGet, "/api/auth/me", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRateLimit(t *testing.T) {
	s := newServer(t, nil)
	s.withAuthLimiter(0.001, 2)

	body := map[string]any{"email": "nobody@example.com", "password": "whatever"}
	for i := 0; i < 2; i++ {
		w := s.do(t, http.MethodPost, "/api/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := s.do(t, http.MethodPost, "/api/auth/login", body, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestProfile(t *testing.T) {
	s := newServer(t, nil)
	_, token := s.user(t, "johndoe", types.RoleUser)

	w := s.do(t, http.MethodPatch, "/api/profile", map[string]any{
		"firstName": "John",
		"bio":       "Cyclist and composter",
		"interests": []string{"cycling", "composting"},
		"city":      "New Delhi",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/profile", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var profile struct {
		FirstName string `json:"firstName"`
		City      string `json:"city"`
		Profile   struct {
			Bio       string   `json:"bio"`
			Interests []string `json:"interests"`
		} `json:"profile"`
		Count struct {
			Posts            int64 `json:"posts"`
			GroupMemberships int64 `json:"groupMemberships"`
		} `json:"_count"`
	}
	decodeData(t, w, &profile)
	assert.Equal(t, "John", profile.FirstName)
	assert.Equal(t, "New Delhi", profile.City)
	assert.Equal(t, "Cyclist and composter", profile.Profile.Bio)
	assert.Equal(t, []string{"cycling", "composting"}, profile.Profile.Interests)
	assert.Zero(t, profile.Count.Posts)

	w = s.do(t, http.MethodPatch, "/api/profile", map[string]any{"bio": strings.Repeat("x", 501)}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"bio"}, fieldNames(decode(t, w).Errors))
}

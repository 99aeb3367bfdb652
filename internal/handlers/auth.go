package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/climatrix/climatrix/internal/apperr"
	"github.com/climatrix/climatrix/internal/auth"
	"github.com/climatrix/climatrix/internal/logging"
	"github.com/climatrix/climatrix/internal/models"
	"github.com/climatrix/climatrix/internal/types"
	"github.com/climatrix/climatrix/internal/utils"
	"github.com/climatrix/climatrix/internal/validation"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SignupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required,min=3,max=30,username"`
	Password  string `json:"password" binding:"required,min=8,password"`
	FirstName string `json:"firstName" binding:"omitempty,min=1"`
	LastName  string `json:"lastName" binding:"omitempty,min=1"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SessionResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

var errInvalidCredentials = &apperr.Error{
	Status:  http.StatusUnauthorized,
	Title:   "Unauthorized",
	Message: "Invalid email or password",
}

func (h *Handler) Signup(ctx *gin.Context) error {
	var req SignupRequest
	if err := validation.BindJSON(ctx, &req); err != nil {
		return err
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	taken, err := h.store.EmailTaken(ctx.Request.Context(), req.Email)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("An account with this email already exists")
	}

	taken, err = h.store.UsernameTaken(ctx.Request.Context(), req.Username)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("This username is already taken")
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         types.RoleUser,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
	}

	if err := h.store.CreateUser(ctx.Request.Context(), user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("An account with this email already exists")
		}
		return err
	}

	token, err := h.startSession(ctx, user)
	if err != nil {
		return err
	}

	logging.Ctx(ctx.Request.Context()).Info().Str("user_id", user.ID).Msg("User signed up")

	return respond(ctx, http.StatusCreated, SessionResponse{User: user, Token: token}, "Account created successfully")
}

func (h *Handler) Login(ctx *gin.Context) error {
	var req LoginRequest
	if err := validation.BindJSON(ctx, &req); err != nil {
		return err
	}

	user, err := h.store.FindUserByEmail(ctx.Request.Context(), strings.TrimSpace(req.Email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errInvalidCredentials
	}
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return errInvalidCredentials
	}

	token, err := h.startSession(ctx, user)
	if err != nil {
		return err
	}

	return respond(ctx, http.StatusOK, SessionResponse{User: user, Token: token}, "Logged in successfully")
}

func (h *Handler) Logout(ctx *gin.Context) error {
	h.setSessionCookie(ctx, "", -1)
	return respond(ctx, http.StatusOK, nil, "Logged out successfully")
}

func (h *Handler) Me(ctx *gin.Context) error {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		return err
	}

	user, err := h.store.FindUser(ctx.Request.Context(), userID)
	if err != nil {
		return notFound(err, "User not found")
	}

	return respond(ctx, http.StatusOK, user, "")
}

func (h *Handler) startSession(ctx *gin.Context, user *models.User) (string, error) {
	token, err := h.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return "", err
	}

	h.setSessionCookie(ctx, token, int(h.tokens.Expiry().Seconds()))
	return token, nil
}

func (h *Handler) setSessionCookie(ctx *gin.Context, value string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(types.AuthCookieName, value, maxAge, "/", h.opts.CookieDomain, h.opts.SecureCookies, true)
}

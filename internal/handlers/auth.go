package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/edpsychconnect/backend/internal/apierr"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/services"
  "github.com/edpsychconnect/backend/internal/types"
  "github.com/edpsychconnect/backend/internal/validation"
)

type RegisterRequest struct {
  Email     string `json:"email" validate:"required,email"`
  Password  string `json:"password" validate:"required,min=8,max=72"`
  FirstName string `json:"first_name" validate:"required,min=1,max=100"`
  LastName  string `json:"last_name" validate:"required,min=1,max=100"`
  Role      string `json:"role" validate:"omitempty,oneof=student teacher"`
}

type LoginRequest struct {
  Email    string `json:"email" validate:"required,email"`
  Password string `json:"password" validate:"required"`
}

type AuthHandler struct {
  log         *logger.Logger
  authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
  return &AuthHandler{
    log:         log.With("handler", "AuthHandler"),
    authService: authService,
  }
}

func (h *AuthHandler) Register(c *gin.Context) {
  var req RegisterRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_json", errors.New("malformed request body"))
    return
  }
  if violations := validation.Check(req); len(violations) > 0 {
    RespondServiceError(c, apierr.Validation(violations, errors.New("validation failed")))
    return
  }

  user := &types.User{
    Email:     req.Email,
    Password:  req.Password,
    FirstName: req.FirstName,
    LastName:  req.LastName,
    Role:      req.Role,
  }
  if err := h.authService.RegisterUser(c.Request.Context(), user); err != nil {
    RespondServiceError(c, err)
    return
  }

  access, refresh, err := h.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondCreated(c, gin.H{
    "user":          user,
    "access_token":  access,
    "refresh_token": refresh,
  })
}

func (h *AuthHandler) Login(c *gin.Context) {
  var req LoginRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_json", errors.New("malformed request body"))
    return
  }
  if violations := validation.Check(req); len(violations) > 0 {
    RespondServiceError(c, apierr.Validation(violations, errors.New("validation failed")))
    return
  }

  access, refresh, err := h.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{
    "access_token":  access,
    "refresh_token": refresh,
  })
}

func (h *AuthHandler) Refresh(c *gin.Context) {
  access, refresh, err := h.authService.RefreshUser(c.Request.Context())
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{
    "access_token":  access,
    "refresh_token": refresh,
  })
}

func (h *AuthHandler) Logout(c *gin.Context) {
  if err := h.authService.LogoutUser(c.Request.Context()); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"status": "logged_out"})
}

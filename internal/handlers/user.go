package handlers

import (
  "github.com/gin-gonic/gin"

  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/services"
)

type UserHandler struct {
  log         *logger.Logger
  userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
  return &UserHandler{
    log:         log.With("handler", "UserHandler"),
    userService: userService,
  }
}

func (h *UserHandler) GetMe(c *gin.Context) {
  user, err := h.userService.GetMe(c.Request.Context(), nil)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"user": user})
}

package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/edpsychconnect/backend/internal/apierr"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/services"
  "github.com/edpsychconnect/backend/internal/validation"
)

type CompletionHandler struct {
  log               *logger.Logger
  completionService services.CompletionService
}

func NewCompletionHandler(log *logger.Logger, completionService services.CompletionService) *CompletionHandler {
  return &CompletionHandler{
    log:               log.With("handler", "CompletionHandler"),
    completionService: completionService,
  }
}

func (h *CompletionHandler) Complete(c *gin.Context) {
  var input services.CompletionInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_json", errors.New("malformed request body"))
    return
  }
  if violations := validation.Check(input); len(violations) > 0 {
    RespondServiceError(c, apierr.Validation(violations, errors.New("validation failed")))
    return
  }

  text, err := h.completionService.Complete(c.Request.Context(), input)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"text": text})
}

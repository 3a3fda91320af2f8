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

type CredentialHandler struct {
  log               *logger.Logger
  credentialService services.CredentialService
}

func NewCredentialHandler(log *logger.Logger, credentialService services.CredentialService) *CredentialHandler {
  return &CredentialHandler{
    log:               log.With("handler", "CredentialHandler"),
    credentialService: credentialService,
  }
}

func (h *CredentialHandler) Issue(c *gin.Context) {
  var input services.IssueCredentialInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_json", errors.New("malformed request body"))
    return
  }
  if violations := validation.Check(input); len(violations) > 0 {
    RespondServiceError(c, apierr.Validation(violations, errors.New("validation failed")))
    return
  }

  credential, err := h.credentialService.IssueCredential(c.Request.Context(), input)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondCreated(c, gin.H{"credential": credential})
}

func (h *CredentialHandler) ListMine(c *gin.Context) {
  params := parsePagination(c)
  credentials, total, err := h.credentialService.ListMyCredentials(c.Request.Context(), params)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondList(c, credentials, total, params)
}

func (h *CredentialHandler) Archive(c *gin.Context) {
  credentialID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  if err := h.credentialService.ArchiveCredential(c.Request.Context(), credentialID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"status": "archived"})
}

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

type EnrollmentHandler struct {
  log               *logger.Logger
  enrollmentService services.EnrollmentService
  progressService   services.ProgressService
}

func NewEnrollmentHandler(log *logger.Logger, enrollmentService services.EnrollmentService, progressService services.ProgressService) *EnrollmentHandler {
  return &EnrollmentHandler{
    log:               log.With("handler", "EnrollmentHandler"),
    enrollmentService: enrollmentService,
    progressService:   progressService,
  }
}

// Enroll is idempotent: a repeat returns the original record with 200 instead
// of a conflict.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  result, err := h.enrollmentService.Enroll(c.Request.Context(), courseID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  if result.AlreadyEnrolled {
    RespondOK(c, gin.H{"enrollment": result.Enrollment, "status": "already_enrolled"})
    return
  }
  RespondCreated(c, gin.H{"enrollment": result.Enrollment})
}

func (h *EnrollmentHandler) List(c *gin.Context) {
  params := parsePagination(c)
  enrollments, total, err := h.enrollmentService.ListEnrollments(c.Request.Context(), params)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondList(c, enrollments, total, params)
}

func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
  moduleID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  var input services.UpdateProgressInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_json", errors.New("malformed request body"))
    return
  }
  if violations := validation.Check(input); len(violations) > 0 {
    RespondServiceError(c, apierr.Validation(violations, errors.New("validation failed")))
    return
  }

  result, err := h.progressService.UpdateModuleProgress(c.Request.Context(), moduleID, input)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{
    "module_progress": result.ModuleProgress,
    "enrollment":      result.Enrollment,
  })
}

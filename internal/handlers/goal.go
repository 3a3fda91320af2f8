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

type GoalHandler struct {
  log         *logger.Logger
  goalService services.GoalService
}

func NewGoalHandler(log *logger.Logger, goalService services.GoalService) *GoalHandler {
  return &GoalHandler{
    log:         log.With("handler", "GoalHandler"),
    goalService: goalService,
  }
}

func (h *GoalHandler) Create(c *gin.Context) {
  var input services.CreateGoalInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_json", errors.New("malformed request body"))
    return
  }
  if violations := validation.Check(input); len(violations) > 0 {
    RespondServiceError(c, apierr.Validation(violations, errors.New("validation failed")))
    return
  }

  goal, err := h.goalService.CreateGoal(c.Request.Context(), input)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondCreated(c, gin.H{"goal": goal})
}

func (h *GoalHandler) Get(c *gin.Context) {
  goalID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  goal, err := h.goalService.GetGoal(c.Request.Context(), goalID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"goal": goal})
}

func (h *GoalHandler) List(c *gin.Context) {
  params := parsePagination(c)
  goals, total, err := h.goalService.ListGoals(c.Request.Context(), c.Query("status"), params)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondList(c, goals, total, params)
}

func (h *GoalHandler) Update(c *gin.Context) {
  goalID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  var input services.UpdateGoalInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_json", errors.New("malformed request body"))
    return
  }
  if violations := validation.Check(input); len(violations) > 0 {
    RespondServiceError(c, apierr.Validation(violations, errors.New("validation failed")))
    return
  }

  goal, err := h.goalService.UpdateGoal(c.Request.Context(), goalID, input)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"goal": goal})
}

func (h *GoalHandler) UpdateStatus(c *gin.Context) {
  goalID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  var input services.UpdateGoalStatusInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_json", errors.New("malformed request body"))
    return
  }
  if violations := validation.Check(input); len(violations) > 0 {
    RespondServiceError(c, apierr.Validation(violations, errors.New("validation failed")))
    return
  }

  goal, err := h.goalService.UpdateGoalStatus(c.Request.Context(), goalID, input)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"goal": goal})
}

func (h *GoalHandler) Archive(c *gin.Context) {
  goalID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  if err := h.goalService.ArchiveGoal(c.Request.Context(), goalID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"status": "archived"})
}

func (h *GoalHandler) AddComment(c *gin.Context) {
  goalID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  var input services.AddCommentInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_json", errors.New("malformed request body"))
    return
  }
  if violations := validation.Check(input); len(violations) > 0 {
    RespondServiceError(c, apierr.Validation(violations, errors.New("validation failed")))
    return
  }

  comment, err := h.goalService.AddComment(c.Request.Context(), goalID, input)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondCreated(c, gin.H{"comment": comment})
}

func (h *GoalHandler) ListComments(c *gin.Context) {
  goalID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  params := parsePagination(c)
  comments, total, err := h.goalService.ListComments(c.Request.Context(), goalID, params)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondList(c, comments, total, params)
}

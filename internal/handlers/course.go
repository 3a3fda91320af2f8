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

type CourseHandler struct {
  log           *logger.Logger
  courseService services.CourseService
  moduleService services.ModuleService
}

func NewCourseHandler(log *logger.Logger, courseService services.CourseService, moduleService services.ModuleService) *CourseHandler {
  return &CourseHandler{
    log:           log.With("handler", "CourseHandler"),
    courseService: courseService,
    moduleService: moduleService,
  }
}

func (h *CourseHandler) Create(c *gin.Context) {
  var input services.CreateCourseInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_json", errors.New("malformed request body"))
    return
  }
  if violations := validation.Check(input); len(violations) > 0 {
    RespondServiceError(c, apierr.Validation(violations, errors.New("validation failed")))
    return
  }

  course, err := h.courseService.CreateCourse(c.Request.Context(), input)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondCreated(c, gin.H{"course": course})
}

func (h *CourseHandler) Get(c *gin.Context) {
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  course, err := h.courseService.GetCourse(c.Request.Context(), courseID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) List(c *gin.Context) {
  params := parsePagination(c)
  courses, total, err := h.courseService.ListCourses(c.Request.Context(), c.Query("subject"), params)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondList(c, courses, total, params)
}

func (h *CourseHandler) Update(c *gin.Context) {
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  var input services.UpdateCourseInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_json", errors.New("malformed request body"))
    return
  }
  if violations := validation.Check(input); len(violations) > 0 {
    RespondServiceError(c, apierr.Validation(violations, errors.New("validation failed")))
    return
  }

  course, err := h.courseService.UpdateCourse(c.Request.Context(), courseID, input)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) Archive(c *gin.Context) {
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  if err := h.courseService.ArchiveCourse(c.Request.Context(), courseID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"status": "archived"})
}

func (h *CourseHandler) AddModule(c *gin.Context) {
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  var input services.CreateModuleInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_json", errors.New("malformed request body"))
    return
  }
  if violations := validation.Check(input); len(violations) > 0 {
    RespondServiceError(c, apierr.Validation(violations, errors.New("validation failed")))
    return
  }

  module, err := h.moduleService.AddModule(c.Request.Context(), courseID, input)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondCreated(c, gin.H{"module": module})
}

func (h *CourseHandler) ListModules(c *gin.Context) {
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  modules, err := h.moduleService.ListModulesForCourse(c.Request.Context(), courseID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"modules": modules})
}

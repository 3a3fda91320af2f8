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

type ContentHandler struct {
  log            *logger.Logger
  contentService services.ContentService
}

func NewContentHandler(log *logger.Logger, contentService services.ContentService) *ContentHandler {
  return &ContentHandler{
    log:            log.With("handler", "ContentHandler"),
    contentService: contentService,
  }
}

func (h *ContentHandler) ListPublished(c *gin.Context) {
  params := parsePagination(c)
  pages, total, err := h.contentService.ListPublished(c.Request.Context(), params)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondList(c, pages, total, params)
}

func (h *ContentHandler) GetBySlug(c *gin.Context) {
  slug := c.Param("slug")
  if slug == "" {
    RespondError(c, http.StatusBadRequest, "invalid_slug", errors.New("missing slug"))
    return
  }
  page, err := h.contentService.GetPublishedBySlug(c.Request.Context(), slug)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"page": page})
}

func (h *ContentHandler) Create(c *gin.Context) {
  var input services.CreatePageInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_json", errors.New("malformed request body"))
    return
  }
  if violations := validation.Check(input); len(violations) > 0 {
    RespondServiceError(c, apierr.Validation(violations, errors.New("validation failed")))
    return
  }

  page, err := h.contentService.CreatePage(c.Request.Context(), input)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondCreated(c, gin.H{"page": page})
}

func (h *ContentHandler) Update(c *gin.Context) {
  pageID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  var input services.UpdatePageInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_json", errors.New("malformed request body"))
    return
  }
  if violations := validation.Check(input); len(violations) > 0 {
    RespondServiceError(c, apierr.Validation(violations, errors.New("validation failed")))
    return
  }

  page, err := h.contentService.UpdatePage(c.Request.Context(), pageID, input)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"page": page})
}

func (h *ContentHandler) Publish(c *gin.Context) {
  pageID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  page, err := h.contentService.PublishPage(c.Request.Context(), pageID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"page": page})
}

func (h *ContentHandler) Archive(c *gin.Context) {
  pageID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  if err := h.contentService.ArchivePage(c.Request.Context(), pageID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"status": "archived"})
}

func (h *ContentHandler) ListAll(c *gin.Context) {
  params := parsePagination(c)
  pages, total, err := h.contentService.ListAll(c.Request.Context(), c.Query("status"), params)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondList(c, pages, total, params)
}

func (h *ContentHandler) History(c *gin.Context) {
  pageID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  changes, err := h.contentService.PageHistory(c.Request.Context(), pageID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"changes": changes})
}

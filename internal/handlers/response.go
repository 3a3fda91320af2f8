package handlers

import (
  "errors"
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/edpsychconnect/backend/internal/apierr"
  "github.com/edpsychconnect/backend/internal/repos"
  "github.com/edpsychconnect/backend/internal/validation"
)

type APIError struct {
  Message string                      `json:"message"`
  Code    string                      `json:"code,omitempty"`
  Details []validation.FieldViolation `json:"details,omitempty"`
}

type ErrorEnvelope struct {
  Error APIError `json:"error"`
}

type Pagination struct {
  Total      int64 `json:"total"`
  Page       int   `json:"page"`
  Limit      int   `json:"limit"`
  TotalPages int   `json:"totalPages"`
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
  c.JSON(http.StatusCreated, payload)
}

func RespondError(c *gin.Context, status int, code string, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

// RespondServiceError maps the typed failure a service returned onto the wire.
// Anything that is not an *apierr.Error is an internal fault and must not leak
// its message to the client.
func RespondServiceError(c *gin.Context, err error) {
  var ae *apierr.Error
  if errors.As(err, &ae) {
    payload := APIError{
      Message: ae.Error(),
      Code:    ae.Code,
    }
    if violations, ok := ae.Details.([]validation.FieldViolation); ok {
      payload.Details = violations
    }
    c.JSON(ae.Status, ErrorEnvelope{Error: payload})
    return
  }
  c.JSON(http.StatusInternalServerError, ErrorEnvelope{
    Error: APIError{Message: "internal error", Code: "internal"},
  })
}

func RespondList(c *gin.Context, items any, total int64, params repos.ListParams) {
  p := params.Normalized()
  totalPages := 0
  if total > 0 {
    totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
  }
  c.JSON(http.StatusOK, gin.H{
    "items": items,
    "pagination": Pagination{
      Total:      total,
      Page:       p.Page,
      Limit:      p.Limit,
      TotalPages: totalPages,
    },
  })
}

// parsePagination reads page/limit from the query string. Out-of-range values
// fall back to the defaults instead of erroring.
func parsePagination(c *gin.Context) repos.ListParams {
  params := repos.ListParams{}
  if v := c.Query("page"); v != "" {
    if parsed, err := strconv.Atoi(v); err == nil {
      params.Page = parsed
    }
  }
  if v := c.Query("limit"); v != "" {
    if parsed, err := strconv.Atoi(v); err == nil {
      params.Limit = parsed
    }
  }
  return params.Normalized()
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
  id, err := uuid.Parse(c.Param(name))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid id"))
    return uuid.Nil, false
  }
  return id, true
}

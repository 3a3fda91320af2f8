package handlers

import (
  "encoding/json"
  "errors"
  "fmt"
  "net/http"
  "net/http/httptest"
  "testing"

  "github.com/gin-gonic/gin"

  "github.com/edpsychconnect/backend/internal/apierr"
  "github.com/edpsychconnect/backend/internal/repos"
  "github.com/edpsychconnect/backend/internal/validation"
)

func newTestContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
  t.Helper()
  gin.SetMode(gin.TestMode)
  w := httptest.NewRecorder()
  c, _ := gin.CreateTestContext(w)
  c.Request = httptest.NewRequest(http.MethodGet, target, nil)
  return c, w
}

func TestRespondServiceErrorMapsTypedFailure(t *testing.T) {
  c, w := newTestContext(t, "/")
  RespondServiceError(c, apierr.NotFound("course_not_found", errors.New("course not found")))

  if w.Code != http.StatusNotFound {
    t.Fatalf("expected 404, got %d", w.Code)
  }
  var body ErrorEnvelope
  if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
    t.Fatalf("decode body: %v", err)
  }
  if body.Error.Code != "course_not_found" {
    t.Fatalf("expected code course_not_found, got %q", body.Error.Code)
  }
}

func TestRespondServiceErrorHidesInternalCause(t *testing.T) {
  c, w := newTestContext(t, "/")
  RespondServiceError(c, errors.New("pq: connection refused on 10.0.0.5"))

  if w.Code != http.StatusInternalServerError {
    t.Fatalf("expected 500, got %d", w.Code)
  }
  var body ErrorEnvelope
  if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
    t.Fatalf("decode body: %v", err)
  }
  if body.Error.Message != "internal error" {
    t.Fatalf("internal cause leaked: %q", body.Error.Message)
  }
}

func TestRespondServiceErrorUnwrapsWrappedError(t *testing.T) {
  c, w := newTestContext(t, "/")
  inner := apierr.Forbidden(errors.New("not the owner"))
  RespondServiceError(c, fmt.Errorf("update course: %w", inner))

  if w.Code != http.StatusForbidden {
    t.Fatalf("expected 403 through wrapping, got %d", w.Code)
  }
}

func TestRespondServiceErrorAttachesViolations(t *testing.T) {
  c, w := newTestContext(t, "/")
  violations := []validation.FieldViolation{
    {Field: "title", Rule: "required", Message: "is required"},
  }
  RespondServiceError(c, apierr.Validation(violations, errors.New("validation failed")))

  if w.Code != http.StatusBadRequest {
    t.Fatalf("expected 400, got %d", w.Code)
  }
  var body ErrorEnvelope
  if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
    t.Fatalf("decode body: %v", err)
  }
  if len(body.Error.Details) != 1 || body.Error.Details[0].Field != "title" {
    t.Fatalf("violations not attached: %+v", body.Error.Details)
  }
}

func TestRespondListPaginationMath(t *testing.T) {
  c, w := newTestContext(t, "/")
  RespondList(c, []string{"a"}, 101, repos.ListParams{Page: 2, Limit: 50})

  var body struct {
    Items      []string   `json:"items"`
    Pagination Pagination `json:"pagination"`
  }
  if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
    t.Fatalf("decode body: %v", err)
  }
  if body.Pagination.TotalPages != 3 {
    t.Fatalf("expected 3 total pages for 101/50, got %d", body.Pagination.TotalPages)
  }
  if body.Pagination.Page != 2 || body.Pagination.Limit != 50 {
    t.Fatalf("pagination echo wrong: %+v", body.Pagination)
  }
}

func TestParsePaginationDefaultsAndClamping(t *testing.T) {
  c, _ := newTestContext(t, "/courses")
  params := parsePagination(c)
  if params.Page != repos.DefaultPage || params.Limit != repos.DefaultLimit {
    t.Fatalf("expected defaults, got %+v", params)
  }

  c, _ = newTestContext(t, "/courses?page=-3&limit=100000")
  params = parsePagination(c)
  if params.Page != repos.DefaultPage {
    t.Fatalf("negative page not normalized: %+v", params)
  }
  if params.Limit != repos.MaxLimit {
    t.Fatalf("oversized limit not clamped: %+v", params)
  }

  c, _ = newTestContext(t, "/courses?page=abc&limit=xyz")
  params = parsePagination(c)
  if params.Page != repos.DefaultPage || params.Limit != repos.DefaultLimit {
    t.Fatalf("garbage query not defaulted: %+v", params)
  }
}

package middleware

import (
  "context"
  "errors"
  "net/http"
  "net/http/httptest"
  "testing"
  "time"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/requestdata"
  "github.com/edpsychconnect/backend/internal/types"
)

// stubAuthService accepts exactly one token and injects a fixed identity.
type stubAuthService struct {
  validToken string
  userID     uuid.UUID
  role       string
}

func (s *stubAuthService) RegisterUser(ctx context.Context, user *types.User) error { return nil }

func (s *stubAuthService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
  return "", "", nil
}

func (s *stubAuthService) RefreshUser(ctx context.Context) (string, string, error) {
  return "", "", nil
}

func (s *stubAuthService) LogoutUser(ctx context.Context) error { return nil }

func (s *stubAuthService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString != s.validToken {
    return ctx, errors.New("invalid token")
  }
  return requestdata.WithRequestData(ctx, &requestdata.RequestData{
    TokenString: tokenString,
    UserID:      s.userID,
    Role:        s.role,
  }), nil
}

func (s *stubAuthService) GetAccessTTL() time.Duration { return time.Hour }

func newAuthTestRouter(t *testing.T, role string) (*gin.Engine, string) {
  t.Helper()
  gin.SetMode(gin.TestMode)
  log, err := logger.New("development")
  if err != nil {
    t.Fatalf("init logger: %v", err)
  }
  token := "valid-token"
  am := NewAuthMiddleware(log, &stubAuthService{
    validToken: token,
    userID:     uuid.New(),
    role:       role,
  })

  router := gin.New()
  protected := router.Group("/", am.RequireAuth())
  protected.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })
  protected.GET("/admin", am.RequireRole(types.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
  return router, token
}

func doRequest(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, path, nil)
  if authHeader != "" {
    req.Header.Set("Authorization", authHeader)
  }
  router.ServeHTTP(w, req)
  return w
}

func TestRequireAuthMissingHeaderIs401(t *testing.T) {
  router, _ := newAuthTestRouter(t, types.RoleStudent)
  if w := doRequest(router, "/me", ""); w.Code != http.StatusUnauthorized {
    t.Fatalf("expected 401, got %d", w.Code)
  }
}

func TestRequireAuthBadTokenIs401(t *testing.T) {
  router, _ := newAuthTestRouter(t, types.RoleStudent)
  if w := doRequest(router, "/me", "Bearer wrong-token"); w.Code != http.StatusUnauthorized {
    t.Fatalf("expected 401, got %d", w.Code)
  }
}

func TestRequireAuthValidTokenPasses(t *testing.T) {
  router, token := newAuthTestRouter(t, types.RoleStudent)
  if w := doRequest(router, "/me", "Bearer "+token); w.Code != http.StatusOK {
    t.Fatalf("expected 200, got %d", w.Code)
  }
}

func TestRequireRoleRejectsWrongRole(t *testing.T) {
  router, token := newAuthTestRouter(t, types.RoleStudent)
  if w := doRequest(router, "/admin", "Bearer "+token); w.Code != http.StatusForbidden {
    t.Fatalf("expected 403 for student on admin route, got %d", w.Code)
  }
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
  router, token := newAuthTestRouter(t, types.RoleAdmin)
  if w := doRequest(router, "/admin", "Bearer "+token); w.Code != http.StatusOK {
    t.Fatalf("expected 200 for admin, got %d", w.Code)
  }
}

func TestNonBearerSchemeIsIgnored(t *testing.T) {
  router, token := newAuthTestRouter(t, types.RoleStudent)
  if w := doRequest(router, "/me", "Basic "+token); w.Code != http.StatusUnauthorized {
    t.Fatalf("expected 401 for non-bearer scheme, got %d", w.Code)
  }
}

package middleware

import (
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/requestdata"
  "github.com/edpsychconnect/backend/internal/services"
)

type AuthMiddleware struct {
  log         *logger.Logger
  authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
  return &AuthMiddleware{
    log:         log.With("middleware", "AuthMiddleware"),
    authService: authService,
  }
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
  return func(c *gin.Context) {
    tokenString := extractBearerToken(c)
    if tokenString == "" {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
        "error": gin.H{"message": "missing or invalid token", "code": "unauthenticated"},
      })
      return
    }
    ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
    if err != nil {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
        "error": gin.H{"message": "invalid or expired token", "code": "unauthenticated"},
      })
      return
    }
    rd := requestdata.GetRequestData(ctx)
    if rd == nil || rd.UserID == uuid.Nil {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
        "error": gin.H{"message": "invalid token subject", "code": "unauthenticated"},
      })
      return
    }
    c.Request = c.Request.WithContext(ctx)
    c.Next()
  }
}

// RequireRole assumes RequireAuth already ran and the identity is in context.
func (am *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
  return func(c *gin.Context) {
    rd := requestdata.GetRequestData(c.Request.Context())
    if rd == nil {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
        "error": gin.H{"message": "missing identity", "code": "unauthenticated"},
      })
      return
    }
    for _, role := range roles {
      if rd.Role == role {
        c.Next()
        return
      }
    }
    c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
      "error": gin.H{"message": "insufficient role", "code": "forbidden"},
    })
  }
}

func extractBearerToken(c *gin.Context) string {
  authHeader := c.GetHeader("Authorization")
  if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
    return authHeader[7:]
  }
  return ""
}

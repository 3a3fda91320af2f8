package app

import (
	"github.com/gin-gonic/gin"

	"github.com/edpsychconnect/backend/internal/server"
)

func wireRouter(cfg Config, h Handlers, m Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthMiddleware:     m.Auth,
		AuthHandler:        h.Auth,
		UserHandler:        h.User,
		CourseHandler:      h.Course,
		EnrollmentHandler:  h.Enrollment,
		GoalHandler:        h.Goal,
		ContentHandler:     h.Content,
		CredentialHandler:  h.Credential,
		BillingHandler:     h.Billing,
		CompletionHandler:  h.Completion,
		HealthcheckHandler: h.Healthcheck,
		AllowOrigins:       cfg.AllowOrigins,
	})
}

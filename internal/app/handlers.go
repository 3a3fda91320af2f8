package app

import (
	"gorm.io/gorm"

	"github.com/edpsychconnect/backend/internal/handlers"
	"github.com/edpsychconnect/backend/internal/logger"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Course      *handlers.CourseHandler
	Enrollment  *handlers.EnrollmentHandler
	Goal        *handlers.GoalHandler
	Content     *handlers.ContentHandler
	Credential  *handlers.CredentialHandler
	Billing     *handlers.BillingHandler
	Completion  *handlers.CompletionHandler
	Healthcheck *handlers.HealthcheckHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, s Services) Handlers {
	return Handlers{
		Auth:        handlers.NewAuthHandler(log, s.Auth),
		User:        handlers.NewUserHandler(log, s.User),
		Course:      handlers.NewCourseHandler(log, s.Course, s.Module),
		Enrollment:  handlers.NewEnrollmentHandler(log, s.Enrollment, s.Progress),
		Goal:        handlers.NewGoalHandler(log, s.Goal),
		Content:     handlers.NewContentHandler(log, s.Content),
		Credential:  handlers.NewCredentialHandler(log, s.Credential),
		Billing:     handlers.NewBillingHandler(log, s.Billing),
		Completion:  handlers.NewCompletionHandler(log, s.Completion),
		Healthcheck: handlers.NewHealthcheckHandler(log, db),
	}
}

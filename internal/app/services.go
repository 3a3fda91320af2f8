package app

import (
	"gorm.io/gorm"

	"github.com/edpsychconnect/backend/internal/logger"
	"github.com/edpsychconnect/backend/internal/services"
)

type Services struct {
	Bus        services.EventBus
	Auth       services.AuthService
	User       services.UserService
	Course     services.CourseService
	Module     services.ModuleService
	Enrollment services.EnrollmentService
	Progress   services.ProgressService
	Goal       services.GoalService
	Content    services.ContentService
	Credential services.CredentialService
	Billing    services.BillingService
	Completion services.CompletionService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) Services {
	// The event bus is optional infrastructure. A down redis degrades audit
	// fan-out, never the request path.
	bus, err := services.NewRedisEventBus(log)
	if err != nil {
		log.Warn("Event bus unavailable, continuing without it", "error", err)
		bus = nil
	}

	// Same story for the completion backend: missing credentials disable the
	// endpoint, they do not stop the server.
	client, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Warn("Completion client unavailable, continuing without it", "error", err)
		client = nil
	}

	provider := services.NewStripeProvider(cfg.Stripe, log)

	return Services{
		Bus:        bus,
		Auth:       services.NewAuthService(db, log, r.User, r.UserToken, r.Subscription, bus, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		User:       services.NewUserService(db, log, r.User),
		Course:     services.NewCourseService(db, log, r.Course, bus),
		Module:     services.NewModuleService(db, log, r.Course, r.CourseModule, bus),
		Enrollment: services.NewEnrollmentService(db, log, r.Course, r.Enrollment, bus),
		Progress:   services.NewProgressService(db, log, r.CourseModule, r.Enrollment, r.ModuleProgress, bus),
		Goal:       services.NewGoalService(db, log, r.Goal, r.GoalComment, r.Subscription, bus),
		Content:    services.NewContentService(db, log, r.ContentPage, r.ContentChange, bus),
		Credential: services.NewCredentialService(db, log, r.Credential, r.User, bus),
		Billing:    services.NewBillingService(db, log, provider, r.Subscription, r.User, bus),
		Completion: services.NewCompletionService(log, client),
	}
}

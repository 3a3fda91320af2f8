package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/edpsychconnect/backend/internal/handlers"
  "github.com/edpsychconnect/backend/internal/middleware"
  "github.com/edpsychconnect/backend/internal/types"
)

type RouterConfig struct {
  AuthMiddleware     *middleware.AuthMiddleware
  AuthHandler        *handlers.AuthHandler
  UserHandler        *handlers.UserHandler
  CourseHandler      *handlers.CourseHandler
  EnrollmentHandler  *handlers.EnrollmentHandler
  GoalHandler        *handlers.GoalHandler
  ContentHandler     *handlers.ContentHandler
  CredentialHandler  *handlers.CredentialHandler
  BillingHandler     *handlers.BillingHandler
  CompletionHandler  *handlers.CompletionHandler
  HealthcheckHandler *handlers.HealthcheckHandler
  AllowOrigins       []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  origins := cfg.AllowOrigins
  if len(origins) == 0 {
    origins = []string{"http://localhost:3000"}
  }
  router.Use(cors.New(cors.Config{
    AllowOrigins:     origins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "Stripe-Signature"},
    AllowCredentials: true,
  }))

  // Public
  router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)
  router.POST("/register", cfg.AuthHandler.Register)
  router.POST("/login", cfg.AuthHandler.Login)
  router.POST("/billing/webhook", cfg.BillingHandler.Webhook)
  router.GET("/content", cfg.ContentHandler.ListPublished)
  router.GET("/content/:slug", cfg.ContentHandler.GetBySlug)

  // Protected
  protected := router.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Auth
  protected.POST("/refresh", cfg.AuthHandler.Refresh)
  protected.POST("/logout", cfg.AuthHandler.Logout)
  // User
  protected.GET("/user", cfg.UserHandler.GetMe)
  // Courses
  protected.GET("/courses", cfg.CourseHandler.List)
  protected.GET("/courses/:id", cfg.CourseHandler.Get)
  protected.POST("/courses", cfg.AuthMiddleware.RequireRole(types.RoleTeacher, types.RoleAdmin), cfg.CourseHandler.Create)
  protected.PUT("/courses/:id", cfg.AuthMiddleware.RequireRole(types.RoleTeacher, types.RoleAdmin), cfg.CourseHandler.Update)
  protected.DELETE("/courses/:id", cfg.AuthMiddleware.RequireRole(types.RoleAdmin), cfg.CourseHandler.Archive)
  protected.GET("/courses/:id/modules", cfg.CourseHandler.ListModules)
  protected.POST("/courses/:id/modules", cfg.AuthMiddleware.RequireRole(types.RoleTeacher, types.RoleAdmin), cfg.CourseHandler.AddModule)
  // Enrollment and progress
  protected.POST("/courses/:id/enroll", cfg.EnrollmentHandler.Enroll)
  protected.GET("/enrollments", cfg.EnrollmentHandler.List)
  protected.PUT("/modules/:id/progress", cfg.EnrollmentHandler.UpdateProgress)
  // Goals
  protected.POST("/goals", cfg.GoalHandler.Create)
  protected.GET("/goals", cfg.GoalHandler.List)
  protected.GET("/goals/:id", cfg.GoalHandler.Get)
  protected.PUT("/goals/:id", cfg.GoalHandler.Update)
  protected.PUT("/goals/:id/status", cfg.GoalHandler.UpdateStatus)
  protected.DELETE("/goals/:id", cfg.GoalHandler.Archive)
  protected.POST("/goals/:id/comments", cfg.GoalHandler.AddComment)
  protected.GET("/goals/:id/comments", cfg.GoalHandler.ListComments)
  // Credentials
  protected.POST("/credentials", cfg.AuthMiddleware.RequireRole(types.RoleTeacher, types.RoleAdmin), cfg.CredentialHandler.Issue)
  protected.GET("/credentials", cfg.CredentialHandler.ListMine)
  protected.DELETE("/credentials/:id", cfg.AuthMiddleware.RequireRole(types.RoleAdmin), cfg.CredentialHandler.Archive)
  // Billing
  protected.GET("/billing/subscription", cfg.BillingHandler.GetSubscription)
  protected.POST("/billing/checkout", cfg.BillingHandler.Checkout)
  protected.POST("/billing/portal", cfg.BillingHandler.Portal)
  // Completions
  protected.POST("/completions", cfg.CompletionHandler.Complete)

  // Content admin
  admin := protected.Group("/admin/content")
  admin.Use(cfg.AuthMiddleware.RequireRole(types.RoleAdmin))
  admin.POST("", cfg.ContentHandler.Create)
  admin.GET("", cfg.ContentHandler.ListAll)
  admin.PUT("/:id", cfg.ContentHandler.Update)
  admin.POST("/:id/publish", cfg.ContentHandler.Publish)
  admin.DELETE("/:id", cfg.ContentHandler.Archive)
  admin.GET("/:id/history", cfg.ContentHandler.History)

  return router
}

package services

import (
  "context"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/edpsychconnect/backend/internal/apierr"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/repos"
  "github.com/edpsychconnect/backend/internal/requestdata"
  "github.com/edpsychconnect/backend/internal/types"
)

type CreateModuleInput struct {
  Index       int    `json:"index" validate:"gte=0"`
  Title       string `json:"title" validate:"required,min=3,max=200"`
  Description string `json:"description" validate:"max=2000"`
  Body        string `json:"body"`
}

type ModuleService interface {
  AddModule(ctx context.Context, courseID uuid.UUID, input CreateModuleInput) (*types.CourseModule, error)
  ListModulesForCourse(ctx context.Context, courseID uuid.UUID) ([]*types.CourseModule, error)
}

type moduleService struct {
  db         *gorm.DB
  log        *logger.Logger
  courseRepo repos.CourseRepo
  moduleRepo repos.CourseModuleRepo
  bus        EventBus
}

func NewModuleService(
  db *gorm.DB,
  baseLog *logger.Logger,
  courseRepo repos.CourseRepo,
  moduleRepo repos.CourseModuleRepo,
  bus EventBus,
) ModuleService {
  return &moduleService{
    db:         db,
    log:        baseLog.With("service", "ModuleService"),
    courseRepo: courseRepo,
    moduleRepo: moduleRepo,
    bus:        bus,
  }
}

func (s *moduleService) AddModule(ctx context.Context, courseID uuid.UUID, input CreateModuleInput) (*types.CourseModule, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }

  courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
  if err != nil {
    s.log.Error("AddModule course lookup failed", "error", err, "course_id", courseID)
    return nil, apierr.Upstream(fmt.Errorf("load course: %w", err))
  }
  if len(courses) == 0 {
    return nil, apierr.NotFound("course_not_found", fmt.Errorf("course not found"))
  }
  course := courses[0]
  if course.OwnerID != rd.UserID && !rd.IsAdmin() {
    return nil, apierr.Forbidden(fmt.Errorf("not the course owner"))
  }

  now := time.Now()
  module := &types.CourseModule{
    ID:          uuid.New(),
    CourseID:    course.ID,
    Index:       input.Index,
    Title:       input.Title,
    Description: input.Description,
    Body:        input.Body,
    CreatedAt:   now,
    UpdatedAt:   now,
  }
  if _, err := s.moduleRepo.Create(ctx, nil, []*types.CourseModule{module}); err != nil {
    s.log.Error("AddModule failed", "error", err, "course_id", courseID)
    return nil, apierr.Upstream(fmt.Errorf("create module: %w", err))
  }

  publishEvent(ctx, s.bus, "course_module", "create", module.ID, rd.UserID)
  return module, nil
}

func (s *moduleService) ListModulesForCourse(ctx context.Context, courseID uuid.UUID) ([]*types.CourseModule, error) {
  courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
  if err != nil {
    s.log.Error("ListModulesForCourse course lookup failed", "error", err, "course_id", courseID)
    return nil, apierr.Upstream(fmt.Errorf("load course: %w", err))
  }
  if len(courses) == 0 {
    return nil, apierr.NotFound("course_not_found", fmt.Errorf("course not found"))
  }

  modules, err := s.moduleRepo.GetByCourseID(ctx, nil, courseID)
  if err != nil {
    s.log.Error("ListModulesForCourse failed", "error", err, "course_id", courseID)
    return nil, apierr.Upstream(fmt.Errorf("list modules: %w", err))
  }
  return modules, nil
}

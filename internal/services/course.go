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

type CreateCourseInput struct {
  Title       string `json:"title" validate:"required,min=3,max=200"`
  Description string `json:"description" validate:"max=2000"`
  Subject     string `json:"subject" validate:"max=100"`
  Level       string `json:"level" validate:"omitempty,oneof=primary secondary further higher"`
}

type UpdateCourseInput struct {
  Title       *string `json:"title" validate:"omitempty,min=3,max=200"`
  Description *string `json:"description" validate:"omitempty,max=2000"`
  Subject     *string `json:"subject" validate:"omitempty,max=100"`
  Level       *string `json:"level" validate:"omitempty,oneof=primary secondary further higher"`
  Published   *bool   `json:"published"`
}

type CourseService interface {
  CreateCourse(ctx context.Context, input CreateCourseInput) (*types.Course, error)
  GetCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
  ListCourses(ctx context.Context, subject string, params repos.ListParams) ([]*types.Course, int64, error)
  UpdateCourse(ctx context.Context, courseID uuid.UUID, input UpdateCourseInput) (*types.Course, error)
  ArchiveCourse(ctx context.Context, courseID uuid.UUID) error
}

type courseService struct {
  db         *gorm.DB
  log        *logger.Logger
  courseRepo repos.CourseRepo
  bus        EventBus
}

func NewCourseService(
  db *gorm.DB,
  baseLog *logger.Logger,
  courseRepo repos.CourseRepo,
  bus EventBus,
) CourseService {
  return &courseService{
    db:         db,
    log:        baseLog.With("service", "CourseService"),
    courseRepo: courseRepo,
    bus:        bus,
  }
}

func (cs *courseService) CreateCourse(ctx context.Context, input CreateCourseInput) (*types.Course, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }
  if rd.Role != types.RoleTeacher && rd.Role != types.RoleAdmin {
    return nil, apierr.Forbidden(fmt.Errorf("only teachers may create courses"))
  }

  now := time.Now()
  course := &types.Course{
    ID:          uuid.New(),
    OwnerID:     rd.UserID,
    Title:       input.Title,
    Description: input.Description,
    Subject:     input.Subject,
    Level:       input.Level,
    Status:      types.CourseStatusActive,
    CreatedAt:   now,
    UpdatedAt:   now,
  }
  if _, err := cs.courseRepo.Create(ctx, nil, []*types.Course{course}); err != nil {
    cs.log.Error("CreateCourse failed", "error", err)
    return nil, apierr.Upstream(fmt.Errorf("create course: %w", err))
  }

  publishEvent(ctx, cs.bus, "course", "create", course.ID, rd.UserID)
  return course, nil
}

func (cs *courseService) GetCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
  courses, err := cs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
  if err != nil {
    cs.log.Error("GetCourse failed", "error", err, "course_id", courseID)
    return nil, apierr.Upstream(fmt.Errorf("load course: %w", err))
  }
  if len(courses) == 0 {
    return nil, apierr.NotFound("course_not_found", fmt.Errorf("course not found"))
  }
  return courses[0], nil
}

func (cs *courseService) ListCourses(ctx context.Context, subject string, params repos.ListParams) ([]*types.Course, int64, error) {
  filter := repos.CourseFilter{Subject: subject, Status: types.CourseStatusActive}
  courses, total, err := cs.courseRepo.List(ctx, nil, filter, params)
  if err != nil {
    cs.log.Error("ListCourses failed", "error", err)
    return nil, 0, apierr.Upstream(fmt.Errorf("list courses: %w", err))
  }
  return courses, total, nil
}

func (cs *courseService) UpdateCourse(ctx context.Context, courseID uuid.UUID, input UpdateCourseInput) (*types.Course, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }

  course, err := cs.GetCourse(ctx, courseID)
  if err != nil {
    return nil, err
  }
  if course.OwnerID != rd.UserID && !rd.IsAdmin() {
    return nil, apierr.Forbidden(fmt.Errorf("not the course owner"))
  }

  if input.Title != nil {
    course.Title = *input.Title
  }
  if input.Description != nil {
    course.Description = *input.Description
  }
  if input.Subject != nil {
    course.Subject = *input.Subject
  }
  if input.Level != nil {
    course.Level = *input.Level
  }
  if input.Published != nil {
    course.Published = *input.Published
  }
  course.UpdatedAt = time.Now()

  if err := cs.courseRepo.Update(ctx, nil, course); err != nil {
    cs.log.Error("UpdateCourse failed", "error", err, "course_id", courseID)
    return nil, apierr.Upstream(fmt.Errorf("update course: %w", err))
  }

  publishEvent(ctx, cs.bus, "course", "update", course.ID, rd.UserID)
  return course, nil
}

// ArchiveCourse is the soft delete: admin only, flips status and keeps the
// row for enrollment history.
func (cs *courseService) ArchiveCourse(ctx context.Context, courseID uuid.UUID) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }
  if !rd.IsAdmin() {
    return apierr.Forbidden(fmt.Errorf("only admins may archive courses"))
  }

  course, err := cs.GetCourse(ctx, courseID)
  if err != nil {
    return err
  }
  course.Status = types.CourseStatusArchived
  course.UpdatedAt = time.Now()
  if err := cs.courseRepo.Update(ctx, nil, course); err != nil {
    cs.log.Error("ArchiveCourse failed", "error", err, "course_id", courseID)
    return apierr.Upstream(fmt.Errorf("archive course: %w", err))
  }

  publishEvent(ctx, cs.bus, "course", "archive", course.ID, rd.UserID)
  return nil
}

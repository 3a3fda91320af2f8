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

// EnrollResult reports whether the enrollment already existed so the handler
// can echo the original record instead of treating the repeat as an error.
type EnrollResult struct {
  Enrollment      *types.Enrollment
  AlreadyEnrolled bool
}

type EnrollmentService interface {
  Enroll(ctx context.Context, courseID uuid.UUID) (*EnrollResult, error)
  ListEnrollments(ctx context.Context, params repos.ListParams) ([]*types.Enrollment, int64, error)
}

type enrollmentService struct {
  db             *gorm.DB
  log            *logger.Logger
  courseRepo     repos.CourseRepo
  enrollmentRepo repos.EnrollmentRepo
  bus            EventBus
}

func NewEnrollmentService(
  db *gorm.DB,
  baseLog *logger.Logger,
  courseRepo repos.CourseRepo,
  enrollmentRepo repos.EnrollmentRepo,
  bus EventBus,
) EnrollmentService {
  return &enrollmentService{
    db:             db,
    log:            baseLog.With("service", "EnrollmentService"),
    courseRepo:     courseRepo,
    enrollmentRepo: enrollmentRepo,
    bus:            bus,
  }
}

// Enroll is create-if-not-exists on the (user, course) pair. Both the
// existence check and the insert run in one transaction so a concurrent
// duplicate is caught by the unique index rather than racing past the check.
func (s *enrollmentService) Enroll(ctx context.Context, courseID uuid.UUID) (*EnrollResult, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }

  var result EnrollResult
  txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    courses, err := s.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{courseID})
    if err != nil {
      return fmt.Errorf("load course: %w", err)
    }
    if len(courses) == 0 {
      return apierr.NotFound("course_not_found", fmt.Errorf("course not found"))
    }
    if courses[0].Status == types.CourseStatusArchived {
      return apierr.NotFound("course_not_found", fmt.Errorf("course archived"))
    }

    existing, err := s.enrollmentRepo.GetByUserAndCourse(ctx, tx, rd.UserID, courseID)
    if err != nil {
      return fmt.Errorf("check existing enrollment: %w", err)
    }
    if existing != nil {
      result = EnrollResult{Enrollment: existing, AlreadyEnrolled: true}
      return nil
    }

    now := time.Now()
    enrollment := &types.Enrollment{
      ID:        uuid.New(),
      UserID:    rd.UserID,
      CourseID:  courseID,
      Status:    types.EnrollmentStatusNotStarted,
      Progress:  0,
      CreatedAt: now,
      UpdatedAt: now,
    }
    if _, err := s.enrollmentRepo.Create(ctx, tx, []*types.Enrollment{enrollment}); err != nil {
      return fmt.Errorf("create enrollment: %w", err)
    }
    result = EnrollResult{Enrollment: enrollment}
    return nil
  })
  if txErr != nil {
    if ae, ok := txErr.(*apierr.Error); ok {
      return nil, ae
    }
    s.log.Error("Enroll transaction failed", "error", txErr, "course_id", courseID)
    return nil, apierr.Upstream(txErr)
  }

  if !result.AlreadyEnrolled {
    publishEvent(ctx, s.bus, "enrollment", "create", result.Enrollment.ID, rd.UserID)
  }
  return &result, nil
}

func (s *enrollmentService) ListEnrollments(ctx context.Context, params repos.ListParams) ([]*types.Enrollment, int64, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, 0, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }
  enrollments, total, err := s.enrollmentRepo.ListByUser(ctx, nil, rd.UserID, params)
  if err != nil {
    s.log.Error("ListEnrollments failed", "error", err, "user_id", rd.UserID)
    return nil, 0, apierr.Upstream(fmt.Errorf("list enrollments: %w", err))
  }
  return enrollments, total, nil
}

package services

import (
  "context"
  "fmt"
  "math"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/edpsychconnect/backend/internal/apierr"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/repos"
  "github.com/edpsychconnect/backend/internal/requestdata"
  "github.com/edpsychconnect/backend/internal/types"
)

type UpdateProgressInput struct {
  Progress int `json:"progress" validate:"gte=0,lte=100"`
}

// ProgressResult carries the module row and the re-aggregated enrollment so
// the handler can return both in one response.
type ProgressResult struct {
  ModuleProgress *types.ModuleProgress
  Enrollment     *types.Enrollment
}

type ProgressService interface {
  UpdateModuleProgress(ctx context.Context, moduleID uuid.UUID, input UpdateProgressInput) (*ProgressResult, error)
}

type progressService struct {
  db             *gorm.DB
  log            *logger.Logger
  moduleRepo     repos.CourseModuleRepo
  enrollmentRepo repos.EnrollmentRepo
  progressRepo   repos.ModuleProgressRepo
  bus            EventBus
}

func NewProgressService(
  db *gorm.DB,
  baseLog *logger.Logger,
  moduleRepo repos.CourseModuleRepo,
  enrollmentRepo repos.EnrollmentRepo,
  progressRepo repos.ModuleProgressRepo,
  bus EventBus,
) ProgressService {
  return &progressService{
    db:             db,
    log:            baseLog.With("service", "ProgressService"),
    moduleRepo:     moduleRepo,
    enrollmentRepo: enrollmentRepo,
    progressRepo:   progressRepo,
    bus:            bus,
  }
}

// UpdateModuleProgress writes the per-module row and recomputes the parent
// enrollment aggregate in the same transaction. The enrollment progress is
// always round(mean(progress)) over every module in the course, counting
// modules without a row as 0 — there is never a commit where children and
// aggregate disagree.
func (s *progressService) UpdateModuleProgress(ctx context.Context, moduleID uuid.UUID, input UpdateProgressInput) (*ProgressResult, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }

  var result ProgressResult
  txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    modules, err := s.moduleRepo.GetByIDs(ctx, tx, []uuid.UUID{moduleID})
    if err != nil {
      return fmt.Errorf("load module: %w", err)
    }
    if len(modules) == 0 {
      return apierr.NotFound("module_not_found", fmt.Errorf("module not found"))
    }
    module := modules[0]

    enrollment, err := s.enrollmentRepo.GetByUserAndCourse(ctx, tx, rd.UserID, module.CourseID)
    if err != nil {
      return fmt.Errorf("load enrollment: %w", err)
    }
    if enrollment == nil {
      return apierr.NotFound("enrollment_not_found", fmt.Errorf("not enrolled in course"))
    }

    now := time.Now()
    row, err := s.progressRepo.GetByUserAndModule(ctx, tx, rd.UserID, moduleID)
    if err != nil {
      return fmt.Errorf("load module progress: %w", err)
    }
    if row == nil {
      row = &types.ModuleProgress{
        ID:        uuid.New(),
        UserID:    rd.UserID,
        ModuleID:  moduleID,
        CourseID:  module.CourseID,
        Progress:  input.Progress,
        Completed: input.Progress >= 100,
        CreatedAt: now,
        UpdatedAt: now,
      }
      if _, err := s.progressRepo.Create(ctx, tx, []*types.ModuleProgress{row}); err != nil {
        return fmt.Errorf("create module progress: %w", err)
      }
    } else {
      row.Progress = input.Progress
      row.Completed = input.Progress >= 100
      row.UpdatedAt = now
      if err := s.progressRepo.Update(ctx, tx, row); err != nil {
        return fmt.Errorf("update module progress: %w", err)
      }
    }

    allModules, err := s.moduleRepo.GetByCourseID(ctx, tx, module.CourseID)
    if err != nil {
      return fmt.Errorf("load course modules: %w", err)
    }
    progressRows, err := s.progressRepo.GetByUserAndCourse(ctx, tx, rd.UserID, module.CourseID)
    if err != nil {
      return fmt.Errorf("load sibling progress: %w", err)
    }

    enrollment.Progress = aggregateProgress(allModules, progressRows)
    switch {
    case enrollment.Progress >= 100:
      enrollment.Status = types.EnrollmentStatusCompleted
    case enrollment.Progress > 0:
      enrollment.Status = types.EnrollmentStatusInProgress
    default:
      enrollment.Status = types.EnrollmentStatusNotStarted
    }
    enrollment.UpdatedAt = now
    if err := s.enrollmentRepo.Update(ctx, tx, enrollment); err != nil {
      return fmt.Errorf("update enrollment aggregate: %w", err)
    }

    result = ProgressResult{ModuleProgress: row, Enrollment: enrollment}
    return nil
  })
  if txErr != nil {
    if ae, ok := txErr.(*apierr.Error); ok {
      return nil, ae
    }
    s.log.Error("UpdateModuleProgress transaction failed", "error", txErr, "module_id", moduleID)
    return nil, apierr.Upstream(txErr)
  }

  publishEvent(ctx, s.bus, "module_progress", "update", result.ModuleProgress.ID, rd.UserID)
  return &result, nil
}

// aggregateProgress is the pure aggregate function: round(mean(progress))
// over all modules, with missing rows counting as 0.
func aggregateProgress(modules []*types.CourseModule, rows []*types.ModuleProgress) int {
  if len(modules) == 0 {
    return 0
  }
  byModule := make(map[uuid.UUID]int, len(rows))
  for _, row := range rows {
    byModule[row.ModuleID] = row.Progress
  }
  sum := 0
  for _, m := range modules {
    sum += byModule[m.ID]
  }
  return int(math.Round(float64(sum) / float64(len(modules))))
}

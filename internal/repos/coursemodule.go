package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/types"
)

type CourseModuleRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.CourseModule) ([]*types.CourseModule, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CourseModule, error)
  GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseModule, error)
}

type courseModuleRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCourseModuleRepo(db *gorm.DB, baseLog *logger.Logger) CourseModuleRepo {
  repoLog := baseLog.With("repo", "CourseModuleRepo")
  return &courseModuleRepo{db: db, log: repoLog}
}

func (r *courseModuleRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.CourseModule) ([]*types.CourseModule, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.CourseModule{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *courseModuleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CourseModule, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.CourseModule
  if len(ids) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *courseModuleRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseModule, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.CourseModule
  if courseID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("course_id = ?", courseID).
    Order(`"index" ASC`).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

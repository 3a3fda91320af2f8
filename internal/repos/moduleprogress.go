package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/types"
)

type ModuleProgressRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.ModuleProgress) ([]*types.ModuleProgress, error)
  GetByUserAndModule(ctx context.Context, tx *gorm.DB, userID, moduleID uuid.UUID) (*types.ModuleProgress, error)
  GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) ([]*types.ModuleProgress, error)
  Update(ctx context.Context, tx *gorm.DB, row *types.ModuleProgress) error
}

type moduleProgressRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewModuleProgressRepo(db *gorm.DB, baseLog *logger.Logger) ModuleProgressRepo {
  repoLog := baseLog.With("repo", "ModuleProgressRepo")
  return &moduleProgressRepo{db: db, log: repoLog}
}

func (r *moduleProgressRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ModuleProgress) ([]*types.ModuleProgress, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.ModuleProgress{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

// GetByUserAndModule returns nil, nil when no row exists.
func (r *moduleProgressRepo) GetByUserAndModule(ctx context.Context, tx *gorm.DB, userID, moduleID uuid.UUID) (*types.ModuleProgress, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if userID == uuid.Nil || moduleID == uuid.Nil {
    return nil, nil
  }

  var results []*types.ModuleProgress
  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND module_id = ?", userID, moduleID).
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (r *moduleProgressRepo) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) ([]*types.ModuleProgress, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.ModuleProgress
  if userID == uuid.Nil || courseID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND course_id = ?", userID, courseID).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *moduleProgressRepo) Update(ctx context.Context, tx *gorm.DB, row *types.ModuleProgress) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row == nil {
    return nil
  }

  return transaction.WithContext(ctx).Save(row).Error
}

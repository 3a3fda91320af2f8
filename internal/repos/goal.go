package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/types"
)

type GoalFilter struct {
  Status string
}

type GoalRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.Goal) ([]*types.Goal, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Goal, error)
  ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter GoalFilter, params ListParams) ([]*types.Goal, int64, error)
  CountActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
  Update(ctx context.Context, tx *gorm.DB, row *types.Goal) error
}

type goalRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewGoalRepo(db *gorm.DB, baseLog *logger.Logger) GoalRepo {
  repoLog := baseLog.With("repo", "GoalRepo")
  return &goalRepo{db: db, log: repoLog}
}

func (r *goalRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Goal) ([]*types.Goal, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.Goal{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *goalRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Goal, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Goal
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

func (r *goalRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter GoalFilter, params ListParams) ([]*types.Goal, int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  p := params.Normalized()

  query := transaction.WithContext(ctx).Model(&types.Goal{}).Where("user_id = ?", userID)
  if filter.Status != "" {
    query = query.Where("status = ?", filter.Status)
  } else {
    query = query.Where("status <> ?", types.GoalStatusArchived)
  }

  var total int64
  if err := query.Count(&total).Error; err != nil {
    return nil, 0, err
  }

  var results []*types.Goal
  if err := query.
    Order("created_at DESC").
    Offset(p.Offset()).
    Limit(p.Limit).
    Find(&results).Error; err != nil {
    return nil, 0, err
  }
  return results, total, nil
}

func (r *goalRepo) CountActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var total int64
  if err := transaction.WithContext(ctx).
    Model(&types.Goal{}).
    Where("user_id = ? AND status <> ?", userID, types.GoalStatusArchived).
    Count(&total).Error; err != nil {
    return 0, err
  }
  return total, nil
}

func (r *goalRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Goal) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row == nil {
    return nil
  }

  return transaction.WithContext(ctx).Save(row).Error
}

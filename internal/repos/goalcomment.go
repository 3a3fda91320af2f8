package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/types"
)

type GoalCommentRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.GoalComment) ([]*types.GoalComment, error)
  ListByGoal(ctx context.Context, tx *gorm.DB, goalID uuid.UUID, params ListParams) ([]*types.GoalComment, int64, error)
}

type goalCommentRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewGoalCommentRepo(db *gorm.DB, baseLog *logger.Logger) GoalCommentRepo {
  repoLog := baseLog.With("repo", "GoalCommentRepo")
  return &goalCommentRepo{db: db, log: repoLog}
}

func (r *goalCommentRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.GoalComment) ([]*types.GoalComment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.GoalComment{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *goalCommentRepo) ListByGoal(ctx context.Context, tx *gorm.DB, goalID uuid.UUID, params ListParams) ([]*types.GoalComment, int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  p := params.Normalized()

  query := transaction.WithContext(ctx).Model(&types.GoalComment{}).Where("goal_id = ?", goalID)

  var total int64
  if err := query.Count(&total).Error; err != nil {
    return nil, 0, err
  }

  var results []*types.GoalComment
  if err := query.
    Order("created_at DESC").
    Offset(p.Offset()).
    Limit(p.Limit).
    Find(&results).Error; err != nil {
    return nil, 0, err
  }
  return results, total, nil
}

package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/types"
)

type ContentChangeRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.ContentChange) ([]*types.ContentChange, error)
  ListByPage(ctx context.Context, tx *gorm.DB, pageID uuid.UUID) ([]*types.ContentChange, error)
}

type contentChangeRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewContentChangeRepo(db *gorm.DB, baseLog *logger.Logger) ContentChangeRepo {
  repoLog := baseLog.With("repo", "ContentChangeRepo")
  return &contentChangeRepo{db: db, log: repoLog}
}

func (r *contentChangeRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ContentChange) ([]*types.ContentChange, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.ContentChange{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *contentChangeRepo) ListByPage(ctx context.Context, tx *gorm.DB, pageID uuid.UUID) ([]*types.ContentChange, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.ContentChange
  if pageID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("page_id = ?", pageID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/types"
)

type ContentFilter struct {
  Status string
}

type ContentPageRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.ContentPage) ([]*types.ContentPage, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ContentPage, error)
  GetBySlugs(ctx context.Context, tx *gorm.DB, slugs []string) ([]*types.ContentPage, error)
  List(ctx context.Context, tx *gorm.DB, filter ContentFilter, params ListParams) ([]*types.ContentPage, int64, error)
  Update(ctx context.Context, tx *gorm.DB, row *types.ContentPage) error
}

type contentPageRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewContentPageRepo(db *gorm.DB, baseLog *logger.Logger) ContentPageRepo {
  repoLog := baseLog.With("repo", "ContentPageRepo")
  return &contentPageRepo{db: db, log: repoLog}
}

func (r *contentPageRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ContentPage) ([]*types.ContentPage, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.ContentPage{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *contentPageRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ContentPage, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.ContentPage
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

func (r *contentPageRepo) GetBySlugs(ctx context.Context, tx *gorm.DB, slugs []string) ([]*types.ContentPage, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.ContentPage
  if len(slugs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("slug IN ?", slugs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *contentPageRepo) List(ctx context.Context, tx *gorm.DB, filter ContentFilter, params ListParams) ([]*types.ContentPage, int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  p := params.Normalized()

  query := transaction.WithContext(ctx).Model(&types.ContentPage{})
  if filter.Status != "" {
    query = query.Where("status = ?", filter.Status)
  }

  var total int64
  if err := query.Count(&total).Error; err != nil {
    return nil, 0, err
  }

  var results []*types.ContentPage
  if err := query.
    Order("created_at DESC").
    Offset(p.Offset()).
    Limit(p.Limit).
    Find(&results).Error; err != nil {
    return nil, 0, err
  }
  return results, total, nil
}

func (r *contentPageRepo) Update(ctx context.Context, tx *gorm.DB, row *types.ContentPage) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row == nil {
    return nil
  }

  return transaction.WithContext(ctx).Save(row).Error
}

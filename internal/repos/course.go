package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/types"
)

type CourseFilter struct {
  Subject string
  Status  string
}

type CourseRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.Course) ([]*types.Course, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Course, error)
  List(ctx context.Context, tx *gorm.DB, filter CourseFilter, params ListParams) ([]*types.Course, int64, error)
  Update(ctx context.Context, tx *gorm.DB, row *types.Course) error
}

type courseRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
  repoLog := baseLog.With("repo", "CourseRepo")
  return &courseRepo{db: db, log: repoLog}
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Course) ([]*types.Course, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.Course{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *courseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Course, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Course
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

func (r *courseRepo) List(ctx context.Context, tx *gorm.DB, filter CourseFilter, params ListParams) ([]*types.Course, int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  p := params.Normalized()

  query := transaction.WithContext(ctx).Model(&types.Course{})
  if filter.Subject != "" {
    query = query.Where("subject = ?", filter.Subject)
  }
  if filter.Status != "" {
    query = query.Where("status = ?", filter.Status)
  }

  var total int64
  if err := query.Count(&total).Error; err != nil {
    return nil, 0, err
  }

  var results []*types.Course
  if err := query.
    Order("created_at DESC").
    Offset(p.Offset()).
    Limit(p.Limit).
    Find(&results).Error; err != nil {
    return nil, 0, err
  }
  return results, total, nil
}

func (r *courseRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Course) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row == nil {
    return nil
  }

  return transaction.WithContext(ctx).Save(row).Error
}

package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/types"
)

type EnrollmentRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.Enrollment) ([]*types.Enrollment, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Enrollment, error)
  GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) (*types.Enrollment, error)
  ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, params ListParams) ([]*types.Enrollment, int64, error)
  Update(ctx context.Context, tx *gorm.DB, row *types.Enrollment) error
}

type enrollmentRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
  repoLog := baseLog.With("repo", "EnrollmentRepo")
  return &enrollmentRepo{db: db, log: repoLog}
}

func (r *enrollmentRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Enrollment) ([]*types.Enrollment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.Enrollment{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *enrollmentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Enrollment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Enrollment
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

// GetByUserAndCourse returns nil, nil when no row exists.
func (r *enrollmentRepo) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) (*types.Enrollment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if userID == uuid.Nil || courseID == uuid.Nil {
    return nil, nil
  }

  var results []*types.Enrollment
  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND course_id = ?", userID, courseID).
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (r *enrollmentRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, params ListParams) ([]*types.Enrollment, int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  p := params.Normalized()

  query := transaction.WithContext(ctx).Model(&types.Enrollment{}).Where("user_id = ?", userID)

  var total int64
  if err := query.Count(&total).Error; err != nil {
    return nil, 0, err
  }

  var results []*types.Enrollment
  if err := query.
    Order("created_at DESC").
    Offset(p.Offset()).
    Limit(p.Limit).
    Find(&results).Error; err != nil {
    return nil, 0, err
  }
  return results, total, nil
}

func (r *enrollmentRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Enrollment) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row == nil {
    return nil
  }

  return transaction.WithContext(ctx).Save(row).Error
}

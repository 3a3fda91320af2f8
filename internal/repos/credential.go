package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/types"
)

type CredentialRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.Credential) ([]*types.Credential, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Credential, error)
  GetByStudentAndTitle(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, title string) (*types.Credential, error)
  ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, params ListParams) ([]*types.Credential, int64, error)
  Update(ctx context.Context, tx *gorm.DB, row *types.Credential) error
}

type credentialRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCredentialRepo(db *gorm.DB, baseLog *logger.Logger) CredentialRepo {
  repoLog := baseLog.With("repo", "CredentialRepo")
  return &credentialRepo{db: db, log: repoLog}
}

func (r *credentialRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Credential) ([]*types.Credential, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.Credential{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *credentialRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Credential, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Credential
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

// GetByStudentAndTitle returns nil, nil when no row exists. Used for the
// duplicate-issuance conflict check.
func (r *credentialRepo) GetByStudentAndTitle(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, title string) (*types.Credential, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if studentID == uuid.Nil || title == "" {
    return nil, nil
  }

  var results []*types.Credential
  if err := transaction.WithContext(ctx).
    Where("student_id = ? AND title = ? AND status = ?", studentID, title, types.CredentialStatusActive).
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (r *credentialRepo) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, params ListParams) ([]*types.Credential, int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  p := params.Normalized()

  query := transaction.WithContext(ctx).
    Model(&types.Credential{}).
    Where("student_id = ? AND status = ?", studentID, types.CredentialStatusActive)

  var total int64
  if err := query.Count(&total).Error; err != nil {
    return nil, 0, err
  }

  var results []*types.Credential
  if err := query.
    Order("created_at DESC").
    Offset(p.Offset()).
    Limit(p.Limit).
    Find(&results).Error; err != nil {
    return nil, 0, err
  }
  return results, total, nil
}

func (r *credentialRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Credential) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row == nil {
    return nil
  }

  return transaction.WithContext(ctx).Save(row).Error
}

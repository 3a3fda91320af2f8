package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/types"
)

type SubscriptionRepo interface {
  Create(ctx context.Context, tx *gorm.DB, row *types.Subscription) (*types.Subscription, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Subscription, error)
  GetByProviderSubscriptionID(ctx context.Context, tx *gorm.DB, providerSubID string) (*types.Subscription, error)
  Update(ctx context.Context, tx *gorm.DB, row *types.Subscription) error
}

type subscriptionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
  repoLog := baseLog.With("repo", "SubscriptionRepo")
  return &subscriptionRepo{db: db, log: repoLog}
}

func (r *subscriptionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Subscription) (*types.Subscription, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row == nil {
    return nil, nil
  }

  if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
    return nil, err
  }
  return row, nil
}

// GetByUserID returns nil, nil when the user has no subscription row yet.
func (r *subscriptionRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Subscription, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if userID == uuid.Nil {
    return nil, nil
  }

  var results []*types.Subscription
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (r *subscriptionRepo) GetByProviderSubscriptionID(ctx context.Context, tx *gorm.DB, providerSubID string) (*types.Subscription, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if providerSubID == "" {
    return nil, nil
  }

  var results []*types.Subscription
  if err := transaction.WithContext(ctx).
    Where("provider_subscription_id = ?", providerSubID).
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (r *subscriptionRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Subscription) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row == nil {
    return nil
  }

  return transaction.WithContext(ctx).Save(row).Error
}

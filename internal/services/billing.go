package services

import (
  "context"
  "fmt"
  "net/http"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/edpsychconnect/backend/internal/apierr"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/repos"
  "github.com/edpsychconnect/backend/internal/requestdata"
  "github.com/edpsychconnect/backend/internal/types"
)

type CheckoutInput struct {
  PlanID string `json:"plan_id" validate:"required,oneof=pro enterprise"`
}

type BillingService interface {
  GetSubscription(ctx context.Context) (*types.Subscription, error)
  Checkout(ctx context.Context, input CheckoutInput) (string, error)
  Portal(ctx context.Context) (string, error)
  HandleWebhook(ctx context.Context, payload []byte, headers http.Header) error
}

type billingService struct {
  db               *gorm.DB
  log              *logger.Logger
  provider         PaymentProvider
  subscriptionRepo repos.SubscriptionRepo
  userRepo         repos.UserRepo
  bus              EventBus
}

func NewBillingService(
  db *gorm.DB,
  baseLog *logger.Logger,
  provider PaymentProvider,
  subscriptionRepo repos.SubscriptionRepo,
  userRepo repos.UserRepo,
  bus EventBus,
) BillingService {
  return &billingService{
    db:               db,
    log:              baseLog.With("service", "BillingService"),
    provider:         provider,
    subscriptionRepo: subscriptionRepo,
    userRepo:         userRepo,
    bus:              bus,
  }
}

// GetSubscription never 404s: a user without a row is on the free plan.
func (s *billingService) GetSubscription(ctx context.Context) (*types.Subscription, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }

  sub, err := s.subscriptionRepo.GetByUserID(ctx, nil, rd.UserID)
  if err != nil {
    s.log.Error("GetSubscription failed", "error", err, "user_id", rd.UserID)
    return nil, apierr.Upstream(fmt.Errorf("load subscription: %w", err))
  }
  if sub == nil {
    now := time.Now()
    sub = &types.Subscription{
      ID:        uuid.New(),
      UserID:    rd.UserID,
      PlanID:    types.PlanFree,
      Status:    types.SubscriptionStatusActive,
      CreatedAt: now,
      UpdatedAt: now,
    }
    if _, err := s.subscriptionRepo.Create(ctx, nil, sub); err != nil {
      s.log.Error("GetSubscription default row failed", "error", err, "user_id", rd.UserID)
      return nil, apierr.Upstream(fmt.Errorf("create default subscription: %w", err))
    }
  }
  return sub, nil
}

func (s *billingService) Checkout(ctx context.Context, input CheckoutInput) (string, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return "", apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }

  users, err := s.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
  if err != nil || len(users) == 0 {
    s.log.Error("Checkout user lookup failed", "error", err, "user_id", rd.UserID)
    return "", apierr.Upstream(fmt.Errorf("load user: %w", err))
  }

  url, err := s.provider.CreateCheckoutURL(rd.UserID.String(), input.PlanID, users[0].Email)
  if err != nil {
    s.log.Error("Checkout failed", "error", err, "user_id", rd.UserID, "plan_id", input.PlanID)
    return "", apierr.Upstream(fmt.Errorf("create checkout: %w", err))
  }
  return url, nil
}

func (s *billingService) Portal(ctx context.Context) (string, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return "", apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }

  sub, err := s.subscriptionRepo.GetByUserID(ctx, nil, rd.UserID)
  if err != nil {
    s.log.Error("Portal subscription lookup failed", "error", err, "user_id", rd.UserID)
    return "", apierr.Upstream(fmt.Errorf("load subscription: %w", err))
  }
  if sub == nil || sub.ProviderCustomerID == nil || *sub.ProviderCustomerID == "" {
    return "", apierr.NotFound("no_billing_account", fmt.Errorf("no provider customer on record"))
  }

  url, err := s.provider.CustomerPortalURL(*sub.ProviderCustomerID)
  if err != nil {
    s.log.Error("Portal failed", "error", err, "user_id", rd.UserID)
    return "", apierr.Upstream(fmt.Errorf("create portal: %w", err))
  }
  return url, nil
}

// HandleWebhook is unauthenticated; trust comes from the provider signature
// checked inside ParseWebhook. Signature failures map to 400 so the provider
// retries, everything after verification is applied best-effort.
func (s *billingService) HandleWebhook(ctx context.Context, payload []byte, headers http.Header) error {
  event, err := s.provider.ParseWebhook(payload, headers)
  if err != nil {
    s.log.Warn("webhook rejected", "error", err)
    return apierr.Validation(nil, fmt.Errorf("invalid webhook: %w", err))
  }

  switch event.Type {
  case WebhookCheckoutCompleted:
    return s.applyCheckoutCompleted(ctx, event)
  case WebhookSubscriptionDeleted:
    return s.applySubscriptionDeleted(ctx, event)
  default:
    return nil
  }
}

func (s *billingService) applyCheckoutCompleted(ctx context.Context, event *WebhookEvent) error {
  txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    var sub *types.Subscription
    var err error

    if event.UserID != "" {
      userID, parseErr := uuid.Parse(event.UserID)
      if parseErr != nil {
        return fmt.Errorf("webhook user_id: %w", parseErr)
      }
      sub, err = s.subscriptionRepo.GetByUserID(ctx, tx, userID)
      if err != nil {
        return fmt.Errorf("load subscription: %w", err)
      }
      if sub == nil {
        now := time.Now()
        sub = &types.Subscription{
          ID:        uuid.New(),
          UserID:    userID,
          PlanID:    types.PlanFree,
          Status:    types.SubscriptionStatusActive,
          CreatedAt: now,
          UpdatedAt: now,
        }
        if _, err := s.subscriptionRepo.Create(ctx, tx, sub); err != nil {
          return fmt.Errorf("create subscription: %w", err)
        }
      }
    } else {
      sub, err = s.subscriptionRepo.GetByProviderSubscriptionID(ctx, tx, event.ProviderSubscriptionID)
      if err != nil {
        return fmt.Errorf("load subscription by provider id: %w", err)
      }
      if sub == nil {
        s.log.Warn("webhook for unknown subscription, skipping", "provider_subscription_id", event.ProviderSubscriptionID)
        return nil
      }
    }

    if event.PlanID != "" {
      sub.PlanID = event.PlanID
    }
    sub.Status = types.SubscriptionStatusActive
    sub.Provider = s.provider.Name()
    if event.ProviderCustomerID != "" {
      sub.ProviderCustomerID = &event.ProviderCustomerID
    }
    if event.ProviderSubscriptionID != "" {
      sub.ProviderSubscriptionID = &event.ProviderSubscriptionID
    }
    if event.CurrentPeriodEnd != nil {
      sub.CurrentPeriodEnd = event.CurrentPeriodEnd
    }
    sub.UpdatedAt = time.Now()
    if err := s.subscriptionRepo.Update(ctx, tx, sub); err != nil {
      return fmt.Errorf("update subscription: %w", err)
    }

    publishEvent(ctx, s.bus, "subscription", "upgrade", sub.ID, sub.UserID)
    return nil
  })
  if txErr != nil {
    s.log.Error("applyCheckoutCompleted failed", "error", txErr)
    return apierr.Upstream(txErr)
  }
  return nil
}

func (s *billingService) applySubscriptionDeleted(ctx context.Context, event *WebhookEvent) error {
  txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    sub, err := s.subscriptionRepo.GetByProviderSubscriptionID(ctx, tx, event.ProviderSubscriptionID)
    if err != nil {
      return fmt.Errorf("load subscription by provider id: %w", err)
    }
    if sub == nil {
      s.log.Warn("deletion for unknown subscription, skipping", "provider_subscription_id", event.ProviderSubscriptionID)
      return nil
    }
    if sub.PlanID == types.PlanFree {
      return nil
    }

    sub.PlanID = types.PlanFree
    sub.Status = types.SubscriptionStatusActive
    sub.ProviderSubscriptionID = nil
    sub.CurrentPeriodEnd = nil
    sub.UpdatedAt = time.Now()
    if err := s.subscriptionRepo.Update(ctx, tx, sub); err != nil {
      return fmt.Errorf("downgrade subscription: %w", err)
    }

    publishEvent(ctx, s.bus, "subscription", "downgrade", sub.ID, sub.UserID)
    return nil
  })
  if txErr != nil {
    s.log.Error("applySubscriptionDeleted failed", "error", txErr)
    return apierr.Upstream(txErr)
  }
  return nil
}

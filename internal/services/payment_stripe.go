package services

import (
  "encoding/json"
  "fmt"
  "net/http"
  "time"

  "github.com/stripe/stripe-go/v81"
  portalsession "github.com/stripe/stripe-go/v81/billingportal/session"
  checkoutsession "github.com/stripe/stripe-go/v81/checkout/session"
  "github.com/stripe/stripe-go/v81/webhook"

  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/types"
)

// WebhookEvent is the provider-neutral shape a PaymentProvider distills a raw
// webhook into. Fields not relevant to the event type are left zero.
type WebhookEvent struct {
  Type                   string
  UserID                 string
  PlanID                 string
  ProviderCustomerID     string
  ProviderSubscriptionID string
  CurrentPeriodEnd       *time.Time
}

const (
  WebhookCheckoutCompleted   = "checkout_completed"
  WebhookSubscriptionDeleted = "subscription_deleted"
  WebhookIgnored             = "ignored"
)

// PaymentProvider hides the payment vendor behind URLs in and events out.
type PaymentProvider interface {
  Name() string
  CreateCheckoutURL(userID string, planID string, customerEmail string) (string, error)
  CustomerPortalURL(providerCustomerID string) (string, error)
  ParseWebhook(payload []byte, headers http.Header) (*WebhookEvent, error)
}

type StripeConfig struct {
  SecretKey         string
  WebhookSecret     string
  AppURL            string
  PriceIDPro        string
  PriceIDEnterprise string
}

type stripeProvider struct {
  cfg StripeConfig
  log *logger.Logger
}

func NewStripeProvider(cfg StripeConfig, baseLog *logger.Logger) PaymentProvider {
  stripe.Key = cfg.SecretKey
  return &stripeProvider{
    cfg: cfg,
    log: baseLog.With("service", "StripeProvider"),
  }
}

func (p *stripeProvider) Name() string { return "stripe" }

func (p *stripeProvider) priceID(planID string) string {
  switch planID {
  case types.PlanPro:
    return p.cfg.PriceIDPro
  case types.PlanEnterprise:
    return p.cfg.PriceIDEnterprise
  default:
    return ""
  }
}

func (p *stripeProvider) planID(priceID string) string {
  switch priceID {
  case p.cfg.PriceIDPro:
    return types.PlanPro
  case p.cfg.PriceIDEnterprise:
    return types.PlanEnterprise
  default:
    return ""
  }
}

func (p *stripeProvider) CreateCheckoutURL(userID string, planID string, customerEmail string) (string, error) {
  priceID := p.priceID(planID)
  if priceID == "" {
    return "", fmt.Errorf("no price configured for plan %q", planID)
  }

  successURL := fmt.Sprintf("%s/billing?session_id={CHECKOUT_SESSION_ID}", p.cfg.AppURL)
  cancelURL := fmt.Sprintf("%s/billing", p.cfg.AppURL)

  params := &stripe.CheckoutSessionParams{
    Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
    SuccessURL: stripe.String(successURL),
    CancelURL:  stripe.String(cancelURL),
    LineItems: []*stripe.CheckoutSessionLineItemParams{
      {
        Price:    stripe.String(priceID),
        Quantity: stripe.Int64(1),
      },
    },
    CustomerEmail: stripe.String(customerEmail),
    Metadata: map[string]string{
      "user_id": userID,
      "plan_id": planID,
    },
  }

  sess, err := checkoutsession.New(params)
  if err != nil {
    return "", fmt.Errorf("create checkout session: %w", err)
  }
  p.log.Info("stripe checkout created", "user_id", userID, "plan_id", planID)
  return sess.URL, nil
}

func (p *stripeProvider) CustomerPortalURL(providerCustomerID string) (string, error) {
  params := &stripe.BillingPortalSessionParams{
    Customer:  stripe.String(providerCustomerID),
    ReturnURL: stripe.String(fmt.Sprintf("%s/billing", p.cfg.AppURL)),
  }
  sess, err := portalsession.New(params)
  if err != nil {
    return "", fmt.Errorf("create portal session: %w", err)
  }
  return sess.URL, nil
}

func (p *stripeProvider) ParseWebhook(payload []byte, headers http.Header) (*WebhookEvent, error) {
  event, err := webhook.ConstructEventWithOptions(
    payload,
    headers.Get("Stripe-Signature"),
    p.cfg.WebhookSecret,
    webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
  )
  if err != nil {
    return nil, fmt.Errorf("verify webhook signature: %w", err)
  }

  switch event.Type {
  case "checkout.session.completed":
    var sess struct {
      CustomerID   string            `json:"customer"`
      Subscription string            `json:"subscription"`
      Metadata     map[string]string `json:"metadata"`
    }
    if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
      return nil, fmt.Errorf("parse checkout session: %w", err)
    }
    return &WebhookEvent{
      Type:                   WebhookCheckoutCompleted,
      UserID:                 sess.Metadata["user_id"],
      PlanID:                 sess.Metadata["plan_id"],
      ProviderCustomerID:     sess.CustomerID,
      ProviderSubscriptionID: sess.Subscription,
    }, nil

  case "customer.subscription.updated":
    var sub struct {
      ID               string `json:"id"`
      CustomerID       string `json:"customer"`
      CurrentPeriodEnd int64  `json:"current_period_end"`
      Items            struct {
        Data []struct {
          Price struct {
            ID string `json:"id"`
          } `json:"price"`
        } `json:"data"`
      } `json:"items"`
    }
    if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
      return nil, fmt.Errorf("parse subscription: %w", err)
    }
    ev := &WebhookEvent{
      Type:                   WebhookCheckoutCompleted,
      ProviderCustomerID:     sub.CustomerID,
      ProviderSubscriptionID: sub.ID,
    }
    if len(sub.Items.Data) > 0 {
      ev.PlanID = p.planID(sub.Items.Data[0].Price.ID)
    }
    if sub.CurrentPeriodEnd > 0 {
      end := time.Unix(sub.CurrentPeriodEnd, 0)
      ev.CurrentPeriodEnd = &end
    }
    return ev, nil

  case "customer.subscription.deleted":
    var sub struct {
      ID string `json:"id"`
    }
    if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
      return nil, fmt.Errorf("parse subscription: %w", err)
    }
    return &WebhookEvent{
      Type:                   WebhookSubscriptionDeleted,
      ProviderSubscriptionID: sub.ID,
    }, nil

  default:
    p.log.Debug("stripe webhook ignored", "event_type", string(event.Type))
    return &WebhookEvent{Type: WebhookIgnored}, nil
  }
}

package services

import (
  "context"
  "errors"
  "net/http"
  "testing"
  "time"

  "github.com/edpsychconnect/backend/internal/types"
)

// fakeProvider returns canned webhook events so the subscription state
// machine can be exercised without the real payment vendor.
type fakeProvider struct {
  event *WebhookEvent
  err   error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) CreateCheckoutURL(userID string, planID string, customerEmail string) (string, error) {
  return "https://pay.example.com/checkout", nil
}

func (p *fakeProvider) CustomerPortalURL(providerCustomerID string) (string, error) {
  return "https://pay.example.com/portal", nil
}

func (p *fakeProvider) ParseWebhook(payload []byte, headers http.Header) (*WebhookEvent, error) {
  return p.event, p.err
}

func newBillingService(t *testing.T, provider PaymentProvider) (BillingService, *testFixture) {
  t.Helper()
  f := newFixture(t)
  svc := NewBillingService(f.db, f.log, provider, f.subscriptionRepo, f.userRepo, nil)
  return svc, f
}

func TestGetSubscriptionDefaultsToFree(t *testing.T) {
  svc, f := newBillingService(t, &fakeProvider{})
  student := seedUser(t, f.db, types.RoleStudent)

  sub, err := svc.GetSubscription(ctxAs(student.ID, types.RoleStudent))
  if err != nil {
    t.Fatalf("GetSubscription failed: %v", err)
  }
  if sub.PlanID != types.PlanFree {
    t.Fatalf("expected free plan default, got %q", sub.PlanID)
  }
}

func TestWebhookCheckoutCompletedUpgradesPlan(t *testing.T) {
  f := newFixture(t)
  student := seedUser(t, f.db, types.RoleStudent)
  periodEnd := time.Now().Add(30 * 24 * time.Hour)

  provider := &fakeProvider{event: &WebhookEvent{
    Type:                   WebhookCheckoutCompleted,
    UserID:                 student.ID.String(),
    PlanID:                 types.PlanPro,
    ProviderCustomerID:     "cus_123",
    ProviderSubscriptionID: "sub_123",
    CurrentPeriodEnd:       &periodEnd,
  }}
  svc := NewBillingService(f.db, f.log, provider, f.subscriptionRepo, f.userRepo, nil)

  if err := svc.HandleWebhook(context.Background(), nil, nil); err != nil {
    t.Fatalf("HandleWebhook failed: %v", err)
  }

  sub, err := f.subscriptionRepo.GetByUserID(context.Background(), nil, student.ID)
  if err != nil {
    t.Fatalf("load subscription: %v", err)
  }
  if sub == nil || sub.PlanID != types.PlanPro {
    t.Fatalf("expected pro plan after checkout, got %+v", sub)
  }
  if sub.ProviderSubscriptionID == nil || *sub.ProviderSubscriptionID != "sub_123" {
    t.Fatalf("provider subscription id not recorded")
  }
}

func TestWebhookSubscriptionDeletedDowngradesToFree(t *testing.T) {
  f := newFixture(t)
  student := seedUser(t, f.db, types.RoleStudent)

  upgrade := &fakeProvider{event: &WebhookEvent{
    Type:                   WebhookCheckoutCompleted,
    UserID:                 student.ID.String(),
    PlanID:                 types.PlanEnterprise,
    ProviderSubscriptionID: "sub_del",
  }}
  svc := NewBillingService(f.db, f.log, upgrade, f.subscriptionRepo, f.userRepo, nil)
  if err := svc.HandleWebhook(context.Background(), nil, nil); err != nil {
    t.Fatalf("upgrade webhook failed: %v", err)
  }

  downgrade := &fakeProvider{event: &WebhookEvent{
    Type:                   WebhookSubscriptionDeleted,
    ProviderSubscriptionID: "sub_del",
  }}
  svc = NewBillingService(f.db, f.log, downgrade, f.subscriptionRepo, f.userRepo, nil)
  if err := svc.HandleWebhook(context.Background(), nil, nil); err != nil {
    t.Fatalf("downgrade webhook failed: %v", err)
  }

  sub, err := f.subscriptionRepo.GetByUserID(context.Background(), nil, student.ID)
  if err != nil {
    t.Fatalf("load subscription: %v", err)
  }
  if sub.PlanID != types.PlanFree {
    t.Fatalf("expected free after deletion, got %q", sub.PlanID)
  }
  if sub.ProviderSubscriptionID != nil {
    t.Fatalf("provider subscription id should be cleared")
  }
}

func TestWebhookBadSignatureIsRejected(t *testing.T) {
  provider := &fakeProvider{err: errBadSignature}
  svc, _ := newBillingService(t, provider)

  err := svc.HandleWebhook(context.Background(), []byte("{}"), nil)
  if err == nil {
    t.Fatalf("expected error for rejected webhook")
  }
}

var errBadSignature = errors.New("bad signature")

func TestPortalWithoutCustomerIs404(t *testing.T) {
  svc, f := newBillingService(t, &fakeProvider{})
  student := seedUser(t, f.db, types.RoleStudent)

  _, err := svc.Portal(ctxAs(student.ID, types.RoleStudent))
  if err == nil {
    t.Fatalf("expected 404 for user without billing account")
  }
}

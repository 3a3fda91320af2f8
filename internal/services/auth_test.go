package services

import (
  "context"
  "testing"
  "time"

  "github.com/edpsychconnect/backend/internal/apierr"
  "github.com/edpsychconnect/backend/internal/requestdata"
  "github.com/edpsychconnect/backend/internal/types"
)

func newAuthService(t *testing.T) (AuthService, *testFixture) {
  t.Helper()
  f := newFixture(t)
  svc := NewAuthService(f.db, f.log, f.userRepo, f.userTokenRepo, f.subscriptionRepo, nil, "test-secret", time.Hour, 24*time.Hour)
  return svc, f
}

func registerTestUser(t *testing.T, svc AuthService, email string) *types.User {
  t.Helper()
  user := &types.User{
    Email:     email,
    Password:  "correct horse battery",
    FirstName: "Ada",
    LastName:  "Lovelace",
  }
  if err := svc.RegisterUser(context.Background(), user); err != nil {
    t.Fatalf("RegisterUser failed: %v", err)
  }
  return user
}

func TestRegisterCreatesFreeSubscription(t *testing.T) {
  svc, f := newAuthService(t)
  user := registerTestUser(t, svc, "ada@example.com")

  if user.Role != types.RoleStudent {
    t.Fatalf("expected default role student, got %q", user.Role)
  }
  sub, err := f.subscriptionRepo.GetByUserID(context.Background(), nil, user.ID)
  if err != nil {
    t.Fatalf("load subscription: %v", err)
  }
  if sub == nil || sub.PlanID != types.PlanFree {
    t.Fatalf("expected free subscription row, got %+v", sub)
  }
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
  svc, _ := newAuthService(t)
  registerTestUser(t, svc, "dup@example.com")

  err := svc.RegisterUser(context.Background(), &types.User{
    Email:    "DUP@example.com",
    Password: "another password",
  })
  ae, ok := err.(*apierr.Error)
  if !ok || ae.Status != 409 {
    t.Fatalf("expected 409 for duplicate email, got %v", err)
  }
}

func TestLoginRoundTrip(t *testing.T) {
  svc, _ := newAuthService(t)
  registerTestUser(t, svc, "login@example.com")
  ctx := context.Background()

  access, refresh, err := svc.LoginUser(ctx, "login@example.com", "correct horse battery")
  if err != nil {
    t.Fatalf("LoginUser failed: %v", err)
  }
  if access == "" || refresh == "" {
    t.Fatalf("expected both tokens")
  }

  authedCtx, err := svc.SetContextFromToken(ctx, access)
  if err != nil {
    t.Fatalf("SetContextFromToken failed: %v", err)
  }
  rd := requestdata.GetRequestData(authedCtx)
  if rd == nil || rd.Role != types.RoleStudent {
    t.Fatalf("claims not carried into context: %+v", rd)
  }
  if rd.RefreshToken != refresh {
    t.Fatalf("paired refresh token not loaded")
  }
}

func TestLoginWrongPasswordIs401(t *testing.T) {
  svc, _ := newAuthService(t)
  registerTestUser(t, svc, "wrongpw@example.com")

  _, _, err := svc.LoginUser(context.Background(), "wrongpw@example.com", "not the password")
  ae, ok := err.(*apierr.Error)
  if !ok || ae.Status != 401 {
    t.Fatalf("expected 401, got %v", err)
  }
}

func TestRefreshRotatesToken(t *testing.T) {
  svc, _ := newAuthService(t)
  registerTestUser(t, svc, "refresh@example.com")
  ctx := context.Background()

  _, refresh, err := svc.LoginUser(ctx, "refresh@example.com", "correct horse battery")
  if err != nil {
    t.Fatalf("LoginUser failed: %v", err)
  }

  rdCtx := requestdata.WithRequestData(ctx, &requestdata.RequestData{RefreshToken: refresh})
  _, rotated, err := svc.RefreshUser(rdCtx)
  if err != nil {
    t.Fatalf("RefreshUser failed: %v", err)
  }
  if rotated == refresh {
    t.Fatalf("refresh token not rotated")
  }

  // The old token is single-use.
  _, _, err = svc.RefreshUser(rdCtx)
  ae, ok := err.(*apierr.Error)
  if !ok || ae.Status != 401 {
    t.Fatalf("expected 401 on reused refresh token, got %v", err)
  }
}

func TestSetContextFromTokenRejectsTamperedToken(t *testing.T) {
  svc, _ := newAuthService(t)
  registerTestUser(t, svc, "forged@example.com")

  access, _, err := svc.LoginUser(context.Background(), "forged@example.com", "correct horse battery")
  if err != nil {
    t.Fatalf("LoginUser failed: %v", err)
  }
  if _, err := svc.SetContextFromToken(context.Background(), access+"tampered"); err == nil {
    t.Fatalf("tampered token accepted")
  }
}

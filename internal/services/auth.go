package services

import (
  "context"
  "fmt"
  "strings"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "golang.org/x/crypto/bcrypt"
  "gorm.io/gorm"

  "github.com/edpsychconnect/backend/internal/apierr"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/repos"
  "github.com/edpsychconnect/backend/internal/requestdata"
  "github.com/edpsychconnect/backend/internal/types"
)

type JWTClaims struct {
  Role string `json:"role"`
  jwt.RegisteredClaims
}

type AuthService interface {
  RegisterUser(ctx context.Context, user *types.User) error
  LoginUser(ctx context.Context, email, password string) (string, string, error)
  RefreshUser(ctx context.Context) (string, string, error)
  LogoutUser(ctx context.Context) error
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  GetAccessTTL() time.Duration
}

type authService struct {
  db               *gorm.DB
  log              *logger.Logger
  userRepo         repos.UserRepo
  userTokenRepo    repos.UserTokenRepo
  subscriptionRepo repos.SubscriptionRepo
  bus              EventBus
  jwtSecretKey     string
  accessTTL        time.Duration
  refreshTTL       time.Duration
}

func NewAuthService(
  db *gorm.DB,
  baseLog *logger.Logger,
  userRepo repos.UserRepo,
  userTokenRepo repos.UserTokenRepo,
  subscriptionRepo repos.SubscriptionRepo,
  bus EventBus,
  jwtSecretKey string,
  accessTTL time.Duration,
  refreshTTL time.Duration,
) AuthService {
  serviceLog := baseLog.With("service", "AuthService")
  return &authService{
    db:               db,
    log:              serviceLog,
    userRepo:         userRepo,
    userTokenRepo:    userTokenRepo,
    subscriptionRepo: subscriptionRepo,
    bus:              bus,
    jwtSecretKey:     jwtSecretKey,
    accessTTL:        accessTTL,
    refreshTTL:       refreshTTL,
  }
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
  user.Email = strings.ToLower(strings.TrimSpace(user.Email))
  if user.Role == "" {
    user.Role = types.RoleStudent
  }

  existing, err := as.userRepo.GetByEmails(ctx, nil, []string{user.Email})
  if err != nil {
    as.log.Error("RegisterUser email lookup failed", "error", err)
    return apierr.Upstream(fmt.Errorf("check existing email: %w", err))
  }
  if len(existing) > 0 {
    return apierr.Conflict("email_taken", fmt.Errorf("email already registered"))
  }

  hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
  if err != nil {
    as.log.Error("RegisterUser hash failed", "error", err)
    return apierr.Upstream(fmt.Errorf("hash password: %w", err))
  }
  user.Password = string(hashed)

  txErr := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    now := time.Now()
    user.ID = uuid.New()
    user.CreatedAt = now
    user.UpdatedAt = now
    if _, err := as.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
      return fmt.Errorf("create user: %w", err)
    }
    // Every account starts on the free plan; billing upgrades it later.
    sub := &types.Subscription{
      ID:        uuid.New(),
      UserID:    user.ID,
      PlanID:    types.PlanFree,
      Status:    types.SubscriptionStatusActive,
      CreatedAt: now,
      UpdatedAt: now,
    }
    if _, err := as.subscriptionRepo.Create(ctx, tx, sub); err != nil {
      return fmt.Errorf("create subscription: %w", err)
    }
    return nil
  })
  if txErr != nil {
    as.log.Error("RegisterUser transaction failed", "error", txErr)
    return apierr.Upstream(txErr)
  }

  publishEvent(ctx, as.bus, "user", "register", user.ID, user.ID)
  return nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
  email = strings.ToLower(strings.TrimSpace(email))

  users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
  if err != nil {
    as.log.Error("LoginUser email lookup failed", "error", err)
    return "", "", apierr.Upstream(fmt.Errorf("load user by email: %w", err))
  }
  if len(users) == 0 {
    return "", "", apierr.Unauthenticated(fmt.Errorf("invalid email or password"))
  }
  user := users[0]

  if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
    return "", "", apierr.Unauthenticated(fmt.Errorf("invalid email or password"))
  }

  var accessToken string
  var refreshToken string
  txErr := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    tok, genErr := as.generateAccessToken(user)
    if genErr != nil {
      return fmt.Errorf("generate access token: %w", genErr)
    }
    accessToken = tok
    refreshToken = uuid.New().String()
    userToken := types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  accessToken,
      RefreshToken: refreshToken,
      ExpiresAt:    time.Now().Add(as.refreshTTL),
      CreatedAt:    time.Now(),
    }
    if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken}); err != nil {
      return fmt.Errorf("create user token: %w", err)
    }
    return nil
  })
  if txErr != nil {
    as.log.Error("LoginUser transaction failed", "error", txErr)
    return "", "", apierr.Upstream(txErr)
  }
  return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.RefreshToken == "" {
    return "", "", apierr.Unauthenticated(fmt.Errorf("no refresh token in context"))
  }

  var accessToken string
  var newRefreshToken string
  txErr := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, err := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
    if err != nil {
      return fmt.Errorf("load refresh token: %w", err)
    }
    if len(foundTokens) == 0 {
      return apierr.Unauthenticated(fmt.Errorf("unknown refresh token"))
    }
    existingToken := foundTokens[0]
    if existingToken.ExpiresAt.Before(time.Now()) {
      if err := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{existingToken.ID}); err != nil {
        return fmt.Errorf("delete expired token: %w", err)
      }
      return apierr.Unauthenticated(fmt.Errorf("refresh token expired"))
    }
    users, err := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existingToken.UserID})
    if err != nil {
      return fmt.Errorf("load user for refresh: %w", err)
    }
    if len(users) == 0 {
      return apierr.Unauthenticated(fmt.Errorf("user for refresh token not found"))
    }
    user := users[0]
    tok, genErr := as.generateAccessToken(user)
    if genErr != nil {
      return fmt.Errorf("generate access token: %w", genErr)
    }
    accessToken = tok
    newRefreshToken = uuid.New().String()
    newUserToken := types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  accessToken,
      RefreshToken: newRefreshToken,
      ExpiresAt:    time.Now().Add(as.refreshTTL),
      CreatedAt:    time.Now(),
    }
    if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&newUserToken}); err != nil {
      return fmt.Errorf("create rotated token: %w", err)
    }
    if err := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{existingToken.ID}); err != nil {
      return fmt.Errorf("remove old refresh token: %w", err)
    }
    return nil
  })
  if txErr != nil {
    if ae, ok := txErr.(*apierr.Error); ok {
      return "", "", ae
    }
    as.log.Error("RefreshUser transaction failed", "error", txErr)
    return "", "", apierr.Upstream(txErr)
  }
  return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.TokenString == "" {
    return apierr.Unauthenticated(fmt.Errorf("no session token in context"))
  }
  txErr := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, err := as.userTokenRepo.GetByAccessTokens(ctx, tx, []string{rd.TokenString})
    if err != nil {
      return fmt.Errorf("load session token: %w", err)
    }
    if len(foundTokens) == 0 {
      return nil
    }
    if err := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{foundTokens[0].ID}); err != nil {
      return fmt.Errorf("delete session token: %w", err)
    }
    return nil
  })
  if txErr != nil {
    as.log.Error("LogoutUser transaction failed", "error", txErr)
    return apierr.Upstream(txErr)
  }
  return nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
  claims := JWTClaims{
    Role: user.Role,
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   user.ID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, apierr.Unauthenticated(fmt.Errorf("missing token"))
  }
  parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    return ctx, apierr.Unauthenticated(fmt.Errorf("parse token: %w", err))
  }
  claims, ok := parsedToken.Claims.(*JWTClaims)
  if !ok || !parsedToken.Valid {
    return ctx, apierr.Unauthenticated(fmt.Errorf("invalid or expired token"))
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, apierr.Unauthenticated(fmt.Errorf("invalid subject in token: %w", err))
  }
  rd := &requestdata.RequestData{
    TokenString: tokenString,
    UserID:      userID,
    Role:        claims.Role,
  }
  // Refresh needs the paired refresh token; absence is fine for other routes.
  foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
  if ftErr != nil {
    as.log.Warn("Failed to load refresh token for session", "error", ftErr)
  } else if len(foundTokens) > 0 {
    rd.RefreshToken = foundTokens[0].RefreshToken
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}

package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/edpsychconnect/backend/internal/apierr"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/repos"
  "github.com/edpsychconnect/backend/internal/requestdata"
  "github.com/edpsychconnect/backend/internal/types"
)

type UserService interface {
  GetMe(ctx context.Context, tx *gorm.DB) (*types.User, error)
}

type userService struct {
  db       *gorm.DB
  log      *logger.Logger
  userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo) UserService {
  return &userService{
    db:       db,
    log:      baseLog.With("service", "UserService"),
    userRepo: userRepo,
  }
}

func (us *userService) GetMe(ctx context.Context, tx *gorm.DB) (*types.User, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }
  users, err := us.userRepo.GetByIDs(ctx, tx, []uuid.UUID{rd.UserID})
  if err != nil {
    us.log.Error("GetMe failed", "error", err, "user_id", rd.UserID)
    return nil, apierr.Upstream(fmt.Errorf("load user: %w", err))
  }
  if len(users) == 0 {
    return nil, apierr.NotFound("user_not_found", fmt.Errorf("user not found"))
  }
  return users[0], nil
}

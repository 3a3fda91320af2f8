package services

import (
  "context"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/edpsychconnect/backend/internal/apierr"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/repos"
  "github.com/edpsychconnect/backend/internal/requestdata"
  "github.com/edpsychconnect/backend/internal/types"
)

type CreateGoalInput struct {
  Title       string     `json:"title" validate:"required,min=3,max=200"`
  Description string     `json:"description" validate:"max=2000"`
  TeacherID   *uuid.UUID `json:"teacher_id"`
  TargetDate  *time.Time `json:"target_date"`
}

type UpdateGoalInput struct {
  Title       *string    `json:"title" validate:"omitempty,min=3,max=200"`
  Description *string    `json:"description" validate:"omitempty,max=2000"`
  TargetDate  *time.Time `json:"target_date"`
}

type UpdateGoalStatusInput struct {
  Status string `json:"status" validate:"required,oneof=not_started in_progress completed on_hold"`
}

type AddCommentInput struct {
  Body string `json:"body" validate:"required,min=1,max=2000"`
}

type GoalService interface {
  CreateGoal(ctx context.Context, input CreateGoalInput) (*types.Goal, error)
  GetGoal(ctx context.Context, goalID uuid.UUID) (*types.Goal, error)
  ListGoals(ctx context.Context, status string, params repos.ListParams) ([]*types.Goal, int64, error)
  UpdateGoal(ctx context.Context, goalID uuid.UUID, input UpdateGoalInput) (*types.Goal, error)
  UpdateGoalStatus(ctx context.Context, goalID uuid.UUID, input UpdateGoalStatusInput) (*types.Goal, error)
  ArchiveGoal(ctx context.Context, goalID uuid.UUID) error
  AddComment(ctx context.Context, goalID uuid.UUID, input AddCommentInput) (*types.GoalComment, error)
  ListComments(ctx context.Context, goalID uuid.UUID, params repos.ListParams) ([]*types.GoalComment, int64, error)
}

type goalService struct {
  db               *gorm.DB
  log              *logger.Logger
  goalRepo         repos.GoalRepo
  commentRepo      repos.GoalCommentRepo
  subscriptionRepo repos.SubscriptionRepo
  bus              EventBus
}

func NewGoalService(
  db *gorm.DB,
  baseLog *logger.Logger,
  goalRepo repos.GoalRepo,
  commentRepo repos.GoalCommentRepo,
  subscriptionRepo repos.SubscriptionRepo,
  bus EventBus,
) GoalService {
  return &goalService{
    db:               db,
    log:              baseLog.With("service", "GoalService"),
    goalRepo:         goalRepo,
    commentRepo:      commentRepo,
    subscriptionRepo: subscriptionRepo,
    bus:              bus,
  }
}

func (s *goalService) CreateGoal(ctx context.Context, input CreateGoalInput) (*types.Goal, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }

  var goal *types.Goal
  txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    sub, err := s.subscriptionRepo.GetByUserID(ctx, tx, rd.UserID)
    if err != nil {
      return fmt.Errorf("load subscription: %w", err)
    }
    limit := sub.GoalLimit()
    if limit != -1 {
      count, err := s.goalRepo.CountActiveByUser(ctx, tx, rd.UserID)
      if err != nil {
        return fmt.Errorf("count goals: %w", err)
      }
      if count >= int64(limit) {
        return apierr.Forbidden(fmt.Errorf("plan goal limit reached"))
      }
    }

    now := time.Now()
    goal = &types.Goal{
      ID:          uuid.New(),
      UserID:      rd.UserID,
      TeacherID:   input.TeacherID,
      Title:       input.Title,
      Description: input.Description,
      Status:      types.GoalStatusNotStarted,
      TargetDate:  input.TargetDate,
      CreatedAt:   now,
      UpdatedAt:   now,
    }
    if _, err := s.goalRepo.Create(ctx, tx, []*types.Goal{goal}); err != nil {
      return fmt.Errorf("create goal: %w", err)
    }
    return nil
  })
  if txErr != nil {
    if ae, ok := txErr.(*apierr.Error); ok {
      return nil, ae
    }
    s.log.Error("CreateGoal transaction failed", "error", txErr)
    return nil, apierr.Upstream(txErr)
  }

  publishEvent(ctx, s.bus, "goal", "create", goal.ID, rd.UserID)
  return goal, nil
}

// loadGoalForActor enforces the ownership precondition: the owner, the
// assigned teacher, or an admin may touch a goal.
func (s *goalService) loadGoalForActor(ctx context.Context, tx *gorm.DB, rd *requestdata.RequestData, goalID uuid.UUID) (*types.Goal, error) {
  goals, err := s.goalRepo.GetByIDs(ctx, tx, []uuid.UUID{goalID})
  if err != nil {
    return nil, apierr.Upstream(fmt.Errorf("load goal: %w", err))
  }
  if len(goals) == 0 {
    return nil, apierr.NotFound("goal_not_found", fmt.Errorf("goal not found"))
  }
  goal := goals[0]
  isAssignedTeacher := goal.TeacherID != nil && *goal.TeacherID == rd.UserID
  if goal.UserID != rd.UserID && !isAssignedTeacher && !rd.IsAdmin() {
    return nil, apierr.Forbidden(fmt.Errorf("not the goal owner"))
  }
  return goal, nil
}

func (s *goalService) GetGoal(ctx context.Context, goalID uuid.UUID) (*types.Goal, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }
  return s.loadGoalForActor(ctx, nil, rd, goalID)
}

func (s *goalService) ListGoals(ctx context.Context, status string, params repos.ListParams) ([]*types.Goal, int64, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, 0, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }
  goals, total, err := s.goalRepo.ListByUser(ctx, nil, rd.UserID, repos.GoalFilter{Status: status}, params)
  if err != nil {
    s.log.Error("ListGoals failed", "error", err, "user_id", rd.UserID)
    return nil, 0, apierr.Upstream(fmt.Errorf("list goals: %w", err))
  }
  return goals, total, nil
}

func (s *goalService) UpdateGoal(ctx context.Context, goalID uuid.UUID, input UpdateGoalInput) (*types.Goal, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }

  goal, err := s.loadGoalForActor(ctx, nil, rd, goalID)
  if err != nil {
    return nil, err
  }

  if input.Title != nil {
    goal.Title = *input.Title
  }
  if input.Description != nil {
    goal.Description = *input.Description
  }
  if input.TargetDate != nil {
    goal.TargetDate = input.TargetDate
  }
  goal.UpdatedAt = time.Now()

  if err := s.goalRepo.Update(ctx, nil, goal); err != nil {
    s.log.Error("UpdateGoal failed", "error", err, "goal_id", goalID)
    return nil, apierr.Upstream(fmt.Errorf("update goal: %w", err))
  }

  publishEvent(ctx, s.bus, "goal", "update", goal.ID, rd.UserID)
  return goal, nil
}

func (s *goalService) UpdateGoalStatus(ctx context.Context, goalID uuid.UUID, input UpdateGoalStatusInput) (*types.Goal, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }

  goal, err := s.loadGoalForActor(ctx, nil, rd, goalID)
  if err != nil {
    return nil, err
  }
  if goal.Status == types.GoalStatusArchived {
    return nil, apierr.NotFound("goal_not_found", fmt.Errorf("goal archived"))
  }

  goal.Status = input.Status
  goal.UpdatedAt = time.Now()
  if err := s.goalRepo.Update(ctx, nil, goal); err != nil {
    s.log.Error("UpdateGoalStatus failed", "error", err, "goal_id", goalID)
    return nil, apierr.Upstream(fmt.Errorf("update goal status: %w", err))
  }

  publishEvent(ctx, s.bus, "goal", "status", goal.ID, rd.UserID)
  return goal, nil
}

func (s *goalService) ArchiveGoal(ctx context.Context, goalID uuid.UUID) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }

  goal, err := s.loadGoalForActor(ctx, nil, rd, goalID)
  if err != nil {
    return err
  }

  goal.Status = types.GoalStatusArchived
  goal.UpdatedAt = time.Now()
  if err := s.goalRepo.Update(ctx, nil, goal); err != nil {
    s.log.Error("ArchiveGoal failed", "error", err, "goal_id", goalID)
    return apierr.Upstream(fmt.Errorf("archive goal: %w", err))
  }

  publishEvent(ctx, s.bus, "goal", "archive", goal.ID, rd.UserID)
  return nil
}

func (s *goalService) AddComment(ctx context.Context, goalID uuid.UUID, input AddCommentInput) (*types.GoalComment, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }

  if _, err := s.loadGoalForActor(ctx, nil, rd, goalID); err != nil {
    return nil, err
  }

  comment := &types.GoalComment{
    ID:        uuid.New(),
    GoalID:    goalID,
    AuthorID:  rd.UserID,
    Body:      input.Body,
    CreatedAt: time.Now(),
  }
  if _, err := s.commentRepo.Create(ctx, nil, []*types.GoalComment{comment}); err != nil {
    s.log.Error("AddComment failed", "error", err, "goal_id", goalID)
    return nil, apierr.Upstream(fmt.Errorf("create comment: %w", err))
  }

  publishEvent(ctx, s.bus, "goal_comment", "create", comment.ID, rd.UserID)
  return comment, nil
}

func (s *goalService) ListComments(ctx context.Context, goalID uuid.UUID, params repos.ListParams) ([]*types.GoalComment, int64, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, 0, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }

  if _, err := s.loadGoalForActor(ctx, nil, rd, goalID); err != nil {
    return nil, 0, err
  }

  comments, total, err := s.commentRepo.ListByGoal(ctx, nil, goalID, params)
  if err != nil {
    s.log.Error("ListComments failed", "error", err, "goal_id", goalID)
    return nil, 0, apierr.Upstream(fmt.Errorf("list comments: %w", err))
  }
  return comments, total, nil
}

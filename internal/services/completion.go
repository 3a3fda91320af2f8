package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"

  "github.com/edpsychconnect/backend/internal/apierr"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/requestdata"
)

type CompletionInput struct {
  Prompt    string `json:"prompt" validate:"required,min=1,max=8000"`
  System    string `json:"system" validate:"max=2000"`
  MaxTokens int    `json:"max_tokens" validate:"gte=0,lte=4096"`
}

type CompletionService interface {
  Complete(ctx context.Context, input CompletionInput) (string, error)
}

type completionService struct {
  log    *logger.Logger
  client CompletionClient
}

func NewCompletionService(baseLog *logger.Logger, client CompletionClient) CompletionService {
  return &completionService{
    log:    baseLog.With("service", "CompletionService"),
    client: client,
  }
}

func (s *completionService) Complete(ctx context.Context, input CompletionInput) (string, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return "", apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }
  if s.client == nil {
    return "", apierr.Upstream(fmt.Errorf("completion backend not configured"))
  }

  text, err := s.client.GenerateText(ctx, input.Prompt, CompletionOpts{
    System:    input.System,
    MaxTokens: input.MaxTokens,
  })
  if err != nil {
    s.log.Error("Complete failed", "error", err, "user_id", rd.UserID)
    return "", apierr.Upstream(fmt.Errorf("generate text: %w", err))
  }
  return text, nil
}

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

type IssueCredentialInput struct {
  StudentID   uuid.UUID `json:"student_id" validate:"required"`
  Title       string    `json:"title" validate:"required,min=3,max=200"`
  Description string    `json:"description" validate:"max=2000"`
}

type CredentialService interface {
  IssueCredential(ctx context.Context, input IssueCredentialInput) (*types.Credential, error)
  ListMyCredentials(ctx context.Context, params repos.ListParams) ([]*types.Credential, int64, error)
  ArchiveCredential(ctx context.Context, credentialID uuid.UUID) error
}

type credentialService struct {
  db             *gorm.DB
  log            *logger.Logger
  credentialRepo repos.CredentialRepo
  userRepo       repos.UserRepo
  bus            EventBus
}

func NewCredentialService(
  db *gorm.DB,
  baseLog *logger.Logger,
  credentialRepo repos.CredentialRepo,
  userRepo repos.UserRepo,
  bus EventBus,
) CredentialService {
  return &credentialService{
    db:             db,
    log:            baseLog.With("service", "CredentialService"),
    credentialRepo: credentialRepo,
    userRepo:       userRepo,
    bus:            bus,
  }
}

func (s *credentialService) IssueCredential(ctx context.Context, input IssueCredentialInput) (*types.Credential, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }
  if rd.Role != types.RoleTeacher && rd.Role != types.RoleAdmin {
    return nil, apierr.Forbidden(fmt.Errorf("only teachers may issue credentials"))
  }

  var credential *types.Credential
  txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    students, err := s.userRepo.GetByIDs(ctx, tx, []uuid.UUID{input.StudentID})
    if err != nil {
      return fmt.Errorf("load student: %w", err)
    }
    if len(students) == 0 {
      return apierr.NotFound("student_not_found", fmt.Errorf("student not found"))
    }

    existing, err := s.credentialRepo.GetByStudentAndTitle(ctx, tx, input.StudentID, input.Title)
    if err != nil {
      return fmt.Errorf("check duplicate credential: %w", err)
    }
    if existing != nil {
      return apierr.Conflict("credential_exists", fmt.Errorf("credential already issued"))
    }

    now := time.Now()
    credential = &types.Credential{
      ID:          uuid.New(),
      StudentID:   input.StudentID,
      IssuerID:    rd.UserID,
      Title:       input.Title,
      Description: input.Description,
      Status:      types.CredentialStatusActive,
      IssuedAt:    now,
      CreatedAt:   now,
      UpdatedAt:   now,
    }
    if _, err := s.credentialRepo.Create(ctx, tx, []*types.Credential{credential}); err != nil {
      return fmt.Errorf("create credential: %w", err)
    }
    return nil
  })
  if txErr != nil {
    if ae, ok := txErr.(*apierr.Error); ok {
      return nil, ae
    }
    s.log.Error("IssueCredential transaction failed", "error", txErr)
    return nil, apierr.Upstream(txErr)
  }

  publishEvent(ctx, s.bus, "credential", "issue", credential.ID, rd.UserID)
  return credential, nil
}

func (s *credentialService) ListMyCredentials(ctx context.Context, params repos.ListParams) ([]*types.Credential, int64, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, 0, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }
  credentials, total, err := s.credentialRepo.ListByStudent(ctx, nil, rd.UserID, params)
  if err != nil {
    s.log.Error("ListMyCredentials failed", "error", err, "user_id", rd.UserID)
    return nil, 0, apierr.Upstream(fmt.Errorf("list credentials: %w", err))
  }
  return credentials, total, nil
}

func (s *credentialService) ArchiveCredential(ctx context.Context, credentialID uuid.UUID) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }
  if !rd.IsAdmin() {
    return apierr.Forbidden(fmt.Errorf("only admins may archive credentials"))
  }

  credentials, err := s.credentialRepo.GetByIDs(ctx, nil, []uuid.UUID{credentialID})
  if err != nil {
    s.log.Error("ArchiveCredential lookup failed", "error", err, "credential_id", credentialID)
    return apierr.Upstream(fmt.Errorf("load credential: %w", err))
  }
  if len(credentials) == 0 {
    return apierr.NotFound("credential_not_found", fmt.Errorf("credential not found"))
  }

  credential := credentials[0]
  credential.Status = types.CredentialStatusArchived
  credential.UpdatedAt = time.Now()
  if err := s.credentialRepo.Update(ctx, nil, credential); err != nil {
    s.log.Error("ArchiveCredential failed", "error", err, "credential_id", credentialID)
    return apierr.Upstream(fmt.Errorf("archive credential: %w", err))
  }

  publishEvent(ctx, s.bus, "credential", "archive", credential.ID, rd.UserID)
  return nil
}

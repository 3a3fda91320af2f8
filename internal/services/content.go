package services

import (
  "bytes"
  "context"
  "fmt"
  "time"

  "github.com/google/uuid"
  "github.com/yuin/goldmark"
  "github.com/yuin/goldmark/extension"
  "github.com/yuin/goldmark/parser"
  "gorm.io/gorm"

  "github.com/edpsychconnect/backend/internal/apierr"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/repos"
  "github.com/edpsychconnect/backend/internal/requestdata"
  "github.com/edpsychconnect/backend/internal/types"
)

type CreatePageInput struct {
  Slug    string `json:"slug" validate:"required,min=3,max=120"`
  Title   string `json:"title" validate:"required,min=3,max=200"`
  Summary string `json:"summary" validate:"max=500"`
  Body    string `json:"body"`
}

type UpdatePageInput struct {
  Title   *string `json:"title" validate:"omitempty,min=3,max=200"`
  Summary *string `json:"summary" validate:"omitempty,max=500"`
  Body    *string `json:"body"`
}

type ContentService interface {
  CreatePage(ctx context.Context, input CreatePageInput) (*types.ContentPage, error)
  UpdatePage(ctx context.Context, pageID uuid.UUID, input UpdatePageInput) (*types.ContentPage, error)
  PublishPage(ctx context.Context, pageID uuid.UUID) (*types.ContentPage, error)
  ArchivePage(ctx context.Context, pageID uuid.UUID) error
  ListPublished(ctx context.Context, params repos.ListParams) ([]*types.ContentPage, int64, error)
  GetPublishedBySlug(ctx context.Context, slug string) (*types.ContentPage, error)
  ListAll(ctx context.Context, status string, params repos.ListParams) ([]*types.ContentPage, int64, error)
  PageHistory(ctx context.Context, pageID uuid.UUID) ([]*types.ContentChange, error)
}

type contentService struct {
  db         *gorm.DB
  log        *logger.Logger
  pageRepo   repos.ContentPageRepo
  changeRepo repos.ContentChangeRepo
  bus        EventBus
  md         goldmark.Markdown
}

func NewContentService(
  db *gorm.DB,
  baseLog *logger.Logger,
  pageRepo repos.ContentPageRepo,
  changeRepo repos.ContentChangeRepo,
  bus EventBus,
) ContentService {
  md := goldmark.New(
    goldmark.WithExtensions(
      extension.GFM,
      extension.Typographer,
    ),
    goldmark.WithParserOptions(
      parser.WithAutoHeadingID(),
    ),
  )
  return &contentService{
    db:         db,
    log:        baseLog.With("service", "ContentService"),
    pageRepo:   pageRepo,
    changeRepo: changeRepo,
    bus:        bus,
    md:         md,
  }
}

func (s *contentService) renderHTML(body string) (string, error) {
  var buf bytes.Buffer
  if err := s.md.Convert([]byte(body), &buf); err != nil {
    return "", err
  }
  return buf.String(), nil
}

func requireAdmin(ctx context.Context) (*requestdata.RequestData, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthenticated(fmt.Errorf("no identity in context"))
  }
  if !rd.IsAdmin() {
    return nil, apierr.Forbidden(fmt.Errorf("admin role required"))
  }
  return rd, nil
}

func (s *contentService) CreatePage(ctx context.Context, input CreatePageInput) (*types.ContentPage, error) {
  rd, err := requireAdmin(ctx)
  if err != nil {
    return nil, err
  }

  html, err := s.renderHTML(input.Body)
  if err != nil {
    s.log.Error("CreatePage render failed", "error", err)
    return nil, apierr.Upstream(fmt.Errorf("render markdown: %w", err))
  }

  var page *types.ContentPage
  txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    existing, err := s.pageRepo.GetBySlugs(ctx, tx, []string{input.Slug})
    if err != nil {
      return fmt.Errorf("check slug: %w", err)
    }
    if len(existing) > 0 {
      return apierr.Conflict("slug_taken", fmt.Errorf("slug already in use"))
    }

    now := time.Now()
    page = &types.ContentPage{
      ID:        uuid.New(),
      AuthorID:  rd.UserID,
      Slug:      input.Slug,
      Title:     input.Title,
      Summary:   input.Summary,
      Body:      input.Body,
      HTML:      html,
      Status:    types.ContentStatusDraft,
      Version:   1,
      CreatedAt: now,
      UpdatedAt: now,
    }
    if _, err := s.pageRepo.Create(ctx, tx, []*types.ContentPage{page}); err != nil {
      return fmt.Errorf("create page: %w", err)
    }
    change := &types.ContentChange{
      ID:         uuid.New(),
      PageID:     page.ID,
      ActorID:    rd.UserID,
      ChangeType: types.ContentChangeCreate,
      CreatedAt:  now,
    }
    if _, err := s.changeRepo.Create(ctx, tx, []*types.ContentChange{change}); err != nil {
      return fmt.Errorf("record change: %w", err)
    }
    return nil
  })
  if txErr != nil {
    if ae, ok := txErr.(*apierr.Error); ok {
      return nil, ae
    }
    s.log.Error("CreatePage transaction failed", "error", txErr)
    return nil, apierr.Upstream(txErr)
  }

  publishEvent(ctx, s.bus, "content_page", "create", page.ID, rd.UserID)
  return page, nil
}

func (s *contentService) loadPage(ctx context.Context, tx *gorm.DB, pageID uuid.UUID) (*types.ContentPage, error) {
  pages, err := s.pageRepo.GetByIDs(ctx, tx, []uuid.UUID{pageID})
  if err != nil {
    return nil, apierr.Upstream(fmt.Errorf("load page: %w", err))
  }
  if len(pages) == 0 {
    return nil, apierr.NotFound("page_not_found", fmt.Errorf("content page not found"))
  }
  return pages[0], nil
}

func (s *contentService) UpdatePage(ctx context.Context, pageID uuid.UUID, input UpdatePageInput) (*types.ContentPage, error) {
  rd, err := requireAdmin(ctx)
  if err != nil {
    return nil, err
  }

  var page *types.ContentPage
  txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    var err error
    page, err = s.loadPage(ctx, tx, pageID)
    if err != nil {
      return err
    }
    if input.Title != nil {
      page.Title = *input.Title
    }
    if input.Summary != nil {
      page.Summary = *input.Summary
    }
    if input.Body != nil {
      page.Body = *input.Body
      html, rErr := s.renderHTML(*input.Body)
      if rErr != nil {
        return fmt.Errorf("render markdown: %w", rErr)
      }
      page.HTML = html
    }
    page.Version++
    page.UpdatedAt = time.Now()
    if err := s.pageRepo.Update(ctx, tx, page); err != nil {
      return fmt.Errorf("update page: %w", err)
    }
    change := &types.ContentChange{
      ID:         uuid.New(),
      PageID:     page.ID,
      ActorID:    rd.UserID,
      ChangeType: types.ContentChangeUpdate,
      CreatedAt:  time.Now(),
    }
    if _, err := s.changeRepo.Create(ctx, tx, []*types.ContentChange{change}); err != nil {
      return fmt.Errorf("record change: %w", err)
    }
    return nil
  })
  if txErr != nil {
    if ae, ok := txErr.(*apierr.Error); ok {
      return nil, ae
    }
    s.log.Error("UpdatePage transaction failed", "error", txErr, "page_id", pageID)
    return nil, apierr.Upstream(txErr)
  }

  publishEvent(ctx, s.bus, "content_page", "update", page.ID, rd.UserID)
  return page, nil
}

func (s *contentService) PublishPage(ctx context.Context, pageID uuid.UUID) (*types.ContentPage, error) {
  rd, err := requireAdmin(ctx)
  if err != nil {
    return nil, err
  }

  var page *types.ContentPage
  txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    var err error
    page, err = s.loadPage(ctx, tx, pageID)
    if err != nil {
      return err
    }
    if page.Status == types.ContentStatusArchived {
      return apierr.NotFound("page_not_found", fmt.Errorf("page archived"))
    }
    now := time.Now()
    page.Status = types.ContentStatusPublished
    page.PublishedAt = &now
    page.UpdatedAt = now
    if err := s.pageRepo.Update(ctx, tx, page); err != nil {
      return fmt.Errorf("publish page: %w", err)
    }
    change := &types.ContentChange{
      ID:         uuid.New(),
      PageID:     page.ID,
      ActorID:    rd.UserID,
      ChangeType: types.ContentChangePublish,
      CreatedAt:  now,
    }
    if _, err := s.changeRepo.Create(ctx, tx, []*types.ContentChange{change}); err != nil {
      return fmt.Errorf("record change: %w", err)
    }
    return nil
  })
  if txErr != nil {
    if ae, ok := txErr.(*apierr.Error); ok {
      return nil, ae
    }
    s.log.Error("PublishPage transaction failed", "error", txErr, "page_id", pageID)
    return nil, apierr.Upstream(txErr)
  }

  publishEvent(ctx, s.bus, "content_page", "publish", page.ID, rd.UserID)
  return page, nil
}

// ArchivePage is the delete operation: status flips to archived, the version
// stays put, and a delete change row is appended in the same transaction.
func (s *contentService) ArchivePage(ctx context.Context, pageID uuid.UUID) error {
  rd, err := requireAdmin(ctx)
  if err != nil {
    return err
  }

  var page *types.ContentPage
  txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    var err error
    page, err = s.loadPage(ctx, tx, pageID)
    if err != nil {
      return err
    }
    now := time.Now()
    page.Status = types.ContentStatusArchived
    page.UpdatedAt = now
    if err := s.pageRepo.Update(ctx, tx, page); err != nil {
      return fmt.Errorf("archive page: %w", err)
    }
    change := &types.ContentChange{
      ID:         uuid.New(),
      PageID:     page.ID,
      ActorID:    rd.UserID,
      ChangeType: types.ContentChangeDelete,
      CreatedAt:  now,
    }
    if _, err := s.changeRepo.Create(ctx, tx, []*types.ContentChange{change}); err != nil {
      return fmt.Errorf("record change: %w", err)
    }
    return nil
  })
  if txErr != nil {
    if ae, ok := txErr.(*apierr.Error); ok {
      return ae
    }
    s.log.Error("ArchivePage transaction failed", "error", txErr, "page_id", pageID)
    return apierr.Upstream(txErr)
  }

  publishEvent(ctx, s.bus, "content_page", "archive", page.ID, rd.UserID)
  return nil
}

func (s *contentService) ListPublished(ctx context.Context, params repos.ListParams) ([]*types.ContentPage, int64, error) {
  pages, total, err := s.pageRepo.List(ctx, nil, repos.ContentFilter{Status: types.ContentStatusPublished}, params)
  if err != nil {
    s.log.Error("ListPublished failed", "error", err)
    return nil, 0, apierr.Upstream(fmt.Errorf("list pages: %w", err))
  }
  return pages, total, nil
}

func (s *contentService) GetPublishedBySlug(ctx context.Context, slug string) (*types.ContentPage, error) {
  pages, err := s.pageRepo.GetBySlugs(ctx, nil, []string{slug})
  if err != nil {
    s.log.Error("GetPublishedBySlug failed", "error", err, "slug", slug)
    return nil, apierr.Upstream(fmt.Errorf("load page: %w", err))
  }
  if len(pages) == 0 || pages[0].Status != types.ContentStatusPublished {
    return nil, apierr.NotFound("page_not_found", fmt.Errorf("content page not found"))
  }
  return pages[0], nil
}

func (s *contentService) ListAll(ctx context.Context, status string, params repos.ListParams) ([]*types.ContentPage, int64, error) {
  if _, err := requireAdmin(ctx); err != nil {
    return nil, 0, err
  }
  pages, total, err := s.pageRepo.List(ctx, nil, repos.ContentFilter{Status: status}, params)
  if err != nil {
    s.log.Error("ListAll failed", "error", err)
    return nil, 0, apierr.Upstream(fmt.Errorf("list pages: %w", err))
  }
  return pages, total, nil
}

func (s *contentService) PageHistory(ctx context.Context, pageID uuid.UUID) ([]*types.ContentChange, error) {
  if _, err := requireAdmin(ctx); err != nil {
    return nil, err
  }
  if _, err := s.loadPage(ctx, nil, pageID); err != nil {
    return nil, err
  }
  changes, err := s.changeRepo.ListByPage(ctx, nil, pageID)
  if err != nil {
    s.log.Error("PageHistory failed", "error", err, "page_id", pageID)
    return nil, apierr.Upstream(fmt.Errorf("list changes: %w", err))
  }
  return changes, nil
}

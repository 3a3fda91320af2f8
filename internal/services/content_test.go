package services

import (
  "strings"
  "testing"

  "github.com/edpsychconnect/backend/internal/apierr"
  "github.com/edpsychconnect/backend/internal/repos"
  "github.com/edpsychconnect/backend/internal/types"
)

func newContentService(t *testing.T) (ContentService, *testFixture) {
  t.Helper()
  f := newFixture(t)
  svc := NewContentService(f.db, f.log, f.pageRepo, f.changeRepo, nil)
  return svc, f
}

func TestCreatePageRendersMarkdownAndLogsChange(t *testing.T) {
  svc, f := newContentService(t)
  admin := seedUser(t, f.db, types.RoleAdmin)
  ctx := ctxAs(admin.ID, types.RoleAdmin)

  page, err := svc.CreatePage(ctx, CreatePageInput{
    Slug:  "welcome",
    Title: "Welcome",
    Body:  "# Hello\n\nSome **bold** text.",
  })
  if err != nil {
    t.Fatalf("CreatePage failed: %v", err)
  }
  if page.Status != types.ContentStatusDraft {
    t.Fatalf("expected draft, got %q", page.Status)
  }
  if page.Version != 1 {
    t.Fatalf("expected version 1, got %d", page.Version)
  }
  if !strings.Contains(page.HTML, "<strong>bold</strong>") {
    t.Fatalf("markdown not rendered: %q", page.HTML)
  }

  changes, err := svc.PageHistory(ctx, page.ID)
  if err != nil {
    t.Fatalf("PageHistory failed: %v", err)
  }
  if len(changes) != 1 || changes[0].ChangeType != types.ContentChangeCreate {
    t.Fatalf("expected a single create change, got %+v", changes)
  }
}

func TestCreatePageRequiresAdmin(t *testing.T) {
  svc, f := newContentService(t)
  teacher := seedUser(t, f.db, types.RoleTeacher)

  _, err := svc.CreatePage(ctxAs(teacher.ID, types.RoleTeacher), CreatePageInput{
    Slug:  "nope",
    Title: "Nope",
  })
  ae, ok := err.(*apierr.Error)
  if !ok || ae.Status != 403 {
    t.Fatalf("expected 403, got %v", err)
  }
}

func TestCreatePageDuplicateSlugConflicts(t *testing.T) {
  svc, f := newContentService(t)
  admin := seedUser(t, f.db, types.RoleAdmin)
  ctx := ctxAs(admin.ID, types.RoleAdmin)

  if _, err := svc.CreatePage(ctx, CreatePageInput{Slug: "about", Title: "About"}); err != nil {
    t.Fatalf("first CreatePage failed: %v", err)
  }
  _, err := svc.CreatePage(ctx, CreatePageInput{Slug: "about", Title: "About again"})
  ae, ok := err.(*apierr.Error)
  if !ok || ae.Status != 409 {
    t.Fatalf("expected 409 for duplicate slug, got %v", err)
  }
}

func TestUpdatePageBumpsVersionAndRerenders(t *testing.T) {
  svc, f := newContentService(t)
  admin := seedUser(t, f.db, types.RoleAdmin)
  ctx := ctxAs(admin.ID, types.RoleAdmin)

  page, err := svc.CreatePage(ctx, CreatePageInput{Slug: "guide", Title: "Guide", Body: "v1"})
  if err != nil {
    t.Fatalf("CreatePage failed: %v", err)
  }
  body := "v2 with *emphasis*"
  updated, err := svc.UpdatePage(ctx, page.ID, UpdatePageInput{Body: &body})
  if err != nil {
    t.Fatalf("UpdatePage failed: %v", err)
  }
  if updated.Version != 2 {
    t.Fatalf("expected version 2, got %d", updated.Version)
  }
  if !strings.Contains(updated.HTML, "<em>emphasis</em>") {
    t.Fatalf("body change not re-rendered: %q", updated.HTML)
  }
}

func TestPublishThenSlugLookup(t *testing.T) {
  svc, f := newContentService(t)
  admin := seedUser(t, f.db, types.RoleAdmin)
  ctx := ctxAs(admin.ID, types.RoleAdmin)

  page, err := svc.CreatePage(ctx, CreatePageInput{Slug: "launch", Title: "Launch"})
  if err != nil {
    t.Fatalf("CreatePage failed: %v", err)
  }

  // Draft pages are invisible on the public path.
  if _, err := svc.GetPublishedBySlug(ctx, "launch"); err == nil {
    t.Fatalf("draft page should not resolve publicly")
  }

  published, err := svc.PublishPage(ctx, page.ID)
  if err != nil {
    t.Fatalf("PublishPage failed: %v", err)
  }
  if published.Status != types.ContentStatusPublished || published.PublishedAt == nil {
    t.Fatalf("publish did not set status and timestamp: %+v", published)
  }

  got, err := svc.GetPublishedBySlug(ctx, "launch")
  if err != nil {
    t.Fatalf("GetPublishedBySlug failed: %v", err)
  }
  if got.ID != page.ID {
    t.Fatalf("slug lookup returned the wrong page")
  }
}

func TestArchiveKeepsVersionAndAppendsDeleteChange(t *testing.T) {
  svc, f := newContentService(t)
  admin := seedUser(t, f.db, types.RoleAdmin)
  ctx := ctxAs(admin.ID, types.RoleAdmin)

  page, err := svc.CreatePage(ctx, CreatePageInput{Slug: "old-news", Title: "Old news", Body: "x"})
  if err != nil {
    t.Fatalf("CreatePage failed: %v", err)
  }
  body := "y"
  if _, err := svc.UpdatePage(ctx, page.ID, UpdatePageInput{Body: &body}); err != nil {
    t.Fatalf("UpdatePage failed: %v", err)
  }
  if err := svc.ArchivePage(ctx, page.ID); err != nil {
    t.Fatalf("ArchivePage failed: %v", err)
  }

  pages, _, err := svc.ListAll(ctx, types.ContentStatusArchived, repos.ListParams{})
  if err != nil {
    t.Fatalf("ListAll failed: %v", err)
  }
  if len(pages) != 1 {
    t.Fatalf("expected one archived page, got %d", len(pages))
  }
  if pages[0].Version != 2 {
    t.Fatalf("archive must not change version, got %d", pages[0].Version)
  }

  changes, err := svc.PageHistory(ctx, page.ID)
  if err != nil {
    t.Fatalf("PageHistory failed: %v", err)
  }
  if len(changes) != 3 {
    t.Fatalf("expected create+update+delete history, got %d rows", len(changes))
  }
  deletes := 0
  for _, ch := range changes {
    if ch.ChangeType == types.ContentChangeDelete {
      deletes++
    }
  }
  if deletes != 1 {
    t.Fatalf("expected exactly one delete change, got %d", deletes)
  }
}

package services

import (
  "testing"

  "github.com/edpsychconnect/backend/internal/apierr"
  "github.com/edpsychconnect/backend/internal/types"
  "github.com/google/uuid"
)

func newProgressFixture(t *testing.T) (ProgressService, EnrollmentService, *testFixture) {
  t.Helper()
  f := newFixture(t)
  progress := NewProgressService(f.db, f.log, f.moduleRepo, f.enrollmentRepo, f.progressRepo, nil)
  enrollment := NewEnrollmentService(f.db, f.log, f.courseRepo, f.enrollmentRepo, nil)
  return progress, enrollment, f
}

func TestUpdateProgressRecomputesAggregate(t *testing.T) {
  progressSvc, enrollSvc, f := newProgressFixture(t)
  teacher := seedUser(t, f.db, types.RoleTeacher)
  student := seedUser(t, f.db, types.RoleStudent)
  course := seedCourse(t, f.db, teacher.ID)
  m1 := seedModule(t, f.db, course.ID, 0)
  seedModule(t, f.db, course.ID, 1)
  ctx := ctxAs(student.ID, types.RoleStudent)

  if _, err := enrollSvc.Enroll(ctx, course.ID); err != nil {
    t.Fatalf("Enroll failed: %v", err)
  }

  result, err := progressSvc.UpdateModuleProgress(ctx, m1.ID, UpdateProgressInput{Progress: 50})
  if err != nil {
    t.Fatalf("UpdateModuleProgress failed: %v", err)
  }
  // round(mean(50, 0)) = 25
  if result.Enrollment.Progress != 25 {
    t.Fatalf("expected aggregate 25, got %d", result.Enrollment.Progress)
  }
  if result.Enrollment.Status != types.EnrollmentStatusInProgress {
    t.Fatalf("expected status in_progress, got %q", result.Enrollment.Status)
  }
  if result.ModuleProgress.Completed {
    t.Fatalf("module at 50 should not be completed")
  }
}

func TestUpdateProgressCompletesCourse(t *testing.T) {
  progressSvc, enrollSvc, f := newProgressFixture(t)
  teacher := seedUser(t, f.db, types.RoleTeacher)
  student := seedUser(t, f.db, types.RoleStudent)
  course := seedCourse(t, f.db, teacher.ID)
  m1 := seedModule(t, f.db, course.ID, 0)
  m2 := seedModule(t, f.db, course.ID, 1)
  ctx := ctxAs(student.ID, types.RoleStudent)

  if _, err := enrollSvc.Enroll(ctx, course.ID); err != nil {
    t.Fatalf("Enroll failed: %v", err)
  }
  if _, err := progressSvc.UpdateModuleProgress(ctx, m1.ID, UpdateProgressInput{Progress: 100}); err != nil {
    t.Fatalf("first update failed: %v", err)
  }
  result, err := progressSvc.UpdateModuleProgress(ctx, m2.ID, UpdateProgressInput{Progress: 100})
  if err != nil {
    t.Fatalf("second update failed: %v", err)
  }
  if result.Enrollment.Progress != 100 {
    t.Fatalf("expected aggregate 100, got %d", result.Enrollment.Progress)
  }
  if result.Enrollment.Status != types.EnrollmentStatusCompleted {
    t.Fatalf("expected status completed, got %q", result.Enrollment.Status)
  }
  if !result.ModuleProgress.Completed {
    t.Fatalf("module at 100 should be completed")
  }
}

func TestUpdateProgressUpsertsExistingRow(t *testing.T) {
  progressSvc, enrollSvc, f := newProgressFixture(t)
  teacher := seedUser(t, f.db, types.RoleTeacher)
  student := seedUser(t, f.db, types.RoleStudent)
  course := seedCourse(t, f.db, teacher.ID)
  module := seedModule(t, f.db, course.ID, 0)
  ctx := ctxAs(student.ID, types.RoleStudent)

  if _, err := enrollSvc.Enroll(ctx, course.ID); err != nil {
    t.Fatalf("Enroll failed: %v", err)
  }
  first, err := progressSvc.UpdateModuleProgress(ctx, module.ID, UpdateProgressInput{Progress: 30})
  if err != nil {
    t.Fatalf("first update failed: %v", err)
  }
  second, err := progressSvc.UpdateModuleProgress(ctx, module.ID, UpdateProgressInput{Progress: 80})
  if err != nil {
    t.Fatalf("second update failed: %v", err)
  }
  if second.ModuleProgress.ID != first.ModuleProgress.ID {
    t.Fatalf("second update created a new row instead of updating")
  }
  if second.ModuleProgress.Progress != 80 {
    t.Fatalf("expected progress 80, got %d", second.ModuleProgress.Progress)
  }
  var count int64
  if err := f.db.Model(&types.ModuleProgress{}).Count(&count).Error; err != nil {
    t.Fatalf("count rows: %v", err)
  }
  if count != 1 {
    t.Fatalf("expected exactly one progress row, got %d", count)
  }
}

func TestUpdateProgressWithoutEnrollmentIs404(t *testing.T) {
  progressSvc, _, f := newProgressFixture(t)
  teacher := seedUser(t, f.db, types.RoleTeacher)
  student := seedUser(t, f.db, types.RoleStudent)
  course := seedCourse(t, f.db, teacher.ID)
  module := seedModule(t, f.db, course.ID, 0)

  _, err := progressSvc.UpdateModuleProgress(ctxAs(student.ID, types.RoleStudent), module.ID, UpdateProgressInput{Progress: 10})
  ae, ok := err.(*apierr.Error)
  if !ok || ae.Status != 404 || ae.Code != "enrollment_not_found" {
    t.Fatalf("expected enrollment_not_found 404, got %v", err)
  }
}

func TestUpdateProgressUnknownModuleIs404(t *testing.T) {
  progressSvc, _, f := newProgressFixture(t)
  student := seedUser(t, f.db, types.RoleStudent)

  _, err := progressSvc.UpdateModuleProgress(ctxAs(student.ID, types.RoleStudent), uuid.New(), UpdateProgressInput{Progress: 10})
  ae, ok := err.(*apierr.Error)
  if !ok || ae.Status != 404 {
    t.Fatalf("expected 404, got %v", err)
  }
}

func TestAggregateProgressRounding(t *testing.T) {
  modules := []*types.CourseModule{
    {ID: uuid.New()},
    {ID: uuid.New()},
    {ID: uuid.New()},
  }
  rows := []*types.ModuleProgress{
    {ModuleID: modules[0].ID, Progress: 100},
    {ModuleID: modules[1].ID, Progress: 1},
  }
  // mean(100, 1, 0) = 33.67 -> 34
  if got := aggregateProgress(modules, rows); got != 34 {
    t.Fatalf("expected 34, got %d", got)
  }
  if got := aggregateProgress(nil, rows); got != 0 {
    t.Fatalf("expected 0 for course without modules, got %d", got)
  }
}

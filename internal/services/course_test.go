package services

import (
  "testing"

  "github.com/edpsychconnect/backend/internal/apierr"
  "github.com/edpsychconnect/backend/internal/repos"
  "github.com/edpsychconnect/backend/internal/types"
)

func newCourseService(t *testing.T) (CourseService, ModuleService, *testFixture) {
  t.Helper()
  f := newFixture(t)
  courses := NewCourseService(f.db, f.log, f.courseRepo, nil)
  modules := NewModuleService(f.db, f.log, f.courseRepo, f.moduleRepo, nil)
  return courses, modules, f
}

func TestCreateCourseRequiresTeacherRole(t *testing.T) {
  svc, _, f := newCourseService(t)
  student := seedUser(t, f.db, types.RoleStudent)

  _, err := svc.CreateCourse(ctxAs(student.ID, types.RoleStudent), CreateCourseInput{Title: "Student course"})
  ae, ok := err.(*apierr.Error)
  if !ok || ae.Status != 403 {
    t.Fatalf("expected 403 for student, got %v", err)
  }
}

func TestCreateCourseSetsOwnerAndDefaults(t *testing.T) {
  svc, _, f := newCourseService(t)
  teacher := seedUser(t, f.db, types.RoleTeacher)

  course, err := svc.CreateCourse(ctxAs(teacher.ID, types.RoleTeacher), CreateCourseInput{
    Title:   "Attention and Focus",
    Subject: "psychology",
    Level:   "secondary",
  })
  if err != nil {
    t.Fatalf("CreateCourse failed: %v", err)
  }
  if course.OwnerID != teacher.ID {
    t.Fatalf("owner not set to creator")
  }
  if course.Status != types.CourseStatusActive {
    t.Fatalf("expected active status, got %q", course.Status)
  }
  if course.Published {
    t.Fatalf("new course should start unpublished")
  }
}

func TestUpdateCourseOwnerOnly(t *testing.T) {
  svc, _, f := newCourseService(t)
  owner := seedUser(t, f.db, types.RoleTeacher)
  other := seedUser(t, f.db, types.RoleTeacher)
  admin := seedUser(t, f.db, types.RoleAdmin)

  course, err := svc.CreateCourse(ctxAs(owner.ID, types.RoleTeacher), CreateCourseInput{Title: "Owned course"})
  if err != nil {
    t.Fatalf("CreateCourse failed: %v", err)
  }

  title := "Renamed"
  _, err = svc.UpdateCourse(ctxAs(other.ID, types.RoleTeacher), course.ID, UpdateCourseInput{Title: &title})
  ae, ok := err.(*apierr.Error)
  if !ok || ae.Status != 403 {
    t.Fatalf("expected 403 for non-owner teacher, got %v", err)
  }

  updated, err := svc.UpdateCourse(ctxAs(admin.ID, types.RoleAdmin), course.ID, UpdateCourseInput{Title: &title})
  if err != nil {
    t.Fatalf("admin update failed: %v", err)
  }
  if updated.Title != "Renamed" {
    t.Fatalf("partial update not applied: %q", updated.Title)
  }
  if updated.Subject != course.Subject {
    t.Fatalf("unset fields must be untouched")
  }
}

func TestArchiveCourseAdminOnlyAndHidesFromList(t *testing.T) {
  svc, _, f := newCourseService(t)
  owner := seedUser(t, f.db, types.RoleTeacher)
  admin := seedUser(t, f.db, types.RoleAdmin)

  course, err := svc.CreateCourse(ctxAs(owner.ID, types.RoleTeacher), CreateCourseInput{Title: "Short lived"})
  if err != nil {
    t.Fatalf("CreateCourse failed: %v", err)
  }

  if err := svc.ArchiveCourse(ctxAs(owner.ID, types.RoleTeacher), course.ID); err == nil {
    t.Fatalf("owner teacher must not archive")
  }
  if err := svc.ArchiveCourse(ctxAs(admin.ID, types.RoleAdmin), course.ID); err != nil {
    t.Fatalf("admin archive failed: %v", err)
  }

  _, total, err := svc.ListCourses(ctxAs(owner.ID, types.RoleTeacher), "", repos.ListParams{})
  if err != nil {
    t.Fatalf("ListCourses failed: %v", err)
  }
  if total != 0 {
    t.Fatalf("archived course still listed, total=%d", total)
  }
}

func TestAddModuleKeepsCourseOrder(t *testing.T) {
  svc, modules, f := newCourseService(t)
  owner := seedUser(t, f.db, types.RoleTeacher)
  ctx := ctxAs(owner.ID, types.RoleTeacher)

  course, err := svc.CreateCourse(ctx, CreateCourseInput{Title: "Ordered course"})
  if err != nil {
    t.Fatalf("CreateCourse failed: %v", err)
  }
  if _, err := modules.AddModule(ctx, course.ID, CreateModuleInput{Index: 1, Title: "Second module"}); err != nil {
    t.Fatalf("AddModule failed: %v", err)
  }
  if _, err := modules.AddModule(ctx, course.ID, CreateModuleInput{Index: 0, Title: "First module"}); err != nil {
    t.Fatalf("AddModule failed: %v", err)
  }

  got, err := modules.ListModulesForCourse(ctx, course.ID)
  if err != nil {
    t.Fatalf("ListModulesForCourse failed: %v", err)
  }
  if len(got) != 2 || got[0].Index != 0 || got[1].Index != 1 {
    t.Fatalf("modules not ordered by index: %+v", got)
  }
}

func TestAddModuleNonOwnerForbidden(t *testing.T) {
  svc, modules, f := newCourseService(t)
  owner := seedUser(t, f.db, types.RoleTeacher)
  other := seedUser(t, f.db, types.RoleTeacher)

  course, err := svc.CreateCourse(ctxAs(owner.ID, types.RoleTeacher), CreateCourseInput{Title: "Locked course"})
  if err != nil {
    t.Fatalf("CreateCourse failed: %v", err)
  }
  _, err = modules.AddModule(ctxAs(other.ID, types.RoleTeacher), course.ID, CreateModuleInput{Title: "Sneaky module"})
  ae, ok := err.(*apierr.Error)
  if !ok || ae.Status != 403 {
    t.Fatalf("expected 403, got %v", err)
  }
}

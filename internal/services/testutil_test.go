package services

import (
  "context"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"
  gormlogger "gorm.io/gorm/logger"

  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/repos"
  "github.com/edpsychconnect/backend/internal/requestdata"
  "github.com/edpsychconnect/backend/internal/types"
)

// testSchema mirrors the production models without the postgres-only column
// defaults; IDs are always assigned in Go so no uuid function is needed.
var testSchema = []string{
  `CREATE TABLE user (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    password TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT 'student',
    created_at DATETIME,
    updated_at DATETIME,
    deleted_at DATETIME
  )`,
  `CREATE TABLE user_token (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    access_token TEXT NOT NULL,
    refresh_token TEXT NOT NULL,
    expires_at DATETIME,
    created_at DATETIME
  )`,
  `CREATE TABLE subscription (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL UNIQUE,
    plan_id TEXT NOT NULL DEFAULT 'free',
    status TEXT NOT NULL DEFAULT 'active',
    provider TEXT,
    provider_customer_id TEXT,
    provider_subscription_id TEXT,
    current_period_end DATETIME,
    created_at DATETIME,
    updated_at DATETIME
  )`,
  `CREATE TABLE course (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT,
    subject TEXT,
    level TEXT,
    status TEXT NOT NULL DEFAULT 'active',
    published INTEGER NOT NULL DEFAULT 0,
    metadata TEXT,
    created_at DATETIME,
    updated_at DATETIME,
    deleted_at DATETIME
  )`,
  `CREATE TABLE course_module (
    id TEXT PRIMARY KEY,
    course_id TEXT NOT NULL,
    "index" INTEGER NOT NULL DEFAULT 0,
    title TEXT NOT NULL,
    description TEXT,
    body TEXT,
    created_at DATETIME,
    updated_at DATETIME,
    deleted_at DATETIME
  )`,
  `CREATE TABLE enrollment (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    course_id TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'not_started',
    progress INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME,
    updated_at DATETIME,
    UNIQUE (user_id, course_id)
  )`,
  `CREATE TABLE module_progress (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    module_id TEXT NOT NULL,
    course_id TEXT NOT NULL,
    progress INTEGER NOT NULL DEFAULT 0,
    completed INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME,
    updated_at DATETIME,
    UNIQUE (user_id, module_id)
  )`,
  `CREATE TABLE goal (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    teacher_id TEXT,
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL DEFAULT 'not_started',
    target_date DATETIME,
    metadata TEXT,
    created_at DATETIME,
    updated_at DATETIME
  )`,
  `CREATE TABLE goal_comment (
    id TEXT PRIMARY KEY,
    goal_id TEXT NOT NULL,
    author_id TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at DATETIME
  )`,
  `CREATE TABLE content_page (
    id TEXT PRIMARY KEY,
    author_id TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    summary TEXT,
    body TEXT,
    html TEXT,
    status TEXT NOT NULL DEFAULT 'draft',
    version INTEGER NOT NULL DEFAULT 1,
    published_at DATETIME,
    created_at DATETIME,
    updated_at DATETIME
  )`,
  `CREATE TABLE content_change (
    id TEXT PRIMARY KEY,
    page_id TEXT NOT NULL,
    actor_id TEXT NOT NULL,
    change_type TEXT NOT NULL,
    note TEXT,
    created_at DATETIME
  )`,
  `CREATE TABLE credential (
    id TEXT PRIMARY KEY,
    student_id TEXT NOT NULL,
    issuer_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL DEFAULT 'active',
    metadata TEXT,
    issued_at DATETIME,
    created_at DATETIME,
    updated_at DATETIME
  )`,
}

func newTestDB(t *testing.T) *gorm.DB {
  t.Helper()
  dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
  db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
    Logger: gormlogger.Default.LogMode(gormlogger.Silent),
  })
  if err != nil {
    t.Fatalf("open sqlite: %v", err)
  }
  for _, stmt := range testSchema {
    if err := db.Exec(stmt).Error; err != nil {
      t.Fatalf("create schema: %v", err)
    }
  }
  t.Cleanup(func() {
    sqlDB, err := db.DB()
    if err == nil {
      sqlDB.Close()
    }
  })
  return db
}

func newTestLogger(t *testing.T) *logger.Logger {
  t.Helper()
  log, err := logger.New("development")
  if err != nil {
    t.Fatalf("init logger: %v", err)
  }
  return log
}

func ctxAs(userID uuid.UUID, role string) context.Context {
  return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
    UserID: userID,
    Role:   role,
  })
}

func seedUser(t *testing.T, db *gorm.DB, role string) *types.User {
  t.Helper()
  now := time.Now()
  user := &types.User{
    ID:        uuid.New(),
    Email:     uuid.NewString() + "@example.com",
    FirstName: "Test",
    LastName:  "User",
    Password:  "hashed",
    Role:      role,
    CreatedAt: now,
    UpdatedAt: now,
  }
  if err := db.Create(user).Error; err != nil {
    t.Fatalf("seed user: %v", err)
  }
  return user
}

func seedCourse(t *testing.T, db *gorm.DB, ownerID uuid.UUID) *types.Course {
  t.Helper()
  now := time.Now()
  course := &types.Course{
    ID:        uuid.New(),
    OwnerID:   ownerID,
    Title:     "Working Memory Foundations",
    Subject:   "psychology",
    Status:    types.CourseStatusActive,
    CreatedAt: now,
    UpdatedAt: now,
  }
  if err := db.Create(course).Error; err != nil {
    t.Fatalf("seed course: %v", err)
  }
  return course
}

func seedModule(t *testing.T, db *gorm.DB, courseID uuid.UUID, index int) *types.CourseModule {
  t.Helper()
  now := time.Now()
  module := &types.CourseModule{
    ID:        uuid.New(),
    CourseID:  courseID,
    Index:     index,
    Title:     "Module",
    CreatedAt: now,
    UpdatedAt: now,
  }
  if err := db.Create(module).Error; err != nil {
    t.Fatalf("seed module: %v", err)
  }
  return module
}

func seedSubscription(t *testing.T, db *gorm.DB, userID uuid.UUID, planID string) *types.Subscription {
  t.Helper()
  now := time.Now()
  sub := &types.Subscription{
    ID:        uuid.New(),
    UserID:    userID,
    PlanID:    planID,
    Status:    types.SubscriptionStatusActive,
    CreatedAt: now,
    UpdatedAt: now,
  }
  if err := db.Create(sub).Error; err != nil {
    t.Fatalf("seed subscription: %v", err)
  }
  return sub
}

type testFixture struct {
  db               *gorm.DB
  log              *logger.Logger
  userRepo         repos.UserRepo
  userTokenRepo    repos.UserTokenRepo
  subscriptionRepo repos.SubscriptionRepo
  courseRepo       repos.CourseRepo
  moduleRepo       repos.CourseModuleRepo
  enrollmentRepo   repos.EnrollmentRepo
  progressRepo     repos.ModuleProgressRepo
  goalRepo         repos.GoalRepo
  commentRepo      repos.GoalCommentRepo
  pageRepo         repos.ContentPageRepo
  changeRepo       repos.ContentChangeRepo
  credentialRepo   repos.CredentialRepo
}

func newFixture(t *testing.T) *testFixture {
  t.Helper()
  db := newTestDB(t)
  log := newTestLogger(t)
  return &testFixture{
    db:               db,
    log:              log,
    userRepo:         repos.NewUserRepo(db, log),
    userTokenRepo:    repos.NewUserTokenRepo(db, log),
    subscriptionRepo: repos.NewSubscriptionRepo(db, log),
    courseRepo:       repos.NewCourseRepo(db, log),
    moduleRepo:       repos.NewCourseModuleRepo(db, log),
    enrollmentRepo:   repos.NewEnrollmentRepo(db, log),
    progressRepo:     repos.NewModuleProgressRepo(db, log),
    goalRepo:         repos.NewGoalRepo(db, log),
    commentRepo:      repos.NewGoalCommentRepo(db, log),
    pageRepo:         repos.NewContentPageRepo(db, log),
    changeRepo:       repos.NewContentChangeRepo(db, log),
    credentialRepo:   repos.NewCredentialRepo(db, log),
  }
}

package db

import (
  "fmt"

  "gorm.io/driver/postgres"
  "gorm.io/gorm"

  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/types"
  "github.com/edpsychconnect/backend/internal/utils"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "edpsychconnect", log)
  postgresSSLMode := utils.GetEnv("POSTGRES_SSLMODE", "disable", log)

  dsn := fmt.Sprintf(
    "postgres://%s:%s@%s:%s/%s?sslmode=%s",
    postgresUser, postgresPassword, postgresHost, postgresPort, postgresName, postgresSSLMode,
  )

  serviceLog.Info("Connecting to Postgres...")
  gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    serviceLog.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("connect to postgres: %w", err)
  }

  if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
    serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
    return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
  }

  return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  err := s.db.AutoMigrate(
    &types.User{},
    &types.UserToken{},
    &types.Subscription{},
    &types.Course{},
    &types.CourseModule{},
    &types.Enrollment{},
    &types.ModuleProgress{},
    &types.Goal{},
    &types.GoalComment{},
    &types.ContentPage{},
    &types.ContentChange{},
    &types.Credential{},
  )
  if err != nil {
    s.log.Error("Auto migration failed", "error", err)
    return fmt.Errorf("auto migrate: %w", err)
  }
  s.log.Info("Auto migration complete")
  return nil
}

package handlers

import (
  "github.com/gin-gonic/gin"
  "gorm.io/gorm"

  "github.com/edpsychconnect/backend/internal/logger"
)

type HealthcheckHandler struct {
  log *logger.Logger
  db  *gorm.DB
}

func NewHealthcheckHandler(log *logger.Logger, db *gorm.DB) *HealthcheckHandler {
  return &HealthcheckHandler{
    log: log.With("handler", "HealthcheckHandler"),
    db:  db,
  }
}

func (h *HealthcheckHandler) Healthcheck(c *gin.Context) {
  status := "ok"
  if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
    status = "degraded"
  }
  RespondOK(c, gin.H{"status": status})
}

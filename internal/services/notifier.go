package services

import (
  "context"
  "encoding/json"
  "fmt"
  "os"
  "strings"
  "time"

  "github.com/google/uuid"
  goredis "github.com/redis/go-redis/v9"

  "github.com/edpsychconnect/backend/internal/logger"
)

// Event is the audit fan-out record published after a successful mutation.
// It is informational only: publish failures are logged, never surfaced to
// the caller, and nothing reads these events back in-process.
type Event struct {
  Entity  string    `json:"entity"`
  Action  string    `json:"action"`
  ID      uuid.UUID `json:"id"`
  ActorID uuid.UUID `json:"actor_id"`
}

type EventBus interface {
  Publish(ctx context.Context, evt Event)
  Close() error
}

type redisEventBus struct {
  log     *logger.Logger
  rdb     *goredis.Client
  channel string
}

// NewRedisEventBus connects to REDIS_ADDR. Callers treat a nil bus as a
// no-op, so boot can continue without redis in development.
func NewRedisEventBus(log *logger.Logger) (EventBus, error) {
  if log == nil {
    return nil, fmt.Errorf("logger required")
  }

  addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
  if addr == "" {
    return nil, fmt.Errorf("missing REDIS_ADDR")
  }
  ch := strings.TrimSpace(os.Getenv("REDIS_CHANNEL"))
  if ch == "" {
    ch = "events"
  }

  rdb := goredis.NewClient(&goredis.Options{
    Addr:        addr,
    DialTimeout: 5 * time.Second,
  })

  ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
  defer cancel()
  if err := rdb.Ping(ctx).Err(); err != nil {
    _ = rdb.Close()
    return nil, fmt.Errorf("redis ping: %w", err)
  }

  return &redisEventBus{
    log:     log.With("service", "RedisEventBus"),
    rdb:     rdb,
    channel: ch,
  }, nil
}

func (b *redisEventBus) Publish(ctx context.Context, evt Event) {
  if b == nil || b.rdb == nil {
    return
  }
  raw, err := json.Marshal(evt)
  if err != nil {
    b.log.Warn("Failed to marshal event", "error", err)
    return
  }
  if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
    b.log.Warn("Failed to publish event", "error", err, "entity", evt.Entity, "action", evt.Action)
  }
}

func (b *redisEventBus) Close() error {
  if b == nil || b.rdb == nil {
    return nil
  }
  return b.rdb.Close()
}

// publishEvent is the nil-safe helper services call after a committed write.
func publishEvent(ctx context.Context, bus EventBus, entity, action string, id, actorID uuid.UUID) {
  if bus == nil {
    return
  }
  bus.Publish(ctx, Event{Entity: entity, Action: action, ID: id, ActorID: actorID})
}

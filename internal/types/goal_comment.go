package types

import (
	"time"

	"github.com/google/uuid"
)

// GoalComment rows are append-only: created through the comment endpoint,
// never updated or deleted.
type GoalComment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GoalID    uuid.UUID `gorm:"type:uuid;not null;index" json:"goal_id"`
	Goal      *Goal     `gorm:"constraint:OnDelete:CASCADE;foreignKey:GoalID;references:ID" json:"goal,omitempty"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Body      string    `gorm:"column:body;not null" json:"body"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (GoalComment) TableName() string { return "goal_comment" }

package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	ContentChangeCreate  = "create"
	ContentChangeUpdate  = "update"
	ContentChangePublish = "publish"
	ContentChangeDelete  = "delete"
)

// ContentChange is the append-only change history for a content page.
type ContentChange struct {
	ID         uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PageID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"page_id"`
	Page       *ContentPage `gorm:"constraint:OnDelete:CASCADE;foreignKey:PageID;references:ID" json:"page,omitempty"`
	ActorID    uuid.UUID    `gorm:"type:uuid;not null" json:"actor_id"`
	ChangeType string       `gorm:"column:change_type;not null" json:"change_type"`
	Note       string       `gorm:"column:note" json:"note"`
	CreatedAt  time.Time    `gorm:"not null;default:now()" json:"created_at"`
}

func (ContentChange) TableName() string { return "content_change" }

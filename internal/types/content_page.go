package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	ContentStatusDraft     = "draft"
	ContentStatusPublished = "published"
	ContentStatusArchived  = "archived"
)

// ContentPage is a blog/CMS record. Body is markdown; HTML is the rendered
// form, regenerated whenever Body changes. Deleting a page flips Status to
// archived and leaves Version untouched.
type ContentPage struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AuthorID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Author      *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	Slug        string     `gorm:"column:slug;uniqueIndex;not null" json:"slug"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Summary     string     `gorm:"column:summary" json:"summary"`
	Body        string     `gorm:"column:body" json:"body"`
	HTML        string     `gorm:"column:html" json:"html"`
	Status      string     `gorm:"column:status;not null;default:draft" json:"status"`
	Version     int        `gorm:"column:version;not null;default:1" json:"version"`
	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (ContentPage) TableName() string { return "content_page" }

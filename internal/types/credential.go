package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	CredentialStatusActive   = "active"
	CredentialStatusArchived = "archived"
)

type Credential struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"student_id"`
	Student     *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	IssuerID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"issuer_id"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Description string         `gorm:"column:description" json:"description"`
	Status      string         `gorm:"column:status;not null;default:active" json:"status"`
	Metadata    datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	IssuedAt    time.Time      `gorm:"column:issued_at;not null;default:now()" json:"issued_at"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Credential) TableName() string { return "credential" }

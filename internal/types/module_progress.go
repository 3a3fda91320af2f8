package types

import (
	"time"

	"github.com/google/uuid"
)

type ModuleProgress struct {
	ID        uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_module_progress_user_module" json:"user_id"`
	User      *User         `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ModuleID  uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_module_progress_user_module" json:"module_id"`
	Module    *CourseModule `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	CourseID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"course_id"`
	Progress  int           `gorm:"column:progress;not null;default:0" json:"progress"`
	Completed bool          `gorm:"column:completed;not null;default:false" json:"completed"`
	CreatedAt time.Time     `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null;default:now()" json:"updated_at"`
}

func (ModuleProgress) TableName() string { return "module_progress" }

package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	EnrollmentStatusNotStarted = "not_started"
	EnrollmentStatusInProgress = "in_progress"
	EnrollmentStatusCompleted  = "completed"
	EnrollmentStatusOnHold     = "on_hold"
)

// Enrollment links a user to a course. Progress is an aggregate: it always
// equals round(mean(module progress)) over the course's modules for this
// user, and is only written inside the same transaction as the module
// progress change that triggered it.
type Enrollment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course" json:"course_id"`
	Course    *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Status    string    `gorm:"column:status;not null;default:not_started" json:"status"`
	Progress  int       `gorm:"column:progress;not null;default:0" json:"progress"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Enrollment) TableName() string { return "enrollment" }

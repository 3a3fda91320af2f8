package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
)

const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

type Subscription struct {
	ID                     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID                 uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User                   *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	PlanID                 string     `gorm:"column:plan_id;not null;default:free" json:"plan_id"`
	Status                 string     `gorm:"column:status;not null;default:active" json:"status"`
	Provider               string     `gorm:"column:provider" json:"provider"`
	ProviderCustomerID     *string    `gorm:"column:provider_customer_id" json:"provider_customer_id,omitempty"`
	ProviderSubscriptionID *string    `gorm:"column:provider_subscription_id" json:"provider_subscription_id,omitempty"`
	CurrentPeriodEnd       *time.Time `gorm:"column:current_period_end" json:"current_period_end,omitempty"`
	CreatedAt              time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Subscription) TableName() string { return "subscription" }

func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == SubscriptionStatusActive
}

// GoalLimit returns the maximum number of non-archived goals for the plan;
// -1 means unlimited.
func (s *Subscription) GoalLimit() int {
	if !s.IsActive() {
		return 3
	}
	switch s.PlanID {
	case PlanPro:
		return 25
	case PlanEnterprise:
		return -1
	default:
		return 3
	}
}

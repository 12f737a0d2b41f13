package domain

import "time"

// PlanTier enumerates subscription levels controlling feature access.
type PlanTier string

const (
	PlanFree    PlanTier = "free"
	PlanStarter PlanTier = "starter"
	PlanPro     PlanTier = "pro"
	PlanElite   PlanTier = "elite"
)

// SubscriptionStatus values mirror the billing provider's vocabulary.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// SubscriptionRecord is the reconciled billing state for one business.
// One active record per business; records are never deleted, cancellation
// marks the status and stamps ends_at.
type SubscriptionRecord struct {
	ID                     string
	BusinessID             string
	Plan                   PlanTier
	Status                 string
	ProviderCustomerID     string
	ProviderSubscriptionID string
	CurrentPeriodEnd       *time.Time
	CancelAtPeriodEnd      bool
	EndsAt                 *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// SubscriptionPatch carries the fields a provider update event may change.
// Nil pointers leave the stored value untouched.
type SubscriptionPatch struct {
	Plan              *PlanTier
	Status            *string
	CurrentPeriodEnd  *time.Time
	CancelAtPeriodEnd *bool
}

// internal/domain/models/billing.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription plans and statuses.
const (
	PlanFree    = "free"
	PlanMonthly = "monthly"
	PlanYearly  = "yearly"

	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

// Subscription is a teacher's billing state. One document per teacher.
type Subscription struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TeacherID   primitive.ObjectID  `bson:"teacher_id" json:"teacherId"`
	Plan        string              `bson:"plan" json:"plan"`
	Status      string              `bson:"status" json:"status"`
	PriceCents  int64               `bson:"price_cents" json:"priceCents"`
	PaidCents   int64               `bson:"paid_cents" json:"paidCents"`
	DiscountID  *primitive.ObjectID `bson:"discount_id,omitempty" json:"discountId,omitempty"`
	PeriodStart time.Time           `bson:"period_start" json:"periodStart"`
	PeriodEnd   time.Time           `bson:"period_end" json:"periodEnd"`
	CancelledAt *time.Time          `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Discount is a promotional code redeemable a limited number of times.
type Discount struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code      string             `bson:"code" json:"code"` // stored upper-case
	Percent   int                `bson:"percent" json:"percent"`
	MaxUses   int                `bson:"max_uses" json:"maxUses"`
	UsedCount int                `bson:"used_count" json:"usedCount"`
	ExpiresAt *time.Time         `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
	IsActive  bool               `bson:"is_active" json:"isActive"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// FreeTeacherSlot records one of the limited free accounts handed out
// first-come-first-served. SlotNumber is unique in 1..cap.
type FreeTeacherSlot struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SlotNumber int                `bson:"slot_number" json:"slotNumber"`
	TeacherID  primitive.ObjectID `bson:"teacher_id" json:"teacherId"`
	AssignedAt time.Time          `bson:"assigned_at" json:"assignedAt"`
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Enrollment type and status values
const (
	EnrollmentTypePaid = "Paid"

	EnrollmentStatusCompleted = "completed"
)

// EnrollmentRecord is the append-only audit record of a paid enrollment.
// The unique index on (razorpay_order_id, razorpay_payment_id) makes the
// append idempotent: a duplicate verification of the same payment cannot
// produce a second record.
type EnrollmentRecord struct {
	ID                string            `gorm:"type:varchar(40);primaryKey" json:"id"`
	UserID            string            `gorm:"type:varchar(64);not null;index" json:"user_id"`
	CourseID          string            `gorm:"type:varchar(64);not null;index" json:"course_id"`
	CourseTitle       string            `gorm:"type:varchar(255)" json:"course_title"`
	RazorpayOrderID   string            `gorm:"type:varchar(100);not null;uniqueIndex:idx_enrollment_payment" json:"razorpay_order_id"`
	RazorpayPaymentID string            `gorm:"type:varchar(100);not null;uniqueIndex:idx_enrollment_payment" json:"razorpay_payment_id"`
	Amount            int64             `gorm:"not null" json:"amount"` // Course price at time of enrollment, minor units
	Currency          string            `gorm:"type:varchar(10);default:'INR'" json:"currency"`
	EnrollmentType    string            `gorm:"type:varchar(20);default:'Paid'" json:"enrollment_type"`
	Status            string            `gorm:"type:varchar(20);default:'completed'" json:"status"`
	Notes             datatypes.JSONMap `gorm:"type:jsonb" json:"notes,omitempty"`
	EnrolledAt        time.Time         `gorm:"autoCreateTime" json:"enrolled_at"`
}

// TableName specifies the table name for EnrollmentRecord
func (EnrollmentRecord) TableName() string {
	return "enrollment_records"
}

// BeforeCreate assigns a UUID when no explicit ID is provided
func (e *EnrollmentRecord) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

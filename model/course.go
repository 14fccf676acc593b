package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Course represents a purchasable course in the catalog
type Course struct {
	ID          string         `gorm:"type:varchar(64);primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null" json:"price"` // Minor currency units (paise)
	Currency    string         `gorm:"type:varchar(10);default:'INR'" json:"currency"`
	ContentKey  string         `gorm:"type:varchar(255)" json:"-"` // Spaces object key for course material

	// Relationships
	Enrollments []CourseEnrollment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Course
func (Course) TableName() string {
	return "courses"
}

// BeforeCreate assigns a UUID when no explicit ID is provided
func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// CourseEnrollment records that a user has access to a course.
// The composite primary key keeps the enrolled set duplicate-free:
// concurrent inserts of the same pair converge to one row.
type CourseEnrollment struct {
	CourseID   string    `gorm:"type:varchar(64);primaryKey" json:"course_id"`
	UserID     string    `gorm:"type:varchar(64);primaryKey" json:"user_id"`
	EnrolledAt time.Time `gorm:"autoCreateTime" json:"enrolled_at"`

	// Relationships
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for CourseEnrollment
func (CourseEnrollment) TableName() string {
	return "course_enrollments"
}

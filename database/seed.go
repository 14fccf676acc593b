package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/arvind9018/edusource-backend/model"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	if err := s.SeedCourses(); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedCourses creates the initial course catalog
func (s *Seeder) SeedCourses() error {
	// Check if courses already exist
	var count int64
	if err := s.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Courses already exist, skipping...")
		return nil
	}

	courses := []model.Course{
		{
			ID:          "web-dev-bootcamp",
			Title:       "Full-Stack Web Development Bootcamp",
			Description: "HTML, CSS, JavaScript, React and Node from scratch",
			Price:       499900, // ₹4999.00
			Currency:    "INR",
			ContentKey:  "courses/web-dev-bootcamp/material.zip",
		},
		{
			ID:          "dsa-masterclass",
			Title:       "Data Structures & Algorithms Masterclass",
			Description: "Interview-focused DSA with practice problems",
			Price:       349900,
			Currency:    "INR",
			ContentKey:  "courses/dsa-masterclass/material.zip",
		},
		{
			ID:          "ml-foundations",
			Title:       "Machine Learning Foundations",
			Description: "Math, Python and classic ML models",
			Price:       599900,
			Currency:    "INR",
			ContentKey:  "courses/ml-foundations/material.zip",
		},
	}

	if err := s.db.Create(&courses).Error; err != nil {
		return err
	}

	log.Printf("Created %d courses", len(courses))
	return nil
}

// RunSeeds is the entry point used by cmd/seed
func RunSeeds(db *gorm.DB) error {
	seeder := NewSeeder(db)
	return seeder.SeedAll()
}

package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/arvind9018/edusource-backend/config"
	"github.com/arvind9018/edusource-backend/model"
	"github.com/arvind9018/edusource-backend/services"
)

// Storage defines the interface the rest of the app uses to reach the database
type Storage interface {
	// Lifecycle methods
	Init() error
	Close() error
	HealthCheck() error

	// GORM DB access
	GetDB() interface{} // Returns *gorm.DB

	// Enrollment flow (services.EnrollmentStore)
	GetCourse(ctx context.Context, courseID string) (*model.Course, error)
	IsEnrolled(ctx context.Context, courseID, userID string) (bool, error)
	Enroll(ctx context.Context, record *model.EnrollmentRecord) error

	// Catalog
	ListCourses(ctx context.Context, limit, offset int) ([]model.Course, int64, error)
}

type GORMStore struct {
	db *gorm.DB
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM() (*GORMStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	// Build DSN (Data Source Name)
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		getEnv.DB_HOST,
		getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD,
		getEnv.DB_NAME,
		getEnv.DB_PORT,
		getEnv.DB_SSL_MODE,
	)

	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Info)
	if getEnv.GO_ENV == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: false,
		PrepareStmt:            true,
	})
	if err != nil {
		log.Println("Unable to connect to PostgreSQL with GORM:", err)
		return nil, err
	}

	// Get underlying *sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Successfully connected to PostgreSQL Database with GORM.")

	return &GORMStore{db: db}, nil
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	log.Println("Running GORM AutoMigrate for all models...")

	err := s.db.AutoMigrate(
		// Catalog & enrollment models
		&model.Course{},
		&model.CourseEnrollment{},
		&model.EnrollmentRecord{},

		// Audit & logging models
		&model.CronJobLog{},
	)

	if err != nil {
		log.Println("Error running AutoMigrate:", err)
		return err
	}

	log.Println("GORM AutoMigrate completed successfully!")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	log.Println("Closing GORM PostgreSQL connection...")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the GORM DB instance for use in repositories/handlers
func (s *GORMStore) GetDB() interface{} {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// GetCourse fetches a course by id. Returns services.ErrCourseNotFound
// when the course does not exist.
func (s *GORMStore) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	var course model.Course
	err := s.db.WithContext(ctx).First(&course, "id = ?", courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

// IsEnrolled reports whether the user already holds access to the course
func (s *GORMStore) IsEnrolled(ctx context.Context, courseID, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.CourseEnrollment{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Enroll grants course access and appends the enrollment audit record
// in one transaction. Both inserts use ON CONFLICT DO NOTHING, so a
// concurrent duplicate verification of the same payment converges to a
// single membership row and a single record.
func (s *GORMStore) Enroll(ctx context.Context, record *model.EnrollmentRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		membership := model.CourseEnrollment{
			CourseID: record.CourseID,
			UserID:   record.UserID,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&membership).Error; err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "razorpay_order_id"}, {Name: "razorpay_payment_id"}},
			DoNothing: true,
		}).Create(record).Error
	})
}

// ListCourses returns a page of the course catalog plus the total count
func (s *GORMStore) ListCourses(ctx context.Context, limit, offset int) ([]model.Course, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Course{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []model.Course
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&courses).Error
	if err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

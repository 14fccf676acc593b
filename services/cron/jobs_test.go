package cron

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arvind9018/edusource-backend/model"
)

// newTestDB opens a named in-memory sqlite database. The name keeps
// each test isolated while letting GORM's pooled connections share one
// database.
func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := "file:" + name + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.Course{},
		&model.CourseEnrollment{},
		&model.EnrollmentRecord{},
		&model.CronJobLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func completedRecord(courseID, userID, orderID, paymentID string) *model.EnrollmentRecord {
	return &model.EnrollmentRecord{
		UserID:            userID,
		CourseID:          courseID,
		CourseTitle:       "Go from Scratch",
		RazorpayOrderID:   orderID,
		RazorpayPaymentID: paymentID,
		Amount:            499900,
		Currency:          "INR",
		EnrollmentType:    model.EnrollmentTypePaid,
		Status:            model.EnrollmentStatusCompleted,
	}
}

func countMemberships(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&model.CourseEnrollment{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count memberships: %v", err)
	}
	return count
}

func TestReconcileEnrollmentsRepairsMissingMembership(t *testing.T) {
	db := newTestDB(t, "reconcile_repairs")

	course := &model.Course{ID: "c1", Title: "Go from Scratch", Price: 499900, Currency: "INR"}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("failed to seed course: %v", err)
	}
	// A completed record with no matching membership row, the state a
	// crash between the two enrollment writes leaves behind.
	if err := db.Create(completedRecord("c1", "u1", "order_abc", "pay_123")).Error; err != nil {
		t.Fatalf("failed to seed enrollment record: %v", err)
	}
	if got := countMemberships(t, db); got != 0 {
		t.Fatalf("precondition: expected no memberships, got %d", got)
	}

	manager := NewCronManager(db)
	manager.ReconcileEnrollments()

	if got := countMemberships(t, db); got != 1 {
		t.Fatalf("expected the missing membership to be re-created, got %d rows", got)
	}
	var membership model.CourseEnrollment
	if err := db.First(&membership, "course_id = ? AND user_id = ?", "c1", "u1").Error; err != nil {
		t.Fatalf("repaired membership not found: %v", err)
	}
}

func TestReconcileEnrollmentsIsNoOpWhenConsistent(t *testing.T) {
	db := newTestDB(t, "reconcile_noop")

	course := &model.Course{ID: "c1", Title: "Go from Scratch", Price: 499900, Currency: "INR"}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("failed to seed course: %v", err)
	}
	if err := db.Create(completedRecord("c1", "u1", "order_abc", "pay_123")).Error; err != nil {
		t.Fatalf("failed to seed enrollment record: %v", err)
	}
	if err := db.Create(&model.CourseEnrollment{CourseID: "c1", UserID: "u1"}).Error; err != nil {
		t.Fatalf("failed to seed membership: %v", err)
	}

	manager := NewCronManager(db)
	manager.ReconcileEnrollments()
	manager.ReconcileEnrollments()

	if got := countMemberships(t, db); got != 1 {
		t.Fatalf("reconciliation of a consistent state must not change rows, got %d", got)
	}
}

func TestCleanupCronLogsPrunesOnlyOldEntries(t *testing.T) {
	db := newTestDB(t, "cleanup_logs")

	old := model.CronJobLog{
		JobName:   "reconcile_enrollments",
		Status:    "completed",
		StartedAt: time.Now().AddDate(0, 0, -40),
	}
	recent := model.CronJobLog{
		JobName:   "reconcile_enrollments",
		Status:    "completed",
		StartedAt: time.Now().Add(-time.Hour),
	}
	if err := db.Create(&old).Error; err != nil {
		t.Fatalf("failed to seed old log: %v", err)
	}
	if err := db.Create(&recent).Error; err != nil {
		t.Fatalf("failed to seed recent log: %v", err)
	}

	manager := NewCronManager(db)
	manager.CleanupCronLogs()

	var remaining []model.CronJobLog
	if err := db.Unscoped().Find(&remaining).Error; err != nil {
		t.Fatalf("failed to list logs: %v", err)
	}
	for _, logRow := range remaining {
		if logRow.ID == old.ID {
			t.Fatal("log older than the retention window was not deleted")
		}
	}
	foundRecent := false
	for _, logRow := range remaining {
		if logRow.ID == recent.ID {
			foundRecent = true
		}
	}
	if !foundRecent {
		t.Error("log inside the retention window was deleted")
	}
}

package cron

import (
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/arvind9018/edusource-backend/model"
)

// ReconcileEnrollments repairs the gap between the two enrollment
// mutations: the membership insert and the record append are not a
// single atomic step from the caller's point of view, so a crash
// between them can leave a completed EnrollmentRecord without the
// matching course_enrollments row. This job re-inserts any missing
// membership. Runs hourly.
func (m *CronManager) ReconcileEnrollments() {
	jobName := "reconcile_enrollments"

	var orphaned []model.EnrollmentRecord
	err := m.db.
		Where("status = ?", model.EnrollmentStatusCompleted).
		Where("NOT EXISTS (SELECT 1 FROM course_enrollments ce WHERE ce.course_id = enrollment_records.course_id AND ce.user_id = enrollment_records.user_id)").
		Find(&orphaned).Error
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to query orphaned enrollments: %w", err))
		return
	}

	if len(orphaned) == 0 {
		m.logJobComplete(jobName, "No enrollments to reconcile")
		return
	}

	repaired := 0
	for _, rec := range orphaned {
		membership := model.CourseEnrollment{
			CourseID: rec.CourseID,
			UserID:   rec.UserID,
		}
		if err := m.db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&membership).Error; err != nil {
			m.logJobError(jobName, fmt.Errorf("failed to repair enrollment %s: %w", rec.ID, err))
			return
		}
		repaired++
	}

	m.logJobComplete(jobName, fmt.Sprintf("Repaired %d enrollment(s)", repaired))
}

// CleanupCronLogs deletes cron job logs older than 30 days. Runs daily.
func (m *CronManager) CleanupCronLogs() {
	jobName := "cleanup_cron_logs"

	cutoff := time.Now().AddDate(0, 0, -30)
	result := m.db.Unscoped().
		Where("started_at < ?", cutoff).
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to delete old logs: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Deleted %d old log(s)", result.RowsAffected))
}

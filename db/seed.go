package db

import (
	"github.com/sirupsen/logrus"

	"grade-report-server-go/models"
)

// CheckAndSeedData adds demo courses and enrollments when the store has no
// courses yet. It reports whether data was added.
func CheckAndSeedData(store Store, logger logrus.FieldLogger) bool {
	existing, err := store.GetAllCourses()
	if err != nil {
		logger.Warnf("Unable to check for existing courses: %v. Skipping seed data.", err)
		return false
	}
	if len(existing) > 0 {
		logger.Infof("Found %d existing courses. Skipping seed data.", len(existing))
		return false
	}

	logger.Info("No courses found. Adding seed data...")
	SeedData(store, logger)
	return true
}

// SeedData adds the demo data set. Errors are logged, not returned.
func SeedData(store Store, logger logrus.FieldLogger) {
	courses := []models.Course{
		{ID: "C_DEMO_GO", Code: "CS101", Name: "Programming in Go", TeacherID: "T_DEMO_01"},
		{ID: "C_DEMO_DB", Code: "CS205", Name: "Databases", TeacherID: "T_DEMO_01"},
		{ID: "C_DEMO_LA", Code: "MA110", Name: "Linear Algebra", TeacherID: "T_DEMO_02"},
	}
	for _, c := range courses {
		if err := store.AddCourse(c); err != nil {
			logger.Errorf("Error adding seed course %s: %v", c.ID, err)
		}
	}

	score := models.ScoreOf
	enrollments := []models.Enrollment{
		{StudentID: "S_DEMO_001", CourseID: "C_DEMO_GO", Score: score(88)},
		{StudentID: "S_DEMO_002", CourseID: "C_DEMO_GO", Score: score(59)},
		{StudentID: "S_DEMO_003", CourseID: "C_DEMO_GO"},
		{StudentID: "S_DEMO_001", CourseID: "C_DEMO_DB", Score: score(72.5)},
		{StudentID: "S_DEMO_003", CourseID: "C_DEMO_DB", Score: score(95)},
		{StudentID: "S_DEMO_001", CourseID: "C_DEMO_LA", Score: score(64)},
		{StudentID: "S_DEMO_002", CourseID: "C_DEMO_LA", Score: score(41)},
	}
	for _, e := range enrollments {
		if err := store.AddEnrollment(e); err != nil {
			logger.Errorf("Error adding seed enrollment %s/%s: %v", e.CourseID, e.StudentID, err)
		}
	}

	logger.Info("Seed data added.")
}

// Package report shapes course and enrollment data into chart datasets,
// renders them, and exports the underlying rows to a spreadsheet.
package report

import (
	"errors"

	"grade-report-server-go/models"
)

// ErrCourseNotFound is returned when an enrollment references a course the
// CourseService does not know.
var ErrCourseNotFound = errors.New("course not found")

// CourseService looks courses up. CourseByID returns (nil, nil) when the
// course does not exist.
type CourseService interface {
	CoursesByTeacher(teacherID string) ([]models.Course, error)
	CourseByID(courseID string) (*models.Course, error)
}

// EnrollmentService lists enrollments by student or by course.
type EnrollmentService interface {
	EnrollmentsByStudent(studentID string) ([]models.Enrollment, error)
	EnrollmentsByCourse(courseID string) ([]models.Enrollment, error)
}

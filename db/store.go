package db

import (
	"grade-report-server-go/models"
)

// Store is the persistence contract shared by the Redis and Postgres
// backends. Lookups of a single item return (nil, nil) when it is missing.
type Store interface {
	AddCourse(course models.Course) error
	GetCourseByID(courseID string) (*models.Course, error)
	GetAllCourses() ([]models.Course, error)
	GetCoursesByTeacher(teacherID string) ([]models.Course, error)

	AddEnrollment(enrollment models.Enrollment) error
	GetEnrollmentsByCourse(courseID string) ([]models.Enrollment, error)
	GetEnrollmentsByStudent(studentID string) ([]models.Enrollment, error)
}

// ReportSource exposes a Store as the course and enrollment services the
// report panel consumes.
type ReportSource struct {
	Store Store
}

func (s ReportSource) CoursesByTeacher(teacherID string) ([]models.Course, error) {
	return s.Store.GetCoursesByTeacher(teacherID)
}

func (s ReportSource) CourseByID(courseID string) (*models.Course, error) {
	return s.Store.GetCourseByID(courseID)
}

func (s ReportSource) EnrollmentsByStudent(studentID string) ([]models.Enrollment, error) {
	return s.Store.GetEnrollmentsByStudent(studentID)
}

func (s ReportSource) EnrollmentsByCourse(courseID string) ([]models.Enrollment, error) {
	return s.Store.GetEnrollmentsByCourse(courseID)
}

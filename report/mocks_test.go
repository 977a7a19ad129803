package report

import (
	"github.com/stretchr/testify/mock"

	"grade-report-server-go/models"
)

type MockCourseService struct {
	mock.Mock
}

func (m *MockCourseService) CoursesByTeacher(teacherID string) ([]models.Course, error) {
	args := m.Called(teacherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Course), args.Error(1)
}

func (m *MockCourseService) CourseByID(courseID string) (*models.Course, error) {
	args := m.Called(courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

type MockEnrollmentService struct {
	mock.Mock
}

func (m *MockEnrollmentService) EnrollmentsByStudent(studentID string) ([]models.Enrollment, error) {
	args := m.Called(studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Enrollment), args.Error(1)
}

func (m *MockEnrollmentService) EnrollmentsByCourse(courseID string) ([]models.Enrollment, error) {
	args := m.Called(courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Enrollment), args.Error(1)
}

// memorySource is an in-memory CourseService and EnrollmentService.
type memorySource struct {
	courses     []models.Course
	enrollments []models.Enrollment
}

func (s *memorySource) CoursesByTeacher(teacherID string) ([]models.Course, error) {
	var out []models.Course
	for _, c := range s.courses {
		if c.TeacherID == teacherID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memorySource) CourseByID(courseID string) (*models.Course, error) {
	for i := range s.courses {
		if s.courses[i].ID == courseID {
			c := s.courses[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *memorySource) EnrollmentsByStudent(studentID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range s.enrollments {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memorySource) EnrollmentsByCourse(courseID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range s.enrollments {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func sampleSource() *memorySource {
	score := models.ScoreOf
	return &memorySource{
		courses: []models.Course{
			{ID: "C1", Code: "CS101", Name: "Intro to Go", TeacherID: "T1"},
			{ID: "C2", Code: "CS201", Name: "Data Structures", TeacherID: "T1"},
			{ID: "C3", Code: "MA101", Name: "Calculus", TeacherID: "T2"},
			{ID: "C4", Code: "CS301", Name: "Compilers", TeacherID: "T1"},
		},
		enrollments: []models.Enrollment{
			{StudentID: "S1", CourseID: "C1", Score: score(60)},
			{StudentID: "S2", CourseID: "C1", Score: score(59)},
			{StudentID: "S3", CourseID: "C1"},
			{StudentID: "S1", CourseID: "C2", Score: score(87.5)},
			{StudentID: "S2", CourseID: "C2", Score: score(92)},
			{StudentID: "S1", CourseID: "C3"},
			{StudentID: "S2", CourseID: "C3", Score: score(71)},
		},
	}
}

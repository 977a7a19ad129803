package models

// Course represents a course taught by one teacher
type Course struct {
	ID        string `json:"id"`        // Unique course ID
	Code      string `json:"code"`      // Course code (e.g., CS101)
	Name      string `json:"name"`      // Display name
	TeacherID string `json:"teacherId"` // ID of the owning teacher
}

// Enrollment represents a student taking a course
type Enrollment struct {
	StudentID string   `json:"studentId"`       // Student number
	CourseID  string   `json:"courseId"`        // ID of the course
	Score     *float64 `json:"score,omitempty"` // nil until graded
}

// Graded reports whether a score has been recorded.
func (e Enrollment) Graded() bool {
	return e.Score != nil
}

// ScoreOf returns a pointer to v, for building enrollments in place.
func ScoreOf(v float64) *float64 {
	return &v
}

package models

// AudienceKind tells which side of a report a panel is built for.
type AudienceKind int

const (
	AudienceNone AudienceKind = iota
	AudienceTeacher
	AudienceStudent
)

func (k AudienceKind) String() string {
	switch k {
	case AudienceTeacher:
		return "teacher"
	case AudienceStudent:
		return "student"
	default:
		return "none"
	}
}

// Audience is either a teacher or a student, never both.
// The zero value selects nobody and produces empty reports.
type Audience struct {
	kind AudienceKind
	id   string
}

// TeacherAudience selects the reports of the courses taught by teacherID.
func TeacherAudience(teacherID string) Audience {
	if teacherID == "" {
		return Audience{}
	}
	return Audience{kind: AudienceTeacher, id: teacherID}
}

// StudentAudience selects the reports of studentID's own enrollments.
func StudentAudience(studentID string) Audience {
	if studentID == "" {
		return Audience{}
	}
	return Audience{kind: AudienceStudent, id: studentID}
}

func (a Audience) Kind() AudienceKind { return a.kind }
func (a Audience) ID() string         { return a.id }

// IsTeacher returns the teacher ID when the audience is a teacher.
func (a Audience) IsTeacher() (string, bool) {
	return a.id, a.kind == AudienceTeacher
}

// IsStudent returns the student ID when the audience is a student.
func (a Audience) IsStudent() (string, bool) {
	return a.id, a.kind == AudienceStudent
}

func (a Audience) String() string {
	if a.kind == AudienceNone {
		return "none"
	}
	return a.kind.String() + ":" + a.id
}

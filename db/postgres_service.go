package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"grade-report-server-go/models"
)

// courseRecord is the courses table row.
type courseRecord struct {
	ID        string `gorm:"primaryKey;type:varchar(64)"`
	Code      string `gorm:"type:varchar(32)"`
	Name      string `gorm:"type:varchar(255);not null"`
	TeacherID string `gorm:"type:varchar(64);index;not null"`
	CreatedAt time.Time
}

func (courseRecord) TableName() string { return "courses" }

// enrollmentRecord is the enrollments table row. Seq keeps insertion order.
type enrollmentRecord struct {
	Seq       uint     `gorm:"autoIncrement;uniqueIndex"`
	CourseID  string   `gorm:"primaryKey;type:varchar(64)"`
	StudentID string   `gorm:"primaryKey;type:varchar(64);index"`
	Score     *float64 `gorm:"type:double precision"`
}

func (enrollmentRecord) TableName() string { return "enrollments" }

func (r courseRecord) model() models.Course {
	return models.Course{ID: r.ID, Code: r.Code, Name: r.Name, TeacherID: r.TeacherID}
}

func (r enrollmentRecord) model() models.Enrollment {
	return models.Enrollment{StudentID: r.StudentID, CourseID: r.CourseID, Score: r.Score}
}

// PostgresService stores courses and enrollments in PostgreSQL through gorm.
type PostgresService struct {
	DB  *gorm.DB
	Log logrus.FieldLogger
}

// NewPostgresService wraps an open gorm connection and migrates the schema.
func NewPostgresService(db *gorm.DB, logger logrus.FieldLogger) (*PostgresService, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if err := db.AutoMigrate(&courseRecord{}, &enrollmentRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &PostgresService{DB: db, Log: logger}, nil
}

// OpenPostgres connects to PostgreSQL with dsn.
func OpenPostgres(dsn string, logger logrus.FieldLogger) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	logger.Info("Successfully connected to PostgreSQL")
	return gdb, nil
}

func (s *PostgresService) AddCourse(course models.Course) error {
	if course.ID == "" || course.Name == "" || course.TeacherID == "" {
		return errors.New("course ID, Name and TeacherID cannot be empty")
	}
	rec := courseRecord{ID: course.ID, Code: course.Code, Name: course.Name, TeacherID: course.TeacherID}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "name", "teacher_id"}),
	}).Create(&rec).Error
	if err != nil {
		s.Log.Errorf("Error adding course %s: %v", course.ID, err)
		return fmt.Errorf("failed to add course to postgres: %w", err)
	}
	s.Log.Infof("Added course: %s %s (%s)", course.Code, course.Name, course.ID)
	return nil
}

func (s *PostgresService) GetCourseByID(courseID string) (*models.Course, error) {
	var rec courseRecord
	err := s.DB.Where("id = ?", courseID).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.Log.Errorf("Error getting course %s: %v", courseID, err)
		return nil, fmt.Errorf("failed to get course from postgres: %w", err)
	}
	c := rec.model()
	return &c, nil
}

func (s *PostgresService) GetAllCourses() ([]models.Course, error) {
	return s.findCourses(s.DB)
}

func (s *PostgresService) GetCoursesByTeacher(teacherID string) ([]models.Course, error) {
	return s.findCourses(s.DB.Where("teacher_id = ?", teacherID))
}

func (s *PostgresService) findCourses(q *gorm.DB) ([]models.Course, error) {
	var recs []courseRecord
	if err := q.Order("created_at, id").Find(&recs).Error; err != nil {
		s.Log.Errorf("Error listing courses: %v", err)
		return nil, fmt.Errorf("failed to list courses from postgres: %w", err)
	}
	courses := make([]models.Course, 0, len(recs))
	for _, r := range recs {
		courses = append(courses, r.model())
	}
	return courses, nil
}

func (s *PostgresService) AddEnrollment(enrollment models.Enrollment) error {
	if enrollment.StudentID == "" || enrollment.CourseID == "" {
		return errors.New("enrollment StudentID and CourseID cannot be empty")
	}
	course, err := s.GetCourseByID(enrollment.CourseID)
	if err != nil {
		return err
	}
	if course == nil {
		return fmt.Errorf("course %s does not exist", enrollment.CourseID)
	}

	rec := enrollmentRecord{CourseID: enrollment.CourseID, StudentID: enrollment.StudentID, Score: enrollment.Score}
	err = s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score"}),
	}).Omit("Seq").Create(&rec).Error
	if err != nil {
		s.Log.Errorf("Error adding enrollment of %s in %s: %v", enrollment.StudentID, enrollment.CourseID, err)
		return fmt.Errorf("failed to add enrollment to postgres: %w", err)
	}
	return nil
}

func (s *PostgresService) GetEnrollmentsByCourse(courseID string) ([]models.Enrollment, error) {
	return s.findEnrollments(s.DB.Where("course_id = ?", courseID))
}

func (s *PostgresService) GetEnrollmentsByStudent(studentID string) ([]models.Enrollment, error) {
	return s.findEnrollments(s.DB.Where("student_id = ?", studentID))
}

func (s *PostgresService) findEnrollments(q *gorm.DB) ([]models.Enrollment, error) {
	var recs []enrollmentRecord
	if err := q.Order("seq").Find(&recs).Error; err != nil {
		s.Log.Errorf("Error listing enrollments: %v", err)
		return nil, fmt.Errorf("failed to list enrollments from postgres: %w", err)
	}
	enrollments := make([]models.Enrollment, 0, len(recs))
	for _, r := range recs {
		enrollments = append(enrollments, r.model())
	}
	return enrollments, nil
}

package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"grade-report-server-go/models"
)

const (
	coursesKey              = "courses"     // Set: Stores all course IDs
	courseInfoPrefix        = "course:"     // Hash prefix: course:{id} -> stores course details
	courseEnrollmentsSuffix = ":students"   // List: course:{id}:students -> student IDs in enrollment order
	teacherCoursesPrefix    = "teacher:"    // List prefix: teacher:{id}:courses -> course IDs in creation order
	studentCoursesPrefix    = "student:"    // List prefix: student:{id}:courses -> course IDs in enrollment order
	enrollmentPrefix        = "enrollment:" // Hash prefix: enrollment:{courseId}:{studentId} -> enrollment details
)

// RedisService handles operations with the Redis database
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context // Base context
	Log    logrus.FieldLogger
}

// NewRedisService creates a new RedisService instance
func NewRedisService(client *redis.Client, logger logrus.FieldLogger) *RedisService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RedisService{
		Client: client,
		Ctx:    context.Background(), // Use a background context as base
		Log:    logger,
	}
}

func getCourseInfoKey(courseID string) string {
	return courseInfoPrefix + courseID
}

func getCourseStudentsKey(courseID string) string {
	return courseInfoPrefix + courseID + courseEnrollmentsSuffix
}

func getTeacherCoursesKey(teacherID string) string {
	return teacherCoursesPrefix + teacherID + ":courses"
}

func getStudentCoursesKey(studentID string) string {
	return studentCoursesPrefix + studentID + ":courses"
}

func getEnrollmentKey(courseID, studentID string) string {
	return enrollmentPrefix + courseID + ":" + studentID
}

// --- Course Operations ---

// AddCourse adds or updates a course. Moving a course to another teacher
// moves it between the teachers' course lists.
func (s *RedisService) AddCourse(course models.Course) error {
	if course.ID == "" || course.Name == "" || course.TeacherID == "" {
		return errors.New("course ID, Name and TeacherID cannot be empty")
	}
	courseKey := getCourseInfoKey(course.ID)

	previousTeacher, err := s.Client.HGet(s.Ctx, courseKey, "teacherId").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.Log.Errorf("Error reading course %s: %v", course.ID, err)
		return fmt.Errorf("failed to read course from Redis: %w", err)
	}

	pipe := s.Client.TxPipeline()
	pipe.SAdd(s.Ctx, coursesKey, course.ID)
	pipe.HSet(s.Ctx, courseKey, map[string]interface{}{
		"id":        course.ID,
		"code":      course.Code,
		"name":      course.Name,
		"teacherId": course.TeacherID,
	})
	if previousTeacher != course.TeacherID {
		if previousTeacher != "" {
			pipe.LRem(s.Ctx, getTeacherCoursesKey(previousTeacher), 0, course.ID)
		}
		pipe.RPush(s.Ctx, getTeacherCoursesKey(course.TeacherID), course.ID)
	}

	if _, err := pipe.Exec(s.Ctx); err != nil {
		s.Log.Errorf("Error adding course %s: %v", course.ID, err)
		return fmt.Errorf("failed to add course to Redis: %w", err)
	}
	s.Log.Infof("Added course: %s %s (%s)", course.Code, course.Name, course.ID)
	return nil
}

// GetCourseByID retrieves a course by its ID
func (s *RedisService) GetCourseByID(courseID string) (*models.Course, error) {
	data, err := s.Client.HGetAll(s.Ctx, getCourseInfoKey(courseID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		s.Log.Errorf("Error getting course %s: %v", courseID, err)
		return nil, fmt.Errorf("failed to get course from Redis: %w", err)
	}
	if len(data) == 0 {
		return nil, nil // Not found
	}

	return &models.Course{
		ID:        data["id"],
		Code:      data["code"],
		Name:      data["name"],
		TeacherID: data["teacherId"],
	}, nil
}

// GetAllCourses retrieves all courses
func (s *RedisService) GetAllCourses() ([]models.Course, error) {
	courseIDs, err := s.Client.SMembers(s.Ctx, coursesKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Course{}, nil
		}
		s.Log.Errorf("Error getting all course IDs: %v", err)
		return nil, fmt.Errorf("failed to get course IDs from Redis: %w", err)
	}
	return s.loadCourses(courseIDs), nil
}

// GetCoursesByTeacher retrieves the courses of a teacher in creation order
func (s *RedisService) GetCoursesByTeacher(teacherID string) ([]models.Course, error) {
	courseIDs, err := s.Client.LRange(s.Ctx, getTeacherCoursesKey(teacherID), 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Course{}, nil
		}
		s.Log.Errorf("Error getting courses of teacher %s: %v", teacherID, err)
		return nil, fmt.Errorf("failed to get courses of teacher %s from Redis: %w", teacherID, err)
	}
	return s.loadCourses(courseIDs), nil
}

func (s *RedisService) loadCourses(courseIDs []string) []models.Course {
	courses := make([]models.Course, 0, len(courseIDs))
	for _, id := range courseIDs {
		course, err := s.GetCourseByID(id)
		if err != nil {
			// Log the error but continue trying to fetch others
			s.Log.Errorf("Error fetching details for course %s: %v", id, err)
			continue
		}
		if course != nil {
			courses = append(courses, *course)
		}
	}
	return courses
}

// CourseExists checks if a course ID exists in the courses set
func (s *RedisService) CourseExists(courseID string) (bool, error) {
	exists, err := s.Client.SIsMember(s.Ctx, coursesKey, courseID).Result()
	if err != nil {
		s.Log.Errorf("Error checking existence for course %s: %v", courseID, err)
		return false, fmt.Errorf("failed to check course existence: %w", err)
	}
	return exists, nil
}

// --- Enrollment Operations ---

// AddEnrollment enrolls a student in a course, or updates the score of an
// existing enrollment. A nil score clears a previous grade.
func (s *RedisService) AddEnrollment(enrollment models.Enrollment) error {
	if enrollment.StudentID == "" || enrollment.CourseID == "" {
		return errors.New("enrollment StudentID and CourseID cannot be empty")
	}

	exists, err := s.CourseExists(enrollment.CourseID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("course %s does not exist", enrollment.CourseID)
	}

	key := getEnrollmentKey(enrollment.CourseID, enrollment.StudentID)
	known, err := s.Client.Exists(s.Ctx, key).Result()
	if err != nil {
		s.Log.Errorf("Error checking enrollment %s: %v", key, err)
		return fmt.Errorf("failed to check enrollment: %w", err)
	}

	pipe := s.Client.TxPipeline()
	pipe.HSet(s.Ctx, key, map[string]interface{}{
		"studentId": enrollment.StudentID,
		"courseId":  enrollment.CourseID,
	})
	if enrollment.Score != nil {
		pipe.HSet(s.Ctx, key, "score", strconv.FormatFloat(*enrollment.Score, 'f', -1, 64))
	} else {
		pipe.HDel(s.Ctx, key, "score")
	}
	if known == 0 {
		pipe.RPush(s.Ctx, getCourseStudentsKey(enrollment.CourseID), enrollment.StudentID)
		pipe.RPush(s.Ctx, getStudentCoursesKey(enrollment.StudentID), enrollment.CourseID)
	}

	if _, err := pipe.Exec(s.Ctx); err != nil {
		s.Log.Errorf("Error adding enrollment of %s in %s: %v", enrollment.StudentID, enrollment.CourseID, err)
		return fmt.Errorf("failed to add enrollment to Redis: %w", err)
	}
	return nil
}

// GetEnrollment retrieves the enrollment of a student in a course
func (s *RedisService) GetEnrollment(courseID, studentID string) (*models.Enrollment, error) {
	data, err := s.Client.HGetAll(s.Ctx, getEnrollmentKey(courseID, studentID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		s.Log.Errorf("Error getting enrollment of %s in %s: %v", studentID, courseID, err)
		return nil, fmt.Errorf("failed to get enrollment from Redis: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	enrollment := &models.Enrollment{
		StudentID: data["studentId"],
		CourseID:  data["courseId"],
	}
	if raw, ok := data["score"]; ok && raw != "" {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.Log.Warnf("Ignoring malformed score %q of %s in %s: %v", raw, studentID, courseID, err)
		} else {
			enrollment.Score = &score
		}
	}
	return enrollment, nil
}

// GetEnrollmentsByCourse retrieves the enrollments of a course in enrollment order
func (s *RedisService) GetEnrollmentsByCourse(courseID string) ([]models.Enrollment, error) {
	studentIDs, err := s.Client.LRange(s.Ctx, getCourseStudentsKey(courseID), 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Enrollment{}, nil
		}
		s.Log.Errorf("Error getting student IDs for course %s: %v", courseID, err)
		return nil, fmt.Errorf("failed to get student IDs from Redis for course %s: %w", courseID, err)
	}

	enrollments := make([]models.Enrollment, 0, len(studentIDs))
	for _, id := range studentIDs {
		enrollment, err := s.GetEnrollment(courseID, id)
		if err != nil {
			s.Log.Errorf("Error fetching enrollment of student %s in course %s: %v", id, courseID, err)
			continue // Skip this enrollment if details can't be fetched
		}
		if enrollment != nil {
			enrollments = append(enrollments, *enrollment)
		}
	}
	return enrollments, nil
}

// GetEnrollmentsByStudent retrieves the enrollments of a student in enrollment order
func (s *RedisService) GetEnrollmentsByStudent(studentID string) ([]models.Enrollment, error) {
	courseIDs, err := s.Client.LRange(s.Ctx, getStudentCoursesKey(studentID), 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Enrollment{}, nil
		}
		s.Log.Errorf("Error getting course IDs for student %s: %v", studentID, err)
		return nil, fmt.Errorf("failed to get course IDs from Redis for student %s: %w", studentID, err)
	}

	enrollments := make([]models.Enrollment, 0, len(courseIDs))
	for _, id := range courseIDs {
		enrollment, err := s.GetEnrollment(id, studentID)
		if err != nil {
			s.Log.Errorf("Error fetching enrollment of student %s in course %s: %v", studentID, id, err)
			continue
		}
		if enrollment != nil {
			enrollments = append(enrollments, *enrollment)
		}
	}
	return enrollments, nil
}

// --- Utility ---

// RedisOptions are the connection settings of InitializeRedisClient.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// InitializeRedisClient creates and tests a Redis client connection
func InitializeRedisClient(opts RedisOptions, logger logrus.FieldLogger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	// Ping Redis to check connection
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", opts.Addr, err)
	}

	logger.Infof("Successfully connected to Redis %s DB %d", opts.Addr, opts.DB)
	return rdb, nil
}

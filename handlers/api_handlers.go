package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"grade-report-server-go/db"
	"grade-report-server-go/models"
	"grade-report-server-go/report"
)

// ReportOptions configure the panels built for report requests.
type ReportOptions struct {
	Renderer        report.ChartRenderer
	Labels          report.Labels
	FontFamily      string
	ExportName      string
	ExportExtension string
}

// APIHandler holds the dependencies for API handlers, like the store
type APIHandler struct {
	Store   db.Store
	Reports ReportOptions
	Log     logrus.FieldLogger
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(store db.Store, reports ReportOptions, logger logrus.FieldLogger) *APIHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if reports.Labels.SheetName == "" {
		reports.Labels = report.LabelsFor(report.DefaultLocale)
	}
	return &APIHandler{
		Store:   store,
		Reports: reports,
		Log:     logger,
	}
}

// --- Course Handlers ---

// GetAllCourses handles GET /api/courses
func (h *APIHandler) GetAllCourses(c *gin.Context) {
	courses, err := h.Store.GetAllCourses()
	if err != nil {
		h.Log.Errorf("Error in GetAllCourses handler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve courses"})
		return
	}
	if courses == nil {
		// Return empty list instead of null for JSON consistency
		courses = []models.Course{}
	}
	c.JSON(http.StatusOK, courses)
}

// GetCourseByID handles GET /api/courses/:courseId
func (h *APIHandler) GetCourseByID(c *gin.Context) {
	courseID := c.Param("courseId")

	course, err := h.Store.GetCourseByID(courseID)
	if err != nil {
		h.Log.Errorf("Error in GetCourseByID handler for ID %s: %v", courseID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve course details"})
		return
	}
	if course == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	c.JSON(http.StatusOK, course)
}

// AddCourse handles POST /api/courses
func (h *APIHandler) AddCourse(c *gin.Context) {
	var course models.Course
	if err := c.ShouldBindJSON(&course); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if course.ID == "" || course.Name == "" || course.TeacherID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course ID, Name and TeacherID are required"})
		return
	}

	if err := h.Store.AddCourse(course); err != nil {
		h.Log.Errorf("Error in AddCourse handler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add course"})
		return
	}

	c.JSON(http.StatusCreated, course)
}

// GetCoursesByTeacher handles GET /api/teachers/:teacherId/courses
func (h *APIHandler) GetCoursesByTeacher(c *gin.Context) {
	teacherID := c.Param("teacherId")

	courses, err := h.Store.GetCoursesByTeacher(teacherID)
	if err != nil {
		h.Log.Errorf("Error in GetCoursesByTeacher handler for ID %s: %v", teacherID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve courses for the teacher"})
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	c.JSON(http.StatusOK, courses)
}

// --- Enrollment Handlers ---

// GetEnrollmentsByCourse handles GET /api/courses/:courseId/enrollments
func (h *APIHandler) GetEnrollmentsByCourse(c *gin.Context) {
	courseID := c.Param("courseId")

	course, err := h.Store.GetCourseByID(courseID)
	if err != nil {
		h.Log.Errorf("Error checking course in GetEnrollmentsByCourse handler for ID %s: %v", courseID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify course"})
		return
	}
	if course == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	enrollments, err := h.Store.GetEnrollmentsByCourse(courseID)
	if err != nil {
		h.Log.Errorf("Error in GetEnrollmentsByCourse handler for ID %s: %v", courseID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve enrollments for the course"})
		return
	}
	if enrollments == nil {
		enrollments = []models.Enrollment{}
	}
	c.JSON(http.StatusOK, enrollments)
}

// GetEnrollmentsByStudent handles GET /api/students/:studentId/enrollments
func (h *APIHandler) GetEnrollmentsByStudent(c *gin.Context) {
	studentID := c.Param("studentId")

	enrollments, err := h.Store.GetEnrollmentsByStudent(studentID)
	if err != nil {
		h.Log.Errorf("Error in GetEnrollmentsByStudent handler for ID %s: %v", studentID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve enrollments for the student"})
		return
	}
	if enrollments == nil {
		enrollments = []models.Enrollment{}
	}
	c.JSON(http.StatusOK, enrollments)
}

// AddEnrollment handles POST /api/enrollments. Posting an existing
// enrollment updates its score.
func (h *APIHandler) AddEnrollment(c *gin.Context) {
	var enrollment models.Enrollment
	if err := c.ShouldBindJSON(&enrollment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if enrollment.StudentID == "" || enrollment.CourseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "StudentID and CourseID are required"})
		return
	}

	course, err := h.Store.GetCourseByID(enrollment.CourseID)
	if err != nil {
		h.Log.Errorf("Error checking course in AddEnrollment handler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify course"})
		return
	}
	if course == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	if err := h.Store.AddEnrollment(enrollment); err != nil {
		h.Log.Errorf("Error in AddEnrollment handler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add enrollment"})
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

// --- Import Handler ---

// ImportEnrollments handles POST /api/import/enrollments
func (h *APIHandler) ImportEnrollments(c *gin.Context) {
	courseID := strings.TrimSpace(c.PostForm("courseId"))
	if courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing 'courseId' in form data"})
		return
	}

	file, header, err := c.Request.FormFile("file") // "file" is the name attribute in the form
	if err != nil {
		h.Log.Errorf("Error getting form file: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Error retrieving uploaded file: " + err.Error()})
		return
	}
	defer file.Close()

	h.Log.Infof("Received file upload: %s for course: %s", header.Filename, courseID)

	importedCount, err := db.ImportEnrollmentsFromExcel(h.Store, file, courseID, h.Log)
	if err != nil {
		h.Log.Errorf("Error importing enrollments from file %s for course %s: %v", header.Filename, courseID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to import enrollments: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Import successful",
		"importedCount": importedCount,
		"courseId":      courseID,
	})
}

// --- Ping Handler ---
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}

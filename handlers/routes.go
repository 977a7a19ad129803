package handlers

import "github.com/gin-gonic/gin"

// SetupRoutes registers the API under /api
func SetupRoutes(router *gin.Engine, h *APIHandler) {
	api := router.Group("/api")
	{
		// Course routes
		api.GET("/courses", h.GetAllCourses)
		api.POST("/courses", h.AddCourse)
		api.GET("/courses/:courseId", h.GetCourseByID)
		api.GET("/courses/:courseId/enrollments", h.GetEnrollmentsByCourse)
		api.GET("/teachers/:teacherId/courses", h.GetCoursesByTeacher)

		// Enrollment routes
		api.POST("/enrollments", h.AddEnrollment)
		api.GET("/students/:studentId/enrollments", h.GetEnrollmentsByStudent)

		// Import route
		api.POST("/import/enrollments", h.ImportEnrollments)

		// Report routes
		teachers := api.Group("/reports/teachers/:teacherId")
		teachers.GET("", h.GetReport(teacherFromPath))
		teachers.GET("/charts/:kind", h.GetChart(teacherFromPath))
		teachers.GET("/export", h.ExportReport(teacherFromPath))

		students := api.Group("/reports/students/:studentId")
		students.GET("", h.GetReport(studentFromPath))
		students.GET("/charts/:kind", h.GetChart(studentFromPath))
		students.GET("/export", h.ExportReport(studentFromPath))

		api.GET("/ping", PingHandler)
	}
}

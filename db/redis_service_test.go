package db

import (
	"bytes"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"grade-report-server-go/models"
)

func setupRedisService(t *testing.T) (*RedisService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger, _ := test.NewNullLogger()
	return NewRedisService(client, logger), mr
}

func TestRedisCourses(t *testing.T) {
	s, _ := setupRedisService(t)

	require.NoError(t, s.AddCourse(models.Course{ID: "C1", Code: "CS101", Name: "Go", TeacherID: "T1"}))
	require.NoError(t, s.AddCourse(models.Course{ID: "C2", Code: "CS201", Name: "DB", TeacherID: "T1"}))
	require.NoError(t, s.AddCourse(models.Course{ID: "C3", Code: "MA101", Name: "Calc", TeacherID: "T2"}))

	t.Run("Get by ID", func(t *testing.T) {
		c, err := s.GetCourseByID("C1")
		require.NoError(t, err)
		assert.Equal(t, &models.Course{ID: "C1", Code: "CS101", Name: "Go", TeacherID: "T1"}, c)

		missing, err := s.GetCourseByID("NOPE")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("By teacher keeps creation order", func(t *testing.T) {
		courses, err := s.GetCoursesByTeacher("T1")
		require.NoError(t, err)
		require.Len(t, courses, 2)
		assert.Equal(t, "C1", courses[0].ID)
		assert.Equal(t, "C2", courses[1].ID)

		none, err := s.GetCoursesByTeacher("T9")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Reassigning a course moves it", func(t *testing.T) {
		require.NoError(t, s.AddCourse(models.Course{ID: "C2", Code: "CS201", Name: "Databases", TeacherID: "T2"}))

		t1, _ := s.GetCoursesByTeacher("T1")
		t2, _ := s.GetCoursesByTeacher("T2")
		assert.Len(t, t1, 1)
		assert.Len(t, t2, 2)
		assert.Equal(t, "Databases", t2[1].Name)

		all, err := s.GetAllCourses()
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("Validation", func(t *testing.T) {
		assert.Error(t, s.AddCourse(models.Course{ID: "C9", Name: "No teacher"}))
	})
}

func TestRedisEnrollments(t *testing.T) {
	s, _ := setupRedisService(t)
	require.NoError(t, s.AddCourse(models.Course{ID: "C1", Code: "CS101", Name: "Go", TeacherID: "T1"}))
	require.NoError(t, s.AddCourse(models.Course{ID: "C2", Code: "CS201", Name: "DB", TeacherID: "T1"}))

	require.NoError(t, s.AddEnrollment(models.Enrollment{StudentID: "S1", CourseID: "C1", Score: models.ScoreOf(60)}))
	require.NoError(t, s.AddEnrollment(models.Enrollment{StudentID: "S2", CourseID: "C1"}))
	require.NoError(t, s.AddEnrollment(models.Enrollment{StudentID: "S1", CourseID: "C2", Score: models.ScoreOf(87.5)}))

	t.Run("By course", func(t *testing.T) {
		list, err := s.GetEnrollmentsByCourse("C1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "S1", list[0].StudentID)
		assert.Equal(t, 60.0, *list[0].Score)
		assert.Nil(t, list[1].Score)
	})

	t.Run("By student", func(t *testing.T) {
		list, err := s.GetEnrollmentsByStudent("S1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "C2", list[1].CourseID)
		assert.Equal(t, 87.5, *list[1].Score)
	})

	t.Run("Regrading does not duplicate", func(t *testing.T) {
		require.NoError(t, s.AddEnrollment(models.Enrollment{StudentID: "S2", CourseID: "C1", Score: models.ScoreOf(75)}))
		list, _ := s.GetEnrollmentsByCourse("C1")
		require.Len(t, list, 2)
		assert.Equal(t, 75.0, *list[1].Score)

		require.NoError(t, s.AddEnrollment(models.Enrollment{StudentID: "S2", CourseID: "C1"}))
		list, _ = s.GetEnrollmentsByCourse("C1")
		assert.Nil(t, list[1].Score)
	})

	t.Run("Unknown course is rejected", func(t *testing.T) {
		assert.Error(t, s.AddEnrollment(models.Enrollment{StudentID: "S1", CourseID: "NOPE"}))
		assert.Error(t, s.AddEnrollment(models.Enrollment{CourseID: "C1"}))
	})

	t.Run("Report source adapter", func(t *testing.T) {
		src := ReportSource{Store: s}
		courses, err := src.CoursesByTeacher("T1")
		require.NoError(t, err)
		assert.Len(t, courses, 2)
		list, err := src.EnrollmentsByStudent("S1")
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

func TestRedisMalformedScore(t *testing.T) {
	s, mr := setupRedisService(t)
	require.NoError(t, s.AddCourse(models.Course{ID: "C1", Code: "CS101", Name: "Go", TeacherID: "T1"}))
	require.NoError(t, s.AddEnrollment(models.Enrollment{StudentID: "S1", CourseID: "C1", Score: models.ScoreOf(50)}))

	mr.HSet(getEnrollmentKey("C1", "S1"), "score", "abc")

	e, err := s.GetEnrollment("C1", "S1")
	require.NoError(t, err)
	assert.Nil(t, e.Score)
}

func buildImportWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return &buf
}

func TestImportEnrollmentsFromExcel(t *testing.T) {
	s, _ := setupRedisService(t)
	logger, _ := test.NewNullLogger()
	require.NoError(t, s.AddCourse(models.Course{ID: "C1", Code: "CS101", Name: "Go", TeacherID: "T1"}))

	t.Run("Success", func(t *testing.T) {
		file := buildImportWorkbook(t, [][]interface{}{
			{"Student ID", "Score"},
			{"S1", 91},
			{"S2", ""},
			{"", 50},
			{"S3", "not a number"},
			{"S4", 58.5},
		})

		n, err := ImportEnrollmentsFromExcel(s, file, "C1", logger)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		list, _ := s.GetEnrollmentsByCourse("C1")
		require.Len(t, list, 3)
		assert.Equal(t, 91.0, *list[0].Score)
		assert.Nil(t, list[1].Score)
		assert.Equal(t, "S4", list[2].StudentID)
		assert.Equal(t, 58.5, *list[2].Score)
	})

	t.Run("Error: unknown course", func(t *testing.T) {
		file := buildImportWorkbook(t, [][]interface{}{{"Student ID", "Score"}})
		_, err := ImportEnrollmentsFromExcel(s, file, "NOPE", logger)
		assert.Error(t, err)
	})

	t.Run("Error: not a workbook", func(t *testing.T) {
		_, err := ImportEnrollmentsFromExcel(s, bytes.NewBufferString("plain text"), "C1", logger)
		assert.Error(t, err)
	})
}

func TestCheckAndSeedData(t *testing.T) {
	s, _ := setupRedisService(t)
	logger, _ := test.NewNullLogger()

	assert.True(t, CheckAndSeedData(s, logger))
	courses, err := s.GetCoursesByTeacher("T_DEMO_01")
	require.NoError(t, err)
	assert.Len(t, courses, 2)

	assert.False(t, CheckAndSeedData(s, logger))
}

package handlers

import (
	"bytes"
	"encoding/json"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"grade-report-server-go/db"
	"grade-report-server-go/models"
	"grade-report-server-go/report"
)

func setupRouter(t *testing.T, withRenderer bool) (*gin.Engine, *db.RedisService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger, _ := test.NewNullLogger()
	store := db.NewRedisService(client, logger)

	opts := ReportOptions{Labels: report.LabelsFor("en"), ExportName: "report", ExportExtension: ".xls"}
	if withRenderer {
		font, err := report.LoadFont("")
		require.NoError(t, err)
		opts.Renderer = report.NewGoChartRenderer(font, 400, 300)
	}

	router := gin.New()
	SetupRoutes(router, NewAPIHandler(store, opts, logger))
	return router, store
}

func seed(t *testing.T, store *db.RedisService) {
	t.Helper()
	require.NoError(t, store.AddCourse(models.Course{ID: "C1", Code: "CS101", Name: "Intro to Go", TeacherID: "T1"}))
	require.NoError(t, store.AddCourse(models.Course{ID: "C2", Code: "CS201", Name: "Data Structures", TeacherID: "T1"}))
	for _, e := range []models.Enrollment{
		{StudentID: "S1", CourseID: "C1", Score: models.ScoreOf(60)},
		{StudentID: "S2", CourseID: "C1", Score: models.ScoreOf(59)},
		{StudentID: "S3", CourseID: "C1"},
		{StudentID: "S1", CourseID: "C2", Score: models.ScoreOf(87.5)},
	} {
		require.NoError(t, store.AddEnrollment(e))
	}
}

func doRequest(router *gin.Engine, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCourseRoutes(t *testing.T) {
	router, _ := setupRouter(t, false)

	t.Run("Add and fetch", func(t *testing.T) {
		body := []byte(`{"id":"C1","code":"CS101","name":"Intro to Go","teacherId":"T1"}`)
		w := doRequest(router, http.MethodPost, "/api/courses", body, "application/json")
		assert.Equal(t, http.StatusCreated, w.Code)

		w = doRequest(router, http.MethodGet, "/api/courses/C1", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		var course models.Course
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &course))
		assert.Equal(t, "CS101", course.Code)

		w = doRequest(router, http.MethodGet, "/api/teachers/T1/courses", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		var courses []models.Course
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &courses))
		assert.Len(t, courses, 1)
	})

	t.Run("Missing fields", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/courses", []byte(`{"id":"C9"}`), "application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Not found", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/courses/NOPE", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = doRequest(router, http.MethodGet, "/api/courses/NOPE/enrollments", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Empty teacher list is an empty array", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/teachers/T9/courses", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]", w.Body.String())
	})
}

func TestEnrollmentRoutes(t *testing.T) {
	router, store := setupRouter(t, false)
	seed(t, store)

	t.Run("Add", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/enrollments", []byte(`{"studentId":"S4","courseId":"C2","score":70}`), "application/json")
		assert.Equal(t, http.StatusCreated, w.Code)

		w = doRequest(router, http.MethodGet, "/api/courses/C2/enrollments", nil, "")
		var list []models.Enrollment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 2)
		assert.Equal(t, 70.0, *list[1].Score)
	})

	t.Run("Unknown course", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/enrollments", []byte(`{"studentId":"S4","courseId":"NOPE"}`), "application/json")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("By student", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/students/S1/enrollments", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		var list []models.Enrollment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		assert.Len(t, list, 2)
	})
}

func TestImportRoute(t *testing.T) {
	router, store := setupRouter(t, false)
	seed(t, store)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Student ID", "Score"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"S7", 77}))
	var xlsx bytes.Buffer
	_, err := f.WriteTo(&xlsx)
	require.NoError(t, err)
	f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("courseId", "C2"))
	part, err := mw.CreateFormFile("file", "grades.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := doRequest(router, http.MethodPost, "/api/import/enrollments", body.Bytes(), mw.FormDataContentType())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"importedCount":1`)

	w = doRequest(router, http.MethodPost, "/api/import/enrollments", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportRoutes(t *testing.T) {
	router, store := setupRouter(t, true)
	seed(t, store)

	t.Run("Teacher datasets", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/reports/teachers/T1", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var r report.Report
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
		require.NotNil(t, r.Teacher)
		rate, _ := r.Teacher.PassRates.Value("CS101 (Intro to Go)")
		assert.Equal(t, 33.3, rate)
		avg, _ := r.Teacher.AverageScores.Value("CS101 (Intro to Go)")
		assert.Equal(t, 39.7, avg)
	})

	t.Run("Student datasets", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/reports/students/S3", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var r report.Report
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
		require.NotNil(t, r.Student)
		assert.Equal(t, 0, r.Student.Trend.Len())
	})

	t.Run("Charts", func(t *testing.T) {
		for _, path := range []string{
			"/api/reports/teachers/T1/charts/count",
			"/api/reports/teachers/T1/charts/passrate",
			"/api/reports/teachers/T1/charts/average",
			"/api/reports/students/S1/charts/trend",
			"/api/reports/students/S2/charts/trend",
			"/api/reports/teachers/T9/charts/count",
		} {
			w := doRequest(router, http.MethodGet, path, nil, "")
			require.Equal(t, http.StatusOK, w.Code, path)
			assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
			_, err := png.DecodeConfig(w.Body)
			assert.NoError(t, err, path)
		}

		w := doRequest(router, http.MethodGet, "/api/reports/students/S1/charts/count", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Teacher export", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/reports/teachers/T1/export?filename=grades", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="grades.xls"`)
		assert.NotEmpty(t, w.Header().Get("X-Report-ID"))

		f, err := excelize.OpenReader(w.Body)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("Grade Report")
		require.NoError(t, err)
		assert.Len(t, rows, 1+4)
		assert.Equal(t, "S1", rows[1][0])
		assert.Equal(t, "Intro to Go", rows[1][1])
		assert.Equal(t, "60", rows[1][2])
	})

	t.Run("Non-ASCII export name", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/reports/teachers/T1/export?filename="+url.QueryEscape("成績"), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `attachment; filename="__.xls"; filename*=UTF-8''%E6%88%90%E7%B8%BE.xls`, w.Header().Get("Content-Disposition"))
	})

	t.Run("Student export uses the default name", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/reports/students/S1/export", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.Contains(w.Header().Get("Content-Disposition"), `filename="report.xls"`))
	})
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="grades.xls"`, contentDisposition("grades.xls"))
	assert.Equal(t, `attachment; filename="__ a.xls"; filename*=UTF-8''%E6%88%90%E7%B8%BE%20a.xls`, contentDisposition("成績 a.xls"))
	assert.Equal(t, `attachment; filename="a_b.xls"; filename*=UTF-8''a%22b.xls`, contentDisposition(`a"b.xls`))
}

func TestChartsWithoutRenderer(t *testing.T) {
	router, _ := setupRouter(t, false)
	w := doRequest(router, http.MethodGet, "/api/reports/teachers/T1/charts/count", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPing(t *testing.T) {
	router, _ := setupRouter(t, false)
	w := doRequest(router, http.MethodGet, "/api/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Pong!")
}

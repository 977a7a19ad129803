package report

import (
	"fmt"
	"strconv"

	"grade-report-server-go/models"
)

// PassingScore is the lowest score that counts as a pass.
const PassingScore = 60.0

// CourseMetrics are the per-course figures behind the teacher charts.
type CourseMetrics struct {
	Course       models.Course `json:"course"`
	Count        int           `json:"count"`
	Passed       int           `json:"passed"`
	PassRate     float64       `json:"passRate"`
	AverageScore float64       `json:"averageScore"`
}

// TeacherDatasets feed the three teacher charts.
type TeacherDatasets struct {
	StudentCounts Series          `json:"studentCounts"`
	PassRates     Series          `json:"passRates"`
	AverageScores Series          `json:"averageScores"`
	Courses       []CourseMetrics `json:"courses"`
}

// StudentDatasets feed the student trend chart.
type StudentDatasets struct {
	Trend Series `json:"trend"`
}

// CourseLabel is the category label of a course on teacher charts.
func CourseLabel(c models.Course) string {
	return c.Code + " (" + c.Name + ")"
}

// RoundOneDecimal rounds v to one decimal place by formatting and parsing
// it back, so the value equals what a "0.0" formatter prints.
func RoundOneDecimal(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// ComputeMetrics aggregates the enrollments of one course.
//
// The average divides the sum of recorded scores by the total number of
// enrollments, so ungraded enrollments pull the average down.
func ComputeMetrics(course models.Course, enrollments []models.Enrollment) CourseMetrics {
	m := CourseMetrics{Course: course, Count: len(enrollments)}
	if m.Count == 0 {
		return m
	}

	var total float64
	for _, e := range enrollments {
		if e.Score == nil {
			continue
		}
		total += *e.Score
		if *e.Score >= PassingScore {
			m.Passed++
		}
	}
	m.PassRate = RoundOneDecimal(float64(m.Passed) / float64(m.Count) * 100)
	m.AverageScore = RoundOneDecimal(total / float64(m.Count))
	return m
}

// AggregateTeacher computes the teacher datasets for courses, querying the
// enrollments of each course.
func AggregateTeacher(courses []models.Course, enrollments EnrollmentService, labels Labels) (*TeacherDatasets, error) {
	ds := &TeacherDatasets{
		StudentCounts: NewSeries(labels.CountSeries),
		PassRates:     NewSeries(labels.PassSeries),
		AverageScores: NewSeries(labels.AverageTitle),
		Courses:       make([]CourseMetrics, 0, len(courses)),
	}
	for _, c := range courses {
		list, err := enrollments.EnrollmentsByCourse(c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load enrollments for course %s: %w", c.ID, err)
		}
		m := ComputeMetrics(c, list)
		label := CourseLabel(c)
		ds.StudentCounts.Set(label, float64(m.Count))
		ds.PassRates.Set(label, m.PassRate)
		ds.AverageScores.Set(label, m.AverageScore)
		ds.Courses = append(ds.Courses, m)
	}
	return ds, nil
}

// StudentTrend builds the score-per-course series of one student. For each
// course the first enrollment with a matching course ID is used; courses
// without a recorded score are left out.
func StudentTrend(courses []models.Course, enrollments []models.Enrollment, labels Labels) *StudentDatasets {
	ds := &StudentDatasets{Trend: NewSeries(labels.TrendSeries)}
	for _, c := range courses {
		e := firstEnrollment(enrollments, c.ID)
		if e == nil || e.Score == nil {
			continue
		}
		ds.Trend.Set(c.Name, *e.Score)
	}
	return ds
}

func firstEnrollment(enrollments []models.Enrollment, courseID string) *models.Enrollment {
	for i := range enrollments {
		if enrollments[i].CourseID == courseID {
			return &enrollments[i]
		}
	}
	return nil
}

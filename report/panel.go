package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"grade-report-server-go/models"
)

// ErrUnknownChart is returned for a chart kind the audience does not have.
var ErrUnknownChart = errors.New("unknown chart")

// Report holds the datasets of one load. Exactly one of Teacher and Student
// is set, or neither for an empty audience.
type Report struct {
	Audience string           `json:"audience"`
	Teacher  *TeacherDatasets `json:"teacher,omitempty"`
	Student  *StudentDatasets `json:"student,omitempty"`
}

// Panel builds the reports of one audience. It keeps no state between
// calls besides its configuration, so every operation sees fresh data.
type Panel struct {
	audience    models.Audience
	courses     CourseService
	enrollments EnrollmentService

	renderer   ChartRenderer
	labels     Labels
	fontFamily string
	exportName string
	exportExt  string
	log        logrus.FieldLogger
}

// Option configures a Panel.
type Option func(*Panel)

// WithRenderer sets the chart renderer. Without one, Refresh only
// aggregates.
func WithRenderer(r ChartRenderer) Option {
	return func(p *Panel) { p.renderer = r }
}

// WithLabels sets the chart and workbook texts.
func WithLabels(l Labels) Option {
	return func(p *Panel) { p.labels = l }
}

// WithFontFamily sets the workbook header font.
func WithFontFamily(family string) Option {
	return func(p *Panel) { p.fontFamily = family }
}

// WithExportName sets the default export file name and the extension
// enforced on chosen names.
func WithExportName(name, ext string) Option {
	return func(p *Panel) {
		if name != "" {
			p.exportName = name
		}
		if ext != "" {
			p.exportExt = ext
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Panel) { p.log = l }
}

// NewPanel returns a panel for audience backed by the two services.
func NewPanel(audience models.Audience, courses CourseService, enrollments EnrollmentService, opts ...Option) *Panel {
	p := &Panel{
		audience:    audience,
		courses:     courses,
		enrollments: enrollments,
		labels:      LabelsFor(DefaultLocale),
		fontFamily:  DefaultFontFamily,
		exportName:  DefaultExportName,
		exportExt:   DefaultExportExtension,
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.WithField("audience", audience.String())
	return p
}

// Audience returns the audience the panel reports on.
func (p *Panel) Audience() models.Audience { return p.audience }

// Load aggregates the datasets of the audience.
func (p *Panel) Load() (*Report, error) {
	r := &Report{Audience: p.audience.Kind().String()}

	if teacherID, ok := p.audience.IsTeacher(); ok {
		courses, err := p.courses.CoursesByTeacher(teacherID)
		if err != nil {
			return nil, fmt.Errorf("failed to load courses for teacher %s: %w", teacherID, err)
		}
		r.Teacher, err = AggregateTeacher(courses, p.enrollments, p.labels)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	if studentID, ok := p.audience.IsStudent(); ok {
		enrollments, err := p.enrollments.EnrollmentsByStudent(studentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load enrollments for student %s: %w", studentID, err)
		}
		courses, err := p.studentCourses(enrollments)
		if err != nil {
			return nil, err
		}
		r.Student = StudentTrend(courses, enrollments, p.labels)
	}
	return r, nil
}

// studentCourses resolves one course per enrollment, keeping duplicates.
func (p *Panel) studentCourses(enrollments []models.Enrollment) ([]models.Course, error) {
	courses := make([]models.Course, 0, len(enrollments))
	for _, e := range enrollments {
		c, err := p.courses.CourseByID(e.CourseID)
		if err != nil {
			return nil, fmt.Errorf("failed to load course %s: %w", e.CourseID, err)
		}
		if c == nil {
			p.log.Warnf("Enrollment of %s references unknown course %s, skipping", e.StudentID, e.CourseID)
			continue
		}
		courses = append(courses, *c)
	}
	return courses, nil
}

// ChartSpecs lists the charts of a loaded report in display order.
func (p *Panel) ChartSpecs(r *Report) []ChartSpec {
	var specs []ChartSpec
	if r.Teacher != nil {
		specs = append(specs,
			ChartSpec{
				Kind:         ChartStudentCount,
				Type:         BarChart,
				Title:        p.labels.CountTitle,
				CategoryAxis: p.labels.CourseAxis,
				ValueAxis:    p.labels.CountValueAxis,
				NoData:       p.labels.NoData,
				Series:       r.Teacher.StudentCounts,
				ColorFactor:  countColorFactor,
			},
			ChartSpec{
				Kind:         ChartPassRate,
				Type:         BarChart,
				Title:        p.labels.PassTitle,
				CategoryAxis: p.labels.CourseAxis,
				ValueAxis:    p.labels.PassValueAxis,
				NoData:       p.labels.NoData,
				Series:       r.Teacher.PassRates,
				ColorFactor:  passRateColorFactor,
				ValueRange:   &ValueRange{Min: 0, Max: 100},
			},
			ChartSpec{
				Kind:   ChartAverage,
				Type:   PieChart,
				Title:  p.labels.AverageTitle,
				NoData: p.labels.NoData,
				Series: r.Teacher.AverageScores,
			},
		)
	}
	if r.Student != nil {
		specs = append(specs, ChartSpec{
			Kind:         ChartTrend,
			Type:         LineChart,
			Title:        p.labels.TrendTitle,
			CategoryAxis: p.labels.CourseAxis,
			ValueAxis:    p.labels.TrendValueAxis,
			NoData:       p.labels.NoData,
			Series:       r.Student.Trend,
			ValueRange:   &ValueRange{Min: 0, Max: 100},
		})
	}
	return specs
}

// Refresh reloads the datasets and renders every chart of the audience.
// It is safe to call repeatedly.
func (p *Panel) Refresh() (*Report, []Chart, error) {
	r, err := p.Load()
	if err != nil {
		return nil, nil, err
	}
	if p.renderer == nil {
		return r, nil, nil
	}

	specs := p.ChartSpecs(r)
	charts := make([]Chart, 0, len(specs))
	for _, spec := range specs {
		img, err := p.renderer.Render(spec)
		if err != nil {
			return nil, nil, err
		}
		charts = append(charts, Chart{Kind: spec.Kind, Title: spec.Title, PNG: img})
	}
	p.log.Debugf("Rendered %d charts", len(charts))
	return r, charts, nil
}

// RenderChart reloads the datasets and renders the single chart kind.
func (p *Panel) RenderChart(kind ChartKind) (*Chart, error) {
	if p.renderer == nil {
		return nil, errors.New("no chart renderer configured")
	}
	r, err := p.Load()
	if err != nil {
		return nil, err
	}
	for _, spec := range p.ChartSpecs(r) {
		if spec.Kind != kind {
			continue
		}
		img, err := p.renderer.Render(spec)
		if err != nil {
			return nil, err
		}
		return &Chart{Kind: kind, Title: spec.Title, PNG: img}, nil
	}
	return nil, fmt.Errorf("%w %q for %s", ErrUnknownChart, kind, p.audience.Kind())
}

// ExportFilename returns name with the export extension enforced, or the
// default file name when name is empty.
func (p *Panel) ExportFilename(name string) string {
	if name == "" {
		name = p.exportName
	}
	return NormalizeFilename(name, p.exportExt)
}

// WriteExport writes the export workbook to w and returns the number of
// data rows.
func (p *Panel) WriteExport(w io.Writer) (int, error) {
	rows, err := CollectRows(p.audience, p.courses, p.enrollments)
	if err != nil {
		return 0, err
	}
	if err := WriteWorkbook(w, rows, p.workbookOptions()); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ExportTo writes the export workbook to the file name, appending the
// export extension when missing, and returns the absolute path written.
// A partially written file is removed.
func (p *Panel) ExportTo(name string) (dest string, err error) {
	path, err := filepath.Abs(NormalizeFilename(name, p.exportExt))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	rows, err := CollectRows(p.audience, p.courses, p.enrollments)
	if err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
			dest = ""
		}
		if err != nil {
			if rerr := os.Remove(path); rerr != nil {
				p.log.Warnf("Error removing partial export %s: %v", path, rerr)
			}
		}
	}()

	if err := WriteWorkbook(file, rows, p.workbookOptions()); err != nil {
		return "", err
	}
	p.log.Infof("Exported %d rows to %s", len(rows), path)
	return path, nil
}

// Export asks picker for a destination, writes the workbook and tells
// notifier the outcome. Failures never escape: they end in ExportFailed.
// The returned state is the terminal state reached.
func (p *Panel) Export(picker DestinationPicker, notifier Notifier) ExportState {
	state := ExportPicking
	p.log.Debugf("Export %s", state)

	name, ok := picker.PickDestination(p.ExportFilename(""))
	if !ok {
		p.log.Debug("Export cancelled")
		return ExportCancelled
	}

	state = ExportWriting
	p.log.Debugf("Export %s to %s", state, name)
	path, err := p.ExportTo(name)
	if err != nil {
		p.log.Errorf("Error exporting report: %v", err)
		notifier.ExportFailed(err)
		return ExportFailed
	}
	notifier.ExportSucceeded(path)
	return ExportSucceeded
}

func (p *Panel) workbookOptions() WorkbookOptions {
	return WorkbookOptions{Labels: p.labels, FontFamily: p.fontFamily}
}

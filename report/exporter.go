package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"

	"grade-report-server-go/models"
)

const (
	// DefaultExportName is the file name offered to the user.
	DefaultExportName = "report"
	// DefaultExportExtension is appended to names that lack it.
	DefaultExportExtension = ".xls"
	// DefaultFontFamily is the font used for workbook headers.
	DefaultFontFamily = "Microsoft JhengHei"

	minColumnWidth = 10
	maxColumnWidth = 50
)

// ExportRow is one line of the exported workbook.
type ExportRow struct {
	StudentID  string
	CourseName string
	Score      *float64
}

// NormalizeFilename appends ext to name unless name already ends with it.
func NormalizeFilename(name, ext string) string {
	if ext == "" {
		ext = DefaultExportExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if strings.HasSuffix(name, ext) {
		return name
	}
	return name + ext
}

// CollectRows lists the enrollments to export for audience. Teachers get
// the enrollments of all their courses in course order, students their own
// enrollments. Course names are resolved per row.
func CollectRows(audience models.Audience, courses CourseService, enrollments EnrollmentService) ([]ExportRow, error) {
	var list []models.Enrollment
	if teacherID, ok := audience.IsTeacher(); ok {
		taught, err := courses.CoursesByTeacher(teacherID)
		if err != nil {
			return nil, fmt.Errorf("failed to load courses for teacher %s: %w", teacherID, err)
		}
		for _, c := range taught {
			part, err := enrollments.EnrollmentsByCourse(c.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to load enrollments for course %s: %w", c.ID, err)
			}
			list = append(list, part...)
		}
	} else if studentID, ok := audience.IsStudent(); ok {
		var err error
		list, err = enrollments.EnrollmentsByStudent(studentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load enrollments for student %s: %w", studentID, err)
		}
	}

	rows := make([]ExportRow, 0, len(list))
	for _, e := range list {
		c, err := courses.CourseByID(e.CourseID)
		if err != nil {
			return nil, fmt.Errorf("failed to load course %s: %w", e.CourseID, err)
		}
		if c == nil {
			return nil, fmt.Errorf("%w: %s", ErrCourseNotFound, e.CourseID)
		}
		rows = append(rows, ExportRow{StudentID: e.StudentID, CourseName: c.Name, Score: e.Score})
	}
	return rows, nil
}

// WorkbookOptions control the sheet name, headers and header font.
type WorkbookOptions struct {
	Labels     Labels
	FontFamily string
}

// WriteWorkbook writes rows as a single-sheet workbook to w.
func WriteWorkbook(w io.Writer, rows []ExportRow, opts WorkbookOptions) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := opts.Labels.SheetName
	if sheet == "" {
		sheet = LabelsFor(DefaultLocale).SheetName
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	family := opts.FontFamily
	if family == "" {
		family = DefaultFontFamily
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Family: family}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	widths := make([]int, len(opts.Labels.Headers))
	track := func(col int, text string) {
		if w := runewidth.StringWidth(text); w > widths[col] {
			widths[col] = w
		}
	}

	for i, h := range opts.Labels.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to style header %s: %w", cell, err)
		}
		track(i, h)
	}

	for i, row := range rows {
		r := i + 2
		if err := f.SetCellStr(sheet, cellName(1, r), row.StudentID); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
		track(0, row.StudentID)
		if err := f.SetCellStr(sheet, cellName(2, r), row.CourseName); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
		track(1, row.CourseName)
		if row.Score != nil {
			err = f.SetCellFloat(sheet, cellName(3, r), *row.Score, -1, 64)
			track(2, formatValue(*row.Score))
		} else {
			err = f.SetCellStr(sheet, cellName(3, r), "")
		}
		if err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}

	if err := autoFitColumns(f, sheet, widths); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// autoFitColumns sizes each column to its widest cell.
func autoFitColumns(f *excelize.File, sheet string, widths []int) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := float64(w) + 2
		if width < minColumnWidth {
			width = minColumnWidth
		}
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

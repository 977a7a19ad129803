package db

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"grade-report-server-go/models"
)

// ImportEnrollmentsFromExcel reads an Excel file stream and enrolls the
// listed students in the course. Column A holds the student ID, column B
// the score (blank for ungraded). The first row is a header.
func ImportEnrollmentsFromExcel(store Store, file io.Reader, courseID string, logger logrus.FieldLogger) (int, error) {
	course, err := store.GetCourseByID(courseID)
	if err != nil {
		return 0, fmt.Errorf("failed to check course before import: %w", err)
	}
	if course == nil {
		return 0, fmt.Errorf("import target course %s does not exist", courseID)
	}

	f, err := excelize.OpenReader(file)
	if err != nil {
		logger.Errorf("Error opening Excel reader: %v", err)
		return 0, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		// Close the spreadsheet.
		if err := f.Close(); err != nil {
			logger.Errorf("Error closing excel file: %v", err)
		}
	}()

	// Assuming data is in the first sheet
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return 0, errors.New("excel file does not contain any sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		logger.Errorf("Error getting rows from sheet '%s': %v", sheetName, err)
		return 0, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}

	toAdd := []models.Enrollment{}
	for i, row := range rows {
		if i == 0 {
			continue // Skip header row
		}

		var studentID, rawScore string
		if len(row) > 0 {
			studentID = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			rawScore = strings.TrimSpace(row[1])
		}

		if studentID == "" {
			logger.Warnf("Skipping row %d due to missing student ID", i+1)
			continue
		}

		enrollment := models.Enrollment{StudentID: studentID, CourseID: courseID}
		if rawScore != "" {
			score, err := strconv.ParseFloat(rawScore, 64)
			if err != nil {
				logger.Warnf("Skipping row %d due to invalid score '%s'", i+1, rawScore)
				continue
			}
			enrollment.Score = &score
		}
		toAdd = append(toAdd, enrollment)
	}

	logger.Infof("Attempting to add %d enrollments from Excel file to course %s", len(toAdd), courseID)
	imported := 0
	for _, enrollment := range toAdd {
		if err := store.AddEnrollment(enrollment); err != nil {
			logger.Errorf("Error adding enrollment of %s during import: %v", enrollment.StudentID, err)
			continue // Continue processing other students
		}
		imported++
	}

	logger.Infof("Successfully imported %d enrollments into course %s", imported, courseID)
	return imported, nil
}

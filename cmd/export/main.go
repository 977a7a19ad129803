// Command export writes the grade report of one teacher or student to a
// spreadsheet, prompting for the destination file.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"grade-report-server-go/config"
	"grade-report-server-go/db"
	"grade-report-server-go/models"
	"grade-report-server-go/report"
)

func main() {
	teacherID := flag.String("teacher", "", "teacher ID to report on")
	studentID := flag.String("student", "", "student ID to report on")
	chartsDir := flag.String("charts", "", "also write the report charts as PNG files into this directory")
	flag.Parse()

	audience, err := audienceFromFlags(*teacherID, *studentID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load(config.NewLogger("info"), ".env")
	logger := config.NewLogger(cfg.LogLevel)

	store, closeStore, err := db.OpenStore(cfg.StoreOptions(), logger)
	if err != nil {
		logger.Fatalf("Failed to open %s store: %v", cfg.Store, err)
	}
	defer closeStore()

	opts := []report.Option{
		report.WithLabels(report.LabelsFor(cfg.Locale)),
		report.WithFontFamily(cfg.FontFamily),
		report.WithExportName(cfg.ExportName, cfg.ExportExtension),
		report.WithLogger(logger),
	}
	if *chartsDir != "" {
		font, err := report.LoadFont(cfg.FontPath)
		if err != nil {
			logger.Fatalf("Failed to load chart font: %v", err)
		}
		opts = append(opts, report.WithRenderer(report.NewGoChartRenderer(font, cfg.ChartWidth, cfg.ChartHeight)))
	}

	source := db.ReportSource{Store: store}
	panel := report.NewPanel(audience, source, source, opts...)

	if *chartsDir != "" {
		if err := writeCharts(panel, *chartsDir, logger); err != nil {
			logger.Fatalf("Failed to write charts: %v", err)
		}
	}

	state := panel.Export(report.NewPromptPicker(os.Stdin, os.Stdout), report.WriterNotifier{W: os.Stdout})
	if state == report.ExportFailed {
		closeStore()
		os.Exit(1)
	}
}

// audienceFromFlags requires exactly one of the two IDs.
func audienceFromFlags(teacherID, studentID string) (models.Audience, error) {
	switch {
	case teacherID != "" && studentID != "":
		return models.Audience{}, fmt.Errorf("-teacher and -student are mutually exclusive")
	case teacherID != "":
		return models.TeacherAudience(teacherID), nil
	case studentID != "":
		return models.StudentAudience(studentID), nil
	}
	return models.Audience{}, fmt.Errorf("one of -teacher or -student is required")
}

// writeCharts renders every chart of the panel into dir as <kind>.png.
func writeCharts(panel *report.Panel, dir string, logger logrus.FieldLogger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	_, charts, err := panel.Refresh()
	if err != nil {
		return err
	}
	for _, c := range charts {
		path := filepath.Join(dir, string(c.Kind)+".png")
		if err := os.WriteFile(path, c.PNG, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Infof("Wrote %s chart to %s", c.Kind, path)
	}
	return nil
}

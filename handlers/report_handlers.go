package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"grade-report-server-go/db"
	"grade-report-server-go/models"
	"grade-report-server-go/report"
)

const workbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// audienceFunc picks the audience of a report request from its path.
type audienceFunc func(c *gin.Context) models.Audience

func teacherFromPath(c *gin.Context) models.Audience {
	return models.TeacherAudience(c.Param("teacherId"))
}

func studentFromPath(c *gin.Context) models.Audience {
	return models.StudentAudience(c.Param("studentId"))
}

// panel builds a fresh report panel for audience.
func (h *APIHandler) panel(audience models.Audience) *report.Panel {
	return report.NewPanel(audience, db.ReportSource{Store: h.Store}, db.ReportSource{Store: h.Store},
		report.WithRenderer(h.Reports.Renderer),
		report.WithLabels(h.Reports.Labels),
		report.WithFontFamily(h.Reports.FontFamily),
		report.WithExportName(h.Reports.ExportName, h.Reports.ExportExtension),
		report.WithLogger(h.Log),
	)
}

// GetReport handles GET /api/reports/{teachers|students}/:id
func (h *APIHandler) GetReport(audienceOf audienceFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		audience := audienceOf(c)
		r, err := h.panel(audience).Load()
		if err != nil {
			h.Log.Errorf("Error loading report for %s: %v", audience, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load report"})
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

// GetChart handles GET /api/reports/{teachers|students}/:id/charts/:kind
func (h *APIHandler) GetChart(audienceOf audienceFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.Reports.Renderer == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Chart rendering is not configured"})
			return
		}
		audience := audienceOf(c)
		kind := report.ChartKind(c.Param("kind"))

		chart, err := h.panel(audience).RenderChart(kind)
		if errors.Is(err, report.ErrUnknownChart) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chart not found"})
			return
		}
		if err != nil {
			h.Log.Errorf("Error rendering %s chart for %s: %v", kind, audience, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render chart"})
			return
		}
		c.Data(http.StatusOK, "image/png", chart.PNG)
	}
}

// ExportReport handles GET /api/reports/{teachers|students}/:id/export.
// The optional filename query parameter gets the export extension appended
// when it lacks it.
func (h *APIHandler) ExportReport(audienceOf audienceFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		audience := audienceOf(c)
		p := h.panel(audience)
		reportID := uuid.NewString()
		filename := p.ExportFilename(c.Query("filename"))

		var buf bytes.Buffer
		rows, err := p.WriteExport(&buf)
		if err != nil {
			h.Log.Errorf("Export %s for %s failed: %v", reportID, audience, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed: " + err.Error()})
			return
		}

		h.Log.Infof("Export %s for %s: %d rows as %s", reportID, audience, rows, filename)
		c.Header("X-Report-ID", reportID)
		c.Header("Content-Disposition", contentDisposition(filename))
		c.Data(http.StatusOK, workbookContentType, buf.Bytes())
	}
}

// contentDisposition names an attachment. Non-ASCII names get an ASCII
// fallback plus the UTF-8 filename* parameter of RFC 5987.
func contentDisposition(filename string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, filename)
	if fallback == filename {
		return fmt.Sprintf("attachment; filename=%q", filename)
	}
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", fallback, strings.ReplaceAll(url.QueryEscape(filename), "+", "%20"))
}

package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/unowned-ai/moodtrend/pkg/checkin"
	"github.com/unowned-ai/moodtrend/pkg/mood"
	"github.com/unowned-ai/moodtrend/pkg/records"
)

// RecentSamples caps the check-in table at the bottom of the report.
const RecentSamples = 14

// Data is everything rendered on a clinician report.
type Data struct {
	Insights    checkin.Insights
	Samples     []mood.Sample
	Alerts      []records.Alert
	GeneratedAt time.Time
}

// WritePDF renders a one-page clinician report to w using the core
// Helvetica font, so no font files are required at runtime.
func WritePDF(w io.Writer, d Data) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Mood report %s", d.Insights.SubjectID), true)
	pdf.SetCreator("moodtrend", true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr("Mood trend report"))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Subject: %s", d.Insights.SubjectID)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Generated: %s", d.GeneratedAt.Format("2006-01-02 15:04 MST"))))
	pdf.Ln(10)

	section(pdf, tr, "Status")
	r, g, b := statusColor(d.Insights.Status)
	pdf.SetFillColor(r, g, b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(40, 8, tr(string(d.Insights.Status)), "", 0, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  trend %s, risk %s, %d check-ins, %d open alerts",
		d.Insights.Trend.Direction, d.Insights.Trend.RiskLevel, d.Insights.SampleCount, d.Insights.OpenAlerts)),
		"", 1, "L", false, 0, "")
	pdf.Ln(2)

	if d.Insights.Window.Sufficient {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Average over the last %d check-ins: %.2f / 5. Low moods among the last three: %d.",
			len(d.Insights.Window.Scores), d.Insights.Window.Average, d.Insights.Window.BadMoodsInRow)))
	} else {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Not enough data yet: at least %d check-ins are needed for a trend.", mood.MinSamples)))
	}
	pdf.Ln(10)

	section(pdf, tr, "Clinical guidance")
	pdf.MultiCell(0, 5, tr(d.Insights.ClinicianGuidance), "", "L", false)
	pdf.Ln(4)

	section(pdf, tr, "Forecast")
	pdf.Cell(0, 6, tr(fmt.Sprintf("%s (confidence %.0f%%)", d.Insights.Forecast.Prediction, d.Insights.Forecast.Confidence*100)))
	pdf.Ln(6)
	bullets(pdf, tr, d.Insights.Forecast.Recommendations)
	pdf.Ln(4)

	section(pdf, tr, "Suggestions shared with the patient")
	bullets(pdf, tr, d.Insights.Suggestions)
	pdf.Ln(4)

	section(pdf, tr, "Open alerts")
	open := 0
	for _, a := range d.Alerts {
		if a.Dismissed {
			continue
		}
		open++
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("[%s] %s  %s", a.Severity, a.CreatedAt.Format("2006-01-02 15:04"), a.Message)), "", "L", false)
	}
	if open == 0 {
		pdf.Cell(0, 6, tr("None."))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	section(pdf, tr, "Recent check-ins")
	samples := d.Samples
	if len(samples) > RecentSamples {
		samples = samples[len(samples)-RecentSamples:]
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(40, 6, "Recorded", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, "Mood", "B", 0, "L", false, 0, "")
	pdf.CellFormat(15, 6, "Score", "B", 0, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Note", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for i := len(samples) - 1; i >= 0; i-- {
		s := samples[i]
		pdf.CellFormat(40, 6, s.RecordedAt.Format("2006-01-02 15:04"), "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, tr(string(s.Category)), "", 0, "L", false, 0, "")
		pdf.CellFormat(15, 6, fmt.Sprint(s.Category.Score()), "", 0, "C", false, 0, "")
		pdf.CellFormat(0, 6, tr(truncate(s.Note, 70)), "", 1, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, tr(title))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
}

func bullets(pdf *gofpdf.Fpdf, tr func(string) string, items []string) {
	for _, item := range items {
		pdf.MultiCell(0, 5, tr("- "+item), "", "L", false)
	}
}

func statusColor(s mood.Status) (int, int, int) {
	switch s {
	case mood.StatusCritical:
		return 200, 40, 40
	case mood.StatusMonitoring:
		return 220, 140, 20
	case mood.StatusImproving:
		return 40, 150, 70
	default:
		return 90, 110, 140
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

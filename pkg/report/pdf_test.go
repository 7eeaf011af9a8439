package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/unowned-ai/moodtrend/pkg/checkin"
	"github.com/unowned-ai/moodtrend/pkg/mood"
	"github.com/unowned-ai/moodtrend/pkg/records"
)

func TestWritePDF(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	var samples []mood.Sample
	for i, c := range []mood.Category{mood.Happy, mood.Sad, mood.Depressed, mood.Depressed, mood.Stressed} {
		samples = append(samples, mood.Sample{
			ID:         uuid.New(),
			SubjectID:  "42",
			Category:   c,
			RecordedAt: base.Add(time.Duration(i) * 24 * time.Hour),
			Note:       "Schlaf war schlecht, müde",
		})
	}
	trend := mood.AnalyzeTrend(samples)
	ins := checkin.Insights{
		SubjectID:         "42",
		SampleCount:       len(samples),
		Window:            mood.Window(samples),
		Trend:             trend,
		Status:            trend.Status(),
		Suggestions:       mood.SuggestionsFor(trend.RiskLevel),
		Forecast:          mood.ForecastFor(trend.Direction),
		ClinicianGuidance: mood.ClinicianGuidance(trend.RiskLevel),
		OpenAlerts:        1,
	}
	alerts := []records.Alert{
		{ID: uuid.New(), SubjectID: "42", Type: records.AlertMoodDecline, Message: "Mood decline detected", Severity: mood.RiskHigh, CreatedAt: base},
		{ID: uuid.New(), SubjectID: "42", Type: records.AlertMoodDecline, Message: "older", Severity: mood.RiskHigh, CreatedAt: base, Dismissed: true},
	}

	var buf bytes.Buffer
	if err := WritePDF(&buf, Data{Insights: ins, Samples: samples, Alerts: alerts, GeneratedAt: base}); err != nil {
		t.Fatalf("WritePDF failed: %v", err)
	}
	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Errorf("Expected PDF header, got %q", out[:min(len(out), 8)])
	}
	if !bytes.Contains(out, []byte("%%EOF")) {
		t.Errorf("Expected PDF trailer")
	}
}

func TestWritePDF_EmptySubject(t *testing.T) {
	var buf bytes.Buffer
	ins := checkin.Insights{SubjectID: "new", Status: mood.StatusStable, Forecast: mood.ForecastFor(mood.Stable)}
	if err := WritePDF(&buf, Data{Insights: ins, GeneratedAt: time.Now()}); err != nil {
		t.Fatalf("WritePDF failed for a subject without samples: %v", err)
	}
	if buf.Len() == 0 {
		t.Errorf("Expected a non-empty document")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWritePDF_WriterError(t *testing.T) {
	ins := checkin.Insights{SubjectID: "x", Status: mood.StatusStable}
	if err := WritePDF(failingWriter{}, Data{Insights: ins, GeneratedAt: time.Now()}); err == nil {
		t.Errorf("Expected the writer error to surface")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Expected short strings untouched, got %q", got)
	}
	if got := truncate("ääääääääää", 6); got != "äää..." {
		t.Errorf("Expected rune-aware truncation, got %q", got)
	}
}

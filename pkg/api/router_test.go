package api

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/unowned-ai/moodtrend/pkg/checkin"
	"github.com/unowned-ai/moodtrend/pkg/mood"
	"github.com/unowned-ai/moodtrend/pkg/records"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := checkin.NewService(records.NewMemoryStore(), nil)
	srv := httptest.NewServer(NewRouter(svc, nil))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Expected CORS header")
	}
}

func TestRecordMoodFlow(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/api/subjects/42"

	var last checkin.RecordResult
	for i := 0; i < 3; i++ {
		resp := do(t, http.MethodPost, base+"/moods", `{"mood":"depressed","note":"no energy"}`)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", resp.StatusCode)
		}
		decodeBody(t, resp, &last)
	}
	if last.Alert == nil || last.Insights.Status != mood.StatusCritical {
		t.Fatalf("Expected a critical subject with an alert, got %+v", last)
	}

	var samples []mood.Sample
	decodeBody(t, do(t, http.MethodGet, base+"/moods?limit=2", ""), &samples)
	if len(samples) != 2 {
		t.Errorf("Expected 2 samples, got %d", len(samples))
	}

	var ins checkin.Insights
	decodeBody(t, do(t, http.MethodGet, base+"/insights", ""), &ins)
	if ins.Forecast.Prediction != mood.PredictionConcerning || ins.OpenAlerts != 1 {
		t.Errorf("Unexpected insights %+v", ins)
	}

	var alerts []records.Alert
	decodeBody(t, do(t, http.MethodGet, base+"/alerts", ""), &alerts)
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 open alert, got %d", len(alerts))
	}

	resp := do(t, http.MethodPost, srv.URL+"/api/alerts/"+alerts[0].ID.String()+"/dismiss", `{"action_taken":"called"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 dismissing alert, got %d", resp.StatusCode)
	}
	decodeBody(t, do(t, http.MethodGet, base+"/alerts", ""), &alerts)
	if len(alerts) != 0 {
		t.Errorf("Expected no open alerts after dismissal, got %d", len(alerts))
	}
	decodeBody(t, do(t, http.MethodGet, base+"/alerts?all=true", ""), &alerts)
	if len(alerts) != 1 || alerts[0].ActionTaken != "called" {
		t.Errorf("Expected dismissed alert in history, got %+v", alerts)
	}

	var deleted map[string]int64
	decodeBody(t, do(t, http.MethodDelete, base+"/moods", ""), &deleted)
	if deleted["deleted"] != 3 {
		t.Errorf("Expected 3 deleted, got %v", deleted)
	}
}

func TestErrorMapping(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown mood", http.MethodPost, "/api/subjects/1/moods", `{"mood":"ecstatic"}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/subjects/1/moods", `{"mood":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/subjects/1/moods", `{"mood":"sad","score":2}`, http.StatusBadRequest},
		{"bad limit", http.MethodGet, "/api/subjects/1/moods?limit=-1", "", http.StatusBadRequest},
		{"bad alert id", http.MethodPost, "/api/alerts/nope/dismiss", "", http.StatusBadRequest},
		{"missing alert", http.MethodPost, "/api/alerts/6f1c1e52-3a57-4d8c-9a53-2f7b0d0d3c11/dismiss", "", http.StatusNotFound},
		{"unknown route", http.MethodGet, "/api/nothing", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestSubjectsAndReview(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.MethodPut, srv.URL+"/api/subjects/alice", `{"display_name":"Alice"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 creating subject, got %d", resp.StatusCode)
	}
	for i := 0; i < 3; i++ {
		do(t, http.MethodPost, srv.URL+"/api/subjects/bob/moods", `{"mood":"sad"}`)
	}

	var subjects []records.Subject
	decodeBody(t, do(t, http.MethodGet, srv.URL+"/api/subjects", ""), &subjects)
	if len(subjects) != 2 || subjects[0].DisplayName != "Alice" {
		t.Errorf("Unexpected subjects %+v", subjects)
	}

	var rows []checkin.ReviewRow
	decodeBody(t, do(t, http.MethodGet, srv.URL+"/api/review", ""), &rows)
	if len(rows) != 2 || rows[0].SubjectID != "bob" || rows[0].Status != mood.StatusCritical {
		t.Errorf("Expected bob first as critical, got %+v", rows)
	}
}

func TestReportPDF(t *testing.T) {
	srv := newTestServer(t)
	for _, m := range []string{"happy", "neutral", "sad"} {
		do(t, http.MethodPost, srv.URL+"/api/subjects/7/moods", `{"mood":"`+m+`"}`)
	}
	resp := do(t, http.MethodGet, srv.URL+"/api/subjects/7/report.pdf", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Expected application/pdf, got %s", ct)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("Expected a PDF document")
	}
}

func TestReportPDF_FilenameIsQuoted(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+`/api/subjects/a%22b;c/report.pdf`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	disposition, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	if err != nil {
		t.Fatalf("Content-Disposition %q does not parse: %v", resp.Header.Get("Content-Disposition"), err)
	}
	if disposition != "inline" {
		t.Errorf("Expected inline, got %s", disposition)
	}
	if want := `moodtrend-a"b;c.pdf`; params["filename"] != want {
		t.Errorf("Expected filename %q, got %q", want, params["filename"])
	}
}

func TestAppointmentsFlow(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/api/subjects/4/appointments"

	resp := do(t, http.MethodPost, base, `{"type":"Follow-up"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 without a doctor, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, base, `{"doctor_name":"Dr. Sarah Johnson","scheduled_at":"2030-01-02T10:00:00Z"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	var appt records.Appointment
	decodeBody(t, resp, &appt)
	if !strings.HasPrefix(appt.Code, "APPT-") || appt.Type != checkin.DefaultAppointmentType {
		t.Errorf("Unexpected appointment %+v", appt)
	}
	if !appt.ScheduledAt.Equal(time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected the requested date, got %v", appt.ScheduledAt)
	}

	var listed []records.Appointment
	decodeBody(t, do(t, http.MethodGet, base, ""), &listed)
	if len(listed) != 1 || listed[0].ID != appt.ID {
		t.Errorf("Expected the booked appointment to be listed, got %+v", listed)
	}

	statusURL := srv.URL + "/api/appointments/" + appt.ID.String() + "/status"
	resp = do(t, http.MethodPut, statusURL, `{"status":"cancelled"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var updated records.Appointment
	decodeBody(t, resp, &updated)
	if updated.Status != records.AppointmentCancelled {
		t.Errorf("Expected cancelled, got %s", updated.Status)
	}

	cases := []struct {
		url, body string
		want      int
	}{
		{srv.URL + "/api/appointments/not-a-uuid/status", `{"status":"confirmed"}`, http.StatusBadRequest},
		{statusURL, `{"status":"postponed"}`, http.StatusBadRequest},
		{srv.URL + "/api/appointments/" + uuid.New().String() + "/status", `{"status":"confirmed"}`, http.StatusNotFound},
	}
	for _, c := range cases {
		if got := do(t, http.MethodPut, c.url, c.body).StatusCode; got != c.want {
			t.Errorf("PUT %s %s: expected %d, got %d", c.url, c.body, c.want, got)
		}
	}
}

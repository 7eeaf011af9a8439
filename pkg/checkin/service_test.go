package checkin

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/unowned-ai/moodtrend/pkg/db"
	"github.com/unowned-ai/moodtrend/pkg/mood"
	"github.com/unowned-ai/moodtrend/pkg/records"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(records.NewMemoryStore(), nil)
	clock := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}
	return svc
}

func newSQLiteService(t *testing.T) *Service {
	t.Helper()
	conn, err := db.OpenDBConnection(":memory:", true, "NORMAL")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	if err := db.InitializeSchema(conn, db.TargetSchemaVersion); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}
	store := records.NewSQLStore(conn)
	t.Cleanup(func() { store.Close() })
	return NewService(store, nil)
}

func record(t *testing.T, svc *Service, subject string, moods ...string) RecordResult {
	t.Helper()
	var last RecordResult
	for _, m := range moods {
		res, err := svc.RecordMood(context.Background(), RecordInput{SubjectID: subject, Category: m})
		if err != nil {
			t.Fatalf("RecordMood(%s, %s) failed: %v", subject, m, err)
		}
		last = res
	}
	return last
}

func TestRecordMood_Validation(t *testing.T) {
	svc := newTestService(t)
	cases := map[string]RecordInput{
		"empty subject":   {SubjectID: "  ", Category: "happy"},
		"unknown mood":    {SubjectID: "1", Category: "elated"},
		"long note":       {SubjectID: "1", Category: "sad", Note: strings.Repeat("a", MaxNoteLength+1)},
		"long subject id": {SubjectID: strings.Repeat("x", MaxSubjectIDLength+1), Category: "sad"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.RecordMood(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
	if n, _ := svc.store.LoadSamples(context.Background(), "1"); len(n) != 0 {
		t.Errorf("Rejected input must not be stored, found %d samples", len(n))
	}
}

func TestRecordMood_AcceptsMaxNoteInRunes(t *testing.T) {
	svc := newTestService(t)
	note := strings.Repeat("é", MaxNoteLength)
	res, err := svc.RecordMood(context.Background(), RecordInput{SubjectID: "1", Category: "Neutral", Note: note})
	if err != nil {
		t.Fatalf("Expected a %d-rune note to be accepted, got %v", MaxNoteLength, err)
	}
	if res.Sample.Category != mood.Neutral {
		t.Errorf("Expected category to be normalized, got %s", res.Sample.Category)
	}
}

func TestRecordMood_RaisesOneAlertUntilDismissed(t *testing.T) {
	for name, svc := range map[string]*Service{"memory": newTestService(t), "sqlite": newSQLiteService(t)} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			res := record(t, svc, "1", "depressed", "depressed")
			if res.Alert != nil {
				t.Fatalf("Expected no alert with two samples, got %+v", res.Alert)
			}

			res = record(t, svc, "1", "depressed")
			if res.Alert == nil {
				t.Fatalf("Expected an alert on the third depressed check-in")
			}
			if res.Alert.Type != records.AlertMoodDecline || res.Alert.Severity != mood.RiskHigh {
				t.Errorf("Unexpected alert %+v", res.Alert)
			}
			if res.Insights.Status != mood.StatusCritical || res.Insights.OpenAlerts != 1 {
				t.Errorf("Unexpected insights %+v", res.Insights)
			}

			res = record(t, svc, "1", "sad")
			if res.Alert != nil {
				t.Errorf("Expected no duplicate alert while one is open")
			}

			if _, err := svc.DismissAlert(ctx, uuid.Nil, ""); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput for a nil alert id, got %v", err)
			}
			alerts, err := svc.Alerts(ctx, "1", false)
			if err != nil || len(alerts) != 1 {
				t.Fatalf("Expected one open alert, got %d (%v)", len(alerts), err)
			}
			if _, err := svc.DismissAlert(ctx, alerts[0].ID, "scheduled a session"); err != nil {
				t.Fatalf("DismissAlert failed: %v", err)
			}

			res = record(t, svc, "1", "stressed")
			if res.Alert == nil {
				t.Errorf("Expected a new alert once the previous one was dismissed")
			}
			all, _ := svc.Alerts(ctx, "1", true)
			if len(all) != 2 {
				t.Errorf("Expected 2 alerts in history, got %d", len(all))
			}
		})
	}
}

func TestRecordMood_RecentSlumpAlertsOnHighAverage(t *testing.T) {
	svc := newTestService(t)
	res := record(t, svc, "1", "happy", "happy", "happy", "happy", "sad", "stressed", "sad")
	if res.Alert == nil {
		t.Fatalf("Expected three low check-ins in a row to alert")
	}
	if res.Insights.Trend != (mood.Trend{Direction: mood.Improving, RiskLevel: mood.RiskHigh, ShouldAlert: true}) {
		t.Errorf("Unexpected trend %+v", res.Insights.Trend)
	}
}

func TestInsights_UnknownSubject(t *testing.T) {
	svc := newTestService(t)
	ins, err := svc.Insights(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Insights failed: %v", err)
	}
	want := mood.Trend{Direction: mood.Stable, RiskLevel: mood.RiskLow}
	if ins.Trend != want || ins.SampleCount != 0 || ins.LatestSample != nil {
		t.Errorf("Expected insufficient-data insights, got %+v", ins)
	}
	if ins.Forecast.Prediction != mood.PredictionNeutral || len(ins.Suggestions) != 3 {
		t.Errorf("Expected neutral forecast and low-risk suggestions, got %+v", ins)
	}
}

func TestInsights_ForecastScenarios(t *testing.T) {
	svc := newTestService(t)
	record(t, svc, "up", "happy", "happy", "happy")
	record(t, svc, "down", "depressed", "depressed", "depressed", "depressed")

	up, _ := svc.Insights(context.Background(), "up")
	if up.Forecast.Prediction != mood.PredictionPositive || up.Forecast.Confidence != 0.85 {
		t.Errorf("Unexpected forecast for improving subject: %+v", up.Forecast)
	}
	down, _ := svc.Insights(context.Background(), "down")
	if down.Forecast.Prediction != mood.PredictionConcerning || down.Forecast.Confidence != 0.78 {
		t.Errorf("Unexpected forecast for declining subject: %+v", down.Forecast)
	}
	if down.LatestSample == nil || down.LatestSample.Category != mood.Depressed {
		t.Errorf("Expected latest sample to be reported")
	}
}

func TestSamples_Limit(t *testing.T) {
	svc := newTestService(t)
	record(t, svc, "1", "happy", "neutral", "sad", "depressed")

	got, err := svc.Samples(context.Background(), "1", 2)
	if err != nil {
		t.Fatalf("Samples failed: %v", err)
	}
	if len(got) != 2 || got[0].Category != mood.Sad || got[1].Category != mood.Depressed {
		t.Errorf("Expected the last two samples in order, got %+v", got)
	}
	if !got[0].RecordedAt.Before(got[1].RecordedAt) {
		t.Errorf("Expected chronological order")
	}
	all, _ := svc.Samples(context.Background(), "1", 0)
	if len(all) != 4 {
		t.Errorf("Expected limit 0 to return all samples, got %d", len(all))
	}
}

func TestReview_OrdersBySeverity(t *testing.T) {
	svc := newTestService(t)
	record(t, svc, "a", "happy", "happy", "happy")
	record(t, svc, "b", "depressed", "depressed", "depressed")
	record(t, svc, "c", "neutral", "neutral", "neutral")
	record(t, svc, "d", "depressed", "depressed", "depressed", "neutral")
	if _, err := svc.CreateSubject(context.Background(), "e", "New Patient"); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}

	rows, err := svc.Review(context.Background())
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	var order []string
	for _, r := range rows {
		order = append(order, r.SubjectID)
	}
	if got := strings.Join(order, ","); got != "b,d,c,e,a" {
		t.Errorf("Expected roster b,d,c,e,a, got %s", got)
	}
	if rows[0].OpenAlerts != 1 || rows[0].Status != mood.StatusCritical {
		t.Errorf("Unexpected first row %+v", rows[0])
	}
	if rows[3].DisplayName != "New Patient" || rows[3].LastCheckIn != nil {
		t.Errorf("Unexpected row for subject without samples: %+v", rows[3])
	}
}

func TestResetSubject(t *testing.T) {
	svc := newTestService(t)
	record(t, svc, "1", "depressed", "depressed", "depressed")

	n, err := svc.ResetSubject(context.Background(), "1")
	if err != nil {
		t.Fatalf("ResetSubject failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 deleted samples, got %d", n)
	}
	ins, _ := svc.Insights(context.Background(), "1")
	if ins.SampleCount != 0 || ins.Status != mood.StatusStable {
		t.Errorf("Expected a clean slate, got %+v", ins)
	}
	if ins.OpenAlerts != 1 {
		t.Errorf("Expected the alert history to survive a reset, got %d open", ins.OpenAlerts)
	}
}

func TestRecordMood_ConcurrentCheckInsRaiseOneAlert(t *testing.T) {
	for name, svc := range map[string]*Service{"memory": newTestService(t), "sqlite": newSQLiteService(t)} {
		t.Run(name, func(t *testing.T) {
			const workers = 20
			ctx := context.Background()

			var wg sync.WaitGroup
			errs := make(chan error, workers)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := svc.RecordMood(ctx, RecordInput{SubjectID: "1", Category: "depressed"}); err != nil {
						errs <- err
					}
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				t.Errorf("RecordMood failed: %v", err)
			}

			samples, err := svc.Samples(ctx, "1", 0)
			if err != nil {
				t.Fatalf("Samples failed: %v", err)
			}
			if len(samples) != workers {
				t.Errorf("Expected %d samples, got %d", workers, len(samples))
			}
			alerts, err := svc.Alerts(ctx, "1", true)
			if err != nil {
				t.Fatalf("Alerts failed: %v", err)
			}
			declines := 0
			for _, a := range alerts {
				if a.Type == records.AlertMoodDecline {
					declines++
				}
			}
			if declines != 1 {
				t.Errorf("Expected exactly 1 mood_decline alert, got %d", declines)
			}
		})
	}
}

func frozenService(t *testing.T, store records.Store, now time.Time) *Service {
	t.Helper()
	svc := NewService(store, nil)
	svc.now = func() time.Time { return now }
	return svc
}

var appointmentCode = regexp.MustCompile(`^APPT-[A-Z0-9]{6}$`)

func TestScheduleAppointment_Defaults(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	svc := frozenService(t, records.NewMemoryStore(), now)

	appt, err := svc.ScheduleAppointment(context.Background(), AppointmentInput{SubjectID: " 4 ", DoctorName: "Dr. Sarah Johnson"})
	if err != nil {
		t.Fatalf("ScheduleAppointment failed: %v", err)
	}
	if !appointmentCode.MatchString(appt.Code) {
		t.Errorf("Expected a code like APPT-XXXXXX, got %q", appt.Code)
	}
	if appt.SubjectID != "4" || appt.Type != DefaultAppointmentType || appt.Status != records.AppointmentScheduled {
		t.Errorf("Unexpected appointment %+v", appt)
	}
	if !appt.ScheduledAt.Equal(now.Add(DefaultLeadTime)) {
		t.Errorf("Expected default date %v, got %v", now.Add(DefaultLeadTime), appt.ScheduledAt)
	}

	listed, err := svc.Appointments(context.Background(), "4")
	if err != nil {
		t.Fatalf("Appointments failed: %v", err)
	}
	if len(listed) != 1 || listed[0].Code != appt.Code {
		t.Errorf("Expected the booked appointment to be listed, got %+v", listed)
	}
}

func TestScheduleAppointment_Validation(t *testing.T) {
	svc := newTestService(t)
	cases := map[string]AppointmentInput{
		"empty subject": {SubjectID: "", DoctorName: "Dr. Chen"},
		"empty doctor":  {SubjectID: "4", DoctorName: "  "},
		"long doctor":   {SubjectID: "4", DoctorName: strings.Repeat("d", MaxDoctorNameLength+1)},
		"long type":     {SubjectID: "4", DoctorName: "Dr. Chen", Type: strings.Repeat("t", MaxAppointmentTypeLen+1)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.ScheduleAppointment(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

// collidingStore rejects the first few appointment codes it sees.
type collidingStore struct {
	records.Store
	collisions int
}

func (c *collidingStore) SaveAppointment(ctx context.Context, appt records.Appointment) error {
	if c.collisions > 0 {
		c.collisions--
		return records.ErrDuplicateAppointmentCode
	}
	return c.Store.SaveAppointment(ctx, appt)
}

func TestScheduleAppointment_RetriesCodeCollision(t *testing.T) {
	store := &collidingStore{Store: records.NewMemoryStore(), collisions: 2}
	svc := NewService(store, nil)
	if _, err := svc.ScheduleAppointment(context.Background(), AppointmentInput{SubjectID: "4", DoctorName: "Dr. Chen"}); err != nil {
		t.Fatalf("Expected collisions to be retried, got %v", err)
	}

	store.collisions = codeAttempts
	_, err := svc.ScheduleAppointment(context.Background(), AppointmentInput{SubjectID: "4", DoctorName: "Dr. Chen"})
	if !errors.Is(err, records.ErrDuplicateAppointmentCode) {
		t.Errorf("Expected ErrDuplicateAppointmentCode after %d attempts, got %v", codeAttempts, err)
	}
}

func TestSetAppointmentStatus(t *testing.T) {
	for name, svc := range map[string]*Service{"memory": newTestService(t), "sqlite": newSQLiteService(t)} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			appt, err := svc.ScheduleAppointment(ctx, AppointmentInput{SubjectID: "4", DoctorName: "Dr. Chen"})
			if err != nil {
				t.Fatalf("ScheduleAppointment failed: %v", err)
			}

			updated, err := svc.SetAppointmentStatus(ctx, appt.ID, " Confirmed ")
			if err != nil {
				t.Fatalf("SetAppointmentStatus failed: %v", err)
			}
			if updated.Status != records.AppointmentConfirmed {
				t.Errorf("Expected confirmed, got %s", updated.Status)
			}
			if _, err := svc.SetAppointmentStatus(ctx, appt.ID, "postponed"); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput for an unknown status, got %v", err)
			}
			if _, err := svc.SetAppointmentStatus(ctx, uuid.New(), "cancelled"); !errors.Is(err, records.ErrAppointmentNotFound) {
				t.Errorf("Expected ErrAppointmentNotFound, got %v", err)
			}
		})
	}
}

func TestReview_VisitsAndTodayAppointments(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	store := records.NewMemoryStore()
	svc := frozenService(t, store, now)
	ctx := context.Background()

	book := func(at time.Time, status records.AppointmentStatus) {
		t.Helper()
		appt, err := svc.ScheduleAppointment(ctx, AppointmentInput{SubjectID: "4", DoctorName: "Dr. Chen", ScheduledAt: at})
		if err != nil {
			t.Fatalf("ScheduleAppointment failed: %v", err)
		}
		if status != records.AppointmentScheduled {
			if _, err := svc.SetAppointmentStatus(ctx, appt.ID, string(status)); err != nil {
				t.Fatalf("SetAppointmentStatus failed: %v", err)
			}
		}
	}
	book(now.Add(-29*time.Hour), records.AppointmentCompleted) // yesterday 10:00
	book(now.Add(-6*time.Hour), records.AppointmentCompleted)  // today 09:00
	book(now.Add(-4*time.Hour), records.AppointmentCancelled)  // today 11:00
	book(now.Add(3*time.Hour), records.AppointmentScheduled)   // today 18:00
	book(now.Add(24*time.Hour), records.AppointmentScheduled)  // tomorrow

	if _, err := svc.CreateSubject(ctx, "5", ""); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}

	rows, err := svc.Review(ctx)
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 roster rows, got %d", len(rows))
	}
	row := rows[0]
	if row.SubjectID != "4" {
		t.Fatalf("Expected subject 4 first, got %s", row.SubjectID)
	}
	if row.TodayAppointments != 2 {
		t.Errorf("Expected 2 appointments today, got %d", row.TodayAppointments)
	}
	if row.LastVisit == nil || !row.LastVisit.Equal(now.Add(-6*time.Hour)) {
		t.Errorf("Expected last visit at %v, got %v", now.Add(-6*time.Hour), row.LastVisit)
	}
	if rows[1].LastVisit != nil || rows[1].TodayAppointments != 0 {
		t.Errorf("Expected no visits for subject 5, got %+v", rows[1])
	}
}

package records

import (
	"time"

	"github.com/google/uuid"
	"github.com/unowned-ai/moodtrend/pkg/mood"
)

// Subject is the person whose mood samples are tracked.
type Subject struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	SampleCount int       `json:"sample_count"`
}

type AlertType string

const (
	AlertMoodDecline        AlertType = "mood_decline"
	AlertHealthRisk         AlertType = "health_risk"
	AlertMedicationReminder AlertType = "medication_reminder"
)

// Alert is raised for a subject when the analyzer flags a decline.
// Alerts are dismissed, never deleted.
type Alert struct {
	ID          uuid.UUID      `json:"id"`
	SubjectID   string         `json:"subject_id"`
	Type        AlertType      `json:"type"`
	Message     string         `json:"message"`
	Severity    mood.RiskLevel `json:"severity"`
	CreatedAt   time.Time      `json:"created_at"`
	Dismissed   bool           `json:"dismissed"`
	ActionTaken string         `json:"action_taken,omitempty"`
}

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

// Appointment is a visit booked for a subject. Code is the short
// reference shown to people, e.g. APPT-7KQ2ZD.
type Appointment struct {
	ID          uuid.UUID         `json:"id"`
	Code        string            `json:"code"`
	SubjectID   string            `json:"subject_id"`
	DoctorName  string            `json:"doctor_name"`
	Type        string            `json:"type"`
	ScheduledAt time.Time         `json:"scheduled_at"`
	Status      AppointmentStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

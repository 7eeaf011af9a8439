package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/unowned-ai/moodtrend/pkg/checkin"
	"github.com/unowned-ai/moodtrend/pkg/logging"
	"github.com/unowned-ai/moodtrend/pkg/records"
	"github.com/unowned-ai/moodtrend/pkg/report"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	svc *checkin.Service
	log *logging.Logger
}

func NewHandler(svc *checkin.Service, log *logging.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type recordMoodRequest struct {
	Mood string `json:"mood"`
	Note string `json:"note"`
}

type createSubjectRequest struct {
	DisplayName string `json:"display_name"`
}

type dismissAlertRequest struct {
	ActionTaken string `json:"action_taken"`
}

type scheduleAppointmentRequest struct {
	DoctorName  string    `json:"doctor_name"`
	Type        string    `json:"type"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type appointmentStatusRequest struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, checkin.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, records.ErrAlertNotFound), errors.Is(err, records.ErrSubjectNotFound),
		errors.Is(err, records.ErrAppointmentNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		h.log.Error("request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// decode reads an optional JSON body into dst; an empty body leaves dst untouched.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: malformed JSON body: %v", checkin.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.svc.Subjects(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (h *Handler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var req createSubjectRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	subj, err := h.svc.CreateSubject(r.Context(), chi.URLParam(r, "subjectID"), req.DisplayName)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subj)
}

func (h *Handler) RecordMood(w http.ResponseWriter, r *http.Request) {
	var req recordMoodRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.svc.RecordMood(r.Context(), checkin.RecordInput{
		SubjectID: chi.URLParam(r, "subjectID"),
		Category:  req.Mood,
		Note:      req.Note,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) ListMoods(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	samples, err := h.svc.Samples(r.Context(), chi.URLParam(r, "subjectID"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, samples)
}

func (h *Handler) ResetSubject(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ResetSubject(r.Context(), chi.URLParam(r, "subjectID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	ins, err := h.svc.Insights(r.Context(), chi.URLParam(r, "subjectID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ins)
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID := chi.URLParam(r, "subjectID")

	ins, err := h.svc.Insights(ctx, subjectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	samples, err := h.svc.Samples(ctx, subjectID, report.RecentSamples)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	alerts, err := h.svc.Alerts(ctx, subjectID, false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// Render fully before writing headers so a failure can still be a JSON 500.
	var buf bytes.Buffer
	if err := report.WritePDF(&buf, report.Data{Insights: ins, Samples: samples, Alerts: alerts, GeneratedAt: time.Now().UTC()}); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	disposition := mime.FormatMediaType("inline", map[string]string{"filename": "moodtrend-" + ins.SubjectID + ".pdf"})
	if disposition == "" {
		disposition = "inline"
	}
	w.Header().Set("Content-Disposition", disposition)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	alerts, err := h.svc.Alerts(r.Context(), chi.URLParam(r, "subjectID"), all)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *Handler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	alertID, err := uuid.Parse(chi.URLParam(r, "alertID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid alert id"})
		return
	}
	var req dismissAlertRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	alert, err := h.svc.DismissAlert(r.Context(), alertID, req.ActionTaken)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Review(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) ScheduleAppointment(w http.ResponseWriter, r *http.Request) {
	var req scheduleAppointmentRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	appt, err := h.svc.ScheduleAppointment(r.Context(), checkin.AppointmentInput{
		SubjectID:   chi.URLParam(r, "subjectID"),
		DoctorName:  req.DoctorName,
		Type:        req.Type,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	appts, err := h.svc.Appointments(r.Context(), chi.URLParam(r, "subjectID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

func (h *Handler) SetAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid appointment id"})
		return
	}
	var req appointmentStatusRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	appt, err := h.svc.SetAppointmentStatus(r.Context(), appointmentID, req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

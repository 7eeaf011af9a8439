package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/unowned-ai/moodtrend/pkg/checkin"
	"github.com/unowned-ai/moodtrend/pkg/mood"
)

// ToolNames lists the tools registered by RegisterAllTools, in order.
var ToolNames = []string{
	"ping",
	"record_mood",
	"list_moods",
	"analyze_mood",
	"therapy_suggestions",
	"mood_forecast",
	"mood_insights",
	"list_alerts",
	"dismiss_alert",
	"review_subjects",
	"reset_subject",
	"schedule_appointment",
	"list_appointments",
	"set_appointment_status",
}

const moodEnum = "One of: happy, neutral, sad, stressed, depressed."

func subjectParam() mcp.ToolOption {
	return mcp.WithString("subject_id", mcp.Required(), mcp.Description("Identifier of the person whose moods are tracked."))
}

func RegisterPingTool(s *server.MCPServer) {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the moodtrend MCP server is alive."),
	)
	s.AddTool(pingTool, pingHandler)
}

func pingHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_moodtrend"), nil
}

func RegisterRecordMoodTool(s *server.MCPServer, svc *checkin.Service) {
	tool := mcp.NewTool("record_mood",
		mcp.WithDescription("Records a mood check-in for a subject and returns the updated trend, suggestions, forecast and any alert raised."),
		subjectParam(),
		mcp.WithString("mood", mcp.Required(), mcp.Description("Self-reported mood. "+moodEnum)),
		mcp.WithString("note", mcp.Description("Optional free-text note, up to 2000 characters.")),
	)
	s.AddTool(tool, recordMoodHandler(svc))
}

func recordMoodHandler(svc *checkin.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		subjectID, errRes := requiredString(request, "subject_id")
		if errRes != nil {
			return errRes, nil
		}
		category, errRes := requiredString(request, "mood")
		if errRes != nil {
			return errRes, nil
		}
		res, err := svc.RecordMood(ctx, checkin.RecordInput{
			SubjectID: subjectID,
			Category:  category,
			Note:      optionalString(request, "note"),
		})
		if err != nil {
			return errorResult("record mood", err)
		}
		return jsonResult(res)
	}
}

func RegisterListMoodsTool(s *server.MCPServer, svc *checkin.Service) {
	tool := mcp.NewTool("list_moods",
		mcp.WithDescription("Lists a subject's mood check-ins, oldest first."),
		subjectParam(),
		mcp.WithNumber("limit", mcp.Description("Only return the most recent N check-ins. 0 or absent returns all.")),
	)
	s.AddTool(tool, listMoodsHandler(svc))
}

func listMoodsHandler(svc *checkin.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		subjectID, errRes := requiredString(request, "subject_id")
		if errRes != nil {
			return errRes, nil
		}
		samples, err := svc.Samples(ctx, subjectID, optionalInt(request, "limit"))
		if err != nil {
			return errorResult("list moods", err)
		}
		return jsonResult(samples)
	}
}

func RegisterAnalyzeMoodTool(s *server.MCPServer, svc *checkin.Service) {
	tool := mcp.NewTool("analyze_mood",
		mcp.WithDescription("Analyzes a subject's recent check-ins: direction, risk level, whether to alert, and the window statistics behind them."),
		subjectParam(),
	)
	s.AddTool(tool, analyzeMoodHandler(svc))
}

func analyzeMoodHandler(svc *checkin.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		subjectID, errRes := requiredString(request, "subject_id")
		if errRes != nil {
			return errRes, nil
		}
		ins, err := svc.Insights(ctx, subjectID)
		if err != nil {
			return errorResult("analyze moods", err)
		}
		return jsonResult(struct {
			SubjectID string           `json:"subject_id"`
			Trend     mood.Trend       `json:"trend"`
			Status    mood.Status      `json:"status"`
			Window    mood.WindowStats `json:"window"`
		}{ins.SubjectID, ins.Trend, ins.Status, ins.Window})
	}
}

func RegisterTherapySuggestionsTool(s *server.MCPServer, svc *checkin.Service) {
	tool := mcp.NewTool("therapy_suggestions",
		mcp.WithDescription("Returns three patient-facing suggestions chosen by the subject's current risk level."),
		subjectParam(),
	)
	s.AddTool(tool, therapySuggestionsHandler(svc))
}

func therapySuggestionsHandler(svc *checkin.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		subjectID, errRes := requiredString(request, "subject_id")
		if errRes != nil {
			return errRes, nil
		}
		ins, err := svc.Insights(ctx, subjectID)
		if err != nil {
			return errorResult("build suggestions", err)
		}
		return jsonResult(map[string]any{
			"subject_id":  ins.SubjectID,
			"risk_level":  ins.Trend.RiskLevel,
			"suggestions": ins.Suggestions,
		})
	}
}

func RegisterMoodForecastTool(s *server.MCPServer, svc *checkin.Service) {
	tool := mcp.NewTool("mood_forecast",
		mcp.WithDescription("Returns the next-day mood forecast for a subject: prediction, confidence and two recommendations."),
		subjectParam(),
	)
	s.AddTool(tool, moodForecastHandler(svc))
}

func moodForecastHandler(svc *checkin.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		subjectID, errRes := requiredString(request, "subject_id")
		if errRes != nil {
			return errRes, nil
		}
		ins, err := svc.Insights(ctx, subjectID)
		if err != nil {
			return errorResult("forecast mood", err)
		}
		return jsonResult(ins.Forecast)
	}
}

func RegisterMoodInsightsTool(s *server.MCPServer, svc *checkin.Service) {
	tool := mcp.NewTool("mood_insights",
		mcp.WithDescription("Returns the full picture for a subject in one call: trend, status, suggestions, forecast, clinician guidance and open alert count."),
		subjectParam(),
	)
	s.AddTool(tool, moodInsightsHandler(svc))
}

func moodInsightsHandler(svc *checkin.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		subjectID, errRes := requiredString(request, "subject_id")
		if errRes != nil {
			return errRes, nil
		}
		ins, err := svc.Insights(ctx, subjectID)
		if err != nil {
			return errorResult("build insights", err)
		}
		return jsonResult(ins)
	}
}

func RegisterListAlertsTool(s *server.MCPServer, svc *checkin.Service) {
	tool := mcp.NewTool("list_alerts",
		mcp.WithDescription("Lists a subject's alerts, oldest first."),
		subjectParam(),
		mcp.WithBoolean("include_dismissed", mcp.Description("Also return alerts that were already dismissed.")),
	)
	s.AddTool(tool, listAlertsHandler(svc))
}

func listAlertsHandler(svc *checkin.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		subjectID, errRes := requiredString(request, "subject_id")
		if errRes != nil {
			return errRes, nil
		}
		alerts, err := svc.Alerts(ctx, subjectID, optionalBool(request, "include_dismissed"))
		if err != nil {
			return errorResult("list alerts", err)
		}
		return jsonResult(alerts)
	}
}

func RegisterDismissAlertTool(s *server.MCPServer, svc *checkin.Service) {
	tool := mcp.NewTool("dismiss_alert",
		mcp.WithDescription("Marks an alert as handled, optionally recording the action taken."),
		mcp.WithString("alert_id", mcp.Required(), mcp.Description("UUID of the alert.")),
		mcp.WithString("action_taken", mcp.Description("What was done about it, e.g. 'called patient'.")),
	)
	s.AddTool(tool, dismissAlertHandler(svc))
}

func dismissAlertHandler(svc *checkin.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, errRes := requiredString(request, "alert_id")
		if errRes != nil {
			return errRes, nil
		}
		alertID, err := uuid.Parse(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("'alert_id' must be a UUID: %v", err)), nil
		}
		alert, err := svc.DismissAlert(ctx, alertID, optionalString(request, "action_taken"))
		if err != nil {
			return errorResult("dismiss alert", err)
		}
		return jsonResult(alert)
	}
}

func RegisterReviewSubjectsTool(s *server.MCPServer, svc *checkin.Service) {
	tool := mcp.NewTool("review_subjects",
		mcp.WithDescription("Returns the clinician roster: every subject with status, risk and open alerts, most urgent first."),
	)
	s.AddTool(tool, reviewSubjectsHandler(svc))
}

func reviewSubjectsHandler(svc *checkin.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rows, err := svc.Review(ctx)
		if err != nil {
			return errorResult("review subjects", err)
		}
		return jsonResult(rows)
	}
}

func RegisterResetSubjectTool(s *server.MCPServer, svc *checkin.Service) {
	tool := mcp.NewTool("reset_subject",
		mcp.WithDescription("Permanently deletes every mood check-in of a subject. Alerts are kept."),
		subjectParam(),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true; guards against accidental wipes.")),
	)
	s.AddTool(tool, resetSubjectHandler(svc))
}

func resetSubjectHandler(svc *checkin.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		subjectID, errRes := requiredString(request, "subject_id")
		if errRes != nil {
			return errRes, nil
		}
		if !optionalBool(request, "confirm") {
			return mcp.NewToolResultError("'confirm' must be true to delete check-ins."), nil
		}
		n, err := svc.ResetSubject(ctx, subjectID)
		if err != nil {
			return errorResult("reset subject", err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Deleted %d check-ins for subject '%s'.", n, subjectID)), nil
	}
}

func RegisterScheduleAppointmentTool(s *server.MCPServer, svc *checkin.Service) {
	tool := mcp.NewTool("schedule_appointment",
		mcp.WithDescription("Books an appointment for a subject and returns it with its APPT- code."),
		subjectParam(),
		mcp.WithString("doctor_name", mcp.Required(), mcp.Description("Clinician the appointment is with.")),
		mcp.WithString("type", mcp.Description("Appointment type. Defaults to '"+checkin.DefaultAppointmentType+"'.")),
		mcp.WithString("scheduled_at", mcp.Description("RFC3339 date and time. Defaults to 24 hours from now.")),
	)
	s.AddTool(tool, scheduleAppointmentHandler(svc))
}

func scheduleAppointmentHandler(svc *checkin.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		subjectID, errRes := requiredString(request, "subject_id")
		if errRes != nil {
			return errRes, nil
		}
		doctor, errRes := requiredString(request, "doctor_name")
		if errRes != nil {
			return errRes, nil
		}
		var at time.Time
		if raw := optionalString(request, "scheduled_at"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("'scheduled_at' must be an RFC3339 time: %v", err)), nil
			}
			at = parsed
		}
		appt, err := svc.ScheduleAppointment(ctx, checkin.AppointmentInput{
			SubjectID:   subjectID,
			DoctorName:  doctor,
			Type:        optionalString(request, "type"),
			ScheduledAt: at,
		})
		if err != nil {
			return errorResult("schedule appointment", err)
		}
		return jsonResult(appt)
	}
}

func RegisterListAppointmentsTool(s *server.MCPServer, svc *checkin.Service) {
	tool := mcp.NewTool("list_appointments",
		mcp.WithDescription("Lists a subject's appointments in booking order."),
		subjectParam(),
	)
	s.AddTool(tool, listAppointmentsHandler(svc))
}

func listAppointmentsHandler(svc *checkin.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		subjectID, errRes := requiredString(request, "subject_id")
		if errRes != nil {
			return errRes, nil
		}
		appts, err := svc.Appointments(ctx, subjectID)
		if err != nil {
			return errorResult("list appointments", err)
		}
		return jsonResult(appts)
	}
}

func RegisterSetAppointmentStatusTool(s *server.MCPServer, svc *checkin.Service) {
	tool := mcp.NewTool("set_appointment_status",
		mcp.WithDescription("Changes the status of an appointment."),
		mcp.WithString("appointment_id", mcp.Required(), mcp.Description("UUID of the appointment.")),
		mcp.WithString("status", mcp.Required(), mcp.Description("One of: scheduled, confirmed, completed, cancelled.")),
	)
	s.AddTool(tool, setAppointmentStatusHandler(svc))
}

func setAppointmentStatusHandler(svc *checkin.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, errRes := requiredString(request, "appointment_id")
		if errRes != nil {
			return errRes, nil
		}
		status, errRes := requiredString(request, "status")
		if errRes != nil {
			return errRes, nil
		}
		appointmentID, err := uuid.Parse(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("'appointment_id' must be a UUID: %v", err)), nil
		}
		appt, err := svc.SetAppointmentStatus(ctx, appointmentID, status)
		if err != nil {
			return errorResult("update appointment", err)
		}
		return jsonResult(appt)
	}
}

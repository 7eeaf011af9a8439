package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/unowned-ai/moodtrend/pkg/checkin"
	"github.com/unowned-ai/moodtrend/pkg/records"
)

// requiredString returns a trimmed, non-empty string argument.
func requiredString(request mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	v, ok := request.Params.Arguments[name].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' parameter is required and must be a non-empty string.", name))
	}
	return strings.TrimSpace(v), nil
}

func optionalString(request mcp.CallToolRequest, name string) string {
	v, _ := request.Params.Arguments[name].(string)
	return v
}

func optionalBool(request mcp.CallToolRequest, name string) bool {
	v, _ := request.Params.Arguments[name].(bool)
	return v
}

// optionalInt accepts JSON numbers, which arrive as float64.
func optionalInt(request mcp.CallToolRequest, name string) int {
	switch v := request.Params.Arguments[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// errorResult turns a service error into a tool-level error.
func errorResult(action string, err error) (*mcp.CallToolResult, error) {
	switch {
	case errors.Is(err, checkin.ErrInvalidInput):
		return mcp.NewToolResultError(err.Error()), nil
	case errors.Is(err, records.ErrAlertNotFound):
		return mcp.NewToolResultError("Alert not found."), nil
	case errors.Is(err, records.ErrAppointmentNotFound):
		return mcp.NewToolResultError("Appointment not found."), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err)), nil
	}
}

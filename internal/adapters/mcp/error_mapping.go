package mcpadapter

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
)

func mapErrorToKind(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrFileNotFound):
		return "file_not_found"
	case domain.IsKind(err, domain.ErrDirectoryNotFound):
		return "directory_not_found"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid_input"
	case domain.IsKind(err, domain.ErrDescriptionFormat):
		return "description_format"
	case domain.IsKind(err, domain.ErrTemporary):
		return "temporary"
	default:
		return "internal"
	}
}

// errorResult converts an error into the structured payload every tool
// returns on failure.
func errorResult(err error) *mcp.CallToolResult {
	payload := map[string]any{
		"success": false,
		"kind":    mapErrorToKind(err),
		"error":   err.Error(),
	}
	body, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(body))
}

// jsonResult marshals v as the tool's text content.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

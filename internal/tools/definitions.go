// ABOUTME: Static catalog of the operations the assistant exposes.
// ABOUTME: Schemas are the snake_case spellings; camelCase aliases resolve at dispatch.

package tools

import "encoding/json"

// Definition describes one operation for discovery by the host runtime.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// Definitions lists every operation with its input schema.
func Definitions() []Definition {
	return []Definition{
		{
			Name:        "search_messages",
			Description: "Search messages across mail and message-store channels",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"query":{"type":"string"},"channel":{"type":"string"},"from":{"type":"string"},"to":{"type":"string"},"limit":{"type":"integer"}}}`),
		},
		{
			Name:        "read_message",
			Description: "Read the full details of one mail message",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"message_id":{"type":"string"},"account":{"type":"string"}},"required":["message_id"]}`),
		},
		{
			Name:        "send_email",
			Description: "Send an email",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"to":{"type":"string"},"subject":{"type":"string"},"body":{"type":"string"},"cc":{"type":"string"},"bcc":{"type":"string"},"account":{"type":"string"}},"required":["to","subject","body"]}`),
		},
		{
			Name:        "list_calendars",
			Description: "List visible calendars",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"account":{"type":"string"}}}`),
		},
		{
			Name:        "list_calendar_events",
			Description: "List calendar events in a time window",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"calendar_id":{"type":"string"},"time_min":{"type":"string"},"time_max":{"type":"string"},"max_results":{"type":"integer"},"account":{"type":"string"}}}`),
		},
		{
			Name:        "create_calendar_event",
			Description: "Create a calendar event",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"summary":{"type":"string"},"start_time":{"type":"string"},"end_time":{"type":"string"},"calendar_id":{"type":"string"},"description":{"type":"string"},"location":{"type":"string"},"attendees":{"type":"array","items":{"type":"string"}},"account":{"type":"string"}},"required":["summary","start_time","end_time"]}`),
		},
		{
			Name:        "search_files",
			Description: "Search files in the remote file store",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"query":{"type":"string"},"max_results":{"type":"integer"},"account":{"type":"string"}},"required":["query"]}`),
		},
		{
			Name:        "read_file",
			Description: "Read a file's content from the remote file store",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"file_id":{"type":"string"},"account":{"type":"string"}},"required":["file_id"]}`),
		},
		{
			Name:        "summarize",
			Description: "Search messages and condense the results into a text digest",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"query":{"type":"string"},"channel":{"type":"string"},"from":{"type":"string"},"to":{"type":"string"},"limit":{"type":"integer"}}}`),
		},
		{
			Name:        "weekly_report",
			Description: "Compose a report of the last week's messages and calendar events",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"week_start":{"type":"string"}}}`),
		},
	}
}

// ABOUTME: Caller-facing assistant operations over the invoker and aggregator.
// ABOUTME: Each operation maps a flat argument map to one backend exchange.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/golatam/sirenko-openclaw/internal/aggregate"
)

// Remote tool names on the tool-execution endpoint.
const (
	toolSearchMail     = "query_gmail_emails"
	toolReadMessage    = "gmail_get_message_details"
	toolSendEmail      = "gmail_send_email"
	toolListCalendars  = "calendar_list_calendars"
	toolCalendarEvents = "calendar_get_events"
	toolCreateEvent    = "create_calendar_event"
	toolSearchFiles    = "drive_search_files"
	toolReadFile       = "drive_read_file_content"
)

// ToolCaller invokes a named tool on the remote tool-execution endpoint.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (json.RawMessage, error)
}

// Searcher fans a query envelope out across message backends.
type Searcher interface {
	Search(ctx context.Context, env aggregate.Envelope) (aggregate.Result, error)
	Channels() []string
}

// Service implements the assistant's operation surface.
type Service struct {
	tools  ToolCaller
	agg    Searcher
	logger *slog.Logger
	now    func() time.Time
}

// Config holds configuration for the Service.
type Config struct {
	Tools      ToolCaller
	Aggregator Searcher
	Logger     *slog.Logger
	// Now overrides the clock; used by tests. Defaults to time.Now.
	Now func() time.Time
}

// NewService creates the operation service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Tools == nil {
		return nil, errors.New("tool caller is required")
	}
	if cfg.Aggregator == nil {
		return nil, errors.New("aggregator is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{tools: cfg.Tools, agg: cfg.Aggregator, logger: logger, now: now}, nil
}

// Invoke dispatches a named operation. Unknown names yield an error
// envelope, keeping the surface uniform for the host runtime.
func (s *Service) Invoke(ctx context.Context, name string, args Args) Response {
	op, ok := s.operations()[name]
	if !ok {
		return Fail(errors.New("unknown operation: " + name))
	}
	resp := op(ctx, args)
	s.logger.Debug("operation complete",
		"operation", name,
		"ok", resp.Details["ok"],
	)
	return resp
}

// Has reports whether the named operation exists.
func (s *Service) Has(name string) bool {
	_, ok := s.operations()[name]
	return ok
}

func (s *Service) operations() map[string]func(context.Context, Args) Response {
	return map[string]func(context.Context, Args) Response{
		"search_messages":       s.SearchMessages,
		"read_message":          s.ReadMessage,
		"send_email":            s.SendEmail,
		"list_calendars":        s.ListCalendars,
		"list_calendar_events":  s.ListCalendarEvents,
		"create_calendar_event": s.CreateCalendarEvent,
		"search_files":          s.SearchFiles,
		"read_file":             s.ReadFile,
		"summarize":             s.Summarize,
		"weekly_report":         s.WeeklyReport,
	}
}

// SearchMessages fans the query out to every backend implied by the channel
// filter. Per-backend failures appear as that backend's {error} entry; the
// envelope itself still reports success.
func (s *Service) SearchMessages(ctx context.Context, args Args) Response {
	env, err := s.envelopeFromArgs(args)
	if err != nil {
		return Fail(err)
	}

	result, err := s.agg.Search(ctx, env)
	if err != nil {
		return Fail(err)
	}
	return OKJSON(result, Details{"channels": len(result)})
}

// ReadMessage fetches the full details of one mail message.
func (s *Service) ReadMessage(ctx context.Context, args Args) Response {
	if err := args.Require("message_id"); err != nil {
		return Fail(err)
	}
	return s.remote(ctx, toolReadMessage, remoteArgs{
		"message_id": args.String("message_id"),
		"account":    args.String("account"),
	}, nil)
}

// SendEmail sends a mail message through the remote endpoint.
func (s *Service) SendEmail(ctx context.Context, args Args) Response {
	if err := args.Require("to", "subject", "body"); err != nil {
		return Fail(err)
	}
	return s.remote(ctx, toolSendEmail, remoteArgs{
		"to":      args.String("to"),
		"subject": args.String("subject"),
		"body":    args.String("body"),
		"cc":      args.String("cc"),
		"bcc":     args.String("bcc"),
		"account": args.String("account"),
	}, Details{"to": args.String("to")})
}

// ListCalendars lists the calendars visible to the configured accounts.
func (s *Service) ListCalendars(ctx context.Context, args Args) Response {
	return s.remote(ctx, toolListCalendars, remoteArgs{
		"account": args.String("account"),
	}, nil)
}

// ListCalendarEvents lists events from one calendar within a time window.
func (s *Service) ListCalendarEvents(ctx context.Context, args Args) Response {
	params := remoteArgs{
		"calendar_id": args.String("calendar_id"),
		"time_min":    args.String("time_min"),
		"time_max":    args.String("time_max"),
		"account":     args.String("account"),
	}
	if n := args.Int("max_results", 0); n > 0 {
		params["max_results"] = n
	}
	return s.remote(ctx, toolCalendarEvents, params, nil)
}

// CreateCalendarEvent creates one calendar event.
func (s *Service) CreateCalendarEvent(ctx context.Context, args Args) Response {
	if err := args.Require("summary", "start_time", "end_time"); err != nil {
		return Fail(err)
	}
	params := remoteArgs{
		"summary":     args.String("summary"),
		"start_time":  args.String("start_time"),
		"end_time":    args.String("end_time"),
		"calendar_id": args.String("calendar_id"),
		"description": args.String("description"),
		"location":    args.String("location"),
		"account":     args.String("account"),
	}
	if attendees := args.StringSlice("attendees"); len(attendees) > 0 {
		params["attendees"] = attendees
	}
	return s.remote(ctx, toolCreateEvent, params, Details{"summary": args.String("summary")})
}

// SearchFiles searches the file store behind the remote endpoint.
func (s *Service) SearchFiles(ctx context.Context, args Args) Response {
	if err := args.Require("query"); err != nil {
		return Fail(err)
	}
	params := remoteArgs{
		"query":   args.String("query"),
		"account": args.String("account"),
	}
	if n := args.Int("max_results", 0); n > 0 {
		params["max_results"] = n
	}
	return s.remote(ctx, toolSearchFiles, params, nil)
}

// ReadFile reads one file's content through the remote endpoint.
func (s *Service) ReadFile(ctx context.Context, args Args) Response {
	if err := args.Require("file_id"); err != nil {
		return Fail(err)
	}
	return s.remote(ctx, toolReadFile, remoteArgs{
		"file_id": args.String("file_id"),
		"account": args.String("account"),
	}, nil)
}

// remoteArgs is a remote call's argument set; empty string values are
// dropped before sending.
type remoteArgs map[string]any

// remote performs one remote tool call and wraps the outcome.
func (s *Service) remote(ctx context.Context, tool string, params remoteArgs, extra Details) Response {
	callArgs := make(map[string]any, len(params))
	for k, v := range params {
		if str, ok := v.(string); ok && str == "" {
			continue
		}
		callArgs[k] = v
	}

	result, err := s.tools.CallTool(ctx, tool, callArgs)
	if err != nil {
		return Fail(err)
	}
	return OK(string(result), extra)
}

// envelopeFromArgs builds the aggregator envelope from the common
// query/channel/from/to/limit argument set.
func (s *Service) envelopeFromArgs(args Args) (aggregate.Envelope, error) {
	from, err := args.Time("from")
	if err != nil {
		return aggregate.Envelope{}, err
	}
	to, err := args.Time("to")
	if err != nil {
		return aggregate.Envelope{}, err
	}
	return aggregate.Envelope{
		Query:   args.String("query"),
		Channel: args.String("channel"),
		From:    from,
		To:      to,
		Limit:   args.Int("limit", 0),
	}, nil
}

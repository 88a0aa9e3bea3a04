// ABOUTME: Locally composed digests and the weekly report.
// ABOUTME: Best-effort extraction over heterogeneous backend payloads, no LLM.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/golatam/sirenko-openclaw/internal/aggregate"
)

const (
	digestSnippetLimit = 5
	digestSnippetLen   = 120
	digestTopSenders   = 5
)

// Summarize runs the fan-out search and condenses the aggregate result into
// a plain-text digest: per-backend counts, top senders, and leading snippets.
func (s *Service) Summarize(ctx context.Context, args Args) Response {
	env, err := s.envelopeFromArgs(args)
	if err != nil {
		return Fail(err)
	}

	result, err := s.agg.Search(ctx, env)
	if err != nil {
		return Fail(err)
	}

	var b strings.Builder
	total := 0
	for _, channel := range sortedChannels(result) {
		entry := result[channel]
		if entry.Err != nil {
			fmt.Fprintf(&b, "## %s\nunavailable: %s\n\n", channel, entry.Err.Error())
			continue
		}
		msgs := extractMessages(entry.Payload)
		total += len(msgs)
		fmt.Fprintf(&b, "## %s (%d messages)\n", channel, len(msgs))
		writeDigestBody(&b, msgs)
		b.WriteString("\n")
	}
	return OK(strings.TrimRight(b.String(), "\n"), Details{"total": total})
}

// WeeklyReport composes a sectioned text report for the last seven days:
// message activity per channel plus upcoming-week calendar events. Calendar
// and message failures degrade independently.
func (s *Service) WeeklyReport(ctx context.Context, args Args) Response {
	start, err := args.Time("week_start")
	if err != nil {
		return Fail(err)
	}
	end := s.now()
	if !start.IsZero() {
		end = start.AddDate(0, 0, 7)
	} else {
		start = end.AddDate(0, 0, -7)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Weekly report %s to %s\n\n",
		start.UTC().Format("2006-01-02"), end.UTC().Format("2006-01-02"))

	result, err := s.agg.Search(ctx, aggregate.Envelope{From: start, To: end})
	if err != nil {
		return Fail(err)
	}
	b.WriteString("## Messages\n")
	for _, channel := range sortedChannels(result) {
		entry := result[channel]
		if entry.Err != nil {
			fmt.Fprintf(&b, "- %s: unavailable (%s)\n", channel, entry.Err.Error())
			continue
		}
		msgs := extractMessages(entry.Payload)
		fmt.Fprintf(&b, "- %s: %d messages", channel, len(msgs))
		if senders := topSenders(msgs, 3); len(senders) > 0 {
			fmt.Fprintf(&b, ", most active: %s", strings.Join(senders, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n## Calendar\n")
	b.WriteString(s.calendarSection(ctx, start, end))

	return OK(strings.TrimRight(b.String(), "\n"), Details{
		"from": start.UTC().Format(time.RFC3339),
		"to":   end.UTC().Format(time.RFC3339),
	})
}

// calendarSection fetches the window's events, degrading to a note when the
// calendar endpoint is unreachable.
func (s *Service) calendarSection(ctx context.Context, from, to time.Time) string {
	payload, err := s.tools.CallTool(ctx, toolCalendarEvents, map[string]any{
		"time_min": from.UTC().Format(time.RFC3339),
		"time_max": to.UTC().Format(time.RFC3339),
	})
	if err != nil {
		s.logger.Warn("calendar unavailable for weekly report", "error", err)
		return fmt.Sprintf("unavailable: %s\n", err.Error())
	}

	events := extractEvents(payload)
	if len(events) == 0 {
		return "no events in this window\n"
	}
	var b strings.Builder
	for _, ev := range events {
		line := ev.Summary
		if line == "" {
			line = "(untitled)"
		}
		if ev.Start != "" {
			line = ev.Start + " " + line
		}
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}

// digestMessage is the backend-neutral shape the digest works with. Backend
// payloads differ; extraction keeps whatever fields it can find.
type digestMessage struct {
	Sender string
	Text   string
}

// extractMessages pulls a message list out of a backend's native payload.
// It recognizes the store shape ({messages: [...]}), the mail shape
// ({emails: [...]}), and a bare array; anything else yields no messages.
func extractMessages(payload json.RawMessage) []digestMessage {
	if len(payload) == 0 {
		return nil
	}
	var doc struct {
		Messages []json.RawMessage `json:"messages"`
		Emails   []json.RawMessage `json:"emails"`
	}
	items := make([]json.RawMessage, 0)
	if err := json.Unmarshal(payload, &doc); err == nil {
		items = append(items, doc.Messages...)
		items = append(items, doc.Emails...)
	}
	if len(items) == 0 {
		var arr []json.RawMessage
		if err := json.Unmarshal(payload, &arr); err == nil {
			items = arr
		}
	}

	msgs := make([]digestMessage, 0, len(items))
	for _, item := range items {
		var m struct {
			SenderName string `json:"sender_name"`
			Sender     string `json:"sender"`
			From       string `json:"from"`
			Text       string `json:"text"`
			Snippet    string `json:"snippet"`
			Subject    string `json:"subject"`
		}
		if err := json.Unmarshal(item, &m); err != nil {
			continue
		}
		msg := digestMessage{Sender: firstNonEmpty(m.SenderName, m.Sender, m.From)}
		msg.Text = firstNonEmpty(m.Text, m.Snippet, m.Subject)
		msgs = append(msgs, msg)
	}
	return msgs
}

// calendarEvent is the subset of an event the report renders.
type calendarEvent struct {
	Summary string `json:"summary"`
	Start   string `json:"start"`
}

// extractEvents pulls an event list out of the calendar payload, accepting
// {events: [...]} or a bare array.
func extractEvents(payload json.RawMessage) []calendarEvent {
	if len(payload) == 0 {
		return nil
	}
	var doc struct {
		Events []calendarEvent `json:"events"`
	}
	if err := json.Unmarshal(payload, &doc); err == nil && len(doc.Events) > 0 {
		return doc.Events
	}
	var arr []calendarEvent
	if err := json.Unmarshal(payload, &arr); err == nil {
		return arr
	}
	return nil
}

// writeDigestBody renders top senders and leading snippets for one channel.
func writeDigestBody(b *strings.Builder, msgs []digestMessage) {
	if senders := topSenders(msgs, digestTopSenders); len(senders) > 0 {
		fmt.Fprintf(b, "top senders: %s\n", strings.Join(senders, ", "))
	}
	for i, m := range msgs {
		if i == digestSnippetLimit {
			break
		}
		if m.Text == "" {
			continue
		}
		fmt.Fprintf(b, "- %s\n", snippet(m.Text, digestSnippetLen))
	}
}

// topSenders returns up to n sender names ordered by message count, ties
// broken alphabetically for stable output.
func topSenders(msgs []digestMessage, n int) []string {
	counts := make(map[string]int)
	for _, m := range msgs {
		if m.Sender != "" {
			counts[m.Sender]++
		}
	}
	senders := make([]string, 0, len(counts))
	for sender := range counts {
		senders = append(senders, sender)
	}
	sort.Slice(senders, func(i, j int) bool {
		if counts[senders[i]] != counts[senders[j]] {
			return counts[senders[i]] > counts[senders[j]]
		}
		return senders[i] < senders[j]
	})
	if len(senders) > n {
		senders = senders[:n]
	}
	return senders
}

func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= max {
		return text
	}
	return text[:max] + "…"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func sortedChannels(result aggregate.Result) []string {
	channels := make([]string, 0, len(result))
	for ch := range result {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	return channels
}

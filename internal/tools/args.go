// ABOUTME: Flat argument mapping with dual-spelling key resolution.
// ABOUTME: message_id and messageId resolve to the same logical field.

package tools

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stoewer/go-strcase"
)

// Args is the flat argument mapping every operation receives. Keys may
// arrive word-separated (message_id) or capitalization-joined (messageId);
// lookups normalize both to the same field.
type Args map[string]any

// lookup resolves a key under either spelling convention.
func (a Args) lookup(key string) (any, bool) {
	if v, ok := a[key]; ok {
		return v, true
	}
	want := strcase.SnakeCase(key)
	for k, v := range a {
		if strcase.SnakeCase(k) == want {
			return v, true
		}
	}
	return nil, false
}

// String returns the string value for key, or "" when absent or not a string.
func (a Args) String(key string) string {
	v, ok := a.lookup(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Int returns the integer value for key, accepting JSON numbers and numeric
// strings, or def when absent or unparsable.
func (a Args) Int(key string, def int) int {
	v, ok := a.lookup(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
	}
	return def
}

// Time parses the RFC3339 (or date-only) value for key. An absent or empty
// value yields the zero time with no error.
func (a Args) Time(key string) (time.Time, error) {
	s := a.String(key)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%s must be RFC3339 or YYYY-MM-DD, got %q", key, s)
}

// StringSlice returns the list value for key, accepting a JSON array of
// strings or a comma-separated string.
func (a Args) StringSlice(key string) []string {
	v, ok := a.lookup(key)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return list
	case string:
		if list == "" {
			return nil
		}
		parts := strings.Split(list, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}
	return nil
}

// Require validates that every named argument is present and non-empty,
// collecting all missing fields into one error.
func (a Args) Require(keys ...string) error {
	var result *multierror.Error
	for _, key := range keys {
		if a.String(key) == "" {
			result = multierror.Append(result, fmt.Errorf("%s is required", key))
		}
	}
	return result.ErrorOrNil()
}

// Package commands implements the soxlink-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/soxlink/soxlink-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events.
type ViewFilter struct {
	Endpoint  string
	ConnID    string
	Direction *log.Direction
	Category  *log.Category
	TimeStart *time.Time
	TimeEnd   *time.Time
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		ConnectionID: f.ConnID,
		Endpoint:     f.Endpoint,
		Direction:    f.Direction,
		Category:     f.Category,
		TimeStart:    f.TimeStart,
		TimeEnd:      f.TimeEnd,
	}
}

// RunView prints every matching event in path to w.
func RunView(path string, filter ViewFilter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [conn:%s] %-3s %s %s\n",
		ts, shortenConnID(event.ConnectionID), event.Direction, event.Endpoint, typeLabel(event))

	switch {
	case event.StateChange != nil:
		sc := event.StateChange
		if sc.OldState != "" {
			fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
		} else {
			fmt.Fprintf(w, "  -> %s\n", sc.NewState)
		}
		if sc.Reason != "" {
			fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
		}
	case event.Request != nil:
		formatRequestDetails(w, event.Request)
	case event.Notification != nil:
		n := event.Notification
		fmt.Fprintf(w, "  Component: %s  Mask: 0x%02x\n", n.Component, n.Mask)
		if n.Dropped {
			fmt.Fprintln(w, "  Dropped: event queue full")
		}
	case event.Error != nil:
		fmt.Fprintf(w, "  Error: %s\n", event.Error.Message)
		if event.Error.Context != "" {
			fmt.Fprintf(w, "  Context: %s\n", event.Error.Context)
		}
	}
	if event.RemoteAddr != "" {
		fmt.Fprintf(w, "  Remote: %s\n", event.RemoteAddr)
	}

	fmt.Fprintln(w)
}

func typeLabel(event log.Event) string {
	switch {
	case event.StateChange != nil:
		return "State"
	case event.Request != nil:
		return event.Request.Operation.String()
	case event.Notification != nil:
		return "Notification"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

func formatRequestDetails(w io.Writer, req *log.RequestEvent) {
	if req.Component != "" {
		target := req.Component
		if req.Slot != "" {
			target += "." + req.Slot
		}
		fmt.Fprintf(w, "  Target: %s\n", target)
	}
	if req.Value != "" {
		fmt.Fprintf(w, "  Value: %s\n", req.Value)
	}
	if req.Mask != 0 {
		fmt.Fprintf(w, "  Mask: 0x%02x\n", req.Mask)
	}
	if req.Duration > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(req.Duration))
	}
	if req.Error != "" {
		fmt.Fprintf(w, "  Error: %s\n", req.Error)
	}
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dus", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	default:
		return d.Round(time.Millisecond).String()
	}
}

// ParseDirectionFlag parses "in" or "out".
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (use: in, out)", s)
	}
}

// ParseCategoryFlag parses a category name, case-insensitively.
func ParseCategoryFlag(s string) (log.Category, error) {
	if c, ok := log.ParseCategory(strings.ToUpper(s)); ok {
		return c, nil
	}
	return 0, fmt.Errorf("invalid category: %s (use: state, request, notification, error)", s)
}

// ParseTimeFlag parses an RFC3339 timestamp.
func ParseTimeFlag(s string) (*time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return &t, nil
}

package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/soxlink/soxlink-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Operations        map[log.Operation]int
	Endpoints         map[string]*EndpointStats
	FailedRequests    int
	DroppedChanges    int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// EndpointStats holds statistics for a single endpoint.
type EndpointStats struct {
	Events      int
	Connections map[string]struct{}
	Errors      int
	LastState   string
}

// Collect reads every event in path.
func Collect(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Operations:        make(map[log.Operation]int),
		Endpoints:         make(map[string]*EndpointStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return stats, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	ep, ok := s.Endpoints[event.Endpoint]
	if !ok {
		ep = &EndpointStats{Connections: make(map[string]struct{})}
		s.Endpoints[event.Endpoint] = ep
	}
	ep.Events++
	if event.ConnectionID != "" {
		ep.Connections[event.ConnectionID] = struct{}{}
	}

	switch {
	case event.Request != nil:
		s.Operations[event.Request.Operation]++
		if event.Request.Error != "" {
			s.FailedRequests++
			ep.Errors++
		}
	case event.Notification != nil:
		if event.Notification.Dropped {
			s.DroppedChanges++
		}
	case event.StateChange != nil:
		ep.LastState = event.StateChange.NewState
	case event.Error != nil:
		ep.Errors++
	}
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := Collect(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Total events: %d\n", stats.TotalEvents)
	if stats.TotalEvents == 0 {
		return nil
	}
	fmt.Fprintf(w, "Time range: %s - %s (%s)\n",
		stats.TimeRange.Start.UTC().Format(time.RFC3339),
		stats.TimeRange.End.UTC().Format(time.RFC3339),
		stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))

	fmt.Fprintln(w, "\nBy category:")
	for c := log.CategoryState; c <= log.CategoryError; c++ {
		if n := stats.EventsByCategory[c]; n > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", c, n)
		}
	}

	fmt.Fprintln(w, "\nBy direction:")
	for _, d := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		fmt.Fprintf(w, "  %-14s %d\n", d, stats.EventsByDirection[d])
	}

	if len(stats.Operations) > 0 {
		fmt.Fprintln(w, "\nRequests:")
		for op := log.OpDial; op <= log.OpClose; op++ {
			if n := stats.Operations[op]; n > 0 {
				fmt.Fprintf(w, "  %-14s %d\n", op, n)
			}
		}
		fmt.Fprintf(w, "  %-14s %d\n", "failed", stats.FailedRequests)
	}
	if stats.DroppedChanges > 0 {
		fmt.Fprintf(w, "\nDropped changes: %d\n", stats.DroppedChanges)
	}

	names := make([]string, 0, len(stats.Endpoints))
	for name := range stats.Endpoints {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "\nEndpoints (%d):\n", len(names))
	for _, name := range names {
		ep := stats.Endpoints[name]
		fmt.Fprintf(w, "  %s: %d events, %d connections, %d errors, last state %s\n",
			name, ep.Events, len(ep.Connections), ep.Errors, orDash(ep.LastState))
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

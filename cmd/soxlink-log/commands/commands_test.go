package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/soxlink/soxlink-go/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func sampleEvents() []log.Event {
	conn := "6f1c2a9e-0d4b-4c1e-9a57-3f2b8e0c7d11"
	return []log.Event{
		{
			Timestamp: t0, Endpoint: "plant1", Direction: log.DirectionOut, Category: log.CategoryState,
			StateChange: &log.StateChangeEvent{OldState: "DISCONNECTED", NewState: "CONNECTING"},
		},
		{
			Timestamp: t0.Add(10 * time.Millisecond), ConnectionID: conn, Endpoint: "plant1",
			Direction: log.DirectionOut, Category: log.CategoryRequest, RemoteAddr: "10.0.0.5:1876",
			Request: &log.RequestEvent{Operation: log.OpDial, Duration: 2500 * time.Microsecond},
		},
		{
			Timestamp: t0.Add(20 * time.Millisecond), ConnectionID: conn, Endpoint: "plant1",
			Direction: log.DirectionOut, Category: log.CategoryRequest,
			Request: &log.RequestEvent{Operation: log.OpWrite, Component: "/pump", Slot: "speed", Value: "20", Error: "rejected"},
		},
		{
			Timestamp: t0.Add(30 * time.Millisecond), ConnectionID: conn, Endpoint: "plant1",
			Direction: log.DirectionIn, Category: log.CategoryNotification,
			Notification: &log.NotificationEvent{Component: "/pump", Mask: 0x02, Dropped: true},
		},
		{
			Timestamp: t0.Add(40 * time.Millisecond), Endpoint: "plant2",
			Direction: log.DirectionOut, Category: log.CategoryError,
			Error: &log.ErrorEventData{Message: "dial timeout", Context: "connect"},
		},
	}
}

func writeLog(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bridge.soxlog")
	l, err := log.NewFileLogger(path)
	require.NoError(t, err)
	for _, e := range events {
		l.Log(e)
	}
	require.NoError(t, l.Close())
	return path
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name  string
		event log.Event
		want  []string
	}{
		{
			name:  "state",
			event: sampleEvents()[0],
			want:  []string{"2026-03-02T09:30:00.000000Z", "[conn:-]", "OUT plant1 State", "DISCONNECTED -> CONNECTING"},
		},
		{
			name:  "dial",
			event: sampleEvents()[1],
			want:  []string{"[conn:6f1c2a9e]", "DIAL", "Duration: 2.5ms", "Remote: 10.0.0.5:1876"},
		},
		{
			name:  "failed write",
			event: sampleEvents()[2],
			want:  []string{"WRITE", "Target: /pump.speed", "Value: 20", "Error: rejected"},
		},
		{
			name:  "dropped notification",
			event: sampleEvents()[3],
			want:  []string{"IN  plant1 Notification", "Mask: 0x02", "Dropped"},
		},
		{
			name:  "error",
			event: sampleEvents()[4],
			want:  []string{"Error: dial timeout", "Context: connect"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			formatEvent(&buf, tt.event)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestRunViewFilters(t *testing.T) {
	path := writeLog(t, sampleEvents())

	var buf bytes.Buffer
	require.NoError(t, RunView(path, ViewFilter{}, &buf))
	assert.Equal(t, 5, strings.Count(buf.String(), "\n\n"))

	cat := log.CategoryRequest
	buf.Reset()
	require.NoError(t, RunView(path, ViewFilter{Category: &cat}, &buf))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n\n"))

	buf.Reset()
	require.NoError(t, RunView(path, ViewFilter{Endpoint: "plant2"}, &buf))
	assert.Contains(t, buf.String(), "dial timeout")
	assert.NotContains(t, buf.String(), "plant1")

	end := t0.Add(15 * time.Millisecond)
	buf.Reset()
	require.NoError(t, RunView(path, ViewFilter{TimeEnd: &end}, &buf))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n\n"))
}

func TestRunViewMissingFile(t *testing.T) {
	err := RunView(filepath.Join(t.TempDir(), "missing.soxlog"), ViewFilter{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestParseFlags(t *testing.T) {
	d, err := ParseDirectionFlag("IN")
	require.NoError(t, err)
	assert.Equal(t, log.DirectionIn, d)
	_, err = ParseDirectionFlag("sideways")
	assert.Error(t, err)

	c, err := ParseCategoryFlag("notification")
	require.NoError(t, err)
	assert.Equal(t, log.CategoryNotification, c)
	_, err = ParseCategoryFlag("frame")
	assert.Error(t, err)

	ts, err := ParseTimeFlag("2026-03-02T09:30:00Z")
	require.NoError(t, err)
	assert.True(t, ts.Equal(t0))
	_, err = ParseTimeFlag("yesterday")
	assert.Error(t, err)
}

func TestCollect(t *testing.T) {
	stats, err := Collect(writeLog(t, sampleEvents()))
	require.NoError(t, err)

	assert.Equal(t, 5, stats.TotalEvents)
	assert.Equal(t, 2, stats.EventsByCategory[log.CategoryRequest])
	assert.Equal(t, 1, stats.EventsByDirection[log.DirectionIn])
	assert.Equal(t, 1, stats.Operations[log.OpDial])
	assert.Equal(t, 1, stats.FailedRequests)
	assert.Equal(t, 1, stats.DroppedChanges)
	assert.Equal(t, t0, stats.TimeRange.Start.UTC())
	assert.Equal(t, t0.Add(40*time.Millisecond), stats.TimeRange.End.UTC())

	require.Contains(t, stats.Endpoints, "plant1")
	p1 := stats.Endpoints["plant1"]
	assert.Equal(t, 4, p1.Events)
	assert.Len(t, p1.Connections, 1)
	assert.Equal(t, 1, p1.Errors)
	assert.Equal(t, "CONNECTING", p1.LastState)
	assert.Equal(t, 1, stats.Endpoints["plant2"].Errors)
}

func TestRunStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RunStats(writeLog(t, sampleEvents()), &buf))
	out := buf.String()
	assert.Contains(t, out, "Total events: 5")
	assert.Contains(t, out, "Dropped changes: 1")
	assert.Contains(t, out, "Endpoints (2):")
	assert.Contains(t, out, "plant1: 4 events, 1 connections, 1 errors, last state CONNECTING")
}

func TestExport(t *testing.T) {
	path := writeLog(t, sampleEvents())

	tests := []struct {
		format string
		lines  int
		want   string
	}{
		{"jsonl", 5, `"Endpoint":"plant1"`},
		{"csv", 6, "plant1,OUT,REQUEST,WRITE,/pump.speed,rejected"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			reader, err := log.NewReader(path)
			require.NoError(t, err)
			defer reader.Close()

			var buf bytes.Buffer
			require.NoError(t, export(reader, tt.format, &buf))
			assert.Equal(t, tt.lines, strings.Count(buf.String(), "\n"))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestExportUnknownFormat(t *testing.T) {
	err := RunExport(writeLog(t, nil), "xml", "")
	assert.ErrorContains(t, err, "unknown format")
}

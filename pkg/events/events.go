// Package events carries one-way lifecycle notifications out of the
// orchestration engine. Delivery semantics are the sink's concern; emitting
// never blocks or fails orchestration.
package events

import (
	"time"

	"github.com/riaz37/meetgenie-sub001/pkg/log"
	"github.com/riaz37/meetgenie-sub001/pkg/platform"
)

// Type enumerates the lifecycle facts the engine reports.
type Type string

const (
	SessionJoined    Type = "session.joined"
	SessionLeft      Type = "session.left"
	RecordingStarted Type = "recording.started"
	RecordingStopped Type = "recording.stopped"
	AuthSucceeded    Type = "auth.succeeded"
	AuthFailed       Type = "auth.failed"
)

// Event is one lifecycle fact.
type Event struct {
	Type        Type              `json:"type"`
	Platform    platform.Platform `json:"platform,omitempty"`
	SessionID   string            `json:"session_id,omitempty"`
	RecordingID string            `json:"recording_id,omitempty"`
	MeetingID   string            `json:"meeting_id,omitempty"`
	Error       string            `json:"error,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Sink consumes lifecycle events. Implementations must not block.
type Sink interface {
	Emit(e Event)
}

// LogSink writes events to the process log. It is the default sink.
type LogSink struct{}

func (LogSink) Emit(e Event) {
	entry := log.WithFields(map[string]interface{}{
		"event":    string(e.Type),
		"platform": e.Platform.String(),
	})
	if e.SessionID != "" {
		entry = entry.WithField("session_id", e.SessionID)
	}
	if e.RecordingID != "" {
		entry = entry.WithField("recording_id", e.RecordingID)
	}
	if e.Error != "" {
		entry = entry.WithField("error", e.Error)
	}
	entry.Info("lifecycle event")
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Emit(Event) {}

// Emit fills in the timestamp and forwards to the sink, tolerating a nil
// sink.
func Emit(s Sink, e Event) {
	if s == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	s.Emit(e)
}

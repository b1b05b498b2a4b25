package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/riaz37/meetgenie-sub001/pkg/platform"
)

// ErrNotFound is returned when no active session exists for an identifier.
var ErrNotFound = errors.New("session not found")

// JoinError reports a failed meeting join. No registry mutation happens
// when it is returned.
type JoinError struct {
	Platform  platform.Platform
	MeetingID string
	Err       error
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("failed to join meeting %s on %s: %v", e.MeetingID, e.Platform, e.Err)
}

func (e *JoinError) Unwrap() error {
	return e.Err
}

// LeaveError reports a failed remote leave. The local session is removed
// regardless; the error exists for reporting only.
type LeaveError struct {
	SessionID string
	Err       error
}

func (e *LeaveError) Error() string {
	return fmt.Sprintf("remote leave failed for session %s: %v", e.SessionID, e.Err)
}

func (e *LeaveError) Unwrap() error {
	return e.Err
}

// Session is one active attendance of a remote meeting. Values handed out
// by the manager are snapshots; the registry keeps the authoritative copy.
type Session struct {
	ID        string            `json:"session_id"`
	Platform  platform.Platform `json:"platform"`
	MeetingID string            `json:"meeting_id"`
	JoinedAt  time.Time         `json:"joined_at"`
}

// Stats counts the audio traffic pumped for one session.
type Stats struct {
	StartTime      time.Time `json:"start_time"`
	FramesReceived uint64    `json:"frames_received"`
	FramesDropped  uint64    `json:"frames_dropped"`
	BytesReceived  uint64    `json:"bytes_received"`
	LastFrameTime  time.Time `json:"last_frame_time"`
}

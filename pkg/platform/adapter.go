package platform

import (
	"context"
	"time"

	"github.com/riaz37/meetgenie-sub001/pkg/audio"
)

// SessionHandle is the adapter's opaque reference to a joined meeting.
// Only the adapter that issued it can interpret it.
type SessionHandle interface{}

// RecorderHandle is the adapter's opaque reference to a running recording.
type RecorderHandle interface{}

// ConnectionStatus is the last-known reachability and authentication state
// for one platform. Instances are replaced wholesale on refresh, never
// mutated field by field.
type ConnectionStatus struct {
	Connected       bool       `json:"connected"`
	LastConnectedAt *time.Time `json:"last_connected_at,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
}

// Adapter translates generic session and recording operations into one
// platform's wire protocol. Adapter instances are shared across all
// sessions of their platform and must be safe for concurrent use; each
// adapter owns its internal connection pooling.
type Adapter interface {
	// Platform identifies which vendor this adapter speaks to.
	Platform() Platform

	// Authenticate establishes credentials with the platform. A failed
	// authentication is an ordinary error return, not a fatal condition.
	Authenticate(ctx context.Context, creds Credentials) error

	// Join attends the meeting and returns an opaque handle for it.
	Join(ctx context.Context, info MeetingJoinInfo) (SessionHandle, error)

	// Leave abandons a joined meeting.
	Leave(ctx context.Context, h SessionHandle) error

	// Participants fetches the current attendee list.
	Participants(ctx context.Context, h SessionHandle) ([]Participant, error)

	// AudioStream returns a live frame channel for the meeting. The
	// adapter closes the channel when the meeting ends or the handle is
	// left.
	AudioStream(ctx context.Context, h SessionHandle) (<-chan *audio.Frame, error)

	// StartRecording begins capturing the meeting with the given config.
	StartRecording(ctx context.Context, h SessionHandle, cfg RecordingConfig) (RecorderHandle, error)

	// StopRecording ends a capture started by StartRecording.
	StopRecording(ctx context.Context, rh RecorderHandle) error

	// HealthProbe checks reachability of the platform. A nil return means
	// the adapter considers itself connected.
	HealthProbe(ctx context.Context) error

	// Shutdown releases all adapter resources.
	Shutdown(ctx context.Context) error
}

package recording

import (
	"errors"
	"fmt"
	"time"

	"github.com/riaz37/meetgenie-sub001/pkg/platform"
)

// ErrNotFound is returned when no active recording exists for an
// identifier.
var ErrNotFound = errors.New("recording not found")

// Status is the recording state machine: starting → active → stopped, or
// starting → failed. Terminal states never transition back; a new
// recording for the same session gets a new identifier.
type Status string

const (
	StatusStarting Status = "starting"
	StatusActive   Status = "active"
	StatusStopped  Status = "stopped"
	StatusFailed   Status = "failed"
)

// StartError reports a failed recording start. The failed recording is not
// retained in the active set.
type StartError struct {
	SessionID string
	Err       error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start recording for session %s: %v", e.SessionID, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// StopError reports a failed remote stop. The recording leaves the active
// set regardless; the error exists for reporting only.
type StopError struct {
	RecordingID string
	Err         error
}

func (e *StopError) Error() string {
	return fmt.Sprintf("remote stop failed for recording %s: %v", e.RecordingID, e.Err)
}

func (e *StopError) Unwrap() error {
	return e.Err
}

// Recording is one capture of a session's audio/video. It references its
// session by id without owning it.
type Recording struct {
	ID        string                   `json:"recording_id"`
	SessionID string                   `json:"session_id"`
	Status    Status                   `json:"status"`
	Config    platform.RecordingConfig `json:"config"`
	StartedAt time.Time                `json:"started_at"`
	StoppedAt *time.Time               `json:"stopped_at,omitempty"`
}

const (
	defaultFormat  = "audio"
	defaultQuality = "standard"
)

func applyDefaults(cfg platform.RecordingConfig) platform.RecordingConfig {
	if cfg.Format == "" {
		cfg.Format = defaultFormat
	}
	if cfg.Quality == "" {
		cfg.Quality = defaultQuality
	}
	return cfg
}

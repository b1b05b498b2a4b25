// Package engine ties the adapter registry, session manager and recording
// manager into one orchestration façade and aggregates health telemetry.
package engine

import (
	"context"
	"time"

	"github.com/riaz37/meetgenie-sub001/pkg/audio"
	"github.com/riaz37/meetgenie-sub001/pkg/events"
	"github.com/riaz37/meetgenie-sub001/pkg/log"
	"github.com/riaz37/meetgenie-sub001/pkg/platform"
	"github.com/riaz37/meetgenie-sub001/pkg/recording"
	"github.com/riaz37/meetgenie-sub001/pkg/session"
)

// Engine coordinates meeting attendance and recording across all
// registered platforms. Multiple engine instances can coexist; nothing is
// process-global.
type Engine struct {
	registry   *platform.Registry
	sessions   *session.Manager
	recordings *recording.Manager
	bus        *audio.Bus
	sink       events.Sink
}

// New wires an engine around the given registry. opTimeout bounds every
// adapter invocation made on behalf of a caller.
func New(registry *platform.Registry, bus *audio.Bus, sink events.Sink, opTimeout time.Duration) *Engine {
	sessions := session.NewManager(registry, bus, sink, opTimeout)
	return &Engine{
		registry:   registry,
		sessions:   sessions,
		recordings: recording.NewManager(sessions, bus, sink, opTimeout),
		bus:        bus,
		sink:       sink,
	}
}

// Registry exposes the adapter registry, for registration and credential
// flows at startup.
func (e *Engine) Registry() *platform.Registry {
	return e.registry
}

// AuthenticateAll runs the startup credential fan-out and emits one auth
// outcome event per attempted platform. Any subset of platforms may fail;
// the registry still reaches Ready.
func (e *Engine) AuthenticateAll(ctx context.Context, creds map[platform.Platform]platform.Credentials) {
	for p, err := range e.registry.AuthenticateAll(ctx, creds) {
		if err != nil {
			events.Emit(e.sink, events.Event{Type: events.AuthFailed, Platform: p, Error: err.Error()})
			continue
		}
		events.Emit(e.sink, events.Event{Type: events.AuthSucceeded, Platform: p})
	}
}

// JoinMeeting attends a meeting and returns the new session.
func (e *Engine) JoinMeeting(ctx context.Context, info platform.MeetingJoinInfo) (session.Session, error) {
	return e.sessions.Join(ctx, info)
}

// LeaveMeeting removes the session, best-effort against the remote side.
func (e *Engine) LeaveMeeting(ctx context.Context, sessionID string) error {
	return e.sessions.Leave(ctx, sessionID)
}

// ActiveSessions returns a snapshot of the active sessions.
func (e *Engine) ActiveSessions() []session.Session {
	return e.sessions.ActiveSessions()
}

// GetSession returns a snapshot of one session.
func (e *Engine) GetSession(sessionID string) (session.Session, bool) {
	return e.sessions.Get(sessionID)
}

// SessionStats returns the audio counters for one session.
func (e *Engine) SessionStats(sessionID string) (session.Stats, error) {
	return e.sessions.Stats(sessionID)
}

// GetParticipants fetches the attendee list for a session.
func (e *Engine) GetParticipants(ctx context.Context, sessionID string) ([]platform.Participant, error) {
	return e.sessions.Participants(ctx, sessionID)
}

// StartRecording begins a recording on an active session.
func (e *Engine) StartRecording(ctx context.Context, sessionID string, cfg platform.RecordingConfig) (recording.Recording, error) {
	return e.recordings.Start(ctx, sessionID, cfg)
}

// StopRecording ends a recording and returns its final snapshot.
func (e *Engine) StopRecording(ctx context.Context, recordingID string) (recording.Recording, error) {
	return e.recordings.Stop(ctx, recordingID)
}

// GetActiveRecording returns one active recording, if present.
func (e *Engine) GetActiveRecording(recordingID string) (recording.Recording, bool) {
	return e.recordings.Get(recordingID)
}

// ActiveRecordings returns a snapshot of the active recordings.
func (e *Engine) ActiveRecordings() []recording.Recording {
	return e.recordings.ActiveRecordings()
}

// GetAudioStream returns a live audio stream for a session. The caller
// owns consumption and closing.
func (e *Engine) GetAudioStream(sessionID string) (*recording.Stream, error) {
	return e.recordings.AudioStream(sessionID)
}

// PlatformStatuses probes every registered platform concurrently.
func (e *Engine) PlatformStatuses(ctx context.Context) map[platform.Platform]platform.ConnectionStatus {
	return e.registry.Statuses(ctx)
}

// Shutdown tears the engine down: recordings stop, sessions leave, the
// registry and bus close. Per-component failures are logged, never raised.
func (e *Engine) Shutdown(ctx context.Context) {
	log.Info("Shutting down orchestration engine")

	e.recordings.Shutdown(ctx)
	e.sessions.Shutdown(ctx)
	if err := e.registry.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Adapter registry shutdown reported errors")
	}
	e.bus.Shutdown()

	log.Info("Orchestration engine shutdown complete")
}

package recording

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/riaz37/meetgenie-sub001/pkg/audio"
	"github.com/riaz37/meetgenie-sub001/pkg/events"
	"github.com/riaz37/meetgenie-sub001/pkg/log"
	"github.com/riaz37/meetgenie-sub001/pkg/platform"
	"github.com/riaz37/meetgenie-sub001/pkg/session"
)

type entry struct {
	rec     Recording
	adapter platform.Adapter
	handle  platform.RecorderHandle
}

// Manager owns the in-memory table of active recordings. Stopped and
// failed recordings leave the table; archival belongs to downstream
// consumers.
type Manager struct {
	mu         sync.RWMutex
	recordings map[string]*entry

	sessions  *session.Manager
	bus       *audio.Bus
	sink      events.Sink
	opTimeout time.Duration
}

// NewManager creates an empty recording manager bound to the session
// manager whose sessions it records.
func NewManager(sessions *session.Manager, bus *audio.Bus, sink events.Sink, opTimeout time.Duration) *Manager {
	return &Manager{
		recordings: make(map[string]*entry),
		sessions:   sessions,
		bus:        bus,
		sink:       sink,
		opTimeout:  opTimeout,
	}
}

// Start begins a recording for the session. The adapter call runs under
// the session's serialization lock, so it cannot race a concurrent leave.
// A failed start surfaces a StartError and retains nothing. Multiple
// concurrent recordings per session are permitted; exclusivity, if wanted,
// is the caller's policy.
func (m *Manager) Start(ctx context.Context, sessionID string, cfg platform.RecordingConfig) (Recording, error) {
	cfg = applyDefaults(cfg)

	rec := Recording{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Status:    StatusStarting,
		Config:    cfg,
	}

	err := m.sessions.Do(sessionID, func(adapter platform.Adapter, handle platform.SessionHandle) error {
		startCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
		defer cancel()

		rh, err := adapter.StartRecording(startCtx, handle, cfg)
		if err != nil {
			return &StartError{SessionID: sessionID, Err: err}
		}

		rec.Status = StatusActive
		rec.StartedAt = time.Now()

		m.mu.Lock()
		m.recordings[rec.ID] = &entry{rec: rec, adapter: adapter, handle: rh}
		m.mu.Unlock()
		return nil
	})
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Recording{}, session.ErrNotFound
		}
		rec.Status = StatusFailed
		log.WithError(err).Errorf("Recording start failed for session: %s", sessionID)
		return Recording{}, err
	}

	log.WithFields(map[string]interface{}{
		"recording_id": rec.ID,
		"session_id":   sessionID,
		"format":       cfg.Format,
	}).Info("Recording started")

	events.Emit(m.sink, events.Event{
		Type:        events.RecordingStarted,
		SessionID:   sessionID,
		RecordingID: rec.ID,
	})

	return rec, nil
}

// Stop ends a recording and removes it from the active set. The remote
// stop is best-effort: a failure is reported as a StopError while the
// final stopped snapshot is still returned, so no zombie entries survive a
// misbehaving platform.
func (m *Manager) Stop(ctx context.Context, recordingID string) (Recording, error) {
	m.mu.Lock()
	e, exists := m.recordings[recordingID]
	if !exists {
		m.mu.Unlock()
		return Recording{}, ErrNotFound
	}
	delete(m.recordings, recordingID)
	m.mu.Unlock()

	stopCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()

	var stopErr error
	// Serialize against other operations on the same session while it
	// still exists; a recording can outlive its session, in which case the
	// adapter is called directly.
	err := m.sessions.Do(e.rec.SessionID, func(platform.Adapter, platform.SessionHandle) error {
		return e.adapter.StopRecording(stopCtx, e.handle)
	})
	if errors.Is(err, session.ErrNotFound) {
		err = e.adapter.StopRecording(stopCtx, e.handle)
	}
	if err != nil {
		log.WithError(err).Warnf("Remote stop failed for recording %s, removing locally", recordingID)
		stopErr = &StopError{RecordingID: recordingID, Err: err}
	}

	now := time.Now()
	e.rec.Status = StatusStopped
	e.rec.StoppedAt = &now

	events.Emit(m.sink, events.Event{
		Type:        events.RecordingStopped,
		SessionID:   e.rec.SessionID,
		RecordingID: recordingID,
		Error:       errString(stopErr),
	})

	log.Infof("Recording stopped: %s", recordingID)
	return e.rec, stopErr
}

// Get returns a snapshot of one active recording.
func (m *Manager) Get(recordingID string) (Recording, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, exists := m.recordings[recordingID]
	if !exists {
		return Recording{}, false
	}
	return e.rec, true
}

// ActiveRecordings returns a point-in-time copy of all active recordings.
func (m *Manager) ActiveRecordings() []Recording {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Recording, 0, len(m.recordings))
	for _, e := range m.recordings {
		out = append(out, e.rec)
	}
	return out
}

// Count returns the number of active recordings.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.recordings)
}

// Stream is a live, non-restartable view of one session's audio. The
// caller owns consumption and must Close it when done.
type Stream struct {
	sub *audio.Subscriber
	bus *audio.Bus
}

// Frames returns the channel the stream's frames arrive on. The channel
// closes when the stream is closed or the bus shuts down.
func (s *Stream) Frames() <-chan *audio.Frame {
	return s.sub.Channel
}

// Close detaches the stream from the bus.
func (s *Stream) Close() {
	s.bus.Unsubscribe(s.sub.ID)
}

// AudioStream attaches a live audio stream to a session via the bus.
func (m *Manager) AudioStream(sessionID string) (*Stream, error) {
	if _, exists := m.sessions.Get(sessionID); !exists {
		return nil, session.ErrNotFound
	}

	sub := audio.NewSubscriber("stream-"+uuid.New().String(), 1000)
	sub.SetSessionFilter(sessionID)
	m.bus.Subscribe(sub)

	return &Stream{sub: sub, bus: m.bus}, nil
}

// Shutdown stops every active recording best-effort.
func (m *Manager) Shutdown(ctx context.Context) {
	for _, rec := range m.ActiveRecordings() {
		if _, err := m.Stop(ctx, rec.ID); err != nil && !errors.Is(err, ErrNotFound) {
			log.WithError(err).Errorf("Error stopping recording during shutdown: %s", rec.ID)
		}
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

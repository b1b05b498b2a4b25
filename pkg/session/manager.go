package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/riaz37/meetgenie-sub001/pkg/audio"
	"github.com/riaz37/meetgenie-sub001/pkg/events"
	"github.com/riaz37/meetgenie-sub001/pkg/log"
	"github.com/riaz37/meetgenie-sub001/pkg/platform"
)

// entry is the registry's authoritative record of one session. Its mutex
// serializes all mutating operations for the session id, so a leave can
// never race a recording start on the same session.
type entry struct {
	session Session
	adapter platform.Adapter
	handle  platform.SessionHandle

	mu      sync.Mutex
	removed bool

	stopAudio chan struct{}

	statsMu sync.RWMutex
	stats   Stats
}

// Manager owns the in-memory table of active sessions and drives joins and
// leaves through the platform adapters.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	registry  *platform.Registry
	bus       *audio.Bus
	sink      events.Sink
	opTimeout time.Duration
}

// NewManager creates an empty session manager. opTimeout bounds every
// adapter call the manager dispatches.
func NewManager(registry *platform.Registry, bus *audio.Bus, sink events.Sink, opTimeout time.Duration) *Manager {
	return &Manager{
		sessions:  make(map[string]*entry),
		registry:  registry,
		bus:       bus,
		sink:      sink,
		opTimeout: opTimeout,
	}
}

// Join attends the meeting described by info and registers a new session
// for it. The join is all-or-nothing: any adapter failure leaves the
// registry untouched.
func (m *Manager) Join(ctx context.Context, info platform.MeetingJoinInfo) (Session, error) {
	adapter, err := m.registry.Get(info.Platform)
	if err != nil {
		return Session{}, err
	}

	joinCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()

	handle, err := adapter.Join(joinCtx, info)
	if err != nil {
		return Session{}, &JoinError{Platform: info.Platform, MeetingID: info.MeetingID, Err: err}
	}

	e := &entry{
		session: Session{
			ID:        uuid.New().String(),
			Platform:  info.Platform,
			MeetingID: info.MeetingID,
			JoinedAt:  time.Now(),
		},
		adapter:   adapter,
		handle:    handle,
		stopAudio: make(chan struct{}),
		stats:     Stats{StartTime: time.Now()},
	}

	m.mu.Lock()
	m.sessions[e.session.ID] = e
	m.mu.Unlock()

	go m.pumpAudio(e)

	log.WithFields(map[string]interface{}{
		"session_id": e.session.ID,
		"platform":   info.Platform.String(),
		"meeting_id": info.MeetingID,
	}).Info("Joined meeting")

	events.Emit(m.sink, events.Event{
		Type:      events.SessionJoined,
		Platform:  info.Platform,
		SessionID: e.session.ID,
		MeetingID: info.MeetingID,
	})

	return e.session, nil
}

// Leave removes the session from the registry. The remote leave is
// best-effort: an adapter failure is reported as a LeaveError but the
// local session is gone either way, so a retried leave never loops against
// state that insists the session still exists.
func (m *Manager) Leave(ctx context.Context, sessionID string) error {
	m.mu.RLock()
	e, exists := m.sessions[sessionID]
	m.mu.RUnlock()
	if !exists {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return ErrNotFound
	}

	leaveCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()

	var leaveErr error
	if err := e.adapter.Leave(leaveCtx, e.handle); err != nil {
		log.WithError(err).Warnf("Remote leave failed for session %s, removing locally", sessionID)
		leaveErr = &LeaveError{SessionID: sessionID, Err: err}
	}

	m.remove(e)

	events.Emit(m.sink, events.Event{
		Type:      events.SessionLeft,
		Platform:  e.session.Platform,
		SessionID: sessionID,
		MeetingID: e.session.MeetingID,
		Error:     errString(leaveErr),
	})

	log.Infof("Left meeting session: %s", sessionID)
	return leaveErr
}

// remove deletes the entry and stops its audio pump. Caller holds e.mu.
func (m *Manager) remove(e *entry) {
	e.removed = true
	close(e.stopAudio)

	m.mu.Lock()
	delete(m.sessions, e.session.ID)
	m.mu.Unlock()
}

// Get returns a snapshot of one session.
func (m *Manager) Get(sessionID string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, exists := m.sessions[sessionID]
	if !exists {
		return Session{}, false
	}
	return e.session, true
}

// ActiveSessions returns a point-in-time copy of all active sessions.
func (m *Manager) ActiveSessions() []Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Session, 0, len(m.sessions))
	for _, e := range m.sessions {
		out = append(out, e.session)
	}
	return out
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Participants fetches the current attendee list for a session. The call
// suspends on network I/O and holds no registry lock while doing so.
func (m *Manager) Participants(ctx context.Context, sessionID string) ([]platform.Participant, error) {
	m.mu.RLock()
	e, exists := m.sessions[sessionID]
	m.mu.RUnlock()
	if !exists {
		return nil, ErrNotFound
	}

	opCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()

	return e.adapter.Participants(opCtx, e.handle)
}

// Stats returns the audio counters for a session.
func (m *Manager) Stats(sessionID string) (Stats, error) {
	m.mu.RLock()
	e, exists := m.sessions[sessionID]
	m.mu.RUnlock()
	if !exists {
		return Stats{}, ErrNotFound
	}

	e.statsMu.RLock()
	defer e.statsMu.RUnlock()
	return e.stats, nil
}

// Do runs fn with the session's serialization lock held, giving the
// recording manager the same per-session ordering guarantees as leave.
func (m *Manager) Do(sessionID string, fn func(adapter platform.Adapter, handle platform.SessionHandle) error) error {
	m.mu.RLock()
	e, exists := m.sessions[sessionID]
	m.mu.RUnlock()
	if !exists {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return ErrNotFound
	}
	return fn(e.adapter, e.handle)
}

// Shutdown leaves every active session best-effort.
func (m *Manager) Shutdown(ctx context.Context) {
	for _, s := range m.ActiveSessions() {
		if err := m.Leave(ctx, s.ID); err != nil && err != ErrNotFound {
			log.WithError(err).Errorf("Error leaving session during shutdown: %s", s.ID)
		}
	}
}

// pumpAudio subscribes the adapter's audio stream and republishes frames to
// the bus tagged with the session id, until the session is left or the
// stream ends.
func (m *Manager) pumpAudio(e *entry) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-e.stopAudio
		cancel()
	}()

	frames, err := e.adapter.AudioStream(ctx, e.handle)
	if err != nil {
		log.WithError(err).Warnf("No audio stream for session %s", e.session.ID)
		return
	}

	log.Debugf("Audio pump started for session: %s", e.session.ID)

	for frame := range frames {
		select {
		case <-e.stopAudio:
			log.Debugf("Audio pump stopped for session: %s", e.session.ID)
			return
		default:
		}

		published := true
		if m.bus != nil {
			published = m.bus.Publish(e.session.ID, frame)
		}

		e.statsMu.Lock()
		e.stats.FramesReceived++
		e.stats.BytesReceived += uint64(len(frame.Data))
		e.stats.LastFrameTime = time.Now()
		if !published {
			e.stats.FramesDropped++
		}
		e.statsMu.Unlock()
	}

	log.Debugf("Audio stream ended for session: %s", e.session.ID)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

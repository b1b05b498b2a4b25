package audio

import (
	"sync"
	"time"

	"github.com/riaz37/meetgenie-sub001/pkg/log"
)

// Subscriber receives frames for the sessions and kinds it filters on.
// Delivery is non-blocking: a full channel drops the frame rather than
// stalling the publisher.
type Subscriber struct {
	ID        string
	SessionID string        // empty means all sessions
	Kinds     map[Kind]bool // empty means all kinds
	Channel   chan *Frame

	lastActivity time.Time
	connected    bool
	mu           sync.RWMutex
}

// NewSubscriber creates a subscriber with the given channel capacity.
func NewSubscriber(id string, bufferSize int) *Subscriber {
	return &Subscriber{
		ID:           id,
		Kinds:        make(map[Kind]bool),
		Channel:      make(chan *Frame, bufferSize),
		lastActivity: time.Now(),
		connected:    true,
	}
}

// SetSessionFilter restricts delivery to one session's frames.
func (s *Subscriber) SetSessionFilter(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SessionID = sessionID
}

// SetKindFilter restricts delivery to the given frame kinds.
func (s *Subscriber) SetKindFilter(kinds []Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Kinds = make(map[Kind]bool)
	for _, k := range kinds {
		s.Kinds[k] = true
	}
}

func (s *Subscriber) shouldReceive(sessionID string, frame *Frame) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.connected {
		return false
	}
	if s.SessionID != "" && s.SessionID != sessionID {
		return false
	}
	if len(s.Kinds) > 0 && !s.Kinds[frame.Kind] {
		return false
	}
	return true
}

func (s *Subscriber) send(frame *Frame) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return false
	}

	select {
	case s.Channel <- frame:
		s.lastActivity = time.Now()
		return true
	default:
		log.Warnf("Dropping frame for subscriber %s (channel full)", s.ID)
		return false
	}
}

// Close disconnects the subscriber and closes its channel.
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		s.connected = false
		close(s.Channel)
	}
}

// IsConnected reports whether the subscriber can still receive frames.
func (s *Subscriber) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Bus fans session audio out to subscribers.
type Bus struct {
	subscribers map[string]*Subscriber
	mu          sync.RWMutex
	stats       BusStats
}

// BusStats holds counters for the bus.
type BusStats struct {
	TotalFrames       uint64
	DroppedFrames     uint64
	ActiveSubscribers int
	LastFrameTime     time.Time
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string]*Subscriber),
	}
}

// Subscribe adds a subscriber to the bus.
func (b *Bus) Subscribe(sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[sub.ID] = sub
	b.stats.ActiveSubscribers = len(b.subscribers)

	log.Debugf("Added audio subscriber: %s (total: %d)", sub.ID, b.stats.ActiveSubscribers)
}

// Unsubscribe removes and closes a subscriber.
func (b *Bus) Unsubscribe(subscriberID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, exists := b.subscribers[subscriberID]; exists {
		sub.Close()
		delete(b.subscribers, subscriberID)
		b.stats.ActiveSubscribers = len(b.subscribers)

		log.Debugf("Removed audio subscriber: %s (total: %d)", subscriberID, b.stats.ActiveSubscribers)
	}
}

// Publish delivers a frame to every subscriber matching the session. It
// returns false only when at least one matching subscriber dropped the
// frame.
func (b *Bus) Publish(sessionID string, frame *Frame) bool {
	b.mu.RLock()
	matching := make([]*Subscriber, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		if sub.shouldReceive(sessionID, frame) {
			matching = append(matching, sub)
		}
	}
	b.mu.RUnlock()

	b.mu.Lock()
	b.stats.TotalFrames++
	b.stats.LastFrameTime = time.Now()
	b.mu.Unlock()

	if len(matching) == 0 {
		return true
	}

	delivered := true
	for _, sub := range matching {
		if !sub.send(frame) {
			b.mu.Lock()
			b.stats.DroppedFrames++
			b.mu.Unlock()
			delivered = false
		}
	}
	return delivered
}

// Stats returns a copy of the bus counters.
func (b *Bus) Stats() BusStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := b.stats
	stats.ActiveSubscribers = len(b.subscribers)
	return stats
}

// SubscriberCount returns the number of registered subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Shutdown closes every subscriber and resets the bus.
func (b *Bus) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subscribers {
		sub.Close()
	}
	b.subscribers = make(map[string]*Subscriber)
	b.stats.ActiveSubscribers = 0

	log.Info("Audio bus shutdown complete")
}

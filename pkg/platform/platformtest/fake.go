// Package platformtest provides a controllable in-memory Adapter for
// tests of the registries and lifecycle managers.
package platformtest

import (
	"context"
	"errors"
	"sync"

	"github.com/riaz37/meetgenie-sub001/pkg/audio"
	"github.com/riaz37/meetgenie-sub001/pkg/platform"
)

// FakeHandle is the session handle the fake issues on Join.
type FakeHandle struct {
	MeetingID string
}

// FakeRecorderHandle is the recorder handle the fake issues.
type FakeRecorderHandle struct {
	SessionMeetingID string
}

// FakeAdapter implements platform.Adapter with scriptable failures and
// call counters. The zero value joins, records and probes successfully.
type FakeAdapter struct {
	Name platform.Platform

	AuthErr     error
	JoinErr     error
	LeaveErr    error
	StartErr    error
	StopErr     error
	ProbeErr    error
	ShutdownErr error

	// JoinDelay and ProbeDelay simulate slow adapter calls; both honor
	// context cancellation.
	JoinDelay  func(ctx context.Context) error
	ProbeDelay func(ctx context.Context) error

	// ParticipantsList is returned from Participants.
	ParticipantsList []platform.Participant

	// StreamFrames are emitted once on the audio stream channel; the
	// channel then stays open until the stream context ends.
	StreamFrames []*audio.Frame

	mu            sync.Mutex
	authenticated bool
	joins         int
	leaves        int
	starts        int
	stops         int
	probes        int
	shutdowns     int
}

// NewFake creates a fake adapter for the given platform.
func NewFake(name platform.Platform) *FakeAdapter {
	return &FakeAdapter{Name: name}
}

func (f *FakeAdapter) Platform() platform.Platform {
	return f.Name
}

func (f *FakeAdapter) Authenticate(ctx context.Context, creds platform.Credentials) error {
	if f.AuthErr != nil {
		return f.AuthErr
	}
	f.mu.Lock()
	f.authenticated = true
	f.mu.Unlock()
	return nil
}

// Authenticated reports whether Authenticate has succeeded.
func (f *FakeAdapter) Authenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authenticated
}

func (f *FakeAdapter) Join(ctx context.Context, info platform.MeetingJoinInfo) (platform.SessionHandle, error) {
	if f.JoinDelay != nil {
		if err := f.JoinDelay(ctx); err != nil {
			return nil, err
		}
	}
	if f.JoinErr != nil {
		return nil, f.JoinErr
	}
	f.mu.Lock()
	f.joins++
	f.mu.Unlock()
	return &FakeHandle{MeetingID: info.MeetingID}, nil
}

func (f *FakeAdapter) Leave(ctx context.Context, h platform.SessionHandle) error {
	f.mu.Lock()
	f.leaves++
	f.mu.Unlock()
	return f.LeaveErr
}

func (f *FakeAdapter) Participants(ctx context.Context, h platform.SessionHandle) ([]platform.Participant, error) {
	return f.ParticipantsList, nil
}

func (f *FakeAdapter) AudioStream(ctx context.Context, h platform.SessionHandle) (<-chan *audio.Frame, error) {
	frames := make(chan *audio.Frame, len(f.StreamFrames)+1)
	for _, frame := range f.StreamFrames {
		frames <- frame
	}
	go func() {
		<-ctx.Done()
		close(frames)
	}()
	return frames, nil
}

func (f *FakeAdapter) StartRecording(ctx context.Context, h platform.SessionHandle, cfg platform.RecordingConfig) (platform.RecorderHandle, error) {
	if f.StartErr != nil {
		return nil, f.StartErr
	}
	fh, ok := h.(*FakeHandle)
	if !ok {
		return nil, errors.New("foreign session handle")
	}
	f.mu.Lock()
	f.starts++
	f.mu.Unlock()
	return &FakeRecorderHandle{SessionMeetingID: fh.MeetingID}, nil
}

func (f *FakeAdapter) StopRecording(ctx context.Context, rh platform.RecorderHandle) error {
	f.mu.Lock()
	f.stops++
	f.mu.Unlock()
	return f.StopErr
}

func (f *FakeAdapter) HealthProbe(ctx context.Context) error {
	f.mu.Lock()
	f.probes++
	f.mu.Unlock()
	if f.ProbeDelay != nil {
		if err := f.ProbeDelay(ctx); err != nil {
			return err
		}
	}
	return f.ProbeErr
}

func (f *FakeAdapter) Shutdown(ctx context.Context) error {
	f.mu.Lock()
	f.shutdowns++
	f.mu.Unlock()
	return f.ShutdownErr
}

// Joins returns how many joins succeeded.
func (f *FakeAdapter) Joins() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.joins
}

// Leaves returns how many leaves were attempted.
func (f *FakeAdapter) Leaves() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.leaves
}

// Starts returns how many recording starts succeeded.
func (f *FakeAdapter) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

// Stops returns how many recording stops were attempted.
func (f *FakeAdapter) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

// Probes returns how many health probes were attempted.
func (f *FakeAdapter) Probes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probes
}

// Shutdowns returns how many shutdowns were attempted.
func (f *FakeAdapter) Shutdowns() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdowns
}

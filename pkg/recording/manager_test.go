package recording_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riaz37/meetgenie-sub001/pkg/audio"
	"github.com/riaz37/meetgenie-sub001/pkg/events"
	"github.com/riaz37/meetgenie-sub001/pkg/platform"
	"github.com/riaz37/meetgenie-sub001/pkg/platform/platformtest"
	"github.com/riaz37/meetgenie-sub001/pkg/recording"
	"github.com/riaz37/meetgenie-sub001/pkg/session"
)

type fixture struct {
	fake       *platformtest.FakeAdapter
	bus        *audio.Bus
	sessions   *session.Manager
	recordings *recording.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fake := platformtest.NewFake(platform.Zoom)
	registry := platform.NewRegistry(time.Second)
	if err := registry.Register(fake); err != nil {
		t.Fatalf("Register: %v", err)
	}

	bus := audio.NewBus()
	sessions := session.NewManager(registry, bus, events.NopSink{}, time.Second)
	recordings := recording.NewManager(sessions, bus, events.NopSink{}, time.Second)

	return &fixture{fake: fake, bus: bus, sessions: sessions, recordings: recordings}
}

func (f *fixture) join(t *testing.T, meetingID string) session.Session {
	t.Helper()
	sess, err := f.sessions.Join(context.Background(), platform.MeetingJoinInfo{
		MeetingID: meetingID,
		Platform:  platform.Zoom,
	})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	return sess
}

func TestStart_SessionNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.recordings.Start(context.Background(), "missing", platform.RecordingConfig{})
	if !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("Start err = %v, want session.ErrNotFound", err)
	}
	if got := len(f.recordings.ActiveRecordings()); got != 0 {
		t.Errorf("ActiveRecordings has %d entries, want 0", got)
	}
}

func TestStart_Success(t *testing.T) {
	f := newFixture(t)
	sess := f.join(t, "m1")

	rec, err := f.recordings.Start(context.Background(), sess.ID, platform.RecordingConfig{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if rec.ID == "" {
		t.Error("recording id is empty")
	}
	if rec.SessionID != sess.ID {
		t.Errorf("recording session id = %q, want %q", rec.SessionID, sess.ID)
	}
	if rec.Status != recording.StatusActive {
		t.Errorf("recording status = %q, want active", rec.Status)
	}
	if rec.StartedAt.IsZero() {
		t.Error("recording start timestamp is zero")
	}
	// Defaults are applied for unspecified options.
	if rec.Config.Format == "" || rec.Config.Quality == "" {
		t.Errorf("recording config missing defaults: %+v", rec.Config)
	}

	active := f.recordings.ActiveRecordings()
	if len(active) != 1 || active[0].ID != rec.ID {
		t.Errorf("ActiveRecordings = %v, want the started recording", active)
	}
}

func TestStart_AdapterFailureRetainsNothing(t *testing.T) {
	f := newFixture(t)
	sess := f.join(t, "m1")
	f.fake.StartErr = errors.New("recording disabled by host")

	_, err := f.recordings.Start(context.Background(), sess.ID, platform.RecordingConfig{})

	var startErr *recording.StartError
	if !errors.As(err, &startErr) {
		t.Fatalf("Start err = %v, want *StartError", err)
	}
	if got := len(f.recordings.ActiveRecordings()); got != 0 {
		t.Errorf("failed recording retained in active set (%d entries)", got)
	}
}

func TestStop_NotFound(t *testing.T) {
	f := newFixture(t)

	if _, err := f.recordings.Stop(context.Background(), "missing"); !errors.Is(err, recording.ErrNotFound) {
		t.Fatalf("Stop err = %v, want ErrNotFound", err)
	}
}

func TestStop_TransitionsToStopped(t *testing.T) {
	f := newFixture(t)
	sess := f.join(t, "m1")

	rec, err := f.recordings.Start(context.Background(), sess.ID, platform.RecordingConfig{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	stopped, err := f.recordings.Stop(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if stopped.Status != recording.StatusStopped {
		t.Errorf("status = %q, want stopped", stopped.Status)
	}
	if stopped.StoppedAt == nil {
		t.Fatal("stopped recording has no stop timestamp")
	}
	if stopped.StoppedAt.Before(stopped.StartedAt) {
		t.Errorf("stop timestamp %v before start %v", stopped.StoppedAt, stopped.StartedAt)
	}
	if got := len(f.recordings.ActiveRecordings()); got != 0 {
		t.Errorf("stopped recording still in active set (%d entries)", got)
	}

	// Stopping again finds nothing.
	if _, err := f.recordings.Stop(context.Background(), rec.ID); !errors.Is(err, recording.ErrNotFound) {
		t.Errorf("second Stop err = %v, want ErrNotFound", err)
	}
}

func TestStop_RemovesEvenWhenAdapterFails(t *testing.T) {
	f := newFixture(t)
	sess := f.join(t, "m1")

	rec, err := f.recordings.Start(context.Background(), sess.ID, platform.RecordingConfig{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	f.fake.StopErr = errors.New("platform timeout")
	stopped, err := f.recordings.Stop(context.Background(), rec.ID)

	var stopErr *recording.StopError
	if !errors.As(err, &stopErr) {
		t.Fatalf("Stop err = %v, want *StopError", err)
	}
	if stopped.Status != recording.StatusStopped {
		t.Errorf("final snapshot status = %q, want stopped", stopped.Status)
	}
	if got := len(f.recordings.ActiveRecordings()); got != 0 {
		t.Errorf("recording retained after failed remote stop (%d entries)", got)
	}
}

func TestStop_AfterSessionLeft(t *testing.T) {
	f := newFixture(t)
	sess := f.join(t, "m1")

	rec, err := f.recordings.Start(context.Background(), sess.ID, platform.RecordingConfig{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := f.sessions.Leave(context.Background(), sess.ID); err != nil {
		t.Fatalf("Leave: %v", err)
	}

	// The recording outlives its session and can still be stopped.
	stopped, err := f.recordings.Stop(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Stop after session left: %v", err)
	}
	if stopped.Status != recording.StatusStopped {
		t.Errorf("status = %q, want stopped", stopped.Status)
	}
}

func TestConcurrentRecordingsPerSessionArePermitted(t *testing.T) {
	f := newFixture(t)
	sess := f.join(t, "m1")

	first, err := f.recordings.Start(context.Background(), sess.ID, platform.RecordingConfig{})
	if err != nil {
		t.Fatalf("first Start: %v", err)
	}
	second, err := f.recordings.Start(context.Background(), sess.ID, platform.RecordingConfig{Format: "audio_video"})
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}

	if first.ID == second.ID {
		t.Fatal("concurrent recordings share an identifier")
	}
	if got := len(f.recordings.ActiveRecordings()); got != 2 {
		t.Errorf("ActiveRecordings has %d entries, want 2", got)
	}
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	sess := f.join(t, "m1")

	if _, exists := f.recordings.Get("missing"); exists {
		t.Error("Get returned a recording for an unknown id")
	}

	rec, err := f.recordings.Start(context.Background(), sess.ID, platform.RecordingConfig{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	got, exists := f.recordings.Get(rec.ID)
	if !exists {
		t.Fatal("Get did not find the active recording")
	}
	if got.ID != rec.ID || got.Status != recording.StatusActive {
		t.Errorf("Get = %+v", got)
	}
}

func TestAudioStream(t *testing.T) {
	f := newFixture(t)

	if _, err := f.recordings.AudioStream("missing"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("AudioStream err = %v, want session.ErrNotFound", err)
	}

	sess := f.join(t, "m1")

	stream, err := f.recordings.AudioStream(sess.ID)
	if err != nil {
		t.Fatalf("AudioStream: %v", err)
	}
	defer stream.Close()

	f.bus.Publish(sess.ID, &audio.Frame{Kind: audio.KindMixed, Data: []byte{9, 9}})
	f.bus.Publish("other-session", &audio.Frame{Kind: audio.KindMixed, Data: []byte{1}})

	select {
	case frame := <-stream.Frames():
		if len(frame.Data) != 2 {
			t.Errorf("frame has %d bytes, want 2", len(frame.Data))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a streamed frame")
	}
}

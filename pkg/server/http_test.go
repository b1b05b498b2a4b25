package server_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riaz37/meetgenie-sub001/pkg/audio"
	"github.com/riaz37/meetgenie-sub001/pkg/config"
	"github.com/riaz37/meetgenie-sub001/pkg/engine"
	"github.com/riaz37/meetgenie-sub001/pkg/events"
	"github.com/riaz37/meetgenie-sub001/pkg/platform"
	"github.com/riaz37/meetgenie-sub001/pkg/platform/platformtest"
	"github.com/riaz37/meetgenie-sub001/pkg/server"
)

type testServer struct {
	*server.Server
	fake   *platformtest.FakeAdapter
	bus    *audio.Bus
	engine *engine.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	fake := platformtest.NewFake(platform.Zoom)
	registry := platform.NewRegistry(time.Second)
	if err := registry.Register(fake); err != nil {
		t.Fatalf("Register: %v", err)
	}

	bus := audio.NewBus()
	eng := engine.New(registry, bus, events.NopSink{}, time.Second)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return &testServer{Server: server.New(eng, cfg), fake: fake, bus: bus, engine: eng}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	rr := httptest.NewRecorder()
	ts.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

func (ts *testServer) joinMeeting(t *testing.T) string {
	t.Helper()
	rr := ts.do(t, http.MethodPost, "/v1/sessions", `{"meeting_id":"m1","platform":"zoom"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("join status = %d, body %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	id, _ := body["session_id"].(string)
	if id == "" {
		t.Fatalf("join response has no session id: %v", body)
	}
	return id
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodGet, "/v1/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", body["status"])
	}
	if _, ok := body["platforms"].(map[string]any); !ok {
		t.Errorf("platforms field missing: %v", body)
	}
}

func TestJoinMeetingValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed json", body: `{"meeting_id":`, want: http.StatusBadRequest},
		{name: "unknown field", body: `{"meeting":"m1"}`, want: http.StatusBadRequest},
		{name: "missing meeting id", body: `{"platform":"zoom"}`, want: http.StatusBadRequest},
		{name: "unknown platform", body: `{"meeting_id":"m1","platform":"skype"}`, want: http.StatusBadRequest},
		{name: "valid", body: `{"meeting_id":"m1","platform":"zoom"}`, want: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(t, http.MethodPost, "/v1/sessions", tt.body)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestJoinMeetingUnregisteredPlatform(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/v1/sessions", `{"meeting_id":"m1","platform":"teams"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestJoinMeetingAdapterFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.fake.JoinErr = errors.New("meeting locked")

	rr := ts.do(t, http.MethodPost, "/v1/sessions", `{"meeting_id":"m1","platform":"zoom"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "meeting locked") {
		t.Errorf("error detail missing from body %s", rr.Body.String())
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	id := ts.joinMeeting(t)

	rr := ts.do(t, http.MethodGet, "/v1/sessions/"+id, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get session status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if _, ok := body["session"]; !ok {
		t.Errorf("get session response missing session: %v", body)
	}
	if _, ok := body["stats"]; !ok {
		t.Errorf("get session response missing stats: %v", body)
	}

	rr = ts.do(t, http.MethodGet, "/v1/sessions", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list sessions status = %d", rr.Code)
	}

	rr = ts.do(t, http.MethodDelete, "/v1/sessions/"+id, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("leave status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr = ts.do(t, http.MethodDelete, "/v1/sessions/"+id, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("second leave status = %d, want 404", rr.Code)
	}
}

func TestLeaveReportsRemoteFailureAsWarning(t *testing.T) {
	ts := newTestServer(t)
	id := ts.joinMeeting(t)
	ts.fake.LeaveErr = errors.New("connection reset")

	rr := ts.do(t, http.MethodDelete, "/v1/sessions/"+id, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["status"] != "left" {
		t.Errorf("status field = %v, want left", body["status"])
	}
	if warning, _ := body["warning"].(string); !strings.Contains(warning, "connection reset") {
		t.Errorf("warning = %v, want the remote error", body["warning"])
	}
}

func TestRecordingLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	id := ts.joinMeeting(t)

	// Empty body is allowed; the recording falls back to defaults.
	rr := ts.do(t, http.MethodPost, "/v1/sessions/"+id+"/recordings", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("start status = %d, body %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	recID, _ := body["recording_id"].(string)
	if recID == "" {
		t.Fatalf("start response has no recording id: %v", body)
	}
	if body["status"] != "active" {
		t.Errorf("recording status = %v, want active", body["status"])
	}

	rr = ts.do(t, http.MethodGet, "/v1/recordings/"+recID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get recording status = %d", rr.Code)
	}

	rr = ts.do(t, http.MethodDelete, "/v1/recordings/"+recID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("stop status = %d, body %s", rr.Code, rr.Body.String())
	}
	body = decodeBody(t, rr)
	if body["status"] != "stopped" {
		t.Errorf("stopped status = %v, want stopped", body["status"])
	}

	rr = ts.do(t, http.MethodDelete, "/v1/recordings/"+recID, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("second stop status = %d, want 404", rr.Code)
	}
}

func TestStartRecordingOnUnknownSession(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/v1/sessions/nope/recordings", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestStartRecordingAdapterFailure(t *testing.T) {
	ts := newTestServer(t)
	id := ts.joinMeeting(t)
	ts.fake.StartErr = errors.New("recording disabled by host")

	rr := ts.do(t, http.MethodPost, "/v1/sessions/"+id+"/recordings", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 (body %s)", rr.Code, rr.Body.String())
	}
}

func TestParticipantsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.fake.ParticipantsList = []platform.Participant{
		{ID: "u1", Name: "Alice", Host: true},
		{ID: "u2", Name: "Bob"},
	}
	id := ts.joinMeeting(t)

	rr := ts.do(t, http.MethodGet, "/v1/sessions/"+id+"/participants", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	participants, ok := body["participants"].([]any)
	if !ok || len(participants) != 2 {
		t.Errorf("participants = %v, want 2 entries", body["participants"])
	}

	rr = ts.do(t, http.MethodGet, "/v1/sessions/nope/participants", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown session status = %d, want 404", rr.Code)
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	ts := newTestServer(t)

	if rr := ts.do(t, http.MethodGet, "/v1/nope", ""); rr.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", rr.Code)
	}
	if rr := ts.do(t, http.MethodPut, "/v1/sessions", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("bad method status = %d, want 405", rr.Code)
	}
}

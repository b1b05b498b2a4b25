// Package adapters provides the production platform adapters. Each
// platform shares a REST-shaped transport and differs in its
// authentication model: Zoom signs an SDK JWT, Teams and Google Meet mint
// OAuth2 client-credentials tokens, Webex carries a static bearer token.
package adapters

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/riaz37/meetgenie-sub001/pkg/audio"
	"github.com/riaz37/meetgenie-sub001/pkg/log"
	"github.com/riaz37/meetgenie-sub001/pkg/platform"
)

var errNotAuthenticated = errors.New("adapter is not authenticated")

// sessionHandle is the adapter-side reference to a joined meeting.
type sessionHandle struct {
	ID string `json:"session_id"`
}

// recorderHandle is the adapter-side reference to a running recording.
type recorderHandle struct {
	ID string `json:"recording_id"`
}

// restAdapter implements the transport shared by every platform adapter.
// The embedding adapter supplies the bearer func during Authenticate.
type restAdapter struct {
	name    platform.Platform
	baseURL string
	client  *http.Client

	mu sync.RWMutex
	// bearer yields the current access token; nil until authenticated.
	bearer func(ctx context.Context) (string, error)
}

func newRESTAdapter(name platform.Platform, baseURL string) restAdapter {
	return restAdapter{
		name:    name,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (a *restAdapter) Platform() platform.Platform {
	return a.name
}

func (a *restAdapter) setBearer(fn func(ctx context.Context) (string, error)) {
	a.mu.Lock()
	a.bearer = fn
	a.mu.Unlock()
}

func (a *restAdapter) authorize(ctx context.Context, req *http.Request) error {
	a.mu.RLock()
	bearer := a.bearer
	a.mu.RUnlock()

	if bearer == nil {
		return errNotAuthenticated
	}
	token, err := bearer(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// do issues an authenticated JSON request and decodes the response into
// out when out is non-nil.
func (a *restAdapter) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := a.authorize(ctx, req); err != nil {
		return err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned status %d: %s", a.name, resp.StatusCode, bytes.TrimSpace(data))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (a *restAdapter) Join(ctx context.Context, info platform.MeetingJoinInfo) (platform.SessionHandle, error) {
	req := map[string]string{
		"meeting_id":   info.MeetingID,
		"passcode":     info.Passcode,
		"join_url":     info.JoinURL,
		"display_name": info.DisplayName,
	}
	var h sessionHandle
	if err := a.do(ctx, http.MethodPost, "/v1/sessions", req, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (a *restAdapter) Leave(ctx context.Context, h platform.SessionHandle) error {
	sh, err := asSessionHandle(h)
	if err != nil {
		return err
	}
	return a.do(ctx, http.MethodDelete, "/v1/sessions/"+sh.ID, nil, nil)
}

func (a *restAdapter) Participants(ctx context.Context, h platform.SessionHandle) ([]platform.Participant, error) {
	sh, err := asSessionHandle(h)
	if err != nil {
		return nil, err
	}
	var out []platform.Participant
	if err := a.do(ctx, http.MethodGet, "/v1/sessions/"+sh.ID+"/participants", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *restAdapter) StartRecording(ctx context.Context, h platform.SessionHandle, cfg platform.RecordingConfig) (platform.RecorderHandle, error) {
	sh, err := asSessionHandle(h)
	if err != nil {
		return nil, err
	}
	var rh recorderHandle
	if err := a.do(ctx, http.MethodPost, "/v1/sessions/"+sh.ID+"/recordings", cfg, &rh); err != nil {
		return nil, err
	}
	return &rh, nil
}

func (a *restAdapter) StopRecording(ctx context.Context, h platform.RecorderHandle) error {
	rh, ok := h.(*recorderHandle)
	if !ok {
		return fmt.Errorf("foreign recorder handle %T", h)
	}
	return a.do(ctx, http.MethodDelete, "/v1/recordings/"+rh.ID, nil, nil)
}

func (a *restAdapter) HealthProbe(ctx context.Context) error {
	a.mu.RLock()
	authenticated := a.bearer != nil
	a.mu.RUnlock()
	if !authenticated {
		return errNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v1/health", nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s health endpoint returned status %d", a.name, resp.StatusCode)
	}
	return nil
}

// AudioStream opens the platform's newline-delimited JSON frame stream and
// republishes it on a channel. The channel closes when the stream ends or
// ctx is cancelled.
func (a *restAdapter) AudioStream(ctx context.Context, h platform.SessionHandle) (<-chan *audio.Frame, error) {
	sh, err := asSessionHandle(h)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v1/sessions/"+sh.ID+"/audio", nil)
	if err != nil {
		return nil, err
	}
	if err := a.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s audio stream returned status %d", a.name, resp.StatusCode)
	}

	frames := make(chan *audio.Frame, 100)
	go func() {
		defer close(frames)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var frame audio.Frame
			if err := json.Unmarshal(line, &frame); err != nil {
				log.WithError(err).Warnf("Malformed audio frame from %s", a.name)
				continue
			}

			select {
			case frames <- &frame:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Warnf("Audio stream read error from %s", a.name)
		}
	}()

	return frames, nil
}

func (a *restAdapter) Shutdown(ctx context.Context) error {
	a.client.CloseIdleConnections()
	a.setBearer(nil)
	return nil
}

func asSessionHandle(h platform.SessionHandle) (*sessionHandle, error) {
	sh, ok := h.(*sessionHandle)
	if !ok {
		return nil, fmt.Errorf("foreign session handle %T", h)
	}
	return sh, nil
}

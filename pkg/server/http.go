// Package server exposes the orchestration engine over HTTP and streams
// session audio over WebSocket.
package server

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"

	"github.com/riaz37/meetgenie-sub001/pkg/config"
	"github.com/riaz37/meetgenie-sub001/pkg/engine"
	"github.com/riaz37/meetgenie-sub001/pkg/log"
	"github.com/riaz37/meetgenie-sub001/pkg/platform"
	"github.com/riaz37/meetgenie-sub001/pkg/recording"
	"github.com/riaz37/meetgenie-sub001/pkg/session"
)

// Server is the HTTP/WebSocket transport in front of the engine.
type Server struct {
	engine *engine.Engine
	cfg    *config.Config
	router http.Handler
}

// New builds the server and its routes.
func New(eng *engine.Engine, cfg *config.Config) *Server {
	s := &Server{engine: eng, cfg: cfg}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(s.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(s.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/v1/health", s.handleHealth)
	router.HandlerFunc(http.MethodGet, "/v1/platforms", s.handlePlatformStatuses)

	router.HandlerFunc(http.MethodPost, "/v1/sessions", s.handleJoinMeeting)
	router.HandlerFunc(http.MethodGet, "/v1/sessions", s.handleListSessions)
	router.Handle(http.MethodGet, "/v1/sessions/:sessionID", s.handleGetSession)
	router.Handle(http.MethodDelete, "/v1/sessions/:sessionID", s.handleLeaveMeeting)
	router.Handle(http.MethodGet, "/v1/sessions/:sessionID/participants", s.handleGetParticipants)
	router.Handle(http.MethodPost, "/v1/sessions/:sessionID/recordings", s.handleStartRecording)

	router.HandlerFunc(http.MethodGet, "/v1/recordings", s.handleListRecordings)
	router.Handle(http.MethodGet, "/v1/recordings/:recordingID", s.handleGetRecording)
	router.Handle(http.MethodDelete, "/v1/recordings/:recordingID", s.handleStopRecording)

	router.Handle(http.MethodGet, "/ws/audio/:sessionID", s.handleAudioStream)

	return alice.New(s.recoverPanic, s.logRequest).Then(router)
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		log.Debugf("Received request: %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

func (s *Server) recoverPanic(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				log.Errorf("Recovered from panic in handler: %v", err)
				s.errorResponse(w, http.StatusInternalServerError, "the server encountered an error and could not process the request")
			}
		}()
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.engine.HealthStatus(r.Context())
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handlePlatformStatuses(w http.ResponseWriter, r *http.Request) {
	statuses := s.engine.PlatformStatuses(r.Context())
	s.writeJSON(w, http.StatusOK, envelope{"platforms": statuses})
}

type joinMeetingRequest struct {
	MeetingID   string `json:"meeting_id"`
	Platform    string `json:"platform"`
	JoinURL     string `json:"join_url"`
	Passcode    string `json:"passcode"`
	DisplayName string `json:"display_name"`
}

func (s *Server) handleJoinMeeting(w http.ResponseWriter, r *http.Request) {
	var req joinMeetingRequest
	if err := s.readJSON(r, &req); err != nil {
		s.badRequestResponse(w, err.Error())
		return
	}
	if req.MeetingID == "" {
		s.badRequestResponse(w, "meeting_id is required")
		return
	}

	p, err := platform.Parse(req.Platform)
	if err != nil {
		s.badRequestResponse(w, err.Error())
		return
	}

	sess, err := s.engine.JoinMeeting(r.Context(), platform.MeetingJoinInfo{
		MeetingID:   req.MeetingID,
		Platform:    p,
		JoinURL:     req.JoinURL,
		Passcode:    req.Passcode,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		var joinErr *session.JoinError
		switch {
		case errors.Is(err, platform.ErrNotRegistered):
			s.errorResponse(w, http.StatusNotFound, err.Error())
		case errors.As(err, &joinErr):
			s.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.serverErrorResponse(w, err)
		}
		return
	}

	s.writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, envelope{"sessions": s.engine.ActiveSessions()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("sessionID")

	sess, exists := s.engine.GetSession(sessionID)
	if !exists {
		s.notFoundResponse(w, r)
		return
	}

	stats, _ := s.engine.SessionStats(sessionID)
	s.writeJSON(w, http.StatusOK, envelope{"session": sess, "stats": stats})
}

func (s *Server) handleLeaveMeeting(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := s.engine.LeaveMeeting(r.Context(), ps.ByName("sessionID"))

	var leaveErr *session.LeaveError
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, envelope{"status": "left"})
	case errors.As(err, &leaveErr):
		// The session is gone locally; the remote failure is informational.
		s.writeJSON(w, http.StatusOK, envelope{"status": "left", "warning": leaveErr.Error()})
	case errors.Is(err, session.ErrNotFound):
		s.notFoundResponse(w, r)
	default:
		s.serverErrorResponse(w, err)
	}
}

func (s *Server) handleGetParticipants(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	participants, err := s.engine.GetParticipants(r.Context(), ps.ByName("sessionID"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			s.notFoundResponse(w, r)
			return
		}
		s.serverErrorResponse(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"participants": participants})
}

func (s *Server) handleStartRecording(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var cfg platform.RecordingConfig
	if r.ContentLength != 0 {
		if err := s.readJSON(r, &cfg); err != nil {
			s.badRequestResponse(w, err.Error())
			return
		}
	}

	rec, err := s.engine.StartRecording(r.Context(), ps.ByName("sessionID"), cfg)
	if err != nil {
		var startErr *recording.StartError
		switch {
		case errors.Is(err, session.ErrNotFound):
			s.notFoundResponse(w, r)
		case errors.As(err, &startErr):
			s.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.serverErrorResponse(w, err)
		}
		return
	}

	s.writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListRecordings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, envelope{"recordings": s.engine.ActiveRecordings()})
}

func (s *Server) handleGetRecording(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rec, exists := s.engine.GetActiveRecording(ps.ByName("recordingID"))
	if !exists {
		s.notFoundResponse(w, r)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleStopRecording(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rec, err := s.engine.StopRecording(r.Context(), ps.ByName("recordingID"))

	var stopErr *recording.StopError
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, rec)
	case errors.As(err, &stopErr):
		// The recording left the active set; report the snapshot anyway.
		s.writeJSON(w, http.StatusOK, envelope{"recording": rec, "warning": stopErr.Error()})
	case errors.Is(err, recording.ErrNotFound):
		s.notFoundResponse(w, r)
	default:
		s.serverErrorResponse(w, err)
	}
}

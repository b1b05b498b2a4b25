package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/riaz37/meetgenie-sub001/pkg/audio"
	"github.com/riaz37/meetgenie-sub001/pkg/log"
)

// WebSocket message types sent as JSON control frames. Audio itself is
// sent as binary messages in the pkg/audio wire encoding.
const (
	messageTypeAudioFormat = "audio_format"
	messageTypeHeartbeat   = "heartbeat"
)

type audioFormatMessage struct {
	Type         string `json:"type"`
	SampleFormat string `json:"sample_format"`
	SessionID    string `json:"session_id"`
}

type heartbeatMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleAudioStream upgrades the connection and relays the session's live
// audio until the client disconnects or the session ends.
func (s *Server) handleAudioStream(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("sessionID")

	stream, err := s.engine.GetAudioStream(sessionID)
	if err != nil {
		s.notFoundResponse(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		stream.Close()
		log.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()
	defer stream.Close()

	log.Infof("WebSocket audio client connected: %s (session: %s)", conn.RemoteAddr(), sessionID)

	writeTimeout := s.cfg.WebSocket.WriteTimeout()

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(audioFormatMessage{
		Type:         messageTypeAudioFormat,
		SampleFormat: "s16le",
		SessionID:    sessionID,
	}); err != nil {
		log.WithError(err).Warn("Failed to send audio format preamble")
		return
	}

	// Drain client messages so pings/pongs and close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	heartbeat := time.NewTicker(s.cfg.WebSocket.PingInterval())
	defer heartbeat.Stop()

	for {
		select {
		case frame, ok := <-stream.Frames():
			if !ok {
				log.Infof("Audio stream ended for session: %s", sessionID)
				return
			}
			buf := audio.GetBuffer(frame.EncodedSize())
			frame.EncodeTo(buf)

			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteMessage(websocket.BinaryMessage, buf)
			audio.PutBuffer(buf)
			if err != nil {
				log.WithError(err).Debugf("WebSocket write failed for session: %s", sessionID)
				return
			}

		case <-heartbeat.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(heartbeatMessage{
				Type:      messageTypeHeartbeat,
				Timestamp: time.Now().UnixMilli(),
			}); err != nil {
				return
			}

		case <-done:
			log.Infof("WebSocket audio client disconnected: %s", conn.RemoteAddr())
			return
		}
	}
}

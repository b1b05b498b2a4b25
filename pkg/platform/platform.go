package platform

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies a supported conferencing vendor. The set is closed;
// adding a vendor means a new constant and a new Adapter implementation.
type Platform string

const (
	Zoom       Platform = "ZOOM"
	Teams      Platform = "TEAMS"
	GoogleMeet Platform = "GOOGLE_MEET"
	Webex      Platform = "WEBEX"
)

// All lists every supported platform in a stable order.
func All() []Platform {
	return []Platform{Zoom, Teams, GoogleMeet, Webex}
}

func (p Platform) String() string {
	return string(p)
}

// Parse maps a case-insensitive platform name to its enum value.
func Parse(s string) (Platform, error) {
	switch Platform(strings.ToUpper(strings.TrimSpace(s))) {
	case Zoom:
		return Zoom, nil
	case Teams:
		return Teams, nil
	case GoogleMeet:
		return GoogleMeet, nil
	case Webex:
		return Webex, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// MeetingJoinInfo describes the meeting a caller wants to attend.
type MeetingJoinInfo struct {
	MeetingID   string   `json:"meeting_id"`
	Platform    Platform `json:"platform"`
	JoinURL     string   `json:"join_url,omitempty"`
	Passcode    string   `json:"passcode,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
}

// Participant is a read-through projection of a meeting attendee, fetched
// from the adapter on demand and never cached by the orchestration core.
type Participant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
	Host     bool      `json:"host"`
	Muted    bool      `json:"muted"`
	JoinedAt time.Time `json:"joined_at"`
}

// RecordingConfig carries caller preferences for a recording. Zero values
// mean "recorder default".
type RecordingConfig struct {
	Format  string `json:"format,omitempty"`  // e.g. "audio", "audio_video"
	Quality string `json:"quality,omitempty"` // e.g. "standard", "high"
}

package engine

import (
	"context"
	"time"

	"github.com/riaz37/meetgenie-sub001/pkg/log"
	"github.com/riaz37/meetgenie-sub001/pkg/platform"
)

// Overall health values. A platform being unreachable does not make the
// process unhealthy; unhealthy means the aggregation itself broke.
const (
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
)

// HealthStatus is the consolidated health snapshot for the engine.
type HealthStatus struct {
	Status           string                                          `json:"status"`
	Platforms        map[platform.Platform]platform.ConnectionStatus `json:"platforms"`
	ActiveSessions   int                                             `json:"active_sessions"`
	ActiveRecordings int                                             `json:"active_recordings"`
	Timestamp        time.Time                                       `json:"timestamp"`
}

// HealthStatus fans out platform probes concurrently with registry counts
// and merges the results. It never returns an error: if aggregation itself
// fails the snapshot degrades to unhealthy with empty platform detail,
// because health endpoints must always answer.
func (e *Engine) HealthStatus(ctx context.Context) (hs HealthStatus) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Health aggregation panicked: %v", r)
			hs = HealthStatus{
				Status:    HealthUnhealthy,
				Platforms: map[platform.Platform]platform.ConnectionStatus{},
				Timestamp: time.Now(),
			}
		}
	}()

	statuses := e.registry.Statuses(ctx)

	return HealthStatus{
		Status:           HealthHealthy,
		Platforms:        statuses,
		ActiveSessions:   e.sessions.Count(),
		ActiveRecordings: e.recordings.Count(),
		Timestamp:        time.Now(),
	}
}

package monitoring

import (
	"time"

	"github.com/jogivikas/skill-exchange/internal/services"
	ws "github.com/jogivikas/skill-exchange/internal/websocket"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// MetricsRoom is the broadcast group admin dashboards join to receive live
// platform snapshots.
const MetricsRoom = "admin:metrics"

// MetricsUpdater periodically computes the platform metrics snapshot and
// broadcasts it to connected admin dashboards. Failures are logged only;
// the next tick tries again.
type MetricsUpdater struct {
	admin    services.AdminServiceProvider
	hub      *ws.Hub
	schedule cron.Schedule
	done     chan bool
}

// NewMetricsUpdater creates a new MetricsUpdater. The cadence is a standard
// cron expression (descriptors like "@every 1m" are accepted).
func NewMetricsUpdater(admin services.AdminServiceProvider, hub *ws.Hub, cronExpr string) (*MetricsUpdater, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &MetricsUpdater{
		admin:    admin,
		hub:      hub,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the updater's loop.
func (mu *MetricsUpdater) Run() {
	log.Info().Msg("Starting background metrics updater...")

	// Run once immediately on start
	mu.publishSnapshot()

	for {
		next := mu.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-mu.done:
			timer.Stop()
			log.Info().Msg("Stopping background metrics updater.")
			return
		case <-timer.C:
			mu.publishSnapshot()
		}
	}
}

// Stop halts the periodic updates.
func (mu *MetricsUpdater) Stop() {
	mu.done <- true
}

func (mu *MetricsUpdater) publishSnapshot() {
	if mu.hub.RoomSize(MetricsRoom) == 0 {
		// No dashboard listening, skip the host probes.
		return
	}

	metrics, err := mu.admin.GetMetrics()
	if err != nil {
		log.Error().Err(err).Msg("MetricsUpdater: Failed to compute platform metrics")
		return
	}

	mu.hub.BroadcastToRoom(MetricsRoom, ws.NewEventMessage("metrics", metrics), nil)
}

package cleanup

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Evictor closes tables that have been idle for too long.
type Evictor interface {
	EvictIdle(idle time.Duration) int
}

type Worker struct {
	Tables   Evictor
	Idle     time.Duration
	Interval time.Duration
}

func NewWorker(tables Evictor, idle, interval time.Duration) *Worker {
	return &Worker{Tables: tables, Idle: idle, Interval: interval}
}

// Start runs the cleanup on every tick until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	log.WithField("interval", w.Interval).Info("[CLEANUP] Background worker started")
	for {
		select {
		case <-ctx.Done():
			log.Info("[CLEANUP] Background worker stopped")
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce executes the actual cleanup logic
func (w *Worker) RunOnce() int {
	removed := w.Tables.EvictIdle(w.Idle)
	if removed > 0 {
		log.Infof("[CLEANUP] Closed %d idle tables", removed)
	}
	return removed
}

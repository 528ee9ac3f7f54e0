package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthWorker periodically logs the relay's own CPU and memory usage
// together with the live connection count.
type HealthWorker struct {
	log          *slog.Logger
	interval     time.Duration
	sessionCount func() int
}

func NewHealthWorker(log *slog.Logger, interval time.Duration, sessionCount func() int) *HealthWorker {
	return &HealthWorker{log: log, interval: interval, sessionCount: sessionCount}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			cpu, err := p.CPUPercent()
			if err != nil {
				w.log.Error("Error while finding process cpu usage", "err", err)
				continue
			}
			ram, err := p.MemoryPercent()
			if err != nil {
				w.log.Error("Error while finding process ram usage", "err", err)
				continue
			}
			w.log.Info("Relay health",
				"cpu_percent", cpu,
				"ram_percent", ram,
				"sessions", w.sessionCount())
		}
	}
}

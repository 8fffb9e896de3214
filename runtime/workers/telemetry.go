package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	_ "github.com/shirou/gopsutil"
	"github.com/shirou/gopsutil/process"

	"mentorchat/observability"
)

// TelemetryWorker periodically logs relay counters together with the
// process's own CPU and memory usage. Pure observability: losing a
// tick is fine.
type TelemetryWorker struct {
	log            *slog.Logger
	stats          *observability.RelayStats
	metricInterval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, stats *observability.RelayStats,
	metricInterval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, stats: stats, metricInterval: metricInterval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry")
			return nil
		case <-ticker.C:
			attrs := []any{}
			for key, value := range w.stats.Snapshot() {
				attrs = append(attrs, key, value)
			}
			if cpu, err := proc.CPUPercent(); err == nil {
				attrs = append(attrs, "cpu_percent", cpu)
			}
			if ram, err := proc.MemoryPercent(); err == nil {
				attrs = append(attrs, "ram_percent", ram)
			}
			w.log.Info("relay telemetry", attrs...)
		}
	}
}

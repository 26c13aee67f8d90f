// Package sysmon provides the cooperative memory-pressure gate that
// throttles page processing in a long-running batch.
package sysmon

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
)

// Probe reports system memory utilization as a percentage (0-100).
type Probe func() (float64, error)

// Monitor blocks page processing while memory utilization sits at or above
// a threshold, polling until it drops.
type Monitor struct {
	threshold float64
	interval  time.Duration
	probe     Probe
	logger    zerolog.Logger
}

// NewMonitor creates a monitor backed by gopsutil's virtual memory stats.
func NewMonitor(threshold float64, interval time.Duration, logger zerolog.Logger) *Monitor {
	return &Monitor{
		threshold: threshold,
		interval:  interval,
		probe:     virtualMemoryPercent,
		logger:    logger.With().Str("component", "sysmon").Logger(),
	}
}

// Wait returns once memory utilization is below the threshold. A probe
// failure lets processing continue rather than stalling the batch.
func (m *Monitor) Wait(ctx context.Context) error {
	for {
		pct, err := m.probe()
		if err != nil {
			m.logger.Warn().Err(err).Msg("memory probe failed, continuing without throttle")
			return nil
		}
		if pct < m.threshold {
			return nil
		}

		m.logger.Warn().
			Float64("used_percent", pct).
			Float64("threshold", m.threshold).
			Dur("wait", m.interval).
			Msg("memory pressure high, pausing page processing")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.interval):
		}
	}
}

func virtualMemoryPercent() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

package logger

import (
	"sync"
	"time"
)

// ProgressTracker logs periodic progress for multi-file batch runs.
type ProgressTracker struct {
	logger      Logger
	operation   string
	total       int
	current     int
	startTime   time.Time
	lastLogTime time.Time
	logInterval time.Duration
	mu          sync.Mutex
}

// NewProgressTracker starts tracking an operation over total items.
func NewProgressTracker(operation string, total int) *ProgressTracker {
	tracker := &ProgressTracker{
		logger:      GetGlobalLogger().WithComponent("progress"),
		operation:   operation,
		total:       total,
		startTime:   time.Now(),
		lastLogTime: time.Now(),
		logInterval: 5 * time.Second,
	}

	tracker.logger.WithFields(Fields{
		"operation": operation,
		"total":     total,
	}).Info("Starting operation")

	return tracker
}

// Increment advances the counter by one and logs if the interval elapsed.
func (p *ProgressTracker) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current++
	if time.Since(p.lastLogTime) < p.logInterval && p.current < p.total {
		return
	}
	p.lastLogTime = time.Now()

	p.logger.WithFields(Fields{
		"operation": p.operation,
		"current":   p.current,
		"total":     p.total,
		"elapsed":   time.Since(p.startTime).Round(time.Millisecond).String(),
	}).Info("Progress")
}

// Done logs the final state of the operation.
func (p *ProgressTracker) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger.WithFields(Fields{
		"operation": p.operation,
		"processed": p.current,
		"total":     p.total,
		"elapsed":   time.Since(p.startTime).Round(time.Millisecond).String(),
	}).Info("Operation complete")
}

package memory

import (
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"media-convert/internal/logging"
	"media-convert/internal/metrics"
)

// Config holds memory monitor configuration.
type Config struct {
	// MemoryLimitBytes is the soft memory limit (0 = use GOMEMLIMIT).
	MemoryLimitBytes int64

	// HighWaterMark is the fraction of the limit below which a paused
	// monitor resumes (0.0-1.0).
	HighWaterMark float64

	// CriticalWaterMark is the fraction at which new conversions pause
	// entirely (0.0-1.0).
	CriticalWaterMark float64

	// CheckInterval is how often to sample memory usage.
	CheckInterval time.Duration
}

// DefaultConfig returns sensible defaults for the memory monitor.
func DefaultConfig() Config {
	return Config{
		MemoryLimitBytes:  0,
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     5 * time.Second,
	}
}

// Monitor samples heap usage and pauses conversion intake when it nears the
// configured limit. Decoded frames are large, so admitting more jobs while
// the heap is critical turns one slow request into an OOM kill.
type Monitor struct {
	config    Config
	limit     int64
	stopChan  chan struct{}
	mu        sync.RWMutex
	current   uint64
	isPaused  bool
	pauseChan chan struct{}
}

// NewMonitor creates a memory monitor. With no explicit limit it falls back
// to GOMEMLIMIT; with neither, backpressure is disabled.
func NewMonitor(config Config) *Monitor {
	limit := config.MemoryLimitBytes

	if limit == 0 {
		if goMemLimit := debug.SetMemoryLimit(-1); goMemLimit > 0 && goMemLimit < 1<<62 {
			limit = goMemLimit
			logging.Info("Memory monitor using GOMEMLIMIT: %s", formatBytes(limit))
		}
	}

	if limit == 0 {
		logging.Warn("Memory monitor: no memory limit configured, backpressure disabled")
	}

	return &Monitor{
		config:    config,
		limit:     limit,
		stopChan:  make(chan struct{}),
		pauseChan: make(chan struct{}),
	}
}

// Start begins monitoring memory usage.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}
	go m.monitorLoop()
}

// Stop stops the memory monitor.
func (m *Monitor) Stop() {
	close(m.stopChan)
}

func (m *Monitor) monitorLoop() {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.checkMemory()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Monitor) checkMemory() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = stats.Alloc
	if m.limit == 0 {
		return
	}

	usage := float64(stats.Alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	if usage >= m.config.CriticalWaterMark {
		if !m.isPaused {
			logging.Warn("Memory critical (%.1f%% of limit), pausing conversion intake", usage*100)
			m.isPaused = true
			metrics.MemoryPaused.Set(1)
			metrics.MemoryGCPauses.Inc()
			go runtime.GC()
		}
	} else if usage < m.config.HighWaterMark {
		if m.isPaused {
			logging.Info("Memory recovered (%.1f%% of limit), resuming conversion intake", usage*100)
			m.isPaused = false
			metrics.MemoryPaused.Set(0)
			close(m.pauseChan)
			m.pauseChan = make(chan struct{})
		}
	}
}

// WaitIfPaused blocks while memory usage is critical. It returns false if
// the monitor is stopped before usage recovers.
func (m *Monitor) WaitIfPaused() bool {
	m.mu.RLock()
	if !m.isPaused {
		m.mu.RUnlock()
		return true
	}
	pauseChan := m.pauseChan
	m.mu.RUnlock()

	select {
	case <-pauseChan:
		return true
	case <-m.stopChan:
		return false
	}
}

// IsPaused reports whether conversion intake is paused.
func (m *Monitor) IsPaused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isPaused
}

// Usage returns current heap usage as a fraction of the limit (0 when no
// limit is configured).
func (m *Monitor) Usage() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.limit == 0 {
		return 0
	}
	return float64(m.current) / float64(m.limit)
}

// Stats returns the current heap allocation, the limit, and their ratio.
func (m *Monitor) Stats() (current, limit int64, usage float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	currentInt64 := int64(math.MaxInt64)
	if m.current <= math.MaxInt64 {
		currentInt64 = int64(m.current)
	}

	var usageRatio float64
	if m.limit > 0 {
		usageRatio = float64(m.current) / float64(m.limit)
	}
	return currentInt64, m.limit, usageRatio
}

package systems

import (
	"github.com/spaghettifunk/dream/engine/core"
)

type TimeSystemConfig struct {
	// FixedStep, when positive, replaces the measured frame time.
	FixedStep float64
	// MaxDelta caps the frame time after a stall. Zero disables the cap.
	MaxDelta float64
}

// TimeSystem owns the frame clock and frame metrics.
type TimeSystem struct {
	config  TimeSystemConfig
	clock   *core.Clock
	metrics *core.FrameMetrics
	delta   float64
	elapsed float64
	frames  uint64
}

func NewTimeSystem(config TimeSystemConfig) *TimeSystem {
	ts := &TimeSystem{
		config:  config,
		clock:   core.NewClock(),
		metrics: core.NewFrameMetrics(),
	}
	ts.clock.Start()
	return ts
}

func (ts *TimeSystem) Name() string { return "time" }

// Tick advances the clock by one frame and returns the frame delta in seconds.
func (ts *TimeSystem) Tick() float32 {
	ts.clock.Update()
	delta := ts.clock.Delta()
	if ts.config.FixedStep > 0 {
		delta = ts.config.FixedStep
	}
	if ts.config.MaxDelta > 0 && delta > ts.config.MaxDelta {
		delta = ts.config.MaxDelta
	}
	ts.delta = delta
	ts.elapsed += delta
	ts.frames++
	ts.metrics.Update(delta)
	return float32(delta)
}

// Delta is the seconds the last frame took.
func (ts *TimeSystem) Delta() float32 { return float32(ts.delta) }

// Elapsed is the simulated time since the system started.
func (ts *TimeSystem) Elapsed() float64 { return ts.elapsed }

func (ts *TimeSystem) Frames() uint64     { return ts.frames }
func (ts *TimeSystem) FPS() float64       { return ts.metrics.FPS() }
func (ts *TimeSystem) FrameTime() float64 { return ts.metrics.FrameTime() }

func (ts *TimeSystem) Shutdown() error {
	ts.clock.Stop()
	return nil
}

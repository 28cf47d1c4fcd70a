package gpuparticles

import "time"

// FrameClock tracks wall time between frames and hands the engine a
// sanitized delta. Ported from gekko's TimeModule: dt is clamped so a
// startup hitch or debugger pause does not explode the simulation.
type FrameClock struct {
	last       time.Time
	Dt         float64
	FrameCount uint64
}

func NewFrameClock() *FrameClock {
	return &FrameClock{last: time.Now()}
}

// Tick advances the clock using wall time and returns the sanitized dt.
func (c *FrameClock) Tick() float64 {
	now := time.Now()
	dt := now.Sub(c.last).Seconds()
	if dt > 0.1 {
		dt = 0.1
	}
	if dt < 0 {
		dt = 0
	}
	c.last = now
	c.Dt = dt
	c.FrameCount++
	return dt
}

// Package motion plans human-looking pointer and keyboard timing.
package motion

import (
	"context"
	"math/rand/v2"
	"time"

	"trade_pilot/internal/domain/value"
)

type Config struct {
	// JitterPx is the maximum pointer offset from a target, per axis.
	JitterPx     int
	KeystrokeMin time.Duration
	KeystrokeMax time.Duration
	ClickDelay   time.Duration
}

func DefaultConfig() Config {
	return Config{
		JitterPx:     3,
		KeystrokeMin: 40 * time.Millisecond,
		KeystrokeMax: 140 * time.Millisecond,
		ClickDelay:   80 * time.Millisecond,
	}
}

type Planner struct {
	cfg Config
	rnd *rand.Rand
}

func NewPlanner(cfg Config, seed uint64) *Planner {
	if cfg.KeystrokeMax < cfg.KeystrokeMin {
		cfg.KeystrokeMax = cfg.KeystrokeMin
	}
	return &Planner{
		cfg: cfg,
		rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Jitter offsets p by at most JitterPx in each direction.
func (p *Planner) Jitter(target value.Point) value.Point {
	if p.cfg.JitterPx <= 0 {
		return target
	}
	span := 2*p.cfg.JitterPx + 1
	return value.Point{
		X: target.X + p.rnd.IntN(span) - p.cfg.JitterPx,
		Y: target.Y + p.rnd.IntN(span) - p.cfg.JitterPx,
	}
}

// Keystroke is the delay after one typed character.
func (p *Planner) Keystroke() time.Duration {
	spread := p.cfg.KeystrokeMax - p.cfg.KeystrokeMin
	if spread <= 0 {
		return p.cfg.KeystrokeMin
	}
	return p.cfg.KeystrokeMin + time.Duration(p.rnd.Int64N(int64(spread)+1))
}

// ClickDelay is the settle time between moving and clicking.
func (p *Planner) ClickDelay() time.Duration {
	if p.cfg.ClickDelay <= 0 {
		return 0
	}
	half := p.cfg.ClickDelay / 2
	return half + time.Duration(p.rnd.Int64N(int64(p.cfg.ClickDelay)+1))
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package screen

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/go-vgo/robotgo"

	"trade_pilot/internal/domain/value"
	"trade_pilot/internal/infrastructure/screen/motion"
	"trade_pilot/pkg/logx"
)

// Actuator drives the real pointer and keyboard with robotgo.
type Actuator struct {
	planner *motion.Planner
	smooth  bool
}

func NewActuator(cfg motion.Config) *Actuator {
	return &Actuator{
		planner: motion.NewPlanner(cfg, rand.Uint64()),
		smooth:  true,
	}
}

func (a *Actuator) WithSmoothMoves(smooth bool) *Actuator {
	a.smooth = smooth
	return a
}

func (a *Actuator) Click(ctx context.Context, p value.Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := a.planner.Jitter(p)
	if a.smooth {
		robotgo.MoveMouseSmooth(target.X, target.Y, 0.6, 0.2)
	} else {
		robotgo.MoveMouse(target.X, target.Y)
	}

	if err := motion.Sleep(ctx, a.planner.ClickDelay()); err != nil {
		return err
	}
	robotgo.MouseClick("left", false)

	logger(ctx).Debug("click", slog.String(logx.FieldTarget, target.String()))
	return nil
}

func (a *Actuator) Clear(ctx context.Context, p value.Point) error {
	if err := a.Click(ctx, p); err != nil {
		return err
	}
	if err := robotgo.KeyTap("a", "ctrl"); err != nil {
		return fmt.Errorf("select all: %w", err)
	}
	if err := robotgo.KeyTap("backspace"); err != nil {
		return fmt.Errorf("erase: %w", err)
	}
	return motion.Sleep(ctx, a.planner.Keystroke())
}

func (a *Actuator) Type(ctx context.Context, text string) error {
	for _, r := range text {
		if err := ctx.Err(); err != nil {
			return err
		}
		robotgo.TypeStr(string(r))
		if err := motion.Sleep(ctx, a.planner.Keystroke()); err != nil {
			return err
		}
	}
	return nil
}

func (a *Actuator) Press(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := robotgo.KeyTap(key); err != nil {
		return fmt.Errorf("press %s: %w", key, err)
	}
	return motion.Sleep(ctx, 50*time.Millisecond)
}

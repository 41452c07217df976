package job

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrStop may be returned by a loop step to end RunLoop without an error.
var ErrStop = errors.New("job: stop loop")

// LoopConfig controls RunLoop.
type LoopConfig struct {
	// Hz is the tick rate, 60 when zero.
	Hz int
	// Ticks stops the loop after this many ticks, 0 runs until stopped.
	Ticks uint64
}

// RunLoop drives an owning loop for pools used outside a game or UI
// framework. Every tick it calls p.Update and then step, if not nil.
// It returns nil when step returns ErrStop or the tick budget runs out,
// and ctx.Err() when ctx ends.
func RunLoop(ctx context.Context, p *Pool, cfg LoopConfig, step func() error) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid loop hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			p.Update()
			if step != nil {
				if err := step(); err != nil {
					if errors.Is(err, ErrStop) {
						return nil
					}
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}

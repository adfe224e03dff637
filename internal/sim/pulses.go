package sim

import (
	"context"
	"time"
)

// pulseTick is how often PulseTrain delivers its accumulated edges.
var pulseTick = 5 * time.Millisecond

// PulseTrain emulates the shaft sensor interrupt at a fixed edge rate.
type PulseTrain struct {
	Hz float64
}

// Run calls onEdge Hz times per second until ctx is done. Edges are
// delivered in bursts every pulseTick; the count per second is exact.
func (p PulseTrain) Run(ctx context.Context, onEdge func()) {
	if onEdge == nil || p.Hz <= 0 {
		<-ctx.Done()
		return
	}
	t := time.NewTicker(pulseTick)
	defer t.Stop()

	last := time.Now()
	var acc float64
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			acc += p.Hz * now.Sub(last).Seconds()
			last = now
			for acc >= 1 {
				onEdge()
				acc--
			}
		}
	}
}

package record

import "sync/atomic"

// ReadyFlag is a single-slot, coalescing "new data" notification.
//
// The producer only ever raises it; the consumer clears it with Take.
// Raising an already raised flag is a no-op, so a slow consumer sees only
// the latest record state.
type ReadyFlag struct {
	v atomic.Bool
}

func (f *ReadyFlag) Raise() { f.v.Store(true) }

// Ready reports the flag without clearing it.
func (f *ReadyFlag) Ready() bool { return f.v.Load() }

// Take clears the flag and reports whether it was raised.
func (f *ReadyFlag) Take() bool { return f.v.CompareAndSwap(true, false) }

// Publisher hands "render now" notifications to the external consumer.
//
// Other outputs (bus, radio link, storage) attach outside this package by
// observing the same flag.
type Publisher struct {
	flag *ReadyFlag
}

func NewPublisher(flag *ReadyFlag) *Publisher {
	return &Publisher{flag: flag}
}

func (p *Publisher) Publish() {
	if p == nil || p.flag == nil {
		return
	}
	p.flag.Raise()
}

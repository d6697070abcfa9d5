package sampler

import (
	"sync/atomic"
	"time"
)

// Block is a filled buffer handed from the completion handler to the
// consumer. Buf must be given back with Release.
type Block struct {
	Seq uint32
	Buf []uint16
	TS  time.Time
}

// Handoff owns a fixed pool of sample buffers and moves them between the
// completion handler and a consumer goroutine without blocking the
// handler.
type Handoff struct {
	// Written by the handler; MUST NOT block it:
	outQ chan Block
	free chan []uint16

	first  []uint16
	closed atomic.Bool

	seq      atomic.Uint32
	overruns atomic.Uint32
}

// NewHandoff allocates buffers of count samples each (at least two).
func NewHandoff(count uint16, buffers int) *Handoff {
	if buffers < 2 {
		buffers = 2
	}
	h := &Handoff{
		outQ: make(chan Block, buffers),
		free: make(chan []uint16, buffers),
	}
	for i := 0; i < buffers; i++ {
		buf := make([]uint16, count)
		if i == 0 {
			h.first = buf
			continue
		}
		h.free <- buf
	}
	return h
}

// First is the buffer to start sampling into.
func (h *Handoff) First() []uint16 { return h.first }

// Blocks delivers filled buffers in completion order.
func (h *Handoff) Blocks() <-chan Block { return h.outQ }

// Release returns a consumed buffer to the pool.
func (h *Handoff) Release(buf []uint16) {
	select {
	case h.free <- buf:
	default:
	}
}

// Overruns counts blocks dropped because the consumer held every buffer.
func (h *Handoff) Overruns() uint32 { return h.overruns.Load() }

// Close makes the next completion return nil, which halts sampling.
func (h *Handoff) Close() { h.closed.Store(true) }

// Callback is the session callback. With a free buffer it publishes buf
// and continues into the free one; otherwise buf is refilled and its
// samples are lost.
func (h *Handoff) Callback(buf []uint16, count uint16, _ any) []uint16 {
	if h.closed.Load() {
		return nil
	}
	select {
	case next := <-h.free:
		select {
		case h.outQ <- Block{Seq: h.seq.Add(1), Buf: buf[:count], TS: time.Now()}:
			return next
		default:
			h.Release(next)
		}
	default:
	}
	h.overruns.Add(1)
	return buf
}

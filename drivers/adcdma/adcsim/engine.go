// Package adcsim simulates the DMA engine and converter peripherals on the
// host so sampling sessions can run without silicon.
package adcsim

import (
	"sync"

	"adcstream-go/drivers/dmadrv"
)

// Transfer is a snapshot of an armed transfer.
type Transfer struct {
	Channel  dmadrv.Channel
	Signal   dmadrv.Signal
	Dst      []uint16
	Src      uintptr
	PingPong bool
	Count    uint16
	Done     dmadrv.Handler
}

// Engine implements dmadrv.Engine. Transfers complete only when Complete
// (or a Board tick) says so.
type Engine struct {
	mu     sync.Mutex
	n      int
	used   uint32
	active uint32
	xfer   [32]Transfer
	seq    [32]uint32

	// FailArm, when set, is returned by every PeripheralMemory call.
	FailArm error
	// Source produces sample i for a transfer reading from src.
	Source func(src uintptr, i int) uint16

	arms  int
	stops int
}

// NewEngine returns an engine with n channels (1..32).
func NewEngine(n int) *Engine {
	if n < 1 || n > 32 {
		panic("adcsim: channel count must be 1..32")
	}
	return &Engine{n: n}
}

func (e *Engine) AllocateChannel() (dmadrv.Channel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := 0; i < e.n; i++ {
		if e.used&(1<<i) == 0 {
			e.used |= 1 << i
			return dmadrv.Channel(i), nil
		}
	}
	return 0, dmadrv.ErrNoChannel
}

func (e *Engine) FreeChannel(ch dmadrv.Channel) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.allocated(ch) {
		return dmadrv.ErrNotAllocated
	}
	e.used &^= 1 << ch
	e.active &^= 1 << ch
	e.xfer[ch] = Transfer{}
	return nil
}

func (e *Engine) PeripheralMemory(ch dmadrv.Channel, sig dmadrv.Signal, dst []uint16, src uintptr,
	pingPong bool, count uint16, size dmadrv.DataSize, done dmadrv.Handler) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.allocated(ch) {
		return dmadrv.ErrNotAllocated
	}
	if err := dmadrv.CheckTransfer(dst, count, size, done); err != nil {
		return err
	}
	if e.FailArm != nil {
		return e.FailArm
	}
	if e.active&(1<<ch) != 0 {
		return dmadrv.ErrBusy
	}
	e.xfer[ch] = Transfer{Channel: ch, Signal: sig, Dst: dst, Src: src, PingPong: pingPong, Count: count, Done: done}
	e.active |= 1 << ch
	e.arms++
	return nil
}

func (e *Engine) StopTransfer(ch dmadrv.Channel) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.allocated(ch) {
		return dmadrv.ErrNotAllocated
	}
	e.active &^= 1 << ch
	e.stops++
	return nil
}

func (e *Engine) allocated(ch dmadrv.Channel) bool {
	return int(ch) < e.n && e.used&(1<<ch) != 0
}

// Allocated reports how many channels are taken.
func (e *Engine) Allocated() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for u := e.used; u != 0; u &= u - 1 {
		n++
	}
	return n
}

// Inflight returns the transfer armed on ch, if any.
func (e *Engine) Inflight(ch dmadrv.Channel) (Transfer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active&(1<<ch) == 0 {
		return Transfer{}, false
	}
	return e.xfer[ch], true
}

// Arms and Stops count PeripheralMemory and StopTransfer calls.
func (e *Engine) Arms() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.arms
}

func (e *Engine) Stops() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stops
}

// Complete fills the transfer armed on ch and runs its handler, as the
// completion interrupt would. It reports false if nothing was armed.
func (e *Engine) Complete(ch dmadrv.Channel) bool {
	e.mu.Lock()
	if e.active&(1<<ch) == 0 {
		e.mu.Unlock()
		return false
	}
	t := e.xfer[ch]
	e.active &^= 1 << ch
	e.seq[ch]++
	seq := e.seq[ch]
	src := e.Source
	e.mu.Unlock()

	if src != nil {
		for i := 0; i < int(t.Count); i++ {
			t.Dst[i] = src(t.Src, i)
		}
	}
	// Handler runs unlocked: it re-arms through PeripheralMemory.
	t.Done(ch, seq, t.Dst)
	return true
}

// Deliver runs the handler of a previously captured transfer without
// touching engine state, like a completion that raced a stop.
func (e *Engine) Deliver(t Transfer) {
	t.Done(t.Channel, 0, t.Dst)
}

package adcsim

import (
	"context"
	"time"

	"adcstream-go/drivers/adcdma/hw"
	"adcstream-go/drivers/dmadrv"
)

// Defaults model the EFR32 parts the sampling driver was first written for.
const (
	DefaultTimerClockHz = 19_000_000
	DefaultIADCRefHz    = 1_000_000
	DefaultMaxCycles    = 65535
	DefaultDMAChannels  = 16
	DefaultRoutes       = 12
)

// Board is a coherent set of simulated peripherals sharing one engine.
type Board struct {
	DMA    *Engine
	Timer  *Timer
	Router *Router
	Scan   *ScanADC
	IADC   *IADC
	Pads   map[string]*Register32
}

func NewBoard() *Board {
	b := &Board{
		DMA:    NewEngine(DefaultDMAChannels),
		Timer:  NewTimer(DefaultTimerClockHz),
		Router: NewRouter(DefaultRoutes),
		Scan:   NewScanADC(),
		IADC:   NewIADC(DefaultIADCRefHz, DefaultMaxCycles),
		Pads: map[string]*Register32{
			"gpio26": {}, "gpio27": {}, "gpio28": {}, "gpio29": {},
		},
	}
	b.DMA.Source = b.sample
	return b
}

func (b *Board) sample(src uintptr, _ int) uint16 {
	switch src {
	case ScanDataAddr:
		return b.Scan.sample()
	case SingleDataAddr:
		return b.IADC.sample()
	}
	return 0
}

// triggering reports whether the peripheral behind src is being clocked.
func (b *Board) triggering(src uintptr) bool {
	switch src {
	case ScanDataAddr:
		_, _, on := b.Timer.Snapshot()
		route, trig := b.Scan.Trigger()
		if !on || !trig {
			return false
		}
		s, ok := b.Router.Source(route)
		return ok && s == hw.SourceTimerOverflow
	case SingleDataAddr:
		return b.IADC.TimerOn()
	}
	return false
}

// Tick completes every armed transfer whose trigger chain is running and
// returns how many completed.
func (b *Board) Tick() int {
	n := 0
	for ch := 0; ch < b.DMA.n; ch++ {
		t, ok := b.DMA.Inflight(dmadrv.Channel(ch))
		if !ok || !b.triggering(t.Src) {
			continue
		}
		if b.DMA.Complete(dmadrv.Channel(ch)) {
			n++
		}
	}
	return n
}

// Pump ticks the board every period until ctx is done.
func (b *Board) Pump(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			b.Tick()
		}
	}
}

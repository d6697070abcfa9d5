// Package hw declares the peripheral contracts the sampling trigger chains
// drive. Bindings exist for real silicon (internal/platform) and for the
// host simulator (drivers/adcdma/adcsim).
package hw

import "adcstream-go/drivers/dmadrv"

// Register32 is a memory-mapped 32-bit register. *volatile.Register32
// satisfies it.
type Register32 interface {
	Get() uint32
	Set(uint32)
}

// Reference selects the converter voltage reference.
type Reference uint8

const (
	RefVDD Reference = iota
	RefInternal
)

// Gain selects the analog front-end gain.
type Gain uint8

const Gain1x Gain = 0

// ---- external timer ----

type TimerConfig struct {
	Prescale uint16 // power of two, 1..1024
	Enable   bool
}

// Timer is a free-running 16-bit up-counter whose overflow can be routed
// to a converter trigger.
type Timer interface {
	ClockHz() uint32
	Init(cfg TimerConfig)
	SetTop(top uint32)
	Enable(on bool)
}

// ---- signal routing fabric ----

type Source uint8

const (
	SourceNone Source = iota
	SourceTimerOverflow
)

// Router connects peripheral events to consumer triggers over a small set
// of channels.
type Router interface {
	Alloc() (ch int, ok bool)
	Connect(ch int, src Source)
	Release(ch int)
}

// ---- scan converter ----

// ScanEntry is one slot of a scan round.
type ScanEntry struct {
	Group uint8
	Sel   uint8
}

type ScanConfig struct {
	Entries       []ScanEntry
	FIFOOverwrite bool
	Reference     Reference
	ClockHz       uint32 // requested conversion clock
}

// ScanADC converts its configured entries once per trigger.
type ScanADC interface {
	Reset()
	Init(cfg ScanConfig)
	// SelectTrigger starts a scan on each event of router channel route.
	SelectTrigger(route int, enable bool)
	ClearFIFO()
	DMA() (dmadrv.Signal, uintptr)
}

// ---- converter with internal timer ----

type Cmd uint8

const (
	CmdEnableTimer Cmd = iota + 1
	CmdDisableTimer
)

type IADCConfig struct {
	Pos            uint32
	TimerCycles    uint32
	Reference      Reference
	Gain           Gain
	TriggerTimer   bool
	DataValidLevel uint8
	Start          bool
}

// IADC converts a single input each time its internal timer expires.
type IADC interface {
	RefClockHz() uint32
	MaxTimerCycles() uint32
	Reset()
	Init(cfg IADCConfig)
	UpdateInput(pos uint32)
	Command(c Cmd)
	DMA() (dmadrv.Signal, uintptr)
}

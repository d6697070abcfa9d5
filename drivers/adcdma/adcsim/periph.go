package adcsim

import (
	"sync"

	"adcstream-go/drivers/adcdma/hw"
	"adcstream-go/drivers/dmadrv"
)

// Register32 is an in-memory register.
type Register32 struct {
	mu sync.Mutex
	v  uint32
	n  int
}

func (r *Register32) Get() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.v
}

func (r *Register32) Set(v uint32) {
	r.mu.Lock()
	r.v = v
	r.n++
	r.mu.Unlock()
}

// Writes counts Set calls.
func (r *Register32) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// ----------------------------- timer -----------------------------------------

type Timer struct {
	mu      sync.Mutex
	clockHz uint32
	cfg     hw.TimerConfig
	top     uint32
	enabled bool
}

func NewTimer(clockHz uint32) *Timer { return &Timer{clockHz: clockHz} }

func (t *Timer) ClockHz() uint32 { return t.clockHz }

func (t *Timer) Init(cfg hw.TimerConfig) {
	t.mu.Lock()
	t.cfg = cfg
	t.enabled = cfg.Enable
	t.mu.Unlock()
}

func (t *Timer) SetTop(top uint32) {
	t.mu.Lock()
	t.top = top
	t.mu.Unlock()
}

func (t *Timer) Enable(on bool) {
	t.mu.Lock()
	t.enabled = on
	t.mu.Unlock()
}

// Snapshot returns the programmed prescaler, top and run state.
func (t *Timer) Snapshot() (prescale uint16, top uint32, enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg.Prescale, t.top, t.enabled
}

// ----------------------------- router ----------------------------------------

type Router struct {
	mu   sync.Mutex
	n    int
	used uint32
	src  [32]hw.Source
}

func NewRouter(n int) *Router {
	if n < 0 || n > 32 {
		panic("adcsim: route count must be 0..32")
	}
	return &Router{n: n}
}

func (r *Router) Alloc() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i < r.n; i++ {
		if r.used&(1<<i) == 0 {
			r.used |= 1 << i
			return i, true
		}
	}
	return -1, false
}

func (r *Router) Connect(ch int, src hw.Source) {
	r.mu.Lock()
	if ch >= 0 && ch < r.n {
		r.src[ch] = src
	}
	r.mu.Unlock()
}

func (r *Router) Release(ch int) {
	r.mu.Lock()
	if ch >= 0 && ch < r.n {
		r.used &^= 1 << ch
		r.src[ch] = hw.SourceNone
	}
	r.mu.Unlock()
}

// Source returns what feeds ch and whether ch is allocated.
func (r *Router) Source(ch int) (hw.Source, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch < 0 || ch >= r.n {
		return hw.SourceNone, false
	}
	return r.src[ch], r.used&(1<<ch) != 0
}

// Take marks every free route as used, for exhaustion tests.
func (r *Router) Take() {
	r.mu.Lock()
	r.used = 1<<r.n - 1
	r.mu.Unlock()
}

// ----------------------------- scan ADC --------------------------------------

const (
	SignalScan   dmadrv.Signal = 1
	SignalSingle dmadrv.Signal = 2

	ScanDataAddr   uintptr = 0x4000_2000
	SingleDataAddr uintptr = 0x4000_3000
)

type ScanADC struct {
	mu      sync.Mutex
	cfg     hw.ScanConfig
	route   int
	trig    bool
	resets  int
	clears  int
	samples uint32
}

func NewScanADC() *ScanADC { return &ScanADC{route: -1} }

func (a *ScanADC) Reset() {
	a.mu.Lock()
	a.cfg = hw.ScanConfig{}
	a.route, a.trig = -1, false
	a.resets++
	a.mu.Unlock()
}

func (a *ScanADC) Init(cfg hw.ScanConfig) {
	a.mu.Lock()
	cfg.Entries = append([]hw.ScanEntry(nil), cfg.Entries...)
	a.cfg = cfg
	a.mu.Unlock()
}

func (a *ScanADC) SelectTrigger(route int, enable bool) {
	a.mu.Lock()
	a.route, a.trig = route, enable
	a.mu.Unlock()
}

func (a *ScanADC) ClearFIFO() {
	a.mu.Lock()
	a.clears++
	a.mu.Unlock()
}

func (a *ScanADC) DMA() (dmadrv.Signal, uintptr) { return SignalScan, ScanDataAddr }

func (a *ScanADC) Config() hw.ScanConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Trigger returns the selected router channel and whether it is enabled.
func (a *ScanADC) Trigger() (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route, a.trig
}

func (a *ScanADC) Resets() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resets
}

// sample returns the next conversion of the scan round: the entry's Sel in
// the top nibble and a running count below it, 12-bit.
func (a *ScanADC) sample() uint16 {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := a.samples
	a.samples++
	var sel uint16
	if len(a.cfg.Entries) > 0 {
		sel = uint16(a.cfg.Entries[n%uint32(len(a.cfg.Entries))].Sel)
	}
	return (sel&0xF)<<8 | uint16(n&0xFF)
}

// ----------------------------- IADC ------------------------------------------

type IADC struct {
	mu       sync.Mutex
	refHz    uint32
	max      uint32
	cfg      hw.IADCConfig
	pos      uint32
	timerOn  bool
	resets   int
	commands []hw.Cmd
	samples  uint32
}

func NewIADC(refHz, maxCycles uint32) *IADC { return &IADC{refHz: refHz, max: maxCycles} }

func (a *IADC) RefClockHz() uint32     { return a.refHz }
func (a *IADC) MaxTimerCycles() uint32 { return a.max }

func (a *IADC) Reset() {
	a.mu.Lock()
	a.cfg = hw.IADCConfig{}
	a.timerOn = false
	a.resets++
	a.mu.Unlock()
}

func (a *IADC) Init(cfg hw.IADCConfig) {
	a.mu.Lock()
	a.cfg = cfg
	a.pos = cfg.Pos
	a.mu.Unlock()
}

func (a *IADC) UpdateInput(pos uint32) {
	a.mu.Lock()
	a.pos = pos
	a.cfg.Pos = pos
	a.mu.Unlock()
}

func (a *IADC) Command(c hw.Cmd) {
	a.mu.Lock()
	a.commands = append(a.commands, c)
	switch c {
	case hw.CmdEnableTimer:
		a.timerOn = true
	case hw.CmdDisableTimer:
		a.timerOn = false
	}
	a.mu.Unlock()
}

func (a *IADC) DMA() (dmadrv.Signal, uintptr) { return SignalSingle, SingleDataAddr }

func (a *IADC) Config() hw.IADCConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

func (a *IADC) Input() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pos
}

func (a *IADC) TimerOn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timerOn
}

func (a *IADC) Commands() []hw.Cmd {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]hw.Cmd(nil), a.commands...)
}

func (a *IADC) sample() uint16 {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := a.samples
	a.samples++
	return uint16(a.pos&0xF)<<8 | uint16(n&0xFF)
}

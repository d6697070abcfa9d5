package adcdma

import (
	"adcstream-go/drivers/adcdma/hw"
	"adcstream-go/drivers/dmadrv"
	"adcstream-go/errcode"
)

const (
	// MaxScanInputs is the number of slots in one scan round.
	MaxScanInputs = 32
	// ScanClockHz is the conversion clock requested from the scan ADC.
	ScanClockHz = 1_000_000
)

// ScanInput adds one single-ended input to the scan round.
type ScanInput struct {
	Group uint8
	Sel   uint8
}

func (ScanInput) input() {}

// ScanVariant triggers a scan-mode ADC from a timer overflow carried over
// a router channel.
type ScanVariant struct {
	timer  hw.Timer
	router hw.Router
	adc    hw.ScanADC

	entries []hw.ScanEntry
	route   int
}

func NewScan(timer hw.Timer, router hw.Router, adc hw.ScanADC) *ScanVariant {
	return &ScanVariant{
		timer:   timer,
		router:  router,
		adc:     adc,
		entries: make([]hw.ScanEntry, 0, MaxScanInputs),
		route:   -1,
	}
}

func (v *ScanVariant) Name() string { return "scan" }

func (v *ScanVariant) Reset() { v.entries = v.entries[:0] }

// AddInput appends in to the scan round; scan order is insertion order.
func (v *ScanVariant) AddInput(in Input) error {
	si, ok := in.(ScanInput)
	if !ok {
		return &errcode.E{C: errcode.Unsupported, Op: "add_input", Msg: "scan variant takes ScanInput"}
	}
	if len(v.entries) == MaxScanInputs {
		return &errcode.E{C: errcode.InvalidParams, Op: "add_input", Msg: "scan round full"}
	}
	v.entries = append(v.entries, hw.ScanEntry{Group: si.Group, Sel: si.Sel})
	return nil
}

// Inputs returns the scan round in order.
func (v *ScanVariant) Inputs() []ScanInput {
	out := make([]ScanInput, len(v.entries))
	for i, e := range v.entries {
		out[i] = ScanInput{Group: e.Group, Sel: e.Sel}
	}
	return out
}

// Route returns the router channel in use, or -1.
func (v *ScanVariant) Route() int { return v.route }

func (v *ScanVariant) Configure(uint16) error {
	if len(v.entries) == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "configure", Msg: "no scan inputs"}
	}
	v.adc.Reset()
	v.adc.Init(hw.ScanConfig{
		Entries:       v.entries,
		FIFOOverwrite: true,
		Reference:     hw.RefVDD,
		ClockHz:       ScanClockHz,
	})
	v.adc.ClearFIFO()
	return nil
}

// BuildTrigger takes a router channel (kept across failed starts), feeds it
// from the timer overflow and programs the timer, still disabled.
func (v *ScanVariant) BuildTrigger(freq uint16) (TriggerInfo, error) {
	if v.route < 0 {
		ch, ok := v.router.Alloc()
		if !ok {
			return TriggerInfo{}, &errcode.E{C: errcode.NoRoute, Op: "build_trigger"}
		}
		v.route = ch
	}
	v.router.Connect(v.route, hw.SourceTimerOverflow)
	v.adc.SelectTrigger(v.route, true)

	clk := v.timer.ClockHz()
	p, top, err := CalcPrescaler(clk, freq)
	if errcode.Fatal(err) {
		return TriggerInfo{}, err
	}
	v.timer.Init(hw.TimerConfig{Prescale: p, Enable: false})
	v.timer.SetTop(top)
	return TriggerInfo{
		Prescale:    p,
		Top:         top,
		ClockHz:     clk,
		EffectiveHz: effectiveHz(clk, uint32(p)*top),
		Clamped:     err != nil,
	}, err
}

func (v *ScanVariant) DMA() (dmadrv.Signal, uintptr) { return v.adc.DMA() }

func (v *ScanVariant) EnableTrigger() { v.timer.Enable(true) }

func (v *ScanVariant) HaltTrigger() { v.timer.Enable(false) }

// Release resets the ADC and hands the router channel back.
func (v *ScanVariant) Release() {
	v.adc.Reset()
	if v.route >= 0 {
		v.router.Connect(v.route, hw.SourceNone)
		v.router.Release(v.route)
		v.route = -1
	}
}

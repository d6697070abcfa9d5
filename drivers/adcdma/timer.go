package adcdma

import (
	"adcstream-go/drivers/adcdma/hw"
	"adcstream-go/drivers/dmadrv"
	"adcstream-go/errcode"
)

// SingleInput selects the one input of a TimerVariant. BusReg, when set,
// receives BusAlloc as soon as the input is added.
type SingleInput struct {
	Pos      uint32
	BusAlloc uint32
	BusReg   hw.Register32
}

func (SingleInput) input() {}

// TimerVariant runs a converter from its own internal timer in
// single-conversion mode. Only one input is active at a time.
type TimerVariant struct {
	adc hw.IADC
	in  SingleInput
}

func NewTimer(adc hw.IADC) *TimerVariant { return &TimerVariant{adc: adc} }

func (v *TimerVariant) Name() string { return "timer" }

// Reset keeps the active input: it was applied to hardware when added.
func (v *TimerVariant) Reset() {}

// AddInput replaces the active input and applies it immediately.
func (v *TimerVariant) AddInput(in Input) error {
	si, ok := in.(SingleInput)
	if !ok {
		return &errcode.E{C: errcode.Unsupported, Op: "add_input", Msg: "timer variant takes SingleInput"}
	}
	v.in = si
	v.adc.UpdateInput(si.Pos)
	if si.BusReg != nil {
		si.BusReg.Set(si.BusAlloc)
	}
	return nil
}

// Input returns the active input.
func (v *TimerVariant) Input() SingleInput { return v.in }

func (v *TimerVariant) Configure(uint16) error {
	v.adc.Reset()
	return nil
}

// BuildTrigger programs single-conversion mode with the timer reload
// derived from the reference clock.
func (v *TimerVariant) BuildTrigger(freq uint16) (TriggerInfo, error) {
	ref := v.adc.RefClockHz()
	cycles, err := TimerCycles(ref, freq, v.adc.MaxTimerCycles())
	if errcode.Fatal(err) {
		return TriggerInfo{}, err
	}
	v.adc.Init(hw.IADCConfig{
		Pos:            v.in.Pos,
		TimerCycles:    cycles,
		Reference:      hw.RefVDD,
		Gain:           hw.Gain1x,
		TriggerTimer:   true,
		DataValidLevel: 1,
		Start:          true,
	})
	return TriggerInfo{
		Cycles:      cycles,
		ClockHz:     ref,
		EffectiveHz: effectiveHz(ref, cycles),
		Clamped:     err != nil,
	}, err
}

func (v *TimerVariant) DMA() (dmadrv.Signal, uintptr) { return v.adc.DMA() }

func (v *TimerVariant) EnableTrigger() { v.adc.Command(hw.CmdEnableTimer) }

func (v *TimerVariant) HaltTrigger() { v.adc.Command(hw.CmdDisableTimer) }

func (v *TimerVariant) Release() { v.adc.Reset() }

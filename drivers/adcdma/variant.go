package adcdma

import "adcstream-go/drivers/dmadrv"

// Input is a variant-specific input descriptor: ScanInput or SingleInput.
type Input interface{ input() }

// TriggerInfo records what BuildTrigger programmed.
type TriggerInfo struct {
	Prescale    uint16 // external timer prescaler, 0 if unused
	Top         uint32 // external timer period, 0 if unused
	Cycles      uint32 // internal timer reload, 0 if unused
	ClockHz     uint32
	EffectiveHz uint32
	Clamped     bool
}

// Variant is one hardware trigger architecture. The Session drives it in
// a fixed order on start: Configure, BuildTrigger, arm DMA from DMA(),
// EnableTrigger. HaltTrigger and Release run on stop and must be safe to
// call from the completion handler.
type Variant interface {
	Name() string

	// Reset clears accumulated inputs. Called by Session.Init.
	Reset()
	AddInput(in Input) error

	Configure(freq uint16) error
	BuildTrigger(freq uint16) (TriggerInfo, error)
	DMA() (dmadrv.Signal, uintptr)
	EnableTrigger()

	HaltTrigger()
	Release()
}

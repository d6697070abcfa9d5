// Package platform selects the sampling hardware for the build target:
// simulated peripherals on the host, device bindings on rp2040.
package platform

import (
	"context"
	"io"

	"adcstream-go/drivers/adcdma/hw"
	"adcstream-go/drivers/dmadrv"
)

// Hardware is the set of peripherals a sampling session can be built on.
// Nil members are not available on the target.
type Hardware struct {
	Device string

	DMA     dmadrv.Engine
	Timer   hw.Timer
	Router  hw.Router
	ScanADC hw.ScanADC
	IADC    hw.IADC

	// Registers maps bus-allocation register names used in profiles.
	Registers map[string]hw.Register32

	// Out carries encoded sample frames off the device.
	Out io.Writer

	run func(ctx context.Context)
}

// Start runs whatever the target needs in the background (the trigger
// clock on the simulator). It returns immediately.
func (h Hardware) Start(ctx context.Context) {
	if h.run != nil {
		go h.run(ctx)
	}
}

// Register looks up a bus-allocation register by name.
func (h Hardware) Register(name string) (hw.Register32, bool) {
	r, ok := h.Registers[name]
	return r, ok
}

//go:build !rp2040

package platform

import (
	"context"
	"io"
	"os"
	"time"

	"adcstream-go/drivers/adcdma/adcsim"
	"adcstream-go/drivers/adcdma/hw"
)

// TickPeriod is how often the simulated trigger completes a transfer.
var TickPeriod = 30 * time.Millisecond

// Default returns a freshly simulated board writing frames to stdout.
func Default() Hardware { return FromBoard(adcsim.NewBoard(), os.Stdout) }

// FromBoard wraps an existing simulated board.
func FromBoard(b *adcsim.Board, out io.Writer) Hardware {
	regs := make(map[string]hw.Register32, len(b.Pads))
	for name, r := range b.Pads {
		regs[name] = r
	}
	return Hardware{
		Device:    "sim",
		DMA:       b.DMA,
		Timer:     b.Timer,
		Router:    b.Router,
		ScanADC:   b.Scan,
		IADC:      b.IADC,
		Registers: regs,
		Out:       out,
		run:       func(ctx context.Context) { b.Pump(ctx, TickPeriod) },
	}
}

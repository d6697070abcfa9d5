//go:build rp2040

package platform

import (
	"device/rp"
	"machine"

	"adcstream-go/drivers/adcdma/hw"
	"adcstream-go/internal/platform/rp2"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

const (
	frameBaud = 921600
	// DMA channels 0..3 are left to other drivers.
	dmaChannels = 0x0FF0
)

// Default binds the RP2040 ADC with its internal sample timer and streams
// frames over UART0 (GP0/GP1). There is no scan/router hardware.
func Default() Hardware {
	_ = uartx.UART0.Configure(uartx.UARTConfig{
		BaudRate: frameBaud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	return Hardware{
		Device: "pico",
		DMA:    rp2.NewDMA(dmaChannels),
		IADC:   rp2.NewADC(),
		Registers: map[string]hw.Register32{
			"gpio26": &rp.PADS_BANK0.GPIO26,
			"gpio27": &rp.PADS_BANK0.GPIO27,
			"gpio28": &rp.PADS_BANK0.GPIO28,
			"gpio29": &rp.PADS_BANK0.GPIO29,
		},
		Out: uartx.UART0,
	}
}

//go:build rp2040

package rp2

import (
	"device/rp"
	"unsafe"

	"adcstream-go/drivers/adcdma/hw"
	"adcstream-go/drivers/dmadrv"
)

const (
	// adcClockHz is clk_adc as configured by the TinyGo runtime (USB PLL).
	adcClockHz = 48_000_000
	// DIV.INT is 16 bits; the sample period is INT+1 cycles.
	maxCycles  = 1 << 16
	readyPolls = 1000
)

// ADC drives the RP2040 converter as a timer-triggered single-input
// converter: DIV is the internal timer, AINSEL the input and START_MANY
// the timer enable. Reference and gain are fixed in silicon.
type ADC struct{}

func NewADC() *ADC { return &ADC{} }

func (*ADC) RefClockHz() uint32     { return adcClockHz }
func (*ADC) MaxTimerCycles() uint32 { return maxCycles }

func (*ADC) Reset() {
	rp.ADC.CS.Set(0)
	rp.ADC.FCS.Set(0)
	rp.ADC.DIV.Set(0)
	drainFIFO()
}

func (a *ADC) Init(cfg hw.IADCConfig) {
	rp.ADC.CS.Set(rp.ADC_CS_EN | (cfg.Pos<<rp.ADC_CS_AINSEL_Pos)&rp.ADC_CS_AINSEL_Msk)
	for i := 0; i < readyPolls && !rp.ADC.CS.HasBits(rp.ADC_CS_READY); i++ {
	}
	if cfg.TimerCycles > 0 {
		rp.ADC.DIV.Set((cfg.TimerCycles - 1) << rp.ADC_DIV_INT_Pos)
	}
	var fcs uint32 = rp.ADC_FCS_EN
	if cfg.Start {
		fcs |= rp.ADC_FCS_DREQ_EN | uint32(cfg.DataValidLevel)<<rp.ADC_FCS_THRESH_Pos
	}
	drainFIFO()
	rp.ADC.FCS.Set(fcs)
}

func (*ADC) UpdateInput(pos uint32) {
	rp.ADC.CS.ReplaceBits(pos<<rp.ADC_CS_AINSEL_Pos, rp.ADC_CS_AINSEL_Msk, 0)
}

func (*ADC) Command(c hw.Cmd) {
	switch c {
	case hw.CmdEnableTimer:
		rp.ADC.CS.SetBits(rp.ADC_CS_START_MANY)
	case hw.CmdDisableTimer:
		rp.ADC.CS.ClearBits(rp.ADC_CS_START_MANY)
	}
}

func (*ADC) DMA() (dmadrv.Signal, uintptr) {
	return DREQADC, uintptr(unsafe.Pointer(&rp.ADC.FIFO))
}

func drainFIFO() {
	for i := 0; i < 8 && rp.ADC.FCS.Get()&rp.ADC_FCS_EMPTY == 0; i++ {
		_ = rp.ADC.FIFO.Get()
	}
}

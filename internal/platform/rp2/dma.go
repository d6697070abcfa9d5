//go:build rp2040

// Package rp2 binds the RP2040 DMA controller and ADC to the sampling
// driver contracts.
package rp2

import (
	"device/rp"
	"math/bits"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"adcstream-go/drivers/dmadrv"
)

// DREQADC paces a channel from the ADC FIFO.
const DREQADC dmadrv.Signal = 0x24

const (
	nchannels   = 12
	dmaSize16   = 1
	abortPolls  = 10000
	irqPriority = 0xc0
)

// One DMA channel. See rp.DMA_Type.
type channelHW struct {
	READ_ADDR   volatile.Register32
	WRITE_ADDR  volatile.Register32
	TRANS_COUNT volatile.Register32
	CTRL_TRIG   volatile.Register32
	_           [12]volatile.Register32 // aliases
}

var channels = (*[nchannels]channelHW)(unsafe.Pointer(rp.DMA))

type xfer struct {
	dst  []uint16
	done dmadrv.Handler
	seq  uint32
}

// DMA implements dmadrv.Engine on DMA_IRQ_1. Only one DMA value may
// exist: the interrupt is bound to the package-level engine.
type DMA struct {
	avail  uint16
	used   uint16
	active uint16
	xfer   [nchannels]xfer
}

var engine DMA

func init() {
	intr := interrupt.New(rp.IRQ_DMA_IRQ_1, engine.handleInterrupt)
	intr.SetPriority(irqPriority)
	intr.Enable()
}

// NewDMA returns the engine restricted to the channels set in avail.
func NewDMA(avail uint16) *DMA {
	engine.avail = avail & (1<<nchannels - 1)
	return &engine
}

func (d *DMA) AllocateChannel() (dmadrv.Channel, error) {
	mask := interrupt.Disable()
	defer interrupt.Restore(mask)
	free := d.avail &^ d.used
	if free == 0 {
		return 0, dmadrv.ErrNoChannel
	}
	ch := bits.TrailingZeros16(free)
	d.used |= 1 << ch
	return dmadrv.Channel(ch), nil
}

func (d *DMA) FreeChannel(ch dmadrv.Channel) error {
	if err := d.StopTransfer(ch); err != nil {
		return err
	}
	mask := interrupt.Disable()
	d.used &^= 1 << ch
	d.xfer[ch] = xfer{}
	interrupt.Restore(mask)
	return nil
}

// PeripheralMemory starts a paced transfer. The RP2040 has no alternate
// descriptor, so pingPong is ignored: the handler re-arms.
func (d *DMA) PeripheralMemory(ch dmadrv.Channel, sig dmadrv.Signal, dst []uint16, src uintptr,
	_ bool, count uint16, size dmadrv.DataSize, done dmadrv.Handler) error {
	if err := dmadrv.CheckTransfer(dst, count, size, done); err != nil {
		return err
	}
	mask := interrupt.Disable()
	defer interrupt.Restore(mask)
	if int(ch) >= nchannels || d.used&(1<<ch) == 0 {
		return dmadrv.ErrNotAllocated
	}
	if d.active&(1<<ch) != 0 {
		return dmadrv.ErrBusy
	}
	d.xfer[ch].dst = dst
	d.xfer[ch].done = done
	d.active |= 1 << ch
	rp.DMA.INTE1.SetBits(1 << ch)

	hw := &channels[ch]
	hw.READ_ADDR.Set(uint32(src))
	hw.WRITE_ADDR.Set(uint32(uintptr(unsafe.Pointer(&dst[0]))))
	hw.TRANS_COUNT.Set(uint32(count))
	ctrl := uint32(sig)<<rp.DMA_CH0_CTRL_TRIG_TREQ_SEL_Pos |
		uint32(dmaSize16)<<rp.DMA_CH0_CTRL_TRIG_DATA_SIZE_Pos |
		uint32(ch)<<rp.DMA_CH0_CTRL_TRIG_CHAIN_TO_Pos | // chain to self: no chaining
		1<<rp.DMA_CH0_CTRL_TRIG_INCR_WRITE_Pos |
		1<<rp.DMA_CH0_CTRL_TRIG_EN_Pos
	hw.CTRL_TRIG.Set(ctrl)
	return nil
}

// StopTransfer aborts the channel and waits, bounded, for the abort to
// flush. Safe from the completion handler.
func (d *DMA) StopTransfer(ch dmadrv.Channel) error {
	if int(ch) >= nchannels {
		return dmadrv.ErrNotAllocated
	}
	mask := interrupt.Disable()
	defer interrupt.Restore(mask)
	if d.used&(1<<ch) == 0 {
		return dmadrv.ErrNotAllocated
	}
	bit := uint32(1) << ch
	rp.DMA.INTE1.ClearBits(bit)
	rp.DMA.CHAN_ABORT.Set(bit)
	for i := 0; i < abortPolls && rp.DMA.CHAN_ABORT.Get()&bit != 0; i++ {
	}
	rp.DMA.INTS1.Set(bit)
	d.active &^= 1 << ch
	return nil
}

func (d *DMA) handleInterrupt(interrupt.Interrupt) {
	pending := rp.DMA.INTS1.Get()
	rp.DMA.INTS1.Set(pending)
	pending &= uint32(d.active)
	for pending != 0 {
		ch := bits.TrailingZeros32(pending)
		pending &^= 1 << ch
		x := &d.xfer[ch]
		d.active &^= 1 << ch
		x.seq++
		if x.done != nil {
			x.done(dmadrv.Channel(ch), x.seq, x.dst)
		}
	}
}

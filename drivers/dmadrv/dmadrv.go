// Package dmadrv is the contract between sampling drivers and a DMA
// transfer engine: channel allocation, peripheral-to-memory transfers
// paced by a peripheral request line, completion callbacks and stop.
//
// Engines are provided per platform (device/rp on rp2040, a simulator on
// host). Drivers only see this interface.
package dmadrv

import "errors"

// Channel identifies an allocated DMA channel.
type Channel uint8

// Signal is the peripheral request line that paces a transfer. Its value
// is platform specific and supplied by the peripheral binding.
type Signal uint8

// DataSize is the width of one transferred element.
type DataSize uint8

const (
	DataSize1 DataSize = 1
	DataSize2 DataSize = 2
	DataSize4 DataSize = 4
)

// Handler runs in interrupt context exactly once per completed transfer.
// buf is the destination the transfer was armed with. Returning true asks
// the engine to continue into its built-in alternate buffer.
type Handler func(ch Channel, sequence uint32, buf []uint16) bool

var (
	ErrNoChannel     = errors.New("dmadrv: no free channel")
	ErrNotAllocated  = errors.New("dmadrv: channel not allocated")
	ErrBusy          = errors.New("dmadrv: transfer in progress")
	ErrBadTransfer   = errors.New("dmadrv: invalid transfer")
	ErrUnsupportedSz = errors.New("dmadrv: unsupported element size")
)

// Engine is the DMA transfer engine.
type Engine interface {
	AllocateChannel() (Channel, error)
	FreeChannel(ch Channel) error

	// PeripheralMemory arms one transfer of count elements of size from the
	// peripheral register at src into dst, paced by sig. done is called on
	// completion. It must be callable from a completion handler.
	PeripheralMemory(ch Channel, sig Signal, dst []uint16, src uintptr,
		pingPong bool, count uint16, size DataSize, done Handler) error

	// StopTransfer cancels the in-flight transfer on ch, if any. It must be
	// callable from a completion handler.
	StopTransfer(ch Channel) error
}

// CheckTransfer validates the arguments every engine rejects the same way.
func CheckTransfer(dst []uint16, count uint16, size DataSize, done Handler) error {
	if size != DataSize2 {
		return ErrUnsupportedSz
	}
	if count == 0 || int(count) > len(dst) || done == nil {
		return ErrBadTransfer
	}
	return nil
}

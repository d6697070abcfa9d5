// Package mcp4725 drives the MCP4725 12-bit I²C DAC using its two-byte
// fast-write command:
//
//	[0 0 PD1 PD0 D11 D10 D9 D8] [D7 .. D0]
//
// Fast write updates the output register only; the EEPROM is untouched.
package mcp4725

import (
	"errors"

	"tinygo.org/x/drivers"
)

// Address is the default I²C address (A0 low on common breakouts).
const Address = 0x62

// MaxValue is the full-scale code.
const MaxValue = 0x0FFF

// PowerDown selects the output state.
type PowerDown uint8

const (
	PowerOn       PowerDown = 0
	PowerDown1K   PowerDown = 1 // output to ground through 1 kΩ
	PowerDown100K PowerDown = 2
	PowerDown500K PowerDown = 3
)

var ErrRange = errors.New("mcp4725: value above 12 bits")

// Device wraps an I²C connection to an MCP4725.
type Device struct {
	bus     drivers.I2C
	Address uint16

	buf [2]byte
}

// New creates a Device on an already configured bus. It does not touch the
// device.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus, Address: Address}
}

// FastWrite sets the output code and power-down mode in one transfer.
func (d *Device) FastWrite(value uint16, pd PowerDown) error {
	if value > MaxValue {
		return ErrRange
	}
	d.buf[0] = byte(pd&0x3)<<4 | byte(value>>8)
	d.buf[1] = byte(value)
	return d.bus.Tx(d.Address, d.buf[:], nil)
}

// Set drives the output to value with the DAC powered on.
func (d *Device) Set(value uint16) error { return d.FastWrite(value, PowerOn) }

// Sleep powers the output stage down through the given load.
func (d *Device) Sleep(pd PowerDown) error { return d.FastWrite(0, pd) }

// Package frame is the wire format for sample blocks sent from the device
// to the host:
//
//	0x7E 0xA5 | seq u16 | count u16 | count x sample u16 | crc16
//
// All integers are little-endian. The CRC covers seq through the last
// sample.
package frame

import (
	"encoding/binary"
	"errors"
)

const (
	Sync0 = 0x7E
	Sync1 = 0xA5

	HeaderLen  = 6
	TrailerLen = 2
	MaxSamples = 4096
)

var (
	ErrShort   = errors.New("frame: short")
	ErrSync    = errors.New("frame: no sync")
	ErrTooLong = errors.New("frame: too many samples")
	ErrCRC     = errors.New("frame: crc mismatch")
)

// Frame is one decoded sample block.
type Frame struct {
	Seq     uint16
	Samples []uint16
}

// Size returns the encoded length of a frame carrying n samples.
func Size(n int) int { return HeaderLen + 2*n + TrailerLen }

// Append encodes samples after dst. len(samples) must not exceed
// MaxSamples.
func Append(dst []byte, seq uint16, samples []uint16) []byte {
	start := len(dst)
	dst = append(dst, Sync0, Sync1)
	dst = binary.LittleEndian.AppendUint16(dst, seq)
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(samples)))
	for _, s := range samples {
		dst = binary.LittleEndian.AppendUint16(dst, s)
	}
	crc := CRC16(dst[start+2:])
	return binary.LittleEndian.AppendUint16(dst, crc)
}

// Decode parses one frame at the start of b and returns it with the number
// of bytes consumed. Samples are decoded into a fresh slice.
func Decode(b []byte) (Frame, int, error) {
	if len(b) < 2 {
		return Frame{}, 0, ErrShort
	}
	if b[0] != Sync0 || b[1] != Sync1 {
		return Frame{}, 0, ErrSync
	}
	if len(b) < HeaderLen {
		return Frame{}, 0, ErrShort
	}
	n := int(binary.LittleEndian.Uint16(b[4:6]))
	if n > MaxSamples {
		return Frame{}, 0, ErrTooLong
	}
	total := Size(n)
	if len(b) < total {
		return Frame{}, 0, ErrShort
	}
	body := b[2 : total-TrailerLen]
	if CRC16(body) != binary.LittleEndian.Uint16(b[total-TrailerLen:total]) {
		return Frame{}, 0, ErrCRC
	}
	f := Frame{
		Seq:     binary.LittleEndian.Uint16(b[2:4]),
		Samples: make([]uint16, n),
	}
	for i := range f.Samples {
		f.Samples[i] = binary.LittleEndian.Uint16(b[HeaderLen+2*i:])
	}
	return f, total, nil
}

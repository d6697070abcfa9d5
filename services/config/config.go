// Package config resolves the sampling profile for a device from JSON
// embedded in the firmware image.
package config

import (
	"adcstream-go/errcode"
	"adcstream-go/frame"
	"adcstream-go/x/logx"
)

const (
	VariantScan  = "scan"
	VariantTimer = "timer"

	DefaultBuffers = 2
)

// EmbeddedConfigLookup allows overriding how profiles are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// ScanInput is one "scan" entry: {"group", "sel"}.
type ScanInput struct {
	Group uint8
	Sel   uint8
}

// SingleInput is the "single" object: {"pos", "bus_alloc", "bus"}.
type SingleInput struct {
	Pos      uint32
	BusAlloc uint32
	// Bus names a bus-allocation register known to the platform.
	Bus string
}

// Profile is one sampling setup. JSON keys: variant, count, frequency,
// buffers, scan, single, log_level.
type Profile struct {
	Variant   string
	Count     uint16
	Frequency uint16
	Buffers   int
	Scan      []ScanInput
	Single    *SingleInput
	LogLevel  string
}

// Parse decodes and validates a profile, filling defaults.
func Parse(raw []byte) (Profile, error) {
	m, err := decodeObject(raw)
	if err != nil {
		return Profile{}, err
	}
	p, err := profileFrom(m)
	if err != nil {
		return Profile{}, err
	}
	if p.Buffers == 0 {
		p.Buffers = DefaultBuffers
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Lookup returns the embedded profile for device.
func Lookup(device string) (Profile, error) {
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return Profile{}, &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "no embedded profile for device " + device}
	}
	return Parse(raw)
}

func (p Profile) Validate() error {
	bad := func(msg string) error {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: msg}
	}
	if p.Count == 0 {
		return bad("count must be > 0")
	}
	if p.Count > frame.MaxSamples {
		return bad("count exceeds the frame sample limit")
	}
	if p.Frequency == 0 {
		return bad("frequency must be > 0")
	}
	if p.Buffers < 2 {
		return bad("need at least two buffers")
	}
	switch p.Variant {
	case VariantScan:
		if len(p.Scan) == 0 {
			return bad("scan profile without inputs")
		}
	case VariantTimer:
		if p.Single == nil {
			return bad("timer profile without input")
		}
	default:
		return bad("unknown variant " + p.Variant)
	}
	if p.LogLevel != "" {
		if _, err := logx.ParseLevel(p.LogLevel); err != nil {
			return bad("log_level " + logx.HelpLevels)
		}
	}
	return nil
}

package config

import (
	"math"

	"github.com/andreyvit/tinyjson"

	"adcstream-go/errcode"
)

func invalid(msg string) error {
	return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: msg}
}

// decodeObject parses raw into the generic map form. tinyjson panics on
// malformed input; that is reported as InvalidParams.
func decodeObject(raw []byte) (m map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			msg := "invalid JSON"
			if s, ok := r.(string); ok {
				msg = s
			}
			m, err = nil, invalid(msg)
		}
	}()
	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return nil, invalid("profile is not a JSON object")
	}
	return m, nil
}

// fields reads typed values out of a decoded object, keeping the first
// error.
type fields struct {
	err error
}

func (f *fields) fail(msg string) {
	if f.err == nil {
		f.err = invalid(msg)
	}
}

// num reads a whole number in [0, max]. A missing key or null reads as 0.
func (f *fields) num(m map[string]any, key string, max uint64) uint64 {
	v, ok := m[key]
	if !ok || v == nil {
		return 0
	}
	n, ok := v.(float64)
	if !ok || n < 0 || n != math.Trunc(n) || n > float64(max) {
		f.fail(key + " must be a whole number in range")
		return 0
	}
	return uint64(n)
}

func (f *fields) str(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		f.fail(key + " must be a string")
	}
	return s
}

func (f *fields) object(v any, key string) map[string]any {
	o, ok := v.(map[string]any)
	if !ok {
		f.fail(key + " must be an object")
	}
	return o
}

func profileFrom(m map[string]any) (Profile, error) {
	var f fields
	p := Profile{
		Variant:   f.str(m, "variant"),
		Count:     uint16(f.num(m, "count", math.MaxUint16)),
		Frequency: uint16(f.num(m, "frequency", math.MaxUint16)),
		Buffers:   int(f.num(m, "buffers", math.MaxInt32)),
		LogLevel:  f.str(m, "log_level"),
	}

	if v, ok := m["scan"]; ok && v != nil {
		list, ok := v.([]any)
		if !ok {
			f.fail("scan must be an array")
		}
		for _, e := range list {
			o := f.object(e, "scan entry")
			p.Scan = append(p.Scan, ScanInput{
				Group: uint8(f.num(o, "group", math.MaxUint8)),
				Sel:   uint8(f.num(o, "sel", math.MaxUint8)),
			})
		}
	}

	if v, ok := m["single"]; ok && v != nil {
		o := f.object(v, "single")
		p.Single = &SingleInput{
			Pos:      uint32(f.num(o, "pos", math.MaxUint32)),
			BusAlloc: uint32(f.num(o, "bus_alloc", math.MaxUint32)),
			Bus:      f.str(o, "bus"),
		}
	}

	if f.err != nil {
		return Profile{}, f.err
	}
	return p, nil
}

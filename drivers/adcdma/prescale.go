package adcdma

import (
	"adcstream-go/errcode"
	"adcstream-go/x/mathx"
)

const (
	// MaxTop is the largest period a 16-bit trigger timer can count.
	MaxTop = 65535
	// MaxPrescale is the largest power-of-two timer prescaler.
	MaxPrescale = 1024
)

// CalcPrescaler returns the smallest power-of-two prescaler P in 1..1024
// for which clockHz/(P*freq) fits the 16-bit timer, and that top value.
// When even P=1024 overflows, top is clamped to MaxTop and TopClamped is
// returned alongside the usable values.
func CalcPrescaler(clockHz uint32, freq uint16) (prescale uint16, top uint32, err error) {
	if freq == 0 {
		return 0, 0, &errcode.E{C: errcode.InvalidParams, Op: "prescaler", Msg: "zero frequency"}
	}
	// floor(clk/(P*f)) <= MaxTop  <=>  P > clk/((MaxTop+1)*f)
	need := uint64(clockHz)/((MaxTop+1)*uint64(freq)) + 1
	p := mathx.NextPow2(need)
	if p > MaxPrescale {
		return MaxPrescale, MaxTop, errcode.TopClamped
	}
	top = clockHz / (uint32(p) * uint32(freq))
	if top == 0 {
		return 0, 0, &errcode.E{C: errcode.InvalidParams, Op: "prescaler", Msg: "frequency above timer clock"}
	}
	return uint16(p), top, nil
}

// TimerCycles returns refHz/freq, the internal timer reload for a
// converter clocked at refHz. A non-zero max clamps the result and
// reports TopClamped.
func TimerCycles(refHz uint32, freq uint16, max uint32) (uint32, error) {
	if freq == 0 {
		return 0, &errcode.E{C: errcode.InvalidParams, Op: "timer_cycles", Msg: "zero frequency"}
	}
	c := refHz / uint32(freq)
	if c == 0 {
		return 0, &errcode.E{C: errcode.InvalidParams, Op: "timer_cycles", Msg: "frequency above reference clock"}
	}
	if max != 0 && c > max {
		return max, errcode.TopClamped
	}
	return c, nil
}

// effectiveHz is the rate actually produced by clockHz/(div).
func effectiveHz(clockHz, div uint32) uint32 {
	return mathx.RoundDiv(clockHz, div)
}

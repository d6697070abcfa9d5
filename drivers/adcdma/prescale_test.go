package adcdma

import (
	"testing"

	"adcstream-go/errcode"
)

func TestCalcPrescaler(t *testing.T) {
	cases := []struct {
		clock    uint32
		freq     uint16
		prescale uint16
		top      uint32
		code     errcode.Code
	}{
		{19_000_000, 3000, 1, 6333, errcode.OK},
		{19_000_000, 50, 8, 47500, errcode.OK},
		{19_000_000, 290, 1, 65517, errcode.OK},
		{19_000_000, 289, 2, 32871, errcode.OK},
		{19_000_000, 1, 512, 37109, errcode.OK},
		// exactly at the 16-bit limit stays at P=1
		{196_605_000, 3000, 1, 65535, errcode.OK},
		{100_000_000, 1, 1024, 65535, errcode.TopClamped},
		{19_000_000, 0, 0, 0, errcode.InvalidParams},
		{1000, 3000, 0, 0, errcode.InvalidParams},
	}
	for _, c := range cases {
		p, top, err := CalcPrescaler(c.clock, c.freq)
		if got := errcode.Of(err); got != c.code {
			t.Fatalf("F=%d f=%d: code %q, want %q", c.clock, c.freq, got, c.code)
		}
		if p != c.prescale || top != c.top {
			t.Fatalf("F=%d f=%d: got P=%d top=%d, want P=%d top=%d", c.clock, c.freq, p, top, c.prescale, c.top)
		}
	}
}

func TestCalcPrescalerIsSmallestFit(t *testing.T) {
	const clock = 19_000_000
	for fi := uint32(1); fi <= 65535; fi += 97 {
		f := uint16(fi)
		p, top, err := CalcPrescaler(clock, f)
		if err != nil {
			t.Fatalf("f=%d: %v", f, err)
		}
		if top > MaxTop {
			t.Fatalf("f=%d: top %d overflows", f, top)
		}
		if p > 1 && clock/(uint32(p/2)*uint32(f)) <= MaxTop {
			t.Fatalf("f=%d: P=%d but P/2 also fits", f, p)
		}
	}
}

func TestTimerCycles(t *testing.T) {
	cases := []struct {
		ref    uint32
		freq   uint16
		max    uint32
		cycles uint32
		code   errcode.Code
	}{
		{1_000_000, 1000, 0, 1000, errcode.OK},
		{1_000_000, 3000, 65535, 333, errcode.OK},
		{1_000_000, 65535, 65535, 15, errcode.OK},
		{1_000_000, 1, 65535, 65535, errcode.TopClamped},
		{48_000_000, 1, 0, 48_000_000, errcode.OK},
		{1_000_000, 0, 65535, 0, errcode.InvalidParams},
		{100, 1000, 65535, 0, errcode.InvalidParams},
	}
	for _, c := range cases {
		got, err := TimerCycles(c.ref, c.freq, c.max)
		if code := errcode.Of(err); code != c.code {
			t.Fatalf("ref=%d f=%d: code %q, want %q", c.ref, c.freq, code, c.code)
		}
		if got != c.cycles {
			t.Fatalf("ref=%d f=%d: cycles %d, want %d", c.ref, c.freq, got, c.cycles)
		}
	}
}

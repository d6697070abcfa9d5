package adcdma

import (
	"errors"
	"testing"

	"adcstream-go/drivers/adcdma/adcsim"
	"adcstream-go/drivers/adcdma/hw"
	"adcstream-go/drivers/dmadrv"
	"adcstream-go/errcode"
)

type call struct {
	buf   []uint16
	count uint16
	user  any
}

// pingPong returns a callback alternating between a and b, recording calls.
func pingPong(a, b []uint16, calls *[]call) Callback {
	return func(buf []uint16, count uint16, user any) []uint16 {
		*calls = append(*calls, call{buf, count, user})
		if &buf[0] == &a[0] {
			return b
		}
		return a
	}
}

func newScanSession(t *testing.T) (*Session, *adcsim.Board) {
	t.Helper()
	b := adcsim.NewBoard()
	return New(b.DMA, NewScan(b.Timer, b.Router, b.Scan)), b
}

func TestScanScenarioDeliversBothBuffers(t *testing.T) {
	s, b := newScanSession(t)
	bufA := make([]uint16, 100)
	bufB := make([]uint16, 100)
	var calls []call
	if err := s.Init(100, 3000, pingPong(bufA, bufB, &calls), nil); err != nil {
		t.Fatal(err)
	}
	if err := s.AddInput(ScanInput{Group: 0, Sel: 8}); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(bufA); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.State() != Running {
		t.Fatalf("state = %v", s.State())
	}
	if b.Tick() != 1 || b.Tick() != 1 {
		t.Fatal("expected one completion per tick")
	}
	if len(calls) != 2 {
		t.Fatalf("calls = %d", len(calls))
	}
	if &calls[0].buf[0] != &bufA[0] || calls[0].count != 100 || calls[0].user != nil || len(calls[0].buf) != 100 {
		t.Fatalf("first call = %+v", calls[0])
	}
	if &calls[1].buf[0] != &bufB[0] || calls[1].count != 100 {
		t.Fatal("second completion should deliver bufB")
	}
	if calls[0].buf[0]>>8 != 8 {
		t.Fatalf("sample %#x not from sel 8", calls[0].buf[0])
	}

	p, top, on := b.Timer.Snapshot()
	if p != 1 || top != 6333 || !on {
		t.Fatalf("timer P=%d top=%d on=%v", p, top, on)
	}
	tr := s.Trigger()
	if tr.Prescale != 1 || tr.Top != 6333 || tr.EffectiveHz != 3000 {
		t.Fatalf("trigger info = %+v", tr)
	}
	cfg := b.Scan.Config()
	if len(cfg.Entries) != 1 || cfg.Entries[0].Sel != 8 || !cfg.FIFOOverwrite || cfg.Reference != hw.RefVDD {
		t.Fatalf("scan config = %+v", cfg)
	}
	route, trig := b.Scan.Trigger()
	if src, used := b.Router.Source(route); !trig || !used || src != hw.SourceTimerOverflow {
		t.Fatalf("route %d trig=%v used=%v src=%v", route, trig, used, src)
	}
}

func TestBuffersAlternateUntilStop(t *testing.T) {
	s, b := newScanSession(t)
	bufA := make([]uint16, 16)
	bufB := make([]uint16, 16)
	var calls []call
	_ = s.Init(16, 1000, pingPong(bufA, bufB, &calls), "ctx")
	_ = s.AddInput(ScanInput{Group: 1, Sel: 2})
	_ = s.AddInput(ScanInput{Group: 1, Sel: 3})
	if err := s.Start(bufA); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		b.Tick()
	}
	if s.Stop() {
		t.Fatal("stop must report not confirmed")
	}
	for i := 0; i < 5; i++ {
		b.Tick()
	}
	if len(calls) != 50 {
		t.Fatalf("calls = %d, want 50", len(calls))
	}
	for i, c := range calls {
		want := &bufA[0]
		if i%2 == 1 {
			want = &bufB[0]
		}
		if &c.buf[0] != want {
			t.Fatalf("call %d got wrong buffer", i)
		}
		if c.user != "ctx" {
			t.Fatalf("user = %v", c.user)
		}
	}
	if st := s.Stats(); st.Completions != 50 || st.Rearms != 50 || st.Stops != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if s.State() != Configured {
		t.Fatalf("state = %v", s.State())
	}
	if _, _, on := b.Timer.Snapshot(); on {
		t.Fatal("timer still enabled after stop")
	}
	if v := s.Variant().(*ScanVariant); v.Route() != -1 {
		t.Fatal("route not released")
	}
}

func TestNilCallbackResultStops(t *testing.T) {
	s, b := newScanSession(t)
	n := 0
	_ = s.Init(8, 3000, func([]uint16, uint16, any) []uint16 { n++; return nil }, nil)
	_ = s.AddInput(ScanInput{Sel: 1})
	if err := s.Start(make([]uint16, 8)); err != nil {
		t.Fatal(err)
	}
	b.Tick()
	b.Tick()
	b.Tick()
	if n != 1 {
		t.Fatalf("callback ran %d times, want 1", n)
	}
	if s.State() != Configured {
		t.Fatalf("state = %v", s.State())
	}
	if _, ok := b.DMA.Inflight(0); ok {
		t.Fatal("transfer still armed")
	}
	if _, used := b.Router.Source(0); used {
		t.Fatal("route still allocated")
	}
}

func TestRearmFailureStops(t *testing.T) {
	s, b := newScanSession(t)
	bufA := make([]uint16, 4)
	bufB := make([]uint16, 4)
	var calls []call
	_ = s.Init(4, 3000, pingPong(bufA, bufB, &calls), nil)
	_ = s.AddInput(ScanInput{Sel: 1})
	if err := s.Start(bufA); err != nil {
		t.Fatal(err)
	}
	b.DMA.FailArm = errors.New("descriptor error")
	b.Tick()
	b.DMA.FailArm = nil
	b.Tick()
	if len(calls) != 1 || s.State() != Configured || s.Stats().Stops != 1 {
		t.Fatalf("calls=%d state=%v stats=%+v", len(calls), s.State(), s.Stats())
	}
}

func TestStrayCompletionAfterStopIgnored(t *testing.T) {
	s, b := newScanSession(t)
	n := 0
	buf := make([]uint16, 4)
	_ = s.Init(4, 3000, func(b []uint16, _ uint16, _ any) []uint16 { n++; return b }, nil)
	_ = s.AddInput(ScanInput{Sel: 1})
	_ = s.Start(buf)
	tr, ok := b.DMA.Inflight(0)
	if !ok {
		t.Fatal("nothing armed")
	}
	s.Stop()
	b.DMA.Deliver(tr)
	if n != 0 {
		t.Fatal("callback ran for a completion after stop")
	}
	if s.Stats().Stray != 1 {
		t.Fatalf("stray = %d", s.Stats().Stray)
	}
}

func TestStaleBufferCompletionIgnored(t *testing.T) {
	s, b := newScanSession(t)
	bufA := make([]uint16, 4)
	bufB := make([]uint16, 4)
	var calls []call
	_ = s.Init(4, 3000, pingPong(bufA, bufB, &calls), nil)
	_ = s.AddInput(ScanInput{Sel: 1})
	_ = s.Start(bufA)
	first, _ := b.DMA.Inflight(0)
	b.Tick() // bufA done, bufB armed
	b.DMA.Deliver(first)
	if len(calls) != 1 || s.Stats().Stray != 1 {
		t.Fatalf("calls=%d stray=%d", len(calls), s.Stats().Stray)
	}
}

func TestStartFailures(t *testing.T) {
	cb := func(b []uint16, _ uint16, _ any) []uint16 { return b }

	t.Run("not initialised", func(t *testing.T) {
		s, _ := newScanSession(t)
		if err := s.Start(make([]uint16, 4)); errcode.Of(err) != errcode.NotInitialized {
			t.Fatalf("err = %v", err)
		}
	})
	t.Run("zero frequency", func(t *testing.T) {
		s, _ := newScanSession(t)
		_ = s.Init(4, 0, cb, nil)
		_ = s.AddInput(ScanInput{})
		if err := s.Start(make([]uint16, 4)); errcode.Of(err) != errcode.InvalidParams {
			t.Fatalf("err = %v", err)
		}
	})
	t.Run("short buffer", func(t *testing.T) {
		s, _ := newScanSession(t)
		_ = s.Init(8, 3000, cb, nil)
		_ = s.AddInput(ScanInput{})
		if err := s.Start(make([]uint16, 7)); errcode.Of(err) != errcode.InvalidParams {
			t.Fatalf("err = %v", err)
		}
	})
	t.Run("no inputs", func(t *testing.T) {
		s, _ := newScanSession(t)
		_ = s.Init(4, 3000, cb, nil)
		if err := s.Start(make([]uint16, 4)); errcode.Of(err) != errcode.InvalidParams {
			t.Fatalf("err = %v", err)
		}
	})
	t.Run("no route", func(t *testing.T) {
		s, b := newScanSession(t)
		b.Router.Take()
		_ = s.Init(4, 3000, cb, nil)
		_ = s.AddInput(ScanInput{})
		if err := s.Start(make([]uint16, 4)); errcode.Of(err) != errcode.NoRoute {
			t.Fatalf("err = %v", err)
		}
		if s.State() != Configured {
			t.Fatalf("state = %v", s.State())
		}
	})
	t.Run("arm failure", func(t *testing.T) {
		s, b := newScanSession(t)
		cause := errors.New("engine refused")
		b.DMA.FailArm = cause
		_ = s.Init(4, 3000, cb, nil)
		_ = s.AddInput(ScanInput{})
		err := s.Start(make([]uint16, 4))
		if errcode.Of(err) != errcode.ArmFailed || !errors.Is(err, cause) {
			t.Fatalf("err = %v", err)
		}
		if s.State() != Configured {
			t.Fatalf("state = %v", s.State())
		}
		if _, _, on := b.Timer.Snapshot(); on {
			t.Fatal("trigger enabled although arming failed")
		}
		// no rollback: the route is kept for the next attempt
		b.DMA.FailArm = nil
		route := s.Variant().(*ScanVariant).Route()
		if err := s.Start(make([]uint16, 4)); err != nil {
			t.Fatal(err)
		}
		if got := s.Variant().(*ScanVariant).Route(); got != route {
			t.Fatalf("route %d, want reused %d", got, route)
		}
	})
	t.Run("already running", func(t *testing.T) {
		s, _ := newScanSession(t)
		_ = s.Init(4, 3000, cb, nil)
		_ = s.AddInput(ScanInput{})
		_ = s.Start(make([]uint16, 4))
		if err := s.Start(make([]uint16, 4)); errcode.Of(err) != errcode.Busy {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestClampedTriggerStillStarts(t *testing.T) {
	b := adcsim.NewBoard()
	s := New(b.DMA, NewScan(adcsim.NewTimer(100_000_000), b.Router, b.Scan))
	_ = s.Init(4, 1, func(b []uint16, _ uint16, _ any) []uint16 { return b }, nil)
	_ = s.AddInput(ScanInput{})
	if err := s.Start(make([]uint16, 4)); err != nil {
		t.Fatalf("clamped start failed: %v", err)
	}
	if tr := s.Trigger(); !tr.Clamped || tr.Prescale != MaxPrescale || tr.Top != MaxTop {
		t.Fatalf("trigger = %+v", tr)
	}
}

func TestLifecycleGuards(t *testing.T) {
	s, b := newScanSession(t)
	cb := func(b []uint16, _ uint16, _ any) []uint16 { return b }
	if err := s.AddInput(ScanInput{}); errcode.Of(err) != errcode.NotInitialized {
		t.Fatalf("add before init: %v", err)
	}
	if err := s.Deinit(); errcode.Of(err) != errcode.NotInitialized {
		t.Fatalf("deinit before init: %v", err)
	}
	if err := s.Init(4, 3000, nil, nil); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("nil callback: %v", err)
	}
	if err := s.Init(4, 3000, cb, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Init(4, 3000, cb, nil); errcode.Of(err) != errcode.Busy {
		t.Fatalf("re-init: %v", err)
	}
	if err := s.AddInput(SingleInput{}); errcode.Of(err) != errcode.Unsupported {
		t.Fatalf("wrong input kind: %v", err)
	}
	_ = s.AddInput(ScanInput{})
	_ = s.Start(make([]uint16, 4))
	if err := s.AddInput(ScanInput{}); errcode.Of(err) != errcode.Busy {
		t.Fatalf("add while running: %v", err)
	}
	if err := s.Deinit(); errcode.Of(err) != errcode.Busy {
		t.Fatalf("deinit while running: %v", err)
	}
	s.Stop()
	s.Stop()
	if s.Stats().Stops != 1 {
		t.Fatalf("stops = %d", s.Stats().Stops)
	}
	if err := s.Deinit(); err != nil {
		t.Fatal(err)
	}
	if b.DMA.Allocated() != 0 {
		t.Fatal("dma channel not freed")
	}
}

func TestInitPanicsWithoutDMAChannel(t *testing.T) {
	b := adcsim.NewBoard()
	eng := adcsim.NewEngine(1)
	if _, err := eng.AllocateChannel(); err != nil {
		t.Fatal(err)
	}
	s := New(eng, NewScan(b.Timer, b.Router, b.Scan))
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	_ = s.Init(4, 3000, func(b []uint16, _ uint16, _ any) []uint16 { return b }, nil)
}

func TestRestartReproducesFirstBuffer(t *testing.T) {
	s, b := newScanSession(t)
	bufA := make([]uint16, 100)
	bufB := make([]uint16, 100)
	for round := 0; round < 10; round++ {
		var calls []call
		if err := s.Init(100, 3000, pingPong(bufA, bufB, &calls), nil); err != nil {
			t.Fatalf("round %d init: %v", round, err)
		}
		_ = s.AddInput(ScanInput{Group: 0, Sel: 8})
		if err := s.Start(bufA); err != nil {
			t.Fatalf("round %d start: %v", round, err)
		}
		b.Tick()
		s.Stop()
		if err := s.Deinit(); err != nil {
			t.Fatalf("round %d deinit: %v", round, err)
		}
		if len(calls) != 1 || &calls[0].buf[0] != &bufA[0] || calls[0].count != 100 {
			t.Fatalf("round %d: first delivery differs", round)
		}
		if n := len(s.Variant().(*ScanVariant).Inputs()); n != 1 {
			t.Fatalf("round %d: %d inputs, want 1", round, n)
		}
	}
	if b.DMA.Allocated() != 0 {
		t.Fatal("channels leaked")
	}
	if _, ok := b.Router.Alloc(); !ok {
		t.Fatal("routes leaked")
	}
}

func TestScanOrderIsInsertionOrder(t *testing.T) {
	s, b := newScanSession(t)
	_ = s.Init(3, 3000, func(b []uint16, _ uint16, _ any) []uint16 { return b }, nil)
	for _, sel := range []uint8{5, 2, 9} {
		_ = s.AddInput(ScanInput{Group: 3, Sel: sel})
	}
	buf := make([]uint16, 3)
	_ = s.Start(buf)
	b.Tick()
	for i, want := range []uint16{5, 2, 9} {
		if buf[i]>>8 != want {
			t.Fatalf("slot %d sel = %d, want %d", i, buf[i]>>8, want)
		}
	}
}

func TestTimerVariant(t *testing.T) {
	b := adcsim.NewBoard()
	v := NewTimer(b.IADC)
	s := New(b.DMA, v)
	bufA := make([]uint16, 10)
	bufB := make([]uint16, 10)
	var calls []call
	if err := s.Init(10, 3000, pingPong(bufA, bufB, &calls), nil); err != nil {
		t.Fatal(err)
	}
	pad := b.Pads["gpio26"]
	if err := s.AddInput(SingleInput{Pos: 1, BusAlloc: 0x10, BusReg: pad}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddInput(SingleInput{Pos: 2, BusAlloc: 0x20, BusReg: pad}); err != nil {
		t.Fatal(err)
	}
	if v.Input().Pos != 2 || b.IADC.Input() != 2 || pad.Get() != 0x20 {
		t.Fatalf("input=%d hw=%d pad=%#x", v.Input().Pos, b.IADC.Input(), pad.Get())
	}
	if err := s.AddInput(ScanInput{}); errcode.Of(err) != errcode.Unsupported {
		t.Fatalf("scan input on timer variant: %v", err)
	}

	if err := s.Start(bufA); err != nil {
		t.Fatal(err)
	}
	cfg := b.IADC.Config()
	if cfg.TimerCycles != 333 || cfg.Pos != 2 || !cfg.TriggerTimer || cfg.DataValidLevel != 1 || !cfg.Start {
		t.Fatalf("iadc config = %+v", cfg)
	}
	if tr := s.Trigger(); tr.Cycles != 333 || tr.Prescale != 0 {
		t.Fatalf("trigger = %+v", tr)
	}
	if !b.IADC.TimerOn() {
		t.Fatal("internal timer not enabled")
	}
	b.Tick()
	b.Tick()
	if len(calls) != 2 || &calls[1].buf[0] != &bufB[0] {
		t.Fatal("expected bufA then bufB")
	}
	if bufA[0]>>8 != 2 {
		t.Fatalf("sample %#x not from input 2", bufA[0])
	}

	s.Stop()
	if b.IADC.TimerOn() {
		t.Fatal("timer still on after stop")
	}
	cmds := b.IADC.Commands()
	if len(cmds) != 2 || cmds[0] != hw.CmdEnableTimer || cmds[1] != hw.CmdDisableTimer {
		t.Fatalf("commands = %v", cmds)
	}
	if err := s.Deinit(); err != nil {
		t.Fatal(err)
	}
}

func TestEngineSeesSixteenBitPingPongRequest(t *testing.T) {
	s, b := newScanSession(t)
	_ = s.Init(5, 3000, func(b []uint16, _ uint16, _ any) []uint16 { return b }, nil)
	_ = s.AddInput(ScanInput{})
	_ = s.Start(make([]uint16, 8))
	tr, ok := b.DMA.Inflight(0)
	if !ok {
		t.Fatal("nothing armed")
	}
	if tr.Count != 5 || len(tr.Dst) != 5 || tr.Signal != adcsim.SignalScan || tr.Src != adcsim.ScanDataAddr || !tr.PingPong {
		t.Fatalf("transfer = %+v", tr)
	}
	var _ dmadrv.Engine = b.DMA
}

// Package adcdma streams ADC samples into caller-owned buffers with
// DMA, one buffer in flight at a time, triggered at a fixed rate.
//
// A Session is bound to a DMA engine and a trigger Variant. Each time a
// transfer completes the session's Callback receives the filled buffer
// and returns the next one to fill; returning nil stops sampling.
//
//	s := adcdma.New(engine, adcdma.NewScan(timer, router, adc))
//	s.Init(100, 3000, cb, nil)
//	s.AddInput(adcdma.ScanInput{Group: 0, Sel: 8})
//	s.Start(bufA)
//
// Init, AddInput, Start, Stop and Deinit must be called from one context.
// Stop may also be called from the Callback.
package adcdma

import (
	"sync/atomic"

	"adcstream-go/drivers/dmadrv"
	"adcstream-go/errcode"
	"adcstream-go/x/logx"
)

// Callback receives a filled buffer in interrupt context and returns the
// buffer to fill next, or nil to stop. It must return quickly.
type Callback func(buf []uint16, count uint16, user any) []uint16

type State uint32

const (
	Uninitialized State = iota
	Configured
	Running
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Configured:
		return "configured"
	case Running:
		return "running"
	}
	return "invalid"
}

// Stats counts handler activity since New.
type Stats struct {
	Completions uint32 // transfers delivered to the callback
	Rearms      uint32
	Stops       uint32 // running sessions halted by Stop
	Stray       uint32 // completions ignored after stop or for a stale buffer
}

type Option func(*Session)

// WithLogger replaces the default "adcdma" logger.
func WithLogger(l *logx.Logger) Option { return func(s *Session) { s.log = l } }

type Session struct {
	eng dmadrv.Engine
	v   Variant
	log *logx.Logger

	state atomic.Uint32
	ch    dmadrv.Channel
	count uint16
	freq  uint16
	cb    Callback
	user  any
	trig  TriggerInfo

	// armed is &buf[0] of the buffer owned by the DMA engine.
	armed atomic.Pointer[uint16]
	done  dmadrv.Handler

	completions atomic.Uint32
	rearms      atomic.Uint32
	stops       atomic.Uint32
	stray       atomic.Uint32
}

func New(eng dmadrv.Engine, v Variant, opts ...Option) *Session {
	s := &Session{eng: eng, v: v, log: logx.New("adcdma")}
	for _, o := range opts {
		o(s)
	}
	// Bound once so arming from the handler does not allocate.
	s.done = s.complete
	return s
}

func (s *Session) State() State         { return State(s.state.Load()) }
func (s *Session) Count() uint16        { return s.count }
func (s *Session) Frequency() uint16    { return s.freq }
func (s *Session) Trigger() TriggerInfo { return s.trig }
func (s *Session) Variant() Variant     { return s.v }

func (s *Session) Stats() Stats {
	return Stats{
		Completions: s.completions.Load(),
		Rearms:      s.rearms.Load(),
		Stops:       s.stops.Load(),
		Stray:       s.stray.Load(),
	}
}

// Init takes a DMA channel and stores the session parameters. It panics
// if the engine has no free channel: the session cannot work without one.
func (s *Session) Init(count, freq uint16, cb Callback, user any) error {
	if s.State() != Uninitialized {
		return &errcode.E{C: errcode.Busy, Op: "init", Msg: "already initialised"}
	}
	if cb == nil {
		return &errcode.E{C: errcode.InvalidParams, Op: "init", Msg: "nil callback"}
	}
	ch, err := s.eng.AllocateChannel()
	if err != nil {
		panic("adcdma: dma: " + err.Error())
	}
	s.ch = ch
	s.count = count
	s.freq = freq
	s.cb = cb
	s.user = user
	s.trig = TriggerInfo{}
	s.v.Reset()
	s.state.Store(uint32(Configured))
	s.log.Debug("init", logx.U("dma", uint64(ch)), logx.U("count", uint64(count)), logx.U("freq", uint64(freq)))
	return nil
}

// AddInput registers an input with the variant. Only valid while
// configured and not running.
func (s *Session) AddInput(in Input) error {
	switch s.State() {
	case Uninitialized:
		return &errcode.E{C: errcode.NotInitialized, Op: "add_input"}
	case Running:
		return &errcode.E{C: errcode.Busy, Op: "add_input", Msg: "sampling running"}
	}
	return s.v.AddInput(in)
}

// Start configures the converter, builds the trigger chain, arms the
// first transfer into buf and enables the trigger, in that order. State
// already written to the peripheral is not rolled back on failure.
func (s *Session) Start(buf []uint16) error {
	switch s.State() {
	case Uninitialized:
		return &errcode.E{C: errcode.NotInitialized, Op: "start"}
	case Running:
		return &errcode.E{C: errcode.Busy, Op: "start", Msg: "already running"}
	}
	if s.freq == 0 || s.count == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "start", Msg: "zero frequency or count"}
	}
	if len(buf) < int(s.count) {
		return &errcode.E{C: errcode.InvalidParams, Op: "start", Msg: "buffer shorter than count"}
	}

	if err := s.v.Configure(s.freq); err != nil {
		s.log.Error("configure", logx.S("variant", s.v.Name()), logx.E(err))
		return err
	}
	info, err := s.v.BuildTrigger(s.freq)
	if errcode.Fatal(err) {
		s.log.Error("trigger", logx.S("variant", s.v.Name()), logx.E(err))
		return err
	}
	if info.Clamped {
		s.log.Warn("trigger clamped, rate off target",
			logx.U("freq", uint64(s.freq)), logx.U("effective", uint64(info.EffectiveHz)))
	}
	s.trig = info
	s.log.Debug("trigger",
		logx.U("prescale", uint64(info.Prescale)), logx.U("top", uint64(info.Top)),
		logx.U("cycles", uint64(info.Cycles)), logx.U("hz", uint64(info.EffectiveHz)))

	sig, src := s.v.DMA()
	s.log.Debug("dma", logx.U("ch", uint64(s.ch)), logx.U("signal", uint64(sig)), logx.X("src", uint32(src)))

	// Running before arming: the first completion must not look stray.
	s.state.Store(uint32(Running))
	if err := s.arm(buf); err != nil {
		s.state.Store(uint32(Configured))
		s.log.Error("dma", logx.E(err))
		return err
	}
	s.v.EnableTrigger()
	return nil
}

// Stop halts the trigger, cancels the in-flight transfer, resets the
// converter and releases routing resources. It always reports false: the
// hardware may still complete one transfer, which the handler ignores.
func (s *Session) Stop() (confirmed bool) {
	if s.State() == Uninitialized {
		return false
	}
	if s.state.CompareAndSwap(uint32(Running), uint32(Configured)) {
		s.stops.Add(1)
	}
	s.armed.Store(nil)
	s.v.HaltTrigger()
	_ = s.eng.StopTransfer(s.ch)
	s.v.Release()
	return false
}

// Deinit returns the DMA channel. The session must be stopped.
func (s *Session) Deinit() error {
	switch s.State() {
	case Uninitialized:
		return &errcode.E{C: errcode.NotInitialized, Op: "deinit"}
	case Running:
		return &errcode.E{C: errcode.Busy, Op: "deinit", Msg: "stop first"}
	}
	err := s.eng.FreeChannel(s.ch)
	s.state.Store(uint32(Uninitialized))
	s.cb = nil
	s.user = nil
	return err
}

// arm requests one transfer of count samples into buf.
func (s *Session) arm(buf []uint16) error {
	if len(buf) < int(s.count) || s.count == 0 {
		return errcode.Wrap(errcode.ArmFailed, "arm", dmadrv.ErrBadTransfer)
	}
	sig, src := s.v.DMA()
	s.armed.Store(&buf[0])
	err := s.eng.PeripheralMemory(s.ch, sig, buf[:s.count], src, true, s.count, dmadrv.DataSize2, s.done)
	if err != nil {
		s.armed.Store(nil)
		return errcode.Wrap(errcode.ArmFailed, "arm", err)
	}
	return nil
}

// complete is the DMA completion handler. It never asks the engine for its
// built-in ping-pong: the callback picks the next buffer.
func (s *Session) complete(_ dmadrv.Channel, _ uint32, buf []uint16) bool {
	if s.State() != Running || len(buf) == 0 || s.armed.Load() != &buf[0] {
		s.stray.Add(1)
		return false
	}
	s.completions.Add(1)
	next := s.cb(buf, s.count, s.user)
	if s.State() != Running {
		// The callback stopped the session itself.
		return false
	}
	if next == nil || s.arm(next) != nil {
		s.Stop()
		return false
	}
	s.rearms.Add(1)
	return false
}

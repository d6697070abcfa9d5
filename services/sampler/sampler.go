// Package sampler runs a continuous sampling session from a profile and
// streams every filled block as a frame to a writer.
package sampler

import (
	"context"
	"io"
	"time"

	"adcstream-go/drivers/adcdma"
	"adcstream-go/errcode"
	"adcstream-go/frame"
	"adcstream-go/internal/platform"
	"adcstream-go/services/config"
	"adcstream-go/x/logx"
)

const defaultStatsEvery = 10 * time.Second

type Service struct {
	Profile config.Profile
	HW      platform.Hardware
	Out     io.Writer

	// StatsEvery is the period of the stats log line and halt check.
	StatsEvery time.Duration

	log *logx.Logger
}

func New(p config.Profile, hw platform.Hardware, out io.Writer) *Service {
	return &Service{
		Profile:    p,
		HW:         hw,
		Out:        out,
		StatsEvery: defaultStatsEvery,
		log:        logx.New("sampler"),
	}
}

// Build constructs the session variant and input list for the profile on
// the given hardware.
func Build(p config.Profile, hw platform.Hardware) (adcdma.Variant, []adcdma.Input, error) {
	unsupported := func(msg string) error {
		return &errcode.E{C: errcode.Unsupported, Op: "build", Msg: msg}
	}
	switch p.Variant {
	case config.VariantScan:
		if hw.Timer == nil || hw.Router == nil || hw.ScanADC == nil {
			return nil, nil, unsupported("no scan hardware on " + hw.Device)
		}
		ins := make([]adcdma.Input, 0, len(p.Scan))
		for _, s := range p.Scan {
			ins = append(ins, adcdma.ScanInput{Group: s.Group, Sel: s.Sel})
		}
		return adcdma.NewScan(hw.Timer, hw.Router, hw.ScanADC), ins, nil
	case config.VariantTimer:
		if hw.IADC == nil {
			return nil, nil, unsupported("no timer-triggered converter on " + hw.Device)
		}
		if p.Single == nil {
			return nil, nil, &errcode.E{C: errcode.InvalidParams, Op: "build", Msg: "timer profile without input"}
		}
		in := adcdma.SingleInput{Pos: p.Single.Pos, BusAlloc: p.Single.BusAlloc}
		if p.Single.Bus != "" {
			reg, ok := hw.Register(p.Single.Bus)
			if !ok {
				return nil, nil, &errcode.E{C: errcode.InvalidParams, Op: "build", Msg: "unknown bus register " + p.Single.Bus}
			}
			in.BusReg = reg
		}
		return adcdma.NewTimer(hw.IADC), []adcdma.Input{in}, nil
	}
	return nil, nil, unsupported("variant " + p.Variant)
}

// Run samples until ctx is done or sampling halts on its own. The session
// is stopped and released before Run returns.
func (s *Service) Run(ctx context.Context) error {
	p := s.Profile
	v, inputs, err := Build(p, s.HW)
	if err != nil {
		return err
	}
	h := NewHandoff(p.Count, p.Buffers)
	sess := adcdma.New(s.HW.DMA, v)
	if err := sess.Init(p.Count, p.Frequency, h.Callback, nil); err != nil {
		return err
	}
	defer func() {
		h.Close()
		sess.Stop()
		_ = sess.Deinit()
	}()
	for _, in := range inputs {
		if err := sess.AddInput(in); err != nil {
			return err
		}
	}
	if err := sess.Start(h.First()); err != nil {
		return err
	}
	tr := sess.Trigger()
	s.log.Info("sampling",
		logx.S("variant", v.Name()), logx.U("count", uint64(p.Count)),
		logx.U("freq", uint64(p.Frequency)), logx.U("effective", uint64(tr.EffectiveHz)))

	every := s.StatsEvery
	if every <= 0 {
		every = defaultStatsEvery
	}
	tick := time.NewTicker(every)
	defer tick.Stop()

	fb := make([]byte, 0, frame.Size(int(p.Count)))
	for {
		select {
		case <-ctx.Done():
			s.logStats(sess, h)
			return nil
		case b := <-h.Blocks():
			fb = frame.Append(fb[:0], uint16(b.Seq), b.Buf)
			h.Release(b.Buf)
			if _, err := s.Out.Write(fb); err != nil {
				s.log.Warn("frame write", logx.U("seq", uint64(b.Seq)), logx.E(err))
			}
		case <-tick.C:
			s.logStats(sess, h)
			if sess.State() != adcdma.Running {
				return &errcode.E{C: errcode.Error, Op: "sampler", Msg: "sampling halted"}
			}
		}
	}
}

func (s *Service) logStats(sess *adcdma.Session, h *Handoff) {
	st := sess.Stats()
	s.log.Info("stats",
		logx.U("blocks", uint64(st.Completions)), logx.U("overruns", uint64(h.Overruns())),
		logx.U("stray", uint64(st.Stray)), logx.S("state", sess.State().String()))
}

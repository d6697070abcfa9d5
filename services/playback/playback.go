// Package playback replays a recorded sample table through a DAC at a fixed
// update rate, looping forever.
package playback

import (
	"context"
	"time"

	"adcstream-go/drivers/mcp4725"
	"adcstream-go/errcode"
	"adcstream-go/x/logx"
	"adcstream-go/x/mathx"
	"adcstream-go/x/timex"
)

const (
	DefaultFrequency  = 3000
	DefaultRetryDelay = 5 * time.Second
)

// DAC is the output side of the player.
type DAC interface {
	Set(value uint16) error
}

type Player struct {
	DAC       DAC
	Frequency uint32

	// InputMax, when non-zero, is the full-scale value of the recorded
	// samples; they are rescaled to the DAC range. Otherwise samples above
	// the DAC range are clamped.
	InputMax uint16

	// RetryDelay is the pause after a failed write.
	RetryDelay time.Duration

	// Passes counts completed loops over the table.
	Passes uint32
	// Errors counts failed writes.
	Errors uint32

	log *logx.Logger
}

func New(dac DAC, freq uint32) *Player {
	if freq == 0 {
		freq = DefaultFrequency
	}
	return &Player{
		DAC:        dac,
		Frequency:  freq,
		RetryDelay: DefaultRetryDelay,
		log:        logx.New("playback"),
	}
}

func (p *Player) code(v uint16) uint16 {
	if p.InputMax != 0 {
		return mathx.MapU16(v, 0, p.InputMax, 0, mcp4725.MaxValue)
	}
	return mathx.Min(v, mcp4725.MaxValue)
}

// Run writes samples in order, one per tick, wrapping at the end, until ctx
// is done. The average update rate is logged after every pass.
func (p *Player) Run(ctx context.Context, samples []uint16) error {
	if len(samples) == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "playback", Msg: "no samples"}
	}
	if p.log == nil {
		p.log = logx.New("playback")
	}
	tick := time.NewTicker(timex.PeriodFromHz(p.Frequency))
	defer tick.Stop()

	p.log.Info("start", logx.U("samples", uint64(len(samples))), logx.U("hz", uint64(p.Frequency)))
	i := 0
	passStart := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}

		v := samples[i]
		i++
		if i >= len(samples) {
			i = 0
			p.Passes++
			now := time.Now()
			p.log.Info("pass", logx.U("avg_hz", uint64(timex.RateHz(len(samples), now.Sub(passStart)))))
			passStart = now
		}

		if err := p.DAC.Set(p.code(v)); err != nil {
			p.Errors++
			p.log.Error("dac write", logx.E(err))
			if !sleepCtx(ctx, p.RetryDelay) {
				return nil
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// adcdemo repeatedly captures two blocks of samples into a pair of static
// buffers and logs them, then tears the session down and starts over.
package main

import (
	"context"
	"time"

	"adcstream-go/drivers/adcdma"
	"adcstream-go/internal/platform"
	"adcstream-go/services/config"
	"adcstream-go/services/sampler"
	"adcstream-go/x/logx"
)

const rounds = 10

var (
	data1 [100]uint16
	data2 [100]uint16

	filled = make(chan []uint16, 2)
)

// onBlock hands the second buffer back after the first fills, then stops.
func onBlock(buf []uint16, count uint16, _ any) []uint16 {
	select {
	case filled <- buf:
	default:
	}
	if &buf[0] == &data1[0] {
		return data2[:]
	}
	return nil
}

func main() {
	time.Sleep(2 * time.Second)
	log := logx.New("demo")
	_ = logx.SetLevel("debug")

	hw := platform.Default()
	prof, err := config.Lookup(hw.Device)
	if err != nil {
		log.Error("profile", logx.E(err))
		return
	}
	hw.Start(context.Background())

	for i := 0; i < rounds; i++ {
		if err := round(hw, prof, log); err != nil {
			log.Error("round", logx.I("round", int64(i)), logx.E(err))
		} else {
			log.Info("done", logx.I("round", int64(i)))
		}
		time.Sleep(time.Second)
	}
	for {
		time.Sleep(time.Hour)
	}
}

// round runs one init → start → two buffers → stop → deinit cycle. A
// failed start is still stopped so the trigger route is handed back.
func round(hw platform.Hardware, prof config.Profile, log *logx.Logger) error {
	v, inputs, err := sampler.Build(prof, hw)
	if err != nil {
		return err
	}
	s := adcdma.New(hw.DMA, v)
	if err := s.Init(uint16(len(data1)), prof.Frequency, onBlock, nil); err != nil {
		return err
	}
	for _, in := range inputs[:1] {
		if err := s.AddInput(in); err != nil {
			log.Warn("input", logx.E(err))
		}
	}
	if err := s.Start(data1[:]); err != nil {
		s.Stop()
		_ = s.Deinit()
		return err
	}

	for _, name := range []string{"data1", "data2"} {
		buf := <-filled
		for j, v := range buf {
			log.Debug(name, logx.I("i", int64(j)), logx.U("v", uint64(v)))
		}
	}

	s.Stop()
	return s.Deinit()
}

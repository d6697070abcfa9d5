package main

import (
	"context"
	"time"

	"adcstream-go/internal/platform"
	"adcstream-go/services/config"
	"adcstream-go/services/sampler"
	"adcstream-go/x/logx"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	log := logx.New("main")

	hw := platform.Default()
	prof, err := config.Lookup(hw.Device)
	if err != nil {
		log.Error("profile", logx.S("device", hw.Device), logx.E(err))
		halt()
	}
	if prof.LogLevel != "" {
		if err := logx.SetLevel(prof.LogLevel); err != nil {
			log.Warn("log level", logx.E(err))
		}
	}

	ctx := context.Background()
	hw.Start(ctx)

	svc := sampler.New(prof, hw, hw.Out)
	for {
		err := svc.Run(ctx)
		log.Error("sampler stopped", logx.E(err))
		time.Sleep(time.Second)
	}
}

func halt() {
	for {
		time.Sleep(time.Hour)
	}
}

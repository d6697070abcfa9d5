//go:build rp2040

// dac-playback replays an embedded sample table through an MCP4725 on i2c0
// so a sampling board can be fed a known waveform.
package main

import (
	"context"
	"time"

	"machine"

	"adcstream-go/drivers/mcp4725"
	"adcstream-go/services/playback"
	"adcstream-go/x/logx"
)

const (
	// dacAddress is the MCP4725 with A0 tied low.
	dacAddress   = mcp4725.Address
	i2cFrequency = 400 * machine.KHz
	// updateHz is the rate codes are written to the DAC.
	updateHz = playback.DefaultFrequency
)

var (
	dacBus = machine.I2C0
	dacSDA = machine.I2C0_SDA_PIN
	dacSCL = machine.I2C0_SCL_PIN
)

func main() {
	time.Sleep(2 * time.Second)
	log := logx.New("main")

	if err := dacBus.Configure(machine.I2CConfig{
		Frequency: i2cFrequency,
		SDA:       dacSDA,
		SCL:       dacSCL,
	}); err != nil {
		log.Error("i2c configure", logx.E(err))
	}

	samples, bad, err := loadTable()
	if err != nil {
		log.Error("sample table", logx.E(err), logx.I("bad", int64(bad)))
		for {
			time.Sleep(time.Hour)
		}
	}

	dac := mcp4725.New(dacBus)
	dac.Address = dacAddress
	p := playback.New(dac, updateHz)
	_ = p.Run(context.Background(), samples)
}

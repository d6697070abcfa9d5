package main

import (
	_ "embed"
	"strings"

	"adcstream-go/errcode"
	"adcstream-go/services/playback"
)

// table is one period of a sine scaled to the DAC's 12-bit range, one
// decimal code per line.
//
//go:embed samples.txt
var table string

// loadTable parses the embedded waveform. Bad lines are reported by count;
// a table with no usable samples is an error.
func loadTable() ([]uint16, int, error) {
	samples, bad, err := playback.ParseSamples(strings.NewReader(table))
	if err != nil {
		return nil, bad, err
	}
	if len(samples) == 0 {
		return nil, bad, &errcode.E{C: errcode.InvalidParams, Op: "dac-playback", Msg: "empty sample table"}
	}
	return samples, bad, nil
}

//go:build !rp2040

package main

import (
	"testing"

	"adcstream-go/drivers/mcp4725"
)

func TestEmbeddedTableFitsDAC(t *testing.T) {
	samples, bad, err := loadTable()
	if err != nil {
		t.Fatalf("loadTable: %v", err)
	}
	if bad != 0 {
		t.Fatalf("bad lines = %d, want 0", bad)
	}
	if len(samples) != 100 {
		t.Fatalf("samples = %d, want 100", len(samples))
	}
	if samples[0] != 2048 {
		t.Fatalf("first sample = %d, want 2048 (sine starts at midscale)", samples[0])
	}
	for i, v := range samples {
		if v > mcp4725.MaxValue {
			t.Fatalf("sample %d = %d, above DAC range", i, v)
		}
	}
}

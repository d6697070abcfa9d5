//go:build !rp2040

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "dac-playback drives an i2c DAC and only runs on rp2040 targets")
	os.Exit(1)
}

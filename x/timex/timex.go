package timex

import "time"

// PeriodFromHz returns the tick period for freqHz. 0 is treated as 1 Hz.
func PeriodFromHz(freqHz uint32) time.Duration {
	if freqHz == 0 {
		freqHz = 1
	}
	return time.Duration(uint64(time.Second) / uint64(freqHz))
}

// RateHz returns the average rate of n events over d, rounded down.
func RateHz(n int, d time.Duration) uint32 {
	if d <= 0 || n <= 0 {
		return 0
	}
	return uint32(uint64(n) * uint64(time.Second) / uint64(d))
}

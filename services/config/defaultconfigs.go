package config

// -----------------------------------------------------------------------------
// Embedded profiles
// Key: device name reported by the platform
// Val: raw JSON profile
// -----------------------------------------------------------------------------

// GP26 (ADC0) with the pad's digital input disabled (OD set, IE clear).
const cfgPico = `{
  "variant": "timer",
  "count": 100,
  "frequency": 3000,
  "buffers": 4,
  "single": {"pos": 0, "bus_alloc": 128, "bus": "gpio26"},
  "log_level": "info"
}`

// Group 0 / APORT3X channel 8 (PA0 on EFR32 boards).
const cfgSim = `{
  "variant": "scan",
  "count": 100,
  "frequency": 3000,
  "buffers": 2,
  "scan": [{"group": 0, "sel": 8}],
  "log_level": "debug"
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
	"sim":  []byte(cfgSim),
}

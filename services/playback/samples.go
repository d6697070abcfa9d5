package playback

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"adcstream-go/x/logx"
)

// ParseSamples reads one decimal sample per line. Blank lines are ignored.
// Lines that do not parse as an unsigned 16-bit value are logged and
// counted in bad; they never abort the read.
func ParseSamples(r io.Reader) (samples []uint16, bad int, err error) {
	log := logx.New("playback")
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		v, perr := strconv.ParseUint(s, 10, 16)
		if perr != nil {
			bad++
			log.Warn("bad line", logx.I("line", int64(line)), logx.S("text", s))
			continue
		}
		samples = append(samples, uint16(v))
	}
	return samples, bad, sc.Err()
}

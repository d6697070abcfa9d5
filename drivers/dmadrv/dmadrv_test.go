package dmadrv

import (
	"errors"
	"testing"
)

func TestCheckTransfer(t *testing.T) {
	buf := make([]uint16, 8)
	h := func(Channel, uint32, []uint16) bool { return false }
	cases := []struct {
		name  string
		dst   []uint16
		count uint16
		size  DataSize
		done  Handler
		want  error
	}{
		{"ok", buf, 8, DataSize2, h, nil},
		{"partial", buf, 4, DataSize2, h, nil},
		{"zero count", buf, 0, DataSize2, h, ErrBadTransfer},
		{"short buffer", buf, 9, DataSize2, h, ErrBadTransfer},
		{"nil handler", buf, 8, DataSize2, nil, ErrBadTransfer},
		{"byte size", buf, 8, DataSize1, h, ErrUnsupportedSz},
	}
	for _, c := range cases {
		err := CheckTransfer(c.dst, c.count, c.size, c.done)
		if !errors.Is(err, c.want) {
			t.Fatalf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
}

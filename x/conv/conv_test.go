package conv

import (
	"math"
	"testing"
)

func TestAppendUint(t *testing.T) {
	cases := map[uint64]string{
		0:              "0",
		7:              "7",
		6333:           "6333",
		math.MaxUint64: "18446744073709551615",
	}
	for n, want := range cases {
		if got := string(AppendUint(nil, n)); got != want {
			t.Fatalf("AppendUint(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestAppendInt(t *testing.T) {
	buf := make([]byte, 0, 32)
	buf = AppendInt(buf, -42)
	buf = append(buf, ' ')
	buf = AppendInt(buf, math.MinInt64)
	if got, want := string(buf), "-42 -9223372036854775808"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAppendHex32(t *testing.T) {
	if got := string(AppendHex32([]byte("src="), 0x4004C00C)); got != "src=0x4004C00C" {
		t.Fatalf("got %q", got)
	}
	if got := string(AppendHex32(nil, 0)); got != "0x00000000" {
		t.Fatalf("got %q", got)
	}
}

package errcode

import (
	"errors"
	"testing"
)

func TestOf(t *testing.T) {
	cause := errors.New("engine said no")
	cases := []struct {
		err  error
		want Code
	}{
		{nil, OK},
		{Busy, Busy},
		{&E{C: NoRoute, Op: "start"}, NoRoute},
		{Wrap(ArmFailed, "arm", cause), ArmFailed},
		{cause, Error},
	}
	for _, c := range cases {
		if got := Of(c.err); got != c.want {
			t.Fatalf("Of(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestWrapMatchesCodeAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ArmFailed, "arm", cause)
	if !errors.Is(err, ArmFailed) {
		t.Fatal("errors.Is should match the code")
	}
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is should match the cause")
	}
	if got, want := err.Error(), "arm: arm_failed: boom"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestFatal(t *testing.T) {
	if Fatal(nil) || Fatal(TopClamped) {
		t.Fatal("nil and TopClamped are not fatal")
	}
	if !Fatal(NoRoute) || !Fatal(errors.New("x")) {
		t.Fatal("NoRoute and unknown errors are fatal")
	}
}

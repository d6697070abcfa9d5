// Package logx is a small levelled logger for firmware and host code.
//
// Lines look like "[sampler] warn: top clamped top=65535" and are built in a
// fixed buffer with x/conv, so no fmt is pulled into MCU images. The default
// sink is the runtime's print, the same channel println uses.
package logx

import (
	"errors"
	"io"
	"sync/atomic"

	"adcstream-go/x/conv"
)

type Level int32

const (
	ErrorLevel Level = iota
	WarnLevel
	InfoLevel
	DebugLevel
)

const HelpLevels = "must be one of: error, warning, info, debug"

var ErrLevel = errors.New("logx: unknown level, " + HelpLevels)

var (
	level atomic.Int32
	sink  atomic.Pointer[io.Writer]
)

func init() { level.Store(int32(InfoLevel)) }

// ParseLevel accepts error, warning (or warn), info and debug.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "error":
		return ErrorLevel, nil
	case "warning", "warn":
		return WarnLevel, nil
	case "info":
		return InfoLevel, nil
	case "debug":
		return DebugLevel, nil
	}
	return InfoLevel, ErrLevel
}

func SetLevel(s string) error {
	lv, err := ParseLevel(s)
	if err != nil {
		return err
	}
	level.Store(int32(lv))
	return nil
}

// SetOutput redirects all loggers. nil restores the runtime print sink.
func SetOutput(w io.Writer) {
	if w == nil {
		sink.Store(nil)
		return
	}
	sink.Store(&w)
}

// Enabled reports whether lines at lv are currently emitted.
func Enabled(lv Level) bool { return lv <= Level(level.Load()) }

type printSink struct{}

func (printSink) Write(p []byte) (int, error) {
	print(string(p))
	return len(p), nil
}

func out() io.Writer {
	if w := sink.Load(); w != nil {
		return *w
	}
	return printSink{}
}

type kind uint8

const (
	kindUint kind = iota
	kindInt
	kindStr
	kindHex
	kindErr
)

// Field is a key/value pair appended to a log line.
type Field struct {
	key string
	k   kind
	u   uint64
	s   string
}

func U(key string, v uint64) Field { return Field{key: key, k: kindUint, u: v} }

func I(key string, v int64) Field { return Field{key: key, k: kindInt, u: uint64(v)} }

func S(key, v string) Field { return Field{key: key, k: kindStr, s: v} }

func X(key string, v uint32) Field { return Field{key: key, k: kindHex, u: uint64(v)} }

func E(err error) Field {
	if err == nil {
		return Field{key: "err", k: kindStr, s: "nil"}
	}
	return Field{key: "err", k: kindErr, s: err.Error()}
}

// Logger prefixes every line with its module name.
type Logger struct {
	module string
}

func New(module string) *Logger { return &Logger{module: module} }

func (l *Logger) Error(msg string, f ...Field) { l.log(ErrorLevel, "error: ", msg, f) }
func (l *Logger) Warn(msg string, f ...Field)  { l.log(WarnLevel, "warn: ", msg, f) }
func (l *Logger) Info(msg string, f ...Field)  { l.log(InfoLevel, "info: ", msg, f) }
func (l *Logger) Debug(msg string, f ...Field) { l.log(DebugLevel, "debug: ", msg, f) }

func (l *Logger) log(lv Level, tag, msg string, fields []Field) {
	if !Enabled(lv) {
		return
	}
	var arr [192]byte
	b := arr[:0]
	b = append(b, '[')
	b = append(b, l.module...)
	b = append(b, "] "...)
	b = append(b, tag...)
	b = append(b, msg...)
	for _, f := range fields {
		b = append(b, ' ')
		b = append(b, f.key...)
		b = append(b, '=')
		switch f.k {
		case kindUint:
			b = conv.AppendUint(b, f.u)
		case kindInt:
			b = conv.AppendInt(b, int64(f.u))
		case kindHex:
			b = conv.AppendHex32(b, uint32(f.u))
		default:
			b = append(b, f.s...)
		}
	}
	b = append(b, '\n')
	_, _ = out().Write(b)
}

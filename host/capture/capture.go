// Package capture receives the sample frame stream from a board over a
// serial link and stores it for later export.
package capture

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"

	"adcstream-go/frame"
	"adcstream-go/x/conv"
	"adcstream-go/x/logx"
)

var log = logx.New("capture")

// Stats summarises a recording.
type Stats struct {
	Frames  int
	Samples int
	// Lost counts frames missing from the sequence.
	Lost    int
	Skipped int
	Corrupt int
}

// Recorder writes frames decoded from a stream into a Store run.
type Recorder struct {
	Store *Store
	Run   string

	// Follow treats end of stream as a read timeout and keeps reading
	// until the context is done. Serial ports report a timeout this way.
	Follow bool

	// Limit stops the recording after this many frames when non-zero.
	Limit int
}

// followReader hides io.EOF from the scanner while ctx is live.
type followReader struct {
	ctx    context.Context
	r      io.Reader
	follow bool
}

func (f followReader) Read(p []byte) (int, error) {
	if err := f.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := f.r.Read(p)
	if f.follow && errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

// Record reads until the stream ends, the limit is reached or ctx is done.
func (r *Recorder) Record(ctx context.Context, src io.Reader) (Stats, error) {
	var st Stats
	if err := r.Store.NewRun(r.Run, time.Now()); err != nil {
		return st, err
	}
	sc := frame.NewScanner(followReader{ctx: ctx, r: src, follow: r.Follow})
	var last uint16
	for sc.Scan() {
		f := sc.Frame()
		if st.Frames > 0 {
			st.Lost += int(f.Seq - last - 1)
		}
		last = f.Seq
		if err := r.Store.Append(r.Run, f); err != nil {
			return st, err
		}
		st.Frames++
		st.Samples += len(f.Samples)
		log.Debug("frame", logx.U("seq", uint64(f.Seq)), logx.U("n", uint64(len(f.Samples))))
		if r.Limit > 0 && st.Frames >= r.Limit {
			break
		}
	}
	st.Skipped, st.Corrupt = sc.Skipped, sc.Corrupt
	log.Info("recorded",
		logx.S("run", r.Run),
		logx.U("frames", uint64(st.Frames)),
		logx.U("lost", uint64(st.Lost)),
		logx.U("corrupt", uint64(st.Corrupt)))

	err := sc.Err()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	return st, err
}

// Export writes the samples of run one per line, the format the playback
// tool reads.
func Export(s *Store, run string, w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	var line []byte
	err := s.Frames(run, func(f frame.Frame) error {
		for _, v := range f.Samples {
			line = conv.AppendUint(line[:0], uint64(v))
			line = append(line, '\n')
			if _, err := bw.Write(line); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return n, err
	}
	return n, bw.Flush()
}

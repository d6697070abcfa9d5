package capture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"adcstream-go/frame"
)

const (
	runsBucket   = "runs"
	runKeyPrefix = "run_"
)

var (
	ErrRunExists   = errors.New("capture: run already exists")
	ErrRunNotFound = errors.New("capture: run not found")
)

// Run describes one stored capture.
type Run struct {
	Name    string
	Started time.Time
	Frames  int
}

// Store keeps captured frames in a bbolt database, one bucket per run keyed
// by the big-endian arrival index.
type Store struct {
	DB *bbolt.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(runsBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error { return s.DB.Close() }

func bucketName(run string) []byte { return []byte(runKeyPrefix + run) }

func uint64ToByte(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// NewRun registers a run starting at t.
func (s *Store) NewRun(name string, t time.Time) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketName(name)) != nil {
			return fmt.Errorf("%w: %s", ErrRunExists, name)
		}
		if _, err := tx.CreateBucket(bucketName(name)); err != nil {
			return err
		}
		return tx.Bucket([]byte(runsBucket)).Put([]byte(name), uint64ToByte(uint64(t.UnixMilli())))
	})
}

// Append stores f at the next index of run.
func (s *Store) Append(run string, f frame.Frame) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName(run))
		if b == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, run)
		}
		idx, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(uint64ToByte(idx), frame.Append(nil, f.Seq, f.Samples))
	})
}

// Runs lists stored runs ordered by start time.
func (s *Store) Runs() ([]Run, error) {
	var runs []Run
	err := s.DB.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(runsBucket)).ForEach(func(k, v []byte) error {
			r := Run{Name: string(k)}
			if len(v) == 8 {
				r.Started = time.UnixMilli(int64(binary.BigEndian.Uint64(v)))
			}
			if b := tx.Bucket(bucketName(r.Name)); b != nil {
				r.Frames = b.Stats().KeyN
			}
			runs = append(runs, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Started.Before(runs[j].Started) })
	return runs, nil
}

// Frames calls fn for every frame of run in arrival order. Iteration stops
// at the first error fn returns.
func (s *Store) Frames(run string, fn func(f frame.Frame) error) error {
	return s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName(run))
		if b == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, run)
		}
		return b.ForEach(func(k, v []byte) error {
			f, _, err := frame.Decode(v)
			if err != nil {
				return fmt.Errorf("run %s frame %d: %w", run, binary.BigEndian.Uint64(k), err)
			}
			return fn(f)
		})
	})
}

// DeleteRun removes a run and its frames.
func (s *Store) DeleteRun(name string) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketName(name)); err != nil {
			if errors.Is(err, bbolt.ErrBucketNotFound) {
				return fmt.Errorf("%w: %s", ErrRunNotFound, name)
			}
			return err
		}
		return tx.Bucket([]byte(runsBucket)).Delete([]byte(name))
	})
}

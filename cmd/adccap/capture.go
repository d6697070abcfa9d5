package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"adcstream-go/host/capture"
)

const (
	PortOptionName   = "port"
	BaudOptionName   = "baud"
	FramesOptionName = "frames"
)

func NewCaptureCommand(cfg *capture.Config) *cobra.Command {
	var run, port string
	var baud, frames int
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Record frames from the serial port until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				cfg.Port = port
			}
			if baud != 0 {
				cfg.Baud = baud
			}
			if run == "" {
				run = time.Now().Format("20060102-150405")
			}

			p, err := capture.OpenPort(cfg.PortConfig())
			if err != nil {
				return err
			}
			defer p.Close()
			_ = p.Flush()

			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
				return err
			}
			store, err := capture.OpenStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			rec := &capture.Recorder{Store: store, Run: run, Follow: true, Limit: frames}
			st, err := rec.Record(ctx, p)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d frames, %d samples, %d lost, %d corrupt\n",
				run, st.Frames, st.Samples, st.Lost, st.Corrupt)
			return err
		},
	}
	cmd.Flags().StringVar(&run, RunOptionName, "", "Run name (default: start time)")
	cmd.Flags().StringVar(&port, PortOptionName, "", "Serial device, e.g. /dev/ttyACM0")
	cmd.Flags().IntVar(&baud, BaudOptionName, 0, "Baud rate")
	cmd.Flags().IntVar(&frames, FramesOptionName, 0, "Stop after this many frames (0 = until interrupted)")
	return cmd
}

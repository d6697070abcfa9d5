package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"adcstream-go/host/capture"
)

func NewRunsCommand(cfg *capture.Config) *cobra.Command {
	var del string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := capture.OpenStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()
			if del != "" {
				return store.DeleteRun(del)
			}
			runs, err := store.Runs()
			if err != nil {
				return err
			}
			for _, r := range runs {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s %6d frames\n", r.Name, r.Started.Format("2006-01-02 15:04:05"), r.Frames)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&del, "delete", "", "Delete the named run instead of listing")
	return cmd
}

func NewExportCommand(cfg *capture.Config) *cobra.Command {
	var run, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the samples of a run one per line, ready for dac-playback",
		RunE: func(cmd *cobra.Command, args []string) error {
			if run == "" {
				return fmt.Errorf("--%s is required", RunOptionName)
			}
			store, err := capture.OpenStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			n, err := capture.Export(store, run, w)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d samples\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&run, RunOptionName, "", "Run name")
	cmd.Flags().StringVarP(&out, "output", "o", "samples.txt", "Output file, - for stdout")
	return cmd
}

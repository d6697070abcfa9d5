package main

import (
	"io"

	"github.com/spf13/cobra"

	"adcstream-go/host/capture"
	"adcstream-go/x/logx"
)

const (
	LogLevelOptionName = "log-level"
	ConfigOptionName   = "config"
	RunOptionName      = "run"
)

func NewRootCommand(out io.Writer) *cobra.Command {
	var logLevel, cfgPath string
	cfg := capture.NewDefaultConfig()
	cmd := &cobra.Command{
		Use:          "adccap",
		Short:        "Capture and replay sample streams from an adcstream board",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath != "" {
				cfg.SetPath(cfgPath)
			}
			if err := cfg.Load(); err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			logx.SetOutput(cmd.ErrOrStderr())
			return logx.SetLevel(cfg.LogLevel)
		},
	}
	cmd.SetOut(out)
	cmd.AddCommand(NewConfigCommand(cfg))
	cmd.AddCommand(NewCaptureCommand(cfg))
	cmd.AddCommand(NewRunsCommand(cfg))
	cmd.AddCommand(NewExportCommand(cfg))
	cmd.PersistentFlags().StringVar(&logLevel, LogLevelOptionName, "", "Log level, "+logx.HelpLevels)
	cmd.PersistentFlags().StringVar(&cfgPath, ConfigOptionName, "", "Config file (default "+capture.DefaultConfigPath()+")")
	return cmd
}

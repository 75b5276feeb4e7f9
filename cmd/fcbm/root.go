package main

import (
	"io"

	"forest-cover-benchmark/internal/logger"
	"forest-cover-benchmark/internal/raster/drivers"

	"github.com/spf13/cobra"
)

// app carries what every command shares: output streams, the logger and the
// driver factory.
type app struct {
	out        io.Writer
	errOut     io.Writer
	log        logger.Logger
	logLevel   string
	logFormat  string
	openDriver func(name string, log logger.Logger) (drivers.Driver, error)

	// logged is set once a failing run has already been reported through log.
	logged bool
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:        out,
		errOut:     errOut,
		log:        logger.NewNop(),
		logLevel:   "info",
		logFormat:  string(logger.FormatConsole),
		openDriver: drivers.Open,
	}
}

func (a *app) root() *cobra.Command {
	root := &cobra.Command{
		Use:           "fcbm",
		Short:         "Forest Cover Benchmark Map classification",
		Long:          "fcbm derives land-cover transition classes and hectare area tables from three\nco-registered forest/non-forest maps of a historical reference period.",
		Version:       AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.setupLogger(a.logLevel, a.logFormat)
			return err
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", a.logLevel, "log level (debug, info, warn, error, disabled)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", a.logFormat, "log format (console, json)")

	root.AddCommand(
		a.classifyCmd(),
		a.classesCmd(),
		a.inspectCmd(),
		a.scanCmd(),
		a.runsCmd(),
	)
	return root
}

func (a *app) setupLogger(level, format string) (*logger.ZerologAdapter, error) {
	lvl, err := logger.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zl := logger.New(a.errOut, logger.Format(format), lvl)
	a.log = zl
	return zl, nil
}

package main

import (
	"fmt"

	"forest-cover-benchmark/internal/config"
	"forest-cover-benchmark/internal/pipeline"
	"forest-cover-benchmark/internal/report"
	"forest-cover-benchmark/internal/shutdown"

	"github.com/spf13/cobra"
)

type classifyFlags struct {
	config      string
	project     string
	start       string
	mid         string
	end         string
	out         string
	driver      string
	classifier  string
	workers     int
	tileRows    int
	format      string
	ledger      string
	metricsFile string
}

func (a *app) classifyCmd() *cobra.Command {
	var f classifyFlags

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify the three HRP maps and report transition areas",
		Example: `  fcbm classify --config project.yaml
  fcbm classify --start fc2000.tif --mid fc2005.tif --end fc2010.tif --out fcbm.tif`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			return a.classify(cmd, cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "YAML project file")
	fl.StringVar(&f.project, "project", "", "project name recorded with the run")
	fl.StringVar(&f.start, "start", "", "forest cover map at the start of the HRP")
	fl.StringVar(&f.mid, "mid", "", "forest cover map at the HRP midpoint")
	fl.StringVar(&f.end, "end", "", "forest cover map at the end of the HRP")
	fl.StringVarP(&f.out, "out", "o", "", "classification raster to write (default "+config.DefaultOutputName+")")
	fl.StringVar(&f.driver, "driver", "", "raster driver (gdal, opencv, memory)")
	fl.StringVar(&f.classifier, "classifier", "", "classifier backend (tiled, sequential)")
	fl.IntVar(&f.workers, "workers", 0, "parallel workers, 0 for one per CPU")
	fl.IntVar(&f.tileRows, "tile-rows", 0, "rows per classification tile")
	fl.StringVar(&f.format, "format", "", "report format (text, json)")
	fl.StringVar(&f.ledger, "ledger", "", "SQLite run ledger to append to")
	fl.StringVar(&f.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format")
	return cmd
}

// resolve loads the project file, if any, and lays explicitly set flags over it.
func (f *classifyFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return nil, err
		}
	}

	changed := func(name string) bool {
		flag := cmd.Flag(name)
		return flag != nil && flag.Changed
	}
	for name, b := range map[string]struct{ src, dst *string }{
		"project":      {&f.project, &cfg.Project},
		"start":        {&f.start, &cfg.Inputs.Start},
		"mid":          {&f.mid, &cfg.Inputs.Mid},
		"end":          {&f.end, &cfg.Inputs.End},
		"out":          {&f.out, &cfg.Output.Path},
		"driver":       {&f.driver, &cfg.Output.Driver},
		"classifier":   {&f.classifier, &cfg.Processing.Classifier},
		"format":       {&f.format, &cfg.Report.Format},
		"ledger":       {&f.ledger, &cfg.Report.Ledger},
		"metrics-file": {&f.metricsFile, &cfg.Report.MetricsFile},
	} {
		if changed(name) {
			*b.dst = *b.src
		}
	}
	if changed("workers") {
		cfg.Processing.Workers = f.workers
	}
	if changed("tile-rows") {
		cfg.Processing.TileRows = f.tileRows
	}
	if flag := cmd.Flag("log-level"); flag != nil && (flag.Changed || f.config == "") {
		cfg.Logging.Level = flag.Value.String()
	}
	if flag := cmd.Flag("log-format"); flag != nil && (flag.Changed || f.config == "") {
		cfg.Logging.Format = flag.Value.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) classify(cmd *cobra.Command, cfg *config.Config) error {
	zl, err := a.setupLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	if cfg.Project != "" {
		a.log = zl.With(map[string]interface{}{"project": cfg.Project})
	}

	sm := shutdown.NewManager(cmd.Context(), a.log)
	sm.Listen()
	defer sm.Shutdown()

	driver, err := a.openDriver(cfg.Output.Driver, a.log)
	if err != nil {
		return err
	}

	coord, err := pipeline.NewCoordinator(driver, driver, a.log, pipeline.Options{
		Classifier: cfg.Processing.Classifier,
		Workers:    cfg.Processing.Workers,
		TileRows:   cfg.Processing.TileRows,
	})
	if err != nil {
		return err
	}

	writer, err := report.NewWriter(a.out, cfg.Report.Format)
	if err != nil {
		return err
	}
	coord.AddConsumer(writer)

	if cfg.Report.Ledger != "" {
		ledger, err := report.OpenLedger(cfg.Report.Ledger)
		if err != nil {
			return err
		}
		sm.Register(ledger)
		coord.AddConsumer(ledger)
	}

	_, runErr := coord.Run(sm.Context(), pipeline.Request{
		Project: cfg.Project,
		Start:   cfg.Inputs.Start,
		Mid:     cfg.Inputs.Mid,
		End:     cfg.Inputs.End,
		Output:  cfg.Output.Path,
	})
	a.logged = runErr != nil

	if cfg.Report.MetricsFile != "" {
		if err := coord.Metrics().WriteTextfile(cfg.Report.MetricsFile); err != nil {
			a.log.Error("Classify", err, map[string]interface{}{
				"metrics_file": cfg.Report.MetricsFile,
			})
			if runErr == nil {
				return fmt.Errorf("failed to write metrics: %w", err)
			}
		}
	}
	return runErr
}

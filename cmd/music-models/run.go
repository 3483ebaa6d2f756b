package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Cat-Zav/Music-Models/pkg/dataset"
	"github.com/Cat-Zav/Music-Models/pkg/pipeline"
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "music-models",
		Short:         "Preprocess a tabular dataset and evaluate a model on a held-out split",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd())
	return root
}

func runCmd() *cobra.Command {
	var (
		configPath string
		inputPath  string
		reportPath string
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the preprocessing and evaluation pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pipeline.Load(configPath)
			if err != nil {
				return err
			}
			log, err := buildLogger(verbose)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			f, err := os.Open(inputPath)
			if err != nil {
				return errors.Wrap(err, "open input")
			}
			defer f.Close()
			ds, err := dataset.ReadCSV(f)
			if err != nil {
				return err
			}
			log.Info("ingested dataset",
				zap.Int("rows", ds.Len()), zap.Int("columns", len(ds.Names())))

			res, err := pipeline.New(cfg, log).Run(cmd.Context(), ds)
			if err != nil {
				return err
			}
			printResult(cmd, res)
			if reportPath != "" {
				out, err := os.Create(reportPath)
				if err != nil {
					return errors.Wrap(err, "create report")
				}
				defer out.Close()
				if err := res.WriteReport(out); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "pipeline.yaml", "pipeline configuration file")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input CSV file")
	cmd.Flags().StringVar(&reportPath, "report", "", "write the metric report CSV to this path")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	cmd.MarkFlagRequired("input") //nolint:errcheck
	return cmd
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func printResult(cmd *cobra.Command, res *pipeline.Result) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "run %s: train=%d test=%d dropped=%d\n",
		res.RunID, res.TrainRows, res.TestRows, res.RowsDropped)
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	for _, name := range res.MetricNames() {
		if res.Undefined[name] {
			fmt.Fprintf(w, "%-20s undefined\n", name)
			continue
		}
		fmt.Fprintf(w, "%-20s %.6f\n", name, res.Metrics[name])
	}
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ezoic/houseprice/dataset"
	"github.com/ezoic/houseprice/housing"
	"github.com/ezoic/houseprice/internal/printer"
	hpErrors "github.com/ezoic/houseprice/pkg/errors"
)

type trainOptions struct {
	data             string
	variant          string
	testSize         float64
	seed             uint64
	plot             string
	modelPath        string
	preprocessorPath string
}

func newTrainCommand(g *globalOptions) *cobra.Command {
	opts := &trainOptions{}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit the preprocessor and model and save both artifacts",
		Long: `Train loads the Ames CSV, holds out a seeded test split, fits the
preprocessor and the linear model on the remaining rows, prints MAE and RMSE
on the held-out rows and saves both artifacts.

Examples:
  # Train the full-schema model with the defaults
  housing train --data AmesHousing.csv

  # Train the eight-column model and save a diagnostic plot
  housing train --variant reduced --plot models/predictions.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(cmd, g, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.data, "data", "", "Path to the training CSV (overrides data.path)")
	f.StringVar(&opts.variant, "variant", "", fmt.Sprintf("Schema variant %v (overrides data.variant)", dataset.Variants()))
	f.Float64Var(&opts.testSize, "test-size", dataset.DefaultTestSize, "Fraction of rows held out for evaluation, in [0, 1)")
	f.Uint64Var(&opts.seed, "seed", dataset.DefaultSeed, "Seed of the train/test shuffle")
	f.StringVar(&opts.plot, "plot", "", "Write a predicted-vs-actual plot to this .png or .svg path")
	f.StringVar(&opts.modelPath, "model", "", "Model artifact path (overrides artifacts.model_path)")
	f.StringVar(&opts.preprocessorPath, "preprocessor", "", "Preprocessor artifact path (overrides artifacts.preprocessor_path)")
	return cmd
}

func runTrain(cmd *cobra.Command, g *globalOptions, opts *trainOptions) error {
	cfg := *g.cfg
	f := cmd.Flags()
	if opts.data != "" {
		cfg.Data.Path = opts.data
	}
	if opts.variant != "" {
		cfg.Data.Variant = opts.variant
	}
	if f.Changed("test-size") {
		cfg.Data.TestSize = opts.testSize
	}
	if f.Changed("seed") {
		cfg.Data.Seed = opts.seed
	}
	if opts.plot != "" {
		cfg.Artifacts.PlotPath = opts.plot
	}
	if opts.modelPath != "" {
		cfg.Artifacts.ModelPath = opts.modelPath
	}
	if opts.preprocessorPath != "" {
		cfg.Artifacts.PreprocessorPath = opts.preprocessorPath
	}
	if err := cfg.Validate(); err != nil {
		return printer.Error("Invalid training options", err.Error(), nil)
	}

	printer.Step("Training %s model on %s\n", cfg.Data.Variant, cfg.Data.Path)
	res, err := housing.Train(cmd.Context(), &cfg)
	if err != nil {
		return trainError(cfg.Data.Path, err)
	}

	meta := res.Metadata
	printer.Success("Model trained on %d rows (%d features, bundle %s)\n", meta.TrainRows, meta.NFeatures, meta.BundleID)
	if rep := res.Report; rep != nil {
		printer.Info("Evaluation on %d held-out rows:\n", rep.N)
		printer.Metric("MAE", housing.FormatPrice(rep.MAE))
		printer.Metric("RMSE", housing.FormatPrice(rep.RMSE))
		printer.Metric("R²", fmt.Sprintf("%.4f", rep.R2))
	} else {
		printer.Warning("No held-out rows (test size %g); evaluation skipped\n", cfg.Data.TestSize)
	}
	printer.Info("Model saved to %s\n", res.ModelPath)
	printer.Info("Preprocessor saved to %s\n", res.PreprocessorPath)
	if res.PlotPath != "" {
		printer.Info("Plot saved to %s\n", res.PlotPath)
	}
	return nil
}

func trainError(path string, err error) error {
	var se *hpErrors.SchemaMismatchError
	switch {
	case hpErrors.Is(err, hpErrors.ErrDatasetNotFound):
		return printer.Error("Dataset not found", err.Error(), []string{
			fmt.Sprintf("Place the Ames housing CSV at %s", path),
			"Pass its location with --data",
		})
	case hpErrors.As(err, &se):
		return printer.Error("Dataset does not match the schema", err.Error(), []string{
			"Train with --variant reduced if the file only has the eight form columns",
		})
	default:
		return printer.Error("Training failed", err.Error(), nil)
	}
}

package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezoic/houseprice/config"
	"github.com/ezoic/houseprice/housing"
	"github.com/ezoic/houseprice/internal/printer"
	hpErrors "github.com/ezoic/houseprice/pkg/errors"
)

type predictOptions struct {
	set    []string
	asJSON bool
}

func newPredictCommand(g *globalOptions) *cobra.Command {
	opts := &predictOptions{}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Price one house with the saved artifacts",
		Long: `Predict loads the saved model and preprocessor and prices a single house.
Columns not given with --set take the defaults stored with the preprocessor.

Examples:
  housing predict --set "Lot Area=8450" --set "Overall Qual=7"
  housing predict --set "Gr Liv Area=1710" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, g.cfg, opts)
		},
	}
	cmd.Flags().StringArrayVar(&opts.set, "set", nil, `Column value as "Name=value" (repeatable)`)
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the prediction as JSON")
	return cmd
}

func parseAssignments(set []string) (map[string]string, error) {
	values := make(map[string]string, len(set))
	for _, s := range set {
		name, value, ok := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: want \"Name=value\"", s)
		}
		values[name] = strings.TrimSpace(value)
	}
	return values, nil
}

func runPredict(cmd *cobra.Command, cfg *config.Config, opts *predictOptions) error {
	values, err := parseAssignments(opts.set)
	if err != nil {
		return printer.Error("Invalid input", err.Error(), nil)
	}

	pred, err := housing.LoadPredictor(cfg)
	if err != nil {
		if hpErrors.Is(err, hpErrors.ErrModelNotTrained) {
			return printer.Error("Model not trained yet", err.Error(), []string{
				"Run 'housing train' first",
			})
		}
		return printer.Error("Failed to load artifacts", err.Error(), []string{
			"Retrain with 'housing train' so both artifacts come from the same run",
		})
	}

	p, err := pred.Predict(cmd.Context(), values)
	if err != nil {
		return printer.Error("Invalid input", err.Error(), []string{
			"Valid columns: " + inputNames(pred),
		})
	}

	if opts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		return enc.Encode(p)
	}
	printer.Success("Predicted price: %s\n", p.Formatted)
	return nil
}

func inputNames(p *housing.Predictor) string {
	var names []string
	for _, c := range p.Schema().InputColumns() {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

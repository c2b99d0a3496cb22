// Package report renders training diagnostics.
package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	hpErrors "github.com/ezoic/houseprice/pkg/errors"
)

var supportedFormats = map[string]bool{
	".png": true, ".svg": true, ".pdf": true, ".jpg": true, ".jpeg": true,
}

// SavePredictionPlot writes a scatter of actual against predicted prices with the
// identity line y = x. The image format follows the file extension of path.
func SavePredictionPlot(path string, yTrue, yPred []float64) error {
	if len(yTrue) == 0 {
		return hpErrors.ErrEmptyData
	}
	if len(yTrue) != len(yPred) {
		return hpErrors.NewDimensionError("SavePredictionPlot", len(yTrue), len(yPred), 0)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedFormats[ext] {
		return hpErrors.NewValidationError("plot_path", "unsupported image format", ext)
	}

	p := plot.New()
	p.Title.Text = "Actual vs predicted sale price"
	p.X.Label.Text = "Actual price ($)"
	p.Y.Label.Text = "Predicted price ($)"

	pts := make(plotter.XYs, len(yTrue))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range yTrue {
		pts[i].X = yTrue[i]
		pts[i].Y = yPred[i]
		lo = min(lo, yTrue[i], yPred[i])
		hi = max(hi, yTrue[i], yPred[i])
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to create scatter plot: %w", err)
	}
	scatter.Color = plotter.DefaultLineStyle.Color
	p.Add(scatter)
	p.Legend.Add("Houses", scatter)

	identity, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return fmt.Errorf("failed to create identity line: %w", err)
	}
	identity.Width = vg.Points(1.5)
	identity.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(identity)
	p.Legend.Add("Perfect prediction", identity)
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create plot directory: %w", err)
		}
	}
	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

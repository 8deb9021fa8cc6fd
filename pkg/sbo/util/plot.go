// Package util contains plotting helpers for inspecting optimization
// results.
package util

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/relf/SBArchOpt/pkg/sbo/framework"
)

// PlotFront creates a scatter plot comparing the current Pareto front of the
// training set with the objective estimates of the proposed infill points,
// and writes it as an HTML file to path. Only 2D objective spaces can be
// plotted.
func PlotFront(front, infill []framework.ObjectiveSpacePoint, title, path string) error {
	if len(front) == 0 {
		return fmt.Errorf("front is empty for %q", title)
	}
	if len(front[0]) != 2 {
		return fmt.Errorf("can only plot 2D objective spaces, got %d objectives", len(front[0]))
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "f1(x)",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "f2(x)",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}))

	frontData := make([]opts.ScatterData, len(front))
	for i, p := range front {
		frontData[i] = opts.ScatterData{
			Value:      []float64{p[0], p[1]},
			Symbol:     "circle",
			SymbolSize: 10,
		}
	}

	infillData := make([]opts.ScatterData, len(infill))
	for i, p := range infill {
		infillData[i] = opts.ScatterData{
			Value:      []float64{p[0], p[1]},
			Symbol:     "triangle",
			SymbolSize: 10,
		}
	}

	scatter.AddSeries("Current Pareto Front", frontData).
		AddSeries("Infill Points", infillData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
			charts.WithEmphasisOpts(opts.Emphasis{}),
		)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating plot file: %w", err)
	}
	defer f.Close()

	return scatter.Render(f)
}

// Command penguin-charts produces the figures for the charting and
// accessibility post: grouped scatter and histogram views of the penguins
// dataset, every figure with alt text, plus a per-column summary table.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/statnotes/statnotes/dataset"
	"github.com/statnotes/statnotes/pkg/log"
	"github.com/statnotes/statnotes/report"
	"github.com/statnotes/statnotes/viz"
)

func main() {
	outDir := flag.String("out", "static", "directory for figures and tables")
	flag.Parse()

	log.SetLogger(log.NewZerologLogger(os.Stderr, log.LevelInfo))
	logger := log.GetLoggerWithName("penguin-charts")

	if err := run(*outDir, logger); err != nil {
		logger.Error("post build failed", log.ErrAttrKey, err)
		os.Exit(1)
	}
}

func run(outDir string, logger log.Logger) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	t, err := dataset.Penguins()
	if err != nil {
		return err
	}
	t, err = t.DropMissing("bill_length_mm", "bill_depth_mm", "body_mass_g", "species")
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", log.DatasetKey, "penguins", log.SamplesKey, t.NumRows())

	species, err := t.Strings("species")
	if err != nil {
		return err
	}
	length, err := t.Floats("bill_length_mm")
	if err != nil {
		return err
	}
	depth, err := t.Floats("bill_depth_mm")
	if err != nil {
		return err
	}

	groups := map[string]*viz.ScatterGroup{}
	var order []string
	for i, sp := range species {
		g, ok := groups[sp]
		if !ok {
			g = &viz.ScatterGroup{Label: sp}
			groups[sp] = g
			order = append(order, sp)
		}
		g.X = append(g.X, length[i])
		g.Y = append(g.Y, depth[i])
	}
	var series []viz.ScatterGroup
	for _, sp := range order {
		series = append(series, *groups[sp])
	}

	scatter, err := viz.GroupedScatter(
		"Bill length against bill depth by species",
		"bill length (mm)", "bill depth (mm)",
		"Scatter plot of bill length against bill depth. Each species forms its own cluster: "+
			"Adelie short and deep, Gentoo long and shallow, Chinstrap long and deep.",
		series)
	if err != nil {
		return err
	}
	if err := scatter.SavePNG(filepath.Join(outDir, "penguins-bills.png"), 0, 0); err != nil {
		return err
	}

	mass, err := t.Floats("body_mass_g")
	if err != nil {
		return err
	}
	hist, err := viz.Histogram(
		"Body mass distribution", "body mass (g)",
		"Histogram of penguin body mass, roughly bimodal: most birds sit near 3700 g with a "+
			"second mode near 5000 g from the larger Gentoo penguins.",
		mass, 12)
	if err != nil {
		return err
	}
	if err := hist.SavePNG(filepath.Join(outDir, "penguins-mass.png"), 0, 0); err != nil {
		return err
	}

	summary := report.NewTable("Penguin summaries",
		"variable", "n", "missing", "mean", "sd", "median")
	for _, name := range []string{"bill_length_mm", "bill_depth_mm", "flipper_length_mm", "body_mass_g"} {
		s, err := t.Summary(name)
		if err != nil {
			return err
		}
		if err := summary.AddRow(s.Name, s.N, s.Missing, s.Mean, s.Std, s.Median); err != nil {
			return err
		}
	}
	f, err := os.Create(filepath.Join(outDir, "penguins-summary.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := report.WriteCSV(f, summary); err != nil {
		return err
	}

	fmt.Println("wrote penguins figures and summary to", outDir)
	return nil
}

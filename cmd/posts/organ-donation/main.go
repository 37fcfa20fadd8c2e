// Command organ-donation builds the short descriptive post: deceased organ
// donor rates per million population by country, summarised and charted for
// the most recent year in the data.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/statnotes/statnotes/dataset"
	"github.com/statnotes/statnotes/pkg/log"
	"github.com/statnotes/statnotes/report"
	"github.com/statnotes/statnotes/viz"
)

func main() {
	outDir := flag.String("out", "static", "directory for figures and tables")
	flag.Parse()

	log.SetLogger(log.NewZerologLogger(os.Stderr, log.LevelInfo))
	logger := log.GetLoggerWithName("organ-donation")

	if err := run(*outDir, logger); err != nil {
		logger.Error("post build failed", log.ErrAttrKey, err)
		os.Exit(1)
	}
}

func run(outDir string, logger log.Logger) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	t, err := dataset.OrganDonation()
	if err != nil {
		return err
	}
	countries, err := t.Strings("country")
	if err != nil {
		return err
	}
	years, err := t.Floats("year")
	if err != nil {
		return err
	}
	rates, err := t.Floats("donors_pmp")
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", log.DatasetKey, "organ_donation", log.SamplesKey, t.NumRows())

	latest := 0.0
	for _, y := range years {
		if y > latest {
			latest = y
		}
	}

	type row struct {
		country string
		rate    float64
	}
	var rows []row
	for i := range countries {
		if years[i] == latest {
			rows = append(rows, row{countries[i], rates[i]})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].rate > rows[j].rate })

	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	for i, r := range rows {
		labels[i] = r.country
		values[i] = r.rate
	}

	fig, err := viz.Bar(
		fmt.Sprintf("Deceased organ donors per million population, %d", int(latest)),
		"donors per million",
		fmt.Sprintf("Bar chart of deceased organ donor rates in %d, sorted descending. %s leads "+
			"by a wide margin at %.1f donors per million.", int(latest), labels[0], values[0]),
		labels, values)
	if err != nil {
		return err
	}
	if err := fig.SavePNG(filepath.Join(outDir, "organ-donation.png"), 0, 0); err != nil {
		return err
	}

	summary, err := t.Summary("donors_pmp")
	if err != nil {
		return err
	}
	table := report.NewTable("Donor rate summary",
		"n", "mean", "sd", "min", "median", "max")
	if err := table.AddRow(summary.N, summary.Mean, summary.Std, summary.Min, summary.Median, summary.Max); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(outDir, "organ-donation-summary.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := report.WriteCSV(f, table); err != nil {
		return err
	}

	fmt.Println("wrote organ donation figures to", outDir)
	return nil
}

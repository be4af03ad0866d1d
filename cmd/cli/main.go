package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"forecast-dashboard/internal/analysis"
	"forecast-dashboard/internal/data"
	"forecast-dashboard/internal/export"
	"forecast-dashboard/internal/logging"
	"forecast-dashboard/internal/series"

	"github.com/rs/zerolog/log"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	if err := logging.Setup("warn", "console"); err != nil {
		panic(err)
	}

	var err error
	switch os.Args[1] {
	case "quantiles":
		err = cmdQuantiles(os.Args[2:])
	case "ranges":
		err = cmdRanges(os.Args[2:])
	case "dayahead":
		err = cmdDayAhead(os.Args[2:])
	case "probabilities":
		err = cmdProbabilities(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("command failed")
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli quantiles --data forecast.json [--out quantiles.csv] [--format csv|json]")
	fmt.Println("  cli ranges --data rangeforecast.json [--out bins.csv] [--format csv|json|rows]")
	fmt.Println("  cli dayahead --data entsoe.xml [--out prices.csv] [--format csv|json]")
	fmt.Println("  cli probabilities --ranges rangeforecast.json --dayahead entsoe.xml [--out probs.csv]")
	fmt.Println("")
	fmt.Println("common flags:")
	fmt.Println("  --start / --end   keep only [start, end), any supported timestamp shape")
	fmt.Println("  --zone            output timezone (default Europe/Brussels)")
}

// common holds the flags every subcommand shares.
type common struct {
	out    *string
	format *string
	start  *string
	end    *string
	zone   *string
}

func commonFlags(fs *flag.FlagSet) common {
	return common{
		out:    fs.String("out", "", "Output path (default stdout)"),
		format: fs.String("format", "csv", "Output format"),
		start:  fs.String("start", "", "Inclusive window start"),
		end:    fs.String("end", "", "Exclusive window end"),
		zone:   fs.String("zone", series.DefaultZone, "Output timezone"),
	}
}

func (c common) setup() (*series.Normalizer, series.Window, error) {
	n, err := series.NewNormalizer(*c.zone)
	if err != nil {
		return nil, series.Window{}, err
	}
	var w series.Window
	if *c.start != "" {
		t, ok := n.Instant(*c.start)
		if !ok {
			return nil, w, fmt.Errorf("invalid --start %q", *c.start)
		}
		w.Start = t
	}
	if *c.end != "" {
		t, ok := n.Instant(*c.end)
		if !ok {
			return nil, w, fmt.Errorf("invalid --end %q", *c.end)
		}
		w.End = t
	}
	return n, w, nil
}

// write opens the output and hands it to fn, or JSON-encodes v when
// --format=json.
func (c common) write(v any, fn func(io.Writer) error) error {
	var out io.Writer = os.Stdout
	if *c.out != "" {
		f, err := export.CreateFile(*c.out)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if *c.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return fn(out)
}

func cmdQuantiles(args []string) error {
	fs := flag.NewFlagSet("quantiles", flag.ExitOnError)
	dataPath := fs.String("data", "forecast.json", "Path to a saved forecast payload")
	c := commonFlags(fs)
	_ = fs.Parse(args)

	n, w, err := c.setup()
	if err != nil {
		return err
	}
	raw, err := data.LoadQuantilesFile(*dataPath)
	if err != nil {
		return err
	}
	if dropped := series.DroppedQuantiles(n, raw); dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("skipped records with unparseable timestamps")
	}
	table := series.BuildQuantileTable(n, raw, nil).Filter(w)
	return c.write(table, func(out io.Writer) error { return export.WriteQuantilesCSV(out, table) })
}

func cmdRanges(args []string) error {
	fs := flag.NewFlagSet("ranges", flag.ExitOnError)
	dataPath := fs.String("data", "rangeforecast.json", "Path to a saved range forecast payload")
	c := commonFlags(fs)
	_ = fs.Parse(args)

	n, w, err := c.setup()
	if err != nil {
		return err
	}
	raw, err := data.LoadRangesFile(*dataPath)
	if err != nil {
		return err
	}
	table := series.BuildBinTable(n, raw, nil).Filter(w)
	if *c.format == "rows" {
		*c.format = "json"
		return c.write(series.Rows(table), nil)
	}
	return c.write(table, func(out io.Writer) error { return export.WriteBinsCSV(out, table) })
}

func cmdDayAhead(args []string) error {
	fs := flag.NewFlagSet("dayahead", flag.ExitOnError)
	dataPath := fs.String("data", "entsoe.xml", "Path to a saved ENTSO-E XML document")
	c := commonFlags(fs)
	_ = fs.Parse(args)

	n, w, err := c.setup()
	if err != nil {
		return err
	}
	doc, err := data.LoadDayAheadFile(*dataPath)
	if err != nil {
		return err
	}
	prices, errs := series.ExpandDocument(n, doc)
	for _, e := range errs {
		log.Warn().Err(e).Msg("series dropped")
	}
	prices = series.FilterPrices(prices, w)

	s := analysis.SummarizePrices(prices)
	fmt.Fprintf(os.Stderr, "%d prices, min=%.2f max=%.2f mean=%.2f p95-p05=%.2f\n",
		s.Count, s.Min, s.Max, s.Mean, s.SpreadP95P05)

	return c.write(prices, func(out io.Writer) error { return export.WritePricesCSV(out, prices) })
}

func cmdProbabilities(args []string) error {
	fs := flag.NewFlagSet("probabilities", flag.ExitOnError)
	rangesPath := fs.String("ranges", "rangeforecast.json", "Path to a saved range forecast payload")
	dayAheadPath := fs.String("dayahead", "entsoe.xml", "Path to a saved ENTSO-E XML document")
	c := commonFlags(fs)
	_ = fs.Parse(args)

	n, w, err := c.setup()
	if err != nil {
		return err
	}
	raw, err := data.LoadRangesFile(*rangesPath)
	if err != nil {
		return err
	}
	doc, err := data.LoadDayAheadFile(*dayAheadPath)
	if err != nil {
		return err
	}
	prices, errs := series.ExpandDocument(n, doc)
	for _, e := range errs {
		log.Warn().Err(e).Msg("series dropped")
	}

	points := series.FilterRangePoints(n, series.ToRangePoints(n, raw), w)
	rows := analysis.HourlyProbabilities(n.Location(), points, series.FilterPrices(prices, w))
	return c.write(rows, func(out io.Writer) error { return export.WriteProbabilitiesCSV(out, rows) })
}

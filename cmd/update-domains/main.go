package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"forecast-dashboard/internal/data"
	"forecast-dashboard/internal/logging"

	"github.com/rs/zerolog/log"
)

// pairs collects repeated KEY=VALUE flags.
type pairs map[string]string

func (p pairs) String() string { return fmt.Sprint(map[string]string(p)) }

func (p pairs) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" || v == "" {
		return fmt.Errorf("expected KEY=VALUE, got %q", s)
	}
	p[k] = v
	return nil
}

func main() {
	zones := pairs{}
	docTypes := pairs{}
	var (
		outputPath = flag.String("output", "", "Output file path (default: DOMAINS_FILE or ./data/domains.json)")
		seedFile   = flag.String("seed", "", "Existing domains file to start from (default: built-in tables)")
	)
	flag.Var(zones, "zone", "Bidding zone as COUNTRY=EIC, repeatable")
	flag.Var(docTypes, "dataset", "Document type as NAME=CODE, repeatable")
	flag.Parse()

	if err := logging.Setup("info", "console"); err != nil {
		panic(err)
	}

	if *outputPath == "" {
		*outputPath = data.DefaultDomainsPath()
	}

	base := data.NewDomains(nil, nil)
	if *seedFile != "" {
		loaded, err := data.LoadDomains(*seedFile)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load seed file")
		}
		base = loaded
		log.Info().Str("seed", *seedFile).Int("countries", len(base.Countries())).Msg("loaded seed")
	}

	updated := base.With(zones, docTypes)
	if err := data.SaveDomains(updated, *outputPath); err != nil {
		log.Fatal().Err(err).Msg("failed to save domains")
	}

	fmt.Fprintf(os.Stdout, "Wrote %d countries and %d datasets to %s\n",
		len(updated.Countries()), len(updated.Datasets()), *outputPath)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"github.com/aleister1102/contacthound/internal/config"
	"github.com/aleister1102/contacthound/internal/logger"
	"github.com/aleister1102/contacthound/internal/models"
	"github.com/spf13/cobra"
)

const defaultNumber = 4

type scrapeOptions struct {
	URL        string
	Keywords   string
	Number     int
	Log        bool
	ConfigFile string
	Harvester  string
	NoRender   bool
	OutputDir  string
}

func (o scrapeOptions) validate() error {
	switch {
	case o.URL == "" && o.Keywords == "":
		return errorwrapper.NewValidationError("url", o.URL, "provide a URL with --url or a query with --keywords")
	case o.URL != "" && o.Keywords != "":
		return errorwrapper.NewValidationError("keywords", o.Keywords, "--url and --keywords are mutually exclusive")
	case o.Number < 1:
		return errorwrapper.NewValidationError("number", o.Number, "--number must be at least 1")
	}
	return nil
}

// apply folds command line overrides into the loaded configuration.
func (o scrapeOptions) apply(cfg *config.GlobalConfig) {
	if o.Harvester != "" {
		cfg.HarvesterConfig.Provider = o.Harvester
	}
	if o.NoRender {
		cfg.RendererConfig.Enabled = false
	}
	if o.OutputDir != "" {
		cfg.OutputConfig.Dir = o.OutputDir
	}
}

func newScrapeCmd() *cobra.Command {
	opts := scrapeOptions{}
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Discover contacts of one website or of websites found for a query",
		Example: `  contacthound scrape -u https://example.edu.np
  contacthound scrape -k "colleges in pokhara" -n 8 --log
  contacthound scrape -k "clinics lalitpur" --harvester maps`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.URL = strings.TrimSpace(opts.URL)
			opts.Keywords = strings.TrimSpace(opts.Keywords)
			if err := opts.validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runScrape(ctx, opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.URL, "url", "u", "", "Website to scrape")
	f.StringVarP(&opts.Keywords, "keywords", "k", "", "Query to find websites with")
	f.IntVarP(&opts.Number, "number", "n", defaultNumber, "Number of websites to take from the query results")
	f.BoolVarP(&opts.Log, "log", "l", false, "Save the records to a JSON file")
	f.StringVarP(&opts.ConfigFile, "config", "c", "", "Path to a YAML/JSON config file (searches default locations if unset)")
	f.StringVar(&opts.Harvester, "harvester", "", "Website source for --keywords: places or maps")
	f.BoolVar(&opts.NoRender, "no-render", false, "Skip the headless browser for client-rendered sites")
	f.StringVarP(&opts.OutputDir, "output-dir", "o", "", "Directory for saved records")
	return cmd
}

func init() {
	rootCmd.AddCommand(newScrapeCmd())
}

func runScrape(ctx context.Context, opts scrapeOptions, stdout io.Writer) error {
	cfg, err := config.LoadGlobalConfig(opts.ConfigFile)
	if err != nil {
		return errorwrapper.WrapError(err, "could not load config")
	}
	opts.apply(cfg)
	if err := config.ValidateConfig(cfg); err != nil {
		return errorwrapper.WrapError(err, "configuration validation failed")
	}

	zLogger, err := logger.New(cfg.LogConfig)
	if err != nil {
		return errorwrapper.WrapError(err, "could not initialize logger")
	}

	a, err := newApp(cfg, zLogger)
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.run(ctx, opts)
	if printErr := printRecords(stdout, records); printErr != nil && err == nil {
		err = printErr
	}
	return err
}

// printRecords writes every record as indented JSON.
func printRecords(w io.Writer, records []models.ContactRecord) error {
	for _, r := range records {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, string(data)); err != nil {
			return err
		}
	}
	return nil
}

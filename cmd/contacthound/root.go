package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "contacthound",
	Short: "contacthound discovers emails and phone numbers of business websites",
	Long: `contacthound fetches a website, probes its sitemap, common contact paths and
contact-looking links, renders client-side apps in a headless browser, and
reports the emails and phone numbers it found.

Usage:
  contacthound scrape --url https://example.com
  contacthound scrape --keywords "schools in kathmandu" --number 10 --log`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "contacthound", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

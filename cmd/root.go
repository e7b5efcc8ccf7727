// Package cmd is the srdsite command line.
//
// Configuration comes from defaults, then the YAML file given by --config
// (config.yaml by default), then SRD_* environment variables such as
// SRD_ENV, SRD_SERVER_ADDR or SRD_SITE_ASSETS_DIR.
package cmd

import (
	"io/fs"

	"github.com/spf13/cobra"
)

var (
	cfgFile string

	// embedded holds the assets compiled into the binary.
	embedded fs.FS
)

var rootCmd = &cobra.Command{
	Use:   "srdsite",
	Short: "SRD Partners brochure site",
	Long: `srdsite serves the SRD Partners brochure site: localized pages,
the services catalogue and the contact form.

Without a subcommand it behaves like "srdsite serve".`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the command line with assets as the embedded asset tree
// (templates/, static/, locales/).
func Execute(assets fs.FS) error {
	embedded = assets
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yaml)")
}

package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/srdpartners/site/pkg/cl/config"
	"github.com/srdpartners/site/pkg/cl/i18n"
)

var localesCmd = &cobra.Command{
	Use:   "locales",
	Short: "Inspect the locale catalogs",
}

var localesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report keys missing from non-default locales",
	Long: `Compare every locale catalog against the default one and list the keys
it lacks. Exits with a non-zero status when any key is missing.`,
	RunE: runLocalesCheck,
}

func init() {
	localesCmd.AddCommand(localesCheckCmd)
	rootCmd.AddCommand(localesCmd)
}

func runLocalesCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	assets, err := siteAssets(cfg)
	if err != nil {
		return err
	}

	bundle, err := i18n.Load(assets, localesDir, cfg.Site.DefaultLocale, cfg.Site.Locales)
	if err != nil {
		return fmt.Errorf("cannot load locales: %w", err)
	}
	return checkLocales(cmd.OutOrStdout(), bundle)
}

func checkLocales(w io.Writer, bundle *i18n.Bundle) error {
	missing := bundle.Missing()
	if len(missing) == 0 {
		fmt.Fprintf(w, "All %d locales match %s\n", len(bundle.Locales()), bundle.DefaultLocale())
		return nil
	}

	locales := make([]string, 0, len(missing))
	for l := range missing {
		locales = append(locales, l)
	}
	sort.Strings(locales)

	total := 0
	for _, l := range locales {
		fmt.Fprintf(w, "%s: %d missing\n", l, len(missing[l]))
		for _, key := range missing[l] {
			fmt.Fprintf(w, "  %s\n", key)
		}
		total += len(missing[l])
	}
	return fmt.Errorf("%d keys missing across %d locales", total, len(locales))
}

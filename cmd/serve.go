package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/srdpartners/site/internal/feat/contact"
	"github.com/srdpartners/site/internal/feat/site"
	"github.com/srdpartners/site/internal/web"
	"github.com/srdpartners/site/pkg/cl/app"
	"github.com/srdpartners/site/pkg/cl/config"
	"github.com/srdpartners/site/pkg/cl/i18n"
	"github.com/srdpartners/site/pkg/cl/logger"
	"github.com/srdpartners/site/pkg/cl/middleware"
	"github.com/srdpartners/site/pkg/cl/render"
)

const localesDir = "locales"

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the web server",
	Long: `Start the web server.

In dev mode with site.assets_dir set, templates and static files are read
from disk on every request and locale catalogs reload when they change.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level)

	log.Infof("Starting srdsite %s [%s mode]", Version, cfg.Env)

	assets, err := siteAssets(cfg)
	if err != nil {
		return err
	}

	bundle, err := i18n.Load(assets, localesDir, cfg.Site.DefaultLocale, cfg.Site.Locales)
	if err != nil {
		return fmt.Errorf("cannot load locales: %w", err)
	}
	for locale, keys := range bundle.Missing() {
		log.Warnf("Locale %s lacks %d keys, falling back to %s", locale, len(keys), bundle.DefaultLocale())
	}

	if cfg.Server.VisitorSecret == "" {
		log.Warn("No visitor secret configured, visitor cookies will not survive a restart")
	}
	signer, err := middleware.NewVisitorSigner(cfg.Server.VisitorSecret)
	if err != nil {
		return err
	}

	comps := buildComponents(cfg, assets, bundle, log)

	router := chi.NewRouter()
	middleware.DefaultStack(router, cfg.Server.TrustProxy)
	router.Use(middleware.Visitor(signer, !cfg.IsDev()))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lc := app.Setup(comps...)
	if err := lc.Start(ctx, log, router); err != nil {
		return err
	}

	srv := app.NewServer(cfg.Server.Addr, router)
	return app.Run(ctx, srv, lc, log, cfg.Server.ShutdownTimeoutDuration())
}

// buildComponents wires the site in start order. Stop runs in reverse.
func buildComponents(cfg *config.Config, assets fs.FS, bundle *i18n.Bundle, log logger.Logger) []any {
	cache := !cfg.IsDev()
	renderer := render.NewRenderer(assets, cache, log)
	chrome := web.NewChrome(bundle, cfg.Site.BaseURL)

	submitter := contact.NewSimulatedSubmitter(cfg.Contact.SubmitDelayDuration(), log)
	registry := contact.NewRegistry(submitter, cfg.Contact.FormTTLDuration(), log)
	contactHandler := contact.NewHandler(registry, renderer, bundle, chrome, cfg, log)
	siteHandler := site.NewHandler(renderer, bundle, chrome, contactHandler, log)
	fileServer := web.NewFileServer(assets, cache, log)

	var comps []any
	if cfg.IsDev() && cfg.Site.AssetsDir != "" {
		comps = append(comps, i18n.NewWatcher(bundle, filepath.Join(cfg.Site.AssetsDir, localesDir), log))
	}
	return append(comps, registry, contactHandler, fileServer, siteHandler)
}

// siteAssets returns the on-disk asset tree when configured, the embedded
// one otherwise.
func siteAssets(cfg *config.Config) (fs.FS, error) {
	if cfg.Site.AssetsDir == "" {
		if embedded == nil {
			return nil, fmt.Errorf("no embedded assets and no site.assets_dir configured")
		}
		return embedded, nil
	}

	info, err := os.Stat(cfg.Site.AssetsDir)
	if err != nil {
		return nil, fmt.Errorf("cannot open assets dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("assets dir %s is not a directory", cfg.Site.AssetsDir)
	}
	return os.DirFS(cfg.Site.AssetsDir), nil
}

package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srdpartners/site/pkg/cl/config"
	"github.com/srdpartners/site/pkg/cl/i18n"
	"github.com/srdpartners/site/pkg/cl/logger"
)

func TestCheckLocalesReportsGaps(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/fr.yaml": {Data: []byte("nav:\n  home: Accueil\n  contact: Contact\n")},
		"locales/en.yaml": {Data: []byte("nav:\n  home: Home\n")},
	}
	bundle, err := i18n.Load(fsys, "locales", "fr", []string{"fr", "en"})
	require.NoError(t, err)

	var out bytes.Buffer
	err = checkLocales(&out, bundle)
	require.Error(t, err)
	assert.Contains(t, out.String(), "en: 1 missing")
	assert.Contains(t, out.String(), "nav.contact")
}

func TestCheckLocalesShippedCatalogs(t *testing.T) {
	bundle, err := i18n.Load(os.DirFS("../assets"), "locales", "fr", []string{"fr", "en", "pt"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, checkLocales(&out, bundle))
	assert.True(t, strings.HasPrefix(out.String(), "All 3 locales match fr"))
}

func TestSiteAssets(t *testing.T) {
	embedded = nil
	cfg := config.Default("dev")

	_, err := siteAssets(cfg)
	assert.Error(t, err)

	cfg.Site.AssetsDir = "../assets"
	fsys, err := siteAssets(cfg)
	require.NoError(t, err)
	_, err = fsys.Open("templates/base.html")
	assert.NoError(t, err)

	cfg.Site.AssetsDir = "cmd_test.go"
	_, err = siteAssets(cfg)
	assert.Error(t, err)
}

func TestBuildComponentsAddsWatcherInDev(t *testing.T) {
	bundle, err := i18n.Load(os.DirFS("../assets"), "locales", "fr", []string{"fr", "en", "pt"})
	require.NoError(t, err)
	log := logger.NewNoopLogger()

	prod := config.Default("prod")
	assert.Len(t, buildComponents(prod, os.DirFS("../assets"), bundle, log), 4)

	dev := config.Default("dev")
	dev.Site.AssetsDir = "../assets"
	comps := buildComponents(dev, os.DirFS("../assets"), bundle, log)
	require.Len(t, comps, 5)
	_, ok := comps[0].(*i18n.Watcher)
	assert.True(t, ok)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "srdsite "+Version)
}

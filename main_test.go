package main

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srdpartners/site/pkg/cl/i18n"
	"github.com/srdpartners/site/pkg/cl/logger"
	"github.com/srdpartners/site/pkg/cl/render"
)

func embeddedAssets(t *testing.T) fs.FS {
	t.Helper()
	assets, err := fs.Sub(assetsFS, "assets")
	require.NoError(t, err)
	return assets
}

func TestEmbeddedLocalesHaveNoGaps(t *testing.T) {
	bundle, err := i18n.Load(embeddedAssets(t), "locales", "fr", []string{"fr", "en", "pt"})
	require.NoError(t, err)
	assert.Empty(t, bundle.Missing())
}

func TestEmbeddedTemplatesParse(t *testing.T) {
	assets := embeddedAssets(t)
	r := render.NewRenderer(assets, true, logger.NewNoopLogger())

	pages, err := fs.Glob(assets, "templates/*.html")
	require.NoError(t, err)
	require.NotEmpty(t, pages)

	for _, p := range pages {
		name := p[len("templates/") : len(p)-len(".html")]
		if name == "base" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, r.Preload(name))
		})
	}
}

func TestEmbeddedStaticAssets(t *testing.T) {
	assets := embeddedAssets(t)
	for _, name := range []string{"static/css/site.css", "static/js/contact.js"} {
		_, err := fs.Stat(assets, name)
		assert.NoError(t, err, name)
	}
}

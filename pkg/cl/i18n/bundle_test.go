package i18n

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srdpartners/site/pkg/cl/logger"
)

const frYAML = `
nav:
  home: Accueil
  contact: Contact
contact:
  form:
    subjects:
      audit: Audit
greeting: "Bonjour %s"
services:
  items:
    - title: Comptabilité
      points:
        - Bilans
        - TVA
    - title: Ressources humaines
`

const enYAML = `
nav:
  home: Home
contact:
  form:
    subjects:
      audit: Audit
greeting: "Hello %s"
services:
  items:
    - title: Accounting
      points:
        - Statements
        - VAT
    - title: Human resources
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"locales/fr.yaml": {Data: []byte(frYAML)},
		"locales/en.yaml": {Data: []byte(enYAML)},
	}
}

func loadTestBundle(t *testing.T) *Bundle {
	t.Helper()
	b, err := Load(testFS(), "locales", "fr", []string{"fr", "en"})
	require.NoError(t, err)
	return b
}

func TestLoadFlattensNestedKeys(t *testing.T) {
	b := loadTestBundle(t)

	assert.Equal(t, "Accueil", b.T("fr", "nav.home"))
	assert.Equal(t, "Audit", b.T("en", "contact.form.subjects.audit"))
	assert.Equal(t, "Ressources humaines", b.T("fr", "services.items.1.title"))
	assert.Equal(t, "VAT", b.T("en", "services.items.0.points.1"))
}

func TestTranslateFallbacks(t *testing.T) {
	b := loadTestBundle(t)

	assert.Equal(t, "Contact", b.T("en", "nav.contact"), "missing key falls back to default locale")
	assert.Equal(t, "nav.unknown", b.T("en", "nav.unknown"), "unknown key falls back to itself")
	assert.Equal(t, "Accueil", b.T("de", "nav.home"), "unknown locale falls back to default")
	assert.Equal(t, "Hello Jane", b.T("en", "greeting", "Jane"))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(testFS(), "locales", "de", []string{"fr", "en"})
	assert.Error(t, err, "default locale must be configured")

	_, err = Load(testFS(), "locales", "fr", nil)
	assert.Error(t, err)

	_, err = Load(testFS(), "locales", "fr", []string{"fr", "pt"})
	assert.Error(t, err, "missing catalog file")

	broken := testFS()
	broken["locales/en.yaml"] = &fstest.MapFile{Data: []byte("nav: [unclosed")}
	_, err = Load(broken, "locales", "fr", []string{"fr", "en"})
	assert.Error(t, err)
}

func TestMatch(t *testing.T) {
	b, err := Load(fstest.MapFS{
		"l/fr.yaml": {Data: []byte("a: b")},
		"l/en.yaml": {Data: []byte("a: b")},
		"l/pt.yaml": {Data: []byte("a: b")},
	}, "l", "fr", []string{"fr", "en", "pt"})
	require.NoError(t, err)

	tests := []struct {
		header string
		want   string
	}{
		{"", "fr"},
		{"en-US,en;q=0.9", "en"},
		{"pt-BR,pt;q=0.8,en;q=0.5", "pt"},
		{"de-CH,fr-CH;q=0.9", "fr"},
		{"ja", "fr"},
		{"not a header;;", "fr"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Match(tt.header))
		})
	}
}

func TestMissingAndCount(t *testing.T) {
	b := loadTestBundle(t)

	missing := b.Missing()
	assert.Equal(t, map[string][]string{"en": {"nav.contact"}}, missing)
	assert.Equal(t, 2, b.Count("services.items"))
	assert.Equal(t, 2, b.Count("services.items.0.points"))
	assert.Equal(t, 0, b.Count("services.items.1.points"))

	tr := b.Translator("xx")
	assert.Equal(t, "fr", tr.Locale())
	assert.Equal(t, 2, tr.Count("services.items"))
}

func TestZeroTranslator(t *testing.T) {
	var tr Translator
	assert.Equal(t, "nav.home", tr.T("nav.home"))
	assert.Zero(t, tr.Count("services.items"))
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fr.yaml"), []byte(frYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml"), []byte(enYAML), 0o644))

	b, err := Load(os.DirFS(dir), ".", "fr", []string{"fr", "en"})
	require.NoError(t, err)

	reloaded := make(chan error, 4)
	w := NewWatcher(b, dir, logger.NewNoopLogger())
	w.debounce = 50 * time.Millisecond
	w.reloaded = func(err error) {
		select {
		case reloaded <- err:
		default:
		}
	}

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop(context.Background())

	updated := []byte("nav:\n  home: Welcome\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml"), updated, 0o644))

	select {
	case err := <-reloaded:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("bundle was not reloaded")
	}
	assert.Equal(t, "Welcome", b.T("en", "nav.home"))
}

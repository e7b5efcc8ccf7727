// Package i18n loads localized message catalogs and negotiates the locale
// of a request.
//
// Catalogs are YAML documents, one per locale, named <locale>.yaml. Nested
// maps and lists are flattened to dot-separated keys, so
//
//	contact:
//	  form:
//	    subjects:
//	      audit: Audit
//	services:
//	  items:
//	    - title: Comptabilité
//
// yields "contact.form.subjects.audit" and "services.items.0.title".
package i18n

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Catalog maps flattened keys to display strings for one locale.
type Catalog map[string]string

// Bundle holds the catalogs of every supported locale.
// It is safe for concurrent use; Reload swaps catalogs atomically.
type Bundle struct {
	mu            sync.RWMutex
	catalogs      map[string]Catalog
	locales       []string
	defaultLocale string
	matcher       language.Matcher
}

// Load reads <dir>/<locale>.yaml for every locale. The default locale must
// be among locales.
func Load(fsys fs.FS, dir string, defaultLocale string, locales []string) (*Bundle, error) {
	if len(locales) == 0 {
		return nil, fmt.Errorf("no locales configured")
	}

	found := false
	tags := make([]language.Tag, 0, len(locales))
	// The default goes first so the matcher falls back to it.
	tags = append(tags, language.Make(defaultLocale))
	for _, l := range locales {
		if l == defaultLocale {
			found = true
			continue
		}
		tags = append(tags, language.Make(l))
	}
	if !found {
		return nil, fmt.Errorf("default locale %q is not in %v", defaultLocale, locales)
	}

	b := &Bundle{
		locales:       append([]string(nil), locales...),
		defaultLocale: defaultLocale,
		matcher:       language.NewMatcher(tags),
	}
	if err := b.Reload(fsys, dir); err != nil {
		return nil, err
	}
	return b, nil
}

// Reload re-reads every catalog. On error the previous catalogs stay in place.
func (b *Bundle) Reload(fsys fs.FS, dir string) error {
	catalogs := make(map[string]Catalog, len(b.locales))
	for _, locale := range b.locales {
		cat, err := readCatalog(fsys, path.Join(dir, locale+".yaml"))
		if err != nil {
			return fmt.Errorf("cannot load locale %s: %w", locale, err)
		}
		catalogs[locale] = cat
	}

	b.mu.Lock()
	b.catalogs = catalogs
	b.mu.Unlock()
	return nil
}

func readCatalog(fsys fs.FS, name string) (Catalog, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", name, err)
	}

	cat := make(Catalog)
	flatten("", doc, cat)
	return cat, nil
}

func flatten(prefix string, node any, out Catalog) {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			flatten(joinKey(prefix, k), child, out)
		}
	case map[any]any:
		for k, child := range v {
			flatten(joinKey(prefix, fmt.Sprint(k)), child, out)
		}
	case []any:
		for i, child := range v {
			flatten(joinKey(prefix, strconv.Itoa(i)), child, out)
		}
	case nil:
		if prefix != "" {
			out[prefix] = ""
		}
	default:
		if prefix != "" {
			out[prefix] = fmt.Sprint(v)
		}
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// DefaultLocale returns the fallback locale.
func (b *Bundle) DefaultLocale() string {
	return b.defaultLocale
}

// Locales returns the supported locales in configuration order.
func (b *Bundle) Locales() []string {
	return append([]string(nil), b.locales...)
}

// Has reports whether locale is supported.
func (b *Bundle) Has(locale string) bool {
	for _, l := range b.locales {
		if l == locale {
			return true
		}
	}
	return false
}

// Resolve returns locale if supported, the default locale otherwise.
func (b *Bundle) Resolve(locale string) string {
	if b.Has(locale) {
		return locale
	}
	return b.defaultLocale
}

// Match negotiates the best supported locale for an Accept-Language header.
func (b *Bundle) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return b.defaultLocale
	}

	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return b.defaultLocale
	}
	if idx == 0 {
		return b.defaultLocale
	}
	return b.nonDefault()[idx-1]
}

func (b *Bundle) nonDefault() []string {
	out := make([]string, 0, len(b.locales)-1)
	for _, l := range b.locales {
		if l != b.defaultLocale {
			out = append(out, l)
		}
	}
	return out
}

// T returns the message for key in locale, falling back to the default
// locale and then to the key itself. With args, the message is used as a
// fmt format string.
func (b *Bundle) T(locale, key string, args ...any) string {
	msg, ok := b.lookup(locale, key)
	if !ok {
		msg, ok = b.lookup(b.defaultLocale, key)
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

func (b *Bundle) lookup(locale, key string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cat, ok := b.catalogs[locale]
	if !ok {
		return "", false
	}
	msg, ok := cat[key]
	return msg, ok
}

// Count returns how many consecutive list entries exist under prefix
// (prefix.0, prefix.1, ...) in the default locale.
func (b *Bundle) Count(prefix string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cat := b.catalogs[b.defaultLocale]
	n := 0
	for hasEntry(cat, prefix+"."+strconv.Itoa(n)) {
		n++
	}
	return n
}

func hasEntry(cat Catalog, key string) bool {
	if _, ok := cat[key]; ok {
		return true
	}
	for k := range cat {
		if strings.HasPrefix(k, key+".") {
			return true
		}
	}
	return false
}

// Missing returns, per locale, the keys of the default catalog that the
// locale lacks. Locales without gaps are omitted.
func (b *Bundle) Missing() map[string][]string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ref := b.catalogs[b.defaultLocale]
	missing := make(map[string][]string)
	for _, locale := range b.locales {
		if locale == b.defaultLocale {
			continue
		}
		cat := b.catalogs[locale]
		for key := range ref {
			if _, ok := cat[key]; !ok {
				missing[locale] = append(missing[locale], key)
			}
		}
		sort.Strings(missing[locale])
	}
	for locale, keys := range missing {
		if len(keys) == 0 {
			delete(missing, locale)
		}
	}
	return missing
}

// Translator returns the messages of one locale.
func (b *Bundle) Translator(locale string) Translator {
	return Translator{bundle: b, locale: b.Resolve(locale)}
}

// Translator binds a Bundle to a locale. Templates call {{.Msg.T "key"}}.
type Translator struct {
	bundle *Bundle
	locale string
}

// Locale returns the bound locale.
func (t Translator) Locale() string {
	return t.locale
}

// T looks up key. See Bundle.T.
func (t Translator) T(key string, args ...any) string {
	if t.bundle == nil {
		return key
	}
	return t.bundle.T(t.locale, key, args...)
}

// Count counts list entries under prefix. See Bundle.Count.
func (t Translator) Count(prefix string) int {
	if t.bundle == nil {
		return 0
	}
	return t.bundle.Count(prefix)
}

// Indices returns 0..Count(prefix)-1, for ranging over list entries in
// templates: {{range $i := .Msg.Indices "features.items"}}.
func (t Translator) Indices(prefix string) []int {
	n := t.Count(prefix)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

package web

import (
	"encoding/json"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/srdpartners/site/internal/content"
	"github.com/srdpartners/site/pkg/cl/i18n"
)

// Link is a labelled href.
type Link struct {
	Label       string
	Href        string
	Description string
}

// MegaColumn is one column of the services mega-menu.
type MegaColumn struct {
	Title string
	Links []Link
}

// Featured is the highlighted block at the end of the mega-menu.
type Featured struct {
	Title       string
	Description string
	Href        string
	CTA         string
}

// NavItem is an entry of the header navigation.
type NavItem struct {
	Label    string
	Href     string
	Active   bool
	Columns  []MegaColumn
	Featured *Featured
}

// HasMenu reports whether the item opens a mega-menu.
func (n NavItem) HasMenu() bool {
	return len(n.Columns) > 0
}

// Alternate is a hreflang link to the same page in another locale.
type Alternate struct {
	Lang string
	Href string
}

// Page carries everything base.html and the shared partials need.
// Handlers embed it in their page data.
type Page struct {
	Locale      string
	Msg         i18n.Translator
	Title       string
	Description string
	Path        string
	Canonical   string
	Alternates  []Alternate
	OGLocale    string
	SiteName    string
	Nav         []NavItem
	CTA         Link
	Services    []Link
	Contact     content.ContactInfo
	Year        int
	JSONLD      template.JS
	// Refresh, when positive, asks browsers without scripts to reload
	// after that many seconds.
	Refresh int
}

// Href prefixes path with the page locale.
func (p Page) Href(path string) string {
	return LocalePath(p.Locale, path)
}

// LocalePath builds "/{locale}{path}".
func LocalePath(locale, path string) string {
	if path == "" || path == "/" {
		return "/" + locale
	}
	return "/" + locale + path
}

// Chrome builds the shared page frame from the locale bundle and the
// structural site content.
type Chrome struct {
	bundle  *i18n.Bundle
	baseURL string
	now     func() time.Time
	jsonLD  template.JS
}

// NewChrome creates a Chrome for a site published at baseURL.
func NewChrome(bundle *i18n.Bundle, baseURL string) *Chrome {
	return &Chrome{
		bundle:  bundle,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		now:     time.Now,
		jsonLD:  organizationJSONLD(content.Contact),
	}
}

// Page builds the frame of the page at path (locale-relative, "" for home).
// titleKey and descKey are catalog keys; an empty titleKey uses the home
// title without the title template.
func (c *Chrome) Page(locale, path, titleKey, descKey string) Page {
	locale = c.bundle.Resolve(locale)
	msg := c.bundle.Translator(locale)

	title := msg.T("meta.homeTitle")
	if titleKey != "" {
		title = msg.T("meta.titleTemplate", msg.T(titleKey))
	}
	if descKey == "" {
		descKey = "meta.homeDescription"
	}

	return Page{
		Locale:      locale,
		Msg:         msg,
		Title:       title,
		Description: msg.T(descKey),
		Path:        path,
		Canonical:   c.baseURL + LocalePath(locale, path),
		Alternates:  c.alternates(path),
		OGLocale:    content.OpenGraphLocales[locale],
		SiteName:    content.SiteName,
		Nav:         c.nav(msg, path),
		CTA:         Link{Label: msg.T("nav.cta"), Href: LocalePath(locale, "/contact")},
		Services:    serviceLinks(msg),
		Contact:     content.Contact,
		Year:        c.now().Year(),
		JSONLD:      c.jsonLD,
	}
}

func (c *Chrome) alternates(path string) []Alternate {
	locales := c.bundle.Locales()
	alts := make([]Alternate, 0, len(locales)+1)
	for _, l := range locales {
		alts = append(alts, Alternate{Lang: l, Href: c.baseURL + LocalePath(l, path)})
	}
	alts = append(alts, Alternate{
		Lang: "x-default",
		Href: c.baseURL + LocalePath(c.bundle.DefaultLocale(), path),
	})
	return alts
}

func (c *Chrome) nav(msg i18n.Translator, path string) []NavItem {
	locale := msg.Locale()

	menu := content.MegaMenu()
	columns := make([]MegaColumn, 0, len(menu))
	for i, col := range menu {
		mc := MegaColumn{Title: msg.T("header.megaMenu.col" + strconv.Itoa(i+1) + "Title")}
		for _, s := range col {
			mc.Links = append(mc.Links, Link{
				Label:       msg.T(s.Key("title")),
				Description: msg.T(s.Key("shortDesc")),
				Href:        LocalePath(locale, "/services/"+s.Slug),
			})
		}
		columns = append(columns, mc)
	}

	return []NavItem{
		{Label: msg.T("nav.home"), Href: LocalePath(locale, ""), Active: path == ""},
		{
			Label:   msg.T("nav.services"),
			Href:    LocalePath(locale, "/services"),
			Active:  strings.HasPrefix(path, "/services"),
			Columns: columns,
			Featured: &Featured{
				Title:       msg.T("header.megaMenu.featuredTitle"),
				Description: msg.T("header.megaMenu.featuredDesc"),
				Href:        LocalePath(locale, "/services"),
				CTA:         msg.T("header.megaMenu.featuredCta"),
			},
		},
		{Label: msg.T("nav.whoWeAre"), Href: LocalePath(locale, "/qui-sommes-nous"), Active: path == "/qui-sommes-nous"},
		{Label: msg.T("nav.contact"), Href: LocalePath(locale, "/contact"), Active: path == "/contact"},
	}
}

func serviceLinks(msg i18n.Translator) []Link {
	links := make([]Link, 0, len(content.Services))
	for _, s := range content.Services {
		links = append(links, Link{
			Label:       msg.T(s.Key("title")),
			Description: msg.T(s.Key("shortDesc")),
			Href:        LocalePath(msg.Locale(), "/services/"+s.Slug),
		})
	}
	return links
}

type postalAddress struct {
	Type     string `json:"@type"`
	Street   string `json:"streetAddress"`
	Postal   string `json:"postalCode"`
	Locality string `json:"addressLocality"`
	Country  string `json:"addressCountry"`
}

type organization struct {
	Context   string        `json:"@context"`
	Type      string        `json:"@type"`
	Name      string        `json:"name"`
	URL       string        `json:"url"`
	Telephone string        `json:"telephone"`
	Email     string        `json:"email"`
	Address   postalAddress `json:"address"`
}

func organizationJSONLD(info content.ContactInfo) template.JS {
	addr := info.MainAddress()
	locality := addr.Locality
	if addr.Region != "" {
		locality += "-" + addr.Region
	}

	org := organization{
		Context:   "https://schema.org",
		Type:      "AccountingService",
		Name:      content.SiteName,
		URL:       info.Website,
		Telephone: strings.Join(strings.Fields(info.Phone), ""),
		Email:     info.Email,
		Address: postalAddress{
			Type:     "PostalAddress",
			Street:   addr.Street,
			Postal:   addr.PostalCode,
			Locality: locality,
			Country:  addr.Country,
		},
	}

	// json.Marshal escapes <, > and & so the output is safe inside <script>.
	b, err := json.Marshal(org)
	if err != nil {
		return ""
	}
	return template.JS(b)
}

// Package content holds the structural site data that does not change with
// the locale: identifiers, icons, ordering and the firm's coordinates.
// Visible text lives in the locale catalogs, keyed by the indices and ids
// defined here.
package content

import (
	"strconv"
	"strings"
)

const (
	// SiteName is the legal name used in titles and structured data.
	SiteName = "SRD Partners Sàrl"

	// ServiceKeyPrefix is the catalog list holding per-service text.
	ServiceKeyPrefix = "services.items"
)

// Service is one offering of the firm. Index points at its entry under
// services.items in the locale catalogs.
type Service struct {
	Slug    string
	Icon    string
	Index   int
	MetaKey string
}

// Services lists the offerings in display order.
var Services = []Service{
	{Slug: "comptabilite-fiscalite", Icon: "calculator", Index: 0, MetaKey: "compta"},
	{Slug: "ressources-humaines", Icon: "users", Index: 1, MetaKey: "rh"},
	{Slug: "gestion-administrative", Icon: "shield", Index: 2, MetaKey: "admin"},
	{Slug: "gestion-immobiliere", Icon: "home", Index: 3, MetaKey: "immo"},
}

// ServiceBySlug finds a service by its URL slug.
func ServiceBySlug(slug string) (Service, bool) {
	for _, s := range Services {
		if s.Slug == slug {
			return s, true
		}
	}
	return Service{}, false
}

// Key returns the catalog key of field for this service,
// e.g. "services.items.2.title".
func (s Service) Key(field string) string {
	return ServiceKeyPrefix + "." + strconv.Itoa(s.Index) + "." + field
}

// MegaColumns groups service indices into the columns of the header menu.
var MegaColumns = [][]int{
	{0, 1},
	{2, 3},
}

// MegaMenu resolves MegaColumns to services.
func MegaMenu() [][]Service {
	cols := make([][]Service, 0, len(MegaColumns))
	for _, idx := range MegaColumns {
		col := make([]Service, 0, len(idx))
		for _, i := range idx {
			if i >= 0 && i < len(Services) {
				col = append(col, Services[i])
			}
		}
		cols = append(cols, col)
	}
	return cols
}

// Domain is an area of activity shown on the home page.
type Domain struct {
	ID   string
	Icon string
}

// Domains lists the activity domains in display order.
var Domains = []Domain{
	{ID: "revision", Icon: "search"},
	{ID: "payroll", Icon: "users"},
	{ID: "tax", Icon: "calculator"},
	{ID: "administration", Icon: "shield"},
}

// FeatureIcons are the icons of the home page feature cards, by index.
var FeatureIcons = []string{"shield", "handshake", "lock"}

// Address is a postal address of the firm.
type Address struct {
	ID         string
	Street     string
	PostalCode string
	Locality   string
	Region     string
	Country    string
}

// City renders the postal code and locality on one line.
func (a Address) City() string {
	return strings.TrimSpace(a.PostalCode + " " + a.Locality + " " + a.Region)
}

// Social is an external profile link.
type Social struct {
	Label string
	Href  string
	Icon  string
}

// ContactInfo are the firm's public coordinates.
type ContactInfo struct {
	Person    string
	Role      string
	Email     string
	Phone     string
	Website   string
	Addresses []Address
	Socials   []Social
}

// MainAddress returns the first address.
func (c ContactInfo) MainAddress() Address {
	if len(c.Addresses) == 0 {
		return Address{}
	}
	return c.Addresses[0]
}

// Contact holds the coordinates shown in the footer, on the contact page
// and in structured data.
var Contact = ContactInfo{
	Person:  "Cremilde Hirschi",
	Role:    "Administration · Finance · RH",
	Email:   "cremilde.hirschi@srdpartners.ch",
	Phone:   "+41 32 857 24 19",
	Website: "https://www.srdpartners.ch",
	Addresses: []Address{
		{ID: "main", Street: "Les Vernets 2", PostalCode: "2035", Locality: "Corcelles", Region: "NE", Country: "CH"},
	},
	Socials: []Social{
		{Label: "LinkedIn", Href: "#", Icon: "linkedin"},
	},
}

// OpenGraphLocales maps site locales to Open Graph locale codes.
var OpenGraphLocales = map[string]string{
	"fr": "fr_CH",
	"en": "en_US",
	"pt": "pt_PT",
}

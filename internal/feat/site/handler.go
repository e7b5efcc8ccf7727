package site

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/srdpartners/site/internal/content"
	"github.com/srdpartners/site/internal/feat/contact"
	"github.com/srdpartners/site/internal/web"
	"github.com/srdpartners/site/pkg/cl/i18n"
	"github.com/srdpartners/site/pkg/cl/logger"
	"github.com/srdpartners/site/pkg/cl/middleware"
	"github.com/srdpartners/site/pkg/cl/render"
)

const (
	requestTimeout = 30 * time.Second
	slugParam      = "slug"
	aboutPath      = "/qui-sommes-nous"
	servicesPath   = "/services"
)

var pages = []string{"home", "services", "service", "about", "notfound"}

// ContactForms renders the visitor's contact form for embedding.
type ContactForms interface {
	FormView(r *http.Request, variant string) contact.FormView
}

// Handler serves the brochure pages.
type Handler struct {
	renderer *render.Renderer
	bundle   *i18n.Bundle
	chrome   *web.Chrome
	forms    ContactForms
	log      logger.Logger
}

// NewHandler creates a new site handler.
func NewHandler(
	renderer *render.Renderer,
	bundle *i18n.Bundle,
	chrome *web.Chrome,
	forms ContactForms,
	log logger.Logger,
) *Handler {
	return &Handler{
		renderer: renderer,
		bundle:   bundle,
		chrome:   chrome,
		forms:    forms,
		log:      log,
	}
}

// Start parses every page template so a broken one fails at boot.
func (h *Handler) Start(ctx context.Context) error {
	return h.renderer.Preload(pages...)
}

// RegisterRoutes registers the page routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	h.log.Info("Registering site routes")

	r.Get("/healthz", h.HandleHealth)
	r.Get("/", h.HandleRoot)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))
		r.Use(middleware.Locale(h.bundle))
		r.Get(middleware.LocalePrefix, h.HandleHome)
		r.Get(middleware.LocalePrefix+servicesPath, h.HandleServices)
		r.Get(middleware.LocalePrefix+servicesPath+"/{"+slugParam+"}", h.HandleService)
		r.Get(middleware.LocalePrefix+aboutPath, h.HandleAbout)
	})

	r.NotFound(h.HandleNotFound)
}

// Card is a titled tile with an icon.
type Card struct {
	Title       string
	Description string
	Href        string
	Icon        string
}

// Item is a title with an optional description.
type Item struct {
	Title       string
	Description string
}

type homeData struct {
	web.Page
	Features     []Card
	ServiceCards []Card
	Domains      []Card
}

type servicesData struct {
	web.Page
	ServiceCards []Card
}

type serviceData struct {
	web.Page
	Service content.Service
	Icon    string
	Bullets []Item
	ForWho  []Item
	Form    contact.FormView
}

type aboutData struct {
	web.Page
	Values []Item
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// HandleRoot redirects to the home page of the negotiated locale.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	locale := middleware.NegotiateLocale(h.bundle, r)
	w.Header().Add("Vary", "Accept-Language")
	http.Redirect(w, r, web.LocalePath(locale, ""), http.StatusFound)
}

// HandleHome renders the home page.
func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	page := h.page(r, "", "", "")
	msg := page.Msg

	features := make([]Card, 0, len(content.FeatureIcons))
	for i, icon := range content.FeatureIcons {
		features = append(features, Card{
			Title:       msg.T(listKey("features.items", i, "title")),
			Description: msg.T(listKey("features.items", i, "description")),
			Icon:        icon,
		})
	}

	domains := make([]Card, 0, len(content.Domains))
	for i, d := range content.Domains {
		domains = append(domains, Card{
			Title:       msg.T(listKey("activity.items", i, "title")),
			Description: msg.T(listKey("activity.items", i, "description")),
			Icon:        d.Icon,
		})
	}

	h.renderer.HTML(w, http.StatusOK, "home", homeData{
		Page:         page,
		Features:     features,
		ServiceCards: serviceCards(page),
		Domains:      domains,
	})
}

// HandleServices renders the services overview.
func (h *Handler) HandleServices(w http.ResponseWriter, r *http.Request) {
	page := h.page(r, servicesPath, "meta.servicesTitle", "meta.servicesDescription")
	h.renderer.HTML(w, http.StatusOK, "services", servicesData{
		Page:         page,
		ServiceCards: serviceCards(page),
	})
}

// HandleService renders one service page with the compact contact form.
func (h *Handler) HandleService(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, slugParam)
	svc, ok := content.ServiceBySlug(slug)
	if !ok {
		h.HandleNotFound(w, r)
		return
	}

	page := h.page(r, servicesPath+"/"+svc.Slug, "meta."+svc.MetaKey+"Title", "meta."+svc.MetaKey+"Description")
	form := h.forms.FormView(r, contact.VariantCompact)
	if form.Sending() {
		page.Refresh = contact.SendingRefresh
	}

	h.renderer.HTML(w, http.StatusOK, "service", serviceData{
		Page:    page,
		Service: svc,
		Icon:    svc.Icon,
		Bullets: items(page.Msg, svc.Key("bullets"), "desc"),
		ForWho:  items(page.Msg, svc.Key("forWho"), "desc"),
		Form:    form,
	})
}

// HandleAbout renders the who-we-are page.
func (h *Handler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	page := h.page(r, aboutPath, "meta.whoWeAreTitle", "meta.whoWeAreDescription")
	h.renderer.HTML(w, http.StatusOK, "about", aboutData{
		Page:   page,
		Values: items(page.Msg, "about.values", "description"),
	})
}

// HandleNotFound renders the localized 404 page. The locale comes from the
// first path segment when it is a supported one.
func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	locale := middleware.GetLocale(r.Context())
	if locale == "" {
		seg, _, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
		if h.bundle.Has(seg) {
			locale = seg
		} else {
			locale = middleware.NegotiateLocale(h.bundle, r)
		}
	}

	page := h.chrome.Page(locale, "", "meta.notFoundTitle", "meta.notFoundDescription")
	h.renderer.HTML(w, http.StatusNotFound, "notfound", page)
}

func (h *Handler) page(r *http.Request, path, titleKey, descKey string) web.Page {
	return h.chrome.Page(middleware.GetLocale(r.Context()), path, titleKey, descKey)
}

func serviceCards(page web.Page) []Card {
	cards := make([]Card, 0, len(content.Services))
	for _, s := range content.Services {
		cards = append(cards, Card{
			Title:       page.Msg.T(s.Key("title")),
			Description: page.Msg.T(s.Key("shortDesc")),
			Href:        page.Href(servicesPath + "/" + s.Slug),
			Icon:        s.Icon,
		})
	}
	return cards
}

func items(msg i18n.Translator, prefix, descField string) []Item {
	idx := msg.Indices(prefix)
	out := make([]Item, 0, len(idx))
	for _, i := range idx {
		out = append(out, Item{
			Title:       msg.T(listKey(prefix, i, "title")),
			Description: msg.T(listKey(prefix, i, descField)),
		})
	}
	return out
}

func listKey(prefix string, i int, field string) string {
	return prefix + "." + strconv.Itoa(i) + "." + field
}

package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/srdpartners/site/internal/web"
	"github.com/srdpartners/site/pkg/cl/config"
	"github.com/srdpartners/site/pkg/cl/i18n"
	"github.com/srdpartners/site/pkg/cl/logger"
	"github.com/srdpartners/site/pkg/cl/middleware"
	"github.com/srdpartners/site/pkg/cl/render"
)

// SendingRefresh is the reload delay, in seconds, of pages showing a form
// that is still sending.
const SendingRefresh = 2

const (
	requestTimeout      = 30 * time.Second
	rateLimitWindow     = time.Hour
	rateLimitPruneEvery = 10 * time.Minute
	// fieldLimitFactor scales the submission limit into the field update limit.
	fieldLimitFactor = 20
	pagePath         = "/contact"
)

// Handler serves the contact page and the form endpoints.
type Handler struct {
	registry *Registry
	renderer *render.Renderer
	bundle   *i18n.Bundle
	chrome   *web.Chrome
	cfg      *config.Config
	log      logger.Logger
	limiter  *rateLimiter
	fields   *rateLimiter
}

// NewHandler creates a new contact handler.
func NewHandler(
	registry *Registry,
	renderer *render.Renderer,
	bundle *i18n.Bundle,
	chrome *web.Chrome,
	cfg *config.Config,
	log logger.Logger,
) *Handler {
	return &Handler{
		registry: registry,
		renderer: renderer,
		bundle:   bundle,
		chrome:   chrome,
		cfg:      cfg,
		log:      log,
		limiter:  newRateLimiter(cfg.Contact.RateLimit, rateLimitWindow),
		fields:   newRateLimiter(cfg.Contact.RateLimit*fieldLimitFactor, rateLimitWindow),
	}
}

// Start parses the contact page and launches the rate limiter cleanup loops.
func (h *Handler) Start(ctx context.Context) error {
	if err := h.renderer.Preload("contact"); err != nil {
		return err
	}
	go h.limiter.run(rateLimitPruneEvery)
	go h.fields.run(rateLimitPruneEvery)
	h.log.Infof("Contact handler started (rate limit %d/h)", h.cfg.Contact.RateLimit)
	return nil
}

// Stop halts the rate limiter cleanup loops.
func (h *Handler) Stop(ctx context.Context) error {
	h.limiter.close()
	h.fields.close()
	return nil
}

// RegisterRoutes registers the contact routes under the locale prefix.
func (h *Handler) RegisterRoutes(r chi.Router) {
	h.log.Info("Registering contact routes")

	r.Route(middleware.LocalePrefix+pagePath, func(r chi.Router) {
		r.Use(middleware.Locale(h.bundle))

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(requestTimeout))
			r.Get("/", h.HandleContactPage)
			r.Get("/state", h.HandleState)
			r.Post("/reset", h.HandleReset)
			r.With(h.rateLimit(h.fields)).Post("/field", h.HandleField)

			r.Group(func(r chi.Router) {
				r.Use(h.honeypot)
				r.Use(h.rateLimit(h.limiter))
				r.Post("/", h.HandleSubmit)
			})
		})

		r.Get("/ws", h.HandleStream)
	})
}

// FormView returns the render model of the visitor's form for the locale
// of r, or of an empty form when the visitor has none yet. Site pages use
// it to embed the compact form.
func (h *Handler) FormView(r *http.Request, variant string) FormView {
	locale := middleware.GetLocale(r.Context())
	msg := h.bundle.Translator(locale)

	return NewFormView(h.snapshot(r), msg, web.LocalePath(msg.Locale(), pagePath), variant)
}

type contactPageData struct {
	web.Page
	Form FormView
}

// HandleContactPage renders the contact page with the visitor's form.
func (h *Handler) HandleContactPage(w http.ResponseWriter, r *http.Request) {
	locale := middleware.GetLocale(r.Context())

	page := h.chrome.Page(locale, pagePath, "meta.contactTitle", "meta.contactDescription")
	form := h.FormView(r, VariantPremium)
	if form.Sending() {
		page.Refresh = SendingRefresh
	}

	h.renderer.HTML(w, http.StatusOK, "contact", contactPageData{Page: page, Form: form})
}

type snapshotResponse struct {
	Snapshot
	Ref    string `json:"ref,omitempty"`
	Reason string `json:"error,omitempty"`
}

// HandleSubmit applies every posted field and submits the form.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid form data"})
		return
	}

	form, err := h.form(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	for _, f := range Fields {
		values, ok := r.PostForm[string(f)]
		if !ok || len(values) == 0 {
			continue
		}
		if err := form.UpdateField(f, values[0]); err != nil {
			h.reply(w, r, form.Snapshot(), err, "")
			return
		}
	}

	sub, err := form.Submit()
	if err != nil {
		h.reply(w, r, form.Snapshot(), err, "")
		return
	}

	h.log.Debugf("Contact submission %s started", sub.Ref)
	h.reply(w, r, form.Snapshot(), nil, sub.Ref.String())
}

// HandleField updates a single field.
func (h *Handler) HandleField(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid form data"})
		return
	}

	field, err := ParseField(r.PostFormValue("field"))
	if err != nil {
		h.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	form, err := h.form(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	err = form.UpdateField(field, r.PostFormValue("value"))
	h.jsonResponse(w, statusFor(err, http.StatusOK), snapshotResponse{
		Snapshot: form.Snapshot(),
		Reason:   errorText(err),
	})
}

// HandleReset returns the form from the confirmation or failure view to
// the editable form. A visitor without a form has nothing to reset.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	form, ok := h.peek(r)
	if !ok {
		h.reply(w, r, idleSnapshot(), ErrNotSuccess, "")
		return
	}

	err := form.ResetToIdle()
	if err != nil && !errors.Is(err, ErrNotSuccess) {
		h.log.Errorf("Cannot reset contact form: %v", err)
	}
	h.reply(w, r, form.Snapshot(), err, "")
}

// HandleState returns the visitor's snapshot as JSON, or an idle one when
// the visitor has no form yet.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, snapshotResponse{Snapshot: h.snapshot(r)})
}

// reply answers a form post: JSON clients get the snapshot with a status
// derived from err, browsers are sent back to the page they came from.
func (h *Handler) reply(w http.ResponseWriter, r *http.Request, snap Snapshot, err error, ref string) {
	if wantsJSON(r) {
		ok := http.StatusOK
		if ref != "" {
			ok = http.StatusAccepted
		}
		h.jsonResponse(w, statusFor(err, ok), snapshotResponse{
			Snapshot: snap,
			Ref:      ref,
			Reason:   errorText(err),
		})
		return
	}
	http.Redirect(w, r, backURL(r), http.StatusSeeOther)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Errorf("Cannot resolve contact form: %v", err)
	if wantsJSON(r) {
		h.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// form returns the visitor's form, creating it. Only writes call it.
func (h *Handler) form(r *http.Request) (*Form, error) {
	raw := middleware.GetVisitorID(r.Context())
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("missing visitor identity: %w", err)
	}
	return h.registry.Get(id), nil
}

// peek returns the visitor's form when one exists.
func (h *Handler) peek(r *http.Request) (*Form, bool) {
	id, err := uuid.Parse(middleware.GetVisitorID(r.Context()))
	if err != nil {
		return nil, false
	}
	return h.registry.Peek(id)
}

func (h *Handler) snapshot(r *http.Request) Snapshot {
	if form, ok := h.peek(r); ok {
		return form.Snapshot()
	}
	return idleSnapshot()
}

func idleSnapshot() Snapshot {
	return Snapshot{State: StateIdle, Errors: ValidationErrors{}}
}

func statusFor(err error, ok int) int {
	switch {
	case err == nil:
		return ok
	case errors.Is(err, ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, ErrLocked), errors.Is(err, ErrNotSuccess):
		return http.StatusConflict
	case errors.Is(err, ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Errorf("Cannot encode JSON response: %v", err)
	}
}

package contact

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/srdpartners/site/pkg/cl/logger"
)

const sweepInterval = time.Minute

type entry struct {
	form     *Form
	lastSeen time.Time
}

// Registry keeps one Form per visitor and closes forms idle longer than ttl.
type Registry struct {
	submitter Submitter
	ttl       time.Duration
	log       logger.Logger
	now       func() time.Time

	mu    sync.Mutex
	forms map[uuid.UUID]*entry

	stop chan struct{}
	done chan struct{}
}

// NewRegistry creates an empty registry. Forms it creates use submitter.
func NewRegistry(submitter Submitter, ttl time.Duration, log logger.Logger) *Registry {
	return &Registry{
		submitter: submitter,
		ttl:       ttl,
		log:       log.With("component", "contact_registry"),
		now:       time.Now,
		forms:     make(map[uuid.UUID]*entry),
	}
}

// Get returns the visitor's form, creating it on first use.
func (r *Registry) Get(visitorID uuid.UUID) *Form {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.forms[visitorID]; ok {
		e.lastSeen = r.now()
		return e.form
	}

	f := NewForm(r.submitter, r.log.With("visitor", visitorID.String()))
	r.forms[visitorID] = &entry{form: f, lastSeen: r.now()}
	return f
}

// Peek returns the visitor's form without creating or touching it.
func (r *Registry) Peek(visitorID uuid.UUID) (*Form, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.forms[visitorID]
	if !ok {
		return nil, false
	}
	return e.form, true
}

// Len returns the number of live forms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}

// Start launches the idle sweeper.
func (r *Registry) Start(ctx context.Context) error {
	r.stop = make(chan struct{})
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := r.sweep(r.now()); n > 0 {
					r.log.Debugf("Closed %d idle contact forms", n)
				}
			case <-r.stop:
				return
			}
		}
	}()

	r.log.Infof("Contact registry started (ttl=%s)", r.ttl)
	return nil
}

// Stop halts the sweeper and closes every form, cancelling pending
// submissions.
func (r *Registry) Stop(ctx context.Context) error {
	if r.stop != nil {
		close(r.stop)
		select {
		case <-r.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		r.stop = nil
	}

	r.mu.Lock()
	forms := r.forms
	r.forms = make(map[uuid.UUID]*entry)
	r.mu.Unlock()

	for _, e := range forms {
		e.form.Close()
	}
	r.log.Infof("Contact registry stopped (%d forms closed)", len(forms))
	return nil
}

// sweep closes forms not seen since now-ttl, except those still sending.
func (r *Registry) sweep(now time.Time) int {
	cutoff := now.Add(-r.ttl)

	r.mu.Lock()
	var stale []*Form
	for id, e := range r.forms {
		if !e.lastSeen.Before(cutoff) {
			continue
		}
		if e.form.Snapshot().State == StateSending {
			continue
		}
		stale = append(stale, e.form)
		delete(r.forms, id)
	}
	r.mu.Unlock()

	for _, f := range stale {
		f.Close()
	}
	return len(stale)
}

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/srdpartners/site/pkg/cl/logger"
)

// Startable represents a component that can be started.
// Components implementing this interface will have Start called during application startup.
type Startable interface {
	Start(context.Context) error
}

// Stoppable represents a component that can be stopped.
// Components implementing this interface will have Stop called during application shutdown.
type Stoppable interface {
	Stop(context.Context) error
}

// RouteRegistrar represents a component that registers HTTP routes.
// Components implementing this interface will have RegisterRoutes called during setup.
type RouteRegistrar interface {
	RegisterRoutes(chi.Router)
}

type component struct {
	name  string
	start func(context.Context) error
	stop  func(context.Context) error
}

// Lifecycle holds the start/stop pipelines discovered from components.
type Lifecycle struct {
	comps      []component
	registrars []RouteRegistrar
}

// Setup inspects each component for RouteRegistrar, Startable and Stoppable
// and collects them in the given order.
func Setup(comps ...any) *Lifecycle {
	lc := &Lifecycle{}
	for _, c := range comps {
		entry := component{name: fmt.Sprintf("%T", c)}
		if rr, ok := c.(RouteRegistrar); ok {
			lc.registrars = append(lc.registrars, rr)
		}
		if s, ok := c.(Startable); ok {
			entry.start = s.Start
		}
		if st, ok := c.(Stoppable); ok {
			entry.stop = st.Stop
		}
		if entry.start != nil || entry.stop != nil {
			lc.comps = append(lc.comps, entry)
		}
	}
	return lc
}

// Start runs every start function in order. If one fails, the components
// already started are stopped in reverse order and the error is returned.
// Routes are registered only once all components started.
func (lc *Lifecycle) Start(ctx context.Context, log logger.Logger, router chi.Router) error {
	for i, c := range lc.comps {
		if c.start == nil {
			continue
		}
		if err := c.start(ctx); err != nil {
			log.Errorf("Cannot start %s: %v", c.name, err)
			lc.stopRange(context.Background(), log, i-1)
			return fmt.Errorf("cannot start %s: %w", c.name, err)
		}
	}

	for _, rr := range lc.registrars {
		rr.RegisterRoutes(router)
	}
	return nil
}

// Stop stops all components in reverse order (LIFO).
func (lc *Lifecycle) Stop(ctx context.Context, log logger.Logger) {
	lc.stopRange(ctx, log, len(lc.comps)-1)
}

func (lc *Lifecycle) stopRange(ctx context.Context, log logger.Logger, last int) {
	for i := last; i >= 0; i-- {
		c := lc.comps[i]
		if c.stop == nil {
			continue
		}
		if err := c.stop(ctx); err != nil {
			log.Errorf("Cannot stop %s: %v", c.name, err)
		}
	}
}

// NewServer creates the HTTP server for handler.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts the server down gracefully
// within shutdownTimeout and stops every component.
func Run(ctx context.Context, srv *http.Server, lc *Lifecycle, log logger.Logger, shutdownTimeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("cannot serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		lc.Stop(shutdownCtx, log)
		if err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

package contact

import (
	"context"
	"time"

	"github.com/srdpartners/site/pkg/cl/logger"
)

// Submitter delivers a validated form. It must honour ctx cancellation.
type Submitter interface {
	Submit(ctx context.Context, in FormInput) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, in FormInput) error

func (f SubmitterFunc) Submit(ctx context.Context, in FormInput) error {
	return f(ctx, in)
}

// SimulatedSubmitter accepts every form after a fixed delay without sending
// it anywhere.
type SimulatedSubmitter struct {
	delay time.Duration
	log   logger.Logger
}

// NewSimulatedSubmitter creates a submitter that waits delay.
func NewSimulatedSubmitter(delay time.Duration, log logger.Logger) *SimulatedSubmitter {
	return &SimulatedSubmitter{
		delay: delay,
		log:   log.With("component", "contact_submitter"),
	}
}

// Submit waits for the delay or for ctx, whichever comes first.
func (s *SimulatedSubmitter) Submit(ctx context.Context, in FormInput) error {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		s.log.Debugf("Contact submission simulated (subject=%s)", in.Subject)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

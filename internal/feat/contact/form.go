package contact

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/srdpartners/site/pkg/cl/logger"
)

// Form is the contact form controller of one visitor. It owns the typed
// input, the current validation errors and the submission lifecycle:
//
//	idle --Submit(valid)--> sending --done--> success --ResetToIdle--> idle
//	                                  \-fail-> error   --ResetToIdle--> idle
//
// At most one submission runs at a time. Close cancels it; a cancelled
// submission never touches the form.
type Form struct {
	submitter Submitter
	log       logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	input   FormInput
	errs    ValidationErrors
	state   State
	failure string
	closed  bool
	subs    map[int]chan Snapshot
	nextSub int
}

// NewForm creates an idle, empty form.
func NewForm(submitter Submitter, log logger.Logger) *Form {
	ctx, cancel := context.WithCancel(context.Background())
	return &Form{
		submitter: submitter,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		errs:      ValidationErrors{},
		state:     StateIdle,
		subs:      make(map[int]chan Snapshot),
	}
}

// UpdateField stores value and clears a stale error on that field without
// re-validating.
func (f *Form) UpdateField(field Field, value string) error {
	if _, err := ParseField(string(field)); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editableLocked(); err != nil {
		return err
	}

	f.input.set(field, value)
	if _, ok := f.errs[field]; ok {
		delete(f.errs, field)
		f.broadcastLocked()
	}
	return nil
}

// Validate recomputes the whole error set from the current input and
// reports whether it is empty.
func (f *Form) Validate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.errs = Validate(f.input)
	f.broadcastLocked()
	return len(f.errs) == 0
}

// Submit validates and, when valid, moves to sending and starts the
// submission. Invalid input returns ErrInvalid and leaves the state alone.
func (f *Form) Submit() (*Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editableLocked(); err != nil {
		return nil, err
	}

	f.errs = Validate(f.input)
	if len(f.errs) > 0 {
		f.broadcastLocked()
		return nil, ErrInvalid
	}

	sub := newSubmission(f.input)
	f.state = StateSending
	f.failure = ""
	f.broadcastLocked()

	f.wg.Add(1)
	go f.run(sub)

	return sub, nil
}

func (f *Form) run(sub *Submission) {
	defer f.wg.Done()
	err := f.submitter.Submit(f.ctx, sub.input)
	f.complete(sub, err)
}

func (f *Form) complete(sub *Submission, err error) {
	f.mu.Lock()

	if f.ctx.Err() != nil {
		f.mu.Unlock()
		f.log.Debugf("Contact submission %s abandoned on teardown", sub.Ref)
		if err == nil {
			err = ErrClosed
		} else {
			err = fmt.Errorf("%w: %w", ErrClosed, err)
		}
		sub.finish(Result{Ref: sub.Ref, Err: err})
		return
	}

	if err == nil {
		f.state = StateSuccess
		f.input = FormInput{}
		f.errs = ValidationErrors{}
		f.log.Infof("Contact submission %s accepted", sub.Ref)
	} else {
		f.state = StateError
		f.failure = err.Error()
		f.log.Errorf("Contact submission %s failed: %v", sub.Ref, err)
	}
	f.broadcastLocked()
	f.mu.Unlock()

	sub.finish(Result{Ref: sub.Ref, Err: err})
}

// ResetToIdle leaves the confirmation (or failure) view. The input is kept
// as is: already empty after success, preserved after an error.
func (f *Form) ResetToIdle() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	if f.state != StateSuccess && f.state != StateError {
		return ErrNotSuccess
	}

	f.state = StateIdle
	f.failure = ""
	f.broadcastLocked()
	return nil
}

// Snapshot returns a copy of the current state.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Subscribe returns a channel receiving the latest snapshot after every
// change, and a function to unsubscribe. Slow readers skip intermediate
// snapshots. The channel is closed on unsubscribe or Close.
func (f *Form) Subscribe() (<-chan Snapshot, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if f.closed {
		close(ch)
		return ch, func() {}
	}

	id := f.nextSub
	f.nextSub++
	f.subs[id] = ch

	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if c, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(c)
		}
	}
}

// Close tears the form down: the pending submission is cancelled and
// awaited, subscribers are released. Safe to call more than once.
func (f *Form) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.cancel()
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
	f.mu.Unlock()

	f.wg.Wait()
}

func (f *Form) editableLocked() error {
	if f.closed {
		return ErrClosed
	}
	if !f.state.Editable() {
		return ErrLocked
	}
	return nil
}

func (f *Form) snapshotLocked() Snapshot {
	return Snapshot{
		State:   f.state,
		Input:   f.input,
		Errors:  f.errs.clone(),
		Failure: f.failure,
	}
}

func (f *Form) broadcastLocked() {
	if len(f.subs) == 0 {
		return
	}
	snap := f.snapshotLocked()
	for _, ch := range f.subs {
		offer(ch, snap)
	}
}

// offer replaces whatever is buffered in ch with s.
func offer(ch chan Snapshot, s Snapshot) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}

// Submission is the pending result of one Submit call.
type Submission struct {
	Ref    uuid.UUID
	input  FormInput
	done   chan struct{}
	result Result
}

func newSubmission(in FormInput) *Submission {
	return &Submission{
		Ref:   uuid.New(),
		input: in,
		done:  make(chan struct{}),
	}
}

func (s *Submission) finish(r Result) {
	s.result = r
	close(s.done)
}

// Done is closed once the submission has a result.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Result returns the outcome, and false while still pending.
func (s *Submission) Result() (Result, bool) {
	select {
	case <-s.done:
		return s.result, true
	default:
		return Result{}, false
	}
}

// Wait blocks until the submission completes or ctx ends.
func (s *Submission) Wait(ctx context.Context) (Result, error) {
	select {
	case <-s.done:
		return s.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

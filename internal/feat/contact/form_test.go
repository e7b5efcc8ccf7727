package contact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/srdpartners/site/pkg/cl/logger"
)

func nopLogger() logger.Logger {
	return logger.NewNoopLogger()
}

// gateSubmitter blocks every submission until the test releases it.
type gateSubmitter struct {
	started chan FormInput
	release chan error
}

func newGateSubmitter() *gateSubmitter {
	return &gateSubmitter{
		started: make(chan FormInput, 1),
		release: make(chan error),
	}
}

func (g *gateSubmitter) Submit(ctx context.Context, in FormInput) error {
	g.started <- in
	select {
	case err := <-g.release:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func fill(t *testing.T, f *Form) {
	t.Helper()
	require.NoError(t, f.UpdateField(FieldName, "Jane Doe"))
	require.NoError(t, f.UpdateField(FieldCompany, "Acme SA"))
	require.NoError(t, f.UpdateField(FieldEmail, "jane@example.ch"))
	require.NoError(t, f.UpdateField(FieldSubject, "audit"))
	require.NoError(t, f.UpdateField(FieldMessage, "Bonjour"))
}

func waitResult(t *testing.T, sub *Submission) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, err := sub.Wait(ctx)
	require.NoError(t, err, "submission did not complete")
	return res
}

func TestNewFormIsIdleAndEmpty(t *testing.T) {
	f := NewForm(newGateSubmitter(), nopLogger())
	defer f.Close()

	snap := f.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.True(t, snap.Input.IsEmpty())
	assert.Empty(t, snap.Errors)
}

func TestSubmitEmptyFormReportsErrors(t *testing.T) {
	g := newGateSubmitter()
	f := NewForm(g, nopLogger())
	defer f.Close()

	sub, err := f.Submit()
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Nil(t, sub)

	snap := f.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, ValidationErrors{
		FieldName:    KindRequired,
		FieldEmail:   KindRequired,
		FieldSubject: KindRequired,
		FieldMessage: KindRequired,
	}, snap.Errors)

	select {
	case <-g.started:
		t.Fatal("invalid form must not schedule a submission")
	default:
	}
}

func TestUpdateFieldClearsOnlyItsError(t *testing.T) {
	f := NewForm(newGateSubmitter(), nopLogger())
	defer f.Close()

	require.NoError(t, f.UpdateField(FieldEmail, "a@b"))
	assert.False(t, f.Validate())
	assert.Equal(t, KindInvalidFormat, f.Snapshot().Error(FieldEmail))

	// Still invalid, but the error is cleared until the next validation.
	require.NoError(t, f.UpdateField(FieldEmail, "a@bc"))
	snap := f.Snapshot()
	assert.Equal(t, ErrorKind(""), snap.Error(FieldEmail))
	assert.Equal(t, KindRequired, snap.Error(FieldName))
	assert.Equal(t, "a@bc", snap.Input.Email)

	assert.False(t, f.Validate())
	assert.Equal(t, KindInvalidFormat, f.Snapshot().Error(FieldEmail))
}

func TestUpdateFieldRejectsUnknownField(t *testing.T) {
	f := NewForm(newGateSubmitter(), nopLogger())
	defer f.Close()

	err := f.UpdateField(Field("password"), "x")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestUpdateFieldStoresUnknownSubjectAsUnselected(t *testing.T) {
	f := NewForm(newGateSubmitter(), nopLogger())
	defer f.Close()

	require.NoError(t, f.UpdateField(FieldSubject, "patrimoine"))
	assert.Equal(t, SubjectPatrimony, f.Snapshot().Input.Subject)

	require.NoError(t, f.UpdateField(FieldSubject, "astrology"))
	assert.Equal(t, SubjectNone, f.Snapshot().Input.Subject)
}

func TestSubmitLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := newGateSubmitter()
	f := NewForm(g, nopLogger())
	defer f.Close()

	fill(t, f)

	sub, err := f.Submit()
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, StateSending, f.Snapshot().State)

	got := <-g.started
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, SubjectAudit, got.Subject)

	// The submit control is disabled while sending.
	_, err = f.Submit()
	assert.ErrorIs(t, err, ErrLocked)
	assert.ErrorIs(t, f.UpdateField(FieldName, "x"), ErrLocked)
	assert.ErrorIs(t, f.ResetToIdle(), ErrNotSuccess)

	_, done := sub.Result()
	assert.False(t, done)

	g.release <- nil
	res := waitResult(t, sub)
	assert.True(t, res.OK())
	assert.Equal(t, sub.Ref, res.Ref)

	snap := f.Snapshot()
	assert.Equal(t, StateSuccess, snap.State)
	assert.True(t, snap.Input.IsEmpty())
	assert.Empty(t, snap.Errors)

	// Editing is locked on the confirmation view.
	assert.ErrorIs(t, f.UpdateField(FieldName, "x"), ErrLocked)

	require.NoError(t, f.ResetToIdle())
	snap = f.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.True(t, snap.Input.IsEmpty())

	assert.ErrorIs(t, f.ResetToIdle(), ErrNotSuccess)
}

func TestSubmitterFailureMovesToError(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := newGateSubmitter()
	f := NewForm(g, nopLogger())
	defer f.Close()

	fill(t, f)
	sub, err := f.Submit()
	require.NoError(t, err)
	<-g.started

	g.release <- errors.New("relay unavailable")
	res := waitResult(t, sub)
	assert.False(t, res.OK())

	snap := f.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.Equal(t, "relay unavailable", snap.Failure)
	assert.Equal(t, "Jane Doe", snap.Input.Name, "input is kept for a retry")

	// The form stays editable and can be submitted again.
	require.NoError(t, f.UpdateField(FieldPhone, "+41 32 000 00 00"))
	sub, err = f.Submit()
	require.NoError(t, err)
	<-g.started
	g.release <- nil
	waitResult(t, sub)
	assert.Equal(t, StateSuccess, f.Snapshot().State)
}

func TestResetFromErrorKeepsInput(t *testing.T) {
	g := newGateSubmitter()
	f := NewForm(g, nopLogger())
	defer f.Close()

	fill(t, f)
	sub, err := f.Submit()
	require.NoError(t, err)
	<-g.started
	g.release <- errors.New("boom")
	waitResult(t, sub)

	require.NoError(t, f.ResetToIdle())
	snap := f.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Failure)
	assert.Equal(t, "jane@example.ch", snap.Input.Email)
}

func TestCloseCancelsPendingSubmission(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := newGateSubmitter()
	f := NewForm(g, nopLogger())

	fill(t, f)
	sub, err := f.Submit()
	require.NoError(t, err)
	<-g.started

	f.Close()

	res, done := sub.Result()
	require.True(t, done, "Close waits for the pending submission")
	assert.ErrorIs(t, res.Err, ErrClosed)
	assert.ErrorIs(t, res.Err, context.Canceled)

	// A cancelled task never completes the form.
	snap := f.Snapshot()
	assert.Equal(t, StateSending, snap.State)
	assert.Equal(t, "Jane Doe", snap.Input.Name)

	assert.ErrorIs(t, f.UpdateField(FieldName, "x"), ErrClosed)
	_, err = f.Submit()
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, f.ResetToIdle(), ErrClosed)

	// Idempotent.
	f.Close()
}

func TestSubscribeReceivesChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := newGateSubmitter()
	f := NewForm(g, nopLogger())

	updates, unsubscribe := f.Subscribe()
	defer unsubscribe()

	fill(t, f)
	sub, err := f.Submit()
	require.NoError(t, err)

	snap := <-updates
	assert.Equal(t, StateSending, snap.State)

	<-g.started
	g.release <- nil
	waitResult(t, sub)

	snap = <-updates
	assert.Equal(t, StateSuccess, snap.State)

	f.Close()
	_, open := <-updates
	assert.False(t, open, "Close releases subscribers")
}

func TestSubscribeKeepsOnlyLatest(t *testing.T) {
	f := NewForm(newGateSubmitter(), nopLogger())
	defer f.Close()

	updates, unsubscribe := f.Subscribe()

	f.Validate()
	require.NoError(t, f.UpdateField(FieldName, "Jane"))
	require.NoError(t, f.UpdateField(FieldEmail, "jane@example.ch"))

	snap := <-updates
	assert.Equal(t, "jane@example.ch", snap.Input.Email)
	assert.Len(t, snap.Errors, 2)

	unsubscribe()
	_, open := <-updates
	assert.False(t, open)

	// Unsubscribing twice is harmless.
	unsubscribe()
}

func TestSubscribeAfterClose(t *testing.T) {
	f := NewForm(newGateSubmitter(), nopLogger())
	f.Close()

	updates, unsubscribe := f.Subscribe()
	defer unsubscribe()
	_, open := <-updates
	assert.False(t, open)
}

func TestSimulatedSubmitter(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewSimulatedSubmitter(10*time.Millisecond, nopLogger())
	assert.NoError(t, s.Submit(context.Background(), FormInput{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := NewSimulatedSubmitter(time.Hour, nopLogger())
	assert.ErrorIs(t, slow.Submit(ctx, FormInput{}), context.Canceled)
}

func TestSimulatedSubmissionEndToEnd(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := NewForm(NewSimulatedSubmitter(5*time.Millisecond, nopLogger()), nopLogger())
	defer f.Close()

	fill(t, f)
	sub, err := f.Submit()
	require.NoError(t, err)

	res := waitResult(t, sub)
	assert.True(t, res.OK())
	assert.Equal(t, StateSuccess, f.Snapshot().State)
}

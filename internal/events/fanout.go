package events

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/cenkalti/backoff/v4"
)

// HandlerFunc adapts a function to DeliveryHandler.
type HandlerFunc func(ctx context.Context, entry OutboxEntry) error

func (f HandlerFunc) Handle(ctx context.Context, entry OutboxEntry) error {
	return f(ctx, entry)
}

// Permanent marks err as one that no retry can fix, e.g. a provider
// rejecting credentials. The Deliverer dead-letters such entries at once.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// IsPermanent reports whether err, or anything it wraps, was marked Permanent.
func IsPermanent(err error) bool {
	var perm *backoff.PermanentError
	return errors.As(err, &perm)
}

// Route is one named downstream of a Fanout. The name is persisted with the
// outbox entry once the route succeeds, so it must stay stable across deploys.
type Route struct {
	Name    string
	Handler DeliveryHandler
}

// DeliveryError reports the routes that succeeded during a partially failed
// fan-out.
type DeliveryError struct {
	Completed []string
	Err       error
}

func (e *DeliveryError) Error() string { return e.Err.Error() }

func (e *DeliveryError) Unwrap() error { return e.Err }

// Fanout hands every entry to each route in order, skipping routes listed in
// entry.Completed. All pending routes run even when one fails.
type Fanout []Route

func (f Fanout) Handle(ctx context.Context, entry OutboxEntry) error {
	var (
		completed []string
		errs      []error
		permanent = true
	)
	for _, route := range f {
		if route.Handler == nil || slices.Contains(entry.Completed, route.Name) {
			continue
		}
		if err := route.Handler.Handle(ctx, entry); err != nil {
			permanent = permanent && IsPermanent(err)
			errs = append(errs, fmt.Errorf("%s: %w", route.Name, err))
			continue
		}
		completed = append(completed, route.Name)
	}
	if len(errs) == 0 {
		return nil
	}

	err := errors.Join(errs...)
	if permanent {
		err = Permanent(err)
	} else {
		err = stripPermanent(errs)
	}
	return &DeliveryError{Completed: completed, Err: err}
}

// stripPermanent rejoins errs without Permanent markers. Used when at least one
// route failed transiently.
func stripPermanent(errs []error) error {
	out := make([]error, 0, len(errs))
	for _, err := range errs {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = errors.New(err.Error())
		}
		out = append(out, err)
	}
	return errors.Join(out...)
}

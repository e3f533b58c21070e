package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/api"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a session token
	// and none is held. No request is issued.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrRefreshFailed wraps the fetch error when a mutation was accepted by
	// the API but the snapshot could not be re-fetched afterwards.
	ErrRefreshFailed = errors.New("snapshot refresh failed")

	errReset = errors.New("snapshot reset")
)

// Session is the part of the session store the services need.
type Session interface {
	Token() (string, bool)
	ClearToken(ctx context.Context) error
}

// resource keeps one remote snapshot in sync. Mutations are serialized and
// always followed by a full re-fetch; concurrent fetches share one request.
type resource[T any] struct {
	name    string
	session Session
	load    func(ctx context.Context, token string) (T, error)

	mu   sync.Mutex
	sfg  singleflight.Group
	snap *snapshot[T]
}

func newResource[T any](name string, session Session, clone func(T) T, load func(ctx context.Context, token string) (T, error)) *resource[T] {
	return &resource[T]{
		name:    name,
		session: session,
		load:    load,
		snap:    newSnapshot(clone),
	}
}

func (r *resource[T]) fetch(ctx context.Context) (T, error) {
	epoch := r.snap.generation()
	token, ok := r.session.Token()
	if !ok {
		var zero T
		return zero, ErrNotAuthenticated
	}
	return r.fetchWith(ctx, token, epoch)
}

// fetchWith loads the snapshot with token. The shared request keeps the
// starting caller's deadline but not its cancellation, so callers that joined
// it are not failed by another caller going away.
func (r *resource[T]) fetchWith(ctx context.Context, token string, epoch uint64) (T, error) {
	var zero T

	ch := r.sfg.DoChan(r.name, func() (interface{}, error) {
		seq, ok := r.snap.begin(epoch)
		if !ok {
			return nil, errReset
		}

		fctx := context.WithoutCancel(ctx)
		if deadline, ok := ctx.Deadline(); ok {
			var cancel context.CancelFunc
			fctx, cancel = context.WithDeadline(fctx, deadline)
			defer cancel()
		}

		value, err := r.load(fctx, token)
		if err != nil {
			r.snap.fail(seq, err)
			return nil, err
		}
		r.snap.commit(seq, value)
		return value, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	if errors.Is(res.Err, errReset) {
		return r.afterReset()
	}
	if res.Err != nil {
		log.Printf("%s fetch error: %v \n", r.name, res.Err)
		return zero, r.checkSession(ctx, res.Err)
	}
	return r.snap.clone(res.Val.(T)), nil
}

// afterReset answers a caller whose work overlapped a reset. Without a
// session that is a sign-out; otherwise the cleared snapshot stands until the
// next fetch.
func (r *resource[T]) afterReset() (T, error) {
	if _, ok := r.session.Token(); !ok {
		var zero T
		return zero, ErrNotAuthenticated
	}
	return r.snap.get(), nil
}

// mutate runs call with the current token and re-fetches on success. The
// re-fetch is skipped when the snapshot was reset while call ran.
func (r *resource[T]) mutate(ctx context.Context, op string, call func(token string) error) error {
	if _, ok := r.session.Token(); !ok {
		return ErrNotAuthenticated
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// read again under the lock: a sign-out may have happened while waiting
	epoch := r.snap.generation()
	token, ok := r.session.Token()
	if !ok {
		return ErrNotAuthenticated
	}

	if err := call(token); err != nil {
		log.Printf("%s %s error: %v \n", r.name, op, err)
		r.snap.failMutation(epoch, err)
		return r.checkSession(ctx, err)
	}

	// a fetch already in flight may predate this mutation
	r.sfg.Forget(r.name)
	if _, err := r.fetchWith(ctx, token, epoch); err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return err
		}
		return fmt.Errorf("%s %s: %w: %w", r.name, op, ErrRefreshFailed, err)
	}
	return nil
}

// checkSession ends the session when the API rejected the token.
func (r *resource[T]) checkSession(ctx context.Context, err error) error {
	if !errors.Is(err, api.ErrSessionExpired) {
		return err
	}
	log.Printf("%s: session expired, signing out \n", r.name)
	if errClear := r.session.ClearToken(context.WithoutCancel(ctx)); errClear != nil {
		log.Printf("session clear error: %v \n", errClear)
	}
	return err
}

func (r *resource[T]) reset() {
	r.sfg.Forget(r.name)
	r.snap.reset()
}

package gopher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrCancelled is returned when a fetch is abandoned by the user.
var ErrCancelled = errors.New("fetch cancelled")

// FetchErrorKind classifies fetch failures.
type FetchErrorKind int

const (
	FetchCancelled FetchErrorKind = iota
	FetchTimeout
	FetchTransport
)

// FetchError describes a failed fetch.
type FetchError struct {
	Kind FetchErrorKind
	Addr Address
	Err  error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchCancelled:
		return fmt.Sprintf("fetch of %s cancelled", e.Addr)
	case FetchTimeout:
		return fmt.Sprintf("fetch of %s timed out", e.Addr)
	default:
		return e.Err.Error()
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher performs the gopher request-response exchange: write the
// selector, read until the server closes the stream. The protocol has no
// length header; connection close is the only terminator.
type Fetcher struct {
	dialer  *Dialer
	timeout time.Duration
}

// NewFetcher creates a Fetcher using the given dialer. timeout bounds the
// whole exchange; zero means no limit beyond the caller's context.
func NewFetcher(dialer *Dialer, timeout time.Duration) *Fetcher {
	return &Fetcher{dialer: dialer, timeout: timeout}
}

// Fetch retrieves the resource at addr. Cancelling ctx aborts a blocked
// read immediately. A page is all-or-nothing: bytes received before a
// cancellation or timeout are discarded, never surfaced as a partial page.
func (f *Fetcher) Fetch(ctx context.Context, addr Address) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	conn, err := f.dialer.Dial(ctx, addr)
	if err != nil {
		return nil, f.classify(ctx, addr, err)
	}
	defer conn.Close()

	// Unblock the read when the context fires; net.Conn reads cannot be
	// interrupted any other way.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.SetDeadline(time.Now())
		case <-watchDone:
		}
	}()

	if _, err := conn.Write([]byte(addr.Selector + "\r\n")); err != nil {
		return nil, f.classify(ctx, addr, err)
	}

	body, err := io.ReadAll(conn)
	if err != nil {
		return nil, f.classify(ctx, addr, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, f.classify(ctx, addr, err)
	}
	return body, nil
}

// classify maps a low-level failure to a FetchError, letting the context
// state win over whatever I/O error the aborted read produced.
func (f *Fetcher) classify(ctx context.Context, addr Address, err error) *FetchError {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return &FetchError{Kind: FetchCancelled, Addr: addr, Err: ErrCancelled}
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &FetchError{Kind: FetchTimeout, Addr: addr, Err: context.DeadlineExceeded}
	default:
		return &FetchError{Kind: FetchTransport, Addr: addr, Err: err}
	}
}

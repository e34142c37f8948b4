package gopher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"golang.org/x/net/proxy"
)

// TransportMode selects how the connection to a gopher server is made.
type TransportMode int

const (
	ModePlain TransportMode = iota
	ModeTLS
	ModeTor
	ModeTorTLS
)

// String returns the short human-readable mode name shown in the UI.
func (m TransportMode) String() string {
	switch m {
	case ModeTLS:
		return "tls"
	case ModeTor:
		return "tor"
	case ModeTorTLS:
		return "tor+tls"
	default:
		return "plain"
	}
}

// Encrypted reports whether the mode performs a TLS handshake.
func (m TransportMode) Encrypted() bool {
	return m == ModeTLS || m == ModeTorTLS
}

// Anonymized reports whether the mode routes through the SOCKS proxy.
func (m TransportMode) Anonymized() bool {
	return m == ModeTor || m == ModeTorTLS
}

// TransportErrorKind classifies connection failures for display.
type TransportErrorKind int

const (
	ErrKindDNS TransportErrorKind = iota
	ErrKindRefused
	ErrKindTimeout
	ErrKindTLSHandshake
	ErrKindProxy
	ErrKindOther
)

// TransportError is a classified connection failure. Transport errors are
// never fatal to a session; they surface as error pages.
type TransportError struct {
	Kind TransportErrorKind
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case ErrKindDNS:
		return fmt.Sprintf("cannot resolve %s: %v", e.Addr, e.Err)
	case ErrKindRefused:
		return fmt.Sprintf("connection refused by %s", e.Addr)
	case ErrKindTimeout:
		return fmt.Sprintf("connection to %s timed out", e.Addr)
	case ErrKindTLSHandshake:
		return fmt.Sprintf("TLS handshake with %s failed: %v", e.Addr, e.Err)
	case ErrKindProxy:
		return fmt.Sprintf("SOCKS proxy unreachable: %v", e.Err)
	default:
		return fmt.Sprintf("cannot connect to %s: %v", e.Addr, e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DefaultTorAddr is where the local Tor SOCKS listener usually lives.
const DefaultTorAddr = "127.0.0.1:9050"

// Dialer establishes byte streams to gopher servers. Mode selection is
// purely client-side configuration; nothing is negotiated with the peer.
type Dialer struct {
	Mode        TransportMode
	TorAddr     string
	TLSInsecure bool
	Timeout     time.Duration
}

// Option configures a Dialer.
type Option func(*Dialer)

// NewDialer creates a Dialer with the given options.
func NewDialer(opts ...Option) *Dialer {
	d := &Dialer{
		Mode:    ModePlain,
		TorAddr: DefaultTorAddr,
		Timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithMode sets the transport mode.
func WithMode(mode TransportMode) Option {
	return func(d *Dialer) {
		d.Mode = mode
	}
}

// WithTorAddr sets the local SOCKS proxy address for the Tor modes.
func WithTorAddr(addr string) Option {
	return func(d *Dialer) {
		if addr != "" {
			d.TorAddr = addr
		}
	}
}

// WithTLSInsecure disables peer certificate validation.
func WithTLSInsecure() Option {
	return func(d *Dialer) {
		d.TLSInsecure = true
	}
}

// WithConnectTimeout sets the dial timeout.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(d *Dialer) {
		d.Timeout = timeout
	}
}

// Dial opens a connection to addr according to the configured mode.
// Failures come back as *TransportError.
func (d *Dialer) Dial(ctx context.Context, addr Address) (net.Conn, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	conn, err := d.dialRaw(ctx, addr)
	if err != nil {
		return nil, err
	}

	if d.Mode.Encrypted() {
		tlsConn := tls.Client(conn, &tls.Config{
			ServerName:         addr.Host,
			InsecureSkipVerify: d.TLSInsecure,
		})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, &TransportError{Kind: ErrKindTLSHandshake, Addr: addr.HostPort(), Err: err}
		}
		return tlsConn, nil
	}
	return conn, nil
}

func (d *Dialer) dialRaw(ctx context.Context, addr Address) (net.Conn, error) {
	if d.Mode.Anonymized() {
		socks, err := proxy.SOCKS5("tcp", d.TorAddr, nil, &net.Dialer{})
		if err != nil {
			return nil, &TransportError{Kind: ErrKindProxy, Addr: addr.HostPort(), Err: err}
		}
		dialer, ok := socks.(proxy.ContextDialer)
		if !ok {
			return nil, &TransportError{Kind: ErrKindProxy, Addr: addr.HostPort(), Err: errors.New("SOCKS dialer lacks context support")}
		}
		conn, err := dialer.DialContext(ctx, "tcp", addr.HostPort())
		if err != nil {
			return nil, classifyProxyErr(addr, err)
		}
		return conn, nil
	}

	var nd net.Dialer
	conn, err := nd.DialContext(ctx, "tcp", addr.HostPort())
	if err != nil {
		return nil, classifyDialErr(addr, err)
	}
	return conn, nil
}

func classifyDialErr(addr Address, err error) *TransportError {
	te := &TransportError{Kind: ErrKindOther, Addr: addr.HostPort(), Err: err}
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &dnsErr):
		te.Kind = ErrKindDNS
	case errors.Is(err, syscall.ECONNREFUSED):
		te.Kind = ErrKindRefused
	case isTimeout(err):
		te.Kind = ErrKindTimeout
	}
	return te
}

// classifyProxyErr distinguishes "couldn't reach the proxy" from failures
// the proxy relayed from the far end. The SOCKS dialer wraps both the
// same way, so the local connect errors are picked out by errno.
func classifyProxyErr(addr Address, err error) *TransportError {
	te := classifyDialErr(addr, err)
	if te.Kind == ErrKindRefused {
		// A refused local connect means no Tor daemon is listening.
		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Op == "dial" {
			te.Kind = ErrKindProxy
		}
	}
	return te
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

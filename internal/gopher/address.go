package gopher

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DefaultPort is the well-known gopher port.
const DefaultPort uint16 = 70

// ErrMalformed is returned when no host can be isolated from an address
// string. It is the only hard failure address parsing produces.
var ErrMalformed = errors.New("malformed address")

// AddressError wraps an address parse failure with the offending input.
type AddressError struct {
	Input string
	Err   error
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("address %q: %v", e.Input, e.Err)
}

func (e *AddressError) Unwrap() error {
	return e.Err
}

// Address identifies one gopher resource: where to connect and what to
// ask for. Addresses are value types; construct them once and copy freely.
type Address struct {
	Host     string
	Port     uint16
	Type     Type
	Selector string
}

// ParseAddress parses a gopher URL into an Address.
//
// The scheme prefix is optional and ignored. Port defaults to 70, the
// item type to menu, and the selector to the server root. A port that
// does not parse as a positive 16-bit integer falls back to the default
// rather than failing; the only hard failure is a missing host.
func ParseAddress(raw string) (Address, error) {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}

	addr := Address{Port: DefaultPort, Type: TypeMenu}

	hostport := s
	if i := strings.IndexByte(s, '/'); i >= 0 {
		hostport = s[:i]
		addr.Type, addr.Selector = splitPath(s[i:])
	}

	host, port := splitHostPort(hostport)
	if host == "" {
		return Address{}, &AddressError{Input: raw, Err: ErrMalformed}
	}
	addr.Host = host
	if port != "" {
		if n, err := strconv.ParseUint(port, 10, 16); err == nil && n > 0 {
			addr.Port = uint16(n)
		}
	}
	return addr, nil
}

// AddressOf builds the Address an Item points at.
func AddressOf(item Item) Address {
	t := item.Type
	if !t.Valid() {
		t = TypeMenu
	}
	return Address{
		Host:     item.Host,
		Port:     item.Port,
		Type:     t,
		Selector: item.Selector,
	}
}

// splitPath reads the "/type/selector" tail of a URL. The character right
// after the first slash is taken as the item type when it is a known type;
// the selector keeps its own leading slash, matching what the menu parser
// normalizes selectors into.
func splitPath(path string) (Type, string) {
	if path == "" || path == "/" {
		return TypeMenu, ""
	}
	if len(path) >= 2 && Type(path[1]).Valid() {
		return Type(path[1]), path[2:]
	}
	return TypeMenu, path
}

// splitHostPort splits "host[:port]" without requiring a port, unlike
// net.SplitHostPort. IPv6 literals in brackets are supported.
func splitHostPort(s string) (host, port string) {
	if strings.HasPrefix(s, "[") {
		if i := strings.IndexByte(s, ']'); i >= 0 {
			host = s[1:i]
			if rest := s[i+1:]; strings.HasPrefix(rest, ":") {
				port = rest[1:]
			}
			return host, port
		}
	}
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

// String renders the canonical URL form, gopher://host[:port]/type/selector.
// The default port is omitted. Parsing the result yields the same Address.
func (a Address) String() string {
	var b strings.Builder
	b.WriteString("gopher://")
	if strings.Contains(a.Host, ":") {
		fmt.Fprintf(&b, "[%s]", a.Host)
	} else {
		b.WriteString(a.Host)
	}
	if a.Port != DefaultPort {
		fmt.Fprintf(&b, ":%d", a.Port)
	}
	b.WriteByte('/')
	b.WriteByte(byte(a.Type))
	b.WriteString(a.Selector)
	return b.String()
}

// HostPort returns the dialable "host:port" form.
func (a Address) HostPort() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
}

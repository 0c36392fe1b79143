// Package security checks URLs that end up on user devices, such as card
// images, buttons and link-out suggestions.
package security

import (
	"net/netip"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnsafeLink is matched by every LinkError.
var ErrUnsafeLink = errors.New("unsafe link")

// LinkError describes why a URL was refused.
type LinkError struct {
	URL    string
	Reason string
}

func (e *LinkError) Error() string {
	if e == nil {
		return ErrUnsafeLink.Error()
	}
	return "unsafe link " + e.URL + ": " + e.Reason
}

func (e *LinkError) Is(target error) bool { return target == ErrUnsafeLink }

// LinkOptions relaxes CheckLink for local development.
type LinkOptions struct {
	// AllowHTTP permits plain http links; devices only load https.
	AllowHTTP bool
	// AllowLocalNetworks permits localhost and private addresses.
	AllowLocalNetworks bool
}

// CheckLink validates a URL shown to users. IP literals are checked without DNS lookups.
func CheckLink(raw string, opts LinkOptions) error {
	refuse := func(reason string) error {
		return &LinkError{URL: raw, Reason: reason}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return refuse(err.Error())
	}
	switch u.Scheme {
	case "https":
	case "http":
		if !opts.AllowHTTP {
			return refuse("http is not allowed")
		}
	default:
		return refuse("unsupported scheme " + strconv.Quote(u.Scheme))
	}
	if u.User != nil {
		return refuse("credentials in URL")
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return refuse("missing host")
	}
	if opts.AllowLocalNetworks {
		return nil
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local") {
		return refuse("local hostname")
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		// not an IP literal
		return nil
	}
	if addr.Zone() != "" {
		return refuse("zoned address")
	}
	addr = addr.Unmap()
	switch {
	case addr.IsUnspecified(), addr.IsMulticast():
		return refuse("unroutable address")
	case addr.IsLoopback(), addr.IsPrivate(), addr.IsLinkLocalUnicast(), addr.IsLinkLocalMulticast():
		return refuse("local network address")
	}
	return nil
}

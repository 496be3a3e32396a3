package bus

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// URIScheme is the scheme used when rendering an ActorURI.
const URIScheme = "react"

// ActorURI identifies a logical actor endpoint. It is used for display and
// logging; the bus never routes by address.
type ActorURI struct {
	Host string
	Port int
	Path string
}

// String renders the address as react://host:port/path.
func (u ActorURI) String() string {
	return fmt.Sprintf("%s://%s:%d/%s", URIScheme, u.Host, u.Port, strings.TrimPrefix(u.Path, "/"))
}

// Join returns a copy of u with elem appended to its path.
func (u ActorURI) Join(elem ...string) ActorURI {
	u.Path = strings.TrimPrefix(path.Join(append([]string{u.Path}, elem...)...), "/")
	return u
}

// IsZero reports whether u is the zero address.
func (u ActorURI) IsZero() bool { return u == ActorURI{} }

// ParseActorURI parses the output of ActorURI.String.
func ParseActorURI(s string) (ActorURI, error) {
	parsed, err := url.Parse(s)
	if err != nil {
		return ActorURI{}, fmt.Errorf("parse actor uri: %w", err)
	}
	if parsed.Scheme != URIScheme {
		return ActorURI{}, fmt.Errorf("%w: unexpected scheme %q", ErrInvalidURI, parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return ActorURI{}, fmt.Errorf("%w: missing host", ErrInvalidURI)
	}
	port, err := strconv.Atoi(parsed.Port())
	if err != nil {
		return ActorURI{}, fmt.Errorf("%w: invalid port %q", ErrInvalidURI, parsed.Port())
	}
	return ActorURI{
		Host: parsed.Hostname(),
		Port: port,
		Path: strings.TrimPrefix(parsed.Path, "/"),
	}, nil
}

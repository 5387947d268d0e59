package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// MaxContentLength is the longest accepted url.
const MaxContentLength = 2048

// Content is a validated long url. The zero value is not a valid url.
type Content struct {
	value string
}

// NewContent validates s and wraps it into a Content.
// The url must use the http or https scheme and carry a host.
func NewContent(s string) (Content, error) {
	if strings.TrimSpace(s) == "" {
		return Content{}, fmt.Errorf("%w: url is empty", ErrInvalidContent)
	}

	if len(s) > MaxContentLength {
		return Content{}, fmt.Errorf("%w: url is longer than %d characters", ErrInvalidContent, MaxContentLength)
	}

	u, err := url.Parse(s)
	if err != nil {
		return Content{}, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Content{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidContent, u.Scheme)
	}

	if u.Hostname() == "" {
		return Content{}, fmt.Errorf("%w: url has no host", ErrInvalidContent)
	}

	return Content{value: s}, nil
}

func (c Content) String() string {
	return c.value
}

// IsZero reports whether c was never initialized through NewContent.
func (c Content) IsZero() bool {
	return c.value == ""
}

// Hash returns the hex encoded SHA-256 of the url. Storage indexes mappings by it.
func (c Content) Hash() string {
	sum := sha256.Sum256([]byte(c.value))
	return hex.EncodeToString(sum[:])
}

func (c Content) Host() string {
	return c.parse().Hostname()
}

func (c Content) Scheme() string {
	return strings.ToLower(c.parse().Scheme)
}

func (c Content) IsSecure() bool {
	return c.Scheme() == "https"
}

// parse panics: a Content only exists once its value parsed successfully.
func (c Content) parse() *url.URL {
	u, err := url.Parse(c.value)
	if err != nil {
		panic(fmt.Errorf("%w: validated url %q failed to parse: %v", ErrInternalConsistency, c.value, err))
	}
	return u
}

// Package siteurl canonicalizes a site identifier into a stable URL string,
// so the same logical site always contributes the same text to a derivation
// record regardless of how a caller happened to spell it.
package siteurl

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// ErrInvalid is wrapped by Normalize when neither the input nor the
// "https://"-prefixed retry parses as a URL.
var ErrInvalid = errors.New("siteurl: invalid url")

// Normalize parses input as a URL and serializes it back to a canonical
// form: lowercased scheme and host, IDNA-to-ASCII host conversion,
// percent-encoded userinfo, and a default "/" path for hierarchical schemes.
//
// If input does not parse as an absolute URL (it fails to parse, or has no
// scheme), Normalize retries with "https://" prepended, so that bare
// hostnames (e.g. "google.com") normalize the same as their schemed form. This fallback applies unconditionally, including to inputs
// that already look schemed but fail to parse for other reasons — that
// quirk is preserved from the system this package replaces, not fixed here.
func Normalize(input string) (string, error) {
	u, err := url.Parse(input)
	if err != nil || u.Scheme == "" {
		u, err = url.Parse("https://" + input)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalid, input, err)
	}
	if err := canonicalizeHost(u); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalid, input, err)
	}
	if u.Opaque == "" && u.Host != "" && u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// canonicalizeHost lowercases and IDNA-converts u's host in place, leaving
// IP-literal hosts untouched beyond case folding. Any port is kept as is.
func canonicalizeHost(u *url.URL) error {
	host := u.Hostname()
	if host == "" {
		return nil
	}
	port := u.Port()

	bare := strings.Trim(host, "[]")
	var ascii string
	if net.ParseIP(bare) != nil {
		ascii = strings.ToLower(host)
	} else {
		conv, err := idna.ToASCII(strings.ToLower(host))
		if err != nil {
			return err
		}
		ascii = conv
	}

	if strings.Contains(ascii, ":") && !strings.HasPrefix(ascii, "[") {
		ascii = "[" + ascii + "]"
	}
	if port != "" {
		u.Host = ascii + ":" + port
	} else {
		u.Host = ascii
	}
	return nil
}

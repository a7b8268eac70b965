package urltools

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/raysh454/phishguard/internal/model"
	"golang.org/x/net/idna"
)

// DefaultScheme is prepended to inputs that carry no "://".
const DefaultScheme = "https"

// ErrInvalidInput is returned for empty or whitespace-only input.
var ErrInvalidInput = errors.New("invalid input: empty URL")

// Normalize trims raw and prepends DefaultScheme when no "://" is present.
//
// Examples:
//
//	Normalize("google.com")           → "https://google.com"
//	Normalize("  http://a.example ")  → "http://a.example"
//	Normalize("   ")                  → ErrInvalidInput
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidInput
	}
	if !strings.Contains(s, "://") {
		s = DefaultScheme + "://" + s
	}
	return s, nil
}

// Parse decomposes a normalized URL. It never fails: when no host can be
// recovered the result has an empty Host and Degraded set.
func Parse(normalized string) model.ParsedURL {
	p := model.ParsedURL{Raw: normalized}

	u, err := url.Parse(normalized)
	if err != nil {
		p.Degraded = true
		if scheme, _, ok := strings.Cut(normalized, "://"); ok {
			p.Scheme = strings.ToLower(scheme)
		}
		return p
	}

	p.Scheme = strings.ToLower(u.Scheme)
	p.Path = u.Path
	p.Query = u.RawQuery

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		p.Degraded = true
		return p
	}

	p.IsIDN = isIDNHost(host)
	if p.IsIDN {
		if ascii, err := idna.Lookup.ToASCII(host); err == nil {
			host = ascii
		}
	}
	p.Host = host
	return p
}

// NormalizeAndParse runs Normalize then Parse.
func NormalizeAndParse(raw string) (model.ParsedURL, error) {
	n, err := Normalize(raw)
	if err != nil {
		return model.ParsedURL{}, fmt.Errorf("normalize %q: %w", raw, err)
	}
	return Parse(n), nil
}

func isIDNHost(host string) bool {
	if !isASCII(host) {
		return true
	}
	for _, label := range strings.Split(host, ".") {
		if strings.HasPrefix(label, "xn--") {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

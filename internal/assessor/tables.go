package assessor

import "strings"

// Tables holds the lookup lists the rules match against. Values are copied
// on every call to DefaultTables and Extend, so a Tables never shares
// backing arrays with the package defaults.
type Tables struct {
	// Shorteners are matched against the host exactly.
	Shorteners []string `json:"shorteners"`

	// SuspiciousPatterns are matched as substrings of the lower-cased raw URL.
	SuspiciousPatterns []string `json:"suspicious_patterns"`

	// ReferenceDomains are the well-known sites typosquatting is measured against.
	ReferenceDomains []string `json:"reference_domains"`

	// SuspiciousTLDs are host suffixes, each starting with ".".
	SuspiciousTLDs []string `json:"suspicious_tlds"`

	// RedirectParams are query keys commonly used for open redirects.
	RedirectParams []string `json:"redirect_params"`
}

var (
	defaultShorteners = []string{
		"tinyurl.com", "bit.ly", "goo.gl", "t.co", "ow.ly", "tiny.cc", "is.gd", "buff.ly",
	}
	defaultSuspiciousPatterns = []string{"@", "==", "0x", "%00", ".exe"}
	defaultReferenceDomains   = []string{
		"google.com", "facebook.com", "amazon.com", "paypal.com", "microsoft.com",
		"apple.com", "twitter.com", "linkedin.com", "github.com", "stackoverflow.com",
		"wikipedia.org", "netflix.com", "instagram.com",
	}
	defaultSuspiciousTLDs = []string{".tk", ".ml", ".ga", ".cf", ".pw", ".cc", ".top", ".xyz"}
	defaultRedirectParams = []string{"redirect", "url", "goto", "next", "return"}
)

// DefaultTables returns a fresh copy of the built-in tables.
func DefaultTables() Tables {
	return Tables{
		Shorteners:         clone(defaultShorteners),
		SuspiciousPatterns: clone(defaultSuspiciousPatterns),
		ReferenceDomains:   clone(defaultReferenceDomains),
		SuspiciousTLDs:     clone(defaultSuspiciousTLDs),
		RedirectParams:     clone(defaultRedirectParams),
	}
}

// Extend returns t with the entries of extra appended. Entries are
// lower-cased and trimmed, blanks are dropped and duplicates keep their
// first position. TLDs are given a leading "." when missing.
func (t Tables) Extend(extra Tables) Tables {
	tlds := make([]string, 0, len(extra.SuspiciousTLDs))
	for _, tld := range extra.SuspiciousTLDs {
		tld = strings.TrimSpace(tld)
		if tld != "" && !strings.HasPrefix(tld, ".") {
			tld = "." + tld
		}
		tlds = append(tlds, tld)
	}
	return Tables{
		Shorteners:         merge(t.Shorteners, extra.Shorteners),
		SuspiciousPatterns: merge(t.SuspiciousPatterns, extra.SuspiciousPatterns),
		ReferenceDomains:   merge(t.ReferenceDomains, extra.ReferenceDomains),
		SuspiciousTLDs:     merge(t.SuspiciousTLDs, tlds),
		RedirectParams:     merge(t.RedirectParams, extra.RedirectParams),
	}
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}

func merge(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, v := range list {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

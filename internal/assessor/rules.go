package assessor

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/raysh454/phishguard/internal/model"
)

// rule is one heuristic. match reports how many times the rule fired on u
// (0 means not triggered) and a message describing what matched. The
// enhanced contribution is hits*weight, bounded by cap when cap is set.
type rule struct {
	ID             string
	Name           string
	Description    string
	Basic          bool
	Recommendation string

	weight func(Weights) int
	cap    func(Weights) int
	match  func(c *Config, u model.ParsedURL) (hits int, msg string)
}

var ipv4Literal = regexp.MustCompile(`^(?:[0-9]{1,3}\.){3}[0-9]{1,3}$`)

// ruleSet is in display order; results and recommendations follow it.
var ruleSet = []rule{
	{
		ID:             "shortener",
		Name:           "URL shortener",
		Description:    "host is a known URL-shortening service",
		Basic:          true,
		Recommendation: "Expand the shortened link with a preview service before opening it.",
		weight:         func(w Weights) int { return w.Shortener },
		match:          matchShortener,
	},
	{
		ID:             "suspicious-characters",
		Name:           "suspicious characters",
		Description:    "URL contains characters or sequences used to disguise the destination",
		Basic:          true,
		Recommendation: "Read the full URL carefully: it contains characters often used to hide the real destination.",
		weight:         func(w Weights) int { return w.SuspiciousCharacter },
		cap:            func(w Weights) int { return w.SuspiciousCharacterCap },
		match:          matchSuspiciousCharacters,
	},
	{
		ID:             "excessive-periods",
		Name:           "excessive periods",
		Description:    "host contains an unusually high number of periods",
		Basic:          true,
		Recommendation: "Check which domain the link really belongs to: long subdomain chains can hide it.",
		weight:         func(w Weights) int { return w.ExcessivePeriods },
		match:          matchExcessivePeriods,
	},
	{
		ID:             "multi-segment-domain",
		Name:           "multi-segment domain",
		Description:    "host has many dot-separated segments, often imitating a real domain",
		Basic:          true,
		Recommendation: "Verify the domain: a familiar name followed by extra segments is a common imitation.",
		weight:         func(w Weights) int { return w.MultiSegmentDomain },
		match:          matchMultiSegment,
	},
	{
		ID:             "ip-literal",
		Name:           "IP address host",
		Description:    "host is a raw IPv4 address instead of a domain name",
		Recommendation: "Be wary of links that point at a raw IP address; legitimate services use domain names.",
		weight:         func(w Weights) int { return w.IPLiteral },
		match:          matchIPLiteral,
	},
	{
		ID:             "typosquatting",
		Name:           "typosquatting",
		Description:    "domain closely resembles a well-known site",
		Recommendation: "Double-check the spelling of the domain: it closely resembles a well-known site.",
		weight:         func(w Weights) int { return w.Typosquatting },
		match:          matchTyposquatting,
	},
	{
		ID:             "unparseable-host",
		Name:           "unparseable host",
		Description:    "no valid host could be parsed from the URL",
		Recommendation: "Do not open links whose address cannot be parsed.",
		weight:         func(w Weights) int { return w.UnparseableHost },
		match:          matchUnparseable,
	},
	{
		ID:             "suspicious-tld",
		Name:           "suspicious TLD",
		Description:    "host uses a top-level domain frequently abused for phishing",
		Recommendation: "Treat free or frequently abused top-level domains with extra caution.",
		weight:         func(w Weights) int { return w.SuspiciousTLD },
		match:          matchSuspiciousTLD,
	},
	{
		ID:             "insecure-scheme",
		Name:           "insecure scheme",
		Description:    "URL does not use HTTPS",
		Recommendation: "Never enter credentials on a page that is not served over HTTPS.",
		weight:         func(w Weights) int { return w.InsecureScheme },
		match:          matchInsecureScheme,
	},
	{
		ID:             "redirect-parameter",
		Name:           "redirect parameter",
		Description:    "query string carries a parameter commonly used for open redirects",
		Recommendation: "Check where the redirect parameter leads before following the link.",
		weight:         func(w Weights) int { return w.RedirectParameter },
		cap:            func(w Weights) int { return w.RedirectParameterCap },
		match:          matchRedirectParameter,
	},
	{
		ID:             "long-host",
		Name:           "long host",
		Description:    "host name is unusually long",
		Recommendation: "Be suspicious of very long host names; they are used to push the real domain out of view.",
		weight:         func(w Weights) int { return w.LongHost },
		match:          matchLongHost,
	},
	{
		ID:             "idn-host",
		Name:           "internationalized host",
		Description:    "host contains punycode or non-ASCII labels that may imitate other characters",
		Recommendation: "Inspect the domain for look-alike characters from other alphabets.",
		weight:         func(w Weights) int { return w.IDNHost },
		match:          matchIDNHost,
	},
	{
		ID:             "encoded-characters",
		Name:           "encoded characters",
		Description:    "URL contains percent-encoded characters",
		Recommendation: "Decode the URL to see what the encoded characters hide.",
		weight:         func(w Weights) int { return w.EncodedCharacters },
		match:          matchEncoded,
	},
	{
		ID:             "deep-path",
		Name:           "deep path",
		Description:    "path is nested unusually deep",
		Recommendation: "Deeply nested paths on unfamiliar sites are a common way to hide phishing kits.",
		weight:         func(w Weights) int { return w.DeepPath },
		match:          matchDeepPath,
	},
	{
		ID:             "digits-in-host",
		Name:           "digits in host",
		Description:    "host name contains digits",
		Recommendation: "Check whether digits in the domain stand in for letters (0 for o, 1 for l).",
		weight:         func(w Weights) int { return w.DigitsInHost },
		match:          matchDigitsInHost,
	},
	{
		ID:             "hyphen-in-host",
		Name:           "hyphen in host",
		Description:    "host name contains hyphens",
		Recommendation: "Hyphenated look-alikes such as secure-bank.com are rarely the real brand domain.",
		weight:         func(w Weights) int { return w.HyphenInHost },
		match:          matchHyphenInHost,
	},
	{
		ID:             "short-host",
		Name:           "very short host",
		Description:    "host name is unusually short",
		Recommendation: "Very short host names are cheap throwaway domains; confirm who operates them.",
		weight:         func(w Weights) int { return w.ShortHost },
		match:          matchShortHost,
	},
	{
		ID:             "mixed-alphanumeric",
		Name:           "mixed letters and digits",
		Description:    "a host label interleaves letters and digits",
		Recommendation: "Interleaved letters and digits are typical of generated phishing domains.",
		weight:         func(w Weights) int { return w.MixedAlphanumeric },
		match:          matchMixedAlphanumeric,
	},
	{
		ID:             "multi-hyphen",
		Name:           "multiple hyphens",
		Description:    "a host label chains three or more words with hyphens",
		Recommendation: "Hyphen-chained names like secure-login-account are a common phishing pattern.",
		weight:         func(w Weights) int { return w.MultiHyphen },
		match:          matchMultiHyphen,
	},
}

var (
	mixedAlnum  = regexp.MustCompile(`[0-9]+[a-z]+[0-9]+|[a-z]+[0-9]+[a-z]+`)
	hyphenChain = regexp.MustCompile(`[a-z]+-[a-z]+-[a-z]+`)
)

const closingRecommendation = "DO NOT visit this URL or enter any personal information. Report it to your security team."

// score returns the enhanced contribution of r for the given hit count.
func (r rule) score(w Weights, hits int) int {
	if hits <= 0 {
		return 0
	}
	s := hits * r.weight(w)
	if r.cap != nil {
		if limit := r.cap(w); s > limit {
			s = limit
		}
	}
	return s
}

func matchShortener(c *Config, u model.ParsedURL) (int, string) {
	if !u.HasHost() {
		return 0, ""
	}
	for _, s := range c.Tables.Shorteners {
		if u.Host == s {
			return 1, fmt.Sprintf("host %s is a URL shortener", u.Host)
		}
	}
	return 0, ""
}

func matchSuspiciousCharacters(c *Config, u model.ParsedURL) (int, string) {
	lower := strings.ToLower(u.Raw)
	var found []string
	for _, p := range c.Tables.SuspiciousPatterns {
		if strings.Contains(lower, p) {
			found = append(found, p)
		}
	}
	if len(found) == 0 {
		return 0, ""
	}
	return len(found), "URL contains " + strings.Join(found, ", ")
}

func matchExcessivePeriods(c *Config, u model.ParsedURL) (int, string) {
	if !u.HasHost() {
		return 0, ""
	}
	if n := strings.Count(u.Host, "."); n > c.MaxPeriods {
		return 1, fmt.Sprintf("host has %d periods", n)
	}
	return 0, ""
}

func matchMultiSegment(c *Config, u model.ParsedURL) (int, string) {
	if !u.HasHost() {
		return 0, ""
	}
	host := strings.TrimPrefix(u.Host, "www.")
	if n := len(strings.Split(host, ".")); n >= c.MinSegments {
		return 1, fmt.Sprintf("host has %d segments", n)
	}
	return 0, ""
}

func matchIPLiteral(_ *Config, u model.ParsedURL) (int, string) {
	if !u.HasHost() || !ipv4Literal.MatchString(u.Host) {
		return 0, ""
	}
	return 1, fmt.Sprintf("host %s is an IP address", u.Host)
}

func matchTyposquatting(c *Config, u model.ParsedURL) (int, string) {
	if !u.HasHost() || ipv4Literal.MatchString(u.Host) {
		return 0, ""
	}
	m, ok := FindTyposquat(u.Host, c.Tables.ReferenceDomains, c.TyposquatThreshold)
	if !ok {
		return 0, ""
	}
	return 1, fmt.Sprintf("%q resembles %s (similarity %.2f)", m.Candidate, m.Target, m.Ratio)
}

func matchUnparseable(_ *Config, u model.ParsedURL) (int, string) {
	if !u.Degraded {
		return 0, ""
	}
	return 1, "no valid host could be parsed"
}

func matchSuspiciousTLD(c *Config, u model.ParsedURL) (int, string) {
	if !u.HasHost() {
		return 0, ""
	}
	for _, tld := range c.Tables.SuspiciousTLDs {
		if strings.HasSuffix(u.Host, tld) {
			return 1, fmt.Sprintf("host uses the %s top-level domain", tld)
		}
	}
	return 0, ""
}

func matchInsecureScheme(_ *Config, u model.ParsedURL) (int, string) {
	if u.Scheme == "https" {
		return 0, ""
	}
	if u.Scheme == "" {
		return 1, "URL has no scheme"
	}
	return 1, fmt.Sprintf("scheme %q is not https", u.Scheme)
}

func matchRedirectParameter(c *Config, u model.ParsedURL) (int, string) {
	if u.Query == "" {
		return 0, ""
	}
	// ParseQuery keeps every well-formed pair even when it reports an error.
	values, _ := url.ParseQuery(u.Query)
	keys := make(map[string]struct{}, len(values))
	for k := range values {
		keys[strings.ToLower(k)] = struct{}{}
	}
	var found []string
	for _, p := range c.Tables.RedirectParams {
		if _, ok := keys[p]; ok {
			found = append(found, p)
		}
	}
	if len(found) == 0 {
		return 0, ""
	}
	return len(found), "query carries " + strings.Join(found, ", ")
}

func matchLongHost(c *Config, u model.ParsedURL) (int, string) {
	if !u.HasHost() || len(u.Host) <= c.MaxHostLength {
		return 0, ""
	}
	return 1, fmt.Sprintf("host is %d characters long", len(u.Host))
}

func matchIDNHost(_ *Config, u model.ParsedURL) (int, string) {
	if !u.HasHost() || !u.IsIDN {
		return 0, ""
	}
	return 1, fmt.Sprintf("host %s is internationalized", u.Host)
}

func matchEncoded(_ *Config, u model.ParsedURL) (int, string) {
	if n := strings.Count(u.Raw, "%"); n > 0 {
		return 1, fmt.Sprintf("URL contains %d percent-encoded sequence(s)", n)
	}
	return 0, ""
}

func matchDeepPath(c *Config, u model.ParsedURL) (int, string) {
	depth := 0
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			depth++
		}
	}
	if depth > c.MaxPathDepth {
		return 1, fmt.Sprintf("path is %d segments deep", depth)
	}
	return 0, ""
}

// RuleInfo describes a rule for listings.
type RuleInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Basic       bool   `json:"basic"`
	Weight      int    `json:"weight"`
	Cap         int    `json:"cap,omitempty"`
}

// Rules lists every rule in display order with the weights of cfg.
// A nil cfg reports the defaults.
func Rules(cfg *Config) []RuleInfo {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := make([]RuleInfo, 0, len(ruleSet))
	for _, r := range ruleSet {
		info := RuleInfo{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Basic:       r.Basic,
			Weight:      r.weight(cfg.Weights),
		}
		if r.cap != nil {
			info.Cap = r.cap(cfg.Weights)
		}
		out = append(out, info)
	}
	return out
}

// namedHost returns the host with punycode labels removed, or "" when the
// host is absent or an IP literal. Label-shape rules run against it.
func namedHost(u model.ParsedURL) string {
	if !u.HasHost() || ipv4Literal.MatchString(u.Host) {
		return ""
	}
	labels := strings.Split(u.Host, ".")
	kept := labels[:0:0]
	for _, l := range labels {
		if !strings.HasPrefix(l, "xn--") {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, ".")
}

func matchDigitsInHost(_ *Config, u model.ParsedURL) (int, string) {
	host := namedHost(u)
	if !strings.ContainsAny(host, "0123456789") {
		return 0, ""
	}
	return 1, fmt.Sprintf("host %s contains digits", u.Host)
}

func matchHyphenInHost(_ *Config, u model.ParsedURL) (int, string) {
	host := namedHost(u)
	if !strings.Contains(host, "-") {
		return 0, ""
	}
	return 1, fmt.Sprintf("host %s contains hyphens", u.Host)
}

func matchShortHost(c *Config, u model.ParsedURL) (int, string) {
	if !u.HasHost() || len(u.Host) >= c.MinHostLength {
		return 0, ""
	}
	return 1, fmt.Sprintf("host is only %d characters long", len(u.Host))
}

func matchMixedAlphanumeric(_ *Config, u model.ParsedURL) (int, string) {
	if m := mixedAlnum.FindString(namedHost(u)); m != "" {
		return 1, fmt.Sprintf("host contains %q", m)
	}
	return 0, ""
}

func matchMultiHyphen(_ *Config, u model.ParsedURL) (int, string) {
	if m := hyphenChain.FindString(namedHost(u)); m != "" {
		return 1, fmt.Sprintf("host contains %q", m)
	}
	return 0, ""
}

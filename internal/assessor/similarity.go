package assessor

import (
	"net"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/net/publicsuffix"
)

// Similarity returns 2*M/T where T is the total rune count of a and b and
// M is the number of runes in the equal segments of a minimal diff of the
// two. Two empty strings are identical.
func Similarity(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}

	dmp := diffmatchpatch.New()
	// no timeout: half-match shortcuts can miss the longest common subsequence
	dmp.DiffTimeout = 0

	matched := 0
	for _, d := range dmp.DiffMain(a, b, false) {
		if d.Type == diffmatchpatch.DiffEqual {
			matched += utf8.RuneCountInString(d.Text)
		}
	}
	return 2 * float64(matched) / float64(total)
}

// TyposquatMatch describes the reference domain a host most resembles.
type TyposquatMatch struct {
	Candidate string  `json:"candidate"`
	Target    string  `json:"target"`
	Ratio     float64 `json:"ratio"`
}

// FindTyposquat compares the registrable label of host against every
// reference domain. It reports the highest ratio in [threshold, 1); the
// first reference wins ties. A host whose label equals a reference label
// is that site and never matches.
func FindTyposquat(host string, references []string, threshold float64) (TyposquatMatch, bool) {
	candidate := registrableLabel(host)
	if candidate == "" {
		return TyposquatMatch{}, false
	}

	var best TyposquatMatch
	found := false
	for _, ref := range references {
		label := registrableLabel(ref)
		if label == "" {
			continue
		}
		if label == candidate {
			return TyposquatMatch{}, false
		}
		ratio := Similarity(candidate, label)
		if ratio < threshold || ratio >= 1 {
			continue
		}
		if !found || ratio > best.Ratio {
			best = TyposquatMatch{Candidate: candidate, Target: ref, Ratio: ratio}
			found = true
		}
	}
	return best, found
}

// registrableLabel strips "www." or "m." and reduces host to the label left
// of its public suffix: "login.paypa1.co.uk" -> "paypa1". Hosts the suffix
// list cannot split are returned whole. IP literals yield "".
func registrableLabel(host string) string {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}
	for _, prefix := range []string{"www.", "m."} {
		if rest, ok := strings.CutPrefix(host, prefix); ok && rest != "" {
			host = rest
			break
		}
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	suffix, _ := publicsuffix.PublicSuffix(etld1)
	if label, ok := strings.CutSuffix(etld1, "."+suffix); ok && label != "" {
		return label
	}
	return etld1
}

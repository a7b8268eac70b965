package model

// ParsedURL is the decomposed form of a normalized URL. It is derived once
// per evaluation and never mutated afterwards.
type ParsedURL struct {
	// Raw is the normalized input string the other fields were parsed from.
	Raw string `json:"raw"`

	Scheme string `json:"scheme"`

	// Host is lower-cased, port-stripped and converted to its ASCII (punycode)
	// form when possible. Empty when the host could not be parsed.
	Host string `json:"host"`

	Path  string `json:"path"`
	Query string `json:"query"`

	// Degraded is set when the parser could not recover a host from Raw.
	// Host-based checks never match a degraded URL.
	Degraded bool `json:"degraded,omitempty"`

	// IsIDN reports whether the host carried punycode or non-ASCII labels.
	IsIDN bool `json:"is_idn,omitempty"`
}

// HasHost reports whether host-based checks can run against u.
func (u ParsedURL) HasHost() bool {
	return !u.Degraded && u.Host != ""
}

// Package extract pulls candidate URLs out of free text and HTML documents
// such as email bodies, ready to be handed to the assessor.
package extract

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raysh454/phishguard/internal/urltools"
	"golang.org/x/net/html"
)

// Format names how input content should be read.
type Format string

const (
	// FormatLines treats every non-blank line as one URL; "#" starts a comment line.
	FormatLines Format = "lines"
	// FormatText scans free text for URLs and bare domains.
	FormatText Format = "text"
	// FormatHTML walks links, forms and frames plus the visible text.
	FormatHTML Format = "html"
)

// ParseFormat accepts lines, text or html. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatLines:
		return FormatLines, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown format %q (want lines, text or html)", s)
}

// urlPattern matches explicit http(s) URLs, or bare host names with an
// optional www. prefix and an optional path.
var urlPattern = regexp.MustCompile(
	`(?i)\bhttps?://[^\s<>"'` + "`" + `]+` +
		`|\b(?:www\.)?[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)*\.[a-z]{2,}\b(?:/[^\s<>"'` + "`" + `]*)?`,
)

const trailingPunct = `.,;:!?'")]}>`

// FromText returns the URLs found in text in order of first appearance.
// Bare domains get an https:// scheme. Bare tokens that belong to an email
// address are skipped, but "paypal.com@evil.com/login" is kept whole: a
// path after the "@" marks it as a URL with userinfo.
func FromText(text string) []string {
	var found []string
	locs := urlPattern.FindAllStringIndex(text, -1)
	for i := 0; i < len(locs); i++ {
		start, end := locs[i][0], locs[i][1]
		if !hasWebScheme(text[start:end]) {
			if start > 0 && text[start-1] == '@' {
				continue
			}
			if end < len(text) && text[end] == '@' {
				if i+1 >= len(locs) || locs[i+1][0] != end+1 || !strings.Contains(text[locs[i+1][0]:locs[i+1][1]], "/") {
					continue
				}
				end = locs[i+1][1]
				i++
			}
		}
		u := strings.TrimRight(text[start:end], trailingPunct)
		if u == "" {
			continue
		}
		found = append(found, withScheme(u))
	}
	return dedupe(found)
}

// FromLines returns one URL per non-blank line, skipping "#" comments.
// Lines are returned as written (trimmed); the evaluator normalizes them.
func FromLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("extract: read lines: %w", err)
	}
	return out, nil
}

// FromHTML returns the targets of a[href], form[action] and iframe[src] in
// document order, followed by URLs mentioned in the visible text.
// Relative links and non-web schemes (mailto:, javascript:, tel:, data:,
// fragments) are skipped.
func FromHTML(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("extract: parse html: %w", err)
	}

	var found []string
	doc.Find("a[href], form[action], iframe[src]").Each(func(_ int, s *goquery.Selection) {
		attr := "href"
		switch goquery.NodeName(s) {
		case "form":
			attr = "action"
		case "iframe":
			attr = "src"
		}
		if u, ok := linkTarget(s.AttrOr(attr, "")); ok {
			found = append(found, u)
		}
	})

	var text strings.Builder
	for _, n := range doc.Nodes {
		visibleText(n, &text)
	}
	found = append(found, FromText(text.String())...)
	return dedupe(found), nil
}

// visibleText writes the text nodes under n in document order, separated
// by spaces so adjacent elements do not run together.
func visibleText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		b.WriteByte(' ')
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visibleText(c, b)
	}
}

// Extract dispatches on format.
func Extract(content string, format Format) ([]string, error) {
	switch format {
	case FormatLines:
		return FromLines(strings.NewReader(content))
	case FormatHTML:
		return FromHTML(strings.NewReader(content))
	case FormatText, "":
		return FromText(content), nil
	}
	return nil, fmt.Errorf("extract: unknown format %q", format)
}

func linkTarget(v string) (string, bool) {
	v = strings.TrimSpace(v)
	lower := strings.ToLower(v)
	switch {
	case v == "", strings.HasPrefix(v, "#"):
		return "", false
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return v, true
	case strings.HasPrefix(v, "//"):
		return urltools.DefaultScheme + ":" + v, true
	case strings.HasPrefix(lower, "www."):
		return withScheme(v), true
	}
	// mailto:, javascript:, tel:, data: and relative paths
	return "", false
}

func hasWebScheme(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func withScheme(u string) string {
	if hasWebScheme(u) {
		return u
	}
	return urltools.DefaultScheme + "://" + u
}

// dedupe keeps the first occurrence of every URL by urltools.DedupeKey.
func dedupe(urls []string) []string {
	out := make([]string, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		key := urltools.DedupeKey(u)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, u)
	}
	return out
}

package assessor_test

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/raysh454/phishguard/internal/assessor"
	"github.com/raysh454/phishguard/internal/model"
	"github.com/raysh454/phishguard/internal/urltools"
)

func checkIDs(checks []model.CheckResult) []string {
	ids := make([]string, 0, len(checks))
	for _, c := range checks {
		ids = append(ids, c.ID)
	}
	return ids
}

func hasCheck(checks []model.CheckResult, id string) bool {
	for _, c := range checks {
		if c.ID == id {
			return true
		}
	}
	return false
}

func mustEnhanced(t *testing.T, raw string) *model.RiskAssessment {
	t.Helper()
	a, err := assessor.EvaluateEnhanced(nil, raw)
	if err != nil {
		t.Fatalf("EvaluateEnhanced(%q) error: %v", raw, err)
	}
	return a
}

// ─── Basic ─────────────────────────────────────────────────────────────

func TestEvaluateBasic_Safe(t *testing.T) {
	t.Parallel()
	v, err := assessor.EvaluateBasic(nil, "https://www.google.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.IsSuspicious {
		t.Errorf("expected safe verdict, got %+v", v)
	}
	if v.Message != "Looks safe (based on simple rules)." {
		t.Errorf("message = %q", v.Message)
	}
	if len(v.TriggeredChecks) != 0 {
		t.Errorf("expected no triggered checks, got %v", checkIDs(v.TriggeredChecks))
	}
}

func TestEvaluateBasic_ShortenerAndCharacters(t *testing.T) {
	t.Parallel()
	v, err := assessor.EvaluateBasic(nil, "https://bit.ly/malicious@redirect.exe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsSuspicious {
		t.Fatal("expected suspicious verdict")
	}
	want := []string{"shortener", "suspicious-characters"}
	if got := checkIDs(v.TriggeredChecks); !reflect.DeepEqual(got, want) {
		t.Errorf("triggered = %v, want %v", got, want)
	}
	if !strings.HasPrefix(v.Message, "WARNING") || !strings.Contains(v.Message, "URL shortener") {
		t.Errorf("message should warn and name the rules, got %q", v.Message)
	}
	for _, c := range v.TriggeredChecks {
		if c.Weight != 0 {
			t.Errorf("basic checks carry no weight, %s has %d", c.ID, c.Weight)
		}
	}
}

func TestEvaluateBasic_HostStructure(t *testing.T) {
	t.Parallel()
	tests := []struct {
		url  string
		want []string
	}{
		{"https://a.b.c.d.example.com", []string{"excessive-periods", "multi-segment-domain"}},
		{"https://www.mail.example.com", nil},
		{"https://login.mail.example.com", []string{"multi-segment-domain"}},
		{"https://bit.ly.evil.com", []string{"multi-segment-domain"}},
		{"https://BIT.LY/x", []string{"shortener"}},
		{"https://www.bit.ly/x", nil},
	}
	for _, tt := range tests {
		v, err := assessor.EvaluateBasic(nil, tt.url)
		if err != nil {
			t.Fatalf("EvaluateBasic(%q) error: %v", tt.url, err)
		}
		got := checkIDs(v.TriggeredChecks)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("EvaluateBasic(%q) triggered = %v, want %v", tt.url, got, tt.want)
		}
		if v.IsSuspicious != (len(tt.want) > 0) {
			t.Errorf("EvaluateBasic(%q) suspicious = %v", tt.url, v.IsSuspicious)
		}
	}
}

func TestEvaluateBasic_Normalizes(t *testing.T) {
	t.Parallel()
	v, err := assessor.EvaluateBasic(nil, "  example.com  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.URL != "https://example.com" {
		t.Errorf("URL = %q, want normalized form", v.URL)
	}
}

// ─── Enhanced ──────────────────────────────────────────────────────────

func TestEvaluateEnhanced_Google(t *testing.T) {
	t.Parallel()
	a := mustEnhanced(t, "https://www.google.com")
	if a.Score != 0 || a.Level != model.RiskMinimal {
		t.Errorf("score=%d level=%s, want 0 MINIMAL", a.Score, a.Level)
	}
	if a.IsSuspicious {
		t.Error("google must not be suspicious")
	}
	if len(a.Recommendations) != 0 {
		t.Errorf("expected no recommendations, got %v", a.Recommendations)
	}
}

func TestEvaluateEnhanced_Shortener(t *testing.T) {
	t.Parallel()
	a := mustEnhanced(t, "https://bit.ly/malicious@redirect.exe")
	if a.Score != 40 {
		t.Errorf("score = %d, want 40 (checks %v)", a.Score, checkIDs(a.TriggeredChecks))
	}
	if a.Level != model.RiskMedium {
		t.Errorf("level = %s, want MEDIUM", a.Level)
	}
	if !a.IsSuspicious {
		t.Error("score 40 should be suspicious")
	}
	want := []string{"shortener", "suspicious-characters"}
	if got := checkIDs(a.TriggeredChecks); !reflect.DeepEqual(got, want) {
		t.Errorf("triggered = %v, want %v", got, want)
	}
	if a.TriggeredChecks[1].Weight != 20 {
		t.Errorf("two suspicious patterns should weigh 20, got %d", a.TriggeredChecks[1].Weight)
	}
}

func TestEvaluateEnhanced_IPLiteral(t *testing.T) {
	t.Parallel()
	a := mustEnhanced(t, "http://192.168.1.1/x")
	for _, id := range []string{"ip-literal", "insecure-scheme", "multi-segment-domain"} {
		if !hasCheck(a.TriggeredChecks, id) {
			t.Errorf("expected %s in %v", id, checkIDs(a.TriggeredChecks))
		}
	}
	if hasCheck(a.TriggeredChecks, "typosquatting") {
		t.Error("IP literals are never compared for typosquatting")
	}
	if a.Score != 45 || a.Level != model.RiskMedium {
		t.Errorf("score=%d level=%s, want 45 MEDIUM", a.Score, a.Level)
	}
}

func TestEvaluateEnhanced_Typosquatting(t *testing.T) {
	t.Parallel()
	a := mustEnhanced(t, "https://gooogle.com")
	if len(a.TriggeredChecks) != 1 || a.TriggeredChecks[0].ID != "typosquatting" {
		t.Fatalf("triggered = %v, want [typosquatting]", checkIDs(a.TriggeredChecks))
	}
	if !strings.Contains(a.TriggeredChecks[0].Message, "google.com") {
		t.Errorf("message should name the target, got %q", a.TriggeredChecks[0].Message)
	}
	if a.Score != 25 || a.Level != model.RiskLow {
		t.Errorf("score=%d level=%s, want 25 LOW", a.Score, a.Level)
	}
}

func TestEvaluateEnhanced_DegradedHost(t *testing.T) {
	t.Parallel()
	a := mustEnhanced(t, "https://domain.com%00malicious")
	want := []string{"suspicious-characters", "unparseable-host", "encoded-characters"}
	if got := checkIDs(a.TriggeredChecks); !reflect.DeepEqual(got, want) {
		t.Errorf("triggered = %v, want %v", got, want)
	}
	if a.Score != 35 {
		t.Errorf("score = %d, want 35", a.Score)
	}
}

func TestEvaluateEnhanced_ClampsAndCloses(t *testing.T) {
	t.Parallel()
	a := mustEnhanced(t, "http://0x1.a.b.c.d.e.f.paypa1.tk/a/b/c/d/e/f?url=1&next=2&redirect=3%00@==.exe")
	if a.Score != 100 || a.Level != model.RiskCritical {
		t.Errorf("score=%d level=%s, want 100 CRITICAL", a.Score, a.Level)
	}
	if len(a.Recommendations) != len(a.TriggeredChecks)+1 {
		t.Errorf("recommendations = %d, checks = %d", len(a.Recommendations), len(a.TriggeredChecks))
	}
	last := a.Recommendations[len(a.Recommendations)-1]
	if !strings.HasPrefix(last, "DO NOT visit") {
		t.Errorf("closing recommendation missing, last = %q", last)
	}
	for _, c := range a.TriggeredChecks {
		switch c.ID {
		case "suspicious-characters":
			if c.Weight != 30 {
				t.Errorf("suspicious-characters weight = %d, want cap 30", c.Weight)
			}
		case "redirect-parameter":
			if c.Weight != 20 {
				t.Errorf("redirect-parameter weight = %d, want cap 20", c.Weight)
			}
		}
	}
}

func TestEvaluateEnhanced_AddedRules(t *testing.T) {
	t.Parallel()
	tests := []struct {
		url string
		id  string
	}{
		{"https://free-prizes.tk", "suspicious-tld"},
		{"http://example.com", "insecure-scheme"},
		{"https://example.com/login?next=/account", "redirect-parameter"},
		{"https://" + strings.Repeat("a", 51) + ".com", "long-host"},
		{"https://xn--pypal-4ve.com", "idn-host"},
		{"https://example.com/a%20b", "encoded-characters"},
		{"https://example.com/1/2/3/4/5/6", "deep-path"},
	}
	for _, tt := range tests {
		a := mustEnhanced(t, tt.url)
		if !hasCheck(a.TriggeredChecks, tt.id) {
			t.Errorf("%s: expected %s, got %v", tt.url, tt.id, checkIDs(a.TriggeredChecks))
		}
	}
}

func TestEvaluateEnhanced_Properties(t *testing.T) {
	t.Parallel()
	urls := []string{
		"https://www.google.com",
		"https://bit.ly/malicious@redirect.exe",
		"http://192.168.1.1/x",
		"https://gooogle.com",
		"https://domain.com%00malicious",
		"http://secure.login.paypa1.com.verify.tk/a/b/c/d/e/f?redirect=x",
		"ftp://files.example.com",
	}
	for _, raw := range urls {
		a := mustEnhanced(t, raw)

		if a.Score < 0 || a.Score > 100 {
			t.Errorf("%s: score %d out of range", raw, a.Score)
		}
		if a.Level != model.LevelForScore(a.Score) {
			t.Errorf("%s: level %s does not match score %d", raw, a.Level, a.Score)
		}

		sum := 0
		for _, c := range a.TriggeredChecks {
			sum += c.Weight
		}
		if sum > 100 {
			sum = 100
		}
		if sum != a.Score {
			t.Errorf("%s: clamped weight sum %d != score %d", raw, sum, a.Score)
		}

		want := len(a.TriggeredChecks)
		if a.Score >= 50 {
			want++
		}
		if len(a.Recommendations) != want {
			t.Errorf("%s: %d recommendations, want %d", raw, len(a.Recommendations), want)
		}

		again := mustEnhanced(t, raw)
		if !reflect.DeepEqual(a, again) {
			t.Errorf("%s: evaluation is not deterministic", raw)
		}
	}
}

func TestEvaluateEnhanced_MonotoneInTriggers(t *testing.T) {
	t.Parallel()
	// each step adds one more trigger to the previous URL
	chain := []string{
		"https://example.com/a",
		"http://example.com/a",
		"http://example.com/a?next=x",
		"http://example.com/a%20b?next=x",
		"http://example.tk/a%20b?next=x",
		"http://example1.tk/a%20b?next=x",
		"http://ex-ample1.tk/a%20b?next=x",
		"http://ex-ample1.tk/a%20b/c/d/e/f/g?next=x",
		"http://ex-ample1.tk/a%20b/c/d/e/f/g?next=x&goto=y",
	}
	prev := mustEnhanced(t, chain[0])
	if prev.Score != 0 {
		t.Fatalf("base score = %d, want 0 (checks %v)", prev.Score, checkIDs(prev.TriggeredChecks))
	}
	for _, raw := range chain[1:] {
		cur := mustEnhanced(t, raw)
		if cur.Score <= prev.Score {
			t.Errorf("%s: score %d did not rise above %d", raw, cur.Score, prev.Score)
		}
		if len(cur.TriggeredChecks) < len(prev.TriggeredChecks) {
			t.Errorf("%s: checks shrank from %v to %v", raw, checkIDs(prev.TriggeredChecks), checkIDs(cur.TriggeredChecks))
		}
		prev = cur
	}

	base := mustEnhanced(t, chain[0])
	cfg := assessor.DefaultConfig()
	cfg.Tables = cfg.Tables.Extend(assessor.Tables{Shorteners: []string{"example.com"}})
	extended, err := assessor.EvaluateEnhanced(cfg, chain[0])
	if err != nil {
		t.Fatal(err)
	}
	if extended.Score <= base.Score {
		t.Errorf("extra shortener entry should raise the score: %d -> %d", base.Score, extended.Score)
	}
}

func TestEvaluateEnhanced_HostShapeRules(t *testing.T) {
	t.Parallel()
	tests := []struct {
		url  string
		want []string
	}{
		{"https://example123.com", []string{"digits-in-host"}},
		{"https://test-site.com", []string{"hyphen-in-host"}},
		{"https://x.y", []string{"short-host"}},
		{"https://g00gle.com", []string{"digits-in-host", "mixed-alphanumeric"}},
		{"https://secure-login-account.com", []string{"hyphen-in-host", "multi-hyphen"}},
		{"https://www.google.com", nil},
		{"https://xn--pypal-4ve.com", []string{"idn-host"}},
		{"https://8.8.8.8", []string{"multi-segment-domain", "ip-literal"}},
	}
	for _, tt := range tests {
		a := mustEnhanced(t, tt.url)
		got := checkIDs(a.TriggeredChecks)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: triggered = %v, want %v", tt.url, got, tt.want)
		}
	}

	for _, raw := range []string{"https://example123.com", "https://test-site.com", "https://x.y"} {
		v, err := assessor.EvaluateBasic(nil, raw)
		if err != nil {
			t.Fatal(err)
		}
		if v.IsSuspicious {
			t.Errorf("%s: host shape rules are enhanced-only, basic flagged %v", raw, checkIDs(v.TriggeredChecks))
		}
	}
}

func TestEvaluate_ExposesComponents(t *testing.T) {
	t.Parallel()
	want := model.ParsedURL{
		Raw:    "https://Example.com/login?next=1",
		Scheme: "https",
		Host:   "example.com",
		Path:   "/login",
		Query:  "next=1",
	}
	a := mustEnhanced(t, "https://Example.com/login?next=1")
	if a.Components != want {
		t.Errorf("assessment components = %+v, want %+v", a.Components, want)
	}
	v, err := assessor.EvaluateBasic(nil, "https://Example.com/login?next=1")
	if err != nil {
		t.Fatal(err)
	}
	if v.Components != want {
		t.Errorf("verdict components = %+v, want %+v", v.Components, want)
	}
}

func TestEvaluate_ConcurrentCallersShareConfig(t *testing.T) {
	t.Parallel()
	cfg := assessor.DefaultConfig()
	urls := []string{
		"https://www.google.com",
		"https://bit.ly/malicious@redirect.exe",
		"http://192.168.1.1/x",
		"https://gooogle.com",
		"https://secure-login-account.tk/a/b/c/d/e/f?next=x",
	}
	want := make([]*model.RiskAssessment, len(urls))
	for i, raw := range urls {
		a, err := assessor.EvaluateEnhanced(cfg, raw)
		if err != nil {
			t.Fatal(err)
		}
		want[i] = a
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan string, workers*len(urls))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, raw := range urls {
				got, err := assessor.EvaluateEnhanced(cfg, raw)
				if err != nil {
					errs <- err.Error()
					continue
				}
				if !reflect.DeepEqual(got, want[i]) {
					errs <- raw + ": result differs from sequential evaluation"
				}
				if _, err := assessor.EvaluateBasic(cfg, raw); err != nil {
					errs <- err.Error()
				}
			}
			assessor.EvaluateBatch(cfg, urls, model.ModeEnhanced)
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestEvaluate_EmptyInput(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", "   "} {
		if _, err := assessor.EvaluateBasic(nil, in); !errors.Is(err, urltools.ErrInvalidInput) {
			t.Errorf("EvaluateBasic(%q) err = %v", in, err)
		}
		if _, err := assessor.EvaluateEnhanced(nil, in); !errors.Is(err, urltools.ErrInvalidInput) {
			t.Errorf("EvaluateEnhanced(%q) err = %v", in, err)
		}
	}
}

func TestEvaluateEnhanced_SuspiciousThreshold(t *testing.T) {
	t.Parallel()
	cfg := assessor.DefaultConfig()
	cfg.SuspiciousThreshold = 20
	a, err := assessor.EvaluateEnhanced(cfg, "https://gooogle.com")
	if err != nil {
		t.Fatal(err)
	}
	if !a.IsSuspicious {
		t.Errorf("score %d should be suspicious at threshold 20", a.Score)
	}
}

// ─── Batch ─────────────────────────────────────────────────────────────

func TestEvaluateBatch_OrderAndErrors(t *testing.T) {
	t.Parallel()
	urls := []string{"https://www.google.com", "   ", "https://bit.ly/x"}

	items := assessor.EvaluateBatch(nil, urls, model.ModeEnhanced)
	if len(items) != len(urls) {
		t.Fatalf("got %d items, want %d", len(items), len(urls))
	}
	for i, it := range items {
		if it.Index != i || it.Input != urls[i] {
			t.Errorf("item %d = (%d, %q), order not preserved", i, it.Index, it.Input)
		}
	}
	if items[0].Assessment == nil || items[0].Verdict != nil {
		t.Errorf("enhanced item must carry only an assessment: %+v", items[0])
	}
	if items[1].Error == "" || items[1].Assessment != nil {
		t.Errorf("blank input must yield an error item: %+v", items[1])
	}
	if items[2].Assessment == nil || items[2].Assessment.Score != 20 {
		t.Errorf("shortener item = %+v, want score 20", items[2])
	}
}

func TestEvaluateBatch_BasicMode(t *testing.T) {
	t.Parallel()
	items := assessor.EvaluateBatch(nil, []string{"https://bit.ly/x", "https://example.com"}, model.ModeBasic)
	if items[0].Verdict == nil || !items[0].Verdict.IsSuspicious {
		t.Errorf("expected suspicious basic verdict, got %+v", items[0])
	}
	if items[1].Verdict == nil || items[1].Verdict.IsSuspicious {
		t.Errorf("expected safe basic verdict, got %+v", items[1])
	}
	if items[0].Assessment != nil {
		t.Error("basic mode must not produce assessments")
	}
}

func TestEvaluateBatch_Empty(t *testing.T) {
	t.Parallel()
	if items := assessor.EvaluateBatch(nil, nil, model.ModeBasic); len(items) != 0 {
		t.Errorf("expected no items, got %d", len(items))
	}
}

// ─── Rules ─────────────────────────────────────────────────────────────

func TestRules_Listing(t *testing.T) {
	t.Parallel()
	rules := assessor.Rules(nil)
	if len(rules) != 19 {
		t.Fatalf("expected 19 rules, got %d", len(rules))
	}
	basic := []string{"shortener", "suspicious-characters", "excessive-periods", "multi-segment-domain"}
	for i, id := range basic {
		if rules[i].ID != id || !rules[i].Basic {
			t.Errorf("rule %d = %+v, want basic %s", i, rules[i], id)
		}
	}
	for _, r := range rules[len(basic):] {
		if r.Basic {
			t.Errorf("rule %s should be enhanced-only", r.ID)
		}
	}
	if rules[1].Cap != 30 {
		t.Errorf("suspicious-characters cap = %d", rules[1].Cap)
	}
}

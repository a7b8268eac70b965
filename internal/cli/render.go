package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"

	"github.com/raysh454/phishguard/internal/assessor"
	"github.com/raysh454/phishguard/internal/model"
)

type renderer struct {
	w       io.Writer
	noColor bool
}

func newRenderer(w io.Writer, noColor bool) *renderer {
	return &renderer{w: w, noColor: noColor}
}

func (r *renderer) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if r.noColor {
		c.DisableColor()
	}
	return c
}

func (r *renderer) levelColor(level model.RiskLevel) *color.Color {
	switch level {
	case model.RiskCritical:
		return r.paint(color.FgHiRed, color.Bold)
	case model.RiskHigh:
		return r.paint(color.FgRed)
	case model.RiskMedium:
		return r.paint(color.FgYellow)
	case model.RiskLow:
		return r.paint(color.FgCyan)
	default:
		return r.paint(color.FgGreen)
	}
}

func (r *renderer) item(it model.BatchItem) {
	switch {
	case it.Error != "":
		r.paint(color.FgMagenta).Fprintf(r.w, "[ERROR]         %q: %s\n", it.Input, it.Error)
	case it.Verdict != nil:
		r.verdict(it.Verdict)
	case it.Assessment != nil:
		r.assessment(it.Assessment)
	}
}

func (r *renderer) verdict(v *model.Verdict) {
	if v.IsSuspicious {
		r.paint(color.FgRed, color.Bold).Fprint(r.w, "[SUSPICIOUS]   ")
	} else {
		r.paint(color.FgGreen).Fprint(r.w, "[SAFE]         ")
	}
	fmt.Fprintf(r.w, " %s\n", v.URL)
	for _, c := range v.TriggeredChecks {
		fmt.Fprintf(r.w, "    - %s: %s\n", c.Name, c.Message)
	}
	fmt.Fprintf(r.w, "    %s\n", v.Message)
}

func (r *renderer) assessment(a *model.RiskAssessment) {
	r.levelColor(a.Level).Fprintf(r.w, "[%-8s %3d]", a.Level, a.Score)
	fmt.Fprintf(r.w, "  %s\n", a.URL)
	for _, c := range a.TriggeredChecks {
		fmt.Fprintf(r.w, "    - %s (+%d): %s\n", c.Name, c.Weight, c.Message)
	}
	for _, rec := range a.Recommendations {
		fmt.Fprintf(r.w, "    > %s\n", rec)
	}
}

func (r *renderer) summary(items []model.BatchItem) {
	suspicious, failed := 0, 0
	for _, it := range items {
		if it.Error != "" {
			failed++
		} else if it.Suspicious() {
			suspicious++
		}
	}
	fmt.Fprintf(r.w, "\n%d URLs evaluated, ", len(items))
	c := r.paint(color.FgGreen)
	if suspicious > 0 {
		c = r.paint(color.FgRed, color.Bold)
	}
	c.Fprintf(r.w, "%d suspicious", suspicious)
	fmt.Fprintf(r.w, ", %d failed\n", failed)
}

func (r *renderer) rules(rules []assessor.RuleInfo, cfg *assessor.Config) {
	fmt.Fprintf(r.w, "%-22s %-6s %-7s %s\n", "ID", "BASIC", "WEIGHT", "DESCRIPTION")
	for _, rule := range rules {
		basic := ""
		if rule.Basic {
			basic = "yes"
		}
		weight := fmt.Sprintf("+%d", rule.Weight)
		if rule.Cap > 0 {
			weight = fmt.Sprintf("+%d/%d", rule.Weight, rule.Cap)
		}
		fmt.Fprintf(r.w, "%-22s %-6s %-7s %s\n", rule.ID, basic, weight, rule.Description)
	}
	fmt.Fprintf(r.w, "\nsuspicious at score >= %d, typosquatting at similarity >= %.2f\n",
		cfg.SuspiciousThreshold, cfg.TyposquatThreshold)
}

func (r *renderer) banner(addr string) {
	fig := figure.NewFigure("phishguard", "doom", true)
	r.paint(color.FgRed).Fprintln(r.w, fig.String())

	cyan := r.paint(color.FgCyan)
	green := r.paint(color.FgGreen)
	_, _ = cyan.Fprintln(r.w, "════════════════════════════════════════════════")
	_, _ = green.Fprintf(r.w, "    Phishing URL risk API | listening on %s\n", addr)
	_, _ = cyan.Fprintln(r.w, "════════════════════════════════════════════════")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

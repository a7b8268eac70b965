package model

// CheckResult is the outcome of one heuristic rule for one URL.
type CheckResult struct {
	// ID is the stable rule identifier (e.g. "shortener", "typosquatting").
	ID string `json:"id"`

	// Name is the human-readable rule name.
	Name string `json:"name"`

	Triggered bool `json:"triggered"`

	// Weight is the score contribution of this rule. Always 0 in basic mode.
	Weight int `json:"weight"`

	// Message explains what matched.
	Message string `json:"message"`
}

// Verdict is the result of a basic evaluation: suspicious if any rule fired.
type Verdict struct {
	URL             string        `json:"url"`
	IsSuspicious    bool          `json:"is_suspicious"`
	Message         string        `json:"message"`
	TriggeredChecks []CheckResult `json:"triggered_checks"`

	// Components is the parsed form the rules ran against.
	Components ParsedURL `json:"components"`
}

// RiskLevel is the severity bucket a score maps to.
type RiskLevel string

const (
	RiskMinimal  RiskLevel = "MINIMAL"
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// LevelForScore maps a score to its level using fixed breakpoints:
// MINIMAL 0-9, LOW 10-29, MEDIUM 30-49, HIGH 50-69, CRITICAL 70-100.
// Scores outside [0,100] are clamped first.
func LevelForScore(score int) RiskLevel {
	switch {
	case score >= 70:
		return RiskCritical
	case score >= 50:
		return RiskHigh
	case score >= 30:
		return RiskMedium
	case score >= 10:
		return RiskLow
	default:
		return RiskMinimal
	}
}

// RiskAssessment is the result of an enhanced evaluation.
type RiskAssessment struct {
	URL string `json:"url"`

	// Score is the clamped sum of triggered rule weights, in [0,100].
	Score int       `json:"score"`
	Level RiskLevel `json:"level"`

	// IsSuspicious is Score >= the configured suspicious threshold.
	IsSuspicious bool `json:"is_suspicious"`

	TriggeredChecks []CheckResult `json:"triggered_checks"`
	Recommendations []string      `json:"recommendations"`

	Components ParsedURL `json:"components"`
}

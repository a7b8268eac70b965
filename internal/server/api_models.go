package server

import (
	"github.com/raysh454/phishguard/internal/assessor"
	"github.com/raysh454/phishguard/internal/model"
)

// EvaluateRequest carries a single URL for the basic and enhanced endpoints.
type EvaluateRequest struct {
	URL string `json:"url"`
}

// BatchRequest evaluates several URLs with one evaluator.
type BatchRequest struct {
	URLs []string `json:"urls"`
	Mode string   `json:"mode"`
}

// BatchResponse lists results in request order.
type BatchResponse struct {
	ID         string            `json:"id"`
	Mode       model.Mode        `json:"mode"`
	Suspicious int               `json:"suspicious"`
	Items      []model.BatchItem `json:"items"`
}

// ExtractRequest carries a document to pull URLs out of and evaluate.
type ExtractRequest struct {
	Content string `json:"content"`
	Format  string `json:"format"`
	Mode    string `json:"mode"`
}

// ExtractResponse lists the URLs found and their results.
type ExtractResponse struct {
	ID         string            `json:"id"`
	Format     string            `json:"format"`
	Mode       model.Mode        `json:"mode"`
	URLs       []string          `json:"urls"`
	Suspicious int               `json:"suspicious"`
	Items      []model.BatchItem `json:"items"`
}

// RulesResponse describes the active rule set.
type RulesResponse struct {
	ScoringVersion      string              `json:"scoring_version"`
	TyposquatThreshold  float64             `json:"typosquat_threshold"`
	SuspiciousThreshold int                 `json:"suspicious_threshold"`
	Rules               []assessor.RuleInfo `json:"rules"`
	Tables              assessor.Tables     `json:"tables"`
}

// WSRequest is one client frame on the streaming endpoint.
type WSRequest struct {
	URL  string `json:"url"`
	Mode string `json:"mode"`
}

// WSResponse answers one WSRequest. Exactly one of Verdict, Assessment or Error is set.
type WSResponse struct {
	Seq        int                   `json:"seq"`
	URL        string                `json:"url"`
	Mode       model.Mode            `json:"mode,omitempty"`
	Verdict    *model.Verdict        `json:"verdict,omitempty"`
	Assessment *model.RiskAssessment `json:"assessment,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error"`
}

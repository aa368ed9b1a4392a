// Package secrets scans text content for likely credentials. Findings are
// informational: the pipeline surfaces them as warnings and never drops a file
// because of one, so a false positive cannot silently corrupt output.
package secrets

import (
	"regexp"
	"strings"

	"github.com/ctxpack/ctxpack/internal/types"
)

// Scanner is the capability interface consumed by the aggregation stage.
// Implementations report findings for one file's content; a failure is
// surfaced as a warning by the caller and treated as an empty result.
type Scanner interface {
	Name() string
	Scan(relativePath string, content string) ([]types.SecretFinding, error)
}

const (
	scannerName = "regex-ruleset"

	excerptPrefixLength = 4
	excerptMaskedLength = 12
	maskCharacter       = "*"
)

type scanRule struct {
	identifier string
	pattern    *regexp.Regexp
}

// builtinRules cover high-signal credential shapes. Keyword assignment comes
// last so more specific rules claim their matches first in per-line reporting.
var builtinRules = []scanRule{
	{identifier: "aws-access-key", pattern: regexp.MustCompile(`\b(?:A3T[A-Z0-9]|AKIA|AGPA|AIDA|AROA|AIPA|ANPA|ANVA|ASIA)[0-9A-Z]{16}\b`)},
	{identifier: "private-key", pattern: regexp.MustCompile(`-----BEGIN[ A-Z]*PRIVATE KEY-----`)},
	{identifier: "github-token", pattern: regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{36,}\b`)},
	{identifier: "slack-token", pattern: regexp.MustCompile(`\bxox[baprs]-[0-9A-Za-z-]{10,}\b`)},
	{identifier: "jwt", pattern: regexp.MustCompile(`\beyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]*`)},
	{identifier: "basic-auth-url", pattern: regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.-]{2,10}://[^/\s:@]+:[^/\s:@]+@`)},
	{identifier: "keyword-credential", pattern: regexp.MustCompile(`(?i)(?:api[_-]?key|secret[_-]?key|access[_-]?token|auth[_-]?token|password|passwd)["']?\s*[:=]\s*["']?[^\s"']{8,}`)},
}

// RuleScanner is the built-in Scanner backed by the compiled rule table.
type RuleScanner struct {
	rules []scanRule
}

var _ Scanner = (*RuleScanner)(nil)

// NewRuleScanner returns a scanner over the built-in rule table.
func NewRuleScanner() *RuleScanner {
	return &RuleScanner{rules: builtinRules}
}

// Name identifies the scanner in reports.
func (scanner *RuleScanner) Name() string {
	return scannerName
}

// Scan evaluates every rule against every line and returns findings in line
// order. At most one finding is reported per rule per line, with the matched
// value masked before it ever leaves this package.
func (scanner *RuleScanner) Scan(relativePath string, content string) ([]types.SecretFinding, error) {
	if content == "" {
		return nil, nil
	}

	var findings []types.SecretFinding
	for lineIndex, lineContent := range strings.Split(content, "\n") {
		for _, currentRule := range scanner.rules {
			matchedValue := currentRule.pattern.FindString(lineContent)
			if matchedValue == "" {
				continue
			}
			findings = append(findings, types.SecretFinding{
				Path:            relativePath,
				LineNumber:      lineIndex + 1,
				RuleID:          currentRule.identifier,
				RedactedExcerpt: maskSecret(matchedValue),
			})
		}
	}
	return findings, nil
}

// maskSecret keeps a short recognizable prefix and replaces the remainder with
// a fixed-width mask, so the excerpt can never reproduce the full value.
func maskSecret(value string) string {
	runes := []rune(value)
	if len(runes) <= excerptPrefixLength*2 {
		return strings.Repeat(maskCharacter, len(runes))
	}
	return string(runes[:excerptPrefixLength]) + strings.Repeat(maskCharacter, excerptMaskedLength)
}

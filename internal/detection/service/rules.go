package service

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/allisson/secretvault/internal/detection/domain"
)

// RuleEngine evaluates domain.Rule values (built-in or user-supplied)
// against file content, producing findings independent of the built-in
// pattern registry.
type RuleEngine struct {
	entropy *EntropyAnalyzer
	regexes map[string]*regexp.Regexp
}

// NewRuleEngine builds a rule engine backed by the given entropy analyzer.
func NewRuleEngine(entropy *EntropyAnalyzer) *RuleEngine {
	return &RuleEngine{entropy: entropy, regexes: make(map[string]*regexp.Regexp)}
}

// Evaluate runs rule against content (from fileName) and returns every
// finding it produces. Disabled rules produce nothing. FileSpecific rules
// whose patterns don't match fileName are skipped entirely.
func (e *RuleEngine) Evaluate(rule domain.Rule, fileName, content string) ([]domain.Finding, error) {
	if !rule.Enabled {
		return nil, nil
	}
	return e.evaluate(rule, fileName, content)
}

func (e *RuleEngine) evaluate(rule domain.Rule, fileName, content string) ([]domain.Finding, error) {
	switch rule.Kind {
	case domain.RuleKindRegex:
		return e.evaluateRegex(rule, fileName, content)
	case domain.RuleKindEntropy:
		return e.evaluateEntropy(rule, fileName, content)
	case domain.RuleKindKeyword:
		return e.evaluateKeyword(rule, fileName, content)
	case domain.RuleKindComposite:
		return e.evaluateComposite(rule, fileName, content)
	case domain.RuleKindFileSpecific:
		return e.evaluateFileSpecific(rule, fileName, content)
	default:
		return nil, nil
	}
}

func (e *RuleEngine) compiledRegex(rule domain.Rule) (*regexp.Regexp, error) {
	pattern := rule.Regex.Pattern
	if !rule.Regex.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	key := rule.ID + "|" + pattern
	if re, ok := e.regexes[key]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	e.regexes[key] = re
	return re, nil
}

func (e *RuleEngine) evaluateRegex(rule domain.Rule, fileName, content string) ([]domain.Finding, error) {
	if rule.Regex == nil {
		return nil, nil
	}
	re, err := e.compiledRegex(rule)
	if err != nil {
		return nil, err
	}
	var findings []domain.Finding
	for _, loc := range re.FindAllStringIndex(content, -1) {
		line, col := lineAndColumn(content, loc[0])
		findings = append(findings, domain.Finding{
			File:        fileName,
			Line:        line,
			Column:      col,
			MatchedText: content[loc[0]:loc[1]],
			SecretType:  rule.SecretType,
			Method:      domain.MethodRegex,
			RuleName:    rule.Name,
			Confidence:  rule.Confidence,
			Severity:    domain.SeverityFor(rule.SecretType),
		})
	}
	return findings, nil
}

func (e *RuleEngine) evaluateEntropy(rule domain.Rule, fileName, content string) ([]domain.Finding, error) {
	if rule.Entropy == nil || e.entropy == nil {
		return nil, nil
	}
	minLen := rule.Entropy.MinLength
	if minLen < 1 {
		minLen = 1
	}
	var findings []domain.Finding
	for _, token := range tokenize(content) {
		if len(token.text) < minLen || (rule.Entropy.MaxLength > 0 && len(token.text) > rule.Entropy.MaxLength) {
			continue
		}
		result := e.entropy.Analyze(token.text)
		if result.ShannonEntropy < rule.Entropy.MinEntropy {
			continue
		}
		line, col := lineAndColumn(content, token.start)
		findings = append(findings, domain.Finding{
			File:        fileName,
			Line:        line,
			Column:      col,
			MatchedText: token.text,
			SecretType:  rule.SecretType,
			Method:      domain.MethodEntropy,
			RuleName:    rule.Name,
			Confidence:  result.Confidence,
			Severity:    domain.SeverityFor(rule.SecretType),
		})
	}
	return findings, nil
}

func (e *RuleEngine) evaluateKeyword(rule domain.Rule, fileName, content string) ([]domain.Finding, error) {
	if rule.Keyword == nil {
		return nil, nil
	}
	lower := strings.ToLower(content)
	var findings []domain.Finding
	for _, kw := range rule.Keyword.Keywords {
		kwLower := strings.ToLower(kw)
		for start := 0; ; {
			idx := strings.Index(lower[start:], kwLower)
			if idx < 0 {
				break
			}
			pos := start + idx
			if rule.Keyword.RequireHighEntropy && e.entropy != nil {
				window := contextWindow(content, pos, rule.Keyword.ContextRadius)
				if !e.entropy.Analyze(window).IsLikelySecret {
					start = pos + len(kwLower)
					continue
				}
			}
			line, col := lineAndColumn(content, pos)
			findings = append(findings, domain.Finding{
				File:        fileName,
				Line:        line,
				Column:      col,
				MatchedText: kw,
				SecretType:  rule.SecretType,
				Method:      domain.MethodKeyword,
				RuleName:    rule.Name,
				Confidence:  rule.Confidence,
				Severity:    domain.SeverityFor(rule.SecretType),
			})
			start = pos + len(kwLower)
		}
	}
	return findings, nil
}

func (e *RuleEngine) evaluateComposite(rule domain.Rule, fileName, content string) ([]domain.Finding, error) {
	if rule.Composite == nil {
		return nil, nil
	}
	var all []domain.Finding
	matchedAny := false
	matchedAll := true
	for _, cond := range rule.Composite.Conditions {
		sub, err := e.evaluate(cond.Rule, fileName, content)
		if err != nil {
			return nil, err
		}
		if len(sub) > 0 {
			matchedAny = true
		} else {
			matchedAll = false
		}
		all = append(all, sub...)
	}

	satisfied := false
	switch rule.Composite.Operator {
	case domain.OperatorAnd:
		satisfied = matchedAll && len(rule.Composite.Conditions) > 0
	case domain.OperatorOr:
		satisfied = matchedAny
	case domain.OperatorNot:
		satisfied = !matchedAny
	}
	if !satisfied {
		return nil, nil
	}

	weighted := weightedConfidence(rule.Composite.Conditions)
	findings := make([]domain.Finding, 0, len(all))
	for _, f := range all {
		f.Method = domain.MethodComposite
		f.RuleName = rule.Name
		f.SecretType = rule.SecretType
		f.Confidence = weighted
		f.Severity = domain.SeverityFor(rule.SecretType)
		findings = append(findings, f)
	}
	return findings, nil
}

// weightedConfidence re-scores each condition's own rule confidence,
// weighted by CompositeCondition.Weight, falling back to an equal weight
// of 1 per condition when none are set.
func weightedConfidence(conditions []domain.CompositeCondition) float64 {
	if len(conditions) == 0 {
		return 0
	}
	var totalWeight, sum float64
	for _, c := range conditions {
		weight := c.Weight
		if weight == 0 {
			weight = 1
		}
		totalWeight += weight
		sum += weight * c.Rule.Confidence
	}
	if totalWeight == 0 {
		return 0
	}
	avg := sum / totalWeight
	if avg > 1 {
		return 1
	}
	return avg
}

func (e *RuleEngine) evaluateFileSpecific(rule domain.Rule, fileName, content string) ([]domain.Finding, error) {
	if rule.FileSpecific == nil {
		return nil, nil
	}
	base := baseName(fileName)
	matched := false
	for _, pattern := range rule.FileSpecific.FilePatterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			matched = true
			break
		}
	}
	if !matched {
		return nil, nil
	}
	return e.evaluate(rule.FileSpecific.Inner, fileName, content)
}

func baseName(path string) string {
	idx := strings.LastIndexAny(path, "/\\")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

func lineAndColumn(content string, offset int) (int, int) {
	line := 1
	col := 1
	for i := 0; i < offset && i < len(content); i++ {
		if content[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func contextWindow(content string, pos, radius int) string {
	if radius <= 0 {
		radius = 20
	}
	start := pos - radius
	if start < 0 {
		start = 0
	}
	end := pos + radius
	if end > len(content) {
		end = len(content)
	}
	return content[start:end]
}

type token struct {
	text  string
	start int
}

// tokenize splits content on whitespace and common delimiters, yielding
// candidate words for entropy analysis.
func tokenize(content string) []token {
	var tokens []token
	start := -1
	isDelim := func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || strings.ContainsRune("\"'(){}[]<>,;", r)
	}
	for i, r := range content {
		if isDelim(r) {
			if start >= 0 {
				tokens = append(tokens, token{content[start:i], start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{content[start:], start})
	}
	return tokens
}

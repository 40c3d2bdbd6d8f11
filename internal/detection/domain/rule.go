package domain

import cryptoDomain "github.com/allisson/secretvault/internal/crypto/domain"

// RuleKind is the closed set of rule shapes the engine evaluates, plus the
// Composite kind as its genuine extension point: composite rules combine
// any of the other kinds (including other composites) under a logical
// operator, so new detection strategies compose instead of requiring a new
// RuleKind.
type RuleKind string

const (
	RuleKindRegex      RuleKind = "regex"
	RuleKindEntropy    RuleKind = "entropy"
	RuleKindKeyword    RuleKind = "keyword"
	RuleKindComposite  RuleKind = "composite"
	RuleKindFileSpecific RuleKind = "file_specific"
)

// LogicalOperator combines conditions within a Composite rule.
type LogicalOperator string

const (
	OperatorAnd LogicalOperator = "and"
	OperatorOr  LogicalOperator = "or"
	OperatorNot LogicalOperator = "not"
)

// RegexRule matches a regular expression against file content.
type RegexRule struct {
	Pattern       string
	CaseSensitive bool
}

// EntropyRule flags substrings whose Shannon entropy exceeds a threshold.
type EntropyRule struct {
	MinEntropy float64
	MinLength  int
	MaxLength  int
}

// KeywordRule flags occurrences of any keyword, optionally requiring the
// surrounding context window to also be high entropy.
type KeywordRule struct {
	Keywords            []string
	ContextRadius        int
	RequireHighEntropy   bool
}

// CompositeCondition is one weighted branch of a Composite rule.
type CompositeCondition struct {
	Rule   Rule
	Weight float64
}

// CompositeRule combines multiple conditions under a LogicalOperator.
type CompositeRule struct {
	Conditions []CompositeCondition
	Operator   LogicalOperator
}

// FileSpecificRule restricts an inner rule to files matching any of
// FilePatterns (glob syntax, matched against the base filename).
type FileSpecificRule struct {
	FilePatterns []string
	Inner        Rule
}

// Rule is a single detection rule, built-in or user-defined. Exactly one of
// the typed fields is set, selected by Kind; this mirrors a closed sum type
// using the field-per-variant idiom since Go has no native sum types.
type Rule struct {
	ID          string
	Name        string
	Description string
	Kind        RuleKind
	SecretType  cryptoDomain.SecretType
	Confidence  float64
	Enabled     bool
	Tags        []string

	Regex        *RegexRule
	Entropy      *EntropyRule
	Keyword      *KeywordRule
	Composite    *CompositeRule
	FileSpecific *FileSpecificRule
}

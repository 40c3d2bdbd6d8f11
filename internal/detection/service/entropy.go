package service

import (
	"math"
	"sort"
	"strings"

	"github.com/allisson/secretvault/internal/detection/domain"
)

// EntropyResult is the outcome of analyzing a single candidate string.
type EntropyResult struct {
	ShannonEntropy    float64
	NormalizedEntropy float64
	CharsetSize       int
	Length            int
	IsLikelySecret    bool
	Confidence        float64
}

// commonWords flags text that reads as natural language rather than a
// random token: two or more hits is treated as prose, not a secret.
var commonWords = []string{
	"the", "and", "for", "are", "but", "not", "you", "all", "can", "had", "was", "one",
	"our", "out", "day", "get", "has", "him", "his", "how", "its", "may", "new", "now",
	"old", "see", "two", "way", "who", "boy", "did", "man", "car", "dog", "cat", "run",
}

// nonSecretSubstrings are development placeholders that happen to be
// long and varied enough to otherwise pass the entropy thresholds.
var nonSecretSubstrings = []string{
	"localhost", "127.0.0.1", "example.com", "test.com",
	"placeholder", "your_key_here", "insert_key_here",
	"todo", "fixme", "changeme", "password123",
	"abcdefgh", "12345678", "qwertyui",
}

// EntropyAnalyzer scores strings by Shannon entropy and a handful of
// heuristics to decide whether they read as secrets or as ordinary text.
type EntropyAnalyzer struct {
	opts domain.EntropyOptions
}

// NewEntropyAnalyzer builds an analyzer with the given options.
func NewEntropyAnalyzer(opts domain.EntropyOptions) *EntropyAnalyzer {
	return &EntropyAnalyzer{opts: opts}
}

// Analyze scores text. Strings outside [MinLength, MaxLength] are always
// scored as non-secrets with zero confidence.
func (a *EntropyAnalyzer) Analyze(text string) EntropyResult {
	if len(text) < a.opts.MinLength || len(text) > a.opts.MaxLength {
		return EntropyResult{Length: len(text)}
	}

	frequencies := charFrequencies(text)
	charsetSize := len(frequencies)
	shannon := shannonEntropy(frequencies)

	var normalized float64
	if charsetSize > 1 {
		normalized = shannon / math.Log2(float64(charsetSize))
	}

	result := EntropyResult{
		ShannonEntropy:    shannon,
		NormalizedEntropy: normalized,
		CharsetSize:       charsetSize,
		Length:            len(text),
	}
	result.IsLikelySecret = a.isLikelySecret(shannon, normalized, charsetSize, text)
	result.Confidence = a.confidence(shannon, normalized, charsetSize, text)
	return result
}

// ExtractHighEntropySubstrings slides windows of every length from
// minLength up to a.opts.MaxLength (capped at len(text)) across text,
// skipping windows that contain whitespace or quote/bracket delimiters, and
// returns every substring that scores as a likely secret with confidence
// above 0.7, sorted by confidence descending, deduplicated.
func (a *EntropyAnalyzer) ExtractHighEntropySubstrings(text string, minLength int) []string {
	if minLength < 1 {
		minLength = 1
	}
	maxLen := a.opts.MaxLength
	if len(text) < maxLen {
		maxLen = len(text)
	}

	type scored struct {
		text string
		conf float64
	}
	var candidates []scored
	seen := make(map[string]bool)

	for length := minLength; length <= maxLen; length++ {
		for start := 0; start+length <= len(text); start++ {
			substring := text[start : start+length]
			if containsDelimiter(substring) {
				continue
			}
			result := a.Analyze(substring)
			if result.IsLikelySecret && result.Confidence > 0.7 && !seen[substring] {
				seen[substring] = true
				candidates = append(candidates, scored{substring, result.Confidence})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].conf > candidates[j].conf })
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.text
	}
	return out
}

func containsDelimiter(s string) bool {
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || strings.ContainsRune("\"'(){}[]<>", r) {
			return true
		}
	}
	return false
}

func charFrequencies(text string) map[rune]float64 {
	counts := make(map[rune]float64)
	total := float64(len([]rune(text)))
	for _, r := range text {
		counts[r]++
	}
	for r := range counts {
		counts[r] /= total
	}
	return counts
}

func shannonEntropy(frequencies map[rune]float64) float64 {
	var entropy float64
	for _, freq := range frequencies {
		if freq > 0 {
			entropy += -freq * math.Log2(freq)
		}
	}
	return entropy
}

func (a *EntropyAnalyzer) isLikelySecret(shannon, normalized float64, charsetSize int, text string) bool {
	if shannon < a.opts.MinEntropyThreshold {
		return false
	}
	if normalized < a.opts.MinNormalizedEntropy {
		return false
	}
	if charsetSize < a.opts.MinCharsetSize {
		return false
	}
	if looksLikeNaturalLanguage(text) {
		return false
	}
	if isSingleCharacterType(text) {
		return false
	}
	if isCommonNonSecretPattern(text) {
		return false
	}
	return true
}

func (a *EntropyAnalyzer) confidence(shannon, normalized float64, charsetSize int, text string) float64 {
	var confidence float64

	confidence += math.Min(shannon/6.0, 0.4)
	confidence += normalized * 0.3
	confidence += math.Min(float64(charsetSize)/62.0, 0.2)

	switch {
	case len(text) >= 20:
		confidence += 0.1
	case len(text) >= 12:
		confidence += 0.05
	}

	if hasSecretLikePatterns(text) {
		confidence += 0.1
	}
	if looksLikeNaturalLanguage(text) {
		confidence -= 0.3
	}
	if isCommonNonSecretPattern(text) {
		confidence -= 0.4
	}

	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

func looksLikeNaturalLanguage(text string) bool {
	lower := strings.ToLower(text)
	count := 0
	for _, word := range commonWords {
		if strings.Contains(lower, word) {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

func isSingleCharacterType(text string) bool {
	allDigits, allUpper, allLower := true, true, true
	for _, r := range text {
		if r < '0' || r > '9' {
			allDigits = false
		}
		if r < 'A' || r > 'Z' {
			allUpper = false
		}
		if r < 'a' || r > 'z' {
			allLower = false
		}
	}
	return allDigits || allUpper || allLower
}

func isCommonNonSecretPattern(text string) bool {
	lower := strings.ToLower(text)
	for _, pattern := range nonSecretSubstrings {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

func hasSecretLikePatterns(text string) bool {
	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')):
			hasSpecial = true
		}
	}
	variety := 0
	for _, v := range []bool{hasLower, hasUpper, hasDigit, hasSpecial} {
		if v {
			variety++
		}
	}
	return variety >= 3
}

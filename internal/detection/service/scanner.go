package service

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/secretvault/internal/detection/domain"
	"github.com/allisson/secretvault/internal/resilience"
)

// FileResult is the outcome of scanning a single file.
type FileResult struct {
	Path          string
	Findings      []domain.Finding
	Skipped       bool
	SkippedReason string
	Err           error
}

// Scanner walks a file tree and runs the pattern registry, entropy
// analyzer, and rule engine against every file that passes ScanOptions'
// filters, fanning work out across a bounded worker pool.
type Scanner struct {
	patterns *PatternRegistry
	rules    *RuleEngine
	ruleSet  []domain.Rule
	registry *resilience.Registry
}

// NewScanner builds a scanner backed by the given pattern registry, rule
// engine, and the custom rules to additionally evaluate per file. registry
// may be nil, in which case parallel scanning is always allowed.
func NewScanner(patterns *PatternRegistry, rules *RuleEngine, ruleSet []domain.Rule, registry *resilience.Registry) *Scanner {
	return &Scanner{patterns: patterns, rules: rules, ruleSet: ruleSet, registry: registry}
}

// ScanDirectory walks opts.RootPath and scans every eligible file,
// respecting opts.Workers as the parallelism bound (errgroup.SetLimit).
// The walk itself is sequential (directory traversal is cheap and
// order-sensitive for ignore-rule precedence); file analysis is what
// fans out, mirroring the split the original analyzer makes between
// directory traversal and per-file CPU work.
func (s *Scanner) ScanDirectory(ctx context.Context, opts domain.ScanOptions) ([]FileResult, error) {
	ignore := NewIgnoreMatcher()
	if opts.IgnoreFileName != "" {
		if err := ignore.LoadFile(filepath.Join(opts.RootPath, opts.IgnoreFileName)); err != nil {
			return nil, err
		}
	}

	paths, err := s.collectFiles(opts, ignore)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if s.registry != nil && !s.registry.Enabled(resilience.FeatureParallelScan) {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	results := make([]FileResult, len(paths))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			results[i] = s.ScanFile(path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

func (s *Scanner) collectFiles(opts domain.ScanOptions, ignore *IgnoreMatcher) ([]string, error) {
	var paths []string
	err := filepath.Walk(opts.RootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(opts.RootPath, path)
		if relErr != nil {
			rel = path
		}
		if rel == "." {
			return nil
		}
		if info.IsDir() {
			if ignore.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !opts.FollowSymlinks && info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		if ignore.Match(rel, false) {
			return nil
		}
		if opts.MaxFileSizeBytes > 0 && info.Size() > opts.MaxFileSizeBytes {
			return nil
		}
		if !extensionAllowed(path, opts.IncludeExtensions, opts.ExcludeExtensions) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	return paths, err
}

func extensionAllowed(path string, include, exclude []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exclude {
		if strings.ToLower(e) == ext {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, e := range include {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// ScanFile runs every pattern and rule against a single file's content.
func (s *Scanner) ScanFile(path string, opts domain.ScanOptions) FileResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}

	findings, err := s.ScanContent(string(content), path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}

	findings = filterByConfidence(findings, opts.ConfidenceFloor)
	if opts.MaxFindingsPerFile > 0 && len(findings) > opts.MaxFindingsPerFile {
		findings = findings[:opts.MaxFindingsPerFile]
	}

	return FileResult{Path: path, Findings: findings}
}

// ScanContent runs the pattern registry and every custom rule against raw
// content, tagging findings with fileName for reporting.
func (s *Scanner) ScanContent(content, fileName string) ([]domain.Finding, error) {
	var findings []domain.Finding

	if s.patterns != nil {
		for _, m := range s.patterns.FindAllMatches(content) {
			line, col := lineAndColumn(content, m.Start)
			findings = append(findings, domain.Finding{
				File:        fileName,
				Line:        line,
				Column:      col,
				MatchedText: m.MatchedText,
				SecretType:  m.SecretType,
				Method:      domain.MethodRegex,
				RuleName:    m.PatternName,
				Confidence:  m.Confidence,
				Severity:    domain.SeverityFor(m.SecretType),
			})
		}
	}

	if s.rules != nil {
		for _, rule := range s.ruleSet {
			ruleFindings, err := s.rules.Evaluate(rule, fileName, content)
			if err != nil {
				return nil, err
			}
			findings = append(findings, ruleFindings...)
		}
	}

	return findings, nil
}

func filterByConfidence(findings []domain.Finding, floor float64) []domain.Finding {
	if floor <= 0 {
		return findings
	}
	out := findings[:0]
	for _, f := range findings {
		if f.Confidence >= floor {
			out = append(out, f)
		}
	}
	return out
}

// Package usecase wires the pattern registry, entropy analyzer, rule
// engine, and scanner into the operations a caller actually wants:
// "scan this tree and give me a confidence-filtered, de-duplicated,
// severity-sorted report."
package usecase

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/allisson/secretvault/internal/detection/domain"
	"github.com/allisson/secretvault/internal/detection/service"
	"github.com/allisson/secretvault/internal/resilience"
)

// Detector is the Secret Detection Engine's public entry point.
type Detector struct {
	scanner *service.Scanner
}

// NewDetector builds a Detector backed by a default pattern registry and
// rule engine plus the given custom rules. registry may be nil, in which
// case the scanner always scans in parallel.
func NewDetector(customRules []domain.Rule, registry *resilience.Registry) *Detector {
	patterns := service.NewPatternRegistry()
	entropy := service.NewEntropyAnalyzer(domain.DefaultEntropyOptions())
	rules := service.NewRuleEngine(entropy)
	return &Detector{scanner: service.NewScanner(patterns, rules, customRules, registry)}
}

// Report is the outcome of a full scan: findings filtered, deduplicated,
// and sorted by severity then confidence, plus per-file errors and a
// summary count.
type Report struct {
	Findings []domain.Finding
	Errors   map[string]string
	FileSkipped
}

// FileSkipped counts the files a scan run analyzed (FilesScanned) and the
// files whose read or scan failed (FilesSkipped). Files excluded by a
// filter are not counted in either field.
type FileSkipped struct {
	FilesScanned int
	FilesSkipped int
}

// Scan walks opts.RootPath, applies opts.ConfidenceFloor, deduplicates
// identical findings (same file, line, column, rule), and returns the
// aggregate report.
func (d *Detector) Scan(ctx context.Context, opts domain.ScanOptions) (*Report, error) {
	results, err := d.scanner.ScanDirectory(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDetection, err)
	}

	report := &Report{Errors: make(map[string]string)}
	seen := make(map[string]bool)

	for _, r := range results {
		if r.Err != nil {
			report.Errors[r.Path] = r.Err.Error()
			report.FilesSkipped++
			continue
		}
		report.FilesScanned++
		for _, f := range r.Findings {
			key := fmt.Sprintf("%s:%d:%d:%s", f.File, f.Line, f.Column, f.RuleName)
			if seen[key] {
				continue
			}
			seen[key] = true
			report.Findings = append(report.Findings, f)
		}
	}

	sortFindings(report.Findings)
	return report, nil
}

// ScanContent runs the engine against a single in-memory buffer, useful
// for scanning content that never touches disk (e.g. a clipboard paste or
// a value about to be written to a secret container).
func (d *Detector) ScanContent(content, fileName string, confidenceFloor float64) ([]domain.Finding, error) {
	findings, err := d.scanner.ScanContent(content, fileName)
	if err != nil {
		return nil, err
	}
	filtered := findings[:0]
	for _, f := range findings {
		if f.Confidence >= confidenceFloor {
			filtered = append(filtered, f)
		}
	}
	sortFindings(filtered)
	return filtered, nil
}

func sortFindings(findings []domain.Finding) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return findings[i].Severity > findings[j].Severity
		}
		if findings[i].Confidence != findings[j].Confidence {
			return findings[i].Confidence > findings[j].Confidence
		}
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		return findings[i].Line < findings[j].Line
	})
}

// WriteJSON writes the report's findings as a JSON array.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Findings)
}

// WriteCSV writes the report's findings as CSV with a header row.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"file", "line", "column", "secret_type", "method", "rule", "confidence", "severity"}); err != nil {
		return err
	}
	for _, f := range r.Findings {
		row := []string{
			f.File,
			fmt.Sprintf("%d", f.Line),
			fmt.Sprintf("%d", f.Column),
			string(f.SecretType),
			string(f.Method),
			f.RuleName,
			fmt.Sprintf("%.2f", f.Confidence),
			fmt.Sprintf("%d", f.Severity),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

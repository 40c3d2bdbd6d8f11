package validation

import (
	"path/filepath"
	"strings"

	validation "github.com/jellydator/validation"
)

// Path validates that a string is a non-empty, non-absolute-escaping file
// path: no NUL bytes and no ".." traversal segments once cleaned.
var Path = validation.NewStringRuleWithError(
	func(s string) bool {
		if s == "" || strings.ContainsRune(s, 0) {
			return false
		}
		cleaned := filepath.Clean(s)
		for _, part := range strings.Split(cleaned, string(filepath.Separator)) {
			if part == ".." {
				return false
			}
		}
		return true
	},
	validation.NewError("validation_path", "must be a safe, non-traversing file path"),
)

// ConfigValueRange validates a numeric value falls within [Min, Max], for
// rejecting an operationally unsafe setting (e.g. a KDF memory floor of
// zero). The config loaders in this module do not apply it.
type ConfigValueRange struct {
	Min, Max float64
}

// Validate checks value, which must be convertible to float64.
func (c ConfigValueRange) Validate(value interface{}) error {
	var f float64
	switch v := value.(type) {
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint32:
		f = float64(v)
	case float64:
		f = v
	default:
		return validation.NewError("validation_config_value_type", "must be a numeric value")
	}

	if f < c.Min || f > c.Max {
		return validation.NewError(
			"validation_config_value_range",
			"must be between the configured minimum and maximum",
		)
	}
	return nil
}

// FileContentSize validates that file content does not exceed MaxBytes.
// The scanner does not use it; it skips oversized files by
// ScanOptions.MaxFileSizeBytes before reading them.
type FileContentSize struct {
	MaxBytes int64
}

// Validate checks value, which must be a []byte.
func (f FileContentSize) Validate(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return validation.NewError("validation_file_content_type", "must be byte content")
	}
	if int64(len(b)) > f.MaxBytes {
		return validation.NewError("validation_file_content_size", "exceeds the maximum scannable file size")
	}
	return nil
}

package domain

// ScanOptions configures a single scan run over a file tree.
type ScanOptions struct {
	RootPath          string
	Workers           int
	MaxFileSizeBytes  int64
	ConfidenceFloor   float64
	IgnoreFileName    string
	IncludeExtensions []string
	ExcludeExtensions []string
	FollowSymlinks    bool
	MaxFindingsPerFile int
}

// EntropyOptions configures the Shannon entropy analyzer.
type EntropyOptions struct {
	MinLength           int
	MaxLength           int
	MinEntropyThreshold float64
	MinNormalizedEntropy float64
	MinCharsetSize      int
	WindowSize          int
}

// DefaultEntropyOptions mirrors the general-purpose analyzer profile.
func DefaultEntropyOptions() EntropyOptions {
	return EntropyOptions{
		MinLength:            8,
		MaxLength:            1000,
		MinEntropyThreshold:  3.5,
		MinNormalizedEntropy: 0.6,
		MinCharsetSize:       8,
		WindowSize:           20,
	}
}

package domain

// KDFParams configures Argon2id. OutputLength is the derived key length in
// bytes, always 32 for the AEAD ciphers this package supports.
type KDFParams struct {
	MemoryKiB    uint32
	Time         uint32
	Parallelism  uint8
	OutputLength uint32
}

// Parameter floors enforced by the KDF implementation regardless of which
// Profile produced the params — a hand-built KDFParams cannot go below
// these even if the caller skips the Profile constructors.
const (
	MinMemoryKiB   uint32 = 1024
	MinTime        uint32 = 1
	MinParallelism uint8  = 1
)

// Within reports whether p satisfies the configured floors.
func (p KDFParams) Within() bool {
	return p.MemoryKiB >= MinMemoryKiB && p.Time >= MinTime && p.Parallelism >= MinParallelism
}

// Profile names a preset KDFParams tuple trading derivation cost against
// operation latency. Balanced is the default for interactive use.
type Profile string

const (
	ProfileFast     Profile = "fast"
	ProfileBalanced Profile = "balanced"
	ProfileSecure   Profile = "secure"
	ProfileParanoid Profile = "paranoid"
)

// Params returns the KDFParams tuple for a named profile. Unknown profiles
// fall back to ProfileBalanced.
func (p Profile) Params() KDFParams {
	switch p {
	case ProfileFast:
		return KDFParams{MemoryKiB: 4 * 1024, Time: 1, Parallelism: 1, OutputLength: 32}
	case ProfileSecure:
		return KDFParams{MemoryKiB: 256 * 1024, Time: 5, Parallelism: 8, OutputLength: 32}
	case ProfileParanoid:
		return KDFParams{MemoryKiB: 1024 * 1024, Time: 10, Parallelism: 16, OutputLength: 32}
	case ProfileBalanced:
		return KDFParams{MemoryKiB: 64 * 1024, Time: 3, Parallelism: 4, OutputLength: 32}
	default:
		return ProfileBalanced.Params()
	}
}

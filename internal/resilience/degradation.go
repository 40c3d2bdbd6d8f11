package resilience

import (
	"sync"
)

// Feature names a capability that can be individually disabled when its
// backing dependency is unhealthy, letting the rest of the application keep
// working in a degraded state instead of failing outright.
type Feature string

const (
	// FeatureFileOperations gates reading/writing files, backed by the
	// file_ops breaker. An open file_ops breaker disables it automatically.
	FeatureFileOperations Feature = "file_operations"
	// FeatureEncryption gates the crypto path, backed by the crypto_ops
	// breaker. An open crypto_ops breaker disables it automatically.
	FeatureEncryption Feature = "encryption"
	// FeatureTUI is reserved for an interactive dashboard; nothing in this
	// module drives it yet.
	FeatureTUI Feature = "tui"
	// FeatureGitIntegration is reserved for VCS-aware scanning behavior.
	FeatureGitIntegration Feature = "git_integration"

	// FeatureBackup controls whether writes take a backup-before-write copy.
	FeatureBackup Feature = "backup_before_write"
	// FeatureParallelScan controls whether the detection engine scans files
	// concurrently; disabling it falls back to sequential scanning.
	FeatureParallelScan Feature = "parallel_scan"
	// FeatureMetrics controls whether metrics are recorded for an operation.
	FeatureMetrics Feature = "metrics"
)

// HealthLevel is the three-way aggregate health reading a caller uses to
// decide whether to proceed, proceed cautiously, or refuse.
type HealthLevel int

const (
	// HealthHealthy means every breaker is closed and resources are fine.
	HealthHealthy HealthLevel = iota
	// HealthDegraded means a breaker is half-open (probing recovery) or a
	// resource probe raised a warning, but nothing is outright failing.
	HealthDegraded
	// HealthCritical means at least one breaker is open; its associated
	// feature has been disabled.
	HealthCritical
)

// String renders the level name used in logs and the /healthz body.
func (l HealthLevel) String() string {
	switch l {
	case HealthHealthy:
		return "healthy"
	case HealthDegraded:
		return "degraded"
	case HealthCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// HealthStatus summarizes the registry's current health.
type HealthStatus struct {
	Level     HealthLevel
	Healthy   bool
	Breakers  map[string]State
	Disabled  []Feature
	Resources ResourceStatus
}

// Registry aggregates circuit breakers and feature flags into a single
// health view, and is the thing the orchestrator consults before each
// operation to decide whether to run at full capability or a reduced one.
type Registry struct {
	mu             sync.Mutex
	breakers       map[string]*Breaker
	breakerFeature map[string]Feature
	disabled       map[Feature]bool
	probe          ResourceProbe
}

// NewRegistry creates an empty Registry. probe may be nil, in which case
// resource health is always reported healthy.
func NewRegistry(probe ResourceProbe) *Registry {
	return &Registry{
		breakers:       make(map[string]*Breaker),
		breakerFeature: make(map[string]Feature),
		disabled:       make(map[Feature]bool),
		probe:          probe,
	}
}

// RegisterBreaker adds a breaker to the registry's health aggregation and
// associates it with the feature Health disables automatically once the
// breaker opens. It does not change the breaker's own call behavior;
// callers still invoke it directly.
func (r *Registry) RegisterBreaker(b *Breaker, feature Feature) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breakers[b.Name()] = b
	r.breakerFeature[b.Name()] = feature
}

// Disable turns a feature off. Idempotent.
func (r *Registry) Disable(f Feature) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disabled[f] = true
}

// Enable turns a feature back on.
func (r *Registry) Enable(f Feature) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.disabled, f)
}

// Enabled reports whether a feature is currently enabled.
func (r *Registry) Enabled(f Feature) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.disabled[f]
}

// Health aggregates breaker states, disabled features, and the resource
// probe into a single status snapshot. Any Open breaker marks the overall
// level Critical and disables the feature registered against it; any
// Half-Open breaker (or an unhealthy resource probe, absent a Critical
// verdict) marks it Degraded; otherwise it is Healthy.
func (r *Registry) Health() HealthStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	states := make(map[string]State, len(r.breakers))
	level := HealthHealthy
	for name, b := range r.breakers {
		s := b.State()
		states[name] = s
		switch s {
		case StateOpen:
			level = HealthCritical
			if feature, ok := r.breakerFeature[name]; ok {
				r.disabled[feature] = true
			}
		case StateHalfOpen:
			if level == HealthHealthy {
				level = HealthDegraded
			}
		}
	}

	var resources ResourceStatus
	if r.probe != nil {
		resources = r.probe.Check()
		if !resources.Healthy && level == HealthHealthy {
			level = HealthDegraded
		}
	} else {
		resources = ResourceStatus{Healthy: true}
	}

	disabled := make([]Feature, 0, len(r.disabled))
	for f := range r.disabled {
		disabled = append(disabled, f)
	}

	return HealthStatus{
		Level:     level,
		Healthy:   level == HealthHealthy,
		Breakers:  states,
		Disabled:  disabled,
		Resources: resources,
	}
}

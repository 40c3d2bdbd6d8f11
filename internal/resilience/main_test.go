package resilience

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain checks that no goroutine leaks past the package's test suite.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

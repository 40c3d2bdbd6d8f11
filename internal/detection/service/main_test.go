package service

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain checks that the scanner's errgroup-bounded worker pool leaves no
// goroutine running past the package's test suite.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

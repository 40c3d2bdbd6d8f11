package resilience

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiskSpaceProbe_Check(t *testing.T) {
	t.Run("reports healthy when ratio floor is zero", func(t *testing.T) {
		probe := NewDiskSpaceProbe(".", 0)
		status := probe.Check()
		assert.True(t, status.Healthy)
		assert.Greater(t, status.FreeBytesRatio, -0.0001)
	})

	t.Run("reports unhealthy when ratio floor is unreachable", func(t *testing.T) {
		probe := NewDiskSpaceProbe(".", 1.1)
		status := probe.Check()
		assert.False(t, status.Healthy)
		assert.NotEmpty(t, status.Reason)
	})

	t.Run("reports unhealthy for a path that does not exist", func(t *testing.T) {
		probe := NewDiskSpaceProbe("/path/does/not/exist/at/all", 0)
		status := probe.Check()
		assert.False(t, status.Healthy)
		assert.NotEmpty(t, status.Reason)
	})
}

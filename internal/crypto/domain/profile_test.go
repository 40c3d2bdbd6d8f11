package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfile_Params(t *testing.T) {
	t.Run("balanced matches the documented tuple", func(t *testing.T) {
		p := ProfileBalanced.Params()
		assert.Equal(t, uint32(64*1024), p.MemoryKiB)
		assert.Equal(t, uint32(3), p.Time)
		assert.Equal(t, uint8(4), p.Parallelism)
		assert.Equal(t, uint32(32), p.OutputLength)
	})

	t.Run("fast matches the documented tuple", func(t *testing.T) {
		p := ProfileFast.Params()
		assert.Equal(t, uint32(4*1024), p.MemoryKiB)
		assert.Equal(t, uint32(1), p.Time)
		assert.Equal(t, uint8(1), p.Parallelism)
	})

	t.Run("secure matches the documented tuple", func(t *testing.T) {
		p := ProfileSecure.Params()
		assert.Equal(t, uint32(256*1024), p.MemoryKiB)
		assert.Equal(t, uint32(5), p.Time)
		assert.Equal(t, uint8(8), p.Parallelism)
	})

	t.Run("paranoid matches the documented tuple", func(t *testing.T) {
		p := ProfileParanoid.Params()
		assert.Equal(t, uint32(1024*1024), p.MemoryKiB)
		assert.Equal(t, uint32(10), p.Time)
		assert.Equal(t, uint8(16), p.Parallelism)
	})

	t.Run("unknown profile falls back to balanced", func(t *testing.T) {
		assert.Equal(t, ProfileBalanced.Params(), Profile("nonexistent").Params())
	})

	t.Run("every profile satisfies the configured floors", func(t *testing.T) {
		for _, p := range []Profile{ProfileFast, ProfileBalanced, ProfileSecure, ProfileParanoid} {
			assert.True(t, p.Params().Within(), "profile %s should satisfy floors", p)
		}
	})
}

func TestKDFParams_Within(t *testing.T) {
	t.Run("below memory floor fails", func(t *testing.T) {
		p := KDFParams{MemoryKiB: MinMemoryKiB - 1, Time: MinTime, Parallelism: MinParallelism}
		assert.False(t, p.Within())
	})

	t.Run("below time floor fails", func(t *testing.T) {
		p := KDFParams{MemoryKiB: MinMemoryKiB, Time: 0, Parallelism: MinParallelism}
		assert.False(t, p.Within())
	})

	t.Run("below parallelism floor fails", func(t *testing.T) {
		p := KDFParams{MemoryKiB: MinMemoryKiB, Time: MinTime, Parallelism: 0}
		assert.False(t, p.Within())
	})

	t.Run("at the floor exactly passes", func(t *testing.T) {
		p := KDFParams{MemoryKiB: MinMemoryKiB, Time: MinTime, Parallelism: MinParallelism}
		assert.True(t, p.Within())
	})
}

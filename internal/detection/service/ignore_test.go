package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIgnoreMatcher_Match(t *testing.T) {
	m := NewIgnoreMatcher()
	m.AddLine("# comment")
	m.AddLine("*.log")
	m.AddLine("/build/")
	m.AddLine("node_modules/")
	m.AddLine("!important.log")

	t.Run("wildcard extension matches", func(t *testing.T) {
		assert.True(t, m.Match("app.log", false))
	})

	t.Run("negated pattern overrides later", func(t *testing.T) {
		assert.False(t, m.Match("important.log", false))
	})

	t.Run("anchored directory only matches from root", func(t *testing.T) {
		assert.True(t, m.Match("build", true))
		assert.False(t, m.Match("src/build", true))
	})

	t.Run("unanchored directory matches anywhere", func(t *testing.T) {
		assert.True(t, m.Match("src/node_modules", true))
	})

	t.Run("non-matching path is not ignored", func(t *testing.T) {
		assert.False(t, m.Match("main.go", false))
	})

	t.Run("dir-only rule does not match files", func(t *testing.T) {
		assert.False(t, m.Match("build", false))
	})
}

func TestIgnoreMatcher_LoadFile_MissingIsNotError(t *testing.T) {
	m := NewIgnoreMatcher()
	assert.NoError(t, m.LoadFile("/nonexistent/.secretvaultignore"))
	assert.False(t, m.Match("anything.txt", false))
}

package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/secretvault/internal/detection/domain"
)

func TestLoadRulesFile_MissingFileReturnsNil(t *testing.T) {
	rules, err := LoadRulesFile(filepath.Join(t.TempDir(), "rules.json"))

	require.NoError(t, err)
	assert.Nil(t, rules)
}

func TestLoadRulesFile_ParsesCustomRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	content := `[
		{
			"ID": "custom-api-key",
			"Name": "Internal API key",
			"Kind": "regex",
			"SecretType": "custom:internal_api_key",
			"Confidence": 0.9,
			"Enabled": true,
			"Regex": {"Pattern": "internal_key=\\w+"}
		}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	rules, err := LoadRulesFile(path)

	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "custom-api-key", rules[0].ID)
	assert.Equal(t, domain.RuleKindRegex, rules[0].Kind)
	require.NotNil(t, rules[0].Regex)
	assert.Equal(t, `internal_key=\w+`, rules[0].Regex.Pattern)
}

func TestLoadRulesFile_InvalidJSONErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o600))

	_, err := LoadRulesFile(path)

	assert.Error(t, err)
}

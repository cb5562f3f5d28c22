package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInput = `{
  "challenge_info": {"challenge_id": "round_1b_001", "test_case_name": "menu_planning"},
  "documents": [
    {"filename": "Breakfast Ideas.pdf", "title": "Breakfast Ideas"},
    {"filename": "Dinner Ideas - Mains_1.pdf", "title": "Dinner Ideas - Mains_1"}
  ],
  "persona": {"role": "Food Contractor"},
  "job_to_be_done": {"task": "Prepare a vegetarian buffet-style dinner menu"}
}`

func TestParseInputConfig_Valid(t *testing.T) {
	cfg, err := ParseInputConfig(strings.NewReader(sampleInput))
	require.NoError(t, err)

	assert.Equal(t, "Food Contractor", cfg.Persona.Role)
	assert.Equal(t, "Prepare a vegetarian buffet-style dinner menu", cfg.JobToBeDone.Task)
	assert.Equal(t, []string{"Breakfast Ideas.pdf", "Dinner Ideas - Mains_1.pdf"}, cfg.Filenames())
	require.NotNil(t, cfg.ChallengeInfo)
	assert.Equal(t, "round_1b_001", cfg.ChallengeInfo.ChallengeID)
}

func TestParseInputConfig_ChallengeInfoOptional(t *testing.T) {
	cfg, err := ParseInputConfig(strings.NewReader(`{"documents":[{"filename":"a.pdf"}],"persona":{"role":"r"},"job_to_be_done":{"task":"t"}}`))
	require.NoError(t, err)
	assert.Nil(t, cfg.ChallengeInfo)
}

func TestParseInputConfig_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"no persona", `{"documents":[{"filename":"a.pdf"}],"job_to_be_done":{"task":"t"}}`, []string{"Persona.Role"}},
		{"blank task", `{"documents":[{"filename":"a.pdf"}],"persona":{"role":"r"},"job_to_be_done":{"task":"  "}}`, []string{"JobToBeDone.Task"}},
		{"no documents", `{"documents":[],"persona":{"role":"r"},"job_to_be_done":{"task":"t"}}`, []string{"Documents"}},
		{"blank filename", `{"documents":[{"filename":"a.pdf"},{"title":"x"}],"persona":{"role":"r"},"job_to_be_done":{"task":"t"}}`, []string{"Documents[1].Filename"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInputConfig(strings.NewReader(tt.input))
			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.want, cerr.Fields)
			assert.Contains(t, err.Error(), "invalid input config")
		})
	}
}

func TestParseInputConfig_Malformed(t *testing.T) {
	_, err := ParseInputConfig(strings.NewReader(`{"documents": [`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode input config")
}

func TestLoadInputConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "challenge1b_input.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleInput), 0o644))

	cfg, err := LoadInputConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Documents, 2)

	_, err = LoadInputConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestSynthesizeConfig(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.pdf", "a.pdf", "readme.md")

	cfg, err := SynthesizeConfig(dir, "Analyst", "Review")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, cfg.Filenames())
	assert.Equal(t, "a", cfg.Documents[0].Title)
	assert.Equal(t, "Analyst", cfg.Persona.Role)

	_, err = SynthesizeConfig(dir, "", "Review")
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}

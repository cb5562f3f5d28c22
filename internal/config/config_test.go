package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, "pdfs", cfg.PDFsDir)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "Document Analyst", cfg.Persona)
	assert.Equal(t, "Analyze and extract insights from documents", cfg.Job)
	assert.Equal(t, 0.1, cfg.ScoreThreshold)
	assert.False(t, cfg.EnforceThreshold)
	assert.Equal(t, 0, cfg.MaxSections)
	assert.Equal(t, 400, cfg.ChunkSize)
	assert.Equal(t, 50, cfg.ChunkOverlap)
	assert.Equal(t, 8, cfg.MinChunk)
	assert.True(t, cfg.PDFFallbackPdftotext)
	assert.Equal(t, "challenge1b_output.json", cfg.ConsolidatedFilename)
	assert.Equal(t, "8090", cfg.Port)
	assert.Empty(t, cfg.APIKey)
	assert.Equal(t, int64(52428800), cfg.MaxUploadBytes)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestDefault_MatchesLoad(t *testing.T) {
	cfg, err := Load(newTestViper(t))
	require.NoError(t, err)
	assert.Equal(t, cfg, Default())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCRANK_PORT", "9999")
	t.Setenv("DOCRANK_SCORE_THRESHOLD", "0.25")
	t.Setenv("DOCRANK_ENFORCE_THRESHOLD", "true")
	t.Setenv("DOCRANK_LOG_LEVEL", "debug")

	cfg, err := Load(newTestViper(t))
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, 0.25, cfg.ScoreThreshold)
	assert.True(t, cfg.EnforceThreshold)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoad_UnprefixedPersonaAndJob(t *testing.T) {
	t.Setenv("PERSONA", "Travel Planner")
	t.Setenv("JOB", "Plan a trip of 4 days")

	cfg, err := Load(newTestViper(t))
	require.NoError(t, err)
	assert.Equal(t, "Travel Planner", cfg.Persona)
	assert.Equal(t, "Plan a trip of 4 days", cfg.Job)
}

func TestLoad_PrefixedPersonaWins(t *testing.T) {
	t.Setenv("PERSONA", "unprefixed")
	t.Setenv("DOCRANK_PERSONA", "prefixed")

	cfg, err := Load(newTestViper(t))
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Persona)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := map[string]func(v *viper.Viper){
		"negative threshold": func(v *viper.Viper) { v.Set("score_threshold", -0.5) },
		"zero chunk size":    func(v *viper.Viper) { v.Set("chunk_size", 0) },
		"overlap >= size":    func(v *viper.Viper) { v.Set("chunk_overlap", 400) },
		"negative max":       func(v *viper.Viper) { v.Set("max_sections", -1) },
		"empty output dir":   func(v *viper.Viper) { v.Set("output_dir", "  ") },
		"unknown log level":  func(v *viper.Viper) { v.Set("log_level", "verbose") },
		"negative overlap":   func(v *viper.Viper) { v.Set("chunk_overlap", -1) },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			v := newTestViper(t)
			mutate(v)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}

func TestNewViper_ReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docrank.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pdfs_dir: /data/pdfs\nmax_sections: 12\n"), 0o644))

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/data/pdfs", cfg.PDFsDir)
	assert.Equal(t, 12, cfg.MaxSections)
	assert.Equal(t, "output", cfg.OutputDir)
}

func TestNewViper_MissingExplicitFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestNewViper_NoFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "pdfs", cfg.PDFsDir)
}

func TestNewViper_LoadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DOCRANK_OUTPUT_DIR=from-dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("DOCRANK_OUTPUT_DIR") })

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.OutputDir)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

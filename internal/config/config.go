package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. DOCRANK_PORT.
const EnvPrefix = "DOCRANK"

type Config struct {
	// Directories
	PDFsDir   string
	OutputDir string
	InputFile string

	// Batch-mode query defaults
	Persona string
	Job     string

	// Ranking
	ScoreThreshold   float64
	EnforceThreshold bool
	MaxSections      int

	// Chunking, in estimated tokens
	ChunkSize    int
	ChunkOverlap int
	MinChunk     int

	// PDF
	PDFFallbackPdftotext bool

	ConsolidatedFilename string

	// HTTP surface
	Port           string
	APIKey         string
	MaxUploadBytes int64

	LogLevel string
}

var defaults = map[string]any{
	"pdfs_dir":               "pdfs",
	"output_dir":             "output",
	"input_file":             "",
	"persona":                "Document Analyst",
	"job":                    "Analyze and extract insights from documents",
	"score_threshold":        0.1,
	"enforce_threshold":      false,
	"max_sections":           0,
	"chunk_size":             400,
	"chunk_overlap":          50,
	"min_chunk":              8,
	"pdf_fallback_pdftotext": true,
	"consolidated_filename":  "challenge1b_output.json",
	"port":                   "8090",
	"api_key":                "",
	"max_upload_bytes":       int64(52428800), // 50MB
	"log_level":              "info",
}

// SetDefaults registers every key's default and the env bindings on v.
// PERSONA and JOB are also read unprefixed.
func SetDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("persona", EnvPrefix+"_PERSONA", "PERSONA")
	_ = v.BindEnv("job", EnvPrefix+"_JOB", "JOB")
}

// NewViper builds a viper instance with defaults, a .env file from the
// working directory when present, and an optional config file. An empty
// cfgFile searches ./docrank.yaml and ~/.config/docrank/docrank.yaml; a
// missing file there is not an error.
func NewViper(cfgFile string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return v, nil
	}

	v.SetConfigName("docrank")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "docrank"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		PDFsDir:   v.GetString("pdfs_dir"),
		OutputDir: v.GetString("output_dir"),
		InputFile: v.GetString("input_file"),

		Persona: v.GetString("persona"),
		Job:     v.GetString("job"),

		ScoreThreshold:   v.GetFloat64("score_threshold"),
		EnforceThreshold: v.GetBool("enforce_threshold"),
		MaxSections:      v.GetInt("max_sections"),

		ChunkSize:    v.GetInt("chunk_size"),
		ChunkOverlap: v.GetInt("chunk_overlap"),
		MinChunk:     v.GetInt("min_chunk"),

		PDFFallbackPdftotext: v.GetBool("pdf_fallback_pdftotext"),

		ConsolidatedFilename: v.GetString("consolidated_filename"),

		Port:           v.GetString("port"),
		APIKey:         v.GetString("api_key"),
		MaxUploadBytes: v.GetInt64("max_upload_bytes"),

		LogLevel: v.GetString("log_level"),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = 8
	}
	if cfg.ConsolidatedFilename == "" {
		cfg.ConsolidatedFilename = "challenge1b_output.json"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration with every key at its default.
func Default() Config {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	cfg, _ := Load(v)
	return cfg
}

func (c Config) Validate() error {
	if c.ScoreThreshold < 0 {
		return fmt.Errorf("score_threshold must be >= 0, got %v", c.ScoreThreshold)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size), got %d", c.ChunkOverlap)
	}
	if c.MaxSections < 0 {
		return fmt.Errorf("max_sections must be >= 0, got %d", c.MaxSections)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured slog level.
func (c Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// ParseLevel maps debug, info, warn and error to slog levels. Empty is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level %q is not one of debug, info, warn, error", s)
}

package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// InputConfig is the run description read from challenge1b_input.json.
type InputConfig struct {
	ChallengeInfo *ChallengeInfo `json:"challenge_info,omitempty"`
	Documents     []DocumentRef  `json:"documents" validate:"required,min=1,dive"`
	Persona       Persona        `json:"persona"`
	JobToBeDone   JobToBeDone    `json:"job_to_be_done"`
}

type ChallengeInfo struct {
	ChallengeID  string `json:"challenge_id,omitempty"`
	TestCaseName string `json:"test_case_name,omitempty"`
	Description  string `json:"description,omitempty"`
}

type DocumentRef struct {
	Filename string `json:"filename" validate:"required"`
	Title    string `json:"title"`
}

type Persona struct {
	Role string `json:"role" validate:"required"`
}

type JobToBeDone struct {
	Task string `json:"task" validate:"required"`
}

var validate = validator.New()

// LoadInputConfig reads and validates an input config file.
func LoadInputConfig(path string) (InputConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return InputConfig{}, fmt.Errorf("open input config: %w", err)
	}
	defer f.Close()
	return ParseInputConfig(f)
}

// ParseInputConfig decodes and validates an input config.
func ParseInputConfig(r io.Reader) (InputConfig, error) {
	var cfg InputConfig
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return InputConfig{}, fmt.Errorf("decode input config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return InputConfig{}, err
	}
	return cfg, nil
}

// Validate checks required fields. Blank strings count as missing.
func (c InputConfig) Validate() error {
	trimmed := c
	trimmed.Persona.Role = strings.TrimSpace(c.Persona.Role)
	trimmed.JobToBeDone.Task = strings.TrimSpace(c.JobToBeDone.Task)
	trimmed.Documents = make([]DocumentRef, len(c.Documents))
	for i, d := range c.Documents {
		trimmed.Documents[i] = DocumentRef{Filename: strings.TrimSpace(d.Filename), Title: d.Title}
	}
	if len(c.Documents) == 0 {
		trimmed.Documents = nil
	}

	err := validate.Struct(trimmed)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate input config: %w", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.TrimPrefix(fe.Namespace(), "InputConfig."))
	}
	return &ConfigError{Fields: fields}
}

// Filenames lists the configured documents in order.
func (c InputConfig) Filenames() []string {
	names := make([]string, len(c.Documents))
	for i, d := range c.Documents {
		names[i] = d.Filename
	}
	return names
}

// SynthesizeConfig builds an input config covering every PDF in dir, in name
// order, with the given persona and job.
func SynthesizeConfig(dir, persona, job string) (InputConfig, error) {
	pdfs, err := listPDFs(dir)
	if err != nil {
		return InputConfig{}, err
	}
	if len(pdfs) == 0 {
		return InputConfig{}, fmt.Errorf("%w in %s", ErrNoPDFs, dir)
	}

	cfg := InputConfig{
		ChallengeInfo: &ChallengeInfo{
			ChallengeID:  "batch_auto_001",
			TestCaseName: "batch_processing",
			Description:  "Automatic processing of all input PDFs",
		},
		Persona:     Persona{Role: persona},
		JobToBeDone: JobToBeDone{Task: job},
	}
	for _, name := range pdfs {
		cfg.Documents = append(cfg.Documents, DocumentRef{
			Filename: name,
			Title:    strings.TrimSuffix(name, filepath.Ext(name)),
		})
	}
	return cfg, cfg.Validate()
}

// listPDFs returns the names of *.pdf files in dir, sorted.
func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read pdf dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

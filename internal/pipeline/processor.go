// Package pipeline drives ranking runs: it loads documents through a chunk
// source, scores and ranks their chunks, writes per-document analyses and
// assembles the consolidated output for the document set.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/docrank/internal/chunker"
	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/output"
	"github.com/dgallion1/docrank/internal/parser"
	"github.com/dgallion1/docrank/internal/ranking"
	"github.com/dgallion1/docrank/internal/refine"
	"github.com/dgallion1/docrank/internal/relevance"
)

// AnalysisSuffix is appended to a document's stem to name its output file.
const AnalysisSuffix = "_analysis.json"

// DocumentResult is what processing one document produced.
type DocumentResult struct {
	Document    string
	Output      output.PerDocumentOutput
	Data        *refine.DocumentData
	ContentHash string
	Duration    time.Duration
	OutputPath  string
}

// FileOutcome is one entry of a directory pass.
type FileOutcome struct {
	Filename string
	Duration time.Duration
	Success  bool
}

// RunSummary reports a config-driven run.
type RunSummary struct {
	RunID        string
	Succeeded    int
	Failed       int
	Documents    []FileOutcome
	Elapsed      time.Duration
	Stats        StatsSnapshot
	Consolidated output.ConsolidatedOutput
	OutputPath   string
}

// Processor runs documents through scoring, ranking and output assembly.
// Documents are processed one at a time.
type Processor struct {
	cfg    config.Config
	log    *slog.Logger
	source ChunkSource
	scorer *relevance.Scorer
	ranker *ranking.Ranker
	stats  *DurationStats
	runs   *RunStore
	now    func() time.Time

	persona string
	job     string
}

// Option customizes a Processor.
type Option func(*Processor)

// WithSource replaces the file-backed chunk source.
func WithSource(s ChunkSource) Option {
	return func(p *Processor) { p.source = s }
}

// WithClock fixes the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithRunStore shares a run registry.
func WithRunStore(s *RunStore) Option {
	return func(p *Processor) { p.runs = s }
}

// WithStats shares a timing tracker.
func WithStats(s *DurationStats) Option {
	return func(p *Processor) { p.stats = s }
}

func NewProcessor(cfg config.Config, log *slog.Logger, opts ...Option) *Processor {
	if log == nil {
		log = slog.Default()
	}
	p := &Processor{
		cfg: cfg,
		log: log,
		source: FileSource{
			Parser: parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
			Chunker: chunker.Config{
				ChunkSize:    cfg.ChunkSize,
				ChunkOverlap: cfg.ChunkOverlap,
				MinChunk:     cfg.MinChunk,
			},
		},
		scorer: relevance.NewScorer(relevance.DefaultWeights()),
		ranker: ranking.NewRanker(ranking.Options{
			Threshold:        cfg.ScoreThreshold,
			EnforceThreshold: cfg.EnforceThreshold,
			MaxSections:      cfg.MaxSections,
		}),
		stats:   NewDurationStats(time.Hour),
		runs:    NewRunStore(time.Hour),
		now:     time.Now,
		persona: cfg.Persona,
		job:     cfg.Job,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Stats returns the timing tracker.
func (p *Processor) Stats() *DurationStats { return p.stats }

// Runs returns the run registry.
func (p *Processor) Runs() *RunStore { return p.runs }

// ProcessSinglePDF analyzes one document with the processor's default
// persona and job and writes <stem>_analysis.json into outputDir.
func (p *Processor) ProcessSinglePDF(path, outputDir string) (*DocumentResult, error) {
	return p.processDocument(path, outputDir, relevance.NewQuery(p.persona, p.job))
}

func (p *Processor) processDocument(path, outputDir string, q relevance.Query) (*DocumentResult, error) {
	start := time.Now()
	name := filepath.Base(path)
	log := p.log.With("document", name)

	data, err := p.source.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	if data.Document == "" {
		data.Document = name
	}

	scored := ranking.ScoreChunks(p.scorer, q, data.Chunks)
	sections := p.ranker.Rank(scored)
	for i := range sections {
		s := &sections[i]
		s.SubsectionAnalysis = refine.ForSection(s.Document, s.Page, s.Text, q)
	}

	out := output.FormatOutput(sections, q.Persona, q.Job, p.now(), p.ranker.Threshold())
	if err := output.CheckOutput(out); err != nil {
		return nil, fmt.Errorf("check output for %s: %w", name, err)
	}

	outPath := filepath.Join(outputDir, stem(name)+AnalysisSuffix)
	if err := output.SaveJSON(out, outPath); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	p.stats.Record(elapsed)
	log.Info("document processed",
		"chunks", len(data.Chunks),
		"sections", len(out.Sections),
		"duration_ms", elapsed.Milliseconds(),
	)

	return &DocumentResult{
		Document:    data.Document,
		Output:      out,
		Data:        data,
		ContentHash: ContentHashHex([]byte(data.Text)),
		Duration:    elapsed,
		OutputPath:  outPath,
	}, nil
}

// ProcessAllPDFs analyzes every *.pdf in dir in name order. A failed
// document is logged and reported, never fatal.
func (p *Processor) ProcessAllPDFs(dir, outputDir string) ([]FileOutcome, error) {
	names, err := listPDFs(dir)
	if err != nil {
		return nil, err
	}

	outcomes := make([]FileOutcome, 0, len(names))
	for _, name := range names {
		start := time.Now()
		_, err := p.ProcessSinglePDF(filepath.Join(dir, name), outputDir)
		if err != nil {
			p.log.Error("document failed", "document", name, "error", err)
		}
		outcomes = append(outcomes, FileOutcome{
			Filename: name,
			Duration: time.Since(start),
			Success:  err == nil,
		})
	}
	return outcomes, nil
}

// GenerateConsolidatedOutput builds, validates and writes the consolidated
// output. results aligns with filenames; a nil entry is a failed document.
func (p *Processor) GenerateConsolidatedOutput(results []*DocumentResult, filenames []string, cfg InputConfig, outputDir string) (output.ConsolidatedOutput, string, error) {
	all := make([]*refine.DocumentData, len(results))
	for i, r := range results {
		if r != nil {
			all[i] = r.Data
		}
	}

	out := output.FormatConsolidatedOutput(all, filenames, cfg.Persona.Role, cfg.JobToBeDone.Task, p.now())
	if err := output.CheckConsolidated(out); err != nil {
		p.log.Error("consolidated output invalid", "error", err)
		return out, "", fmt.Errorf("check consolidated output: %w", err)
	}

	path := filepath.Join(outputDir, p.consolidatedFilename())
	if err := output.SaveJSON(out, path); err != nil {
		p.log.Error("consolidated output not written", "path", path, "error", err)
		return out, "", err
	}
	p.log.Info("consolidated output written",
		"path", path,
		"extracted_sections", len(out.ExtractedSections),
		"subsections", len(out.SubsectionAnalysis),
	)
	return out, path, nil
}

// RunFromConfig processes the documents listed in cfg from pdfsDir. Missing
// files fail the run before any processing. Document failures are recorded
// and the consolidated output is always written; ErrNoDocumentsProcessed is
// returned after writing it when nothing succeeded.
func (p *Processor) RunFromConfig(cfg InputConfig, pdfsDir, outputDir string) (*RunSummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var missing []string
	for _, d := range cfg.Documents {
		if _, err := os.Stat(filepath.Join(pdfsDir, d.Filename)); err != nil {
			missing = append(missing, d.Filename)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingDocuments, strings.Join(missing, ", "))
	}

	run := newRun(cfg.Persona.Role, cfg.JobToBeDone.Task, len(cfg.Documents))
	p.runs.Put(run)
	log := p.log.With("run_id", run.ID)
	log.Info("run started", "persona", run.Persona, "job", run.Job, "documents", run.Total)

	q := relevance.NewQuery(cfg.Persona.Role, cfg.JobToBeDone.Task)
	summary := &RunSummary{RunID: run.ID}
	start := time.Now()

	results := make([]*DocumentResult, len(cfg.Documents))
	run.SetStatus(StatusProcessing, "processing")
	for i, d := range cfg.Documents {
		docStart := time.Now()
		res, err := p.processDocument(filepath.Join(pdfsDir, d.Filename), outputDir, q)
		status := DocumentStatus{Filename: d.Filename, DurationMs: time.Since(docStart).Milliseconds()}
		if err != nil {
			log.Error("document failed", "document", d.Filename, "error", err)
			status.Error = err.Error()
			summary.Failed++
		} else {
			results[i] = res
			status.Success = true
			status.Sections = len(res.Output.Sections)
			status.ContentHash = res.ContentHash
			summary.Succeeded++
		}
		run.RecordDocument(status)
		summary.Documents = append(summary.Documents, FileOutcome{
			Filename: d.Filename,
			Duration: time.Since(docStart),
			Success:  err == nil,
		})
	}

	run.SetStatus(StatusWriting, "consolidating")
	consolidated, path, err := p.GenerateConsolidatedOutput(results, cfg.Filenames(), cfg, outputDir)
	summary.Consolidated = consolidated
	summary.OutputPath = path
	summary.Elapsed = time.Since(start)
	summary.Stats = p.stats.Snapshot()
	if err != nil {
		run.AddError(err.Error())
		run.SetStatus(StatusFailed, "consolidating")
		return summary, err
	}

	switch {
	case summary.Succeeded == 0:
		run.SetStatus(StatusFailed, "done")
		log.Error("run finished with no documents processed", "documents", run.Total)
		return summary, ErrNoDocumentsProcessed
	case summary.Failed > 0:
		run.SetStatus(StatusPartial, "done")
	default:
		run.SetStatus(StatusCompleted, "done")
	}
	log.Info("run finished",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"elapsed_ms", summary.Elapsed.Milliseconds(),
	)
	return summary, nil
}

// RunBatch processes every PDF in pdfsDir with the processor's default
// persona and job, as if they were listed in an input config.
func (p *Processor) RunBatch(pdfsDir, outputDir string) (*RunSummary, error) {
	cfg, err := SynthesizeConfig(pdfsDir, p.persona, p.job)
	if err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			return nil, fmt.Errorf("batch persona and job: %w", err)
		}
		return nil, err
	}
	return p.RunFromConfig(cfg, pdfsDir, outputDir)
}

func (p *Processor) consolidatedFilename() string {
	if p.cfg.ConsolidatedFilename != "" {
		return p.cfg.ConsolidatedFilename
	}
	return "challenge1b_output.json"
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

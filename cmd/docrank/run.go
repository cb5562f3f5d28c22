package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docrank/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Rank the documents listed in an input config",
	Long: `Run reads a challenge input file naming the documents, the persona and the
job to be done, analyzes each listed document from pdfs-dir and writes the
per-document analyses plus the consolidated output into output-dir.

Every listed document must exist before processing starts. A document that
fails to parse is reported and skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.InputFile == "" {
			return errors.New("--input is required")
		}
		in, err := pipeline.LoadInputConfig(cfg.InputFile)
		if err != nil {
			return err
		}
		summary, err := newProcessor().RunFromConfig(in, cfg.PDFsDir, cfg.OutputDir)
		if summary != nil {
			printSummary(cmd.OutOrStdout(), summary)
		}
		return err
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Rank every PDF in pdfs-dir for one persona and job",
	Long: `Batch analyzes every PDF in pdfs-dir, in name order, as if an input config
had listed them all. Persona and job come from flags, then the PERSONA and JOB
environment variables, then the configured defaults.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := newProcessor().RunBatch(cfg.PDFsDir, cfg.OutputDir)
		if summary != nil {
			printSummary(cmd.OutOrStdout(), summary)
		}
		return err
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Write per-document analyses for every PDF in pdfs-dir",
	Long: `Process analyzes every PDF in pdfs-dir with the default persona and job and
writes one <name>_analysis.json per document. No consolidated output is
written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outcomes, err := newProcessor().ProcessAllPDFs(cfg.PDFsDir, cfg.OutputDir)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		failed := 0
		for _, o := range outcomes {
			status := "ok"
			if !o.Success {
				status = "failed"
				failed++
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", o.Filename, status, o.Duration.Round(time.Millisecond))
		}
		if failed == len(outcomes) && failed > 0 {
			return pipeline.ErrNoDocumentsProcessed
		}
		return nil
	},
}

func printSummary(w io.Writer, s *pipeline.RunSummary) {
	fmt.Fprintf(w, "run %s: %d succeeded, %d failed in %s\n", s.RunID, s.Succeeded, s.Failed, s.Elapsed.Round(time.Millisecond))
	for _, d := range s.Documents {
		status := "ok"
		if !d.Success {
			status = "failed"
		}
		fmt.Fprintf(w, "  %s\t%s\n", d.Filename, status)
	}
	if s.OutputPath != "" {
		fmt.Fprintf(w, "consolidated output: %s\n", s.OutputPath)
	}
}

func init() {
	for _, c := range []*cobra.Command{runCmd, batchCmd, processCmd} {
		c.Flags().String("pdfs-dir", "pdfs", "directory holding the input documents")
		c.Flags().String("output-dir", "output", "directory for analysis output")
		c.Flags().Float64("threshold", 0.1, "minimum score recorded as the relevance threshold")
		c.Flags().Bool("enforce-threshold", false, "drop sections scoring below the threshold")
		c.Flags().Int("max-sections", 0, "keep at most this many sections per document (0 = all)")
	}
	runCmd.Flags().String("input", "", "challenge input JSON file")
	batchCmd.Flags().String("persona", "", "persona role")
	batchCmd.Flags().String("job", "", "job to be done")

	rootCmd.AddCommand(runCmd, batchCmd, processCmd)
}

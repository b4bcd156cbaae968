package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/jonathan/resume-coach/internal/analyzer"
	"github.com/jonathan/resume-coach/internal/config"
	"github.com/jonathan/resume-coach/internal/ingestion"
	"github.com/jonathan/resume-coach/internal/objectstore"
	"github.com/jonathan/resume-coach/internal/observability"
	"github.com/jonathan/resume-coach/internal/schemas"
	"github.com/jonathan/resume-coach/internal/types"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE|s3://bucket/key ...",
	Short: "Score resumes for ATS compatibility against a job role",
	Long: `Extract the text of each PDF or DOCX resume, match it against the skills of the job role and
print the ATS score with suggestions. Documents are analyzed in parallel; a failure in one does
not affect the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeRole        string
	analyzeJSON        bool
	analyzeValidate    bool
	analyzeVerbose     bool
	analyzeConcurrency int
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeRole, "role", "r", "", "Job role to score against (required)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print results as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeValidate, "validate", false, "Validate each result against the analysis result schema")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print extraction details before each report")
	analyzeCmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 4, "Maximum documents analyzed at once")
	_ = analyzeCmd.MarkFlagRequired("role")

	rootCmd.AddCommand(analyzeCmd)
}

// fetchFunc downloads an object from storage.
type fetchFunc func(ctx context.Context, bucket, key string) ([]byte, error)

// analysisOutcome is the result of analyzing one source. Exactly one of Result and Err is set.
type analysisOutcome struct {
	Source   string
	Result   *types.AnalysisResult
	Metadata *ingestion.Metadata
	Err      error
}

// jsonOutcome is the --json form of an analysisOutcome.
type jsonOutcome struct {
	Source string                `json:"source"`
	Result *types.AnalysisResult `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	extractor, err := ingestion.NewExtractor(cfg.PDFBackend)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	outcomes := analyzeAll(ctx, args, analyzeRole, extractor, lazyFetcher(cfg), analyzeConcurrency, analyzeValidate)

	out := cmd.OutOrStdout()
	if analyzeJSON {
		if err := writeJSON(out, outcomes); err != nil {
			return err
		}
	} else {
		printOutcomes(observability.NewPrinter(out), outcomes, analyzeVerbose)
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(outcomes))
	}
	return nil
}

// lazyFetcher creates the S3 client on the first s3:// source.
func lazyFetcher(cfg *config.Config) fetchFunc {
	client := sync.OnceValues(func() (*objectstore.Client, error) {
		return objectstore.New(context.Background(), objectstore.Options{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			MaxBytes:        cfg.MaxUploadBytes(),
		})
	})
	return func(ctx context.Context, bucket, key string) ([]byte, error) {
		c, err := client()
		if err != nil {
			return nil, err
		}
		return c.Download(ctx, bucket, key)
	}
}

// loadDocument reads a local file or downloads an s3:// object.
func loadDocument(ctx context.Context, source string, fetch fetchFunc) (ingestion.Document, error) {
	if objectstore.IsURI(source) {
		bucket, key, err := objectstore.ParseURI(source)
		if err != nil {
			return ingestion.Document{}, err
		}
		data, err := fetch(ctx, bucket, key)
		if err != nil {
			return ingestion.Document{}, fmt.Errorf("failed to download %s: %w", source, err)
		}
		return ingestion.Document{Filename: path.Base(key), Data: data}, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return ingestion.Document{}, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return ingestion.Document{Filename: filepath.Base(source), Data: data}, nil
}

// analyzeAll analyzes every source with at most limit in flight. Outcomes keep the order of sources.
func analyzeAll(ctx context.Context, sources []string, role string, extractor *ingestion.Extractor, fetch fetchFunc, limit int, validate bool) []analysisOutcome {
	outcomes := make([]analysisOutcome, len(sources))

	var g errgroup.Group
	g.SetLimit(max(limit, 1))
	for i, source := range sources {
		g.Go(func() error {
			outcomes[i] = analyzeOne(ctx, source, role, extractor, fetch, validate)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func analyzeOne(ctx context.Context, source, role string, extractor *ingestion.Extractor, fetch fetchFunc, validate bool) analysisOutcome {
	outcome := analysisOutcome{Source: source}

	doc, err := loadDocument(ctx, source, fetch)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	text, metadata, err := ingestion.Ingest(ctx, extractor, doc)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Metadata = metadata

	result := analyzer.Analyze(text, role)
	if validate {
		if err := schemas.ValidateAnalysisResult(result); err != nil {
			outcome.Err = fmt.Errorf("result failed schema validation: %w", err)
			return outcome
		}
	}
	outcome.Result = &result
	return outcome
}

func writeJSON(w io.Writer, outcomes []analysisOutcome) error {
	out := make([]jsonOutcome, len(outcomes))
	for i, o := range outcomes {
		out[i] = jsonOutcome{Source: o.Source, Result: o.Result}
		if o.Err != nil {
			out[i].Error = o.Err.Error()
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

func printOutcomes(p *observability.Printer, outcomes []analysisOutcome, verbose bool) {
	for _, o := range outcomes {
		if o.Err != nil {
			p.PrintFailure(o.Source, o.Err)
			continue
		}
		if verbose {
			p.PrintExtraction(o.Metadata)
		}
		p.PrintAnalysis(o.Result)
	}
}

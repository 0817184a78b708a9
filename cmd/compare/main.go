// Command compare scores one original document against one or more
// comparison documents, using a remote service when configured and the
// local engine otherwise.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/RishiKendai/veritext/internal/client"
	"github.com/RishiKendai/veritext/internal/config"
	"github.com/RishiKendai/veritext/internal/configs/env"
	"github.com/RishiKendai/veritext/internal/logger"
	"github.com/RishiKendai/veritext/internal/plagiarism"
	"github.com/RishiKendai/veritext/internal/stopwords"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

type fileResult struct {
	File   string            `json:"file"`
	Origin client.Origin     `json:"origin"`
	Result plagiarism.Result `json:"result"`
}

func main() {
	var (
		remoteURL string
		asJSON    bool
		timeout   time.Duration
		logLevel  string
	)

	_ = env.LoadEnv()

	flag.StringVar(&remoteURL, "remote", os.Getenv("REMOTE_ENGINE_URL"), "Comparison service base URL, e.g. http://localhost:8080/api")
	flag.BoolVar(&asJSON, "json", false, "Print results as JSON")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Timeout for each remote request")
	flag.StringVar(&logLevel, "log-level", "warn", "Log level")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] ORIGINAL_FILE COMPARISON_FILE...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(1)
	}

	logger.Init(logLevel, "console")
	// stdout carries results only
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := run(remoteURL, asJSON, timeout, flag.Arg(0), flag.Args()[1:]); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func run(remoteURL string, asJSON bool, timeout time.Duration, originalPath string, comparisonPaths []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	original, err := os.ReadFile(originalPath)
	if err != nil {
		return fmt.Errorf("failed to read original file: %w", err)
	}

	cl := client.NewClient(remoteURL, timeout, engine)
	ctx := context.Background()

	var bar *progressbar.ProgressBar
	if len(comparisonPaths) > 1 {
		bar = getProgressBar(len(comparisonPaths), "Comparing")
	}

	results := make([]fileResult, 0, len(comparisonPaths))
	for _, path := range comparisonPaths {
		comparison, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		result, origin := cl.Compare(ctx, string(original), string(comparison))
		results = append(results, fileResult{File: path, Origin: origin, Result: result})

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		printResult(r)
	}
	return nil
}

// newEngine builds the engine from the same environment as the server.
// Named Mongo sets are a server concern; the CLI reads files only.
func newEngine() (*plagiarism.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	words, err := stopwords.Load(context.Background(), stopwords.Source{File: cfg.StopwordsFile})
	if err != nil {
		return nil, err
	}

	opts, err := cfg.EngineOptions(words)
	if err != nil {
		return nil, err
	}
	return plagiarism.New(opts)
}

func printResult(r fileResult) {
	tier := tierColor(r.Result.Level)

	color.Blue("\n%s", r.File)
	fmt.Printf("  Similarity: %.1f%% (%s)\n", r.Result.SimilarityScore*100, r.Origin)
	fmt.Printf("  Level:      %s\n", tier.Sprint(r.Result.Level))
	fmt.Printf("  %s\n", r.Result.Description)

	if len(r.Result.MatchingSegments) == 0 {
		fmt.Println("  No matching segments")
		return
	}

	fmt.Printf("  Matching segments (%d):\n", len(r.Result.MatchingSegments))
	for i, seg := range r.Result.MatchingSegments {
		fmt.Printf("  %d. %s\n", i+1, color.CyanString(seg.Ngram))
		fmt.Printf("     original:   %s\n", seg.Original)
		fmt.Printf("     comparison: %s\n", seg.Comparison)
	}
}

func tierColor(level plagiarism.Level) *color.Color {
	switch level {
	case plagiarism.LevelHigh:
		return color.New(color.FgRed, color.Bold)
	case plagiarism.LevelMedium:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

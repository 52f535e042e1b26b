// Command ocrloc recognizes text in images with a PaddleOCR-VL style
// vision model and reports each fragment with pixel coordinates.
//
// Single image:
//
//	ocrloc ./test.jpg
//
// Batch with globs, JSON document to a file:
//
//	ocrloc -json -o results.json './scans/*.png'
//
// Custom model and prompt:
//
//	ocrloc -m some/other-model -p "识别并翻译成英文" ./test.jpg
//
// Spreadsheet export:
//
//	ocrloc -xlsx results.xlsx './scans/*.png'
//
// The API key is read from -k, or the SILICONFLOW_API_KEY environment
// variable (a .env file in the working directory is honored).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/bbiangul/ocrloc"
	"github.com/bbiangul/ocrloc/output"
)

func main() {
	var (
		apiKey    = flag.String("k", "", "API key (default: from SILICONFLOW_API_KEY env)")
		model     = flag.String("m", ocrloc.DefaultModel, "Model name")
		prompt    = flag.String("p", ocrloc.DefaultPrompt, "Recognition prompt")
		provider  = flag.String("provider", "siliconflow", "Model provider: siliconflow, custom")
		baseURL   = flag.String("base-url", "", "Provider base URL override")
		jsonOut   = flag.Bool("json", false, "Print results as a JSON document")
		outFile   = flag.String("o", "", "Write the JSON document to this file")
		xlsxFile  = flag.String("xlsx", "", "Write results to this spreadsheet file")
		maxTokens = flag.Int("max-tokens", 2000, "Maximum response tokens")
		noCache   = flag.Bool("no-cache", false, "Disable the response cache")
		cachePath = flag.String("cache-path", "", "Response cache path (default: ~/.ocrloc/cache.db)")
		verbose   = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: ocrloc [flags] <image-or-glob>...")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// A .env file may carry the API key; absence is not an error.
	_ = godotenv.Load()

	key := *apiKey
	if key == "" {
		key = os.Getenv("SILICONFLOW_API_KEY")
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "error: no API key provided")
		fmt.Fprintln(os.Stderr, "provide one via:")
		fmt.Fprintln(os.Stderr, "  1. environment: export SILICONFLOW_API_KEY=your_key")
		fmt.Fprintln(os.Stderr, "  2. flag: ocrloc -k your_key image.png")
		os.Exit(1)
	}

	images := expandPatterns(flag.Args())
	if len(images) == 0 {
		fmt.Fprintln(os.Stderr, "error: no image files found")
		os.Exit(1)
	}

	cfg := ocrloc.DefaultConfig()
	cfg.Vision.Provider = *provider
	cfg.Vision.Model = *model
	cfg.Vision.BaseURL = *baseURL
	cfg.Vision.APIKey = key
	cfg.Prompt = *prompt
	cfg.MaxTokens = *maxTokens
	cfg.NoCache = *noCache
	cfg.CachePath = *cachePath

	engine, err := ocrloc.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	ctx := context.Background()
	var batch output.Batch

	for _, imagePath := range images {
		if _, err := os.Stat(imagePath); err != nil {
			slog.Warn("skipping missing file", "path", imagePath)
			continue
		}

		name := filepath.Base(imagePath)
		result, err := engine.Recognize(ctx, imagePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: processing %s: %v\n", imagePath, err)
			batch.AddError(name, err)
			continue
		}
		batch.Add(name, result)

		if !*jsonOut {
			if err := output.Text(os.Stdout, name, result); err != nil {
				fmt.Fprintf(os.Stderr, "error: writing output: %v\n", err)
				os.Exit(1)
			}
		}
	}

	if *xlsxFile != "" {
		if err := output.XLSX(*xlsxFile, &batch); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "spreadsheet saved to: %s\n", *xlsxFile)
	}

	if *jsonOut || *outFile != "" {
		if *outFile != "" {
			f, err := os.Create(*outFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			if err := output.JSON(f, &batch); err != nil {
				f.Close()
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "results saved to: %s\n", *outFile)
		} else {
			if err := output.JSON(os.Stdout, &batch); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
		}
	}
}

// expandPatterns resolves glob patterns and exact paths into a file list.
// Patterns that match nothing are tried as literal paths, then warned
// about if the file does not exist.
func expandPatterns(patterns []string) []string {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err == nil && len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, statErr := os.Stat(pattern); statErr == nil {
			files = append(files, pattern)
			continue
		}
		slog.Warn("no files match pattern", "pattern", pattern)
	}
	return files
}

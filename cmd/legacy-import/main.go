package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/maintdoc-analyzer/internal/common"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/legacy"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/repository"
)

// legacy-import converts MSC-style legacy spreadsheets from the command line,
// one converted document per file.
func main() {
	var (
		dir  = flag.String("dir", "", "directory of legacy spreadsheets to convert (required)")
		file = flag.String("file", "", "single legacy spreadsheet to convert")
	)
	flag.Parse()

	if *dir == "" && *file == "" {
		fmt.Fprintln(os.Stderr, "Error: --dir or --file is required")
		os.Exit(1)
	}

	logger, closeLog := common.SetupLogger(os.Getenv("LOG_FILE"), slog.LevelInfo)
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	ctx := context.Background()

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	docs := repository.NewDocumentRepository(db, logger)
	converter := legacy.NewConverter(docs, logger)

	var paths []string
	if *file != "" {
		paths = append(paths, *file)
	}
	if *dir != "" {
		entries, err := os.ReadDir(*dir)
		if err != nil {
			logger.Error("reading directory", "dir", *dir, "error", err)
			os.Exit(1)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if ext == ".xlsx" || ext == ".xls" {
				paths = append(paths, filepath.Join(*dir, e.Name()))
			}
		}
	}
	if len(paths) == 0 {
		fmt.Println("No legacy spreadsheets found.")
		return
	}

	converted, failures := 0, 0
	totalRecords, totalIssues := 0, 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("reading file", "path", path, "error", err)
			failures++
			continue
		}

		result, err := converter.Convert(ctx, data, filepath.Base(path))
		if err != nil {
			logger.Error("conversion failed", "path", path, "error", err)
			failures++
			continue
		}

		converted++
		totalRecords += result.RecordsCreated
		totalIssues += result.RecordsWithIssues
		logger.Info("converted", "path", path,
			"document_id", result.DocumentID,
			"records", result.RecordsCreated,
			"with_issues", result.RecordsWithIssues)
	}

	fmt.Printf("Legacy import complete!\n")
	fmt.Printf("- Files converted: %d\n", converted)
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Records created: %d\n", totalRecords)
	fmt.Printf("- Records with issues: %d\n", totalIssues)
}

// Package extract converts raw maintenance documents into plain text, one
// strategy per declared file type.
package extract

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
)

// Extractor dispatches raw-text extraction on the declared file type.
type Extractor struct {
	log *slog.Logger
}

// NewExtractor creates a text extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{log: logger}
}

// Extract returns the plain-text rendition of the file at path. An unknown
// declared type yields empty text without error; an unreadable file is an
// error the pipeline treats as fatal for the run.
func (e *Extractor) Extract(path string, fileType constants.FileType) (string, error) {
	switch fileType {
	case constants.FileTypePDF:
		text, err := extractPDFText(path)
		if err != nil {
			return "", fmt.Errorf("extract pdf: %w", err)
		}
		return text, nil

	case constants.FileTypeSpreadsheet, constants.FileTypeLegacy:
		table, err := ParseSpreadsheet(path)
		if err != nil {
			return "", fmt.Errorf("extract spreadsheet: %w", err)
		}
		return table.TextRepresentation(), nil

	case constants.FileTypeCSV:
		table, err := ParseCSV(path)
		if err != nil {
			return "", fmt.Errorf("extract csv: %w", err)
		}
		return table.TextRepresentation(), nil

	case constants.FileTypeText, constants.FileTypeLog:
		text, err := readTextFile(path)
		if err != nil {
			return "", fmt.Errorf("extract text: %w", err)
		}
		return text, nil

	default:
		e.log.Warn("extract.unsupported_type", "file_type", fileType, "path", path)
		return "", nil
	}
}

package legacy

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/common"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/entity"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/extract"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/repository"
)

// ConversionResult reports the outcome of one legacy bulk import.
type ConversionResult struct {
	Success           bool              `json:"success"`
	DocumentID        uuid.UUID         `json:"document_id"`
	RecordsCreated    int               `json:"records_created"`
	RecordsWithIssues int               `json:"records_with_issues"`
	ColumnMappings    map[string]string `json:"column_mappings"`
	Message           string            `json:"message"`
}

// Converter turns a legacy spreadsheet into a converted document with one
// record per data row. Rows are never dropped; defects become anomalies on
// the row's record instead.
type Converter struct {
	docs repository.DocumentRepository
	log  *slog.Logger
}

// NewConverter creates a legacy converter persisting through docs.
func NewConverter(docs repository.DocumentRepository, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{docs: docs, log: logger}
}

// Convert parses the uploaded workbook bytes, maps its headers, converts
// every data row, and persists the document, records, anomalies and the
// mapping in one transaction.
func (c *Converter) Convert(ctx context.Context, fileContent []byte, filename string) (*ConversionResult, error) {
	table, err := extract.ParseSpreadsheetReader(bytes.NewReader(fileContent))
	if err != nil {
		return nil, common.WrapError(err, "failed to parse legacy spreadsheet")
	}

	mappings := MapColumns(table.Columns)
	c.log.Info("legacy.convert.start", "filename", filename,
		"rows", len(table.Rows), "mapped_fields", len(mappings))

	doc := &entity.Document{
		ID:               uuid.New(),
		Filename:         filename,
		FileType:         constants.FileTypeLegacy,
		FileSize:         int64(len(fileContent)),
		Processed:        true,
		ProcessingStatus: constants.StatusConverted,
	}

	var (
		results           []repository.ExtractionResult
		recordsWithIssues int
	)
	for i := range table.Rows {
		data := rowData(table, i, mappings)
		issues := validateRow(data)

		rec := buildRecord(doc.ID, data, issues)
		anomalies := make([]entity.Anomaly, 0, len(issues))
		for _, issue := range issues {
			anomalies = append(anomalies, entity.Anomaly{
				RecordID:     rec.ID,
				DocumentID:   doc.ID,
				Type:         issue.kind,
				Severity:     issue.severity,
				Description:  issue.description,
				FieldName:    strptr(issue.field),
				SuggestedFix: strptr(issue.fix),
			})
		}
		if len(issues) > 0 {
			recordsWithIssues++
		}
		results = append(results, repository.ExtractionResult{Record: rec, Anomalies: anomalies})
	}

	if err := c.docs.SaveLegacyImport(ctx, doc, results, mappings); err != nil {
		return nil, err
	}

	c.log.Info("legacy.convert.ok", "document_id", doc.ID,
		"records", len(results), "with_issues", recordsWithIssues)
	return &ConversionResult{
		Success:           true,
		DocumentID:        doc.ID,
		RecordsCreated:    len(results),
		RecordsWithIssues: recordsWithIssues,
		ColumnMappings:    mappings,
		Message:           fmt.Sprintf("Successfully converted %d records from %s", len(results), filename),
	}, nil
}

// rowData pulls the mapped cells for one row, trimmed, skipping empty cells.
func rowData(table *extract.Table, row int, mappings map[string]string) map[string]string {
	data := make(map[string]string)
	for field, column := range mappings {
		if v := strings.TrimSpace(table.Cell(row, column)); v != "" {
			data[field] = v
		}
	}
	return data
}

// issue is one defect found while validating a legacy row.
type issue struct {
	kind        constants.AnomalyType
	severity    constants.Severity
	field       string
	description string
	fix         string
}

// validateRow flags defects on the raw (pre-normalization) row values.
func validateRow(data map[string]string) []issue {
	var issues []issue

	if data["component"] == "" {
		issues = append(issues, issue{
			kind:        constants.AnomalyMissingField,
			severity:    constants.SeverityHigh,
			field:       "component",
			description: "Missing component/part identifier",
			fix:         "Review source document for component name",
		})
	}
	if data["priority"] == "" {
		issues = append(issues, issue{
			kind:        constants.AnomalyMissingField,
			severity:    constants.SeverityMedium,
			field:       "priority",
			description: "Missing priority level",
			fix:         "Assign default priority based on maintenance type",
		})
	}

	start, end := data["start_date"], data["end_date"]
	if start != "" && end != "" {
		startDt, endDt := parseDate(start), parseDate(end)
		if startDt != nil && endDt != nil && startDt.After(*endDt) {
			issues = append(issues, issue{
				kind:        constants.AnomalyDateInconsistency,
				severity:    constants.SeverityHigh,
				field:       "start_date,end_date",
				description: fmt.Sprintf("Start date (%s) is after end date (%s)", start, end),
				fix:         "Verify and correct date sequence",
			})
		}
	}

	if cost := data["cost_estimate"]; cost != "" {
		costVal := parseCost(cost)
		switch {
		case costVal == nil:
			issues = append(issues, issue{
				kind:        constants.AnomalyParseError,
				severity:    constants.SeverityLow,
				field:       "cost_estimate",
				description: fmt.Sprintf("Could not parse cost value: %s", cost),
				fix:         "Convert to numeric format",
			})
		case *costVal > 1000000:
			issues = append(issues, issue{
				kind:        constants.AnomalyExtremeValue,
				severity:    constants.SeverityMedium,
				field:       "cost_estimate",
				description: fmt.Sprintf("Unusually high cost estimate: $%.2f", *costVal),
				fix:         "Verify cost value is correct",
			})
		}
	}

	return issues
}

// buildRecord assembles the record for one row. Rows with issues carry a
// reduced confidence score.
func buildRecord(docID uuid.UUID, data map[string]string, issues []issue) *entity.Record {
	confidence := 0.85
	if len(issues) > 0 {
		confidence = 0.60
	}
	return &entity.Record{
		ID:           uuid.New(),
		DocumentID:   docID,
		Component:    optional(data["component"]),
		System:       optional(data["system"]),
		Priority:     normalizePriority(data["priority"]),
		MaintAction:  optional(data["maint_action"]),
		CostEstimate: parseCost(data["cost_estimate"]),
		StartDate:    parseDate(data["start_date"]),
		EndDate:      parseDate(data["end_date"]),
		SummaryNotes: optional(data["notes"]),
		Status:       constants.RecordOpen,
		Method:       constants.MethodLegacy,
		Confidence:   confidence,
	}
}

// normalizePriority maps common spellings onto the canonical buckets.
// Unrecognized values pass through unchanged so no source data is lost.
func normalizePriority(value string) *string {
	if value == "" {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "high", "critical", "urgent", "p1":
		return strptr(string(constants.PriorityHigh))
	case "2", "medium", "moderate", "normal", "p2":
		return strptr(string(constants.PriorityMedium))
	case "3", "low", "minor", "routine", "p3":
		return strptr(string(constants.PriorityLow))
	}
	return &value
}

// legacyCostStrip removes currency symbols, commas and whitespace.
var legacyCostStrip = regexp.MustCompile(`[$,\s]`)

func parseCost(value string) *float64 {
	if value == "" {
		return nil
	}
	cleaned := legacyCostStrip.ReplaceAllString(value, "")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

// legacyDateFormats is the ordered layout list accepted for legacy sheets.
var legacyDateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"01-02-2006",
	"02-01-2006",
}

func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	s := strings.TrimSpace(value)
	for _, layout := range legacyDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &t
		}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strptr(s string) *string { return &s }

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/common"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/entity"
)

// ExtractionResult pairs one extracted record with the anomalies flagged on
// it, so a document's results can be persisted in a single transaction.
type ExtractionResult struct {
	Record    *entity.Record
	Anomalies []entity.Anomaly
}

// DocumentRepository defines operations for managing uploaded documents and
// their extraction results.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	List(ctx context.Context) ([]*entity.Document, error)

	// ClaimForProcessing atomically moves the document into the processing
	// state. It returns false without error when another worker holds the
	// claim already.
	ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error)

	SetStatus(ctx context.Context, id uuid.UUID, status string, processed bool) error

	// SaveResults persists a completed pipeline run: raw text, records,
	// anomalies and the terminal status, all in one transaction.
	SaveResults(ctx context.Context, id uuid.UUID, rawText string, results []ExtractionResult) error

	// SaveLegacyImport persists a legacy bulk conversion: the document row,
	// its records and inline anomalies, and the header mapping used.
	SaveLegacyImport(ctx context.Context, doc *entity.Document, results []ExtractionResult, mapping map[string]string) error

	GetColumnMapping(ctx context.Context, docID uuid.UUID) (map[string]string, error)
}

type documentRepository struct {
	db  *DB
	log *slog.Logger
}

// NewDocumentRepository creates a document repository backed by db.
func NewDocumentRepository(db *DB, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepository{db: db, log: logger}
}

const documentColumns = `id, filename, file_type, file_size, upload_date,
	processed, processing_status, raw_text, created_at, updated_at`

func (r *documentRepository) Create(ctx context.Context, doc *entity.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	now := time.Now().UTC()
	if doc.UploadDate.IsZero() {
		doc.UploadDate = now
	}
	if doc.ProcessingStatus == "" {
		doc.ProcessingStatus = constants.StatusUploaded
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, r.db.rebind(`
		INSERT INTO documents (id, filename, file_type, file_size, upload_date,
			processed, processing_status, raw_text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		doc.ID.String(), doc.Filename, string(doc.FileType), doc.FileSize,
		fmtTime(doc.UploadDate), doc.Processed, string(doc.ProcessingStatus),
		nullStr(doc.RawText), fmtTime(doc.CreatedAt), fmtTime(doc.UpdatedAt))
	if err != nil {
		return common.WrapError(err, "failed to create document")
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	row := r.db.QueryRowContext(ctx, r.db.rebind(
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`), id.String())
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "failed to load document")
	}
	return doc, nil
}

func (r *documentRepository) List(ctx context.Context) ([]*entity.Document, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(
		`SELECT `+documentColumns+` FROM documents ORDER BY upload_date DESC`))
	if err != nil {
		return nil, common.WrapError(err, "failed to list documents")
	}
	defer rows.Close()

	var docs []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, common.WrapError(err, "failed to scan document")
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "failed to list documents")
	}
	return docs, nil
}

func (r *documentRepository) ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.rebind(`
		UPDATE documents
		SET processing_status = ?, updated_at = ?
		WHERE id = ? AND processing_status <> ?`),
		string(constants.StatusProcessing), fmtTime(time.Now()),
		id.String(), string(constants.StatusProcessing))
	if err != nil {
		return false, common.WrapError(err, "failed to claim document")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, common.WrapError(err, "failed to claim document")
	}
	return n == 1, nil
}

func (r *documentRepository) SetStatus(ctx context.Context, id uuid.UUID, status string, processed bool) error {
	res, err := r.db.ExecContext(ctx, r.db.rebind(`
		UPDATE documents SET processing_status = ?, processed = ?, updated_at = ?
		WHERE id = ?`),
		status, processed, fmtTime(time.Now()), id.String())
	if err != nil {
		return common.WrapError(err, "failed to update document status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *documentRepository) SaveResults(ctx context.Context, id uuid.UUID, rawText string, results []ExtractionResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, r.db.rebind(`
		UPDATE documents
		SET raw_text = ?, processing_status = ?, processed = ?, updated_at = ?
		WHERE id = ?`),
		rawText, string(constants.StatusComplete), true, fmtTime(time.Now()), id.String())
	if err != nil {
		return common.WrapError(err, "failed to finalize document")
	}

	for _, res := range results {
		if err := insertRecordTx(ctx, tx, r.db, res.Record); err != nil {
			return err
		}
		for i := range res.Anomalies {
			if err := insertAnomalyTx(ctx, tx, r.db, &res.Anomalies[i]); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return common.WrapError(err, "failed to commit results")
	}
	r.log.Info("repo.results.saved", "document_id", id, "records", len(results))
	return nil
}

func (r *documentRepository) SaveLegacyImport(ctx context.Context, doc *entity.Document, results []ExtractionResult, mapping map[string]string) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	now := time.Now().UTC()
	if doc.UploadDate.IsZero() {
		doc.UploadDate = now
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now

	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return common.WrapError(err, "failed to encode column mapping")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, r.db.rebind(`
		INSERT INTO documents (id, filename, file_type, file_size, upload_date,
			processed, processing_status, raw_text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		doc.ID.String(), doc.Filename, string(doc.FileType), doc.FileSize,
		fmtTime(doc.UploadDate), doc.Processed, string(doc.ProcessingStatus),
		nullStr(doc.RawText), fmtTime(doc.CreatedAt), fmtTime(doc.UpdatedAt))
	if err != nil {
		return common.WrapError(err, "failed to create legacy document")
	}

	for _, res := range results {
		if err := insertRecordTx(ctx, tx, r.db, res.Record); err != nil {
			return err
		}
		for i := range res.Anomalies {
			if err := insertAnomalyTx(ctx, tx, r.db, &res.Anomalies[i]); err != nil {
				return err
			}
		}
	}

	_, err = tx.ExecContext(ctx, r.db.rebind(`
		INSERT INTO column_mappings (id, document_id, mapping, created_at)
		VALUES (?, ?, ?, ?)`),
		uuid.New().String(), doc.ID.String(), string(mappingJSON), fmtTime(now))
	if err != nil {
		return common.WrapError(err, "failed to save column mapping")
	}

	if err := tx.Commit(); err != nil {
		return common.WrapError(err, "failed to commit legacy import")
	}
	r.log.Info("repo.legacy.saved", "document_id", doc.ID, "records", len(results))
	return nil
}

func (r *documentRepository) GetColumnMapping(ctx context.Context, docID uuid.UUID) (map[string]string, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, r.db.rebind(
		`SELECT mapping FROM column_mappings WHERE document_id = ? ORDER BY created_at DESC LIMIT 1`),
		docID.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "failed to load column mapping")
	}
	var mapping map[string]string
	if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
		return nil, common.WrapError(err, "failed to decode column mapping")
	}
	return mapping, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*entity.Document, error) {
	var (
		doc                            entity.Document
		idStr, fileType, status        string
		uploadStr, createdStr, updated string
		rawText                        sql.NullString
	)
	if err := row.Scan(&idStr, &doc.Filename, &fileType, &doc.FileSize, &uploadStr,
		&doc.Processed, &status, &rawText, &createdStr, &updated); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse document id %q: %w", idStr, err)
	}
	doc.ID = id
	doc.FileType = constants.FileType(fileType)
	doc.ProcessingStatus = constants.ProcessingStatus(status)
	doc.RawText = strPtr(rawText)
	if doc.UploadDate, err = parseTime(uploadStr); err != nil {
		return nil, err
	}
	if doc.CreatedAt, err = parseTime(createdStr); err != nil {
		return nil, err
	}
	if doc.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &doc, nil
}

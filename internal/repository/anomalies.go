package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/common"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/entity"
)

// AnomalyRepository defines read and resolve operations for data-quality
// anomalies.
type AnomalyRepository interface {
	ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*entity.Anomaly, error)
	ListByDocument(ctx context.Context, docID uuid.UUID) ([]*entity.Anomaly, error)
	Resolve(ctx context.Context, id uuid.UUID) error
}

type anomalyRepository struct {
	db  *DB
	log *slog.Logger
}

// NewAnomalyRepository creates an anomaly repository backed by db.
func NewAnomalyRepository(db *DB, logger *slog.Logger) AnomalyRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &anomalyRepository{db: db, log: logger}
}

const anomalyColumns = `id, record_id, document_id, anomaly_type, severity,
	description, field_name, field_value, suggested_fix, resolved, created_at`

func (r *anomalyRepository) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*entity.Anomaly, error) {
	return r.list(ctx, `record_id`, recordID)
}

func (r *anomalyRepository) ListByDocument(ctx context.Context, docID uuid.UUID) ([]*entity.Anomaly, error) {
	return r.list(ctx, `document_id`, docID)
}

func (r *anomalyRepository) list(ctx context.Context, column string, id uuid.UUID) ([]*entity.Anomaly, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(
		`SELECT `+anomalyColumns+` FROM anomalies WHERE `+column+` = ? ORDER BY created_at, id`),
		id.String())
	if err != nil {
		return nil, common.WrapError(err, "failed to list anomalies")
	}
	defer rows.Close()

	var anomalies []*entity.Anomaly
	for rows.Next() {
		a, err := scanAnomaly(rows)
		if err != nil {
			return nil, common.WrapError(err, "failed to scan anomaly")
		}
		anomalies = append(anomalies, a)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "failed to list anomalies")
	}
	return anomalies, nil
}

func (r *anomalyRepository) Resolve(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.db.rebind(
		`UPDATE anomalies SET resolved = ? WHERE id = ?`), true, id.String())
	if err != nil {
		return common.WrapError(err, "failed to resolve anomaly")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	r.log.Info("repo.anomaly.resolved", "anomaly_id", id)
	return nil
}

func scanAnomaly(row rowScanner) (*entity.Anomaly, error) {
	var (
		a                                entity.Anomaly
		idStr, recStr, docStr            string
		anomalyType, severity, createdAt string
		fieldName, fieldValue, fix       sql.NullString
	)
	if err := row.Scan(&idStr, &recStr, &docStr, &anomalyType, &severity,
		&a.Description, &fieldName, &fieldValue, &fix, &a.Resolved, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if a.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse anomaly id %q: %w", idStr, err)
	}
	if a.RecordID, err = uuid.Parse(recStr); err != nil {
		return nil, fmt.Errorf("parse record id %q: %w", recStr, err)
	}
	if a.DocumentID, err = uuid.Parse(docStr); err != nil {
		return nil, fmt.Errorf("parse document id %q: %w", docStr, err)
	}
	a.Type = constants.AnomalyType(anomalyType)
	a.Severity = constants.Severity(severity)
	a.FieldName = strPtr(fieldName)
	a.FieldValue = strPtr(fieldValue)
	a.SuggestedFix = strPtr(fix)
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}

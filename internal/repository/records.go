package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/common"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/entity"
)

// RecordRepository defines operations for reading maintenance records and
// advancing their workflow status.
type RecordRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Record, error)
	ListByDocument(ctx context.Context, docID uuid.UUID) ([]*entity.Record, error)

	// UpdateStatus moves a record to newStatus and appends a history entry
	// carrying the previous status. newStatus must be canonical.
	UpdateStatus(ctx context.Context, id uuid.UUID, newStatus string, assignedTo, notes, updatedBy *string) (*entity.StatusUpdate, error)

	ListStatusHistory(ctx context.Context, recordID uuid.UUID) ([]*entity.StatusUpdate, error)
}

type recordRepository struct {
	db  *DB
	log *slog.Logger
}

// NewRecordRepository creates a record repository backed by db.
func NewRecordRepository(db *DB, logger *slog.Logger) RecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &recordRepository{db: db, log: logger}
}

const recordColumns = `id, document_id, component, system, failure_type,
	maint_action, priority, status, start_date, end_date, cost_estimate,
	cost_raw, summary_notes, assigned_to, confidence_score, extraction_method,
	created_at, updated_at`

func (r *recordRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Record, error) {
	row := r.db.QueryRowContext(ctx, r.db.rebind(
		`SELECT `+recordColumns+` FROM records WHERE id = ?`), id.String())
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "failed to load record")
	}
	return rec, nil
}

func (r *recordRepository) ListByDocument(ctx context.Context, docID uuid.UUID) ([]*entity.Record, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(
		`SELECT `+recordColumns+` FROM records WHERE document_id = ? ORDER BY created_at, id`),
		docID.String())
	if err != nil {
		return nil, common.WrapError(err, "failed to list records")
	}
	defer rows.Close()

	var recs []*entity.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, common.WrapError(err, "failed to scan record")
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "failed to list records")
	}
	return recs, nil
}

func (r *recordRepository) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus string, assignedTo, notes, updatedBy *string) (*entity.StatusUpdate, error) {
	if !constants.IsRecordStatus(newStatus) {
		return nil, common.NewAppError("INVALID_STATUS",
			fmt.Sprintf("unknown record status %q", newStatus), common.ErrInvalidInput)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.WrapError(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx, r.db.rebind(
		`SELECT status FROM records WHERE id = ?`), id.String()).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "failed to load record status")
	}

	now := time.Now().UTC()
	if assignedTo != nil {
		_, err = tx.ExecContext(ctx, r.db.rebind(
			`UPDATE records SET status = ?, assigned_to = ?, updated_at = ? WHERE id = ?`),
			newStatus, *assignedTo, fmtTime(now), id.String())
	} else {
		_, err = tx.ExecContext(ctx, r.db.rebind(
			`UPDATE records SET status = ?, updated_at = ? WHERE id = ?`),
			newStatus, fmtTime(now), id.String())
	}
	if err != nil {
		return nil, common.WrapError(err, "failed to update record status")
	}

	upd := &entity.StatusUpdate{
		ID:             uuid.New(),
		RecordID:       id,
		PreviousStatus: &current,
		NewStatus:      newStatus,
		AssignedTo:     assignedTo,
		Notes:          notes,
		UpdatedBy:      updatedBy,
		CreatedAt:      now,
	}
	_, err = tx.ExecContext(ctx, r.db.rebind(`
		INSERT INTO status_updates (id, record_id, previous_status, new_status,
			assigned_to, notes, updated_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		upd.ID.String(), id.String(), current, newStatus,
		nullStr(assignedTo), nullStr(notes), nullStr(updatedBy), fmtTime(now))
	if err != nil {
		return nil, common.WrapError(err, "failed to record status history")
	}

	if err := tx.Commit(); err != nil {
		return nil, common.WrapError(err, "failed to commit status update")
	}
	r.log.Info("repo.record.status", "record_id", id, "from", current, "to", newStatus)
	return upd, nil
}

func (r *recordRepository) ListStatusHistory(ctx context.Context, recordID uuid.UUID) ([]*entity.StatusUpdate, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(`
		SELECT id, record_id, previous_status, new_status, assigned_to, notes, updated_by, created_at
		FROM status_updates WHERE record_id = ? ORDER BY created_at, id`), recordID.String())
	if err != nil {
		return nil, common.WrapError(err, "failed to list status history")
	}
	defer rows.Close()

	var updates []*entity.StatusUpdate
	for rows.Next() {
		var (
			upd                       entity.StatusUpdate
			idStr, recStr, createdStr string
			prev, assigned, notes     sql.NullString
			updatedBy                 sql.NullString
		)
		if err := rows.Scan(&idStr, &recStr, &prev, &upd.NewStatus, &assigned, &notes, &updatedBy, &createdStr); err != nil {
			return nil, common.WrapError(err, "failed to scan status update")
		}
		if upd.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse status update id %q: %w", idStr, err)
		}
		if upd.RecordID, err = uuid.Parse(recStr); err != nil {
			return nil, fmt.Errorf("parse record id %q: %w", recStr, err)
		}
		upd.PreviousStatus = strPtr(prev)
		upd.AssignedTo = strPtr(assigned)
		upd.Notes = strPtr(notes)
		upd.UpdatedBy = strPtr(updatedBy)
		if upd.CreatedAt, err = parseTime(createdStr); err != nil {
			return nil, err
		}
		updates = append(updates, &upd)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "failed to list status history")
	}
	return updates, nil
}

// insertRecordTx writes one record inside an open transaction, filling the ID
// and timestamps when absent. Shared by the pipeline and legacy-import saves.
func insertRecordTx(ctx context.Context, tx *sql.Tx, db *DB, rec *entity.Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	if rec.Status == "" {
		rec.Status = constants.RecordOpen
	}

	_, err := tx.ExecContext(ctx, db.rebind(`
		INSERT INTO records (id, document_id, component, system, failure_type,
			maint_action, priority, status, start_date, end_date, cost_estimate,
			cost_raw, summary_notes, assigned_to, confidence_score,
			extraction_method, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.ID.String(), rec.DocumentID.String(),
		nullStr(rec.Component), nullStr(rec.System), nullStr(rec.FailureType),
		nullStr(rec.MaintAction), nullStr(rec.Priority), string(rec.Status),
		fmtDatePtr(rec.StartDate), fmtDatePtr(rec.EndDate),
		nullFloat(rec.CostEstimate), nullStr(rec.CostRaw),
		nullStr(rec.SummaryNotes), nullStr(rec.AssignedTo),
		rec.Confidence, string(rec.Method),
		fmtTime(rec.CreatedAt), fmtTime(rec.UpdatedAt))
	if err != nil {
		return common.WrapError(err, "failed to insert record")
	}
	return nil
}

// insertAnomalyTx writes one anomaly inside an open transaction.
func insertAnomalyTx(ctx context.Context, tx *sql.Tx, db *DB, a *entity.Anomaly) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := tx.ExecContext(ctx, db.rebind(`
		INSERT INTO anomalies (id, record_id, document_id, anomaly_type,
			severity, description, field_name, field_value, suggested_fix,
			resolved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		a.ID.String(), a.RecordID.String(), a.DocumentID.String(),
		string(a.Type), string(a.Severity), a.Description,
		nullStr(a.FieldName), nullStr(a.FieldValue), nullStr(a.SuggestedFix),
		a.Resolved, fmtTime(a.CreatedAt))
	if err != nil {
		return common.WrapError(err, "failed to insert anomaly")
	}
	return nil
}

func scanRecord(row rowScanner) (*entity.Record, error) {
	var (
		rec                            entity.Record
		idStr, docStr, status, method  string
		createdStr, updatedStr         string
		component, system, failureType sql.NullString
		maintAction, priority, costRaw sql.NullString
		summaryNotes, assignedTo       sql.NullString
		startDate, endDate             sql.NullString
		cost                           sql.NullFloat64
	)
	if err := row.Scan(&idStr, &docStr, &component, &system, &failureType,
		&maintAction, &priority, &status, &startDate, &endDate, &cost,
		&costRaw, &summaryNotes, &assignedTo, &rec.Confidence, &method,
		&createdStr, &updatedStr); err != nil {
		return nil, err
	}

	var err error
	if rec.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse record id %q: %w", idStr, err)
	}
	if rec.DocumentID, err = uuid.Parse(docStr); err != nil {
		return nil, fmt.Errorf("parse document id %q: %w", docStr, err)
	}
	rec.Component = strPtr(component)
	rec.System = strPtr(system)
	rec.FailureType = strPtr(failureType)
	rec.MaintAction = strPtr(maintAction)
	rec.Priority = strPtr(priority)
	rec.Status = constants.RecordStatus(status)
	rec.CostEstimate = floatPtr(cost)
	rec.CostRaw = strPtr(costRaw)
	rec.SummaryNotes = strPtr(summaryNotes)
	rec.AssignedTo = strPtr(assignedTo)
	rec.Method = constants.ExtractionMethod(method)
	if rec.StartDate, err = parseDatePtr(startDate); err != nil {
		return nil, err
	}
	if rec.EndDate, err = parseDatePtr(endDate); err != nil {
		return nil, err
	}
	if rec.CreatedAt, err = parseTime(createdStr); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return nil, err
	}
	return &rec, nil
}

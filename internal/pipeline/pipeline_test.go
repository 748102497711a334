package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/anomaly"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/common"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/entity"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/extract"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/llm"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/repository"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/storage"
)

type fakeGenerator struct {
	response string
	err      error
}

func (f *fakeGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return f.response, f.err
}

func (f *fakeGenerator) IsAvailable(_ context.Context) bool { return f.err == nil }

type testEnv struct {
	db    *repository.DB
	docs  repository.DocumentRepository
	store *storage.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := repository.Open(context.Background(), common.DatabaseConfig{
		SQLitePath: filepath.Join(dir, "test.db"),
	}, nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(db.Close)

	store, err := storage.NewStore(filepath.Join(dir, "uploads"), nil)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return &testEnv{
		db:    db,
		docs:  repository.NewDocumentRepository(db, nil),
		store: store,
	}
}

func (e *testEnv) uploadText(t *testing.T, content string) *entity.Document {
	t.Helper()
	doc := &entity.Document{
		ID:       uuid.New(),
		Filename: "worklog.txt",
		FileType: constants.FileTypeText,
		FileSize: int64(len(content)),
	}
	if _, err := e.store.Save(doc.ID, doc.Extension(), []byte(content)); err != nil {
		t.Fatalf("save upload: %v", err)
	}
	if err := e.docs.Create(context.Background(), doc); err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

func newPipeline(env *testEnv, gen llm.Generator) *Pipeline {
	return New(env.docs, env.store,
		extract.NewExtractor(nil),
		llm.NewExtractor(gen, nil),
		anomaly.NewDetector(),
		nil)
}

const docText = "Component: Pump A-101\nAction: Replace mechanical seal\nPriority: High\nCost: $1,500.00"

func TestProcessDocumentModelPath(t *testing.T) {
	env := newTestEnv(t)
	doc := env.uploadText(t, docText)
	gen := &fakeGenerator{response: `[{"component": "Pump A-101", "maint_action": "Replace seal", "priority": "high", "cost_estimate": 1500}]`}

	ctx := context.Background()
	if err := newPipeline(env, gen).ProcessDocument(ctx, doc.ID); err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}

	got, err := env.docs.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ProcessingStatus != constants.StatusComplete || !got.Processed {
		t.Fatalf("document not complete: %+v", got)
	}
	if got.RawText == nil || !strings.Contains(*got.RawText, "Pump A-101") {
		t.Errorf("raw text = %v", got.RawText)
	}

	recs, err := repository.NewRecordRepository(env.db, nil).ListByDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records", len(recs))
	}
	rec := recs[0]
	if rec.Method != constants.MethodLLM {
		t.Errorf("method = %s, want llm", rec.Method)
	}
	if rec.Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85", rec.Confidence)
	}
	if rec.Component == nil || *rec.Component != "Pump A-101" {
		t.Errorf("component = %v", rec.Component)
	}
	if rec.CostEstimate == nil || *rec.CostEstimate != 1500 {
		t.Errorf("cost = %v", rec.CostEstimate)
	}
}

func TestProcessDocumentFallbackPath(t *testing.T) {
	env := newTestEnv(t)
	doc := env.uploadText(t, docText)
	gen := &fakeGenerator{err: errors.New("model offline")}

	ctx := context.Background()
	if err := newPipeline(env, gen).ProcessDocument(ctx, doc.ID); err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}

	recs, err := repository.NewRecordRepository(env.db, nil).ListByDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected fallback records")
	}
	for _, rec := range recs {
		if rec.Method != constants.MethodRegex {
			t.Errorf("method = %s, want regex", rec.Method)
		}
		if rec.Confidence != 0.60 {
			t.Errorf("confidence = %v, want 0.60", rec.Confidence)
		}
	}
}

func TestProcessDocumentAttachesAnomalies(t *testing.T) {
	env := newTestEnv(t)
	doc := env.uploadText(t, docText)
	// No component, extreme cost: the detector must flag both on the stored
	// record.
	gen := &fakeGenerator{response: `[{"maint_action": "Overhaul", "cost_estimate": 2000000}]`}

	ctx := context.Background()
	if err := newPipeline(env, gen).ProcessDocument(ctx, doc.ID); err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}

	recs, err := repository.NewRecordRepository(env.db, nil).ListByDocument(ctx, doc.ID)
	if err != nil || len(recs) != 1 {
		t.Fatalf("records: %v, %d", err, len(recs))
	}

	list, err := repository.NewAnomalyRepository(env.db, nil).ListByRecord(ctx, recs[0].ID)
	if err != nil {
		t.Fatalf("ListByRecord: %v", err)
	}
	var kinds []constants.AnomalyType
	for _, a := range list {
		kinds = append(kinds, a.Type)
		if a.DocumentID != doc.ID {
			t.Errorf("anomaly document_id = %s, want %s", a.DocumentID, doc.ID)
		}
	}
	if len(list) < 3 {
		t.Fatalf("anomaly kinds = %v, want missing component, missing priority, extreme cost", kinds)
	}
}

func TestProcessDocumentConcurrentClaimRejected(t *testing.T) {
	env := newTestEnv(t)
	doc := env.uploadText(t, docText)
	ctx := context.Background()

	claimed, err := env.docs.ClaimForProcessing(ctx, doc.ID)
	if err != nil || !claimed {
		t.Fatalf("setup claim: %v, %v", claimed, err)
	}

	err = newPipeline(env, &fakeGenerator{response: "[]"}).ProcessDocument(ctx, doc.ID)
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestProcessDocumentFailureSetsErrorStatus(t *testing.T) {
	env := newTestEnv(t)
	doc := &entity.Document{
		ID:       uuid.New(),
		Filename: "ghost.pdf",
		FileType: constants.FileTypePDF,
	}
	// Document row exists but no bytes were stored; extraction must fail.
	if err := env.docs.Create(context.Background(), doc); err != nil {
		t.Fatalf("create document: %v", err)
	}

	ctx := context.Background()
	err := newPipeline(env, &fakeGenerator{response: "[]"}).ProcessDocument(ctx, doc.ID)
	if err == nil {
		t.Fatal("expected extraction failure")
	}

	got, err := env.docs.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !strings.HasPrefix(string(got.ProcessingStatus), constants.ErrorPrefix) {
		t.Errorf("status = %q, want %q prefix", got.ProcessingStatus, constants.ErrorPrefix)
	}
	if len(got.ProcessingStatus) > len(constants.ErrorPrefix)+100 {
		t.Errorf("error status not truncated: %d bytes", len(got.ProcessingStatus))
	}
	if got.Processed {
		t.Error("failed document must not be marked processed")
	}
}

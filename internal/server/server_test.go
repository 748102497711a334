package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/anomaly"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/common"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/entity"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/extract"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/legacy"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/llm"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/reports"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/repository"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *repository.DB) {
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

	docs := repository.NewDocumentRepository(db, nil)
	records := repository.NewRecordRepository(db, nil)
	anomalies := repository.NewAnomalyRepository(db, nil)

	pipe := pipeline.New(docs, store,
		extract.NewExtractor(nil),
		llm.NewExtractor(nil, nil),
		anomaly.NewDetector(),
		nil)
	converter := legacy.NewConverter(docs, nil)
	reportSvc := reports.NewService(nil, docs, records, nil)

	return New(db, docs, records, anomalies, store, pipe, converter, reportSvc, nil), db
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := doRequest(t, srv.Router(), http.MethodGet, "/health", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
}

func TestAIHealthWithoutModel(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := doRequest(t, srv.Router(), http.MethodGet, "/ai/health", nil, "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
}

func TestUploadAndGetDocument(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	body, contentType := multipartBody(t, "worklog.txt", []byte("Component: Pump A-101"))
	rr := doRequest(t, router, http.MethodPost, "/upload", body, contentType)
	if rr.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rr.Code, rr.Body.String())
	}

	var doc entity.Document
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if doc.FileType != constants.FileTypeText {
		t.Errorf("file type = %s, want text", doc.FileType)
	}
	if doc.ProcessingStatus != constants.StatusUploaded {
		t.Errorf("status = %s, want uploaded", doc.ProcessingStatus)
	}

	rr = doRequest(t, router, http.MethodGet, "/documents/"+doc.ID.String(), nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}

	rr = doRequest(t, router, http.MethodGet, "/documents", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var list []entity.Document
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list length = %d, want 1", len(list))
	}
}

func TestUploadUnsupportedExtension(t *testing.T) {
	srv, _ := newTestServer(t)
	body, contentType := multipartBody(t, "photo.png", []byte{1, 2, 3})
	rr := doRequest(t, srv.Router(), http.MethodPost, "/upload", body, contentType)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestIngestAcceptsAndRuns(t *testing.T) {
	srv, db := newTestServer(t)
	router := srv.Router()

	body, contentType := multipartBody(t, "worklog.txt",
		[]byte("Component: Pump A-101\nAction: Replace seal"))
	rr := doRequest(t, router, http.MethodPost, "/upload", body, contentType)
	if rr.Code != http.StatusCreated {
		t.Fatalf("upload status = %d", rr.Code)
	}
	var doc entity.Document
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rr = doRequest(t, router, http.MethodPost, "/ingest/"+doc.ID.String(), nil, "")
	if rr.Code != http.StatusAccepted {
		t.Fatalf("ingest status = %d, body %s", rr.Code, rr.Body.String())
	}

	// The run happens in the background; poll the document status.
	docs := repository.NewDocumentRepository(db, nil)
	deadline := time.Now().Add(5 * time.Second)
	for {
		got, err := docs.GetByID(context.Background(), doc.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.ProcessingStatus == constants.StatusComplete {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("pipeline did not finish, status %s", got.ProcessingStatus)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestIngestUnknownDocument(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := doRequest(t, srv.Router(), http.MethodPost,
		"/ingest/00000000-0000-0000-0000-000000000001", nil, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestBadIDIsRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := doRequest(t, srv.Router(), http.MethodGet, "/documents/not-a-uuid", nil, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestSummaryWithoutModelIs503(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	body, contentType := multipartBody(t, "worklog.txt", []byte("text"))
	rr := doRequest(t, router, http.MethodPost, "/upload", body, contentType)
	var doc entity.Document
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rr = doRequest(t, router, http.MethodGet, "/documents/"+doc.ID.String()+"/summary", nil, "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
}

func TestUpdateStatusEndpoint(t *testing.T) {
	srv, db := newTestServer(t)
	router := srv.Router()

	// Seed a document with one record directly.
	docs := repository.NewDocumentRepository(db, nil)
	doc := &entity.Document{Filename: "a.txt", FileType: constants.FileTypeText}
	if err := docs.Create(context.Background(), doc); err != nil {
		t.Fatalf("create: %v", err)
	}
	comp := "Pump"
	rec := &entity.Record{DocumentID: doc.ID, Component: &comp, Method: constants.MethodRegex}
	if err := docs.SaveResults(context.Background(), doc.ID, "text",
		[]repository.ExtractionResult{{Record: rec}}); err != nil {
		t.Fatalf("SaveResults: %v", err)
	}

	payload := bytes.NewBufferString(`{"status": "in-progress", "assigned_to": "pat"}`)
	rr := doRequest(t, router, http.MethodPost, "/records/"+rec.ID.String()+"/status", payload, "application/json")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	payload = bytes.NewBufferString(`{"status": "paused"}`)
	rr = doRequest(t, router, http.MethodPost, "/records/"+rec.ID.String()+"/status", payload, "application/json")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid status = %d, want 400", rr.Code)
	}
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/common"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/entity"
)

// maxUploadBytes bounds a single document upload.
const maxUploadBytes = 50 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Health(r.Context(), 0); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAIHealth(w http.ResponseWriter, r *http.Request) {
	available := s.reports.ModelAvailable(r.Context())
	status := http.StatusOK
	if !available {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, map[string]bool{"ai_available": available})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, common.NewAppError("BAD_UPLOAD", "multipart field 'file' is required", common.ErrInvalidInput))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, common.WrapError(err, "failed to read upload"))
		return
	}

	fileType := constants.DetectFileType(header.Filename)
	if fileType == "" {
		s.respondError(w, common.NewAppError("UNSUPPORTED_TYPE",
			"unsupported file extension on "+header.Filename, common.ErrInvalidInput))
		return
	}

	doc := &entity.Document{
		ID:       uuid.New(),
		Filename: header.Filename,
		FileType: fileType,
		FileSize: int64(len(data)),
	}
	if _, err := s.store.Save(doc.ID, doc.Extension(), data); err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.docs.Create(r.Context(), doc); err != nil {
		s.respondError(w, err)
		return
	}

	s.log.Info("http.upload.ok", "document_id", doc.ID, "filename", doc.Filename, "bytes", len(data))
	respondJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if _, err := s.docs.GetByID(r.Context(), id); err != nil {
		s.respondError(w, err)
		return
	}

	// The run outlives this request; its outcome lands in the document
	// status.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()
		if err := s.pipe.ProcessDocument(ctx, id); err != nil && !errors.Is(err, common.ErrConflict) {
			s.log.Error("http.ingest.run_failed", "document_id", id, "error", err)
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{
		"document_id": id.String(),
		"status":      string(constants.StatusProcessing),
	})
}

func (s *Server) handleLegacyConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, common.NewAppError("BAD_UPLOAD", "multipart field 'file' is required", common.ErrInvalidInput))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, common.WrapError(err, "failed to read upload"))
		return
	}

	result, err := s.converter.Convert(r.Context(), data, header.Filename)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docs.List(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	if docs == nil {
		docs = []*entity.Document{}
	}
	respondJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	doc, err := s.docs.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	recs, err := s.records.ListByDocument(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if recs == nil {
		recs = []*entity.Record{}
	}
	respondJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	rec, err := s.records.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListDocumentAnomalies(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	list, err := s.anomalies.ListByDocument(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if list == nil {
		list = []*entity.Anomaly{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleListRecordAnomalies(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	list, err := s.anomalies.ListByRecord(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if list == nil {
		list = []*entity.Anomaly{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleStatusHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	history, err := s.records.ListStatusHistory(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if history == nil {
		history = []*entity.StatusUpdate{}
	}
	respondJSON(w, http.StatusOK, history)
}

type statusUpdateRequest struct {
	Status     string  `json:"status"`
	AssignedTo *string `json:"assigned_to,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	UpdatedBy  *string `json:"updated_by,omitempty"`
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, common.NewAppError("BAD_BODY", "invalid JSON body", common.ErrInvalidInput))
		return
	}

	upd, err := s.records.UpdateStatus(r.Context(), id, req.Status, req.AssignedTo, req.Notes, req.UpdatedBy)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, upd)
}

func (s *Server) handleResolveAnomaly(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.anomalies.Resolve(r.Context(), id); err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"anomaly_id": id.String(), "resolved": "true"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	summary, err := s.reports.Summarize(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"document_id": id.String(), "summary": summary})
}

func (s *Server) handleCAP(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	plan, err := s.reports.GenerateCAP(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"document_id": id.String(), "report": plan})
}

// pathID parses the {id} route parameter as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, common.NewAppError("BAD_ID", "invalid id "+raw, common.ErrInvalidInput)
	}
	return id, nil
}

package server

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roomcheck/roomcheck/internal/fault"
	"github.com/roomcheck/roomcheck/internal/httputil"
	"github.com/roomcheck/roomcheck/internal/inspection"
	"github.com/roomcheck/roomcheck/internal/pipeline"
	"github.com/roomcheck/roomcheck/internal/queue"
	"github.com/roomcheck/roomcheck/internal/store"
	"github.com/roomcheck/roomcheck/internal/validate"
)

type analysisResponse struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message"`
	Analysis *inspection.Analysis `json:"analysis,omitempty"`
	Filename string               `json:"filename,omitempty"`
}

// multipartOverhead leaves room for form fields and boundaries on top of the
// video payload itself.
const multipartOverhead = 1 << 20

func (s *Server) readUpload(r *http.Request, field string) ([]byte, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(s.maxBytes + multipartOverhead); err != nil {
		return nil, nil, fault.Validationf("invalid multipart request: %v", err)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, fault.Validationf("no video file provided")
	}
	defer file.Close()

	if msg := validate.UploadSize(header.Size); msg != "" {
		return nil, nil, fault.Validationf("%s", msg)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, fault.Validationf("failed to read upload: %v", err)
	}
	return data, header, nil
}

func contentTypeFor(header *multipart.FileHeader) string {
	return header.Header.Get("Content-Type")
}

func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes+multipartOverhead)

	data, header, err := s.readUpload(r, "video")
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}

	analysis, err := s.processor.Process(r.Context(), pipeline.Request{
		Filename:    header.Filename,
		ContentType: contentTypeFor(header),
		Data:        data,
		SkipFiles:   r.FormValue("skip_files") == "true",
	})
	if err != nil {
		if fault.IsKind(err, fault.KindConflict) {
			httputil.WriteJSON(w, http.StatusConflict, analysisResponse{
				Success:  false,
				Message:  err.Error(),
				Filename: header.Filename,
			})
			return
		}
		httputil.WriteFault(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, analysisResponse{
		Success:  true,
		Message:  "Video uploaded and analyzed successfully",
		Analysis: analysis,
		Filename: header.Filename,
	})
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses, err := s.store.LoadAnalyses(r.Context())
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load analyses")
		return
	}
	analyses = store.AttachManual(analyses, s.manual)
	httputil.WriteJSON(w, http.StatusOK, analyses)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	base := chi.URLParam(r, "base")
	if base == "" || base != pipeline.BaseName(base) {
		httputil.WriteError(w, http.StatusBadRequest, "invalid analysis name")
		return
	}
	if err := s.store.Remove(r.Context(), base); err != nil {
		httputil.WriteFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxBytes + multipartOverhead); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["videos"]) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, "no video files provided")
		return
	}

	skipFiles := r.FormValue("skip_files") == "true"
	headers := r.MultipartForm.File["videos"]
	items := make([]queue.Item, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "failed to read upload "+header.Filename)
			return
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "failed to read upload "+header.Filename)
			return
		}
		items = append(items, queue.Item{
			Name:        header.Filename,
			ContentType: contentTypeFor(header),
			Data:        data,
			SkipFiles:   skipFiles,
		})
	}

	id, err := s.queue.Enqueue(items)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, ok := s.queue.Get(id)
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "batch not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes+multipartOverhead)

	data, header, err := s.readUpload(r, "video")
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}

	var items []inspection.ChecklistItem
	if err := json.Unmarshal([]byte(r.FormValue("checklist")), &items); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "checklist must be a JSON array of items")
		return
	}
	for _, item := range items {
		if msg := validate.ChecklistTitle(item.Title); msg != "" {
			httputil.WriteError(w, http.StatusBadRequest, msg)
			return
		}
		if msg := validate.ChecklistDescription(item.Description); msg != "" {
			httputil.WriteError(w, http.StatusBadRequest, msg)
			return
		}
	}
	if len(items) > validate.MaxChecklistItems {
		httputil.WriteError(w, http.StatusBadRequest, "too many checklist items")
		return
	}

	result, err := s.verifier.VerifyChecklist(r.Context(), data, contentTypeFor(header), items)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

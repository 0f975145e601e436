package invoice

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/facture-ocr/internal/compliance"
	"github.com/zombor/facture-ocr/internal/scanning"
)

// maxUploadSize handles high-resolution phone photos
const maxUploadSize = int64(50 << 20)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnsupportedType),
		errors.Is(err, ErrEmptyText),
		errors.Is(err, compliance.ErrInvalidRecord):
		return http.StatusBadRequest
	case errors.Is(err, ErrScanFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError hides internal failures behind a generic message
func writeServiceError(w http.ResponseWriter, err error, internalMessage string) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		writeError(w, code, internalMessage)
		return
	}
	writeError(w, code, err.Error())
}

// contentTypeFor falls back to the file extension when the part has no type
func contentTypeFor(filename, declared string) string {
	if ct := strings.ToLower(strings.TrimSpace(declared)); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return "application/octet-stream"
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "healthy",
		"api_version": APIVersion,
	})
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"languages": scanning.Languages(),
	})
}

// handleListInvoices returns all analyses
func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	analyses, err := s.service.List()
	if err != nil {
		slog.Error("Error listing analyses", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, analyses)
}

// handleUploadInvoice analyzes a multipart upload with a "file" part and an
// optional "language" field
func (s *Server) handleUploadInvoice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		msg := "Error parsing form"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = "File is too large. Maximum size is 50MB."
		}
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Error reading file")
		return
	}

	contentType := contentTypeFor(header.Filename, header.Header.Get("Content-Type"))
	s.analyzeUpload(w, r, header.Filename, data, contentType, r.FormValue("language"))
}

// handleUploadBase64 analyzes an image sent as base64 in the "image_base64"
// form field, with or without a data URL prefix
func (s *Server) handleUploadBase64(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize*4/3+1024)
	encoded := r.FormValue("image_base64")
	if encoded == "" {
		writeError(w, http.StatusBadRequest, "image_base64 is required")
		return
	}

	declared := ""
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.Index(encoded, ","); i >= 0 {
			declared = strings.TrimSuffix(strings.TrimPrefix(encoded[:i], "data:"), ";base64")
			encoded = encoded[i+1:]
		}
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid base64 image")
		return
	}

	contentType := declared
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	s.analyzeUpload(w, r, "upload", data, contentType, r.FormValue("language"))
}

func (s *Server) analyzeUpload(w http.ResponseWriter, r *http.Request, filename string, data []byte, contentType, language string) {
	a, err := s.service.Analyze(r.Context(), filename, data, contentType, language)
	if err != nil {
		slog.Error("Error analyzing invoice", "filename", filename, "error", err)
		writeServiceError(w, err, "Error analyzing invoice")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// handleAnalyzeText analyzes already recognised text
func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	a, err := s.service.AnalyzeText(r.Context(), req.Text, req.Language)
	if err != nil {
		slog.Error("Error analyzing text", "error", err)
		writeServiceError(w, err, "Error analyzing text")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// handleCheckCompliance checks an externally produced invoice record
func (s *Server) handleCheckCompliance(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Error reading request body")
		return
	}

	report, err := s.service.CheckRecord(r.Context(), body)
	if err != nil {
		writeServiceError(w, err, "Error checking compliance")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleGetInvoice returns a single analysis
func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	a, err := s.service.Get(r.PathValue("id"))
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "Analysis not found")
			return
		}
		slog.Error("Error getting analysis", "error", err)
		writeError(w, http.StatusInternalServerError, "Error getting analysis")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleGetInvoiceFile returns the original document of an analysis
func (s *Server) handleGetInvoiceFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetFile(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteInvoice deletes an analysis
func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Delete(r.PathValue("id")); err != nil {
		code := statusFor(err)
		if code != http.StatusNotFound {
			slog.Error("Error deleting analysis", "error", err)
			code = http.StatusInternalServerError
		}
		writeError(w, code, "Error deleting analysis")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/MeKo-Tech/poblur/internal/pdf"
)

// redactPdfHandler redacts the embedded images of an uploaded PDF.
func (s *Server) redactPdfHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tempName, pageRange, creds, err := s.parsePdfRequest(w, r)
	if err != nil {
		redactRequestsTotal.WithLabelValues("pdf", "error").Inc()
		return // error already written
	}
	defer func() { _ = os.Remove(tempName) }()

	if s.documents == nil {
		s.writeErrorResponse(w, "PDF processing not initialized", http.StatusServiceUnavailable)
		redactRequestsTotal.WithLabelValues("pdf", "error").Inc()
		return
	}

	start := time.Now()
	res, err := s.documents.ProcessPDF(r.Context(), tempName, pageRange, creds)
	duration := time.Since(start)

	if err != nil {
		redactRequestsTotal.WithLabelValues("pdf", "error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("PDF redaction failed: %v", err), http.StatusInternalServerError)
		return
	}

	redactRequestsTotal.WithLabelValues("pdf", "success").Inc()
	redactProcessingDuration.WithLabelValues("pdf").Observe(duration.Seconds())

	s.writePdfResponse(w, r, res)
}

// parsePdfRequest validates the upload and stores it in a temporary file.
// The caller removes the file. Errors are written to the response before
// returning.
func (s *Server) parsePdfRequest(w http.ResponseWriter, r *http.Request) (string, string, *pdf.Credentials, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024)
	if err != nil {
		s.handleFormParseError(w, err)
		return "", "", nil, err
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		s.writeErrorResponse(w, "No PDF file provided", http.StatusBadRequest)
		return "", "", nil, err
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.maxUploadMB*1024*1024 {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return "", "", nil, fmt.Errorf("file too large: %d bytes", header.Size)
	}

	uploadSizeBytes.Observe(float64(header.Size))

	tempName, err := saveUploadedPDF(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to store uploaded PDF", http.StatusInternalServerError)
		return "", "", nil, err
	}

	pageRange := r.FormValue("pages")

	var creds *pdf.Credentials
	userPW := r.FormValue("user-password")
	ownerPW := r.FormValue("owner-password")
	if userPW != "" || ownerPW != "" {
		creds = &pdf.Credentials{UserPassword: userPW, OwnerPassword: ownerPW}
	}

	return tempName, pageRange, creds, nil
}

// saveUploadedPDF writes the upload to a temporary file for pdfcpu, which
// works on paths rather than readers.
func saveUploadedPDF(file multipart.File) (string, error) {
	tempFile, err := os.CreateTemp("", "poblur-upload-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(tempFile, file)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to write uploaded PDF: %w", err)
	}
	return tempFile.Name(), nil
}

func (s *Server) handleFormParseError(w http.ResponseWriter, err error) {
	// Distinguish body-too-large from generic parse error.
	if strings.Contains(strings.ToLower(err.Error()), "body too large") ||
		strings.Contains(strings.ToLower(err.Error()), "request body too large") {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
	} else {
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
	}
}

func (s *Server) writePdfResponse(w http.ResponseWriter, r *http.Request, res *pdf.DocumentResult) {
	format := r.FormValue("format")
	if format == "" {
		format = r.URL.Query().Get("format")
	}

	if format == formatText {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := w.Write([]byte(res.Summary())); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing response: %v\n", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	obj := struct {
		Redaction *pdf.DocumentResult `json:"redaction"`
	}{Redaction: res}
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding PDF redaction response: %v\n", err)
	}
}

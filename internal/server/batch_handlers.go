package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"os"
	"strings"
	"time"
)

// maxBatchItems bounds how many files one batch request may carry.
const maxBatchItems = 10

// BatchRedactRequest represents a batch redaction request.
type BatchRedactRequest struct {
	Images []BatchImageRequest `json:"images,omitempty"`
	PDFs   []BatchPDFRequest   `json:"pdfs,omitempty"`
}

// BatchImageRequest represents a single image in a batch request.
type BatchImageRequest struct {
	Name    string                 `json:"name"`
	Data    []byte                 `json:"data"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// BatchPDFRequest represents a single PDF in a batch request.
type BatchPDFRequest struct {
	Name  string `json:"name"`
	Data  []byte `json:"data"`
	Pages string `json:"pages,omitempty"`
}

// BatchRedactResponse represents the response for batch processing.
type BatchRedactResponse struct {
	Success bool              `json:"success"`
	Results []BatchItemResult `json:"results,omitempty"`
	Error   string            `json:"error,omitempty"`
	Summary BatchSummary      `json:"summary"`
}

// BatchItemResult represents a single result in batch processing.
type BatchItemResult struct {
	Type     string      `json:"type"` // "image" or "pdf"
	Name     string      `json:"name"`
	Success  bool        `json:"success"`
	Result   interface{} `json:"result,omitempty"`
	Error    string      `json:"error,omitempty"`
	Duration float64     `json:"duration_seconds"`
}

// BatchSummary provides summary statistics for batch processing.
type BatchSummary struct {
	TotalItems    int     `json:"total_items"`
	Successful    int     `json:"successful"`
	Failed        int     `json:"failed"`
	TotalDuration float64 `json:"total_duration_seconds"`
	AvgItemTime   float64 `json:"avg_item_time_seconds"`
}

// redactBatchHandler processes several uploads in one JSON request.
func (s *Server) redactBatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BatchRedactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Failed to parse JSON request: %v", err), http.StatusBadRequest)
		return
	}

	if len(req.Images) == 0 && len(req.PDFs) == 0 {
		s.writeErrorResponse(w, "No images or PDFs provided in batch request", http.StatusBadRequest)
		return
	}

	totalItems := len(req.Images) + len(req.PDFs)
	if totalItems > maxBatchItems {
		s.writeErrorResponse(w,
			fmt.Sprintf("Batch size too large (maximum %d items)", maxBatchItems), http.StatusBadRequest)
		return
	}

	if s.redactor == nil {
		s.writeErrorResponse(w, "Redactor not initialized", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	results, summary := s.processBatchRequest(r, req)
	totalDuration := time.Since(start)

	summary.TotalDuration = totalDuration.Seconds()
	if summary.TotalItems > 0 {
		summary.AvgItemTime = summary.TotalDuration / float64(summary.TotalItems)
	}

	redactRequestsTotal.WithLabelValues("batch", "success").Inc()
	redactProcessingDuration.WithLabelValues("batch").Observe(totalDuration.Seconds())

	response := BatchRedactResponse{
		Success: summary.Failed == 0,
		Results: results,
		Summary: summary,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding batch redaction response: %v\n", err)
	}
}

// processBatchRequest processes all items in a batch request.
func (s *Server) processBatchRequest(r *http.Request, req BatchRedactRequest) ([]BatchItemResult, BatchSummary) {
	results := make([]BatchItemResult, 0, len(req.Images)+len(req.PDFs))
	summary := BatchSummary{
		TotalItems: len(req.Images) + len(req.PDFs),
	}

	for _, imgReq := range req.Images {
		result := s.processBatchImage(r, imgReq)
		results = append(results, result)
		if result.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}

	for _, pdfReq := range req.PDFs {
		result := s.processBatchPDF(r, pdfReq)
		results = append(results, result)
		if result.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}

	return results, summary
}

// processBatchImage redacts a single image in a batch request.
func (s *Server) processBatchImage(r *http.Request, req BatchImageRequest) BatchItemResult {
	result := BatchItemResult{
		Type: "image",
		Name: req.Name,
	}

	if len(req.Data) == 0 {
		result.Error = "No image data provided"
		return result
	}

	img, _, err := image.Decode(bytes.NewReader(req.Data))
	if err != nil {
		result.Error = fmt.Sprintf("Failed to decode image: %v", err)
		return result
	}

	redactor, err := s.redactorForRequest(optionsFromMap(req.Options))
	if err != nil {
		result.Error = fmt.Sprintf("Failed to configure redactor: %v", err)
		return result
	}

	start := time.Now()
	_, res, err := redactor.ProcessImageContext(r.Context(), img)
	duration := time.Since(start)

	result.Duration = duration.Seconds()

	if err != nil {
		result.Error = fmt.Sprintf("Redaction failed: %v", err)
		return result
	}

	result.Success = true
	result.Result = res
	recordRedactionMetrics("batch_image", duration, res)
	return result
}

// processBatchPDF redacts a single PDF in a batch request.
func (s *Server) processBatchPDF(r *http.Request, req BatchPDFRequest) BatchItemResult {
	result := BatchItemResult{
		Type: "pdf",
		Name: req.Name,
	}

	if len(req.Data) == 0 {
		result.Error = "No PDF data provided"
		return result
	}

	tempFile, err := os.CreateTemp("", "poblur-batch-*.pdf")
	if err != nil {
		result.Error = fmt.Sprintf("Failed to create temporary file: %v", err)
		return result
	}
	defer func() {
		_ = tempFile.Close()
		_ = os.Remove(tempFile.Name())
	}()

	if _, err := tempFile.Write(req.Data); err != nil {
		result.Error = fmt.Sprintf("Failed to write PDF data: %v", err)
		return result
	}

	if s.documents == nil {
		result.Error = "PDF processing not initialized"
		return result
	}

	start := time.Now()
	res, err := s.documents.ProcessPDF(r.Context(), tempFile.Name(), req.Pages, nil)
	duration := time.Since(start)

	result.Duration = duration.Seconds()

	if err != nil {
		result.Error = fmt.Sprintf("PDF redaction failed: %v", err)
		return result
	}

	result.Success = true
	result.Result = res
	redactRequestsTotal.WithLabelValues("batch_pdf", "success").Inc()
	redactProcessingDuration.WithLabelValues("batch_pdf").Observe(duration.Seconds())
	return result
}

// optionsFromMap reads redaction overrides from a decoded JSON options map.
// Batch items and WebSocket requests both carry options this way.
func optionsFromMap(options map[string]interface{}) *RequestOptions {
	opts := &RequestOptions{}

	if options == nil {
		return opts
	}

	// JSON numbers decode as float64.
	if val, ok := options["strength"].(float64); ok {
		opts.Strength = int(val)
	}

	if val, ok := options["detect"].(bool); ok {
		opts.AutoDetect = &val
	}

	switch val := options["areas"].(type) {
	case string:
		for _, label := range strings.Split(val, ",") {
			if label = strings.TrimSpace(label); label != "" {
				opts.Areas = append(opts.Areas, label)
			}
		}
	case []interface{}:
		for _, label := range val {
			if labelStr, ok := label.(string); ok {
				opts.Areas = append(opts.Areas, strings.TrimSpace(labelStr))
			}
		}
	}

	return opts
}

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const (
	formatText    = "text"
	formatPNG     = "png"
	formatOverlay = "overlay"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: s.version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding health response: %v\n", err)
	}
}

// layoutsHandler returns the layout catalog the server redacts with.
func (s *Server) layoutsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.redactor == nil {
		s.writeErrorResponse(w, "Redactor not initialized", http.StatusServiceUnavailable)
		return
	}

	catalog := s.redactor.Catalog()
	areas := make([]AreaInfo, len(catalog.Areas))
	for i, area := range catalog.Areas {
		areas[i] = AreaInfo{
			Label:  area.Label,
			X:      area.X,
			Y:      area.Y,
			Width:  area.Width,
			Height: area.Height,
		}
	}

	response := LayoutsResponse{
		Name:  catalog.Name,
		Areas: areas,
		Count: len(areas),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding layouts response: %v\n", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := RedactResponse{
		Success: false,
		Error:   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing error response: %v\n", err)
	}
}

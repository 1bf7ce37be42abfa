package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"

	"github.com/MeKo-Tech/poblur/internal/redact"
)

// redactImageHandler blurs an uploaded image and returns the result.
func (s *Server) redactImageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	img, opts, err := s.parseImageRequest(w, r)
	if err != nil {
		redactRequestsTotal.WithLabelValues("image", "error").Inc()
		return // error already written
	}

	redactor, err := s.redactorForRequest(opts)
	if err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Failed to configure redactor: %v", err), http.StatusBadRequest)
		redactRequestsTotal.WithLabelValues("image", "error").Inc()
		return
	}

	start := time.Now()
	blurred, res, err := redactor.ProcessImageContext(r.Context(), img)
	duration := time.Since(start)

	if err != nil {
		redactRequestsTotal.WithLabelValues("image", "error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("Redaction failed: %v", err), http.StatusInternalServerError)
		return
	}

	recordRedactionMetrics("image", duration, res)
	s.writeImageResponse(w, r, blurred, res)
}

// parseImageRequest validates the multipart upload and decodes the image.
// Errors are written to the response before returning.
func (s *Server) parseImageRequest(w http.ResponseWriter, r *http.Request) (image.Image, *RequestOptions, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024)
	if err != nil {
		s.handleFormParseError(w, err)
		return nil, nil, err
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return nil, nil, err
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.maxUploadMB*1024*1024 {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return nil, nil, fmt.Errorf("file too large: %d bytes", header.Size)
	}

	uploadSizeBytes.Observe(float64(header.Size))

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return nil, nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return nil, nil, err
	}

	opts, err := parseRequestOptions(r)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return nil, nil, err
	}

	return img, opts, nil
}

// parseRequestOptions reads the per-request override form fields.
func parseRequestOptions(r *http.Request) (*RequestOptions, error) {
	opts := &RequestOptions{}

	if v := r.FormValue("strength"); v != "" {
		strength, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid strength %q", v)
		}
		opts.Strength = strength
	}

	if v := r.FormValue("areas"); v != "" {
		for _, label := range strings.Split(v, ",") {
			if label = strings.TrimSpace(label); label != "" {
				opts.Areas = append(opts.Areas, label)
			}
		}
	}

	if v := r.FormValue("detect"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid detect value %q", v)
		}
		opts.AutoDetect = &enabled
	}

	return opts, nil
}

// writeImageResponse renders the result in the requested output format.
func (s *Server) writeImageResponse(
	w http.ResponseWriter,
	r *http.Request,
	blurred image.Image,
	res *redact.Result,
) {
	// Default json; allow 'format' in query or form.
	format := r.FormValue("format")
	if format == "" {
		format = r.URL.Query().Get("format")
	}

	switch format {
	case formatText:
		s.writeTextResponse(w, res)
	case formatPNG:
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, blurred)
	case formatOverlay:
		s.handleOverlayOutput(w, r, blurred, res)
	default:
		if r.FormValue("overlay") == "1" {
			s.handleOverlayOutput(w, r, blurred, res)
		} else {
			s.writeJSONResponse(w, res)
		}
	}
}

func (s *Server) writeTextResponse(w http.ResponseWriter, res *redact.Result) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	text, err := redact.ToText(res)
	if err != nil {
		http.Error(w, fmt.Sprintf("formatting failed: %v", err), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(text))
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, res *redact.Result) {
	w.Header().Set("Content-Type", "application/json")
	obj := struct {
		Redaction *redact.Result `json:"redaction"`
	}{Redaction: res}
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding redaction response: %v\n", err)
	}
}

// handleOverlayOutput responds with the blurred image plus region outlines.
func (s *Server) handleOverlayOutput(
	w http.ResponseWriter,
	r *http.Request,
	blurred image.Image,
	res *redact.Result,
) {
	if !s.overlayEnabled {
		http.Error(w, "overlay output disabled", http.StatusForbidden)
		return
	}

	// A single outline color can override the per-source palette.
	var palette map[redact.RegionSource]color.Color
	if col := parseHexColor(r.FormValue("outline")); col != nil {
		palette = map[redact.RegionSource]color.Color{
			redact.SourceLayout:   col,
			redact.SourceDetected: col,
			redact.SourceFallback: col,
			redact.SourceExplicit: col,
		}
	}

	ov := redact.RenderOverlay(blurred, res.Regions, palette)
	if ov == nil {
		http.Error(w, "overlay failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_ = png.Encode(w, ov)
}

// parseHexColor parses colors like "#RRGGBB" or "RRGGBB".
func parseHexColor(s string) color.Color {
	if s == "" {
		return nil
	}
	if s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return nil
	}
	var rv, gv, bv int
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &rv, &gv, &bv); err != nil {
		return nil
	}
	return color.RGBA{uint8(rv), uint8(gv), uint8(bv), 255} //nolint:gosec // G115: parsed as two hex digits
}

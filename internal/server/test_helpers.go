package server

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/MeKo-Tech/poblur/internal/layout"
	"github.com/MeKo-Tech/poblur/internal/pdf"
	"github.com/MeKo-Tech/poblur/internal/redact"
	"github.com/MeKo-Tech/poblur/internal/utils"
)

// mockRedactor is a configurable redactorInterface implementation for testing.
// A nil img echoes the input, a nil result produces a plausible one.
type mockRedactor struct {
	img     *image.NRGBA
	result  *redact.Result
	err     error
	catalog layout.Catalog
}

func (m *mockRedactor) ProcessImageContext(_ context.Context, img image.Image) (*image.NRGBA, *redact.Result, error) {
	if m.err != nil {
		return nil, nil, m.err
	}

	out := m.img
	if out == nil {
		b := img.Bounds()
		out = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	}

	res := m.result
	if res == nil {
		res = mockResultFor(img)
	}
	return out, res, nil
}

func (m *mockRedactor) Catalog() layout.Catalog {
	return m.catalog
}

// mockResultFor builds a plausible redaction result for an image.
func mockResultFor(img image.Image) *redact.Result {
	bounds := img.Bounds()
	res := &redact.Result{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Strength: 15,
		Regions: []redact.RegionResult{
			{
				Region: utils.Region{X: 10, Y: 10, Width: 90, Height: 20, Label: "header"},
				Source: redact.SourceLayout,
			},
		},
	}
	res.Processing.SelectNs = 1000000 // 1ms
	res.Processing.BlurNs = 2000000   // 2ms
	res.Processing.TotalNs = 3000000  // 3ms
	return res
}

// mockDocumentProcessor is a configurable documentProcessor implementation
// that records the arguments of the last call.
type mockDocumentProcessor struct {
	result *pdf.DocumentResult
	err    error

	lastFilename  string
	lastPageRange string
	lastCreds     *pdf.Credentials
}

func (m *mockDocumentProcessor) ProcessPDF(_ context.Context, filename, pageRange string,
	creds *pdf.Credentials,
) (*pdf.DocumentResult, error) {
	m.lastFilename = filename
	m.lastPageRange = pageRange
	m.lastCreds = creds

	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &pdf.DocumentResult{
		Filename:   filename,
		OutputDir:  "out",
		TotalPages: 1,
		Pages: []pdf.PageResult{
			{
				PageNumber: 1,
				Images: []pdf.ImageResult{
					{ImageIndex: 1, Width: 612, Height: 792, OutputPath: "out/page_1_image_1.png"},
				},
			},
		},
	}, nil
}

// newMockServer assembles a server wired to mocks, bypassing NewServer.
func newMockServer() *Server {
	return &Server{
		redactor:       &mockRedactor{catalog: layout.Default()},
		documents:      &mockDocumentProcessor{},
		corsOrigin:     "*",
		maxUploadMB:    50,
		timeoutSec:     30,
		overlayEnabled: true,
		version:        "test",
	}
}

// createTestImage creates a simple gradient image for testing.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			r := byte(x % 256)
			g := byte(y % 256)
			img.Set(x, y, color.RGBA{r, g, 0, 255})
		}
	}
	return img
}

// encodeImageToPNG encodes an image to PNG bytes.
func encodeImageToPNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	return buf.Bytes(), err
}

// createMultipartFormRequest creates a multipart form request with an image.
func createMultipartFormRequest(
	imageData []byte,
	filename string,
	extraFields map[string]string,
) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	_, err = part.Write(imageData)
	if err != nil {
		return nil, err
	}

	for key, value := range extraFields {
		err = writer.WriteField(key, value)
		if err != nil {
			return nil, err
		}
	}

	err = writer.Close()
	if err != nil {
		return nil, err
	}

	req := httptest.NewRequest(http.MethodPost, "/redact/image", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return req, nil
}

// createMultipartPDFFormRequest creates a multipart form request with a PDF file.
func createMultipartPDFFormRequest(
	pdfData []byte,
	filename string,
	extraFields map[string]string,
) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("pdf", filename)
	if err != nil {
		return nil, err
	}
	_, err = part.Write(pdfData)
	if err != nil {
		return nil, err
	}

	for key, value := range extraFields {
		err = writer.WriteField(key, value)
		if err != nil {
			return nil, err
		}
	}

	err = writer.Close()
	if err != nil {
		return nil, err
	}

	req := httptest.NewRequest(http.MethodPost, "/redact/pdf", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return req, nil
}

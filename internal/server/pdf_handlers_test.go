package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/poblur/internal/pdf"
)

func TestServer_RedactPdfHandler_MethodValidation(t *testing.T) {
	server := &Server{
		maxUploadMB: 10,
	}

	tests := []struct {
		name           string
		method         string
		expectedStatus int
	}{
		{
			name:           "GET request not allowed",
			method:         "GET",
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "PUT request not allowed",
			method:         "PUT",
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "DELETE request not allowed",
			method:         "DELETE",
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/redact/pdf", nil)
			w := httptest.NewRecorder()

			server.redactPdfHandler(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestServer_RedactPdfHandler_FormParsing(t *testing.T) {
	server := newMockServer()
	server.maxUploadMB = 1 // 1MB limit for testing

	t.Run("missing pdf file", func(t *testing.T) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/redact/pdf", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()

		server.redactPdfHandler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response RedactResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)

		assert.False(t, response.Success)
		assert.Contains(t, response.Error, "No PDF file provided")
	})

	t.Run("invalid multipart form", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/redact/pdf", strings.NewReader("invalid form data"))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=invalid")
		w := httptest.NewRecorder()

		server.redactPdfHandler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("file too large", func(t *testing.T) {
		largeData := make([]byte, int(server.maxUploadMB*1024*1024)+1000)
		for i := range largeData {
			largeData[i] = byte(i % 256)
		}

		req, err := createMultipartPDFFormRequest(largeData, "large.pdf", nil)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		server.redactPdfHandler(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestServer_RedactPdfHandler_Success(t *testing.T) {
	mock := &mockDocumentProcessor{}
	server := newMockServer()
	server.documents = mock

	req, err := createMultipartPDFFormRequest([]byte("mock pdf content"), "test.pdf",
		map[string]string{"pages": "1-2"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	server.redactPdfHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "1-2", mock.lastPageRange)
	assert.Nil(t, mock.lastCreds)

	// The handler stores the upload in a scratch file and removes it after.
	assert.NotEmpty(t, mock.lastFilename)
	assert.NoFileExists(t, mock.lastFilename)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	redaction, ok := response["redaction"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), redaction["total_pages"])
	assert.Equal(t, "out", redaction["output_dir"])
}

func TestServer_RedactPdfHandler_Credentials(t *testing.T) {
	mock := &mockDocumentProcessor{}
	server := newMockServer()
	server.documents = mock

	req, err := createMultipartPDFFormRequest([]byte("mock pdf content"), "locked.pdf",
		map[string]string{"user-password": "secret", "owner-password": "admin"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	server.redactPdfHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.lastCreds)
	assert.Equal(t, "secret", mock.lastCreds.UserPassword)
	assert.Equal(t, "admin", mock.lastCreds.OwnerPassword)
}

func TestServer_RedactPdfHandler_TextFormat(t *testing.T) {
	result := &pdf.DocumentResult{
		Filename:   "test.pdf",
		OutputDir:  "test_blurred",
		TotalPages: 1,
		Pages: []pdf.PageResult{
			{
				PageNumber: 1,
				Images: []pdf.ImageResult{
					{ImageIndex: 1, Width: 612, Height: 792, OutputPath: "test_blurred/page_1_image_1.png"},
				},
			},
		},
	}

	server := newMockServer()
	server.documents = &mockDocumentProcessor{result: result}

	req, err := createMultipartPDFFormRequest([]byte("mock pdf content"), "test.pdf",
		map[string]string{"format": "text"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	server.redactPdfHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "test.pdf: 1 page(s), 1 image(s) redacted into test_blurred")
	assert.Contains(t, w.Body.String(), "page_1_image_1.png")
}

func TestServer_RedactPdfHandler_ProcessorError(t *testing.T) {
	server := newMockServer()
	server.documents = &mockDocumentProcessor{err: errors.New("extraction failed")}

	req, err := createMultipartPDFFormRequest([]byte("mock pdf content"), "test.pdf", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	server.redactPdfHandler(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response RedactResponse
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.False(t, response.Success)
	assert.Contains(t, response.Error, "PDF redaction failed")
}

func TestServer_RedactPdfHandler_NoProcessor(t *testing.T) {
	server := &Server{
		maxUploadMB: 10,
	}

	req, err := createMultipartPDFFormRequest([]byte("mock pdf content"), "test.pdf", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	server.redactPdfHandler(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response RedactResponse
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Contains(t, response.Error, "PDF processing not initialized")
}

func TestSaveUploadedPDF(t *testing.T) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("pdf", "test.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test content"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/redact/pdf", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1024*1024))

	file, _, err := req.FormFile("pdf")
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	tempName, err := saveUploadedPDF(file)
	require.NoError(t, err)
	defer func() { _ = os.Remove(tempName) }()

	assert.FileExists(t, tempName)
	assert.True(t, strings.HasSuffix(tempName, ".pdf"))
}

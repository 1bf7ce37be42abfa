package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Credentials contains the passwords for an encrypted PDF file.
type Credentials struct {
	UserPassword  string `json:"user_password,omitempty"`
	OwnerPassword string `json:"owner_password,omitempty"`
}

// IsEncrypted checks whether a PDF file is password-protected. The probe
// asks for the page count, which fails on encrypted documents.
func IsEncrypted(filename string) (bool, error) {
	_, err := api.PageCountFile(filename)
	if err != nil {
		if looksEncrypted(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to check PDF encryption status: %w", err)
	}
	return false, nil
}

// looksEncrypted classifies a pdfcpu error as an encryption failure.
func looksEncrypted(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "encrypted") ||
		strings.Contains(msg, "password") ||
		strings.Contains(msg, "decrypt")
}

// EnsureDecrypted returns a readable path for the document, decrypting
// into a temporary file when needed. The cleanup func removes that file
// and is a no-op for unencrypted input.
func EnsureDecrypted(filename string, creds *Credentials) (string, func(), error) {
	noop := func() {}

	encrypted, err := IsEncrypted(filename)
	if err != nil {
		return "", noop, err
	}
	if !encrypted {
		return filename, noop, nil
	}

	tempName, err := createTempPDF()
	if err != nil {
		return "", noop, err
	}

	if err := api.DecryptFile(filename, tempName, decryptionConfig(creds)); err != nil {
		_ = os.Remove(tempName)
		return "", noop, fmt.Errorf("failed to decrypt PDF: %w", err)
	}

	return tempName, func() { _ = os.Remove(tempName) }, nil
}

// decryptionConfig builds a pdfcpu configuration carrying the supplied
// credentials.
func decryptionConfig(creds *Credentials) *model.Configuration {
	config := model.NewDefaultConfiguration()
	if creds != nil {
		if creds.UserPassword != "" {
			config.UserPW = creds.UserPassword
		}
		if creds.OwnerPassword != "" {
			config.OwnerPW = creds.OwnerPassword
		}
	}
	return config
}

// createTempPDF creates the temporary file a decrypted document is
// written to. The caller removes it.
func createTempPDF() (string, error) {
	tempFile, err := os.CreateTemp("", "poblur-decrypted-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	_ = tempFile.Close()
	return tempFile.Name(), nil
}

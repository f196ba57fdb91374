// Package extract turns uploaded file bytes into the plain text the analyzers
// run on. Extraction happens once at upload time; the text is persisted with
// the document record.
package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned for file extensions outside the supported
// set.
var ErrUnsupportedType = errors.New("unsupported file type")

// Extensions accepted for upload.
var SupportedExtensions = []string{".pdf", ".txt", ".csv", ".xlsx", ".xls", ".png", ".jpg", ".jpeg"}

// A PDF whose extracted text is shorter than this is treated as a scan and
// flagged for OCR.
const scannedTextThreshold = 50

// Result is the outcome of extracting one uploaded file.
type Result struct {
	Text        string
	FileType    string
	FileSize    int64
	RequiresOCR bool
	Hash        string
}

// Supported reports whether the filename's extension is accepted for upload.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// Extract dispatches on the file extension and returns the extracted text
// plus file metadata. Image files carry no extractable text and come back
// flagged RequiresOCR; scanned PDFs are detected by their near-empty text.
func Extract(ctx context.Context, filename string, content []byte) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	result := &Result{
		FileType: ext,
		FileSize: int64(len(content)),
		Hash:     hashContent(content),
	}

	switch ext {
	case ".pdf":
		text, err := parsePDF(ctx, content)
		if err != nil {
			return nil, fmt.Errorf("failed to extract PDF text: %w", err)
		}
		result.Text = string(text)
		if len(strings.TrimSpace(result.Text)) < scannedTextThreshold {
			result.RequiresOCR = true
		}

	case ".txt":
		result.Text = string(content)

	case ".csv":
		parsed, err := ParseCSV(content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		result.Text = string(parsed)

	case ".xlsx", ".xls":
		text, err := parseExcel(ctx, content, strings.TrimPrefix(ext, "."))
		if err != nil {
			return nil, fmt.Errorf("failed to extract spreadsheet text: %w", err)
		}
		result.Text = string(text)

	case ".png", ".jpg", ".jpeg":
		result.RequiresOCR = true

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	return result, nil
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

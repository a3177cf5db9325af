package document

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedType = errors.New("document type must be pdf, png, jpg, or txt")
	ErrInvalidName     = errors.New("invalid document name")
)

// allowedExtensions mirrors the client-side extension filter.
var allowedExtensions = map[string]bool{
	".pdf": true,
	".png": true,
	".jpg": true,
	".txt": true,
}

// Store writes denied-claim attachments to a local directory as
// {patientID}_{policyID}_{filename}.
type Store struct {
	dir string
}

// NewStore creates the attachment directory if needed
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the attachment and returns its path. The name components are
// sanitized so user input cannot escape the document directory.
func (s *Store) Save(patientID, policyID, filename string, r io.Reader) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", ErrInvalidName
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}

	patientID = sanitizeComponent(patientID)
	policyID = sanitizeComponent(policyID)
	if patientID == "" || policyID == "" {
		return "", ErrInvalidName
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%s_%s_%s", patientID, policyID, name))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create document file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		// Don't leave a truncated attachment behind
		os.Remove(path)
		return "", fmt.Errorf("failed to write document: %w", err)
	}

	return path, nil
}

// sanitizeComponent strips path separators and relative markers from a
// user-supplied id used in the file name.
func sanitizeComponent(s string) string {
	s = strings.ReplaceAll(s, "/", "")
	s = strings.ReplaceAll(s, "\\", "")
	s = strings.ReplaceAll(s, "..", "")
	return strings.TrimSpace(s)
}

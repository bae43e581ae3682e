package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/higpup01-design/proofok-simple/models"
)

// ErrNotFound is returned when no record exists for a token.
var ErrNotFound = errors.New("record not found")

// ErrTooLarge is returned when an uploaded file exceeds the size limit.
var ErrTooLarge = errors.New("file exceeds size limit")

// Store persists one JSON record per token in dataDir and the uploaded
// PDF bytes under uploadDir/<token>/.
type Store struct {
	dataDir   string
	uploadDir string
}

// New creates both directories if needed and returns a Store.
func New(dataDir, uploadDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dataDir: dataDir, uploadDir: uploadDir}, nil
}

// Save writes the record as pretty-printed JSON. The write goes through a
// temp file and a rename so readers never observe a partial record.
func (s *Store) Save(rec *models.Record) error {
	if !validToken(rec.Token) {
		return fmt.Errorf("invalid token %q", rec.Token)
	}
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	path := s.recordPath(rec.Token)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename record: %w", err)
	}
	return nil
}

// Load reads the record for a token, or ErrNotFound.
func (s *Store) Load(token string) (*models.Record, error) {
	if !validToken(token) {
		return nil, ErrNotFound
	}
	b, err := os.ReadFile(s.recordPath(token))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read record: %w", err)
	}
	rec := &models.Record{}
	if err := json.Unmarshal(b, rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// SavePDF streams the uploaded file to uploadDir/<token>/<name> enforcing
// maxBytes. Returns the number of bytes written.
func (s *Store) SavePDF(token, name string, r io.Reader, maxBytes int64) (int64, error) {
	if !validToken(token) {
		return 0, fmt.Errorf("invalid token %q", token)
	}
	dir := filepath.Join(s.uploadDir, token)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create token dir: %w", err)
	}
	path := filepath.Join(dir, SafeName(name))
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	lr := &io.LimitedReader{R: r, N: maxBytes + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("write file: %w", err)
	}
	if written > maxBytes {
		_ = out.Close()
		_ = os.Remove(path)
		return 0, ErrTooLarge
	}
	return written, nil
}

// PDFPath resolves the on-disk path for a stored PDF, or ErrNotFound.
func (s *Store) PDFPath(token, name string) (string, error) {
	if !validToken(token) {
		return "", ErrNotFound
	}
	path := filepath.Join(s.uploadDir, token, SafeName(name))
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return path, nil
}

func (s *Store) recordPath(token string) string {
	return filepath.Join(s.dataDir, token+".json")
}

// SafeName strips path components so uploads cannot escape the token dir.
func SafeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "/", "_")
	name = filepath.Base(name)
	if name == "." || name == "" {
		return "_"
	}
	return name
}

func validToken(token string) bool {
	if token == "" {
		return false
	}
	for _, c := range token {
		if (c < '0' || c > '9') && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

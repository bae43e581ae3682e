package store

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/higpup01-design/proofok-simple/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "data"), filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	rec := models.NewRecord("abc123def456", "brochure.pdf", "brochure.pdf")
	require.NoError(t, s.Save(rec))

	got, err := s.Load("abc123def456")
	require.NoError(t, err)
	assert.Equal(t, rec.Token, got.Token)
	assert.Equal(t, rec.OriginalName, got.OriginalName)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.NotNil(t, got.Responses)
}

func TestLoadUnknownToken(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load("000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadRejectsTraversalToken(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load("../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveLastWriteWins(t *testing.T) {
	s := newTestStore(t)
	rec := models.NewRecord("abc123def456", "brochure.pdf", "brochure.pdf")
	require.NoError(t, s.Save(rec))

	require.NoError(t, rec.ApplyDecision(models.ResponseEvent{Decision: "approved"}))
	require.NoError(t, s.Save(rec))
	require.NoError(t, rec.ApplyDecision(models.ResponseEvent{Decision: "rejected", Comment: "colors off"}))
	require.NoError(t, s.Save(rec))

	got, err := s.Load("abc123def456")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)
	assert.Len(t, got.Responses, 2)
}

func TestSavePDFAndResolve(t *testing.T) {
	s := newTestStore(t)
	body := strings.NewReader("%PDF-1.4 fake")
	n, err := s.SavePDF("abc123def456", "brochure.pdf", body, 1024)
	require.NoError(t, err)
	assert.Equal(t, int64(13), n)

	path, err := s.PDFPath("abc123def456", "brochure.pdf")
	require.NoError(t, err)
	assert.Contains(t, path, filepath.Join("abc123def456", "brochure.pdf"))

	_, err = s.PDFPath("abc123def456", "missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSavePDFEnforcesLimit(t *testing.T) {
	s := newTestStore(t)
	body := strings.NewReader(strings.Repeat("x", 100))
	_, err := s.SavePDF("abc123def456", "big.pdf", body, 10)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = s.PDFPath("abc123def456", "big.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "a_b.pdf", SafeName("a/b.pdf"))
	assert.Equal(t, "a_b.pdf", SafeName(`a\b.pdf`))
	assert.Equal(t, "_", SafeName(""))
	assert.Equal(t, ".._.._etc_passwd", SafeName("../../etc/passwd"))
}

package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var saveAt = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

const payload = "Extracted from: https://example.com\nDate: 3/5/2024, 2:07:09 PM\n\n========================================\n\n[Search]:\nhello\n\n"

func newSink(dir string) *FileSink {
	return &FileSink{Dir: dir, Format: FormatText, Now: func() time.Time { return saveAt }}
}

func TestFileSink_SaveText(t *testing.T) {
	dir := t.TempDir()
	path, err := newSink(dir).Save(context.Background(), payload, DocumentRef{Location: "https://example.com", Title: "Search"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "extraction_Search_2024-03-05_14-07-09.txt"), path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, string(b))
	_, err = os.Stat(path + ".part")
	assert.True(t, errors.Is(err, os.ErrNotExist), "temp file left behind")
}

func TestFileSink_PicksFreeName(t *testing.T) {
	dir := t.TempDir()
	s := newSink(dir)
	first, err := s.Save(context.Background(), "one", DocumentRef{Title: "x"})
	require.NoError(t, err)
	second, err := s.Save(context.Background(), "two", DocumentRef{Title: "x"})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(second, " (1).txt"), second)

	s.Overwrite = true
	third, err := s.Save(context.Background(), "three", DocumentRef{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, first, third)
	b, _ := os.ReadFile(first)
	assert.Equal(t, "three", string(b))
}

func TestFileSink_PDF(t *testing.T) {
	dir := t.TempDir()
	s := newSink(dir)
	s.Format = FormatPDF
	path, err := s.Save(context.Background(), payload+"[Notes]:\nCafé über\n\n", DocumentRef{Title: "Search"})
	require.NoError(t, err)
	assert.Equal(t, ".pdf", filepath.Ext(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")), "not a pdf")
}

func TestFileSink_Manifest(t *testing.T) {
	dir := t.TempDir()
	s := newSink(dir)
	s.Manifest = true
	s.Records = 1
	path, err := s.Save(context.Background(), payload, DocumentRef{Location: "https://example.com", Title: "Search"})
	require.NoError(t, err)
	b, err := os.ReadFile(ManifestPath(path))
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "https://example.com", m.Source)
	assert.Equal(t, 1, m.Records)
	assert.Equal(t, computeSHA256Hex(payload), m.SHA256)
	assert.True(t, m.GeneratedAt.Equal(saveAt))
}

type stubPrompter struct {
	path string
	err  error
	got  string
}

func (p *stubPrompter) SaveAs(_ context.Context, suggested string) (string, error) {
	p.got = suggested
	return p.path, p.err
}

func TestFileSink_PromptCancelled(t *testing.T) {
	dir := t.TempDir()
	s := newSink(dir)
	s.Prompter = &stubPrompter{err: ErrCancelled}
	_, err := s.Save(context.Background(), payload, DocumentRef{Title: "x"})
	assert.True(t, IsCancelled(err))
	assert.False(t, errors.Is(err, ErrSaveFailed))
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestFileSink_PromptChangesPath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sub", "mine.txt")
	p := &stubPrompter{path: target}
	s := newSink(dir)
	s.Prompter = p
	path, err := s.Save(context.Background(), payload, DocumentRef{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, target, path)
	assert.Equal(t, filepath.Join(dir, "extraction_x_2024-03-05_14-07-09.txt"), p.got)
}

func TestFileSink_FailureIsSaveError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	s := newSink(filepath.Join(blocker, "nested"))
	_, err := s.Save(context.Background(), payload, DocumentRef{Title: "x"})
	require.Error(t, err)
	var se *SaveError
	require.True(t, errors.As(err, &se))
	assert.True(t, errors.Is(err, ErrSaveFailed))
	assert.False(t, IsCancelled(err))
}

func TestFileSink_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newSink(t.TempDir()).Save(ctx, payload, DocumentRef{})
	assert.True(t, IsCancelled(err))
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	where, err := WriterSink{W: &buf}.Save(context.Background(), payload, DocumentRef{})
	require.NoError(t, err)
	assert.Equal(t, "-", where)
	assert.Equal(t, payload, buf.String())
}

func TestLinePrompter(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"\n", "suggested.txt", nil},
		{"  other.txt \n", "other.txt", nil},
		{"last-line-no-newline.txt", "last-line-no-newline.txt", nil},
		{"cancel\n", "", ErrCancelled},
		{"", "", ErrCancelled},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		got, err := (&LinePrompter{In: strings.NewReader(tc.in), Out: &out}).SaveAs(context.Background(), "suggested.txt")
		if tc.wantErr != nil {
			assert.ErrorIs(t, err, tc.wantErr, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got)
		assert.Equal(t, "Save as [suggested.txt]: ", out.String())
	}
}

func TestLinePrompter_KeepsBufferedAnswers(t *testing.T) {
	var out bytes.Buffer
	p := &LinePrompter{In: strings.NewReader("first.txt\nsecond.txt\n"), Out: &out}
	got, err := p.SaveAs(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "first.txt", got)
	got, err = p.SaveAs(context.Background(), "b.txt")
	require.NoError(t, err)
	assert.Equal(t, "second.txt", got)
	_, err = p.SaveAs(context.Background(), "c.txt")
	assert.ErrorIs(t, err, ErrCancelled)
}

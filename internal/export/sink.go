// Package export persists an extraction payload as a single artifact.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Format selects the artifact encoding.
type Format string

const (
	FormatText Format = "txt"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts "txt" (also "text" and "") and "pdf".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "txt", "text":
		return FormatText, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

func (f Format) ext() string {
	if f == FormatPDF {
		return ".pdf"
	}
	return ".txt"
}

// DocumentRef identifies the document a payload came from.
type DocumentRef struct {
	Location string
	Title    string
}

// Sink accepts a payload and persists it. It returns where the artifact went.
type Sink interface {
	Save(ctx context.Context, payload string, ref DocumentRef) (string, error)
}

// FileSink writes artifacts into a directory.
type FileSink struct {
	Dir    string
	Format Format
	// Prompter, when set, lets the user confirm or change the path.
	Prompter Prompter
	// Overwrite replaces an existing file instead of picking a free name.
	Overwrite bool
	// Manifest writes a <file>.manifest.json sidecar next to the artifact.
	Manifest bool
	// Records is the record count stored in the manifest.
	Records int
	Now     func() time.Time
}

func (s *FileSink) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Save writes payload and returns the final path. Cancellation returns an
// error satisfying IsCancelled; anything else is a *SaveError.
func (s *FileSink) Save(ctx context.Context, payload string, ref DocumentRef) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	at := s.now()
	path := filepath.Join(s.Dir, withExt(Filename(ref.Title, at), s.Format.ext()))
	if s.Prompter != nil {
		chosen, err := s.Prompter.SaveAs(ctx, path)
		if err != nil {
			if IsCancelled(err) {
				log.Debug().Msg("save cancelled")
				return "", err
			}
			return "", &SaveError{Path: path, Err: err}
		}
		path = chosen
	}
	if !s.Overwrite {
		free, err := uniquePath(path)
		if err != nil {
			return "", &SaveError{Path: path, Err: err}
		}
		path = free
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", &SaveError{Path: path, Err: err}
		}
	}
	if err := s.write(path, payload); err != nil {
		return "", &SaveError{Path: path, Err: err}
	}
	if s.Manifest {
		m := NewManifest(ref, s.Format, payload, s.Records, at)
		if err := m.WriteSidecar(path); err != nil {
			return "", &SaveError{Path: ManifestPath(path), Err: err}
		}
	}
	log.Info().Str("path", path).Str("format", string(s.Format)).Int("bytes", len(payload)).Msg("artifact saved")
	return path, nil
}

func (s *FileSink) write(path, payload string) error {
	tmp := path + ".part"
	var err error
	switch s.Format {
	case FormatPDF:
		err = writePDF(payload, tmp)
	default:
		err = os.WriteFile(tmp, []byte(payload), 0o644)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// uniquePath returns path, or the first "name (n).ext" that does not exist.
func uniquePath(path string) (string, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return path, nil
	} else if err != nil {
		return "", err
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; i < 1000; i++ {
		cand := base + " (" + strconv.Itoa(i) + ")" + ext
		if _, err := os.Stat(cand); errors.Is(err, fs.ErrNotExist) {
			return cand, nil
		}
	}
	return "", fmt.Errorf("no free file name for %s", path)
}

// WriterSink writes the payload to a stream, typically standard output.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Save(ctx context.Context, payload string, _ DocumentRef) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := io.WriteString(s.W, payload); err != nil {
		return "", &SaveError{Path: "-", Err: err}
	}
	return "-", nil
}
